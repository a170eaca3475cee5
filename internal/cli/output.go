package cli

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// isTerminal reports whether w is a terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)

	return ok && term.IsTerminal(int(f.Fd()))
}

// styles are rendered for a specific writer, so that colors are dropped
// when output is redirected.
type styles struct {
	Title  lipgloss.Style
	Match  lipgloss.Style
	Miss   lipgloss.Style
	Error  lipgloss.Style
	Subtle lipgloss.Style
	Header lipgloss.Style
	Cell   lipgloss.Style
}

func newStyles(w io.Writer) styles {
	r := lipgloss.NewRenderer(w)

	return styles{
		Title:  r.NewStyle().Bold(true),
		Match:  r.NewStyle().Foreground(lipgloss.Color("2")),
		Miss:   r.NewStyle().Foreground(lipgloss.Color("8")),
		Error:  r.NewStyle().Foreground(lipgloss.Color("1")),
		Subtle: r.NewStyle().Faint(true),
		Header: r.NewStyle().Bold(true).Padding(0, 1),
		Cell:   r.NewStyle().Padding(0, 1),
	}
}

// writeYAML writes src to w, highlighted when w is a terminal.
func writeYAML(w io.Writer, src []byte) error {
	if !isTerminal(w) {
		_, err := w.Write(src)
		if err != nil {
			return fmt.Errorf("write: %w", err)
		}

		return nil
	}

	return highlight(w, src, "yaml")
}

func highlight(w io.Writer, src []byte, lexer string) error {
	var buf bytes.Buffer

	err := quick.Highlight(&buf, string(src), lexer, "terminal256", "monokai")
	if err != nil {
		return fmt.Errorf("highlight: %w", err)
	}

	_, err = buf.WriteTo(w)
	if err != nil {
		return fmt.Errorf("write: %w", err)
	}

	return nil
}
