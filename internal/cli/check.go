package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/sahilm/fuzzy"
	"github.com/spf13/cobra"

	"github.com/macropower/netswitch/pkg/config"
	"github.com/macropower/netswitch/pkg/evaluator"
	"github.com/macropower/netswitch/pkg/profile"
)

var ErrUnknownProfile = errors.New("unknown profile")

const maxSuggestions = 3

func NewCheckCmd(ra *RootArgs) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [profile...]",
		Short: "Evaluate rule sets against the current network and explain the result",
		Example: `  # Explain every profile:
  netswitch check

  # Explain selected profiles:
  netswitch check home office`,
		ValidArgsFunction: profileCompletion(ra),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withTracing(cmd.Context(), ra, func(ctx context.Context) error {
				return check(ctx, cmd.OutOrStdout(), ra, args)
			})
		},
	}

	return cmd
}

func check(ctx context.Context, w io.Writer, ra *RootArgs, ids []string) error {
	store, err := ra.openStore()
	if err != nil {
		return err
	}

	cfg := store.Current()

	profiles, err := selectProfiles(cfg, ids)
	if err != nil {
		return err
	}

	report := newEvaluator(cfg, newProbe(cfg)).Explain(ctx, profiles)

	return renderReport(w, report, len(profiles))
}

// selectProfiles returns the profiles named by ids, or all profiles when
// ids is empty.
func selectProfiles(cfg *config.Config, ids []string) ([]profile.Profile, error) {
	if len(ids) == 0 {
		return cfg.Profiles, nil
	}

	profiles := make([]profile.Profile, 0, len(ids))

	for _, id := range ids {
		p, ok := cfg.Profile(id)
		if !ok {
			return nil, unknownProfileError(id, cfg.ProfileIDs())
		}

		profiles = append(profiles, p)
	}

	return profiles, nil
}

func unknownProfileError(id string, known []string) error {
	matches := fuzzy.Find(id, known)
	if len(matches) == 0 {
		return fmt.Errorf("%w %q", ErrUnknownProfile, id)
	}

	suggestions := make([]string, 0, maxSuggestions)
	for _, m := range matches[:min(len(matches), maxSuggestions)] {
		suggestions = append(suggestions, m.Str)
	}

	return fmt.Errorf("%w %q, did you mean: %s", ErrUnknownProfile, id, strings.Join(suggestions, ", "))
}

func renderReport(w io.Writer, report evaluator.Report, total int) error {
	st := newStyles(w)

	var b strings.Builder

	ssid := report.Snapshot.SSID
	if ssid == "" {
		ssid = "none"
	}

	gateway := report.Snapshot.GatewayMAC
	if gateway == "" {
		gateway = "none"
	}

	fmt.Fprintf(&b, "%s ssid=%s gateway=%s\n\n", st.Title.Render("Network"), ssid, gateway)

	for _, pr := range report.Profiles {
		mark := st.Miss.Render("✗")
		if pr.Matched {
			mark = st.Match.Render("✓")
		}

		fmt.Fprintf(&b, "%s %s %s\n", mark, st.Title.Render(pr.ProfileID),
			st.Subtle.Render(fmt.Sprintf("(%s, priority %d, %s, %s)",
				pr.Name, pr.Priority, pr.Operator, pr.Duration.Round(time.Microsecond))),
		)

		for _, cr := range pr.Conditions {
			mark := st.Miss.Render("✗")
			if cr.Matched {
				mark = st.Match.Render("✓")
			}

			line := fmt.Sprintf("    %s %s", mark, cr.Description)
			if cr.Error != nil {
				line += " " + st.Error.Render(cr.Error.Error())
			}

			b.WriteString(line + "\n")
		}
	}

	if skipped := total - len(report.Profiles); skipped > 0 {
		fmt.Fprintf(&b, "%s\n", st.Subtle.Render(fmt.Sprintf("%d profile(s) without an enabled rule set", skipped)))
	}

	selected := report.Selected
	if selected == "" {
		selected = "none"
	}

	fmt.Fprintf(&b, "\n%s %s\n", st.Title.Render("Selected"), selected)

	_, err := io.WriteString(w, b.String())
	if err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	return nil
}

// profileCompletion completes profile IDs from the configuration file.
func profileCompletion(ra *RootArgs) cobra.CompletionFunc {
	return func(_ *cobra.Command, args []string, _ string) ([]cobra.Completion, cobra.ShellCompDirective) {
		store, err := ra.openStore()
		if err != nil {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}

		var out []cobra.Completion

		for _, p := range store.Current().Profiles {
			if slices.Contains(args, p.ID) {
				continue
			}

			out = append(out, cobra.CompletionWithDesc(p.ID, p.DisplayName()))
		}

		return out, cobra.ShellCompDirectiveNoFileComp
	}
}
