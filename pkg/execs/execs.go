package execs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/macropower/netswitch/pkg/log"
)

// Runner runs commands.
type Runner interface {
	Run(ctx context.Context, cmd Command) (*Result, error)
}

// Executor runs commands as child processes.
type Executor struct {
	tracer trace.Tracer
}

func NewExecutor() Executor {
	return Executor{
		tracer: otel.Tracer("executor"),
	}
}

// Run executes cmd and waits for it to exit. The process is killed when ctx
// is done. On a non-zero exit the result is returned alongside the error if
// the command produced any output.
func (e Executor) Run(ctx context.Context, cmd Command) (*Result, error) {
	if e.tracer == nil {
		e.tracer = otel.Tracer("executor")
	}

	ctx, span := e.tracer.Start(ctx, "exec", trace.WithAttributes(
		attribute.String("command", cmd.String()),
	))
	defer span.End()

	if cmd.Command == "" {
		return nil, fmt.Errorf("%w: %w", ErrCommandExecution, ErrEmptyCommand)
	}

	logger := log.WithContext(ctx).With(slog.String("command", cmd.String()))

	start := time.Now()

	//nolint:gosec // G204: Subprocess launched with a potential tainted input or cmd arguments.
	c := exec.CommandContext(ctx, cmd.Command, cmd.Args...)
	c.Env = cmd.GetEnv()

	var stdout, stderr bytes.Buffer

	c.Stdout = &stdout
	c.Stderr = &stderr

	err := c.Run()
	result := &Result{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}

	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		logger.DebugContext(ctx, "command failed",
			slog.Duration("duration", time.Since(start)),
			slog.Any("error", err),
		)

		if stdout.Len() > 0 || stderr.Len() > 0 {
			return result, fmt.Errorf("%w: %w", ErrCommandExecution, err)
		}

		return nil, fmt.Errorf("%w: %w", ErrCommandExecution, err)
	}

	logger.DebugContext(ctx, "command executed successfully",
		slog.Duration("duration", time.Since(start)),
	)

	return result, nil
}

// ExitCode returns the exit code carried by err, or -1 if the process did
// not exit normally or err is not an exit error.
func ExitCode(err error) int {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}

	return -1
}
