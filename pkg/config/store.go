package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aymanbagabas/go-udiff"
	"github.com/fsnotify/fsnotify"

	"github.com/macropower/netswitch/api"
	"github.com/macropower/netswitch/pkg/log"
	"github.com/macropower/netswitch/pkg/profile"
	"github.com/macropower/netswitch/pkg/schedule"
	"github.com/macropower/netswitch/pkg/yaml"
)

// DefaultDebounce is how long the watcher waits for writes to settle.
const DefaultDebounce = 250 * time.Millisecond

var ErrScheduleNotFound = errors.New("schedule not found")

type storeState struct {
	cfg  *Config
	data []byte
}

// Store holds the active configuration and reloads it when the file
// changes. An invalid file never replaces a valid configuration.
//
// Readers get immutable snapshots, so Store is safe for concurrent use.
type Store struct {
	state    atomic.Pointer[storeState]
	onChange func(*Config)
	path     string
	debounce time.Duration
	writeMu  sync.Mutex
}

// StoreOpt configures a [Store].
type StoreOpt func(*Store)

// WithOnChange sets a function called after every successful reload.
func WithOnChange(fn func(*Config)) StoreOpt {
	return func(s *Store) {
		s.onChange = fn
	}
}

// WithDebounce sets how long the watcher waits after the last file event.
func WithDebounce(d time.Duration) StoreOpt {
	return func(s *Store) {
		s.debounce = d
	}
}

// NewStore creates a [Store] for the file at path, starting from cfg.
func NewStore(path string, cfg *Config, data []byte, opts ...StoreOpt) *Store {
	s := &Store{
		path:     path,
		debounce: DefaultDebounce,
	}
	s.state.Store(&storeState{cfg: cfg, data: data})

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// OpenStore loads the file at path into a new [Store].
func OpenStore(path string, opts ...StoreOpt) (*Store, error) {
	data, err := api.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, err
	}

	return NewStore(path, cfg, data, opts...), nil
}

// Path returns the watched file path.
func (s *Store) Path() string {
	return s.path
}

// Current returns the active configuration. Callers must not modify it.
func (s *Store) Current() *Config {
	return s.state.Load().cfg
}

// CurrentProfiles returns a copy of the configured profiles.
func (s *Store) CurrentProfiles() []profile.Profile {
	return slices.Clone(s.Current().Profiles)
}

// CurrentSchedules returns a copy of the configured schedules, or nothing
// while scheduling is disabled.
func (s *Store) CurrentSchedules() []schedule.Schedule {
	cfg := s.Current()
	if !cfg.SchedulingEnabled() {
		return nil
	}

	return slices.Clone(cfg.Schedules)
}

// ActivationCommand returns the activation command template for a profile.
func (s *Store) ActivationCommand(profileID string) string {
	return s.Current().ActivationCommand(profileID)
}

// Reload re-reads the file and calls the change function if it differs.
// On error the active configuration is kept.
func (s *Store) Reload(ctx context.Context) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	return s.reload(ctx, true)
}

// reload must be called with writeMu held. Edits made by the store itself
// pass notify=false: they are not profile changes.
func (s *Store) reload(ctx context.Context, notify bool) error {
	logger := log.WithContext(ctx).With(slog.String("path", s.path))

	data, err := api.ReadFile(s.path)
	if err != nil {
		logger.WarnContext(ctx, "keep previous configuration", slog.Any("error", err))

		return fmt.Errorf("read config: %w", err)
	}

	old := s.state.Load()
	if string(old.data) == string(data) {
		return nil
	}

	cfg, err := Parse(data)
	if err != nil {
		logger.WarnContext(ctx, "keep previous configuration", slog.Any("error", err))

		return err
	}

	s.state.Store(&storeState{cfg: cfg, data: data})

	logger.InfoContext(ctx, "configuration reloaded",
		slog.Int("profiles", len(cfg.Profiles)),
		slog.Int("schedules", len(cfg.Schedules)),
	)

	if logger.Enabled(ctx, slog.LevelDebug) {
		name := filepath.Base(s.path)
		logger.DebugContext(ctx, "configuration diff",
			slog.String("diff", udiff.Unified("a/"+name, "b/"+name, string(old.data), string(data))),
		)
	}

	if notify && s.onChange != nil {
		s.onChange(cfg)
	}

	return nil
}

// Watch reloads the configuration whenever the file changes until ctx is
// done. The parent directory is watched so that editors replacing the file
// are seen.
func (s *Store) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch config: %w", err)
	}
	defer watcher.Close() //nolint:errcheck // Best effort.

	target := filepath.Clean(s.path)

	err = watcher.Add(filepath.Dir(target))
	if err != nil {
		return fmt.Errorf("watch config dir: %w", err)
	}

	logger := log.WithContext(ctx).With(slog.String("path", target))
	logger.DebugContext(ctx, "watching configuration")

	var (
		timer   *time.Timer
		timerCh <-chan time.Time
	)

	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}

			if timer == nil {
				timer = time.NewTimer(s.debounce)
				timerCh = timer.C
			} else {
				timer.Reset(s.debounce)
			}

		case <-timerCh:
			timer = nil
			timerCh = nil

			//nolint:errcheck // Logged by Reload.
			_ = s.Reload(ctx)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}

			logger.WarnContext(ctx, "config watcher", slog.Any("error", err))
		}
	}
}

// DisableSchedule sets enabled to false on the schedule with the given key
// in the file, keeping comments, and reloads the configuration without
// calling the change function.
func (s *Store) DisableSchedule(ctx context.Context, key string) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	data, err := api.ReadFile(s.path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return err
	}

	idx := slices.IndexFunc(cfg.Schedules, func(sc schedule.Schedule) bool {
		return sc.Key() == key
	})
	if idx < 0 {
		return fmt.Errorf("%w: %q", ErrScheduleNotFound, key)
	}

	out, err := yaml.MergeAtPath(data, fmt.Sprintf("$.schedules[%d]", idx), map[string]any{"enabled": false})
	if err != nil {
		return fmt.Errorf("disable schedule %q: %w", key, err)
	}

	err = api.WriteFileAtomic(s.path, out)
	if err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	log.WithContext(ctx).InfoContext(ctx, "disabled one-shot schedule", slog.String("schedule", key))

	return s.reload(ctx, false)
}
