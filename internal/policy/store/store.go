// Package store holds the live policy snapshot and swaps it atomically when
// the lexicon or tier files change on disk.
package store

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"

	"content-policy-workers/internal/common/logger"
	"content-policy-workers/internal/common/metrics"
	"content-policy-workers/internal/policy/engine"
	"content-policy-workers/internal/policy/lexicon"
	"content-policy-workers/internal/policy/scoring"
	"content-policy-workers/internal/policy/tiers"
)

const defaultDebounce = 250 * time.Millisecond

// Options locate the policy files. Empty paths select the embedded defaults.
type Options struct {
	LexiconPath   string
	TiersPath     string
	Thresholds    scoring.Thresholds
	PositiveFloor int
	Debounce      time.Duration
}

// Store implements engine.Source. Evaluations in flight keep the snapshot
// they started with.
type Store struct {
	opts    Options
	logger  logger.Logger
	current atomic.Pointer[engine.Policy]
	mu      sync.Mutex
}

// New loads the initial snapshot. A store is never created without a valid
// policy.
func New(opts Options, log logger.Logger) (*Store, error) {
	if opts.Debounce <= 0 {
		opts.Debounce = defaultDebounce
	}
	s := &Store{
		opts:   opts,
		logger: log.WithFields(map[string]interface{}{"component": "policy-store"}),
	}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) Current() *engine.Policy {
	return s.current.Load()
}

// Reload rebuilds the snapshot from disk. On failure the previous snapshot
// stays active.
func (s *Store) Reload() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.load()
	if err != nil {
		metrics.PolicyReloads.WithLabelValues("failure").Inc()
		s.logger.Error("Policy reload failed", map[string]interface{}{
			"lexiconPath": s.opts.LexiconPath,
			"tiersPath":   s.opts.TiersPath,
			"error":       err.Error(),
		})
		return err
	}

	s.current.Store(p)
	metrics.PolicyReloads.WithLabelValues("success").Inc()
	s.logger.Info("Policy loaded", map[string]interface{}{
		"lexiconVersion": p.Lexicon.Version(),
		"tiersVersion":   p.Tiers.Version(),
		"approvedCutoff": p.Thresholds.ApprovedCutoff,
		"revisionCutoff": p.Thresholds.RevisionCutoff,
	})
	return nil
}

func (s *Store) load() (*engine.Policy, error) {
	lex, err := lexicon.Load(s.opts.LexiconPath)
	if err != nil {
		return nil, fmt.Errorf("lexicon: %w", err)
	}
	table, err := tiers.Load(s.opts.TiersPath)
	if err != nil {
		return nil, fmt.Errorf("tier table: %w", err)
	}

	p := &engine.Policy{
		Lexicon:       lex,
		Tiers:         table,
		Thresholds:    s.opts.Thresholds,
		PositiveFloor: s.opts.PositiveFloor,
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Watch reloads the policy whenever one of the configured files is written,
// created or renamed into place. It blocks until ctx is done.
func (s *Store) Watch(ctx context.Context) error {
	files := make(map[string]bool)
	for _, p := range []string{s.opts.LexiconPath, s.opts.TiersPath} {
		if p != "" {
			files[filepath.Clean(p)] = true
		}
	}
	if len(files) == 0 {
		<-ctx.Done()
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	// Editors replace files by rename, so the directories are watched.
	dirs := make(map[string]bool)
	for f := range files {
		dir := filepath.Dir(f)
		if dirs[dir] {
			continue
		}
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
		dirs[dir] = true
	}

	var timer *time.Timer
	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !files[filepath.Clean(event.Name)] {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(s.opts.Debounce)
			} else {
				timer.Reset(s.opts.Debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			_ = s.Reload()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.logger.Warn("Policy watcher error", map[string]interface{}{"error": err.Error()})
		}
	}
}
