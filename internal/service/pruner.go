package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/robfig/cron/v3"

	"pagebuilder/internal/domain"
)

// ─────────────────────────────────────────────────────────────
// JournalPruner — trims history of idle persisted sessions
// ─────────────────────────────────────────────────────────────

const pruneJob = "journal-prune"

// PruneResult reports one pruning run.
type PruneResult struct {
	Dropped int       `json:"dropped"`
	Cutoff  time.Time `json:"cutoff"`
	Skipped bool      `json:"skipped"`
}

// JournalPruner caps the stored history of sessions that have not been
// touched for a while. Sessions reported by SkipOpen are never pruned, so
// open sessions keep their full in-memory history.
type JournalPruner struct {
	store    domain.JournalStore
	maxSteps int
	idle     time.Duration
	logger   *log.Logger

	guard jobGuard
	mu    sync.Mutex
	sched *cron.Cron
	now   func() time.Time
	open  func() []string
}

// NewJournalPruner creates a pruner keeping maxSteps snapshots for sessions
// idle longer than idle.
func NewJournalPruner(store domain.JournalStore, maxSteps int, idle time.Duration, logger *log.Logger) *JournalPruner {
	if logger == nil {
		logger = log.Default()
	}
	return &JournalPruner{
		store:    store,
		maxSteps: maxSteps,
		idle:     idle,
		logger:   logger.WithPrefix("prune"),
		now:      time.Now,
	}
}

// SkipOpen registers a source of session ids that must not be pruned,
// typically EditorService.OpenSessions.
func (p *JournalPruner) SkipOpen(open func() []string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.open = open
}

// RunOnce prunes immediately. A run already in progress makes this a no-op.
func (p *JournalPruner) RunOnce(ctx context.Context) (PruneResult, error) {
	cutoff := p.now().Add(-p.idle)
	if !p.guard.Acquire(pruneJob) {
		p.logger.Debug("run already in progress")
		return PruneResult{Cutoff: cutoff, Skipped: true}, nil
	}
	defer p.guard.Release(pruneJob)

	if err := ctx.Err(); err != nil {
		return PruneResult{Cutoff: cutoff}, err
	}
	p.mu.Lock()
	open := p.open
	p.mu.Unlock()
	var skip []string
	if open != nil {
		skip = open()
	}

	n, err := p.store.PruneJournals(p.maxSteps, cutoff, skip...)
	if err != nil {
		return PruneResult{Cutoff: cutoff}, fmt.Errorf("prune journals: %w", err)
	}
	if n > 0 {
		p.logger.Info("pruned snapshots", "dropped", n, "keep", p.maxSteps, "cutoff", cutoff.Format(time.RFC3339))
	}
	return PruneResult{Dropped: n, Cutoff: cutoff}, nil
}

// Start schedules RunOnce on a cron expression. Calling Start again replaces
// the previous schedule.
func (p *JournalPruner) Start(spec string) error {
	c := cron.New()
	if _, err := c.AddFunc(spec, func() {
		if _, err := p.RunOnce(context.Background()); err != nil {
			p.logger.Error("scheduled run failed", "err", err)
		}
	}); err != nil {
		return fmt.Errorf("prune schedule %q: %w", spec, err)
	}

	p.mu.Lock()
	old := p.sched
	p.sched = c
	p.mu.Unlock()

	if old != nil {
		old.Stop()
	}
	c.Start()
	p.logger.Info("scheduled", "spec", spec)
	return nil
}

// Stop halts the schedule and waits for a running prune to finish.
func (p *JournalPruner) Stop(ctx context.Context) {
	p.mu.Lock()
	c := p.sched
	p.sched = nil
	p.mu.Unlock()

	if c != nil {
		<-c.Stop().Done()
	}
	p.guard.Wait(ctx)
}
