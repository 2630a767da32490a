package scheduler

import (
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// TokenCleaner removes used and expired one-time tokens.
type TokenCleaner interface {
	CleanupExpired(olderThan time.Duration) (int64, error)
}

// Scheduler runs the periodic housekeeping jobs.
type Scheduler struct {
	cron *cron.Cron
}

// New registers the token cleanup job. Tokens older than retention are removed once a day.
func New(tokens TokenCleaner, retention time.Duration) (*Scheduler, error) {
	c := cron.New(cron.WithChain(cron.Recover(cron.DefaultLogger)))

	_, err := c.AddFunc("@daily", func() { cleanupTokens(tokens, retention) })
	if err != nil {
		return nil, err
	}

	return &Scheduler{cron: c}, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	slog.Info("scheduler started", "jobs", len(s.cron.Entries()))
}

// Stop prevents new runs and waits for a running job to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

func cleanupTokens(tokens TokenCleaner, retention time.Duration) {
	n, err := tokens.CleanupExpired(retention)
	if err != nil {
		slog.Error("token cleanup failed", "error", err)
		return
	}
	slog.Info("token cleanup finished", "deleted", n)
}
