package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const jobTimeout = 30 * time.Second

// KeyRateRefresher refreshes the cached reference rate
type KeyRateRefresher interface {
	RefreshKeyRate(ctx context.Context) (decimal.Decimal, error)
}

// Scheduler runs periodic background jobs
type Scheduler struct {
	cron *cron.Cron
	log  *logrus.Logger
}

// New registers the key rate refresh job on the given cron expression
func New(expr string, refresher KeyRateRefresher, log *logrus.Logger) (*Scheduler, error) {
	c := cron.New(cron.WithLogger(cron.VerbosePrintfLogger(log)))
	s := &Scheduler{cron: c, log: log}

	if _, err := c.AddFunc(expr, func() { s.refreshKeyRate(refresher) }); err != nil {
		return nil, fmt.Errorf("invalid key rate refresh schedule %q: %w", expr, err)
	}
	return s, nil
}

func (s *Scheduler) refreshKeyRate(refresher KeyRateRefresher) {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	rate, err := refresher.RefreshKeyRate(ctx)
	if err != nil {
		s.log.Warnf("Scheduled key rate refresh failed: %v", err)
		return
	}
	s.log.Infof("Scheduled key rate refresh: %s%%", rate)
}

// Start runs the scheduler in its own goroutine
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts the scheduler and waits for running jobs
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}
