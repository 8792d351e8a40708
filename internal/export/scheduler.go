package export

import (
	"context"
	"sync"

	"github.com/robfig/cron/v3"

	apperrors "github.com/fourohfour/monetizer/internal/errors"
	"github.com/fourohfour/monetizer/internal/logging"
	"github.com/fourohfour/monetizer/internal/page"
	"github.com/fourohfour/monetizer/internal/store"
)

// PageSource lists and loads stored pages.
type PageSource interface {
	List(ctx context.Context) ([]store.Summary, error)
	Get(ctx context.Context, id string) (*page.Config, error)
}

// Result summarizes one scheduled run.
type Result struct {
	Exported int
	Skipped  int
	Failed   int
}

// Scheduler re-exports every non-archived stored page on a cron schedule so
// plan and config changes reach the deployed bundles.
type Scheduler struct {
	exporter *Exporter
	pages    PageSource
	hosts    []Host
	logger   logging.Logger

	cron    *cron.Cron
	mu      sync.Mutex
	running bool
	last    Result
}

// NewScheduler validates spec (standard five-field cron syntax or a
// descriptor such as "@hourly") and prepares the job. Start begins it.
func NewScheduler(spec string, exporter *Exporter, pages PageSource, hosts []Host, logger logging.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = logging.Nop()
	}
	s := &Scheduler{
		exporter: exporter,
		pages:    pages,
		hosts:    hosts,
		logger:   logger.WithComponent("export_scheduler"),
		cron:     cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
	}
	if _, err := s.cron.AddFunc(spec, func() {
		if _, err := s.RunOnce(context.Background()); err != nil {
			s.logger.Error(context.Background(), err, "Scheduled export failed")
		}
	}); err != nil {
		ce := apperrors.NewConfigError(apperrors.ErrCodeConfigInvalid, "invalid export schedule: "+spec)
		ce.Cause = err
		return nil, ce
	}
	return s, nil
}

// Start runs the schedule in the background.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.running = true
	s.cron.Start()
	s.logger.Info(context.Background(), "Export scheduler started", "hosts", len(s.hosts))
}

// Stop halts the schedule and waits for a running export to finish or ctx
// to end.
func (s *Scheduler) Stop(ctx context.Context) {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.mu.Unlock()

	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
	}
}

// Last returns the result of the most recent run.
func (s *Scheduler) Last() Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// RunOnce exports every non-archived page immediately. A failing page is
// logged and counted; only a listing failure is returned.
func (s *Scheduler) RunOnce(ctx context.Context) (Result, error) {
	var res Result

	list, err := s.pages.List(ctx)
	if err != nil {
		return res, err
	}

	for _, sum := range list {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if sum.Status == page.StatusArchived {
			res.Skipped++
			continue
		}
		cfg, err := s.pages.Get(ctx, sum.ID)
		if err != nil {
			s.logger.Warn(ctx, err, "Skipping page", "page_id", sum.ID)
			res.Failed++
			continue
		}
		if _, err := s.exporter.Export(ctx, cfg, s.hosts); err != nil {
			s.logger.Warn(ctx, err, "Export failed", "page_id", sum.ID)
			res.Failed++
			continue
		}
		res.Exported++
	}

	s.mu.Lock()
	s.last = res
	s.mu.Unlock()

	s.logger.Info(ctx, "Export run finished", "exported", res.Exported, "skipped", res.Skipped, "failed", res.Failed)
	return res, nil
}
