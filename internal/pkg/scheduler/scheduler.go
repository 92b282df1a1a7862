// Package scheduler runs the site's periodic jobs.
package scheduler

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/robfig/cron/v3"
)

const (
	// SpecYearlyCredits runs at the top of every hour.
	SpecYearlyCredits = "0 0 * * * *"
	// SpecVerificationCleanup runs daily at 03:30 UTC.
	SpecVerificationCleanup = "0 30 3 * * *"
)

// YearlyAllocator hands out the monthly share of annual plans.
type YearlyAllocator interface {
	AllocateYearlyCredits(ctx context.Context, now time.Time) (int, error)
}

// VerificationCleaner drops expired login codes.
type VerificationCleaner interface {
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type Runner struct {
	cron    *cron.Cron
	baseCtx context.Context
	now     func() time.Time
}

func New(baseCtx context.Context) *Runner {
	if baseCtx == nil {
		baseCtx = context.Background()
	}
	return &Runner{
		cron: cron.New(
			cron.WithSeconds(),
			cron.WithLocation(time.UTC),
			cron.WithChain(cron.Recover(cron.DefaultLogger), cron.SkipIfStillRunning(cron.DefaultLogger)),
		),
		baseCtx: baseCtx,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (r *Runner) Add(spec string, job func(context.Context)) (cron.EntryID, error) {
	return r.cron.AddFunc(spec, func() {
		job(r.baseCtx)
	})
}

// Register adds the standard jobs. Either dependency may be nil.
func (r *Runner) Register(credits YearlyAllocator, verifications VerificationCleaner) error {
	if credits != nil {
		if _, err := r.Add(SpecYearlyCredits, func(ctx context.Context) {
			r.allocate(ctx, credits)
		}); err != nil {
			return err
		}
	}
	if verifications != nil {
		if _, err := r.Add(SpecVerificationCleanup, func(ctx context.Context) {
			n, err := verifications.DeleteExpired(ctx, r.now())
			if err != nil {
				log.Errorf("[Scheduler] verification cleanup failed: %v", err)
				return
			}
			log.Debugf("[Scheduler] removed %d expired verification codes", n)
		}); err != nil {
			return err
		}
	}
	return nil
}

func (r *Runner) allocate(ctx context.Context, credits YearlyAllocator) {
	n, err := credits.AllocateYearlyCredits(ctx, r.now())
	if err != nil {
		log.Errorf("[Scheduler] yearly allocation finished with errors (%d granted): %v", n, err)
		return
	}
	if n > 0 {
		log.Infof("[Scheduler] yearly allocation granted %d monthly credits", n)
	}
}

// RunNow executes the yearly allocation immediately, used at startup to
// catch up on hours the process was down.
func (r *Runner) RunNow(credits YearlyAllocator) {
	r.allocate(r.baseCtx, credits)
}

func (r *Runner) Start() {
	log.Info("[Scheduler] started")
	r.cron.Start()
}

func (r *Runner) Stop() {
	ctx := r.cron.Stop()
	<-ctx.Done()
	log.Info("[Scheduler] stopped")
}
