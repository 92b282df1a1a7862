package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAllocator struct {
	calls []time.Time
	err   error
}

func (f *fakeAllocator) AllocateYearlyCredits(_ context.Context, now time.Time) (int, error) {
	f.calls = append(f.calls, now)
	return 1, f.err
}

type fakeCleaner struct{}

func (fakeCleaner) DeleteExpired(context.Context, time.Time) (int64, error) { return 0, nil }

func TestRegisterAddsJobs(t *testing.T) {
	r := New(context.Background())
	require.NoError(t, r.Register(&fakeAllocator{}, fakeCleaner{}))
	assert.Len(t, r.cron.Entries(), 2)

	r = New(nil)
	require.NoError(t, r.Register(nil, nil))
	assert.Empty(t, r.cron.Entries())
}

func TestRunNowUsesUTCClock(t *testing.T) {
	fixed := time.Date(2025, 4, 1, 10, 0, 0, 0, time.UTC)
	r := New(context.Background())
	r.now = func() time.Time { return fixed }

	alloc := &fakeAllocator{}
	r.RunNow(alloc)
	alloc.err = errors.New("one user failed")
	r.RunNow(alloc)

	require.Len(t, alloc.calls, 2)
	assert.Equal(t, fixed, alloc.calls[0])
}

func TestHourlySchedule(t *testing.T) {
	sched, err := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow).Parse(SpecYearlyCredits)
	require.NoError(t, err)
	from := time.Date(2025, 4, 1, 10, 15, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2025, 4, 1, 11, 0, 0, 0, time.UTC), sched.Next(from))
}
