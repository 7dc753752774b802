package browse

import (
	"context"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"
)

// cronParser accepts standard 5-field expressions, an optional seconds field
// and descriptors such as "@every 15m".
var cronParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// Scheduler issues a fetch cycle on a cron schedule.
type Scheduler struct {
	cron *cron.Cron
	stop chan struct{}
	once sync.Once
	done chan struct{}
}

// Schedule starts refreshing c on expr until Stop is called or ctx is done.
func (c *Catalog) Schedule(ctx context.Context, expr string) (*Scheduler, error) {
	cr := cron.New(cron.WithParser(cronParser))
	_, err := cr.AddFunc(expr, func() {
		c.cfg.Log.Debugf("Scheduled refresh firing (%s)", expr)
		c.Refresh(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("invalid refresh schedule %q: %w", expr, err)
	}
	cr.Start()

	s := &Scheduler{cron: cr, stop: make(chan struct{}), done: make(chan struct{})}
	go func() {
		defer close(s.done)
		select {
		case <-ctx.Done():
		case <-s.stop:
		}
		<-s.cron.Stop().Done()
	}()
	return s, nil
}

// Stop halts the schedule and waits for a running refresh to finish. It is
// safe to call more than once, and after ctx is done.
func (s *Scheduler) Stop() {
	s.once.Do(func() { close(s.stop) })
	<-s.done
}
