// Package browse owns the presented catalog: it runs generation-tagged fetch
// cycles over the configured sources and serves filtered, sorted views of the
// latest applied result.
package browse

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/gigscope/gigscope/pkg/catalog"
	"github.com/gigscope/gigscope/pkg/filter"
	"github.com/gigscope/gigscope/pkg/notify"
	"github.com/gigscope/gigscope/pkg/rank"
	"github.com/gigscope/gigscope/pkg/source"
	"golang.org/x/sync/errgroup"
)

// Logger abstracts logging so callers can plug in logrus or anything with
// the same methods.
type Logger interface {
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
	Debugf(format string, args ...interface{})
}

type nopLogger struct{}

func (nopLogger) Infof(string, ...interface{})  {}
func (nopLogger) Warnf(string, ...interface{})  {}
func (nopLogger) Errorf(string, ...interface{}) {}
func (nopLogger) Debugf(string, ...interface{}) {}

// Observer receives cycle outcomes, e.g. for metrics. Optional.
type Observer interface {
	CycleFinished(o Outcome)
}

// Config holds the collaborators of a Catalog.
type Config struct {
	Sources  []source.Source
	Notifier notify.Notifier
	Log      Logger
	Observer Observer
}

// Outcome describes how one fetch cycle ended.
type Outcome struct {
	Generation uint64
	// Applied is false when a newer cycle was issued before this one resolved.
	Applied bool
	Items   int
	Dropped int
	Err     error
}

// Catalog holds the latest applied collection. It is safe for concurrent use.
type Catalog struct {
	cfg Config

	mu        sync.RWMutex
	issued    uint64
	applied   uint64
	items     []catalog.Item
	lastErr   error
	fetchedAt time.Time
}

func New(cfg Config) *Catalog {
	if cfg.Log == nil {
		cfg.Log = nopLogger{}
	}
	if cfg.Notifier == nil {
		cfg.Notifier = notify.Discard
	}
	return &Catalog{cfg: cfg, items: []catalog.Item{}}
}

// Refresh runs one fetch cycle to completion.
func (c *Catalog) Refresh(ctx context.Context) Outcome {
	gen := c.next()
	return c.run(ctx, gen)
}

// RefreshAsync issues a new cycle immediately and resolves it in the
// background. The generation is taken before returning, so cycles issued
// one after another are ordered even if they resolve out of order.
func (c *Catalog) RefreshAsync(ctx context.Context) (uint64, <-chan Outcome) {
	gen := c.next()
	done := make(chan Outcome, 1)
	go func() {
		done <- c.run(ctx, gen)
		close(done)
	}()
	return gen, done
}

func (c *Catalog) next() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.issued++
	return c.issued
}

func (c *Catalog) run(ctx context.Context, gen uint64) Outcome {
	raws, err := c.fetchAll(ctx)

	var items []catalog.Item
	if err == nil {
		items = catalog.NormalizeAll(raws)
	}
	out := c.apply(gen, items, len(raws), err)

	switch {
	case !out.Applied:
		c.cfg.Log.Debugf("Discarding stale fetch cycle %d", gen)
	case out.Err != nil:
		c.cfg.Log.Errorf("Fetch cycle %d failed: %v", gen, out.Err)
		c.cfg.Notifier.Notify(notify.Error, "Could not load catalog", out.Err.Error())
	default:
		if out.Dropped > 0 {
			c.cfg.Log.Debugf("Fetch cycle %d dropped %d unidentifiable records", gen, out.Dropped)
		}
		c.cfg.Log.Infof("Fetch cycle %d loaded %d items", gen, out.Items)
	}

	if c.cfg.Observer != nil {
		c.cfg.Observer.CycleFinished(out)
	}
	return out
}

// fetchAll fetches every source concurrently. Any failure fails the cycle.
func (c *Catalog) fetchAll(ctx context.Context) ([]catalog.RawRecord, error) {
	results := make([][]catalog.RawRecord, len(c.cfg.Sources))

	g, gctx := errgroup.WithContext(ctx)
	for i, s := range c.cfg.Sources {
		i, s := i, s
		g.Go(func() error {
			records, err := s.Fetch(gctx)
			if err != nil {
				return err
			}
			results[i] = records
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []catalog.RawRecord
	for _, r := range results {
		all = append(all, r...)
	}
	return all, nil
}

// apply installs a cycle's result when gen is still the latest issued. A failed
// cycle replaces the set with an empty one rather than keeping stale data.
func (c *Catalog) apply(gen uint64, items []catalog.Item, rawCount int, err error) Outcome {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := Outcome{Generation: gen, Err: err}
	if gen != c.issued {
		return out
	}
	out.Applied = true
	c.applied = gen
	c.fetchedAt = time.Now()
	c.lastErr = err
	if err != nil {
		c.items = []catalog.Item{}
		return out
	}
	c.items = items
	out.Items = len(items)
	out.Dropped = rawCount - len(items)
	return out
}

// Items returns a copy of the current collection.
func (c *Catalog) Items() []catalog.Item {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]catalog.Item, len(c.items))
	copy(out, c.items)
	return out
}

// Status reports the generation, time and error of the last applied cycle.
func (c *Catalog) Status() (generation uint64, fetchedAt time.Time, err error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.applied, c.fetchedAt, c.lastErr
}

// View filters and sorts the current collection.
func (c *Catalog) View(criteria filter.Criteria, sortKey string, ref time.Time) []catalog.Item {
	c.mu.RLock()
	items := c.items
	c.mu.RUnlock()
	return rank.Sort(filter.Filter(items, criteria, ref), sortKey)
}

// Lookup finds an item by kind and id in the current collection. Events and
// competitions are numbered independently, so the id alone is ambiguous.
func (c *Catalog) Lookup(kind catalog.Kind, id string) (catalog.Item, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, it := range c.items {
		if it.Kind == kind && it.ID == id {
			return it, true
		}
	}
	return catalog.Item{}, false
}

// Categories lists the distinct non-empty categories in the current collection.
func (c *Catalog) Categories() []string {
	return c.distinct(func(it catalog.Item) string { return it.Category })
}

// Cities lists the distinct non-empty cities in the current collection.
func (c *Catalog) Cities() []string {
	return c.distinct(func(it catalog.Item) string { return it.Location.City })
}

func (c *Catalog) distinct(field func(catalog.Item) string) []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	seen := make(map[string]struct{})
	out := []string{}
	for _, it := range c.items {
		v := field(it)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
