// Package rank orders a filtered catalog by a configurable key.
package rank

import (
	"sort"
	"strconv"

	"github.com/gigscope/gigscope/pkg/catalog"
)

// Supported sort keys.
const (
	Recency      = "recency"
	StartDate    = "startDate"
	Popularity   = "popularity"
	Participants = "participants"
	Prize        = "prize"
	Price        = "price"

	// PrizeOrParticipants ranks competitions by prize and events by participants.
	PrizeOrParticipants = "prizeOrParticipants"
)

type less func(a, b catalog.Item) bool

var orderings = map[string]less{
	Recency: func(a, b catalog.Item) bool {
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return byID(a, b)
	},
	StartDate: func(a, b catalog.Item) bool {
		if !a.Schedule.Start.Equal(b.Schedule.Start) {
			return a.Schedule.Start.Before(b.Schedule.Start)
		}
		return byID(a, b)
	},
	Popularity:   byParticipants,
	Participants: byParticipants,
	Prize:        descending(func(it catalog.Item) float64 { return it.Prize }),
	Price:        descending(func(it catalog.Item) float64 { return it.Pricing.Price }),

	PrizeOrParticipants: descending(func(it catalog.Item) float64 {
		if it.Kind == catalog.KindCompetition {
			return it.Prize
		}
		return float64(it.Participants.Current)
	}),
}

var byParticipants = descending(func(it catalog.Item) float64 { return float64(it.Participants.Current) })

func descending(field func(catalog.Item) float64) less {
	return func(a, b catalog.Item) bool {
		if fa, fb := field(a), field(b); fa != fb {
			return fa > fb
		}
		return byID(a, b)
	}
}

// byID breaks ties on id, then on kind, since an event and a competition may
// share an id.
func byID(a, b catalog.Item) bool {
	if a.ID != b.ID {
		return idLess(a.ID, b.ID)
	}
	return a.Kind < b.Kind
}

// idLess sorts integer ids numerically ahead of every other id. Non-integer
// ids compare lexically, as do integers of equal value such as "7" and "07".
func idLess(a, b string) bool {
	na, errA := strconv.ParseInt(a, 10, 64)
	nb, errB := strconv.ParseInt(b, 10, 64)
	switch {
	case errA == nil && errB == nil:
		if na != nb {
			return na < nb
		}
	case errA == nil:
		return true
	case errB == nil:
		return false
	}
	return a < b
}

// Keys lists the supported sort keys.
func Keys() []string {
	keys := make([]string, 0, len(orderings))
	for k := range orderings {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Supported reports whether key names a known ordering.
func Supported(key string) bool {
	_, ok := orderings[key]
	return ok
}

// Sort returns a stably sorted copy of items. An unknown or empty key keeps
// the input order.
func Sort(items []catalog.Item, key string) []catalog.Item {
	out := make([]catalog.Item, len(items))
	copy(out, items)

	if fn, ok := orderings[key]; ok {
		sort.SliceStable(out, func(i, j int) bool { return fn(out[i], out[j]) })
	}
	return out
}
