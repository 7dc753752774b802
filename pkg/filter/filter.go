// Package filter narrows a normalized catalog with independent, conjunctive
// predicates. Every predicate is a no-op when its option is empty or "all".
package filter

import (
	"strings"
	"time"

	"github.com/gigscope/gigscope/pkg/catalog"
)

// All disables the category, city and status predicates.
const All = "all"

// Criteria configures a Filter run.
type Criteria struct {
	SearchText string
	Category   string
	City       string

	// Statuses lists the allowed statuses. Empty means published only.
	Statuses []string

	// Cutoff overrides the reference instant for the date predicate.
	Cutoff time.Time
	// IncludePast disables the date predicate.
	IncludePast bool
}

// Predicate reports whether an item survives one criterion.
type Predicate func(catalog.Item) bool

// Filter returns a fresh slice holding the items that satisfy every predicate
// built from c. ref stands in for "today" when c.Cutoff is zero.
func Filter(items []catalog.Item, c Criteria, ref time.Time) []catalog.Item {
	return Apply(items, Predicates(c, ref)...)
}

// Apply keeps the items accepted by all preds. The input is never modified.
func Apply(items []catalog.Item, preds ...Predicate) []catalog.Item {
	out := make([]catalog.Item, 0, len(items))
	for _, it := range items {
		if matchesAll(it, preds) {
			out = append(out, it)
		}
	}
	return out
}

func matchesAll(it catalog.Item, preds []Predicate) bool {
	for _, p := range preds {
		if !p(it) {
			return false
		}
	}
	return true
}

// Predicates builds the active predicates for c. Disabled options contribute nothing.
func Predicates(c Criteria, ref time.Time) []Predicate {
	var preds []Predicate
	if p := Search(c.SearchText); p != nil {
		preds = append(preds, p)
	}
	if p := Category(c.Category); p != nil {
		preds = append(preds, p)
	}
	if p := City(c.City); p != nil {
		preds = append(preds, p)
	}
	if p := Status(c.Statuses); p != nil {
		preds = append(preds, p)
	}
	if !c.IncludePast {
		cutoff := c.Cutoff
		if cutoff.IsZero() {
			cutoff = ref
		}
		if p := NotBefore(cutoff); p != nil {
			preds = append(preds, p)
		}
	}
	return preds
}

func disabled(v string) bool {
	v = strings.TrimSpace(v)
	return v == "" || strings.EqualFold(v, All)
}

// Search matches text case-insensitively against title, description, venue,
// city and every artist. Any single field matching is enough.
func Search(text string) Predicate {
	needle := strings.ToLower(strings.TrimSpace(text))
	if needle == "" {
		return nil
	}
	contains := func(field string) bool {
		return strings.Contains(strings.ToLower(field), needle)
	}
	return func(it catalog.Item) bool {
		if contains(it.Title) || contains(it.Description) || contains(it.Location.Venue) || contains(it.Location.City) {
			return true
		}
		for _, a := range it.Artists {
			if contains(a) {
				return true
			}
		}
		return false
	}
}

// Category matches the category tag exactly.
func Category(category string) Predicate {
	if disabled(category) {
		return nil
	}
	return func(it catalog.Item) bool { return it.Category == category }
}

// City matches the location city exactly.
func City(city string) Predicate {
	if disabled(city) {
		return nil
	}
	return func(it catalog.Item) bool { return it.Location.City == city }
}

// Status accepts the listed statuses. An empty list means published only and
// a list containing "all" disables the predicate.
func Status(statuses []string) Predicate {
	allowed := make(map[string]bool, len(statuses))
	for _, s := range statuses {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if strings.EqualFold(s, All) {
			return nil
		}
		allowed[s] = true
	}
	if len(allowed) == 0 {
		allowed[catalog.StatusPublished] = true
	}
	return func(it catalog.Item) bool { return allowed[it.Status] }
}

// NotBefore drops items scheduled on a calendar day before cutoff's day, in
// cutoff's location. Same-day items are kept and undated items are dropped.
// A floating schedule is compared on its own calendar date.
func NotBefore(cutoff time.Time) Predicate {
	if cutoff.IsZero() {
		return nil
	}
	day := calendarDay(cutoff, cutoff.Location())
	return func(it catalog.Item) bool {
		if it.Schedule.IsZero() {
			return false
		}
		loc := cutoff.Location()
		if it.Schedule.Floating {
			loc = it.Schedule.Start.Location()
		}
		return !calendarDay(it.Schedule.Start, loc).Before(day)
	}
}

func calendarDay(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
