package catalog

import (
	"strings"
	"time"
)

// RawRecord is a single unvalidated JSON object as received from a data source.
type RawRecord []byte

// Kind tells events and competitions apart.
type Kind string

const (
	KindEvent       Kind = "event"
	KindCompetition Kind = "competition"
)

// ParseKind accepts a kind name in any case. An empty name means KindEvent.
func ParseKind(s string) (Kind, bool) {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case "", KindEvent:
		return KindEvent, true
	case KindCompetition:
		return KindCompetition, true
	}
	return "", false
}

// Status values the pipeline knows about. Anything else passes through untouched.
const (
	StatusDraft     = "draft"
	StatusPublished = "published"
	StatusActive    = "active"
	StatusCompleted = "completed"
)

type Location struct {
	Venue string `json:"venue"`
	City  string `json:"city"`
}

// Schedule holds the merged start instant. TimeOfDay keeps the raw time string
// when the source sent it separately from the date. Floating is set when the
// source gave no UTC offset: Start then carries the wall clock as written,
// stored in UTC, and its calendar date is the item's own date in any zone.
type Schedule struct {
	Start     time.Time `json:"start"`
	TimeOfDay string    `json:"time_of_day,omitempty"`
	Floating  bool      `json:"floating,omitempty"`
}

// IsZero reports whether the source gave no usable date.
func (s Schedule) IsZero() bool { return s.Start.IsZero() }

// Participants is surfaced as-is; Current may exceed Max.
type Participants struct {
	Current int `json:"current"`
	Max     int `json:"max"`
}

type Pricing struct {
	IsFree bool    `json:"is_free"`
	Price  float64 `json:"price"`
}

// Item is the canonical, immutable representation of an event or competition.
type Item struct {
	ID                string       `json:"id"`
	Kind              Kind         `json:"kind"`
	Title             string       `json:"title"`
	Description       string       `json:"description"`
	Category          string       `json:"category"`
	Location          Location     `json:"location"`
	Schedule          Schedule     `json:"schedule"`
	Participants      Participants `json:"participants"`
	Pricing           Pricing      `json:"pricing"`
	Artists           []string     `json:"artists"`
	Status            string       `json:"status"`
	RemainingCapacity int          `json:"remaining_capacity"`
	Prize             float64      `json:"prize,omitempty"`
	ImageURL          string       `json:"image_url,omitempty"`
	CreatedAt         time.Time    `json:"created_at"`
}
