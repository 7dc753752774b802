package catalog

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

// Raw key aliases, in priority order. Every field is decoded in exactly one
// place below; nothing else in the module reads raw JSON.
var (
	idKeys            = []string{"id", "_id", "event_id", "competition_id"}
	kindKeys          = []string{"kind"}
	titleKeys         = []string{"title", "name"}
	descriptionKeys   = []string{"description", "details"}
	categoryKeys      = []string{"category", "genre", "type"}
	venueKeys         = []string{"venue", "venue_name", "location.venue"}
	cityKeys          = []string{"city", "location.city"}
	dateKeys          = []string{"event_date", "date", "start_date", "competition_date"}
	timeKeys          = []string{"event_time", "time", "start_time"}
	currentKeys       = []string{"current_participants", "participants_count"}
	maxKeys           = []string{"max_participants", "capacity"}
	freeKeys          = []string{"is_free"}
	ticketPriceKeys   = []string{"ticket_price", "price", "entry_fee"}
	startingPriceKeys = []string{"starting_price", "min_price", "price_from"}
	artistKeys        = []string{"artists", "lineup", "performers"}
	statusKeys        = []string{"status"}
	createdKeys       = []string{"created_at", "createdAt"}
	prizeKeys         = []string{"prize", "prize_pool"}
	imageKeys         = []string{"image_url", "image", "banner"}

	// Presence of any of these marks a record without an explicit kind as a competition.
	competitionHints = []string{"prize", "prize_pool", "competition_id", "competition_date", "competition_type"}
)

var (
	dateLayouts = []string{
		time.RFC3339Nano,
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		"2006-01-02T15:04",
		"2006-01-02",
	}
	timeLayouts = []string{"15:04:05", "15:04", "3:04 PM", "3:04PM", "3PM"}
)

// Normalize converts one raw record into an Item. The boolean is false when the
// record is not a JSON object or carries no id; every other missing field
// resolves to its default.
func Normalize(raw RawRecord) (Item, bool) {
	root := gjson.ParseBytes(raw)
	if !root.IsObject() {
		return Item{}, false
	}

	id, ok := decodeID(root)
	if !ok {
		return Item{}, false
	}

	participants := decodeParticipants(root)
	return Item{
		ID:                id,
		Kind:              decodeKind(root),
		Title:             decodeString(root, titleKeys),
		Description:       decodeString(root, descriptionKeys),
		Category:          decodeString(root, categoryKeys),
		Location:          decodeLocation(root),
		Schedule:          decodeSchedule(root),
		Participants:      participants,
		Pricing:           decodePricing(root),
		Artists:           decodeArtists(root),
		Status:            decodeString(root, statusKeys),
		RemainingCapacity: participants.Max - participants.Current,
		Prize:             decodeAmount(root, prizeKeys),
		ImageURL:          decodeString(root, imageKeys),
		CreatedAt:         decodeTimestamp(root, createdKeys),
	}, true
}

// NormalizeAll normalizes a batch, preserving order and dropping records that
// cannot be identified.
func NormalizeAll(raws []RawRecord) []Item {
	items := make([]Item, 0, len(raws))
	for _, raw := range raws {
		if item, ok := Normalize(raw); ok {
			items = append(items, item)
		}
	}
	return items
}

// first returns the first alias present with a non-null value.
func first(root gjson.Result, keys []string) gjson.Result {
	for _, k := range keys {
		if v := root.Get(k); v.Exists() && v.Type != gjson.Null {
			return v
		}
	}
	return gjson.Result{}
}

func decodeID(root gjson.Result) (string, bool) {
	v := first(root, idKeys)
	switch v.Type {
	case gjson.String:
		id := strings.TrimSpace(v.Str)
		return id, id != ""
	case gjson.Number:
		return v.Raw, true
	}
	return "", false
}

func decodeKind(root gjson.Result) Kind {
	switch Kind(strings.ToLower(decodeString(root, kindKeys))) {
	case KindCompetition:
		return KindCompetition
	case KindEvent:
		return KindEvent
	}
	for _, k := range competitionHints {
		if root.Get(k).Exists() {
			return KindCompetition
		}
	}
	return KindEvent
}

func decodeString(root gjson.Result, keys []string) string {
	v := first(root, keys)
	switch v.Type {
	case gjson.String:
		return strings.TrimSpace(v.Str)
	case gjson.Number:
		return v.Raw
	}
	return ""
}

func decodeLocation(root gjson.Result) Location {
	return Location{
		Venue: decodeString(root, venueKeys),
		City:  decodeString(root, cityKeys),
	}
}

// number accepts JSON numbers and numeric strings.
func number(v gjson.Result) (float64, bool) {
	switch v.Type {
	case gjson.Number:
		return v.Num, true
	case gjson.String:
		f, err := strconv.ParseFloat(strings.TrimSpace(v.Str), 64)
		return f, err == nil && !math.IsNaN(f) && !math.IsInf(f, 0)
	}
	return 0, false
}

func firstNumber(root gjson.Result, keys []string) (float64, bool) {
	for _, k := range keys {
		if f, ok := number(root.Get(k)); ok {
			return f, true
		}
	}
	return 0, false
}

func decodeAmount(root gjson.Result, keys []string) float64 {
	f, _ := firstNumber(root, keys)
	if f < 0 {
		return 0
	}
	return f
}

func decodeCount(root gjson.Result, keys []string) int {
	f := decodeAmount(root, keys)
	if f > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(f)
}

func decodeParticipants(root gjson.Result) Participants {
	return Participants{
		Current: decodeCount(root, currentKeys),
		Max:     decodeCount(root, maxKeys),
	}
}

// decodePricing: explicit free flag, else ticket price, else starting price, else zero.
func decodePricing(root gjson.Result) Pricing {
	if first(root, freeKeys).Bool() {
		return Pricing{IsFree: true}
	}
	if _, ok := firstNumber(root, ticketPriceKeys); ok {
		return Pricing{Price: decodeAmount(root, ticketPriceKeys)}
	}
	return Pricing{Price: decodeAmount(root, startingPriceKeys)}
}

// decodeArtists always returns a non-nil slice. Arrays may arrive as JSON or as a
// string holding a JSON array; anything unparseable yields an empty slice.
func decodeArtists(root gjson.Result) []string {
	artists := []string{}

	v := first(root, artistKeys)
	if v.Type == gjson.String {
		s := strings.TrimSpace(v.Str)
		if !gjson.Valid(s) {
			return artists
		}
		v = gjson.Parse(s)
	}
	if !v.IsArray() {
		return artists
	}

	v.ForEach(func(_, a gjson.Result) bool {
		if a.IsObject() {
			a = a.Get("name")
		}
		if a.Type == gjson.String {
			if name := strings.TrimSpace(a.Str); name != "" {
				artists = append(artists, name)
			}
		}
		return true
	})
	return artists
}

// parseDate reports floating for every layout without a zone offset.
func parseDate(s string) (t time.Time, floating, ok bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, layout != time.RFC3339Nano, true
		}
	}
	return time.Time{}, false, false
}

func parseClock(s string) (time.Time, bool) {
	s = strings.ToUpper(s)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// decodeSchedule merges a date and an optional separate time of day. A valid
// time string replaces whatever clock the date carried, on the date's calendar day.
func decodeSchedule(root gjson.Result) Schedule {
	var s Schedule
	date, floating, ok := parseDate(decodeString(root, dateKeys))
	if !ok {
		return s
	}
	s.Start = date
	s.Floating = floating

	tod := decodeString(root, timeKeys)
	if tod == "" {
		return s
	}
	s.TimeOfDay = tod
	if clock, ok := parseClock(tod); ok {
		y, m, d := date.Date()
		s.Start = time.Date(y, m, d, clock.Hour(), clock.Minute(), clock.Second(), 0, date.Location())
	}
	return s
}

// millisEpoch separates millisecond epochs from second epochs. As seconds it
// would fall past the year 33000.
const millisEpoch = 1e12

func decodeTimestamp(root gjson.Result, keys []string) time.Time {
	v := first(root, keys)
	if v.Type == gjson.Number {
		switch {
		case v.Num > math.MaxInt64/1e3:
			return time.Time{}
		case v.Num > millisEpoch:
			return time.UnixMilli(int64(v.Num)).UTC()
		default:
			return time.Unix(int64(v.Num), 0).UTC()
		}
	}
	t, _, _ := parseDate(decodeString(root, keys))
	return t
}
