package catalog

import (
	"encoding/json"
	"math"
	"reflect"
	"testing"
	"time"
)

func TestNormalizeTicketScenario(t *testing.T) {
	item, ok := Normalize(RawRecord(`{"id":1,"artists":"[\"A\",\"B\"]","ticket_price":5000}`))
	if !ok {
		t.Fatal("expected record to normalize")
	}
	if item.ID != "1" {
		t.Fatalf("expected id 1, got %q", item.ID)
	}
	if !reflect.DeepEqual(item.Artists, []string{"A", "B"}) {
		t.Fatalf("unexpected artists: %#v", item.Artists)
	}
	if item.Pricing != (Pricing{IsFree: false, Price: 5000}) {
		t.Fatalf("unexpected pricing: %+v", item.Pricing)
	}
}

func TestNormalizeDefaults(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "id only", raw: `{"id":"evt-1"}`},
		{name: "nulls everywhere", raw: `{"id":"evt-1","artists":null,"venue":null,"city":null,"ticket_price":null,"event_date":null}`},
		{name: "wrong types", raw: `{"id":"evt-1","artists":42,"venue":{},"max_participants":"many","ticket_price":"n/a"}`},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			item, ok := Normalize(RawRecord(tc.raw))
			if !ok {
				t.Fatal("expected record to normalize")
			}
			if item.Artists == nil || len(item.Artists) != 0 {
				t.Fatalf("expected empty non-nil artists, got %#v", item.Artists)
			}
			if item.Pricing != (Pricing{}) {
				t.Fatalf("expected zero pricing, got %+v", item.Pricing)
			}
			if item.Location != (Location{}) {
				t.Fatalf("expected empty location, got %+v", item.Location)
			}
			if !item.Schedule.IsZero() {
				t.Fatalf("expected zero schedule, got %v", item.Schedule.Start)
			}
			if item.Kind != KindEvent {
				t.Fatalf("expected event kind, got %q", item.Kind)
			}
		})
	}
}

func TestNormalizeRejectsUnidentified(t *testing.T) {
	for _, raw := range []string{`{"title":"no id"}`, `{"id":""}`, `{"id":null}`, `[1,2]`, `not json`, ``} {
		if _, ok := Normalize(RawRecord(raw)); ok {
			t.Errorf("expected %q to be rejected", raw)
		}
	}
}

func TestNormalizeArtists(t *testing.T) {
	tests := []struct {
		raw    string
		expect []string
	}{
		{`{"id":1,"artists":["Wizkid Essence","Tems"]}`, []string{"Wizkid Essence", "Tems"}},
		{`{"id":1,"artists":"[\"A\", \" \", \"B\"]"}`, []string{"A", "B"}},
		{`{"id":1,"artists":"[broken"}`, []string{}},
		{`{"id":1,"artists":"\"just a string\""}`, []string{}},
		{`{"id":1,"lineup":[{"name":"Burna"},{"role":"dj"}]}`, []string{"Burna"}},
		{`{"id":1}`, []string{}},
	}

	for _, tc := range tests {
		item, ok := Normalize(RawRecord(tc.raw))
		if !ok {
			t.Fatalf("expected %s to normalize", tc.raw)
		}
		if !reflect.DeepEqual(item.Artists, tc.expect) {
			t.Errorf("%s: want %#v, got %#v", tc.raw, tc.expect, item.Artists)
		}
	}
}

func TestNormalizePricingPriority(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		expect Pricing
	}{
		{"free flag wins", `{"id":1,"is_free":true,"ticket_price":5000,"starting_price":100}`, Pricing{IsFree: true}},
		{"ticket price", `{"id":1,"is_free":false,"ticket_price":"2500","starting_price":100}`, Pricing{Price: 2500}},
		{"starting price", `{"id":1,"starting_price":1500}`, Pricing{Price: 1500}},
		{"entry fee alias", `{"id":1,"entry_fee":300}`, Pricing{Price: 300}},
		{"negative clamped", `{"id":1,"ticket_price":-5}`, Pricing{}},
		{"none", `{"id":1}`, Pricing{}},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			item, _ := Normalize(RawRecord(tc.raw))
			if item.Pricing != tc.expect {
				t.Fatalf("want %+v, got %+v", tc.expect, item.Pricing)
			}
		})
	}
}

func TestNormalizeCapacityOverflowTolerated(t *testing.T) {
	item, _ := Normalize(RawRecord(`{"id":7,"current_participants":12,"max_participants":10}`))
	if item.RemainingCapacity != -2 {
		t.Fatalf("expected remaining -2, got %d", item.RemainingCapacity)
	}
	if item.Participants != (Participants{Current: 12, Max: 10}) {
		t.Fatalf("participants altered: %+v", item.Participants)
	}
}

func TestNormalizeSchedule(t *testing.T) {
	tests := []struct {
		raw    string
		expect time.Time
		tod    string
	}{
		{`{"id":1,"event_date":"2026-12-01","event_time":"19:30"}`, time.Date(2026, 12, 1, 19, 30, 0, 0, time.UTC), "19:30"},
		{`{"id":1,"event_date":"2026-12-01T10:00:00Z","event_time":"8:15 pm"}`, time.Date(2026, 12, 1, 20, 15, 0, 0, time.UTC), "8:15 pm"},
		{`{"id":1,"date":"2026-12-01T10:00:00Z"}`, time.Date(2026, 12, 1, 10, 0, 0, 0, time.UTC), ""},
		{`{"id":1,"event_date":"2026-12-01","event_time":"late"}`, time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC), "late"},
	}

	for _, tc := range tests {
		item, _ := Normalize(RawRecord(tc.raw))
		if !item.Schedule.Start.Equal(tc.expect) {
			t.Errorf("%s: want %v, got %v", tc.raw, tc.expect, item.Schedule.Start)
		}
		if item.Schedule.TimeOfDay != tc.tod {
			t.Errorf("%s: want time of day %q, got %q", tc.raw, tc.tod, item.Schedule.TimeOfDay)
		}
	}
}

func TestNormalizeScheduleFloating(t *testing.T) {
	tests := map[string]bool{
		`{"id":1,"event_date":"2026-12-01"}`:                              true,
		`{"id":1,"event_date":"2026-12-01 19:00:00"}`:                     true,
		`{"id":1,"event_date":"2026-12-01","event_time":"19:30"}`:         true,
		`{"id":1,"event_date":"2026-12-01T19:00:00+01:00"}`:               false,
		`{"id":1,"event_date":"2026-12-01T10:00:00Z","event_time":"8PM"}`: false,
		`{"id":1}`:                                                        false,
	}
	for raw, want := range tests {
		item, _ := Normalize(RawRecord(raw))
		if item.Schedule.Floating != want {
			t.Errorf("%s: want floating %v, got %v", raw, want, item.Schedule.Floating)
		}
	}
}

func TestNormalizeCreatedAtEpochs(t *testing.T) {
	want := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	tests := map[string]time.Time{
		`{"id":1,"created_at":1790856000}`:             want,
		`{"id":1,"created_at":1790856000000}`:          want,
		`{"id":1,"created_at":"1790856000"}`:           {},
		`{"id":1,"created_at":"2026-10-01T12:00:00Z"}`: want,
		`{"id":1,"created_at":1e300}`:                  {},
	}
	for raw, expect := range tests {
		item, _ := Normalize(RawRecord(raw))
		if !item.CreatedAt.Equal(expect) {
			t.Errorf("%s: want %v, got %v", raw, expect, item.CreatedAt)
		}
	}
}

func TestNormalizeHugeCountsClamped(t *testing.T) {
	item, _ := Normalize(RawRecord(`{"id":1,"current_participants":1e300,"max_participants":"99999999999"}`))
	if item.Participants.Current != math.MaxInt32 || item.Participants.Max != math.MaxInt32 {
		t.Fatalf("expected clamped counts, got %+v", item.Participants)
	}
	item, _ = Normalize(RawRecord(`{"id":1,"current_participants":"NaN","max_participants":-4}`))
	if item.Participants != (Participants{}) {
		t.Fatalf("expected zero counts, got %+v", item.Participants)
	}
}

func TestNormalizeKind(t *testing.T) {
	tests := []struct {
		raw    string
		expect Kind
	}{
		{`{"id":1,"kind":"competition"}`, KindCompetition},
		{`{"id":1,"kind":"Event","prize":100}`, KindEvent},
		{`{"id":1,"prize_pool":1000000}`, KindCompetition},
		{`{"id":1,"ticket_price":10}`, KindEvent},
	}
	for _, tc := range tests {
		item, _ := Normalize(RawRecord(tc.raw))
		if item.Kind != tc.expect {
			t.Errorf("%s: want %q, got %q", tc.raw, tc.expect, item.Kind)
		}
	}
}

func TestNormalizeUnknownStatusPassesThrough(t *testing.T) {
	item, _ := Normalize(RawRecord(`{"id":1,"status":"on_hold"}`))
	if item.Status != "on_hold" {
		t.Fatalf("expected status to pass through, got %q", item.Status)
	}
}

func TestNormalizeAllDropsOnlyUnidentified(t *testing.T) {
	raws := []RawRecord{
		RawRecord(`{"id":"a","title":"First"}`),
		RawRecord(`{"title":"orphan"}`),
		RawRecord(`{"id":"b","title":"Second"}`),
		RawRecord(`garbage`),
		RawRecord(`{"id":3}`),
	}

	items := NormalizeAll(raws)
	var ids []string
	for _, it := range items {
		ids = append(ids, it.ID)
	}
	if !reflect.DeepEqual(ids, []string{"a", "b", "3"}) {
		t.Fatalf("unexpected ids: %v", ids)
	}
}

func TestItemJSONHasArtistsArray(t *testing.T) {
	item, _ := Normalize(RawRecord(`{"id":1}`))
	data, err := json.Marshal(item)
	if err != nil {
		t.Fatal(err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatal(err)
	}
	if _, ok := decoded["artists"].([]any); !ok {
		t.Fatalf("expected artists to encode as an array: %s", data)
	}
}

func TestExcerpt(t *testing.T) {
	desc := "<p>An evening of <b>afrobeats</b></p>\n\n<p>with friends</p>"
	if got := Excerpt(desc, 0); got != "An evening of afrobeats with friends" {
		t.Fatalf("unexpected excerpt: %q", got)
	}
	if got := Excerpt(desc, 10); got != "An evening…" {
		t.Fatalf("unexpected truncated excerpt: %q", got)
	}
}

func TestParseKind(t *testing.T) {
	tests := []struct {
		in   string
		want Kind
		ok   bool
	}{
		{"", KindEvent, true},
		{"event", KindEvent, true},
		{" Competition ", KindCompetition, true},
		{"raffle", "", false},
	}
	for _, tc := range tests {
		got, ok := ParseKind(tc.in)
		if got != tc.want || ok != tc.ok {
			t.Errorf("%q: want %q %v, got %q %v", tc.in, tc.want, tc.ok, got, ok)
		}
	}
}
