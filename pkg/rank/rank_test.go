package rank

import (
	"reflect"
	"testing"
	"time"

	"github.com/gigscope/gigscope/pkg/catalog"
)

func at(day int) time.Time { return time.Date(2026, 11, day, 0, 0, 0, 0, time.UTC) }

func order(items []catalog.Item) []string {
	var out []string
	for _, it := range items {
		out = append(out, it.ID+it.Title)
	}
	return out
}

func TestSortKeys(t *testing.T) {
	items := []catalog.Item{
		{ID: "10", CreatedAt: at(1), Schedule: catalog.Schedule{Start: at(9)}, Participants: catalog.Participants{Current: 5}, Prize: 100, Pricing: catalog.Pricing{Price: 20}},
		{ID: "2", CreatedAt: at(3), Schedule: catalog.Schedule{Start: at(7)}, Participants: catalog.Participants{Current: 9}, Prize: 100, Pricing: catalog.Pricing{Price: 50}},
		{ID: "3", CreatedAt: at(3), Schedule: catalog.Schedule{Start: at(8)}, Participants: catalog.Participants{Current: 5}, Prize: 900, Pricing: catalog.Pricing{Price: 20}},
	}

	tests := []struct {
		key    string
		expect []string
	}{
		{Recency, []string{"2", "3", "10"}},
		{StartDate, []string{"2", "3", "10"}},
		{Popularity, []string{"2", "3", "10"}},
		{Participants, []string{"2", "3", "10"}},
		{Prize, []string{"3", "2", "10"}},
		{Price, []string{"2", "3", "10"}},
		{"bogus", []string{"10", "2", "3"}},
		{"", []string{"10", "2", "3"}},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.key, func(t *testing.T) {
			got := order(Sort(items, tc.key))
			if !reflect.DeepEqual(got, tc.expect) {
				t.Fatalf("want %v, got %v", tc.expect, got)
			}
		})
	}

	if !reflect.DeepEqual(order(items), []string{"10", "2", "3"}) {
		t.Fatal("input was reordered")
	}
}

func TestSortIsStable(t *testing.T) {
	// Equal keys and equal ids must keep their relative input order.
	items := []catalog.Item{
		{ID: "1", Title: "a", Prize: 5},
		{ID: "1", Title: "b", Prize: 5},
		{ID: "0", Title: "c", Prize: 1},
		{ID: "1", Title: "d", Prize: 5},
	}
	got := order(Sort(items, Prize))
	expect := []string{"1a", "1b", "1d", "0c"}
	if !reflect.DeepEqual(got, expect) {
		t.Fatalf("want %v, got %v", expect, got)
	}
}

func TestIDTieBreak(t *testing.T) {
	if !idLess("2", "10") {
		t.Error("numeric ids should compare numerically")
	}
	if !idLess("evt-10", "evt-2") {
		t.Error("non-numeric ids should compare lexically")
	}

	expect := []string{"2", "10", "1a", "evt-2"}
	for _, in := range [][]string{
		{"2", "10", "1a", "evt-2"},
		{"1a", "10", "2", "evt-2"},
		{"1a", "2", "10", "evt-2"},
		{"evt-2", "1a", "10", "2"},
		{"10", "evt-2", "2", "1a"},
	} {
		items := make([]catalog.Item, len(in))
		for i, id := range in {
			items[i] = catalog.Item{ID: id}
		}
		for _, key := range Keys() {
			if got := order(Sort(items, key)); !reflect.DeepEqual(got, expect) {
				t.Errorf("%s %v: want %v, got %v", key, in, expect, got)
			}
		}
	}
}

func TestSharedIDOrderedByKind(t *testing.T) {
	items := []catalog.Item{
		{ID: "1", Kind: catalog.KindEvent, Title: "gig"},
		{ID: "1", Kind: catalog.KindCompetition, Title: "cup"},
	}
	for _, in := range [][]catalog.Item{items, {items[1], items[0]}} {
		if got := order(Sort(in, Popularity)); !reflect.DeepEqual(got, []string{"1cup", "1gig"}) {
			t.Fatalf("unexpected order %v", got)
		}
	}
}

func TestSupported(t *testing.T) {
	if !Supported(StartDate) || Supported("nope") {
		t.Fatal("unexpected Supported result")
	}
	if len(Keys()) != 7 {
		t.Fatalf("unexpected keys: %v", Keys())
	}
}

func TestPrizeOrParticipants(t *testing.T) {
	items := []catalog.Item{
		{ID: "e1", Kind: catalog.KindEvent, Participants: catalog.Participants{Current: 40}, Prize: 1000},
		{ID: "c1", Kind: catalog.KindCompetition, Participants: catalog.Participants{Current: 2}, Prize: 500},
		{ID: "c2", Kind: catalog.KindCompetition, Prize: 20},
	}
	got := order(Sort(items, PrizeOrParticipants))
	expect := []string{"c1", "e1", "c2"}
	if !reflect.DeepEqual(got, expect) {
		t.Fatalf("want %v, got %v", expect, got)
	}
}
