package source

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gigscope/gigscope/pkg/catalog"
	"github.com/tidwall/gjson"
)

func TestDecodeCollectionShapes(t *testing.T) {
	tests := []struct {
		name string
		body string
		n    int
	}{
		{"bare array", `[{"id":1},{"id":2}]`, 2},
		{"data envelope", `{"success":true,"data":[{"id":1}]}`, 1},
		{"named envelope", `{"competitions":[{"id":1},{"id":2},{"id":3}]}`, 3},
		{"nested envelope", `{"data":{"data":[{"id":1}],"meta":{"page":1}}}`, 1},
		{"empty array", `{"events":[]}`, 0},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			records, err := DecodeCollection([]byte(tc.body), catalog.KindEvent)
			if err != nil {
				t.Fatal(err)
			}
			if records == nil || len(records) != tc.n {
				t.Fatalf("expected %d records, got %d", tc.n, len(records))
			}
		})
	}
}

func TestDecodeCollectionMalformed(t *testing.T) {
	for _, body := range []string{`not json`, `{"message":"ok"}`, `"string"`, ``} {
		if _, err := DecodeCollection([]byte(body), ""); !errors.Is(err, ErrMalformedCollection) {
			t.Errorf("%q: expected ErrMalformedCollection, got %v", body, err)
		}
	}
}

func TestDecodeCollectionStampsKind(t *testing.T) {
	records, err := DecodeCollection([]byte(`[{"id":1},{"id":2,"kind":"event"},7]`), catalog.KindCompetition)
	if err != nil {
		t.Fatal(err)
	}
	if got := gjson.GetBytes(records[0], "kind").String(); got != "competition" {
		t.Fatalf("expected stamped kind, got %q", got)
	}
	if got := gjson.GetBytes(records[1], "kind").String(); got != "event" {
		t.Fatalf("existing kind overwritten: %q", got)
	}
	if string(records[2]) != "7" {
		t.Fatalf("non-object element altered: %s", records[2])
	}

	items := catalog.NormalizeAll(records)
	if len(items) != 2 || items[0].Kind != catalog.KindCompetition {
		t.Fatalf("unexpected items: %+v", items)
	}
}

func TestHTTPSourceFetch(t *testing.T) {
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":[{"id":"c1","prize_pool":1000}]}`))
	}))
	defer srv.Close()

	s, err := NewHTTPSource(HTTPConfig{Kind: catalog.KindCompetition, URL: srv.URL, Token: "secret"})
	if err != nil {
		t.Fatal(err)
	}
	if s.Name() != "competition" {
		t.Fatalf("expected default name from kind, got %q", s.Name())
	}
	records, err := s.Fetch(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 || auth != "Bearer secret" {
		t.Fatalf("unexpected fetch: %d records, auth %q", len(records), auth)
	}
}

func TestHTTPSourceRetriesThenFails(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	s, err := NewHTTPSource(HTTPConfig{Name: "events", URL: srv.URL, RetryMax: 1, RetryWaitMin: time.Millisecond})
	if err != nil {
		t.Fatal(err)
	}
	_, err = s.Fetch(context.Background())
	var fe *FetchError
	if !errors.As(err, &fe) || fe.Source != "events" {
		t.Fatalf("expected FetchError from events, got %v", err)
	}
	if atomic.LoadInt32(&hits) != 2 {
		t.Fatalf("expected 2 attempts, got %d", hits)
	}
}

func TestHTTPSourceClientError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	s, _ := NewHTTPSource(HTTPConfig{Name: "events", URL: srv.URL})
	_, err := s.Fetch(context.Background())
	if err == nil || !strings.Contains(err.Error(), "HTTP 404") {
		t.Fatalf("expected HTTP 404 error, got %v", err)
	}
}

func TestNewHTTPSourceRequiresURL(t *testing.T) {
	if _, err := NewHTTPSource(HTTPConfig{Name: "x"}); err == nil {
		t.Fatal("expected error for missing url")
	}
}

func TestFileSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.json")
	if err := os.WriteFile(path, []byte(`[{"id":1},{"title":"dropped later"}]`), 0o644); err != nil {
		t.Fatal(err)
	}
	records, err := FileSource{Path: path, ItemKind: catalog.KindEvent}.Fetch(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 raw records, got %d", len(records))
	}

	_, err = FileSource{Path: filepath.Join(t.TempDir(), "missing.json")}.Fetch(context.Background())
	var fe *FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("expected FetchError, got %v", err)
	}
}
