// Package source fetches raw catalog collections from data sources.
package source

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/gigscope/gigscope/pkg/catalog"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// Source is a data source returning one raw collection per call.
type Source interface {
	Name() string
	Kind() catalog.Kind
	Fetch(ctx context.Context) ([]catalog.RawRecord, error)
}

// ErrMalformedCollection means a body held no recognisable collection.
var ErrMalformedCollection = errors.New("malformed collection")

// FetchError reports a whole-collection failure for one source.
type FetchError struct {
	Source string
	Err    error
}

func (e *FetchError) Error() string { return fmt.Sprintf("fetch %s: %v", e.Source, e.Err) }
func (e *FetchError) Unwrap() error { return e.Err }

// envelopeKeys are tried in order when a body is not a bare array.
var envelopeKeys = []string{
	"data", "items", "results", "events", "competitions",
	"data.data", "data.items", "data.results", "data.events", "data.competitions",
}

// DecodeCollection accepts a bare JSON array or an envelope object wrapping
// one. Object elements without a "kind" are stamped with kind when it is set.
// Elements are not validated further; the normalizer drops what it cannot use.
func DecodeCollection(body []byte, kind catalog.Kind) ([]catalog.RawRecord, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("%w: invalid JSON", ErrMalformedCollection)
	}

	coll := gjson.ParseBytes(body)
	if coll.IsObject() {
		for _, k := range envelopeKeys {
			if v := coll.Get(k); v.IsArray() {
				coll = v
				break
			}
		}
	}
	if !coll.IsArray() {
		return nil, fmt.Errorf("%w: no array found", ErrMalformedCollection)
	}

	var records []catalog.RawRecord
	coll.ForEach(func(_, v gjson.Result) bool {
		raw := []byte(v.Raw)
		if kind != "" && v.IsObject() && !v.Get("kind").Exists() {
			if stamped, err := sjson.SetBytes(raw, "kind", string(kind)); err == nil {
				raw = stamped
			}
		}
		records = append(records, catalog.RawRecord(raw))
		return true
	})
	if records == nil {
		records = []catalog.RawRecord{}
	}
	return records, nil
}

// FileSource reads a collection from disk. Useful offline and in fixtures.
type FileSource struct {
	Path     string
	ItemKind catalog.Kind
}

func (f FileSource) Name() string       { return "file:" + f.Path }
func (f FileSource) Kind() catalog.Kind { return f.ItemKind }

func (f FileSource) Fetch(ctx context.Context) ([]catalog.RawRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, &FetchError{Source: f.Name(), Err: err}
	}
	body, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, &FetchError{Source: f.Name(), Err: err}
	}
	records, err := DecodeCollection(body, f.ItemKind)
	if err != nil {
		return nil, &FetchError{Source: f.Name(), Err: err}
	}
	return records, nil
}
