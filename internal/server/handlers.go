package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gigscope/gigscope/internal/utils"
	"github.com/gigscope/gigscope/pkg/cart"
	"github.com/gigscope/gigscope/pkg/catalog"
	"github.com/gigscope/gigscope/pkg/filter"
	"github.com/gigscope/gigscope/pkg/rank"
	"github.com/gigscope/gigscope/pkg/selection"
	"github.com/gigscope/gigscope/pkg/session"
	"github.com/go-chi/chi/v5"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) handleItems(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	sortKey := q.Get("sort")
	if sortKey == "" {
		sortKey = rank.Recency
	}
	if !rank.Supported(sortKey) {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown sort key %q, available: %s", sortKey, strings.Join(rank.Keys(), ", ")))
		return
	}

	criteria := filter.Criteria{
		SearchText:  q.Get("search"),
		Category:    q.Get("category"),
		City:        q.Get("city"),
		Statuses:    utils.SplitList(q.Get("status")),
		IncludePast: q.Get("include_past") == "true",
	}
	if from := q.Get("from"); from != "" {
		cutoff, err := time.ParseInLocation("2006-01-02", from, time.Local)
		if err != nil {
			writeError(w, http.StatusBadRequest, "from must be YYYY-MM-DD")
			return
		}
		criteria.Cutoff = cutoff
	}

	writeJSON(w, http.StatusOK, s.Catalog.View(criteria, sortKey, s.Now()))
}

func (s *Server) handleItem(w http.ResponseWriter, r *http.Request) {
	kind, ok := catalog.ParseKind(chi.URLParam(r, "kind"))
	if !ok {
		writeError(w, http.StatusBadRequest, "kind must be event or competition")
		return
	}
	item, ok := s.Catalog.Lookup(kind, chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "item not found")
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Catalog.Categories())
}

func (s *Server) handleCities(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Catalog.Cities())
}

// AddToCartRequest names an item by kind and id. An empty kind means event.
type AddToCartRequest struct {
	Kind   string `json:"kind"`
	ItemID string `json:"item_id"`
}

type AddToCartResponse struct {
	Phase string         `json:"phase"`
	Line  *cart.LineItem `json:"line,omitempty"`
}

// handleCart runs one selection for the requested item on behalf of the
// bearer token's session.
func (s *Server) handleCart(w http.ResponseWriter, r *http.Request) {
	var req AddToCartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	kind, ok := catalog.ParseKind(req.Kind)
	if !ok {
		writeError(w, http.StatusBadRequest, "kind must be event or competition")
		return
	}
	item, ok := s.Catalog.Lookup(kind, req.ItemID)
	if !ok {
		writeError(w, http.StatusNotFound, "item not found")
		return
	}

	sess := session.FromAuthorization(r.Header.Get("Authorization"))
	ctrl := &selection.Controller{
		Session:  sess,
		Notifier: s.Notifier,
		Now:      s.Now,
	}
	if s.Cart != nil {
		ctrl.Cart = s.Cart(sess)
	}

	ctrl.Inspect(item)
	state, err := ctrl.AddToCart(r.Context())
	switch {
	case err == nil:
		s.handoff("ok")
		writeJSON(w, http.StatusCreated, AddToCartResponse{Phase: state.Phase.String(), Line: state.Line})
	case errors.Is(err, selection.ErrAuthenticationRequired):
		s.handoff("auth")
		writeJSON(w, http.StatusUnauthorized, map[string]string{"phase": state.Phase.String(), "error": err.Error()})
	case errors.Is(err, selection.ErrNotPurchasable), errors.Is(err, selection.ErrInsufficientCapacity):
		s.handoff("rejected")
		writeJSON(w, http.StatusConflict, map[string]string{"phase": state.Phase.String(), "error": err.Error()})
	default:
		s.handoff("error")
		utils.Log.Errorf("Cart handoff for %s %s failed: %v", item.Kind, item.ID, err)
		writeError(w, http.StatusBadGateway, err.Error())
	}
}

func (s *Server) handoff(outcome string) {
	if s.Metrics != nil {
		s.Metrics.Handoff(outcome)
	}
}

type RefreshResponse struct {
	Generation uint64 `json:"generation"`
	Applied    bool   `json:"applied"`
	Items      int    `json:"items"`
	Dropped    int    `json:"dropped"`
	Error      string `json:"error,omitempty"`
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	out := s.Catalog.Refresh(r.Context())
	resp := RefreshResponse{
		Generation: out.Generation,
		Applied:    out.Applied,
		Items:      out.Items,
		Dropped:    out.Dropped,
	}
	status := http.StatusOK
	if out.Err != nil {
		resp.Error = out.Err.Error()
		status = http.StatusBadGateway
	}
	writeJSON(w, status, resp)
}
