// Package selection implements the flow from an inspected catalog item to a
// cart-ready line item as pure state transitions.
package selection

import (
	"errors"
	"fmt"
	"time"

	"github.com/gigscope/gigscope/pkg/cart"
	"github.com/gigscope/gigscope/pkg/catalog"
	"github.com/google/uuid"
)

type Phase int

const (
	Idle Phase = iota
	Inspecting
	AwaitingAuth
	CartReady
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Inspecting:
		return "inspecting"
	case AwaitingAuth:
		return "awaiting_auth"
	case CartReady:
		return "cart_ready"
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

// State is one of Idle, Inspecting(item), AwaitingAuth(item) or
// CartReady(item, line). Item is unset only when Idle; Line is set only when CartReady.
type State struct {
	Phase Phase
	Item  catalog.Item
	Line  *cart.LineItem
}

// Rejection signals.
var (
	ErrNotPurchasable         = errors.New("item is not purchasable")
	ErrInsufficientCapacity   = errors.New("insufficient capacity")
	ErrAuthenticationRequired = errors.New("authentication required")
	ErrInvalidTransition      = errors.New("invalid transition")
)

// RejectedError is returned whenever a transition is refused.
type RejectedError struct {
	From Phase
	Err  error
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("add to cart rejected while %s: %v", e.From, e.Err)
}

func (e *RejectedError) Unwrap() error { return e.Err }

// Inspect starts inspecting item. It is legal from every state.
func Inspect(_ State, item catalog.Item) State {
	return State{Phase: Inspecting, Item: item}
}

// Cancel returns to Idle. It is legal from every state.
func Cancel(State) State { return State{Phase: Idle} }

// Eligible reports every reason item cannot be bought, joined, or nil.
func Eligible(item catalog.Item) error {
	var errs []error
	if item.Pricing.IsFree || !(item.Pricing.Price > 0) {
		errs = append(errs, ErrNotPurchasable)
	}
	if item.RemainingCapacity <= 0 {
		errs = append(errs, ErrInsufficientCapacity)
	}
	return errors.Join(errs...)
}

// RequestAddToCart attempts to move from Inspecting (or a retried AwaitingAuth)
// to CartReady. Eligibility failures leave the state unchanged; an eligible item
// without an authenticated session moves to AwaitingAuth. The returned error is
// always a *RejectedError when non-nil.
func RequestAddToCart(s State, authenticated bool, now time.Time) (State, error) {
	if s.Phase != Inspecting && s.Phase != AwaitingAuth {
		return s, &RejectedError{From: s.Phase, Err: ErrInvalidTransition}
	}
	if err := Eligible(s.Item); err != nil {
		return s, &RejectedError{From: s.Phase, Err: err}
	}
	if !authenticated {
		return State{Phase: AwaitingAuth, Item: s.Item}, &RejectedError{From: s.Phase, Err: ErrAuthenticationRequired}
	}

	line := BuildLineItem(s.Item, now)
	return State{Phase: CartReady, Item: s.Item, Line: &line}, nil
}

// BuildLineItem snapshots item into a single-quantity line. Callers must have
// checked Eligible.
func BuildLineItem(item catalog.Item, now time.Time) cart.LineItem {
	return cart.LineItem{
		Ref:       uuid.New().String(),
		ItemID:    item.ID,
		Kind:      item.Kind,
		UnitPrice: item.Pricing.Price,
		Quantity:  1,
		Snapshot: cart.Snapshot{
			Title:    item.Title,
			Schedule: item.Schedule,
			Location: item.Location,
		},
		CreatedAt: now.UTC(),
	}
}
