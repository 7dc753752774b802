package selection

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gigscope/gigscope/pkg/cart"
	"github.com/gigscope/gigscope/pkg/catalog"
	"github.com/gigscope/gigscope/pkg/notify"
	"github.com/gigscope/gigscope/pkg/session"
)

// Controller owns one selection State and wires transitions to the session,
// cart and notification collaborators. It is not safe for concurrent use; the
// owning UI (or request) is its only writer.
type Controller struct {
	Session  session.Provider
	Cart     cart.Cart
	Notifier notify.Notifier
	Now      func() time.Time

	state State
}

func (c *Controller) State() State { return c.state }

func (c *Controller) Inspect(item catalog.Item) State {
	c.state = Inspect(c.state, item)
	return c.state
}

func (c *Controller) Cancel() State {
	c.state = Cancel(c.state)
	return c.state
}

// AddToCart runs the add-to-cart transition and, when it reaches CartReady,
// hands the line item to the cart. The state only becomes CartReady once the
// cart accepted the line.
func (c *Controller) AddToCart(ctx context.Context) (State, error) {
	authenticated := c.Session != nil && c.Session.Active()

	next, err := RequestAddToCart(c.state, authenticated, c.now())
	if err != nil {
		c.state = next
		c.notifyRejection(err)
		return c.state, err
	}

	if c.Cart != nil {
		if err := c.Cart.Add(ctx, *next.Line); err != nil {
			c.notifier().Notify(notify.Error, "Could not add to cart", err.Error())
			return c.state, fmt.Errorf("cart add: %w", err)
		}
	}

	c.state = next
	c.notifier().Notify(notify.Success, "Added to cart", fmt.Sprintf("%s added to your cart", next.Item.Title))
	return c.state, nil
}

func (c *Controller) notifyRejection(err error) {
	n := c.notifier()
	switch {
	case errors.Is(err, ErrAuthenticationRequired):
		n.Notify(notify.Warning, "Sign in required", "Sign in to add this to your cart")
	case errors.Is(err, ErrNotPurchasable):
		n.Notify(notify.Warning, "Not available for purchase", "This listing is free or has no ticket price")
	case errors.Is(err, ErrInsufficientCapacity):
		n.Notify(notify.Warning, "Sold out", "No places left")
	default:
		n.Notify(notify.Error, "Action not allowed", err.Error())
	}
}

func (c *Controller) notifier() notify.Notifier {
	if c.Notifier == nil {
		return notify.Discard
	}
	return c.Notifier
}

func (c *Controller) now() time.Time {
	if c.Now == nil {
		return time.Now()
	}
	return c.Now()
}
