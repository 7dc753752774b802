// Package cart defines the line item handed to a cart collaborator and the
// collaborators gigscope can talk to.
package cart

import (
	"context"
	"errors"
	"time"

	"github.com/gigscope/gigscope/pkg/catalog"
)

// Snapshot is a point-in-time copy of the fields a cart needs to display a
// line without looking the item up again.
type Snapshot struct {
	Title    string           `json:"title"`
	Schedule catalog.Schedule `json:"schedule"`
	Location catalog.Location `json:"location"`
}

// LineItem never references the catalog item it was built from; the catalog
// may be replaced after the line is created.
type LineItem struct {
	Ref       string       `json:"ref"`
	ItemID    string       `json:"item_id"`
	Kind      catalog.Kind `json:"kind"`
	UnitPrice float64      `json:"unit_price"`
	Quantity  int          `json:"quantity"`
	Snapshot  Snapshot     `json:"snapshot"`
	CreatedAt time.Time    `json:"created_at"`
}

// Cart accepts line items. Persistence, price re-validation and checkout
// belong to the implementation.
type Cart interface {
	Add(ctx context.Context, line LineItem) error
}

var ErrRejected = errors.New("cart rejected line item")
