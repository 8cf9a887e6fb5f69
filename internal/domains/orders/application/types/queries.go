package types

import (
	"time"

	"github.com/Apurer/go-gin-orders-api/internal/domains/orders/domain"
)

// ListFilter narrows an order listing by status and date window.
// Filtering is not implemented: the fields are accepted, recorded and ignored, and
// ListOrders always returns the full set.
type ListFilter struct {
	Status *domain.Status
	From   *time.Time
	To     *time.Time
}

// IsZero reports whether no criteria were supplied.
func (f ListFilter) IsZero() bool {
	return f.Status == nil && f.From == nil && f.To == nil
}
