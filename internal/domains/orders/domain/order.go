package domain

import (
	"errors"
	"time"
)

// Status enumerates order progression.
type Status string

const (
	StatusPlaced    Status = "placed"
	StatusApproved  Status = "approved"
	StatusDelivered Status = "delivered"
)

var (
	ErrInvalidQuantity = errors.New("quantity must not be negative")
	ErrInvalidStatus   = errors.New("order status is invalid")
)

// Order is a single product order. Status changes are not gated here; any status may follow any other.
type Order struct {
	ID        int64
	ProductID int64
	Quantity  int64
	Date      *time.Time
	Status    Status
	Complete  bool
}

// NewOrder builds a placed, incomplete order.
func NewOrder(id, productID, quantity int64) (*Order, error) {
	order := &Order{
		ID:        id,
		ProductID: productID,
		Quantity:  quantity,
		Status:    StatusPlaced,
	}
	if err := order.Validate(); err != nil {
		return nil, err
	}
	return order, nil
}

// Validate enforces invariants on the aggregate.
func (o *Order) Validate() error {
	if o.Quantity < 0 {
		return ErrInvalidQuantity
	}
	if !IsValidStatus(o.Status) {
		return ErrInvalidStatus
	}
	return nil
}

// UpdateStatus accepts only known states and defaults to placed.
func (o *Order) UpdateStatus(status Status) error {
	if status == "" {
		status = StatusPlaced
	}
	if !IsValidStatus(status) {
		return ErrInvalidStatus
	}
	o.Status = status
	return nil
}

func (o *Order) Approve() {
	o.Status = StatusApproved
}

func (o *Order) Deliver() {
	o.Status = StatusDelivered
}

// ApplyEdit overwrites status, complete and quantity. ProductID and Date are left alone.
func (o *Order) ApplyEdit(status Status, complete bool, quantity int64) error {
	if quantity < 0 {
		return ErrInvalidQuantity
	}
	if err := o.UpdateStatus(status); err != nil {
		return err
	}
	o.Complete = complete
	o.Quantity = quantity
	return nil
}

// Clone returns a deep copy so stored orders never share the date pointer with callers.
func (o *Order) Clone() *Order {
	if o == nil {
		return nil
	}
	clone := *o
	if o.Date != nil {
		date := *o.Date
		clone.Date = &date
	}
	return &clone
}

// IsValidStatus reports whether status is one of the three known states.
func IsValidStatus(status Status) bool {
	switch status {
	case StatusPlaced, StatusApproved, StatusDelivered:
		return true
	default:
		return false
	}
}

// SeedOrders returns the three orders a fresh store starts with.
func SeedOrders() []*Order {
	seeds := make([]*Order, 0, 3)
	for id := int64(1); id <= 3; id++ {
		seeds = append(seeds, &Order{ID: id, Status: StatusPlaced})
	}
	return seeds
}
