package model

import "main/internal/model/enum"

// Order is one input event plus the matching state it accumulates while resting.
// The CSV fields are immutable after parsing except where MODIFY overwrites them.
type Order struct {
	Timestamp  uint64
	OrderID    int64
	Instrument string
	Side       enum.Side
	Type       enum.OrderType
	Action     enum.OrderAction

	// Quantity is the original quantity as stated on the current event.
	Quantity Quantity
	Price    Price

	RemainingQuantity          Quantity
	CumulativeExecutedQuantity Quantity
	Status                     enum.OrderStatus
}

// Remaining reports the unexecuted quantity.
func (o *Order) Remaining() Quantity {
	return o.RemainingQuantity
}

// InitMatchingState resets the matching-state fields for a NEW event.
func (o *Order) InitMatchingState() {
	o.RemainingQuantity = o.Quantity
	o.CumulativeExecutedQuantity = 0
	o.Status = enum.OrderStatusPending
}
