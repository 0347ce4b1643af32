package enum

import "strings"

// Side buy, sell
type Side uint8

const (
	_side_beg Side = iota
	SideBuy
	SideSell
	_side_end
)

func (s Side) IsAvailable() bool {
	return s > _side_beg && s < _side_end
}

func (s Side) String() string {
	switch s {
	case SideBuy:
		return "BUY"
	case SideSell:
		return "SELL"
	default:
		return "UNKNOWN_SIDE"
	}
}

// ParseSide accepts raw CSV field values, case-insensitive.
func ParseSide(raw string) (Side, bool) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "BUY":
		return SideBuy, true
	case "SELL":
		return SideSell, true
	default:
		return _side_beg, false
	}
}

// OrderType limit, market
type OrderType uint8

const (
	_order_type_beg OrderType = iota
	OrderTypeLimit
	OrderTypeMarket
	_order_type_end
)

func (t OrderType) IsAvailable() bool {
	return t > _order_type_beg && t < _order_type_end
}

func (t OrderType) String() string {
	switch t {
	case OrderTypeLimit:
		return "LIMIT"
	case OrderTypeMarket:
		return "MARKET"
	default:
		return "UNKNOWN_TYPE"
	}
}

func ParseOrderType(raw string) (OrderType, bool) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "LIMIT":
		return OrderTypeLimit, true
	case "MARKET":
		return OrderTypeMarket, true
	default:
		return _order_type_beg, false
	}
}

// OrderAction new, modify, cancel
type OrderAction uint8

const (
	_order_action_beg OrderAction = iota
	OrderActionNew
	OrderActionModify
	OrderActionCancel
	_order_action_end
)

func (a OrderAction) IsAvailable() bool {
	return a > _order_action_beg && a < _order_action_end
}

func (a OrderAction) String() string {
	switch a {
	case OrderActionNew:
		return "NEW"
	case OrderActionModify:
		return "MODIFY"
	case OrderActionCancel:
		return "CANCEL"
	default:
		return "UNKNOWN_ACTION"
	}
}

func ParseOrderAction(raw string) (OrderAction, bool) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "NEW":
		return OrderActionNew, true
	case "MODIFY":
		return OrderActionModify, true
	case "CANCEL":
		return OrderActionCancel, true
	default:
		return _order_action_beg, false
	}
}

// OrderStatus pending, partially executed, executed, canceled, rejected.
// The zero value is the unknown state a freshly parsed order carries.
type OrderStatus uint8

const (
	_order_status_beg OrderStatus = iota
	OrderStatusPending
	OrderStatusPartiallyExecuted
	OrderStatusExecuted
	OrderStatusCanceled
	OrderStatusRejected
	_order_status_end
)

func (s OrderStatus) IsAvailable() bool {
	return s > _order_status_beg && s < _order_status_end
}

func (s OrderStatus) String() string {
	switch s {
	case OrderStatusPending:
		return "PENDING"
	case OrderStatusPartiallyExecuted:
		return "PARTIALLY_EXECUTED"
	case OrderStatusExecuted:
		return "EXECUTED"
	case OrderStatusCanceled:
		return "CANCELED"
	case OrderStatusRejected:
		return "REJECTED"
	default:
		return "UNKNOWN_STATUS"
	}
}
