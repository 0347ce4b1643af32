package model

import (
	"strconv"

	"main/internal/model/enum"
)

// RecordHeader is the fixed first line of the output stream.
const RecordHeader = "timestamp,order_id,instrument,side,type,quantity,price,action,status,executed_quantity,execution_price,counterparty_id"

// OutputRecord describes one state transition of one order.
//
// Quantity and Price are status-dependent views of the order, not raw copies:
// PENDING/REJECTED carry the original quantity, PARTIALLY_EXECUTED the remaining
// quantity, EXECUTED/CANCELED zero; Price is zero for CANCELED.
type OutputRecord struct {
	Timestamp      uint64
	OrderID        int64
	Instrument     string
	Side           enum.Side
	Type           enum.OrderType
	Quantity       Quantity
	Price          Price
	Action         enum.OrderAction
	Status         enum.OrderStatus
	ExecutedQty    Quantity
	ExecutionPrice Price
	CounterpartyID int64
}

// NewTransitionRecord builds the single record emitted for a non-trade
// transition (PENDING, CANCELED, REJECTED, and the MODIFY terminal states),
// applying the status-dependent column rules.
func NewTransitionRecord(o *Order, instrument string, status enum.OrderStatus, eventTimestamp uint64) OutputRecord {
	var qty Quantity
	switch status {
	case enum.OrderStatusPending, enum.OrderStatusRejected:
		qty = o.Quantity
	case enum.OrderStatusPartiallyExecuted:
		qty = o.RemainingQuantity
	default: // EXECUTED, CANCELED
		qty = 0
	}

	price := o.Price
	if status == enum.OrderStatusCanceled {
		price = 0
	}

	return OutputRecord{
		Timestamp:  eventTimestamp,
		OrderID:    o.OrderID,
		Instrument: instrument,
		Side:       o.Side,
		Type:       o.Type,
		Quantity:   qty,
		Price:      price,
		Action:     o.Action,
		Status:     status,
	}
}

// NewMatchRecord builds the record emitted for one participant of a trade.
func NewMatchRecord(o *Order, instrument string, matchedQty Quantity, matchPrice Price, counterparty int64, eventTimestamp uint64) OutputRecord {
	var qty Quantity
	if o.Status != enum.OrderStatusExecuted {
		qty = o.RemainingQuantity
	}
	return OutputRecord{
		Timestamp:      eventTimestamp,
		OrderID:        o.OrderID,
		Instrument:     instrument,
		Side:           o.Side,
		Type:           o.Type,
		Quantity:       qty,
		Price:          o.Price,
		Action:         o.Action,
		Status:         o.Status,
		ExecutedQty:    matchedQty,
		ExecutionPrice: matchPrice,
		CounterpartyID: counterparty,
	}
}

// AppendCSV appends the record as one CSV row without a trailing newline.
func (r OutputRecord) AppendCSV(buf []byte) []byte {
	buf = strconv.AppendUint(buf, r.Timestamp, 10)
	buf = append(buf, ',')
	buf = strconv.AppendInt(buf, r.OrderID, 10)
	buf = append(buf, ',')
	buf = append(buf, r.Instrument...)
	buf = append(buf, ',')
	buf = append(buf, r.Side.String()...)
	buf = append(buf, ',')
	buf = append(buf, r.Type.String()...)
	buf = append(buf, ',')
	buf = AppendQuantity(buf, r.Quantity)
	buf = append(buf, ',')
	buf = AppendPrice(buf, r.Price)
	buf = append(buf, ',')
	buf = append(buf, r.Action.String()...)
	buf = append(buf, ',')
	buf = append(buf, r.Status.String()...)
	buf = append(buf, ',')
	buf = AppendQuantity(buf, r.ExecutedQty)
	buf = append(buf, ',')
	buf = AppendPrice(buf, r.ExecutionPrice)
	buf = append(buf, ',')
	buf = strconv.AppendInt(buf, r.CounterpartyID, 10)
	return buf
}

func (r OutputRecord) String() string {
	return string(r.AppendCSV(make([]byte, 0, 128)))
}
