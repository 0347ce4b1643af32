package book

import (
	"sync"
	"sync/atomic"
	"time"

	"main/internal/bus"
	"main/internal/model"
	"main/internal/model/enum"
	"main/internal/obs"
)

// RecordSink receives every output record a book emits, in emission order.
type RecordSink interface {
	Emit(rec model.OutputRecord)
}

// Book is the order book for a single instrument. A book owns its resting
// orders exclusively; all mutation happens on the book's worker goroutine,
// so no locking is needed inside.
type Book struct {
	instrument string
	bids       *ladder
	asks       *ladder

	// order ids that participated in a trade during the current event,
	// cleared at every event boundary
	tradedThisEvent map[int64]struct{}

	inbox   *bus.Queue[*model.Order]
	sink    RecordSink
	metrics *obs.Metrics

	stopping uint32
	wg       sync.WaitGroup
}

// New creates a book for one instrument with the given inbox capacity.
func New(instrument string, inboxCapacity int, sink RecordSink, metrics *obs.Metrics) *Book {
	return &Book{
		instrument:      instrument,
		bids:            newLadder(enum.SideBuy),
		asks:            newLadder(enum.SideSell),
		tradedThisEvent: make(map[int64]struct{}),
		inbox:           bus.NewQueue[*model.Order](inboxCapacity),
		sink:            sink,
		metrics:         metrics,
	}
}

// Instrument returns the instrument this book matches.
func (b *Book) Instrument() string {
	return b.instrument
}

// Submit enqueues an order into this book's worker inbox, blocking while the
// inbox is at capacity.
func (b *Book) Submit(o *model.Order) error {
	return b.inbox.Push(o)
}

// Start spawns the matching worker.
func (b *Book) Start() {
	b.wg.Add(1)
	go b.run()
}

// Stop signals the worker to finish draining its inbox and waits for it.
func (b *Book) Stop() {
	atomic.StoreUint32(&b.stopping, 1)
	b.wg.Wait()
}

func (b *Book) run() {
	defer b.wg.Done()
	for atomic.LoadUint32(&b.stopping) == 0 || !b.inbox.Empty() {
		o, ok := b.inbox.TryPop()
		if !ok {
			time.Sleep(time.Millisecond)
			continue
		}
		b.processOrder(o)
	}
}

// processOrder applies one event to the book and emits its records.
func (b *Book) processOrder(o *model.Order) {
	eventTs := o.Timestamp

	if o.Instrument != b.instrument {
		obs.Errorf("order %d for instrument %s routed to book %s", o.OrderID, o.Instrument, b.instrument)
		b.emitTransition(o, enum.OrderStatusRejected, eventTs)
		return
	}

	if o.Action == enum.OrderActionNew {
		o.InitMatchingState()
	}

	clear(b.tradedThisEvent)

	switch o.Action {
	case enum.OrderActionNew:
		b.processNew(o, eventTs)
	case enum.OrderActionModify:
		b.processModify(o, eventTs)
	case enum.OrderActionCancel:
		b.processCancel(o, eventTs)
	default:
		obs.Warnf("unknown action for order %d", o.OrderID)
		b.emitTransition(o, enum.OrderStatusRejected, eventTs)
	}
	b.metrics.IncEvent()
}

func (b *Book) processNew(o *model.Order, eventTs uint64) {
	switch o.Type {
	case enum.OrderTypeLimit:
		b.sideLadder(o.Side).insert(o)
		b.emitTransition(o, enum.OrderStatusPending, eventTs)
		b.matchOrders(eventTs)
	case enum.OrderTypeMarket:
		b.sweepMarket(o, eventTs)
	default:
		b.emitTransition(o, enum.OrderStatusRejected, eventTs)
	}
}

// sweepMarket consumes the opposing ladder best-first at each resting order's
// price. A residual that runs out of liquidity is dropped silently; REJECTED
// is emitted only when the sweep filled nothing at all.
func (b *Book) sweepMarket(o *model.Order, eventTs uint64) {
	initialQty := o.RemainingQuantity
	cumBefore := o.CumulativeExecutedQuantity
	opp := b.sideLadder(opposite(o.Side))

	for o.RemainingQuantity > 0 {
		lv := opp.best()
		if lv == nil {
			break
		}
		resting := lv.front()
		qty := min(o.RemainingQuantity, resting.RemainingQuantity)
		b.recordMatch(resting, o, qty, resting.Price, eventTs)
		if resting.RemainingQuantity == 0 {
			opp.popFront(lv)
		}
	}

	if o.CumulativeExecutedQuantity == cumBefore && initialQty > 0 {
		b.emitTransition(o, enum.OrderStatusRejected, eventTs)
	}
}

func (b *Book) processModify(incoming *model.Order, eventTs uint64) {
	existing, ok := b.bids.removeByID(incoming.OrderID)
	if !ok {
		existing, ok = b.asks.removeByID(incoming.OrderID)
	}
	if !ok {
		b.emitTransition(incoming, enum.OrderStatusRejected, eventTs)
		return
	}

	// the modified order keeps its executed quantity but loses time priority
	mod := *existing
	mod.Timestamp = eventTs
	mod.Price = incoming.Price
	mod.Quantity = incoming.Quantity
	mod.Type = incoming.Type
	mod.Action = enum.OrderActionModify

	if mod.Quantity <= mod.CumulativeExecutedQuantity {
		// nothing left to rest
		mod.RemainingQuantity = 0
		mod.Status = enum.OrderStatusExecuted
		if mod.CumulativeExecutedQuantity == 0 && mod.Quantity == 0 {
			mod.Status = enum.OrderStatusCanceled
		}
		b.emitTransition(&mod, mod.Status, eventTs)
		return
	}

	mod.RemainingQuantity = mod.Quantity - mod.CumulativeExecutedQuantity
	mod.Status = enum.OrderStatusPending

	if mod.Type == enum.OrderTypeMarket {
		b.sweepMarket(&mod, eventTs)
		return
	}

	reinserted := mod
	b.sideLadder(reinserted.Side).insert(&reinserted)
	b.matchOrders(eventTs)

	_, traded := b.tradedThisEvent[reinserted.OrderID]
	resting := b.sideLadder(reinserted.Side).find(reinserted.Price, reinserted.OrderID)
	if resting != nil && !traded {
		// resting after modify, untouched by the immediate match
		b.emitTransition(resting, resting.Status, eventTs)
	}
}

func (b *Book) processCancel(incoming *model.Order, eventTs uint64) {
	existing, ok := b.bids.removeByID(incoming.OrderID)
	if !ok {
		existing, ok = b.asks.removeByID(incoming.OrderID)
	}
	if !ok {
		b.emitTransition(incoming, enum.OrderStatusRejected, eventTs)
		return
	}
	existing.Timestamp = eventTs
	existing.Action = enum.OrderActionCancel
	existing.Status = enum.OrderStatusCanceled
	b.emitTransition(existing, enum.OrderStatusCanceled, eventTs)
}

// matchOrders runs the continuous matching loop while the book is crossed.
// The earlier-arrived side's price is taken; a timestamp tie breaks to the bid.
func (b *Book) matchOrders(eventTs uint64) {
	for !b.bids.empty() && !b.asks.empty() {
		bestBid := b.bids.best()
		bestAsk := b.asks.best()
		if bestBid.price < bestAsk.price {
			break
		}

		buy := bestBid.front()
		sell := bestAsk.front()

		var matchPrice model.Price
		switch {
		case buy.Timestamp < sell.Timestamp:
			matchPrice = buy.Price
		case sell.Timestamp < buy.Timestamp:
			matchPrice = sell.Price
		default:
			matchPrice = bestBid.price
		}

		qty := min(buy.RemainingQuantity, sell.RemainingQuantity)
		b.recordMatch(buy, sell, qty, matchPrice, eventTs)

		if buy.RemainingQuantity == 0 {
			b.bids.popFront(bestBid)
		}
		if sell.RemainingQuantity == 0 {
			b.asks.popFront(bestAsk)
		}
	}
}

// recordMatch applies one fill to both participants and emits their records in
// argument order: buy before sell in the continuous match, resting before
// incoming in a market sweep.
func (b *Book) recordMatch(first, second *model.Order, qty model.Quantity, price model.Price, eventTs uint64) {
	applyFill(first, qty)
	applyFill(second, qty)

	b.tradedThisEvent[first.OrderID] = struct{}{}
	b.tradedThisEvent[second.OrderID] = struct{}{}

	b.emit(model.NewMatchRecord(first, b.instrument, qty, price, second.OrderID, eventTs))
	b.emit(model.NewMatchRecord(second, b.instrument, qty, price, first.OrderID, eventTs))
	b.metrics.IncMatch()
}

func applyFill(o *model.Order, qty model.Quantity) {
	o.RemainingQuantity -= qty
	o.CumulativeExecutedQuantity += qty
	if o.RemainingQuantity == 0 {
		o.Status = enum.OrderStatusExecuted
	} else {
		o.Status = enum.OrderStatusPartiallyExecuted
	}
}

func (b *Book) emitTransition(o *model.Order, status enum.OrderStatus, eventTs uint64) {
	if status == enum.OrderStatusRejected {
		b.metrics.IncReject()
	}
	b.emit(model.NewTransitionRecord(o, b.instrument, status, eventTs))
}

func (b *Book) emit(rec model.OutputRecord) {
	b.sink.Emit(rec)
	b.metrics.IncRecord()
}

func (b *Book) sideLadder(side enum.Side) *ladder {
	if side == enum.SideBuy {
		return b.bids
	}
	return b.asks
}

func opposite(side enum.Side) enum.Side {
	if side == enum.SideBuy {
		return enum.SideSell
	}
	return enum.SideBuy
}

// LevelView is a read-only view of one resting order, used for snapshots.
type LevelView struct {
	Price     model.Price
	OrderID   int64
	Remaining model.Quantity
}

// Snapshot lists resting orders best-first per side. It must only be called
// while the worker is not running (tests, post-shutdown dumps).
func (b *Book) Snapshot() (bids, asks []LevelView) {
	return snapshotSide(b.bids), snapshotSide(b.asks)
}

func snapshotSide(l *ladder) []LevelView {
	var out []LevelView
	for _, price := range l.prices {
		for _, o := range l.levels[price].orders {
			out = append(out, LevelView{Price: price, OrderID: o.OrderID, Remaining: o.RemainingQuantity})
		}
	}
	return out
}
