package engine

import (
	"time"

	"main/internal/book"
	"main/internal/bus"
	"main/internal/model"
	"main/internal/obs"
)

const (
	defaultInputQueueCapacity = 100_000
	defaultBookInboxCapacity  = 1024
)

// Config tunes the coordinator's queues.
type Config struct {
	InputQueueCapacity int
	BookInboxCapacity  int
}

func (cfg Config) withDefaults() Config {
	if cfg.InputQueueCapacity <= 0 {
		cfg.InputQueueCapacity = defaultInputQueueCapacity
	}
	if cfg.BookInboxCapacity <= 0 {
		cfg.BookInboxCapacity = defaultBookInboxCapacity
	}
	return cfg
}

// Coordinator routes orders from the input queue to per-instrument books,
// creating books lazily, and sequences the drain-based shutdown: once the
// input queue is closed and drained it stops every book, joins its worker,
// and only then returns.
type Coordinator struct {
	cfg     Config
	input   *bus.Queue[*model.Order]
	books   map[string]*book.Book
	sink    book.RecordSink
	metrics *obs.Metrics
}

// New creates a coordinator. Every book it spawns emits into sink.
func New(cfg Config, sink book.RecordSink, metrics *obs.Metrics) *Coordinator {
	cfg = cfg.withDefaults()
	return &Coordinator{
		cfg:     cfg,
		input:   bus.NewQueue[*model.Order](cfg.InputQueueCapacity),
		books:   make(map[string]*book.Book),
		sink:    sink,
		metrics: metrics,
	}
}

// Input returns the queue the reader feeds. Closing it starts the shutdown.
func (c *Coordinator) Input() *bus.Queue[*model.Order] {
	return c.input
}

// Run consumes the input queue until it is closed and drained, then stops
// all book workers. It blocks until every worker has joined.
func (c *Coordinator) Run() {
	start := time.Now()
	for {
		o, ok := c.input.Pop()
		if !ok {
			break
		}
		c.route(o)
	}
	for _, b := range c.books {
		b.Stop()
	}
	c.metrics.ObserveDispatch(time.Since(start))
	obs.Debugf("coordinator drained, %d books stopped", len(c.books))
}

func (c *Coordinator) route(o *model.Order) {
	b, ok := c.books[o.Instrument]
	if !ok {
		obs.Debugf("creating order book for instrument %s", o.Instrument)
		b = book.New(o.Instrument, c.cfg.BookInboxCapacity, c.sink, c.metrics)
		b.Start()
		c.books[o.Instrument] = b
	}
	if err := b.Submit(o); err != nil {
		obs.Errorf("submit order %d to book %s: %v", o.OrderID, o.Instrument, err)
	}
}

// Books returns the per-instrument books. Only meaningful after Run returned.
func (c *Coordinator) Books() map[string]*book.Book {
	return c.books
}

// DumpBooks logs a snapshot of every book's resting orders. Callers must only
// use it after Run returned.
func (c *Coordinator) DumpBooks() {
	for instrument, b := range c.books {
		bids, asks := b.Snapshot()
		obs.Infof("book %s: %d resting bids, %d resting asks", instrument, len(bids), len(asks))
		for _, v := range asks {
			obs.Infof("  ask %v: %d@%d", v.Price, v.Remaining, v.OrderID)
		}
		for _, v := range bids {
			obs.Infof("  bid %v: %d@%d", v.Price, v.Remaining, v.OrderID)
		}
	}
}
