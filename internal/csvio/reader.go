package csvio

import (
	"bufio"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/yanun0323/errors"
	"github.com/yanun0323/pkg/sys"

	"main/internal/bus"
	"main/internal/model"
	"main/internal/model/enum"
	"main/internal/obs"
)

var (
	ErrEmptyInput    = errors.New("input has no header line")
	ErrMissingColumn = errors.New("header missing required column")
)

const pushRetryInterval = time.Millisecond

// columns maps header names to field positions, so shuffled headers parse fine.
type columns struct {
	timestamp  int
	orderID    int
	instrument int
	side       int
	typ        int
	quantity   int
	price      int
	action     int
	total      int
}

// Reader parses order event rows and feeds the input queue. Malformed rows are
// logged and skipped; a bad row never aborts the run.
type Reader struct {
	src     *bufio.Scanner
	out     *bus.Queue[*model.Order]
	metrics *obs.Metrics
}

// NewReader wraps an input stream. The queue is closed when Run returns.
func NewReader(src io.Reader, out *bus.Queue[*model.Order], metrics *obs.Metrics) *Reader {
	sc := bufio.NewScanner(src)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return &Reader{src: sc, out: out, metrics: metrics}
}

// Run consumes the whole input, pushing parsed orders in file order. It always
// closes the output queue, so downstream drains even when reading fails.
func (r *Reader) Run() error {
	defer r.out.Close()

	start := time.Now()
	cols, err := r.readHeader()
	if err != nil {
		return err
	}

	lineNo := 1
	for r.src.Scan() {
		lineNo++
		line := strings.TrimSpace(r.src.Text())
		if line == "" {
			continue
		}

		o, err := parseRow(line, cols)
		if err != nil {
			r.metrics.IncRowSkipped()
			obs.Warnf("skipping line %d: %v (%q)", lineNo, err, line)
			continue
		}

		if !r.push(o) {
			obs.Warnf("shutdown requested, stopping intake at line %d", lineNo)
			break
		}
		r.metrics.IncRowParsed()
		r.metrics.ObserveInputDepth(r.out.Len())
	}
	if err := r.src.Err(); err != nil {
		return errors.Wrap(err, "read input")
	}

	r.metrics.ObserveRead(time.Since(start))
	obs.Infof("input drained, %d lines read", lineNo)
	return nil
}

// push applies backpressure with a bounded retry loop so an interrupt can stop
// intake while the queue is full.
func (r *Reader) push(o *model.Order) bool {
	for {
		switch r.out.TryPush(o) {
		case nil:
			return true
		case bus.ErrQueueClosed:
			return false
		}

		select {
		case <-sys.Shutdown():
			return false
		case <-time.After(pushRetryInterval):
		}
	}
}

func (r *Reader) readHeader() (columns, error) {
	if !r.src.Scan() {
		if err := r.src.Err(); err != nil {
			return columns{}, errors.Wrap(err, "read header")
		}
		return columns{}, ErrEmptyInput
	}

	fields := strings.Split(r.src.Text(), ",")
	cols := columns{
		timestamp:  -1,
		orderID:    -1,
		instrument: -1,
		side:       -1,
		typ:        -1,
		quantity:   -1,
		price:      -1,
		action:     -1,
		total:      len(fields),
	}

	for i, name := range fields {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "timestamp":
			cols.timestamp = i
		case "order_id":
			cols.orderID = i
		case "instrument":
			cols.instrument = i
		case "side":
			cols.side = i
		case "type":
			cols.typ = i
		case "quantity":
			cols.quantity = i
		case "price":
			cols.price = i
		case "action":
			cols.action = i
		}
	}

	required := []struct {
		name string
		idx  int
	}{
		{"timestamp", cols.timestamp},
		{"order_id", cols.orderID},
		{"instrument", cols.instrument},
		{"side", cols.side},
		{"type", cols.typ},
		{"quantity", cols.quantity},
		{"price", cols.price},
		{"action", cols.action},
	}
	for _, col := range required {
		if col.idx < 0 {
			return columns{}, errors.Wrapf(ErrMissingColumn, "column: %s", col.name)
		}
	}
	return cols, nil
}

func parseRow(line string, cols columns) (*model.Order, error) {
	fields := strings.Split(line, ",")
	if len(fields) != cols.total {
		return nil, errors.Errorf("expected %d fields, got %d", cols.total, len(fields))
	}

	ts, err := strconv.ParseUint(strings.TrimSpace(fields[cols.timestamp]), 10, 64)
	if err != nil {
		return nil, errors.Wrap(err, "timestamp")
	}

	id, err := strconv.ParseInt(strings.TrimSpace(fields[cols.orderID]), 10, 64)
	if err != nil {
		return nil, errors.Wrap(err, "order_id")
	}

	instrument := strings.TrimSpace(fields[cols.instrument])
	if instrument == "" {
		return nil, errors.New("empty instrument")
	}

	side, ok := enum.ParseSide(fields[cols.side])
	if !ok {
		return nil, errors.Errorf("unknown side %q", fields[cols.side])
	}

	typ, ok := enum.ParseOrderType(fields[cols.typ])
	if !ok {
		return nil, errors.Errorf("unknown type %q", fields[cols.typ])
	}

	action, ok := enum.ParseOrderAction(fields[cols.action])
	if !ok {
		return nil, errors.Errorf("unknown action %q", fields[cols.action])
	}

	qty, err := parseQuantity(fields[cols.quantity])
	if err != nil {
		return nil, errors.Wrap(err, "quantity")
	}

	price, err := parsePrice(fields[cols.price], typ, action)
	if err != nil {
		return nil, err
	}

	if qty == 0 && action != enum.OrderActionCancel {
		obs.Warnf("order %d has zero quantity", id)
	}

	return &model.Order{
		Timestamp:  ts,
		OrderID:    id,
		Instrument: instrument,
		Side:       side,
		Type:       typ,
		Action:     action,
		Quantity:   qty,
		Price:      price,
	}, nil
}

func parseQuantity(raw string) (model.Quantity, error) {
	v, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, err
	}
	return model.Quantity(v), nil
}

// parsePrice coerces the price field through decimal so malformed values reject
// the row instead of sliding into the book as garbage floats. Market orders
// always price at zero. A zero or negative price on a new limit order is
// suspicious but coercible, so it warns and the row is still admitted.
func parsePrice(raw string, typ enum.OrderType, action enum.OrderAction) (model.Price, error) {
	raw = strings.TrimSpace(raw)

	if typ == enum.OrderTypeMarket {
		if raw != "" && raw != "0" && raw != "0.0" {
			obs.Debugf("ignoring price %q on market order", raw)
		}
		return 0, nil
	}

	d, err := decimal.NewFromString(raw)
	if err != nil {
		return 0, errors.Wrap(err, "price")
	}
	p := d.InexactFloat64()
	if p <= 0 && action == enum.OrderActionNew {
		obs.Warnf("price %q on new limit order, might be unintentional", raw)
	}
	return p, nil
}
