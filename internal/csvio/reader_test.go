package csvio

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"main/internal/bus"
	"main/internal/model"
	"main/internal/model/enum"
	"main/internal/obs"
)

func runReader(t *testing.T, input string) ([]*model.Order, error) {
	t.Helper()
	q := bus.NewQueue[*model.Order](128)
	r := NewReader(strings.NewReader(input), q, obs.NewMetrics())
	err := r.Run()

	var orders []*model.Order
	for {
		o, ok := q.Pop()
		if !ok {
			break
		}
		orders = append(orders, o)
	}
	return orders, err
}

func TestReaderParsesRows(t *testing.T) {
	input := "timestamp,order_id,instrument,side,type,quantity,price,action\n" +
		"1,1,ABC,BUY,LIMIT,10,100.5,NEW\n" +
		"2,2,ABC,sell,limit,4,100.5,new\n"

	orders, err := runReader(t, input)
	require.NoError(t, err)
	require.Len(t, orders, 2)

	o := orders[0]
	assert.Equal(t, uint64(1), o.Timestamp)
	assert.Equal(t, int64(1), o.OrderID)
	assert.Equal(t, "ABC", o.Instrument)
	assert.Equal(t, enum.SideBuy, o.Side)
	assert.Equal(t, enum.OrderTypeLimit, o.Type)
	assert.Equal(t, enum.OrderActionNew, o.Action)
	assert.Equal(t, model.Quantity(10), o.Quantity)
	assert.Equal(t, model.Price(100.5), o.Price)

	assert.Equal(t, enum.SideSell, orders[1].Side)
}

func TestReaderShuffledHeader(t *testing.T) {
	input := "action,price,quantity,type,side,instrument,order_id,timestamp\n" +
		"NEW,99.5,7,LIMIT,SELL,XYZ,42,9\n"

	orders, err := runReader(t, input)
	require.NoError(t, err)
	require.Len(t, orders, 1)

	o := orders[0]
	assert.Equal(t, uint64(9), o.Timestamp)
	assert.Equal(t, int64(42), o.OrderID)
	assert.Equal(t, "XYZ", o.Instrument)
	assert.Equal(t, model.Price(99.5), o.Price)
	assert.Equal(t, model.Quantity(7), o.Quantity)
}

func TestReaderSkipsMalformedRows(t *testing.T) {
	input := "timestamp,order_id,instrument,side,type,quantity,price,action\n" +
		"\n" +
		"1,1,ABC,BUY,LIMIT,10,100,NEW\n" +
		"not-a-number,2,ABC,BUY,LIMIT,10,100,NEW\n" +
		"3,3,ABC,HOLD,LIMIT,10,100,NEW\n" +
		"4,4,ABC,BUY,LIMIT,10,abc,NEW\n" +
		"5,5,ABC,BUY,LIMIT,10,100\n" +
		"6,6,ABC,BUY,LIMIT,,100,NEW\n" +
		"7,7,ABC,BUY,LIMIT,10,100,NEW\n"

	orders, err := runReader(t, input)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, int64(1), orders[0].OrderID)
	assert.Equal(t, int64(7), orders[1].OrderID)
}

func TestReaderRejectsEmptyLimitPrice(t *testing.T) {
	input := "timestamp,order_id,instrument,side,type,quantity,price,action\n" +
		"1,1,ABC,BUY,LIMIT,10,,NEW\n" +
		"2,2,ABC,BUY,LIMIT,10,,CANCEL\n"

	orders, err := runReader(t, input)
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestReaderAdmitsNonPositiveLimitPrice(t *testing.T) {
	input := "timestamp,order_id,instrument,side,type,quantity,price,action\n" +
		"1,1,ABC,BUY,LIMIT,10,-5,NEW\n" +
		"2,2,ABC,SELL,LIMIT,10,0,NEW\n"

	orders, err := runReader(t, input)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, model.Price(-5), orders[0].Price)
	assert.Equal(t, model.Price(0), orders[1].Price)
}

func TestReaderMarketPriceIgnored(t *testing.T) {
	input := "timestamp,order_id,instrument,side,type,quantity,price,action\n" +
		"1,1,ABC,BUY,MARKET,10,,NEW\n" +
		"2,2,ABC,BUY,MARKET,10,123.45,NEW\n"

	orders, err := runReader(t, input)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, model.Price(0), orders[0].Price)
	assert.Equal(t, model.Price(0), orders[1].Price)
}

func TestReaderCancelRow(t *testing.T) {
	input := "timestamp,order_id,instrument,side,type,quantity,price,action\n" +
		"1,1,ABC,BUY,LIMIT,0,0,CANCEL\n"

	orders, err := runReader(t, input)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, enum.OrderActionCancel, orders[0].Action)
	assert.Equal(t, model.Quantity(0), orders[0].Quantity)
	assert.Equal(t, model.Price(0), orders[0].Price)
}

func TestReaderMissingColumn(t *testing.T) {
	input := "timestamp,order_id,instrument,side,type,quantity,price\n" +
		"1,1,ABC,BUY,LIMIT,10,100\n"

	orders, err := runReader(t, input)
	require.ErrorIs(t, err, ErrMissingColumn)
	assert.Empty(t, orders)
}

func TestReaderEmptyInput(t *testing.T) {
	_, err := runReader(t, "")
	assert.ErrorIs(t, err, ErrEmptyInput)
}

func TestReaderClosesQueue(t *testing.T) {
	q := bus.NewQueue[*model.Order](8)
	r := NewReader(strings.NewReader("timestamp,order_id,instrument,side,type,quantity,price,action\n"), q, nil)
	require.NoError(t, r.Run())

	_, ok := q.Pop()
	assert.False(t, ok)
}
