package book

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"main/internal/model"
	"main/internal/model/enum"
)

func resting(id int64, side enum.Side, qty model.Quantity, px model.Price) *model.Order {
	o := &model.Order{OrderID: id, Side: side, Type: enum.OrderTypeLimit, Quantity: qty, Price: px}
	o.InitMatchingState()
	return o
}

func TestLadderBidsDescending(t *testing.T) {
	l := newLadder(enum.SideBuy)
	l.insert(resting(1, enum.SideBuy, 1, 100))
	l.insert(resting(2, enum.SideBuy, 1, 102))
	l.insert(resting(3, enum.SideBuy, 1, 101))

	assert.Equal(t, []model.Price{102, 101, 100}, l.prices)
	assert.Equal(t, model.Price(102), l.best().price)
}

func TestLadderAsksAscending(t *testing.T) {
	l := newLadder(enum.SideSell)
	l.insert(resting(1, enum.SideSell, 1, 100))
	l.insert(resting(2, enum.SideSell, 1, 98))
	l.insert(resting(3, enum.SideSell, 1, 99))

	assert.Equal(t, []model.Price{98, 99, 100}, l.prices)
	assert.Equal(t, model.Price(98), l.best().price)
}

func TestLadderLevelFIFO(t *testing.T) {
	l := newLadder(enum.SideBuy)
	l.insert(resting(1, enum.SideBuy, 1, 100))
	l.insert(resting(2, enum.SideBuy, 1, 100))

	lv := l.best()
	assert.Equal(t, int64(1), lv.front().OrderID)
	l.popFront(lv)
	assert.Equal(t, int64(2), lv.front().OrderID)
	l.popFront(lv)
	assert.True(t, l.empty())
}

func TestLadderRemoveByID(t *testing.T) {
	l := newLadder(enum.SideSell)
	l.insert(resting(1, enum.SideSell, 1, 100))
	l.insert(resting(2, enum.SideSell, 1, 101))
	l.insert(resting(3, enum.SideSell, 1, 101))

	o, ok := l.removeByID(2)
	require.True(t, ok)
	assert.Equal(t, int64(2), o.OrderID)
	assert.NotNil(t, l.find(101, 3))
	assert.Nil(t, l.find(101, 2))

	// removing the last order at a price erases the level
	_, ok = l.removeByID(1)
	require.True(t, ok)
	assert.Equal(t, []model.Price{101}, l.prices)

	_, ok = l.removeByID(42)
	assert.False(t, ok)
}
