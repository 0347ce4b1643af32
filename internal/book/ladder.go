package book

import (
	"sort"

	"main/internal/model"
	"main/internal/model/enum"
)

// priceLevel is the FIFO of resting orders at one price.
type priceLevel struct {
	price  model.Price
	orders []*model.Order
}

func (lv *priceLevel) front() *model.Order {
	return lv.orders[0]
}

// ladder is one side of the book: price levels iterable best-first.
// Bids keep prices descending, asks ascending. Empty levels are erased
// eagerly, so best() never returns a hollow level.
type ladder struct {
	side   enum.Side
	levels map[model.Price]*priceLevel
	prices []model.Price
}

func newLadder(side enum.Side) *ladder {
	return &ladder{
		side:   side,
		levels: make(map[model.Price]*priceLevel),
	}
}

func (l *ladder) empty() bool {
	return len(l.prices) == 0
}

// best returns the level at the top of this side, nil when the side is empty.
func (l *ladder) best() *priceLevel {
	if len(l.prices) == 0 {
		return nil
	}
	return l.levels[l.prices[0]]
}

// insert appends the order to its price level, creating the level if needed.
func (l *ladder) insert(o *model.Order) {
	lv, ok := l.levels[o.Price]
	if !ok {
		lv = &priceLevel{price: o.Price}
		l.levels[o.Price] = lv
		idx := l.insertionIndex(o.Price)
		l.prices = append(l.prices, 0)
		copy(l.prices[idx+1:], l.prices[idx:])
		l.prices[idx] = o.Price
	}
	lv.orders = append(lv.orders, o)
}

// popFront removes the level's head order, erasing the level when it empties.
func (l *ladder) popFront(lv *priceLevel) {
	lv.orders = lv.orders[1:]
	if len(lv.orders) == 0 {
		l.eraseLevel(lv.price)
	}
}

// removeByID scans levels best-first and removes the order with the given id.
func (l *ladder) removeByID(id int64) (*model.Order, bool) {
	for _, price := range l.prices {
		lv := l.levels[price]
		for i, o := range lv.orders {
			if o.OrderID != id {
				continue
			}
			lv.orders = append(lv.orders[:i], lv.orders[i+1:]...)
			if len(lv.orders) == 0 {
				l.eraseLevel(price)
			}
			return o, true
		}
	}
	return nil, false
}

// find returns the resting order with the given id at the given price.
func (l *ladder) find(price model.Price, id int64) *model.Order {
	lv, ok := l.levels[price]
	if !ok {
		return nil
	}
	for _, o := range lv.orders {
		if o.OrderID == id {
			return o
		}
	}
	return nil
}

func (l *ladder) eraseLevel(price model.Price) {
	delete(l.levels, price)
	idx := l.levelIndex(price)
	l.prices = append(l.prices[:idx], l.prices[idx+1:]...)
}

func (l *ladder) insertionIndex(price model.Price) int {
	if l.side == enum.SideBuy {
		return sort.Search(len(l.prices), func(i int) bool { return l.prices[i] < price })
	}
	return sort.Search(len(l.prices), func(i int) bool { return l.prices[i] > price })
}

func (l *ladder) levelIndex(price model.Price) int {
	if l.side == enum.SideBuy {
		return sort.Search(len(l.prices), func(i int) bool { return l.prices[i] <= price })
	}
	return sort.Search(len(l.prices), func(i int) bool { return l.prices[i] >= price })
}
