package model

import "strconv"

// Price is an IEEE-754 double as it appears in the input. MARKET orders carry 0.
type Price = float64

// Quantity counts units of the instrument.
type Quantity = uint64

// AppendPrice renders a price with Go's shortest round-trip formatting,
// the plain "%v" rendering the output contract asks for.
func AppendPrice(buf []byte, p Price) []byte {
	return strconv.AppendFloat(buf, p, 'g', -1, 64)
}

// AppendQuantity renders a quantity in base 10.
func AppendQuantity(buf []byte, q Quantity) []byte {
	return strconv.AppendUint(buf, q, 10)
}
