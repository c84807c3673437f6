package models

import "strconv"

// Money is an amount in the currency's smallest unit. RWF has no subunit, so
// Money(1000) is 1000 RWF.
type Money int64

// Times returns m multiplied by n.
func (m Money) Times(n int) Money {
	return m * Money(n)
}

// String formats the amount without a currency code.
func (m Money) String() string {
	return strconv.FormatInt(int64(m), 10)
}
