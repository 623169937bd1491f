package money

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidCurrency  = errors.New("invalid currency")
	ErrNegativeAmount   = errors.New("amount must not be negative")
	ErrCurrencyMismatch = errors.New("currency mismatch")
)

// zeroDecimal lists ISO 4217 currencies without a minor unit.
var zeroDecimal = map[string]bool{
	"JPY": true,
	"KRW": true,
	"VND": true,
	"CLP": true,
	"ISK": true,
}

// Money is an amount in the currency's minor unit.
type Money struct {
	minor    int64
	currency string
}

func New(minor int64, currency string) (Money, error) {
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if len(currency) != 3 {
		return Money{}, ErrInvalidCurrency
	}
	if minor < 0 {
		return Money{}, ErrNegativeAmount
	}
	return Money{minor: minor, currency: currency}, nil
}

func (m Money) Minor() int64     { return m.minor }
func (m Money) Currency() string { return m.currency }
func (m Money) IsZero() bool     { return m.minor == 0 }

func (m Money) Times(n int) Money {
	return Money{minor: m.minor * int64(n), currency: m.currency}
}

func (m Money) Add(o Money) (Money, error) {
	if m.currency != o.currency {
		return Money{}, ErrCurrencyMismatch
	}
	return Money{minor: m.minor + o.minor, currency: m.currency}, nil
}

func (m Money) exponent() int32 {
	if zeroDecimal[m.currency] {
		return 0
	}
	return 2
}

// Decimal returns the amount in major units.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.minor, -m.exponent())
}

func (m Money) String() string {
	return m.Decimal().StringFixed(m.exponent()) + " " + m.currency
}
