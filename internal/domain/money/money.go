package money

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
)

var (
	ErrNegativeAmount   = errors.New("money amount cannot be negative")
	ErrCurrencyMismatch = errors.New("currency mismatch")
	ErrInvalidCurrency  = errors.New("invalid currency code")
	ErrNegativeFactor   = errors.New("multiplication factor cannot be negative")
)

type Currency string

const (
	USD Currency = "USD"
	EUR Currency = "EUR"
	JPY Currency = "JPY"
)

func NewCurrency(s string) (Currency, error) {
	if len(s) != 3 {
		return "", ErrInvalidCurrency
	}
	return Currency(s), nil
}

func (c Currency) String() string {
	return string(c)
}

// Money is an immutable amount in integer minor units (cents for USD).
// Negative amounts are unrepresentable.
type Money struct {
	amount   int64
	currency Currency
}

func New(amount int64, currency Currency) (Money, error) {
	if amount < 0 {
		return Money{}, ErrNegativeAmount
	}
	if currency == "" {
		return Money{}, ErrInvalidCurrency
	}
	return Money{amount: amount, currency: currency}, nil
}

func Zero(currency Currency) Money {
	return Money{amount: 0, currency: currency}
}

func (m Money) Amount() int64 {
	return m.amount
}

func (m Money) Currency() Currency {
	return m.currency
}

func (m Money) IsZero() bool {
	return m.amount == 0
}

func (m Money) Equal(other Money) bool {
	return m.amount == other.amount && m.currency == other.currency
}

func (m Money) Add(other Money) (Money, error) {
	if m.currency != other.currency {
		return Money{}, ErrCurrencyMismatch
	}
	return Money{amount: m.amount + other.amount, currency: m.currency}, nil
}

func (m Money) Subtract(other Money) (Money, error) {
	if m.currency != other.currency {
		return Money{}, ErrCurrencyMismatch
	}
	if other.amount > m.amount {
		return Money{}, ErrNegativeAmount
	}
	return Money{amount: m.amount - other.amount, currency: m.currency}, nil
}

// MultiplyFloat scales the amount by factor, rounding to the nearest minor unit.
func (m Money) MultiplyFloat(factor float64) (Money, error) {
	if factor < 0 {
		return Money{}, ErrNegativeFactor
	}
	scaled := int64(math.Round(float64(m.amount) * factor))
	return Money{amount: scaled, currency: m.currency}, nil
}

func (m Money) String() string {
	return fmt.Sprintf("%s %d", m.currency, m.amount)
}

type moneyJSON struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(moneyJSON{Amount: m.amount, Currency: string(m.currency)})
}

func (m *Money) UnmarshalJSON(data []byte) error {
	var raw moneyJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := New(raw.Amount, Currency(raw.Currency))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
