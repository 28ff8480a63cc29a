package analytics

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

var settledDay = time.Date(2024, 3, 9, 14, 0, 0, 0, time.UTC)

type recordOption func(*BetRecord)

func wager(stake, payout string, result Result, opts ...recordOption) BetRecord {
	r := BetRecord{
		ID:       "r",
		Stake:    decimal.RequireFromString(stake),
		Payout:   decimal.RequireFromString(payout),
		Category: CategorySport,
		Kind:     KindWager,
		Result:   result,
	}
	if result != ResultOpen {
		at := settledDay
		r.SettledAt = &at
	}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

func sport(s string) recordOption {
	return func(r *BetRecord) { r.Sport = s }
}

func track(s string) recordOption {
	return func(r *BetRecord) {
		r.Track = s
		r.Category = CategoryRacing
	}
}

func betType(s string) recordOption {
	return func(r *BetRecord) { r.BetType = s }
}

func settledAt(t time.Time) recordOption {
	return func(r *BetRecord) { r.SettledAt = &t }
}

func cash(kind TransactionKind, amount string) BetRecord {
	return BetRecord{ID: "c", Kind: kind, Amount: decimal.RequireFromString(amount)}
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...interface{}) {
	t.Helper()
	assert.True(t, decimal.RequireFromString(want).Equal(got),
		append([]interface{}{"expected %s, got %s", want, got.String()}, msgAndArgs...)...)
}

func strPtr(s string) *string {
	return &s
}
