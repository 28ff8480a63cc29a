package analytics

import (
	"github.com/shopspring/decimal"

	"github.com/bimakw/wager-analytics/internal/domain/entities"
)

// Classifier derives categorical keys and settlement outcomes from raw rows
type Classifier struct {
	aliases Aliases
}

// NewClassifier creates a classifier using the given alias tables
func NewClassifier(aliases Aliases) *Classifier {
	return &Classifier{aliases: aliases}
}

// Classify converts one raw row into a BetRecord
func (c *Classifier) Classify(raw entities.RawRecord) (BetRecord, error) {
	rec := BetRecord{
		ID:         raw.ID,
		PlacedAt:   raw.PlacedAt,
		SettledAt:  raw.SettledAt,
		Sport:      CanonicalKey(deref(raw.Sport)),
		Track:      CanonicalKey(deref(raw.Track)),
		BetType:    CanonicalKey(deref(raw.BetType)),
		MarketType: CanonicalKey(deref(raw.MarketType)),
	}

	kindLabel := normalizeLabel(deref(raw.TransactionKind))
	kind, ok := c.aliases.Kinds[kindLabel]
	if !ok {
		reason := "unrecognized transaction kind " + quote(kindLabel)
		if kindLabel == "" {
			reason = "missing transaction kind"
		}
		return BetRecord{}, &ValidationError{RecordID: raw.ID, Field: "transaction_kind", Reason: reason}
	}
	rec.Kind = kind

	var err error
	if rec.Stake, err = parseAmount(raw.ID, "stake", raw.Stake); err != nil {
		return BetRecord{}, err
	}
	if rec.Payout, err = parseAmount(raw.ID, "payout", raw.Payout); err != nil {
		return BetRecord{}, err
	}

	switch kind {
	case KindDeposit, KindWithdrawal:
		rec.Amount, err = c.cashAmount(raw, rec)
		if err != nil {
			return BetRecord{}, err
		}
		return rec, nil
	}

	if rec.Category, err = c.category(raw, rec); err != nil {
		return BetRecord{}, err
	}
	rec.Result = c.result(raw, rec)

	return rec, nil
}

// ClassifyAll classifies every row, separating accepted records from rejections.
// Input order is preserved in both outputs.
func (c *Classifier) ClassifyAll(raws []entities.RawRecord) ([]BetRecord, []Rejection) {
	records := make([]BetRecord, 0, len(raws))
	var rejections []Rejection

	for _, raw := range raws {
		rec, err := c.Classify(raw)
		if err != nil {
			verr, _ := err.(*ValidationError)
			rejections = append(rejections, Rejection{RecordID: raw.ID, Err: verr})
			continue
		}
		records = append(records, rec)
	}

	return records, rejections
}

func (c *Classifier) cashAmount(raw entities.RawRecord, rec BetRecord) (decimal.Decimal, error) {
	if raw.Amount != nil && CanonicalKey(*raw.Amount) != "" {
		return parseAmount(raw.ID, "amount", raw.Amount)
	}
	if rec.Kind == KindDeposit {
		return rec.Payout, nil
	}
	return rec.Stake, nil
}

// category resolves the wager category. Without an explicit label a record
// with a track is racing and everything else is sport.
func (c *Classifier) category(raw entities.RawRecord, rec BetRecord) (Category, error) {
	label := normalizeLabel(deref(raw.Category))
	if label == "" {
		if rec.Track != Unclassified {
			return CategoryRacing, nil
		}
		return CategorySport, nil
	}
	cat, ok := c.aliases.Categories[label]
	if !ok {
		return "", &ValidationError{RecordID: raw.ID, Field: "category", Reason: "unrecognized category " + quote(label)}
	}
	return cat, nil
}

// result derives the settlement outcome. Unsettled wagers are always open;
// otherwise an explicit label wins and the amounts decide when there is none.
func (c *Classifier) result(raw entities.RawRecord, rec BetRecord) Result {
	if rec.SettledAt == nil {
		return ResultOpen
	}
	if res, ok := c.aliases.Results[normalizeLabel(deref(raw.Result))]; ok && res != ResultOpen {
		return res
	}
	switch rec.Payout.Cmp(rec.Stake) {
	case 1:
		return ResultWon
	case 0:
		if rec.Stake.IsPositive() {
			return ResultVoid
		}
	}
	return ResultLost
}

func parseAmount(id, field string, v *string) (decimal.Decimal, error) {
	s := CanonicalKey(deref(v))
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, &ValidationError{RecordID: id, Field: field, Reason: "not a number: " + quote(s)}
	}
	if d.IsNegative() {
		return decimal.Zero, &ValidationError{RecordID: id, Field: field, Reason: "negative amount " + s}
	}
	return d, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func quote(s string) string {
	return `"` + s + `"`
}
