package analytics

import "strings"

// Aliases map free-form labels (lower-cased) onto the engine enums
type Aliases struct {
	Kinds      map[string]TransactionKind
	Categories map[string]Category
	Results    map[string]Result
}

// DefaultAliases returns the built-in alias tables
func DefaultAliases() Aliases {
	return Aliases{
		Kinds: map[string]TransactionKind{
			"wager":      KindWager,
			"bet":        KindWager,
			"stake":      KindWager,
			"deposit":    KindDeposit,
			"withdrawal": KindWithdrawal,
			"withdraw":   KindWithdrawal,
		},
		Categories: map[string]Category{
			"sport":  CategorySport,
			"sports": CategorySport,
			"racing": CategoryRacing,
			"race":   CategoryRacing,
		},
		Results: map[string]Result{
			"won":       ResultWon,
			"win":       ResultWon,
			"winner":    ResultWon,
			"lost":      ResultLost,
			"lose":      ResultLost,
			"loss":      ResultLost,
			"void":      ResultVoid,
			"refund":    ResultVoid,
			"scratched": ResultVoid,
			"cancelled": ResultVoid,
			"open":      ResultOpen,
			"pending":   ResultOpen,
		},
	}
}

// Merge returns a copy of a extended with the entries of other.
// Entries in other win on conflict.
func (a Aliases) Merge(other Aliases) Aliases {
	out := Aliases{
		Kinds:      make(map[string]TransactionKind, len(a.Kinds)+len(other.Kinds)),
		Categories: make(map[string]Category, len(a.Categories)+len(other.Categories)),
		Results:    make(map[string]Result, len(a.Results)+len(other.Results)),
	}
	for k, v := range a.Kinds {
		out.Kinds[k] = v
	}
	for k, v := range other.Kinds {
		out.Kinds[normalizeLabel(k)] = v
	}
	for k, v := range a.Categories {
		out.Categories[k] = v
	}
	for k, v := range other.Categories {
		out.Categories[normalizeLabel(k)] = v
	}
	for k, v := range a.Results {
		out.Results[k] = v
	}
	for k, v := range other.Results {
		out.Results[normalizeLabel(k)] = v
	}
	return out
}

func normalizeLabel(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
