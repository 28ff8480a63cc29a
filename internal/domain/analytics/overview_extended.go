package analytics

import (
	"fmt"
	"strings"
)

// Labels of the supplementary overview cards
const (
	LabelWorstSport = "Worst sport"
	LabelSinglesPL  = "Singles P/L"
	LabelMultisPL   = "Multis P/L"
)

// multiBetTypes are the bet types, lower-cased, that combine several legs
var multiBetTypes = map[string]bool{
	"multi":           true,
	"same game multi": true,
	"exotic":          true,
}

// IsMultiBetType reports whether a bet type key is a multi. Unclassified
// bet types count as singles.
func IsMultiBetType(betType string) bool {
	return multiBetTypes[strings.ToLower(CanonicalKey(betType))]
}

// ComposeExtendedOverview builds the cards shown beside the main overview:
// the sport with the lowest ROI, then profit and win rate of singles and
// multis across both categories.
func ComposeExtendedOverview(records []BetRecord) []MetricCard {
	const helperWorst = "Lowest ROI by sport"

	cards := make([]MetricCard, 0, 3)

	worst, ok := worstGroup(records, DimensionSport, ForCategory(CategorySport))
	if !ok {
		cards = append(cards, emptyCard(LabelWorstSport, helperWorst))
	} else {
		name := worst.Key
		if worst.IsUnclassified() {
			name = UnclassifiedLabel
		}
		cards = append(cards, textCard(LabelWorstSport, helperWorst, name))
	}

	var singles, multis tally
	for _, c := range []Category{CategorySport, CategoryRacing} {
		rows, err := Aggregate(records, DimensionBetType, ForCategory(c))
		if err != nil {
			continue
		}
		for _, r := range rows {
			if IsMultiBetType(r.Key) {
				multis.merge(r)
			} else {
				singles.merge(r)
			}
		}
	}

	cards = append(cards,
		legCard(LabelSinglesPL, &singles),
		legCard(LabelMultisPL, &multis),
	)
	return cards
}

func legCard(label string, t *tally) MetricCard {
	if t.count == 0 {
		return emptyCard(label, "No settled wagers")
	}
	helper := fmt.Sprintf("Win rate %.1f%%", t.winRate()*100)
	return numberCard(label, helper, t.profit())
}

// worstGroup returns the row with the lowest ROI, earlier rows winning ties
func worstGroup(records []BetRecord, d Dimension, f Filters) (BreakdownRow, bool) {
	rows, err := Aggregate(records, d, f)
	if err != nil || len(rows) == 0 {
		return BreakdownRow{}, false
	}
	worst := rows[0]
	for _, r := range rows[1:] {
		if r.ROI < worst.ROI {
			worst = r
		}
	}
	return worst, true
}
