package reference

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/bimakw/wager-analytics/internal/domain/analytics"
)

// aliasFile is the on-disk layout:
//
//	transaction_kinds:
//	  wager: [punt, multi bet]
//	categories:
//	  racing: [greyhounds, harness]
//	results:
//	  void: [push, dead heat refund]
type aliasFile struct {
	TransactionKinds map[string][]string `yaml:"transaction_kinds"`
	Categories       map[string][]string `yaml:"categories"`
	Results          map[string][]string `yaml:"results"`
}

// LoadAliases returns the default alias tables extended with the file at path.
// An empty path yields the defaults.
func LoadAliases(path string) (analytics.Aliases, error) {
	defaults := analytics.DefaultAliases()
	if path == "" {
		return defaults, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return analytics.Aliases{}, fmt.Errorf("failed to read aliases file: %w", err)
	}

	extra, err := ParseAliases(data)
	if err != nil {
		return analytics.Aliases{}, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	return defaults.Merge(extra), nil
}

// ParseAliases decodes a YAML alias document. Targets must be known enum values.
func ParseAliases(data []byte) (analytics.Aliases, error) {
	var file aliasFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return analytics.Aliases{}, err
	}

	out := analytics.Aliases{
		Kinds:      make(map[string]analytics.TransactionKind),
		Categories: make(map[string]analytics.Category),
		Results:    make(map[string]analytics.Result),
	}

	for target, labels := range file.TransactionKinds {
		kind := analytics.TransactionKind(strings.ToLower(target))
		switch kind {
		case analytics.KindWager, analytics.KindDeposit, analytics.KindWithdrawal:
		default:
			return analytics.Aliases{}, fmt.Errorf("unknown transaction kind %q", target)
		}
		for _, l := range labels {
			out.Kinds[l] = kind
		}
	}

	for target, labels := range file.Categories {
		cat, err := analytics.ParseCategory(strings.ToLower(target))
		if err != nil {
			return analytics.Aliases{}, err
		}
		for _, l := range labels {
			out.Categories[l] = cat
		}
	}

	for target, labels := range file.Results {
		res := analytics.Result(strings.ToLower(target))
		switch res {
		case analytics.ResultWon, analytics.ResultLost, analytics.ResultVoid, analytics.ResultOpen:
		default:
			return analytics.Aliases{}, fmt.Errorf("unknown result %q", target)
		}
		for _, l := range labels {
			out.Results[l] = res
		}
	}

	return out, nil
}
