package collection

import (
	"strings"

	"github.com/nzaccagnino/folio/internal/model"
)

// Criteria narrows the loaded sequence. An empty Filter or model.All keeps
// every enum value; Search is a case-insensitive substring, spaces included.
type Criteria struct {
	Filter string
	Search string
}

func (cr Criteria) filtering() bool {
	return cr.Filter != "" && cr.Filter != model.All
}

// Filter returns the items matching every active criterion, in order.
func Filter[T model.Entity](items []T, policy model.Policy[T], cr Criteria) []T {
	query := strings.ToLower(cr.Search)

	out := make([]T, 0, len(items))
	for _, v := range items {
		if cr.filtering() && policy.FilterKey != nil && policy.FilterKey(v) != cr.Filter {
			continue
		}
		if query != "" && policy.Searchable() && !matches(policy.Search(v), query) {
			continue
		}
		out = append(out, v)
	}
	return out
}

func matches(fields []string, query string) bool {
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), query) {
			return true
		}
	}
	return false
}

// Counts tallies items per filter value.
func Counts[T model.Entity](items []T, policy model.Policy[T]) map[string]int {
	counts := make(map[string]int, len(policy.FilterValues))
	if policy.FilterKey == nil {
		return counts
	}
	for _, v := range items {
		counts[policy.FilterKey(v)]++
	}
	return counts
}
