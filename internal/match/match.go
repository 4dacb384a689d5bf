// Package match classifies names both parents decided on.
package match

import (
	"slices"
	"sync"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/KevDevLee/namens-tinder/internal/db"
	"github.com/KevDevLee/namens-tinder/internal/domain"
)

// Result holds two disjoint lists of name ids, each in ascending order.
type Result struct {
	Confirmed []uint64
	Maybe     []uint64
}

// Compute partitions the union of both maps:
//
//	like  + like           → Confirmed
//	like  + maybe (either) → Maybe
//	maybe + maybe          → Maybe
//
// Anything involving nope, and names only one parent decided on, is dropped.
func Compute(mine, other map[uint64]domain.Decision) Result {
	res := Result{Confirmed: []uint64{}, Maybe: []uint64{}}

	// a name missing from mine classifies as none, so mine covers the union
	for nameID, d := range mine {
		switch classify(d, other[nameID]) {
		case tierConfirmed:
			res.Confirmed = append(res.Confirmed, nameID)
		case tierMaybe:
			res.Maybe = append(res.Maybe, nameID)
		}
	}

	slices.Sort(res.Confirmed)
	slices.Sort(res.Maybe)
	return res
}

type tier int

const (
	tierNone tier = iota
	tierConfirmed
	tierMaybe
)

func classify(mine, other domain.Decision) tier {
	switch {
	case mine == domain.Like && other == domain.Like:
		return tierConfirmed
	case mine == domain.Like && other == domain.Maybe,
		mine == domain.Maybe && other == domain.Like,
		mine == domain.Maybe && other == domain.Maybe:
		return tierMaybe
	}
	return tierNone
}

// IsConfirmed reports whether a single pair of decisions is a confirmed match.
func IsConfirmed(mine, other domain.Decision) bool {
	return classify(mine, other) == tierConfirmed
}

var (
	collatorMu sync.Mutex
	collator   = collate.New(language.German, collate.IgnoreCase)
)

// SortNames orders names by their text using German collation, ignoring case.
// Equal names keep id order.
func SortNames(names []db.Name) {
	collatorMu.Lock()
	defer collatorMu.Unlock()

	slices.SortStableFunc(names, func(a, b db.Name) int {
		if c := collator.CompareString(a.Name, b.Name); c != 0 {
			return c
		}
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		}
		return 0
	})
}
