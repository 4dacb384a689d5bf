package match

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/KevDevLee/namens-tinder/internal/db"
	"github.com/KevDevLee/namens-tinder/internal/domain"
)

const (
	A uint64 = iota + 1
	B
	C
	D
)

func TestCompute_Scenario(t *testing.T) {
	mine := map[uint64]domain.Decision{A: domain.Like, B: domain.Maybe, C: domain.Nope}
	other := map[uint64]domain.Decision{A: domain.Like, B: domain.Like, D: domain.Maybe}

	res := Compute(mine, other)

	assert.Equal(t, []uint64{A}, res.Confirmed)
	assert.Equal(t, []uint64{B}, res.Maybe)
}

func TestCompute_Table(t *testing.T) {
	tests := []struct {
		mine, other domain.Decision
		want        tier
	}{
		{domain.Like, domain.Like, tierConfirmed},
		{domain.Like, domain.Maybe, tierMaybe},
		{domain.Maybe, domain.Like, tierMaybe},
		{domain.Maybe, domain.Maybe, tierMaybe},
		{domain.Like, domain.Nope, tierNone},
		{domain.Nope, domain.Like, tierNone},
		{domain.Maybe, domain.Nope, tierNone},
		{domain.Nope, domain.Nope, tierNone},
	}

	for _, tt := range tests {
		t.Run(string(tt.mine)+"_"+string(tt.other), func(t *testing.T) {
			res := Compute(
				map[uint64]domain.Decision{A: tt.mine},
				map[uint64]domain.Decision{A: tt.other},
			)
			switch tt.want {
			case tierConfirmed:
				assert.Equal(t, []uint64{A}, res.Confirmed)
				assert.Empty(t, res.Maybe)
			case tierMaybe:
				assert.Empty(t, res.Confirmed)
				assert.Equal(t, []uint64{A}, res.Maybe)
			default:
				assert.Empty(t, res.Confirmed)
				assert.Empty(t, res.Maybe)
			}
		})
	}
}

func TestCompute_SymmetricUnderSwap(t *testing.T) {
	mine := map[uint64]domain.Decision{A: domain.Like, B: domain.Maybe, C: domain.Maybe, D: domain.Like}
	other := map[uint64]domain.Decision{A: domain.Maybe, B: domain.Like, C: domain.Maybe, D: domain.Like}

	assert.Equal(t, Compute(mine, other), Compute(other, mine))
}

func TestCompute_OneSidedNamesDropped(t *testing.T) {
	mine := map[uint64]domain.Decision{A: domain.Like, B: domain.Maybe}
	other := map[uint64]domain.Decision{C: domain.Like, D: domain.Maybe}

	res := Compute(mine, other)

	assert.Empty(t, res.Confirmed)
	assert.Empty(t, res.Maybe)
}

func TestCompute_ListsAreDisjointAndSorted(t *testing.T) {
	mine := map[uint64]domain.Decision{}
	other := map[uint64]domain.Decision{}
	for id := uint64(1); id <= 50; id++ {
		mine[id] = domain.Decisions[id%3]
		other[id] = domain.Decisions[(id/3)%3]
	}

	res := Compute(mine, other)

	seen := map[uint64]bool{}
	for _, id := range res.Confirmed {
		seen[id] = true
	}
	for _, id := range res.Maybe {
		assert.False(t, seen[id], "name %d in both lists", id)
	}
	assert.IsIncreasing(t, res.Confirmed)
	assert.IsIncreasing(t, res.Maybe)
}

func TestIsConfirmed(t *testing.T) {
	assert.True(t, IsConfirmed(domain.Like, domain.Like))
	assert.False(t, IsConfirmed(domain.Like, domain.Maybe))
	assert.False(t, IsConfirmed(domain.Like, ""))
}

func TestSortNames_GermanCaseInsensitive(t *testing.T) {
	names := []db.Name{
		{ID: 1, Name: "Zoe"},
		{ID: 2, Name: "ömer"},
		{ID: 3, Name: "anna"},
		{ID: 4, Name: "Oskar"},
		{ID: 5, Name: "Anna"},
		{ID: 6, Name: "Ben"},
	}

	SortNames(names)

	var got []string
	for _, n := range names {
		got = append(got, n.Name)
	}
	assert.Equal(t, []string{"anna", "Anna", "Ben", "ömer", "Oskar", "Zoe"}, got)
}
