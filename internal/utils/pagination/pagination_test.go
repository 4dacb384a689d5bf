package pagination

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCursorRoundTrip(t *testing.T) {
	token, err := Encode(Cursor{AfterID: 42})
	require.NoError(t, err)

	c, err := Decode(token)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), c.AfterID)
}

func TestDecode_EmptyAndGarbage(t *testing.T) {
	c, err := Decode("")
	require.NoError(t, err)
	assert.Zero(t, c.AfterID)

	_, err = Decode("not base64 !!")
	assert.Error(t, err)
}

// rows returns a PageFunc over n sequential ints and records requested offsets.
func rows(n int, offsets *[]int) PageFunc[int] {
	return func(_ context.Context, offset, limit int) ([]int, error) {
		*offsets = append(*offsets, offset)
		var page []int
		for i := offset; i < offset+limit && i < n; i++ {
			page = append(page, i)
		}
		return page, nil
	}
}

func TestFetchAll_StopsOnShortPage(t *testing.T) {
	var offsets []int
	all, err := FetchAll(context.Background(), 10, rows(25, &offsets))

	require.NoError(t, err)
	assert.Len(t, all, 25)
	assert.Equal(t, []int{0, 10, 20}, offsets)
	assert.Equal(t, 24, all[24])
}

func TestFetchAll_ExactMultipleNeedsEmptyPage(t *testing.T) {
	var offsets []int
	all, err := FetchAll(context.Background(), 10, rows(20, &offsets))

	require.NoError(t, err)
	assert.Len(t, all, 20)
	assert.Equal(t, []int{0, 10, 20}, offsets)
}

func TestFetchAll_ErrorReturnsPartial(t *testing.T) {
	boom := errors.New("boom")
	fetch := func(_ context.Context, offset, limit int) ([]int, error) {
		if offset > 0 {
			return nil, boom
		}
		return make([]int, limit), nil
	}

	all, err := FetchAll(context.Background(), 5, fetch)

	assert.ErrorIs(t, err, boom)
	assert.Len(t, all, 5)
}
