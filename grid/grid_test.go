package grid_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meenmo/credlib/grid"
)

func TestPartition(t *testing.T) {
	t.Parallel()

	start := time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 4, 30, 0, 0, 0, 0, time.UTC)

	t.Run("zero step is a single interval", func(t *testing.T) {
		pts := grid.Partition(start, end, grid.Step{})
		assert.Equal(t, []time.Time{start, end}, pts)
	})

	t.Run("monthly steps roll from start without drift", func(t *testing.T) {
		pts := grid.Partition(start, end, grid.Step{Size: 1, Unit: grid.Months})
		require.Len(t, pts, 4)
		assert.Equal(t, time.Date(2025, 2, 28, 0, 0, 0, 0, time.UTC), pts[1])
		assert.Equal(t, time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC), pts[2])
		assert.Equal(t, end, pts[3])
	})

	t.Run("last step is shortened", func(t *testing.T) {
		pts := grid.Partition(start, start.AddDate(0, 0, 10), grid.Step{Size: 1, Unit: grid.Weeks})
		require.Len(t, pts, 3)
		assert.Equal(t, start.AddDate(0, 0, 7), pts[1])
	})

	t.Run("empty interval", func(t *testing.T) {
		assert.Equal(t, []time.Time{start}, grid.Partition(start, start, grid.Step{Size: 1, Unit: grid.Days}))
	})
}

func TestParseStep(t *testing.T) {
	t.Parallel()

	st, err := grid.ParseStep("3m")
	require.NoError(t, err)
	assert.Equal(t, grid.Step{Size: 3, Unit: grid.Months}, st)
	assert.Equal(t, "3M", st.String())

	st, err = grid.ParseStep("0")
	require.NoError(t, err)
	assert.Equal(t, 0, st.Size)

	_, err = grid.ParseStep("2Q")
	assert.Error(t, err)
	assert.Error(t, grid.Step{Size: -1, Unit: grid.Days}.Validate())
}
