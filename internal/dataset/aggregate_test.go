package dataset

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func col(values ...any) *Column { return &Column{Name: "c", Values: values} }

func TestColumn_Mean(t *testing.T) {
	m, err := col(int64(10), nil, int64(20)).Mean()
	require.NoError(t, err)
	assert.Equal(t, 15.0, m)

	m, err = col(0.1, 0.2, nil).Mean()
	require.NoError(t, err)
	assert.Equal(t, 0.15, m)

	_, err = col(nil, nil).Mean()
	require.ErrorIs(t, err, ErrNoValues)

	_, err = col("a", int64(1)).Mean()
	require.ErrorIs(t, err, ErrNotNumeric)
}

func TestColumn_Median(t *testing.T) {
	m, err := col(int64(3), nil, int64(1), int64(2)).Median()
	require.NoError(t, err)
	assert.Equal(t, 2.0, m)

	m, err = col(int64(4), int64(1), int64(3), int64(2)).Median()
	require.NoError(t, err)
	assert.Equal(t, 2.5, m)

	_, err = col(true, false).Median()
	require.ErrorIs(t, err, ErrNotNumeric)
}

func TestColumn_Mode(t *testing.T) {
	m, err := col("b", "a", "b", nil, nil, nil).Mode()
	require.NoError(t, err)
	assert.Equal(t, "b", m)

	// tie between c, a and b resolves to the lowest value
	m, err = col("c", "a", "b", "c", "a", "b").Mode()
	require.NoError(t, err)
	assert.Equal(t, "a", m)

	m, err = col(int64(9), int64(2), int64(9), int64(2)).Mode()
	require.NoError(t, err)
	assert.Equal(t, int64(2), m)

	_, err = col(nil).Mode()
	require.ErrorIs(t, err, ErrNoValues)
}

// Infinite values bypass decimal and follow float arithmetic.
func TestColumn_InfiniteValues(t *testing.T) {
	inf := math.Inf(1)

	m, err := col(1.0, inf, nil).Mean()
	require.NoError(t, err)
	assert.True(t, math.IsInf(m, 1))

	m, err = col(1.0, inf, nil).Median()
	require.NoError(t, err)
	assert.True(t, math.IsInf(m, 1))

	m, err = col(1.0, inf, 3.0).Median()
	require.NoError(t, err)
	assert.Equal(t, 3.0, m)

	m, err = col(inf, math.Inf(-1)).Mean()
	require.NoError(t, err)
	assert.True(t, math.IsNaN(m))

	m, err = col(int64(4), inf, int64(2), math.Inf(-1)).Median()
	require.NoError(t, err)
	assert.Equal(t, 3.0, m)
}

func TestColumn_ModeMixedNumeric(t *testing.T) {
	m, err := col(int64(5), 5.0, int64(3), 3.5).Mode()
	require.NoError(t, err)
	assert.Equal(t, int64(5), m)

	m, err = col(2.0, int64(7), int64(2), 7.0).Mode()
	require.NoError(t, err)
	assert.Equal(t, 2.0, m)
}

func TestDistinct_FirstObservedOrder(t *testing.T) {
	assert.Equal(t, []string{"red", "blue", "NULL"}, Distinct([]string{"red", "blue", "red", "NULL", "blue"}))
	assert.Nil(t, Distinct(nil))
}

func TestColumn_Nulls(t *testing.T) {
	assert.Equal(t, 2, col(nil, int64(1), nil).Nulls())
	assert.Equal(t, KindInt, col(nil, int64(1)).Kind())
}
