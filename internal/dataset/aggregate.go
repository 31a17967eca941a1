package dataset

import (
	"errors"
	"math"
	"slices"

	"github.com/shopspring/decimal"
)

var (
	ErrNoValues   = errors.New("column has no non-null values")
	ErrNotNumeric = errors.New("column is not numeric")
)

// Numbers returns the non-null values as float64. Any non-null value that
// is not an int or float yields ErrNotNumeric.
func (c *Column) Numbers() ([]float64, error) {
	out := make([]float64, 0, len(c.Values))
	for _, v := range c.Values {
		if IsNull(v) {
			continue
		}
		f, ok := ToFloat(v)
		if !ok {
			return nil, ErrNotNumeric
		}
		out = append(out, f)
	}
	return out, nil
}

// Mean is the arithmetic mean of the non-null numeric values. The sum is
// accumulated in decimal so the result does not depend on row order.
func (c *Column) Mean() (float64, error) {
	nums, err := c.Numbers()
	if err != nil {
		return 0, err
	}
	if len(nums) == 0 {
		return 0, ErrNoValues
	}
	if !finite(nums) {
		var sum float64
		for _, f := range nums {
			sum += f
		}
		return sum / float64(len(nums)), nil
	}
	sum := decimal.Zero
	for _, f := range nums {
		sum = sum.Add(decimal.NewFromFloat(f))
	}
	return sum.Div(decimal.NewFromInt(int64(len(nums)))).InexactFloat64(), nil
}

// Median of the non-null numeric values; even counts average the two
// middle values.
func (c *Column) Median() (float64, error) {
	nums, err := c.Numbers()
	if err != nil {
		return 0, err
	}
	if len(nums) == 0 {
		return 0, ErrNoValues
	}
	slices.Sort(nums)
	mid := len(nums) / 2
	if len(nums)%2 == 1 {
		return nums[mid], nil
	}
	if !finite(nums[mid-1 : mid+1]) {
		return (nums[mid-1] + nums[mid]) / 2, nil
	}
	lo, hi := decimal.NewFromFloat(nums[mid-1]), decimal.NewFromFloat(nums[mid])
	return lo.Add(hi).Div(decimal.NewFromInt(2)).InexactFloat64(), nil
}

// finite reports whether every value can go through decimal.
func finite(nums []float64) bool {
	for _, f := range nums {
		if math.IsInf(f, 0) {
			return false
		}
	}
	return true
}

// Mode returns the most frequent non-null value. Ties resolve to the
// lowest value under Compare. In numeric columns int and float values
// count together (5 and 5.0 are one value); the first one seen is returned.
func (c *Column) Mode() (any, error) {
	numeric := c.Kind().Numeric()
	counts := map[any]int{}
	first := map[any]any{}
	var order []any
	for _, v := range c.Values {
		if IsNull(v) {
			continue
		}
		key := v
		if numeric {
			key, _ = ToFloat(v)
		}
		if _, seen := counts[key]; !seen {
			order = append(order, key)
			first[key] = v
		}
		counts[key]++
	}
	if len(order) == 0 {
		return nil, ErrNoValues
	}
	best := order[0]
	for _, k := range order[1:] {
		switch n := counts[k]; {
		case n > counts[best]:
			best = k
		case n == counts[best] && Compare(k, best) < 0:
			best = k
		}
	}
	return first[best], nil
}

// Distinct returns the distinct values of keys in first-observed order.
func Distinct(keys []string) []string {
	seen := make(map[string]struct{}, len(keys))
	var out []string
	for _, k := range keys {
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}
