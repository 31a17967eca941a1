package transform

import (
	"time"

	"tabetl/internal/dataset"
)

const yearSeconds = 365 * 24 * 60 * 60

// DeriveAge sets NewField to the whole number of 365-day years between each
// SourceField date and now, then drops SourceField. Null dates give null
// ages. An existing column named NewField is overwritten.
func DeriveAge(ds *dataset.Dataset, specs []AgeDerivation, now time.Time) (*dataset.Dataset, error) {
	out := ds.Clone()
	for _, s := range specs {
		col, err := column(out, KindAge, s.SourceField)
		if err != nil {
			return nil, err
		}
		ages := make([]any, len(col.Values))
		for i, v := range col.Values {
			if dataset.IsNull(v) {
				continue
			}
			t, err := dataset.ParseTime(v)
			if err != nil {
				return nil, &ValidationError{Kind: KindAge, Field: s.SourceField, Err: ErrFieldMissingOrNotDate, Detail: err.Error()}
			}
			ages[i] = ageAt(t, now)
		}
		if err := out.Set(s.NewField, ages); err != nil {
			return nil, err
		}
		if s.NewField != s.SourceField {
			out.Drop(s.SourceField)
		}
	}
	return out, nil
}

// ageAt is floor((now - t) / 365 days).
func ageAt(t, now time.Time) int64 {
	d := now.Unix() - t.Unix()
	n := d / yearSeconds
	if d < 0 && d%yearSeconds != 0 {
		n--
	}
	return n
}
