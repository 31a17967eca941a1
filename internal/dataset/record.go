package dataset

import (
	"bytes"
	"encoding/json"
	"math"
	"time"
)

// Plain maps a value onto the JSON value set: nulls become nil, times their
// RFC 3339 text, infinities their string form.
func Plain(v any) any {
	if IsNull(v) {
		return nil
	}
	switch x := v.(type) {
	case time.Time:
		return x.Format(time.RFC3339)
	case float64:
		if math.IsInf(x, 0) {
			return Format(x)
		}
	}
	return v
}

// RowMap returns row i keyed by column name.
func (d *Dataset) RowMap(i int) map[string]any {
	m := make(map[string]any, len(d.cols))
	for _, c := range d.cols {
		m[c.Name] = Plain(c.Values[i])
	}
	return m
}

// AppendRowJSON appends row i as a JSON object whose keys follow column
// order.
func (d *Dataset) AppendRowJSON(buf []byte, i int) ([]byte, error) {
	var b bytes.Buffer
	b.Write(buf)
	b.WriteByte('{')
	for j, c := range d.cols {
		if j > 0 {
			b.WriteByte(',')
		}
		k, err := json.Marshal(c.Name)
		if err != nil {
			return nil, err
		}
		b.Write(k)
		b.WriteByte(':')
		v, err := json.Marshal(Plain(c.Values[i]))
		if err != nil {
			return nil, err
		}
		b.Write(v)
	}
	b.WriteByte('}')
	return b.Bytes(), nil
}
