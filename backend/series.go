package backend

import (
	"bytes"
	"fmt"
	"sort"

	json "github.com/goccy/go-json"
	"github.com/tidwall/gjson"
)

// Point is one date-keyed count.
type Point struct {
	Date  string
	Count int64
}

// Series is an ordered mapping from ISO date to count. On the wire it is
// a JSON object; decoding keeps the object's key order.
type Series []Point

// UnmarshalJSON decodes a JSON object of date -> number, preserving key order.
func (s *Series) UnmarshalJSON(data []byte) error {
	if !gjson.ValidBytes(data) {
		return fmt.Errorf("series: invalid json")
	}
	r := gjson.ParseBytes(data)
	if r.Type == gjson.Null {
		*s = nil
		return nil
	}
	if !r.IsObject() {
		return fmt.Errorf("series: expected object, got %s", r.Type)
	}
	points := make(Series, 0)
	var err error
	r.ForEach(func(key, value gjson.Result) bool {
		if value.Type != gjson.Number {
			err = fmt.Errorf("series: value for %q is %s, not a number", key.String(), value.Type)
			return false
		}
		points = append(points, Point{Date: key.String(), Count: value.Int()})
		return true
	})
	if err != nil {
		return err
	}
	*s = points
	return nil
}

// MarshalJSON encodes the series as a JSON object in series order.
func (s Series) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, p := range s {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(p.Date)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		fmt.Fprintf(&buf, "%d", p.Count)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Keys returns the dates in series order.
func (s Series) Keys() []string {
	keys := make([]string, len(s))
	for i, p := range s {
		keys[i] = p.Date
	}
	return keys
}

// Values returns the counts in series order.
func (s Series) Values() []int64 {
	vals := make([]int64, len(s))
	for i, p := range s {
		vals[i] = p.Count
	}
	return vals
}

// Sorted returns a copy ordered by date. ISO dates sort lexically.
func (s Series) Sorted() Series {
	out := make(Series, len(s))
	copy(out, s)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

// Abs returns a copy with every count made non-negative.
func (s Series) Abs() Series {
	out := make(Series, len(s))
	for i, p := range s {
		if p.Count < 0 {
			p.Count = -p.Count
		}
		out[i] = p
	}
	return out
}

// Align puts a and b on the same sorted date domain: the union of both
// key sets, with missing dates filled with zero.
func Align(a, b Series) (Series, Series) {
	seen := make(map[string]struct{}, len(a)+len(b))
	var dates []string
	for _, s := range []Series{a, b} {
		for _, p := range s {
			if _, ok := seen[p.Date]; ok {
				continue
			}
			seen[p.Date] = struct{}{}
			dates = append(dates, p.Date)
		}
	}
	sort.Strings(dates)
	return fill(a, dates), fill(b, dates)
}

func fill(s Series, dates []string) Series {
	counts := make(map[string]int64, len(s))
	for _, p := range s {
		counts[p.Date] = p.Count
	}
	out := make(Series, len(dates))
	for i, d := range dates {
		out[i] = Point{Date: d, Count: counts[d]}
	}
	return out
}
