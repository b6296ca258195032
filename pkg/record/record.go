package record

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Value is a single harvested scalar. Numeric values carry Number; everything
// else carries Text.
type Value struct {
	Number  float64
	Text    string
	Numeric bool
}

// NumberValue wraps a float.
func NumberValue(v float64) Value {
	return Value{Number: v, Numeric: true}
}

// TextValue wraps a string.
func TextValue(s string) Value {
	return Value{Text: s}
}

// String renders the value the way it is shown back to the user.
func (v Value) String() string {
	if v.Numeric {
		return strconv.FormatFloat(v.Number, 'f', -1, 64)
	}
	return v.Text
}

// MarshalJSON emits numbers as JSON numbers and text as JSON strings.
func (v Value) MarshalJSON() ([]byte, error) {
	if v.Numeric {
		return json.Marshal(v.Number)
	}
	return json.Marshal(v.Text)
}

// Record is one row of model input: a value per column, iterated in the order
// the schema declared. A Record is not mutated after Harvest returns it.
type Record struct {
	columns []string
	values  map[string]Value
}

// New builds a Record from parallel column and value slices. It exists for
// callers that assemble rows without a form submission, such as tests and the
// CLI.
func New(columns []string, values []Value) Record {
	r := Record{
		columns: make([]string, 0, len(columns)),
		values:  make(map[string]Value, len(columns)),
	}
	for idx, name := range columns {
		var v Value
		if idx < len(values) {
			v = values[idx]
		}
		r.set(name, v)
	}
	return r
}

func (r *Record) set(name string, v Value) {
	if _, exists := r.values[name]; !exists {
		r.columns = append(r.columns, name)
	}
	r.values[name] = v
}

// Columns returns a copy of the column order.
func (r Record) Columns() []string {
	out := make([]string, len(r.columns))
	copy(out, r.columns)
	return out
}

// Len returns the number of columns.
func (r Record) Len() int {
	return len(r.columns)
}

// Get returns the value stored for name.
func (r Record) Get(name string) (Value, bool) {
	v, ok := r.values[name]
	return v, ok
}

// Values returns the values in column order.
func (r Record) Values() []Value {
	out := make([]Value, 0, len(r.columns))
	for _, name := range r.columns {
		out = append(out, r.values[name])
	}
	return out
}

// Each calls fn for every column in order, stopping early when fn returns
// false.
func (r Record) Each(fn func(name string, v Value) bool) {
	for _, name := range r.columns {
		if !fn(name, r.values[name]) {
			return
		}
	}
}

// MarshalJSON writes the record as an object whose keys keep column order.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for idx, name := range r.columns {
		if idx > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := r.values[name].MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
