package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Value is a shortest-path distance: either a finite integer or Unreachable.
// The zero Value is Unreachable.
type Value struct {
	n      int64
	finite bool
}

// Unreachable means no finite path to the target is known.
var Unreachable = Value{}

// Finite returns a finite Value.
func Finite(n int64) Value {
	return Value{n: n, finite: true}
}

// IsFinite reports whether v holds a number.
func (v Value) IsFinite() bool { return v.finite }

// IsUnreachable reports whether v is the Unreachable sentinel.
func (v Value) IsUnreachable() bool { return !v.finite }

// Int returns the number held by v and whether v is finite.
func (v Value) Int() (int64, bool) {
	return v.n, v.finite
}

// MustInt returns the number held by v and panics on Unreachable.
func (v Value) MustInt() int64 {
	if !v.finite {
		panic("domain: MustInt on unreachable value")
	}
	return v.n
}

// Compare returns -1, 0 or +1. Unreachable is greater than every finite value
// and equal to itself.
func (v Value) Compare(o Value) int {
	switch {
	case !v.finite && !o.finite:
		return 0
	case !v.finite:
		return 1
	case !o.finite:
		return -1
	case v.n < o.n:
		return -1
	case v.n > o.n:
		return 1
	default:
		return 0
	}
}

// Less reports whether v < o.
func (v Value) Less(o Value) bool { return v.Compare(o) < 0 }

// Equal reports whether v and o are the same value.
func (v Value) Equal(o Value) bool { return v.Compare(o) == 0 }

// String renders finite values as decimals and Unreachable as "∞".
func (v Value) String() string {
	if !v.finite {
		return "∞"
	}
	return strconv.FormatInt(v.n, 10)
}

// Add returns weight + v. Unreachable absorbs any weight; finite sums clamp
// to the int64 range instead of wrapping around.
func Add(weight int64, v Value) Value {
	if !v.finite {
		return Unreachable
	}
	switch {
	case weight > 0 && v.n > math.MaxInt64-weight:
		return Finite(math.MaxInt64)
	case weight < 0 && v.n < math.MinInt64-weight:
		return Finite(math.MinInt64)
	}
	return Finite(v.n + weight)
}

// MinValue returns the smaller of a and b.
func MinValue(a, b Value) Value {
	if b.Less(a) {
		return b
	}
	return a
}

var jsonNull = []byte("null")

// MarshalJSON encodes finite values as numbers and Unreachable as null.
func (v Value) MarshalJSON() ([]byte, error) {
	if !v.finite {
		return jsonNull, nil
	}
	return strconv.AppendInt(nil, v.n, 10), nil
}

// UnmarshalJSON accepts a JSON integer or null.
func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, jsonNull) {
		*v = Unreachable
		return nil
	}
	var n int64
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("value: %w", err)
	}
	*v = Finite(n)
	return nil
}

// yamlUnreachable is the YAML scalar for Unreachable. yaml.v3 skips
// unmarshalers on null nodes, so null cannot carry it.
const yamlUnreachable = "inf"

// MarshalYAML encodes finite values as integers and Unreachable as "inf".
func (v Value) MarshalYAML() (any, error) {
	if !v.finite {
		return yamlUnreachable, nil
	}
	return v.n, nil
}

// UnmarshalYAML accepts an integer scalar or "inf".
func (v *Value) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode && (node.Value == yamlUnreachable || node.Tag == "!!null") {
		*v = Unreachable
		return nil
	}
	var n int64
	if err := node.Decode(&n); err != nil {
		return fmt.Errorf("value: line %d: %w", node.Line, err)
	}
	*v = Finite(n)
	return nil
}
