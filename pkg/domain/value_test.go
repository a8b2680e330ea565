package domain

import (
	"encoding/json"
	"math"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestValue_ZeroIsUnreachable(t *testing.T) {
	var v Value
	if !v.IsUnreachable() {
		t.Fatal("zero Value should be unreachable")
	}
	if v != Unreachable {
		t.Fatal("zero Value should equal Unreachable")
	}
	if _, ok := v.Int(); ok {
		t.Error("Int() should report !ok for unreachable")
	}
}

func TestValue_Compare(t *testing.T) {
	tests := []struct {
		name string
		a, b Value
		want int
	}{
		{"finite less", Finite(1), Finite(2), -1},
		{"finite equal", Finite(7), Finite(7), 0},
		{"finite greater", Finite(3), Finite(-3), 1},
		{"finite below unreachable", Finite(math.MaxInt64), Unreachable, -1},
		{"unreachable above finite", Unreachable, Finite(math.MinInt64), 1},
		{"unreachable equal", Unreachable, Unreachable, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Compare(tt.b); got != tt.want {
				t.Errorf("Compare() = %d, want %d", got, tt.want)
			}
			if got := tt.a.Less(tt.b); got != (tt.want < 0) {
				t.Errorf("Less() = %v", got)
			}
		})
	}
}

func TestAdd(t *testing.T) {
	tests := []struct {
		name   string
		weight int64
		v      Value
		want   Value
	}{
		{"finite", 3, Finite(4), Finite(7)},
		{"negative weight", -5, Finite(2), Finite(-3)},
		{"unreachable absorbs positive", 10, Unreachable, Unreachable},
		{"unreachable absorbs negative", -10, Unreachable, Unreachable},
		{"unreachable absorbs huge", math.MinInt64, Unreachable, Unreachable},
		{"saturates high", 1, Finite(math.MaxInt64), Finite(math.MaxInt64)},
		{"saturates low", -1, Finite(math.MinInt64), Finite(math.MinInt64)},
		{"large finite stays finite", math.MaxInt64, Finite(math.MaxInt64), Finite(math.MaxInt64)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Add(tt.weight, tt.v)
			if got != tt.want {
				t.Errorf("Add(%d, %v) = %v, want %v", tt.weight, tt.v, got, tt.want)
			}
		})
	}

	if !Add(math.MaxInt64, Finite(math.MaxInt64)).Less(Unreachable) {
		t.Error("saturated sum must stay below Unreachable")
	}
}

func TestMinValue(t *testing.T) {
	if got := MinValue(Unreachable, Finite(5)); got != Finite(5) {
		t.Errorf("MinValue = %v", got)
	}
	if got := MinValue(Finite(2), Finite(5)); got != Finite(2) {
		t.Errorf("MinValue = %v", got)
	}
	if got := MinValue(Unreachable, Unreachable); !got.IsUnreachable() {
		t.Errorf("MinValue = %v", got)
	}
}

func TestValue_String(t *testing.T) {
	if Finite(-12).String() != "-12" {
		t.Errorf("String() = %s", Finite(-12).String())
	}
	if Unreachable.String() != "∞" {
		t.Errorf("String() = %s", Unreachable.String())
	}
}

func TestValue_JSON(t *testing.T) {
	in := map[string]Value{"a": Finite(2), "b": Unreachable, "c": Finite(-4)}

	data, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(data) != `{"a":2,"b":null,"c":-4}` {
		t.Errorf("Marshal = %s", data)
	}

	var out map[string]Value
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	for k, v := range in {
		if out[k] != v {
			t.Errorf("out[%s] = %v, want %v", k, out[k], v)
		}
	}

	var bad Value
	if err := json.Unmarshal([]byte(`"x"`), &bad); err == nil {
		t.Error("expected error for string input")
	}
}

func TestValue_YAML(t *testing.T) {
	in := struct {
		Values []Value `yaml:"values"`
	}{Values: []Value{Finite(0), Unreachable, Finite(9)}}

	data, err := yaml.Marshal(in)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var out struct {
		Values []Value `yaml:"values"`
	}
	if err := yaml.Unmarshal(data, &out); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if len(out.Values) != 3 {
		t.Fatalf("got %d values", len(out.Values))
	}
	for i := range in.Values {
		if out.Values[i] != in.Values[i] {
			t.Errorf("values[%d] = %v, want %v", i, out.Values[i], in.Values[i])
		}
	}

	if !strings.Contains(string(data), "- inf") {
		t.Errorf("unreachable should encode as inf:\n%s", data)
	}

	var single struct {
		V Value `yaml:"v"`
	}
	single.V = Finite(1)
	if err := yaml.Unmarshal([]byte("v: inf\n"), &single); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if !single.V.IsUnreachable() {
		t.Errorf("inf should decode to unreachable, got %v", single.V)
	}

	if err := yaml.Unmarshal([]byte("v: five\n"), &single); err == nil {
		t.Error("non-numeric scalar should fail")
	}
}
