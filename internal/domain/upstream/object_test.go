package upstream

import (
	"reflect"
	"testing"
)

func TestParseObject_NonObject(t *testing.T) {
	for _, in := range []string{"", "null", "[]", `"x"`, "42", "{broken"} {
		o := ParseObject([]byte(in))
		if o == nil || len(o) != 0 {
			t.Errorf("ParseObject(%q) = %v, want empty object", in, o)
		}
	}
}

func TestObject_Str(t *testing.T) {
	o := ParseObject([]byte(`{"a":"x","b":"","c":null,"d":5,"e":["x"]}`))
	if s := o.Str("a"); s == nil || *s != "x" {
		t.Errorf("Str(a) = %v", s)
	}
	for _, k := range []string{"b", "c", "d", "e", "missing"} {
		if s := o.Str(k); s != nil {
			t.Errorf("Str(%s) = %q, want nil", k, *s)
		}
	}
}

func TestObject_NumberAndInt(t *testing.T) {
	o := ParseObject([]byte(`{"n":12.7,"s":"12","z":0}`))
	if n := o.Number("n"); n == nil || *n != 12.7 {
		t.Errorf("Number(n) = %v", n)
	}
	if i := o.Int("n"); i == nil || *i != 12 {
		t.Errorf("Int(n) = %v", i)
	}
	if n := o.Number("s"); n != nil {
		t.Errorf("Number(s) = %v, want nil for string", *n)
	}
	if i := o.Int("z"); i == nil || *i != 0 {
		t.Errorf("Int(z) = %v, want 0", i)
	}
}

func TestObject_Strings(t *testing.T) {
	o := ParseObject([]byte(`{"a":["x",1,"",null,"y"],"b":"x"}`))
	if got := o.Strings("a"); !reflect.DeepEqual(got, []string{"x", "y"}) {
		t.Errorf("Strings(a) = %v", got)
	}
	if got := o.Strings("b"); got != nil {
		t.Errorf("Strings(b) = %v, want nil for non-array", got)
	}
}

func TestObject_Has(t *testing.T) {
	o := ParseObject([]byte(`{"a":null,"b":0}`))
	if o.Has("a") {
		t.Error("Has(a) = true for null")
	}
	if !o.Has("b") {
		t.Error("Has(b) = false")
	}
}
