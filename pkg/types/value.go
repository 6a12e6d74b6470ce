// Package types provides the core value and record types for pallet.
package types

import "strconv"

// Kind identifies the underlying type of a Value.
type Kind uint8

const (
	// KindNull is the zero Value.
	KindNull Kind = iota

	// KindText holds a string value.
	KindText

	// KindInt holds a 64-bit integer value.
	KindInt

	// KindFloat holds a 64-bit floating point value.
	KindFloat

	// KindBool holds a boolean value.
	KindBool
)

// Value is a tagged union over the scalar types the warehouse accepts.
// All comparison and persistence go through the canonical text form
// returned by String, so Int(5) and Text("5") name the same key.
type Value struct {
	kind Kind
	text string
	num  int64
	fnum float64
	flag bool
}

// Null returns the null Value. Its canonical text form is the empty string.
func Null() Value {
	return Value{}
}

// Text returns a Value holding the given string.
func Text(s string) Value {
	return Value{kind: KindText, text: s}
}

// Int returns a Value holding the given integer.
func Int(i int64) Value {
	return Value{kind: KindInt, num: i}
}

// Float returns a Value holding the given float.
func Float(f float64) Value {
	return Value{kind: KindFloat, fnum: f}
}

// Bool returns a Value holding the given boolean.
func Bool(b bool) Value {
	return Value{kind: KindBool, flag: b}
}

// Kind returns the Value's kind tag.
func (v Value) Kind() Kind {
	return v.kind
}

// IsNull reports whether the Value is the null Value.
func (v Value) IsNull() bool {
	return v.kind == KindNull
}

// String returns the canonical text form of the Value. This is the form
// written to disk and the form used for every equality comparison.
func (v Value) String() string {
	switch v.kind {
	case KindText:
		return v.text
	case KindInt:
		return strconv.FormatInt(v.num, 10)
	case KindFloat:
		return strconv.FormatFloat(v.fnum, 'g', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.flag)
	default:
		return ""
	}
}

// Equal reports whether two Values have the same canonical text form.
// Values of different kinds compare equal when their text forms agree.
func (v Value) Equal(other Value) bool {
	return v.String() == other.String()
}
