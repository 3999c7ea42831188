package vm

import (
	"math"
	"strconv"
	"strings"
)

// StringSuffix marks a variable name as string-typed.
const StringSuffix = "$"

type Value interface {
	isValue()
	AsBool() bool
	String() string
}

type NumValue float64

func (NumValue) isValue() {}

func (n NumValue) AsBool() bool {
	return n != 0
}

// String renders integral values without a fractional part, so that
// LET A=1 prints as 1.
func (n NumValue) String() string {
	f := float64(n)
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

type StrValue string

func (StrValue) isValue() {}

func (s StrValue) AsBool() bool {
	return s != ""
}

func (s StrValue) String() string {
	return string(s)
}

// BoolValue is produced by comparisons and logical operators.
type BoolValue bool

func (BoolValue) isValue() {}

var (
	BoolTrue  = BoolValue(true)
	BoolFalse = BoolValue(false)
)

func (b BoolValue) AsBool() bool {
	return bool(b)
}

func (b BoolValue) String() string {
	if b {
		return "-1"
	}
	return "0"
}

// IsStringName reports whether a variable name denotes a string.
func IsStringName(name string) bool {
	return strings.HasSuffix(name, StringSuffix)
}

// Zero returns the zero value for a variable of the given name.
func Zero(name string) Value {
	if IsStringName(name) {
		return StrValue("")
	}
	return NumValue(0)
}

// GetTypeName returns the BASIC-facing type name for a value.
func GetTypeName(v Value) string {
	switch v.(type) {
	case NumValue:
		return "number"
	case StrValue:
		return "string"
	case BoolValue:
		return "boolean"
	default:
		return "unknown"
	}
}
