package vm

import (
	"strconv"
	"strings"
)

// Expr is the closed set of expression nodes. Evaluators switch over
// the concrete types below.
type Expr interface {
	isExpr()
	String() string
}

type NumberLit struct {
	Value float64
}

type StringLit struct {
	Value string
}

// Ref names a variable. Indices is nil for scalars.
type Ref struct {
	Name    string
	Indices []Expr
}

type Binary struct {
	Op    Op
	Left  Expr
	Right Expr
}

type Negate struct {
	X Expr
}

// Paren has no runtime effect; it is kept so listings print the
// source grouping back.
type Paren struct {
	X Expr
}

type Call struct {
	Fn  Builtin
	Arg Expr
}

func (*NumberLit) isExpr() {}
func (*StringLit) isExpr() {}
func (*Ref) isExpr()       {}
func (*Binary) isExpr()    {}
func (*Negate) isExpr()    {}
func (*Paren) isExpr()     {}
func (*Call) isExpr()      {}

func (e *NumberLit) String() string {
	return NumValue(e.Value).String()
}

func (e *StringLit) String() string {
	return `"` + e.Value + `"`
}

func (r *Ref) String() string {
	if len(r.Indices) == 0 {
		return r.Name
	}
	parts := make([]string, len(r.Indices))
	for i, x := range r.Indices {
		parts[i] = x.String()
	}
	return r.Name + "(" + strings.Join(parts, ",") + ")"
}

// IsString reports whether the reference is string-typed by its name.
func (r *Ref) IsString() bool {
	return IsStringName(r.Name)
}

func (r *Ref) IsArray() bool {
	return r.Indices != nil
}

func (e *Binary) String() string {
	return e.Left.String() + " " + e.Op.String() + " " + e.Right.String()
}

func (e *Negate) String() string {
	return "-" + e.X.String()
}

func (e *Paren) String() string {
	return "(" + e.X.String() + ")"
}

func (e *Call) String() string {
	return e.Fn.String() + "(" + e.Arg.String() + ")"
}

// IsStringExpr reports whether an expression is string-typed by
// construction: a string literal or a string reference.
func IsStringExpr(e Expr) bool {
	switch v := e.(type) {
	case *StringLit:
		return true
	case *Ref:
		return v.IsString()
	case *Paren:
		return IsStringExpr(v.X)
	}
	return false
}

func formatInt(n int) string {
	return strconv.Itoa(n)
}
