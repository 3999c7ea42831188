package interp

import (
	"fmt"
	"math"
	"strings"

	"github.com/timewinder-dev/linebasic/vm"
)

// Eval computes an expression against the machine's symbols. Its only
// side effect is consuming entropy for RND.
func (m *Machine) Eval(e vm.Expr) (vm.Value, error) {
	switch x := e.(type) {
	case *vm.NumberLit:
		return vm.NumValue(x.Value), nil
	case *vm.StringLit:
		return vm.StrValue(x.Value), nil
	case *vm.Ref:
		return m.load(x)
	case *vm.Paren:
		return m.Eval(x.X)
	case *vm.Negate:
		n, err := m.evalNumber(x.X)
		if err != nil {
			return nil, err
		}
		return vm.NumValue(-n), nil
	case *vm.Call:
		return m.call(x)
	case *vm.Binary:
		return m.binary(x)
	}
	return nil, fmt.Errorf("%w: expression %T", ErrNotImplemented, e)
}

func (m *Machine) evalNumber(e vm.Expr) (float64, error) {
	v, err := m.Eval(e)
	if err != nil {
		return 0, err
	}
	return toNumber(v)
}

func toNumber(v vm.Value) (float64, error) {
	switch x := v.(type) {
	case vm.NumValue:
		return float64(x), nil
	case vm.BoolValue:
		return boolNum(bool(x)), nil
	}
	return 0, fmt.Errorf("%w: expected number, got %s", ErrTypeMismatch, vm.GetTypeName(v))
}

func boolNum(b bool) float64 {
	if b {
		return -1
	}
	return 0
}

func (m *Machine) call(c *vm.Call) (vm.Value, error) {
	switch c.Fn {
	case vm.INT:
		n, err := m.evalNumber(c.Arg)
		if err != nil {
			return nil, err
		}
		return vm.NumValue(math.Trunc(n)), nil
	case vm.ABS:
		n, err := m.evalNumber(c.Arg)
		if err != nil {
			return nil, err
		}
		return vm.NumValue(math.Abs(n)), nil
	case vm.RND:
		m.State.Draws++
		for {
			r := m.Rand.Float64()
			if r != 0 {
				return vm.NumValue(r), nil
			}
		}
	case vm.CLK:
		return vm.NumValue(0), nil
	}
	return nil, fmt.Errorf("%w: builtin %s", ErrNotImplemented, c.Fn)
}

func (m *Machine) binary(b *vm.Binary) (vm.Value, error) {
	left, err := m.Eval(b.Left)
	if err != nil {
		return nil, err
	}
	right, err := m.Eval(b.Right)
	if err != nil {
		return nil, err
	}

	switch {
	case b.Op.IsLogical():
		if b.Op == vm.AND {
			return vm.BoolValue(left.AsBool() && right.AsBool()), nil
		}
		return vm.BoolValue(left.AsBool() || right.AsBool()), nil
	case b.Op == vm.STREQ || b.Op == vm.STRNE:
		ls, lok := left.(vm.StrValue)
		rs, rok := right.(vm.StrValue)
		if !lok || !rok {
			return nil, fmt.Errorf("%w: %s compares strings", ErrTypeMismatch, b)
		}
		eq := strings.EqualFold(string(ls), string(rs))
		return vm.BoolValue(eq == (b.Op == vm.STREQ)), nil
	}

	a, err := toNumber(left)
	if err != nil {
		return nil, err
	}
	c, err := toNumber(right)
	if err != nil {
		return nil, err
	}
	switch b.Op {
	case vm.ADD:
		return vm.NumValue(a + c), nil
	case vm.SUBTRACT:
		return vm.NumValue(a - c), nil
	case vm.MULTIPLY:
		return vm.NumValue(a * c), nil
	case vm.DIVIDE:
		if c == 0 {
			return nil, ErrDivisionByZero
		}
		return vm.NumValue(a / c), nil
	case vm.EQ:
		return vm.BoolValue(a == c), nil
	case vm.NE:
		return vm.BoolValue(a != c), nil
	case vm.LT:
		return vm.BoolValue(a < c), nil
	case vm.LTE:
		return vm.BoolValue(a <= c), nil
	case vm.GT:
		return vm.BoolValue(a > c), nil
	case vm.GTE:
		return vm.BoolValue(a >= c), nil
	}
	return nil, fmt.Errorf("%w: operator %s", ErrNotImplemented, b.Op)
}

// indices truncates index expressions to ints and zero-pads them to
// two dimensions.
func (m *Machine) indices(r *vm.Ref) (int, int, error) {
	var out [2]int
	for i, x := range r.Indices {
		n, err := m.evalNumber(x)
		if err != nil {
			return 0, 0, err
		}
		out[i] = int(n)
	}
	return out[0], out[1], nil
}

func (m *Machine) load(r *vm.Ref) (vm.Value, error) {
	if !r.IsArray() {
		return m.State.Symbols.Get(r.Name)
	}
	i, j, err := m.indices(r)
	if err != nil {
		return nil, err
	}
	return m.State.Symbols.GetIndexed(r.Name, i, j)
}

// store writes v into r, converting booleans to numbers. The name's
// suffix is not checked against the value.
func (m *Machine) store(r *vm.Ref, v vm.Value) error {
	if b, ok := v.(vm.BoolValue); ok {
		v = vm.NumValue(boolNum(bool(b)))
	}
	if !r.IsArray() {
		m.State.Symbols.Set(r.Name, v)
		return nil
	}
	i, j, err := m.indices(r)
	if err != nil {
		return err
	}
	return m.State.Symbols.SetIndexed(r.Name, i, j, v)
}
