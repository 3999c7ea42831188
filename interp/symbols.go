package interp

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/timewinder-dev/linebasic/vm"
)

// Array is a dense two-dimensional grid. Bounds are inclusive upper
// indexes; a one-dimensional array has D2 == 0.
type Array struct {
	D1     int
	D2     int
	Dims   int
	Values []vm.Value
}

// MaxArraySlots caps the number of values one array may hold.
const MaxArraySlots = 1 << 24

// NewArray allocates (d1+1) x (d2+1) slots filled with the zero value
// for name's type.
func NewArray(name string, bounds []int) (*Array, error) {
	if len(bounds) == 0 || len(bounds) > 2 {
		return nil, fmt.Errorf("%w: %s needs one or two bounds", ErrSubscript, name)
	}
	a := &Array{D1: bounds[0], Dims: len(bounds)}
	if len(bounds) == 2 {
		a.D2 = bounds[1]
	}
	if a.D1 < 0 || a.D2 < 0 {
		return nil, fmt.Errorf("%w: negative bound for %s", ErrSubscript, name)
	}
	if a.D1 >= MaxArraySlots || a.D2 >= MaxArraySlots || a.D1+1 > MaxArraySlots/(a.D2+1) {
		return nil, fmt.Errorf("%w: %s%s", ErrOutOfMemory, name, formatBounds(a.Bounds()))
	}
	size := (a.D1 + 1) * (a.D2 + 1)
	a.Values = make([]vm.Value, size)
	zero := vm.Zero(name)
	for i := range a.Values {
		a.Values[i] = zero
	}
	return a, nil
}

func formatBounds(b []int) string {
	parts := make([]string, len(b))
	for i, n := range b {
		parts[i] = strconv.Itoa(n)
	}
	return "(" + strings.Join(parts, ",") + ")"
}

func (a *Array) offset(i, j int) (int, error) {
	if i < 0 || i > a.D1 || j < 0 || j > a.D2 {
		return 0, ErrSubscript
	}
	return i*(a.D2+1) + j, nil
}

func (a *Array) Get(i, j int) (vm.Value, error) {
	off, err := a.offset(i, j)
	if err != nil {
		return nil, err
	}
	return a.Values[off], nil
}

func (a *Array) Set(i, j int, v vm.Value) error {
	off, err := a.offset(i, j)
	if err != nil {
		return err
	}
	a.Values[off] = v
	return nil
}

func (a *Array) Bounds() []int {
	if a.Dims == 2 {
		return []int{a.D1, a.D2}
	}
	return []int{a.D1}
}

// Symbols holds scalar bindings and declared arrays. Scalars spring
// into existence on first write; arrays must be declared by DIM.
type Symbols struct {
	Scalars map[string]vm.Value
	Arrays  map[string]*Array
}

func NewSymbols() *Symbols {
	return &Symbols{
		Scalars: make(map[string]vm.Value),
		Arrays:  make(map[string]*Array),
	}
}

func (s *Symbols) Get(name string) (vm.Value, error) {
	v, ok := s.Scalars[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUndefinedVariable, name)
	}
	return v, nil
}

func (s *Symbols) Set(name string, v vm.Value) {
	s.Scalars[name] = v
}

// Dim declares name, replacing any earlier array of the same name.
func (s *Symbols) Dim(name string, bounds []int) error {
	a, err := NewArray(name, bounds)
	if err != nil {
		return err
	}
	s.Arrays[name] = a
	return nil
}

func (s *Symbols) array(name string) (*Array, error) {
	a, ok := s.Arrays[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUndeclaredArray, name)
	}
	return a, nil
}

func (s *Symbols) GetIndexed(name string, i, j int) (vm.Value, error) {
	a, err := s.array(name)
	if err != nil {
		return nil, err
	}
	v, err := a.Get(i, j)
	if err != nil {
		return nil, fmt.Errorf("%w: %s(%d,%d)", err, name, i, j)
	}
	return v, nil
}

func (s *Symbols) SetIndexed(name string, i, j int, v vm.Value) error {
	a, err := s.array(name)
	if err != nil {
		return err
	}
	if err := a.Set(i, j, v); err != nil {
		return fmt.Errorf("%w: %s(%d,%d)", err, name, i, j)
	}
	return nil
}

func (s *Symbols) ScalarNames() []string {
	keys := make([]string, 0, len(s.Scalars))
	for k := range s.Scalars {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (s *Symbols) ArrayNames() []string {
	keys := make([]string, 0, len(s.Arrays))
	for k := range s.Arrays {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
