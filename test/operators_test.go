package test

import (
	"testing"

	"github.com/timewinder-dev/linebasic/interp"
	"github.com/timewinder-dev/linebasic/parse"
	"github.com/timewinder-dev/linebasic/vm"
)

// runResult runs a program and returns the value left in R.
func runResult(t *testing.T, code string) vm.Value {
	t.Helper()
	prog, err := parse.Literal(code)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	m := interp.NewMachine(prog, interp.Options{Seed: 1})
	if err := m.Run(); err != nil {
		t.Fatalf("Execution failed: %v", err)
	}
	v, err := m.State.Symbols.Get("R")
	if err != nil {
		t.Fatalf("Variable 'R' not found: %v", err)
	}
	return v
}

func TestArithmeticOperators(t *testing.T) {
	tests := []struct {
		name     string
		code     string
		expected vm.Value
	}{
		{
			name:     "addition",
			code:     "10 R = 2 + 3",
			expected: vm.NumValue(5),
		},
		{
			name:     "subtraction goes left to right",
			code:     "10 R = 10 - 4 - 3",
			expected: vm.NumValue(3),
		},
		{
			name:     "multiplication binds tighter",
			code:     "10 R = 2 + 3 * 4",
			expected: vm.NumValue(14),
		},
		{
			name:     "parentheses",
			code:     "10 R = (2 + 3) * 4",
			expected: vm.NumValue(20),
		},
		{
			name:     "division keeps fractions",
			code:     "10 R = 7 / 2",
			expected: vm.NumValue(3.5),
		},
		{
			name:     "unary minus",
			code:     "10 R = -3 * -2",
			expected: vm.NumValue(6),
		},
		{
			name:     "INT truncates toward zero",
			code:     "10 R = INT(-7 / 2)",
			expected: vm.NumValue(-3),
		},
		{
			name:     "ABS",
			code:     "10 A = 4\n20 R = ABS(A - 10)",
			expected: vm.NumValue(6),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := runResult(t, tt.code)
			if got != tt.expected {
				t.Errorf("Expected %v, got %v", tt.expected, got)
			}
		})
	}
}

// Comparisons stored into a variable land as -1 for true and 0 for
// false.
func TestComparisonOperators(t *testing.T) {
	tests := []struct {
		name     string
		code     string
		expected vm.Value
	}{
		{"less than", "10 R = 1 < 2", vm.NumValue(-1)},
		{"greater or equal", "10 R = 2 >= 3", vm.NumValue(0)},
		{"not equal", "10 R = 2 <> 3", vm.NumValue(-1)},
		{"equal", "10 R = 4 = 4", vm.NumValue(-1)},
		{"and", "10 R = 1 < 2 AND 3 < 2", vm.NumValue(0)},
		{"or", "10 R = 1 < 2 OR 3 < 2", vm.NumValue(-1)},
		{"string equality ignores case", "10 A$ = \"abc\"\n20 R = A$ = \"ABC\"", vm.NumValue(-1)},
		{"string inequality", "10 A$ = \"abc\"\n20 R = A$ <> \"abd\"", vm.NumValue(-1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := runResult(t, tt.code)
			if got != tt.expected {
				t.Errorf("Expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestStringOrderingRejected(t *testing.T) {
	_, err := parse.Literal("10 IF A$ < \"B\" THEN 10")
	if err == nil {
		t.Fatalf("Expected a parse error for string ordering")
	}
}
