package vm

type Op uint32

const (
	// Arithmetic, numeric operands only.
	ADD Op = iota
	SUBTRACT
	MULTIPLY
	DIVIDE

	// Numeric comparisons.
	EQ
	NE
	LT
	LTE
	GT
	GTE

	// String comparisons, case-insensitive.
	STREQ
	STRNE

	AND
	OR
	OpMax
)

func (o Op) String() string {
	switch o {
	case ADD:
		return "+"
	case SUBTRACT:
		return "-"
	case MULTIPLY:
		return "*"
	case DIVIDE:
		return "/"
	case EQ, STREQ:
		return "="
	case NE, STRNE:
		return "<>"
	case LT:
		return "<"
	case LTE:
		return "<="
	case GT:
		return ">"
	case GTE:
		return ">="
	case AND:
		return "AND"
	case OR:
		return "OR"
	}
	panic("Unnamed op")
}

func (o Op) IsArithmetic() bool {
	return o <= DIVIDE
}

func (o Op) IsComparison() bool {
	return o >= EQ && o <= STRNE
}

func (o Op) IsLogical() bool {
	return o == AND || o == OR
}

type Builtin uint32

const (
	INT Builtin = iota
	ABS
	RND
	CLK
)

var builtinNames = map[string]Builtin{
	"INT": INT,
	"ABS": ABS,
	"RND": RND,
	"CLK": CLK,
}

// LookupBuiltin maps a keyword to its builtin.
func LookupBuiltin(name string) (Builtin, bool) {
	b, ok := builtinNames[name]
	return b, ok
}

func (b Builtin) String() string {
	switch b {
	case INT:
		return "INT"
	case ABS:
		return "ABS"
	case RND:
		return "RND"
	case CLK:
		return "CLK"
	}
	panic("Unnamed builtin")
}
