package parse

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode"

	"github.com/rs/zerolog/log"

	"github.com/timewinder-dev/linebasic/vm"
)

// Error reports malformed source. Row is the 1-based row in the source
// text; Number is the BASIC line number when one was read.
type Error struct {
	Name   string
	Row    int
	Number int
	Msg    string
}

func (e *Error) Error() string {
	if e.Number != 0 {
		return fmt.Sprintf("%s:%d: line %d: %s", e.Name, e.Row, e.Number, e.Msg)
	}
	return fmt.Sprintf("%s:%d: %s", e.Name, e.Row, e.Msg)
}

var keywords = map[string]bool{
	"LET": true, "PRINT": true, "DIM": true, "READ": true, "WRITE": true,
	"FILE": true, "DATA": true, "INPUT": true, "FOR": true, "TO": true,
	"NEXT": true, "IF": true, "THEN": true, "GO": true, "GOTO": true,
	"GOSUB": true, "RETURN": true, "STOP": true, "END": true, "REM": true,
	"BASE": true, "RESTORE": true, "AND": true, "OR": true, "STEP": true,
	"INT": true, "ABS": true, "RND": true, "CLK": true,
}

func File(path string) (*vm.Program, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Source(path, f)
}

func Literal(code string) (*vm.Program, error) {
	return Source("<literal>", strings.NewReader(code))
}

// Source reads one numbered statement per row. Blank rows are skipped.
func Source(name string, r io.Reader) (*vm.Program, error) {
	var lines []vm.Line
	sc := bufio.NewScanner(r)
	row := 0
	for sc.Scan() {
		row++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		l, err := parseLine(text)
		if err != nil {
			err.Name = name
			err.Row = row
			return nil, err
		}
		lines = append(lines, l)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	log.Debug().Str("source", name).Int("lines", len(lines)).Msg("Parsed program")
	p, err := vm.NewProgram(lines)
	if err != nil {
		return nil, &Error{Name: name, Msg: err.Error()}
	}
	return p, nil
}

func parseLine(text string) (vm.Line, *Error) {
	i := 0
	for i < len(text) && unicode.IsDigit(rune(text[i])) {
		i++
	}
	if i == 0 {
		return vm.Line{}, &Error{Msg: "Missing line number"}
	}
	num, err := strconv.Atoi(text[:i])
	if err != nil {
		return vm.Line{}, &Error{Msg: err.Error()}
	}
	rest := strings.TrimSpace(text[i:])
	if rest == "" {
		return vm.Line{}, &Error{Number: num, Msg: "Missing statement"}
	}
	stmt, err := parseStatement(rest)
	if err != nil {
		return vm.Line{}, &Error{Number: num, Msg: err.Error()}
	}
	return vm.Line{Number: num, Stmt: stmt}, nil
}

func parseStatement(text string) (vm.Statement, error) {
	// REM swallows the rest of the row verbatim.
	if len(text) >= 3 && strings.EqualFold(text[:3], "REM") {
		if len(text) == 3 || text[3] == ' ' || text[3] == '\t' {
			return &vm.Comment{Text: strings.TrimSpace(text[3:])}, nil
		}
	}
	toks, err := lex(text)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	stmt, err := p.statement()
	if err != nil {
		return nil, err
	}
	if !p.at(tokEOF) {
		return nil, fmt.Errorf("Unexpected %s after statement", p.peek())
	}
	return stmt, nil
}

type parser struct {
	toks []token
	pos  int
}

func (p *parser) peek() token {
	return p.toks[p.pos]
}

func (p *parser) next() token {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *parser) at(k tokenKind) bool {
	return p.peek().kind == k
}

func (p *parser) atPunct(s string) bool {
	t := p.peek()
	return t.kind == tokPunct && t.text == s
}

func (p *parser) atKeyword(kw string) bool {
	return p.peek().keyword() == kw
}

func (p *parser) expectPunct(s string) error {
	if !p.atPunct(s) {
		return fmt.Errorf("Expected %q, found %s", s, p.peek())
	}
	p.next()
	return nil
}

func (p *parser) expectKeyword(kw string) error {
	if !p.atKeyword(kw) {
		return fmt.Errorf("Expected %s, found %s", kw, p.peek())
	}
	p.next()
	return nil
}

func (p *parser) integer() (int, error) {
	t := p.peek()
	if t.kind != tokNumber || strings.Contains(t.text, ".") {
		return 0, fmt.Errorf("Expected integer, found %s", t)
	}
	p.next()
	return strconv.Atoi(t.text)
}

func (p *parser) statement() (vm.Statement, error) {
	t := p.peek()
	if t.kind != tokIdent {
		return nil, fmt.Errorf("Expected statement, found %s", t)
	}
	kw := t.keyword()
	if !keywords[kw] {
		return p.let()
	}
	p.next()
	switch kw {
	case "LET":
		return p.let()
	case "PRINT":
		return p.print()
	case "DIM":
		return p.dim()
	case "BASE":
		n, err := p.integer()
		if err != nil {
			return nil, err
		}
		return &vm.Base{Number: n}, nil
	case "DATA":
		return p.data()
	case "INPUT":
		refs, err := p.refList()
		if err != nil {
			return nil, err
		}
		return &vm.Input{Targets: refs}, nil
	case "FILE":
		return p.file()
	case "RESTORE":
		h, err := p.handle()
		if err != nil {
			return nil, err
		}
		return &vm.Restore{Handle: h}, nil
	case "READ", "WRITE":
		var h vm.Expr
		if p.atPunct("#") {
			var err error
			h, err = p.handle()
			if err != nil {
				return nil, err
			}
			if err := p.expectPunct(","); err != nil {
				return nil, err
			}
		}
		refs, err := p.refList()
		if err != nil {
			return nil, err
		}
		if kw == "READ" {
			return &vm.Read{Handle: h, Targets: refs}, nil
		}
		return &vm.Write{Handle: h, Targets: refs}, nil
	case "FOR":
		return p.forStmt()
	case "NEXT":
		v, err := p.scalarRef()
		if err != nil {
			return nil, err
		}
		return &vm.Next{Var: v}, nil
	case "IF":
		return p.ifStmt()
	case "GO":
		if err := p.expectKeyword("TO"); err != nil {
			return nil, err
		}
		fallthrough
	case "GOTO":
		n, err := p.integer()
		if err != nil {
			return nil, err
		}
		return &vm.Goto{Target: n}, nil
	case "GOSUB":
		n, err := p.integer()
		if err != nil {
			return nil, err
		}
		return &vm.Gosub{Target: n}, nil
	case "RETURN":
		return &vm.Return{}, nil
	case "STOP":
		return &vm.Stop{}, nil
	case "END":
		return &vm.End{}, nil
	}
	return nil, fmt.Errorf("Unexpected keyword %s", kw)
}

func (p *parser) let() (vm.Statement, error) {
	target, err := p.ref()
	if err != nil {
		return nil, err
	}
	if err := p.expectPunct("="); err != nil {
		return nil, err
	}
	value, err := p.condition()
	if err != nil {
		return nil, err
	}
	return &vm.Let{Target: target, Value: value}, nil
}

func (p *parser) print() (vm.Statement, error) {
	stmt := &vm.Print{Newline: true}
	if p.at(tokEOF) {
		return stmt, nil
	}
	modeSet := false
	for {
		arg, err := p.condition()
		if err != nil {
			return nil, err
		}
		stmt.Args = append(stmt.Args, arg)
		if p.at(tokEOF) {
			return stmt, nil
		}
		var mode vm.PrintMode
		switch {
		case p.atPunct(","):
			mode = vm.Zone
		case p.atPunct(";"):
			mode = vm.Immediate
		default:
			return nil, fmt.Errorf("Expected \",\" or \";\", found %s", p.peek())
		}
		if modeSet && mode != stmt.Mode {
			return nil, fmt.Errorf("Cannot mix \",\" and \";\" in one PRINT")
		}
		stmt.Mode = mode
		modeSet = true
		p.next()
		if p.at(tokEOF) {
			stmt.Newline = false
			return stmt, nil
		}
	}
}

func (p *parser) dim() (vm.Statement, error) {
	stmt := &vm.Dim{}
	for {
		t := p.next()
		if t.kind != tokIdent || keywords[t.keyword()] {
			return nil, fmt.Errorf("Expected array name, found %s", t)
		}
		if err := p.expectPunct("("); err != nil {
			return nil, err
		}
		var bounds []int
		for {
			n, err := p.integer()
			if err != nil {
				return nil, err
			}
			bounds = append(bounds, n)
			if !p.atPunct(",") {
				break
			}
			p.next()
		}
		if len(bounds) > 2 {
			return nil, fmt.Errorf("Array %s has more than two dimensions", t.text)
		}
		if err := p.expectPunct(")"); err != nil {
			return nil, err
		}
		stmt.Refs = append(stmt.Refs, vm.DimRef{Name: t.text, Bounds: bounds})
		if !p.atPunct(",") {
			return stmt, nil
		}
		p.next()
	}
}

func (p *parser) data() (vm.Statement, error) {
	stmt := &vm.Data{}
	for {
		neg := false
		if p.atPunct("-") {
			neg = true
			p.next()
		}
		t := p.next()
		switch {
		case t.kind == tokNumber:
			f, err := strconv.ParseFloat(t.text, 64)
			if err != nil {
				return nil, err
			}
			if neg {
				f = -f
			}
			stmt.Values = append(stmt.Values, vm.NumValue(f))
		case t.kind == tokString && !neg:
			stmt.Values = append(stmt.Values, vm.StrValue(t.text))
		default:
			return nil, fmt.Errorf("Expected DATA literal, found %s", t)
		}
		if !p.atPunct(",") {
			return stmt, nil
		}
		p.next()
	}
}

func (p *parser) file() (vm.Statement, error) {
	stmt := &vm.File{}
	for {
		if err := p.expectPunct("#"); err != nil {
			return nil, err
		}
		n, err := p.integer()
		if err != nil {
			return nil, err
		}
		if err := p.expectPunct("="); err != nil {
			return nil, err
		}
		t := p.next()
		if t.kind != tokString {
			return nil, fmt.Errorf("Expected file name, found %s", t)
		}
		stmt.Specs = append(stmt.Specs, vm.FileSpec{Handle: n, Name: t.text})
		if !p.atPunct(",") {
			return stmt, nil
		}
		p.next()
	}
}

// handle parses "#n" or "#ref".
func (p *parser) handle() (vm.Expr, error) {
	if err := p.expectPunct("#"); err != nil {
		return nil, err
	}
	if p.at(tokNumber) {
		n, err := p.integer()
		if err != nil {
			return nil, err
		}
		return &vm.NumberLit{Value: float64(n)}, nil
	}
	r, err := p.ref()
	if err != nil {
		return nil, err
	}
	if r.IsString() {
		return nil, fmt.Errorf("File handle %s must be numeric", r)
	}
	return r, nil
}

func (p *parser) forStmt() (vm.Statement, error) {
	v, err := p.scalarRef()
	if err != nil {
		return nil, err
	}
	if err := p.expectPunct("="); err != nil {
		return nil, err
	}
	start, err := p.expr()
	if err != nil {
		return nil, err
	}
	if err := p.expectKeyword("TO"); err != nil {
		return nil, err
	}
	end, err := p.expr()
	if err != nil {
		return nil, err
	}
	if p.atKeyword("STEP") {
		return nil, fmt.Errorf("FOR ... STEP is not supported")
	}
	return &vm.For{Var: v, Start: start, End: end}, nil
}

func (p *parser) ifStmt() (vm.Statement, error) {
	cond, err := p.condition()
	if err != nil {
		return nil, err
	}
	switch {
	case p.atKeyword("THEN"), p.atKeyword("GOTO"):
		p.next()
	case p.atKeyword("GO"):
		p.next()
		if err := p.expectKeyword("TO"); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("Expected THEN, found %s", p.peek())
	}
	n, err := p.integer()
	if err != nil {
		return nil, err
	}
	return &vm.If{Cond: cond, Target: n}, nil
}

func (p *parser) refList() ([]*vm.Ref, error) {
	var refs []*vm.Ref
	for {
		r, err := p.ref()
		if err != nil {
			return nil, err
		}
		refs = append(refs, r)
		if !p.atPunct(",") {
			return refs, nil
		}
		p.next()
	}
}

func (p *parser) scalarRef() (*vm.Ref, error) {
	r, err := p.ref()
	if err != nil {
		return nil, err
	}
	if r.IsArray() || r.IsString() {
		return nil, fmt.Errorf("Loop variable %s must be a numeric scalar", r)
	}
	return r, nil
}

func (p *parser) ref() (*vm.Ref, error) {
	t := p.next()
	if t.kind != tokIdent || keywords[t.keyword()] {
		return nil, fmt.Errorf("Expected variable, found %s", t)
	}
	r := &vm.Ref{Name: t.text}
	if !p.atPunct("(") {
		return r, nil
	}
	p.next()
	r.Indices = []vm.Expr{}
	for {
		x, err := p.expr()
		if err != nil {
			return nil, err
		}
		r.Indices = append(r.Indices, x)
		if !p.atPunct(",") {
			break
		}
		p.next()
	}
	if len(r.Indices) > 2 {
		return nil, fmt.Errorf("Array %s has more than two dimensions", r.Name)
	}
	if err := p.expectPunct(")"); err != nil {
		return nil, err
	}
	return r, nil
}

// condition := compare { (AND|OR) compare }
func (p *parser) condition() (vm.Expr, error) {
	left, err := p.compare()
	if err != nil {
		return nil, err
	}
	for {
		var op vm.Op
		switch {
		case p.atKeyword("AND"):
			op = vm.AND
		case p.atKeyword("OR"):
			op = vm.OR
		default:
			return left, nil
		}
		p.next()
		right, err := p.compare()
		if err != nil {
			return nil, err
		}
		left = &vm.Binary{Op: op, Left: left, Right: right}
	}
}

var relOps = map[string]vm.Op{
	"=":  vm.EQ,
	"<>": vm.NE,
	"<":  vm.LT,
	"<=": vm.LTE,
	">":  vm.GT,
	">=": vm.GTE,
}

func (p *parser) compare() (vm.Expr, error) {
	left, err := p.expr()
	if err != nil {
		return nil, err
	}
	t := p.peek()
	op, ok := relOps[t.text]
	if t.kind != tokPunct || !ok {
		return left, nil
	}
	p.next()
	right, err := p.expr()
	if err != nil {
		return nil, err
	}
	if vm.IsStringExpr(left) || vm.IsStringExpr(right) {
		switch op {
		case vm.EQ:
			op = vm.STREQ
		case vm.NE:
			op = vm.STRNE
		default:
			return nil, fmt.Errorf("Strings only compare with = and <>")
		}
	}
	return &vm.Binary{Op: op, Left: left, Right: right}, nil
}

// expr := term { (+|-) term }
func (p *parser) expr() (vm.Expr, error) {
	left, err := p.term()
	if err != nil {
		return nil, err
	}
	for p.atPunct("+") || p.atPunct("-") {
		op := vm.ADD
		if p.next().text == "-" {
			op = vm.SUBTRACT
		}
		right, err := p.term()
		if err != nil {
			return nil, err
		}
		left = &vm.Binary{Op: op, Left: left, Right: right}
	}
	return left, nil
}

// term := unary { (*|/) unary }
func (p *parser) term() (vm.Expr, error) {
	left, err := p.unary()
	if err != nil {
		return nil, err
	}
	for p.atPunct("*") || p.atPunct("/") {
		op := vm.MULTIPLY
		if p.next().text == "/" {
			op = vm.DIVIDE
		}
		right, err := p.unary()
		if err != nil {
			return nil, err
		}
		left = &vm.Binary{Op: op, Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) unary() (vm.Expr, error) {
	if p.atPunct("-") {
		p.next()
		x, err := p.unary()
		if err != nil {
			return nil, err
		}
		return &vm.Negate{X: x}, nil
	}
	return p.primary()
}

func (p *parser) primary() (vm.Expr, error) {
	t := p.peek()
	switch t.kind {
	case tokNumber:
		p.next()
		f, err := strconv.ParseFloat(t.text, 64)
		if err != nil {
			return nil, err
		}
		return &vm.NumberLit{Value: f}, nil
	case tokString:
		p.next()
		return &vm.StringLit{Value: t.text}, nil
	case tokIdent:
		if fn, ok := vm.LookupBuiltin(t.keyword()); ok {
			p.next()
			if err := p.expectPunct("("); err != nil {
				return nil, err
			}
			arg, err := p.expr()
			if err != nil {
				return nil, err
			}
			if err := p.expectPunct(")"); err != nil {
				return nil, err
			}
			return &vm.Call{Fn: fn, Arg: arg}, nil
		}
		return p.ref()
	case tokPunct:
		if t.text == "(" {
			p.next()
			x, err := p.condition()
			if err != nil {
				return nil, err
			}
			if err := p.expectPunct(")"); err != nil {
				return nil, err
			}
			return &vm.Paren{X: x}, nil
		}
	}
	return nil, fmt.Errorf("Expected expression, found %s", t)
}
