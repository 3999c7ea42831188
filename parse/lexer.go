package parse

import (
	"fmt"
	"strings"
	"unicode"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokNumber
	tokString
	tokIdent
	tokPunct
)

func (k tokenKind) String() string {
	switch k {
	case tokEOF:
		return "end of line"
	case tokNumber:
		return "number"
	case tokString:
		return "string"
	case tokIdent:
		return "name"
	case tokPunct:
		return "punctuation"
	default:
		return fmt.Sprintf("token(%d)", int(k))
	}
}

type token struct {
	kind tokenKind
	text string
	col  int
}

// keyword returns the upper-cased text for identifier tokens.
func (t token) keyword() string {
	if t.kind != tokIdent {
		return ""
	}
	return strings.ToUpper(t.text)
}

func (t token) String() string {
	if t.kind == tokEOF {
		return "end of line"
	}
	return fmt.Sprintf("%q", t.text)
}

var twoCharPuncts = []string{"<>", "<=", ">="}

// lex splits one statement into tokens. Names are a letter followed by
// letters or digits, with an optional trailing '$'.
func lex(src string) ([]token, error) {
	var out []token
	rs := []rune(src)
	i := 0
	for i < len(rs) {
		c := rs[i]
		switch {
		case c == ' ' || c == '\t':
			i++
		case unicode.IsDigit(c) || (c == '.' && i+1 < len(rs) && unicode.IsDigit(rs[i+1])):
			start := i
			seenDot := false
			for i < len(rs) && (unicode.IsDigit(rs[i]) || (rs[i] == '.' && !seenDot)) {
				if rs[i] == '.' {
					seenDot = true
				}
				i++
			}
			out = append(out, token{kind: tokNumber, text: string(rs[start:i]), col: start})
		case c == '"':
			start := i
			i++
			for i < len(rs) && rs[i] != '"' {
				i++
			}
			if i >= len(rs) {
				return nil, fmt.Errorf("Unterminated string at column %d", start+1)
			}
			out = append(out, token{kind: tokString, text: string(rs[start+1 : i]), col: start})
			i++
		case unicode.IsLetter(c):
			start := i
			for i < len(rs) && (unicode.IsLetter(rs[i]) || unicode.IsDigit(rs[i])) {
				i++
			}
			if i < len(rs) && rs[i] == '$' {
				i++
			}
			out = append(out, token{kind: tokIdent, text: string(rs[start:i]), col: start})
		default:
			matched := false
			for _, p := range twoCharPuncts {
				if strings.HasPrefix(string(rs[i:]), p) {
					out = append(out, token{kind: tokPunct, text: p, col: i})
					i += len(p)
					matched = true
					break
				}
			}
			if matched {
				continue
			}
			if !strings.ContainsRune("()+-*/=<>,;#", c) {
				return nil, fmt.Errorf("Unexpected character %q at column %d", c, i+1)
			}
			out = append(out, token{kind: tokPunct, text: string(c), col: i})
			i++
		}
	}
	out = append(out, token{kind: tokEOF, col: len(rs)})
	return out, nil
}
