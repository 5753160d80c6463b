package schema

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"tabletalk/internal/models"
)

// Validation rules are a deliberately tiny expression language: the
// bound variable "value" compared against a literal, optionally chained
// with && and ||. Nothing else is accepted, so a schema author can
// never smuggle in arbitrary evaluation.
//
//	value > 0
//	value >= 1 && value <= 120
//	value != ""

var errBadRule = errors.New("malformed rule")

type ruleToken struct {
	kind tokenKind
	text string
	num  float64
}

type tokenKind int

const (
	tokValue tokenKind = iota
	tokOp
	tokAnd
	tokOr
	tokNumber
	tokString
)

func evalRule(rule string, v models.TypedValue) (bool, error) {
	toks, err := lexRule(rule)
	if err != nil {
		return false, err
	}
	p := &ruleParser{toks: toks, value: v}
	ok, err := p.orExpr()
	if err != nil {
		return false, err
	}
	if p.pos != len(p.toks) {
		return false, fmt.Errorf("%w: trailing input", errBadRule)
	}
	return ok, nil
}

func lexRule(rule string) ([]ruleToken, error) {
	var toks []ruleToken
	rs := []rune(rule)
	i := 0
	for i < len(rs) {
		r := rs[i]
		switch {
		case unicode.IsSpace(r):
			i++
		case r == '&' || r == '|':
			if i+1 >= len(rs) || rs[i+1] != r {
				return nil, fmt.Errorf("%w: unexpected %q", errBadRule, string(r))
			}
			if r == '&' {
				toks = append(toks, ruleToken{kind: tokAnd})
			} else {
				toks = append(toks, ruleToken{kind: tokOr})
			}
			i += 2
		case r == '<' || r == '>' || r == '=' || r == '!':
			op := string(r)
			if i+1 < len(rs) && rs[i+1] == '=' {
				op += "="
				i++
			}
			i++
			if op == "=" || op == "!" {
				return nil, fmt.Errorf("%w: unexpected %q", errBadRule, op)
			}
			toks = append(toks, ruleToken{kind: tokOp, text: op})
		case r == '\'' || r == '"':
			quote := r
			j := i + 1
			for j < len(rs) && rs[j] != quote {
				j++
			}
			if j >= len(rs) {
				return nil, fmt.Errorf("%w: unterminated string", errBadRule)
			}
			toks = append(toks, ruleToken{kind: tokString, text: string(rs[i+1 : j])})
			i = j + 1
		case unicode.IsLetter(r):
			j := i
			for j < len(rs) && (unicode.IsLetter(rs[j]) || unicode.IsDigit(rs[j]) || rs[j] == '_') {
				j++
			}
			word := string(rs[i:j])
			if word != "value" {
				return nil, fmt.Errorf("%w: unknown identifier %q", errBadRule, word)
			}
			toks = append(toks, ruleToken{kind: tokValue})
			i = j
		case unicode.IsDigit(r) || r == '-' || r == '+' || r == '.':
			j := i + 1
			for j < len(rs) && (unicode.IsDigit(rs[j]) || rs[j] == '.' || rs[j] == 'e' || rs[j] == 'E') {
				j++
			}
			n, err := strconv.ParseFloat(string(rs[i:j]), 64)
			if err != nil {
				return nil, fmt.Errorf("%w: bad number %q", errBadRule, string(rs[i:j]))
			}
			toks = append(toks, ruleToken{kind: tokNumber, num: n})
			i = j
		default:
			return nil, fmt.Errorf("%w: unexpected %q", errBadRule, string(r))
		}
	}
	if len(toks) == 0 {
		return nil, fmt.Errorf("%w: empty rule", errBadRule)
	}
	return toks, nil
}

type ruleParser struct {
	toks  []ruleToken
	pos   int
	value models.TypedValue
}

func (p *ruleParser) orExpr() (bool, error) {
	ok, err := p.andExpr()
	if err != nil {
		return false, err
	}
	for p.pos < len(p.toks) && p.toks[p.pos].kind == tokOr {
		p.pos++
		rhs, err := p.andExpr()
		if err != nil {
			return false, err
		}
		ok = ok || rhs
	}
	return ok, nil
}

func (p *ruleParser) andExpr() (bool, error) {
	ok, err := p.comparison()
	if err != nil {
		return false, err
	}
	for p.pos < len(p.toks) && p.toks[p.pos].kind == tokAnd {
		p.pos++
		rhs, err := p.comparison()
		if err != nil {
			return false, err
		}
		ok = ok && rhs
	}
	return ok, nil
}

func (p *ruleParser) comparison() (bool, error) {
	if p.pos >= len(p.toks) {
		return false, fmt.Errorf("%w: incomplete comparison", errBadRule)
	}
	if p.toks[p.pos].kind != tokValue {
		return false, fmt.Errorf("%w: comparison must start with value", errBadRule)
	}
	p.pos++
	if p.pos >= len(p.toks) || p.toks[p.pos].kind != tokOp {
		return false, fmt.Errorf("%w: expected comparison operator", errBadRule)
	}
	op := p.toks[p.pos].text
	p.pos++
	if p.pos >= len(p.toks) {
		return false, fmt.Errorf("%w: expected literal", errBadRule)
	}
	lit := p.toks[p.pos]
	p.pos++

	switch p.value.Kind {
	case models.FieldNumber:
		if lit.kind != tokNumber {
			return false, fmt.Errorf("%w: numeric value compared to non-number", errBadRule)
		}
		return compareFloat(p.value.Number, op, lit.num), nil
	default:
		if lit.kind != tokString {
			return false, fmt.Errorf("%w: text value compared to non-string", errBadRule)
		}
		return compareString(p.value.Text, op, lit.text), nil
	}
}

func compareFloat(a float64, op string, b float64) bool {
	switch op {
	case "==":
		return a == b
	case "!=":
		return a != b
	case "<":
		return a < b
	case "<=":
		return a <= b
	case ">":
		return a > b
	default:
		return a >= b
	}
}

func compareString(a, op, b string) bool {
	switch op {
	case "==":
		return a == b
	case "!=":
		return a != b
	case "<":
		return strings.Compare(a, b) < 0
	case "<=":
		return strings.Compare(a, b) <= 0
	case ">":
		return strings.Compare(a, b) > 0
	default:
		return strings.Compare(a, b) >= 0
	}
}
