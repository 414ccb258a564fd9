package gocore

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/rayforce-db/rayforce-go/pkg/enginecore"
)

// The statement grammar is the subset of the rayforce surface the binding
// exercises:
//
//	table <name> (<col>:<type>, ...)
//	insert into <name> values (<expr>, ...)
//	select <col>[, <col>...]|* from <name> [where <col> = <expr>] [limit <n>]
//
// Types are int, float, string and bytes. <expr> is an integer, float or
// quoted string literal, null, or a ? placeholder bound at execute time.

type planKind int

const (
	planCreate planKind = iota
	planInsert
	planSelect
)

type colDef struct {
	name string
	tag  enginecore.TypeTag
}

// expr is either a literal RawValue or a placeholder index.
type expr struct {
	placeholder int // 1-based; 0 means literal
	lit         enginecore.RawValue
}

type plan struct {
	kind   planKind
	table  string
	defs   []colDef // planCreate
	exprs  []expr   // planInsert
	cols   []string // planSelect; empty means *
	where  string   // planSelect filter column, "" if none
	filter expr
	limit  int // -1 if absent
	params int // number of placeholders
}

type token struct {
	kind string // "ident", "num", "str", "punct", "eof"
	text string
}

type lexer struct {
	toks []token
	pos  int
}

func lex(src string) (*lexer, error) {
	var toks []token
	i := 0
	for i < len(src) {
		ch := src[i]
		switch {
		case ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r':
			i++
		case ch == '(' || ch == ')' || ch == ',' || ch == ':' || ch == '*' || ch == '=' || ch == '?':
			toks = append(toks, token{"punct", string(ch)})
			i++
		case ch == '\'' || ch == '"':
			quote := ch
			j := i + 1
			for j < len(src) && src[j] != quote {
				j++
			}
			if j == len(src) {
				return nil, fmt.Errorf("unterminated string literal")
			}
			toks = append(toks, token{"str", src[i+1 : j]})
			i = j + 1
		case ch == '-' || ch >= '0' && ch <= '9':
			j := i + 1
			for j < len(src) && (src[j] >= '0' && src[j] <= '9' || src[j] == '.' || src[j] == 'e' || src[j] == '-') {
				j++
			}
			toks = append(toks, token{"num", src[i:j]})
			i = j
		case unicode.IsLetter(rune(ch)) || ch == '_':
			j := i + 1
			for j < len(src) && (unicode.IsLetter(rune(src[j])) || unicode.IsDigit(rune(src[j])) || src[j] == '_') {
				j++
			}
			toks = append(toks, token{"ident", src[i:j]})
			i = j
		default:
			return nil, fmt.Errorf("unexpected character %q", ch)
		}
	}
	toks = append(toks, token{"eof", ""})
	return &lexer{toks: toks}, nil
}

func (l *lexer) peek() token { return l.toks[l.pos] }

func (l *lexer) next() token {
	t := l.toks[l.pos]
	if t.kind != "eof" {
		l.pos++
	}
	return t
}

func (l *lexer) keyword(kw string) bool {
	t := l.peek()
	if t.kind == "ident" && strings.EqualFold(t.text, kw) {
		l.next()
		return true
	}
	return false
}

func (l *lexer) expectKeyword(kw string) error {
	if !l.keyword(kw) {
		return fmt.Errorf("expected %q, got %q", kw, l.peek().text)
	}
	return nil
}

func (l *lexer) expectPunct(p string) error {
	t := l.next()
	if t.kind != "punct" || t.text != p {
		return fmt.Errorf("expected %q, got %q", p, t.text)
	}
	return nil
}

func (l *lexer) ident() (string, error) {
	t := l.next()
	if t.kind != "ident" {
		return "", fmt.Errorf("expected identifier, got %q", t.text)
	}
	return t.text, nil
}

func parse(src string) (*plan, error) {
	l, err := lex(src)
	if err != nil {
		return nil, err
	}
	var p *plan
	switch {
	case l.keyword("table"):
		p, err = parseCreate(l)
	case l.keyword("insert"):
		p, err = parseInsert(l)
	case l.keyword("select"):
		p, err = parseSelect(l)
	default:
		return nil, fmt.Errorf("unknown statement %q", l.peek().text)
	}
	if err != nil {
		return nil, err
	}
	if l.peek().kind != "eof" {
		return nil, fmt.Errorf("trailing input at %q", l.peek().text)
	}
	return p, nil
}

func parseType(name string) (enginecore.TypeTag, error) {
	switch strings.ToLower(name) {
	case "int":
		return enginecore.TagI64, nil
	case "float":
		return enginecore.TagF64, nil
	case "string":
		return enginecore.TagStr, nil
	case "bytes":
		return enginecore.TagBytes, nil
	}
	return enginecore.TagNull, fmt.Errorf("unknown column type %q", name)
}

func parseCreate(l *lexer) (*plan, error) {
	name, err := l.ident()
	if err != nil {
		return nil, err
	}
	if err := l.expectPunct("("); err != nil {
		return nil, err
	}
	p := &plan{kind: planCreate, table: name, limit: -1}
	for {
		col, err := l.ident()
		if err != nil {
			return nil, err
		}
		if err := l.expectPunct(":"); err != nil {
			return nil, err
		}
		tyName, err := l.ident()
		if err != nil {
			return nil, err
		}
		tag, err := parseType(tyName)
		if err != nil {
			return nil, err
		}
		p.defs = append(p.defs, colDef{name: col, tag: tag})
		t := l.next()
		if t.kind == "punct" && t.text == "," {
			continue
		}
		if t.kind == "punct" && t.text == ")" {
			return p, nil
		}
		return nil, fmt.Errorf("expected ',' or ')', got %q", t.text)
	}
}

func (p *plan) parseExpr(l *lexer) (expr, error) {
	t := l.next()
	switch {
	case t.kind == "punct" && t.text == "?":
		p.params++
		return expr{placeholder: p.params}, nil
	case t.kind == "num":
		if strings.ContainsAny(t.text, ".e") {
			f, err := strconv.ParseFloat(t.text, 64)
			if err != nil {
				return expr{}, fmt.Errorf("bad float literal %q", t.text)
			}
			return expr{lit: enginecore.RawValue{Tag: enginecore.TagF64, F64: f}}, nil
		}
		n, err := strconv.ParseInt(t.text, 10, 64)
		if err != nil {
			return expr{}, fmt.Errorf("bad integer literal %q", t.text)
		}
		return expr{lit: enginecore.RawValue{Tag: enginecore.TagI64, I64: n}}, nil
	case t.kind == "str":
		return expr{lit: enginecore.RawValue{Tag: enginecore.TagStr, Bytes: []byte(t.text)}}, nil
	case t.kind == "ident" && strings.EqualFold(t.text, "null"):
		return expr{lit: enginecore.RawValue{Tag: enginecore.TagNull}}, nil
	}
	return expr{}, fmt.Errorf("expected literal or '?', got %q", t.text)
}

func parseInsert(l *lexer) (*plan, error) {
	if err := l.expectKeyword("into"); err != nil {
		return nil, err
	}
	name, err := l.ident()
	if err != nil {
		return nil, err
	}
	if err := l.expectKeyword("values"); err != nil {
		return nil, err
	}
	if err := l.expectPunct("("); err != nil {
		return nil, err
	}
	p := &plan{kind: planInsert, table: name, limit: -1}
	for {
		e, err := p.parseExpr(l)
		if err != nil {
			return nil, err
		}
		p.exprs = append(p.exprs, e)
		t := l.next()
		if t.kind == "punct" && t.text == "," {
			continue
		}
		if t.kind == "punct" && t.text == ")" {
			return p, nil
		}
		return nil, fmt.Errorf("expected ',' or ')', got %q", t.text)
	}
}

func parseSelect(l *lexer) (*plan, error) {
	p := &plan{kind: planSelect, limit: -1}
	if t := l.peek(); t.kind == "punct" && t.text == "*" {
		l.next()
	} else {
		for {
			col, err := l.ident()
			if err != nil {
				return nil, err
			}
			p.cols = append(p.cols, col)
			if t := l.peek(); t.kind == "punct" && t.text == "," {
				l.next()
				continue
			}
			break
		}
	}
	if err := l.expectKeyword("from"); err != nil {
		return nil, err
	}
	name, err := l.ident()
	if err != nil {
		return nil, err
	}
	p.table = name
	if l.keyword("where") {
		col, err := l.ident()
		if err != nil {
			return nil, err
		}
		if err := l.expectPunct("="); err != nil {
			return nil, err
		}
		e, err := p.parseExpr(l)
		if err != nil {
			return nil, err
		}
		p.where = col
		p.filter = e
	}
	if l.keyword("limit") {
		t := l.next()
		if t.kind != "num" {
			return nil, fmt.Errorf("expected row count after limit, got %q", t.text)
		}
		n, err := strconv.Atoi(t.text)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("bad limit %q", t.text)
		}
		p.limit = n
	}
	return p, nil
}
