// Package tptp parses problems in the TPTP cnf syntax into the prover's
// unit list. Only the clause normal form fragment is supported; the
// preprocessor owning full first-order formulas sits in front of it.
package tptp

import (
	"bufio"
	"io"
	"strings"
	"unicode"

	"github.com/pkg/errors"

	"github.com/crillab/gopherprove/env"
	"github.com/crillab/gopherprove/fol"
)

// Parse reads cnf(name, role, clause). annotated formulas and returns
// the unit list. Malformed input yields a user error.
func Parse(r io.Reader, sharing *fol.Sharing) ([]fol.Unit, error) {
	src, err := readStripped(r)
	if err != nil {
		return nil, err
	}
	p := &parser{input: src, sharing: sharing, vars: make(map[string]int)}
	var units []fol.Unit
	for {
		p.skipSpace()
		if p.eof() {
			return units, nil
		}
		u, err := p.unit()
		if err != nil {
			return nil, err
		}
		units = append(units, u)
	}
}

// readStripped loads the input with comment lines removed.
func readStripped(r io.Reader) (string, error) {
	var b strings.Builder
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for sc.Scan() {
		line := sc.Text()
		if i := strings.IndexByte(line, '%'); i >= 0 {
			line = line[:i]
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
	if err := sc.Err(); err != nil {
		return "", errors.Wrap(env.ErrUserError, err.Error())
	}
	return b.String(), nil
}

type parser struct {
	input   string
	pos     int
	sharing *fol.Sharing
	vars    map[string]int
	nextVar int
}

func (p *parser) eof() bool { return p.pos >= len(p.input) }

func (p *parser) skipSpace() {
	for !p.eof() && unicode.IsSpace(rune(p.input[p.pos])) {
		p.pos++
	}
}

func (p *parser) fail(format string, args ...interface{}) error {
	return errors.Wrapf(env.ErrUserError, "parse error at offset %d: "+format,
		append([]interface{}{p.pos}, args...)...)
}

func (p *parser) expect(tok string) error {
	p.skipSpace()
	if !strings.HasPrefix(p.input[p.pos:], tok) {
		return p.fail("expected %q", tok)
	}
	p.pos += len(tok)
	return nil
}

func (p *parser) name() (string, error) {
	p.skipSpace()
	start := p.pos
	for !p.eof() {
		c := p.input[p.pos]
		if c == '_' || unicode.IsLetter(rune(c)) || unicode.IsDigit(rune(c)) {
			p.pos++
			continue
		}
		break
	}
	if p.pos == start {
		return "", p.fail("expected a name")
	}
	return p.input[start:p.pos], nil
}

// unit parses one cnf(name, role, clause). annotated formula. Variables
// are scoped per unit.
func (p *parser) unit() (fol.Unit, error) {
	p.vars = make(map[string]int)
	if err := p.expect("cnf"); err != nil {
		return fol.Unit{}, err
	}
	if err := p.expect("("); err != nil {
		return fol.Unit{}, err
	}
	name, err := p.name()
	if err != nil {
		return fol.Unit{}, err
	}
	if err := p.expect(","); err != nil {
		return fol.Unit{}, err
	}
	if _, err := p.name(); err != nil { // role, ignored
		return fol.Unit{}, err
	}
	if err := p.expect(","); err != nil {
		return fol.Unit{}, err
	}
	lits, err := p.disjunction()
	if err != nil {
		return fol.Unit{}, err
	}
	if err := p.expect(")"); err != nil {
		return fol.Unit{}, err
	}
	if err := p.expect("."); err != nil {
		return fol.Unit{}, err
	}
	c := fol.NewClause(p.sharing, lits, fol.Inference{Rule: fol.RuleInput})
	return fol.Unit{Name: name, Clause: c}, nil
}

// disjunction parses lit | lit | ..., optionally parenthesized.
func (p *parser) disjunction() ([]*fol.Literal, error) {
	p.skipSpace()
	parens := false
	if !p.eof() && p.input[p.pos] == '(' {
		parens = true
		p.pos++
	}
	var lits []*fol.Literal
	for {
		l, err := p.literal()
		if err != nil {
			return nil, err
		}
		if l != nil {
			lits = append(lits, l)
		}
		p.skipSpace()
		if !p.eof() && p.input[p.pos] == '|' {
			p.pos++
			continue
		}
		break
	}
	if parens {
		if err := p.expect(")"); err != nil {
			return nil, err
		}
	}
	return lits, nil
}

// literal parses [~]atom, an (in)equality, or $false (the empty
// disjunct, which contributes no literal).
func (p *parser) literal() (*fol.Literal, error) {
	p.skipSpace()
	if strings.HasPrefix(p.input[p.pos:], "$false") {
		p.pos += len("$false")
		return nil, nil
	}
	positive := true
	if !p.eof() && p.input[p.pos] == '~' {
		positive = false
		p.pos++
	}
	t, err := p.term()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if strings.HasPrefix(p.input[p.pos:], "!=") {
		p.pos += 2
		rhs, err := p.term()
		if err != nil {
			return nil, err
		}
		return p.sharing.Literal(fol.Equality, !positive, t, rhs), nil
	}
	if !p.eof() && p.input[p.pos] == '=' {
		p.pos++
		rhs, err := p.term()
		if err != nil {
			return nil, err
		}
		return p.sharing.Literal(fol.Equality, positive, t, rhs), nil
	}
	if t.IsVar() {
		return nil, p.fail("a variable cannot be an atom")
	}
	return p.sharing.Literal(t.Functor(), positive, t.Args()...), nil
}

// term parses name(args...) applications, constants and variables.
// Names starting with an upper-case letter are variables.
func (p *parser) term() (*fol.Term, error) {
	name, err := p.name()
	if err != nil {
		return nil, err
	}
	if unicode.IsUpper(rune(name[0])) {
		idx, ok := p.vars[name]
		if !ok {
			idx = p.nextVar
			p.nextVar++
			p.vars[name] = idx
		}
		return p.sharing.Var(idx), nil
	}
	var args []*fol.Term
	p.skipSpace()
	if !p.eof() && p.input[p.pos] == '(' {
		p.pos++
		for {
			a, err := p.term()
			if err != nil {
				return nil, err
			}
			args = append(args, a)
			p.skipSpace()
			if !p.eof() && p.input[p.pos] == ',' {
				p.pos++
				continue
			}
			break
		}
		if err := p.expect(")"); err != nil {
			return nil, err
		}
	}
	sym := p.sharing.Signature().Intern(name, len(args))
	if p.sharing.Signature().Arity(sym) != len(args) {
		return nil, p.fail("symbol %s used with arity %d, declared %d",
			name, len(args), p.sharing.Signature().Arity(sym))
	}
	return p.sharing.App(sym, args...), nil
}
