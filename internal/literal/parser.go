package literal

import (
	"math/big"
	"strconv"
	"strings"

	"wordmetrics/domain/dataset"
)

const maxDepth = 100

// shape records how an expression was built, since only a bare number may
// carry a sign and only a signed real may be added to an imaginary number.
type shape int

const (
	shapePlain shape = iota
	shapeUnary
	shapeBinary
)

type parser struct {
	lex *lexer
	tok token
}

// Parse parses src as a single Python literal. It never executes code: names
// other than True, False, None and the empty set() call are rejected.
func Parse(src string) (Node, error) {
	p := &parser{lex: &lexer{src: strings.TrimLeft(src, " \t")}}
	if err := p.advance(); err != nil {
		return Node{}, err
	}

	node, _, err := p.parseTuple(0, tokEOF, "")
	if err != nil {
		return Node{}, err
	}
	if p.tok.kind != tokEOF {
		return Node{}, errorf(p.tok.pos, "unexpected trailing input")
	}
	return node, nil
}

// ParseList parses src and, when it is a list literal, returns the str() of
// each element. ok is false for parse failures and non-list literals.
func ParseList(src string) (items []string, ok bool) {
	node, err := Parse(src)
	if err != nil || !node.IsList() {
		return nil, false
	}
	items = make([]string, len(node.Items))
	for i, item := range node.Items {
		items[i] = item.Text()
	}
	return items, true
}

func (p *parser) advance() error {
	tok, err := p.lex.next()
	if err != nil {
		return err
	}
	p.tok = tok
	return nil
}

func (p *parser) isPunct(c string) bool {
	return p.tok.kind == tokPunct && p.tok.text == c
}

func (p *parser) expect(c string) error {
	if !p.isPunct(c) {
		return errorf(p.tok.pos, "expected %q", c)
	}
	return p.advance()
}

// parseTuple parses an expression list. A bare comma-separated sequence
// becomes a tuple; a single expression without a comma is returned as is.
func (p *parser) parseTuple(depth int, endKind tokenKind, endPunct string) (Node, shape, error) {
	atEnd := func() bool {
		if endKind == tokEOF {
			return p.tok.kind == tokEOF
		}
		return p.isPunct(endPunct)
	}

	first, sh, err := p.parseExpr(depth)
	if err != nil {
		return Node{}, 0, err
	}
	if !p.isPunct(",") {
		return first, sh, nil
	}

	items := []Node{first}
	for p.isPunct(",") {
		if err := p.advance(); err != nil {
			return Node{}, 0, err
		}
		if atEnd() {
			break
		}
		item, _, err := p.parseExpr(depth)
		if err != nil {
			return Node{}, 0, err
		}
		items = append(items, item)
	}
	return Node{Kind: KindTuple, Items: items}, shapePlain, nil
}

func (p *parser) parseExpr(depth int) (Node, shape, error) {
	if depth > maxDepth {
		return Node{}, 0, errorf(p.tok.pos, "literal nested too deeply")
	}

	left, sh, err := p.parseUnary(depth)
	if err != nil {
		return Node{}, 0, err
	}
	if !p.isPunct("+") && !p.isPunct("-") {
		return left, sh, nil
	}

	opPos := p.tok.pos
	negate := p.tok.text == "-"
	if sh == shapeBinary || (left.Kind != KindInt && left.Kind != KindFloat) {
		return Node{}, 0, errorf(opPos, "malformed node or string")
	}
	if err := p.advance(); err != nil {
		return Node{}, 0, err
	}
	right, rsh, err := p.parsePrimary(depth)
	if err != nil {
		return Node{}, 0, err
	}
	if rsh != shapePlain || right.Kind != KindComplex {
		return Node{}, 0, errorf(opPos, "malformed node or string")
	}

	re := realValue(left)
	im := right.Imag
	if negate {
		im = -im
	}
	return Node{Kind: KindComplex, Float: re + right.Float, Imag: im}, shapeBinary, nil
}

func (p *parser) parseUnary(depth int) (Node, shape, error) {
	if !p.isPunct("+") && !p.isPunct("-") {
		return p.parsePrimary(depth)
	}

	opPos := p.tok.pos
	negate := p.tok.text == "-"
	if err := p.advance(); err != nil {
		return Node{}, 0, err
	}
	operand, sh, err := p.parsePrimary(depth)
	if err != nil {
		return Node{}, 0, err
	}
	if sh != shapePlain {
		return Node{}, 0, errorf(opPos, "malformed node or string")
	}

	switch operand.Kind {
	case KindInt:
		if negate {
			operand.Int = new(big.Int).Neg(operand.Int)
		}
	case KindFloat:
		if negate {
			operand.Float = -operand.Float
		}
	case KindComplex:
		if negate {
			operand.Float, operand.Imag = -operand.Float, -operand.Imag
		}
	default:
		return Node{}, 0, errorf(opPos, "malformed node or string")
	}
	return operand, shapeUnary, nil
}

func (p *parser) parsePrimary(depth int) (Node, shape, error) {
	tok := p.tok

	switch tok.kind {
	case tokEOF:
		return Node{}, 0, errorf(tok.pos, "unexpected end of input")
	case tokNumber:
		n, err := parseNumber(tok.text, tok.pos)
		if err != nil {
			return Node{}, 0, err
		}
		return n, shapePlain, p.advance()
	case tokString:
		return p.parseStrings()
	case tokName:
		return p.parseName()
	}

	switch tok.text {
	case "[":
		items, err := p.parseItems(depth+1, "]")
		if err != nil {
			return Node{}, 0, err
		}
		return Node{Kind: KindList, Items: items}, shapePlain, nil
	case "(":
		if err := p.advance(); err != nil {
			return Node{}, 0, err
		}
		if p.isPunct(")") {
			return Node{Kind: KindTuple}, shapePlain, p.advance()
		}
		node, sh, err := p.parseTuple(depth+1, tokPunct, ")")
		if err != nil {
			return Node{}, 0, err
		}
		return node, sh, p.expect(")")
	case "{":
		return p.parseBrace(depth + 1)
	}
	return Node{}, 0, errorf(tok.pos, "unexpected %q", tok.text)
}

// parseStrings joins adjacent string literals the way the Python tokenizer does.
func (p *parser) parseStrings() (Node, shape, error) {
	first := p.tok
	var b strings.Builder
	for p.tok.kind == tokString {
		if p.tok.isBytes != first.isBytes {
			return Node{}, 0, errorf(p.tok.pos, "cannot mix bytes and nonbytes literals")
		}
		b.WriteString(p.tok.text)
		if err := p.advance(); err != nil {
			return Node{}, 0, err
		}
	}
	kind := KindString
	if first.isBytes {
		kind = KindBytes
	}
	return Node{Kind: kind, Str: b.String()}, shapePlain, nil
}

func (p *parser) parseName() (Node, shape, error) {
	tok := p.tok
	switch tok.text {
	case "True", "False":
		return Node{Kind: KindBool, Bool: tok.text == "True"}, shapePlain, p.advance()
	case "None":
		return Node{Kind: KindNone}, shapePlain, p.advance()
	case "set":
		if err := p.advance(); err != nil {
			return Node{}, 0, err
		}
		if err := p.expect("("); err != nil {
			return Node{}, 0, err
		}
		if err := p.expect(")"); err != nil {
			return Node{}, 0, errorf(tok.pos, "malformed node or string")
		}
		return Node{Kind: KindSet}, shapePlain, nil
	}
	return Node{}, 0, errorf(tok.pos, "malformed node or string: name %q", tok.text)
}

// parseItems parses comma-separated expressions up to the closing punct.
func (p *parser) parseItems(depth int, closing string) ([]Node, error) {
	if err := p.advance(); err != nil {
		return nil, err
	}
	items := []Node{}
	for !p.isPunct(closing) {
		item, _, err := p.parseExpr(depth)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
		if p.isPunct(",") {
			if err := p.advance(); err != nil {
				return nil, err
			}
			continue
		}
		if !p.isPunct(closing) {
			return nil, errorf(p.tok.pos, "expected ',' or %q", closing)
		}
	}
	return items, p.advance()
}

func (p *parser) parseBrace(depth int) (Node, shape, error) {
	open := p.tok.pos
	if err := p.advance(); err != nil {
		return Node{}, 0, err
	}
	if p.isPunct("}") {
		return Node{Kind: KindDict}, shapePlain, p.advance()
	}

	first, _, err := p.parseExpr(depth)
	if err != nil {
		return Node{}, 0, err
	}
	if !hashable(first) {
		return Node{}, 0, errorf(open, "unhashable type: '%s'", first.Kind)
	}

	if !p.isPunct(":") {
		items := []Node{first}
		for p.isPunct(",") {
			if err := p.advance(); err != nil {
				return Node{}, 0, err
			}
			if p.isPunct("}") {
				break
			}
			item, _, err := p.parseExpr(depth)
			if err != nil {
				return Node{}, 0, err
			}
			if !hashable(item) {
				return Node{}, 0, errorf(open, "unhashable type: '%s'", item.Kind)
			}
			items = append(items, item)
		}
		if err := p.expect("}"); err != nil {
			return Node{}, 0, err
		}
		return Node{Kind: KindSet, Items: items}, shapePlain, nil
	}

	dict := Node{Kind: KindDict}
	key := first
	for {
		if err := p.expect(":"); err != nil {
			return Node{}, 0, err
		}
		value, _, err := p.parseExpr(depth)
		if err != nil {
			return Node{}, 0, err
		}
		dict.Keys = append(dict.Keys, key)
		dict.Items = append(dict.Items, value)

		if !p.isPunct(",") {
			break
		}
		if err := p.advance(); err != nil {
			return Node{}, 0, err
		}
		if p.isPunct("}") {
			break
		}
		key, _, err = p.parseExpr(depth)
		if err != nil {
			return Node{}, 0, err
		}
		if !hashable(key) {
			return Node{}, 0, errorf(open, "unhashable type: '%s'", key.Kind)
		}
	}
	if err := p.expect("}"); err != nil {
		return Node{}, 0, err
	}
	return dict, shapePlain, nil
}

func hashable(n Node) bool {
	switch n.Kind {
	case KindList, KindSet, KindDict:
		return false
	case KindTuple:
		for _, item := range n.Items {
			if !hashable(item) {
				return false
			}
		}
	}
	return true
}

func realValue(n Node) float64 {
	if n.Kind == KindInt {
		f, _ := new(big.Float).SetInt(n.Int).Float64()
		return f
	}
	return n.Float
}

// parseNumber converts a numeric token, enforcing Python's rules for digit
// separators and leading zeros.
func parseNumber(text string, pos int) (Node, error) {
	lower := strings.ToLower(text)

	if len(lower) > 1 && lower[0] == '0' && strings.IndexByte("xob", lower[1]) >= 0 {
		base := map[byte]int{'x': 16, 'o': 8, 'b': 2}[lower[1]]
		digits := lower[2:]
		if strings.HasPrefix(digits, "_") {
			digits = digits[1:]
		}
		if !validUnderscores(digits) {
			return Node{}, errorf(pos, "invalid number literal %q", text)
		}
		n, ok := new(big.Int).SetString(strings.ReplaceAll(digits, "_", ""), base)
		if !ok {
			return Node{}, errorf(pos, "invalid number literal %q", text)
		}
		return Node{Kind: KindInt, Int: n}, nil
	}

	imaginary := strings.HasSuffix(lower, "j")
	body := strings.TrimSuffix(lower, "j")

	mantissa, exponent, hasExp := strings.Cut(body, "e")
	if !validUnderscores(strings.ReplaceAll(mantissa, ".", "")) || (hasExp && !validUnderscores(strings.TrimLeft(exponent, "+-"))) {
		return Node{}, errorf(pos, "invalid number literal %q", text)
	}
	for _, part := range strings.Split(mantissa, ".") {
		if strings.HasPrefix(part, "_") || strings.HasSuffix(part, "_") {
			return Node{}, errorf(pos, "invalid number literal %q", text)
		}
	}
	clean := strings.ReplaceAll(body, "_", "")

	if imaginary || strings.ContainsAny(clean, ".e") {
		f, err := strconv.ParseFloat(clean, 64)
		if err != nil && !isRangeErr(err) {
			return Node{}, errorf(pos, "invalid number literal %q", text)
		}
		if imaginary {
			return Node{Kind: KindComplex, Imag: f}, nil
		}
		return Node{Kind: KindFloat, Float: f}, nil
	}

	if len(clean) > 1 && clean[0] == '0' && strings.Trim(clean, "0") != "" {
		return Node{}, errorf(pos, "leading zeros in decimal integer literals are not permitted")
	}
	n, ok := new(big.Int).SetString(clean, 10)
	if !ok {
		return Node{}, errorf(pos, "invalid number literal %q", text)
	}
	return Node{Kind: KindInt, Int: n}, nil
}

func isRangeErr(err error) bool {
	numErr, ok := err.(*strconv.NumError)
	return ok && numErr.Err == strconv.ErrRange
}

// validUnderscores reports whether every underscore sits between two digits.
func validUnderscores(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] != '_' {
			continue
		}
		if i == 0 || i == len(s)-1 || s[i-1] == '_' || s[i+1] == '_' {
			return false
		}
	}
	return true
}

// ToValue converts a parsed literal into a dataset cell. Containers other
// than lists and values without a cell type keep their repr as a string.
func (n Node) ToValue() dataset.Value {
	switch n.Kind {
	case KindNone:
		return dataset.NewMissingValue()
	case KindBool:
		return dataset.NewBoolValue(n.Bool)
	case KindInt:
		if n.Int.IsInt64() {
			return dataset.NewIntValue(n.Int.Int64())
		}
		f, _ := new(big.Float).SetInt(n.Int).Float64()
		return dataset.NewFloatValue(f)
	case KindFloat:
		return dataset.NewFloatValue(n.Float)
	case KindString:
		return dataset.NewStringValue(n.Str)
	case KindList:
		items := make([]dataset.Value, len(n.Items))
		for i, item := range n.Items {
			items[i] = item.ToValue()
		}
		return dataset.NewListValue(items)
	}
	return dataset.NewStringValue(n.Repr())
}
