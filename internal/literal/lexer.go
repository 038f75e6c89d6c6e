package literal

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokPunct
	tokString
	tokNumber
	tokName
)

type token struct {
	kind    tokenKind
	text    string // punct char, name, number text or decoded string
	isBytes bool
	pos     int
}

// SyntaxError reports why a source string is not a literal.
type SyntaxError struct {
	Offset int
	Msg    string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("literal: %s at offset %d", e.Msg, e.Offset)
}

func errorf(pos int, format string, args ...interface{}) error {
	return &SyntaxError{Offset: pos, Msg: fmt.Sprintf(format, args...)}
}

type lexer struct {
	src string
	pos int
}

func isIdentStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isIdentPart(r rune) bool {
	return isIdentStart(r) || unicode.IsDigit(r)
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// skipSpace skips blanks, line continuations and comments.
func (l *lexer) skipSpace() {
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f':
			l.pos++
		case c == '\\' && l.pos+1 < len(l.src) && l.src[l.pos+1] == '\n':
			l.pos += 2
		case c == '#':
			for l.pos < len(l.src) && l.src[l.pos] != '\n' {
				l.pos++
			}
		default:
			return
		}
	}
}

func (l *lexer) next() (token, error) {
	l.skipSpace()
	if l.pos >= len(l.src) {
		return token{kind: tokEOF, pos: l.pos}, nil
	}

	start := l.pos
	c := l.src[l.pos]

	switch {
	case strings.IndexByte("[](){},:+-", c) >= 0:
		l.pos++
		return token{kind: tokPunct, text: string(c), pos: start}, nil
	case c == '\'' || c == '"':
		return l.lexString(start, "")
	case isDigit(c) || (c == '.' && l.pos+1 < len(l.src) && isDigit(l.src[l.pos+1])):
		return l.lexNumber(start)
	}

	r, size := utf8.DecodeRuneInString(l.src[l.pos:])
	if !isIdentStart(r) {
		return token{}, errorf(start, "unexpected character %q", r)
	}
	l.pos += size
	for l.pos < len(l.src) {
		r, size = utf8.DecodeRuneInString(l.src[l.pos:])
		if !isIdentPart(r) {
			break
		}
		l.pos += size
	}
	name := l.src[start:l.pos]

	if l.pos < len(l.src) && (l.src[l.pos] == '\'' || l.src[l.pos] == '"') {
		switch strings.ToLower(name) {
		case "r", "u", "b", "br", "rb":
			return l.lexString(start, strings.ToLower(name))
		}
		return token{}, errorf(start, "unsupported string prefix %q", name)
	}
	return token{kind: tokName, text: name, pos: start}, nil
}

func (l *lexer) lexString(start int, prefix string) (token, error) {
	raw := strings.Contains(prefix, "r")
	isBytes := strings.Contains(prefix, "b")

	quote := l.src[l.pos]
	triple := strings.HasPrefix(l.src[l.pos:], strings.Repeat(string(quote), 3))
	if triple {
		l.pos += 3
	} else {
		l.pos++
	}

	var b strings.Builder
	for {
		if l.pos >= len(l.src) {
			return token{}, errorf(start, "unterminated string literal")
		}
		c := l.src[l.pos]

		if c == quote {
			if !triple {
				l.pos++
				break
			}
			if strings.HasPrefix(l.src[l.pos:], strings.Repeat(string(quote), 3)) {
				l.pos += 3
				break
			}
			b.WriteByte(c)
			l.pos++
			continue
		}
		if c == '\n' && !triple {
			return token{}, errorf(l.pos, "unterminated string literal")
		}
		if isBytes && c >= 0x80 {
			return token{}, errorf(l.pos, "bytes can only contain ASCII literal characters")
		}
		if c != '\\' {
			b.WriteByte(c)
			l.pos++
			continue
		}

		if l.pos+1 >= len(l.src) {
			return token{}, errorf(start, "unterminated string literal")
		}
		if raw {
			b.WriteByte('\\')
			b.WriteByte(l.src[l.pos+1])
			l.pos += 2
			continue
		}
		if err := l.escape(&b, isBytes); err != nil {
			return token{}, err
		}
	}

	return token{kind: tokString, text: b.String(), isBytes: isBytes, pos: start}, nil
}

// escape decodes one backslash sequence starting at l.pos.
func (l *lexer) escape(b *strings.Builder, isBytes bool) error {
	at := l.pos
	e := l.src[l.pos+1]
	l.pos += 2

	simple := map[byte]byte{'\\': '\\', '\'': '\'', '"': '"', 'a': '\a', 'b': '\b', 'f': '\f', 'n': '\n', 'r': '\r', 't': '\t', 'v': '\v'}
	if out, ok := simple[e]; ok {
		b.WriteByte(out)
		return nil
	}

	switch {
	case e == '\n':
		return nil
	case e >= '0' && e <= '7':
		end := l.pos
		for end < len(l.src) && end < l.pos+2 && l.src[end] >= '0' && l.src[end] <= '7' {
			end++
		}
		n, _ := strconv.ParseUint(l.src[l.pos-1:end], 8, 32)
		l.pos = end
		if isBytes {
			b.WriteByte(byte(n))
		} else {
			b.WriteRune(rune(n))
		}
		return nil
	case e == 'x':
		return l.hexEscape(b, 2, isBytes, at)
	case e == 'u' && !isBytes:
		return l.hexEscape(b, 4, false, at)
	case e == 'U' && !isBytes:
		return l.hexEscape(b, 8, false, at)
	case e == 'N' && !isBytes:
		return errorf(at, "named unicode escapes are not supported")
	}

	b.WriteByte('\\')
	b.WriteByte(e)
	return nil
}

func (l *lexer) hexEscape(b *strings.Builder, digits int, isBytes bool, at int) error {
	if l.pos+digits > len(l.src) {
		return errorf(at, "truncated escape sequence")
	}
	n, err := strconv.ParseUint(l.src[l.pos:l.pos+digits], 16, 32)
	if err != nil {
		return errorf(at, "invalid escape sequence")
	}
	l.pos += digits
	if isBytes {
		b.WriteByte(byte(n))
		return nil
	}
	if n > unicode.MaxRune {
		return errorf(at, "illegal unicode character")
	}
	b.WriteRune(rune(n))
	return nil
}

func (l *lexer) lexNumber(start int) (token, error) {
	src := l.src
	if src[l.pos] == '0' && l.pos+1 < len(src) && strings.IndexByte("xXoObB", src[l.pos+1]) >= 0 {
		l.pos += 2
		for l.pos < len(src) && (isHexDigit(src[l.pos]) || src[l.pos] == '_') {
			l.pos++
		}
	} else {
		l.consumeDigits()
		if l.pos < len(src) && src[l.pos] == '.' {
			l.pos++
			l.consumeDigits()
		}
		if l.pos < len(src) && (src[l.pos] == 'e' || src[l.pos] == 'E') {
			l.pos++
			if l.pos < len(src) && (src[l.pos] == '+' || src[l.pos] == '-') {
				l.pos++
			}
			l.consumeDigits()
		}
		if l.pos < len(src) && (src[l.pos] == 'j' || src[l.pos] == 'J') {
			l.pos++
		}
	}

	if l.pos < len(src) {
		r, _ := utf8.DecodeRuneInString(src[l.pos:])
		if isIdentPart(r) || r == '.' {
			return token{}, errorf(l.pos, "invalid number literal")
		}
	}
	return token{kind: tokNumber, text: src[start:l.pos], pos: start}, nil
}

func (l *lexer) consumeDigits() {
	for l.pos < len(l.src) && (isDigit(l.src[l.pos]) || l.src[l.pos] == '_') {
		l.pos++
	}
}

func isHexDigit(c byte) bool {
	return isDigit(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}
