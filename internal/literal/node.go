// Package literal parses Python literal expressions (the subset accepted by
// ast.literal_eval) without evaluating anything. Annotation exports often
// store term lists as the printed form of a Python list, e.g. "['scam', 'win']".
package literal

import (
	"math"
	"math/big"
	"strings"

	"wordmetrics/domain/dataset"
)

// Kind identifies the literal type of a Node.
type Kind int

const (
	KindNone Kind = iota
	KindBool
	KindInt
	KindFloat
	KindComplex
	KindString
	KindBytes
	KindList
	KindTuple
	KindSet
	KindDict
)

var kindNames = map[Kind]string{
	KindNone:    "None",
	KindBool:    "bool",
	KindInt:     "int",
	KindFloat:   "float",
	KindComplex: "complex",
	KindString:  "str",
	KindBytes:   "bytes",
	KindList:    "list",
	KindTuple:   "tuple",
	KindSet:     "set",
	KindDict:    "dict",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Node is one parsed literal. Containers hold their elements in Items; a
// dict keeps keys in Keys, parallel to Items.
type Node struct {
	Kind  Kind
	Bool  bool
	Int   *big.Int
	Float float64 // real part for complex
	Imag  float64
	Str   string // text for str, raw bytes for bytes
	Items []Node
	Keys  []Node
}

// IsList reports whether the node is a list (tuples and sets are not).
func (n Node) IsList() bool {
	return n.Kind == KindList
}

// Text renders the node the way Python's str() would.
func (n Node) Text() string {
	if n.Kind == KindString {
		return n.Str
	}
	return n.Repr()
}

// Repr renders the node the way Python's repr() would.
func (n Node) Repr() string {
	switch n.Kind {
	case KindNone:
		return "None"
	case KindBool:
		if n.Bool {
			return "True"
		}
		return "False"
	case KindInt:
		return n.Int.String()
	case KindFloat:
		return dataset.FormatPyFloat(n.Float)
	case KindComplex:
		return complexRepr(n.Float, n.Imag)
	case KindString:
		return dataset.PyQuote(n.Str)
	case KindBytes:
		return bytesRepr(n.Str)
	case KindList:
		return "[" + joinRepr(n.Items) + "]"
	case KindTuple:
		if len(n.Items) == 1 {
			return "(" + n.Items[0].Repr() + ",)"
		}
		return "(" + joinRepr(n.Items) + ")"
	case KindSet:
		if len(n.Items) == 0 {
			return "set()"
		}
		return "{" + joinRepr(n.Items) + "}"
	case KindDict:
		parts := make([]string, len(n.Items))
		for i := range n.Items {
			parts[i] = n.Keys[i].Repr() + ": " + n.Items[i].Repr()
		}
		return "{" + strings.Join(parts, ", ") + "}"
	}
	return ""
}

func joinRepr(items []Node) string {
	parts := make([]string, len(items))
	for i, item := range items {
		parts[i] = item.Repr()
	}
	return strings.Join(parts, ", ")
}

func complexPart(f float64) string {
	return strings.TrimSuffix(dataset.FormatPyFloat(f), ".0")
}

func complexRepr(re, im float64) string {
	if re == 0 && !math.Signbit(re) {
		return complexPart(im) + "j"
	}
	sign := "+"
	if math.Signbit(im) {
		sign = "-"
		im = -im
	}
	return "(" + complexPart(re) + sign + complexPart(im) + "j)"
}

func bytesRepr(raw string) string {
	quote := byte('\'')
	if strings.IndexByte(raw, '\'') >= 0 && strings.IndexByte(raw, '"') < 0 {
		quote = '"'
	}
	const hex = "0123456789abcdef"
	var b strings.Builder
	b.WriteString("b")
	b.WriteByte(quote)
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		switch {
		case c == '\\':
			b.WriteString(`\\`)
		case c == quote:
			b.WriteByte('\\')
			b.WriteByte(c)
		case c == '\n':
			b.WriteString(`\n`)
		case c == '\r':
			b.WriteString(`\r`)
		case c == '\t':
			b.WriteString(`\t`)
		case c < 0x20 || c >= 0x7f:
			b.WriteString(`\x`)
			b.WriteByte(hex[c>>4])
			b.WriteByte(hex[c&0x0f])
		default:
			b.WriteByte(c)
		}
	}
	b.WriteByte(quote)
	return b.String()
}

// FormatList renders items as the printed form of a Python list of strings.
// Parse(FormatList(items)) yields a list with the same items.
func FormatList(items []string) string {
	return dataset.NewStringListValue(items).Repr()
}
