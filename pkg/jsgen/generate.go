package jsgen

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// ErrUnsupportedNode is returned when Generate meets a node it cannot print.
var ErrUnsupportedNode = errors.New("unsupported node")

// Quote characters for string literals.
const (
	QuoteDouble = '"'
	QuoteSingle = '\''
)

const (
	defaultIndent      = 2
	exponentUpperBound = 1e21
	exponentLowerBound = 1e-6
)

// Options controls code generation.
type Options struct {
	// Quote is the string delimiter; zero means double quotes.
	Quote byte
	// Indent is the number of spaces per nesting level; zero means 2.
	Indent int
}

func (o Options) withDefaults() Options {
	if o.Quote != QuoteSingle {
		o.Quote = QuoteDouble
	}

	if o.Indent <= 0 {
		o.Indent = defaultIndent
	}

	return o
}

// Generate prints n as source text. Nodes derived from source are reproduced
// from their original text with regenerated descendants spliced in, so
// untouched code keeps its layout and comments. Nodes built without source
// text are printed from their structure: object literals one property per
// line, arrays on a single line unless comments force line breaks, and
// strings with minimal escaping so non-ASCII text is kept as-is. A Program's
// output always ends with a newline.
func Generate(n Node, opts Options) (string, error) {
	p := &printer{opts: opts.withDefaults()}

	p.node(n)

	if p.err != nil {
		return "", p.err
	}

	out := p.sb.String()

	if _, isProgram := n.(*Program); isProgram {
		out = strings.TrimRight(out, "\n") + "\n"
	}

	return out, nil
}

type printer struct {
	err   error
	sb    strings.Builder
	opts  Options
	depth int
}

func (p *printer) write(s string) {
	p.sb.WriteString(s)
}

func (p *printer) newline() {
	p.sb.WriteByte('\n')
	p.sb.WriteString(strings.Repeat(" ", p.depth*p.opts.Indent))
}

func (p *printer) fail(err error) {
	if p.err == nil {
		p.err = err
	}
}

func (p *printer) node(n Node) {
	if isNil(n) || p.err != nil {
		return
	}

	switch typed := n.(type) {
	case *Program:
		p.program(typed)
	case *VariableDeclaration:
		p.variableDeclaration(typed)
	case *VariableDeclarator:
		p.variableDeclarator(typed)
	case *ArrayExpression:
		p.array(typed)
	case *ObjectExpression:
		p.object(typed)
	case *ObjectProperty:
		p.property(typed)
	case *Identifier:
		p.write(typed.Name)
	case *StringLiteral:
		if raw, ok := possibleRaw(&typed.Meta); ok {
			p.write(raw)
		} else {
			p.write(QuoteString(typed.Value, p.opts.Quote))
		}
	case *NumericLiteral:
		if raw, ok := possibleRaw(&typed.Meta); ok {
			p.write(raw)
		} else {
			p.write(FormatNumber(typed.Value))
		}
	case *BooleanLiteral:
		p.write(strconv.FormatBool(typed.Value))
	case *NullLiteral:
		p.write("null")
	case *Generic:
		p.generic(typed)
	default:
		p.fail(fmt.Errorf("%w: %T", ErrUnsupportedNode, n))
	}
}

// possibleRaw returns the source spelling of a literal parsed from source.
// Literals built by the rewriter carry no Raw and are printed from their value.
func possibleRaw(m *Meta) (string, bool) {
	return m.Raw, m.Located && m.Raw != ""
}

// program reproduces the original module text with regenerated statements
// spliced in; statements without a source location follow the original text,
// one per line.
func (p *printer) program(prog *Program) {
	var located, appended []Node

	for _, stmt := range prog.Body {
		if isNil(stmt) {
			continue
		}

		if stmt.meta().Located && prog.Located {
			located = append(located, stmt)
		} else {
			appended = append(appended, stmt)
		}
	}

	if prog.Located {
		p.splice(&prog.Meta, located)
	}

	for _, stmt := range appended {
		if p.sb.Len() > 0 && !strings.HasSuffix(p.sb.String(), "\n") {
			p.write("\n")
		}

		p.node(stmt)
		p.write("\n")
	}
}

func (p *printer) variableDeclaration(decl *VariableDeclaration) {
	p.write(decl.DeclKind)
	p.write(" ")

	for idx, declarator := range decl.Declarations {
		if idx > 0 {
			p.write(", ")
		}

		p.node(declarator)
	}

	p.write(";")
}

func (p *printer) variableDeclarator(decl *VariableDeclarator) {
	p.node(decl.ID)

	if !isNil(decl.TypeAnnotation) {
		annotation := decl.TypeAnnotation
		if raw := annotation.meta().Raw; !strings.HasPrefix(strings.TrimSpace(raw), ":") {
			p.write(": ")
		}

		p.node(annotation)
	}

	if !isNil(decl.Init) {
		p.write(" = ")
		p.node(decl.Init)
	}
}

// spliceSource prints a node that carries its original text by splicing its
// children into it, and reports whether it did.
func (p *printer) spliceSource(m *Meta, children []Node) bool {
	if !m.Located || m.Raw == "" {
		return false
	}

	p.splice(m, children)

	return true
}

func (p *printer) array(arr *ArrayExpression) {
	if p.spliceSource(&arr.Meta, arr.Elements) {
		return
	}

	if len(arr.Elements) == 0 && len(arr.TrailingComments) == 0 {
		p.write("[]")

		return
	}

	if arrayNeedsLineBreaks(arr) {
		p.arrayMultiline(arr)

		return
	}

	p.write("[")

	for idx, element := range arr.Elements {
		if idx > 0 {
			p.write(", ")
		}

		p.node(element)
	}

	// A trailing hole needs its own comma to survive.
	if isNil(arr.Elements[len(arr.Elements)-1]) {
		p.write(",")
	}

	p.write("]")
}

func arrayNeedsLineBreaks(arr *ArrayExpression) bool {
	if len(arr.TrailingComments) > 0 {
		return true
	}

	for _, element := range arr.Elements {
		if isNil(element) {
			continue
		}

		if m := element.meta(); len(m.LeadingComments) > 0 || len(m.TrailingComments) > 0 {
			return true
		}
	}

	return false
}

func (p *printer) arrayMultiline(arr *ArrayExpression) {
	p.write("[")
	p.depth++

	for idx, element := range arr.Elements {
		p.newline()

		if !isNil(element) {
			p.comments(element.meta().LeadingComments)
			p.node(element)
		}

		if idx < len(arr.Elements)-1 || isNil(element) {
			p.write(",")
		}

		if !isNil(element) {
			p.sameLineComments(element.meta().TrailingComments)
		}
	}

	p.trailingComments(arr.TrailingComments)
	p.depth--
	p.newline()
	p.write("]")
}

func (p *printer) object(obj *ObjectExpression) {
	if p.spliceSource(&obj.Meta, obj.Properties) {
		return
	}

	if len(obj.Properties) == 0 && len(obj.TrailingComments) == 0 {
		p.write("{}")

		return
	}

	p.write("{")
	p.depth++

	for idx, prop := range obj.Properties {
		if isNil(prop) {
			continue
		}

		p.newline()
		p.comments(prop.meta().LeadingComments)
		p.node(prop)

		if idx < len(obj.Properties)-1 {
			p.write(",")
		}

		p.sameLineComments(prop.meta().TrailingComments)
	}

	p.trailingComments(obj.TrailingComments)
	p.depth--
	p.newline()
	p.write("}")
}

func (p *printer) property(prop *ObjectProperty) {
	if p.spliceSource(&prop.Meta, []Node{prop.Key, prop.Value}) {
		return
	}

	if prop.Shorthand && sameIdentifier(prop.Key, prop.Value) {
		p.node(prop.Key)

		return
	}

	if prop.Computed {
		p.write("[")
		p.node(prop.Key)
		p.write("]")
	} else {
		p.node(prop.Key)
	}

	p.write(": ")
	p.node(prop.Value)
}

func sameIdentifier(key, value Node) bool {
	keyIdent, keyOK := key.(*Identifier)
	valueIdent, valueOK := value.(*Identifier)

	return keyOK && valueOK && keyIdent != nil && valueIdent != nil && keyIdent.Name == valueIdent.Name
}

// comments writes each comment on its own line ahead of the next entry.
func (p *printer) comments(comments []string) {
	for _, comment := range comments {
		p.write(comment)
		p.newline()
	}
}

// sameLineComments writes comments after the entry they follow on its line.
func (p *printer) sameLineComments(comments []string) {
	for _, comment := range comments {
		p.write(" ")
		p.write(comment)
	}
}

func (p *printer) trailingComments(comments []string) {
	for _, comment := range comments {
		p.newline()
		p.write(comment)
	}
}

// generic reproduces the node's original text, regenerating located
// children in place.
func (p *printer) generic(g *Generic) {
	if !g.Located {
		if g.Raw != "" {
			p.write(g.Raw)

			return
		}

		for idx, child := range g.children() {
			if idx > 0 {
				p.write(" ")
			}

			p.node(child)
		}

		return
	}

	p.splice(&g.Meta, g.children())
}

// splice writes m.Raw, replacing the byte range of every located child with
// its generated text. Children are visited in source order; children whose
// range falls outside m or overlaps an earlier child are skipped, so their
// original text is kept.
func (p *printer) splice(m *Meta, children []Node) {
	ordered := make([]Node, 0, len(children))

	for _, child := range children {
		if isNil(child) {
			continue
		}

		cm := child.meta()
		if cm.Located && cm.Start >= m.Start && cm.End <= m.End && cm.Start <= cm.End {
			ordered = append(ordered, child)
		}
	}

	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].meta().Start < ordered[j].meta().Start
	})

	cursor := m.Start

	for _, child := range ordered {
		cm := child.meta()
		if cm.Start < cursor {
			continue
		}

		p.write(sliceRaw(m, cursor, cm.Start))

		depth := p.depth
		p.depth = p.lineIndent() / p.opts.Indent
		p.node(child)
		p.depth = depth
		cursor = cm.End
	}

	p.write(sliceRaw(m, cursor, m.End))
}

// lineIndent returns the number of leading spaces on the line being written,
// so regenerated children line up with the surrounding original text.
func (p *printer) lineIndent() int {
	out := p.sb.String()
	line := out[strings.LastIndexByte(out, '\n')+1:]

	return len(line) - len(strings.TrimLeft(line, " "))
}

// sliceRaw returns the original text between absolute offsets from and to.
func sliceRaw(m *Meta, from, to int) string {
	lo := from - m.Start
	hi := to - m.Start

	if lo < 0 || hi > len(m.Raw) || lo >= hi {
		return ""
	}

	return m.Raw[lo:hi]
}

// QuoteString renders value as a string literal delimited by quote. Only the
// delimiter, backslash, line terminators and control characters are escaped.
func QuoteString(value string, quote byte) string {
	var sb strings.Builder

	sb.Grow(len(value) + 2)
	sb.WriteByte(quote)

	for idx, r := range value {
		switch r {
		case rune(quote):
			sb.WriteByte('\\')
			sb.WriteByte(quote)
		case '\\':
			sb.WriteString(`\\`)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		case '\t':
			sb.WriteString(`\t`)
		case '\b':
			sb.WriteString(`\b`)
		case '\f':
			sb.WriteString(`\f`)
		case '\v':
			sb.WriteString(`\v`)
		case 0:
			// \0 followed by a digit would read as a legacy octal escape.
			if idx+1 < len(value) && value[idx+1] >= '0' && value[idx+1] <= '9' {
				sb.WriteString(`\x00`)
			} else {
				sb.WriteString(`\0`)
			}
		case '\u2028':
			sb.WriteString(`\u2028`)
		case '\u2029':
			sb.WriteString(`\u2029`)
		default:
			if r < 0x20 || r == 0x7f {
				fmt.Fprintf(&sb, `\x%02X`, r)
			} else {
				sb.WriteRune(r)
			}
		}
	}

	sb.WriteByte(quote)

	return sb.String()
}

// FormatNumber renders value the way JavaScript's Number#toString does for
// finite values: plain decimal notation, switching to exponent notation at
// or above 1e21 and below 1e-6.
func FormatNumber(value float64) string {
	if value == 0 {
		return "0"
	}

	abs := math.Abs(value)
	if abs >= exponentUpperBound || abs < exponentLowerBound {
		return jsExponent(strconv.FormatFloat(value, 'e', -1, 64))
	}

	return strconv.FormatFloat(value, 'f', -1, 64)
}

// jsExponent turns Go's 1e+06 / 1e-07 exponent style into 1e+6 / 1e-7.
func jsExponent(s string) string {
	mantissa, exponent, found := strings.Cut(s, "e")
	if !found {
		return s
	}

	sign := exponent[:1]
	digits := strings.TrimLeft(exponent[1:], "0")

	if digits == "" {
		digits = "0"
	}

	return mantissa + "e" + sign + digits
}
