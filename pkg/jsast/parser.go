package jsast

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	sitter "github.com/alexaandru/go-tree-sitter-bare"
)

// Sentinel errors for parse operations.
var (
	ErrSyntax     = errors.New("syntax error")
	ErrNoRootNode = errors.New("no root node")
)

// tree-sitter node kinds consumed by the builder.
const (
	tsProgram                  = "program"
	tsLexicalDeclaration       = "lexical_declaration"
	tsVariableDeclaration      = "variable_declaration"
	tsVariableDeclarator       = "variable_declarator"
	tsArray                    = "array"
	tsObject                   = "object"
	tsPair                     = "pair"
	tsShorthandProperty        = "shorthand_property_identifier"
	tsComputedPropertyName     = "computed_property_name"
	tsIdentifier               = "identifier"
	tsPropertyIdentifier       = "property_identifier"
	tsString                   = "string"
	tsNumber                   = "number"
	tsTrue                     = "true"
	tsFalse                    = "false"
	tsNull                     = "null"
	tsUndefined                = "undefined"
	tsComment                  = "comment"
	tsError                    = "ERROR"
	declarationKindVar         = "var"
	defaultLexicalDeclaration  = "const"
	maxSyntaxErrorsReported    = 3
	syntaxErrorSnippetMaxBytes = 40
)

// Parser turns JavaScript/TypeScript source into ESTree-shaped trees. It is
// safe for concurrent use; tree-sitter parsers are pooled per grammar.
type Parser struct {
	pools sync.Map // Language -> *sync.Pool
}

// NewParser creates a Parser.
func NewParser() *Parser {
	return &Parser{}
}

// Parse detects the grammar from filename and content and parses content.
func (p *Parser) Parse(ctx context.Context, filename string, content []byte) (*Node, error) {
	lang, err := DetectLanguage(filename, content)
	if err != nil {
		return nil, err
	}

	return p.ParseLanguage(ctx, lang, content)
}

// ParseLanguage parses content with the given grammar. Source containing
// syntax errors is rejected with ErrSyntax.
func (p *Parser) ParseLanguage(ctx context.Context, lang Language, content []byte) (*Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tsParser, release, err := p.acquire(lang)
	if err != nil {
		return nil, err
	}
	defer release()

	tree, err := tsParser.ParseString(ctx, nil, content)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", lang, err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.IsNull() {
		return nil, ErrNoRootNode
	}

	syntaxErr := collectSyntaxErrors(root, content)
	if syntaxErr != nil {
		return nil, syntaxErr
	}

	b := &builder{src: content}

	return b.build(root), nil
}

func (p *Parser) acquire(lang Language) (*sitter.Parser, func(), error) {
	grammarLang, err := grammar(lang)
	if err != nil {
		return nil, nil, err
	}

	poolAny, _ := p.pools.LoadOrStore(lang, &sync.Pool{
		New: func() any {
			tsParser := sitter.NewParser()
			tsParser.SetLanguage(grammarLang)

			return tsParser
		},
	})

	pool, _ := poolAny.(*sync.Pool)

	tsParser, ok := pool.Get().(*sitter.Parser)
	if !ok {
		return nil, nil, fmt.Errorf("%w: parser pool", ErrUnsupportedLanguage)
	}

	return tsParser, func() { pool.Put(tsParser) }, nil
}

func collectSyntaxErrors(root sitter.Node, src []byte) error {
	var msgs []string

	var visit func(n sitter.Node)

	visit = func(n sitter.Node) {
		if len(msgs) >= maxSyntaxErrorsReported {
			return
		}

		if n.Type() == tsError {
			point := n.StartPoint()
			snippet := n.Content(src)

			if len(snippet) > syntaxErrorSnippetMaxBytes {
				snippet = snippet[:syntaxErrorSnippetMaxBytes] + "..."
			}

			msgs = append(msgs, fmt.Sprintf("%d:%d near %q", point.Row+1, point.Column+1, snippet))

			return
		}

		for idx := range n.NamedChildCount() {
			visit(n.NamedChild(idx))
		}
	}

	visit(root)

	if len(msgs) == 0 {
		return nil
	}

	return fmt.Errorf("%w: %s", ErrSyntax, strings.Join(msgs, "; "))
}

// builder converts tree-sitter nodes into Nodes.
type builder struct {
	src []byte
}

func (b *builder) build(n sitter.Node) *Node {
	if n.IsNull() {
		return nil
	}

	var out *Node

	switch n.Type() {
	case tsProgram:
		out = b.program(n)
	case tsLexicalDeclaration, tsVariableDeclaration:
		out = b.variableDeclaration(n)
	case tsVariableDeclarator:
		out = b.variableDeclarator(n)
	case tsArray:
		out = b.array(n)
	case tsObject:
		out = b.object(n)
	case tsPair:
		out = b.pair(n)
	case tsShorthandProperty:
		out = b.shorthand(n)
	case tsIdentifier, tsPropertyIdentifier, tsUndefined:
		out = New(KindIdentifier, F(FieldName, n.Content(b.src)))
	case tsString, tsNumber, tsTrue, tsFalse, tsNull:
		out = b.literal(n)
	}

	if out == nil {
		out = b.generic(n)
	}

	out.Span = Span{Start: int(n.StartByte()), End: int(n.EndByte())}
	out.Raw = n.Content(b.src)

	return out
}

func (b *builder) program(n sitter.Node) *Node {
	var body []*Node

	for idx := range n.NamedChildCount() {
		child := n.NamedChild(idx)
		if child.Type() == tsComment {
			continue
		}

		body = append(body, b.build(child))
	}

	return New(KindProgram, F(FieldBody, body))
}

func (b *builder) variableDeclaration(n sitter.Node) *Node {
	kind := declarationKindVar

	if n.Type() == tsLexicalDeclaration {
		kind = defaultLexicalDeclaration

		if kindNode := n.ChildByFieldName(FieldKind); !kindNode.IsNull() {
			kind = kindNode.Content(b.src)
		}
	}

	var declarations []*Node

	for idx := range n.NamedChildCount() {
		child := n.NamedChild(idx)
		if child.Type() == tsVariableDeclarator {
			declarations = append(declarations, b.build(child))
		}
	}

	return New(KindVariableDeclaration,
		F(FieldDeclarations, declarations),
		F(FieldKind, kind),
	)
}

func (b *builder) variableDeclarator(n sitter.Node) *Node {
	decl := New(KindVariableDeclarator,
		F(FieldID, b.build(n.ChildByFieldName("name"))),
	)

	if typeNode := n.ChildByFieldName("type"); !typeNode.IsNull() {
		decl.Set(FieldTypeAnnotation, b.build(typeNode))
	}

	var init *Node
	if valueNode := n.ChildByFieldName(FieldValue); !valueNode.IsNull() {
		init = b.build(valueNode)
	}

	decl.Set(FieldInit, init)

	return decl
}

// array keeps holes as nil elements. Holes are recovered from the commas
// between elements: one comma separates two elements, every extra one is a
// hole.
func (b *builder) array(n sitter.Node) *Node {
	var (
		elements []*Node
		pending  []string
	)

	cursor := int(n.StartByte()) + 1 // past "["
	commas := 0
	first := true

	for idx := range n.NamedChildCount() {
		child := n.NamedChild(idx)
		commas += b.countCommas(cursor, int(child.StartByte()))
		cursor = int(child.EndByte())

		if child.Type() == tsComment {
			if last := lastNode(elements); last != nil && b.sameLine(last.Span.End, int(child.StartByte())) && commas <= 1 {
				last.TrailingComments = append(last.TrailingComments, child.Content(b.src))

				continue
			}

			pending = append(pending, child.Content(b.src))

			continue
		}

		elements = appendHoles(elements, commas, first)
		commas = 0
		first = false

		element := b.build(child)
		element.LeadingComments = pending
		pending = nil

		elements = append(elements, element)
	}

	commas += b.countCommas(cursor, int(n.EndByte())-1)
	elements = appendHoles(elements, commas, first)

	arr := New(KindArrayExpression, F(FieldElements, elements))
	arr.TrailingComments = pending

	return arr
}

// sameLine reports whether no line break separates the offsets from and to.
func (b *builder) sameLine(from, to int) bool {
	return to >= from && !strings.Contains(string(b.src[from:to]), "\n")
}

func lastNode(nodes []*Node) *Node {
	if len(nodes) == 0 {
		return nil
	}

	return nodes[len(nodes)-1]
}

func (b *builder) countCommas(from, to int) int {
	if to <= from {
		return 0
	}

	return strings.Count(string(b.src[from:to]), ",")
}

func appendHoles(elements []*Node, commas int, first bool) []*Node {
	holes := commas
	if !first {
		holes--
	}

	for range max(holes, 0) {
		elements = append(elements, nil)
	}

	return elements
}

func (b *builder) object(n sitter.Node) *Node {
	var (
		properties []*Node
		pending    []string
	)

	for idx := range n.NamedChildCount() {
		child := n.NamedChild(idx)

		if child.Type() == tsComment {
			if last := lastNode(properties); last != nil && b.sameLine(last.Span.End, int(child.StartByte())) {
				last.TrailingComments = append(last.TrailingComments, child.Content(b.src))

				continue
			}

			pending = append(pending, child.Content(b.src))

			continue
		}

		prop := b.build(child)
		prop.LeadingComments = pending
		pending = nil

		properties = append(properties, prop)
	}

	obj := New(KindObjectExpression, F(FieldProperties, properties))
	obj.TrailingComments = pending

	return obj
}

func (b *builder) pair(n sitter.Node) *Node {
	keyNode := n.ChildByFieldName(FieldKey)
	computed := keyNode.Type() == tsComputedPropertyName

	var key *Node

	if computed && keyNode.NamedChildCount() > 0 {
		key = b.build(keyNode.NamedChild(0))
	} else {
		key = b.build(keyNode)
	}

	return New(KindProperty,
		F(FieldKey, key),
		F(FieldValue, b.build(n.ChildByFieldName(FieldValue))),
		F(FieldComputed, computed),
		F(FieldShorthand, false),
		F(FieldKind, "init"),
	)
}

func (b *builder) shorthand(n sitter.Node) *Node {
	name := n.Content(b.src)
	span := Span{Start: int(n.StartByte()), End: int(n.EndByte())}

	key := &Node{Type: KindIdentifier, Fields: []Field{F(FieldName, name)}, Span: span, Raw: name}
	value := &Node{Type: KindIdentifier, Fields: []Field{F(FieldName, name)}, Span: span, Raw: name}

	return New(KindProperty,
		F(FieldKey, key),
		F(FieldValue, value),
		F(FieldComputed, false),
		F(FieldShorthand, true),
		F(FieldKind, "init"),
	)
}

// literal returns nil for literals it cannot represent as a Go scalar (for
// example bigint), which then fall back to generic nodes.
func (b *builder) literal(n sitter.Node) *Node {
	raw := n.Content(b.src)

	var value any

	switch n.Type() {
	case tsString:
		decoded, err := DecodeString(raw)
		if err != nil {
			return nil
		}

		value = decoded
	case tsNumber:
		number, ok := parseNumber(raw)
		if !ok {
			return nil
		}

		value = number
	case tsTrue:
		value = true
	case tsFalse:
		value = false
	case tsNull:
		value = nil
	}

	return New(KindLiteral, F(FieldValue, value), F(FieldRaw, raw))
}

func (b *builder) generic(n sitter.Node) *Node {
	var children []*Node

	for idx := range n.NamedChildCount() {
		child := n.NamedChild(idx)
		if child.Type() == tsComment {
			continue
		}

		children = append(children, b.build(child))
	}

	return New(n.Type(), F(FieldChildren, children))
}

func parseNumber(raw string) (float64, bool) {
	if intVal, err := strconv.ParseInt(raw, 0, 64); err == nil {
		return float64(intVal), true
	}

	cleaned := strings.ReplaceAll(raw, "_", "")

	floatVal, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}

	return floatVal, true
}
