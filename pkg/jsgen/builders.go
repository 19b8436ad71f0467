package jsgen

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"sort"
	"unicode"
	"unicode/utf8"
)

// ErrUnsupportedValue is returned by ValueToNode for values with no literal form.
var ErrUnsupportedValue = errors.New("value has no literal form")

// NewProgram builds a Program.
func NewProgram(body ...Node) *Program {
	return &Program{Body: body}
}

// NewVariableDeclaration builds a declaration of the given kind (var, let, const).
func NewVariableDeclaration(kind string, declarations ...*VariableDeclarator) *VariableDeclaration {
	return &VariableDeclaration{DeclKind: kind, Declarations: declarations}
}

// NewVariableDeclarator builds a declarator binding id to init.
func NewVariableDeclarator(id, init Node) *VariableDeclarator {
	return &VariableDeclarator{ID: id, Init: init}
}

// NewArrayExpression builds an array literal.
func NewArrayExpression(elements ...Node) *ArrayExpression {
	return &ArrayExpression{Elements: elements}
}

// NewObjectExpression builds an object literal.
func NewObjectExpression(properties ...Node) *ObjectExpression {
	return &ObjectExpression{Properties: properties}
}

// NewObjectProperty builds a non-computed key/value property.
func NewObjectProperty(key, value Node) *ObjectProperty {
	return &ObjectProperty{Key: key, Value: value}
}

// NewIdentifier builds an identifier.
func NewIdentifier(name string) *Identifier {
	return &Identifier{Name: name}
}

// NewStringLiteral builds a string literal.
func NewStringLiteral(value string) *StringLiteral {
	return &StringLiteral{Value: value}
}

// NewNumericLiteral builds a numeric literal.
func NewNumericLiteral(value float64) *NumericLiteral {
	return &NumericLiteral{Value: value}
}

// NewBooleanLiteral builds a boolean literal.
func NewBooleanLiteral(value bool) *BooleanLiteral {
	return &BooleanLiteral{Value: value}
}

// NewNullLiteral builds null.
func NewNullLiteral() *NullLiteral {
	return &NullLiteral{}
}

// PropertyKey returns an identifier key when name is a valid identifier and a
// string literal key otherwise.
func PropertyKey(name string) Node {
	if IsValidIdentifier(name) {
		return NewIdentifier(name)
	}

	return NewStringLiteral(name)
}

// ValueToNode converts a Go value into the literal node that evaluates to it.
// Strings, booleans, nil and every numeric type map to literals; slices and
// arrays map to array literals; maps with string keys map to object literals
// with keys in sorted order. NaN and the infinities become the corresponding
// global names.
func ValueToNode(value any) (Node, error) {
	switch typed := value.(type) {
	case nil:
		return NewNullLiteral(), nil
	case Node:
		return typed, nil
	case string:
		return NewStringLiteral(typed), nil
	case bool:
		return NewBooleanLiteral(typed), nil
	case float64:
		return numberNode(typed), nil
	case float32:
		return numberNode(float64(typed)), nil
	case int:
		return numberNode(float64(typed)), nil
	case int64:
		return numberNode(float64(typed)), nil
	case int32:
		return numberNode(float64(typed)), nil
	case uint:
		return numberNode(float64(typed)), nil
	case uint64:
		return numberNode(float64(typed)), nil
	case uint32:
		return numberNode(float64(typed)), nil
	}

	return reflectValueToNode(reflect.ValueOf(value))
}

func reflectValueToNode(rv reflect.Value) (Node, error) {
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return NewNullLiteral(), nil
		}

		return ValueToNode(rv.Elem().Interface())
	case reflect.String:
		return NewStringLiteral(rv.String()), nil
	case reflect.Bool:
		return NewBooleanLiteral(rv.Bool()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return numberNode(float64(rv.Int())), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return numberNode(float64(rv.Uint())), nil
	case reflect.Float32, reflect.Float64:
		return numberNode(rv.Float()), nil
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return NewNullLiteral(), nil
		}

		elements := make([]Node, 0, rv.Len())

		for idx := range rv.Len() {
			element, err := ValueToNode(rv.Index(idx).Interface())
			if err != nil {
				return nil, fmt.Errorf("index %d: %w", idx, err)
			}

			elements = append(elements, element)
		}

		return NewArrayExpression(elements...), nil
	case reflect.Map:
		return mapToNode(rv)
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedValue, rv.Interface())
	}
}

func mapToNode(rv reflect.Value) (Node, error) {
	if rv.Type().Key().Kind() != reflect.String {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedValue, rv.Type())
	}

	if rv.IsNil() {
		return NewNullLiteral(), nil
	}

	keys := make([]string, 0, rv.Len())
	for _, key := range rv.MapKeys() {
		keys = append(keys, key.String())
	}

	sort.Strings(keys)

	properties := make([]Node, 0, len(keys))

	for _, key := range keys {
		value, err := ValueToNode(rv.MapIndex(reflect.ValueOf(key).Convert(rv.Type().Key())).Interface())
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", key, err)
		}

		properties = append(properties, NewObjectProperty(PropertyKey(key), value))
	}

	return NewObjectExpression(properties...), nil
}

func numberNode(value float64) Node {
	switch {
	case math.IsNaN(value):
		return NewIdentifier("NaN")
	case math.IsInf(value, 1):
		return NewIdentifier("Infinity")
	case math.IsInf(value, -1):
		return &Generic{Type: "UnaryExpression", Meta: Meta{Raw: "-Infinity"}}
	default:
		return NewNumericLiteral(value)
	}
}

//nolint:gochecknoglobals // Static keyword table.
var reservedWords = map[string]struct{}{
	"break": {}, "case": {}, "catch": {}, "class": {}, "const": {}, "continue": {},
	"debugger": {}, "default": {}, "delete": {}, "do": {}, "else": {}, "enum": {},
	"export": {}, "extends": {}, "false": {}, "finally": {}, "for": {}, "function": {},
	"if": {}, "import": {}, "in": {}, "instanceof": {}, "new": {}, "null": {},
	"return": {}, "super": {}, "switch": {}, "this": {}, "throw": {}, "true": {},
	"try": {}, "typeof": {}, "var": {}, "void": {}, "while": {}, "with": {},
}

// IsValidIdentifier reports whether name can be written as a bare identifier.
func IsValidIdentifier(name string) bool {
	if name == "" {
		return false
	}

	if _, reserved := reservedWords[name]; reserved {
		return false
	}

	for idx, r := range name {
		if r == utf8.RuneError {
			return false
		}

		if r == '$' || r == '_' || unicode.IsLetter(r) {
			continue
		}

		if idx > 0 && (unicode.IsDigit(r) || unicode.Is(unicode.Mn, r) || unicode.Is(unicode.Mc, r) ||
			unicode.Is(unicode.Pc, r) || r == '\u200c' || r == '\u200d') {
			continue
		}

		return false
	}

	return true
}

// isNil reports whether n is nil or a typed nil pointer.
func isNil(n Node) bool {
	if n == nil {
		return true
	}

	rv := reflect.ValueOf(n)

	return rv.Kind() == reflect.Pointer && rv.IsNil()
}
