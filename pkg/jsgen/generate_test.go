package jsgen_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/relabel/pkg/jsgen"
)

func TestGenerateObjectMultiline(t *testing.T) {
	t.Parallel()

	obj := jsgen.NewObjectExpression(
		jsgen.NewObjectProperty(jsgen.NewIdentifier("label"), jsgen.NewStringLiteral("锁定")),
		jsgen.NewObjectProperty(jsgen.NewIdentifier("key"), jsgen.NewStringLiteral("workspace.system_keyboard_Lock")),
	)

	out, err := jsgen.Generate(obj, jsgen.Options{})
	require.NoError(t, err)

	assert.Equal(t, "{\n  label: \"锁定\",\n  key: \"workspace.system_keyboard_Lock\"\n}", out)
}

func TestGenerateNestedIndent(t *testing.T) {
	t.Parallel()

	inner := jsgen.NewObjectExpression(
		jsgen.NewObjectProperty(jsgen.NewIdentifier("a"), jsgen.NewNumericLiteral(1)),
	)
	outer := jsgen.NewArrayExpression(inner, jsgen.NewNullLiteral())

	out, err := jsgen.Generate(outer, jsgen.Options{Indent: 4})
	require.NoError(t, err)

	assert.Equal(t, "[{\n    a: 1\n}, null]", out)
}

func TestGenerateEmptyLiterals(t *testing.T) {
	t.Parallel()

	out, err := jsgen.Generate(jsgen.NewArrayExpression(jsgen.NewObjectExpression()), jsgen.Options{})
	require.NoError(t, err)
	assert.Equal(t, "[{}]", out)

	out, err = jsgen.Generate(jsgen.NewArrayExpression(), jsgen.Options{})
	require.NoError(t, err)
	assert.Equal(t, "[]", out)
}

func TestGenerateArrayHoles(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		elements []jsgen.Node
		want     string
	}{
		{"leading", []jsgen.Node{nil, jsgen.NewNumericLiteral(1)}, "[, 1]"},
		{"middle", []jsgen.Node{jsgen.NewNumericLiteral(1), nil, jsgen.NewNumericLiteral(2)}, "[1, , 2]"},
		{"trailing", []jsgen.Node{jsgen.NewNumericLiteral(1), nil}, "[1, ,]"},
		{"only", []jsgen.Node{nil}, "[,]"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			out, err := jsgen.Generate(jsgen.NewArrayExpression(tc.elements...), jsgen.Options{})
			require.NoError(t, err)
			assert.Equal(t, tc.want, out)
		})
	}
}

func TestGenerateArrayWithComments(t *testing.T) {
	t.Parallel()

	first := jsgen.NewNumericLiteral(1)
	jsgen.SetComments(first, []string{"// one"}, nil)

	arr := jsgen.NewArrayExpression(first, jsgen.NewNumericLiteral(2))
	jsgen.SetComments(arr, nil, []string{"/* end */"})

	out, err := jsgen.Generate(arr, jsgen.Options{})
	require.NoError(t, err)

	assert.Equal(t, "[\n  // one\n  1,\n  2\n  /* end */\n]", out)
}

func TestGenerateSameLineComments(t *testing.T) {
	t.Parallel()

	label := jsgen.NewObjectProperty(jsgen.NewIdentifier("label"), jsgen.NewStringLiteral("k.Lock"))
	jsgen.SetComments(label, nil, []string{"// lock"})

	key := jsgen.NewObjectProperty(jsgen.NewIdentifier("key"), jsgen.NewStringLiteral("LOCK"))
	jsgen.SetComments(key, nil, []string{"/* k */"})

	out, err := jsgen.Generate(jsgen.NewArrayExpression(jsgen.NewObjectExpression(label, key)), jsgen.Options{})
	require.NoError(t, err)

	assert.Equal(t, "[{\n  label: \"k.Lock\", // lock\n  key: \"LOCK\" /* k */\n}]", out)

	element := jsgen.NewNumericLiteral(1)
	jsgen.SetComments(element, nil, []string{"// one"})

	out, err = jsgen.Generate(jsgen.NewArrayExpression(element, jsgen.NewNumericLiteral(2)), jsgen.Options{})
	require.NoError(t, err)

	assert.Equal(t, "[\n  1, // one\n  2\n]", out)
}

func TestGenerateLocatedObjectKeepsText(t *testing.T) {
	t.Parallel()

	src := "{ a /* k */ : 1, // why a\n  b: 'x' }"

	value := jsgen.NewStringLiteral("y")
	jsgen.SetSpan(value, 31, 34)

	bKey := jsgen.NewIdentifier("b")
	jsgen.SetLocation(bKey, 28, 29, "b")

	b := jsgen.NewObjectProperty(bKey, value)
	jsgen.SetLocation(b, 28, 34, "b: 'x'")

	a := &jsgen.Generic{Type: "pair"}
	jsgen.SetLocation(a, 2, 15, "a /* k */ : 1")

	obj := jsgen.NewObjectExpression(a, b)
	jsgen.SetLocation(obj, 0, len(src), src)

	out, err := jsgen.Generate(obj, jsgen.Options{})
	require.NoError(t, err)

	assert.Equal(t, "{ a /* k */ : 1, // why a\n  b: \"y\" }", out)
}

func TestGenerateVariableDeclaration(t *testing.T) {
	t.Parallel()

	decl := jsgen.NewVariableDeclaration("const", jsgen.NewVariableDeclarator(
		jsgen.NewIdentifier("newIndependentObject"),
		jsgen.NewObjectExpression(
			jsgen.NewObjectProperty(jsgen.NewStringLiteral("workspace.system_keyboard_Lock"), jsgen.NewStringLiteral("锁定")),
		),
	))

	out, err := jsgen.Generate(jsgen.NewProgram(decl), jsgen.Options{})
	require.NoError(t, err)

	assert.Equal(t, "const newIndependentObject = {\n  \"workspace.system_keyboard_Lock\": \"锁定\"\n};\n", out)
}

func TestGenerateProperties(t *testing.T) {
	t.Parallel()

	shorthand := &jsgen.ObjectProperty{
		Key:       jsgen.NewIdentifier("icon"),
		Value:     jsgen.NewIdentifier("icon"),
		Shorthand: true,
	}
	computed := &jsgen.ObjectProperty{
		Key:      jsgen.NewIdentifier("KEY"),
		Value:    jsgen.NewBooleanLiteral(true),
		Computed: true,
	}

	out, err := jsgen.Generate(jsgen.NewObjectExpression(shorthand, computed), jsgen.Options{})
	require.NoError(t, err)

	assert.Equal(t, "{\n  icon,\n  [KEY]: true\n}", out)
}

func TestGenerateSplicesGenericText(t *testing.T) {
	t.Parallel()

	src := "renderIcon( LockIcon )"
	arg := jsgen.NewIdentifier("UnlockIcon")
	jsgen.SetLocation(arg, 12, 20, "LockIcon")

	call := &jsgen.Generic{
		Type:   "call_expression",
		Fields: []jsgen.Field{{Name: "children", Value: []jsgen.Node{arg}}},
	}
	jsgen.SetLocation(call, 0, len(src), src)

	out, err := jsgen.Generate(call, jsgen.Options{})
	require.NoError(t, err)

	assert.Equal(t, "renderIcon( UnlockIcon )", out)
}

func TestGenerateProgramAppendsUnlocatedStatements(t *testing.T) {
	t.Parallel()

	src := "// header\nconst a = 1; // tail\n"
	stmt := &jsgen.Generic{Type: "lexical_declaration"}
	jsgen.SetLocation(stmt, 10, 22, "const a = 1;")

	appended := jsgen.NewVariableDeclaration("const",
		jsgen.NewVariableDeclarator(jsgen.NewIdentifier("b"), jsgen.NewNumericLiteral(2)))

	prog := jsgen.NewProgram(stmt, appended)
	jsgen.SetLocation(prog, 0, len(src), src)

	out, err := jsgen.Generate(prog, jsgen.Options{})
	require.NoError(t, err)

	assert.Equal(t, "// header\nconst a = 1; // tail\nconst b = 2;\n", out)
}

func TestGenerateUnlocatedGenericRaw(t *testing.T) {
	t.Parallel()

	out, err := jsgen.Generate(&jsgen.Generic{Type: "x", Meta: jsgen.Meta{Raw: "a + b"}}, jsgen.Options{})
	require.NoError(t, err)
	assert.Equal(t, "a + b", out)
}

type foreignNode struct{ jsgen.Meta }

func (foreignNode) Kind() string { return "Foreign" }

func TestGenerateUnsupportedNode(t *testing.T) {
	t.Parallel()

	_, err := jsgen.Generate(&foreignNode{}, jsgen.Options{})
	require.ErrorIs(t, err, jsgen.ErrUnsupportedNode)
}

func TestQuoteString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in    string
		quote byte
		want  string
	}{
		{"plain", jsgen.QuoteDouble, `"plain"`},
		{`say "hi"`, jsgen.QuoteDouble, `"say \"hi\""`},
		{"it's", jsgen.QuoteSingle, `'it\'s'`},
		{"it's", jsgen.QuoteDouble, `"it's"`},
		{"a\\b", jsgen.QuoteDouble, `"a\\b"`},
		{"line\nbreak\ttab", jsgen.QuoteDouble, `"line\nbreak\ttab"`},
		{"中文 ünï", jsgen.QuoteDouble, `"中文 ünï"`},
		{"\x00x", jsgen.QuoteDouble, `"\0x"`},
		{"\x001", jsgen.QuoteDouble, `"\x001"`},
		{"\x01", jsgen.QuoteDouble, `"\x01"`},
		{"a\u2028b", jsgen.QuoteDouble, `"a\u2028b"`},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.want, jsgen.QuoteString(tc.in, tc.quote), tc.in)
	}
}

func TestFormatNumber(t *testing.T) {
	t.Parallel()

	tests := []struct {
		want string
		in   float64
	}{
		{"0", 0},
		{"42", 42},
		{"-7", -7},
		{"3.14", 3.14},
		{"0.000001", 0.000001},
		{"1e-7", 1e-7},
		{"1234567.5", 1234567.5},
		{"100000000000000000000", 1e20},
		{"1e+21", 1e21},
		{"1.5e+300", 1.5e300},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.want, jsgen.FormatNumber(tc.in), tc.want)
	}
}

func TestValueToNode(t *testing.T) {
	t.Parallel()

	node, err := jsgen.ValueToNode(map[string]any{
		"b":          []any{1, "two", nil, true},
		"a":          2.5,
		"not-ident":  math.Inf(-1),
		"notANumber": math.NaN(),
	})
	require.NoError(t, err)

	out, err := jsgen.Generate(node, jsgen.Options{})
	require.NoError(t, err)

	assert.Equal(t,
		"{\n  a: 2.5,\n  b: [1, \"two\", null, true],\n  \"not-ident\": -Infinity,\n  notANumber: NaN\n}", out)
}

func TestValueToNodeUnsupported(t *testing.T) {
	t.Parallel()

	_, err := jsgen.ValueToNode(make(chan int))
	require.ErrorIs(t, err, jsgen.ErrUnsupportedValue)

	_, err = jsgen.ValueToNode(map[int]string{1: "x"})
	require.ErrorIs(t, err, jsgen.ErrUnsupportedValue)
}

func TestIsValidIdentifier(t *testing.T) {
	t.Parallel()

	assert.True(t, jsgen.IsValidIdentifier("label"))
	assert.True(t, jsgen.IsValidIdentifier("$el_2"))
	assert.True(t, jsgen.IsValidIdentifier("标签"))
	assert.False(t, jsgen.IsValidIdentifier(""))
	assert.False(t, jsgen.IsValidIdentifier("2fast"))
	assert.False(t, jsgen.IsValidIdentifier("a.b"))
	assert.False(t, jsgen.IsValidIdentifier("const"))
}
