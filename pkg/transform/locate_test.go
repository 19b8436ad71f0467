package transform_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/relabel/pkg/jsast"
	"github.com/Sumatoshi-tech/relabel/pkg/transform"
)

func parseTS(t *testing.T, src string) *jsast.Node {
	t.Helper()

	root, err := jsast.NewParser().ParseLanguage(context.Background(), jsast.TypeScript, []byte(src))
	require.NoError(t, err)

	return root
}

func TestLocate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		src       string
		wantFound bool
		wantKind  string
	}{
		{"array", "const defaultOptions = [1, 2];", true, jsast.KindArrayExpression},
		{"exported", "export const defaultOptions = [];", true, jsast.KindArrayExpression},
		{"nested in function", "function f() { let defaultOptions = [{ a: 1 }]; }", true, jsast.KindArrayExpression},
		{"object initializer", "var defaultOptions = { a: 1 };", true, jsast.KindObjectExpression},
		{"missing", "const other = [1];", false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			init, found := transform.Locate(parseTS(t, tt.src), "defaultOptions")
			assert.Equal(t, tt.wantFound, found)

			if tt.wantFound {
				require.NotNil(t, init)
				assert.Equal(t, tt.wantKind, init.Type)
			}
		})
	}
}

func TestLocateDeclarationWithoutInitializer(t *testing.T) {
	t.Parallel()

	init, found := transform.Locate(parseTS(t, "let defaultOptions;"), "defaultOptions")
	assert.True(t, found)
	assert.Nil(t, init)
}

func TestLocateFirstMatchWins(t *testing.T) {
	t.Parallel()

	src := "const defaultOptions = [1];\nfunction f() { const defaultOptions = [2, 3]; }\n"

	init, found := transform.Locate(parseTS(t, src), "defaultOptions")
	require.True(t, found)
	assert.Len(t, init.List(jsast.FieldElements), 1)
}
