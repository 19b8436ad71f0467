package locale_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/relabel/pkg/locale"
	"github.com/Sumatoshi-tech/relabel/pkg/transform"
)

func menuCatalog() *locale.Catalog {
	return &locale.Catalog{
		From: "zh",
		To:   "en",
		Entries: []transform.MappingEntry{
			{Key: "workspace.system_keyboard_Lock", Original: "锁定", Translated: "Lock"},
			{Key: "workspace.system_keyboard_解锁", Original: "解锁", Translated: "解锁", Index: 2, Fallback: true},
		},
	}
}

func TestEncode(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	require.NoError(t, menuCatalog().Encode(&buf))

	want := `zh:
  workspace.system_keyboard_Lock: 锁定
  workspace.system_keyboard_解锁: 解锁
en:
  workspace.system_keyboard_Lock: Lock
  workspace.system_keyboard_解锁: 解锁 # untranslated
`

	assert.Equal(t, want, buf.String())
}

func TestEncodeQuotesAmbiguousScalars(t *testing.T) {
	t.Parallel()

	catalog := &locale.Catalog{From: "zh", To: "en", Entries: []transform.MappingEntry{
		{Key: "k.yes", Original: "是", Translated: "yes"},
		{Key: "k.num", Original: "一", Translated: "1"},
	}}

	var buf bytes.Buffer

	require.NoError(t, catalog.Encode(&buf))

	decoded, err := locale.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, "yes", decoded["en"]["k.yes"])
	assert.Equal(t, "1", decoded["en"]["k.num"])
}

func TestEncodeDuplicateKeysKeepFirst(t *testing.T) {
	t.Parallel()

	catalog := &locale.Catalog{From: "zh", To: "en", Entries: []transform.MappingEntry{
		{Key: "k.Open", Original: "打开", Translated: "Open"},
		{Key: "k.Open", Original: "开启", Translated: "Open"},
	}}

	var buf bytes.Buffer

	require.NoError(t, catalog.Encode(&buf))

	decoded, err := locale.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"k.Open": "打开"}, decoded["zh"])
}

func TestEncodeRejectsSameLanguage(t *testing.T) {
	t.Parallel()

	catalog := &locale.Catalog{From: "en", To: "en"}

	require.ErrorIs(t, catalog.Encode(&bytes.Buffer{}), locale.ErrSameLanguage)
}

func TestWriteFileRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "menu.locale.yaml")

	require.NoError(t, menuCatalog().WriteFile(path))

	f, err := os.Open(path)
	require.NoError(t, err)

	defer f.Close()

	decoded, err := locale.Decode(f)
	require.NoError(t, err)

	assert.Equal(t, map[string]map[string]string{
		"zh": {"workspace.system_keyboard_Lock": "锁定", "workspace.system_keyboard_解锁": "解锁"},
		"en": {"workspace.system_keyboard_Lock": "Lock", "workspace.system_keyboard_解锁": "解锁"},
	}, decoded)
}

func TestEmptyCatalog(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	require.NoError(t, (&locale.Catalog{From: "zh", To: "en"}).Encode(&buf))
	assert.Equal(t, "zh: {}\nen: {}\n", buf.String())
}
