package file

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	pgzip "github.com/klauspost/pgzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/stockroom/internal/domain/inventory"
)

const doc = `[{"type": "Clothing", "product_id": "C1", "name": "Shirt", "price": 1, "quantity_in_stock": 1, "size": "M", "material": "x"}]`

func TestStorage_WriteRead(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s := New(dir)

	require.NoError(t, s.Write(ctx, "inventory.json", []byte(doc)))

	raw, err := os.ReadFile(filepath.Join(dir, "inventory.json"))
	require.NoError(t, err)
	assert.Equal(t, doc, string(raw))

	got, err := s.Read(ctx, "inventory.json")
	require.NoError(t, err)
	assert.Equal(t, doc, string(got))
}

func TestStorage_Overwrite(t *testing.T) {
	ctx := context.Background()
	s := New(t.TempDir())

	require.NoError(t, s.Write(ctx, "inventory.json", []byte(`[1]`)))
	require.NoError(t, s.Write(ctx, "inventory.json", []byte(`[]`)))

	got, err := s.Read(ctx, "inventory.json")
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(got))
}

func TestStorage_Gzip(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s := New(dir)

	require.NoError(t, s.Write(ctx, "backups/inventory.json.gz", []byte(doc)))

	raw, err := os.ReadFile(filepath.Join(dir, "backups", "inventory.json.gz"))
	require.NoError(t, err)
	gz, err := pgzip.NewReader(bytes.NewReader(raw))
	require.NoError(t, err)
	var plain bytes.Buffer
	_, err = plain.ReadFrom(gz)
	require.NoError(t, err)
	assert.Equal(t, doc, plain.String())

	got, err := s.Read(ctx, "backups/inventory.json.gz")
	require.NoError(t, err)
	assert.Equal(t, doc, string(got))
}

func TestStorage_NotFound(t *testing.T) {
	_, err := New(t.TempDir()).Read(context.Background(), "missing.json")
	require.ErrorIs(t, err, inventory.ErrDocumentNotFound)
}

func TestStorage_InvalidNames(t *testing.T) {
	ctx := context.Background()
	s := New(t.TempDir())

	for _, name := range []string{"", ".", "..", "../escape.json", "/etc/passwd", "a/../../b.json"} {
		t.Run(name, func(t *testing.T) {
			require.Error(t, s.Write(ctx, name, []byte(doc)))
			_, err := s.Read(ctx, name)
			require.Error(t, err)
			assert.NotErrorIs(t, err, inventory.ErrDocumentNotFound)
		})
	}
}

func TestStorage_NoTempFilesLeft(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s := New(dir)

	require.NoError(t, s.Write(ctx, "inventory.json", []byte(doc)))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "inventory.json", entries[0].Name())
}

func TestStorage_Ping(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")
	require.NoError(t, New(dir).Ping(context.Background()))

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
