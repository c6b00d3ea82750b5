package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xenking/stockroom/internal/app"
	"github.com/xenking/stockroom/internal/domain/product"
	"github.com/xenking/stockroom/internal/storage/file"
)

const (
	shop = `[{"type":"Electronics","product_id":"E1","name":"Laptop","price":100,"quantity_in_stock":5,"warranty_years":2,"brand":"X"}]`
	farm = `[{"type":"Grocery","product_id":"G1","name":"Milk","price":2,"quantity_in_stock":3,"expiry_date":"2030-01-01"}]`
)

func writeInputs(t *testing.T, files map[string]string) []string {
	t.Helper()

	dir := t.TempDir()
	var paths []string
	for name, body := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
		paths = append(paths, path)
	}
	return paths
}

func TestRun(t *testing.T) {
	ctx := context.Background()
	paths := writeInputs(t, map[string]string{"shop.json": shop, "farm.json": farm})
	target := t.TempDir()

	cfg := app.StorageConfig{Driver: app.DriverFile, Dir: target}
	require.NoError(t, run(ctx, zap.NewNop(), cfg, paths, 2, false))

	out := file.New(target)
	for name, want := range map[string]string{"shop.json": shop, "farm.json": farm} {
		got, err := out.Read(ctx, name)
		require.NoError(t, err)

		wantProducts, err := product.DecodeDocument([]byte(want))
		require.NoError(t, err)
		gotProducts, err := product.DecodeDocument(got)
		require.NoError(t, err)
		assert.Equal(t, wantProducts, gotProducts, name)
	}
}

func TestRun_InvalidDocumentWritesNothing(t *testing.T) {
	paths := writeInputs(t, map[string]string{
		"shop.json": shop,
		"bad.json":  `[{"type":"Unknown","product_id":"U1"}]`,
	})
	target := t.TempDir()

	err := run(context.Background(), zap.NewNop(), app.StorageConfig{Driver: app.DriverFile, Dir: target}, paths, 1, false)
	require.ErrorIs(t, err, product.ErrInvalidProductData)

	entries, err := os.ReadDir(target)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRun_DryRun(t *testing.T) {
	paths := writeInputs(t, map[string]string{"shop.json": shop})
	target := filepath.Join(t.TempDir(), "out")

	require.NoError(t, run(context.Background(), zap.NewNop(), app.StorageConfig{Driver: app.DriverFile, Dir: target}, paths, 1, true))
	assert.NoDirExists(t, target)
}

func TestCheckNames(t *testing.T) {
	assert.Equal(t, "inventory.json", documentName("/backups/inventory.json.gz"))

	err := checkNames([]*document{
		{path: "a/inventory.json", name: "inventory.json"},
		{path: "b/inventory.json.gz", name: "inventory.json"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "inventory.json")
}
