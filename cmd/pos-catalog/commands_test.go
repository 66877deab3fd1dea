package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/xenking/kicks-pos/db"
	"github.com/xenking/kicks-pos/internal/catalog"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

const duplicateSKU = `{
  "operators": [{"username": "jota", "role": "admin", "password": "jota123"}],
  "products": [
    {"id": "1", "sku": "NIK-1", "brand": "Nike", "model": "A", "color": "Red", "price": 10, "sizes": [{"size": "40", "stock": 1}]},
    {"id": "2", "sku": "nik-1", "brand": "Nike", "model": "B", "color": "Red", "price": 10, "sizes": [{"size": "40", "stock": 1}]}
  ]
}`

func TestCheck(t *testing.T) {
	t.Run("Valid", func(t *testing.T) {
		out, err := execute(t, "check", writeFile(t, "catalog.json", db.Catalog))
		require.NoError(t, err)
		assert.Contains(t, out, "ok: 1 operators, 10 products, 1 customers")
	})
	t.Run("Problems", func(t *testing.T) {
		out, err := execute(t, "check", writeFile(t, "catalog.json", []byte(duplicateSKU)))
		require.ErrorIs(t, err, errInvalidCatalog)
		assert.Contains(t, out, "products[1]")
	})
	t.Run("Missing", func(t *testing.T) {
		_, err := execute(t, "check", filepath.Join(t.TempDir(), "nope.json"))
		require.Error(t, err)
	})
	t.Run("Args", func(t *testing.T) {
		_, err := execute(t, "check")
		require.Error(t, err)
	})
}

func TestStats(t *testing.T) {
	out, err := execute(t, "stats", writeFile(t, "catalog.json", db.Catalog))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "products: 10\n"), out)
	assert.Contains(t, out, "out of stock:")
}

func TestPack(t *testing.T) {
	src := writeFile(t, "catalog.json", db.Catalog)
	dst := filepath.Join(t.TempDir(), "packed.json.gz")

	out, err := execute(t, "pack", src, "-o", dst)
	require.NoError(t, err)
	assert.Contains(t, out, dst)

	packed, err := catalog.Load(dst)
	require.NoError(t, err)
	want, err := catalog.Default()
	require.NoError(t, err)
	assert.Len(t, packed.Products, len(want.Products))
	assert.Len(t, packed.Customers, len(want.Customers))

	t.Run("Invalid", func(t *testing.T) {
		bad := writeFile(t, "bad.json", []byte(duplicateSKU))
		_, err := execute(t, "pack", bad)
		require.ErrorIs(t, err, errInvalidCatalog)
		_, statErr := os.Stat(bad + ".gz")
		assert.True(t, os.IsNotExist(statErr))
	})
}

func TestHashPassword(t *testing.T) {
	out, err := execute(t, "hash-password", "s3cret")
	require.NoError(t, err)
	hash := strings.TrimSpace(out)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("s3cret")))
}
