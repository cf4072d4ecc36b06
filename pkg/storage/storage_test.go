package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalDiskRoundTrip(t *testing.T) {
	ctx := context.Background()
	d, err := NewLocal(t.TempDir(), "http://files.local/storage/")
	require.NoError(t, err)

	require.NoError(t, d.Put(ctx, "receipts/2026/05/1-a.json", []byte(`{"id":1}`), "application/json"))
	require.NoError(t, d.Put(ctx, "receipts/2026/06/2-b.json", []byte(`{"id":2}`), "application/json"))

	data, err := d.Get(ctx, "receipts/2026/05/1-a.json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":1}`, string(data))

	ok, err := d.Exists(ctx, "receipts/2026/05/1-a.json")
	require.NoError(t, err)
	assert.True(t, ok)

	list, err := d.List(ctx, "receipts/2026")
	require.NoError(t, err)
	assert.Equal(t, []string{"receipts/2026/05/1-a.json", "receipts/2026/06/2-b.json"}, list)

	assert.Equal(t, "http://files.local/storage/receipts/2026/05/1-a.json", d.URL("receipts/2026/05/1-a.json"))

	require.NoError(t, d.Delete(ctx, "receipts/2026/05/1-a.json"))
	_, err = d.Get(ctx, "receipts/2026/05/1-a.json")
	assert.ErrorIs(t, err, ErrNotExist)
	assert.NoError(t, d.Delete(ctx, "receipts/2026/05/1-a.json"))
}

func TestLocalDiskStaysInsideRoot(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	d, err := NewLocal(root, "")
	require.NoError(t, err)

	require.NoError(t, d.Put(ctx, "../../escape.txt", []byte("x"), ""))
	ok, err := d.Exists(ctx, "escape.txt")
	require.NoError(t, err)
	assert.True(t, ok, "dot-dot segments are clamped to the root")
}

func TestLocalDiskListMissingPrefix(t *testing.T) {
	d, err := NewLocal(t.TempDir(), "")
	require.NoError(t, err)

	list, err := d.List(context.Background(), "nothing/here")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestNewS3RequiresBucket(t *testing.T) {
	_, err := NewS3(context.Background(), S3Config{})
	assert.Error(t, err)
}

func TestUseOverridesDefault(t *testing.T) {
	d, err := NewLocal(t.TempDir(), "")
	require.NoError(t, err)
	Use(d)
	t.Cleanup(func() { Use(nil) })

	assert.Same(t, d, Default())
}
