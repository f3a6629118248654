package geodata

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"etlcli/pkg/contracts/domain"
)

func TestFileCache(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		cache := NewFileCache(t.TempDir(), time.Hour)

		stored := []domain.Neighborhood{
			{Name: "النرجس", Lat: 24.83, Lon: 46.65, OSMID: 123, OSMType: "node"},
		}
		require.NoError(t, cache.Put("all_neighborhoods:الرياض", stored))

		var got []domain.Neighborhood
		require.True(t, cache.Get("all_neighborhoods:الرياض", &got))
		assert.Equal(t, stored, got)
	})

	t.Run("miss on absent key", func(t *testing.T) {
		cache := NewFileCache(t.TempDir(), time.Hour)
		var got []domain.Neighborhood
		assert.False(t, cache.Get("nope", &got))
	})

	t.Run("miss after expiry", func(t *testing.T) {
		cache := NewFileCache(t.TempDir(), time.Nanosecond)
		require.NoError(t, cache.Put("k", "v"))

		time.Sleep(time.Millisecond)
		var got string
		assert.False(t, cache.Get("k", &got))
	})

	t.Run("zero TTL never expires", func(t *testing.T) {
		cache := NewFileCache(t.TempDir(), 0)
		require.NoError(t, cache.Put("k", "v"))

		var got string
		require.True(t, cache.Get("k", &got))
		assert.Equal(t, "v", got)
	})

	t.Run("corrupt entry is a miss", func(t *testing.T) {
		dir := t.TempDir()
		cache := NewFileCache(dir, time.Hour)
		require.NoError(t, cache.Put("k", "v"))

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		require.NoError(t, os.WriteFile(filepath.Join(dir, entries[0].Name()), []byte("not json"), 0644))

		var got string
		assert.False(t, cache.Get("k", &got))
	})

	t.Run("caches nil result", func(t *testing.T) {
		cache := NewFileCache(t.TempDir(), time.Hour)
		var stored *domain.Neighborhood
		require.NoError(t, cache.Put("lookup:ghost", stored))

		got := &domain.Neighborhood{Name: "sentinel"}
		require.True(t, cache.Get("lookup:ghost", &got))
		assert.Nil(t, got)
	})
}
