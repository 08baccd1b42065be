package storage_test

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/wkalt/mohair/storage"
)

func TestDirectoryStore(t *testing.T) {
	ctx := context.Background()
	root := filepath.Join(t.TempDir(), "objects")

	store, err := storage.NewDirectoryStore(root)
	require.NoError(t, err)
	t.Run("creates root", func(t *testing.T) {
		info, err := os.Stat(root)
		require.NoError(t, err)
		require.True(t, info.IsDir())
	})
	t.Run("put writes a file", func(t *testing.T) {
		require.NoError(t, store.Put(ctx, "plans/a", []byte("a")))
		data, err := os.ReadFile(filepath.Join(root, "plans", "a"))
		require.NoError(t, err)
		require.Equal(t, []byte("a"), data)
	})
	t.Run("rejects escaping ids", func(t *testing.T) {
		for _, id := range []string{"", "../x", "/abs", "a/../../b", "a//b", `a\b`} {
			require.Error(t, store.Put(ctx, id, []byte("x")), id)
		}
	})
	t.Run("concurrent puts of the same id", func(t *testing.T) {
		wg := &sync.WaitGroup{}
		errs := make(chan error, 8*50)
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				for j := 0; j < 50; j++ {
					errs <- store.Put(ctx, "plans/shared", []byte{byte(i)})
				}
			}(i)
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			require.NoError(t, err)
		}
		data, err := store.Get(ctx, "plans/shared")
		require.NoError(t, err)
		require.Len(t, data, 1)
		require.Less(t, int(data[0]), 8)

		entries, err := os.ReadDir(filepath.Join(root, "plans"))
		require.NoError(t, err)
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		require.ElementsMatch(t, []string{"a", "shared"}, names)
	})
	t.Run("string", func(t *testing.T) {
		require.Equal(t, "directory("+root+")", store.String())
	})
}
