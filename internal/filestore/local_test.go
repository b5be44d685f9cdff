package filestore

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xxxsen/stackusage/internal/config"
)

type testReader struct {
	*bytes.Reader
}

func (testReader) Close() error { return nil }

func TestLocalStore_SaveOpenRoundTrip(t *testing.T) {
	store, err := New(config.StoreConfig{
		Type: "local",
		Data: map[string]interface{}{"dir": t.TempDir()},
	})
	require.NoError(t, err)

	payload := []byte("Tag,Aggregate Page Views\ngo,15\n")
	err = store.Save(context.Background(), "tag_metrics.csv", testReader{bytes.NewReader(payload)}, int64(len(payload)))
	require.NoError(t, err)

	reader, err := store.Open(context.Background(), "tag_metrics.csv")
	require.NoError(t, err)
	defer reader.Close()

	got, err := io.ReadAll(reader)
	require.NoError(t, err)
	require.Equal(t, payload, got)
}

func TestLocalStore_RejectsPathLikeKeys(t *testing.T) {
	store, err := New(config.StoreConfig{
		Type: "local",
		Data: map[string]interface{}{"dir": t.TempDir()},
	})
	require.NoError(t, err)

	for _, key := range []string{"", "a/b.json", `a\b.json`, "..", "../escape.json"} {
		err := store.Save(context.Background(), key, testReader{bytes.NewReader(nil)}, 0)
		require.Error(t, err, "key %q should be rejected", key)
	}
}

func TestNew_UnknownTypeFails(t *testing.T) {
	_, err := New(config.StoreConfig{Type: "ftp"})
	require.ErrorContains(t, err, "unsupported artifact store type")
}

func TestNew_LocalRequiresDir(t *testing.T) {
	_, err := New(config.StoreConfig{Type: "local", Data: map[string]interface{}{}})
	require.ErrorContains(t, err, "dir is required")
}
