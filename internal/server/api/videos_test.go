package api

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVideoHandler(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "1_processed_a.mp4"), []byte("annotated"), 0644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0755))

	handler := NewVideoHandler(dir)

	t.Run("serves as attachment", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/videos/1_processed_a.mp4", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "annotated", rec.Body.String())
		assert.Equal(t, `attachment; filename="1_processed_a.mp4"`, rec.Header().Get("Content-Disposition"))
	})

	t.Run("missing and unsafe names are not found", func(t *testing.T) {
		for _, path := range []string{
			"/api/videos/",
			"/api/videos/nope.mp4",
			"/api/videos/sub",
			"/api/videos/..%2Fsecret.mp4",
		} {
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
			assert.Equal(t, http.StatusNotFound, rec.Code, path)
		}
	})

	t.Run("rejects writes", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/videos/1_processed_a.mp4", nil))
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	})
}
