package handlers

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestPageQuery(t *testing.T) {
	cases := []struct {
		name       string
		q          pageQuery
		wantLimit  int
		wantOffset int
	}{
		{"defaults", pageQuery{}, 20, 0},
		{"first page", pageQuery{Page: 1, Limit: 5}, 5, 0},
		{"third page", pageQuery{Page: 3, Limit: 5}, 5, 10},
		{"default limit", pageQuery{Page: 2}, 20, 20},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.wantLimit, tc.q.limit())
			assert.Equal(t, tc.wantOffset, tc.q.offset())
		})
	}

	meta := pageMeta(pageQuery{}, 42)
	assert.Equal(t, gin.H{"page": 1, "limit": 20, "total": 42}, meta)
}

func setupUploadRouter(t *testing.T) *gin.Engine {
	t.Helper()
	r := gin.New()
	r.POST("/upload", func(c *gin.Context) {
		up, f, ok := formUpload(c, "file")
		if !ok {
			return
		}
		defer f.Close()
		b, err := io.ReadAll(up.Body)
		require.NoError(t, err)
		c.JSON(http.StatusOK, gin.H{"name": up.Filename, "size": up.Size, "body": string(b)})
	})
	return r
}

func TestFormUpload_Missing(t *testing.T) {
	r := setupUploadRouter(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("lecture_id", "l-1"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"file_required"`)
}

func TestFormUpload_ReadsFile(t *testing.T) {
	r := setupUploadRouter(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "intro.mp4")
	require.NoError(t, err)
	_, err = fw.Write([]byte("frames"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"name":"intro.mp4","size":6,"body":"frames"}`, w.Body.String())
}
