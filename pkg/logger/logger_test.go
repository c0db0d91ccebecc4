package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBufferLogger(buf *bytes.Buffer) *Logger {
	return &Logger{Logger: slog.New(slog.NewJSONHandler(buf, nil))}
}

func records(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()
	var out []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var rec map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(line), &rec))
		out = append(out, rec)
	}
	return out
}

func TestRequestLogger_TagsRequests(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var buf bytes.Buffer
	log := newBufferLogger(&buf)

	r := gin.New()
	r.Use(RequestLogger(log))
	r.GET("/fail", func(c *gin.Context) {
		log.ForRequest(c).WithUserEmail("ann@example.com").
			LogHTTPError(c, errors.New("deadlock"), http.StatusInternalServerError)
		c.Status(http.StatusInternalServerError)
	})

	req := httptest.NewRequest(http.MethodGet, "/fail", nil)
	req.Header.Set(RequestIDHeader, "req-42")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "req-42", w.Header().Get(RequestIDHeader))

	recs := records(t, &buf)
	require.Len(t, recs, 2)
	assert.Equal(t, "HTTP Error", recs[0]["msg"])
	assert.Equal(t, "req-42", recs[0]["request_id"])
	assert.Equal(t, "ann@example.com", recs[0]["user_email"])
	assert.Equal(t, "deadlock", recs[0]["error"])

	assert.Equal(t, "HTTP Request", recs[1]["msg"])
	assert.Equal(t, "req-42", recs[1]["request_id"])
	assert.EqualValues(t, http.StatusInternalServerError, recs[1]["status"])
}

func TestRequestLogger_GeneratesID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var buf bytes.Buffer

	r := gin.New()
	r.Use(RequestLogger(newBufferLogger(&buf)))
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ok", nil))

	id := w.Header().Get(RequestIDHeader)
	assert.Len(t, id, 36)
	recs := records(t, &buf)
	require.Len(t, recs, 1)
	assert.Equal(t, id, recs[0]["request_id"])
}

func TestForRequest_WithoutID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	log := NewNop()
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	assert.Same(t, log, log.ForRequest(c))
}
