package logger

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, ParseLevel("debug"))
	assert.Equal(t, zapcore.WarnLevel, ParseLevel(" warning "))
	assert.Equal(t, zapcore.ErrorLevel, ParseLevel("ERROR"))
	assert.Equal(t, zapcore.InfoLevel, ParseLevel("verbose"))
}

func TestFileOutputRequiresPath(t *testing.T) {
	_, err := New(Options{Output: "file"})
	assert.Error(t, err)
}

func TestFromContextFallsBackToGlobal(t *testing.T) {
	assert.NotNil(t, FromContext(context.Background()))

	l := zap.NewNop()
	ctx := WithContext(context.Background(), l)
	assert.Same(t, l, FromContext(ctx))
}

func TestLokiCorePushesOnError(t *testing.T) {
	var (
		mu       sync.Mutex
		received []lokiPush
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/loki/api/v1/push", r.URL.Path)
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "ops", user)
		assert.Equal(t, "pw", pass)

		body, _ := io.ReadAll(r.Body)
		var push lokiPush
		require.NoError(t, json.Unmarshal(body, &push))
		mu.Lock()
		received = append(received, push)
		mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	core := NewLokiCore(srv.URL, "ops", "pw", map[string]string{"app": "backoffice"}, zapcore.InfoLevel)
	l := zap.New(core)

	l.Debug("dropped by level")
	l.Info("queued")
	l.Error("flushes", zap.String("unit", "A-101"))

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, received, 1)
	require.Len(t, received[0].Streams, 1)
	stream := received[0].Streams[0]
	assert.Equal(t, "backoffice", stream.Stream["app"])
	require.Len(t, stream.Values, 2)
	assert.Contains(t, stream.Values[0][1], "queued")
	assert.Contains(t, stream.Values[1][1], "A-101")
}
