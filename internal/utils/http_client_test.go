package utils

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestLoggingTransportPreservesBodies(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		w.Write([]byte("echo:" + string(body)))
	}))
	defer srv.Close()

	core, logs := observer.New(zap.DebugLevel)
	client := &http.Client{Transport: NewLoggingTransport(zap.New(core))}

	resp, err := client.Post(srv.URL, "text/plain", strings.NewReader("ping"))
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "echo:ping", string(body))

	entries := logs.FilterMessage("outbound response").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "echo:ping", entries[0].ContextMap()["body"])
	assert.Equal(t, int64(http.StatusOK), entries[0].ContextMap()["status"])
}

func TestTruncateBody(t *testing.T) {
	assert.Equal(t, "empty", truncateBody(nil))
	long := strings.Repeat("a", maxLoggedBody+10)
	assert.True(t, strings.HasSuffix(truncateBody([]byte(long)), "...(truncated)"))
}
