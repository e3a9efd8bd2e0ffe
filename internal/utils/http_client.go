package utils

import (
	"bytes"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const maxLoggedBody = 2000

// LoggingTransport is an http.RoundTripper that logs outbound gateway calls.
type LoggingTransport struct {
	Transport http.RoundTripper
	Logger    *zap.Logger
}

func NewLoggingTransport(log *zap.Logger) *LoggingTransport {
	return &LoggingTransport{Transport: http.DefaultTransport, Logger: log}
}

func (t *LoggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	log := t.Logger
	if log == nil {
		log = zap.NewNop()
	}

	var reqBody []byte
	if req.Body != nil {
		reqBody, _ = io.ReadAll(req.Body)
		req.Body.Close()
		req.Body = io.NopCloser(bytes.NewReader(reqBody))
	}
	log.Debug("outbound request",
		zap.String("method", req.Method),
		zap.String("url", req.URL.String()),
		zap.String("body", truncateBody(reqBody)))

	transport := t.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}

	start := time.Now()
	resp, err := transport.RoundTrip(req)
	duration := time.Since(start)

	if err != nil {
		log.Warn("outbound request failed",
			zap.String("method", req.Method),
			zap.String("url", req.URL.String()),
			zap.Duration("latency", duration),
			zap.Error(err))
		return nil, err
	}

	var respBody []byte
	if resp.Body != nil {
		respBody, _ = io.ReadAll(resp.Body)
		resp.Body.Close()
		resp.Body = io.NopCloser(bytes.NewReader(respBody))
	}
	log.Info("outbound response",
		zap.String("method", req.Method),
		zap.String("url", req.URL.String()),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", duration),
		zap.String("body", truncateBody(respBody)))

	return resp, nil
}

func truncateBody(b []byte) string {
	if len(b) == 0 {
		return "empty"
	}
	if len(b) > maxLoggedBody {
		return string(b[:maxLoggedBody]) + "...(truncated)"
	}
	return string(b)
}
