package logger

import (
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog"
)

func Setup(dev bool) zerolog.Logger {
	var logger zerolog.Logger
	level := zerolog.InfoLevel
	if dev {
		level = zerolog.DebugLevel
	}

	logger = zerolog.New(os.Stderr).Level(level).With().Timestamp().Caller().Logger()

	if dev {
		logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stderr, FormatTimestamp: func(i any) string {
			return time.Now().Format(time.RFC3339)
		}}).Level(level).With().Stack().Logger()
	}

	return logger
}

var _ http.RoundTripper = (*HTTPRequests)(nil)

// HTTPRequests logs every outgoing API call. Credentials are never logged.
type HTTPRequests struct {
	logger zerolog.Logger
	next   http.RoundTripper
}

func NewHTTPRequests(logger zerolog.Logger, next http.RoundTripper) *HTTPRequests {
	if next == nil {
		next = http.DefaultTransport
	}
	return &HTTPRequests{logger: logger, next: next}
}

func (h *HTTPRequests) RoundTrip(req *http.Request) (*http.Response, error) {
	started := time.Now()

	logger := h.logger.With().
		Str("method", req.Method).
		Str("path", req.URL.Path).
		Str("request_id", req.Header.Get("X-Request-ID")).
		Bool("bearer", req.Header.Get("Authorization") != "").
		Logger()

	resp, err := h.next.RoundTrip(req)
	if err != nil {
		logger.Error().
			Err(err).
			Dur("duration", time.Since(started)).
			Msg("http call")

		return resp, err
	}

	event := logger.Debug()
	if resp.StatusCode >= http.StatusInternalServerError {
		event = logger.Warn()
	}

	event.
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(started)).
		Msg("http call")

	return resp, nil
}
