package discord

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
)

// RESTTransport sends raw API requests through a session so they share its
// authentication and rate limit buckets.
type RESTTransport struct {
	Session *discordgo.Session
}

func (t RESTTransport) Request(ctx context.Context, method, path string, body any) error {
	url := discordgo.EndpointAPI + strings.TrimPrefix(path, "/")
	_, err := t.Session.RequestWithBucketID(method, url, body, url, discordgo.WithContext(ctx))
	return wrapREST(err)
}

// APIError exposes the status of a failed REST call to retry classifiers.
type APIError struct {
	Err *discordgo.RESTError
}

func (e *APIError) Error() string { return e.Err.Error() }
func (e *APIError) Unwrap() error { return e.Err }

func (e *APIError) StatusCode() int {
	if e.Err.Response == nil {
		return 0
	}
	return e.Err.Response.StatusCode
}

// RetryAfter is the server's Retry-After hint, or zero.
func (e *APIError) RetryAfter() time.Duration {
	if e.Err.Response == nil {
		return 0
	}
	secs, err := strconv.ParseFloat(e.Err.Response.Header.Get("Retry-After"), 64)
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs * float64(time.Second))
}

// Retryable reports whether the request may succeed if repeated.
func (e *APIError) Retryable() bool {
	code := e.StatusCode()
	return code == http.StatusTooManyRequests || code >= 500 || code == 0
}

func wrapREST(err error) error {
	var re *discordgo.RESTError
	if errors.As(err, &re) {
		return &APIError{Err: re}
	}
	return err
}
