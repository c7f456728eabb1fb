// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides HTTP helpers shared by capability adapters.
package httputil

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/sethvargo/go-retry"
)

// RetryBaseDelay controls the base duration for exponential backoff on
// throttled responses. Tests override this to avoid real sleeps.
var RetryBaseDelay = 1 * time.Second

const defaultMaxRetries = 5

var errThrottled = errors.New("throttled")

// Retryable reports whether a status code is worth retrying: 429 (Too Many
// Requests) and 503 (Service Unavailable).
func Retryable(status int) bool {
	return status == http.StatusTooManyRequests || status == http.StatusServiceUnavailable
}

// DoWithRetry executes an HTTP request and retries throttled responses with
// exponential backoff starting at RetryBaseDelay and doubling each attempt.
//
// When maxRetries is 0 the default (5) is used. The body of each throttled
// response is drained and closed before sleeping. If the context is cancelled
// during a backoff wait the function returns ctx.Err(). After exhausting
// retries the last throttled response is returned so the caller can inspect it.
func DoWithRetry(ctx context.Context, client *http.Client, req *http.Request, maxRetries int) (*http.Response, error) {
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}
	if client == nil {
		client = http.DefaultClient
	}

	backoff := retry.WithMaxRetries(uint64(maxRetries), retry.NewExponential(RetryBaseDelay))

	var (
		resp    *http.Response
		attempt int
	)
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		r, err := client.Do(cloneRequest(ctx, req))
		if err != nil {
			return err
		}
		if !Retryable(r.StatusCode) || attempt >= maxRetries {
			resp = r
			return nil
		}
		attempt++

		io.Copy(io.Discard, r.Body)
		r.Body.Close()
		return retry.RetryableError(errThrottled)
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// cloneRequest copies req onto ctx and rewinds its body when possible.
func cloneRequest(ctx context.Context, req *http.Request) *http.Request {
	c := req.Clone(ctx)
	if req.GetBody != nil {
		if body, err := req.GetBody(); err == nil {
			c.Body = body
		}
	}
	return c
}
