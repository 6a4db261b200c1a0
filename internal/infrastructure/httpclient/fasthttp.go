package httpclient

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"market_aggregator/internal/domain/entity"

	jsoniter "github.com/json-iterator/go"
	"github.com/valyala/fasthttp"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	// maxErrorBodyLen caps how much of an error body ends up in errors and logs.
	maxErrorBodyLen = 512
	maxRedirects    = 5
	fallbackTimeout = 10 * time.Second
)

// doGet performs a GET bounded by timeout or the context deadline, whichever comes first.
// Redirects are followed. A non-2xx status is reported as entity.ErrUpstream.
func doGet(ctx context.Context, client *fasthttp.Client, requestURL string, headers map[string]string, timeout time.Duration) ([]byte, error) {
	if timeout <= 0 {
		timeout = fallbackTimeout
	}
	deadline := time.Now().Add(timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	current := requestURL
	for hop := 0; ; hop++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		req.Reset()
		resp.Reset()
		req.SetRequestURI(current)
		req.Header.SetMethod(fasthttp.MethodGet)
		req.Header.Set("Accept", "application/json")
		for k, v := range headers {
			req.Header.Set(k, v)
		}

		if err := client.DoDeadline(req, resp, deadline); err != nil {
			if errors.Is(err, fasthttp.ErrTimeout) {
				return nil, fmt.Errorf("request to %s: %w", requestURL, entity.ErrTimeout)
			}
			return nil, fmt.Errorf("failed to execute request to %s: %w", requestURL, err)
		}

		status := resp.StatusCode()
		if fasthttp.StatusCodeIsRedirect(status) && hop < maxRedirects {
			next, err := resolveLocation(current, string(resp.Header.Peek(fasthttp.HeaderLocation)))
			if err != nil {
				return nil, fmt.Errorf("%w: bad redirect from %s: %v", entity.ErrUpstream, current, err)
			}
			current = next
			continue
		}

		body := append([]byte(nil), resp.Body()...)
		if status < 200 || status >= 300 {
			return nil, fmt.Errorf("%w: %s responded with status %d: %s", entity.ErrUpstream, requestURL, status, truncate(body))
		}
		return body, nil
	}
}

func resolveLocation(base, location string) (string, error) {
	if location == "" {
		return "", errors.New("empty Location header")
	}
	b, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	l, err := url.Parse(location)
	if err != nil {
		return "", err
	}
	return b.ResolveReference(l).String(), nil
}

func truncate(b []byte) string {
	if len(b) > maxErrorBodyLen {
		return string(b[:maxErrorBodyLen]) + "..."
	}
	return string(b)
}
