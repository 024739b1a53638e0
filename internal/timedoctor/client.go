// Package timedoctor is a small client for the parts of the Time Doctor REST
// API used by the reports: login, users and groups, worklogs and statistics.
package timedoctor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/BalanceBalls/timedoctor-reports/internal/logger"
)

const (
	DefaultBaseUrl = "https://api2.timedoctor.com"
	apiPrefix      = "/api/1.0"
	deviceId       = "nodejs"
)

type Options struct {
	BaseUrl string
	// Timeout bounds every HTTP call. Zero means no timeout.
	Timeout time.Duration
	// PageDelay is the minimum gap between two consecutive page requests.
	PageDelay time.Duration
	PageLimit int
}

type Client struct {
	baseUrl     string
	client      *http.Client
	pageLimiter *rate.Limiter
	pageLimit   int
}

func NewClient(opts Options) *Client {
	if opts.BaseUrl == "" {
		opts.BaseUrl = DefaultBaseUrl
	}
	if opts.PageLimit <= 0 {
		opts.PageLimit = 200
	}

	limit := rate.Inf
	if opts.PageDelay > 0 {
		limit = rate.Every(opts.PageDelay)
	}

	return &Client{
		baseUrl:     strings.TrimRight(opts.BaseUrl, "/"),
		client:      &http.Client{Timeout: opts.Timeout},
		pageLimiter: rate.NewLimiter(limit, 1),
		pageLimit:   opts.PageLimit,
	}
}

// get performs an authenticated GET and decodes the response envelope.
func get[T any](ctx context.Context, c *Client, s Session, endpointPath string, params url.Values) (envelope[T], error) {
	if params == nil {
		params = url.Values{}
	}
	params.Set("token", s.Token)

	var env envelope[T]
	if err := c.doRequest(ctx, http.MethodGet, endpointPath, params, nil, &env); err != nil {
		return envelope[T]{}, err
	}
	return env, nil
}

func (c *Client) doRequest(ctx context.Context, method string, endpointPath string, params url.Values, body any, out any) error {
	logger := logger.GetFromContext(ctx)
	endpoint := apiPrefix + endpointPath

	reqErr := func(status int, message string, err error) error {
		return &RequestError{
			Method:     method,
			Endpoint:   endpoint,
			StatusCode: status,
			Message:    message,
			Err:        err,
		}
	}

	var bodyReader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return reqErr(0, "", fmt.Errorf("could not encode request body: %w", err))
		}
		bodyReader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseUrl+endpoint, bodyReader)
	if err != nil {
		return reqErr(0, "", fmt.Errorf("could not construct request: %w", err))
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if params != nil {
		req.URL.RawQuery = params.Encode()
	}

	started := time.Now()
	res, err := c.client.Do(req)
	if err != nil {
		logger.ErrorContext(ctx, "http request failed", "method", method, "endpoint", endpoint, "error", err)
		return reqErr(0, "", err)
	}
	defer res.Body.Close()

	logger.DebugContext(ctx, "http request finished",
		"method", method,
		"endpoint", endpoint,
		"status_code", res.StatusCode,
		"elapsed", time.Since(started))

	resBody, err := io.ReadAll(res.Body)
	if err != nil {
		return reqErr(res.StatusCode, "", fmt.Errorf("failed to read response body: %w", err))
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return reqErr(res.StatusCode, serverMessage(resBody), nil)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(resBody, out); err != nil {
		return reqErr(res.StatusCode, "", fmt.Errorf("could not parse response data: %w", err))
	}

	return nil
}

func serverMessage(body []byte) string {
	var errRes errorResponse
	if err := json.Unmarshal(body, &errRes); err == nil {
		if errRes.Message != "" {
			return errRes.Message
		}
		if errRes.Error != "" {
			return errRes.Error
		}
	}

	msg := strings.TrimSpace(string(body))
	if len(msg) > 200 {
		msg = msg[:200]
	}
	return msg
}
