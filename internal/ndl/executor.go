package ndl

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"
)

// execute issues the upstream GET with the configured retry policy and
// returns the raw response body. Every failure path ends in a fully
// populated *ClientError after the attempt budget is spent; retries are
// immediate and invisible to callers.
func (c *Client) execute(ctx context.Context, params url.Values) (string, error) {
	for attempt := 0; ; attempt++ {
		if attempt > 0 {
			c.metrics.incRetry()
		}

		body, statusCode, err := c.attempt(ctx, params)
		if err != nil {
			if isTimeoutError(err) {
				if attempt < c.policy.MaxRetries {
					continue
				}
				return "", c.fail(newTimeoutError(c.policy.TimeoutSeconds))
			}

			retryable := !errors.Is(err, context.Canceled)
			if retryable && attempt < c.policy.MaxRetries {
				continue
			}
			return "", c.fail(newCommunicationError(retryable))
		}

		if statusCode >= 200 && statusCode < 300 {
			return body, nil
		}

		retryable := c.policy.isRetryableStatus(statusCode)
		if retryable && attempt < c.policy.MaxRetries {
			continue
		}
		return "", c.fail(newStatusError(statusCode, retryable))
	}
}

func (c *Client) attempt(ctx context.Context, params url.Values) (string, int, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return "", 0, err
		}
	}

	attemptCtx, cancel := context.WithTimeout(ctx, c.policy.timeout())
	defer cancel()

	requestURL := c.baseURL
	if encoded := params.Encode(); encoded != "" {
		requestURL += "?" + encoded
	}

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodGet, requestURL, nil)
	if err != nil {
		return "", 0, err
	}

	c.metrics.incRequest()
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.observeDuration(time.Since(start).Seconds())
	if err != nil {
		return "", 0, err
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", 0, err
	}
	return string(bodyBytes), resp.StatusCode, nil
}

func (c *Client) fail(clientErr *ClientError) *ClientError {
	if failureType, ok := clientErr.Details["failureType"].(string); ok {
		c.metrics.incFailure(failureType)
	}
	return clientErr
}

func isTimeoutError(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
