package httputil

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/matzehuels/navtree/pkg/errors"
)

// maxErrorBody bounds how much of an error response is read.
const maxErrorBody = 64 << 10

// ErrorBody is the JSON error document written by the navtree server.
type ErrorBody struct {
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
}

// CheckStatus returns nil for 2xx responses and a coded error otherwise.
//
// When the body carries an [ErrorBody], its code and message are kept.
// Statuses accepted by [RetryableStatus] are wrapped in [RetryableError]. The body is read
// but not closed.
func CheckStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	var body ErrorBody
	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if json.Unmarshal(data, &body) != nil || body.Code == "" {
		body = ErrorBody{
			Code:    errors.FromHTTPStatus(resp.StatusCode),
			Message: http.StatusText(resp.StatusCode),
		}
	}

	var target string
	if resp.Request != nil {
		target = resp.Request.Method + " " + resp.Request.URL.Path + ": "
	}
	err := errors.New(body.Code, "%s%s (status %d)", target, body.Message, resp.StatusCode)

	if resp.StatusCode == http.StatusTooManyRequests {
		retryAfter, _ := strconv.Atoi(resp.Header.Get("Retry-After"))
		err = errors.Wrap(errors.ErrCodeRateLimited,
			&errors.RateLimitedError{RetryAfter: retryAfter, Message: body.Message}, "%s", err.Message)
	}
	if RetryableStatus(resp.StatusCode) {
		return &RetryableError{Err: err}
	}
	return err
}
