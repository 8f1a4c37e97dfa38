package httputil

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	navErrors "github.com/matzehuels/navtree/pkg/errors"
)

func TestRetry(t *testing.T) {
	reset := errors.New("connection reset")
	transient := &RetryableError{Err: reset}
	permanent := errors.New("bad request")

	tests := []struct {
		name      string
		attempts  int
		failures  []error
		wantCalls int
		wantErr   error
	}{
		{"success first try", 3, nil, 1, nil},
		{"recovers after transient", 3, []error{transient, transient}, 3, nil},
		{"gives up after attempts", 2, []error{transient, transient, transient}, 2, reset},
		{"permanent stops immediately", 3, []error{permanent}, 1, permanent},
		{"zero attempts runs once", 0, []error{transient}, 1, reset},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			err := Retry(context.Background(), tt.attempts, time.Millisecond, func() error {
				defer func() { calls++ }()
				if calls < len(tt.failures) {
					return tt.failures[calls]
				}
				return nil
			})
			if calls != tt.wantCalls {
				t.Errorf("calls = %d, want %d", calls, tt.wantCalls)
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
			if IsRetryable(err) {
				t.Errorf("err = %v still marked retryable", err)
			}
		})
	}
}

func TestRetryableStatus(t *testing.T) {
	tests := []struct {
		status int
		want   bool
	}{
		{http.StatusOK, false},
		{http.StatusBadRequest, false},
		{http.StatusNotFound, false},
		{http.StatusRequestTimeout, true},
		{http.StatusConflict, false},
		{http.StatusUnprocessableEntity, false},
		{http.StatusTooManyRequests, true},
		{http.StatusInternalServerError, true},
		{http.StatusNotImplemented, false},
		{http.StatusBadGateway, true},
		{http.StatusServiceUnavailable, true},
		{http.StatusGatewayTimeout, true},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			if got := RetryableStatus(tt.status); got != tt.want {
				t.Errorf("RetryableStatus(%d) = %v, want %v", tt.status, got, tt.want)
			}
		})
	}
}

func TestTransportError(t *testing.T) {
	refused := errors.New("connection refused")
	cancelled, cancel := context.WithCancel(context.Background())
	cancel()

	tests := []struct {
		name      string
		ctx       context.Context
		want      navErrors.Code
		retryable bool
	}{
		{"network failure", context.Background(), navErrors.ErrCodeNetwork, true},
		{"context ended", cancelled, navErrors.ErrCodeTimeout, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := TransportError(tt.ctx, refused, "DELETE /reports/x")
			if !navErrors.Is(err, tt.want) {
				t.Errorf("code = %s, want %s", navErrors.GetCode(err), tt.want)
			}
			if IsRetryable(err) != tt.retryable {
				t.Errorf("IsRetryable = %v, want %v", IsRetryable(err), tt.retryable)
			}
			if !errors.Is(err, refused) || !strings.Contains(err.Error(), "DELETE /reports/x") {
				t.Errorf("err = %v", err)
			}
		})
	}
}

func TestRetryCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := Retry(ctx, 5, time.Hour, func() error {
		calls++
		cancel()
		return &RetryableError{Err: errors.New("unavailable")}
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestCheckStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok":
			w.WriteHeader(http.StatusNoContent)
		case "/coded":
			w.WriteHeader(http.StatusUnprocessableEntity)
			io.WriteString(w, `{"code":"ORPHAN_ENTRY","message":"entry x has no parent"}`)
		case "/missing":
			http.NotFound(w, r)
		case "/unsupported":
			w.WriteHeader(http.StatusNotImplemented)
		case "/slow":
			w.WriteHeader(http.StatusRequestTimeout)
		case "/busy":
			w.Header().Set("Retry-After", "7")
			w.WriteHeader(http.StatusTooManyRequests)
		default:
			w.WriteHeader(http.StatusBadGateway)
		}
	}))
	defer srv.Close()

	get := func(path string) error {
		resp, err := http.Get(srv.URL + path)
		if err != nil {
			t.Fatalf("GET %s: %v", path, err)
		}
		defer resp.Body.Close()
		return CheckStatus(resp)
	}

	if err := get("/ok"); err != nil {
		t.Errorf("/ok: %v", err)
	}

	err := get("/coded")
	if !navErrors.Is(err, navErrors.ErrCodeOrphanEntry) || IsRetryable(err) {
		t.Errorf("/coded: %v", err)
	}
	if !strings.Contains(err.Error(), "entry x has no parent") {
		t.Errorf("/coded message lost: %v", err)
	}

	if err := get("/missing"); !navErrors.Is(err, navErrors.ErrCodeNotFound) || IsRetryable(err) {
		t.Errorf("/missing: %v", err)
	}

	err = get("/busy")
	var rl *navErrors.RateLimitedError
	if !IsRetryable(err) || !errors.As(err, &rl) || rl.RetryAfter != 7 {
		t.Errorf("/busy: %v", err)
	}

	if err := get("/unsupported"); !navErrors.Is(err, navErrors.ErrCodeUnsupported) || IsRetryable(err) {
		t.Errorf("/unsupported: %v", err)
	}
	if err := get("/slow"); !navErrors.Is(err, navErrors.ErrCodeTimeout) || !IsRetryable(err) {
		t.Errorf("/slow: %v", err)
	}

	if err := get("/down"); !IsRetryable(err) || !navErrors.Is(err, navErrors.ErrCodeNetwork) {
		t.Errorf("/down: %v", err)
	}
}
