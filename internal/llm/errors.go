package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrRateLimit indicates the provider returned a rate limit error (429).
type ErrRateLimit struct {
	RetryAfter time.Duration
	Err        error
}

func (e *ErrRateLimit) Error() string {
	return fmt.Sprintf("rate limited (retry after %s): %v", e.RetryAfter, e.Err)
}

func (e *ErrRateLimit) Unwrap() error { return e.Err }

// parseRetryAfter reads a Retry-After header given in whole seconds.
// Anything else yields zero, leaving the wait to the backoff policy.
func parseRetryAfter(v string) time.Duration {
	secs, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}

// ErrInvalidResponse indicates the LLM returned content that does not
// conform to the requested schema.
type ErrInvalidResponse struct {
	Content json.RawMessage
	Err     error
}

func (e *ErrInvalidResponse) Error() string {
	return fmt.Sprintf("invalid LLM response: %v", e.Err)
}

func (e *ErrInvalidResponse) Unwrap() error { return e.Err }

// ErrProviderUnavailable indicates the provider is down or unreachable.
type ErrProviderUnavailable struct {
	Err error
}

func (e *ErrProviderUnavailable) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("LLM provider unavailable: %v", e.Err)
	}
	return "LLM provider unavailable"
}

func (e *ErrProviderUnavailable) Unwrap() error { return e.Err }

// ErrMaxTokensExceeded indicates the response was truncated because it
// hit the MaxTokens limit.
type ErrMaxTokensExceeded struct {
	Content json.RawMessage
}

func (e *ErrMaxTokensExceeded) Error() string {
	return "LLM response truncated: max tokens exceeded"
}

// ErrService is a transport or HTTP-level failure talking to a model
// service. Service names the role that failed ("generation", "audit").
type ErrService struct {
	Service string
	Err     error
}

func (e *ErrService) Error() string {
	return fmt.Sprintf("%s service error: %v", e.Service, e.Err)
}

func (e *ErrService) Unwrap() error { return e.Err }

// ErrTimeout indicates a single request exceeded its per-call deadline
// while the caller's context was still live.
type ErrTimeout struct {
	After time.Duration
}

func (e *ErrTimeout) Error() string {
	return fmt.Sprintf("request timed out after %s", e.After)
}

// ErrEmptyResponse indicates the service answered but returned no usable
// text.
type ErrEmptyResponse struct {
	Service string
}

func (e *ErrEmptyResponse) Error() string {
	return fmt.Sprintf("%s service returned an empty response", e.Service)
}

// AsServiceError classifies a provider error for the given service.
// Context errors pass through unchanged only while ctx itself is done, so
// a transport-level deadline on a live ctx counts as a service failure.
// Everything else becomes *ErrService.
func AsServiceError(ctx context.Context, service string, err error) error {
	if err == nil {
		return nil
	}
	if ctx.Err() != nil && (errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)) {
		return err
	}
	var svc *ErrService
	if errors.As(err, &svc) {
		return err
	}
	return &ErrService{Service: service, Err: err}
}

// IsInfrastructure reports whether err is a service-side failure
// (ErrService or ErrEmptyResponse) rather than a content problem.
func IsInfrastructure(err error) bool {
	var svc *ErrService
	var empty *ErrEmptyResponse
	return errors.As(err, &svc) || errors.As(err, &empty)
}
