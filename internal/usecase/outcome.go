package usecase

import (
	"context"
	"errors"

	"chat-relay/internal/integrations/upstream"
)

// Outcome classifies a single provider call.
type Outcome string

const (
	OutcomeOK            Outcome = "ok"
	OutcomeNotConfigured Outcome = "not_configured"
	OutcomeStatus        Outcome = "upstream_status"
	OutcomeMalformed     Outcome = "malformed_response"
	OutcomeNoText        Outcome = "empty_text"
	OutcomeCanceled      Outcome = "canceled"
	OutcomeNetwork       Outcome = "network_error"
)

type httpStatusCoder interface {
	HTTPStatusCode() int
}

func classify(err error) Outcome {
	if err == nil {
		return OutcomeOK
	}
	var (
		statusErr httpStatusCoder
		decodeErr *upstream.DecodeError
	)
	switch {
	case errors.Is(err, upstream.ErrNotConfigured):
		return OutcomeNotConfigured
	case errors.As(err, &statusErr):
		return OutcomeStatus
	case errors.As(err, &decodeErr):
		return OutcomeMalformed
	case errors.Is(err, upstream.ErrNoText):
		return OutcomeNoText
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return OutcomeCanceled
	default:
		return OutcomeNetwork
	}
}

func upstreamStatusCode(err error) (int, bool) {
	var statusErr httpStatusCoder
	if !errors.As(err, &statusErr) {
		return 0, false
	}
	return statusErr.HTTPStatusCode(), true
}
