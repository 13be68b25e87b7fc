package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"chat-relay/internal/integrations/upstream"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want Outcome
	}{
		{name: "nil", err: nil, want: OutcomeOK},
		{name: "not configured", err: upstream.ErrNotConfigured, want: OutcomeNotConfigured},
		{name: "status", err: fmt.Errorf("gemini: %w", &upstream.StatusError{StatusCode: 500}), want: OutcomeStatus},
		{name: "decode", err: fmt.Errorf("openai: %w", &upstream.DecodeError{Err: errors.New("bad")}), want: OutcomeMalformed},
		{name: "no text", err: fmt.Errorf("huggingface: %w", upstream.ErrNoText), want: OutcomeNoText},
		{name: "canceled", err: fmt.Errorf("upstream: request failed: %w", context.Canceled), want: OutcomeCanceled},
		{name: "deadline", err: fmt.Errorf("upstream: request failed: %w", context.DeadlineExceeded), want: OutcomeCanceled},
		{name: "network", err: errors.New("dial tcp: connection refused"), want: OutcomeNetwork},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, classify(tc.err))
		})
	}
}

func TestUpstreamStatusCode(t *testing.T) {
	status, ok := upstreamStatusCode(fmt.Errorf("wrap: %w", &upstream.StatusError{StatusCode: 429}))
	require.True(t, ok)
	require.Equal(t, 429, status)

	_, ok = upstreamStatusCode(errors.New("plain"))
	require.False(t, ok)
}

func TestCorrelationID(t *testing.T) {
	require.Empty(t, CorrelationID(context.Background()))
	require.Equal(t, "abc", CorrelationID(WithCorrelationID(context.Background(), "abc")))
}
