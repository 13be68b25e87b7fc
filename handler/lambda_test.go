package handler

import (
	"context"
	"encoding/base64"
	"net/http"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/require"

	"chat-relay/internal/domain"
)

func makeEvent(method, path, body string) events.APIGatewayProxyRequest {
	return events.APIGatewayProxyRequest{
		HTTPMethod: method,
		Path:       path,
		Headers:    map[string]string{"content-type": "application/json"},
		Body:       body,
	}
}

func newTestAdapter(t *testing.T, d Dispatcher) *LambdaAdapter {
	t.Helper()
	a, err := NewLambdaAdapter(newTestHandler(t, d))
	require.NoError(t, err)
	return a
}

func TestNewLambdaAdapter_ValidatesDependency(t *testing.T) {
	_, err := NewLambdaAdapter(nil)
	require.Error(t, err)
}

func TestLambda_Chat(t *testing.T) {
	d := &stubDispatcher{out: "hello"}
	a := newTestAdapter(t, d)

	resp, err := a.Handle(context.Background(), makeEvent(http.MethodPost, "/api/chat", `{"message":"What do you do?"}`))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.False(t, resp.IsBase64Encoded)
	require.Equal(t, []string{"What do you do?"}, d.messages)
	require.Equal(t, "hello", parseBody[domain.ChatResponse](t, resp.Body).Response)
	require.NotEmpty(t, resp.Headers["X-Correlation-Id"])
}

func TestLambda_UsesProvidedCorrelationID_CaseInsensitive(t *testing.T) {
	d := &stubDispatcher{out: "ok"}
	a := newTestAdapter(t, d)

	event := makeEvent(http.MethodPost, "/api/chat", `{"message":"hi"}`)
	event.Headers["x-correlation-id"] = "corr-123"
	event.RequestContext.RequestID = "apigw-req"
	resp, err := a.Handle(context.Background(), event)
	require.NoError(t, err)
	require.Equal(t, "corr-123", resp.Headers["X-Correlation-Id"])
	require.Equal(t, []string{"corr-123"}, d.corrIDs)
}

func TestLambda_FallsBackToGatewayRequestID(t *testing.T) {
	d := &stubDispatcher{out: "ok"}
	a := newTestAdapter(t, d)

	event := makeEvent(http.MethodPost, "/api/chat", `{"message":"hi"}`)
	event.RequestContext.RequestID = "apigw-req"
	resp, err := a.Handle(context.Background(), event)
	require.NoError(t, err)
	require.Equal(t, "apigw-req", resp.Headers["X-Correlation-Id"])
}

func TestLambda_Base64Body(t *testing.T) {
	d := &stubDispatcher{out: "ok"}
	a := newTestAdapter(t, d)

	event := makeEvent(http.MethodPost, "/api/chat", base64.StdEncoding.EncodeToString([]byte(`{"message":"encoded"}`)))
	event.IsBase64Encoded = true
	_, err := a.Handle(context.Background(), event)
	require.NoError(t, err)
	require.Equal(t, []string{"encoded"}, d.messages)

	event.Body = "%%%"
	_, err = a.Handle(context.Background(), event)
	require.ErrorContains(t, err, "base64")
}

func TestLambda_StaticPage(t *testing.T) {
	a := newTestAdapter(t, &stubDispatcher{})

	resp, err := a.Handle(context.Background(), makeEvent(http.MethodGet, "/marketing", ""))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, resp.Body, "marketing page")
}

func TestLambda_GzipResponseIsBase64(t *testing.T) {
	a := newTestAdapter(t, &stubDispatcher{})

	event := makeEvent(http.MethodGet, "/", "")
	event.MultiValueHeaders = map[string][]string{"Accept-Encoding": {"gzip"}}
	resp, err := a.Handle(context.Background(), event)
	require.NoError(t, err)
	require.Equal(t, "gzip", resp.Headers["Content-Encoding"])
	require.True(t, resp.IsBase64Encoded)
	_, err = base64.StdEncoding.DecodeString(resp.Body)
	require.NoError(t, err)
}

func TestQueryString(t *testing.T) {
	event := events.APIGatewayProxyRequest{
		QueryStringParameters:           map[string]string{"a": "1", "b": "2"},
		MultiValueQueryStringParameters: map[string][]string{"a": {"1", "3"}},
	}
	require.Equal(t, "a=1&a=3&b=2", queryString(event))
}
