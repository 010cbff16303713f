package narrative

import (
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/openai/openai-go"

	"StockLens/internal/services/upstream"
	xhttp "StockLens/pkg/http"
)

const retryStep = 200 * time.Millisecond

// chatPolicy fills the OpenAI failure classifier into p.
func chatPolicy(p upstream.Policy) upstream.Policy {
	if p.Step <= 0 {
		p.Step = retryStep
	}
	if p.Retryable == nil {
		p.Retryable = retryableChat
	}
	if p.RetryAfter == nil {
		p.RetryAfter = chatRetryAfter
	}
	return p
}

// retryableChat accepts throttling, server-side API errors and network faults.
func retryableChat(err error) bool {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		code := apiErr.StatusCode
		return code == http.StatusTooManyRequests || code == http.StatusRequestTimeout || code >= 500
	}
	var opErr *net.OpError
	return errors.As(err, &opErr)
}

func chatRetryAfter(err error) time.Duration {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) && apiErr.Response != nil {
		return xhttp.ParseRetryAfter(apiErr.Response.Header.Get("Retry-After"), time.Now())
	}
	return 0
}
