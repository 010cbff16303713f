package yahoo

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	xhttp "StockLens/pkg/http"
)

const (
	DefaultCookieURL = "https://fc.yahoo.com"
	crumbPath        = "/v1/test/getcrumb"
)

// crumbSession obtains the session cookie and the crumb that quoteSummary and
// options require. The cookie lives in the client's jar; the crumb is cached
// until Yahoo rejects it.
type crumbSession struct {
	hc        *xhttp.Client
	cookieURL string
	crumbURL  string

	mu    sync.Mutex
	crumb string
}

func (s *crumbSession) get(ctx context.Context, refresh bool) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.crumb != "" && !refresh {
		return s.crumb, nil
	}
	s.crumb = ""

	// the cookie endpoint sets the session cookie whatever status it answers with
	resp, err := s.hc.SendRequest(ctx, &xhttp.RequestOptions{URL: s.cookieURL})
	if err != nil {
		return "", fmt.Errorf("yahoo cookie: %w", err)
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
	_ = resp.Body.Close()

	var raw []byte
	if err := s.hc.SendAndParse(ctx, &xhttp.RequestOptions{URL: s.crumbURL}, &raw); err != nil {
		return "", fmt.Errorf("yahoo crumb: %w", err)
	}
	crumb := strings.TrimSpace(string(raw))
	if crumb == "" || len(crumb) > 64 || strings.ContainsAny(crumb, "<>{} \n") {
		return "", fmt.Errorf("yahoo crumb: unexpected body of %d bytes", len(raw))
	}
	s.crumb = crumb
	return crumb, nil
}

// withCrumb runs call with the cached crumb, fetching a fresh one and trying
// once more when Yahoo answers 401.
func (c *Client) withCrumb(ctx context.Context, call func(crumb string) error) error {
	crumb, err := c.session.get(ctx, false)
	if err != nil {
		return err
	}
	err = call(crumb)
	if !xhttp.IsStatus(err, http.StatusUnauthorized) {
		return err
	}
	if crumb, err = c.session.get(ctx, true); err != nil {
		return err
	}
	return call(crumb)
}
