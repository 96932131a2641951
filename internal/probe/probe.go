package probe

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"devstack/internal/metrics"
	"devstack/pkg/logging"
)

// DefaultTimeout is used when a probe is issued without a timeout.
const DefaultTimeout = 2 * time.Second

const maxPayloadBytes = 64 << 10

// HTTPClient is the subset of *http.Client the prober needs.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Result is the outcome of a single probe.
type Result struct {
	// Reachable is true when something answered with an expected status code.
	Reachable bool
	// StatusCode is set whenever an HTTP response was received, expected or not.
	StatusCode int
	Payload    string
	// Diagnostic is kept for error reporting only.
	Diagnostic string
	Latency    time.Duration
}

// Answered reports whether any HTTP response was received.
func (r Result) Answered() bool {
	return r.StatusCode != 0
}

// Request describes one probe.
type Request struct {
	URL     string
	Timeout time.Duration
	Headers map[string]string
	// Expected lists the status codes that count as reachable. Empty means
	// any 2xx or 4xx: the listener is up even if the endpoint rejects us.
	Expected []int
}

// Prober issues HTTP health probes.
type Prober struct {
	client HTTPClient
}

// New creates a Prober with its own http.Client. Per-probe timeouts are
// applied through the request context.
func New() *Prober {
	return &Prober{client: &http.Client{
		Transport: &http.Transport{
			Proxy:               nil,
			DisableKeepAlives:   true,
			MaxIdleConnsPerHost: 1,
		},
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}}
}

// NewWithClient creates a Prober using the given client, mainly for tests.
func NewWithClient(client HTTPClient) *Prober {
	return &Prober{client: client}
}

// ProbeHTTP issues a single GET to url bounded by timeout.
func (p *Prober) ProbeHTTP(ctx context.Context, url string, timeout time.Duration) Result {
	return p.Probe(ctx, Request{URL: url, Timeout: timeout})
}

// Probe issues a single GET described by req. It never returns an error:
// connection refusal, DNS failure and timeouts are all reported as an
// unreachable Result.
func (p *Prober) Probe(ctx context.Context, req Request) Result {
	timeout := req.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, req.URL, nil)
	if err != nil {
		metrics.ProbesTotal.WithLabelValues("unreachable").Inc()
		return Result{Diagnostic: fmt.Sprintf("invalid probe URL %q: %v", req.URL, err)}
	}
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := p.client.Do(httpReq)
	latency := time.Since(start)
	if err != nil {
		diag := err.Error()
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			diag = fmt.Sprintf("no response from %s within %s", req.URL, timeout)
		}
		logging.Debug("Probe", "%s unreachable: %s", req.URL, diag)
		metrics.ProbesTotal.WithLabelValues("unreachable").Inc()
		return Result{Diagnostic: diag, Latency: latency}
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxPayloadBytes))

	result := Result{
		StatusCode: resp.StatusCode,
		Payload:    string(body),
		Latency:    latency,
	}
	if expected(resp.StatusCode, req.Expected) {
		result.Reachable = true
		metrics.ProbesTotal.WithLabelValues("reachable").Inc()
	} else {
		result.Diagnostic = fmt.Sprintf("%s returned status %d", req.URL, resp.StatusCode)
		metrics.ProbesTotal.WithLabelValues("unexpected_status").Inc()
	}

	logging.Debug("Probe", "%s answered %d in %s", req.URL, resp.StatusCode, latency)
	return result
}

func expected(code int, set []int) bool {
	if len(set) == 0 {
		return (code >= 200 && code < 300) || (code >= 400 && code < 500)
	}
	for _, c := range set {
		if c == code {
			return true
		}
	}
	return false
}
