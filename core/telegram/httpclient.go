package telegram

import (
	"errors"
	"net"
	"net/http"
	"syscall"
	"time"

	"github.com/examscores/scorebot/core/netutil"
)

// HTTPClientOptions tunes BuildHTTPClient. Zero values get defaults.
type HTTPClientOptions struct {
	Timeout     time.Duration
	DialRetries int
	DialBackoff time.Duration
}

// BuildHTTPClient returns the client used for Bot API calls. Connection
// failures that happen before a request is written are retried; anything
// later is left to the sender so a message is never posted twice by the transport.
func BuildHTTPClient(opts HTTPClientOptions) *http.Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.DialRetries <= 0 {
		opts.DialRetries = 3
	}
	if opts.DialBackoff <= 0 {
		opts.DialBackoff = time.Second
	}
	base := netutil.NewTransport(netutil.TransportOptions{})
	return &http.Client{
		Timeout:   opts.Timeout,
		Transport: &dialRetry{next: base, retries: opts.DialRetries, backoff: opts.DialBackoff},
	}
}

type dialRetry struct {
	next    http.RoundTripper
	retries int
	backoff time.Duration
}

func (t *dialRetry) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.next.RoundTrip(req)
	for attempt := 1; err != nil && attempt <= t.retries && notSent(err); attempt++ {
		if req.Body != nil && req.GetBody == nil {
			return nil, err
		}
		timer := time.NewTimer(t.backoff * time.Duration(attempt))
		select {
		case <-req.Context().Done():
			timer.Stop()
			return nil, req.Context().Err()
		case <-timer.C:
		}
		retry := req.Clone(req.Context())
		if req.GetBody != nil {
			body, berr := req.GetBody()
			if berr != nil {
				return nil, berr
			}
			retry.Body = body
		}
		resp, err = t.next.RoundTrip(retry)
	}
	return resp, err
}

func notSent(err error) bool {
	var dnsErr *net.DNSError
	var opErr *net.OpError
	return errors.As(err, &dnsErr) ||
		(errors.As(err, &opErr) && opErr.Op == "dial") ||
		errors.Is(err, syscall.ECONNREFUSED)
}
