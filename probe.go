package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/corpix/uarand"
	"golang.org/x/net/proxy"
)

// Outcome is the binary verdict for one probe. The zero value is Failed, so
// a ProbeResult is never accidentally optimistic.
type Outcome int

const (
	OutcomeFailed Outcome = iota
	OutcomeWorking
)

// FailReason records why a probe failed. Reasons are diagnostics for the
// logs; the checker branches on Outcome alone.
type FailReason int

const (
	ReasonNone FailReason = iota
	ReasonTransport
	ReasonBadStatus
	ReasonNoMarker
)

func (r FailReason) String() string {
	switch r {
	case ReasonTransport:
		return "transport error"
	case ReasonBadStatus:
		return "bad status"
	case ReasonNoMarker:
		return "no origin marker"
	default:
		return "none"
	}
}

// ProbeResult carries the verdict for one endpoint. The endpoint rides
// along with it, so aggregation never depends on dispatch order.
type ProbeResult struct {
	Endpoint Endpoint
	Outcome  Outcome
	Reason   FailReason
	Err      error
	Latency  time.Duration
}

func (r ProbeResult) Working() bool { return r.Outcome == OutcomeWorking }

// maxEchoBody caps how much of the test-target response is read. The origin
// echo is a few dozen bytes; a proxy that answers with a full ad page must
// not be read to the end.
const maxEchoBody = 8 << 10

// probe issues the single validation request for one candidate: a GET to
// the test target routed through the endpoint. Every failure mode, from a
// refused connection to a 200 that is not the origin echo, normalizes to
// OutcomeFailed with the reason kept on the result. It never returns an
// error.
func (c *Checker) probe(ctx context.Context, ep Endpoint) ProbeResult {
	res := ProbeResult{Endpoint: ep}

	client, err := c.proxyClient(ep)
	if err != nil {
		res.Reason, res.Err = ReasonTransport, err
		return res
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.testURL, nil)
	if err != nil {
		res.Reason, res.Err = ReasonTransport, err
		return res
	}
	req.Header.Set("User-Agent", uarand.GetRandom())

	start := time.Now()
	resp, err := client.Do(req)
	res.Latency = time.Since(start)
	if err != nil {
		res.Reason, res.Err = ReasonTransport, err
		return res
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		res.Reason = ReasonBadStatus
		res.Err = fmt.Errorf("status %d", resp.StatusCode)
		return res
	}

	var echo struct {
		Origin string `json:"origin"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxEchoBody)).Decode(&echo); err != nil || echo.Origin == "" {
		res.Reason, res.Err = ReasonNoMarker, err
		return res
	}

	res.Outcome = OutcomeWorking
	return res
}

// proxyClient builds the short-lived client that routes through ep. Each
// probe owns its own client, with keep-alives off, so no connection state
// leaks between candidates.
func (c *Checker) proxyClient(ep Endpoint) (*http.Client, error) {
	transport := &http.Transport{DisableKeepAlives: true}

	switch c.protocol {
	case ProtocolHTTP:
		u, err := url.Parse("http://" + ep.String())
		if err != nil {
			return nil, err
		}
		transport.Proxy = http.ProxyURL(u)
	case ProtocolSOCKS5:
		d, err := proxy.SOCKS5("tcp", ep.String(), nil, &net.Dialer{Timeout: c.timeout})
		if err != nil {
			return nil, err
		}
		if cd, ok := d.(proxy.ContextDialer); ok {
			transport.DialContext = cd.DialContext
		} else {
			transport.Dial = d.Dial
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrProtocol, c.protocol)
	}

	return &http.Client{Transport: transport, Timeout: c.timeout}, nil
}
