package main

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// Configuration errors, surfaced before any probe is dispatched.
var (
	ErrWorkerCount = errors.New("worker count must be positive")
	ErrProtocol    = errors.New("unsupported proxy protocol")
)

// Checker validates candidate proxies with bounded concurrency: at most
// workers probes are in flight at any instant, no matter how large the
// candidate set is. Construct with NewChecker.
type Checker struct {
	timeout  time.Duration
	workers  int
	testURL  string
	protocol string

	// OnResult, when set, observes every ProbeResult as it is collected.
	// It is called from a single goroutine, in completion order.
	OnResult func(ProbeResult)

	probeFunc func(context.Context, Endpoint) ProbeResult
}

// Report is the outcome of one validation run.
type Report struct {
	Working    []Endpoint // confirmed endpoints, in completion order
	Candidates int        // unique well-formed candidates
	Skipped    int        // malformed entries excluded before probing
	Failed     int        // probed and not working
	Dropped    int        // never dispatched, cancelled runs only
	Elapsed    time.Duration
}

// NewChecker builds a Checker from cfg. The relevant settings are copied,
// so later changes to cfg do not affect the checker.
func NewChecker(cfg Config) *Checker {
	c := &Checker{
		timeout:  cfg.Timeout(),
		workers:  cfg.Workers,
		testURL:  cfg.TestURL,
		protocol: cfg.Protocol,
	}
	c.probeFunc = c.probe
	return c
}

// Check probes every well-formed candidate and reports the working subset.
// Malformed candidates are counted in the report, never probed; duplicates
// collapse. Each candidate gets exactly one outcome and a slow or dead
// proxy only ever costs its own timeout. The worker pool lives and dies
// with this call; concurrent Check calls do not share anything.
//
// Cancelling ctx stops dispatch: candidates not yet handed to a worker are
// counted as Dropped, in-flight probes abort with the context, and the
// partial report is returned together with the context's error.
func (c *Checker) Check(ctx context.Context, candidates []string) (*Report, error) {
	if c.workers <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrWorkerCount, c.workers)
	}
	if !validProtocol(c.protocol) {
		return nil, fmt.Errorf("%w: %q", ErrProtocol, c.protocol)
	}

	endpoints, skipped := ParseEndpoints(candidates)
	report := &Report{Skipped: skipped, Candidates: len(endpoints)}
	if len(endpoints) == 0 {
		return report, nil
	}

	start := time.Now()
	workers := c.workers
	if workers > len(endpoints) {
		workers = len(endpoints)
	}
	log.Debugf("checking %d proxies with %d workers over %s", len(endpoints), workers, c.protocol)

	jobs := make(chan Endpoint)
	results := make(chan ProbeResult)

	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for ep := range jobs {
				results <- c.probeFunc(ctx, ep)
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, ep := range endpoints {
			select {
			case jobs <- ep:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	for res := range results {
		if res.Working() {
			report.Working = append(report.Working, res.Endpoint)
		} else {
			report.Failed++
		}
		if c.OnResult != nil {
			c.OnResult(res)
		}
	}

	report.Dropped = report.Candidates - len(report.Working) - report.Failed
	report.Elapsed = time.Since(start)
	log.Debugf("check finished in %s: %d working, %d failed, %d dropped",
		report.Elapsed.Round(time.Millisecond), len(report.Working), report.Failed, report.Dropped)

	return report, ctx.Err()
}
