package main

import (
	"fmt"
	"regexp"
	"strconv"
)

// endpointPattern is the on-the-wire candidate format: an IPv4 dotted-quad
// and a port. Octets are matched by shape only, so 999.999.999.999:99999
// still parses and gets probed like any other candidate, failing at dial
// time instead of being second-guessed here.
var endpointPattern = regexp.MustCompile(`^(\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3}):(\d+)$`)

// Endpoint is one candidate proxy address.
type Endpoint struct {
	Host string
	Port int
}

func (e Endpoint) String() string {
	return fmt.Sprintf("%s:%d", e.Host, e.Port)
}

// ParseEndpoint validates one raw host:port candidate. The host must be a
// dotted-quad and the port a positive integer; anything else is rejected so
// it never reaches a probe.
func ParseEndpoint(raw string) (Endpoint, error) {
	m := endpointPattern.FindStringSubmatch(raw)
	if m == nil {
		return Endpoint{}, fmt.Errorf("malformed endpoint %q", raw)
	}
	port, err := strconv.Atoi(m[2])
	if err != nil || port <= 0 {
		return Endpoint{}, fmt.Errorf("malformed endpoint %q: bad port", raw)
	}
	return Endpoint{Host: m[1], Port: port}, nil
}

// ParseEndpoints filters raw candidates down to the unique well-formed set,
// keeping first-seen order, and counts how many entries were dropped as
// malformed.
func ParseEndpoints(raw []string) (endpoints []Endpoint, skipped int) {
	seen := make(map[Endpoint]struct{}, len(raw))
	for _, r := range raw {
		ep, err := ParseEndpoint(r)
		if err != nil {
			skipped++
			continue
		}
		if _, dup := seen[ep]; dup {
			continue
		}
		seen[ep] = struct{}{}
		endpoints = append(endpoints, ep)
	}
	return endpoints, skipped
}

func dedupeEndpoints(endpoints []Endpoint) []Endpoint {
	seen := make(map[Endpoint]struct{}, len(endpoints))
	var unique []Endpoint
	for _, ep := range endpoints {
		if _, dup := seen[ep]; dup {
			continue
		}
		seen[ep] = struct{}{}
		unique = append(unique, ep)
	}
	return unique
}
