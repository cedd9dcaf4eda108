package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/corpix/uarand"
)

const scrapeTimeout = 20 * time.Second

// parseFunc turns one source's payload into candidate endpoints.
type parseFunc func(io.Reader) ([]Endpoint, error)

// Source is one upstream proxy list.
type Source struct {
	Name  string
	URL   string
	parse parseFunc
}

// Registered upstream lists. The free-proxy-list family renders an HTML
// table with an IP column and a port column; spys.me publishes plain text
// with commentary lines mixed in.
var sources = []Source{
	{"sslproxies", "https://www.sslproxies.org/", parseProxyTable},
	{"freeproxylist", "https://free-proxy-list.net/", parseProxyTable},
	{"usproxy", "https://www.us-proxy.org/", parseProxyTable},
	{"socksproxy", "https://www.socks-proxy.net/", parseProxyTable},
	{"spysme", "https://spys.me/proxy.txt", parsePlainList},
	{"proxydaily", "https://proxy-daily.com/", parseProxyTable},
}

func sourceByName(name string) (Source, bool) {
	for _, src := range sources {
		if src.Name == name {
			return src, true
		}
	}
	return Source{}, false
}

func sourceNames() []string {
	names := make([]string, len(sources))
	for i, src := range sources {
		names[i] = src.Name
	}
	return names
}

// Scrape fetches the named sources concurrently and returns the merged,
// deduplicated candidate set. An empty names list means every registered
// source. Unknown names fail before any fetch; a source that errors
// mid-run is logged and skipped.
func Scrape(ctx context.Context, names []string) ([]Endpoint, error) {
	var selected []Source
	if len(names) == 0 {
		selected = sources
	} else {
		var unknown []string
		for _, name := range names {
			src, ok := sourceByName(name)
			if !ok {
				unknown = append(unknown, name)
				continue
			}
			selected = append(selected, src)
		}
		if len(unknown) > 0 {
			return nil, fmt.Errorf("unknown sources: %s", strings.Join(unknown, ", "))
		}
	}

	client := &http.Client{Timeout: scrapeTimeout}

	var (
		mu     sync.Mutex
		merged []Endpoint
		wg     sync.WaitGroup
	)
	for _, src := range selected {
		wg.Add(1)
		go func(src Source) {
			defer wg.Done()

			endpoints, err := scrapeSource(ctx, client, src)
			if err != nil {
				log.Warnf("scrape %s: %v", src.Name, err)
				return
			}
			log.Infof("scraped %d proxies from %s", len(endpoints), src.Name)

			mu.Lock()
			merged = append(merged, endpoints...)
			mu.Unlock()
		}(src)
	}
	wg.Wait()

	return dedupeEndpoints(merged), nil
}

func scrapeSource(ctx context.Context, client *http.Client, src Source) ([]Endpoint, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src.URL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", uarand.GetRandom())

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}

	return src.parse(resp.Body)
}

// parseProxyTable walks every table row on the page and keeps rows whose
// first cell is an IP address and whose second cell is a port.
func parseProxyTable(body io.Reader) ([]Endpoint, error) {
	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, err
	}

	var endpoints []Endpoint
	doc.Find("table tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < 2 {
			return
		}
		host := strings.TrimSpace(cells.Eq(0).Text())
		port := strings.TrimSpace(cells.Eq(1).Text())
		ep, err := ParseEndpoint(host + ":" + port)
		if err != nil {
			return
		}
		endpoints = append(endpoints, ep)
	})

	return endpoints, nil
}

// parsePlainList scans a text payload line by line and keeps whatever
// parses as an endpoint. spys.me appends country and anonymity markers
// after the address, so only the first field of each line counts.
func parsePlainList(body io.Reader) ([]Endpoint, error) {
	var endpoints []Endpoint
	scanner := bufio.NewScanner(body)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		ep, err := ParseEndpoint(fields[0])
		if err != nil {
			continue
		}
		endpoints = append(endpoints, ep)
	}
	return endpoints, scanner.Err()
}
