package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"moviehub/pkg/models"
	"moviehub/pkg/utils"
)

// Probes each configured source site with a HEAD request and reports
// the results to the admin server's ingest endpoint. The server is the
// single writer of source health state, so the breaker's exactly-once
// trip holds no matter how many probers run. Run it from cron, or with
// -loop for a long-lived prober.
func main() {
	var (
		server   = flag.String("server", "http://127.0.0.1:8080", "admin server base URL")
		loop     = flag.Bool("loop", false, "keep probing at the given interval")
		interval = flag.Duration("interval", 5*time.Minute, "probe interval when looping")
		timeout  = flag.Duration("timeout", 15*time.Second, "per-request HTTP timeout")
	)
	flag.Parse()

	client := &http.Client{Timeout: *timeout}

	for {
		probeAll(client, *server)
		if !*loop {
			return
		}
		time.Sleep(*interval)
	}
}

type outcome struct {
	Success   bool    `json:"success"`
	LatencyMs float64 `json:"latency_ms"`
}

func probeAll(client *http.Client, server string) {
	for _, site := range utils.LoadSourceSites() {
		if !site.Enabled {
			log.Printf("[source-probe] %s disabled by env, skipped", site.Name)
			continue
		}

		ok, latencyMs := probe(client, site.BaseURL)
		st, err := report(client, server, site.Name, outcome{Success: ok, LatencyMs: latencyMs})
		if err != nil {
			log.Printf("[source-probe] %s: report failed: %v", site.Name, err)
			continue
		}
		log.Printf("[source-probe] %s ok=%v latency=%.0fms rate=%.1f%% enabled=%v",
			site.Name, ok, latencyMs, st.SuccessRate*100, st.IsEnabled)
	}
}

func probe(client *http.Client, baseURL string) (bool, float64) {
	req, err := http.NewRequest(http.MethodHead, baseURL, nil)
	if err != nil {
		return false, 0
	}

	start := time.Now()
	resp, err := client.Do(req)
	latencyMs := float64(time.Since(start).Milliseconds())
	if err != nil {
		return false, latencyMs
	}
	resp.Body.Close()

	return resp.StatusCode < http.StatusInternalServerError, latencyMs
}

func report(client *http.Client, server, name string, o outcome) (*models.SourceHealth, error) {
	payload, err := json.Marshal(o)
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/admin/sources/%s/report", strings.TrimRight(server, "/"), name)
	resp, err := client.Post(url, "application/json", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var st models.SourceHealth
	if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
		return nil, err
	}
	return &st, nil
}
