package main

import (
	"bytes"
	"fmt"
	"io"
	"math/rand"
	"net"
	"net/http"
	"rld/internal/models"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	json "github.com/goccy/go-json"
)

const (
	baseURL      = "http://127.0.0.1:8090"
	numWorkers   = 50
	testDuration = 10 * time.Second
	numWallets   = 500
)

var violationTypes = []string{
	"identity_spoofing", "content_appropriateness", "engagement_legitimacy", "originality", "low_confidence",
}

var wallets = makeWallets(numWallets)

var httpClient = &http.Client{
	Timeout: 5 * time.Second,
	Transport: &http.Transport{
		MaxIdleConns:        200,
		MaxIdleConnsPerHost: 200,
		IdleConnTimeout:     30 * time.Second,
		DialContext: (&net.Dialer{
			Timeout:   2 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
	},
}

type result struct {
	endpoint string
	status   int
	latency  time.Duration
	err      bool
}

type stats struct {
	count     int64
	errors    int64
	latencies []time.Duration
}

// makeWallets derives n deterministic classic addresses.
func makeWallets(n int) []string {
	rng := rand.New(rand.NewSource(1))
	out := make([]string, n)
	id := make([]byte, 20)
	for i := range out {
		rng.Read(id)
		addr, err := models.EncodeWallet(id)
		if err != nil {
			panic(err)
		}
		out[i] = addr
	}
	return out
}

func main() {
	fmt.Println("=== RLD Load Test ===")
	fmt.Printf("Workers: %d | Duration: %s | Wallets: %d\n\n", numWorkers, testDuration, numWallets)
	fmt.Println("Run the daemon with rateLimit.enabled=false, otherwise most requests hit the per-client limiter.")

	fmt.Print("Waiting for server... ")
	for i := 0; i < 30; i++ {
		resp, err := httpClient.Get(baseURL + "/health")
		if err == nil {
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			break
		}
		if i == 29 {
			fmt.Println("FAILED: server not responding")
			return
		}
		time.Sleep(200 * time.Millisecond)
	}
	fmt.Println("OK")

	fmt.Println("\n--- Phase 1: Engagements (POST /engagements) ---")
	runPhase(testDuration, doEngagement)

	fmt.Println("\n--- Phase 2: Mixed load (50% engagements, 20% violations, 30% status) ---")
	runPhase(testDuration, func(rng *rand.Rand) result {
		r := rng.Float64()
		switch {
		case r < 0.50:
			return doEngagement(rng)
		case r < 0.70:
			return doViolation(rng)
		case r < 0.90:
			return doStatus(rng)
		default:
			return doQuote(rng)
		}
	})

	fmt.Println("\n--- Phase 3: Violation storm on a single wallet ---")
	runPhase(testDuration/2, func(rng *rand.Rand) result {
		return postJSON("POST /violations (hot)", "/violations", map[string]interface{}{
			"wallet":     wallets[0],
			"type":       violationTypes[rng.Intn(len(violationTypes))],
			"confidence": rng.Float64() * 100,
		}, http.StatusOK)
	})
}

func runPhase(duration time.Duration, workFn func(rng *rand.Rand) result) {
	results := make(chan result, 10000)
	var wg sync.WaitGroup
	var totalOps atomic.Int64
	stop := make(chan struct{})

	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(seed))
			for {
				select {
				case <-stop:
					return
				default:
					r := workFn(rng)
					totalOps.Add(1)
					results <- r
				}
			}
		}(rand.Int63() + int64(i))
	}

	allResults := make(map[string]*stats)
	done := make(chan struct{})
	go func() {
		for r := range results {
			s, ok := allResults[r.endpoint]
			if !ok {
				s = &stats{}
				allResults[r.endpoint] = s
			}
			s.count++
			if r.err {
				s.errors++
			}
			s.latencies = append(s.latencies, r.latency)
		}
		close(done)
	}()

	time.Sleep(duration)
	close(stop)
	wg.Wait()
	close(results)
	<-done

	printResults(allResults, duration)
}

func printResults(allResults map[string]*stats, duration time.Duration) {
	var totalOps int64
	var totalErrors int64

	endpoints := make([]string, 0, len(allResults))
	for ep := range allResults {
		endpoints = append(endpoints, ep)
	}
	sort.Strings(endpoints)

	fmt.Printf("\n  %-22s %8s %6s %10s %10s %10s %10s\n",
		"Endpoint", "Reqs", "Errs", "Avg", "P50", "P95", "P99")
	fmt.Println("  " + repeat("-", 88))

	for _, ep := range endpoints {
		s := allResults[ep]
		totalOps += s.count
		totalErrors += s.errors

		sort.Slice(s.latencies, func(i, j int) bool {
			return s.latencies[i] < s.latencies[j]
		})

		avg := avgDuration(s.latencies)
		p50 := percentile(s.latencies, 0.50)
		p95 := percentile(s.latencies, 0.95)
		p99 := percentile(s.latencies, 0.99)

		fmt.Printf("  %-22s %8d %6d %10s %10s %10s %10s\n",
			ep, s.count, s.errors, fmtDur(avg), fmtDur(p50), fmtDur(p95), fmtDur(p99))
	}

	rps := float64(totalOps) / duration.Seconds()
	fmt.Println("  " + repeat("-", 88))
	fmt.Printf("  Total: %d reqs | Errors: %d (%.1f%%) | RPS: %.0f\n",
		totalOps, totalErrors, float64(totalErrors)/float64(totalOps)*100, rps)
}

func postJSON(endpoint, path string, body interface{}, okStatus ...int) result {
	data, _ := json.Marshal(body)
	start := time.Now()
	resp, err := httpClient.Post(baseURL+path, "application/json", bytes.NewReader(data))
	lat := time.Since(start)
	if err != nil {
		return result{endpoint, 0, lat, true}
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	return result{endpoint, resp.StatusCode, lat, !expected(resp.StatusCode, okStatus)}
}

func expected(status int, ok []int) bool {
	for _, s := range ok {
		if s == status {
			return true
		}
	}
	return false
}

// doEngagement counts gate rejections as successful responses; only
// transport errors and 5xx are failures.
func doEngagement(rng *rand.Rand) result {
	return postJSON("POST /engagements", "/engagements", map[string]interface{}{
		"wallet":  wallets[rng.Intn(len(wallets))],
		"postId":  fmt.Sprintf("%d", rng.Int63()),
		"likes":   rng.Intn(2000),
		"reposts": rng.Intn(200),
	}, http.StatusOK, http.StatusForbidden, http.StatusTooManyRequests)
}

func doViolation(rng *rand.Rand) result {
	return postJSON("POST /violations", "/violations", map[string]interface{}{
		"wallet":     wallets[rng.Intn(len(wallets))],
		"type":       violationTypes[rng.Intn(len(violationTypes))],
		"confidence": rng.Float64() * 100,
	}, http.StatusOK)
}

func doQuote(rng *rand.Rand) result {
	mode := "instant"
	if rng.Intn(2) == 0 {
		mode = "staked"
	}
	return postJSON("POST /rewards/quote", "/rewards/quote", map[string]interface{}{
		"likes":   rng.Intn(2000),
		"reposts": rng.Intn(200),
		"mode":    mode,
	}, http.StatusOK)
}

func doStatus(rng *rand.Rand) result {
	url := fmt.Sprintf("%s/status?wallet=%s", baseURL, wallets[rng.Intn(len(wallets))])
	start := time.Now()
	resp, err := httpClient.Get(url)
	lat := time.Since(start)
	if err != nil {
		return result{"GET /status", 0, lat, true}
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	return result{"GET /status", resp.StatusCode, lat, resp.StatusCode != 200}
}

func avgDuration(d []time.Duration) time.Duration {
	if len(d) == 0 {
		return 0
	}
	var sum time.Duration
	for _, v := range d {
		sum += v
	}
	return sum / time.Duration(len(d))
}

func percentile(d []time.Duration, p float64) time.Duration {
	if len(d) == 0 {
		return 0
	}
	idx := int(float64(len(d)) * p)
	if idx >= len(d) {
		idx = len(d) - 1
	}
	return d[idx]
}

func fmtDur(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%dµs", d.Microseconds())
	}
	return fmt.Sprintf("%.1fms", float64(d.Microseconds())/1000.0)
}

func repeat(s string, n int) string {
	out := ""
	for i := 0; i < n; i++ {
		out += s
	}
	return out
}
