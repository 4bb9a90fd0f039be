// Package main provides a performance benchmarking tool for the voicepersona CLI.
// It serves fake feed and transcription services in-process, runs `voicepersona analyze`
// against creators of different feed sizes, treats the first successful cached run as cold
// and averages the rest as warm, and writes a CSV summary.
//
// Prerequisites:
// - voicepersona binary installed and available in PATH
//
// Usage: go run benchmark/main.go [transcription-latency]
//
//	transcription-latency: simulated latency of one transcription (default 200ms)
package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// BenchmarkResult holds the result of a benchmark run (no-cache average, cold run and average of warm runs).
type BenchmarkResult struct {
	Creator     string
	Videos      int
	NoCacheTime string
	ColdTime    string
	WarmTime    string
}

// BenchmarkConfig holds configuration for the benchmark run.
type BenchmarkConfig struct {
	Timeout     time.Duration
	Latency     time.Duration
	NoCacheRuns int
	CacheRuns   int
	Creators    map[string]int // handle -> number of videos in the feed
	Order       []string
}

// sampleLines are rotated to build transcripts.
var sampleLines = []string{
	"Stop scrolling! You know what I love? This café has the best espresso.",
	"Okay so here's the thing. Most people grind their beans wrong. I mean it.",
	"Wait for it. This cold brew took me twelve hours. Worth it, no cap!",
	"Let me tell you, the ratio matters so much. Honestly it changes everything.",
}

func main() {
	latency := 200 * time.Millisecond
	if len(os.Args) == 2 {
		d, err := time.ParseDuration(os.Args[1])
		if err != nil {
			fmt.Printf("Usage: %s [transcription-latency]\n", os.Args[0])
			os.Exit(1)
		}
		latency = d
	} else if len(os.Args) > 2 {
		fmt.Printf("Usage: %s [transcription-latency]\n", os.Args[0])
		os.Exit(1)
	}

	config := BenchmarkConfig{
		Timeout:     5 * time.Minute,
		Latency:     latency,
		NoCacheRuns: 3,
		CacheRuns:   4,
		Creators:    map[string]int{"small": 5, "medium": 20, "large": 50},
		Order:       []string{"small", "medium", "large"},
	}

	if _, err := exec.LookPath("voicepersona"); err != nil {
		fmt.Printf("Prerequisites check failed: voicepersona binary not found in PATH\n")
		os.Exit(1)
	}

	home, err := os.MkdirTemp("", "voicepersona-benchmark-*")
	if err != nil {
		fmt.Printf("Failed to create temp dir: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = os.RemoveAll(home) }()

	feed, transcribe := startCollaborators(config)
	defer feed.Close()
	defer transcribe.Close()

	env := append(os.Environ(),
		"HOME="+home,
		"VOICEPERSONA_FEED_URL="+feed.URL,
		"VOICEPERSONA_TRANSCRIBE_URL="+transcribe.URL,
		"VOICEPERSONA_LOG_FORMAT=discard",
	)

	results := runBenchmarks(config, env)

	if err := saveResults(results); err != nil {
		fmt.Printf("Failed to save results: %v\n", err)
		os.Exit(1)
	}

	printSummary(results)
}

// startCollaborators serves the feeds of the configured creators and a transcriber
// that sleeps for the configured latency.
func startCollaborators(config BenchmarkConfig) (feed, transcribe *httptest.Server) {
	feed = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handle := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/users/"), "/videos")
		n, ok := config.Creators[handle]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		videos := make([]map[string]any, 0, n)
		for i := range n {
			videos = append(videos, map[string]any{
				"id":       fmt.Sprintf("%s-%d", handle, i),
				"duration": 30,
				"author":   map[string]any{"username": handle},
			})
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"videos": videos})
	}))

	transcribe = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			URL string `json:"url"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		time.Sleep(config.Latency)

		i := len(req.URL) % len(sampleLines)
		text := strings.Join([]string{sampleLines[i], sampleLines[(i+1)%len(sampleLines)]}, " ")
		_ = json.NewEncoder(w).Encode(map[string]any{"success": true, "transcript": text})
	}))
	return feed, transcribe
}

// runBenchmarks executes the analyze benchmark for every creator.
func runBenchmarks(config BenchmarkConfig, env []string) []BenchmarkResult {
	var results []BenchmarkResult

	fmt.Printf("Starting benchmark: %d creators, %v latency, %v timeout, no-cache: %d runs, cache: %d runs\n",
		len(config.Order), config.Latency, config.Timeout, config.NoCacheRuns, config.CacheRuns)

	for _, creator := range config.Order {
		fmt.Printf("Benchmarking %s (%d videos)\n", creator, config.Creators[creator])
		results = append(results, runBenchmarkSuite(config, env, creator))
	}
	return results
}

// runBenchmarkSuite runs both no-cache and cache benchmarks for a creator.
func runBenchmarkSuite(config BenchmarkConfig, env []string, creator string) BenchmarkResult {
	runPhase := func(cacheBackend string, numRuns int, phaseName string) (coldTime float64, avgTime string) {
		fmt.Printf("  %s phase (%d runs)\n", phaseName, numRuns)
		cold, times := runBenchmark(config, env, creator, cacheBackend, numRuns)
		if len(times) == 0 {
			return cold, "TIMEOUT"
		}
		var sum float64
		for _, t := range times {
			sum += t
		}
		return cold, fmt.Sprintf("%.3fs", sum/float64(len(times)))
	}

	// Phase 1: No-cache runs
	_, noCacheAvg := runPhase("none", config.NoCacheRuns, "No-cache")

	// Phase 2: Cache runs start from an empty cache
	clearCmd := exec.Command("voicepersona", "cache", "clear")
	clearCmd.Env = env
	if output, err := clearCmd.CombinedOutput(); err != nil {
		fmt.Printf("Warning: failed to clear cache: %v\nOutput: %s\n", err, string(output))
	}
	coldTime, warmAvg := runPhase("sqlite", config.CacheRuns, "Cache")

	coldTimeStr := "TIMEOUT"
	if coldTime > 0 {
		coldTimeStr = fmt.Sprintf("%.3fs", coldTime)
	}

	fmt.Printf("  No-cache average: %s, Cold time: %s, Warm average: %s\n", noCacheAvg, coldTimeStr, warmAvg)

	return BenchmarkResult{
		Creator:     creator,
		Videos:      config.Creators[creator],
		NoCacheTime: noCacheAvg,
		ColdTime:    coldTimeStr,
		WarmTime:    warmAvg,
	}
}

// runBenchmark analyzes a creator multiple times with the given cache backend and returns cold time and warm times.
// With the none backend every run is cold, so all times after the first are averaged the same way.
func runBenchmark(config BenchmarkConfig, env []string, creator, cacheBackend string, numRuns int) (coldTime float64, warmTimes []float64) {
	args := []string{
		"analyze", creator,
		"--cache-backend", cacheBackend,
		"--max-videos", strconv.Itoa(config.Creators[creator]),
		// keep inter-batch sleeps out of the measurement
		"--requests-per-minute", "60000",
		"--output", "json",
	}

	var times []float64
	for range numRuns {
		ctx, cancel := context.WithTimeout(context.Background(), config.Timeout)
		start := time.Now()
		cmd := exec.CommandContext(ctx, "voicepersona", args...)
		cmd.Env = env
		output, err := cmd.Output()
		elapsed := time.Since(start).Seconds()
		cancel()

		if err == nil && isSuccess(output) {
			times = append(times, elapsed)
		}
	}

	if len(times) > 0 {
		coldTime = times[0]
		warmTimes = times[1:]
	}
	return
}

// isSuccess checks that the JSON output reports a successful analysis.
func isSuccess(output []byte) bool {
	var results []struct {
		Success bool `json:"success"`
	}
	if err := json.Unmarshal(output, &results); err != nil {
		return false
	}
	return len(results) == 1 && results[0].Success
}

// saveResults writes benchmark results to a timestamped CSV file
func saveResults(results []BenchmarkResult) error {
	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("%s/voicepersona_benchmark_%s.csv", os.TempDir(), timestamp)

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			fmt.Printf("Warning: failed to close file %s: %v\n", filename, closeErr)
		}
	}()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write([]string{"creator", "videos", "no_cache_avg", "cold_time", "warm_avg"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, result := range results {
		record := []string{result.Creator, strconv.Itoa(result.Videos), result.NoCacheTime, result.ColdTime, result.WarmTime}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	fmt.Printf("Results saved to %s\n", filename)
	return nil
}

// printSummary displays the final benchmark results summary
func printSummary(results []BenchmarkResult) {
	fmt.Printf("Benchmark complete\n")
	fmt.Printf("Analyze:\n")
	for _, result := range results {
		fmt.Printf("  %-8s (%2d videos): No-cache: %s, Cold: %s, Warm: %s\n",
			result.Creator, result.Videos, result.NoCacheTime, result.ColdTime, result.WarmTime)
	}
}
