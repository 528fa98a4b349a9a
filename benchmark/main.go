// Package main provides a performance benchmarking tool for the transit CLI.
// It measures search times across lightcurves and grid sizes, running each
// search several times without a cache and with the SQLite result cache,
// treating the first cached run as cold and averaging the rest as warm.
// Results are written as CSV for performance analysis and documentation.
//
// Prerequisites:
// - transit binary installed and available in PATH
// - One or more CSV lightcurves in the specified directory
//
// Usage: go run benchmark/main.go [lightcurve-dir]
//
//	lightcurve-dir: Directory containing *.csv lightcurves
package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// BenchmarkResult holds the result of a benchmark run (no-cache average, cold run and average of warm runs).
type BenchmarkResult struct {
	Lightcurve  string
	NPeriods    int
	NoCacheTime string
	ColdTime    string
	WarmTime    string
}

// BenchmarkConfig holds configuration for the benchmark run.
type BenchmarkConfig struct {
	LightcurveDir string
	Timeout       time.Duration
	Workers       int
	NoCacheRuns   int
	CacheRuns     int
	GridSizes     []int
}

func main() {
	if len(os.Args) != 2 {
		fmt.Printf("Usage: %s [lightcurve-dir]\n", os.Args[0])
		os.Exit(1)
	}

	config := BenchmarkConfig{
		LightcurveDir: os.Args[1],
		Timeout:       5 * time.Minute,
		Workers:       8,
		NoCacheRuns:   3,
		CacheRuns:     4,
		GridSizes:     []int{2000, 20000, 100000},
	}

	lightcurves, err := findLightcurves(config.LightcurveDir)
	if err != nil {
		fmt.Printf("Prerequisites check failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Clearing cache...\n")
	clearCmd := exec.Command("transit", "cache", "clear")
	if output, err := clearCmd.CombinedOutput(); err != nil {
		fmt.Printf("Warning: failed to clear cache: %v\nOutput: %s\n", err, string(output))
	} else {
		fmt.Printf("Cache cleared successfully\n")
	}

	results := runBenchmarks(config, lightcurves)

	if err := saveResults(results); err != nil {
		fmt.Printf("Failed to save results: %v\n", err)
		os.Exit(1)
	}

	printSummary(results, config.GridSizes)
}

// findLightcurves verifies the transit binary exists and lists the CSV inputs.
func findLightcurves(dir string) ([]string, error) {
	if _, err := exec.LookPath("transit"); err != nil {
		return nil, fmt.Errorf("transit binary not found in PATH")
	}
	matches, err := filepath.Glob(filepath.Join(dir, "*.csv"))
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("no CSV lightcurves found in %s", dir)
	}
	return matches, nil
}

// runBenchmarks executes the search benchmark for every lightcurve and grid size.
func runBenchmarks(config BenchmarkConfig, lightcurves []string) []BenchmarkResult {
	var results []BenchmarkResult

	fmt.Printf("Starting benchmark: %d lightcurves, %v timeout, %d workers, no-cache: %d runs, cache: %d runs\n",
		len(lightcurves), config.Timeout, config.Workers, config.NoCacheRuns, config.CacheRuns)

	for _, lc := range lightcurves {
		fmt.Printf("Benchmarking %s\n", filepath.Base(lc))
		for _, n := range config.GridSizes {
			results = append(results, runBenchmarkSuite(config, lc, n))
		}
	}

	return results
}

// runBenchmarkSuite runs both no-cache and cache benchmarks for one grid size.
func runBenchmarkSuite(config BenchmarkConfig, lightcurve string, nPeriods int) BenchmarkResult {
	fmt.Printf("Running search with %d periods\n", nPeriods)

	runPhase := func(cacheBackend string, numRuns int, phaseName string) (coldTime float64, avgTime string) {
		fmt.Printf("  %s phase (%d runs)\n", phaseName, numRuns)
		cold, times := runBenchmark(config, lightcurve, nPeriods, cacheBackend, numRuns)
		if len(times) == 0 {
			avgTime = "TIMEOUT"
		} else {
			var sum float64
			for _, t := range times {
				sum += t
			}
			avgTime = fmt.Sprintf("%.3fs", sum/float64(len(times)))
		}
		return cold, avgTime
	}

	_, noCacheAvg := runPhase("none", config.NoCacheRuns, "No-cache")
	coldTime, warmAvg := runPhase("sqlite", config.CacheRuns, "Cache")

	coldTimeStr := "TIMEOUT"
	if coldTime > 0 {
		coldTimeStr = fmt.Sprintf("%.3fs", coldTime)
	}

	fmt.Printf("  No-cache average: %s, Cold time: %s, Warm average: %s\n", noCacheAvg, coldTimeStr, warmAvg)

	return BenchmarkResult{
		Lightcurve:  filepath.Base(lightcurve),
		NPeriods:    nPeriods,
		NoCacheTime: noCacheAvg,
		ColdTime:    coldTimeStr,
		WarmTime:    warmAvg,
	}
}

// runBenchmark executes a transit search multiple times with the given cache backend and returns cold time and warm times
func runBenchmark(config BenchmarkConfig, lightcurve string, nPeriods int, cacheBackend string, numRuns int) (coldTime float64, warmTimes []float64) {
	outDir, err := os.MkdirTemp("", "transit-benchmark-*")
	if err != nil {
		return 0, nil
	}
	defer func() { _ = os.RemoveAll(outDir) }()

	args := []string{
		"search", lightcurve,
		"--cache-backend", cacheBackend,
		"--n-periods", strconv.Itoa(nPeriods),
		"--workers", strconv.Itoa(config.Workers),
		"--out-dir", outDir,
	}

	var times []float64
	for range numRuns {
		start := time.Now()

		cmd := exec.Command("transit", args...)

		done := make(chan bool, 1)
		var output []byte
		var cmdErr error

		go func() {
			output, cmdErr = cmd.CombinedOutput()
			done <- true
		}()

		select {
		case <-done:
			if cmdErr == nil && isSuccess(output) {
				times = append(times, time.Since(start).Seconds())
			}
		case <-time.After(config.Timeout):
			_ = cmd.Process.Kill()
		}
	}

	if len(times) > 0 {
		coldTime = times[0]
		warmTimes = times[1:]
	}
	return
}

// isSuccess checks if command output indicates successful completion
func isSuccess(output []byte) bool {
	outputStr := string(output)
	return strings.Contains(outputStr, "Search completed in") &&
		strings.Contains(outputStr, "workers")
}

// saveResults writes benchmark results to a timestamped CSV file
func saveResults(results []BenchmarkResult) error {
	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("/tmp/transit_benchmark_%s.csv", timestamp)

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

	if err := writer.Write([]string{"lightcurve", "n_periods", "no_cache_avg", "cold_time", "warm_avg"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, result := range results {
		record := []string{result.Lightcurve, strconv.Itoa(result.NPeriods), result.NoCacheTime, result.ColdTime, result.WarmTime}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	fmt.Printf("Results saved to %s\n", filename)
	return nil
}

// printSummary displays the final benchmark results grouped by grid size
func printSummary(results []BenchmarkResult, gridSizes []int) {
	fmt.Printf("Benchmark complete\n")
	for _, n := range gridSizes {
		fmt.Printf("%d periods:\n", n)
		for _, result := range results {
			if result.NPeriods == n {
				fmt.Printf("  %-24s: No-cache: %s, Cold: %s, Warm: %s\n", result.Lightcurve, result.NoCacheTime, result.ColdTime, result.WarmTime)
			}
		}
	}
	fmt.Printf("Benchmark script completed successfully\n")
}
