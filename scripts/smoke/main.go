// Command smoke probes a running API instance and reports which endpoints
// deviate from their expected status, for use after deploys.
package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"
)

type target struct {
	method   string
	path     string
	expected int
}

func main() {
	var (
		base    string
		timeout time.Duration
	)
	flag.StringVar(&base, "base", "http://localhost:8080", "API base URL")
	flag.DurationVar(&timeout, "timeout", 5*time.Second, "HTTP client timeout")
	flag.Parse()

	targets := []target{
		{http.MethodGet, "/health", http.StatusOK},
		{http.MethodGet, "/ready", http.StatusOK},
		{http.MethodGet, "/metrics", http.StatusOK},
		// protected routes must refuse anonymous access
		{http.MethodGet, "/api/v1/students", http.StatusUnauthorized},
		{http.MethodGet, "/api/v1/ledger", http.StatusUnauthorized},
		{http.MethodPost, "/api/v1/fees", http.StatusUnauthorized},
		{http.MethodGet, "/api/v1/exports/download", http.StatusBadRequest},
	}

	client := &http.Client{Timeout: timeout}
	failures := 0
	for _, t := range targets {
		req, err := http.NewRequest(t.method, base+t.path, nil)
		if err != nil {
			log.Fatalf("build request %s %s: %v", t.method, t.path, err)
		}
		start := time.Now()
		resp, err := client.Do(req)
		if err != nil {
			fmt.Printf("FAIL %-4s %-32s error: %v\n", t.method, t.path, err)
			failures++
			continue
		}
		resp.Body.Close()

		status := "ok"
		if resp.StatusCode != t.expected {
			status = fmt.Sprintf("expected %d got %d", t.expected, resp.StatusCode)
			failures++
		}
		fmt.Printf("%-4s %-32s %-24s %s\n", t.method, t.path, status, time.Since(start).Round(time.Millisecond))
	}

	if failures > 0 {
		fmt.Printf("%d endpoint(s) deviated\n", failures)
		os.Exit(1)
	}
	fmt.Println("all endpoints healthy")
}
