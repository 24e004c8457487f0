package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/stadtwache/admin-contract-tests/admintests"
	"github.com/stadtwache/admin-contract-tests/client"
	"github.com/stadtwache/admin-contract-tests/framework"
	"github.com/stadtwache/admin-contract-tests/metrics"
)

func main() {
	os.Exit(run())
}

func run() int {
	var params commandParams
	if err := params.Read(os.Getenv); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid parameters: %s\n", err)
		return 1
	}

	mainDebugLogger := framework.NullLogger()
	if params.debugAll {
		mainDebugLogger = log.New(os.Stdout, "", log.LstdFlags)
	}

	recorder := metrics.NewRecorder()
	admin := client.NewSession(client.Config{
		BaseURL:    params.baseURL,
		Timeout:    client.DefaultTimeout,
		MaxRetries: client.DefaultMaxRetries,
		RetryBase:  client.DefaultRetryBase,
		Logger:     mainDebugLogger,
		Metrics:    recorder,
	})

	ctx := context.Background()
	if err := admin.AwaitReachable(ctx, reachabilityTimeout, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Backend error: %s\n", err)
		return 1
	}

	fmt.Println()
	fmt.Printf("Fixture strategy: %s\n", params.strategy)
	fmt.Printf("Success policy: %s\n", params.policy)
	framework.PrintFilterDescription(os.Stdout, params.filters)

	fmt.Println("Running test suite")

	testLogger := &ConsoleTestLogger{
		DebugOutputOnFailure: params.debug,
		DebugOutputOnSuccess: params.debugAll,
	}

	results := admintests.RunTestSuite(ctx, admintests.SuiteConfig{
		Admin:    admin,
		Strategy: params.strategy,
	}, params.filters.AsFilter, testLogger)

	fmt.Println()
	ok := results.OK(params.policy)
	framework.PrintResults(os.Stdout, results, params.policy)

	recorder.ObserveResults(results, ok)
	if params.metricsFile != "" {
		if err := recorder.WriteTextfile(params.metricsFile); err != nil {
			fmt.Fprintf(os.Stderr, "Could not write metrics: %s\n", err)
		}
	}

	if !ok {
		return 1
	}
	return 0
}
