package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/stadtwache/admin-contract-tests/fixtures"
	"github.com/stadtwache/admin-contract-tests/framework"
)

const (
	defaultBaseURL       = "https://ladrunter.preview.emergentagent.com/api"
	defaultReuseQuorum   = 4 // test groups, see framework.Results.Groups
	reachabilityTimeout  = time.Second * 30
	environmentKeyPrefix = "ADMIN_TESTS_"
)

// commandParams is the run configuration. The program takes no flags: every setting has a
// default, and any of them can be overridden by an environment variable.
type commandParams struct {
	baseURL     string
	strategy    fixtures.Strategy
	policy      framework.Policy
	filters     framework.RegexFilters
	debug       bool
	debugAll    bool
	metricsFile string
}

// Read fills in the parameters from the environment, using getenv to look up variables.
func (c *commandParams) Read(getenv func(string) string) error {
	env := func(name, fallback string) string {
		if val := strings.TrimSpace(getenv(environmentKeyPrefix + name)); val != "" {
			return val
		}
		return fallback
	}

	c.baseURL = strings.TrimRight(env("URL", defaultBaseURL), "/")

	strategy, err := fixtures.ParseStrategy(env("STRATEGY", "bootstrap"))
	if err != nil {
		return err
	}
	c.strategy = strategy

	defaultPolicy := "strict"
	if strategy == fixtures.ReuseSession {
		defaultPolicy = "quorum"
	}
	switch policy := strings.ToLower(env("POLICY", defaultPolicy)); policy {
	case "strict":
		c.policy = framework.StrictPolicy()
	case "quorum":
		quorum, err := strconv.Atoi(env("QUORUM", strconv.Itoa(defaultReuseQuorum)))
		if err != nil || quorum < 0 {
			return fmt.Errorf("%sQUORUM must be a non-negative integer", environmentKeyPrefix)
		}
		c.policy = framework.QuorumPolicy(quorum)
	default:
		return fmt.Errorf("unknown success policy %q (expected strict or quorum)", policy)
	}

	for _, pattern := range splitPatterns(env("RUN", "")) {
		if err := c.filters.MustMatch.Set(pattern); err != nil {
			return fmt.Errorf("%sRUN: %w", environmentKeyPrefix, err)
		}
	}
	for _, pattern := range splitPatterns(env("SKIP", "")) {
		if err := c.filters.MustNotMatch.Set(pattern); err != nil {
			return fmt.Errorf("%sSKIP: %w", environmentKeyPrefix, err)
		}
	}

	switch debug := strings.ToLower(env("DEBUG", "")); debug {
	case "":
	case "failed":
		c.debug = true
	case "all":
		c.debug, c.debugAll = true, true
	default:
		return fmt.Errorf("unknown debug mode %q (expected failed or all)", debug)
	}

	c.metricsFile = env("METRICS_FILE", "")
	return nil
}

// splitPatterns splits a comma-separated list of test name patterns.
func splitPatterns(value string) []string {
	var ret []string
	for _, p := range strings.Split(value, ",") {
		if p = strings.TrimSpace(p); p != "" {
			ret = append(ret, p)
		}
	}
	return ret
}
