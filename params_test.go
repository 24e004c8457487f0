package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stadtwache/admin-contract-tests/fixtures"
	"github.com/stadtwache/admin-contract-tests/framework"
)

func envFrom(values map[string]string) func(string) string {
	return func(name string) string { return values[name] }
}

func TestParamsDefaults(t *testing.T) {
	var p commandParams
	require.NoError(t, p.Read(envFrom(nil)))

	assert.Equal(t, defaultBaseURL, p.baseURL)
	assert.Equal(t, fixtures.Bootstrap, p.strategy)
	assert.Equal(t, framework.StrictPolicy(), p.policy)
	assert.False(t, p.filters.MustMatch.IsDefined())
	assert.False(t, p.debug)
	assert.Empty(t, p.metricsFile)
}

func TestParamsReuseDefaultsToQuorum(t *testing.T) {
	var p commandParams
	require.NoError(t, p.Read(envFrom(map[string]string{
		"ADMIN_TESTS_STRATEGY": "reuse",
	})))
	assert.Equal(t, fixtures.ReuseSession, p.strategy)
	assert.Equal(t, framework.QuorumPolicy(defaultReuseQuorum), p.policy)
}

func TestParamsOverrides(t *testing.T) {
	var p commandParams
	require.NoError(t, p.Read(envFrom(map[string]string{
		"ADMIN_TESTS_URL":          "http://localhost:8001/api/",
		"ADMIN_TESTS_POLICY":       "quorum",
		"ADMIN_TESTS_QUORUM":       "7",
		"ADMIN_TESTS_RUN":          "main/vacations, security",
		"ADMIN_TESTS_SKIP":         "security/non-admin",
		"ADMIN_TESTS_DEBUG":        "all",
		"ADMIN_TESTS_METRICS_FILE": "/tmp/admin_tests.prom",
	})))

	assert.Equal(t, "http://localhost:8001/api", p.baseURL)
	assert.Equal(t, framework.QuorumPolicy(7), p.policy)
	assert.True(t, p.filters.AsFilter(framework.TestID{Path: []string{"main", "vacations"}}))
	assert.False(t, p.filters.AsFilter(framework.TestID{Path: []string{"main", "attendance"}}))
	assert.False(t, p.filters.AsFilter(framework.TestID{Path: []string{"security", "non-admin"}}))
	assert.True(t, p.debug)
	assert.True(t, p.debugAll)
	assert.Equal(t, "/tmp/admin_tests.prom", p.metricsFile)
}

func TestParamsInvalidValues(t *testing.T) {
	for name, env := range map[string]map[string]string{
		"strategy": {"ADMIN_TESTS_STRATEGY": "guess"},
		"policy":   {"ADMIN_TESTS_POLICY": "most"},
		"quorum":   {"ADMIN_TESTS_POLICY": "quorum", "ADMIN_TESTS_QUORUM": "-1"},
		"filter":   {"ADMIN_TESTS_RUN": "main/("},
		"debug":    {"ADMIN_TESTS_DEBUG": "verbose"},
	} {
		t.Run(name, func(t *testing.T) {
			var p commandParams
			assert.Error(t, p.Read(envFrom(env)))
		})
	}
}

func TestSplitPatterns(t *testing.T) {
	assert.Nil(t, splitPatterns(""))
	assert.Equal(t, []string{"a", "b/c"}, splitPatterns(" a,, b/c ,"))
}
