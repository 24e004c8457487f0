package framework

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func id(path ...string) TestID {
	return TestID{Path: path}
}

func TestMustMatchAllowsParentsOfMatchingTests(t *testing.T) {
	var f RegexFilters
	require.NoError(t, f.MustMatch.Set("security/unauth"))

	assert.True(t, f.AsFilter(id("security")))
	assert.True(t, f.AsFilter(id("security", "unauthenticated")))
	assert.True(t, f.AsFilter(id("security", "unauthenticated", "GET vacations")))
	assert.False(t, f.AsFilter(id("security", "non-admin")))
	assert.False(t, f.AsFilter(id("main")))
}

func TestMustNotMatchExcludesOnlyFullMatches(t *testing.T) {
	var f RegexFilters
	require.NoError(t, f.MustNotMatch.Set("main/vacations"))

	assert.True(t, f.AsFilter(id("main")))
	assert.False(t, f.AsFilter(id("main", "vacations")))
	assert.False(t, f.AsFilter(id("main", "vacations", "approve pending request")))
	assert.True(t, f.AsFilter(id("main", "attendance")))
}

func TestInvalidPattern(t *testing.T) {
	var f RegexFilters
	assert.Error(t, f.MustMatch.Set("main/("))
	assert.False(t, f.MustMatch.IsDefined())
}

func TestPrintFilterDescription(t *testing.T) {
	var f RegexFilters
	var buf bytes.Buffer
	PrintFilterDescription(&buf, f)
	assert.Empty(t, buf.String())

	require.NoError(t, f.MustNotMatch.Set("security"))
	PrintFilterDescription(&buf, f)
	assert.Contains(t, buf.String(), `skip any matching "security"`)
}
