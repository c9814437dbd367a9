package semantic

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenize_CamelCaseWithCompound(t *testing.T) {
	got := Tokenize("getUserById")
	assert.Subset(t, got, []string{"get", "user", "by", "id", "getuserbyid"})
}

func TestTokenize_LetterDigitTransitions(t *testing.T) {
	got := Tokenize("react18")
	assert.Subset(t, got, []string{"react", "18"})

	got = Tokenize("v2Handler")
	assert.Subset(t, got, []string{"handler"})
	assert.NotContains(t, got, "v")
}

func TestTokenize_KebabAndSnakeCase(t *testing.T) {
	got := Tokenize("http-client_pool")
	assert.Contains(t, got, "http")
	assert.Contains(t, got, "client")
	assert.Contains(t, got, "pool")
}

func TestTokenize_AcronymBoundary(t *testing.T) {
	got := Tokenize("parseHTTPRequest")
	assert.Subset(t, got, []string{"parse", "http", "request"})
}

func TestTokenize_SingleSegmentNoDuplicateCompound(t *testing.T) {
	got := Tokenize("alpha")
	assert.Equal(t, []string{"alpha"}, got)
}

func TestTokenize_CompoundSurvivesWhenSegmentsDoNot(t *testing.T) {
	// "x" and "1" both fall under the length floor; the unsplit form is
	// the only usable token.
	got := Tokenize("x1")
	assert.Equal(t, []string{"x1"}, got)
}

func TestTokenize_DropsStopWordsAndShortTokens(t *testing.T) {
	got := Tokenize("const a = function(x) { return x }")
	assert.NotContains(t, got, "const")
	assert.NotContains(t, got, "function")
	assert.NotContains(t, got, "return")
	assert.NotContains(t, got, "a")
	assert.NotContains(t, got, "x")
}

func TestTokenize_DeduplicatesFirstSeen(t *testing.T) {
	got := Tokenize("alpha beta alpha gamma beta")
	assert.Equal(t, []string{"alpha", "beta", "gamma"}, got)
}

func TestTokenize_EmptyAndPunctuation(t *testing.T) {
	assert.Empty(t, Tokenize(""))
	assert.Empty(t, Tokenize("!@#$%^&*()"))
}

func TestTokenize_DropsOverlongTokens(t *testing.T) {
	long := "abcdefghijklmnopqrstuvwxyzabcdefghijklmnopq" // 43 chars
	assert.Empty(t, Tokenize(long))
}
