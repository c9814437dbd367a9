package semantic

import (
	"regexp"
	"strings"
	"unicode"
)

// wordRegex matches word runs for the initial split. Hyphens and underscores
// are kept so kebab-case and snake_case identifiers stay whole until the
// dedicated split steps.
var wordRegex = regexp.MustCompile(`[a-zA-Z0-9_-]+`)

const (
	minTokenLen = 2
	maxTokenLen = 40
)

// stopWords is the fixed code-keyword set excluded from the index.
var stopWords = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "are": {}, "but": {}, "not": {},
	"you": {}, "all": {}, "can": {}, "was": {}, "this": {}, "that": {},
	"with": {}, "from": {}, "have": {}, "will": {},
	"const": {}, "var": {}, "let": {}, "function": {}, "func": {},
	"return": {}, "if": {}, "else": {}, "while": {}, "class": {},
	"def": {}, "import": {}, "export": {}, "new": {}, "true": {},
	"false": {}, "null": {}, "nil": {}, "void": {}, "int": {},
	"string": {}, "bool": {}, "float": {}, "public": {}, "private": {},
	"protected": {}, "static": {}, "type": {}, "interface": {},
	"struct": {}, "package": {}, "use": {}, "using": {},
}

// Tokenize splits identifier-dense text into an ordered, deduplicated list
// of lowercase sub-tokens. camelCase, PascalCase, snake_case, kebab-case,
// and acronym boundaries all split; letter/digit transitions split in both
// directions. A multi-segment identifier additionally emits its unsplit
// lowercase form ("getUserById" yields get, user, by, id, getuserbyid).
func Tokenize(text string) []string {
	var tokens []string
	seen := make(map[string]struct{})
	eachToken(text, func(tok string) {
		if _, dup := seen[tok]; dup {
			return
		}
		seen[tok] = struct{}{}
		tokens = append(tokens, tok)
	})
	return tokens
}

// TermCounts runs the same pipeline but counts every occurrence instead of
// deduplicating, for term-frequency vectors.
func TermCounts(text string) map[string]int {
	counts := make(map[string]int)
	eachToken(text, func(tok string) {
		counts[tok]++
	})
	return counts
}

// eachToken applies the full split/filter pipeline to text and calls emit
// for every produced token, duplicates included.
func eachToken(text string, emit func(string)) {
	for _, word := range wordRegex.FindAllString(text, -1) {
		for _, part := range strings.Split(word, "-") {
			if part == "" {
				continue
			}
			segments := splitSegments(part)

			var valid []string
			for _, seg := range segments {
				if usable(seg) {
					valid = append(valid, seg)
				}
			}

			compound := strings.ToLower(part)
			for _, seg := range valid {
				emit(seg)
			}
			// The unsplit form is emitted alongside its segments, or alone
			// when no segment survived filtering. A lone segment identical
			// to its source stays a single entry.
			if usable(compound) && !(len(valid) == 1 && valid[0] == compound) {
				emit(compound)
			}
		}
	}
}

// usable applies the token length bounds and the stopword filter.
func usable(tok string) bool {
	if len(tok) < minTokenLen || len(tok) > maxTokenLen {
		return false
	}
	_, stop := stopWords[tok]
	return !stop
}

// splitSegments splits one hyphen-part into lowercase segments: underscores,
// camelCase and acronym boundaries, then letter/digit transitions.
func splitSegments(part string) []string {
	var segments []string
	for _, underscorePart := range strings.Split(part, "_") {
		if underscorePart == "" {
			continue
		}
		for _, camelPart := range splitCamelCase(underscorePart) {
			for _, seg := range splitLetterDigit(camelPart) {
				segments = append(segments, strings.ToLower(seg))
			}
		}
	}
	return segments
}

// splitCamelCase splits camelCase and PascalCase identifiers.
// Examples:
//   - "getUserById" -> ["get", "User", "By", "Id"]
//   - "HTTPHandler" -> ["HTTP", "Handler"]
//   - "parseHTTPRequest" -> ["parse", "HTTP", "Request"]
func splitCamelCase(s string) []string {
	if s == "" {
		return nil
	}

	var result []string
	var current strings.Builder

	runes := []rune(s)
	for i, r := range runes {
		if i > 0 && unicode.IsUpper(r) {
			prevIsLowerOrDigit := unicode.IsLower(runes[i-1]) || unicode.IsDigit(runes[i-1])
			nextIsLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])

			// Split if previous is lowercase OR next is lowercase (handles acronyms)
			if prevIsLowerOrDigit || nextIsLower {
				if current.Len() > 0 {
					result = append(result, current.String())
					current.Reset()
				}
			}
		}
		current.WriteRune(r)
	}

	if current.Len() > 0 {
		result = append(result, current.String())
	}

	return result
}

// splitLetterDigit splits at letter/digit transitions in both directions:
// "react18" -> ["react", "18"], "v2" -> ["v", "2"].
func splitLetterDigit(s string) []string {
	if s == "" {
		return nil
	}

	var result []string
	var current strings.Builder

	runes := []rune(s)
	for i, r := range runes {
		if i > 0 {
			prevDigit := unicode.IsDigit(runes[i-1])
			curDigit := unicode.IsDigit(r)
			if prevDigit != curDigit && current.Len() > 0 {
				result = append(result, current.String())
				current.Reset()
			}
		}
		current.WriteRune(r)
	}

	if current.Len() > 0 {
		result = append(result, current.String())
	}

	return result
}
