package lexical

import (
	"bufio"
	"bytes"
	"context"
	"os/exec"
	"strconv"
	"strings"

	scouterr "github.com/codescout-mcp/codescout/internal/errors"
)

// ripgrepBinary is the fast external line-search tool tried first.
const ripgrepBinary = "rg"

// runRipgrep searches base with ripgrep. A missing binary or a runtime
// failure returns a backend-unavailable error, which silently triggers the
// next tier; an exit status of 1 just means no matches.
func runRipgrep(ctx context.Context, base string, req CodeSearchRequest) ([]Match, error) {
	bin, err := exec.LookPath(ripgrepBinary)
	if err != nil {
		return nil, scouterr.BackendUnavailable(ripgrepBinary, err)
	}

	args := []string{
		"--line-number",
		"--no-heading",
		"--color", "never",
		"--fixed-strings",
	}
	if req.CaseSensitive {
		args = append(args, "--case-sensitive")
	} else {
		args = append(args, "--ignore-case")
	}
	if req.Glob != "" {
		args = append(args, "--glob", req.Glob)
	}
	if req.MaxResults > 0 {
		args = append(args, "--max-count", strconv.Itoa(req.MaxResults))
	}
	args = append(args, "--", req.Query, ".")

	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Dir = base
	out, err := cmd.Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok && exitErr.ExitCode() == 1 {
			return nil, nil // no matches
		}
		return nil, scouterr.BackendUnavailable(ripgrepBinary, err)
	}

	return parseGrepOutput(base, out, req.MaxResults), nil
}

// runRipgrepFiles lists files under base with ripgrep, honoring ignore
// rules, for filename search.
func runRipgrepFiles(ctx context.Context, base string) ([]string, error) {
	bin, err := exec.LookPath(ripgrepBinary)
	if err != nil {
		return nil, scouterr.BackendUnavailable(ripgrepBinary, err)
	}

	cmd := exec.CommandContext(ctx, bin, "--files", ".")
	cmd.Dir = base
	out, err := cmd.Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok && exitErr.ExitCode() == 1 {
			return nil, nil
		}
		return nil, scouterr.BackendUnavailable(ripgrepBinary, err)
	}

	var files []string
	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			files = append(files, strings.TrimPrefix(line, "./"))
		}
	}
	return files, nil
}

// parseGrepOutput parses "path:line:text" output shared by ripgrep and
// git grep, resolving paths relative to base.
func parseGrepOutput(base string, out []byte, maxResults int) []Match {
	var matches []Match
	scanner := bufio.NewScanner(bytes.NewReader(out))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		first := strings.Index(line, ":")
		if first < 0 {
			continue
		}
		second := strings.Index(line[first+1:], ":")
		if second < 0 {
			continue
		}
		second += first + 1

		lineNo, err := strconv.Atoi(line[first+1 : second])
		if err != nil {
			continue
		}
		rel := strings.TrimPrefix(line[:first], "./")
		matches = append(matches, Match{
			File: joinBase(base, rel),
			Line: lineNo,
			Text: strings.TrimSpace(line[second+1:]),
		})
		if maxResults > 0 && len(matches) >= maxResults {
			break
		}
	}
	return matches
}
