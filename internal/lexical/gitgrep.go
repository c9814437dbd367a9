package lexical

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"

	scouterr "github.com/codescout-mcp/codescout/internal/errors"
)

// gitBinary is the secondary, VCS-aware search tool.
const gitBinary = "git"

// runGitGrep searches base with git grep. It only applies inside a git work
// tree; anywhere else (or with git missing) it reports backend-unavailable
// so the in-process scan takes over. Exit status 1 means no matches.
func runGitGrep(ctx context.Context, base string, req CodeSearchRequest) ([]Match, error) {
	bin, err := exec.LookPath(gitBinary)
	if err != nil {
		return nil, scouterr.BackendUnavailable(gitBinary, err)
	}
	if !insideGitWorkTree(base) {
		return nil, scouterr.BackendUnavailable(gitBinary, nil)
	}

	args := []string{"grep", "--line-number", "--fixed-strings", "--no-color"}
	if !req.CaseSensitive {
		args = append(args, "--ignore-case")
	}
	args = append(args, "-e", req.Query, "--")
	if req.Glob != "" {
		args = append(args, req.Glob)
	}

	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Dir = base
	out, err := cmd.Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok && exitErr.ExitCode() == 1 {
			return nil, nil // no matches
		}
		return nil, scouterr.BackendUnavailable(gitBinary, err)
	}

	return parseGrepOutput(base, out, req.MaxResults), nil
}

// insideGitWorkTree walks upward from base looking for a .git entry.
func insideGitWorkTree(base string) bool {
	dir := base
	for {
		if _, err := os.Stat(filepath.Join(dir, ".git")); err == nil {
			return true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return false
		}
		dir = parent
	}
}

func joinBase(base, rel string) string {
	if filepath.IsAbs(rel) {
		return rel
	}
	return filepath.Join(base, rel)
}
