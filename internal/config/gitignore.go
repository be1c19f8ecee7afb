package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// projectIgnores lists what a project-local .pagerkit/ directory keeps out of
// version control. config.yaml is shared and stays tracked.
//
//nolint:gochecknoglobals // Fixed pattern list.
var projectIgnores = []string{"*.log", "*.tmp"}

// GitignoreContent returns the .gitignore written by EnsureGitignore.
func GitignoreContent() string {
	var b strings.Builder
	b.WriteString("# pagerkit project-local data (auto-generated)\n")
	for _, p := range projectIgnores {
		b.WriteString(p)
		b.WriteByte('\n')
	}
	return b.String()
}

// EnsureGitignore writes dir/.gitignore unless it already exists, creating
// dir as needed. It reports whether the file was written.
func EnsureGitignore(dir string) (bool, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return false, fmt.Errorf("creating directory %s: %w", dir, err)
	}

	path := filepath.Join(dir, ".gitignore")
	//nolint:gosec // .gitignore must be world-readable (0644).
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if errors.Is(err, fs.ErrExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("creating %s: %w", path, err)
	}

	_, werr := f.WriteString(GitignoreContent())
	if cerr := f.Close(); werr == nil {
		werr = cerr
	}
	if werr != nil {
		return false, fmt.Errorf("writing %s: %w", path, werr)
	}
	return true, nil
}
