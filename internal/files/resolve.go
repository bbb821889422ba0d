package files

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// NotFoundError reports that a logical document path resolved to nothing
// on disk. Tried carries every candidate checked, for diagnosis. The
// resolver never substitutes an unrelated document silently.
type NotFoundError struct {
	LogicalPath string
	Tried       []string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("document %q not found, tried paths: %s", e.LogicalPath, strings.Join(e.Tried, ", "))
}

var spaceRuns = regexp.MustCompile(`\s+`)

// Resolver maps logical document paths (as stored in file metadata, e.g.
// "/content/sop/x.pdf") to physical files under the public content root.
type Resolver struct {
	Root    string // content root, typically "public"
	WorkDir string
}

func NewResolver(root string) *Resolver {
	if root == "" {
		root = "public"
	}
	wd, _ := os.Getwd()
	return &Resolver{Root: root, WorkDir: wd}
}

func (r *Resolver) rootDir() string {
	if filepath.IsAbs(r.Root) {
		return r.Root
	}
	return filepath.Join(r.WorkDir, r.Root)
}

// Resolve returns the first existing candidate for logicalPath, trying in
// order: the path as-is (or under the content root when relative), the
// path with its leading separator stripped under the content root, the
// same under the working directory, with run-together whitespace
// normalized, and percent-decoded. When nothing matches, a file in the
// expected directory whose name contains the first underscore-delimited
// token of the requested basename is accepted: uploads get a timestamp
// suffix on name collision, which breaks exact matches.
func (r *Resolver) Resolve(logicalPath string) (string, error) {
	normalized := strings.TrimPrefix(logicalPath, "/")
	root := r.rootDir()

	candidates := make([]string, 0, 5)
	if filepath.IsAbs(logicalPath) {
		candidates = append(candidates, logicalPath)
	} else {
		candidates = append(candidates, filepath.Join(root, logicalPath))
	}
	candidates = append(candidates,
		filepath.Join(root, normalized),
		filepath.Join(r.WorkDir, normalized),
		filepath.Join(root, spaceRuns.ReplaceAllString(normalized, " ")),
	)
	if decoded, err := url.QueryUnescape(normalized); err == nil {
		candidates = append(candidates, filepath.Join(root, decoded))
	}

	for _, candidate := range candidates {
		if fileExists(candidate) {
			return candidate, nil
		}
	}

	// Last resort: collision-renamed files match on the part of the
	// basename before the first underscore.
	dir := filepath.Dir(filepath.Join(root, normalized))
	token := strings.SplitN(filepath.Base(normalized), "_", 2)[0]
	if entries, err := os.ReadDir(dir); err == nil && token != "" {
		for _, entry := range entries {
			if !entry.IsDir() && strings.Contains(entry.Name(), token) {
				return filepath.Join(dir, entry.Name()), nil
			}
		}
	}

	return "", &NotFoundError{LogicalPath: logicalPath, Tried: candidates}
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
