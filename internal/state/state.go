// Package state persists the latest build status to a well-known JSON
// file so other processes (editors, status bars, the `status` command)
// can read it without attaching to the build. One file per project,
// keyed by a hash of the project root path.
package state

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/nkoval/docsift/internal/model"
)

// Build statuses recorded in the state file.
const (
	StatusBuilding = "building"
	StatusOK       = "ok"
	StatusFailed   = "failed"
)

// File is the on-disk document. All timestamps are UTC.
type File struct {
	Project   string         `json:"project"`
	Status    string         `json:"status"`
	UpdatedAt time.Time      `json:"updated_at"`
	Summary   model.Summary  `json:"summary"`
	Cycle     *model.BuildCycle `json:"cycle,omitempty"`
	Info      model.BuildInfo   `json:"info"`
}

// Store reads and writes the state file for a single project.
type Store struct {
	project string
	path    string
}

// NewStore creates a store for the given project root. If dir is empty
// the system temp directory is used.
func NewStore(project, dir string) *Store {
	if dir == "" {
		dir = os.TempDir()
	}
	return &Store{
		project: project,
		path:    filepath.Join(dir, fmt.Sprintf("docsift-%s.json", ProjectKey(project))),
	}
}

// Path returns the state file location.
func (s *Store) Path() string { return s.path }

// Write persists the document atomically: write to a temp file in the
// same directory, then rename over the target.
func (s *Store) Write(f File) error {
	f.Project = s.project
	f.UpdatedAt = time.Now().UTC()

	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("state: marshal: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".docsift-state-*")
	if err != nil {
		return fmt.Errorf("state: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("state: write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("state: close: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("state: rename: %w", err)
	}
	return nil
}

// Read loads the current document. Returns os.ErrNotExist when no build
// has written state yet.
func (s *Store) Read() (File, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return File{}, err
	}
	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return File{}, fmt.Errorf("state: parse %s: %w", s.path, err)
	}
	return f, nil
}

// Remove deletes the state file. Missing files are not an error.
func (s *Store) Remove() error {
	err := os.Remove(s.path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Age returns how long ago the document was written.
func (f File) Age() time.Duration {
	return time.Since(f.UpdatedAt)
}

// ProjectKey derives the stable file key for a project root path.
func ProjectKey(project string) string {
	sum := sha256.Sum256([]byte(project))
	return hex.EncodeToString(sum[:])[:16]
}

// projectMarkers identify a documentation project root.
var projectMarkers = []string{"mkdocs.yml", "mkdocs.yaml", "conf.py", "docs/conf.py", ".git"}

// FindProjectRoot walks up from dir looking for a documentation project
// marker. Falls back to dir itself when nothing is found.
func FindProjectRoot(dir string) string {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return dir
	}
	cur := abs
	for {
		for _, m := range projectMarkers {
			if _, err := os.Stat(filepath.Join(cur, m)); err == nil {
				return cur
			}
		}
		parent := filepath.Dir(cur)
		if parent == cur {
			return abs
		}
		cur = parent
	}
}
