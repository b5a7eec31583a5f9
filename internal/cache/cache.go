// Package cache keeps a snapshot of the fetched issues on disk, so reports can
// be rebuilt without calling the tracker. Files ending with .xz are
// compressed.
package cache

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/ulikunitz/xz"

	"github.com/compat-todo/compat-todo/internal/tracker"
)

const (
	compressedSuffix = ".xz"
	jsonSuffix       = ".json"
	milestonesSuffix = ".milestones.json"
)

// Exists reports whether a snapshot file is present at path.
func Exists(path string) bool {
	st, err := os.Stat(path)
	return err == nil && !st.IsDir()
}

// Load reads a snapshot. A snapshot that is not a JSON array of issues is
// reported as a *tracker.DecodeError.
func Load(path string) ([]tracker.Issue, error) {
	issues := []tracker.Issue{}
	if err := read(path, &issues); err != nil {
		return nil, err
	}
	log.Debugf("Loaded %d issues from cache %s", len(issues), path)
	return issues, nil
}

// Save writes the snapshot, creating the parent directory when needed.
func Save(path string, issues []tracker.Issue) error {
	if issues == nil {
		issues = []tracker.Issue{}
	}
	if err := write(path, issues); err != nil {
		return err
	}
	log.Debugf("Saved %d issues to cache %s", len(issues), path)
	return nil
}

// MilestonesPath returns where the milestones of the issues snapshot at path
// are kept: issues.json gives issues.milestones.json, issues.json.xz gives
// issues.milestones.json.xz.
func MilestonesPath(path string) string {
	suffix := ""
	if isCompressed(path) {
		suffix = compressedSuffix
		path = strings.TrimSuffix(path, compressedSuffix)
	}
	return strings.TrimSuffix(path, jsonSuffix) + milestonesSuffix + suffix
}

// LoadMilestones reads the milestones saved along the issues snapshot at path.
func LoadMilestones(path string) ([]tracker.Milestone, error) {
	milestones := []tracker.Milestone{}
	if err := read(MilestonesPath(path), &milestones); err != nil {
		return nil, err
	}
	return milestones, nil
}

// SaveMilestones writes the milestones along the issues snapshot at path.
func SaveMilestones(path string, milestones []tracker.Milestone) error {
	if milestones == nil {
		milestones = []tracker.Milestone{}
	}
	return write(MilestonesPath(path), milestones)
}

// RemoveMilestones deletes the milestones saved along the issues snapshot at
// path, if any.
func RemoveMilestones(path string) error {
	err := os.Remove(MilestonesPath(path))
	if err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, "unable to remove %s", MilestonesPath(path))
	}
	return nil
}

func read(path string, v interface{}) error {
	buf, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "unable to read cache file %s", path)
	}
	if isCompressed(path) {
		buf, err = decompress(buf)
		if err != nil {
			return &tracker.DecodeError{Source: path, Err: err}
		}
	}
	if err := json.Unmarshal(buf, v); err != nil {
		return &tracker.DecodeError{Source: path, Err: err}
	}
	return nil
}

func write(path string, v interface{}) error {
	buf, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		return errors.Wrapf(err, "unable to encode cache file %s", path)
	}
	if isCompressed(path) {
		buf, err = compress(buf)
		if err != nil {
			return errors.Wrapf(err, "unable to compress cache file %s", path)
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrapf(err, "unable to create cache directory for %s", path)
	}
	if err := os.WriteFile(path, buf, 0644); err != nil {
		return errors.Wrapf(err, "unable to write cache file %s", path)
	}
	return nil
}

func isCompressed(path string) bool {
	return strings.HasSuffix(path, compressedSuffix)
}

func compress(buf []byte) ([]byte, error) {
	var out bytes.Buffer
	w, err := xz.NewWriter(&out)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(buf); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

func decompress(buf []byte) ([]byte, error) {
	r, err := xz.NewReader(bytes.NewReader(buf))
	if err != nil {
		return nil, err
	}
	return io.ReadAll(r)
}
