package report

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/compat-todo/compat-todo/internal/assets"
)

// Site is the set of generated documents, keyed by file name.
type Site struct {
	files map[string][]byte
}

func NewSite() *Site {
	return &Site{files: make(map[string][]byte)}
}

// Add stores a document, replacing any previous one with the same name.
func (s *Site) Add(name string, content []byte) {
	s.files[name] = content
}

func (s *Site) AddString(name, content string) {
	s.Add(name, []byte(content))
}

// Get returns a stored document.
func (s *Site) Get(name string) ([]byte, bool) {
	buf, ok := s.files[name]
	return buf, ok
}

// Files returns the stored file names, sorted.
func (s *Site) Files() []string {
	names := make([]string, 0, len(s.files))
	for name := range s.files {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// AddStyle stores the stylesheet shipped with the templates.
func (s *Site) AddStyle() error {
	buf, err := assets.ReadSiteFile(StyleFileName)
	if err != nil {
		return err
	}
	s.Add(StyleFileName, buf)
	return nil
}

// Save writes every document to dir, creating it when needed.
func (s *Site) Save(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Wrapf(err, "unable to create output directory %s", dir)
	}
	for _, name := range s.Files() {
		dest := filepath.Join(dir, name)
		if err := os.WriteFile(dest, s.files[name], 0644); err != nil {
			return errors.Wrapf(err, "unable to write %s", dest)
		}
		log.Debugf("Saved %s", dest)
	}
	return nil
}

// Prune removes from dir the owned files this site doesn't hold, left by a
// previous run with other options. Other files are not touched.
func (s *Site) Prune(dir string, owned []string) ([]string, error) {
	removed := []string{}
	for _, name := range owned {
		if _, ok := s.files[name]; ok {
			continue
		}
		dest := filepath.Join(dir, name)
		err := os.Remove(dest)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return removed, errors.Wrapf(err, "unable to remove stale file %s", dest)
		}
		log.Debugf("Removed stale %s", dest)
		removed = append(removed, name)
	}
	return removed, nil
}
