// Package profile describes how issues of a tracker are read: the pattern of
// the product identifier in titles, the status and platform label sets, and
// the texts used by the generated site.
package profile

import (
	"os"
	"regexp"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"

	"github.com/compat-todo/compat-todo/internal/assets"
)

const defaultProfileFile = "default.yaml"

type Profile struct {
	Product  Product  `yaml:"product"`
	Status   Status   `yaml:"status"`
	Platform Platform `yaml:"platform"`
	Site     Site     `yaml:"site"`

	pattern *regexp.Regexp
}

// Product is the identifier and display name extraction rule.
type Product struct {
	Pattern   string `yaml:"pattern"`
	Delimiter string `yaml:"delimiter"`
	Unknown   string `yaml:"unknown"`
}

// Status is the set of compatibility labels, in order of preference.
type Status struct {
	Prefix string   `yaml:"prefix"`
	Best   string   `yaml:"best"`
	Values []string `yaml:"values"`
}

type Platform struct {
	Prefix string           `yaml:"prefix"`
	Values []PlatformTarget `yaml:"values"`
}

// PlatformTarget is a platform tag with its display name and page slug.
type PlatformTarget struct {
	Tag  string `yaml:"tag"`
	Name string `yaml:"name"`
	Page string `yaml:"page"`
}

type Site struct {
	ProjectName   string `yaml:"projectName"`
	ProjectURL    string `yaml:"projectURL"`
	TrackerURL    string `yaml:"trackerURL"`
	IssueTemplate string `yaml:"issueTemplate"`
	SerialsURL    string `yaml:"serialsURL"`
	UpdatesURL    string `yaml:"updatesURL"`
}

// Default returns the profile embedded in the binary.
func Default() (*Profile, error) {
	buf, err := assets.ReadFile(assets.ProfilesPath + "/" + defaultProfileFile)
	if err != nil {
		return nil, err
	}
	return Parse(buf)
}

// Load reads a profile from a YAML file on disk. An empty path returns the
// default profile.
func Load(path string) (*Profile, error) {
	if path == "" {
		return Default()
	}
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to read profile %s", path)
	}
	p, err := Parse(buf)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid profile %s", path)
	}
	return p, nil
}

// Parse decodes and validates a YAML profile.
func Parse(buf []byte) (*Profile, error) {
	p := &Profile{}
	if err := yaml.UnmarshalStrict(buf, p); err != nil {
		return nil, errors.Wrap(err, "unable to parse profile")
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Validate checks the required fields and compiles the identifier pattern.
func (p *Profile) Validate() error {
	if p.Product.Pattern == "" {
		return errors.New("product.pattern is required")
	}
	re, err := regexp.Compile(p.Product.Pattern)
	if err != nil {
		return errors.Wrapf(err, "product.pattern %q", p.Product.Pattern)
	}
	if p.Product.Delimiter == "" {
		return errors.New("product.delimiter is required")
	}
	if p.Product.Unknown == "" {
		p.Product.Unknown = "Unknown"
	}
	if len(p.Status.Values) == 0 {
		return errors.New("status.values must not be empty")
	}
	if p.Status.Best != "" && !p.HasStatus(p.Status.Best) {
		return errors.Errorf("status.best %q is not one of status.values", p.Status.Best)
	}
	if len(p.Platform.Values) == 0 {
		return errors.New("platform.values must not be empty")
	}
	pages := make(map[string]struct{}, len(p.Platform.Values))
	for i := range p.Platform.Values {
		pt := &p.Platform.Values[i]
		if pt.Tag == "" {
			return errors.Errorf("platform.values[%d].tag is required", i)
		}
		if pt.Name == "" {
			pt.Name = pt.Tag
		}
		if pt.Page == "" {
			pt.Page = strings.ToLower(pt.Tag)
		}
		if _, ok := pages[pt.Page]; ok {
			return errors.Errorf("duplicated platform page %q", pt.Page)
		}
		pages[pt.Page] = struct{}{}
	}
	p.Site.TrackerURL = strings.TrimSuffix(p.Site.TrackerURL, "/")
	p.pattern = re
	return nil
}

// MatchProduct returns the first product identifier found in title.
func (p *Profile) MatchProduct(title string) (string, bool) {
	id := p.pattern.FindString(title)
	return id, id != ""
}

// DisplayName returns the second segment of a delimiter-split title, or the
// unknown name when the title has no delimiter.
func (p *Profile) DisplayName(title string) string {
	parts := strings.Split(title, p.Product.Delimiter)
	if len(parts) < 2 {
		return p.Product.Unknown
	}
	return parts[1]
}

func (p *Profile) HasStatus(s string) bool {
	for _, v := range p.Status.Values {
		if v == s {
			return true
		}
	}
	return false
}

// StatusTags returns the status tags present in labels, in profile order.
func (p *Profile) StatusTags(labels []string) []string {
	tags := []string{}
	for _, v := range p.Status.Values {
		if contains(labels, p.Status.Prefix+v) {
			tags = append(tags, v)
		}
	}
	return tags
}

// PlatformTags returns the platform tags present in labels, in profile order.
func (p *Profile) PlatformTags(labels []string) []string {
	tags := []string{}
	for _, v := range p.Platform.Values {
		if contains(labels, p.Platform.Prefix+v.Tag) {
			tags = append(tags, v.Tag)
		}
	}
	return tags
}

// Platforms returns the configured platform tags.
func (p *Profile) Platforms() []string {
	tags := make([]string, 0, len(p.Platform.Values))
	for _, v := range p.Platform.Values {
		tags = append(tags, v.Tag)
	}
	return tags
}

// Target returns the platform target for a tag.
func (p *Profile) Target(tag string) (PlatformTarget, bool) {
	for _, v := range p.Platform.Values {
		if v.Tag == tag {
			return v, true
		}
	}
	return PlatformTarget{}, false
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
