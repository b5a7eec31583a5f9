package compat

import (
	"sort"
	"strings"

	"github.com/montanaflynn/stats"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/compat-todo/compat-todo/internal/profile"
)

// Policy decides when a product is missing a report for a platform.
type Policy string

const (
	// PolicyAbsent lists a product whenever no issue is tagged with the
	// platform.
	PolicyAbsent Policy = "absent"
	// PolicyCoveredElsewhere lists a product only when the platform is absent
	// and at least one other platform already has an issue.
	PolicyCoveredElsewhere Policy = "covered-elsewhere"
)

// ParsePolicy validates a policy name, the empty string is PolicyAbsent.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(s) {
	case "", PolicyAbsent:
		return PolicyAbsent, nil
	case PolicyCoveredElsewhere:
		return PolicyCoveredElsewhere, nil
	}
	return "", errors.Errorf("unknown policy %q, valid values: %s, %s", s, PolicyAbsent, PolicyCoveredElsewhere)
}

type Options struct {
	Policy Policy
	// Outdated enables the outdated groups.
	Outdated bool
	// Cutoff is the most recent milestone id. Issues in it, or without a
	// milestone, are not considered for outdated groups. Zero disables the
	// bound.
	Cutoff int64
}

// Classification holds the groups per platform tag, each sorted by display
// name.
type Classification struct {
	Platforms []string                    `json:"platforms"`
	Missing   map[string][]*ProductRecord `json:"missing"`
	Outdated  map[string][]*ProductRecord `json:"outdated,omitempty"`
	Totals    Totals                      `json:"totals"`
}

// Totals accumulates the counters of a run.
type Totals struct {
	Products         int            `json:"products"`
	Issues           int            `json:"issues"`
	Skipped          int            `json:"skipped"`
	Missing          map[string]int `json:"missing"`
	Outdated         map[string]int `json:"outdated,omitempty"`
	IssuesPerProduct Distribution   `json:"issuesPerProduct"`
}

type Distribution struct {
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	Max    float64 `json:"max"`
}

// Classify computes the missing (and optionally outdated) groups for every
// platform of the profile. The catalog is not modified.
func Classify(c *Catalog, p *profile.Profile, opts Options) *Classification {
	platforms := p.Platforms()
	cl := &Classification{
		Platforms: platforms,
		Missing:   make(map[string][]*ProductRecord, len(platforms)),
		Totals: Totals{
			Products: c.Len(),
			Issues:   c.Issues,
			Skipped:  c.Skipped,
			Missing:  make(map[string]int, len(platforms)),
		},
	}
	outdated := opts.Outdated && p.Status.Best != ""
	if opts.Outdated && !outdated {
		log.Warn("Outdated groups requested but the profile has no best status, skipping")
	}
	if outdated {
		cl.Outdated = make(map[string][]*ProductRecord, len(platforms))
		cl.Totals.Outdated = make(map[string]int, len(platforms))
	}

	records := c.Records()
	for _, tag := range platforms {
		missing := []*ProductRecord{}
		for _, rec := range records {
			if isMissing(rec, tag, opts.Policy) {
				missing = append(missing, rec)
			}
		}
		sortByName(missing)
		cl.Missing[tag] = missing
		cl.Totals.Missing[tag] = len(missing)

		if !outdated {
			continue
		}
		old := []*ProductRecord{}
		for _, rec := range records {
			if isOutdated(rec, tag, p.Status.Best, opts.Cutoff) {
				old = append(old, rec)
			}
		}
		sortByName(old)
		cl.Outdated[tag] = old
		cl.Totals.Outdated[tag] = len(old)
	}

	cl.Totals.IssuesPerProduct = distribution(records)
	return cl
}

func isMissing(rec *ProductRecord, tag string, policy Policy) bool {
	if rec.HasPlatform(tag) {
		return false
	}
	if policy == PolicyCoveredElsewhere {
		return len(rec.platforms) > 0
	}
	return true
}

// isOutdated reports whether the record has eligible issues for the platform
// and none of them has the best status.
func isOutdated(rec *ProductRecord, tag, best string, cutoff int64) bool {
	seen := false
	for i := range rec.Issues {
		d := &rec.Issues[i]
		if !d.HasPlatform(tag) || !beforeCutoff(d, cutoff) {
			continue
		}
		if d.HasStatus(best) {
			return false
		}
		seen = true
	}
	return seen
}

func beforeCutoff(d *IssueDetail, cutoff int64) bool {
	if cutoff == 0 {
		return true
	}
	return d.MilestoneID != 0 && d.MilestoneID < cutoff
}

// sortByName orders records by case-insensitive display name, equal names by
// encounter order.
func sortByName(records []*ProductRecord) {
	sort.Slice(records, func(i, j int) bool {
		a, b := strings.ToLower(records[i].Name), strings.ToLower(records[j].Name)
		if a != b {
			return a < b
		}
		return records[i].order < records[j].order
	})
}

func distribution(records []*ProductRecord) Distribution {
	if len(records) == 0 {
		return Distribution{}
	}
	data := make(stats.Float64Data, 0, len(records))
	for _, rec := range records {
		data = append(data, float64(len(rec.Issues)))
	}
	mean, _ := stats.Mean(data)
	median, _ := stats.Median(data)
	max, _ := stats.Max(data)
	return Distribution{Mean: mean, Median: median, Max: max}
}
