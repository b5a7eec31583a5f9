// Package compat groups tracker issues by product identifier and works out
// which platforms have no compatibility report for each product.
package compat

import (
	"sort"
	"strings"
)

// IssueDetail is the summary of one issue contributing to a product.
type IssueDetail struct {
	Number      int      `json:"number"`
	URL         string   `json:"url"`
	Statuses    []string `json:"statuses"`
	Platforms   []string `json:"platforms"`
	MilestoneID int64    `json:"milestoneID,omitempty"`
}

// Status returns the status tags joined by a comma.
func (d *IssueDetail) Status() string {
	return strings.Join(d.Statuses, ", ")
}

// Platform returns the platform tags joined by a comma.
func (d *IssueDetail) Platform() string {
	return strings.Join(d.Platforms, ", ")
}

func (d *IssueDetail) HasPlatform(tag string) bool {
	return containsString(d.Platforms, tag)
}

func (d *IssueDetail) HasStatus(tag string) bool {
	return containsString(d.Statuses, tag)
}

// ProductRecord aggregates every issue sharing a product identifier.
type ProductRecord struct {
	ID     string        `json:"id"`
	Name   string        `json:"name"`
	Issues []IssueDetail `json:"issues"`

	platforms map[string]struct{}
	// order is the position of the first issue of the record in the input.
	order int
}

func newProductRecord(id, name string, order int) *ProductRecord {
	return &ProductRecord{
		ID:        id,
		Name:      name,
		Issues:    []IssueDetail{},
		platforms: make(map[string]struct{}),
		order:     order,
	}
}

func (r *ProductRecord) addIssue(d IssueDetail) {
	r.Issues = append(r.Issues, d)
	for _, p := range d.Platforms {
		r.platforms[p] = struct{}{}
	}
}

// HasPlatform reports whether any issue of the record is tagged with tag.
func (r *ProductRecord) HasPlatform(tag string) bool {
	_, ok := r.platforms[tag]
	return ok
}

// Platforms returns the union of the platform tags of all issues, sorted.
func (r *ProductRecord) Platforms() []string {
	tags := make([]string, 0, len(r.platforms))
	for p := range r.platforms {
		tags = append(tags, p)
	}
	sort.Strings(tags)
	return tags
}

// Catalog is the set of product records built from a list of issues.
type Catalog struct {
	records map[string]*ProductRecord
	order   []string

	// Issues is the number of issues with a product identifier.
	Issues int
	// Skipped is the number of issues dropped for not having one.
	Skipped int
}

func NewCatalog() *Catalog {
	return &Catalog{records: make(map[string]*ProductRecord)}
}

func (c *Catalog) add(id, name string, d IssueDetail) {
	rec, ok := c.records[id]
	if !ok {
		rec = newProductRecord(id, name, len(c.order))
		c.records[id] = rec
		c.order = append(c.order, id)
	}
	rec.addIssue(d)
	c.Issues++
}

// Get returns the record of a product identifier.
func (c *Catalog) Get(id string) (*ProductRecord, bool) {
	rec, ok := c.records[id]
	return rec, ok
}

func (c *Catalog) Len() int {
	return len(c.order)
}

// Records returns the records in encounter order.
func (c *Catalog) Records() []*ProductRecord {
	out := make([]*ProductRecord, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.records[id])
	}
	return out
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
