// Package report renders the coverage groups as a static site: one list page
// per platform and group kind, an index page linking them, a chart page and
// a workbook with the same data.
//
// Rendering is pure: every call builds its own buffer and returns the
// document. Writing files is done by Site.Save.
package report

import (
	"fmt"

	"github.com/compat-todo/compat-todo/internal/compat"
	"github.com/compat-todo/compat-todo/internal/profile"
)

const (
	IndexFileName    = "index.html"
	ChartFileName    = "chart.html"
	WorkbookFileName = "coverage.xlsx"
	StyleFileName    = "style.css"
)

// Kind is the type of group listed in a page.
type Kind string

const (
	KindMissing  Kind = "missing"
	KindOutdated Kind = "outdated"
)

// PageSummary describes a generated list page for the index.
type PageSummary struct {
	Kind     Kind
	Platform profile.PlatformTarget
	File     string
	Label    string
	Count    int
}

// FileName returns the page file name for a group kind and platform.
func FileName(kind Kind, platform profile.PlatformTarget) string {
	if kind == KindOutdated {
		return fmt.Sprintf("outdated-%s.html", platform.Page)
	}
	return fmt.Sprintf("%s.html", platform.Page)
}

// Pages lists the pages to generate for a classification, in profile order,
// missing pages first.
func Pages(p *profile.Profile, cl *compat.Classification) []PageSummary {
	pages := []PageSummary{}
	for _, kind := range []Kind{KindMissing, KindOutdated} {
		groups := cl.Missing
		if kind == KindOutdated {
			groups = cl.Outdated
		}
		if groups == nil {
			continue
		}
		for _, tag := range cl.Platforms {
			target, ok := p.Target(tag)
			if !ok {
				continue
			}
			pages = append(pages, PageSummary{
				Kind:     kind,
				Platform: target,
				File:     FileName(kind, target),
				Label:    pageLabel(kind, target),
				Count:    len(groups[tag]),
			})
		}
	}
	return pages
}

// OwnedFiles lists every file a run can write for the profile, whatever the
// options.
func OwnedFiles(p *profile.Profile) []string {
	files := []string{IndexFileName, ChartFileName, WorkbookFileName, StyleFileName}
	for _, kind := range []Kind{KindMissing, KindOutdated} {
		for _, tag := range p.Platforms() {
			if target, ok := p.Target(tag); ok {
				files = append(files, FileName(kind, target))
			}
		}
	}
	return files
}

func pageLabel(kind Kind, platform profile.PlatformTarget) string {
	if kind == KindOutdated {
		return fmt.Sprintf("Outdated issues for %s", platform.Name)
	}
	return fmt.Sprintf("Missing issues for %s", platform.Name)
}
