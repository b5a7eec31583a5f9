// Package pipeline drives a report run: load or fetch the issues, classify
// them and write the site.
package pipeline

import (
	"context"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/compat-todo/compat-todo/internal/cache"
	"github.com/compat-todo/compat-todo/internal/compat"
	"github.com/compat-todo/compat-todo/internal/metrics"
	"github.com/compat-todo/compat-todo/internal/profile"
	"github.com/compat-todo/compat-todo/internal/report"
	"github.com/compat-todo/compat-todo/internal/tracker"
)

const (
	SourceCache   = "cache"
	SourceTracker = "tracker"
)

// Options holds the settings of a run.
type Options struct {
	Repository string
	APIURL     string
	UserAgent  string
	Timeout    time.Duration

	OutputDir string
	// CacheFile is read when UseCache is set and the file exists, and written
	// after every fetch. Empty disables the cache.
	CacheFile string
	UseCache  bool

	Profile  *profile.Profile
	Policy   compat.Policy
	Outdated bool

	Chart      bool
	Workbook   bool
	ShowCounts bool
}

// Result is the summary of a finished run.
type Result struct {
	Source string
	Totals compat.Totals
	Pages  []report.PageSummary
	Files  []string
	Timers *metrics.Timers
}

// Run executes the whole pipeline. Nothing is written to the output
// directory when the issues can't be fetched.
func Run(ctx context.Context, opts *Options) (*Result, error) {
	if opts.Profile == nil {
		return nil, errors.New("missing profile")
	}
	if opts.OutputDir == "" {
		return nil, errors.New("missing output directory")
	}
	res := &Result{Timers: metrics.NewTimers()}
	res.Timers.Add("total")

	res.Timers.Lap("fetch")
	issues, cutoff, source, err := loadIssues(ctx, opts)
	if err != nil {
		return nil, err
	}
	res.Source = source

	res.Timers.Lap("normalize")
	catalog := compat.Normalize(issues, opts.Profile)

	res.Timers.Lap("classify")
	cl := compat.Classify(catalog, opts.Profile, compat.Options{
		Policy:   opts.Policy,
		Outdated: opts.Outdated,
		Cutoff:   cutoff,
	})
	res.Totals = cl.Totals
	log.Infof("Classified %d games from %d issues (%d skipped)", cl.Totals.Products, cl.Totals.Issues, cl.Totals.Skipped)

	res.Timers.Lap("render")
	site, pages, err := render(opts, cl)
	if err != nil {
		return nil, err
	}
	res.Pages = pages

	res.Timers.Lap("save")
	if err := site.Save(opts.OutputDir); err != nil {
		return nil, err
	}
	removed, err := site.Prune(opts.OutputDir, report.OwnedFiles(opts.Profile))
	if err != nil {
		return nil, err
	}
	if len(removed) > 0 {
		log.Infof("Removed %d files of a previous run: %v", len(removed), removed)
	}
	res.Files = site.Files()

	res.Timers.Stop()
	res.Timers.Add("total")
	return res, nil
}

// loadIssues returns the issues and the milestone cutoff, from the cache
// when allowed, or from the tracker.
func loadIssues(ctx context.Context, opts *Options) ([]tracker.Issue, int64, string, error) {
	if opts.UseCache && opts.CacheFile != "" && cache.Exists(opts.CacheFile) {
		log.Infof("Using cached %s...", opts.CacheFile)
		issues, err := cache.Load(opts.CacheFile)
		if err != nil {
			return nil, 0, "", errors.Wrap(err, "unable to load cached issues")
		}
		var cutoff int64
		if opts.Outdated {
			cutoff = cachedCutoff(opts.CacheFile, issues)
		}
		return issues, cutoff, SourceCache, nil
	}
	if opts.UseCache {
		log.Warnf("Cache file %q not found, fetching issues", opts.CacheFile)
	}

	client, err := tracker.NewClient(tracker.Config{
		APIURL:     opts.APIURL,
		Repository: opts.Repository,
		UserAgent:  opts.UserAgent,
		Timeout:    opts.Timeout,
	})
	if err != nil {
		return nil, 0, "", err
	}
	defer client.CloseIdleConnections()

	log.Infof("Fetching issues from %s...", client.Repository())
	issues, err := client.ListIssues(ctx)
	if err != nil {
		return nil, 0, "", errors.Wrap(err, "unable to fetch issues")
	}

	var cutoff int64
	var milestones []tracker.Milestone
	if opts.Outdated {
		milestones, err = client.ListMilestones(ctx)
		if err != nil {
			return nil, 0, "", errors.Wrap(err, "unable to fetch milestones")
		}
		cutoff = tracker.LatestMilestone(milestones)
		log.Debugf("Latest milestone: %d", cutoff)
	}

	if opts.CacheFile != "" {
		if err := cache.Save(opts.CacheFile, issues); err != nil {
			log.Warnf("Unable to save cache: %v", err)
		}
		if opts.Outdated {
			if err := cache.SaveMilestones(opts.CacheFile, milestones); err != nil {
				log.Warnf("Unable to save milestones cache: %v", err)
			}
		} else if err := cache.RemoveMilestones(opts.CacheFile); err != nil {
			log.Warnf("Unable to remove milestones cache: %v", err)
		}
	}
	return issues, cutoff, SourceTracker, nil
}

// cachedCutoff returns the latest milestone from the milestones saved with the
// issues. Without them it falls back to the highest milestone referenced by
// an issue, which misses milestones that have no issue yet.
func cachedCutoff(cacheFile string, issues []tracker.Issue) int64 {
	milestones, err := cache.LoadMilestones(cacheFile)
	if err == nil {
		return tracker.LatestMilestone(milestones)
	}
	log.Warnf("Milestones not found in cache (%v), using the latest milestone of the cached issues", err)
	return tracker.LatestIssueMilestone(issues)
}

// render builds every document of the site in memory.
func render(opts *Options, cl *compat.Classification) (*report.Site, []report.PageSummary, error) {
	renderer, err := report.NewRenderer(opts.Profile)
	if err != nil {
		return nil, nil, err
	}
	site := report.NewSite()
	pages := report.Pages(opts.Profile, cl)

	for _, page := range pages {
		group := cl.Missing[page.Platform.Tag]
		if page.Kind == report.KindOutdated {
			group = cl.Outdated[page.Platform.Tag]
		}
		doc, err := renderer.RenderList(page.Kind, page.Platform, group)
		if err != nil {
			return nil, nil, err
		}
		site.AddString(page.File, doc)
		log.Debugf("Rendered %s with %d games", page.File, page.Count)
	}

	indexOpts := report.IndexOptions{ShowCounts: opts.ShowCounts}
	if opts.ShowCounts {
		indexOpts.Totals = &cl.Totals
	}
	if opts.Chart {
		doc, err := renderer.RenderChart(pages)
		if err != nil {
			return nil, nil, err
		}
		site.AddString(report.ChartFileName, doc)
		indexOpts.ChartFile = report.ChartFileName
	}
	if opts.Workbook {
		book, err := renderer.NewWorkbook(pages, cl)
		if err != nil {
			return nil, nil, err
		}
		buf, err := book.WriteToBuffer()
		if err != nil {
			return nil, nil, errors.Wrap(err, "unable to encode workbook")
		}
		site.Add(report.WorkbookFileName, buf.Bytes())
		indexOpts.WorkbookFile = report.WorkbookFileName
	}

	doc, err := renderer.RenderIndex(pages, indexOpts)
	if err != nil {
		return nil, nil, err
	}
	site.AddString(report.IndexFileName, doc)

	if err := site.AddStyle(); err != nil {
		return nil, nil, err
	}
	return site, pages, nil
}
