package report

import (
	"bytes"
	"fmt"
	"html/template"
	"net/url"

	"github.com/pkg/errors"

	"github.com/compat-todo/compat-todo/internal/assets"
	"github.com/compat-todo/compat-todo/internal/compat"
	"github.com/compat-todo/compat-todo/internal/profile"
)

const (
	listTemplateFile  = "list.html"
	indexTemplateFile = "index.html"
)

// Renderer builds the HTML documents of the site from the embedded templates.
type Renderer struct {
	profile *profile.Profile
	list    *template.Template
	index   *template.Template
}

type listView struct {
	Title        string
	KindTitle    string
	PlatformName string
	Explanation  string
	NewIssueURL  string
	Site         profile.Site
	Count        int
	Entries      []listEntry
}

type listEntry struct {
	ID        string
	Name      string
	SearchURL string
	ReportURL string
	Issues    []issueLink
}

type issueLink struct {
	URL  string
	Text string
}

type indexView struct {
	Site         profile.Site
	Pages        []PageSummary
	ShowCounts   bool
	ChartFile    string
	WorkbookFile string
	Totals       *compat.Totals
}

// IndexOptions selects the optional parts of the index page.
type IndexOptions struct {
	ShowCounts   bool
	ChartFile    string
	WorkbookFile string
	Totals       *compat.Totals
}

// NewRenderer parses the site templates.
func NewRenderer(p *profile.Profile) (*Renderer, error) {
	list, err := parseTemplate(listTemplateFile)
	if err != nil {
		return nil, err
	}
	index, err := parseTemplate(indexTemplateFile)
	if err != nil {
		return nil, err
	}
	return &Renderer{profile: p, list: list, index: index}, nil
}

func parseTemplate(name string) (*template.Template, error) {
	buf, err := assets.ReadSiteFile(name)
	if err != nil {
		return nil, err
	}
	tmpl, err := template.New(name).Delims("[[", "]]").Parse(string(buf))
	if err != nil {
		return nil, errors.Wrapf(err, "unable to parse template %s", name)
	}
	return tmpl, nil
}

// RenderList renders the page listing a group of products for a platform.
func (r *Renderer) RenderList(kind Kind, platform profile.PlatformTarget, group []*compat.ProductRecord) (string, error) {
	site := r.profile.Site
	view := listView{
		PlatformName: platform.Name,
		NewIssueURL:  r.newIssueURL(nil),
		Site:         site,
		Count:        len(group),
		Entries:      make([]listEntry, 0, len(group)),
	}
	switch kind {
	case KindOutdated:
		view.KindTitle = "Outdated"
		view.Explanation = fmt.Sprintf("Here's a list of games that have an issue for %s, but none of them report the %s status.", platform.Name, r.profile.Status.Best)
	default:
		view.KindTitle = "Missing"
		view.Explanation = fmt.Sprintf("Here's a list of games that don't yet have an issue for %s.", platform.Name)
	}
	view.Title = fmt.Sprintf("%s %s Compatibility Reports for %s", view.KindTitle, site.ProjectName, platform.Name)

	for _, rec := range group {
		entry := listEntry{
			ID:        rec.ID,
			Name:      rec.Name,
			SearchURL: r.searchURL(rec.ID),
			ReportURL: r.newIssueURL(rec),
			Issues:    make([]issueLink, 0, len(rec.Issues)),
		}
		for i := range rec.Issues {
			d := &rec.Issues[i]
			entry.Issues = append(entry.Issues, issueLink{
				URL:  d.URL,
				Text: fmt.Sprintf("%s%s on %s%s", r.profile.Status.Prefix, d.Status(), r.profile.Platform.Prefix, d.Platform()),
			})
		}
		view.Entries = append(view.Entries, entry)
	}

	var buf bytes.Buffer
	if err := r.list.Execute(&buf, view); err != nil {
		return "", errors.Wrapf(err, "unable to render %s page for %s", kind, platform.Name)
	}
	return buf.String(), nil
}

// RenderIndex renders the page linking every generated list page.
func (r *Renderer) RenderIndex(pages []PageSummary, opts IndexOptions) (string, error) {
	view := indexView{
		Site:         r.profile.Site,
		Pages:        pages,
		ShowCounts:   opts.ShowCounts,
		ChartFile:    opts.ChartFile,
		WorkbookFile: opts.WorkbookFile,
		Totals:       opts.Totals,
	}
	var buf bytes.Buffer
	if err := r.index.Execute(&buf, view); err != nil {
		return "", errors.Wrap(err, "unable to render index page")
	}
	return buf.String(), nil
}

// searchURL is the tracker issue search for a product identifier.
func (r *Renderer) searchURL(id string) string {
	params := url.Values{}
	params.Set("q", id)
	return fmt.Sprintf("%s/issues?%s", r.profile.Site.TrackerURL, params.Encode())
}

// newIssueURL is the new issue form, pre-filled with the product when rec is
// not nil.
func (r *Renderer) newIssueURL(rec *compat.ProductRecord) string {
	params := url.Values{}
	if r.profile.Site.IssueTemplate != "" {
		params.Set("template", r.profile.Site.IssueTemplate)
	}
	if rec != nil {
		params.Set("title", rec.ID+r.profile.Product.Delimiter+rec.Name)
		params.Set("game-name", rec.Name)
		params.Set("game-code", rec.ID)
	}
	if len(params) == 0 {
		return r.profile.Site.TrackerURL + "/issues/new"
	}
	return fmt.Sprintf("%s/issues/new?%s", r.profile.Site.TrackerURL, params.Encode())
}
