package compat

import (
	log "github.com/sirupsen/logrus"

	"github.com/compat-todo/compat-todo/internal/profile"
	"github.com/compat-todo/compat-todo/internal/tracker"
)

// Normalize builds the catalog of products from the fetched issues. Issues
// without a product identifier in the title are skipped.
func Normalize(issues []tracker.Issue, p *profile.Profile) *Catalog {
	c := NewCatalog()
	for i := range issues {
		issue := &issues[i]
		id, ok := p.MatchProduct(issue.Title)
		if !ok {
			log.Debugf("Skipping issue #%d without product identifier: %q", issue.Number, issue.Title)
			c.Skipped++
			continue
		}
		labels := issue.LabelNames()
		c.add(id, p.DisplayName(issue.Title), IssueDetail{
			Number:      issue.Number,
			URL:         issue.HTMLURL,
			Statuses:    p.StatusTags(labels),
			Platforms:   p.PlatformTags(labels),
			MilestoneID: issue.MilestoneID(),
		})
	}
	log.Debugf("Normalized %d issues into %d products, %d skipped", c.Issues, c.Len(), c.Skipped)
	return c
}
