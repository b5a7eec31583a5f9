package tracker

import "encoding/json"

// Issue is the payload item returned by the issues listing endpoint. Only the
// fields used by the reports are decoded, the whole item is kept in Raw.
type Issue struct {
	Number    int        `json:"number"`
	Title     string     `json:"title"`
	HTMLURL   string     `json:"html_url"`
	Labels    []Label    `json:"labels"`
	Milestone *Milestone `json:"milestone,omitempty"`

	// Raw is the item as received. When set it is what MarshalJSON returns.
	Raw json.RawMessage `json:"-"`
}

type issueFields Issue

func (i *Issue) UnmarshalJSON(data []byte) error {
	fields := issueFields{}
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	*i = Issue(fields)
	i.Raw = append(json.RawMessage(nil), data...)
	return nil
}

func (i Issue) MarshalJSON() ([]byte, error) {
	if len(i.Raw) > 0 {
		return i.Raw, nil
	}
	return json.Marshal(issueFields(i))
}

type Label struct {
	Name string `json:"name"`
}

// Milestone is the payload item returned by the milestones listing endpoint,
// also embedded in issues.
type Milestone struct {
	ID     int64  `json:"id"`
	Number int    `json:"number,omitempty"`
	Title  string `json:"title,omitempty"`
}

// LabelNames returns the names of the issue labels.
func (i *Issue) LabelNames() []string {
	names := make([]string, 0, len(i.Labels))
	for _, l := range i.Labels {
		names = append(names, l.Name)
	}
	return names
}

// MilestoneID returns the milestone id, zero when the issue has none.
func (i *Issue) MilestoneID() int64 {
	if i.Milestone == nil {
		return 0
	}
	return i.Milestone.ID
}

// LatestMilestone returns the highest milestone id, zero for an empty list.
func LatestMilestone(milestones []Milestone) int64 {
	var latest int64
	for _, m := range milestones {
		if m.ID > latest {
			latest = m.ID
		}
	}
	return latest
}

// LatestIssueMilestone returns the highest milestone id referenced by issues.
func LatestIssueMilestone(issues []Issue) int64 {
	var latest int64
	for i := range issues {
		if id := issues[i].MilestoneID(); id > latest {
			latest = id
		}
	}
	return latest
}
