package tracker

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueDecode(t *testing.T) {
	payload := `[
		{"number": 1, "title": "CUSA00001 - Foo", "html_url": "https://github.com/o/r/issues/1",
		 "labels": [{"id": 5, "name": "os-linux"}, {"name": "status-boots"}],
		 "milestone": {"id": 99, "number": 3, "title": "v0.3.0"}, "state": "open"},
		{"number": 2, "title": "CUSA00002 - Bar", "html_url": "https://github.com/o/r/issues/2",
		 "labels": [], "milestone": null}
	]`
	issues := []Issue{}
	require.NoError(t, json.Unmarshal([]byte(payload), &issues))
	require.Len(t, issues, 2)

	assert.Equal(t, []string{"os-linux", "status-boots"}, issues[0].LabelNames())
	assert.Equal(t, int64(99), issues[0].MilestoneID())
	assert.Empty(t, issues[1].LabelNames())
	assert.Equal(t, int64(0), issues[1].MilestoneID())
	assert.Equal(t, int64(99), LatestIssueMilestone(issues))
}

func TestIssueKeepsRawItem(t *testing.T) {
	payload := `{"number": 7, "title": "CUSA00007 - Baz", "state": "open", "user": {"login": "someone"}}`
	issue := Issue{}
	require.NoError(t, json.Unmarshal([]byte(payload), &issue))
	assert.Equal(t, 7, issue.Number)
	assert.JSONEq(t, payload, string(issue.Raw))

	buf, err := json.Marshal(issue)
	require.NoError(t, err)
	assert.JSONEq(t, payload, string(buf), "fields not decoded are kept")

	built := Issue{Number: 8, Title: "CUSA00008 - Qux"}
	buf, err = json.Marshal(built)
	require.NoError(t, err)
	assert.JSONEq(t, `{"number": 8, "title": "CUSA00008 - Qux", "html_url": "", "labels": null}`, string(buf))
}
