package version

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionString(t *testing.T) {
	vc := VersionContext{Name: "compat-todo", Version: "v1.2.0", Commit: "abc123"}
	assert.Equal(t, "compat-todo: v1.2.0+abc123", vc.String())
	assert.Equal(t, "compat-todo/v1.2.0", vc.UserAgent())
}

func TestCmdVersion(t *testing.T) {
	out := &bytes.Buffer{}
	cmd := NewCmdVersion()
	cmd.SetOut(out)
	cmd.SetArgs([]string{})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), Version.String())
	assert.Contains(t, out.String(), "Go: go")
}
