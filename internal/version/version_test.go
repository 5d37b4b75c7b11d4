package version

import (
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
)

func override(t *testing.T, v, commit, date string) {
	t.Helper()
	origVersion, origCommit, origDate := Version, GitCommit, BuildDate
	t.Cleanup(func() {
		Version, GitCommit, BuildDate = origVersion, origCommit, origDate
	})
	Version, GitCommit, BuildDate = v, commit, date
}

func TestCurrent_Defaults(t *testing.T) {
	assert.NotEmpty(t, Version)
	info := Current()
	assert.Equal(t, Version, info.Version)
}

func TestCurrent_TrimsAndFallsBack(t *testing.T) {
	override(t, "  ", " abc123 ", "2024-01-15T10:30:00Z\n")
	info := Current()
	assert.Equal(t, Info{Version: "dev", GitCommit: "abc123", BuildDate: "2024-01-15T10:30:00Z"}, info)
}

func TestColored(t *testing.T) {
	prev := color.NoColor
	t.Cleanup(func() { color.NoColor = prev })

	color.NoColor = true
	assert.Equal(t, "0.1.0-dev", Colored("0.1.0-dev"))
	assert.Equal(t, "1.2.3", Colored("1.2.3"))

	color.NoColor = false
	out := Colored("1.2.3-rc.1")
	assert.Contains(t, out, "\x1b[")
	assert.Contains(t, out, "-rc.1")
	assert.Equal(t, "nightly", Colored("nightly"))
}
