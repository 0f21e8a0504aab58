package version

import (
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
)

func TestVersionDefaults(t *testing.T) {
	assert.NotEmpty(t, Version)
	assert.Contains(t, String(), "perlsense ")
}

func TestColoredKeepsText(t *testing.T) {
	prev := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = prev })

	orig := Version
	t.Cleanup(func() { Version = orig })

	Version = "1.2.3-rc1"
	assert.Equal(t, "1.2.3-rc1", Colored())
	Version = "weird"
	assert.Equal(t, "weird", Colored())
}

func TestOverrides(t *testing.T) {
	prev := color.NoColor
	color.NoColor = true
	origV, origC, origD := Version, GitCommit, BuildDate
	t.Cleanup(func() {
		color.NoColor = prev
		Version, GitCommit, BuildDate = origV, origC, origD
	})

	Version = "1.2.3"
	GitCommit = "abc123def4567890"
	BuildDate = "2024-01-15T10:30:00Z"
	assert.Equal(t, "perlsense 1.2.3 (abc123def456) built 2024-01-15T10:30:00Z", String())
}
