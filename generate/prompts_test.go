package generate

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/d2r/core"
)

func TestLoadPromptsFallsBackToDefaults(t *testing.T) {
	prompts, err := LoadPrompts(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, DefaultPrompts(), prompts)
}

func TestLoadPromptsOverrides(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(
		filepath.Join(dir, introPromptFile),
		[]byte("Custom intro for TEMPLATE_MODULE_NAME.\n"), 0o644))

	prompts, err := LoadPrompts(dir)
	require.NoError(t, err)

	assert.Equal(t, "Custom intro for TEMPLATE_MODULE_NAME.", prompts.Intro)
	assert.Equal(t, DefaultPrompts().Assistant, prompts.Assistant)
	assert.Equal(t, DefaultPrompts().Subsection, prompts.Subsection)
}

func TestBuildPromptSubstitutesPlaceholders(t *testing.T) {
	ref := core.ModuleRef{
		Course:      "Foundations of Security",
		ModuleName:  "What is security_",
		TopicNumber: 1,
	}

	prompts := DefaultPrompts()

	section := prompts.buildPrompt(ref, core.OutlineEntry{
		Order: 0, Kind: core.KindSection, Title: "Introduction", Query: "overview query",
	})
	assert.Contains(t, section, "\\section{Introduction}")
	assert.Contains(t, section, "What is security_")
	assert.Contains(t, section, "overview query")
	assert.NotContains(t, section, "TEMPLATE_")

	subsection := prompts.buildPrompt(ref, core.OutlineEntry{
		Order: 1, Kind: core.KindSubsection, Title: "Key Concepts", Query: "concepts query",
	})
	assert.Contains(t, subsection, "\\subsection{Key Concepts}")
	assert.NotContains(t, subsection, "TEMPLATE_")

	system := prompts.systemPrompt(ref)
	assert.Contains(t, system, "Foundations of Security")
	assert.NotContains(t, system, "TEMPLATE_")
}
