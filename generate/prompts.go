// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package generate

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/poiesic/d2r/core"
)

// Prompt template file names looked up in the prompts directory. Each
// is optional; missing files fall back to the embedded defaults.
const (
	assistantPromptFile  = "assistant_message.txt"
	introPromptFile      = "intro_query.txt"
	subsectionPromptFile = "subsection_query.txt"
)

// Template placeholders substituted when a prompt is rendered.
const (
	placeholderCourse  = "TEMPLATE_COURSE_NAME"
	placeholderModule  = "TEMPLATE_MODULE_NAME"
	placeholderSection = "TEMPLATE_SECTION_TITLE"
)

// Prompts holds the three prompt templates the generation stage uses.
// They are treated as opaque configuration: the stage substitutes the
// TEMPLATE_ placeholders and passes the result to the model unchanged.
type Prompts struct {
	// Assistant is the system role message for the completion model.
	Assistant string
	// Intro frames the query for top-level section entries.
	Intro string
	// Subsection frames the query for subsection entries.
	Subsection string
}

// DefaultPrompts returns the embedded prompt templates.
func DefaultPrompts() Prompts {
	return Prompts{
		Assistant: "You are a LaTeX writer for university lecture notes. " +
			"Answer using only the provided transcript excerpts from the course " +
			placeholderCourse + ", module " + placeholderModule + ". " +
			"Produce valid LaTeX wrapped in a ```latex code fence. " +
			"Do not emit a preamble or \\begin{document}; output body content only.",
		Intro: "Write the top-level \\section{" + placeholderSection + "} of the lecture notes " +
			"for module " + placeholderModule + ". Start with the \\section command.",
		Subsection: "Write the \\subsection{" + placeholderSection + "} of the lecture notes " +
			"for module " + placeholderModule + ". Start with the \\subsection command.",
	}
}

// LoadPrompts reads prompt templates from dir, keeping the embedded
// default for any file that is absent. Any other read error fails.
func LoadPrompts(dir string) (Prompts, error) {
	prompts := DefaultPrompts()

	load := func(name string, target *string) error {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if os.IsNotExist(err) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading prompt %s: %w", name, err)
		}
		*target = strings.TrimSpace(string(data))
		return nil
	}

	if err := load(assistantPromptFile, &prompts.Assistant); err != nil {
		return Prompts{}, err
	}
	if err := load(introPromptFile, &prompts.Intro); err != nil {
		return Prompts{}, err
	}
	if err := load(subsectionPromptFile, &prompts.Subsection); err != nil {
		return Prompts{}, err
	}

	return prompts, nil
}

// render substitutes the TEMPLATE_ placeholders in a template.
func render(template string, ref core.ModuleRef, sectionTitle string) string {
	replacer := strings.NewReplacer(
		placeholderCourse, ref.Course,
		placeholderModule, ref.ModuleName,
		placeholderSection, sectionTitle,
	)
	return replacer.Replace(template)
}

// buildPrompt composes the full prompt for one outline entry: the
// rendered section template followed by the entry's retrieval query.
func (p Prompts) buildPrompt(ref core.ModuleRef, entry core.OutlineEntry) string {
	template := p.Subsection
	if entry.Kind == core.KindSection {
		template = p.Intro
	}
	return render(template, ref, entry.Title) + "\n\n" + entry.Query
}

// systemPrompt renders the assistant role message for the module.
func (p Prompts) systemPrompt(ref core.ModuleRef) string {
	return render(p.Assistant, ref, "")
}
