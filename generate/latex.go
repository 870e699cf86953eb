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
	"regexp"
	"strings"
)

var (
	latexFenceRe = regexp.MustCompile("(?s)``` ?latex(.*?)```")
	anyFenceRe   = regexp.MustCompile("```+\\s*latex|```+")
	latexLineRe  = regexp.MustCompile(`(?m)^[ \t]*latex[ \t]*$`)
)

// ExtractLaTeX pulls the LaTeX portion out of a model response. When
// the response contains a ```latex fenced block, only its contents are
// kept; otherwise the full response is returned unchanged.
func ExtractLaTeX(response string) string {
	if match := latexFenceRe.FindStringSubmatch(response); match != nil {
		return match[1]
	}
	return response
}

// ScrubLaTeX removes common model output artifacts: leftover code
// fences, literal escaped newlines and tabs, stray "latex" lines, and
// unescaped underscores outside math-bearing lines.
func ScrubLaTeX(text string) string {
	text = anyFenceRe.ReplaceAllString(text, "")
	text = strings.ReplaceAll(text, `\n`, "\n")
	text = strings.ReplaceAll(text, `\t`, " ")
	text = strings.ReplaceAll(text, "\t", " ")
	text = latexLineRe.ReplaceAllString(text, "")
	text = escapeUnderscores(text)
	return strings.TrimSpace(text)
}

// escapeUnderscores escapes underscores on lines that carry no math
// delimiters. Lines with $, \( or \[ are left alone since underscores
// there are likely subscripts.
func escapeUnderscores(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if strings.ContainsAny(line, "$") ||
			strings.Contains(line, `\(`) || strings.Contains(line, `\[`) {
			continue
		}
		var sb strings.Builder
		for j := 0; j < len(line); j++ {
			if line[j] == '_' && (j == 0 || line[j-1] != '\\') {
				sb.WriteString(`\_`)
				continue
			}
			sb.WriteByte(line[j])
		}
		lines[i] = sb.String()
	}
	return strings.Join(lines, "\n")
}
