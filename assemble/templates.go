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


package assemble

import (
	"fmt"
	"os"
	"strings"
)

// Template placeholders substituted into the header template.
const (
	placeholderCourse = "TEMPLATE_COURSE_NAME"
	placeholderModule = "TEMPLATE_MODULE_NAME"
)

// defaultHeader is the embedded preamble used when no header template
// file is configured. The placeholders are substituted at assembly time.
const defaultHeader = `\documentclass[11pt]{article}

\usepackage[utf8]{inputenc}
\usepackage[T1]{fontenc}
\usepackage{amsmath,amssymb}
\usepackage{graphicx}
\usepackage{hyperref}
\usepackage[margin=1in]{geometry}

\title{TEMPLATE_COURSE_NAME \\ \large TEMPLATE_MODULE_NAME}
\date{}

\begin{document}

\maketitle
\tableofcontents
\newpage
`

// defaultFooter closes the document.
const defaultFooter = `\end{document}
`

// renderHeader substitutes the course and module placeholders.
func renderHeader(template, course, moduleName string) string {
	return strings.NewReplacer(
		placeholderCourse, course,
		placeholderModule, moduleName,
	).Replace(template)
}

// loadTemplate reads a template file, falling back to the provided
// default when path is empty.
func loadTemplate(path, fallback string) (string, error) {
	if path == "" {
		return fallback, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading template %s: %w", path, err)
	}
	return string(data), nil
}
