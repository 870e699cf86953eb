package generate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractLaTeX(t *testing.T) {
	tests := []struct {
		name     string
		response string
		want     string
	}{
		{
			name:     "fenced block",
			response: "Here you go:\n```latex\n\\section{Intro}\ntext\n```\nHope that helps!",
			want:     "\n\\section{Intro}\ntext\n",
		},
		{
			name:     "fence with space",
			response: "``` latex\n\\section{A}\n```",
			want:     "\n\\section{A}\n",
		},
		{
			name:     "no fence returns full response",
			response: "\\section{Intro}\nplain latex",
			want:     "\\section{Intro}\nplain latex",
		},
		{
			name:     "empty response",
			response: "",
			want:     "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractLaTeX(tt.response))
		})
	}
}

func TestScrubLaTeX(t *testing.T) {
	t.Run("removes leftover fences", func(t *testing.T) {
		got := ScrubLaTeX("```latex\n\\section{A}\n```")
		assert.Equal(t, "\\section{A}", got)
	})

	t.Run("converts literal escaped newlines", func(t *testing.T) {
		got := ScrubLaTeX(`\section{A}\nBody text.`)
		assert.Equal(t, "\\section{A}\nBody text.", got)
	})

	t.Run("drops stray latex lines", func(t *testing.T) {
		got := ScrubLaTeX("latex\n\\section{A}")
		assert.Equal(t, "\\section{A}", got)
	})

	t.Run("escapes underscores outside math", func(t *testing.T) {
		got := ScrubLaTeX("the file lesson_one.txt")
		assert.Equal(t, `the file lesson\_one.txt`, got)
	})

	t.Run("keeps underscores in math lines", func(t *testing.T) {
		got := ScrubLaTeX("$x_1 + x_2$")
		assert.Equal(t, "$x_1 + x_2$", got)
	})

	t.Run("keeps already escaped underscores", func(t *testing.T) {
		got := ScrubLaTeX(`already \_ escaped`)
		assert.Equal(t, `already \_ escaped`, got)
	})
}
