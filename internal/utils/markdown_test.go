package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderMarkdown(t *testing.T) {
	out := string(RenderMarkdown("**bold** text"))
	assert.Contains(t, out, "<strong>bold</strong>")
}

func TestRenderMarkdownStripsScripts(t *testing.T) {
	out := string(RenderMarkdown(`hello <script>alert(1)</script>`))
	assert.False(t, strings.Contains(out, "<script>"))
	assert.Contains(t, out, "hello")
}
