package markdown

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRender(t *testing.T) {
	out := Render("# Hello\n\nsome **bold** text")
	assert.Contains(t, out, "<strong>bold</strong>")
	assert.Contains(t, out, "Hello</h1>")
}

func TestRender_StripsScripts(t *testing.T) {
	out := Render("hi <script>alert(1)</script>")
	assert.NotContains(t, out, "<script>")
	assert.NotContains(t, out, "alert(1)</script>")
}

func TestRender_ExternalLinks(t *testing.T) {
	out := Render("[site](https://example.com)")
	assert.Contains(t, out, `href="https://example.com"`)
	assert.Contains(t, out, `target="_blank"`)
	assert.Contains(t, out, "noreferrer")
}
