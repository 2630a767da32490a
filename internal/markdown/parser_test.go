package markdown

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseWithFrontmatter(t *testing.T) {
	src := []byte("---\ntitle: Termeni și condiții\nlastUpdated: 2025-01-15\n---\n\n## Secțiune\n\nText cu **accent**.\n")

	html, meta, err := NewParser().ParseWithFrontmatter(src)
	require.NoError(t, err)

	assert.Equal(t, "Termeni și condiții", meta["title"])
	assert.Contains(t, string(html), "<strong>accent</strong>")
	assert.Contains(t, string(html), "<h2 id=")
	assert.NotContains(t, string(html), "lastUpdated")
}

func TestParseWithoutFrontmatter(t *testing.T) {
	html, meta, err := NewParser().ParseWithFrontmatter([]byte("Doar text."))
	require.NoError(t, err)
	assert.Empty(t, meta)
	assert.Contains(t, string(html), "<p>Doar text.</p>")
}
