package layouts

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/voceapacientilor/vocea/internal/ctxkeys"
	"github.com/voceapacientilor/vocea/internal/ui/blocks"
)

const htmxConfig = `{"includeIndicatorStyles":false}`

func pageTitle(ctx context.Context, title string) string {
	return title + " · " + blocks.SiteConfig(ctx).AppName
}

// csrfHeaders makes HTMX send the token with every request it issues.
func csrfHeaders(ctx context.Context) string {
	b, _ := json.Marshal(map[string]string{"X-CSRF-Token": ctxkeys.CSRFToken(ctx)})
	return string(b)
}

func isActive(ctx context.Context, prefix string) bool {
	path := ctxkeys.URLPath(ctx)
	if prefix == "/" {
		return path == "/"
	}
	return strings.HasPrefix(path, prefix)
}

func navLink(ctx context.Context, prefix string) string {
	return blocks.Cn("rounded px-3 py-2 text-sm text-gray-600 hover:text-gray-900",
		blocks.When(isActive(ctx, prefix), "font-semibold text-blue-700"))
}
