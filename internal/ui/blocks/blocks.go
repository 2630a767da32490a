// Package blocks holds the pieces shared by several pages: form fields and
// the post views used by both the public site and the moderation queue.
package blocks

import (
	"context"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	twmerge "github.com/Oudwins/tailwind-merge-go"

	"github.com/voceapacientilor/vocea/internal/config"
	"github.com/voceapacientilor/vocea/internal/ctxkeys"
	"github.com/voceapacientilor/vocea/internal/model"
)

// SiteConfig is the request's sanitized config, with the app name filled in
// for renders that run without the config middleware.
func SiteConfig(ctx context.Context) *config.Config {
	if cfg := ctxkeys.Config(ctx); cfg != nil {
		return cfg
	}
	return &config.Config{AppName: "Vocea Pacienților"}
}

// Cn merges tailwind classes, later ones winning.
func Cn(classes ...string) string {
	return twmerge.Merge(classes...)
}

// When returns classes if cond holds.
func When(cond bool, classes string) string {
	if cond {
		return classes
	}
	return ""
}

// Excerpt cuts s to n characters, backing up to a word boundary when one
// falls in the second half.
func Excerpt(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)[:n]
	for i := len(runes) - 1; i > n/2; i-- {
		if runes[i] == ' ' {
			runes = runes[:i]
			break
		}
	}
	return strings.TrimSpace(string(runes)) + "…"
}

func Title(p *model.Post) string {
	if t := p.TitleText(); t != "" {
		return t
	}
	return p.HospitalName
}

func Byline(displayName string, createdAt time.Time) string {
	return displayName + " · " + model.FormatDate(createdAt)
}

func ReplyCount(n int) string {
	if n == 1 {
		return "1 răspuns"
	}
	return strconv.Itoa(n) + " răspunsuri"
}

func Place(p *model.Post) string {
	return p.HospitalName + " · " + p.Locality + ", " + p.County
}

// CountySelect describes a county dropdown.
type CountySelect struct {
	Name     string
	Selected string
	Counties []string
	Empty    string // label of the blank option
	Required bool
}
