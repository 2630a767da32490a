package service

import (
	"encoding/xml"
	"log/slog"
	"strings"
	"time"

	"github.com/voceapacientilor/vocea/internal/model"
)

// publicRoutes are the static pages listed in the sitemap
var publicRoutes = []struct {
	Path       string
	Priority   string
	ChangeFreq string
}{
	{"/", "1.0", "daily"},
}

type SitemapService struct {
	postService  *PostService
	legalService *LegalService
	baseURL      string
}

func NewSitemapService(postService *PostService, legalService *LegalService, baseURL string) *SitemapService {
	return &SitemapService{
		postService:  postService,
		legalService: legalService,
		baseURL:      strings.TrimSuffix(baseURL, "/"),
	}
}

// GenerateSitemap lists the static pages, the legal pages and every approved post.
func (s *SitemapService) GenerateSitemap() ([]byte, error) {
	sitemap := model.Sitemap{
		XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs:  s.staticURLs(),
	}

	slugs, err := s.legalService.Slugs()
	if err != nil {
		slog.Warn("failed to list legal pages for sitemap", "error", err)
	}
	for _, slug := range slugs {
		sitemap.URLs = append(sitemap.URLs, model.SitemapURL{
			Loc:        s.baseURL + "/legal/" + slug,
			ChangeFreq: "yearly",
			Priority:   "0.3",
		})
	}

	posts, err := s.postService.List(model.PostFilter{})
	if err != nil {
		// Still serve the static part
		slog.Warn("failed to list posts for sitemap", "error", err)
	}
	for _, p := range posts {
		sitemap.URLs = append(sitemap.URLs, model.SitemapURL{
			Loc:        s.baseURL + "/posts/" + p.ID,
			LastMod:    p.UpdatedAt.Format(time.DateOnly),
			ChangeFreq: "weekly",
			Priority:   "0.7",
		})
	}

	output, err := xml.MarshalIndent(sitemap, "", "  ")
	if err != nil {
		return nil, err
	}

	return []byte(xml.Header + string(output)), nil
}

func (s *SitemapService) staticURLs() []model.SitemapURL {
	today := time.Now().Format(time.DateOnly)
	urls := make([]model.SitemapURL, 0, len(publicRoutes))

	for _, route := range publicRoutes {
		urls = append(urls, model.SitemapURL{
			Loc:        s.baseURL + route.Path,
			LastMod:    today,
			ChangeFreq: route.ChangeFreq,
			Priority:   route.Priority,
		})
	}

	return urls
}
