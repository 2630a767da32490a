package service

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/voceapacientilor/vocea/internal/markdown"
	"github.com/voceapacientilor/vocea/internal/model"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var ErrPageNotFound = errors.New("page not found")

type LegalPage struct {
	Title       string
	Slug        string
	Content     string
	LastUpdated string
}

// LegalService serves the markdown pages under <content>/legal.
// Pages are read on each request so edits show up without a restart.
type LegalService struct {
	contentDir string
	parser     *markdown.Parser
}

func NewLegalService(contentDir string) *LegalService {
	return &LegalService{
		contentDir: filepath.Join(contentDir, "legal"),
		parser:     markdown.NewParser(),
	}
}

// Slugs lists the available pages.
func (s *LegalService) Slugs() ([]string, error) {
	files, err := os.ReadDir(s.contentDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read legal directory: %w", err)
	}

	var slugs []string
	for _, file := range files {
		if file.IsDir() || !strings.HasSuffix(file.Name(), ".md") {
			continue
		}
		slugs = append(slugs, strings.TrimSuffix(file.Name(), ".md"))
	}
	return slugs, nil
}

func (s *LegalService) loadPage(slug string) (*LegalPage, error) {
	filePath := filepath.Join(s.contentDir, slug+".md")
	content, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrPageNotFound
		}
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	html, meta, err := s.parser.ParseWithFrontmatter(content)
	if err != nil {
		return nil, fmt.Errorf("failed to parse markdown: %w", err)
	}

	info, err := os.Stat(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to get file info: %w", err)
	}

	title, _ := meta["title"].(string)
	if title == "" {
		title = cases.Title(language.Romanian).String(strings.ReplaceAll(slug, "-", " "))
	}

	// front matter wins over the file modification time
	var lastUpdated string
	if dateValue, ok := meta["lastUpdated"]; ok {
		lastUpdated = parseDate(dateValue)
	}
	if lastUpdated == "" {
		lastUpdated = model.FormatDate(info.ModTime())
	}

	return &LegalPage{
		Title:       title,
		Slug:        slug,
		Content:     string(html),
		LastUpdated: lastUpdated,
	}, nil
}

// Page renders the page named slug. Slugs are plain file names; anything
// that could escape the legal directory is rejected as not found.
func (s *LegalService) Page(slug string) (*LegalPage, error) {
	if slug == "" || strings.ContainsAny(slug, `/\.`) {
		return nil, ErrPageNotFound
	}
	return s.loadPage(slug)
}

func parseDate(value any) string {
	var dateStr string

	switch v := value.(type) {
	case string:
		dateStr = v
	case time.Time:
		return model.FormatDate(v)
	default:
		return ""
	}

	formats := []string{
		time.DateOnly,
		"2006/01/02",
		"02.01.2006",
		time.RFC3339,
	}

	for _, format := range formats {
		t, err := time.Parse(format, dateStr)
		if err == nil {
			return model.FormatDate(t)
		}
	}

	return dateStr
}
