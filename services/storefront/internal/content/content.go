// Package content renders the storefront's static pages from embedded
// Markdown.
package content

import (
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"gopkg.in/yaml.v3"

	"github.com/utafrali/storefront/pkg/slug"
)

//go:embed pages/*.md
var pageFiles embed.FS

// Page is a rendered static page.
type Page struct {
	Slug        string `json:"slug"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	HTML        string `json:"html"`
}

type frontMatter struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
}

// Library holds every rendered page keyed by slug.
type Library struct {
	pages map[string]Page
}

// Raw HTML in the sources is escaped by goldmark (WithUnsafe is not set) and
// the output is sanitized again before it is served.
var markdown = goldmark.New(
	goldmark.WithExtensions(extension.GFM, extension.Typographer),
)

func newPolicy() *bluemonday.Policy {
	policy := bluemonday.UGCPolicy()
	policy.AllowURLSchemes("mailto", "tel", "http", "https")
	policy.RequireNoFollowOnLinks(true)
	return policy
}

// Load renders the embedded pages.
func Load() (*Library, error) {
	return LoadFS(pageFiles, "pages")
}

// LoadFS renders every *.md file in dir of fsys.
func LoadFS(fsys fs.FS, dir string) (*Library, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("read pages: %w", err)
	}

	policy := newPolicy()
	lib := &Library{pages: make(map[string]Page)}
	for _, entry := range entries {
		if entry.IsDir() || path.Ext(entry.Name()) != ".md" {
			continue
		}
		src, err := fs.ReadFile(fsys, path.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("read page %s: %w", entry.Name(), err)
		}
		page, err := render(strings.TrimSuffix(entry.Name(), ".md"), src, policy)
		if err != nil {
			return nil, fmt.Errorf("render page %s: %w", entry.Name(), err)
		}
		lib.pages[page.Slug] = page
	}
	return lib, nil
}

func render(name string, src []byte, policy *bluemonday.Policy) (Page, error) {
	fm, body := splitFrontMatter(string(src))
	var front frontMatter
	if strings.TrimSpace(fm) != "" {
		if err := yaml.Unmarshal([]byte(fm), &front); err != nil {
			return Page{}, fmt.Errorf("parse front matter: %w", err)
		}
	}

	var buf bytes.Buffer
	if err := markdown.Convert([]byte(body), &buf); err != nil {
		return Page{}, err
	}

	title := strings.TrimSpace(front.Title)
	if title == "" {
		title = name
	}
	return Page{
		Slug:        slug.Generate(name),
		Title:       title,
		Description: strings.TrimSpace(front.Description),
		HTML:        policy.Sanitize(buf.String()),
	}, nil
}

// splitFrontMatter separates a leading block fenced by "---" lines from the
// Markdown body. Without a closing fence the whole input is body.
func splitFrontMatter(input string) (string, string) {
	input = strings.TrimLeft(input, "\ufeff")
	lines := strings.Split(input, "\n")
	if strings.TrimSpace(lines[0]) != "---" {
		return "", input
	}
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "---" {
			fm := strings.Join(lines[1:i], "\n")
			body := strings.Join(lines[i+1:], "\n")
			return fm, strings.TrimLeft(body, "\r\n")
		}
	}
	return "", input
}

// Get returns the page for name. Names are compared as slugs, so
// "About Us" finds "about-us".
func (l *Library) Get(name string) (Page, bool) {
	p, ok := l.pages[slug.Generate(name)]
	return p, ok
}

// List returns all pages sorted by slug.
func (l *Library) List() []Page {
	out := make([]Page, 0, len(l.pages))
	for _, p := range l.pages {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Slug < out[j].Slug })
	return out
}
