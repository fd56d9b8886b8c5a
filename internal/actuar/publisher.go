// Package actuar renders a user's broadcast text to a public static HTML
// page. The page is a derived cache of the database row: it may be
// transiently stale or missing, and is regenerated wholesale on every
// post.
package actuar

import (
	"bytes"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strings"
	"time"
)

var pageTmpl = template.Must(template.New("actuar").Parse(`<!DOCTYPE html>
<html lang="es">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Actuar - {{.Username}}</title>
</head>
<body>
<main>
<h1>{{.Username}}</h1>
<p>{{.Text}}</p>
<footer>Actualizado {{.UpdatedAt.Format "2006-01-02 15:04:05 MST"}}</footer>
</main>
</body>
</html>
`))

// Publisher writes broadcast pages under <staticDir>/actuar/.
type Publisher struct {
	staticDir string
	baseURL   string
}

// NewPublisher creates a Publisher rooted at staticDir. baseURL is the
// public path prefix the static directory is served under, e.g. "/static".
func NewPublisher(staticDir, baseURL string) *Publisher {
	return &Publisher{staticDir: staticDir, baseURL: strings.TrimRight(baseURL, "/")}
}

// Page is the rendered result of a publish.
type Page struct {
	URL  string `json:"url"`
	Path string `json:"path"`
}

// Publish renders the page for username and writes it to disk, replacing
// any previous version. The write is not coupled to the database update;
// callers treat failures as a stale cache, not a failed post.
func (p *Publisher) Publish(username, text string, updatedAt time.Time) (*Page, error) {
	var buf bytes.Buffer
	err := pageTmpl.Execute(&buf, struct {
		Username  string
		Text      string
		UpdatedAt time.Time
	}{username, text, updatedAt})
	if err != nil {
		return nil, fmt.Errorf("render actuar page: %w", err)
	}

	dir := filepath.Join(p.staticDir, "actuar")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create actuar dir: %w", err)
	}

	name := Slug(username) + ".html"
	dest := filepath.Join(dir, name)

	// Write-then-rename so a concurrent reader never sees a torn page.
	tmp, err := os.CreateTemp(dir, name+".tmp*")
	if err != nil {
		return nil, fmt.Errorf("create temp page: %w", err)
	}
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return nil, fmt.Errorf("write page: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return nil, fmt.Errorf("close page: %w", err)
	}
	if err := os.Rename(tmp.Name(), dest); err != nil {
		os.Remove(tmp.Name())
		return nil, fmt.Errorf("publish page: %w", err)
	}

	return &Page{
		URL:  p.baseURL + "/actuar/" + name,
		Path: dest,
	}, nil
}

// Slug maps a username to a safe file name: lowercased, with anything
// outside [a-z0-9._-] replaced by '-'. Distinct emails can collide after
// slugging; acceptable because the page content is keyed by the database
// row, not the file.
func Slug(username string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(username) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '.', r == '_', r == '-':
			b.WriteRune(r)
		default:
			b.WriteByte('-')
		}
	}
	if b.Len() == 0 {
		return "anon"
	}
	return b.String()
}
