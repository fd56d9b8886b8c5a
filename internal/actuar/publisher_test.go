package actuar

import (
	"os"
	"strings"
	"testing"
	"time"
)

func TestPublishWritesPage(t *testing.T) {
	dir := t.TempDir()
	p := NewPublisher(dir, "/static")

	now := time.Now().UTC()
	page, err := p.Publish("mago@example.com", "Hola mundo", now)
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	if page.URL != "/static/actuar/mago-example.com.html" {
		t.Errorf("url = %q, want %q", page.URL, "/static/actuar/mago-example.com.html")
	}

	body, err := os.ReadFile(page.Path)
	if err != nil {
		t.Fatalf("read page: %v", err)
	}
	if !strings.Contains(string(body), "Hola mundo") {
		t.Errorf("page body missing text: %s", body)
	}
	if !strings.Contains(string(body), "mago@example.com") {
		t.Errorf("page body missing username: %s", body)
	}
}

func TestPublishOverwrites(t *testing.T) {
	dir := t.TempDir()
	p := NewPublisher(dir, "/static")

	first, err := p.Publish("mago@example.com", "primera", time.Now().UTC())
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	second, err := p.Publish("mago@example.com", "segunda", time.Now().UTC())
	if err != nil {
		t.Fatalf("republish: %v", err)
	}
	if first.Path != second.Path {
		t.Fatalf("path changed on republish: %q vs %q", first.Path, second.Path)
	}

	body, _ := os.ReadFile(second.Path)
	if !strings.Contains(string(body), "segunda") {
		t.Errorf("page not overwritten: %s", body)
	}
	if strings.Contains(string(body), "primera") {
		t.Errorf("old text still present: %s", body)
	}
}

func TestPublishEscapesHTML(t *testing.T) {
	dir := t.TempDir()
	p := NewPublisher(dir, "/static")

	page, err := p.Publish("xss@example.com", `<script>alert(1)</script>`, time.Now().UTC())
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	body, _ := os.ReadFile(page.Path)
	if strings.Contains(string(body), "<script>") {
		t.Error("text was not escaped")
	}
}

func TestSlug(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"mago@example.com", "mago-example.com"},
		{"UPPER@Example.COM", "upper-example.com"},
		{"a b/c", "a-b-c"},
		{"simple", "simple"},
		{"", "anon"},
	}
	for _, tt := range tests {
		if got := Slug(tt.in); got != tt.want {
			t.Errorf("Slug(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
