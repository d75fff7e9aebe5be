package images

import (
	"context"
	"fmt"
	"strings"
	"testing"
)

// fakeStore builds predictable CDN URLs without a backend.
type fakeStore struct{}

func (fakeStore) Upload(_ context.Context, filename, _ string, _ []byte) (string, error) {
	return "ref-" + filename, nil
}

func (fakeStore) URL(ref string, width, height int, format string) string {
	return fmt.Sprintf("https://cdn.example.com/%s?w=%d&fm=%s", ref, width, format)
}

func TestRewrite(t *testing.T) {
	html := `<p><img src="https://example.com/a.jpg" srcset="a-2x.jpg 2x"></p>` +
		`<p><img src="https://example.com/b.jpg"></p>` +
		`<p><img src="https://example.com/unmapped.jpg"></p>`

	mapping := map[string]string{
		"https://example.com/a.jpg": "ref-a",
		"https://example.com/b.jpg": "ref-b",
	}

	out, refs := Rewrite(html, mapping, fakeStore{})

	if !strings.Contains(out, "https://cdn.example.com/ref-a?w=1200&fm=webp") {
		t.Errorf("a.jpg not rewritten: %s", out)
	}
	if !strings.Contains(out, "https://cdn.example.com/ref-b?w=1200&fm=webp") {
		t.Errorf("b.jpg not rewritten: %s", out)
	}
	if strings.Contains(out, "srcset") {
		t.Errorf("srcset survived: %s", out)
	}

	// Unmapped sources keep their original URL.
	if !strings.Contains(out, "https://example.com/unmapped.jpg") {
		t.Errorf("unmapped image lost: %s", out)
	}

	if len(refs) != 2 || refs[0] != "ref-a" || refs[1] != "ref-b" {
		t.Errorf("refs = %v", refs)
	}
}

func TestRewriteEmptyMapping(t *testing.T) {
	html := `<p><img src="https://example.com/a.jpg"></p>`
	out, refs := Rewrite(html, nil, fakeStore{})
	if out != html {
		t.Errorf("html changed with no mapping: %s", out)
	}
	if refs != nil {
		t.Errorf("refs = %v, want nil", refs)
	}
}
