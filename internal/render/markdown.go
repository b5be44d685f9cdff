// Package render turns the markdown report artifact into a browsable HTML
// page for the serve mode.
package render

import (
	"bytes"
	"fmt"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	rendererhtml "github.com/yuin/goldmark/renderer/html"
)

const pageShell = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Usage Report</title>
<style>
body { font-family: sans-serif; max-width: 56rem; margin: 2rem auto; padding: 0 1rem; }
table { border-collapse: collapse; }
th, td { border: 1px solid #ccc; padding: 0.3rem 0.6rem; }
th { background: #f5f5f5; }
</style>
</head>
<body>
%s</body>
</html>
`

type HTMLRenderer struct {
	md    goldmark.Markdown
	cache *expirable.LRU[string, string]
}

// NewHTMLRenderer builds a renderer with an expiring cache so repeated page
// loads between report runs skip the markdown conversion.
func NewHTMLRenderer(cacheSize int, ttl time.Duration) *HTMLRenderer {
	r := &HTMLRenderer{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithParserOptions(parser.WithAutoHeadingID()),
			goldmark.WithRendererOptions(rendererhtml.WithUnsafe()),
		),
	}
	if cacheSize > 0 && ttl > 0 {
		r.cache = expirable.NewLRU[string, string](cacheSize, nil, ttl)
	}
	return r
}

func (r *HTMLRenderer) Render(key string, markdown []byte) (string, error) {
	if r.cache != nil {
		if cached, ok := r.cache.Get(key); ok {
			return cached, nil
		}
	}
	var out bytes.Buffer
	if err := r.md.Convert(markdown, &out); err != nil {
		return "", err
	}
	page := fmt.Sprintf(pageShell, out.String())
	if r.cache != nil {
		r.cache.Add(key, page)
	}
	return page, nil
}
