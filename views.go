package blogposts

import (
	"bytes"
	"context"
	"html"
	"io"
	"net/http"
	"time"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
)

// Render writes a templ component as an HTTP 200 HTML response.
func Render(c echo.Context, cmp templ.Component) error {
	return RenderStatus(c, http.StatusOK, cmp)
}

// RenderStatus writes a templ component with a specific HTTP status code.
// The component renders into a buffer first so a failed render never leaves
// a half-written page behind a 200.
func RenderStatus(c echo.Context, code int, cmp templ.Component) error {
	var buf bytes.Buffer
	if err := cmp.Render(c.Request().Context(), &buf); err != nil {
		return err
	}
	return c.HTMLBlob(code, buf.Bytes())
}

// IndexPage lists every post, oldest first, as a plain HTML page.
func IndexPage(cfg Config, posts []BlogPost) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var buf bytes.Buffer
		name := html.EscapeString(cfg.Name)
		buf.WriteString("<!DOCTYPE html>\n<html lang=\"en\"><head><meta charset=\"utf-8\">")
		buf.WriteString("<title>" + name + "</title>")
		buf.WriteString(`<link rel="alternate" type="application/rss+xml" href="/feed.xml">`)
		buf.WriteString("</head><body><h1>" + name + "</h1>")
		if cfg.Description != "" {
			buf.WriteString("<p>" + html.EscapeString(cfg.Description) + "</p>")
		}
		if len(posts) == 0 {
			buf.WriteString("<p>No posts yet.</p>")
		}
		for _, p := range posts {
			writePost(&buf, p)
		}
		buf.WriteString("</body></html>\n")
		_, err := w.Write(buf.Bytes())
		return err
	})
}

func writePost(buf *bytes.Buffer, p BlogPost) {
	buf.WriteString(`<article id="post-` + html.EscapeString(p.ID) + `">`)
	buf.WriteString("<h2>" + html.EscapeString(p.Title) + "</h2>")
	buf.WriteString(`<p class="meta">by ` + html.EscapeString(p.Author))
	buf.WriteString(` on <time datetime="` + p.PublishDate.Format(time.RFC3339) + `">`)
	buf.WriteString(p.PublishDate.Format("January 2, 2006") + "</time></p>")
	buf.WriteString("<p>" + html.EscapeString(p.Content) + "</p>")
	buf.WriteString("</article>")
}
