package blogposts

import (
	"strings"
	"time"
)

// BlogPost is the post record held by a PostStore and returned to clients.
type BlogPost struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	Author      string    `json:"author"`
	PublishDate time.Time `json:"publishDate"`
}

// PostFields are the caller-supplied fields of a post. ID and PublishDate
// are always assigned by the store.
type PostFields struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Author  string `json:"author"`
}

// Validate reports every required field that is missing or blank.
func (f PostFields) Validate() error {
	var missing []string
	if strings.TrimSpace(f.Title) == "" {
		missing = append(missing, "title")
	}
	if strings.TrimSpace(f.Content) == "" {
		missing = append(missing, "content")
	}
	if strings.TrimSpace(f.Author) == "" {
		missing = append(missing, "author")
	}
	if len(missing) > 0 {
		return &ValidationError{Fields: missing}
	}
	return nil
}

func (p *BlogPost) apply(f PostFields) {
	p.Title = f.Title
	p.Content = f.Content
	p.Author = f.Author
}
