package blogposts

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

// PostStore is an ordered collection of blog posts. Implementations keep
// posts in insertion order and assign ids and publish dates themselves.
type PostStore interface {
	// List returns every post in insertion order.
	List(ctx context.Context) ([]BlogPost, error)
	// Len returns the number of posts.
	Len(ctx context.Context) (int, error)
	// Get returns the post with id, or a *NotFoundError.
	Get(ctx context.Context, id string) (BlogPost, error)
	// Create validates f, assigns an id and publish date, and appends the post.
	Create(ctx context.Context, f PostFields) (BlogPost, error)
	// Update replaces the mutable fields of the post with id. An unknown id
	// is reported before any problem with f.
	Update(ctx context.Context, id string, f PostFields) error
	// Delete removes the post with id. Unknown ids are not an error.
	Delete(ctx context.Context, id string) error
	// Close releases any resources held by the store.
	Close() error
}

// Store drivers accepted by NewStore.
const (
	DriverMemory = "memory"
	DriverSQLite = "sqlite"
)

// NewStore builds the PostStore for the given driver name.
func NewStore(driver string) (PostStore, error) {
	switch driver {
	case "", DriverMemory:
		return NewMemoryStore(), nil
	case DriverSQLite:
		return NewSQLiteStore()
	default:
		return nil, fmt.Errorf("unknown store driver %q", driver)
	}
}

// MemoryStore keeps posts in a slice guarded by a mutex.
type MemoryStore struct {
	mu    sync.RWMutex
	posts []BlogPost
	now   func() time.Time
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		posts: []BlogPost{},
		now:   time.Now,
	}
}

// List returns a copy of all posts in insertion order.
func (s *MemoryStore) List(_ context.Context) ([]BlogPost, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]BlogPost, len(s.posts))
	copy(out, s.posts)
	return out, nil
}

// Len returns the number of posts.
func (s *MemoryStore) Len(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.posts), nil
}

// Get returns a single post by id.
func (s *MemoryStore) Get(_ context.Context, id string) (BlogPost, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	post, _, ok := lo.FindIndexOf(s.posts, func(p BlogPost) bool { return p.ID == id })
	if !ok {
		return BlogPost{}, &NotFoundError{ID: id}
	}
	return post, nil
}

// Create appends a new post built from f.
func (s *MemoryStore) Create(_ context.Context, f PostFields) (BlogPost, error) {
	if err := f.Validate(); err != nil {
		return BlogPost{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	post := BlogPost{
		ID:          uuid.NewString(),
		PublishDate: stamp(s.now()),
	}
	post.apply(f)
	s.posts = append(s.posts, post)
	return post, nil
}

// Update replaces title, content and author of the post with id in place.
func (s *MemoryStore) Update(_ context.Context, id string, f PostFields) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, i, ok := lo.FindIndexOf(s.posts, func(p BlogPost) bool { return p.ID == id })
	if !ok {
		return &NotFoundError{ID: id}
	}
	if err := f.Validate(); err != nil {
		return err
	}
	s.posts[i].apply(f)
	return nil
}

// Delete removes the post with id if present.
func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	s.posts = lo.Reject(s.posts, func(p BlogPost, _ int) bool { return p.ID == id })
	s.mu.Unlock()
	return nil
}

// Close is a no-op for MemoryStore.
func (s *MemoryStore) Close() error {
	return nil
}

// stamp normalizes a publish date so it survives a JSON or SQL round trip
// unchanged.
func stamp(t time.Time) time.Time {
	return t.UTC().Round(0)
}

// SamplePosts are created on startup when seeding is enabled.
var SamplePosts = []PostFields{
	{
		Title:   "Hello, world",
		Content: "The first post on a brand new blog.",
		Author:  "Editorial Team",
	},
	{
		Title:   "Writing in small steps",
		Content: "Short posts are easier to write and easier to read.",
		Author:  "Jane Writer",
	},
	{
		Title:   "On keeping things in memory",
		Content: "Everything here disappears when the process exits.",
		Author:  "John Coder",
	},
}

// Seed creates each of posts in order.
func Seed(ctx context.Context, s PostStore, posts []PostFields) error {
	for _, f := range posts {
		if _, err := s.Create(ctx, f); err != nil {
			return fmt.Errorf("seed %q: %w", f.Title, err)
		}
	}
	return nil
}
