package blogposts

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 3, 15, 9, 30, 0, 123456789, time.UTC)

func newTestMemoryStore(t *testing.T) PostStore {
	t.Helper()
	s := NewMemoryStore()
	s.now = func() time.Time { return fixedNow }
	return s
}

func newTestSQLiteStore(t *testing.T) PostStore {
	t.Helper()
	s, err := NewSQLiteStore()
	require.NoError(t, err)
	s.now = func() time.Time { return fixedNow }
	t.Cleanup(func() { s.Close() })
	return s
}

func TestMemoryStore(t *testing.T) {
	testPostStore(t, newTestMemoryStore)
}

func TestSQLiteStore(t *testing.T) {
	testPostStore(t, newTestSQLiteStore)
}

var trumpPost = PostFields{
	Title:   "Something about Trump",
	Content: "not holocausting kids",
	Author:  "fox news",
}

func testPostStore(t *testing.T, newStore func(t *testing.T) PostStore) {
	ctx := context.Background()

	t.Run("empty list", func(t *testing.T) {
		s := newStore(t)
		posts, err := s.List(ctx)
		require.NoError(t, err)
		assert.NotNil(t, posts)
		assert.Empty(t, posts)
	})

	t.Run("create assigns id and publish date", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, Seed(ctx, s, SamplePosts[:1]))

		before, err := s.List(ctx)
		require.NoError(t, err)

		post, err := s.Create(ctx, trumpPost)
		require.NoError(t, err)
		assert.NotEmpty(t, post.ID)
		assert.True(t, post.PublishDate.Equal(fixedNow), "publishDate = %v", post.PublishDate)
		assert.Equal(t, trumpPost.Title, post.Title)
		assert.Equal(t, trumpPost.Content, post.Content)
		assert.Equal(t, trumpPost.Author, post.Author)

		after, err := s.List(ctx)
		require.NoError(t, err)
		require.Len(t, after, len(before)+1)
		last := after[len(after)-1]
		assert.Equal(t, post.ID, last.ID)
		assert.True(t, last.PublishDate.Equal(post.PublishDate))
	})

	t.Run("create generates unique ids", func(t *testing.T) {
		s := newStore(t)
		seen := map[string]bool{}
		for i := 0; i < 20; i++ {
			post, err := s.Create(ctx, trumpPost)
			require.NoError(t, err)
			assert.False(t, seen[post.ID], "duplicate id %s", post.ID)
			seen[post.ID] = true
		}
	})

	t.Run("create rejects missing fields", func(t *testing.T) {
		s := newStore(t)
		_, err := s.Create(ctx, PostFields{Title: "only a title", Content: "  "})
		var verr *ValidationError
		require.True(t, errors.As(err, &verr), "got %v", err)
		assert.Equal(t, []string{"content", "author"}, verr.Fields)

		posts, err := s.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, posts)
	})

	t.Run("list preserves insertion order", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, Seed(ctx, s, SamplePosts))

		first, err := s.List(ctx)
		require.NoError(t, err)
		require.Len(t, first, len(SamplePosts))
		for i, p := range first {
			assert.Equal(t, SamplePosts[i].Title, p.Title)
		}

		second, err := s.List(ctx)
		require.NoError(t, err)
		assert.Equal(t, ids(first), ids(second))
	})

	t.Run("update replaces fields in place", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, Seed(ctx, s, SamplePosts))
		posts, err := s.List(ctx)
		require.NoError(t, err)
		target := posts[1]

		err = s.Update(ctx, target.ID, PostFields{
			Title:   "connect the dots",
			Content: "la la la la la",
			Author:  target.Author,
		})
		require.NoError(t, err)

		got, err := s.Get(ctx, target.ID)
		require.NoError(t, err)
		assert.Equal(t, target.ID, got.ID)
		assert.Equal(t, "connect the dots", got.Title)
		assert.Equal(t, "la la la la la", got.Content)
		assert.Equal(t, target.Author, got.Author)
		assert.True(t, got.PublishDate.Equal(target.PublishDate))

		after, err := s.List(ctx)
		require.NoError(t, err)
		assert.Equal(t, ids(posts), ids(after))
	})

	t.Run("update unknown id", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, Seed(ctx, s, SamplePosts))
		before, err := s.List(ctx)
		require.NoError(t, err)

		err = s.Update(ctx, "no-such-id", trumpPost)
		var nerr *NotFoundError
		require.True(t, errors.As(err, &nerr), "got %v", err)
		assert.Equal(t, "no-such-id", nerr.ID)

		after, err := s.List(ctx)
		require.NoError(t, err)
		assert.Equal(t, before, after)
	})

	t.Run("update rejects missing fields", func(t *testing.T) {
		s := newStore(t)
		post, err := s.Create(ctx, trumpPost)
		require.NoError(t, err)

		err = s.Update(ctx, post.ID, PostFields{Title: "new"})
		var verr *ValidationError
		require.True(t, errors.As(err, &verr), "got %v", err)

		got, err := s.Get(ctx, post.ID)
		require.NoError(t, err)
		assert.Equal(t, trumpPost.Title, got.Title)
	})

	t.Run("delete removes post", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, Seed(ctx, s, SamplePosts))
		posts, err := s.List(ctx)
		require.NoError(t, err)

		require.NoError(t, s.Delete(ctx, posts[0].ID))

		after, err := s.List(ctx)
		require.NoError(t, err)
		assert.Equal(t, ids(posts[1:]), ids(after))

		_, err = s.Get(ctx, posts[0].ID)
		var nerr *NotFoundError
		assert.True(t, errors.As(err, &nerr), "got %v", err)
	})

	t.Run("delete is idempotent", func(t *testing.T) {
		s := newStore(t)
		post, err := s.Create(ctx, trumpPost)
		require.NoError(t, err)

		require.NoError(t, s.Delete(ctx, post.ID))
		require.NoError(t, s.Delete(ctx, post.ID))
		require.NoError(t, s.Delete(ctx, "never-existed"))

		posts, err := s.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, posts)
	})

	t.Run("update unknown id is reported before missing fields", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, Seed(ctx, s, SamplePosts))

		err := s.Update(ctx, "no-such-id", PostFields{Title: "only a title"})
		var nerr *NotFoundError
		assert.True(t, errors.As(err, &nerr), "got %v", err)
	})

	t.Run("len counts posts", func(t *testing.T) {
		s := newStore(t)
		n, err := s.Len(ctx)
		require.NoError(t, err)
		assert.Zero(t, n)

		require.NoError(t, Seed(ctx, s, SamplePosts))
		n, err = s.Len(ctx)
		require.NoError(t, err)
		assert.Equal(t, len(SamplePosts), n)
	})

	t.Run("concurrent writers and readers", func(t *testing.T) {
		s := newStore(t)
		const writers = 32

		var (
			wg      sync.WaitGroup
			mu      sync.Mutex
			created []string
		)
		for i := 0; i < writers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				post, err := s.Create(ctx, trumpPost)
				if !assert.NoError(t, err) {
					return
				}
				mu.Lock()
				created = append(created, post.ID)
				mu.Unlock()

				_, err = s.List(ctx)
				assert.NoError(t, err)
				assert.NoError(t, s.Delete(ctx, fmt.Sprintf("missing-%d", i)))
				assert.NoError(t, s.Update(ctx, post.ID, trumpPost))
			}(i)
		}
		wg.Wait()

		require.Len(t, created, writers)
		assert.ElementsMatch(t, lo.Uniq(created), created, "ids must be unique")

		posts, err := s.List(ctx)
		require.NoError(t, err)
		assert.Len(t, posts, writers)
		assert.ElementsMatch(t, created, ids(posts))
	})
}

func TestNewStoreDrivers(t *testing.T) {
	s, err := NewStore("")
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, s)

	s, err = NewStore(DriverSQLite)
	require.NoError(t, err)
	assert.IsType(t, &SQLiteStore{}, s)
	require.NoError(t, s.Close())

	_, err = NewStore("postgres")
	assert.Error(t, err)
}

func TestMemoryStoreListReturnsCopy(t *testing.T) {
	s := NewMemoryStore()
	_, err := s.Create(context.Background(), trumpPost)
	require.NoError(t, err)

	posts, err := s.List(context.Background())
	require.NoError(t, err)
	posts[0].Title = "mutated"

	again, err := s.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, trumpPost.Title, again[0].Title)
}

func ids(posts []BlogPost) []string {
	out := make([]string, len(posts))
	for i, p := range posts {
		out[i] = p.ID
	}
	return out
}
