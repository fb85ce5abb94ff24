package blogposts

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const postsTable = "blog_posts"

var dialect = goqu.Dialect("sqlite3")

// SQLiteStore keeps posts in a private in-memory SQLite database. Nothing is
// written to disk, so posts live only as long as the process.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteStore opens a fresh in-memory database and creates the schema.
func NewSQLiteStore() (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// Every connection to ":memory:" gets its own database, so the pool is
	// pinned to a single connection that is never recycled.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)
	s := &SQLiteStore{db: db, now: time.Now}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return s, nil
}

// Close closes the database, discarding all posts.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) ensureSchema() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS blog_posts (
    seq INTEGER PRIMARY KEY AUTOINCREMENT,
    id TEXT NOT NULL UNIQUE,
    title TEXT NOT NULL,
    content TEXT NOT NULL,
    author TEXT NOT NULL,
    publish_date TEXT NOT NULL
);
`)
	return err
}

func (s *SQLiteStore) selectPosts() *goqu.SelectDataset {
	return dialect.From(postsTable).
		Select("id", "title", "content", "author", "publish_date").
		Order(goqu.C("seq").Asc())
}

// List returns all posts ordered by insertion sequence.
func (s *SQLiteStore) List(ctx context.Context) ([]BlogPost, error) {
	query, args, err := s.selectPosts().Prepared(true).ToSQL()
	if err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	posts := []BlogPost{}
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return posts, nil
}

// Len counts the stored posts.
func (s *SQLiteStore) Len(ctx context.Context) (int, error) {
	query, args, err := dialect.From(postsTable).Select(goqu.COUNT(goqu.Star())).Prepared(true).ToSQL()
	if err != nil {
		return 0, err
	}
	var n int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// Get returns a single post by id.
func (s *SQLiteStore) Get(ctx context.Context, id string) (BlogPost, error) {
	query, args, err := s.selectPosts().Where(goqu.C("id").Eq(id)).Limit(1).Prepared(true).ToSQL()
	if err != nil {
		return BlogPost{}, err
	}
	post, err := scanPost(s.db.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return BlogPost{}, &NotFoundError{ID: id}
	}
	return post, err
}

// Create inserts a new post built from f.
func (s *SQLiteStore) Create(ctx context.Context, f PostFields) (BlogPost, error) {
	if err := f.Validate(); err != nil {
		return BlogPost{}, err
	}
	post := BlogPost{
		ID:          uuid.NewString(),
		PublishDate: stamp(s.now()),
	}
	post.apply(f)
	query, args, err := dialect.Insert(postsTable).Prepared(true).Rows(goqu.Record{
		"id":           post.ID,
		"title":        post.Title,
		"content":      post.Content,
		"author":       post.Author,
		"publish_date": post.PublishDate.Format(time.RFC3339Nano),
	}).ToSQL()
	if err != nil {
		return BlogPost{}, err
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return BlogPost{}, err
	}
	return post, nil
}

// Update replaces title, content and author of the post with id.
func (s *SQLiteStore) Update(ctx context.Context, id string, f PostFields) error {
	if err := f.Validate(); err != nil {
		if _, gerr := s.Get(ctx, id); gerr != nil {
			return gerr
		}
		return err
	}
	query, args, err := dialect.Update(postsTable).Prepared(true).Set(goqu.Record{
		"title":   f.Title,
		"content": f.Content,
		"author":  f.Author,
	}).Where(goqu.C("id").Eq(id)).ToSQL()
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return &NotFoundError{ID: id}
	}
	return nil
}

// Delete removes the post with id if present.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	query, args, err := dialect.Delete(postsTable).Prepared(true).Where(goqu.C("id").Eq(id)).ToSQL()
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, query, args...)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPost(row rowScanner) (BlogPost, error) {
	var post BlogPost
	var date string
	if err := row.Scan(&post.ID, &post.Title, &post.Content, &post.Author, &date); err != nil {
		return BlogPost{}, err
	}
	t, err := time.Parse(time.RFC3339Nano, date)
	if err != nil {
		return BlogPost{}, fmt.Errorf("parse publish_date of %s: %w", post.ID, err)
	}
	post.PublishDate = t
	return post, nil
}
