// Package sqlite stores articles in a SQLite file through the pure-Go
// modernc driver.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"article-panel/internal/domain/entity"
	"article-panel/internal/pkg/search"
	"article-panel/internal/repository"
)

// storedTimeLayout is fixed-width so that created_at sorts correctly as text.
const storedTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const articleColumns = `id, title, url, summary, polarity, subjectivity, bias_rating, bias_words, created_at`

// ArticleRepo implements the ArticleRepository interface using SQLite.
type ArticleRepo struct {
	db  *sql.DB
	now func() time.Time
}

// NewArticleRepo creates a new SQLite-backed article repository.
func NewArticleRepo(db *sql.DB) repository.ArticleRepository {
	return &ArticleRepo{
		db:  db,
		now: time.Now,
	}
}

// Upsert inserts the article or updates the row with the same URL.
// created_at is kept from the first insert.
func (repo *ArticleRepo) Upsert(ctx context.Context, article *entity.Article) error {
	const query = `
INSERT INTO articles
       (title, url, summary, polarity, subjectivity, bias_rating, bias_words, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (url) DO UPDATE SET
       title        = excluded.title,
       summary      = excluded.summary,
       polarity     = excluded.polarity,
       subjectivity = excluded.subjectivity,
       bias_rating  = excluded.bias_rating,
       bias_words   = excluded.bias_words
RETURNING id, created_at`
	var created timestamp
	err := repo.db.QueryRowContext(ctx, query,
		article.Title, article.URL, article.Summary,
		article.Polarity, article.Subjectivity, article.BiasRating,
		strings.Join(article.BiasWords, ","),
		repo.now().UTC().Format(storedTimeLayout),
	).Scan(&article.ID, &created)
	if err != nil {
		return fmt.Errorf("Upsert: %w", err)
	}
	article.CreatedAt = created.Time
	return nil
}

func (repo *ArticleRepo) GetByURL(ctx context.Context, url string) (*entity.Article, error) {
	const query = `
SELECT ` + articleColumns + `
FROM articles
WHERE url = ?
LIMIT 1`
	article, err := scanArticle(repo.db.QueryRowContext(ctx, query, url))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("GetByURL: %w", err)
	}
	return article, nil
}

func (repo *ArticleRepo) Search(ctx context.Context, keywords []string, limit int) ([]*entity.Article, error) {
	if len(keywords) == 0 {
		return []*entity.Article{}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, search.DefaultSearchTimeout)
	defer cancel()

	whereClause, args := search.SQLite.WhereAll(keywords, 1, "title", "summary")
	query := fmt.Sprintf(`
SELECT %s
FROM articles
%s
ORDER BY created_at DESC, id DESC
LIMIT ?`, articleColumns, whereClause)
	args = append(args, limit)

	articles, err := repo.query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("Search: %w", err)
	}
	return articles, nil
}

func (repo *ArticleRepo) ListRecent(ctx context.Context, limit int) ([]*entity.Article, error) {
	const query = `
SELECT ` + articleColumns + `
FROM articles
ORDER BY created_at DESC, id DESC
LIMIT ?`
	articles, err := repo.query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("ListRecent: %w", err)
	}
	return articles, nil
}

func (repo *ArticleRepo) query(ctx context.Context, query string, args ...any) ([]*entity.Article, error) {
	rows, err := repo.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	articles := make([]*entity.Article, 0, 20)
	for rows.Next() {
		article, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("Scan: %w", err)
		}
		articles = append(articles, article)
	}
	return articles, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanArticle(s scanner) (*entity.Article, error) {
	var (
		article entity.Article
		words   sql.NullString
		created timestamp
	)
	if err := s.Scan(&article.ID, &article.Title, &article.URL, &article.Summary,
		&article.Polarity, &article.Subjectivity, &article.BiasRating,
		&words, &created); err != nil {
		return nil, err
	}
	if words.String != "" {
		article.BiasWords = strings.Split(words.String, ",")
	}
	article.CreatedAt = created.Time
	return &article, nil
}

// timestamp scans SQLite time values, which arrive as time.Time or as text
// depending on how the column was written.
type timestamp struct{ time.Time }

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05",
}

func (ts *timestamp) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		ts.Time = time.Time{}
		return nil
	case time.Time:
		ts.Time = v
		return nil
	case int64:
		ts.Time = time.Unix(v, 0).UTC()
		return nil
	case []byte:
		return ts.parse(string(v))
	case string:
		return ts.parse(v)
	default:
		return fmt.Errorf("unsupported time value %T", src)
	}
}

func (ts *timestamp) parse(s string) error {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			ts.Time = t
			return nil
		}
	}
	return fmt.Errorf("unrecognized time %q", s)
}
