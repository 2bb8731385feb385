// Package postgres stores articles in PostgreSQL through pgx.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"article-panel/internal/domain/entity"
	"article-panel/internal/pkg/search"
	"article-panel/internal/repository"
)

const articleColumns = `id, title, url, summary, polarity, subjectivity, bias_rating, bias_words, created_at`

type ArticleRepo struct {
	db *sql.DB
}

func NewArticleRepo(db *sql.DB) repository.ArticleRepository {
	return &ArticleRepo{
		db: db,
	}
}

func (repo *ArticleRepo) Upsert(ctx context.Context, article *entity.Article) error {
	const query = `
INSERT INTO articles
       (title, url, summary, polarity, subjectivity, bias_rating, bias_words)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (url) DO UPDATE SET
       title        = EXCLUDED.title,
       summary      = EXCLUDED.summary,
       polarity     = EXCLUDED.polarity,
       subjectivity = EXCLUDED.subjectivity,
       bias_rating  = EXCLUDED.bias_rating,
       bias_words   = EXCLUDED.bias_words
RETURNING id, created_at`
	err := repo.db.QueryRowContext(ctx, query,
		article.Title, article.URL, article.Summary,
		article.Polarity, article.Subjectivity, article.BiasRating,
		strings.Join(article.BiasWords, ","),
	).Scan(&article.ID, &article.CreatedAt)
	if err != nil {
		return fmt.Errorf("Upsert: %w", err)
	}
	return nil
}

func (repo *ArticleRepo) GetByURL(ctx context.Context, url string) (*entity.Article, error) {
	const query = `
SELECT ` + articleColumns + `
FROM articles
WHERE url = $1
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

	whereClause, args := search.Postgres.WhereAll(keywords, 1, "title", "summary")
	query := fmt.Sprintf(`
SELECT %s
FROM articles
%s
ORDER BY created_at DESC, id DESC
LIMIT $%d`, articleColumns, whereClause, len(args)+1)
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
LIMIT $1`
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
	)
	if err := s.Scan(&article.ID, &article.Title, &article.URL, &article.Summary,
		&article.Polarity, &article.Subjectivity, &article.BiasRating,
		&words, &article.CreatedAt); err != nil {
		return nil, err
	}
	if words.String != "" {
		article.BiasWords = strings.Split(words.String, ",")
	}
	return &article, nil
}
