// Package repository declares the storage interfaces of the article service.
package repository

import (
	"context"

	"article-panel/internal/domain/entity"
)

// ArticleRepository stores processed articles. The article URL is unique.
type ArticleRepository interface {
	// Upsert inserts article or, if its URL is already stored, replaces the
	// stored title, summary and scores. It sets article.ID and article.CreatedAt
	// from the stored row.
	Upsert(ctx context.Context, article *entity.Article) error
	// GetByURL returns the article stored under url, or (nil, nil).
	GetByURL(ctx context.Context, url string) (*entity.Article, error)
	// Search returns up to limit articles whose title or summary contains every
	// keyword (case-insensitive), newest first. No keywords yields no articles.
	Search(ctx context.Context, keywords []string, limit int) ([]*entity.Article, error)
	// ListRecent returns up to limit articles, newest first.
	ListRecent(ctx context.Context, limit int) ([]*entity.Article, error)
}
