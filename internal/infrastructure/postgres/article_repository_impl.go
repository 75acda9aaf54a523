package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/go-blog-cms/internal/domain/entity"
	"github.com/oksasatya/go-blog-cms/internal/domain/repository"
)

const articleSelect = `
	SELECT a.id, a.title, a.content, a.author_id, a.published_at, a.created_at, a.updated_at,
	       u.id, u.username, u.email, u.role, u.created_at, u.updated_at
	FROM articles a
	JOIN users u ON u.id = a.author_id`

type ArticleRepository struct {
	pool *pgxpool.Pool
}

func NewArticleRepository(pool *pgxpool.Pool) *ArticleRepository {
	return &ArticleRepository{pool: pool}
}

func scanArticle(row pgx.Row) (*entity.Article, error) {
	a := &entity.Article{Author: &entity.User{}}
	var role string
	if err := row.Scan(
		&a.ID, &a.Title, &a.Content, &a.AuthorID, &a.PublishedAt, &a.CreatedAt, &a.UpdatedAt,
		&a.Author.ID, &a.Author.Username, &a.Author.Email, &role, &a.Author.CreatedAt, &a.Author.UpdatedAt,
	); err != nil {
		return nil, mapErr(err)
	}
	a.Author.Role = entity.Role(role)
	return a, nil
}

// articleWhere builds the filter shared by the count and page queries
func articleWhere(f repository.ArticleFilter) *where {
	w := &where{}
	if f.AuthorID != nil {
		w.add("a.author_id = ?", *f.AuthorID)
	}
	if f.Search != "" {
		p := likePattern(f.Search)
		w.add("(a.title ILIKE ? OR a.content ILIKE ?)", p, p)
	}
	if f.Published != nil {
		if *f.Published {
			w.add("a.published_at IS NOT NULL")
		} else {
			w.add("a.published_at IS NULL")
		}
	}
	if f.TagID != nil {
		w.add("EXISTS (SELECT 1 FROM article_tags at WHERE at.article_id = a.id AND at.tag_id = ?)", *f.TagID)
	}
	if f.IDs != nil {
		w.add("a.id = ANY(?)", f.IDs)
	}
	return w
}

func (r *ArticleRepository) List(ctx context.Context, f repository.ArticleFilter) ([]entity.Article, int64, error) {
	w := articleWhere(f)

	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM articles a`+w.String(), w.args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	q := articleSelect + w.String() + ` ORDER BY a.created_at DESC, a.id DESC`
	q += w.paginate(f.Limit, f.Offset)

	rows, err := r.pool.Query(ctx, q, w.args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	articles := make([]entity.Article, 0)
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, 0, err
		}
		articles = append(articles, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	if err := r.attachTags(ctx, articles); err != nil {
		return nil, 0, err
	}
	return articles, total, nil
}

// attachTags loads the tags of every article in one round trip
func (r *ArticleRepository) attachTags(ctx context.Context, articles []entity.Article) error {
	if len(articles) == 0 {
		return nil
	}
	ids := make([]int64, len(articles))
	index := make(map[int64]int, len(articles))
	for i := range articles {
		ids[i] = articles[i].ID
		index[articles[i].ID] = i
		articles[i].Tags = make([]entity.Tag, 0)
	}

	rows, err := r.pool.Query(ctx, `
		SELECT at.article_id, t.id, t.title, t.created_at, t.updated_at
		FROM article_tags at
		JOIN tags t ON t.id = at.tag_id
		WHERE at.article_id = ANY($1)
		ORDER BY t.title
	`, ids)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var articleID int64
		var t entity.Tag
		if err := rows.Scan(&articleID, &t.ID, &t.Title, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return err
		}
		if i, ok := index[articleID]; ok {
			articles[i].Tags = append(articles[i].Tags, t)
		}
	}
	return rows.Err()
}

func (r *ArticleRepository) GetByID(ctx context.Context, id int64) (*entity.Article, error) {
	a, err := scanArticle(r.pool.QueryRow(ctx, articleSelect+` WHERE a.id = $1`, id))
	if err != nil {
		return nil, err
	}
	list := []entity.Article{*a}
	if err := r.attachTags(ctx, list); err != nil {
		return nil, err
	}
	return &list[0], nil
}

func replaceTags(ctx context.Context, tx pgx.Tx, articleID int64, tagIDs []int64) error {
	if _, err := tx.Exec(ctx, `DELETE FROM article_tags WHERE article_id = $1`, articleID); err != nil {
		return err
	}
	if len(tagIDs) == 0 {
		return nil
	}
	_, err := tx.Exec(ctx, `
		INSERT INTO article_tags (article_id, tag_id)
		SELECT $1, unnest($2::bigint[])
		ON CONFLICT DO NOTHING
	`, articleID, tagIDs)
	return err
}

func (r *ArticleRepository) Create(ctx context.Context, a *entity.Article, tagIDs []int64) error {
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, `
			INSERT INTO articles (title, content, author_id, published_at)
			VALUES ($1, $2, $3, $4)
			RETURNING id, created_at, updated_at
		`, a.Title, a.Content, a.AuthorID, a.PublishedAt)
		if err := row.Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return err
		}
		return replaceTags(ctx, tx, a.ID, tagIDs)
	})
	return mapErr(err)
}

func (r *ArticleRepository) Update(ctx context.Context, a *entity.Article, tagIDs []int64) error {
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, `
			UPDATE articles
			SET title = $1, content = $2, author_id = $3, published_at = $4, updated_at = now()
			WHERE id = $5
			RETURNING updated_at
		`, a.Title, a.Content, a.AuthorID, a.PublishedAt, a.ID)
		if err := row.Scan(&a.UpdatedAt); err != nil {
			return err
		}
		if tagIDs == nil {
			return nil
		}
		return replaceTags(ctx, tx, a.ID, tagIDs)
	})
	return mapErr(err)
}

// Delete removes the tag rows first, then the article
func (r *ArticleRepository) Delete(ctx context.Context, id int64) error {
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM article_tags WHERE article_id = $1`, id); err != nil {
			return err
		}
		res, err := tx.Exec(ctx, `DELETE FROM articles WHERE id = $1`, id)
		if err != nil {
			return err
		}
		if res.RowsAffected() == 0 {
			return repository.ErrNotFound
		}
		return nil
	})
	return mapErr(err)
}

func (r *ArticleRepository) SetPublishedAt(ctx context.Context, id int64, at *time.Time) error {
	res, err := r.pool.Exec(ctx,
		`UPDATE articles SET published_at = $1, updated_at = now() WHERE id = $2`, at, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

var _ repository.ArticleRepository = (*ArticleRepository)(nil)
