package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/go-blog-cms/internal/domain/entity"
	"github.com/oksasatya/go-blog-cms/internal/domain/repository"
)

const tagColumns = `t.id, t.title, t.created_at, t.updated_at`

type TagRepository struct {
	pool *pgxpool.Pool
}

func NewTagRepository(pool *pgxpool.Pool) *TagRepository {
	return &TagRepository{pool: pool}
}

func scanTag(row pgx.Row) (*entity.Tag, error) {
	t := &entity.Tag{}
	if err := row.Scan(&t.ID, &t.Title, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, mapErr(err)
	}
	return t, nil
}

func (r *TagRepository) collect(rows pgx.Rows, err error) ([]entity.Tag, error) {
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tags := make([]entity.Tag, 0)
	for rows.Next() {
		t, err := scanTag(rows)
		if err != nil {
			return nil, err
		}
		tags = append(tags, *t)
	}
	return tags, rows.Err()
}

func (r *TagRepository) List(ctx context.Context, f repository.TagFilter) ([]entity.Tag, int64, error) {
	w := &where{}
	if f.Search != "" {
		w.add("t.title ILIKE ?", likePattern(f.Search))
	}

	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM tags t`+w.String(), w.args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	q := `SELECT ` + tagColumns + ` FROM tags t` + w.String() + ` ORDER BY t.created_at DESC, t.id DESC`
	q += w.paginate(f.Limit, f.Offset)

	tags, err := r.collect(r.pool.Query(ctx, q, w.args...))
	if err != nil {
		return nil, 0, err
	}
	return tags, total, nil
}

func (r *TagRepository) All(ctx context.Context) ([]entity.Tag, error) {
	return r.collect(r.pool.Query(ctx, `SELECT `+tagColumns+` FROM tags t ORDER BY t.title`))
}

func (r *TagRepository) GetByID(ctx context.Context, id int64) (*entity.Tag, error) {
	return scanTag(r.pool.QueryRow(ctx, `SELECT `+tagColumns+` FROM tags t WHERE t.id = $1`, id))
}

func (r *TagRepository) Create(ctx context.Context, t *entity.Tag) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO tags (title) VALUES ($1)
		RETURNING id, created_at, updated_at
	`, t.Title)
	return mapErr(row.Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt))
}

func (r *TagRepository) Update(ctx context.Context, t *entity.Tag) error {
	row := r.pool.QueryRow(ctx, `
		UPDATE tags SET title = $1, updated_at = now()
		WHERE id = $2
		RETURNING created_at, updated_at
	`, t.Title, t.ID)
	return mapErr(row.Scan(&t.CreatedAt, &t.UpdatedAt))
}

// Delete fails with repository.ErrReferenced while article rows point at the tag
func (r *TagRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.pool.Exec(ctx, `DELETE FROM tags WHERE id = $1`, id)
	if err != nil {
		return mapErr(err)
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *TagRepository) CountExisting(ctx context.Context, ids []int64) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM tags WHERE id = ANY($1)`, ids).Scan(&n)
	return n, err
}

func (r *TagRepository) TitleExists(ctx context.Context, title string, excludeID int64) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM tags WHERE lower(title) = lower($1) AND id <> $2)`, title, excludeID,
	).Scan(&exists)
	return exists, err
}

func (r *TagRepository) CountArticles(ctx context.Context, id int64) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM article_tags WHERE tag_id = $1`, id).Scan(&n)
	return n, err
}

var _ repository.TagRepository = (*TagRepository)(nil)
