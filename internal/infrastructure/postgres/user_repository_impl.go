package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/go-blog-cms/internal/domain/entity"
	"github.com/oksasatya/go-blog-cms/internal/domain/repository"
)

const userColumns = `u.id, u.username, u.email, u.password, u.role, u.created_at, u.updated_at`

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func scanUser(row pgx.Row, extra ...any) (*entity.User, error) {
	u := &entity.User{}
	var role string
	dest := append([]any{&u.ID, &u.Username, &u.Email, &u.Password, &role, &u.CreatedAt, &u.UpdatedAt}, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, mapErr(err)
	}
	u.Role = entity.Role(role)
	return u, nil
}

func (r *UserRepository) List(ctx context.Context, f repository.UserFilter) ([]entity.User, int64, error) {
	w := &where{}
	if f.ExcludeRole != "" {
		w.add("u.role <> ?", string(f.ExcludeRole))
	}
	if f.Search != "" {
		w.add("u.username ILIKE ?", likePattern(f.Search))
	}

	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users u`+w.String(), w.args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	q := `SELECT ` + userColumns + `,
		(SELECT COUNT(*) FROM articles a WHERE a.author_id = u.id) AS articles_count
		FROM users u` + w.String() + ` ORDER BY u.created_at DESC, u.id DESC`
	q += w.paginate(f.Limit, f.Offset)

	rows, err := r.pool.Query(ctx, q, w.args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	users := make([]entity.User, 0)
	for rows.Next() {
		var count int64
		u, err := scanUser(rows, &count)
		if err != nil {
			return nil, 0, err
		}
		u.ArticlesCount = count
		users = append(users, *u)
	}
	return users, total, rows.Err()
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*entity.User, error) {
	return scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users u WHERE u.id = $1`, id))
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users u WHERE u.email = $1`, email))
}

func (r *UserRepository) EmailExists(ctx context.Context, email string, excludeID int64) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE email = $1 AND id <> $2)`, email, excludeID,
	).Scan(&exists)
	return exists, err
}

func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	if u.Role == "" {
		u.Role = entity.RoleAuthor
	}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (username, email, password, role)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`, u.Username, u.Email, u.Password, string(u.Role))

	return mapErr(row.Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt))
}

func (r *UserRepository) Update(ctx context.Context, u *entity.User) error {
	row := r.pool.QueryRow(ctx, `
		UPDATE users
		SET username = $1, email = $2, password = $3, role = $4, updated_at = now()
		WHERE id = $5
		RETURNING updated_at
	`, u.Username, u.Email, u.Password, string(u.Role), u.ID)

	return mapErr(row.Scan(&u.UpdatedAt))
}

// Delete removes the user's article tag rows, articles and the user in one transaction
func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `
			DELETE FROM article_tags
			WHERE article_id IN (SELECT id FROM articles WHERE author_id = $1)
		`, id); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `DELETE FROM articles WHERE author_id = $1`, id); err != nil {
			return err
		}
		res, err := tx.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
		if err != nil {
			return err
		}
		if res.RowsAffected() == 0 {
			return repository.ErrNotFound
		}
		return nil
	})
}

func (r *UserRepository) ListByRole(ctx context.Context, role entity.Role) ([]entity.User, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+userColumns+` FROM users u WHERE u.role = $1 ORDER BY u.username`, string(role))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]entity.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

var _ repository.UserRepository = (*UserRepository)(nil)
