package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"pet-adoption-market/internal/domain/users"
	"pet-adoption-market/internal/storage"
)

const userCols = `id, name, email, credential_hash, phone, is_admin, average_rating, total_reviews, created_at, updated_at`

type UsersRepo struct {
	db  *sql.DB
	now nowFunc
}

func NewUsersRepo(db *sql.DB) *UsersRepo {
	return &UsersRepo{db: db, now: defaultNow}
}

func (r *UsersRepo) Create(ctx context.Context, u users.User) (users.User, error) {
	if strings.TrimSpace(u.Name) == "" || strings.TrimSpace(u.Email) == "" {
		return users.User{}, storage.Invalid("user", "name and email required")
	}

	now := r.now()
	u.ID = storage.NewPrimaryID()
	u.CreatedAt = now
	u.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (`+userCols+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
	`,
		u.ID, u.Name, u.Email, u.CredentialHash, u.Phone,
		u.IsAdmin, u.AverageRating, u.TotalReviews, u.CreatedAt, u.UpdatedAt,
	)
	if err != nil {
		return users.User{}, classify("users.create", err)
	}
	return u, nil
}

func (r *UsersRepo) GetByID(ctx context.Context, id string) (users.User, error) {
	if !storage.IsPrimaryID(id) {
		return users.User{}, storage.ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `SELECT `+userCols+` FROM users WHERE id = $1`, id)
	u, err := scanUser(row)
	if err != nil {
		return users.User{}, classify("users.get", err)
	}
	return u, nil
}

func (r *UsersRepo) FindOne(ctx context.Context, f users.Filter) (users.User, error) {
	where, args := userWhere(f)
	row := r.db.QueryRowContext(ctx, `
		SELECT `+userCols+` FROM users `+where+`
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`, args...)

	u, err := scanUser(row)
	if err != nil {
		return users.User{}, classify("users.findOne", err)
	}
	return u, nil
}

func (r *UsersRepo) List(ctx context.Context, f users.Filter, page storage.Page) ([]users.User, int, error) {
	page = page.Normalize()
	where, args := userWhere(f)

	total, err := r.Count(ctx, f)
	if err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`
		SELECT `+userCols+` FROM users %s
		ORDER BY created_at DESC, id DESC
		LIMIT %d OFFSET %d
	`, where, page.Size, page.Offset())

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, classify("users.list", err)
	}
	defer rows.Close()

	out := make([]users.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, classify("users.list", err)
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, classify("users.list", err)
	}
	return out, total, nil
}

func (r *UsersRepo) Update(ctx context.Context, id string, p users.Patch) (users.User, error) {
	if !storage.IsPrimaryID(id) {
		return users.User{}, storage.ErrNotFound
	}

	var set setClause
	if p.Name != nil {
		set.add("name", *p.Name)
	}
	if p.Phone != nil {
		set.add("phone", *p.Phone)
	}
	if p.CredentialHash != nil {
		set.add("credential_hash", *p.CredentialHash)
	}
	if p.AverageRating != nil {
		set.add("average_rating", *p.AverageRating)
	}
	if p.TotalReviews != nil {
		set.add("total_reviews", *p.TotalReviews)
	}
	if len(set.cols) == 0 {
		return r.GetByID(ctx, id)
	}
	set.add("updated_at", r.now())

	query := fmt.Sprintf(`
		UPDATE users SET %s WHERE id = %s
		RETURNING `+userCols,
		strings.Join(set.cols, ", "), set.next(id))

	row := r.db.QueryRowContext(ctx, query, set.args...)
	u, err := scanUser(row)
	if err != nil {
		return users.User{}, classify("users.update", err)
	}
	return u, nil
}

func (r *UsersRepo) Delete(ctx context.Context, id string) error {
	if !storage.IsPrimaryID(id) {
		return storage.ErrNotFound
	}

	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return classify("users.delete", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (r *UsersRepo) Count(ctx context.Context, f users.Filter) (int, error) {
	where, args := userWhere(f)

	var total int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users `+where, args...).Scan(&total)
	if err != nil {
		return 0, classify("users.count", err)
	}
	return total, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (users.User, error) {
	var u users.User
	err := row.Scan(
		&u.ID, &u.Name, &u.Email, &u.CredentialHash, &u.Phone,
		&u.IsAdmin, &u.AverageRating, &u.TotalReviews, &u.CreatedAt, &u.UpdatedAt,
	)
	return u, err
}

func userWhere(f users.Filter) (string, []any) {
	var set setClause
	conds := make([]string, 0, 3)

	if f.Email != "" {
		conds = append(conds, fmt.Sprintf("LOWER(email) = LOWER(%s)", set.next(f.Email)))
	}
	if f.IsAdmin != nil {
		conds = append(conds, fmt.Sprintf("is_admin = %s", set.next(*f.IsAdmin)))
	}
	if f.Search != "" {
		ph := set.next("%" + f.Search + "%")
		conds = append(conds, fmt.Sprintf("(name ILIKE %s OR email ILIKE %s)", ph, ph))
	}

	if len(conds) == 0 {
		return "", nil
	}
	return "WHERE " + strings.Join(conds, " AND "), set.args
}
