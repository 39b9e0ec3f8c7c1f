package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"pet-adoption-market/internal/domain/adoptions"
	"pet-adoption-market/internal/storage"
)

const adoptionCols = `id, user_id, pet_id, status, fee, pickup, details, admin_notes,
	reviewed_by, reviewed_at, created_at, updated_at`

type AdoptionsRepo struct {
	db  *sql.DB
	now nowFunc
}

func NewAdoptionsRepo(db *sql.DB) *AdoptionsRepo {
	return &AdoptionsRepo{db: db, now: defaultNow}
}

func (r *AdoptionsRepo) Create(ctx context.Context, a adoptions.Application) (adoptions.Application, error) {
	if strings.TrimSpace(a.UserID) == "" || strings.TrimSpace(a.PetID) == "" {
		return adoptions.Application{}, storage.Invalid("application", "user and pet required")
	}

	now := r.now()
	a.ID = storage.NewPrimaryID()
	a.CreatedAt = now
	a.UpdatedAt = now
	if a.Status == "" {
		a.Status = adoptions.StatusPending
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO adoption_applications (`+adoptionCols+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
	`,
		a.ID, a.UserID, a.PetID, a.Status, toJSON(a.Fee), toJSON(a.Pickup), toJSON(a.Details),
		a.AdminNotes, a.ReviewedBy, toNullTime(a.ReviewedAt), a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		return adoptions.Application{}, classify("adoptions.create", err)
	}
	return a, nil
}

func (r *AdoptionsRepo) GetByID(ctx context.Context, id string) (adoptions.Application, error) {
	if !storage.IsPrimaryID(id) {
		return adoptions.Application{}, storage.ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `SELECT `+adoptionCols+` FROM adoption_applications WHERE id = $1`, id)
	a, err := scanAdoption(row)
	if err != nil {
		return adoptions.Application{}, classify("adoptions.get", err)
	}
	return a, nil
}

func (r *AdoptionsRepo) FindOne(ctx context.Context, f adoptions.Filter) (adoptions.Application, error) {
	where, args := adoptionWhere(f)
	row := r.db.QueryRowContext(ctx, `
		SELECT `+adoptionCols+` FROM adoption_applications `+where+`
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`, args...)

	a, err := scanAdoption(row)
	if err != nil {
		return adoptions.Application{}, classify("adoptions.findOne", err)
	}
	return a, nil
}

func (r *AdoptionsRepo) List(ctx context.Context, f adoptions.Filter, page storage.Page) ([]adoptions.Application, int, error) {
	page = page.Normalize()
	where, args := adoptionWhere(f)

	total, err := r.Count(ctx, f)
	if err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`
		SELECT `+adoptionCols+` FROM adoption_applications %s
		ORDER BY created_at DESC, id DESC
		LIMIT %d OFFSET %d
	`, where, page.Size, page.Offset())

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, classify("adoptions.list", err)
	}
	defer rows.Close()

	out := make([]adoptions.Application, 0)
	for rows.Next() {
		a, err := scanAdoption(rows)
		if err != nil {
			return nil, 0, classify("adoptions.list", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, classify("adoptions.list", err)
	}
	return out, total, nil
}

func (r *AdoptionsRepo) Update(ctx context.Context, id string, p adoptions.Patch) (adoptions.Application, error) {
	if !storage.IsPrimaryID(id) {
		return adoptions.Application{}, storage.ErrNotFound
	}

	var set setClause
	if p.Status != nil {
		set.add("status", *p.Status)
	}
	if p.AdminNotes != nil {
		set.add("admin_notes", *p.AdminNotes)
	}
	if p.ReviewedBy != nil {
		set.add("reviewed_by", *p.ReviewedBy)
	}
	if p.ReviewedAt != nil {
		set.add("reviewed_at", *p.ReviewedAt)
	}
	if p.Pickup != nil {
		set.add("pickup", toJSON(*p.Pickup))
	}
	if len(set.cols) == 0 {
		return r.GetByID(ctx, id)
	}
	set.add("updated_at", r.now())

	query := fmt.Sprintf(`
		UPDATE adoption_applications SET %s WHERE id = %s
		RETURNING `+adoptionCols,
		strings.Join(set.cols, ", "), set.next(id))

	row := r.db.QueryRowContext(ctx, query, set.args...)
	a, err := scanAdoption(row)
	if err != nil {
		return adoptions.Application{}, classify("adoptions.update", err)
	}
	return a, nil
}

func (r *AdoptionsRepo) Delete(ctx context.Context, id string) error {
	if !storage.IsPrimaryID(id) {
		return storage.ErrNotFound
	}

	res, err := r.db.ExecContext(ctx, `DELETE FROM adoption_applications WHERE id = $1`, id)
	if err != nil {
		return classify("adoptions.delete", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (r *AdoptionsRepo) Count(ctx context.Context, f adoptions.Filter) (int, error) {
	where, args := adoptionWhere(f)

	var total int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM adoption_applications `+where, args...).Scan(&total)
	if err != nil {
		return 0, classify("adoptions.count", err)
	}
	return total, nil
}

func scanAdoption(row rowScanner) (adoptions.Application, error) {
	var (
		a                    adoptions.Application
		fee, pickup, details []byte
		reviewedAt           sql.NullTime
	)
	err := row.Scan(
		&a.ID, &a.UserID, &a.PetID, &a.Status, &fee, &pickup, &details,
		&a.AdminNotes, &a.ReviewedBy, &reviewedAt, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return adoptions.Application{}, err
	}

	fromJSON(fee, &a.Fee)
	fromJSON(pickup, &a.Pickup)
	fromJSON(details, &a.Details)
	if reviewedAt.Valid {
		t := reviewedAt.Time
		a.ReviewedAt = &t
	}
	return a, nil
}

func adoptionWhere(f adoptions.Filter) (string, []any) {
	var set setClause
	conds := make([]string, 0, 4)

	if f.UserID != "" {
		conds = append(conds, fmt.Sprintf("user_id = %s", set.next(f.UserID)))
	}
	if f.PetID != "" {
		conds = append(conds, fmt.Sprintf("pet_id = %s", set.next(f.PetID)))
	}
	if f.Status != "" {
		conds = append(conds, fmt.Sprintf("status = %s", set.next(f.Status)))
	}
	if len(f.Statuses) > 0 {
		phs := make([]string, 0, len(f.Statuses))
		for _, st := range f.Statuses {
			phs = append(phs, set.next(st))
		}
		conds = append(conds, fmt.Sprintf("status IN (%s)", strings.Join(phs, ", ")))
	}

	if len(conds) == 0 {
		return "", nil
	}
	return "WHERE " + strings.Join(conds, " AND "), set.args
}
