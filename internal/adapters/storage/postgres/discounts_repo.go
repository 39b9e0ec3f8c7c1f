package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"pet-adoption-market/internal/domain/discounts"
	"pet-adoption-market/internal/storage"
)

const discountCols = `id, code, name, description, type, value, min_adoption_fee, max_discount,
	valid_from, valid_until, usage_limit, used_count, is_active, applicable_pet_types,
	applicable_pet_ages, first_time_adopters_only, allowed_user_ids, created_by, created_at, updated_at`

type DiscountsRepo struct {
	db  *sql.DB
	now nowFunc
}

func NewDiscountsRepo(db *sql.DB) *DiscountsRepo {
	return &DiscountsRepo{db: db, now: defaultNow}
}

func (r *DiscountsRepo) Create(ctx context.Context, c discounts.Code) (discounts.Code, error) {
	c.Code = strings.ToUpper(strings.TrimSpace(c.Code))
	if c.Code == "" || strings.TrimSpace(c.Name) == "" {
		return discounts.Code{}, storage.Invalid("discount", "code and name required")
	}

	now := r.now()
	c.ID = storage.NewPrimaryID()
	c.CreatedAt = now
	c.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO discount_codes (`+discountCols+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20)
	`,
		c.ID, c.Code, c.Name, c.Description, c.Type, c.Value, c.MinAdoptionFee,
		toNullFloat(c.MaxDiscount), c.ValidFrom, c.ValidUntil, toNullInt(c.UsageLimit),
		c.UsedCount, c.IsActive, toJSON(c.ApplicablePetTypes), toJSON(c.ApplicablePetAges),
		c.FirstTimeAdoptersOnly, toJSON(c.AllowedUserIDs), c.CreatedBy, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return discounts.Code{}, classify("discounts.create", err)
	}
	return c, nil
}

func (r *DiscountsRepo) GetByID(ctx context.Context, id string) (discounts.Code, error) {
	if !storage.IsPrimaryID(id) {
		return discounts.Code{}, storage.ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `SELECT `+discountCols+` FROM discount_codes WHERE id = $1`, id)
	c, err := scanDiscount(row)
	if err != nil {
		return discounts.Code{}, classify("discounts.get", err)
	}
	return c, nil
}

func (r *DiscountsRepo) GetByCode(ctx context.Context, code string) (discounts.Code, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+discountCols+` FROM discount_codes WHERE code = UPPER($1)
	`, strings.TrimSpace(code))

	c, err := scanDiscount(row)
	if err != nil {
		return discounts.Code{}, classify("discounts.getByCode", err)
	}
	return c, nil
}

func (r *DiscountsRepo) List(ctx context.Context, f discounts.Filter, page storage.Page) ([]discounts.Code, int, error) {
	page = page.Normalize()
	where, args := discountWhere(f)

	total, err := r.Count(ctx, f)
	if err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`
		SELECT `+discountCols+` FROM discount_codes %s
		ORDER BY created_at DESC, id DESC
		LIMIT %d OFFSET %d
	`, where, page.Size, page.Offset())

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, classify("discounts.list", err)
	}
	defer rows.Close()

	out := make([]discounts.Code, 0)
	for rows.Next() {
		c, err := scanDiscount(rows)
		if err != nil {
			return nil, 0, classify("discounts.list", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, classify("discounts.list", err)
	}
	return out, total, nil
}

func (r *DiscountsRepo) Update(ctx context.Context, id string, p discounts.Patch) (discounts.Code, error) {
	if !storage.IsPrimaryID(id) {
		return discounts.Code{}, storage.ErrNotFound
	}

	var set setClause
	if p.Name != nil {
		set.add("name", *p.Name)
	}
	if p.Description != nil {
		set.add("description", *p.Description)
	}
	if p.Type != nil {
		set.add("type", *p.Type)
	}
	if p.Value != nil {
		set.add("value", *p.Value)
	}
	if p.MinAdoptionFee != nil {
		set.add("min_adoption_fee", *p.MinAdoptionFee)
	}
	if p.MaxDiscount != nil {
		set.add("max_discount", *p.MaxDiscount)
	}
	if p.ValidFrom != nil {
		set.add("valid_from", *p.ValidFrom)
	}
	if p.ValidUntil != nil {
		set.add("valid_until", *p.ValidUntil)
	}
	if p.UsageLimit != nil {
		set.add("usage_limit", *p.UsageLimit)
	}
	if p.IsActive != nil {
		set.add("is_active", *p.IsActive)
	}
	if p.ApplicablePetTypes != nil {
		set.add("applicable_pet_types", toJSON(*p.ApplicablePetTypes))
	}
	if p.ApplicablePetAges != nil {
		set.add("applicable_pet_ages", toJSON(*p.ApplicablePetAges))
	}
	if p.FirstTimeAdoptersOnly != nil {
		set.add("first_time_adopters_only", *p.FirstTimeAdoptersOnly)
	}
	if p.AllowedUserIDs != nil {
		set.add("allowed_user_ids", toJSON(*p.AllowedUserIDs))
	}
	if len(set.cols) == 0 {
		return r.GetByID(ctx, id)
	}
	set.add("updated_at", r.now())

	query := fmt.Sprintf(`
		UPDATE discount_codes SET %s WHERE id = %s
		RETURNING `+discountCols,
		strings.Join(set.cols, ", "), set.next(id))

	row := r.db.QueryRowContext(ctx, query, set.args...)
	c, err := scanDiscount(row)
	if err != nil {
		return discounts.Code{}, classify("discounts.update", err)
	}
	return c, nil
}

func (r *DiscountsRepo) Delete(ctx context.Context, id string) error {
	if !storage.IsPrimaryID(id) {
		return storage.ErrNotFound
	}

	res, err := r.db.ExecContext(ctx, `DELETE FROM discount_codes WHERE id = $1`, id)
	if err != nil {
		return classify("discounts.delete", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (r *DiscountsRepo) Count(ctx context.Context, f discounts.Filter) (int, error) {
	where, args := discountWhere(f)

	var total int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM discount_codes `+where, args...).Scan(&total)
	if err != nil {
		return 0, classify("discounts.count", err)
	}
	return total, nil
}

// Consume is a single conditional UPDATE, so the usage limit cannot
// be overshot even under concurrent applications.
func (r *DiscountsRepo) Consume(ctx context.Context, id string) error {
	if !storage.IsPrimaryID(id) {
		return storage.ErrNotFound
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE discount_codes
		SET used_count = used_count + 1, updated_at = $2
		WHERE id = $1 AND (usage_limit IS NULL OR used_count < usage_limit)
	`, id, r.now())
	if err != nil {
		return classify("discounts.consume", err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		return nil
	}

	if _, err := r.GetByID(ctx, id); err != nil {
		return err
	}
	return discounts.ErrExhausted
}

func (r *DiscountsRepo) Release(ctx context.Context, id string) error {
	if !storage.IsPrimaryID(id) {
		return storage.ErrNotFound
	}

	_, err := r.db.ExecContext(ctx, `
		UPDATE discount_codes
		SET used_count = used_count - 1, updated_at = $2
		WHERE id = $1 AND used_count > 0
	`, id, r.now())
	if err != nil {
		return classify("discounts.release", err)
	}
	return nil
}

func (r *DiscountsRepo) Stats(ctx context.Context) (discounts.Stats, error) {
	var stats discounts.Stats

	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
			COUNT(*) FILTER (WHERE is_active),
			COUNT(*) FILTER (WHERE valid_until < NOW())
		FROM discount_codes
	`).Scan(&stats.Total, &stats.Active, &stats.Expired)
	if err != nil {
		return discounts.Stats{}, classify("discounts.stats", err)
	}

	mostUsed, err := r.topCodes(ctx, `ORDER BY used_count DESC, id DESC`)
	if err != nil {
		return discounts.Stats{}, err
	}
	stats.MostUsed = mostUsed

	recent, err := r.topCodes(ctx, `ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return discounts.Stats{}, err
	}
	stats.Recent = recent

	return stats, nil
}

func (r *DiscountsRepo) topCodes(ctx context.Context, order string) ([]discounts.Code, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+discountCols+` FROM discount_codes `+order+` LIMIT 5`)
	if err != nil {
		return nil, classify("discounts.stats", err)
	}
	defer rows.Close()

	out := make([]discounts.Code, 0, 5)
	for rows.Next() {
		c, err := scanDiscount(rows)
		if err != nil {
			return nil, classify("discounts.stats", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func scanDiscount(row rowScanner) (discounts.Code, error) {
	var (
		c                 discounts.Code
		maxDiscount       sql.NullFloat64
		usageLimit        sql.NullInt64
		petTypes, petAges []byte
		allowedUsers      []byte
	)
	err := row.Scan(
		&c.ID, &c.Code, &c.Name, &c.Description, &c.Type, &c.Value, &c.MinAdoptionFee,
		&maxDiscount, &c.ValidFrom, &c.ValidUntil, &usageLimit, &c.UsedCount, &c.IsActive,
		&petTypes, &petAges, &c.FirstTimeAdoptersOnly, &allowedUsers, &c.CreatedBy,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return discounts.Code{}, err
	}

	if maxDiscount.Valid {
		c.MaxDiscount = &maxDiscount.Float64
	}
	if usageLimit.Valid {
		limit := int(usageLimit.Int64)
		c.UsageLimit = &limit
	}
	fromJSON(petTypes, &c.ApplicablePetTypes)
	fromJSON(petAges, &c.ApplicablePetAges)
	fromJSON(allowedUsers, &c.AllowedUserIDs)
	return c, nil
}

func discountWhere(f discounts.Filter) (string, []any) {
	var set setClause
	conds := make([]string, 0, 3)

	if f.Code != "" {
		conds = append(conds, fmt.Sprintf("code = UPPER(%s)", set.next(f.Code)))
	}
	if f.IsActive != nil {
		conds = append(conds, fmt.Sprintf("is_active = %s", set.next(*f.IsActive)))
	}
	if f.ActiveAt != nil {
		ph := set.next(*f.ActiveAt)
		conds = append(conds, fmt.Sprintf("valid_from <= %s AND valid_until >= %s", ph, ph))
	}

	if len(conds) == 0 {
		return "", nil
	}
	return "WHERE " + strings.Join(conds, " AND "), set.args
}
