package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"pet-adoption-market/internal/domain/pets"
	"pet-adoption-market/internal/storage"
)

const petCols = `id, owner_id, name, type, breed, age, age_unit, gender, size, color, description,
	images, health, temperament, good_with, location, status, adoption_fee, views, wishlisted_by,
	created_at, updated_at`

type PetsRepo struct {
	db  *sql.DB
	now nowFunc
}

func NewPetsRepo(db *sql.DB) *PetsRepo {
	return &PetsRepo{db: db, now: defaultNow}
}

func (r *PetsRepo) Create(ctx context.Context, p pets.Pet) (pets.Pet, error) {
	if strings.TrimSpace(p.Name) == "" || p.Type == "" || strings.TrimSpace(p.OwnerID) == "" {
		return pets.Pet{}, storage.Invalid("pet", "name, type and owner required")
	}

	now := r.now()
	p.ID = storage.NewPrimaryID()
	p.CreatedAt = now
	p.UpdatedAt = now
	if p.Status == "" {
		p.Status = pets.StatusAvailable
	}
	if p.Images == nil {
		p.Images = []string{}
	}
	if p.WishlistedBy == nil {
		p.WishlistedBy = []string{}
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO pets (`+petCols+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22)
	`,
		p.ID, p.OwnerID, p.Name, p.Type, p.Breed, p.Age, p.AgeUnit, p.Gender, p.Size, p.Color, p.Description,
		toJSON(p.Images), toJSON(p.Health), toJSON(p.Temperament), toJSON(p.GoodWith), toJSON(p.Location),
		p.Status, p.AdoptionFee, p.Views, toJSON(p.WishlistedBy), p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return pets.Pet{}, classify("pets.create", err)
	}
	return p, nil
}

func (r *PetsRepo) GetByID(ctx context.Context, id string) (pets.Pet, error) {
	if !storage.IsPrimaryID(id) {
		return pets.Pet{}, storage.ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `SELECT `+petCols+` FROM pets WHERE id = $1`, id)
	p, err := scanPet(row)
	if err != nil {
		return pets.Pet{}, classify("pets.get", err)
	}
	return p, nil
}

// GetDetail joins the owner and returns the restricted projection the
// callers are allowed to see.
func (r *PetsRepo) GetDetail(ctx context.Context, id string) (pets.Detail, error) {
	if !storage.IsPrimaryID(id) {
		return pets.Detail{}, storage.ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT p.id, p.owner_id, p.name, p.type, p.breed, p.age, p.age_unit, p.gender, p.size,
			p.color, p.description, p.images, p.health, p.temperament, p.good_with, p.location,
			p.status, p.adoption_fee, p.views, p.wishlisted_by, p.created_at, p.updated_at,
			u.id, u.name, u.email, u.phone, u.average_rating, u.total_reviews
		FROM pets p
		LEFT JOIN users u ON u.id::text = p.owner_id
		WHERE p.id = $1
	`, id)

	var (
		p                              pets.Pet
		images, health, temp, goodWith []byte
		location, wishlist             []byte
		ownerID, ownerName, ownerEmail sql.NullString
		ownerPhone                     sql.NullString
		ownerRating                    sql.NullFloat64
		ownerReviews                   sql.NullInt64
	)
	err := row.Scan(
		&p.ID, &p.OwnerID, &p.Name, &p.Type, &p.Breed, &p.Age, &p.AgeUnit, &p.Gender, &p.Size,
		&p.Color, &p.Description, &images, &health, &temp, &goodWith, &location,
		&p.Status, &p.AdoptionFee, &p.Views, &wishlist, &p.CreatedAt, &p.UpdatedAt,
		&ownerID, &ownerName, &ownerEmail, &ownerPhone, &ownerRating, &ownerReviews,
	)
	if err != nil {
		return pets.Detail{}, classify("pets.getDetail", err)
	}

	decodePetJSON(&p, images, health, temp, goodWith, location, wishlist)

	d := pets.Detail{Pet: p}
	if ownerID.Valid {
		d.Owner = &pets.OwnerSummary{
			ID:            ownerID.String,
			Name:          ownerName.String,
			Email:         ownerEmail.String,
			Phone:         ownerPhone.String,
			AverageRating: ownerRating.Float64,
			TotalReviews:  int(ownerReviews.Int64),
		}
	}
	return d, nil
}

func (r *PetsRepo) FindOne(ctx context.Context, f pets.Filter) (pets.Pet, error) {
	where, args := petWhere(f)
	row := r.db.QueryRowContext(ctx, `
		SELECT `+petCols+` FROM pets `+where+`
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`, args...)

	p, err := scanPet(row)
	if err != nil {
		return pets.Pet{}, classify("pets.findOne", err)
	}
	return p, nil
}

func (r *PetsRepo) List(ctx context.Context, f pets.Filter, page storage.Page) ([]pets.Pet, int, error) {
	page = page.Normalize()
	where, args := petWhere(f)

	total, err := r.Count(ctx, f)
	if err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`
		SELECT `+petCols+` FROM pets %s
		ORDER BY created_at DESC, id DESC
		LIMIT %d OFFSET %d
	`, where, page.Size, page.Offset())

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, classify("pets.list", err)
	}
	defer rows.Close()

	out := make([]pets.Pet, 0)
	for rows.Next() {
		p, err := scanPet(rows)
		if err != nil {
			return nil, 0, classify("pets.list", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, classify("pets.list", err)
	}
	return out, total, nil
}

func (r *PetsRepo) Update(ctx context.Context, id string, p pets.Patch) (pets.Pet, error) {
	if !storage.IsPrimaryID(id) {
		return pets.Pet{}, storage.ErrNotFound
	}

	var set setClause
	if p.Name != nil {
		set.add("name", *p.Name)
	}
	if p.Type != nil {
		set.add("type", *p.Type)
	}
	if p.Breed != nil {
		set.add("breed", *p.Breed)
	}
	if p.Age != nil {
		set.add("age", *p.Age)
	}
	if p.AgeUnit != nil {
		set.add("age_unit", *p.AgeUnit)
	}
	if p.Gender != nil {
		set.add("gender", *p.Gender)
	}
	if p.Size != nil {
		set.add("size", *p.Size)
	}
	if p.Color != nil {
		set.add("color", *p.Color)
	}
	if p.Description != nil {
		set.add("description", *p.Description)
	}
	if p.Images != nil {
		set.add("images", toJSON(*p.Images))
	}
	if p.Health != nil {
		set.add("health", toJSON(*p.Health))
	}
	if p.Temperament != nil {
		set.add("temperament", toJSON(*p.Temperament))
	}
	if p.GoodWith != nil {
		set.add("good_with", toJSON(*p.GoodWith))
	}
	if p.Location != nil {
		set.add("location", toJSON(*p.Location))
	}
	if p.Status != nil {
		set.add("status", *p.Status)
	}
	if p.AdoptionFee != nil {
		set.add("adoption_fee", *p.AdoptionFee)
	}
	if p.Views != nil {
		set.add("views", *p.Views)
	}
	if p.WishlistedBy != nil {
		set.add("wishlisted_by", toJSON(*p.WishlistedBy))
	}
	if len(set.cols) == 0 {
		return r.GetByID(ctx, id)
	}
	set.add("updated_at", r.now())

	query := fmt.Sprintf(`
		UPDATE pets SET %s WHERE id = %s
		RETURNING `+petCols,
		strings.Join(set.cols, ", "), set.next(id))

	row := r.db.QueryRowContext(ctx, query, set.args...)
	updated, err := scanPet(row)
	if err != nil {
		return pets.Pet{}, classify("pets.update", err)
	}
	return updated, nil
}

func (r *PetsRepo) Delete(ctx context.Context, id string) error {
	if !storage.IsPrimaryID(id) {
		return storage.ErrNotFound
	}

	res, err := r.db.ExecContext(ctx, `DELETE FROM pets WHERE id = $1`, id)
	if err != nil {
		return classify("pets.delete", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (r *PetsRepo) Count(ctx context.Context, f pets.Filter) (int, error) {
	where, args := petWhere(f)

	var total int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM pets `+where, args...).Scan(&total)
	if err != nil {
		return 0, classify("pets.count", err)
	}
	return total, nil
}

func scanPet(row rowScanner) (pets.Pet, error) {
	var (
		p                              pets.Pet
		images, health, temp, goodWith []byte
		location, wishlist             []byte
	)
	err := row.Scan(
		&p.ID, &p.OwnerID, &p.Name, &p.Type, &p.Breed, &p.Age, &p.AgeUnit, &p.Gender, &p.Size,
		&p.Color, &p.Description, &images, &health, &temp, &goodWith, &location,
		&p.Status, &p.AdoptionFee, &p.Views, &wishlist, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return pets.Pet{}, err
	}
	decodePetJSON(&p, images, health, temp, goodWith, location, wishlist)
	return p, nil
}

func decodePetJSON(p *pets.Pet, images, health, temp, goodWith, location, wishlist []byte) {
	p.Images = []string{}
	p.Temperament = []string{}
	p.WishlistedBy = []string{}
	fromJSON(images, &p.Images)
	fromJSON(health, &p.Health)
	fromJSON(temp, &p.Temperament)
	fromJSON(goodWith, &p.GoodWith)
	fromJSON(location, &p.Location)
	fromJSON(wishlist, &p.WishlistedBy)
}

func petWhere(f pets.Filter) (string, []any) {
	var set setClause
	conds := make([]string, 0, 8)

	if f.Status != "" {
		conds = append(conds, fmt.Sprintf("status = %s", set.next(f.Status)))
	}
	if f.Type != "" {
		conds = append(conds, fmt.Sprintf("type = %s", set.next(f.Type)))
	}
	if f.Breed != "" {
		conds = append(conds, fmt.Sprintf("breed ILIKE %s", set.next("%"+f.Breed+"%")))
	}
	if f.Size != "" {
		conds = append(conds, fmt.Sprintf("size = %s", set.next(f.Size)))
	}
	if f.Gender != "" {
		conds = append(conds, fmt.Sprintf("gender = %s", set.next(f.Gender)))
	}
	if f.MinAge != nil {
		conds = append(conds, fmt.Sprintf("age >= %s", set.next(*f.MinAge)))
	}
	if f.MaxAge != nil {
		conds = append(conds, fmt.Sprintf("age <= %s", set.next(*f.MaxAge)))
	}
	if f.OwnerID != "" {
		conds = append(conds, fmt.Sprintf("owner_id = %s", set.next(f.OwnerID)))
	}
	if f.WishlistedBy != "" {
		conds = append(conds, fmt.Sprintf("wishlisted_by @> jsonb_build_array(%s::text)", set.next(f.WishlistedBy)))
	}
	if f.Search != "" {
		conds = append(conds, fmt.Sprintf(
			"to_tsvector('english', name || ' ' || breed || ' ' || description) @@ plainto_tsquery('english', %s)",
			set.next(f.Search)))
	}

	if len(conds) == 0 {
		return "", nil
	}
	return "WHERE " + strings.Join(conds, " AND "), set.args
}
