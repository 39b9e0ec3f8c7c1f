package pets

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"pet-adoption-market/internal/middleware"
	"pet-adoption-market/internal/ports/auth"
	"pet-adoption-market/internal/storage"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/pets", func(pr chi.Router) {
		pr.Post("/", createPetHandler(svc))
		pr.Get("/", listPetsHandler(svc))
		pr.Get("/{petID}", getPetHandler(svc))
		pr.Patch("/{petID}", updatePetHandler(svc))
		pr.Patch("/{petID}/status", updateStatusHandler(svc))
		pr.Delete("/{petID}", deletePetHandler(svc))
		pr.Post("/{petID}/wishlist", toggleWishlistHandler(svc))
	})

	r.Get("/me/wishlist", wishlistHandler(svc))
}

type healthStatusBody struct {
	Vaccinated              bool   `json:"vaccinated"`
	SpayedNeutered          bool   `json:"spayed_neutered"`
	Microchipped            bool   `json:"microchipped"`
	SpecialNeeds            bool   `json:"special_needs"`
	SpecialNeedsDescription string `json:"special_needs_description"`
}

type goodWithBody struct {
	Children bool `json:"children"`
	Dogs     bool `json:"dogs"`
	Cats     bool `json:"cats"`
}

type locationBody struct {
	City    string `json:"city"`
	State   string `json:"state"`
	ZipCode string `json:"zip_code"`
}

type createPetRequest struct {
	Name        string           `json:"name"`
	Type        string           `json:"type"`
	Breed       string           `json:"breed"`
	Age         int              `json:"age"`
	AgeUnit     string           `json:"age_unit"`
	Gender      string           `json:"gender"`
	Size        string           `json:"size"`
	Color       string           `json:"color"`
	Description string           `json:"description"`
	Images      []string         `json:"images"`
	Health      healthStatusBody `json:"health"`
	Temperament []string         `json:"temperament"`
	GoodWith    goodWithBody     `json:"good_with"`
	Location    locationBody     `json:"location"`
	AdoptionFee float64          `json:"adoption_fee"`
}

type ownerResponse struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Email         string  `json:"email"`
	Phone         string  `json:"phone"`
	AverageRating float64 `json:"average_rating"`
	TotalReviews  int     `json:"total_reviews"`
}

type petResponse struct {
	ID           string           `json:"id"`
	OwnerID      string           `json:"owner_id"`
	Name         string           `json:"name"`
	Type         Type             `json:"type"`
	Breed        string           `json:"breed"`
	Age          int              `json:"age"`
	AgeUnit      AgeUnit          `json:"age_unit"`
	FormattedAge string           `json:"formatted_age"`
	AgeGroup     AgeGroup         `json:"age_group"`
	Gender       Gender           `json:"gender"`
	Size         Size             `json:"size"`
	Color        string           `json:"color"`
	Description  string           `json:"description"`
	Images       []string         `json:"images"`
	Health       healthStatusBody `json:"health"`
	Temperament  []string         `json:"temperament"`
	GoodWith     goodWithBody     `json:"good_with"`
	Location     locationBody     `json:"location"`
	Status       Status           `json:"status"`
	AdoptionFee  float64          `json:"adoption_fee"`
	Views        int              `json:"views"`
	Wishlisted   int              `json:"wishlisted"`
	Owner        *ownerResponse   `json:"owner,omitempty"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

type pageInfoResponse struct {
	CurrentPage int  `json:"current_page"`
	TotalPages  int  `json:"total_pages"`
	Total       int  `json:"total"`
	HasNextPage bool `json:"has_next_page"`
	HasPrevPage bool `json:"has_prev_page"`
}

type listPetsResponse struct {
	Pets       []petResponse    `json:"pets"`
	Pagination pageInfoResponse `json:"pagination"`
}

func createPetHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := requireIdentity(w, r)
		if !ok {
			return
		}

		var req createPetRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		p, err := svc.Create(r.Context(), id.ID, CreateInput{
			Name:        req.Name,
			Type:        req.Type,
			Breed:       req.Breed,
			Age:         req.Age,
			AgeUnit:     req.AgeUnit,
			Gender:      req.Gender,
			Size:        req.Size,
			Color:       req.Color,
			Description: req.Description,
			Images:      req.Images,
			Health:      toHealthStatus(req.Health),
			Temperament: req.Temperament,
			GoodWith:    GoodWith(req.GoodWith),
			Location:    Location(req.Location),
			AdoptionFee: req.AdoptionFee,
		})
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, toPetResponse(p, nil))
	}
}

func listPetsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		f := Filter{
			Status:  Status(q.Get("status")),
			Type:    Type(q.Get("type")),
			Breed:   strings.TrimSpace(q.Get("breed")),
			Size:    Size(q.Get("size")),
			Gender:  Gender(q.Get("gender")),
			OwnerID: strings.TrimSpace(q.Get("owner_id")),
			Search:  strings.TrimSpace(q.Get("search")),
		}
		if v, err := strconv.Atoi(q.Get("min_age")); err == nil {
			f.MinAge = &v
		}
		if v, err := strconv.Atoi(q.Get("max_age")); err == nil {
			f.MaxAge = &v
		}

		res, err := svc.List(r.Context(), f, pageFrom(r))
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toListResponse(res))
	}
}

func getPetHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		d, err := svc.Get(r.Context(), chi.URLParam(r, "petID"))
		if err != nil {
			writeError(w, err)
			return
		}

		var owner *ownerResponse
		if d.Owner != nil {
			owner = &ownerResponse{
				ID:            d.Owner.ID,
				Name:          d.Owner.Name,
				Email:         d.Owner.Email,
				Phone:         d.Owner.Phone,
				AverageRating: d.Owner.AverageRating,
				TotalReviews:  d.Owner.TotalReviews,
			}
		}
		writeJSON(w, http.StatusOK, toPetResponse(d.Pet, owner))
	}
}

type updatePetRequest struct {
	Name        *string           `json:"name"`
	Breed       *string           `json:"breed"`
	Age         *int              `json:"age"`
	AgeUnit     *string           `json:"age_unit"`
	Gender      *string           `json:"gender"`
	Size        *string           `json:"size"`
	Color       *string           `json:"color"`
	Description *string           `json:"description"`
	Images      *[]string         `json:"images"`
	Health      *healthStatusBody `json:"health"`
	Temperament *[]string         `json:"temperament"`
	GoodWith    *goodWithBody     `json:"good_with"`
	Location    *locationBody     `json:"location"`
	AdoptionFee *float64          `json:"adoption_fee"`
}

func updatePetHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := requireIdentity(w, r)
		if !ok {
			return
		}

		var req updatePetRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		in := UpdateInput{
			Name:        req.Name,
			Breed:       req.Breed,
			Age:         req.Age,
			AgeUnit:     req.AgeUnit,
			Gender:      req.Gender,
			Size:        req.Size,
			Color:       req.Color,
			Description: req.Description,
			Images:      req.Images,
			Temperament: req.Temperament,
			AdoptionFee: req.AdoptionFee,
		}
		if req.Health != nil {
			h := toHealthStatus(*req.Health)
			in.Health = &h
		}
		if req.GoodWith != nil {
			g := GoodWith(*req.GoodWith)
			in.GoodWith = &g
		}
		if req.Location != nil {
			l := Location(*req.Location)
			in.Location = &l
		}

		p, err := svc.Update(r.Context(), actorFrom(id), chi.URLParam(r, "petID"), in)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toPetResponse(p, nil))
	}
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

func updateStatusHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := requireIdentity(w, r)
		if !ok {
			return
		}

		var req updateStatusRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		p, err := svc.UpdateStatus(r.Context(), actorFrom(id), chi.URLParam(r, "petID"), Status(req.Status))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toPetResponse(p, nil))
	}
}

func deletePetHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := requireIdentity(w, r)
		if !ok {
			return
		}

		if err := svc.Delete(r.Context(), actorFrom(id), chi.URLParam(r, "petID")); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

type wishlistToggleResponse struct {
	Pet        petResponse `json:"pet"`
	Wishlisted bool        `json:"wishlisted"`
}

func toggleWishlistHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := requireIdentity(w, r)
		if !ok {
			return
		}

		p, wishlisted, err := svc.ToggleWishlist(r.Context(), id.ID, chi.URLParam(r, "petID"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, wishlistToggleResponse{
			Pet:        toPetResponse(p, nil),
			Wishlisted: wishlisted,
		})
	}
}

func wishlistHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := requireIdentity(w, r)
		if !ok {
			return
		}

		res, err := svc.Wishlist(r.Context(), id.ID, pageFrom(r))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toListResponse(res))
	}
}

func toHealthStatus(h healthStatusBody) HealthStatus {
	return HealthStatus{
		Vaccinated:              h.Vaccinated,
		SpayedNeutered:          h.SpayedNeutered,
		Microchipped:            h.Microchipped,
		SpecialNeeds:            h.SpecialNeeds,
		SpecialNeedsDescription: h.SpecialNeedsDescription,
	}
}

func toPetResponse(p Pet, owner *ownerResponse) petResponse {
	return petResponse{
		ID:           p.ID,
		OwnerID:      p.OwnerID,
		Name:         p.Name,
		Type:         p.Type,
		Breed:        p.Breed,
		Age:          p.Age,
		AgeUnit:      p.AgeUnit,
		FormattedAge: p.FormattedAge(),
		AgeGroup:     p.AgeGroup(),
		Gender:       p.Gender,
		Size:         p.Size,
		Color:        p.Color,
		Description:  p.Description,
		Images:       p.Images,
		Health: healthStatusBody{
			Vaccinated:              p.Health.Vaccinated,
			SpayedNeutered:          p.Health.SpayedNeutered,
			Microchipped:            p.Health.Microchipped,
			SpecialNeeds:            p.Health.SpecialNeeds,
			SpecialNeedsDescription: p.Health.SpecialNeedsDescription,
		},
		Temperament: p.Temperament,
		GoodWith:    goodWithBody(p.GoodWith),
		Location:    locationBody(p.Location),
		Status:      p.Status,
		AdoptionFee: p.AdoptionFee,
		Views:       p.Views,
		Wishlisted:  len(p.WishlistedBy),
		Owner:       owner,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func toListResponse(res ListResult) listPetsResponse {
	out := make([]petResponse, 0, len(res.Pets))
	for _, p := range res.Pets {
		out = append(out, toPetResponse(p, nil))
	}
	return listPetsResponse{
		Pets: out,
		Pagination: pageInfoResponse{
			CurrentPage: res.PageInfo.CurrentPage,
			TotalPages:  res.PageInfo.TotalPages,
			Total:       res.PageInfo.Total,
			HasNextPage: res.PageInfo.HasNextPage,
			HasPrevPage: res.PageInfo.HasPrevPage,
		},
	}
}

func actorFrom(id auth.Identity) Actor {
	return Actor{UserID: id.ID, Admin: id.Admin}
}

func requireIdentity(w http.ResponseWriter, r *http.Request) (auth.Identity, bool) {
	id, ok := middleware.CurrentIdentity(r.Context())
	if !ok || strings.TrimSpace(id.ID) == "" {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return auth.Identity{}, false
	}
	return id, true
}

func pageFrom(r *http.Request) storage.Page {
	q := r.URL.Query()
	number, _ := strconv.Atoi(q.Get("page"))
	size, _ := strconv.Atoi(q.Get("limit"))
	return storage.Page{Number: number, Size: size}
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrForbidden):
		http.Error(w, "forbidden", http.StatusForbidden)
	case errors.Is(err, storage.ErrNotFound):
		http.Error(w, "pet not found", http.StatusNotFound)
	case storage.IsValidation(err):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
