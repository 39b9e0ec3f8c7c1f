package discounts

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"pet-adoption-market/internal/domain/pets"
	"pet-adoption-market/internal/middleware"
	"pet-adoption-market/internal/ports/auth"
	"pet-adoption-market/internal/storage"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/discounts", func(dr chi.Router) {
		dr.Get("/active", activeCodesHandler(svc))
		dr.Post("/validate", validateHandler(svc))

		// Admin surface.
		dr.Post("/", createCodeHandler(svc))
		dr.Get("/", listCodesHandler(svc))
		dr.Get("/stats", statsHandler(svc))
		dr.Get("/{codeID}", getCodeHandler(svc))
		dr.Patch("/{codeID}", updateCodeHandler(svc))
		dr.Delete("/{codeID}", deleteCodeHandler(svc))
	})
}

type createCodeRequest struct {
	Code        string `json:"code"`
	Name        string `json:"name"`
	Description string `json:"description"`

	Type  string  `json:"type"`
	Value float64 `json:"value"`

	MinAdoptionFee float64  `json:"min_adoption_fee"`
	MaxDiscount    *float64 `json:"max_discount"`

	ValidFrom  time.Time `json:"valid_from"`
	ValidUntil time.Time `json:"valid_until"`

	UsageLimit *int `json:"usage_limit"`

	ApplicablePetTypes []string `json:"applicable_pet_types"`
	ApplicablePetAges  []string `json:"applicable_pet_ages"`

	FirstTimeAdoptersOnly bool     `json:"first_time_adopters_only"`
	AllowedUserIDs        []string `json:"allowed_user_ids"`
}

type codeResponse struct {
	ID          string `json:"id"`
	Code        string `json:"code"`
	Name        string `json:"name"`
	Description string `json:"description"`

	Type  Type    `json:"type"`
	Value float64 `json:"value"`

	MinAdoptionFee float64  `json:"min_adoption_fee"`
	MaxDiscount    *float64 `json:"max_discount,omitempty"`

	ValidFrom  time.Time `json:"valid_from"`
	ValidUntil time.Time `json:"valid_until"`

	UsageLimit *int `json:"usage_limit,omitempty"`
	UsedCount  int  `json:"used_count"`
	IsActive   bool `json:"is_active"`

	ApplicablePetTypes []pets.Type     `json:"applicable_pet_types"`
	ApplicablePetAges  []pets.AgeGroup `json:"applicable_pet_ages"`

	FirstTimeAdoptersOnly bool     `json:"first_time_adopters_only"`
	AllowedUserIDs        []string `json:"allowed_user_ids,omitempty"`

	CreatedBy string    `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type pageInfoResponse struct {
	CurrentPage int  `json:"current_page"`
	TotalPages  int  `json:"total_pages"`
	Total       int  `json:"total"`
	HasNextPage bool `json:"has_next_page"`
	HasPrevPage bool `json:"has_prev_page"`
}

func createCodeHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := requireAdmin(w, r)
		if !ok {
			return
		}

		var req createCodeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		c, err := svc.Create(r.Context(), id.ID, CreateInput{
			Code:                  req.Code,
			Name:                  req.Name,
			Description:           req.Description,
			Type:                  req.Type,
			Value:                 req.Value,
			MinAdoptionFee:        req.MinAdoptionFee,
			MaxDiscount:           req.MaxDiscount,
			ValidFrom:             req.ValidFrom,
			ValidUntil:            req.ValidUntil,
			UsageLimit:            req.UsageLimit,
			ApplicablePetTypes:    req.ApplicablePetTypes,
			ApplicablePetAges:     req.ApplicablePetAges,
			FirstTimeAdoptersOnly: req.FirstTimeAdoptersOnly,
			AllowedUserIDs:        req.AllowedUserIDs,
		})
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, toCodeResponse(c))
	}
}

type listCodesResponse struct {
	Codes      []codeResponse   `json:"codes"`
	Pagination pageInfoResponse `json:"pagination"`
}

func listCodesHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := requireAdmin(w, r); !ok {
			return
		}

		var f Filter
		if raw := r.URL.Query().Get("is_active"); raw != "" {
			active := raw == "true"
			f.IsActive = &active
		}

		res, err := svc.List(r.Context(), f, pageFrom(r))
		if err != nil {
			writeError(w, err)
			return
		}

		out := make([]codeResponse, 0, len(res.Codes))
		for _, c := range res.Codes {
			out = append(out, toCodeResponse(c))
		}
		writeJSON(w, http.StatusOK, listCodesResponse{
			Codes: out,
			Pagination: pageInfoResponse{
				CurrentPage: res.PageInfo.CurrentPage,
				TotalPages:  res.PageInfo.TotalPages,
				Total:       res.PageInfo.Total,
				HasNextPage: res.PageInfo.HasNextPage,
				HasPrevPage: res.PageInfo.HasPrevPage,
			},
		})
	}
}

func activeCodesHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		codes, err := svc.ActiveCodes(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}

		out := make([]codeResponse, 0, len(codes))
		for _, c := range codes {
			out = append(out, toCodeResponse(c))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func getCodeHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := requireAdmin(w, r); !ok {
			return
		}

		c, err := svc.GetByID(r.Context(), chi.URLParam(r, "codeID"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toCodeResponse(c))
	}
}

type updateCodeRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`

	Value          *float64 `json:"value"`
	MinAdoptionFee *float64 `json:"min_adoption_fee"`
	MaxDiscount    *float64 `json:"max_discount"`

	ValidFrom  *time.Time `json:"valid_from"`
	ValidUntil *time.Time `json:"valid_until"`

	UsageLimit *int  `json:"usage_limit"`
	IsActive   *bool `json:"is_active"`
}

func updateCodeHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := requireAdmin(w, r); !ok {
			return
		}

		var req updateCodeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		c, err := svc.Update(r.Context(), chi.URLParam(r, "codeID"), UpdateInput{
			Name:           req.Name,
			Description:    req.Description,
			Value:          req.Value,
			MinAdoptionFee: req.MinAdoptionFee,
			MaxDiscount:    req.MaxDiscount,
			ValidFrom:      req.ValidFrom,
			ValidUntil:     req.ValidUntil,
			UsageLimit:     req.UsageLimit,
			IsActive:       req.IsActive,
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toCodeResponse(c))
	}
}

func deleteCodeHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := requireAdmin(w, r); !ok {
			return
		}

		if err := svc.Delete(r.Context(), chi.URLParam(r, "codeID")); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

type validateRequest struct {
	Code  string  `json:"code"`
	PetID string  `json:"pet_id"`
	Fee   float64 `json:"fee"`
}

type calculationResponse struct {
	OriginalAmount float64 `json:"original_amount"`
	DiscountAmount float64 `json:"discount_amount"`
	FinalAmount    float64 `json:"final_amount"`
}

type validateResponse struct {
	Valid       bool                `json:"valid"`
	Reason      string              `json:"reason,omitempty"`
	Code        string              `json:"code"`
	Calculation calculationResponse `json:"calculation"`
}

func validateHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := requireIdentity(w, r)
		if !ok {
			return
		}

		var req validateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		v, err := svc.Validate(r.Context(), id.ID, req.Code, req.PetID, req.Fee)
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, validateResponse{
			Valid:  v.Valid,
			Reason: v.Reason,
			Code:   v.Code.Code,
			Calculation: calculationResponse{
				OriginalAmount: v.Calculation.OriginalAmount,
				DiscountAmount: v.Calculation.DiscountAmount,
				FinalAmount:    v.Calculation.FinalAmount,
			},
		})
	}
}

type statsResponse struct {
	Total    int            `json:"total"`
	Active   int            `json:"active"`
	Expired  int            `json:"expired"`
	MostUsed []codeResponse `json:"most_used"`
	Recent   []codeResponse `json:"recent"`
}

func statsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := requireAdmin(w, r); !ok {
			return
		}

		stats, err := svc.Stats(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}

		out := statsResponse{
			Total:    stats.Total,
			Active:   stats.Active,
			Expired:  stats.Expired,
			MostUsed: make([]codeResponse, 0, len(stats.MostUsed)),
			Recent:   make([]codeResponse, 0, len(stats.Recent)),
		}
		for _, c := range stats.MostUsed {
			out.MostUsed = append(out.MostUsed, toCodeResponse(c))
		}
		for _, c := range stats.Recent {
			out.Recent = append(out.Recent, toCodeResponse(c))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func toCodeResponse(c Code) codeResponse {
	return codeResponse{
		ID:                    c.ID,
		Code:                  c.Code,
		Name:                  c.Name,
		Description:           c.Description,
		Type:                  c.Type,
		Value:                 c.Value,
		MinAdoptionFee:        c.MinAdoptionFee,
		MaxDiscount:           c.MaxDiscount,
		ValidFrom:             c.ValidFrom,
		ValidUntil:            c.ValidUntil,
		UsageLimit:            c.UsageLimit,
		UsedCount:             c.UsedCount,
		IsActive:              c.IsActive,
		ApplicablePetTypes:    c.ApplicablePetTypes,
		ApplicablePetAges:     c.ApplicablePetAges,
		FirstTimeAdoptersOnly: c.FirstTimeAdoptersOnly,
		AllowedUserIDs:        c.AllowedUserIDs,
		CreatedBy:             c.CreatedBy,
		CreatedAt:             c.CreatedAt,
		UpdatedAt:             c.UpdatedAt,
	}
}

func requireIdentity(w http.ResponseWriter, r *http.Request) (auth.Identity, bool) {
	id, ok := middleware.CurrentIdentity(r.Context())
	if !ok || strings.TrimSpace(id.ID) == "" {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return auth.Identity{}, false
	}
	return id, true
}

func requireAdmin(w http.ResponseWriter, r *http.Request) (auth.Identity, bool) {
	id, ok := requireIdentity(w, r)
	if !ok {
		return auth.Identity{}, false
	}
	if !id.Admin {
		http.Error(w, "forbidden", http.StatusForbidden)
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
	case errors.Is(err, ErrCodeTaken), errors.Is(err, storage.ErrDuplicate):
		http.Error(w, "discount code already exists", http.StatusConflict)
	case errors.Is(err, storage.ErrNotFound):
		http.Error(w, "discount code not found", http.StatusNotFound)
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
