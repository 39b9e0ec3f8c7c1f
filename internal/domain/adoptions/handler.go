package adoptions

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
	r.Route("/adoptions", func(ar chi.Router) {
		ar.Post("/", applyHandler(svc))
		ar.Get("/me", listMineHandler(svc))
		ar.Get("/{applicationID}", getApplicationHandler(svc))
		ar.Patch("/{applicationID}/review", reviewHandler(svc))
	})

	r.Get("/pets/{petID}/applications", listForPetHandler(svc))
}

type pickupLocationBody struct {
	Address string `json:"address"`
	City    string `json:"city"`
	State   string `json:"state"`
	ZipCode string `json:"zip_code"`
}

type pickupBody struct {
	Method        string             `json:"method"`
	Location      pickupLocationBody `json:"location"`
	ScheduledDate *time.Time         `json:"scheduled_date"`
	Notes         string             `json:"notes"`
}

type detailsBody struct {
	Experience        string `json:"experience"`
	LivingSituation   string `json:"living_situation"`
	OtherPets         string `json:"other_pets"`
	Children          string `json:"children"`
	WorkSchedule      string `json:"work_schedule"`
	ReasonForAdoption string `json:"reason_for_adoption"`
}

type applyRequest struct {
	PetID        string      `json:"pet_id"`
	Pickup       pickupBody  `json:"pickup"`
	Details      detailsBody `json:"details"`
	DiscountCode string      `json:"discount_code"`
}

type feeResponse struct {
	OriginalAmount float64 `json:"original_amount"`
	DiscountAmount float64 `json:"discount_amount"`
	FinalAmount    float64 `json:"final_amount"`
	DiscountCode   string  `json:"discount_code,omitempty"`
}

type applicationResponse struct {
	ID     string `json:"id"`
	UserID string `json:"user_id"`
	PetID  string `json:"pet_id"`

	Status  Status      `json:"status"`
	Fee     feeResponse `json:"fee"`
	Pickup  pickupBody  `json:"pickup"`
	Details detailsBody `json:"details"`

	AdminNotes string     `json:"admin_notes,omitempty"`
	ReviewedBy string     `json:"reviewed_by,omitempty"`
	ReviewedAt *time.Time `json:"reviewed_at,omitempty"`

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

type listResponse struct {
	Applications []applicationResponse `json:"applications"`
	Pagination   pageInfoResponse      `json:"pagination"`
}

func applyHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := requireIdentity(w, r)
		if !ok {
			return
		}

		var req applyRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		a, err := svc.Apply(r.Context(), id.ID, ApplyInput{
			PetID: req.PetID,
			Pickup: PickupOptions{
				Method:        PickupMethod(req.Pickup.Method),
				Location:      PickupLocation(req.Pickup.Location),
				ScheduledDate: req.Pickup.ScheduledDate,
				Notes:         req.Pickup.Notes,
			},
			Details:      Details(req.Details),
			DiscountCode: req.DiscountCode,
		})
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, toApplicationResponse(a))
	}
}

func getApplicationHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := requireIdentity(w, r)
		if !ok {
			return
		}

		a, err := svc.Get(r.Context(), actorFrom(id), chi.URLParam(r, "applicationID"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toApplicationResponse(a))
	}
}

func listMineHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := requireIdentity(w, r)
		if !ok {
			return
		}

		status := Status(strings.TrimSpace(r.URL.Query().Get("status")))
		res, err := svc.ListForUser(r.Context(), id.ID, status, pageFrom(r))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toListResponse(res))
	}
}

func listForPetHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := requireIdentity(w, r)
		if !ok {
			return
		}

		res, err := svc.ListForPet(r.Context(), actorFrom(id), chi.URLParam(r, "petID"), pageFrom(r))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toListResponse(res))
	}
}

type reviewRequest struct {
	Status     string `json:"status"`
	AdminNotes string `json:"admin_notes"`
}

func reviewHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := requireIdentity(w, r)
		if !ok {
			return
		}

		var req reviewRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		a, err := svc.Review(r.Context(), actorFrom(id), chi.URLParam(r, "applicationID"), ReviewInput{
			Status:     Status(req.Status),
			AdminNotes: req.AdminNotes,
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toApplicationResponse(a))
	}
}

func toApplicationResponse(a Application) applicationResponse {
	return applicationResponse{
		ID:     a.ID,
		UserID: a.UserID,
		PetID:  a.PetID,
		Status: a.Status,
		Fee:    feeResponse(a.Fee),
		Pickup: pickupBody{
			Method:        string(a.Pickup.Method),
			Location:      pickupLocationBody(a.Pickup.Location),
			ScheduledDate: a.Pickup.ScheduledDate,
			Notes:         a.Pickup.Notes,
		},
		Details:    detailsBody(a.Details),
		AdminNotes: a.AdminNotes,
		ReviewedBy: a.ReviewedBy,
		ReviewedAt: a.ReviewedAt,
		CreatedAt:  a.CreatedAt,
		UpdatedAt:  a.UpdatedAt,
	}
}

func toListResponse(res ListResult) listResponse {
	out := make([]applicationResponse, 0, len(res.Applications))
	for _, a := range res.Applications {
		out = append(out, toApplicationResponse(a))
	}
	return listResponse{
		Applications: out,
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
	case errors.Is(err, ErrDuplicateApplication):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, ErrBadState):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, ErrForbidden):
		http.Error(w, "forbidden", http.StatusForbidden)
	case errors.Is(err, storage.ErrNotFound):
		http.Error(w, "not found", http.StatusNotFound)
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
