package users

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
	r.Post("/auth/register", registerHandler(svc))

	r.Route("/me", func(mr chi.Router) {
		mr.Get("/", profileHandler(svc))
		mr.Patch("/", updateProfileHandler(svc))
	})

	r.Route("/users", func(ur chi.Router) {
		ur.Get("/", listUsersHandler(svc)) // admin only
		ur.Get("/{userID}", getUserHandler(svc))
		ur.Post("/{userID}/reviews", recordReviewHandler(svc))
	})
}

type registerRequest struct {
	Name           string `json:"name"`
	Email          string `json:"email"`
	CredentialHash string `json:"credential_hash"`
	Phone          string `json:"phone"`
}

type userResponse struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	Phone         string    `json:"phone"`
	IsAdmin       bool      `json:"is_admin"`
	AverageRating float64   `json:"average_rating"`
	TotalReviews  int       `json:"total_reviews"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type pageInfoResponse struct {
	CurrentPage int  `json:"current_page"`
	TotalPages  int  `json:"total_pages"`
	Total       int  `json:"total"`
	HasNextPage bool `json:"has_next_page"`
	HasPrevPage bool `json:"has_prev_page"`
}

func registerHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req registerRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		u, err := svc.Register(r.Context(), RegisterInput{
			Name:           req.Name,
			Email:          req.Email,
			CredentialHash: req.CredentialHash,
			Phone:          req.Phone,
		})
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, toUserResponse(u))
	}
}

func profileHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := requireIdentity(w, r)
		if !ok {
			return
		}

		u, err := svc.Profile(r.Context(), id.ID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toUserResponse(u))
	}
}

type updateProfileRequest struct {
	Name           *string `json:"name"`
	Phone          *string `json:"phone"`
	CredentialHash *string `json:"credential_hash"`
}

func updateProfileHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := requireIdentity(w, r)
		if !ok {
			return
		}

		var req updateProfileRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		u, err := svc.UpdateProfile(r.Context(), id.ID, UpdateProfileInput{
			Name:           req.Name,
			Phone:          req.Phone,
			CredentialHash: req.CredentialHash,
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toUserResponse(u))
	}
}

func getUserHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, err := svc.Profile(r.Context(), chi.URLParam(r, "userID"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toUserResponse(u))
	}
}

type recordReviewRequest struct {
	Score float64 `json:"score"`
}

func recordReviewHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := requireIdentity(w, r); !ok {
			return
		}

		var req recordReviewRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		u, err := svc.RecordReview(r.Context(), chi.URLParam(r, "userID"), req.Score)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toUserResponse(u))
	}
}

type listUsersResponse struct {
	Users      []userResponse   `json:"users"`
	Pagination pageInfoResponse `json:"pagination"`
}

func listUsersHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := requireIdentity(w, r)
		if !ok {
			return
		}
		if !id.Admin {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		f := Filter{Search: strings.TrimSpace(r.URL.Query().Get("search"))}
		res, err := svc.ListAll(r.Context(), f, pageFrom(r))
		if err != nil {
			writeError(w, err)
			return
		}

		out := make([]userResponse, 0, len(res.Users))
		for _, u := range res.Users {
			out = append(out, toUserResponse(u))
		}
		writeJSON(w, http.StatusOK, listUsersResponse{
			Users:      out,
			Pagination: toPageInfo(res.PageInfo),
		})
	}
}

func toUserResponse(u User) userResponse {
	return userResponse{
		ID:            u.ID,
		Name:          u.Name,
		Email:         u.Email,
		Phone:         u.Phone,
		IsAdmin:       u.IsAdmin,
		AverageRating: u.AverageRating,
		TotalReviews:  u.TotalReviews,
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
	}
}

func toPageInfo(p storage.PageInfo) pageInfoResponse {
	return pageInfoResponse{
		CurrentPage: p.CurrentPage,
		TotalPages:  p.TotalPages,
		Total:       p.Total,
		HasNextPage: p.HasNextPage,
		HasPrevPage: p.HasPrevPage,
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
	case errors.Is(err, ErrEmailTaken), errors.Is(err, storage.ErrDuplicate):
		http.Error(w, "email already registered", http.StatusConflict)
	case errors.Is(err, ErrForbidden):
		http.Error(w, "forbidden", http.StatusForbidden)
	case errors.Is(err, storage.ErrNotFound):
		http.Error(w, "user not found", http.StatusNotFound)
	case storage.IsValidation(err):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

// writeJSON is duplicated across module handlers on purpose; a shared
// helper package is not worth it yet.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
