package farms

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"livestock-health/internal/domain/accessgrants"
	"livestock-health/internal/middleware"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service, grantsSvc *accessgrants.Service) {
	r.Route("/farms", func(fr chi.Router) {
		fr.Post("/", createFarmHandler(svc))
		fr.Get("/", listMyFarmsHandler(svc))
		fr.Get("/{farmID}", getFarmHandler(svc, grantsSvc))
	})
}

// createFarmRequest es el cuerpo de la solicitud para registrar una explotación.
type createFarmRequest struct {
	Name        string `json:"name"`
	CountryCode string `json:"country_code"` // ISO-3166 alpha-2
	Notes       string `json:"notes"`
}

// farmResponse representa una explotación devuelta por la API.
type farmResponse struct {
	ID          string    `json:"id"`
	OwnerUserID string    `json:"owner_user_id"`
	Name        string    `json:"name"`
	CountryCode string    `json:"country_code"`
	Notes       string    `json:"notes"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// createFarmHandler godoc
// @Summary Crear explotación
// @Description Registra una explotación ganadera para el usuario autenticado.
// @Tags farms
// @Accept json
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param payload body createFarmRequest true "Datos de la explotación"
// @Success 201 {object} farmResponse
// @Failure 400 {string} string "invalid json / reglas de negocio"
// @Failure 401 {string} string "unauthorized"
// @Router /farms [post]
func createFarmHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req createFarmRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		f, err := svc.Create(r.Context(), claims.UserID, CreateInput{
			Name:        req.Name,
			CountryCode: req.CountryCode,
			Notes:       req.Notes,
		})
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		writeJSON(w, http.StatusCreated, toFarmResponse(f))
	}
}

// listMyFarmsHandler godoc
// @Summary Listar mis explotaciones
// @Tags farms
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Success 200 {array} farmResponse
// @Failure 401 {string} string "unauthorized"
// @Router /farms [get]
func listMyFarmsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		items, err := svc.ListByOwner(r.Context(), claims.UserID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]farmResponse, 0, len(items))
		for _, f := range items {
			out = append(out, toFarmResponse(f))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// getFarmHandler godoc
// @Summary Ver una explotación
// @Description El dueño siempre puede verla. Un delegado necesita un grant activo con scope `farm:read`.
// @Tags farms
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param farmID path string true "ID de la explotación"
// @Success 200 {object} farmResponse
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "farm not found"
// @Router /farms/{farmID} [get]
func getFarmHandler(svc *Service, grantsSvc *accessgrants.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		farmID := chi.URLParam(r, "farmID")
		f, err := svc.GetByID(r.Context(), farmID)
		if err != nil {
			http.Error(w, "farm not found", http.StatusNotFound)
			return
		}

		// Permisos:
		// - Owner: siempre permitido
		// - Delegado: requiere grant activo con ScopeFarmRead
		if f.OwnerUserID != claims.UserID {
			g, err := grantsSvc.GetActiveGrant(r.Context(), farmID, claims.UserID)
			if err != nil || !accessgrants.HasScope(g, accessgrants.ScopeFarmRead) {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}
		}

		writeJSON(w, http.StatusOK, toFarmResponse(f))
	}
}

func toFarmResponse(f Farm) farmResponse {
	return farmResponse{
		ID:          f.ID,
		OwnerUserID: f.OwnerUserID,
		Name:        f.Name,
		CountryCode: f.CountryCode,
		Notes:       f.Notes,
		CreatedAt:   f.CreatedAt,
		UpdatedAt:   f.UpdatedAt,
	}
}

// writeJSON está duplicado intencionalmente en handlers de distintos módulos
// para evitar crear paquetes/helpers compartidos demasiado pronto.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
