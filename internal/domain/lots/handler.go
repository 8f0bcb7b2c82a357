package lots

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"livestock-health/internal/domain/accessgrants"
	"livestock-health/internal/domain/farms"
	"livestock-health/internal/middleware"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service, farmsSvc *farms.Service, grantsSvc *accessgrants.Service) {
	r.Route("/farms/{farmID}/lots", func(lr chi.Router) {
		lr.Post("/", createLotHandler(svc, farmsSvc, grantsSvc))
		lr.Get("/", listLotsHandler(svc, farmsSvc, grantsSvc))
		lr.Put("/{lotID}/withdrawal", setWithdrawalHandler(svc, farmsSvc, grantsSvc))
		lr.Post("/{lotID}/complete", completeLotHandler(svc, farmsSvc, grantsSvc))
	})
}

// createLotRequest es el cuerpo para crear un lote.
type createLotRequest struct {
	Name      string `json:"name"`
	StartDate string `json:"start_date"` // RFC3339, opcional (default: ahora)
	EndDate   string `json:"end_date"`   // RFC3339, opcional
}

type setWithdrawalRequest struct {
	Version           int    `json:"version"`             // versión leída, para CAS
	WithdrawalEndDate string `json:"withdrawal_end_date"` // RFC3339
}

type completeLotRequest struct {
	Version int `json:"version"` // versión leída, para CAS
}

// lotResponse representa un lote devuelto por la API.
type lotResponse struct {
	ID                string     `json:"id"`
	FarmID            string     `json:"farm_id"`
	Name              string     `json:"name"`
	StartDate         time.Time  `json:"start_date"`
	EndDate           *time.Time `json:"end_date,omitempty"`
	WithdrawalEndDate *time.Time `json:"withdrawal_end_date,omitempty"`
	Completed         bool       `json:"completed"`
	Version           int        `json:"version"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

func authorizeFarm(r *http.Request, farmsSvc *farms.Service, grantsSvc *accessgrants.Service, farmID string, scope accessgrants.Scope) int {
	claims, ok := middleware.GetClaims(r.Context())
	if !ok || strings.TrimSpace(claims.UserID) == "" {
		return http.StatusUnauthorized
	}

	f, err := farmsSvc.GetByID(r.Context(), farmID)
	if err != nil {
		return http.StatusNotFound
	}

	if f.OwnerUserID != claims.UserID {
		g, err := grantsSvc.GetActiveGrant(r.Context(), farmID, claims.UserID)
		if err != nil || !accessgrants.HasScope(g, scope) {
			return http.StatusForbidden
		}
	}
	return http.StatusOK
}

// createLotHandler godoc
// @Summary Crear lote
// @Tags lots
// @Accept json
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param farmID path string true "ID de la explotación"
// @Param payload body createLotRequest true "Datos del lote"
// @Success 201 {object} lotResponse
// @Failure 400 {string} string "invalid json / fechas inválidas"
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "farm not found"
// @Router /farms/{farmID}/lots [post]
func createLotHandler(svc *Service, farmsSvc *farms.Service, grantsSvc *accessgrants.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		farmID := chi.URLParam(r, "farmID")
		if st := authorizeFarm(r, farmsSvc, grantsSvc, farmID, accessgrants.ScopeLotsManage); st != http.StatusOK {
			http.Error(w, http.StatusText(st), st)
			return
		}

		var req createLotRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		in := CreateInput{Name: req.Name}
		if strings.TrimSpace(req.StartDate) != "" {
			t, err := time.Parse(time.RFC3339, req.StartDate)
			if err != nil {
				http.Error(w, "start_date must be RFC3339", http.StatusBadRequest)
				return
			}
			in.StartDate = t
		}
		if strings.TrimSpace(req.EndDate) != "" {
			t, err := time.Parse(time.RFC3339, req.EndDate)
			if err != nil {
				http.Error(w, "end_date must be RFC3339", http.StatusBadRequest)
				return
			}
			in.EndDate = &t
		}

		l, err := svc.Create(r.Context(), farmID, in)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		writeJSON(w, http.StatusCreated, toLotResponse(l))
	}
}

// listLotsHandler godoc
// @Summary Listar lotes de una explotación
// @Tags lots
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param farmID path string true "ID de la explotación"
// @Success 200 {array} lotResponse
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "farm not found"
// @Router /farms/{farmID}/lots [get]
func listLotsHandler(svc *Service, farmsSvc *farms.Service, grantsSvc *accessgrants.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		farmID := chi.URLParam(r, "farmID")
		if st := authorizeFarm(r, farmsSvc, grantsSvc, farmID, accessgrants.ScopeFarmRead); st != http.StatusOK {
			http.Error(w, http.StatusText(st), st)
			return
		}

		items, err := svc.ListByFarm(r.Context(), farmID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]lotResponse, 0, len(items))
		for _, l := range items {
			out = append(out, toLotResponse(l))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// setWithdrawalHandler godoc
// @Summary Fijar ventana de supresión del lote
// @Description Nunca acorta una ventana vigente: si la nueva fecha es anterior, se conserva la existente.
// @Tags lots
// @Accept json
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param farmID path string true "ID de la explotación"
// @Param lotID path string true "ID del lote"
// @Param payload body setWithdrawalRequest true "Fecha RFC3339 + versión leída"
// @Success 200 {object} lotResponse
// @Failure 400 {string} string "fecha inválida"
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "lot not found"
// @Failure 409 {string} string "version conflict"
// @Router /farms/{farmID}/lots/{lotID}/withdrawal [put]
func setWithdrawalHandler(svc *Service, farmsSvc *farms.Service, grantsSvc *accessgrants.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		farmID := chi.URLParam(r, "farmID")
		if st := authorizeFarm(r, farmsSvc, grantsSvc, farmID, accessgrants.ScopeLotsManage); st != http.StatusOK {
			http.Error(w, http.StatusText(st), st)
			return
		}

		l, err := svc.GetByID(r.Context(), chi.URLParam(r, "lotID"))
		if err != nil || l.FarmID != farmID {
			http.Error(w, "lot not found", http.StatusNotFound)
			return
		}

		var req setWithdrawalRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		end, err := time.Parse(time.RFC3339, req.WithdrawalEndDate)
		if err != nil {
			http.Error(w, "withdrawal_end_date must be RFC3339", http.StatusBadRequest)
			return
		}

		updated, err := svc.SetWithdrawalEnd(r.Context(), l.ID, req.Version, end)
		if err != nil {
			switch {
			case errors.Is(err, ErrVersionConflict):
				http.Error(w, err.Error(), http.StatusConflict)
			case errors.Is(err, ErrInvalidInput):
				http.Error(w, err.Error(), http.StatusBadRequest)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		writeJSON(w, http.StatusOK, toLotResponse(updated))
	}
}

// completeLotHandler godoc
// @Summary Completar lote
// @Description Cierra el lote y lo saca de las alertas de supresión. Idempotente.
// @Tags lots
// @Accept json
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param farmID path string true "ID de la explotación"
// @Param lotID path string true "ID del lote"
// @Param payload body completeLotRequest true "Versión leída"
// @Success 200 {object} lotResponse
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "lot not found"
// @Failure 409 {string} string "version conflict"
// @Router /farms/{farmID}/lots/{lotID}/complete [post]
func completeLotHandler(svc *Service, farmsSvc *farms.Service, grantsSvc *accessgrants.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		farmID := chi.URLParam(r, "farmID")
		if st := authorizeFarm(r, farmsSvc, grantsSvc, farmID, accessgrants.ScopeLotsManage); st != http.StatusOK {
			http.Error(w, http.StatusText(st), st)
			return
		}

		l, err := svc.GetByID(r.Context(), chi.URLParam(r, "lotID"))
		if err != nil || l.FarmID != farmID {
			http.Error(w, "lot not found", http.StatusNotFound)
			return
		}

		var req completeLotRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		updated, err := svc.Complete(r.Context(), l.ID, req.Version)
		if err != nil {
			switch {
			case errors.Is(err, ErrVersionConflict):
				http.Error(w, err.Error(), http.StatusConflict)
			case errors.Is(err, ErrInvalidInput):
				http.Error(w, err.Error(), http.StatusBadRequest)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		writeJSON(w, http.StatusOK, toLotResponse(updated))
	}
}

func toLotResponse(l Lot) lotResponse {
	return lotResponse{
		ID:                l.ID,
		FarmID:            l.FarmID,
		Name:              l.Name,
		StartDate:         l.StartDate,
		EndDate:           l.EndDate,
		WithdrawalEndDate: l.WithdrawalEndDate,
		Completed:         l.Completed,
		Version:           l.Version,
		CreatedAt:         l.CreatedAt,
		UpdatedAt:         l.UpdatedAt,
	}
}

// writeJSON está duplicado intencionalmente en handlers de distintos módulos
// para evitar crear paquetes/helpers compartidos demasiado pronto.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
