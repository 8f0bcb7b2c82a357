package actions

import (
	"encoding/json"
	"net/http"
	"strings"

	"livestock-health/internal/domain/accessgrants"
	"livestock-health/internal/domain/farms"
	"livestock-health/internal/middleware"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, agg *Aggregator, farmsSvc *farms.Service, grantsSvc *accessgrants.Service) {
	r.Get("/farms/{farmID}/actions", getActionsHandler(agg, farmsSvc, grantsSvc))
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

// getActionsHandler godoc
// @Summary Feed de acciones de una explotación
// @Description Ejecuta los cuatro collectors en paralelo y devuelve las obligaciones pendientes ordenadas por prioridad. El summary siempre refleja la explotación completa aunque se filtre por urgency.
// @Tags actions
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param farmID path string true "ID de la explotación"
// @Param urgency query string false "Filtrar por categoría (urgent, this_week, planned, opportunities)"
// @Success 200 {object} Feed
// @Failure 400 {string} string "urgency inválida"
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "farm not found"
// @Router /farms/{farmID}/actions [get]
func getActionsHandler(agg *Aggregator, farmsSvc *farms.Service, grantsSvc *accessgrants.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		farmID := chi.URLParam(r, "farmID")
		if st := authorizeFarm(r, farmsSvc, grantsSvc, farmID, accessgrants.ScopeActionsRead); st != http.StatusOK {
			http.Error(w, http.StatusText(st), st)
			return
		}

		var filter Category
		if v := strings.TrimSpace(r.URL.Query().Get("urgency")); v != "" {
			filter = Category(v)
			if !ValidCategory(filter) {
				http.Error(w, "invalid urgency", http.StatusBadRequest)
				return
			}
		}

		feed, err := agg.Feed(r.Context(), farmID, filter)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, feed)
	}
}

// writeJSON está duplicado intencionalmente en handlers de distintos módulos
// para evitar crear paquetes/helpers compartidos demasiado pronto.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
