package indications

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"livestock-health/internal/domain/catalog"
	"livestock-health/internal/middleware"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/products/{productID}/indications", func(ir chi.Router) {
		ir.Post("/", createIndicationHandler(svc))
		ir.Get("/", listIndicationsHandler(svc))
	})

	r.Route("/indications", func(ir chi.Router) {
		ir.Get("/resolve", resolveIndicationHandler(svc))
		ir.Patch("/{indicationID}", updateIndicationHandler(svc))
		ir.Delete("/{indicationID}", deleteIndicationHandler(svc))
	})
}

// createIndicationRequest es el cuerpo para dar de alta una regla regulatoria.
type createIndicationRequest struct {
	SpeciesID     string `json:"species_id"`
	RouteID       string `json:"route_id"`
	CountryCode   string `json:"country_code"`    // opcional
	AgeCategoryID string `json:"age_category_id"` // opcional

	DoseMin  float64 `json:"dose_min"`
	DoseMax  float64 `json:"dose_max"`
	DoseUnit string  `json:"dose_unit"`

	ProtocolDays       int `json:"protocol_days"`
	WithdrawalMeatDays int `json:"withdrawal_meat_days"`
	WithdrawalMilkDays int `json:"withdrawal_milk_days"`
}

type updateIndicationRequest struct {
	Version int `json:"version"` // versión leída, para CAS

	DoseMin  float64 `json:"dose_min"`
	DoseMax  float64 `json:"dose_max"`
	DoseUnit string  `json:"dose_unit"`

	ProtocolDays       int `json:"protocol_days"`
	WithdrawalMeatDays int `json:"withdrawal_meat_days"`
	WithdrawalMilkDays int `json:"withdrawal_milk_days"`
}

// indicationResponse representa una regla regulatoria devuelta por la API.
type indicationResponse struct {
	ID            string `json:"id"`
	ProductID     string `json:"product_id"`
	SpeciesID     string `json:"species_id"`
	RouteID       string `json:"route_id"`
	CountryCode   string `json:"country_code,omitempty"`
	AgeCategoryID string `json:"age_category_id,omitempty"`

	DoseMin  float64 `json:"dose_min"`
	DoseMax  float64 `json:"dose_max"`
	DoseUnit string  `json:"dose_unit"`

	ProtocolDays       int `json:"protocol_days"`
	WithdrawalMeatDays int `json:"withdrawal_meat_days"`
	WithdrawalMilkDays int `json:"withdrawal_milk_days"`

	Status  Status `json:"status"`
	Version int    `json:"version"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// resolveResponse es el resultado de la cascada para un contexto dado.
type resolveResponse struct {
	Found      bool                `json:"found"`
	Tier       string              `json:"tier,omitempty"`
	Fallback   bool                `json:"fallback,omitempty"`
	Indication *indicationResponse `json:"indication,omitempty"`
}

// createIndicationHandler godoc
// @Summary Crear indicación terapéutica
// @Description Alta de regla regulatoria para un producto. country_code y age_category_id son opcionales (vacío = universal).
// @Tags indications
// @Accept json
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param productID path string true "ID del producto"
// @Param payload body createIndicationRequest true "Datos de la indicación"
// @Success 201 {object} indicationResponse
// @Failure 400 {string} string "invalid json / reglas de negocio"
// @Failure 401 {string} string "unauthorized"
// @Failure 409 {string} string "indicación duplicada"
// @Router /products/{productID}/indications [post]
func createIndicationHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req createIndicationRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		if !catalog.ValidCountry(req.CountryCode) {
			http.Error(w, "unsupported country code", http.StatusBadRequest)
			return
		}

		ind, err := svc.Create(r.Context(), CreateInput{
			ProductID:          chi.URLParam(r, "productID"),
			SpeciesID:          req.SpeciesID,
			RouteID:            req.RouteID,
			CountryCode:        req.CountryCode,
			AgeCategoryID:      req.AgeCategoryID,
			DoseMin:            req.DoseMin,
			DoseMax:            req.DoseMax,
			DoseUnit:           req.DoseUnit,
			ProtocolDays:       req.ProtocolDays,
			WithdrawalMeatDays: req.WithdrawalMeatDays,
			WithdrawalMilkDays: req.WithdrawalMilkDays,
		})
		if err != nil {
			switch {
			case errors.Is(err, ErrDuplicate):
				http.Error(w, err.Error(), http.StatusConflict)
			case errors.Is(err, ErrInvalidInput):
				http.Error(w, err.Error(), http.StatusBadRequest)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		writeJSON(w, http.StatusCreated, toIndicationResponse(ind))
	}
}

// listIndicationsHandler godoc
// @Summary Listar indicaciones de un producto
// @Tags indications
// @Produce json
// @Param productID path string true "ID del producto"
// @Success 200 {array} indicationResponse
// @Router /products/{productID}/indications [get]
func listIndicationsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.ListByProduct(r.Context(), chi.URLParam(r, "productID"))
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]indicationResponse, 0, len(items))
		for _, ind := range items {
			out = append(out, toIndicationResponse(ind))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// resolveIndicationHandler godoc
// @Summary Resolver indicación aplicable
// @Description Aplica la cascada de especificidad (país+edad > país > edad > universal) y devuelve la indicación aplicable. found=false significa "sin guía regulatoria" (no es error): el caller debe pedir dosis manual.
// @Tags indications
// @Produce json
// @Param product query string true "ID del producto"
// @Param species query string true "ID de la especie"
// @Param route query string true "ID de la vía de administración"
// @Param country query string false "Código de país ISO-3166 alpha-2"
// @Param age_category query string false "ID de categoría de edad"
// @Success 200 {object} resolveResponse
// @Failure 400 {string} string "faltan parámetros"
// @Router /indications/resolve [get]
func resolveIndicationHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := ResolveQuery{
			ProductID:     strings.TrimSpace(r.URL.Query().Get("product")),
			SpeciesID:     strings.TrimSpace(r.URL.Query().Get("species")),
			RouteID:       strings.TrimSpace(r.URL.Query().Get("route")),
			CountryCode:   strings.TrimSpace(r.URL.Query().Get("country")),
			AgeCategoryID: strings.TrimSpace(r.URL.Query().Get("age_category")),
		}

		res, found, err := svc.Resolve(r.Context(), q)
		if err != nil {
			if errors.Is(err, ErrInvalidInput) {
				http.Error(w, "product, species and route are required", http.StatusBadRequest)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		resp := resolveResponse{Found: found}
		if found {
			ind := toIndicationResponse(res.Indication)
			resp.Tier = res.Tier
			resp.Fallback = res.Fallback
			resp.Indication = &ind
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

// updateIndicationHandler godoc
// @Summary Actualizar indicación (CAS por versión)
// @Tags indications
// @Accept json
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param indicationID path string true "ID de la indicación"
// @Param payload body updateIndicationRequest true "Campos + versión leída"
// @Success 200 {object} indicationResponse
// @Failure 400 {string} string "invalid json / reglas de negocio"
// @Failure 401 {string} string "unauthorized"
// @Failure 404 {string} string "indication not found"
// @Failure 409 {string} string "version conflict"
// @Router /indications/{indicationID} [patch]
func updateIndicationHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req updateIndicationRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		ind, err := svc.Update(r.Context(), chi.URLParam(r, "indicationID"), req.Version, UpdateInput{
			DoseMin:            req.DoseMin,
			DoseMax:            req.DoseMax,
			DoseUnit:           req.DoseUnit,
			ProtocolDays:       req.ProtocolDays,
			WithdrawalMeatDays: req.WithdrawalMeatDays,
			WithdrawalMilkDays: req.WithdrawalMilkDays,
		})
		if err != nil {
			switch {
			case errors.Is(err, ErrVersionConflict):
				// Incluye expected/actual para que el caller decida
				// si reaplica o descarta.
				http.Error(w, err.Error(), http.StatusConflict)
			case errors.Is(err, ErrNotFound):
				http.Error(w, "indication not found", http.StatusNotFound)
			case errors.Is(err, ErrInvalidInput):
				http.Error(w, err.Error(), http.StatusBadRequest)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		writeJSON(w, http.StatusOK, toIndicationResponse(ind))
	}
}

// deleteIndicationHandler godoc
// @Summary Borrado lógico de una indicación
// @Tags indications
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param indicationID path string true "ID de la indicación"
// @Param version query int true "Versión leída (CAS)"
// @Success 204 {string} string ""
// @Failure 401 {string} string "unauthorized"
// @Failure 404 {string} string "indication not found"
// @Failure 409 {string} string "version conflict"
// @Router /indications/{indicationID} [delete]
func deleteIndicationHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		version := 0
		if v := r.URL.Query().Get("version"); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				version = n
			}
		}

		err := svc.SoftDelete(r.Context(), chi.URLParam(r, "indicationID"), version)
		if err != nil {
			switch {
			case errors.Is(err, ErrVersionConflict):
				http.Error(w, err.Error(), http.StatusConflict)
			case errors.Is(err, ErrNotFound):
				http.Error(w, "indication not found", http.StatusNotFound)
			case errors.Is(err, ErrInvalidInput):
				http.Error(w, err.Error(), http.StatusBadRequest)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func toIndicationResponse(ind Indication) indicationResponse {
	return indicationResponse{
		ID:                 ind.ID,
		ProductID:          ind.ProductID,
		SpeciesID:          ind.SpeciesID,
		RouteID:            ind.RouteID,
		CountryCode:        ind.CountryCode,
		AgeCategoryID:      ind.AgeCategoryID,
		DoseMin:            ind.DoseMin,
		DoseMax:            ind.DoseMax,
		DoseUnit:           ind.DoseUnit,
		ProtocolDays:       ind.ProtocolDays,
		WithdrawalMeatDays: ind.WithdrawalMeatDays,
		WithdrawalMilkDays: ind.WithdrawalMilkDays,
		Status:             ind.Status,
		Version:            ind.Version,
		CreatedAt:          ind.CreatedAt,
		UpdatedAt:          ind.UpdatedAt,
	}
}

// writeJSON está duplicado intencionalmente en handlers de distintos módulos
// para evitar crear paquetes/helpers compartidos demasiado pronto.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
