package treatments

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"livestock-health/internal/domain/accessgrants"
	"livestock-health/internal/domain/animals"
	"livestock-health/internal/domain/farms"
	"livestock-health/internal/middleware"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service, farmsSvc *farms.Service, animalsSvc *animals.Service, grantsSvc *accessgrants.Service) {
	r.Route("/farms/{farmID}/treatments", func(tr chi.Router) {
		tr.Post("/", createTreatmentHandler(svc, farmsSvc, animalsSvc, grantsSvc))
		tr.Get("/", listTreatmentsHandler(svc, farmsSvc, grantsSvc))
		tr.Post("/{treatmentID}/complete", completeTreatmentHandler(svc, farmsSvc, grantsSvc))
	})
}

// createTreatmentRequest es el cuerpo para registrar un evento sanitario.
type createTreatmentRequest struct {
	AnimalID string `json:"animal_id"` // animal_id o lot_id requerido
	LotID    string `json:"lot_id"`

	ProductID string `json:"product_id"`
	Kind      Kind   `json:"kind" enums:"treatment,vaccination"`
	Date      string `json:"date"` // RFC3339

	Dose     float64 `json:"dose"`
	DoseUnit string  `json:"dose_unit"`

	NextDueDate string `json:"next_due_date"` // RFC3339, opcional
	Notes       string `json:"notes"`

	// Contexto para resolución automática de indicación.
	RouteID       string `json:"route_id"`
	CountryCode   string `json:"country_code"`
	AgeCategoryID string `json:"age_category_id"`

	AutoCalculateWithdrawal bool   `json:"auto_calculate_withdrawal"`
	WithdrawalEndDate       string `json:"withdrawal_end_date"` // RFC3339, usado si auto=false
}

type completeTreatmentRequest struct {
	Version int `json:"version"` // versión leída, para CAS
}

// treatmentResponse representa un evento sanitario devuelto por la API.
type treatmentResponse struct {
	ID     string `json:"id"`
	FarmID string `json:"farm_id"`

	AnimalID string `json:"animal_id,omitempty"`
	LotID    string `json:"lot_id,omitempty"`

	ProductID    string `json:"product_id"`
	IndicationID string `json:"indication_id,omitempty"`

	Kind Kind      `json:"kind"`
	Date time.Time `json:"date"`

	Dose     float64 `json:"dose"`
	DoseUnit string  `json:"dose_unit"`

	WithdrawalEndDate *time.Time       `json:"withdrawal_end_date,omitempty"`
	WithdrawalSource  WithdrawalSource `json:"withdrawal_source"`

	NextDueDate *time.Time `json:"next_due_date,omitempty"`

	Status  Status `json:"status"`
	Notes   string `json:"notes,omitempty"`
	Version int    `json:"version"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// withdrawalPlanResponse expone el resultado de la resolución al caller
// (incluye la ventana de leche, que no se persiste en el campo legacy).
type withdrawalPlanResponse struct {
	IndicationID string     `json:"indication_id,omitempty"`
	Tier         string     `json:"tier,omitempty"`
	Fallback     bool       `json:"fallback,omitempty"`
	MeatEndDate  *time.Time `json:"meat_end_date,omitempty"`
	MilkEndDate  *time.Time `json:"milk_end_date,omitempty"`
}

type createTreatmentResponse struct {
	Treatment treatmentResponse       `json:"treatment"`
	Plan      *withdrawalPlanResponse `json:"withdrawal_plan,omitempty"`
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

// createTreatmentHandler godoc
// @Summary Registrar tratamiento/vacunación
// @Description Con auto_calculate_withdrawal=true resuelve la indicación aplicable (cascada país+edad > país > edad > universal) y calcula la ventana de supresión. Si no resuelve, el evento queda sin seguimiento (withdrawal_source=none), nunca con cero días. La especie y el país se toman del animal y de la explotación si no vienen en el payload.
// @Tags treatments
// @Accept json
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param farmID path string true "ID de la explotación"
// @Param payload body createTreatmentRequest true "Datos del evento; fechas en RFC3339"
// @Success 201 {object} createTreatmentResponse
// @Failure 400 {string} string "invalid json / fechas inválidas / reglas de negocio"
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "farm not found / animal not found"
// @Router /farms/{farmID}/treatments [post]
func createTreatmentHandler(svc *Service, farmsSvc *farms.Service, animalsSvc *animals.Service, grantsSvc *accessgrants.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		farmID := chi.URLParam(r, "farmID")
		if st := authorizeFarm(r, farmsSvc, grantsSvc, farmID, accessgrants.ScopeTreatmentsCreate); st != http.StatusOK {
			http.Error(w, http.StatusText(st), st)
			return
		}

		var req createTreatmentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		date, err := time.Parse(time.RFC3339, req.Date)
		if err != nil {
			http.Error(w, "date must be RFC3339", http.StatusBadRequest)
			return
		}

		in := CreateInput{
			AnimalID:                req.AnimalID,
			LotID:                   req.LotID,
			ProductID:               req.ProductID,
			Kind:                    req.Kind,
			Date:                    date,
			Dose:                    req.Dose,
			DoseUnit:                req.DoseUnit,
			Notes:                   req.Notes,
			RouteID:                 req.RouteID,
			CountryCode:             req.CountryCode,
			AgeCategoryID:           req.AgeCategoryID,
			AutoCalculateWithdrawal: req.AutoCalculateWithdrawal,
		}

		if strings.TrimSpace(req.NextDueDate) != "" {
			t, err := time.Parse(time.RFC3339, req.NextDueDate)
			if err != nil {
				http.Error(w, "next_due_date must be RFC3339", http.StatusBadRequest)
				return
			}
			in.NextDueDate = &t
		}
		if strings.TrimSpace(req.WithdrawalEndDate) != "" {
			t, err := time.Parse(time.RFC3339, req.WithdrawalEndDate)
			if err != nil {
				http.Error(w, "withdrawal_end_date must be RFC3339", http.StatusBadRequest)
				return
			}
			in.WithdrawalEndDate = &t
		}

		// Especie desde el animal si viene animal_id; país desde la
		// explotación si el payload no lo trae.
		if strings.TrimSpace(req.AnimalID) != "" {
			a, err := animalsSvc.GetByID(r.Context(), req.AnimalID)
			if err != nil || a.FarmID != farmID {
				http.Error(w, "animal not found", http.StatusNotFound)
				return
			}
			in.SpeciesID = a.SpeciesID
		}
		if strings.TrimSpace(in.CountryCode) == "" {
			if f, err := farmsSvc.GetByID(r.Context(), farmID); err == nil {
				in.CountryCode = f.CountryCode
			}
		}

		t, plan, err := svc.Create(r.Context(), farmID, in)
		if err != nil {
			if errors.Is(err, ErrInvalidInput) {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		resp := createTreatmentResponse{Treatment: toTreatmentResponse(t)}
		if plan.Indication != nil {
			resp.Plan = &withdrawalPlanResponse{
				IndicationID: plan.Indication.ID,
				Tier:         plan.Tier,
				Fallback:     plan.Fallback,
				MeatEndDate:  plan.MeatEndDate,
				MilkEndDate:  plan.MilkEndDate,
			}
		}

		writeJSON(w, http.StatusCreated, resp)
	}
}

// listTreatmentsHandler godoc
// @Summary Listar eventos sanitarios de una explotación
// @Tags treatments
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param farmID path string true "ID de la explotación"
// @Param kind query string false "Filtrar por tipo (treatment, vaccination)"
// @Param from query string false "Fecha mínima (RFC3339)"
// @Param to query string false "Fecha máxima (RFC3339)"
// @Param limit query int false "Máximo a devolver (1-200). Por defecto 50"
// @Success 200 {array} treatmentResponse
// @Failure 400 {string} string "filtros inválidos"
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "farm not found"
// @Router /farms/{farmID}/treatments [get]
func listTreatmentsHandler(svc *Service, farmsSvc *farms.Service, grantsSvc *accessgrants.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		farmID := chi.URLParam(r, "farmID")
		if st := authorizeFarm(r, farmsSvc, grantsSvc, farmID, accessgrants.ScopeTreatmentsRead); st != http.StatusOK {
			http.Error(w, http.StatusText(st), st)
			return
		}

		filter, err := parseListFilter(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		items, err := svc.ListByFarm(r.Context(), farmID, filter)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]treatmentResponse, 0, len(items))
		for _, t := range items {
			out = append(out, toTreatmentResponse(t))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// completeTreatmentHandler godoc
// @Summary Completar tratamiento
// @Description Idempotente, con CAS por versión.
// @Tags treatments
// @Accept json
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param farmID path string true "ID de la explotación"
// @Param treatmentID path string true "ID del tratamiento"
// @Param payload body completeTreatmentRequest true "Versión leída"
// @Success 200 {object} treatmentResponse
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "treatment not found"
// @Failure 409 {string} string "version conflict"
// @Router /farms/{farmID}/treatments/{treatmentID}/complete [post]
func completeTreatmentHandler(svc *Service, farmsSvc *farms.Service, grantsSvc *accessgrants.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		farmID := chi.URLParam(r, "farmID")
		if st := authorizeFarm(r, farmsSvc, grantsSvc, farmID, accessgrants.ScopeTreatmentsCreate); st != http.StatusOK {
			http.Error(w, http.StatusText(st), st)
			return
		}

		t, err := svc.GetByID(r.Context(), chi.URLParam(r, "treatmentID"))
		if err != nil || t.FarmID != farmID {
			http.Error(w, "treatment not found", http.StatusNotFound)
			return
		}

		var req completeTreatmentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		updated, err := svc.Complete(r.Context(), t.ID, req.Version)
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

		writeJSON(w, http.StatusOK, toTreatmentResponse(updated))
	}
}

func parseListFilter(r *http.Request) (ListFilter, error) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}

	filter := ListFilter{Limit: limit}

	if v := strings.TrimSpace(r.URL.Query().Get("kind")); v != "" {
		filter.Kind = Kind(v)
	}
	if v := strings.TrimSpace(r.URL.Query().Get("from")); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return ListFilter{}, errors.New("from must be RFC3339")
		}
		filter.From = &t
	}
	if v := strings.TrimSpace(r.URL.Query().Get("to")); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return ListFilter{}, errors.New("to must be RFC3339")
		}
		filter.To = &t
	}

	return filter, nil
}

func toTreatmentResponse(t Treatment) treatmentResponse {
	return treatmentResponse{
		ID:                t.ID,
		FarmID:            t.FarmID,
		AnimalID:          t.AnimalID,
		LotID:             t.LotID,
		ProductID:         t.ProductID,
		IndicationID:      t.IndicationID,
		Kind:              t.Kind,
		Date:              t.Date,
		Dose:              t.Dose,
		DoseUnit:          t.DoseUnit,
		WithdrawalEndDate: t.WithdrawalEndDate,
		WithdrawalSource:  t.WithdrawalSource,
		NextDueDate:       t.NextDueDate,
		Status:            t.Status,
		Notes:             t.Notes,
		Version:           t.Version,
		CreatedAt:         t.CreatedAt,
		UpdatedAt:         t.UpdatedAt,
	}
}

// writeJSON está duplicado intencionalmente en handlers de distintos módulos
// para evitar crear paquetes/helpers compartidos demasiado pronto.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
