package animals

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"livestock-health/internal/domain/accessgrants"
	"livestock-health/internal/domain/farms"
	"livestock-health/internal/middleware"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service, farmsSvc *farms.Service, grantsSvc *accessgrants.Service) {
	r.Route("/farms/{farmID}/animals", func(ar chi.Router) {
		ar.Post("/", createAnimalHandler(svc, farmsSvc, grantsSvc))
		ar.Get("/", listAnimalsHandler(svc, farmsSvc, grantsSvc))
		ar.Get("/{animalID}", getAnimalHandler(svc, farmsSvc, grantsSvc))
		ar.Patch("/{animalID}/status", setAnimalStatusHandler(svc, farmsSvc, grantsSvc))
		ar.Post("/{animalID}/weights", recordWeightHandler(svc, farmsSvc, grantsSvc))
	})
}

// createAnimalRequest es el cuerpo para registrar un animal.
type createAnimalRequest struct {
	Tag       string `json:"tag"`
	SpeciesID string `json:"species_id"`
	Breed     string `json:"breed"`
	Sex       Sex    `json:"sex" enums:"male,female,unknown"`
	BirthDate string `json:"birth_date"` // RFC3339, opcional
	LotID     string `json:"lot_id"`     // opcional
}

type setStatusRequest struct {
	Status AnimalStatus `json:"status" enums:"alive,sold,dead,slaughtered"`
}

type recordWeightRequest struct {
	WeightKg   float64 `json:"weight_kg"`
	MeasuredAt string  `json:"measured_at"` // RFC3339, opcional (default: ahora)
}

// animalResponse representa un animal devuelto por la API.
type animalResponse struct {
	ID        string       `json:"id"`
	FarmID    string       `json:"farm_id"`
	LotID     string       `json:"lot_id,omitempty"`
	Tag       string       `json:"tag"`
	SpeciesID string       `json:"species_id"`
	Breed     string       `json:"breed"`
	Sex       Sex          `json:"sex"`
	BirthDate *time.Time   `json:"birth_date,omitempty"`
	Status    AnimalStatus `json:"status"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

type weightResponse struct {
	ID         string    `json:"id"`
	AnimalID   string    `json:"animal_id"`
	WeightKg   float64   `json:"weight_kg"`
	MeasuredAt time.Time `json:"measured_at"`
}

// authorizeFarm centraliza el chequeo owner-o-delegado para este módulo.
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

// createAnimalHandler godoc
// @Summary Registrar animal
// @Description El dueño siempre puede. Un delegado necesita scope `animals:manage`.
// @Tags animals
// @Accept json
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param farmID path string true "ID de la explotación"
// @Param payload body createAnimalRequest true "Datos del animal"
// @Success 201 {object} animalResponse
// @Failure 400 {string} string "invalid json / birth_date inválido"
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "farm not found"
// @Router /farms/{farmID}/animals [post]
func createAnimalHandler(svc *Service, farmsSvc *farms.Service, grantsSvc *accessgrants.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		farmID := chi.URLParam(r, "farmID")
		if st := authorizeFarm(r, farmsSvc, grantsSvc, farmID, accessgrants.ScopeAnimalsManage); st != http.StatusOK {
			http.Error(w, http.StatusText(st), st)
			return
		}

		var req createAnimalRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		var birth *time.Time
		if strings.TrimSpace(req.BirthDate) != "" {
			t, err := time.Parse(time.RFC3339, req.BirthDate)
			if err != nil {
				http.Error(w, "birth_date must be RFC3339", http.StatusBadRequest)
				return
			}
			birth = &t
		}

		a, err := svc.Create(r.Context(), farmID, CreateInput{
			Tag:       req.Tag,
			SpeciesID: req.SpeciesID,
			Breed:     req.Breed,
			Sex:       req.Sex,
			BirthDate: birth,
			LotID:     req.LotID,
		})
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		writeJSON(w, http.StatusCreated, toAnimalResponse(a))
	}
}

// listAnimalsHandler godoc
// @Summary Listar animales de una explotación
// @Tags animals
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param farmID path string true "ID de la explotación"
// @Param status query string false "Filtrar por estado (alive, sold, dead, slaughtered)"
// @Param lot query string false "Filtrar por lote"
// @Param limit query int false "Máximo a devolver (1-200). Por defecto 50"
// @Success 200 {array} animalResponse
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "farm not found"
// @Router /farms/{farmID}/animals [get]
func listAnimalsHandler(svc *Service, farmsSvc *farms.Service, grantsSvc *accessgrants.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		farmID := chi.URLParam(r, "farmID")
		if st := authorizeFarm(r, farmsSvc, grantsSvc, farmID, accessgrants.ScopeFarmRead); st != http.StatusOK {
			http.Error(w, http.StatusText(st), st)
			return
		}

		limit := 50
		if v := r.URL.Query().Get("limit"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 200 {
				limit = n
			}
		}

		filter := ListFilter{
			Status: AnimalStatus(strings.TrimSpace(r.URL.Query().Get("status"))),
			LotID:  strings.TrimSpace(r.URL.Query().Get("lot")),
			Limit:  limit,
		}

		items, err := svc.ListByFarm(r.Context(), farmID, filter)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]animalResponse, 0, len(items))
		for _, a := range items {
			out = append(out, toAnimalResponse(a))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// getAnimalHandler godoc
// @Summary Ver un animal
// @Tags animals
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param farmID path string true "ID de la explotación"
// @Param animalID path string true "ID del animal"
// @Success 200 {object} animalResponse
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "animal not found"
// @Router /farms/{farmID}/animals/{animalID} [get]
func getAnimalHandler(svc *Service, farmsSvc *farms.Service, grantsSvc *accessgrants.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		farmID := chi.URLParam(r, "farmID")
		if st := authorizeFarm(r, farmsSvc, grantsSvc, farmID, accessgrants.ScopeFarmRead); st != http.StatusOK {
			http.Error(w, http.StatusText(st), st)
			return
		}

		a, err := svc.GetByID(r.Context(), chi.URLParam(r, "animalID"))
		if err != nil || a.FarmID != farmID {
			http.Error(w, "animal not found", http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, toAnimalResponse(a))
	}
}

// setAnimalStatusHandler godoc
// @Summary Cambiar estado de un animal
// @Description Transiciones válidas solo desde alive. Idempotente para el mismo estado.
// @Tags animals
// @Accept json
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param farmID path string true "ID de la explotación"
// @Param animalID path string true "ID del animal"
// @Param payload body setStatusRequest true "Nuevo estado"
// @Success 200 {object} animalResponse
// @Failure 400 {string} string "estado inválido"
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "animal not found"
// @Failure 409 {string} string "transición inválida"
// @Router /farms/{farmID}/animals/{animalID}/status [patch]
func setAnimalStatusHandler(svc *Service, farmsSvc *farms.Service, grantsSvc *accessgrants.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		farmID := chi.URLParam(r, "farmID")
		if st := authorizeFarm(r, farmsSvc, grantsSvc, farmID, accessgrants.ScopeAnimalsManage); st != http.StatusOK {
			http.Error(w, http.StatusText(st), st)
			return
		}

		a, err := svc.GetByID(r.Context(), chi.URLParam(r, "animalID"))
		if err != nil || a.FarmID != farmID {
			http.Error(w, "animal not found", http.StatusNotFound)
			return
		}

		var req setStatusRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		updated, err := svc.SetStatus(r.Context(), a.ID, req.Status)
		if err != nil {
			switch {
			case errors.Is(err, ErrBadState):
				http.Error(w, "invalid transition", http.StatusConflict)
			case errors.Is(err, ErrInvalidInput):
				http.Error(w, err.Error(), http.StatusBadRequest)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		writeJSON(w, http.StatusOK, toAnimalResponse(updated))
	}
}

// recordWeightHandler godoc
// @Summary Registrar pesada
// @Tags animals
// @Accept json
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param farmID path string true "ID de la explotación"
// @Param animalID path string true "ID del animal"
// @Param payload body recordWeightRequest true "Peso en kg; measured_at RFC3339 opcional"
// @Success 201 {object} weightResponse
// @Failure 400 {string} string "peso inválido"
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "animal not found"
// @Router /farms/{farmID}/animals/{animalID}/weights [post]
func recordWeightHandler(svc *Service, farmsSvc *farms.Service, grantsSvc *accessgrants.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		farmID := chi.URLParam(r, "farmID")
		if st := authorizeFarm(r, farmsSvc, grantsSvc, farmID, accessgrants.ScopeAnimalsManage); st != http.StatusOK {
			http.Error(w, http.StatusText(st), st)
			return
		}

		a, err := svc.GetByID(r.Context(), chi.URLParam(r, "animalID"))
		if err != nil || a.FarmID != farmID {
			http.Error(w, "animal not found", http.StatusNotFound)
			return
		}

		var req recordWeightRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		var measuredAt time.Time
		if strings.TrimSpace(req.MeasuredAt) != "" {
			t, err := time.Parse(time.RFC3339, req.MeasuredAt)
			if err != nil {
				http.Error(w, "measured_at must be RFC3339", http.StatusBadRequest)
				return
			}
			measuredAt = t
		}

		rec, err := svc.RecordWeight(r.Context(), a.ID, RecordWeightInput{
			WeightKg:   req.WeightKg,
			MeasuredAt: measuredAt,
		})
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		writeJSON(w, http.StatusCreated, weightResponse{
			ID:         rec.ID,
			AnimalID:   rec.AnimalID,
			WeightKg:   rec.WeightKg,
			MeasuredAt: rec.MeasuredAt,
		})
	}
}

func toAnimalResponse(a Animal) animalResponse {
	return animalResponse{
		ID:        a.ID,
		FarmID:    a.FarmID,
		LotID:     a.LotID,
		Tag:       a.Tag,
		SpeciesID: a.SpeciesID,
		Breed:     a.Breed,
		Sex:       a.Sex,
		BirthDate: a.BirthDate,
		Status:    a.Status,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

// writeJSON está duplicado intencionalmente en handlers de distintos módulos
// para evitar crear paquetes/helpers compartidos demasiado pronto.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
