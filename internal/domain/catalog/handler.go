package catalog

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"livestock-health/internal/middleware"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/products", func(pr chi.Router) {
		pr.Post("/", createProductHandler(svc))
		pr.Get("/", listProductsHandler(svc))
		pr.Get("/{productID}", getProductHandler(svc))
		pr.Patch("/{productID}/active", setProductActiveHandler(svc))
	})

	// Referencia de solo lectura
	r.Get("/species", listSpeciesHandler(svc))
	r.Get("/routes", listRoutesHandler(svc))
	r.Get("/age-categories", listAgeCategoriesHandler(svc))
}

// createProductRequest es el cuerpo para dar de alta un producto del catálogo.
type createProductRequest struct {
	Name string      `json:"name"`
	Type ProductType `json:"type" enums:"drug,vaccine,other"`
}

type setActiveRequest struct {
	Active bool `json:"active"`
}

// productResponse representa un producto del catálogo devuelto por la API.
type productResponse struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Type      ProductType `json:"type"`
	Active    bool        `json:"active"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

type speciesResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type routeResponse struct {
	ID   string `json:"id"`
	Code string `json:"code"`
	Name string `json:"name"`
}

type ageCategoryResponse struct {
	ID        string `json:"id"`
	SpeciesID string `json:"species_id"`
	Name      string `json:"name"`
	MinMonths int    `json:"min_months"`
	MaxMonths int    `json:"max_months"`
}

// createProductHandler godoc
// @Summary Crear producto de catálogo
// @Description Alta de producto veterinario (catálogo global, requiere usuario autenticado).
// @Tags catalog
// @Accept json
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param payload body createProductRequest true "Datos del producto"
// @Success 201 {object} productResponse
// @Failure 400 {string} string "invalid json / tipo inválido"
// @Failure 401 {string} string "unauthorized"
// @Router /products [post]
func createProductHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req createProductRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		p, err := svc.CreateProduct(r.Context(), CreateProductInput{
			Name: req.Name,
			Type: req.Type,
		})
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		writeJSON(w, http.StatusCreated, toProductResponse(p))
	}
}

// listProductsHandler godoc
// @Summary Listar productos del catálogo
// @Tags catalog
// @Produce json
// @Param active query bool false "Solo productos activos"
// @Success 200 {array} productResponse
// @Router /products [get]
func listProductsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		onlyActive := r.URL.Query().Get("active") == "true"

		items, err := svc.ListProducts(r.Context(), onlyActive)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]productResponse, 0, len(items))
		for _, p := range items {
			out = append(out, toProductResponse(p))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// getProductHandler godoc
// @Summary Ver un producto
// @Tags catalog
// @Produce json
// @Param productID path string true "ID del producto"
// @Success 200 {object} productResponse
// @Failure 404 {string} string "product not found"
// @Router /products/{productID} [get]
func getProductHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := svc.GetProductByID(r.Context(), chi.URLParam(r, "productID"))
		if err != nil {
			http.Error(w, "product not found", http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, toProductResponse(p))
	}
}

// setProductActiveHandler godoc
// @Summary Activar/retirar un producto
// @Tags catalog
// @Accept json
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param productID path string true "ID del producto"
// @Param payload body setActiveRequest true "Nuevo estado"
// @Success 200 {object} productResponse
// @Failure 401 {string} string "unauthorized"
// @Failure 404 {string} string "product not found"
// @Router /products/{productID}/active [patch]
func setProductActiveHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req setActiveRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		p, err := svc.SetProductActive(r.Context(), chi.URLParam(r, "productID"), req.Active)
		if err != nil {
			http.Error(w, "product not found", http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, toProductResponse(p))
	}
}

// listSpeciesHandler godoc
// @Summary Listar especies
// @Tags catalog
// @Produce json
// @Success 200 {array} speciesResponse
// @Router /species [get]
func listSpeciesHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.ListSpecies(r.Context())
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		out := make([]speciesResponse, 0, len(items))
		for _, sp := range items {
			out = append(out, speciesResponse{ID: sp.ID, Name: sp.Name})
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// listRoutesHandler godoc
// @Summary Listar vías de administración
// @Tags catalog
// @Produce json
// @Success 200 {array} routeResponse
// @Router /routes [get]
func listRoutesHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.ListRoutes(r.Context())
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		out := make([]routeResponse, 0, len(items))
		for _, rt := range items {
			out = append(out, routeResponse{ID: rt.ID, Code: rt.Code, Name: rt.Name})
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// listAgeCategoriesHandler godoc
// @Summary Listar categorías de edad
// @Tags catalog
// @Produce json
// @Param species query string false "Filtrar por especie"
// @Success 200 {array} ageCategoryResponse
// @Router /age-categories [get]
func listAgeCategoriesHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.ListAgeCategories(r.Context(), strings.TrimSpace(r.URL.Query().Get("species")))
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		out := make([]ageCategoryResponse, 0, len(items))
		for _, ac := range items {
			out = append(out, ageCategoryResponse{
				ID:        ac.ID,
				SpeciesID: ac.SpeciesID,
				Name:      ac.Name,
				MinMonths: ac.MinMonths,
				MaxMonths: ac.MaxMonths,
			})
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func toProductResponse(p Product) productResponse {
	return productResponse{
		ID:        p.ID,
		Name:      p.Name,
		Type:      p.Type,
		Active:    p.Active,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

// writeJSON está duplicado intencionalmente en handlers de distintos módulos
// para evitar crear paquetes/helpers compartidos demasiado pronto.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
