// Package rest provides HTTP handlers for the catalog, product administration and storefront state.
package rest

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	perrors "github.com/abgdnv/storefront/internal/product/errors"
	"github.com/abgdnv/storefront/internal/product/service"
	"github.com/abgdnv/storefront/internal/storefront/state"
	"github.com/abgdnv/storefront/pkg/web"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
)

// MaxPageSize caps the size query parameter of the catalog endpoint.
const MaxPageSize = 100

type Handler struct {
	service  service.ProductService
	states   *state.Registry
	validate *validator.Validate
	logger   *slog.Logger
}

// NewHandler creates a new Handler with the provided service and per-user state registry.
func NewHandler(service service.ProductService, states *state.Registry, logger *slog.Logger) *Handler {
	return &Handler{
		service:  service,
		states:   states,
		validate: validator.New(),
		logger:   logger.With("component", "rest"),
	}
}

// RegisterRoutes registers the HTTP routes for the catalog service.
func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Get("/api/v1/catalog", h.Browse)

	r.Route("/api/v1/products", func(r chi.Router) {
		r.Get("/", h.FindAll)
		r.Post("/", h.Create)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.FindByID)
			r.Delete("/", h.DeleteByID)
			r.Put("/", h.Update)
			r.Put("/stock", h.UpdateStock)
		})
	})

	r.Group(func(r chi.Router) {
		r.Use(web.AuthMiddleware)
		r.Route("/api/v1/me", func(r chi.Router) {
			r.Get("/state", h.GetState)
			r.Post("/cart", h.AddToCart)
			r.Delete("/cart", h.ClearCart)
			r.Delete("/cart/{id}", h.RemoveFromCart)
			r.Put("/favorites/{id}", h.ToggleFavorite)
		})
	})

	r.Get("/healthz", h.HealthCheck)
}

// Browse runs the catalog pipeline with the query string criteria.
func (h *Handler) Browse(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	query, ok := h.parseBrowseQuery(w, r, mLogger)
	if !ok {
		return
	}

	mLogger.DebugContext(r.Context(), "Received catalog browse request", "query", query)
	res, err := h.service.Browse(r.Context(), query)
	if err != nil {
		if errors.Is(err, perrors.ErrInvalidBrowseQuery) {
			mLogger.WarnContext(r.Context(), "Invalid browse query", "error", err)
			web.RespondError(w, mLogger, http.StatusBadRequest, fmt.Sprintf("Invalid sort: %s", query.Sort))
			return
		}
		mLogger.ErrorContext(r.Context(), "Error browsing catalog", "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to browse catalog")
		return
	}
	mLogger.DebugContext(r.Context(), "Catalog page computed", "page", res.Page, "total", res.TotalCount)
	web.RespondJSON(w, mLogger, http.StatusOK, res)
}

func (h *Handler) parseBrowseQuery(w http.ResponseWriter, r *http.Request, logger *slog.Logger) (service.BrowseQuery, bool) {
	q := service.BrowseQuery{
		Category: r.URL.Query().Get("category"),
		Sort:     r.URL.Query().Get("sort"),
	}
	minPrice, present, ok := web.ParseOptionalInt(r, w, logger, "min")
	if !ok {
		return q, false
	}
	if present {
		q.PriceMin = &minPrice
	}
	maxPrice, present, ok := web.ParseOptionalInt(r, w, logger, "max")
	if !ok {
		return q, false
	}
	if present {
		q.PriceMax = &maxPrice
	}
	page, _, ok := web.ParseOptionalInt(r, w, logger, "page")
	if !ok {
		return q, false
	}
	q.Page = int(page)
	size, present, ok := web.ParseOptionalInt(r, w, logger, "size")
	if !ok {
		return q, false
	}
	if present && (size < 1 || size > MaxPageSize) {
		web.RespondError(w, logger, http.StatusBadRequest, fmt.Sprintf("size must be between 1 and %d", MaxPageSize))
		return q, false
	}
	q.PageSize = int(size)
	return q, true
}

// FindByID retrieves a product by its ID.
func (h *Handler) FindByID(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	id, ok := web.ParseID(w, r, mLogger)
	if !ok {
		return
	}

	mLogger.DebugContext(r.Context(), "Received request to find product by ID", "ID", id)
	found, err := h.service.FindByID(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, r, mLogger, err, id.String(), "retrieve")
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, found)
}

// FindAll retrieves one page of products, newest first.
func (h *Handler) FindAll(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	limit, ok := web.ParseValidateGt(r, w, mLogger, "limit", 0)
	if !ok {
		return
	}
	offset, ok := web.ParseValidateGte(r, w, mLogger, "offset", 0)
	if !ok {
		return
	}
	mLogger.DebugContext(r.Context(), "Received request to find all products", "limit", limit, "offset", offset)
	list, err := h.service.FindAll(r.Context(), offset, limit)
	if err != nil {
		mLogger.ErrorContext(r.Context(), "Error retrieving product list", "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to fetch products")
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, list)
}

// Create handles the creation of a new product.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	var dto service.ProductCreateDto
	if !h.decodeAndValidate(w, r, mLogger, &dto) {
		return
	}

	created, err := h.service.Create(r.Context(), dto)
	if err != nil {
		mLogger.ErrorContext(r.Context(), "Error creating product", "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to create product")
		return
	}
	mLogger.InfoContext(r.Context(), "Product created successfully", "ID", created.ID, "Name", created.Name)
	web.RespondJSON(w, mLogger, http.StatusCreated, created)
}

// Update replaces the mutable fields of a product. The body version must match the stored one.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	id, ok := web.ParseID(w, r, mLogger)
	if !ok {
		return
	}
	var dto service.ProductDto
	if !h.decodeAndValidate(w, r, mLogger, &dto) {
		return
	}
	dto.ID = id.String()

	updated, err := h.service.Update(r.Context(), dto)
	if err != nil {
		h.respondServiceError(w, r, mLogger, err, id.String(), "update")
		return
	}
	mLogger.InfoContext(r.Context(), "Product updated successfully", "ID", updated.ID, "Version", updated.Version)
	web.RespondJSON(w, mLogger, http.StatusOK, updated)
}

// UpdateStock sets the stock quantity of a product.
func (h *Handler) UpdateStock(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	id, ok := web.ParseID(w, r, mLogger)
	if !ok {
		return
	}
	var dto service.StockUpdateDto
	if !h.decodeAndValidate(w, r, mLogger, &dto) {
		return
	}

	updated, err := h.service.UpdateStock(r.Context(), id, dto.Stock, dto.Version)
	if err != nil {
		h.respondServiceError(w, r, mLogger, err, id.String(), "update stock for")
		return
	}
	mLogger.InfoContext(r.Context(), "Stock updated successfully for product", "ID", updated.ID, "NewStock", updated.Stock)
	web.RespondJSON(w, mLogger, http.StatusOK, updated)
}

// DeleteByID deletes a product by its ID and version.
func (h *Handler) DeleteByID(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	id, ok := web.ParseID(w, r, mLogger)
	if !ok {
		return
	}
	version, ok := web.ParseValidateGte(r, w, mLogger, "version", 1)
	if !ok {
		return
	}
	if err := h.service.DeleteByID(r.Context(), id, version); err != nil {
		h.respondServiceError(w, r, mLogger, err, id.String(), "delete")
		return
	}
	mLogger.InfoContext(r.Context(), "Product deleted successfully", "ID", id)
	w.WriteHeader(http.StatusNoContent)
}

// HealthCheck is a simple health check endpoint.
func (h *Handler) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// decodeAndValidate decodes the JSON body into dst and runs struct validation.
// It writes the 4xx response itself and returns false on failure.
func (h *Handler) decodeAndValidate(w http.ResponseWriter, r *http.Request, logger *slog.Logger, dst any) bool {
	if !web.DecodeJSON(w, r, logger, dst) {
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			errorResponse := make(map[string]string)
			for _, fieldErr := range validationErrors {
				errorResponse[fieldErr.Field()] = "failed on rule: " + fieldErr.Tag()
			}
			logger.WarnContext(r.Context(), "Validation errors occurred", "errors", errorResponse)
			web.RespondValidationErrors(w, logger, errorResponse)
			return false
		}
		logger.ErrorContext(r.Context(), "Error validating request body", "error", err)
		web.RespondError(w, logger, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

func (h *Handler) respondServiceError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error, id, verb string) {
	if errors.Is(err, perrors.ErrProductNotFound) {
		logger.WarnContext(r.Context(), "Product not found", "ID", id, "op", verb)
		web.RespondError(w, logger, http.StatusNotFound, fmt.Sprintf("Product with ID %s not found", id))
		return
	}
	logger.ErrorContext(r.Context(), "Product operation failed", "ID", id, "op", verb, "error", err)
	web.RespondError(w, logger, http.StatusInternalServerError, fmt.Sprintf("Failed to %s product with ID %s", verb, id))
}

// loggerWithReqID creates a logger with the request ID from the context.
func (h *Handler) loggerWithReqID(r *http.Request) *slog.Logger {
	reqID := middleware.GetReqID(r.Context())
	return h.logger.With("request_id", reqID)
}
