package rest

import (
	"log/slog"
	"net/http"

	"github.com/abgdnv/storefront/internal/storefront/state"
	"github.com/abgdnv/storefront/pkg/web"
	"github.com/go-chi/chi/v5"
)

// CartAddDto is the body of POST /api/v1/me/cart.
type CartAddDto struct {
	ProductID string `json:"product_id" validate:"required,max=64"`
	Quantity  int    `json:"quantity"   validate:"required,min=1,max=99"`
}

// GetState returns the caller's cart and favorites.
func (h *Handler) GetState(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	userID, ok := web.GetUserID(w, r, mLogger)
	if !ok {
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, h.states.For(userID.String()).Snapshot())
}

// AddToCart adds an existing product to the caller's cart.
func (h *Handler) AddToCart(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	userID, ok := web.GetUserID(w, r, mLogger)
	if !ok {
		return
	}
	var dto CartAddDto
	if !h.decodeAndValidate(w, r, mLogger, &dto) {
		return
	}
	if !h.productListed(w, r, mLogger, dto.ProductID) {
		return
	}
	snap := h.states.For(userID.String()).Dispatch(state.AddToCart{ProductID: dto.ProductID, Quantity: dto.Quantity})
	mLogger.InfoContext(r.Context(), "Product added to cart", "ID", dto.ProductID, "cart_count", snap.CartCount)
	web.RespondJSON(w, mLogger, http.StatusOK, snap)
}

// RemoveFromCart drops one product line from the caller's cart.
func (h *Handler) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	userID, ok := web.GetUserID(w, r, mLogger)
	if !ok {
		return
	}
	snap := h.states.For(userID.String()).Dispatch(state.RemoveFromCart{ProductID: chi.URLParam(r, "id")})
	web.RespondJSON(w, mLogger, http.StatusOK, snap)
}

// ClearCart empties the caller's cart.
func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	userID, ok := web.GetUserID(w, r, mLogger)
	if !ok {
		return
	}
	snap := h.states.For(userID.String()).Dispatch(state.ClearCart{})
	web.RespondJSON(w, mLogger, http.StatusOK, snap)
}

// ToggleFavorite adds the product to the caller's favorites, or removes it.
func (h *Handler) ToggleFavorite(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	userID, ok := web.GetUserID(w, r, mLogger)
	if !ok {
		return
	}
	productID := chi.URLParam(r, "id")
	if !h.productListed(w, r, mLogger, productID) {
		return
	}
	snap := h.states.For(userID.String()).Dispatch(state.ToggleFavorite{ProductID: productID})
	web.RespondJSON(w, mLogger, http.StatusOK, snap)
}

// productListed accepts any ID the catalog source lists, which need not be a UUID
// when products come from the remote catalog.
func (h *Handler) productListed(w http.ResponseWriter, r *http.Request, logger *slog.Logger, id string) bool {
	if err := h.service.EnsureListed(r.Context(), id); err != nil {
		h.respondServiceError(w, r, logger, err, id, "retrieve")
		return false
	}
	return true
}
