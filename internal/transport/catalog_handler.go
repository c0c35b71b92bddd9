package transport

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	"marketplace/internal/domain"
	"marketplace/internal/middleware"
	"marketplace/internal/repository"

	"github.com/cockroachdb/errors"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// MaxBodyBytes caps every request payload
const MaxBodyBytes = 5 << 20

var errEmptyBody = errors.New("empty body")

// CatalogHandler handles HTTP requests for products and affiliates
type CatalogHandler struct {
	products   repository.ProductRepository
	affiliates repository.AffiliateRepository
	logger     *zap.Logger
}

// NewCatalogHandler creates a new CatalogHandler
func NewCatalogHandler(products repository.ProductRepository, affiliates repository.AffiliateRepository, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{
		products:   products,
		affiliates: affiliates,
		logger:     logger,
	}
}

// RegisterRoutes registers the collection routes under /api. Mutating routes
// are wrapped by guard, which may be a no-op.
func (h *CatalogHandler) RegisterRoutes(r chi.Router, guard func(http.Handler) http.Handler) {
	r.Route("/api/products", func(r chi.Router) {
		r.Get("/", h.ListProducts)

		r.Group(func(r chi.Router) {
			r.Use(guard)
			r.Post("/", h.CreateProduct)
			r.Patch("/{id}", h.UpdateProduct)
			r.Delete("/{id}", h.DeleteProduct)
		})
	})

	r.Route("/api/affiliates", func(r chi.Router) {
		r.Get("/", h.ListAffiliates)

		r.Group(func(r chi.Router) {
			r.Use(guard)
			r.Post("/", h.CreateAffiliate)
			r.Patch("/{id}", h.UpdateAffiliate)
			r.Delete("/{id}", h.DeleteAffiliate)
		})
	})
}

// ListProducts returns every product, newest first
func (h *CatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.List(r.Context())
	if err != nil {
		h.respondWithDomainError(w, err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, products)
}

// CreateProduct handles product creation
func (h *CatalogHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var input domain.ProductInput
	if !h.decodeBody(w, r, &input) {
		return
	}

	product, err := h.products.Create(r.Context(), input)
	if err != nil {
		h.respondWithDomainError(w, err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusCreated, product)
}

// UpdateProduct merges the payload over an existing product
func (h *CatalogHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	var input domain.ProductInput
	if !h.decodeBody(w, r, &input) {
		return
	}

	product, err := h.products.Update(r.Context(), chi.URLParam(r, "id"), input)
	if err != nil {
		h.respondWithDomainError(w, err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, product)
}

// DeleteProduct removes a product
func (h *CatalogHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.products.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.respondWithDomainError(w, err)
		return
	}
	middleware.RespondNoContent(w)
}

// ListAffiliates returns every affiliate, newest first
func (h *CatalogHandler) ListAffiliates(w http.ResponseWriter, r *http.Request) {
	affiliates, err := h.affiliates.List(r.Context())
	if err != nil {
		h.respondWithDomainError(w, err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, affiliates)
}

// CreateAffiliate handles affiliate creation
func (h *CatalogHandler) CreateAffiliate(w http.ResponseWriter, r *http.Request) {
	var input domain.AffiliateInput
	if !h.decodeBody(w, r, &input) {
		return
	}

	affiliate, err := h.affiliates.Create(r.Context(), input)
	if err != nil {
		h.respondWithDomainError(w, err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusCreated, affiliate)
}

// UpdateAffiliate merges the payload over an existing affiliate
func (h *CatalogHandler) UpdateAffiliate(w http.ResponseWriter, r *http.Request) {
	var input domain.AffiliateInput
	if !h.decodeBody(w, r, &input) {
		return
	}

	affiliate, err := h.affiliates.Update(r.Context(), chi.URLParam(r, "id"), input)
	if err != nil {
		h.respondWithDomainError(w, err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, affiliate)
}

// DeleteAffiliate removes an affiliate
func (h *CatalogHandler) DeleteAffiliate(w http.ResponseWriter, r *http.Request) {
	if err := h.affiliates.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.respondWithDomainError(w, err)
		return
	}
	middleware.RespondNoContent(w)
}

// decodeBody reads a capped JSON object into dst. An empty body decodes as {}.
// It writes the 400 response itself and reports whether decoding succeeded.
func (h *CatalogHandler) decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := DecodeJSON(w, r, dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.logger.Debug("Payload too large", zap.Int64("limit", tooLarge.Limit))
			middleware.RespondWithError(w, http.StatusBadRequest, middleware.MessagePayloadTooBig)
			return false
		}
		h.logger.Debug("Invalid JSON body", zap.Error(err))
		middleware.RespondWithError(w, http.StatusBadRequest, middleware.MessageInvalidJSON)
		return false
	}
	return true
}

// DecodeJSON reads at most MaxBodyBytes from the request body and decodes it.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err != nil {
		return err
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		raw = []byte("{}")
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return errors.Wrap(err, "decode body")
	}
	return nil
}

func (h *CatalogHandler) respondWithDomainError(w http.ResponseWriter, err error) {
	var validationErr *domain.ValidationError
	var notFoundErr *domain.NotFoundError

	switch {
	case errors.As(err, &validationErr):
		middleware.RespondWithError(w, http.StatusBadRequest, validationErr.Message)
	case errors.As(err, &notFoundErr):
		middleware.RespondWithError(w, http.StatusNotFound, notFoundErr.Error())
	default:
		h.logger.Error("Catalog request failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, err.Error())
	}
}
