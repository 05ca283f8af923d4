package http

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/arglo/storefront/internal/storefront"
	"github.com/arglo/storefront/pkg/httputil"
	"github.com/arglo/storefront/pkg/pagination"
	"github.com/arglo/storefront/pkg/validator"
)

// IntentRequest is the JSON body of POST /api/v1/intents.
type IntentRequest struct {
	Kind        string `json:"kind" validate:"required,oneof=add_to_cart remove_from_cart adjust_quantity toggle_wishlist remove_from_wishlist wishlist_to_cart add_all_wishlist_to_cart view_product next_page prev_page go_to_page open_search close_search reset_storage"`
	ProductID   int    `json:"product_id" validate:"gte=0"`
	Quantity    int    `json:"quantity"`
	Color       string `json:"color" validate:"max=64"`
	Index       int    `json:"index"`
	Delta       int    `json:"delta" validate:"gte=-999,lte=999"`
	Page        int    `json:"page"`
	KeepRelated bool   `json:"keep_related"`
}

func (req IntentRequest) intent() storefront.Intent {
	return storefront.Intent{
		Kind:        storefront.Kind(req.Kind),
		ProductID:   req.ProductID,
		Quantity:    req.Quantity,
		Color:       strings.TrimSpace(req.Color),
		Index:       req.Index,
		Delta:       req.Delta,
		Page:        req.Page,
		KeepRelated: req.KeepRelated,
	}
}

// StorefrontHandler handles the storefront HTTP endpoints.
type StorefrontHandler struct {
	service *storefront.Service
	delay   time.Duration
	logger  *slog.Logger

	// wait blocks for the add-to-cart delay. Tests replace it.
	wait func(time.Duration)
}

// NewStorefrontHandler creates a handler. delay is the artificial latency
// applied to add-to-cart intents before they run.
func NewStorefrontHandler(svc *storefront.Service, delay time.Duration, logger *slog.Logger) *StorefrontHandler {
	return &StorefrontHandler{
		service: svc,
		delay:   delay,
		logger:  logger,
		wait:    time.Sleep,
	}
}

// GetStorefront handles GET /api/v1/storefront
func (h *StorefrontHandler) GetStorefront(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.View(r.URL.Query().Get("color"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, view)
}

// ListProducts handles GET /api/v1/products
func (h *StorefrontHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	params := pagination.FromRequest(r)
	httputil.WriteData(w, pagination.Paginate(h.service.Catalog().All(), params))
}

// GetProduct handles GET /api/v1/products/{id}
func (h *StorefrontHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	p, err := h.service.Catalog().Get(id)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, p)
}

// GetRelated handles GET /api/v1/related
func (h *StorefrontHandler) GetRelated(w http.ResponseWriter, r *http.Request) {
	httputil.WriteData(w, h.service.Related())
}

// Search handles GET /api/v1/search?q=
func (h *StorefrontHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if err := validator.Var("q", q, "max=200"); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}
	httputil.WriteData(w, h.service.Search(q))
}

// Dispatch handles POST /api/v1/intents
func (h *StorefrontHandler) Dispatch(w http.ResponseWriter, r *http.Request) {
	var req IntentRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	ctx := r.Context()
	in := req.intent()
	if in.Kind == storefront.AddToCart && h.delay > 0 {
		// The delayed action always completes, even if the client goes away.
		h.wait(h.delay)
		ctx = context.WithoutCancel(ctx)
	}

	res, err := h.service.Dispatch(ctx, in)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, res)
}

// CheckoutWhatsApp handles POST /api/v1/checkout/whatsapp
func (h *StorefrontHandler) CheckoutWhatsApp(w http.ResponseWriter, r *http.Request) {
	handoff, err := h.service.CheckoutWhatsApp(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, handoff)
}

// CheckoutClipboard handles POST /api/v1/checkout/clipboard
func (h *StorefrontHandler) CheckoutClipboard(w http.ResponseWriter, r *http.Request) {
	handoff, err := h.service.CheckoutClipboard(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, handoff)
}
