package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"order-desk/internal/app"
)

// Handler holds the ApplicationService and the chi router.
type Handler struct {
	svc app.ApplicationService
}

// NewHandler creates and wires the chi router with all routes.
func NewHandler(svc app.ApplicationService, allowedOrigins string) http.Handler {
	h := &Handler{svc: svc}

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Logger)
	r.Use(Recoverer)
	r.Use(CORS(allowedOrigins))
	r.Use(RequestBodyLimit(1 << 20)) // 1 MB

	r.Get("/api/health", h.health)

	// Catalog
	r.Get("/api/customers", h.listCustomers)
	r.Get("/api/products", h.listProducts)

	// Cart session lifecycle
	r.Post("/api/carts", h.createCart)
	r.Get("/api/carts/{cartID}", h.getCart)
	r.Post("/api/carts/{cartID}/lines", h.addLine)
	r.Patch("/api/carts/{cartID}/lines/{lineID}", h.updateQuantity)
	r.Delete("/api/carts/{cartID}/lines/{lineID}", h.removeLine)
	r.Post("/api/carts/{cartID}/lines/{lineID}/discount", h.applyDiscount)

	// Delivery scheduling
	r.Get("/api/carts/{cartID}/delivery-dates", h.deliveryDates)
	r.Post("/api/carts/{cartID}/delivery-date", h.selectDeliveryDate)

	// Submission
	r.Post("/api/carts/{cartID}/submit", h.submitOrder)
	r.Get("/api/orders/{orderNumber}", h.getOrder)

	// Integration contract
	r.Get("/api/schema/order", h.orderSchema)

	return r
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	type response struct {
		Status string `json:"status"`
	}
	writeJSON(w, response{Status: "ok"})
}

// decodeJSON decodes the request body into v, writing an appropriate error
// response and returning false on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			writeError(w, r, "request body too large", "REQUEST_TOO_LARGE", http.StatusRequestEntityTooLarge)
			return false
		}
		writeError(w, r, "invalid JSON body: "+err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return false
	}
	return true
}
