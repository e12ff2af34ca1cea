package web

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"order-desk/internal/app"
	"order-desk/internal/core"
)

// createCart handles POST /api/carts.
// Body: { customer_code }
func (h *Handler) createCart(w http.ResponseWriter, r *http.Request) {
	var body struct {
		CustomerCode string `json:"customer_code"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}
	if body.CustomerCode == "" {
		writeError(w, r, "customer_code is required", "BAD_REQUEST", http.StatusBadRequest)
		return
	}

	result, err := h.svc.CreateCart(r.Context(), body.CustomerCode)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, result)
}

// getCart handles GET /api/carts/{cartID}.
func (h *Handler) getCart(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.GetCart(r.Context(), chi.URLParam(r, "cartID"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// addLine handles POST /api/carts/{cartID}/lines.
// Body: { product_code, quantity }
func (h *Handler) addLine(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ProductCode string `json:"product_code"`
		Quantity    int    `json:"quantity"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}
	if body.ProductCode == "" {
		writeError(w, r, "product_code is required", "BAD_REQUEST", http.StatusBadRequest)
		return
	}

	result, err := h.svc.AddLine(r.Context(), app.AddLineRequest{
		CartID:      chi.URLParam(r, "cartID"),
		ProductCode: body.ProductCode,
		Quantity:    body.Quantity,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, result)
}

// updateQuantity handles PATCH /api/carts/{cartID}/lines/{lineID}.
// Body: { quantity } — out-of-range values clamp, they do not error.
func (h *Handler) updateQuantity(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Quantity int `json:"quantity"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}

	result, err := h.svc.UpdateQuantity(r.Context(), chi.URLParam(r, "cartID"), chi.URLParam(r, "lineID"), body.Quantity)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// removeLine handles DELETE /api/carts/{cartID}/lines/{lineID}. Removal is
// always explicit; the frontend confirms with the user before calling.
func (h *Handler) removeLine(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.RemoveLine(r.Context(), chi.URLParam(r, "cartID"), chi.URLParam(r, "lineID"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// applyDiscount handles POST /api/carts/{cartID}/lines/{lineID}/discount.
// Body: { mode: "percent"|"amount", value }. A non-numeric value clamps to
// zero rather than failing, matching the recover-locally rule for inputs.
func (h *Handler) applyDiscount(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Mode  string `json:"mode"`
		Value string `json:"value"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}

	mode := core.DiscountMode(body.Mode)
	if mode != core.DiscountModePercent && mode != core.DiscountModeAmount {
		writeError(w, r, "mode must be \"percent\" or \"amount\"", "BAD_REQUEST", http.StatusBadRequest)
		return
	}

	value, err := decimal.NewFromString(body.Value)
	if err != nil {
		value = decimal.Zero
	}

	outcome, err := h.svc.ApplyDiscount(r.Context(), app.ApplyDiscountRequest{
		CartID: chi.URLParam(r, "cartID"),
		LineID: chi.URLParam(r, "lineID"),
		Mode:   mode,
		Value:  value,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, outcome)
}

// deliveryDates handles GET /api/carts/{cartID}/delivery-dates. An optional
// ?limit= truncates the list, mainly for compact frontend previews.
func (h *Handler) deliveryDates(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.DeliveryDates(r.Context(), chi.URLParam(r, "cartID"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, convErr := strconv.Atoi(v); convErr == nil && n >= 0 && n < len(result.Dates) {
			result.Dates = result.Dates[:n]
		}
	}
	writeJSON(w, result)
}

// selectDeliveryDate handles POST /api/carts/{cartID}/delivery-date.
// Body: { date: "YYYY-MM-DD" }
func (h *Handler) selectDeliveryDate(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Date string `json:"date"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}
	if body.Date == "" {
		writeError(w, r, "date is required", "BAD_REQUEST", http.StatusBadRequest)
		return
	}

	result, err := h.svc.SelectDeliveryDate(r.Context(), chi.URLParam(r, "cartID"), body.Date)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// submitOrder handles POST /api/carts/{cartID}/submit.
func (h *Handler) submitOrder(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.SubmitOrder(r.Context(), chi.URLParam(r, "cartID"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, result)
}

// getOrder handles GET /api/orders/{orderNumber}.
func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.GetOrder(r.Context(), chi.URLParam(r, "orderNumber"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}
