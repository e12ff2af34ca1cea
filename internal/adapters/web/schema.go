package web

import (
	"net/http"
	"sync"

	"github.com/invopop/jsonschema"

	"order-desk/internal/core"
)

var (
	orderSchemaOnce sync.Once
	orderSchemaJSON *jsonschema.Schema
)

// orderSchema handles GET /api/schema/order: the JSON Schema of the
// submitted-order payload, so integrating frontends can validate against
// the contract instead of reverse-engineering responses.
func (h *Handler) orderSchema(w http.ResponseWriter, r *http.Request) {
	orderSchemaOnce.Do(func() {
		reflector := jsonschema.Reflector{ExpandedStruct: true}
		orderSchemaJSON = reflector.Reflect(&core.SubmittedOrder{})
	})
	writeJSON(w, orderSchemaJSON)
}
