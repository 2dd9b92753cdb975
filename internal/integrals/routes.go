package integrals

import "github.com/go-chi/chi/v5"

// RegisterRoutes mounts the integrals endpoints onto the given router.
func RegisterRoutes(r chi.Router) {
	r.Post("/calculate", Calculate)
}
