package api

import (
	"net/http"

	"github.com/xiantools/sbt-sync/internal/handler"

	httpSwagger "github.com/swaggo/http-swagger"
)

// SetupRouter sets up router with handlers
func SetupRouter(h *handler.TraitHandler) http.Handler {
	mux := http.NewServeMux()

	// Swagger UI
	mux.HandleFunc("/swagger/", httpSwagger.WrapHandler)

	// Trait sync endpoints
	mux.HandleFunc("/wallet/connect", h.Connect)
	mux.HandleFunc("/traits/compare", h.Compare)
	mux.HandleFunc("/traits/chain", h.ChainTraits)
	mux.HandleFunc("/traits/update", h.Update)
	mux.HandleFunc("/status", h.Status)

	return mux
}
