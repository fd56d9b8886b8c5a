package handler

import (
	"net/http"

	"github.com/magolabs/aimaster/internal/catalog"
)

// AppConfig serves the public node-type catalog for mobile and frontend
// clients. No auth, no state.
func AppConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, catalog.AppConfig())
}
