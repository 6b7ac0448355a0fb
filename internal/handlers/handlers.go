package handlers

import (
	"net/http"

	"github.com/creators-HiveHQ/CREATORSHIVEHQLLC-sub000/internal/handlers/render"
)

// IsAlive allows to check if the API is alive
func IsAlive(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]interface{}{"alive": true})
}
