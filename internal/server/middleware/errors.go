package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/iudanet/mapboard/pkg/api"
)

// writeError отправляет ошибку в том же формате, что и handlers
func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(api.ErrorResponse{Error: msg})
}
