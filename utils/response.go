package utils

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

func ResponseWithJson(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("failed to write response", "error", err)
	}
}

func ResponseWithError(w http.ResponseWriter, status int, message string) {
	ResponseWithJson(w, status, map[string]string{"error": message})
}
