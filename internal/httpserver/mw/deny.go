package mw

import (
	"encoding/json"
	"net/http"

	"github.com/MrSnakeDoc/skyroute/internal/logger"
)

// deny answers a rejected admin request with an AWS-style error body, so
// SDK clients pointed at the admin prefix by mistake get a readable error.
func deny(w http.ResponseWriter, r *http.Request, log logger.Logger, message string, fields ...logger.Field) {
	log.Debug("admin request denied", append(fields,
		logger.String("path", r.URL.Path),
		logger.String("reason", message))...)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusForbidden)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":   "AccessDenied",
		"message": message,
	})
}
