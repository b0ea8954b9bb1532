package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/sirupsen/logrus"

	"listo/apperrors"
	"listo/logger"
	"listo/middlewares"
)

// MessageResponse is the body of every error response.
type MessageResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, MessageResponse{Message: message})
}

// decodeJSON reads the request body into dst. A missing body decodes as empty.
func decodeJSON(r *http.Request, dst any) bool {
	if r.Body == nil || r.ContentLength == 0 {
		return true
	}
	return json.NewDecoder(r.Body).Decode(dst) == nil
}

// writeError maps err to a status and client-safe message, logging the cause.
func writeError(w http.ResponseWriter, r *http.Request, log logrus.FieldLogger, handler string, err error) {
	status := apperrors.HTTPStatus(err)
	entry := logger.WithRequestID(log, middlewares.GetRequestID(r.Context())).WithFields(logrus.Fields{
		"component": "http_handler",
		"handler":   handler,
		"status":    status,
	})
	if status >= http.StatusInternalServerError {
		entry.WithError(err).Error("request failed")
	} else {
		entry.WithError(err).Warn("request rejected")
	}
	writeMessage(w, status, apperrors.PublicMessage(err))
}
