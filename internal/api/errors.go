package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"monu/internal/domain"
	"monu/internal/logging"
)

type errorDetail struct {
	Kind    domain.ErrorKind `json:"kind"`
	Message string           `json:"message"`
}

type errorResponse struct {
	Error errorDetail `json:"error"`
}

func statusFor(kind domain.ErrorKind) int {
	switch kind {
	case domain.KindInvalidInput:
		return http.StatusBadRequest
	case domain.KindOracleUnavailable:
		return http.StatusServiceUnavailable
	case domain.KindOracleMalformedOutput:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func errorDetailFor(err error) errorDetail {
	kind := domain.Classify(err)
	msg := err.Error()
	if kind == domain.KindInternal {
		msg = "internal server error"
	}
	return errorDetail{Kind: kind, Message: msg}
}

func respond(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, r *http.Request, err error) {
	detail := errorDetailFor(err)
	status := statusFor(detail.Kind)

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		status = http.StatusRequestEntityTooLarge
	}

	log := logging.FromContext(r.Context())
	if status >= http.StatusInternalServerError {
		log.Error("request failed", "kind", detail.Kind, "error", err)
	} else {
		log.Warn("request rejected", "kind", detail.Kind, "error", err)
	}
	respond(w, status, errorResponse{Error: detail})
}
