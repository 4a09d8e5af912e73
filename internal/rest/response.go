package rest

import (
	"encoding/json"
	"errors"
	"net/http"

	"boutique-be/internal/apperr"
	"boutique-be/internal/logger"

	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

type errorBody struct {
	Message   string `json:"message"`
	Available *int   `json:"available,omitempty"`
	Detail    string `json:"detail,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.L().Warn("failed to encode response", zap.Error(err))
	}
}

// writeError maps err onto the JSON error envelope. Internal causes are
// logged and never returned; provider details are shown outside production.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var ae *apperr.Error
	if !errors.As(err, &ae) {
		ae = apperr.ErrInternal
	}

	status := apperr.HTTPStatus(ae.Kind)
	log := logger.FromCtx(r.Context()).With(
		zap.String("layer", "rest"),
		zap.String("path", r.URL.Path),
	)

	body := errorBody{Message: ae.Message, Available: ae.Available}
	if ae.Kind == apperr.KindInternal {
		body.Message = apperr.ErrInternal.Message
		log.Error("request failed", zap.Error(err))
	} else {
		log.Debug("request rejected", zap.String("kind", ae.Kind.String()), zap.Error(err))
	}
	if !h.production && ae.Detail != "" {
		body.Detail = ae.Detail
	}

	writeJSON(w, status, body)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return apperr.Wrap(apperr.ErrInvalidBody, err)
	}
	return nil
}
