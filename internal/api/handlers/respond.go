package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/dealflow-studio/engine/internal/api/middleware"
	"github.com/dealflow-studio/engine/internal/api/types"
	appErr "github.com/dealflow-studio/engine/pkg/errors"
	"github.com/dealflow-studio/engine/pkg/logger"
	"github.com/dealflow-studio/engine/pkg/telemetry"
)

const maxBodyBytes = 1 << 20

// Validator checks decoded request bodies.
type Validator interface {
	Struct(any) error
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErrorStr(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, types.ErrorResponse{Error: msg})
}

// decodeJSON reads a single JSON object into dst and validates it. Unknown
// fields, trailing data and oversized bodies are rejected.
func decodeJSON(w http.ResponseWriter, r *http.Request, v Validator, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return decodeError(err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return appErr.New(appErr.CodeInvalid, "Request body must contain a single JSON object")
	}
	if v != nil {
		return v.Struct(dst)
	}
	return nil
}

func decodeError(err error) error {
	var (
		syntaxErr *json.SyntaxError
		typeErr   *json.UnmarshalTypeError
		maxErr    *http.MaxBytesError
	)
	switch {
	case errors.Is(err, io.EOF):
		return appErr.New(appErr.CodeInvalid, "Request body is required")
	case errors.As(err, &syntaxErr), errors.Is(err, io.ErrUnexpectedEOF):
		return appErr.Wrap(err, appErr.CodeInvalid, "Invalid JSON in request body")
	case errors.As(err, &typeErr):
		field := typeErr.Field
		if field == "" {
			return appErr.Wrap(err, appErr.CodeInvalid, "Request body must be a JSON object")
		}
		return &appErr.AppError{Code: appErr.CodeInvalid, Field: field, Message: field + " has the wrong type", Err: err}
	case errors.As(err, &maxErr):
		return appErr.Wrap(err, appErr.CodeInvalid, "Request body is too large")
	default:
		// json reports unknown fields as `json: unknown field "x"`
		return appErr.Wrap(err, appErr.CodeInvalid, "Invalid request body: "+trimJSONPrefix(err.Error()))
	}
}

func trimJSONPrefix(s string) string {
	const prefix = "json: "
	if len(s) > len(prefix) && s[:len(prefix)] == prefix {
		return s[len(prefix):]
	}
	return s
}

// fail writes err as a JSON error. Client errors carry their own message;
// anything else is logged and reported, and the client sees only fallback.
func fail(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	ae, _ := appErr.As(err)
	switch appErr.CodeOf(err) {
	case appErr.CodeInvalid:
		writeErrorStr(w, http.StatusBadRequest, ae.Message)
	case appErr.CodeUnauthorized:
		writeErrorStr(w, http.StatusUnauthorized, "Unauthorized")
	case appErr.CodeNotFound:
		writeErrorStr(w, http.StatusNotFound, ae.Message)
	case appErr.CodeConflict:
		writeErrorStr(w, http.StatusConflict, ae.Message)
	default:
		reqID := middleware.GetRequestID(r.Context())
		logger.L().Error(fallback,
			zap.String("id", reqID),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("user_id", middleware.GetUserID(r)),
			zap.Error(err))
		telemetry.CaptureError(r.Context(), err, map[string]string{"request_id": reqID, "path": r.URL.Path})
		writeErrorStr(w, http.StatusInternalServerError, fallback)
	}
}
