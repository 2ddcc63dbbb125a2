package middleware

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/stockroom/backend/internal/apperror"
	"github.com/stockroom/backend/internal/models"
)

const serverErrorMessage = "Server Error"

// ErrorHandler is the single place that turns a failure into a response.
// Handlers return errors; they never write error bodies themselves.
type ErrorHandler struct {
	logger *zap.Logger
}

func NewErrorHandler(logger *zap.Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// Translate picks the status code and body for err.
func Translate(err error) (int, models.APIResponse) {
	appErr, ok := apperror.As(err)
	if !ok {
		return http.StatusInternalServerError, models.NewErrorResponse(serverErrorMessage)
	}

	switch appErr.Kind {
	case apperror.KindInvalidInput:
		return http.StatusBadRequest, models.NewValidationErrorResponse(appErr.Fields)
	case apperror.KindNotFound:
		return http.StatusNotFound, models.NewErrorResponse(fmt.Sprintf("Resource not found with id of %s", appErr.Value))
	case apperror.KindConflict:
		return http.StatusBadRequest, models.NewErrorResponse("Duplicate field value entered")
	case apperror.KindValidation:
		messages := make([]string, 0, len(appErr.Fields))
		for _, f := range appErr.Fields {
			messages = append(messages, f.Message)
		}
		return http.StatusBadRequest, models.NewErrorResponse(strings.Join(messages, ","))
	case apperror.KindUnauthorized:
		return http.StatusUnauthorized, models.NewErrorResponse(appErr.Message)
	case apperror.KindStore:
		return http.StatusInternalServerError, models.NewErrorResponse(serverErrorMessage)
	case apperror.KindOther:
		status := appErr.Status
		if status == 0 {
			status = http.StatusInternalServerError
		}
		message := appErr.Message
		if message == "" {
			message = serverErrorMessage
		}
		return status, models.NewErrorResponse(message)
	}
	return http.StatusInternalServerError, models.NewErrorResponse(serverErrorMessage)
}

// Handle logs err and writes the translated response.
func (h *ErrorHandler) Handle(w http.ResponseWriter, r *http.Request, err error) {
	status, body := Translate(err)

	fields := []zap.Field{
		zap.Error(err),
		zap.Int("status", status),
		zap.String("path", r.URL.Path),
		zap.String("method", r.Method),
		zap.String("request_id", middleware.GetReqID(r.Context())),
	}
	if appErr, ok := apperror.As(err); ok {
		fields = append(fields, zap.Stringer("kind", appErr.Kind))
	}

	if status >= http.StatusInternalServerError {
		h.logger.Error("Request failed", fields...)
	} else {
		h.logger.Warn("Request error", fields...)
	}

	writeJSON(w, status, body)
}

// Recoverer turns a panic into a logged 500 with the usual error body.
func (h *ErrorHandler) Recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				h.logger.Error("Panic recovered",
					zap.Any("panic", rec),
					zap.String("path", r.URL.Path),
					zap.String("method", r.Method),
					zap.String("request_id", middleware.GetReqID(r.Context())),
				)
				writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse(serverErrorMessage))
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
