package httpapi

import (
	"net/http"

	"github.com/roach88/reflectd/internal/reflection"
)

// envelope is the uniform response shape. Successful responses carry
// data; failures carry the error block instead.
type envelope struct {
	Ok    bool           `json:"ok"`
	Data  any            `json:"data,omitempty"`
	Error *errorEnvelope `json:"error,omitempty"`
}

type errorEnvelope struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

func okEnvelope(data any) envelope {
	return envelope{Ok: true, Data: data}
}

func errEnvelope(code reflection.ErrorCode, message, field string) envelope {
	return envelope{Ok: false, Error: &errorEnvelope{
		Code:    string(code),
		Message: message,
		Field:   field,
	}}
}

// statusFor maps domain error codes onto HTTP status codes.
func statusFor(code reflection.ErrorCode) int {
	switch code {
	case reflection.CodeValidation:
		return http.StatusBadRequest
	case reflection.CodeNotFound:
		return http.StatusNotFound
	case reflection.CodeSynthesisUnavailable:
		return http.StatusBadGateway
	case reflection.CodeStoreUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

type saveRequest struct {
	UserID     string  `json:"user_id"`
	ThreadID   string  `json:"thread_id"`
	SessionID  string  `json:"session_id"`
	SlideID    string  `json:"slide_id"`
	Content    string  `json:"content"`
	DriftScore float64 `json:"drift_score"`
	Seal       string  `json:"seal"`
}

type saveResponse struct {
	ID           int64   `json:"id"`
	SlideID      string  `json:"slide_id"`
	CreatedAt    string  `json:"created_at"`
	DriftIn      float64 `json:"drift_in"`
	DriftClamped float64 `json:"drift_clamped"`
	DriftStatus  string  `json:"drift_status"`
}

type scanRequest struct {
	UserID         string `json:"user_id"`
	IncludeSummary bool   `json:"include_summary"`
}

type contextScanRequest struct {
	UserID         string `json:"user_id"`
	ThreadID       string `json:"thread_id"`
	SessionID      string `json:"session_id"`
	Limit          int    `json:"limit"`
	IncludeSummary bool   `json:"include_summary"`
}

type classifyRequest struct {
	DriftScore float64  `json:"drift_score"`
	Clamp      *float64 `json:"clamp,omitempty"`
	Warn       *float64 `json:"warn,omitempty"`
	Stop       *float64 `json:"stop,omitempty"`
}

type healthResponse struct {
	Ok          bool   `json:"ok"`
	DBConnected bool   `json:"db_connected"`
	TS          string `json:"ts"`
}
