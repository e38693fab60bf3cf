package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
)

const (
	ValidationErrorMessage = "Validation Error"
	InternalErrorMessage   = "Internal server error"
)

type successResponse struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

type ErrorBody struct {
	Code    int            `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

type errorResponse struct {
	Success bool      `json:"success"`
	Error   ErrorBody `json:"error"`
}

// One failed field in the 422 response
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Render data wrapped in success envelope
func JSON(w http.ResponseWriter, data any) {
	jsonWithStatus(w, successResponse{Success: true, Data: data}, http.StatusOK)
}

// Render error envelope
func Error(w http.ResponseWriter, message string, code int) {
	jsonWithStatus(w, errorResponse{Error: ErrorBody{Code: code, Message: message}}, code)
}

// Render generic 500, the cause must be logged by caller and never sent to client
func InternalError(w http.ResponseWriter) {
	Error(w, InternalErrorMessage, http.StatusInternalServerError)
}

// Render 422 with the list of failed fields
func FieldErrors(w http.ResponseWriter, errs []FieldError) {
	response := errorResponse{
		Error: ErrorBody{
			Code:    http.StatusUnprocessableEntity,
			Message: ValidationErrorMessage,
			Details: map[string]any{"errors": errs},
		},
	}

	jsonWithStatus(w, response, http.StatusUnprocessableEntity)
}

// Render ValidationErrors as 422
func ValidationErrors(w http.ResponseWriter, errs validator.ValidationErrors) {
	fields := make([]FieldError, 0, len(errs))

	// Create user-friendly error messages based on validation tag
	for _, fieldError := range errs {
		var message string
		switch fieldError.Tag() {
		case "required":
			message = "Field required"
		case "min":
			message = fmt.Sprintf("Value is too short (minimum %s)", fieldError.Param())
		case "max":
			message = fmt.Sprintf("Value is too long (maximum %s)", fieldError.Param())
		default:
			message = "Invalid value"
		}

		fields = append(fields, FieldError{Field: fieldError.Field(), Message: message})
	}

	FieldErrors(w, fields)
}

// jsonWithStatus sends data as json and enforces status code
func jsonWithStatus(w http.ResponseWriter, data any, code int) {
	buf := &bytes.Buffer{}
	enc := json.NewEncoder(buf)

	if err := enc.Encode(data); err != nil {
		http.Error(w, InternalErrorMessage, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_, _ = w.Write(buf.Bytes())
}
