package response

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-ddd-lms/pkg/apperr"
)

type APIResponse[T any] struct {
	Status    int         `json:"status"`
	Timestamp time.Time   `json:"timestamp"`
	RequestID string      `json:"request_id"`
	Success   bool        `json:"success"`
	Message   string      `json:"message"`
	Data      T           `json:"data,omitempty"`
	Meta      interface{} `json:"meta,omitempty"`
	Error     interface{} `json:"error,omitempty"`
}

// ErrorBody is the error payload of a failed response.
type ErrorBody struct {
	Kind    apperr.Kind `json:"kind"`
	Code    string      `json:"code"`
	Details interface{} `json:"details,omitempty"`
}

// Success writes a success envelope and returns it.
func Success[T any](ctx *gin.Context, status int, data T, message string, meta interface{}) APIResponse[T] {
	if status == 0 {
		status = http.StatusOK
	}
	resp := APIResponse[T]{
		Status:    status,
		Timestamp: time.Now(),
		RequestID: ctx.GetString("request_id"),
		Success:   true,
		Message:   message,
		Data:      data,
		Meta:      meta,
	}
	ctx.JSON(status, resp)
	return resp
}

// Error writes an error envelope and aborts the handler chain.
func Error[T any](ctx *gin.Context, status int, message string, err interface{}) APIResponse[T] {
	if status == 0 {
		status = http.StatusBadRequest
	}
	resp := APIResponse[T]{
		Status:    status,
		Timestamp: time.Now(),
		RequestID: ctx.GetString("request_id"),
		Success:   false,
		Message:   message,
		Error:     err,
	}
	ctx.AbortWithStatusJSON(status, resp)
	return resp
}

// Fail maps err onto the error taxonomy. Internal causes are never exposed.
func Fail(ctx *gin.Context, err error) APIResponse[any] {
	e := apperr.From(err)
	msg := e.Message
	if e.Kind == apperr.KindInternal {
		msg = "internal server error"
		_ = ctx.Error(err)
	}
	return Error[any](ctx, e.HTTPStatus(), msg, ErrorBody{Kind: e.Kind, Code: e.Code})
}

// Invalid answers a request binding failure.
func Invalid(ctx *gin.Context, details interface{}) APIResponse[any] {
	return Error[any](ctx, http.StatusBadRequest, "invalid payload", ErrorBody{
		Kind:    apperr.KindValidation,
		Code:    "invalid_payload",
		Details: details,
	})
}
