package response

import (
	"errors"
	"net/http"
	"time"

	"account-ledger/pkg/apperror"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// SuccessResponse is the standard success envelope.
type SuccessResponse struct {
	Data      interface{} `json:"data"`
	RequestID string      `json:"request_id"`
	Timestamp string      `json:"timestamp"`
}

// ErrorResponse is the standard error envelope. ErrorKind is stable across
// releases and is what clients should branch on.
type ErrorResponse struct {
	ErrorKind string `json:"error_kind"`
	ErrorCode string `json:"error_code"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable,omitempty"`
	RequestID string `json:"request_id"`
	Timestamp string `json:"timestamp"`
}

// ErrorWithData is returned when a failed operation still produced a
// resource worth showing, such as a FAILED transfer record.
type ErrorWithData struct {
	ErrorResponse
	Data interface{} `json:"data"`
}

// OK sends a 200 response with data.
func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, SuccessResponse{
		Data:      data,
		RequestID: getRequestID(c),
		Timestamp: now(),
	})
}

// Created sends a 201 response with data.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, SuccessResponse{
		Data:      data,
		RequestID: getRequestID(c),
		Timestamp: now(),
	})
}

// Error sends an error response. It checks if err is an *apperror.AppError
// and maps it accordingly, otherwise returns 500.
func Error(c *gin.Context, err error) {
	status, body := errorBody(c, err)
	c.JSON(status, body)
}

// ErrorData sends an error response that also carries data.
func ErrorData(c *gin.Context, err error, data interface{}) {
	status, body := errorBody(c, err)
	c.JSON(status, ErrorWithData{ErrorResponse: body, Data: data})
}

func errorBody(c *gin.Context, err error) (int, ErrorResponse) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return appErr.HTTPStatus, ErrorResponse{
			ErrorKind: string(appErr.Kind),
			ErrorCode: appErr.Code,
			Message:   appErr.Message,
			Retryable: appErr.Kind.Retryable(),
			RequestID: getRequestID(c),
			Timestamp: now(),
		}
	}

	// Unknown error -> 500
	return http.StatusInternalServerError, ErrorResponse{
		ErrorKind: string(apperror.KindInternal),
		ErrorCode: "SYS_000",
		Message:   "Internal server error",
		RequestID: getRequestID(c),
		Timestamp: now(),
	}
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// getRequestID retrieves request ID from context, or generates one.
func getRequestID(c *gin.Context) string {
	if id, exists := c.Get("request_id"); exists {
		if s, ok := id.(string); ok {
			return s
		}
	}
	return uuid.New().String()
}
