package utils

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/videohost/internal/types"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// SuccessResponse sends a standard success response
func SuccessResponse(c *fiber.Ctx, data interface{}, status int) error {
	return c.Status(status).JSON(data)
}

// ErrorResponse sends a standard error response
func ErrorResponse(c *fiber.Ctx, message string, status int, errorType string) error {
	return ErrorResponseWithErrors(c, message, status, errorType, nil)
}

// ErrorResponseWithErrors adds the individual failures, for validation errors
func ErrorResponseWithErrors(c *fiber.Ctx, message string, status int, errorType string, errs []string) error {
	body := fiber.Map{
		"status":    status,
		"message":   message,
		"ok":        false,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"url":       c.OriginalURL(),
		"type":      errorType,
	}
	if len(errs) > 0 {
		body["errors"] = errs
	}
	return c.Status(status).JSON(body)
}

// NotFoundResponse sends a 404 not found response
func NotFoundResponse(c *fiber.Ctx, message string) error {
	return ErrorResponse(c, message, fiber.StatusNotFound, "notfound")
}

// MutationSuccessResponse sends a success response for mutations. extra is merged into the body.
func MutationSuccessResponse(c *fiber.Ctx, message string, extra fiber.Map) error {
	body := fiber.Map{
		"message":   message,
		"ok":        true,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
	for k, v := range extra {
		body[k] = v
	}
	return c.Status(fiber.StatusOK).JSON(body)
}

// ToCustomError classifies any error into the response taxonomy. Unknown
// errors become a generic internal error that keeps the cause for logging.
func ToCustomError(err error) *types.CustomError {
	var ce *types.CustomError
	if errors.As(err, &ce) {
		return ce
	}

	var fe *fiber.Error
	if errors.As(err, &fe) {
		return &types.CustomError{Code: fe.Code, Message: fe.Message, Type: "http"}
	}

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return types.NotFound("Resource not found.")
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return types.Conflict("Resource already exists.")
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return types.Conflict("Resource is still referenced.")
	}

	return types.Internal("An unexpected error occurred.", err)
}

// HandleError writes the error envelope for err. Server errors are logged with
// their cause; the cause never reaches the client.
func HandleError(c *fiber.Ctx, err error, log logrus.FieldLogger) error {
	ce := ToCustomError(err)

	if ce.Code >= fiber.StatusInternalServerError && log != nil {
		log.WithFields(logrus.Fields{
			"requestId": c.GetRespHeader(fiber.HeaderXRequestID),
			"method":    c.Method(),
			"url":       c.OriginalURL(),
		}).WithError(err).Error(ce.Message)
	}

	return ErrorResponseWithErrors(c, ce.Message, ce.Code, ce.Type, ce.Errors)
}

// NewErrorHandler is the global fiber ErrorHandler. It renders whatever
// middleware or handlers return in the same envelope.
func NewErrorHandler(log logrus.FieldLogger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		return HandleError(c, err, log)
	}
}

// ErrorResponseStruct defines the schema for error responses
type ErrorResponseStruct struct {
	Status    int      `json:"status"`
	Message   string   `json:"message"`
	Ok        bool     `json:"ok"`
	Timestamp string   `json:"timestamp"`
	URL       string   `json:"url"`
	Type      string   `json:"type,omitempty"`
	Errors    []string `json:"errors,omitempty"`
}

// SuccessResponseStruct defines the schema for mutation success responses
type SuccessResponseStruct struct {
	Message   string `json:"message"`
	Ok        bool   `json:"ok"`
	Timestamp string `json:"timestamp"`
}
