package response

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	apperrors "civicsolve/pkg/errors"
	"civicsolve/pkg/logger"
)

type Response struct {
	Success    bool        `json:"success"`
	Message    string      `json:"message,omitempty"`
	Data       interface{} `json:"data,omitempty"`
	Pagination *Pagination `json:"pagination,omitempty"`
	Error      *ErrorInfo  `json:"error,omitempty"`
	Timestamp  string      `json:"timestamp"`
}

type ErrorInfo struct {
	Code    string      `json:"code"`
	Details interface{} `json:"details,omitempty"`
}

type Pagination struct {
	CurrentPage  int   `json:"currentPage"`
	TotalPages   int   `json:"totalPages"`
	TotalItems   int64 `json:"totalItems"`
	ItemsPerPage int   `json:"itemsPerPage"`
}

// exposeDetails controls whether wrapped error text reaches clients.
var exposeDetails = true

// Configure turns error details off for production deployments.
func Configure(production bool) {
	exposeDetails = !production
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}

func Success(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusOK, Response{
		Success:   true,
		Data:      data,
		Timestamp: now(),
	})
}

func SuccessWithMessage(c echo.Context, message string, data interface{}) error {
	return c.JSON(http.StatusOK, Response{
		Success:   true,
		Message:   message,
		Data:      data,
		Timestamp: now(),
	})
}

func Created(c echo.Context, message string, data interface{}) error {
	return c.JSON(http.StatusCreated, Response{
		Success:   true,
		Message:   message,
		Data:      data,
		Timestamp: now(),
	})
}

// Paginated writes a list with the pagination block; data is always an array, never null.
func Paginated(c echo.Context, items interface{}, p Pagination) error {
	return c.JSON(http.StatusOK, Response{
		Success:    true,
		Data:       items,
		Pagination: &p,
		Timestamp:  now(),
	})
}

func Error(c echo.Context, err error) error {
	var validationErr validator.ValidationErrors
	if errors.As(err, &validationErr) {
		return handleValidationError(c, validationErr)
	}

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		if appErr.Status >= http.StatusInternalServerError {
			logger.Error("%s %s: %v", c.Request().Method, c.Request().URL.Path, appErr)
		}
		return c.JSON(appErr.Status, Response{
			Success:   false,
			Message:   appErr.Message,
			Timestamp: now(),
			Error: &ErrorInfo{
				Code:    appErr.Code,
				Details: details(appErr.Err),
			},
		})
	}

	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		return c.JSON(httpErr.Code, Response{
			Success:   false,
			Message:   http.StatusText(httpErr.Code),
			Timestamp: now(),
			Error: &ErrorInfo{
				Code:    "HTTP_ERROR",
				Details: details(err),
			},
		})
	}

	logger.Error("%s %s: unexpected error: %v", c.Request().Method, c.Request().URL.Path, err)
	return c.JSON(http.StatusInternalServerError, Response{
		Success:   false,
		Message:   "An unexpected error occurred",
		Timestamp: now(),
		Error: &ErrorInfo{
			Code:    apperrors.CodeInternal,
			Details: details(err),
		},
	})
}

func details(err error) interface{} {
	if err == nil || !exposeDetails {
		return nil
	}
	return err.Error()
}

func handleValidationError(c echo.Context, validationErr validator.ValidationErrors) error {
	var missing []string
	var messages []string

	for _, err := range validationErr {
		field := lowerFirst(err.Field())
		param := err.Param()

		switch err.Tag() {
		case "required":
			missing = append(missing, field)
		case "min":
			messages = append(messages, field+" must be at least "+param)
		case "max":
			messages = append(messages, field+" must be at most "+param)
		case "len":
			messages = append(messages, field+" must be exactly "+param+" characters")
		case "oneof":
			messages = append(messages, field+" must be one of: "+param)
		case "email":
			messages = append(messages, field+" must be a valid email address")
		case "numeric":
			messages = append(messages, field+" must contain only digits")
		case "complaint_category":
			messages = append(messages, field+" is not a supported complaint category")
		case "latitude", "longitude":
			messages = append(messages, field+" must be a valid "+err.Tag())
		default:
			messages = append(messages, field+" is invalid")
		}
	}

	code := apperrors.CodeValidation
	if len(missing) > 0 {
		code = apperrors.CodeMissingField
		messages = append([]string{apperrors.MissingField(missing...).Message}, messages...)
	}

	message := "Invalid input data"
	if len(messages) > 0 {
		message = strings.Join(messages, "; ")
	}

	return c.JSON(http.StatusBadRequest, Response{
		Success:   false,
		Message:   message,
		Timestamp: now(),
		Error:     &ErrorInfo{Code: code},
	})
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
