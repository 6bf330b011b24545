package http

import (
	"fmt"
	"reflect"
	"strings"

	"chessql/internal/server/core"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

// validationMiddleware parses and validates JSON bodies of the write routes
func validationMiddleware(c *fiber.Ctx) error {
	method := c.Method()
	if method != fiber.MethodPost {
		return c.Next()
	}

	path := strings.TrimSuffix(c.Path(), "/")
	var requestType any

	switch {
	case strings.HasSuffix(path, "/games"):
		requestType = &core.IngestRequest{}
	case strings.HasSuffix(path, "/query"):
		requestType = &core.QueryRequest{}
	case strings.HasSuffix(path, "/accounts"):
		requestType = &core.AccountRequest{}
	default:
		return c.Next() // No validation for unknown endpoints
	}

	if err := c.BodyParser(requestType); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(core.ErrorResponse{
			Error:   "invalid request body",
			Code:    core.ErrInvalidRequest,
			Details: err.Error(),
		})
	}

	if errs := validate.Struct(requestType); errs != nil {
		return c.Status(fiber.StatusBadRequest).JSON(core.ErrorResponse{
			Error:   "validation failed",
			Code:    core.ErrInvalidRequest,
			Details: describeValidation(errs),
		})
	}

	c.Locals("validatedBody", requestType)
	c.Locals("validated", true)

	return c.Next()
}

func describeValidation(errs error) string {
	verrs, ok := errs.(validator.ValidationErrors)
	if !ok {
		return errs.Error()
	}

	var details strings.Builder
	for _, err := range verrs {
		if details.Len() > 0 {
			details.WriteString("; ")
		}
		switch err.Tag() {
		case "required":
			details.WriteString(fmt.Sprintf("%s is required", err.Field()))
		case "oneof":
			details.WriteString(fmt.Sprintf("%s must be one of [%s]", err.Field(), err.Param()))
		case "min":
			if err.Kind() == reflect.String {
				details.WriteString(fmt.Sprintf("%s must be at least %s characters", err.Field(), err.Param()))
			} else {
				details.WriteString(fmt.Sprintf("%s must be at least %s", err.Field(), err.Param()))
			}
		case "max":
			if err.Kind() == reflect.String {
				details.WriteString(fmt.Sprintf("%s must be at most %s characters", err.Field(), err.Param()))
			} else {
				details.WriteString(fmt.Sprintf("%s must be at most %s", err.Field(), err.Param()))
			}
		default:
			details.WriteString(fmt.Sprintf("%s failed %s validation", err.Field(), err.Tag()))
		}
	}
	return details.String()
}

// validatedBody returns the request parsed by validationMiddleware
func validatedBody[T any](c *fiber.Ctx) (T, error) {
	var zero T
	validated, ok := c.Locals("validated").(bool)
	if !ok || !validated {
		return zero, fmt.Errorf("validation bypass detected")
	}
	body, ok := c.Locals("validatedBody").(*T)
	if !ok || body == nil {
		return zero, fmt.Errorf("validation data missing")
	}
	return *body, nil
}
