package pkg

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/simp-lee/amcham/internal/domain"
)

// Response is the standard JSON envelope for API responses.
type Response struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

// ValidationErrorResponse is the JSON envelope for validation error responses.
type ValidationErrorResponse struct {
	Code    int               `json:"code"`
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors"`
}

// Success sends a 200 JSON response with the given data.
func Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, Response{
		Code:    http.StatusOK,
		Message: "success",
		Data:    data,
	})
}

// LoginPath is where clients without a valid session are sent.
const LoginPath = "/login"

// fieldErrorer is implemented by form validation failures.
type fieldErrorer interface {
	FieldErrors() map[string]string
}

// Created sends a 201 JSON response with the created record.
func Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, Response{
		Code:    http.StatusCreated,
		Message: "created",
		Data:    data,
	})
}

// Error sends a JSON error response. The status follows
// domain.HTTPStatusCode and the message is the normalized backend message.
// Authentication failures become a login redirect and form failures a
// ValidationErrorResponse.
func Error(c *gin.Context, err error) {
	var fe fieldErrorer
	if errors.As(err, &fe) {
		c.JSON(http.StatusBadRequest, ValidationErrorResponse{
			Code:    http.StatusBadRequest,
			Message: "validation error",
			Errors:  ruleMessages(fe.FieldErrors()),
		})
		return
	}

	status := domain.HTTPStatusCode(err)
	if domain.IsAuthFailure(err) {
		LoginRedirect(c, status)
		return
	}

	msg := "internal error"
	var apiErr *domain.APIError
	switch {
	case errors.As(err, &apiErr):
		msg = apiErr.Message
	case status == http.StatusRequestTimeout:
		msg = "request timeout"
	}

	c.JSON(status, Response{
		Code:    status,
		Message: msg,
		Data:    nil,
	})
}

// LoginRedirect aborts the request and sends the client to LoginPath:
// browser navigations get a 302, API calls status (401 when 0) with
// {"redirect": "/login"} as data.
func LoginRedirect(c *gin.Context, status int) {
	if strings.Contains(strings.ToLower(c.GetHeader("Accept")), "text/html") {
		c.Redirect(http.StatusFound, LoginPath)
		c.Abort()
		return
	}
	if status == 0 {
		status = http.StatusUnauthorized
	}
	msg := "unauthorized"
	if status == http.StatusForbidden {
		msg = "forbidden"
	}
	c.AbortWithStatusJSON(status, Response{
		Code:    status,
		Message: msg,
		Data:    gin.H{"redirect": LoginPath},
	})
}

// List sends a 200 JSON response carrying a list view state.
func List(c *gin.Context, result any) {
	c.JSON(http.StatusOK, Response{
		Code:    http.StatusOK,
		Message: "success",
		Data:    result,
	})
}

// ValidationError sends a 400 JSON response with per-field validation error details.
// It detects validator.ValidationErrors and extracts field-level messages.
func ValidationError(c *gin.Context, err error) {
	validationErrorWithType(c, err, nil)
}

// BindAndValidate binds the request body to obj and validates it.
// On failure it automatically sends a ValidationError response and returns false.
// Because obj is available, JSON struct tags are used for field names when possible.
// Usage in handlers:
//
//	if !pkg.BindAndValidate(c, &req) { return }
func BindAndValidate(c *gin.Context, obj any) bool {
	if err := c.ShouldBind(obj); err != nil {
		validationErrorWithType(c, err, obj)
		return false
	}
	return true
}

// validationErrorWithType sends a 400 validation error response.
// When obj is non-nil, it reflects on the struct to prefer JSON tag names.
func validationErrorWithType(c *gin.Context, err error, obj any) {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		// Not a validation error; send a generic bad request.
		c.JSON(http.StatusBadRequest, Response{
			Code:    http.StatusBadRequest,
			Message: "bad request",
			Data:    nil,
		})
		return
	}

	// Build a struct-field → json-tag map when the concrete type is available.
	jsonTags := buildJSONTagMap(obj)

	fieldErrors := make(map[string]string, len(ve))
	for _, fe := range ve {
		name := fe.Field()
		if tag, ok := jsonTags[fe.StructField()]; ok {
			name = tag
		} else {
			name = strings.ToLower(name)
		}
		fieldErrors[name] = RuleMessage(fe.Tag(), fe.Param())
	}

	c.JSON(http.StatusBadRequest, ValidationErrorResponse{
		Code:    http.StatusBadRequest,
		Message: "validation error",
		Errors:  fieldErrors,
	})
}

// buildJSONTagMap returns a map from struct field name to its JSON tag name.
// If obj is nil or not a struct (pointer), it returns an empty map.
func buildJSONTagMap(obj any) map[string]string {
	if obj == nil {
		return nil
	}
	t := reflect.TypeOf(obj)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil
	}
	m := make(map[string]string, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		tag := f.Tag.Get("json")
		if name := parseJSONTagName(tag); name != "" {
			m[f.Name] = name
		}
	}
	return m
}

// parseJSONTagName extracts the field name from a JSON struct tag value.
func parseJSONTagName(tag string) string {
	if tag == "" || tag == "-" {
		return ""
	}
	name, _, _ := strings.Cut(tag, ",")
	if name == "" || name == "-" {
		return ""
	}
	return name
}

// RuleMessage returns the user-facing message of a failed validator rule.
func RuleMessage(tag, param string) string {
	switch tag {
	case "required":
		return "This field is required"
	case "email":
		return "Must be a valid email address"
	case "min":
		return fmt.Sprintf("Must be at least %s characters", param)
	case "max":
		return fmt.Sprintf("Must be at most %s characters", param)
	case "numeric", "number":
		return "Must be a number"
	case "weburl", "url":
		return "Must be a valid web address"
	case "oneof":
		return "Must be one of: " + param
	case "datetime":
		return "Must be a date formatted as " + param
	default:
		return "Invalid value"
	}
}

// ruleMessages converts "tag" or "tag=param" entries into messages.
func ruleMessages(rules map[string]string) map[string]string {
	out := make(map[string]string, len(rules))
	for field, rule := range rules {
		tag, param, _ := strings.Cut(rule, "=")
		out[field] = RuleMessage(tag, param)
	}
	return out
}
