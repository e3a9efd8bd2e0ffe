package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type ValidationErrorDetail struct {
	Field    string      `json:"field"`
	Message  string      `json:"message"`
	Expected string      `json:"expected"`
	Received interface{} `json:"received"`
}

type ValidationErrorData struct {
	Errors []ValidationErrorDetail `json:"errors"`
}

// BindAndValidate binds the JSON body into obj. On failure it writes a 400
// envelope listing the offending fields and returns false.
func BindAndValidate(c *gin.Context, obj interface{}) bool {
	err := c.ShouldBindJSON(obj)
	if err == nil {
		return true
	}

	var details []ValidationErrorDetail
	var validationErrs validator.ValidationErrors
	var typeErr *json.UnmarshalTypeError

	switch {
	case errors.As(err, &validationErrs):
		for _, e := range validationErrs {
			field := jsonFieldName(obj, e.StructField())
			detail := ValidationErrorDetail{
				Field:    field,
				Message:  fmt.Sprintf("Field validation for '%s' failed on the '%s' tag", field, e.Tag()),
				Expected: e.Param(),
				Received: e.Value(),
			}
			if detail.Expected == "" {
				detail.Expected = e.Tag()
			}
			switch e.Tag() {
			case "required":
				detail.Message = fmt.Sprintf("Field '%s' is required", field)
				detail.Expected = "not null"
			case "max":
				detail.Message = fmt.Sprintf("Field '%s' must be at most %s characters long", field, e.Param())
				detail.Expected = fmt.Sprintf("max length %s", e.Param())
			case "oneof":
				detail.Message = fmt.Sprintf("Field '%s' must be one of [%s]", field, e.Param())
			}
			details = append(details, detail)
		}
	case errors.As(err, &typeErr):
		details = append(details, ValidationErrorDetail{
			Field:    typeErr.Field,
			Message:  fmt.Sprintf("Field '%s' has invalid type", typeErr.Field),
			Expected: typeErr.Type.String(),
			Received: typeErr.Value,
		})
	default:
		details = append(details, ValidationErrorDetail{
			Field:    "body",
			Message:  "Malformed JSON or invalid request body",
			Expected: "valid JSON",
			Received: "invalid",
		})
	}

	c.AbortWithStatusJSON(http.StatusBadRequest, NewResponse(
		http.StatusBadRequest,
		"Invalid request parameters",
		ValidationErrorData{Errors: details},
	))
	return false
}

func jsonFieldName(obj interface{}, fieldName string) string {
	t := reflect.TypeOf(obj)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return fieldName
	}
	if f, ok := t.FieldByName(fieldName); ok {
		if tag := f.Tag.Get("json"); tag != "" && tag != "-" {
			for i, r := range tag {
				if r == ',' {
					return tag[:i]
				}
			}
			return tag
		}
	}
	return fieldName
}
