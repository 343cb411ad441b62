// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package boardserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

// validationItem is one entry of a 422 detail list.
type validationItem struct {
	Location []string `json:"loc"`
	Message  string   `json:"msg"`
}

func newValidator() *validator.Validate {
	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	validate.RegisterValidation("notblank", func(field validator.FieldLevel) bool {
		return strings.TrimSpace(field.Field().String()) != ""
	})
	return validate
}

func writeJSON(writer http.ResponseWriter, status int, data any) {
	writer.Header().Set("Content-Type", "application/json")
	writer.WriteHeader(status)
	json.NewEncoder(writer).Encode(data)
}

func writeError(writer http.ResponseWriter, status int, detail string) {
	writeJSON(writer, status, map[string]string{"detail": detail})
}

// readJSON decodes the body into target and validates it. On failure
// it writes the error response and returns false.
func (server *Server) readJSON(writer http.ResponseWriter, request *http.Request, target any) bool {
	request.Body = http.MaxBytesReader(writer, request.Body, maxBodyBytes)
	if err := json.NewDecoder(request.Body).Decode(target); err != nil {
		writeJSON(writer, http.StatusUnprocessableEntity, map[string]any{
			"detail": []validationItem{{Location: []string{"body"}, Message: "invalid JSON: " + err.Error()}},
		})
		return false
	}
	return server.check(writer, target, "body")
}

// check validates target and writes a 422 listing every failed field.
func (server *Server) check(writer http.ResponseWriter, target any, location string) bool {
	err := server.validate.Struct(target)
	if err == nil {
		return true
	}
	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		writeError(writer, http.StatusUnprocessableEntity, err.Error())
		return false
	}
	items := make([]validationItem, 0, len(fieldErrors))
	for _, fieldError := range fieldErrors {
		items = append(items, validationItem{
			Location: []string{location, fieldError.Field()},
			Message:  validationMessage(fieldError),
		})
	}
	writeJSON(writer, http.StatusUnprocessableEntity, map[string]any{"detail": items})
	return false
}

func validationMessage(fieldError validator.FieldError) string {
	switch fieldError.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fieldError.Field())
	case "notblank":
		return fmt.Sprintf("%s cannot be empty", fieldError.Field())
	case "email":
		return "value is not a valid email address"
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", fieldError.Field(), strings.ReplaceAll(fieldError.Param(), " ", ", "))
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fieldError.Field(), fieldError.Param())
	default:
		return fieldError.Error()
	}
}
