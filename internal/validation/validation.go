// Package validation decodes request bodies and reports every problem
// with them at once: unknown fields, wrongly typed values and failed
// schema rules all end up in one Errors list.
package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"sort"
	"strings"

	ozzo "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/labstack/echo/v4"
)

// ErrMalformedBody is returned when the body is not a JSON object.
var ErrMalformedBody = errors.New("malformed JSON body")

// maxBody bounds how much of a request body is read.
const maxBody = 1 << 20

// FieldError is one entry of the "errors" array in a 400 response.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Errors is a list of field problems.  It implements error.
type Errors []FieldError

func (e Errors) Error() string {
	parts := make([]string, len(e))
	for i, fe := range e {
		parts[i] = fe.Field + ": " + fe.Message
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Bind decodes the request body into dst and validates it.  Fields not
// declared by dst's json tags are rejected.  The returned error is nil,
// ErrMalformedBody or an Errors value.
func Bind(c echo.Context, dst ozzo.Validatable) error {
	body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxBody))
	if err != nil {
		return ErrMalformedBody
	}
	return Decode(body, dst)
}

// Decode is Bind without the echo context.
func Decode(body []byte, dst ozzo.Validatable) error {
	if len(bytes.TrimSpace(body)) == 0 {
		body = []byte("{}")
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return ErrMalformedBody
	}

	var errs Errors
	allowed := jsonFields(dst)
	for name := range raw {
		if _, ok := allowed[name]; !ok {
			errs = append(errs, FieldError{Field: name, Message: "property " + name + " should not exist"})
		}
	}

	// decode field by field so one bad value does not hide the others
	for name, value := range raw {
		idx, ok := allowed[name]
		if !ok {
			continue
		}
		field := reflect.ValueOf(dst).Elem().FieldByIndex(idx)
		if err := json.Unmarshal(value, field.Addr().Interface()); err != nil {
			errs = append(errs, FieldError{Field: name, Message: typeMessage(err)})
		}
	}

	if len(errs) == 0 {
		if err := dst.Validate(); err != nil {
			var verrs ozzo.Errors
			if !errors.As(err, &verrs) {
				return err
			}
			errs = append(errs, flatten("", verrs)...)
		}
	}

	if len(errs) > 0 {
		sort.SliceStable(errs, func(i, j int) bool { return errs[i].Field < errs[j].Field })
		return errs
	}
	return nil
}

// jsonFields maps the json names of dst's exported fields to their index.
func jsonFields(dst any) map[string][]int {
	t := reflect.TypeOf(dst)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	out := map[string][]int{}
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		name := f.Name
		if tag, ok := f.Tag.Lookup("json"); ok {
			tag, _, _ = strings.Cut(tag, ",")
			if tag == "-" {
				continue
			}
			if tag != "" {
				name = tag
			}
		}
		out[name] = f.Index
	}
	return out
}

func typeMessage(err error) string {
	var te *json.UnmarshalTypeError
	if errors.As(err, &te) {
		switch te.Type.Kind() {
		case reflect.String:
			return "must be a string"
		case reflect.Bool:
			return "must be a boolean"
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
			reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
			reflect.Float32, reflect.Float64:
			return "must be a number"
		}
		return fmt.Sprintf("must be a %s", te.Type.String())
	}
	return "invalid value"
}

func flatten(prefix string, verrs ozzo.Errors) Errors {
	var out Errors
	for name, err := range verrs {
		field := name
		if prefix != "" {
			field = prefix + "." + name
		}
		var nested ozzo.Errors
		if errors.As(err, &nested) {
			out = append(out, flatten(field, nested)...)
			continue
		}
		out = append(out, FieldError{Field: field, Message: err.Error()})
	}
	return out
}
