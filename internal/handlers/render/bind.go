package render

import (
	"errors"
	"math"
	"net/http"
	"net/url"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

const maxFormMemory = 1 << 20

// BindForm fills string fields of T from urlencoded or multipart form by their 'form' tags and validates it.
// Writes 422 response and returns error if form can't be parsed or validated.
func BindForm[T any](w http.ResponseWriter, r *http.Request) (T, error) {
	var value T

	var err error
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		err = r.ParseMultipartForm(maxFormMemory)
	} else {
		err = r.ParseForm()
	}
	if err != nil {
		FieldErrors(w, []FieldError{{Field: "body", Message: "Invalid form data"}})
		return value, err
	}

	fillFromForm(&value, r.PostForm)

	err = validate.Struct(value)
	if err != nil {
		var errs validator.ValidationErrors
		if errors.As(err, &errs) {
			ValidationErrors(w, errs)
		} else {
			InternalError(w)
		}
		return value, err
	}

	return value, nil
}

func fillFromForm(dst any, form url.Values) {
	v := reflect.ValueOf(dst).Elem()
	if v.Kind() != reflect.Struct {
		return
	}

	t := v.Type()
	for i := range t.NumField() {
		name := t.Field(i).Tag.Get("form")
		if name == "" || name == "-" || t.Field(i).Type.Kind() != reflect.String {
			continue
		}
		v.Field(i).SetString(form.Get(name))
	}
}

// Query parameters reader that collects type errors instead of failing on the first one
type Query struct {
	values url.Values
	errs   []FieldError
}

func NewQuery(r *http.Request) *Query {
	return &Query{values: r.URL.Query()}
}

// Integer parameter or def if it is absent; present but empty is an error
func (q *Query) Int(name string, def int) int {
	if !q.values.Has(name) {
		return def
	}
	raw := q.values.Get(name)

	n, err := strconv.Atoi(raw)
	if err != nil {
		q.errs = append(q.errs, FieldError{Field: name, Message: "Input should be a valid integer"})
		return def
	}
	return n
}

// Float parameter or nil if it is absent; present but empty is an error
func (q *Query) Float(name string) *float64 {
	if !q.values.Has(name) {
		return nil
	}
	raw := q.values.Get(name)

	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		q.errs = append(q.errs, FieldError{Field: name, Message: "Input should be a valid number"})
		return nil
	}
	return &f
}

func (q *Query) String(name string) string {
	return q.values.Get(name)
}

// Valid writes 422 response if any parameter could not be read
func (q *Query) Valid(w http.ResponseWriter) bool {
	if len(q.errs) == 0 {
		return true
	}

	FieldErrors(w, q.errs)
	return false
}
