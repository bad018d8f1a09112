package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

// requestValidator validates decoded request bodies and reports fields by their JSON names.
type requestValidator struct {
	validate *validator.Validate
	trans    ut.Translator
}

func newRequestValidator() *requestValidator {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	enLocale := en.New()
	uni := ut.New(enLocale, enLocale)
	trans, _ := uni.GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(v, trans)
	return &requestValidator{validate: v, trans: trans}
}

// bindError carries per-field messages for a rejected body.
type bindError struct {
	fields map[string]string
}

func (e *bindError) Error() string {
	parts := make([]string, 0, len(e.fields))
	for _, msg := range e.fields {
		parts = append(parts, msg)
	}
	return "invalid request: " + strings.Join(parts, "; ")
}

// bind decodes the JSON body into dst and validates it.
func (rv *requestValidator) bind(r *http.Request, dst any) error {
	if err := decode(r, dst); err != nil {
		return err
	}
	return rv.check(dst)
}

func decode(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return &bindError{fields: map[string]string{"detail": fmt.Sprintf("malformed JSON: %v", err)}}
	}
	return nil
}

func (rv *requestValidator) check(dst any) error {
	err := rv.validate.Struct(dst)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return &bindError{fields: map[string]string{"detail": err.Error()}}
	}
	fields := make(map[string]string, len(ve))
	for _, fe := range ve {
		fields[fe.Field()] = fe.Translate(rv.trans)
	}
	return &bindError{fields: fields}
}

func writeBindError(w http.ResponseWriter, err error) {
	var be *bindError
	if errors.As(err, &be) {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request", Fields: be.fields})
		return
	}
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
}
