package chi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	entranslations "github.com/go-playground/validator/v10/translations/en"
	"github.com/oapi-codegen/runtime"
)

const maxBodyBytes = 1 << 20

var (
	validateOnce sync.Once
	validate     *validator.Validate
	translator   ut.Translator
)

// requestValidator returns the validator singleton.
// Messages name fields by their json tag.
func requestValidator() (*validator.Validate, ut.Translator) {
	validateOnce.Do(func() {
		enLoc := en.New()
		trans, _ := ut.New(enLoc, enLoc).GetTranslator("en")

		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			tag := fld.Tag.Get("json")
			if tag == "-" || tag == "" {
				return fld.Name
			}
			if idx := strings.Index(tag, ","); idx >= 0 {
				tag = tag[:idx]
			}
			return tag
		})
		_ = entranslations.RegisterDefaultTranslations(v, trans)

		validate, translator = v, trans
	})
	return validate, translator
}

// errBind marks request decoding and validation failures.
var errBind = errors.New("bad request")

// decodeJSON reads a size-limited JSON body into dst and validates it.
// Unknown fields are rejected so typos in filter names do not silently widen a search.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: empty body", errBind)
		}
		return fmt.Errorf("%w: invalid JSON: %w", errBind, err)
	}
	if dec.More() {
		return fmt.Errorf("%w: unexpected trailing data", errBind)
	}
	return validateStruct(dst)
}

// bindQuery binds form-style query parameters into dst and validates it.
func bindQuery(r *http.Request, dst any, params ...string) error {
	q := r.URL.Query()
	rv := reflect.ValueOf(dst).Elem()
	for _, name := range params {
		field := fieldByJSONTag(rv, name)
		if !field.IsValid() {
			return fmt.Errorf("%w: unknown query parameter %q", errBind, name)
		}
		if err := runtime.BindQueryParameter("form", true, false, name, q, field.Addr().Interface()); err != nil {
			return fmt.Errorf("%w: %w", errBind, err)
		}
	}
	return validateStruct(dst)
}

func validateStruct(dst any) error {
	v, trans := requestValidator()
	err := v.Struct(dst)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return fmt.Errorf("%w: %s", errBind, verrs[0].Translate(trans))
	}
	return fmt.Errorf("%w: %w", errBind, err)
}

func fieldByJSONTag(rv reflect.Value, name string) reflect.Value {
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		tag := rt.Field(i).Tag.Get("json")
		if idx := strings.Index(tag, ","); idx >= 0 {
			tag = tag[:idx]
		}
		if tag == name {
			return rv.Field(i)
		}
	}
	return reflect.Value{}
}
