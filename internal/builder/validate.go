package builder

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/sourceplane/jobconf/internal/model"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// checkStruct runs the struct tag constraints of s and reports the first
// violation as a ConfigError below path.
func checkStruct(path string, s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return model.Wrap(path, err, "invalid fields")
	}
	fe := verrs[0]
	at := model.JoinPath(path, fe.Field())
	switch fe.Tag() {
	case "required":
		return model.Errorf(path, "missing required field %s", fe.Field())
	case "min":
		return model.Errorf(at, "must be at least %s", fe.Param())
	case "max":
		return model.Errorf(at, "must be at most %s", fe.Param())
	case "oneof":
		return model.Errorf(at, "must be one of %s", strings.Join(strings.Fields(fe.Param()), ", "))
	case "email":
		return model.Errorf(at, "must be an email address")
	}
	if strings.HasPrefix(fe.Tag(), "hostname") {
		return model.Errorf(at, "must be a hostname or IP address")
	}
	return model.Errorf(at, "failed %s constraint", fe.Tag())
}
