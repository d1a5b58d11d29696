// internal/server/validate.go
//
// Listen-address checks.
//
// Context
// -------
// Settings loading only coerces types, so an App record can carry a PORT
// that no socket accepts.  New checks the bind address with
// go-playground/validator before building the server.  Field names are
// reported by their `env` tag, so a failure names the key an operator has to
// fix rather than the Go field.
//
// Notes
// -----
//   • Oxford commas, two spaces after periods.

package server

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/AdeptTravel/adept-settings/internal/config"
)

//
// validator instance (package-level singleton)
//

var v = newValidator()

func newValidator() *validator.Validate {
	val := validator.New(validator.WithRequiredStructEnabled())
	val.RegisterTagNameFunc(func(f reflect.StructField) string {
		return strings.SplitN(f.Tag.Get("env"), ",", 2)[0]
	})
	return val
}

// listen is the part of App that must fit a TCP socket.
type listen struct {
	Host string `env:"HOST"`
	Port int    `env:"PORT" validate:"gte=0,lte=65535"`
}

// checkListen returns a *config.Error for the first failed rule.
func checkListen(cfg config.App) error {
	err := v.Struct(listen{Host: cfg.Host, Port: cfg.Port})
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return &config.Error{Record: "app", Err: err}
	}
	fe := verrs[0]
	return &config.Error{
		Record: "app",
		Field:  fe.Field(),
		Err:    fmt.Errorf("%w: value %v fails %q", config.ErrMalformed, fe.Value(), ruleOf(fe)),
	}
}

func ruleOf(fe validator.FieldError) string {
	if fe.Param() == "" {
		return fe.Tag()
	}
	return fe.Tag() + "=" + fe.Param()
}
