// Package validator wraps go-playground/validator with the tags request DTOs use.
package validator

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
)

const (
	minMobileDigits = 10
	maxMobileDigits = 15
)

var customTags = map[string]validator.Func{
	"mobile": func(fl validator.FieldLevel) bool { return IsMobileNumber(fl.Field().String()) },
}

type Validator struct {
	v *validator.Validate
}

func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	for tag, fn := range customTags {
		if err := v.RegisterValidation(tag, fn); err != nil {
			panic("validator: register " + tag + ": " + err.Error())
		}
	}
	return &Validator{v: v}
}

func (val *Validator) Struct(s any) error {
	return val.v.Struct(s)
}

// IsMobileNumber accepts a bare run of ASCII digits long enough for a
// national number and short enough for E.164 with country code.
func IsMobileNumber(s string) bool {
	s = strings.TrimSpace(s)
	if len(s) < minMobileDigits || len(s) > maxMobileDigits {
		return false
	}
	return strings.IndexFunc(s, func(r rune) bool { return r < '0' || r > '9' }) < 0
}

// FieldMessages maps each failing field to the rule it broke, e.g.
// "DisplayName": "required" or "Comments": "max=500".
func FieldMessages(err error) map[string]string {
	out := map[string]string{}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return out
	}
	for _, fe := range verrs {
		rule := fe.Tag()
		if p := fe.Param(); p != "" {
			rule += "=" + p
		}
		out[fe.Field()] = rule
	}
	return out
}
