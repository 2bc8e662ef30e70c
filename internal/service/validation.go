package service

import (
	"reflect"

	"product-api/internal/model"

	"github.com/go-playground/validator/v10"
)

// newValidator returns a validator with nil-aware tags. Both run on nil
// pointers so a missing field can be told apart from an empty one.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("isnull", isNull, true)
	_ = v.RegisterValidation("notnull", func(fl validator.FieldLevel) bool {
		return !isNull(fl)
	}, true)
	return v
}

func isNull(fl validator.FieldLevel) bool {
	field := fl.Field()
	if !field.IsValid() {
		return true
	}
	switch field.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice:
		return field.IsNil()
	}
	return false
}

func (s *productService) validateCreate(product *model.Product) error {
	if product == nil {
		return model.ErrPayloadNotSet
	}
	if err := s.validate.Var(product.ID, "isnull"); err != nil {
		return model.ErrIDSetOnCreate
	}
	return nil
}

func (s *productService) validateUpdate(product *model.Product) error {
	if product == nil {
		return model.ErrPayloadNotSet
	}
	if err := s.validate.Var(product.Name, "notnull"); err != nil {
		return model.ErrNameNotSet
	}
	return nil
}
