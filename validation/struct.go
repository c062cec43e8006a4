package validation

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	entranslations "github.com/go-playground/validator/v10/translations/en"
)

// StructValidator //

type StructValidatorOptions struct {
	// TagNames are consulted in order to name fields in violations.
	TagNames []string
	// Validate is an optional preconfigured engine. It receives the tag name function
	// and the English translations.
	Validate *validator.Validate
}

func DefaultStructValidatorOptions() *StructValidatorOptions {
	return &StructValidatorOptions{
		TagNames: []string{"json", "form"},
	}
}

// StructValidator checks `validate` struct tags and Validatable implementations.
type StructValidator struct {
	validate   *validator.Validate
	translator ut.Translator
}

func NewStructValidator(opts *StructValidatorOptions) (*StructValidator, error) {
	if opts == nil {
		opts = DefaultStructValidatorOptions()
	}

	validate := opts.Validate
	if validate == nil {
		validate = validator.New(validator.WithRequiredStructEnabled())
	}
	validate.RegisterTagNameFunc(tagNameFunc(opts.TagNames))

	locale := en.New()
	translator, _ := ut.New(locale, locale).GetTranslator(locale.Locale())
	if err := entranslations.RegisterDefaultTranslations(validate, translator); err != nil {
		return nil, err
	}

	return &StructValidator{
		validate:   validate,
		translator: translator,
	}, nil
}

var (
	defaultStructValidator     *StructValidator
	defaultStructValidatorOnce sync.Once
)

// DefaultStructValidator returns the shared validator used by extractors without an explicit one.
func DefaultStructValidator() *StructValidator {
	defaultStructValidatorOnce.Do(func() {
		structValidator, err := NewStructValidator(nil)
		if err != nil {
			panic(err)
		}
		defaultStructValidator = structValidator
	})
	return defaultStructValidator
}

// Engine exposes the underlying go-playground instance for advanced registrations.
func (v *StructValidator) Engine() *validator.Validate {
	return v.validate
}

// RegisterRule adds a custom tag. The message may reference the field as {0} and the
// tag parameter as {1}. Not safe for concurrent use with Validate.
func (v *StructValidator) RegisterRule(tag string, fn validator.Func, message string) error {
	if err := v.validate.RegisterValidation(tag, fn); err != nil {
		return err
	}
	return v.validate.RegisterTranslation(tag, v.translator,
		func(trans ut.Translator) error {
			return trans.Add(tag, message, true)
		},
		func(trans ut.Translator, fe validator.FieldError) string {
			msg, err := trans.T(tag, fe.Field(), fe.Param())
			if err != nil {
				return fe.Error()
			}
			return msg
		},
	)
}

func (v *StructValidator) Validate(ctx context.Context, value any) error {
	var violations Violations

	if root, ok := structRoot(value); ok {
		if err := v.validate.StructCtx(ctx, root.Interface()); err != nil {
			var validationErrors validator.ValidationErrors
			if !errors.As(err, &validationErrors) {
				return err
			}
			violations = append(violations, v.fromValidationErrors(reflect.Indirect(root).Type().Name(), validationErrors)...)
		}
	}

	if validatable, ok := asValidatable(value); ok {
		if err := validatable.Validate(); err != nil {
			violations = append(violations, v.fromError(value, err)...)
		}
	}

	if len(violations) == 0 {
		return nil
	}
	return violations
}

func (v *StructValidator) fromValidationErrors(root string, errs validator.ValidationErrors) Violations {
	violations := make(Violations, 0, len(errs))
	for _, fe := range errs {
		violations = append(violations, Violation{
			Field:   fieldPath(root, fe.Namespace()),
			Code:    fe.Tag(),
			Message: fe.Translate(v.translator),
		})
	}
	return violations
}

func (v *StructValidator) fromError(value any, err error) Violations {
	if violations, ok := AsViolations(err); ok {
		return violations
	}
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		var rootName string
		if root, ok := structRoot(value); ok {
			rootName = reflect.Indirect(root).Type().Name()
		}
		return v.fromValidationErrors(rootName, validationErrors)
	}
	return Violations{{Code: CodeInvalid, Message: err.Error()}}
}

func tagNameFunc(tagNames []string) validator.TagNameFunc {
	return func(field reflect.StructField) string {
		for _, tagName := range tagNames {
			name, _, _ := strings.Cut(field.Tag.Get(tagName), ",")
			if name != "" && name != "-" {
				return name
			}
		}
		return field.Name
	}
}

// structRoot dereferences value down to a single pointer to its struct, or the struct itself
// when it was passed by value.
func structRoot(value any) (reflect.Value, bool) {
	rv := reflect.ValueOf(value)
	for rv.Kind() == reflect.Pointer && rv.Elem().Kind() == reflect.Pointer {
		rv = rv.Elem()
	}
	if rv.Kind() == reflect.Pointer && rv.IsNil() {
		return reflect.Value{}, false
	}
	if reflect.Indirect(rv).Kind() != reflect.Struct {
		return reflect.Value{}, false
	}
	return rv, true
}

func asValidatable(value any) (Validatable, bool) {
	if validatable, ok := value.(Validatable); ok {
		return validatable, true
	}
	rv := reflect.ValueOf(value)
	if !rv.IsValid() || rv.Kind() == reflect.Pointer {
		return nil, false
	}
	ptr := reflect.New(rv.Type())
	ptr.Elem().Set(rv)
	validatable, ok := ptr.Interface().(Validatable)
	return validatable, ok
}

func fieldPath(root string, namespace string) string {
	if path, ok := strings.CutPrefix(namespace, root+"."); ok {
		return path
	}
	return namespace
}
