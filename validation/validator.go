package validation

import (
	"context"
)

const (
	CodeInvalid = "invalid"
	CodeSchema  = "schema"
)

// Validator checks a decoded value. It returns nil for valid values, Violations for
// rule failures, and any other error when the check itself could not run.
type Validator interface {
	Validate(ctx context.Context, value any) error
}

type ValidatorFunc func(ctx context.Context, value any) error

func (f ValidatorFunc) Validate(ctx context.Context, value any) error {
	return f(ctx, value)
}

// Validatable is implemented by types that carry their own cross-field rules.
type Validatable interface {
	Validate() error
}

// Chain runs every validator and collects all violations. The first non-violation
// error aborts the chain.
func Chain(validators ...Validator) Validator {
	return ValidatorFunc(func(ctx context.Context, value any) error {
		var collected Violations
		for _, validator := range validators {
			if validator == nil {
				continue
			}
			err := validator.Validate(ctx, value)
			if err == nil {
				continue
			}
			violations, ok := AsViolations(err)
			if !ok {
				return err
			}
			collected = append(collected, violations...)
		}
		if len(collected) == 0 {
			return nil
		}
		return collected
	})
}

// Noop accepts every value.
func Noop() Validator {
	return ValidatorFunc(func(context.Context, any) error {
		return nil
	})
}
