package diagram

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// Type identifies the kind of UML diagram to generate.
type Type string

const (
	TypeClass     Type = "class"
	TypeSequence  Type = "sequence"
	TypeUseCase   Type = "usecase"
	TypeActivity  Type = "activity"
	TypeComponent Type = "component"
)

// Types returns the supported diagram types in display order.
func Types() []Type {
	return []Type{TypeClass, TypeSequence, TypeUseCase, TypeActivity, TypeComponent}
}

// Known reports whether t is one of the supported diagram types. Unknown
// types are still accepted by the generator and passed to the model verbatim.
func (t Type) Known() bool {
	for _, known := range Types() {
		if t == known {
			return true
		}
	}
	return false
}

func (t Type) String() string { return string(t) }

// ParseType normalizes user input into a Type. It never fails: unrecognized
// values are returned lower-cased and trimmed.
func ParseType(s string) Type {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "use-case", "use_case", "use case":
		return TypeUseCase
	case "":
		return TypeClass
	}
	return Type(s)
}

// ErrEmptyDescription is returned when a generation request has no usable
// description text.
var ErrEmptyDescription = errors.New("description is required")

// Request is a single user-initiated generation action.
type Request struct {
	Description string `json:"description" validate:"required,notblank"`
	Type        Type   `json:"diagram_type"`
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New()
		_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
			return strings.TrimSpace(fl.Field().String()) != ""
		})
		validate = v
	})
	return validate
}

// Validate checks that the request can be sent to the model.
func (r Request) Validate() error {
	if err := validatorInstance().Struct(r); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return fmt.Errorf("%w (%s)", ErrEmptyDescription, verrs[0].Tag())
		}
		return err
	}
	return nil
}
