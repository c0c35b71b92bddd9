package validation

import (
	"reflect"
	"strings"

	"marketplace/internal/domain"

	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
)

// Mode selects between create (every field required) and update (present
// fields only) validation.
type Mode int

const (
	Full Mode = iota
	Partial
)

// Validator instances, one per tag set.
var (
	fullValidate    *validator.Validate
	partialValidate *validator.Validate
)

func init() {
	fullValidate = newValidator("full")
	partialValidate = newValidator("partial")
}

func newValidator(tagName string) *validator.Validate {
	v := validator.New()
	v.SetTagName(tagName)
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func validatorFor(mode Mode) *validator.Validate {
	if mode == Partial {
		return partialValidate
	}
	return fullValidate
}

var messages = map[string]string{
	"name":        "El nombre es obligatorio.",
	"description": "La descripción es obligatoria.",
	"image":       "La imagen es obligatoria.",
	"price":       "El precio es inválido.",
	"discordUrl":  "El enlace de comunicaciones es obligatorio.",
	"robloxUrl":   "El enlace de Roblox es obligatorio.",
}

// MessageFor returns the user-facing message for an invalid field.
func MessageFor(field string) string {
	if msg, ok := messages[field]; ok {
		return msg
	}
	return "El campo " + field + " es inválido."
}

type productFields struct {
	Name        *string  `json:"name" full:"required,min=1" partial:"omitnil,min=1"`
	Description *string  `json:"description" full:"required,min=1" partial:"omitnil,min=1"`
	Image       *string  `json:"image" full:"required,min=1" partial:"omitnil,min=1"`
	Price       *float64 `json:"price" full:"required,gte=0" partial:"omitnil,gte=0"`
}

type affiliateFields struct {
	Name        *string `json:"name" full:"required,min=1" partial:"omitnil,min=1"`
	Description *string `json:"description" full:"required,min=1" partial:"omitnil,min=1"`
	DiscordURL  *string `json:"discordUrl" full:"required,min=1" partial:"omitnil,min=1"`
	RobloxURL   *string `json:"robloxUrl" full:"required,min=1" partial:"omitnil,min=1"`
	Image       *string `json:"image" full:"required,min=1" partial:"omitnil,min=1"`
}

// Product validates a product payload and returns the normalized changes.
func Product(in domain.ProductInput, mode Mode) (domain.ProductChanges, error) {
	fields := productFields{
		Name:        trimmed(in.Name),
		Description: trimmed(in.Description),
		Image:       trimmed(in.Image),
	}
	if in.Price != nil {
		price, err := in.Price.Float64()
		if err != nil {
			return domain.ProductChanges{}, domain.NewValidationError("price", MessageFor("price"))
		}
		fields.Price = &price
	}

	if err := check(validatorFor(mode), fields); err != nil {
		return domain.ProductChanges{}, err
	}

	return domain.ProductChanges{
		Name:        fields.Name,
		Description: fields.Description,
		Image:       fields.Image,
		Price:       fields.Price,
	}, nil
}

// Affiliate validates an affiliate payload and returns the normalized changes.
func Affiliate(in domain.AffiliateInput, mode Mode) (domain.AffiliateChanges, error) {
	fields := affiliateFields{
		Name:        trimmed(in.Name),
		Description: trimmed(in.Description),
		DiscordURL:  trimmed(in.DiscordURL),
		RobloxURL:   trimmed(in.RobloxURL),
		Image:       trimmed(in.Image),
	}

	if err := check(validatorFor(mode), fields); err != nil {
		return domain.AffiliateChanges{}, err
	}

	return domain.AffiliateChanges{
		Name:        fields.Name,
		Description: fields.Description,
		Image:       fields.Image,
		DiscordURL:  fields.DiscordURL,
		RobloxURL:   fields.RobloxURL,
	}, nil
}

// check runs the validator and converts the first field error into a
// domain.ValidationError.
func check(v *validator.Validate, fields interface{}) error {
	err := v.Struct(fields)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) && len(validationErrors) > 0 {
		field := validationErrors[0].Field()
		return domain.NewValidationError(field, MessageFor(field))
	}
	return errors.Wrap(err, "validate payload")
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}
