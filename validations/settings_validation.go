package validations

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/AzielCF/az-settings/core/settings/domain"
	pkgError "github.com/AzielCF/az-settings/pkg/error"
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

var knownField = validation.By(func(value interface{}) error {
	name, _ := value.(string)
	if name == "" {
		return nil
	}
	if _, err := domain.ParseField(name); err != nil {
		return errors.New("must be a known settings field")
	}
	return nil
})

func ValidateUpdateField(ctx context.Context, request domain.UpdateFieldRequest) error {
	err := validation.ValidateStructWithContext(ctx, &request,
		validation.Field(&request.Field, validation.Required, knownField),
		validation.Field(&request.Value, validation.Required),
	)

	if err != nil {
		return pkgError.ValidationError(err.Error())
	}

	return nil
}

func ValidatePatch(ctx context.Context, request domain.PatchRequest) error {
	err := validation.ValidateWithContext(ctx, map[string]json.RawMessage(request),
		validation.Required.Error("at least one field is required"),
	)
	if err != nil {
		return pkgError.ValidationError(err.Error())
	}
	for name := range request {
		if _, err := domain.ParseField(name); err != nil {
			return pkgError.ValidationError(err.Error())
		}
	}
	return nil
}

func ValidateImport(ctx context.Context, request domain.ImportRequest) error {
	err := validation.ValidateStructWithContext(ctx, &request,
		validation.Field(&request.Data, validation.Required),
	)

	if err != nil {
		return pkgError.ValidationError(err.Error())
	}

	return nil
}
