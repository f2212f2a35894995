package validations

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/AzielCF/az-settings/core/settings/domain"
	pkgError "github.com/AzielCF/az-settings/pkg/error"
	"github.com/stretchr/testify/assert"
)

func TestValidateUpdateField(t *testing.T) {
	ctx := context.Background()
	assert.NoError(t, ValidateUpdateField(ctx, domain.UpdateFieldRequest{Field: "theme", Value: json.RawMessage(`"light"`)}))

	err := ValidateUpdateField(ctx, domain.UpdateFieldRequest{Field: "brightness", Value: json.RawMessage(`1`)})
	assert.IsType(t, pkgError.ValidationError(""), err)
	assert.Contains(t, err.Error(), "known settings field")

	err = ValidateUpdateField(ctx, domain.UpdateFieldRequest{Field: "theme"})
	assert.Error(t, err)
}

func TestValidatePatch(t *testing.T) {
	ctx := context.Background()
	assert.NoError(t, ValidatePatch(ctx, domain.PatchRequest{"showGrid": json.RawMessage(`false`)}))
	assert.Error(t, ValidatePatch(ctx, domain.PatchRequest{}))
	assert.Error(t, ValidatePatch(ctx, domain.PatchRequest{"volume": json.RawMessage(`1`)}))
}

func TestValidateImport(t *testing.T) {
	ctx := context.Background()
	assert.NoError(t, ValidateImport(ctx, domain.ImportRequest{Data: `{"settings":{}}`}))
	assert.Error(t, ValidateImport(ctx, domain.ImportRequest{}))
}
