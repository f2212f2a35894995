package rest

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/AzielCF/az-settings/core/settings/domain"
	"github.com/AzielCF/az-settings/pkg/activitylog"
	pkgError "github.com/AzielCF/az-settings/pkg/error"
	"github.com/AzielCF/az-settings/pkg/utils"
	"github.com/AzielCF/az-settings/validations"
	"github.com/gofiber/fiber/v2"
)

type Settings struct {
	Service  domain.ISettingsStore
	Activity *activitylog.Log
}

// FieldView is one row of the field listing.
type FieldView struct {
	Field domain.Field `json:"field"`
	Group domain.Group `json:"group"`
	Value any          `json:"value"`
}

type UnlockClickResponse struct {
	Progress domain.UnlockProgress `json:"progress"`
	Unlocked bool                  `json:"unlocked"`
}

func InitRestSettings(app fiber.Router, service domain.ISettingsStore, activity *activitylog.Log) Settings {
	handler := Settings{Service: service, Activity: activity}

	group := app.Group("/settings")
	group.Get("/", handler.GetState)
	group.Get("/values", handler.GetSettings)
	group.Patch("/values", handler.PatchSettings)
	group.Get("/fields", handler.ListFields)
	group.Get("/fields/:field", handler.GetField)
	group.Put("/fields/:field", handler.UpdateField)
	group.Post("/reset", handler.Reset)
	group.Get("/app-info", handler.GetApplicationInfo)
	group.Post("/panel/open", handler.OpenPanel)
	group.Post("/panel/close", handler.ClosePanel)
	group.Get("/export", handler.Export)
	group.Post("/import", handler.Import)
	group.Get("/summary", handler.Summary)
	group.Post("/unlock/click", handler.UnlockClick)
	group.Get("/unlock/progress", handler.UnlockProgress)
	group.Get("/developer-mode", handler.DeveloperMode)
	group.Get("/volumes", handler.Volumes)
	group.Get("/activity", handler.GetActivity)

	return handler
}

func success(c *fiber.Ctx, message string, results any) error {
	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: message,
		Results: results,
	})
}

// apiError maps domain failures onto the REST error types.
func apiError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, domain.ErrUnknownField):
		return pkgError.NotFoundError(err.Error())
	case errors.Is(err, domain.ErrInvalidValue), errors.Is(err, domain.ErrNoSettings):
		return pkgError.ValidationError(err.Error())
	}
	return err
}

func (h *Settings) GetState(c *fiber.Ctx) error {
	return success(c, "Settings state", h.Service.GetState())
}

func (h *Settings) GetSettings(c *fiber.Ctx) error {
	return success(c, "Settings", h.Service.GetSettings())
}

func (h *Settings) GetApplicationInfo(c *fiber.Ctx) error {
	return success(c, "Application info", h.Service.GetApplicationInfo())
}

func (h *Settings) ListFields(c *fiber.Ctx) error {
	current := h.Service.GetSettings()
	fields := domain.Fields()
	views := make([]FieldView, 0, len(fields))
	for _, f := range fields {
		value, _ := f.Get(current)
		views = append(views, FieldView{Field: f, Group: f.Group(), Value: value})
	}
	return success(c, fmt.Sprintf("%d fields", len(views)), views)
}

func (h *Settings) GetField(c *fiber.Ctx) error {
	field, err := domain.ParseField(c.Params("field"))
	utils.PanicIfNeeded(apiError(err))

	value, err := field.Get(h.Service.GetSettings())
	utils.PanicIfNeeded(apiError(err))

	return success(c, "Field value", FieldView{Field: field, Group: field.Group(), Value: value})
}

func (h *Settings) UpdateField(c *fiber.Ctx) error {
	var request domain.UpdateFieldRequest
	err := c.BodyParser(&request)
	utils.PanicIfNeeded(badRequest(err))
	request.Field = c.Params("field")

	if _, err := domain.ParseField(request.Field); err != nil {
		utils.PanicIfNeeded(apiError(err))
	}
	utils.PanicIfNeeded(validations.ValidateUpdateField(c.UserContext(), request))

	update, err := domain.DecodeUpdate(domain.Field(request.Field), request.Value)
	utils.PanicIfNeeded(apiError(err))

	err = h.Service.UpdateField(c.UserContext(), update)
	utils.PanicIfNeeded(apiError(err))

	return success(c, fmt.Sprintf("%s updated", request.Field), h.Service.GetSettings())
}

func (h *Settings) PatchSettings(c *fiber.Ctx) error {
	var request domain.PatchRequest
	err := c.BodyParser(&request)
	utils.PanicIfNeeded(badRequest(err))
	utils.PanicIfNeeded(validations.ValidatePatch(c.UserContext(), request))

	raw, err := json.Marshal(request)
	utils.PanicIfNeeded(err)
	updates, err := domain.DecodePatch(raw)
	utils.PanicIfNeeded(apiError(err))

	err = h.Service.UpdateFields(c.UserContext(), updates...)
	utils.PanicIfNeeded(apiError(err))

	return success(c, "Settings updated", h.Service.GetSettings())
}

func (h *Settings) Reset(c *fiber.Ctx) error {
	h.Service.ResetToDefaults(c.UserContext())
	return success(c, "Settings reset to defaults", h.Service.GetSettings())
}

func (h *Settings) OpenPanel(c *fiber.Ctx) error {
	h.Service.OpenPanel()
	return success(c, "Panel opened", h.Service.GetState())
}

func (h *Settings) ClosePanel(c *fiber.Ctx) error {
	h.Service.ClosePanel()
	return success(c, "Panel closed", h.Service.GetState())
}

// Export downloads the export document as a dated json attachment.
func (h *Settings) Export(c *fiber.Ctx) error {
	text, err := h.Service.ExportSnapshot()
	utils.PanicIfNeeded(err)

	c.Attachment(h.Service.ExportFileName())
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSONCharsetUTF8)
	return c.SendString(text)
}

func (h *Settings) Import(c *fiber.Ctx) error {
	var request domain.ImportRequest
	err := c.BodyParser(&request)
	utils.PanicIfNeeded(badRequest(err))
	utils.PanicIfNeeded(validations.ValidateImport(c.UserContext(), request))

	if !h.Service.ImportSnapshot(c.UserContext(), request.Data) {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ResponseData{
			Status:  fiber.StatusBadRequest,
			Code:    "IMPORT_FAILED",
			Message: "Payload is not a settings export",
		})
	}
	return success(c, "Settings imported", h.Service.GetSettings())
}

func (h *Settings) Summary(c *fiber.Ctx) error {
	return success(c, "Settings summary", h.Service.Summary())
}

func (h *Settings) UnlockClick(c *fiber.Ctx) error {
	h.Service.RegisterUnlockClick(c.UserContext())

	// A gesture in progress always has count >= 1; completion resets it.
	state := h.Service.GetState()
	resp := UnlockClickResponse{
		Progress: state.Unlock().Progress(),
		Unlocked: state.UnlockClickCount == 0,
	}
	message := "Click registered"
	if resp.Unlocked {
		message = domain.UnlockMessage
	}
	return success(c, message, resp)
}

func (h *Settings) UnlockProgress(c *fiber.Ctx) error {
	return success(c, "Unlock progress", h.Service.GetUnlockProgress())
}

func (h *Settings) DeveloperMode(c *fiber.Ctx) error {
	return success(c, "Developer mode", fiber.Map{"unlocked": h.Service.IsDeveloperModeUnlocked()})
}

func (h *Settings) Volumes(c *fiber.Ctx) error {
	return success(c, "Effective volumes", h.Service.Volumes())
}

func (h *Settings) GetActivity(c *fiber.Ctx) error {
	if h.Activity == nil {
		return success(c, "Activity log disabled", activitylog.Stats{RecentEvents: []activitylog.Event{}})
	}
	return success(c, "Settings activity", h.Activity.GetStats())
}

func badRequest(err error) error {
	if err == nil {
		return nil
	}
	return pkgError.BadRequestError(err.Error())
}
