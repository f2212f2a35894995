package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/AzielCF/az-settings/core/settings/domain"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

type SettingsHandler struct {
	store domain.ISettingsStore
}

func InitMcpSettings(store domain.ISettingsStore) *SettingsHandler {
	return &SettingsHandler{store: store}
}

func (h *SettingsHandler) AddSettingsTools(mcpServer *server.MCPServer) {
	mcpServer.AddTool(h.toolGetState(), h.handleGetState)
	mcpServer.AddTool(h.toolGetField(), h.handleGetField)
	mcpServer.AddTool(h.toolUpdateField(), h.handleUpdateField)
	mcpServer.AddTool(h.toolUpdateSettings(), h.handleUpdateSettings)
	mcpServer.AddTool(h.toolReset(), h.handleReset)
	mcpServer.AddTool(h.toolExport(), h.handleExport)
	mcpServer.AddTool(h.toolImport(), h.handleImport)
	mcpServer.AddTool(h.toolUnlockClick(), h.handleUnlockClick)
	mcpServer.AddTool(h.toolVolumes(), h.handleVolumes)
}

func (h *SettingsHandler) toolGetState() mcp.Tool {
	return mcp.NewTool(
		"settings_get_state",
		mcp.WithDescription("Return the full settings state: settings, application info, panel visibility and unlock progress."),
		mcp.WithTitleAnnotation("Get Settings State"),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(true),
	)
}

func (h *SettingsHandler) handleGetState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	_ = request
	state := h.store.GetState()
	fallback := fmt.Sprintf("Theme %s, language %s, revision %d", state.Settings.Theme, state.Settings.Language, state.Revision)
	return mcp.NewToolResultStructured(state, fallback), nil
}

func (h *SettingsHandler) toolGetField() mcp.Tool {
	return mcp.NewTool(
		"settings_get_field",
		mcp.WithDescription("Read a single setting by its field name, e.g. masterVolume or difficulty."),
		mcp.WithTitleAnnotation("Get Setting"),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithString("field",
			mcp.Description("Field name: "+fieldList()),
			mcp.Required(),
		),
	)
}

func (h *SettingsHandler) handleGetField(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := request.RequireString("field")
	if err != nil {
		return nil, err
	}
	field, err := domain.ParseField(name)
	if err != nil {
		return nil, err
	}
	value, err := field.Get(h.store.GetSettings())
	if err != nil {
		return nil, err
	}
	result := map[string]any{"field": field, "group": field.Group(), "value": value}
	return mcp.NewToolResultStructured(result, fmt.Sprintf("%s = %v", field, value)), nil
}

func (h *SettingsHandler) toolUpdateField() mcp.Tool {
	return mcp.NewTool(
		"settings_update_field",
		mcp.WithDescription("Change one setting. Numbers are clamped into range; unknown enum values are rejected."),
		mcp.WithTitleAnnotation("Update Setting"),
		mcp.WithReadOnlyHintAnnotation(false),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithString("field",
			mcp.Description("Field name: "+fieldList()),
			mcp.Required(),
		),
		mcp.WithString("value",
			mcp.Description("New value as JSON or plain text, e.g. light, 0.5, true."),
			mcp.Required(),
		),
	)
}

func (h *SettingsHandler) handleUpdateField(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := request.RequireString("field")
	if err != nil {
		return nil, err
	}
	value, err := request.RequireString("value")
	if err != nil {
		return nil, err
	}

	field, err := domain.ParseField(name)
	if err != nil {
		return nil, err
	}
	update, err := domain.DecodeUpdate(field, rawValue(value))
	if err != nil {
		return nil, err
	}
	if err := h.store.UpdateField(ctx, update); err != nil {
		return nil, err
	}

	current, _ := field.Get(h.store.GetSettings())
	return mcp.NewToolResultStructured(h.store.GetSettings(), fmt.Sprintf("%s set to %v", field, current)), nil
}

func (h *SettingsHandler) toolUpdateSettings() mcp.Tool {
	return mcp.NewTool(
		"settings_update",
		mcp.WithDescription("Apply several settings at once from a JSON object. Either every change is applied or none."),
		mcp.WithTitleAnnotation("Update Settings"),
		mcp.WithReadOnlyHintAnnotation(false),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithString("values",
			mcp.Description(`JSON object of field names to values, e.g. {"masterVolume":0.5,"muteAll":false}.`),
			mcp.Required(),
		),
	)
}

func (h *SettingsHandler) handleUpdateSettings(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	values, err := request.RequireString("values")
	if err != nil {
		return nil, err
	}
	updates, err := domain.DecodePatch([]byte(values))
	if err != nil {
		return nil, err
	}
	if err := h.store.UpdateFields(ctx, updates...); err != nil {
		return nil, err
	}
	return mcp.NewToolResultStructured(h.store.GetSettings(), fmt.Sprintf("Updated %d settings", len(updates))), nil
}

func (h *SettingsHandler) toolReset() mcp.Tool {
	return mcp.NewTool(
		"settings_reset",
		mcp.WithDescription("Restore every setting to its default value."),
		mcp.WithTitleAnnotation("Reset Settings"),
		mcp.WithReadOnlyHintAnnotation(false),
		mcp.WithDestructiveHintAnnotation(true),
		mcp.WithIdempotentHintAnnotation(true),
	)
}

func (h *SettingsHandler) handleReset(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	_ = request
	h.store.ResetToDefaults(ctx)
	return mcp.NewToolResultStructured(h.store.GetSettings(), "Settings reset to defaults"), nil
}

func (h *SettingsHandler) toolExport() mcp.Tool {
	return mcp.NewTool(
		"settings_export",
		mcp.WithDescription("Export the current settings and application info as a JSON document."),
		mcp.WithTitleAnnotation("Export Settings"),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(false),
	)
}

func (h *SettingsHandler) handleExport(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	_ = request
	text, err := h.store.ExportSnapshot()
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(text), nil
}

func (h *SettingsHandler) toolImport() mcp.Tool {
	return mcp.NewTool(
		"settings_import",
		mcp.WithDescription("Import a document produced by settings_export. Missing fields take their defaults."),
		mcp.WithTitleAnnotation("Import Settings"),
		mcp.WithReadOnlyHintAnnotation(false),
		mcp.WithDestructiveHintAnnotation(true),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithString("data",
			mcp.Description("The exported JSON text."),
			mcp.Required(),
		),
	)
}

func (h *SettingsHandler) handleImport(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	data, err := request.RequireString("data")
	if err != nil {
		return nil, err
	}
	if !h.store.ImportSnapshot(ctx, data) {
		return mcp.NewToolResultError("payload is not a settings export"), nil
	}
	return mcp.NewToolResultStructured(h.store.GetSettings(), "Settings imported"), nil
}

func (h *SettingsHandler) toolUnlockClick() mcp.Tool {
	return mcp.NewTool(
		"settings_unlock_click",
		mcp.WithDescription("Register one click on the version label. Ten quick clicks unlock developer mode."),
		mcp.WithTitleAnnotation("Register Unlock Click"),
		mcp.WithReadOnlyHintAnnotation(false),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(false),
	)
}

func (h *SettingsHandler) handleUnlockClick(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	_ = request
	h.store.RegisterUnlockClick(ctx)
	progress := h.store.GetUnlockProgress()
	result := map[string]any{
		"progress": progress,
		"unlocked": h.store.IsDeveloperModeUnlocked(),
	}
	return mcp.NewToolResultStructured(result, fmt.Sprintf("%d clicks remaining", progress.Remaining)), nil
}

func (h *SettingsHandler) toolVolumes() mcp.Tool {
	return mcp.NewTool(
		"settings_effective_volumes",
		mcp.WithDescription("Return the effective output volumes after mute and master scaling."),
		mcp.WithTitleAnnotation("Effective Volumes"),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(true),
	)
}

func (h *SettingsHandler) handleVolumes(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	_ = request
	v := h.store.Volumes()
	fallback := fmt.Sprintf("master %.2f, music %.2f, sfx %.2f, voice %.2f", v.Master, v.Music, v.SFX, v.Voice)
	return mcp.NewToolResultStructured(v, fallback), nil
}

// rawValue accepts either JSON or a bare word, which is taken as a string.
func rawValue(value string) json.RawMessage {
	trimmed := strings.TrimSpace(value)
	if json.Valid([]byte(trimmed)) {
		return json.RawMessage(trimmed)
	}
	quoted, _ := json.Marshal(value)
	return quoted
}

func fieldList() string {
	fields := domain.Fields()
	names := make([]string, 0, len(fields))
	for _, f := range fields {
		names = append(names, string(f))
	}
	return strings.Join(names, ", ")
}
