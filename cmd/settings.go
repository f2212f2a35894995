package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/AzielCF/az-settings/core/settings/domain"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var nowFunc = time.Now

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Inspect and change stored settings",
}

var settingsGetCmd = &cobra.Command{
	Use:   "get [field]",
	Short: "Print all settings, or one field",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runSettings(settingsGet),
}

var settingsSetCmd = &cobra.Command{
	Use:     "set <field> <value>",
	Short:   "Change one setting",
	Example: "  az-settings settings set theme light\n  az-settings settings set masterVolume 0.5",
	Args:    cobra.ExactArgs(2),
	RunE:    runSettings(settingsSet),
}

var settingsResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Restore every setting to its default",
	Args:  cobra.NoArgs,
	RunE:  runSettings(settingsReset),
}

var settingsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write an export document (to --out, a directory, or stdout)",
	Args:  cobra.NoArgs,
	RunE:  runSettings(settingsExport),
}

var settingsImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import an export document",
	Args:  cobra.ExactArgs(1),
	RunE:  runSettings(settingsImport),
}

var settingsInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show application info and storage status",
	Args:  cobra.NoArgs,
	RunE:  runSettings(settingsInfo),
}

var settingsFieldsCmd = &cobra.Command{
	Use:   "fields",
	Short: "List every field with its group and current value",
	Args:  cobra.NoArgs,
	RunE:  runSettings(settingsFields),
}

func init() {
	settingsExportCmd.Flags().StringP("out", "o", "", "output file or directory; - for stdout")
	settingsCmd.AddCommand(settingsGetCmd, settingsSetCmd, settingsResetCmd, settingsExportCmd, settingsImportCmd, settingsInfoCmd, settingsFieldsCmd)
	rootCmd.AddCommand(settingsCmd)
}

type settingsAction func(ctx context.Context, rt *appRuntime, cmd *cobra.Command, args []string) error

func runSettings(action settingsAction) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		rt, err := bootstrap(ctx)
		if err != nil {
			return err
		}
		defer rt.Stop()
		return action(ctx, rt, cmd, args)
	}
}

func settingsGet(_ context.Context, rt *appRuntime, cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	settings := rt.store.GetSettings()
	if len(args) == 0 {
		return writeJSON(out, settings)
	}
	field, err := domain.ParseField(args[0])
	if err != nil {
		return err
	}
	value, err := field.Get(settings)
	if err != nil {
		return err
	}
	return writeJSON(out, value)
}

func settingsSet(ctx context.Context, rt *appRuntime, cmd *cobra.Command, args []string) error {
	field, err := domain.ParseField(args[0])
	if err != nil {
		return err
	}
	update, err := domain.DecodeUpdate(field, cliValue(args[1]))
	if err != nil {
		return err
	}
	if err := rt.store.UpdateField(ctx, update); err != nil {
		return err
	}
	value, _ := field.Get(rt.store.GetSettings())
	fmt.Fprintf(cmd.OutOrStdout(), "%s = %v\n", field, value)
	return nil
}

func settingsReset(ctx context.Context, rt *appRuntime, cmd *cobra.Command, _ []string) error {
	rt.store.ResetToDefaults(ctx)
	fmt.Fprintln(cmd.OutOrStdout(), "Settings reset to defaults")
	return nil
}

func settingsExport(_ context.Context, rt *appRuntime, cmd *cobra.Command, _ []string) error {
	text, err := rt.store.ExportSnapshot()
	if err != nil {
		return err
	}
	target, _ := cmd.Flags().GetString("out")
	if target == "" || target == "-" {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), text)
		return err
	}
	if info, err := os.Stat(target); err == nil && info.IsDir() {
		target = filepath.Join(target, rt.store.ExportFileName())
	}
	if err := os.WriteFile(target, []byte(text), 0o644); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Exported %s to %s\n", humanize.Bytes(uint64(len(text))), target)
	return nil
}

func settingsImport(ctx context.Context, rt *appRuntime, cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read import file: %w", err)
	}
	if !rt.store.ImportSnapshot(ctx, string(data)) {
		return fmt.Errorf("%s is not a settings export", args[0])
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Imported %s from %s\n", humanize.Bytes(uint64(len(data))), args[0])
	return nil
}

func settingsInfo(ctx context.Context, rt *appRuntime, cmd *cobra.Command, _ []string) error {
	info := rt.store.GetApplicationInfo()
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Version\t%s (build %s)\n", info.Version, humanize.Comma(int64(info.BuildNumber)))
	fmt.Fprintf(w, "Build date\t%s\n", info.BuildDate)
	fmt.Fprintf(w, "Platform\t%s / %s\n", info.Platform, info.Engine)
	fmt.Fprintf(w, "Author\t%s\n", info.Author)
	fmt.Fprintf(w, "Website\t%s\n", info.Website)
	fmt.Fprintf(w, "Support\t%s\n", info.SupportEmail)
	fmt.Fprintf(w, "Storage\t%s (%s)\n", rt.cfg.Storage.Backend, storageStatus(ctx, rt))
	if saved := rt.store.LastSavedAt(); !saved.IsZero() {
		fmt.Fprintf(w, "Last saved\t%s\n", humanize.RelTime(saved, nowFunc(), "ago", "from now"))
	} else {
		fmt.Fprintf(w, "Last saved\tnever\n")
	}
	fmt.Fprintf(w, "Developer mode\t%t\n", rt.store.IsDeveloperModeUnlocked())
	return w.Flush()
}

func settingsFields(_ context.Context, rt *appRuntime, cmd *cobra.Command, _ []string) error {
	settings := rt.store.GetSettings()
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "FIELD\tGROUP\tVALUE")
	for _, f := range domain.Fields() {
		value, _ := f.Get(settings)
		fmt.Fprintf(w, "%s\t%s\t%v\n", f, f.Group(), value)
	}
	return w.Flush()
}

func storageStatus(ctx context.Context, rt *appRuntime) string {
	pinger, ok := rt.repo.(domain.Pinger)
	if !ok {
		return "unchecked"
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := pinger.Ping(ctx); err != nil {
		return "error: " + err.Error()
	}
	return "ok"
}

// cliValue reads a command line value as JSON, falling back to a string.
func cliValue(arg string) json.RawMessage {
	if json.Valid([]byte(arg)) {
		return json.RawMessage(arg)
	}
	quoted, _ := json.Marshal(arg)
	return quoted
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
