package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"charm.land/lipgloss/v2"
	"charm.land/lipgloss/v2/table"
	"github.com/evanschultz/checklist/internal/app"
	"github.com/evanschultz/checklist/internal/config"
	"github.com/evanschultz/checklist/internal/domain"
	"github.com/evanschultz/checklist/internal/platform"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
)

// newPathsCommand prints the resolved config and data locations.
func newPathsCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "paths",
		Short: "Print resolved config and data paths",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			paths, err := platform.DefaultPathsWithOptions(platform.Options{
				AppName: opts.appName,
				DevMode: opts.devMode,
			})
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "app: %s\n", opts.appName)
			_, _ = fmt.Fprintf(out, "dev_mode: %t\n", opts.devMode)
			_, _ = fmt.Fprintf(out, "config: %s\n", paths.ConfigPath)
			_, _ = fmt.Fprintf(out, "data_dir: %s\n", paths.DataDir)
			_, _ = fmt.Fprintf(out, "db: %s\n", paths.DBPath)
			_, _ = fmt.Fprintf(out, "exports: %s\n", paths.ExportDir)
			return nil
		},
	}
}

// newExportCommand writes a snapshot of both lists.
func newExportCommand(opts *rootOptions, stderr io.Writer) *cobra.Command {
	var (
		outPath string
		backup  bool
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export categories and items as a JSON snapshot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) (err error) {
			rt, err := openRuntime(cmd.Context(), opts, "export", stderr, false)
			if err != nil {
				return err
			}
			defer func() {
				if closeErr := rt.Close(); closeErr != nil && err == nil {
					err = closeErr
				}
			}()

			target := outPath
			if backup {
				target = rt.paths.ExportPath(time.Now())
			}
			if err := writeSnapshot(rt.svc.ExportSnapshot(), target, cmd.OutOrStdout()); err != nil {
				rt.logger.Error("command flow failed", "command", "export", "err", err)
				return fmt.Errorf("run export command: %w", err)
			}
			if target != "-" {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "exported to %s\n", target)
			}
			rt.logger.Info("command flow complete", "command", "export", "out", target)
			return nil
		},
	}
	cmd.Flags().StringVarP(&outPath, "out", "o", "-", "output file path ('-' for stdout)")
	cmd.Flags().BoolVar(&backup, "backup", false, "write a timestamped snapshot into the exports dir")
	cmd.MarkFlagsMutuallyExclusive("out", "backup")
	return cmd
}

// writeSnapshot encodes snap as indented JSON to outPath or stdout.
func writeSnapshot(snap app.Snapshot, outPath string, stdout io.Writer) error {
	encoded, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot json: %w", err)
	}
	encoded = append(encoded, '\n')

	if outPath == "-" {
		if _, err := stdout.Write(encoded); err != nil {
			return fmt.Errorf("write snapshot to stdout: %w", err)
		}
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("create export output dir: %w", err)
	}
	if err := os.WriteFile(outPath, encoded, 0o644); err != nil {
		return fmt.Errorf("write export file: %w", err)
	}
	return nil
}

// newImportCommand replaces both lists with a snapshot.
func newImportCommand(opts *rootOptions, stderr io.Writer) *cobra.Command {
	var inPath string
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Replace categories and items with a JSON snapshot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) (err error) {
			snap, err := readSnapshot(inPath, cmd.InOrStdin())
			if err != nil {
				return err
			}
			rt, err := openRuntime(cmd.Context(), opts, "import", stderr, false)
			if err != nil {
				return err
			}
			defer func() {
				if closeErr := rt.Close(); closeErr != nil && err == nil {
					err = closeErr
				}
			}()

			if err := rt.svc.ImportSnapshot(snap); err != nil {
				rt.logger.Error("command flow failed", "command", "import", "err", err)
				return fmt.Errorf("import snapshot: %w", err)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "imported %d categories, %d items\n", len(snap.Categories), len(snap.Todos))
			return nil
		},
	}
	cmd.Flags().StringVarP(&inPath, "in", "i", "", "input snapshot JSON file ('-' for stdin)")
	_ = cmd.MarkFlagRequired("in")
	return cmd
}

// readSnapshot decodes a snapshot file, or stdin for "-".
func readSnapshot(inPath string, stdin io.Reader) (app.Snapshot, error) {
	var (
		content []byte
		err     error
	)
	if inPath == "-" {
		content, err = io.ReadAll(stdin)
	} else {
		content, err = os.ReadFile(inPath)
	}
	if err != nil {
		return app.Snapshot{}, fmt.Errorf("read import file: %w", err)
	}
	var snap app.Snapshot
	if err := json.Unmarshal(content, &snap); err != nil {
		return app.Snapshot{}, fmt.Errorf("decode snapshot json: %w", err)
	}
	return snap, nil
}

// newListCommand prints the board for scripting.
func newListCommand(opts *rootOptions, stderr io.Writer) *cobra.Command {
	var category string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print categories with progress and items in display order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) (err error) {
			rt, err := openRuntime(cmd.Context(), opts, "list", stderr, false)
			if err != nil {
				return err
			}
			defer func() {
				if closeErr := rt.Close(); closeErr != nil && err == nil {
					err = closeErr
				}
			}()

			board := rt.svc.Board()
			if strings.TrimSpace(category) != "" {
				match, ok := findCategory(board.Categories, category)
				if !ok {
					return fmt.Errorf("unknown category %q", category)
				}
				rt.svc.SelectCategory(match.ID)
				board = rt.svc.Board()
			}
			printBoard(cmd.OutOrStdout(), board)
			return nil
		},
	}
	cmd.Flags().StringVarP(&category, "category", "c", "", "only list items of this category (name or id)")
	return cmd
}

// findCategory matches by id first, then by case-insensitive name.
func findCategory(categories []domain.Category, ref string) (domain.Category, bool) {
	ref = strings.TrimSpace(ref)
	for _, c := range categories {
		if c.ID == ref {
			return c, true
		}
	}
	for _, c := range categories {
		if strings.EqualFold(c.Name, ref) {
			return c, true
		}
	}
	return domain.Category{}, false
}

// printBoard writes progress lines followed by the displayed items.
func printBoard(out io.Writer, board app.Board) {
	width := len("All")
	for _, c := range board.Categories {
		width = max(width, len(c.Name))
	}
	progressLine := func(name string, p app.Progress) {
		_, _ = fmt.Fprintf(out, "%-*s  %d/%d  %s\n", width, name, p.Checked, p.Total, p.Completion())
	}
	if category, ok := board.SelectedCategory(); ok {
		progressLine(category.Name, board.Progress[category.ID])
	} else {
		progressLine("All", board.All)
		for _, c := range board.Categories {
			progressLine(c.Name, board.Progress[c.ID])
		}
	}

	_, _ = fmt.Fprintln(out)
	if len(board.Todos) == 0 {
		_, _ = fmt.Fprintln(out, "no items yet")
		return
	}
	for _, todo := range board.Todos {
		box := "[ ]"
		if todo.Checked {
			box = "[x]"
		}
		line := box + " " + todo.Text
		if board.Selection.IsNone() && !todo.Uncategorized() {
			if c, ok := board.Category(todo.CategoryID); ok {
				line += " (" + c.Name + ")"
			}
		}
		_, _ = fmt.Fprintln(out, line)
	}
}

// newKeysCommand prints the raw storage rows.
func newKeysCommand(opts *rootOptions, stderr io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "keys",
		Short: "Print stored keys with their size and last update time",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) (err error) {
			rt, err := openRuntime(cmd.Context(), opts, "keys", stderr, false)
			if err != nil {
				return err
			}
			defer func() {
				if closeErr := rt.Close(); closeErr != nil && err == nil {
					err = closeErr
				}
			}()

			entries, err := rt.store.Entries(cmd.Context())
			if err != nil {
				return fmt.Errorf("list storage entries: %w", err)
			}
			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				_, _ = fmt.Fprintln(out, "no stored keys")
				return nil
			}
			for _, e := range entries {
				_, _ = fmt.Fprintf(out, "%s\t%d bytes\t%s\n", e.Key, e.Bytes, e.UpdatedAt.Format(time.RFC3339))
			}
			return nil
		},
	}
}

// newPaletteCommand renders the category colors.
func newPaletteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "palette",
		Short: "Show the category color palette",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), renderPalette())
			return err
		},
	}
}

// renderPalette builds a table of palette colors with swatches.
func renderPalette() string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color(string(domain.AccentColor)))).
		Headers("#", "Name", "Hex", "Sample").
		StyleFunc(func(row, col int) lipgloss.Style {
			base := lipgloss.NewStyle().Padding(0, 1)
			if row == table.HeaderRow {
				return base.Bold(true).Foreground(lipgloss.Color(string(domain.AccentColor)))
			}
			if col == 3 && row >= 0 && row < len(domain.Palette) {
				return base.Background(lipgloss.Color(string(domain.Palette[row])))
			}
			return base
		})
	for i, c := range domain.Palette {
		t.Row(strconv.Itoa(i+1), domain.PaletteNames[c], string(c), "      ")
	}
	return t.String()
}

// newConfigCommand prints the effective config, or writes it with --write.
func newConfigCommand(opts *rootOptions) *cobra.Command {
	var write bool
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as TOML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := resolveSettings(opts)
			if err != nil {
				return err
			}
			if write {
				if err := config.Write(s.configPath, s.cfg); err != nil {
					return fmt.Errorf("write config %q: %w", s.configPath, err)
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", s.configPath)
				return nil
			}
			encoded, err := toml.Marshal(s.cfg)
			if err != nil {
				return fmt.Errorf("encode config: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(encoded)
			return err
		},
	}
	cmd.Flags().BoolVar(&write, "write", false, "write the effective config to the config path")
	return cmd
}
