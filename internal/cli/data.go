package cli

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	apperrors "github.com/julianstephens/seedjournal/internal/errors"
	"github.com/julianstephens/seedjournal/internal/models"
)

type ExportCmd struct {
	Output string `help:"Output file path (default: stdout)." short:"o" default:""`
}

func (c *ExportCmd) Run(ctx *Context) error {
	payload, err := ctx.App.Export()
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize export: %w", err)
	}

	if c.Output == "" {
		fmt.Println(string(data))
		return nil
	}

	if err := os.WriteFile(c.Output, data, 0600); err != nil {
		return fmt.Errorf("failed to write export file: %w", err)
	}

	fmt.Printf("Exported %d habits, %d completions, %d settings to %s\n",
		len(payload.Habits), len(payload.Completions), len(payload.Settings), c.Output)
	return nil
}

type ImportCmd struct {
	Input string `arg:"" help:"Path of the export file to import."`
	Yes   bool   `help:"Skip the confirmation prompt." short:"y"`
}

func (c *ImportCmd) Run(ctx *Context) error {
	data, err := os.ReadFile(c.Input)
	if err != nil {
		return fmt.Errorf("failed to read import file: %w", err)
	}

	var payload models.Export
	if err := json.Unmarshal(data, &payload); err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrMalformedImport, err)
	}

	if !payload.HasAnyCollection() {
		return apperrors.ErrMalformedImport
	}

	if !c.Yes {
		fmt.Println("⚠️  Importing will replace the collections present in the file.")
		fmt.Printf("File carries: %s\n", describePayload(payload))
		if !confirm("Continue? [y/N]: ") {
			fmt.Println("Import cancelled.")
			return nil
		}
	}

	// Imports are destructive, so snapshot the database first.
	ctx.PerformAutomaticBackup()

	if err := ctx.App.Import(payload); err != nil {
		return err
	}

	fmt.Println("✓ Import completed successfully.")
	return nil
}

type ResetCmd struct {
	Yes bool `help:"Skip the confirmation prompt." short:"y"`
}

func (c *ResetCmd) Run(ctx *Context) error {
	if !c.Yes {
		fmt.Println("⚠️  This will delete ALL habits, completions, and settings.")
		if !confirm("Continue? [y/N]: ") {
			fmt.Println("Reset cancelled.")
			return nil
		}
	}

	ctx.PerformAutomaticBackup()

	if err := ctx.App.Reset(); err != nil {
		return err
	}

	fmt.Println("✓ All data cleared.")
	return nil
}

func describePayload(payload models.Export) string {
	var parts []string
	if payload.Habits != nil {
		parts = append(parts, fmt.Sprintf("%d habits", len(payload.Habits)))
	}
	if payload.Completions != nil {
		parts = append(parts, fmt.Sprintf("%d completions", len(payload.Completions)))
	}
	if payload.Settings != nil {
		parts = append(parts, fmt.Sprintf("%d settings", len(payload.Settings)))
	}
	return strings.Join(parts, ", ")
}

func confirm(prompt string) bool {
	fmt.Print(prompt)
	reader := bufio.NewReader(os.Stdin)
	response, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	response = strings.TrimSpace(strings.ToLower(response))
	return response == "y" || response == "yes"
}
