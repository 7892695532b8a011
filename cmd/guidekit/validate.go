package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	cli "github.com/urfave/cli/v3"

	"github.com/guidekit/guidekit/pkg/models"
)

// NewValidateCommand validates template documents without touching
// storage: schema, struct constraints, action params, and condition
// compilation all run at parse time.
func NewValidateCommand() *cli.Command {
	return &cli.Command{
		Name:      "validate",
		Aliases:   []string{"v"},
		Usage:     "Validate wizard template files",
		ArgsUsage: "FILE [FILE...]",
		Action: func(ctx context.Context, command *cli.Command) error {
			files := command.Args().Slice()
			if len(files) == 0 {
				return fmt.Errorf("no template files given")
			}

			failures := 0

			for _, path := range files {
				data, err := os.ReadFile(path)
				if err != nil {
					return fmt.Errorf("failed to read %s: %w", path, err)
				}

				tmpl, err := models.ParseTemplate(data, formatForPath(path))
				if err != nil {
					failures++

					fmt.Fprintf(os.Stdout, "%s: INVALID\n  %v\n", path, err)

					continue
				}

				fmt.Fprintf(os.Stdout, "%s: OK (%s, %d steps, %d actions)\n",
					path, tmpl.ID, len(tmpl.Steps), len(tmpl.Actions))
			}

			if failures > 0 {
				return fmt.Errorf("%d of %d template(s) invalid", failures, len(files))
			}

			return nil
		},
	}
}

func formatForPath(path string) models.TemplateFormat {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return models.FormatYAML
	default:
		return models.FormatJSON
	}
}
