package main

import (
	"context"
	"fmt"
	"os"

	cli "github.com/urfave/cli/v3"

	"github.com/guidekit/guidekit/pkg/cmd"
	"github.com/guidekit/guidekit/pkg/log"
	"github.com/guidekit/guidekit/pkg/models"
	"github.com/guidekit/guidekit/pkg/persistence"
)

func NewTemplatesCommand() *cli.Command {
	return &cli.Command{
		Name:    "templates",
		Aliases: []string{"t"},
		Usage:   "Manage stored wizard templates",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List stored templates",
				Action: func(ctx context.Context, command *cli.Command) error {
					return withPersistence(ctx, command, func(p persistence.Persistence) error {
						templates, err := p.Templates().All(ctx)
						if err != nil {
							return fmt.Errorf("failed to list templates: %w", err)
						}

						for _, tmpl := range templates {
							fmt.Fprintf(os.Stdout, "%s\t%s\t%d steps\t%d actions\n",
								tmpl.ID, tmpl.Name, len(tmpl.Steps), len(tmpl.Actions))
						}

						return nil
					})
				},
			},
			{
				Name:      "import",
				Usage:     "Validate and store template files",
				ArgsUsage: "FILE [FILE...]",
				Action: func(ctx context.Context, command *cli.Command) error {
					files := command.Args().Slice()
					if len(files) == 0 {
						return fmt.Errorf("no template files given")
					}

					return withPersistence(ctx, command, func(p persistence.Persistence) error {
						for _, path := range files {
							data, err := os.ReadFile(path)
							if err != nil {
								return fmt.Errorf("failed to read %s: %w", path, err)
							}

							tmpl, err := models.ParseTemplate(data, formatForPath(path))
							if err != nil {
								return fmt.Errorf("%s: %w", path, err)
							}

							if err := p.Templates().Save(ctx, tmpl); err != nil {
								return fmt.Errorf("failed to save %s: %w", tmpl.ID, err)
							}

							fmt.Fprintf(os.Stdout, "imported %s\n", tmpl.ID)
						}

						return nil
					})
				},
			},
			{
				Name:      "delete",
				Usage:     "Delete a stored template",
				ArgsUsage: "TEMPLATE_ID",
				Action: func(ctx context.Context, command *cli.Command) error {
					id := command.Args().First()
					if id == "" {
						return fmt.Errorf("no template id given")
					}

					return withPersistence(ctx, command, func(p persistence.Persistence) error {
						if err := p.Templates().Delete(ctx, id); err != nil {
							return fmt.Errorf("failed to delete %s: %w", id, err)
						}

						fmt.Fprintf(os.Stdout, "deleted %s\n", id)

						return nil
					})
				},
			},
		},
	}
}

func NewSubmissionsCommand() *cli.Command {
	return &cli.Command{
		Name:    "submissions",
		Aliases: []string{"s"},
		Usage:   "Inspect stored wizard submissions",
		Commands: []*cli.Command{
			{
				Name:      "show",
				Usage:     "Print one user's submission for a template",
				ArgsUsage: "TEMPLATE_ID USER_ID",
				Action: func(ctx context.Context, command *cli.Command) error {
					templateID := command.Args().Get(0)
					userID := command.Args().Get(1)

					if templateID == "" || userID == "" {
						return fmt.Errorf("usage: submissions show TEMPLATE_ID USER_ID")
					}

					return withPersistence(ctx, command, func(p persistence.Persistence) error {
						submission, err := p.Submissions().Get(ctx, templateID, userID)
						if err != nil {
							return fmt.Errorf("failed to load submission: %w", err)
						}

						fmt.Fprintf(os.Stdout, "submission %s (step %s, updated %s)\n",
							submission.ID, submission.CurrentStepID, submission.UpdatedAt.Format("2006-01-02 15:04:05"))

						for _, key := range submission.Order {
							fmt.Fprintf(os.Stdout, "  %s = %v\n", key, submission.Fields[key])
						}

						return nil
					})
				},
			},
			{
				Name:      "reset",
				Usage:     "Delete one user's submission for a template",
				ArgsUsage: "TEMPLATE_ID USER_ID",
				Action: func(ctx context.Context, command *cli.Command) error {
					templateID := command.Args().Get(0)
					userID := command.Args().Get(1)

					if templateID == "" || userID == "" {
						return fmt.Errorf("usage: submissions reset TEMPLATE_ID USER_ID")
					}

					return withPersistence(ctx, command, func(p persistence.Persistence) error {
						if err := p.Submissions().Delete(ctx, templateID, userID); err != nil {
							return fmt.Errorf("failed to delete submission: %w", err)
						}

						fmt.Fprintln(os.Stdout, "submission deleted")

						return nil
					})
				},
			},
		},
	}
}

func withPersistence(ctx context.Context, command *cli.Command, fn func(persistence.Persistence) error) error {
	logger := log.WithModule("guidekit")

	p, err := cmd.NewPersistence(ctx, logger, command.String("database-url"))
	if err != nil {
		return fmt.Errorf("failed to open persistence: %w", err)
	}

	defer func() {
		if err := p.Close(ctx); err != nil {
			logger.ErrorContext(ctx, "Failed to close persistence", "error", err)
		}
	}()

	return fn(p)
}
