package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	cli "github.com/urfave/cli/v3"

	"github.com/guidekit/guidekit/pkg/host/memory"
	"github.com/guidekit/guidekit/pkg/log"
	"github.com/guidekit/guidekit/pkg/models"
	"github.com/guidekit/guidekit/pkg/otelhelper"
	"github.com/guidekit/guidekit/pkg/persistence/file"
	"github.com/guidekit/guidekit/pkg/wizard"
)

// NewPreviewCommand dry-runs a template file against an in-memory host: it
// builds the wizard for a synthetic user, applies the given step input, and
// prints the side effects the template would have triggered. Template
// authors use it to check conditions, interpolation, and action wiring
// before importing.
func NewPreviewCommand() *cli.Command {
	return &cli.Command{
		Name:      "preview",
		Usage:     "Dry-run a template file against recorded input",
		ArgsUsage: "TEMPLATE_FILE",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "input",
				Usage: "JSON file mapping step ids to field input, e.g. {\"step_1\": {\"step_1_field_1\": \"hello\"}}",
			},
			&cli.StringFlag{
				Name:  "username",
				Usage: "Username of the synthetic acting user",
				Value: "preview",
			},
			&cli.IntFlag{
				Name:  "trust-level",
				Usage: "Trust level of the synthetic acting user",
				Value: 4,
			},
			&cli.StringSliceFlag{
				Name:  "group",
				Usage: "Group memberships of the synthetic acting user",
			},
			&cli.BoolFlag{
				Name:    "tracing",
				Usage:   "Export OpenTelemetry spans for the preview run",
				Sources: cli.EnvVars("GUIDEKIT_TRACING"),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			templatePath := command.Args().First()
			if templatePath == "" {
				return fmt.Errorf("no template file given")
			}

			data, err := os.ReadFile(templatePath)
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", templatePath, err)
			}

			tmpl, err := models.ParseTemplate(data, formatForPath(templatePath))
			if err != nil {
				return fmt.Errorf("%s: %w", templatePath, err)
			}

			input, err := loadPreviewInput(command.String("input"))
			if err != nil {
				return err
			}

			return runPreview(ctx, command, tmpl, input)
		},
	}
}

func loadPreviewInput(path string) (map[string]map[string]any, error) {
	input := make(map[string]map[string]any)

	if path == "" {
		return input, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read input file: %w", err)
	}

	if err := json.Unmarshal(data, &input); err != nil {
		return nil, fmt.Errorf("failed to parse input file: %w", err)
	}

	return input, nil
}

func runPreview(ctx context.Context, command *cli.Command, tmpl *models.Template, input map[string]map[string]any) error {
	workdir, err := os.MkdirTemp("", "guidekit-preview")
	if err != nil {
		return fmt.Errorf("failed to create preview workspace: %w", err)
	}
	defer func() { _ = os.RemoveAll(workdir) }()

	store := file.NewPersistence(workdir)
	if err := store.Templates().Save(ctx, tmpl); err != nil {
		return fmt.Errorf("failed to stage template: %w", err)
	}

	memHost := memory.NewHost()
	user := &models.User{
		ID:         "preview-user",
		Name:       command.String("username"),
		Username:   command.String("username"),
		Email:      command.String("username") + "@preview.invalid",
		TrustLevel: command.Int("trust-level"),
	}

	for _, group := range command.StringSlice("group") {
		memHost.AddMembership(user.ID, group)
	}

	builder := wizard.NewBuilder(store, memHost.Bundle(), log.WithModule("preview"))

	if command.Bool("tracing") {
		tracer, err := otelhelper.NewTracer(ctx, "guidekit-preview")
		if err != nil {
			return fmt.Errorf("failed to initialize tracing: %w", err)
		}

		builder = builder.WithTracer(tracer)
	}

	w, err := builder.Build(ctx, tmpl.ID, user)
	if err != nil {
		return fmt.Errorf("build failed: %w", err)
	}

	fmt.Fprintf(os.Stdout, "wizard %s: %d visible step(s)\n", tmpl.ID, len(w.Steps))

	if len(w.Steps) == 0 {
		return nil
	}

	// Walk the wizard the way a user would: each update can change which
	// steps are visible next, so the wizard is rebuilt between steps.
	current := w.Steps[0].ID

	for current != "" {
		step, ok := w.StepByID(current)
		if !ok {
			break
		}

		fmt.Fprintf(os.Stdout, "\nstep %s", step.ID)

		if step.Title != "" {
			fmt.Fprintf(os.Stdout, " (%s)", step.Title)
		}

		fmt.Fprintln(os.Stdout)

		result, err := w.CreateUpdater(step.ID, input[step.ID]).Update(ctx)
		if err != nil {
			return fmt.Errorf("step %s: %w", step.ID, err)
		}

		if result.Skipped {
			fmt.Fprintln(os.Stdout, "  skipped: required input missing")
		}

		for key, value := range result.Fields {
			fmt.Fprintf(os.Stdout, "  output %s = %v\n", key, value)
		}

		for _, failure := range result.ActionFailures {
			fmt.Fprintf(os.Stdout, "  action %s failed: %v\n", failure.ActionID, failure.Err)
		}

		if result.RedirectOnNext != "" {
			fmt.Fprintf(os.Stdout, "  redirect: %s\n", result.RedirectOnNext)
		}

		if result.Done {
			break
		}

		current = result.NextStepID

		w, err = builder.Build(ctx, tmpl.ID, user)
		if err != nil {
			return fmt.Errorf("rebuild failed: %w", err)
		}
	}

	printPreviewEffects(memHost)

	return nil
}

func printPreviewEffects(memHost *memory.Host) {
	fmt.Fprintln(os.Stdout, "\nside effects:")

	for _, topic := range memHost.Topics {
		fmt.Fprintf(os.Stdout, "  topic %q in category %q\n", topic.Spec.Title, topic.Spec.CategoryID)
	}

	for _, category := range memHost.Categories {
		fmt.Fprintf(os.Stdout, "  category %q\n", category.Spec.Name)
	}

	for _, group := range memHost.Groups {
		fmt.Fprintf(os.Stdout, "  group %q with members %v\n", group.Ref.Name, group.Members)
	}

	for _, message := range memHost.Messages {
		fmt.Fprintf(os.Stdout, "  message %q to users %v, groups %v\n", message.Title, message.UserTargets, message.GroupTargets)
	}

	for userID, fields := range memHost.Profiles {
		for name, value := range fields {
			fmt.Fprintf(os.Stdout, "  profile %s.%s = %v\n", userID, name, value)
		}
	}

	for _, entry := range memHost.Entries {
		fmt.Fprintf(os.Stdout, "  history %s %s/%s by %s\n", entry.Action, entry.Context, entry.Subject, entry.ActorID)
	}
}
