package postgresql_test

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"testing"
	"time"

	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/guidekit/guidekit/pkg/models"
	"github.com/guidekit/guidekit/pkg/persistence"
	"github.com/guidekit/guidekit/pkg/persistence/postgresql"
)

var postgresContainer *postgres.PostgresContainer

func dropDb(ctx context.Context, t *testing.T, databaseURL string) {
	t.Helper()

	db, err := sql.Open("postgres", databaseURL)
	require.NoError(t, err)

	for _, table := range []string{"wizard_submissions", "wizard_templates", "schema_migrations"} {
		_, err = db.ExecContext(ctx, "DROP TABLE IF EXISTS "+table+" CASCADE")
		require.NoError(t, err)
	}

	err = db.Close()
	require.NoError(t, err)
}

func setupTestDB(t *testing.T) (*postgresql.Persistence, context.Context) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)

	if postgresContainer == nil || !postgresContainer.IsRunning() {
		var err error

		postgresContainer, err = postgres.Run(ctx,
			"postgres:16-alpine",
			postgres.WithDatabase("guidekit_test"),
			postgres.WithUsername("guidekit"),
			postgres.WithPassword("guidekit"),
			postgres.BasicWaitStrategies(),
		)
		require.NoError(t, err)
	}

	databaseURL, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	dropDb(ctx, t, databaseURL)

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

	p, err := postgresql.NewPersistence(ctx, logger, databaseURL)
	require.NoError(t, err)

	t.Cleanup(func() {
		dropDb(ctx, t, databaseURL)

		err = p.Close(ctx)
		require.NoError(t, err)

		cancel()
	})

	return p, ctx
}

func testTemplate(t *testing.T) *models.Template {
	t.Helper()

	doc := `{
		"id": "welcome",
		"name": "Welcome Wizard",
		"steps": [
			{
				"id": "step_1",
				"fields": [
					{"id": "step_1_field_1", "type": "text", "label": "Name", "required": true}
				]
			}
		],
		"actions": [
			{
				"id": "action_1",
				"type": "create_topic",
				"run_after": "step_1",
				"create_topic": {"title": "{{.fields.step_1_field_1}}", "body": "body"}
			}
		]
	}`

	tmpl, err := models.ParseTemplate([]byte(doc), models.FormatJSON)
	require.NoError(t, err)

	return tmpl
}

func TestNewPersistence_HealthCheck(t *testing.T) {
	p, ctx := setupTestDB(t)

	assert.NoError(t, p.HealthCheck(ctx))
}

func TestTemplateRepository_SaveAndGet(t *testing.T) {
	p, ctx := setupTestDB(t)

	require.NoError(t, p.Templates().Save(ctx, testTemplate(t)))

	loaded, err := p.Templates().GetByID(ctx, "welcome")
	require.NoError(t, err)
	assert.Equal(t, "welcome", loaded.ID)
	require.Len(t, loaded.Actions, 1)
	require.NotNil(t, loaded.Actions[0].CreateTopic)

	// Rehydrated templates went through the full parse, so conditions are
	// compiled and evaluable.
	visible, err := loaded.Steps[0].Condition.Evaluate(models.NewConditionEnv(nil, nil))
	require.NoError(t, err)
	assert.True(t, visible)
}

func TestTemplateRepository_Upsert(t *testing.T) {
	p, ctx := setupTestDB(t)

	tmpl := testTemplate(t)
	require.NoError(t, p.Templates().Save(ctx, tmpl))

	tmpl.Name = "Welcome Wizard v2"
	require.NoError(t, p.Templates().Save(ctx, tmpl))

	loaded, err := p.Templates().GetByID(ctx, "welcome")
	require.NoError(t, err)
	assert.Equal(t, "Welcome Wizard v2", loaded.Name)

	all, err := p.Templates().All(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestTemplateRepository_GetByID_NotFound(t *testing.T) {
	p, ctx := setupTestDB(t)

	_, err := p.Templates().GetByID(ctx, "missing")
	require.Error(t, err)
	assert.True(t, persistence.IsTemplateNotFound(err))
}

func TestTemplateRepository_Delete(t *testing.T) {
	p, ctx := setupTestDB(t)

	require.NoError(t, p.Templates().Save(ctx, testTemplate(t)))
	require.NoError(t, p.Templates().Delete(ctx, "welcome"))

	_, err := p.Templates().GetByID(ctx, "welcome")
	assert.True(t, persistence.IsTemplateNotFound(err))

	err = p.Templates().Delete(ctx, "welcome")
	assert.True(t, persistence.IsTemplateNotFound(err))
}

func TestSubmissionRepository_RoundTrip(t *testing.T) {
	p, ctx := setupTestDB(t)

	submission := models.NewSubmission("sub-1", "welcome", "user-1")
	submission.CurrentStepID = "step_1"
	submission.SetField("step_1_field_1", "hello")
	submission.SetField("upload", map[string]any{"id": float64(7)})

	require.NoError(t, p.Submissions().Save(ctx, submission))

	loaded, err := p.Submissions().Get(ctx, "welcome", "user-1")
	require.NoError(t, err)
	assert.Equal(t, "sub-1", loaded.ID)
	assert.Equal(t, "step_1", loaded.CurrentStepID)
	assert.Equal(t, "hello", loaded.Fields["step_1_field_1"])
	assert.Equal(t, map[string]any{"id": float64(7)}, loaded.Fields["upload"])
	assert.Equal(t, []string{"step_1_field_1", "upload"}, loaded.Order)
	assert.False(t, loaded.UpdatedAt.IsZero())
}

func TestSubmissionRepository_UpsertKeepsOneRowPerUser(t *testing.T) {
	p, ctx := setupTestDB(t)

	submission := models.NewSubmission("sub-1", "welcome", "user-1")
	submission.SetField("key", "first")
	require.NoError(t, p.Submissions().Save(ctx, submission))

	submission.SetField("key", "second")
	submission.CurrentStepID = "step_2"
	require.NoError(t, p.Submissions().Save(ctx, submission))

	loaded, err := p.Submissions().Get(ctx, "welcome", "user-1")
	require.NoError(t, err)
	assert.Equal(t, "second", loaded.Fields["key"])
	assert.Equal(t, "step_2", loaded.CurrentStepID)

	other := models.NewSubmission("sub-2", "welcome", "user-2")
	other.SetField("key", "theirs")
	require.NoError(t, p.Submissions().Save(ctx, other))

	loaded, err = p.Submissions().Get(ctx, "welcome", "user-2")
	require.NoError(t, err)
	assert.Equal(t, "theirs", loaded.Fields["key"])
}

func TestSubmissionRepository_GetAndDelete_NotFound(t *testing.T) {
	p, ctx := setupTestDB(t)

	_, err := p.Submissions().Get(ctx, "welcome", "user-1")
	assert.True(t, persistence.IsSubmissionNotFound(err))

	err = p.Submissions().Delete(ctx, "welcome", "user-1")
	assert.True(t, persistence.IsSubmissionNotFound(err))
}

func TestSubmissionRepository_Delete(t *testing.T) {
	p, ctx := setupTestDB(t)

	submission := models.NewSubmission("sub-1", "welcome", "user-1")
	require.NoError(t, p.Submissions().Save(ctx, submission))
	require.NoError(t, p.Submissions().Delete(ctx, "welcome", "user-1"))

	_, err := p.Submissions().Get(ctx, "welcome", "user-1")
	assert.True(t, persistence.IsSubmissionNotFound(err))
}
