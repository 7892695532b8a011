package postgresql

// migrations returns the ordered schema migrations for the wizard store.
// Templates are kept as their raw JSON documents so condition compilation
// always happens in one place, at parse time.
func migrations() map[int]string {
	return map[int]string{
		1: `
			CREATE TABLE IF NOT EXISTS wizard_templates (
				id TEXT PRIMARY KEY,
				document JSONB NOT NULL,
				created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
			);

			CREATE TABLE IF NOT EXISTS wizard_submissions (
				id TEXT PRIMARY KEY,
				template_id TEXT NOT NULL,
				user_id TEXT NOT NULL,
				fields JSONB NOT NULL DEFAULT '{}'::jsonb,
				field_order JSONB NOT NULL DEFAULT '[]'::jsonb,
				current_step_id TEXT NOT NULL DEFAULT '',
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
				UNIQUE (template_id, user_id)
			);

			CREATE INDEX IF NOT EXISTS idx_wizard_submissions_template
				ON wizard_submissions (template_id);
		`,
	}
}
