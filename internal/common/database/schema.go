// internal/common/database/schema.go
package database

import "context"

// schemaStatements holds the idempotent table definitions applied at startup.
// The unique constraint on applications (job_id, candidate_id) backs the
// one-application-per-candidate-per-job rule; its name is what the
// applications service matches on when translating unique violations.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS candidates (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL DEFAULT '',
		phone TEXT NOT NULL DEFAULT '',
		location TEXT NOT NULL DEFAULT '',
		education TEXT NOT NULL DEFAULT '',
		experience TEXT NOT NULL DEFAULT '',
		skills TEXT[] NOT NULL DEFAULT '{}',
		resume_url TEXT NOT NULL DEFAULT '',
		license_type TEXT NOT NULL DEFAULT '',
		license_number TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS recruiters (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL UNIQUE,
		company_name TEXT NOT NULL,
		industry TEXT NOT NULL DEFAULT '',
		description TEXT NOT NULL DEFAULT '',
		location TEXT NOT NULL DEFAULT '',
		logo_url TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS jobs (
		id TEXT PRIMARY KEY,
		recruiter_id TEXT NOT NULL REFERENCES recruiters(id),
		title TEXT NOT NULL,
		location TEXT NOT NULL DEFAULT '',
		job_description TEXT NOT NULL DEFAULT '',
		job_type TEXT NOT NULL DEFAULT '',
		experience_level TEXT NOT NULL DEFAULT '',
		skills_required TEXT[] NOT NULL DEFAULT '{}',
		application_deadline TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS applications (
		id TEXT PRIMARY KEY,
		job_id TEXT NOT NULL REFERENCES jobs(id),
		candidate_id TEXT NOT NULL REFERENCES candidates(id),
		status TEXT NOT NULL DEFAULT 'applied',
		cover_letter TEXT NOT NULL DEFAULT '',
		resume_url TEXT NOT NULL DEFAULT '',
		applied_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL,
		CONSTRAINT applications_job_id_candidate_id_key UNIQUE (job_id, candidate_id)
	)`,
	`CREATE TABLE IF NOT EXISTS notifications (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		candidate_id TEXT NOT NULL DEFAULT '',
		application_id TEXT,
		type TEXT NOT NULL,
		title TEXT NOT NULL,
		message TEXT NOT NULL,
		is_read BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS analysis_results (
		id TEXT PRIMARY KEY,
		application_id TEXT,
		resume_text TEXT NOT NULL DEFAULT '',
		job_description TEXT NOT NULL DEFAULT '',
		overall_match_score INT NOT NULL,
		key_skills_matched TEXT[] NOT NULL DEFAULT '{}',
		missing_skills TEXT[] NOT NULL DEFAULT '{}',
		summary TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS user_roles (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL UNIQUE,
		role TEXT NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS user_bans (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL UNIQUE,
		reason TEXT NOT NULL DEFAULT '',
		banned_until TIMESTAMPTZ NOT NULL,
		created_at TIMESTAMPTZ NOT NULL
	)`,
}

// EnsureSchema creates the application tables if they do not exist.
func (c *PostgresClient) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := c.DB.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
