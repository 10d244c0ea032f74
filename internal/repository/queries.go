package repository

// Queries are kept per dialect because the placeholder syntax differs.
// user_id is always passed as a bound parameter.
const (
	selectUserPostgres = `
		SELECT id, username, email, created_at, updated_at
		FROM users
		WHERE id = $1
	`

	selectUserProjectsPostgres = `
		SELECT
			p.id AS project_id,
			p.project_name,
			COALESCE(p.description, '') AS description,
			p.created_at,
			p.updated_at,
			up.role,
			up.assigned_at
		FROM user_projects up
		INNER JOIN projects p ON up.project_id = p.id
		WHERE up.user_id = $1
	`

	selectUserMySQL = `
		SELECT id, username, email, created_at, updated_at
		FROM users
		WHERE id = ?
	`

	selectUserProjectsMySQL = `
		SELECT
			p.id AS project_id,
			p.project_name,
			COALESCE(p.description, '') AS description,
			p.created_at,
			p.updated_at,
			up.role,
			up.assigned_at
		FROM user_projects up
		INNER JOIN projects p ON up.project_id = p.id
		WHERE up.user_id = ?
	`
)
