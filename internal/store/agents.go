package store

import (
	"context"

	"github.com/BluesFiend/siq-verification/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const agentColumns = `id, first_name, last_name, sidn, email, phone, team,
	start_date, end_date, lumo_name, siq`

// InsertAgent persists a new agent. Returns ErrDuplicateKey if the SIDN or
// lumo name already exists.
func (q *Queries) InsertAgent(ctx context.Context, a *model.Agent) error {
	_, err := q.db.Exec(ctx, `
		INSERT INTO agent (
			id, first_name, last_name, sidn, email, phone, team,
			start_date, end_date, lumo_name, siq
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		toPgUUID(a.ID), a.FirstName, a.LastName, a.SIDN, a.Email, a.Phone,
		a.Team, toPgDate(a.StartDate), toPgDate(a.EndDate), a.LumoName, a.SIQ,
	)
	return mapError(err)
}

// UpdateAgent writes the full field set of an existing agent.
func (q *Queries) UpdateAgent(ctx context.Context, a *model.Agent) error {
	tag, err := q.db.Exec(ctx, `
		UPDATE agent SET
			first_name = $2, last_name = $3, sidn = $4, email = $5, phone = $6,
			team = $7, start_date = $8, end_date = $9, lumo_name = $10, siq = $11
		WHERE id = $1`,
		toPgUUID(a.ID), a.FirstName, a.LastName, a.SIDN, a.Email, a.Phone,
		a.Team, toPgDate(a.StartDate), toPgDate(a.EndDate), a.LumoName, a.SIQ,
	)
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// AgentByID fetches an agent by primary key.
func (q *Queries) AgentByID(ctx context.Context, id uuid.UUID) (*model.Agent, error) {
	row := q.db.QueryRow(ctx, `SELECT `+agentColumns+` FROM agent WHERE id = $1`, toPgUUID(id))
	return scanAgent(row)
}

// AgentByLumoName resolves an agent by the denormalized lookup name used in
// sale import files.
func (q *Queries) AgentByLumoName(ctx context.Context, lumoName string) (*model.Agent, error) {
	row := q.db.QueryRow(ctx, `SELECT `+agentColumns+` FROM agent WHERE lumo_name = $1`, lumoName)
	return scanAgent(row)
}

// CountAgents returns the total number of agents.
func (q *Queries) CountAgents(ctx context.Context) (int64, error) {
	var count int64
	if err := q.db.QueryRow(ctx, `SELECT count(*) FROM agent`).Scan(&count); err != nil {
		return 0, mapError(err)
	}
	return count, nil
}

// ListAgents returns one page of agents ordered by name.
func (q *Queries) ListAgents(ctx context.Context, limit, offset int) ([]*model.Agent, error) {
	rows, err := q.db.Query(ctx,
		`SELECT `+agentColumns+` FROM agent ORDER BY first_name, last_name LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, mapError(err)
	}
	return collectAgents(rows)
}

// AllAgents returns every agent ordered by name, for select inputs.
func (q *Queries) AllAgents(ctx context.Context) ([]*model.Agent, error) {
	rows, err := q.db.Query(ctx,
		`SELECT `+agentColumns+` FROM agent ORDER BY first_name, last_name`)
	if err != nil {
		return nil, mapError(err)
	}
	return collectAgents(rows)
}

func collectAgents(rows pgx.Rows) ([]*model.Agent, error) {
	defer rows.Close()
	var agents []*model.Agent
	for rows.Next() {
		a, err := scanAgent(rows)
		if err != nil {
			return nil, err
		}
		agents = append(agents, a)
	}
	return agents, rows.Err()
}

func scanAgent(row pgx.Row) (*model.Agent, error) {
	var (
		a          model.Agent
		id         pgtype.UUID
		start, end pgtype.Date
	)
	err := row.Scan(&id, &a.FirstName, &a.LastName, &a.SIDN, &a.Email, &a.Phone,
		&a.Team, &start, &end, &a.LumoName, &a.SIQ)
	if err != nil {
		return nil, mapError(err)
	}
	a.ID = fromPgUUID(id)
	a.StartDate = fromPgDate(start)
	a.EndDate = fromPgDate(end)
	return &a, nil
}
