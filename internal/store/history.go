package store

import (
	"context"

	"github.com/BluesFiend/siq-verification/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

// AppendStatusHistory writes one audit row for a sale status change.
// History rows are append-only and never updated or deleted.
func (q *Queries) AppendStatusHistory(ctx context.Context, saleID uuid.UUID, status model.SaleStatus) error {
	_, err := q.db.Exec(ctx,
		`INSERT INTO sale_status_history (id, sale_id, status) VALUES ($1, $2, $3)`,
		toPgUUID(uuid.New()), toPgUUID(saleID), string(status))
	return mapError(err)
}

// StatusHistoryBySale returns a sale's status trail, newest first.
func (q *Queries) StatusHistoryBySale(ctx context.Context, saleID uuid.UUID) ([]*model.SaleStatusHistory, error) {
	rows, err := q.db.Query(ctx,
		`SELECT id, sale_id, status, created FROM sale_status_history
		 WHERE sale_id = $1 ORDER BY created DESC`,
		toPgUUID(saleID))
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var entries []*model.SaleStatusHistory
	for rows.Next() {
		var (
			h          model.SaleStatusHistory
			id, saleFK pgtype.UUID
			status     string
		)
		if err := rows.Scan(&id, &saleFK, &status, &h.Created); err != nil {
			return nil, mapError(err)
		}
		h.ID = fromPgUUID(id)
		h.SaleID = fromPgUUID(saleFK)
		h.Status = model.SaleStatus(status)
		entries = append(entries, &h)
	}
	return entries, rows.Err()
}
