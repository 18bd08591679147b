package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/BluesFiend/siq-verification/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
)

const saleColumns = `id, agent_id, agent_name, party_code, channel_name, client_name,
	site_id, phone_no, postal_suburb, district_code, client_type, product_type_code,
	nmi_mirn, signed_date, loaded_date, annual_consumption, commission_value,
	clawback_value, sale_status, created, updated`

// InsertSale persists a new sale. Returns ErrDuplicateKey if the NMI/MIRN
// already exists.
func (q *Queries) InsertSale(ctx context.Context, s *model.Sale) error {
	_, err := q.db.Exec(ctx, `
		INSERT INTO sale (
			id, agent_id, agent_name, party_code, channel_name, client_name,
			site_id, phone_no, postal_suburb, district_code, client_type,
			product_type_code, nmi_mirn, signed_date, loaded_date,
			annual_consumption, commission_value, clawback_value, sale_status
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
			$11, $12, $13, $14, $15, $16, $17, $18, $19
		)`,
		toPgUUID(s.ID), toPgNullUUID(s.AgentID), s.AgentName, s.PartyCode,
		s.ChannelName, s.ClientName, s.SiteID, s.PhoneNo, s.PostalSuburb,
		s.DistrictCode, s.ClientType, s.ProductTypeCode, s.NMIMirn,
		toPgDate(s.SignedDate), toPgDate(s.LoadedDate),
		toPgFloat(s.AnnualConsumption), toPgFloat(s.CommissionValue),
		toPgFloat(s.ClawbackValue), string(s.SaleStatus),
	)
	return mapError(err)
}

// SaleByID fetches a sale by primary key.
func (q *Queries) SaleByID(ctx context.Context, id uuid.UUID) (*model.Sale, error) {
	row := q.db.QueryRow(ctx, `SELECT `+saleColumns+` FROM sale WHERE id = $1`, toPgUUID(id))
	return scanSale(row)
}

// SaleByNMI fetches a sale by its unique business key.
func (q *Queries) SaleByNMI(ctx context.Context, nmi string) (*model.Sale, error) {
	row := q.db.QueryRow(ctx, `SELECT `+saleColumns+` FROM sale WHERE nmi_mirn = $1`, nmi)
	return scanSale(row)
}

// UnclawedSaleByNMI fetches a sale by business key only if its clawback
// value has not been set yet.
func (q *Queries) UnclawedSaleByNMI(ctx context.Context, nmi string) (*model.Sale, error) {
	row := q.db.QueryRow(ctx,
		`SELECT `+saleColumns+` FROM sale WHERE nmi_mirn = $1 AND clawback_value IS NULL`, nmi)
	return scanSale(row)
}

// UpdateSale writes the full editable field set of an existing sale.
// Used by the manual edit form; imports go through SetSaleStatus.
func (q *Queries) UpdateSale(ctx context.Context, s *model.Sale) error {
	tag, err := q.db.Exec(ctx, `
		UPDATE sale SET
			agent_id = $2, agent_name = $3, party_code = $4, channel_name = $5,
			client_name = $6, site_id = $7, phone_no = $8, postal_suburb = $9,
			district_code = $10, client_type = $11, product_type_code = $12,
			nmi_mirn = $13, signed_date = $14, loaded_date = $15,
			annual_consumption = $16, commission_value = $17,
			clawback_value = $18, sale_status = $19, updated = now()
		WHERE id = $1`,
		toPgUUID(s.ID), toPgNullUUID(s.AgentID), s.AgentName, s.PartyCode,
		s.ChannelName, s.ClientName, s.SiteID, s.PhoneNo, s.PostalSuburb,
		s.DistrictCode, s.ClientType, s.ProductTypeCode, s.NMIMirn,
		toPgDate(s.SignedDate), toPgDate(s.LoadedDate),
		toPgFloat(s.AnnualConsumption), toPgFloat(s.CommissionValue),
		toPgFloat(s.ClawbackValue), string(s.SaleStatus),
	)
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// SetSaleStatus updates a sale's status, and its clawback value when one is
// given. The caller appends the matching history row in the same unit of
// work.
func (q *Queries) SetSaleStatus(ctx context.Context, id uuid.UUID, status model.SaleStatus, clawbackValue *float64) error {
	var (
		tag pgconn.CommandTag
		err error
	)
	if clawbackValue != nil {
		tag, err = q.db.Exec(ctx,
			`UPDATE sale SET sale_status = $2, clawback_value = $3, updated = now() WHERE id = $1`,
			toPgUUID(id), string(status), *clawbackValue)
	} else {
		tag, err = q.db.Exec(ctx,
			`UPDATE sale SET sale_status = $2, updated = now() WHERE id = $1`,
			toPgUUID(id), string(status))
	}
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// SaleFilter holds the search criteria for the sales index. Zero values mean
// "no filter" for that field.
type SaleFilter struct {
	AgentID     uuid.NullUUID
	ChannelName string
	SaleStatus  string
	PartyCode   string // substring match
	NMIMirn     string // substring match
}

// buildSaleFilter generates the WHERE clause and args for a SaleFilter.
// Argument placeholders start at $1.
func buildSaleFilter(f SaleFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)

	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if f.AgentID.Valid {
		add("agent_id = $%d", toPgUUID(f.AgentID.UUID))
	}
	if f.ChannelName != "" {
		add("channel_name = $%d", f.ChannelName)
	}
	if f.SaleStatus != "" {
		add("sale_status = $%d", f.SaleStatus)
	}
	if f.PartyCode != "" {
		add("party_code ILIKE $%d", "%"+f.PartyCode+"%")
	}
	if f.NMIMirn != "" {
		add("nmi_mirn ILIKE $%d", "%"+f.NMIMirn+"%")
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// CountSales returns the number of sales matching the filter.
func (q *Queries) CountSales(ctx context.Context, f SaleFilter) (int64, error) {
	where, args := buildSaleFilter(f)
	var count int64
	if err := q.db.QueryRow(ctx, `SELECT count(*) FROM sale`+where, args...).Scan(&count); err != nil {
		return 0, mapError(err)
	}
	return count, nil
}

// SearchSales returns one page of sales matching the filter, newest first.
func (q *Queries) SearchSales(ctx context.Context, f SaleFilter, limit, offset int) ([]*model.Sale, error) {
	where, args := buildSaleFilter(f)
	sql := fmt.Sprintf(`SELECT %s FROM sale%s ORDER BY created DESC, nmi_mirn LIMIT $%d OFFSET $%d`,
		saleColumns, where, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := q.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var sales []*model.Sale
	for rows.Next() {
		s, err := scanSale(rows)
		if err != nil {
			return nil, err
		}
		sales = append(sales, s)
	}
	return sales, rows.Err()
}

func scanSale(row pgx.Row) (*model.Sale, error) {
	var (
		s              model.Sale
		id, agentID    pgtype.UUID
		signed, loaded pgtype.Date
		consumption    pgtype.Float8
		commission     pgtype.Float8
		clawback       pgtype.Float8
		status         string
	)
	err := row.Scan(
		&id, &agentID, &s.AgentName, &s.PartyCode, &s.ChannelName, &s.ClientName,
		&s.SiteID, &s.PhoneNo, &s.PostalSuburb, &s.DistrictCode, &s.ClientType,
		&s.ProductTypeCode, &s.NMIMirn, &signed, &loaded, &consumption,
		&commission, &clawback, &status, &s.Created, &s.Updated,
	)
	if err != nil {
		return nil, mapError(err)
	}
	s.ID = fromPgUUID(id)
	s.AgentID = fromPgNullUUID(agentID)
	s.SignedDate = fromPgDate(signed)
	s.LoadedDate = fromPgDate(loaded)
	s.AnnualConsumption = fromPgFloat(consumption)
	s.CommissionValue = fromPgFloat(commission)
	s.ClawbackValue = fromPgFloat(clawback)
	s.SaleStatus = model.SaleStatus(status)
	return &s, nil
}
