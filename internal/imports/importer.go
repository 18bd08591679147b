package imports

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/BluesFiend/siq-verification/internal/logging"
	"github.com/BluesFiend/siq-verification/internal/model"
	"github.com/BluesFiend/siq-verification/internal/store"
	"github.com/google/uuid"
)

// UnitOfWork is the record-store transaction the engine drives for one row.
// Every row gets its own unit of work, committed on success and rolled back
// on every failure path.
type UnitOfWork interface {
	AgentByLumoName(ctx context.Context, lumoName string) (*model.Agent, error)
	SaleByNMI(ctx context.Context, nmi string) (*model.Sale, error)
	UnclawedSaleByNMI(ctx context.Context, nmi string) (*model.Sale, error)
	InsertSale(ctx context.Context, s *model.Sale) error
	InsertAgent(ctx context.Context, a *model.Agent) error
	SetSaleStatus(ctx context.Context, saleID uuid.UUID, status model.SaleStatus, clawbackValue *float64) error
	AppendStatusHistory(ctx context.Context, saleID uuid.UUID, status model.SaleStatus) error
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// BeginFunc starts a new unit of work.
type BeginFunc func(ctx context.Context) (UnitOfWork, error)

// OutcomeKind tags the per-row result of a reconciliation pass.
type OutcomeKind int

const (
	// OutcomeInserted - a new record was created.
	OutcomeInserted OutcomeKind = iota
	// OutcomeUpdated - an existing sale's status was advanced.
	OutcomeUpdated
	// OutcomeSkipped - an expected no-op (duplicate, unresolvable agent,
	// lookup miss, already-terminal sale).
	OutcomeSkipped
	// OutcomeFailed - a malformed row or store error.
	OutcomeFailed
)

// RowOutcome is the result of reconciling a single row.
type RowOutcome struct {
	Line    int
	Kind    OutcomeKind
	Key     string // nmi_mirn or sidn of the row
	Message string // user-facing notification, set for skipped and failed rows
}

// Result summarizes a full file reconciliation pass.
type Result struct {
	RunID    uuid.UUID
	Kind     Kind
	Rows     int
	Inserted int
	Updated  int
	Skipped  int
	Failed   int
	Outcomes []RowOutcome
}

func (r *Result) record(out RowOutcome) {
	r.Rows++
	switch out.Kind {
	case OutcomeInserted:
		r.Inserted++
	case OutcomeUpdated:
		r.Updated++
	case OutcomeSkipped:
		r.Skipped++
	case OutcomeFailed:
		r.Failed++
	}
	r.Outcomes = append(r.Outcomes, out)
}

// Notifications returns the user-facing messages for skipped and failed
// rows, in row order.
func (r *Result) Notifications() []string {
	var msgs []string
	for _, out := range r.Outcomes {
		if out.Message != "" {
			msgs = append(msgs, out.Message)
		}
	}
	return msgs
}

// Importer reconciles parsed export rows against the record store.
type Importer struct {
	begin        BeginFunc
	strictAgents bool
}

// NewImporter creates an Importer. With strictAgents set, a sale row whose
// agent name matches no Agent.lumo_name is skipped; otherwise the sale is
// stored with only the denormalized name.
func NewImporter(begin BeginFunc, strictAgents bool) *Importer {
	return &Importer{begin: begin, strictAgents: strictAgents}
}

// Run parses the export stream and applies the reconciliation rule for the
// given kind, row by row. Header resolution failures abort the whole file;
// row failures are collected and processing continues. The returned error is
// non-nil only for file-level failures.
func (im *Importer) Run(ctx context.Context, kind Kind, r io.Reader) (*Result, error) {
	res := &Result{RunID: uuid.New(), Kind: kind}
	log := logging.WithFields(ctx, "run_id", res.RunID, "kind", kind)

	switch kind {
	case KindSale, KindCancel, KindClawback:
		reader, err := NewSaleReader(r, kind)
		if err != nil {
			return nil, err
		}
		for {
			row, err := reader.Next()
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil {
				res.record(RowOutcome{Line: rowLine(err), Kind: OutcomeFailed, Message: err.Error()})
				continue
			}

			var out RowOutcome
			switch kind {
			case KindSale:
				out = im.applySale(ctx, row)
			case KindCancel:
				out = im.applyCancel(ctx, row)
			case KindClawback:
				out = im.applyClawback(ctx, row)
			}
			if out.Message != "" {
				log.Debug("row not applied", "line", out.Line, "reason", out.Message)
			}
			res.record(out)
		}

	case KindAgent:
		reader, err := NewAgentReader(r)
		if err != nil {
			return nil, err
		}
		for {
			row, err := reader.Next()
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil {
				res.record(RowOutcome{Line: rowLine(err), Kind: OutcomeFailed, Message: err.Error()})
				continue
			}
			res.record(im.applyAgent(ctx, row))
		}

	default:
		return nil, fmt.Errorf("unknown import kind %q", kind)
	}

	log.Info("import complete",
		"rows", res.Rows,
		"inserted", res.Inserted,
		"updated", res.Updated,
		"skipped", res.Skipped,
		"failed", res.Failed,
	)
	return res, nil
}

// applySale creates a new Unverified sale from a sale-file row, resolving
// the owning agent by lumo name. First seen wins: a duplicate NMI/MIRN is
// rolled back and skipped.
func (im *Importer) applySale(ctx context.Context, row *SaleRow) RowOutcome {
	uow, err := im.begin(ctx)
	if err != nil {
		return failed(row.Line, row.NMIMirn, err)
	}
	defer uow.Rollback(ctx)

	commission := row.CommissionValue
	sale := &model.Sale{
		ID:                uuid.New(),
		AgentName:         row.AgentName,
		PartyCode:         row.PartyCode,
		ChannelName:       row.ChannelName,
		ClientName:        row.ClientName,
		SiteID:            row.SiteID,
		PhoneNo:           row.PhoneNo,
		PostalSuburb:      row.PostalSuburb,
		DistrictCode:      row.DistrictCode,
		ClientType:        row.ClientType,
		ProductTypeCode:   row.ProductTypeCode,
		NMIMirn:           row.NMIMirn,
		SignedDate:        row.SignedDate,
		LoadedDate:        row.LoadedDate,
		AnnualConsumption: row.AnnualConsumption,
		CommissionValue:   &commission,
		SaleStatus:        model.StatusUnverified,
	}

	agent, err := uow.AgentByLumoName(ctx, row.AgentName)
	switch {
	case err == nil:
		sale.AgentID = uuid.NullUUID{UUID: agent.ID, Valid: true}
	case errors.Is(err, store.ErrNotFound):
		if im.strictAgents {
			return skipped(row.Line, row.NMIMirn,
				fmt.Sprintf("Agent %s could not be found.", row.AgentName))
		}
	default:
		return failed(row.Line, row.NMIMirn, err)
	}

	if err := uow.InsertSale(ctx, sale); err != nil {
		if errors.Is(err, store.ErrDuplicateKey) {
			return skipped(row.Line, row.NMIMirn,
				fmt.Sprintf("NMI %s has already been imported.", row.NMIMirn))
		}
		return failed(row.Line, row.NMIMirn, err)
	}
	if err := uow.AppendStatusHistory(ctx, sale.ID, model.StatusUnverified); err != nil {
		return failed(row.Line, row.NMIMirn, err)
	}
	if err := uow.Commit(ctx); err != nil {
		return failed(row.Line, row.NMIMirn, err)
	}

	return RowOutcome{Line: row.Line, Kind: OutcomeInserted, Key: row.NMIMirn}
}

// applyCancel moves an existing sale to Cancelled unless it already is.
func (im *Importer) applyCancel(ctx context.Context, row *SaleRow) RowOutcome {
	uow, err := im.begin(ctx)
	if err != nil {
		return failed(row.Line, row.NMIMirn, err)
	}
	defer uow.Rollback(ctx)

	sale, err := uow.SaleByNMI(ctx, row.NMIMirn)
	if errors.Is(err, store.ErrNotFound) {
		return skipped(row.Line, row.NMIMirn,
			fmt.Sprintf("NMI %s could not be found for cancellation.", row.NMIMirn))
	}
	if err != nil {
		return failed(row.Line, row.NMIMirn, err)
	}
	if sale.SaleStatus == model.StatusCancelled {
		return skipped(row.Line, row.NMIMirn,
			fmt.Sprintf("NMI %s is already cancelled or clawed back.", row.NMIMirn))
	}

	if err := uow.SetSaleStatus(ctx, sale.ID, model.StatusCancelled, nil); err != nil {
		return failed(row.Line, row.NMIMirn, err)
	}
	if err := uow.AppendStatusHistory(ctx, sale.ID, model.StatusCancelled); err != nil {
		return failed(row.Line, row.NMIMirn, err)
	}
	if err := uow.Commit(ctx); err != nil {
		return failed(row.Line, row.NMIMirn, err)
	}

	return RowOutcome{Line: row.Line, Kind: OutcomeUpdated, Key: row.NMIMirn}
}

// applyClawback claws back a sale that has not been clawed back yet,
// recording the clawed commission from the file.
func (im *Importer) applyClawback(ctx context.Context, row *SaleRow) RowOutcome {
	uow, err := im.begin(ctx)
	if err != nil {
		return failed(row.Line, row.NMIMirn, err)
	}
	defer uow.Rollback(ctx)

	sale, err := uow.UnclawedSaleByNMI(ctx, row.NMIMirn)
	if errors.Is(err, store.ErrNotFound) {
		return skipped(row.Line, row.NMIMirn,
			fmt.Sprintf("NMI %s could not be found or is already clawed back.", row.NMIMirn))
	}
	if err != nil {
		return failed(row.Line, row.NMIMirn, err)
	}

	clawback := row.CommissionValue
	if err := uow.SetSaleStatus(ctx, sale.ID, model.StatusClawback, &clawback); err != nil {
		return failed(row.Line, row.NMIMirn, err)
	}
	if err := uow.AppendStatusHistory(ctx, sale.ID, model.StatusClawback); err != nil {
		return failed(row.Line, row.NMIMirn, err)
	}
	if err := uow.Commit(ctx); err != nil {
		return failed(row.Line, row.NMIMirn, err)
	}

	return RowOutcome{Line: row.Line, Kind: OutcomeUpdated, Key: row.NMIMirn}
}

// applyAgent creates a new agent from an agent-list row. Duplicate SIDNs
// are rolled back and skipped.
func (im *Importer) applyAgent(ctx context.Context, row *AgentRow) RowOutcome {
	uow, err := im.begin(ctx)
	if err != nil {
		return failed(row.Line, row.SIDN, err)
	}
	defer uow.Rollback(ctx)

	agent := &model.Agent{
		ID:        uuid.New(),
		FirstName: row.FirstName,
		LastName:  row.LastName,
		SIDN:      row.SIDN,
		Email:     row.Email,
		Phone:     row.Phone,
		Team:      row.Team,
		StartDate: row.StartDate,
		LumoName:  row.LumoName,
		SIQ:       row.SIQ,
	}

	if err := uow.InsertAgent(ctx, agent); err != nil {
		if errors.Is(err, store.ErrDuplicateKey) {
			return skipped(row.Line, row.SIDN,
				fmt.Sprintf("SIDN %s has already been imported.", row.SIDN))
		}
		return failed(row.Line, row.SIDN, err)
	}
	if err := uow.Commit(ctx); err != nil {
		return failed(row.Line, row.SIDN, err)
	}

	return RowOutcome{Line: row.Line, Kind: OutcomeInserted, Key: row.SIDN}
}

func skipped(line int, key, message string) RowOutcome {
	return RowOutcome{Line: line, Kind: OutcomeSkipped, Key: key, Message: message}
}

func failed(line int, key string, err error) RowOutcome {
	return RowOutcome{
		Line:    line,
		Kind:    OutcomeFailed,
		Key:     key,
		Message: fmt.Sprintf("line %d: %v", line, err),
	}
}

// rowLine extracts the source line from a reader error, 0 if untagged.
func rowLine(err error) int {
	var re *RowError
	if errors.As(err, &re) {
		return re.Line
	}
	return 0
}
