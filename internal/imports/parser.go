package imports

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
)

// SaleRow is one typed record from a sale, cancel or clawback export.
type SaleRow struct {
	Line              int
	ChannelName       string
	AgentName         string
	PartyCode         string
	SiteID            string
	ClientName        string
	PhoneNo           string
	PostalSuburb      string
	DistrictCode      string
	NMIMirn           string
	ClientType        string
	ProductTypeCode   string
	SignedDate        *time.Time
	LoadedDate        *time.Time
	AnnualConsumption *float64
	CommissionValue   float64
}

// AgentRow is one typed record from an agent-list export.
type AgentRow struct {
	Line      int
	FirstName string
	LastName  string
	SIDN      string
	Email     string
	Phone     string
	Team      string
	LumoName  string
	SIQ       bool
	StartDate *time.Time
}

// RowError is a row-scoped parse failure tagged with the 1-based line
// number it occurred on. The reader stays usable after returning one.
type RowError struct {
	Line int
	Err  error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}

// rowReader reads a header-mapped CSV stream one record at a time. It is a
// single forward pass; readers are not restartable.
type rowReader struct {
	cr     *csv.Reader
	idx    map[string]int
	maxIdx int
}

// newRowReader reads and resolves the header row. A missing required column
// name fails the whole file with MissingColumnError.
func newRowReader(r io.Reader, required []string, kind Kind) (*rowReader, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%s file is empty: no header row", kind)
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s header: %w", kind, err)
	}

	// The source system prefixes some exports with a UTF-8 byte order mark,
	// which encoding/csv leaves attached to the first header name.
	header[0] = strings.TrimPrefix(header[0], "\ufeff")

	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[strings.TrimSpace(name)] = i
	}

	maxIdx := 0
	for _, name := range required {
		pos, ok := idx[name]
		if !ok {
			return nil, &MissingColumnError{Kind: kind, Column: name}
		}
		if pos > maxIdx {
			maxIdx = pos
		}
	}

	return &rowReader{cr: cr, idx: idx, maxIdx: maxIdx}, nil
}

// next returns the next non-blank record and its 1-based line number, or
// io.EOF when the stream is exhausted.
func (r *rowReader) next() ([]string, int, error) {
	for {
		record, err := r.cr.Read()
		if err == io.EOF {
			return nil, 0, io.EOF
		}
		if err != nil {
			line := 0
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				line = pe.Line
			}
			return nil, line, &RowError{Line: line, Err: err}
		}
		line, _ := r.cr.FieldPos(0)

		blank := true
		for _, v := range record {
			if strings.TrimSpace(v) != "" {
				blank = false
				break
			}
		}
		if blank {
			continue
		}

		if len(record) <= r.maxIdx {
			return nil, line, &RowError{Line: line, Err: fmt.Errorf(
				"row has %d columns, expected at least %d", len(record), r.maxIdx+1)}
		}
		return record, line, nil
	}
}

// cell returns the trimmed value of a mapped column.
func (r *rowReader) cell(record []string, name string) string {
	pos, ok := r.idx[name]
	if !ok || pos >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[pos])
}

// SaleReader yields typed rows from a sale, cancel or clawback export.
type SaleReader struct {
	rr *rowReader
}

// NewSaleReader resolves the 15-column sale-file header over r.
func NewSaleReader(r io.Reader, kind Kind) (*SaleReader, error) {
	rr, err := newRowReader(r, saleFileHeaders, kind)
	if err != nil {
		return nil, err
	}
	return &SaleReader{rr: rr}, nil
}

// Next returns the next row, io.EOF at end of stream, or a row-scoped error.
// After a row-scoped error the reader remains usable: one malformed row does
// not end the pass.
func (s *SaleReader) Next() (*SaleRow, error) {
	record, line, err := s.rr.next()
	if err != nil {
		return nil, err
	}

	row := &SaleRow{
		Line:            line,
		ChannelName:     s.rr.cell(record, "chnl_dep_name"),
		AgentName:       s.rr.cell(record, "agent_name"),
		PartyCode:       s.rr.cell(record, "party_code"),
		SiteID:          s.rr.cell(record, "site_id"),
		ClientName:      s.rr.cell(record, "client_name"),
		PhoneNo:         s.rr.cell(record, "phone_no"),
		PostalSuburb:    s.rr.cell(record, "postal_suburb"),
		DistrictCode:    s.rr.cell(record, "district_code"),
		NMIMirn:         s.rr.cell(record, "nmi_mirn"),
		ClientType:      s.rr.cell(record, "client_type"),
		ProductTypeCode: s.rr.cell(record, "product_type_code"),
	}

	if row.SignedDate, err = parseDate("SignedDate", s.rr.cell(record, "SignedDate")); err != nil {
		return nil, &RowError{Line: line, Err: err}
	}
	if row.LoadedDate, err = parseDate("LoadedDate", s.rr.cell(record, "LoadedDate")); err != nil {
		return nil, &RowError{Line: line, Err: err}
	}
	if row.AnnualConsumption, err = parseConsumption("annual_consumption", s.rr.cell(record, "annual_consumption")); err != nil {
		return nil, &RowError{Line: line, Err: err}
	}
	if row.CommissionValue, err = parseCommission("agent_commission_value", s.rr.cell(record, "agent_commission_value")); err != nil {
		return nil, &RowError{Line: line, Err: err}
	}

	return row, nil
}

// AgentReader yields typed rows from an agent-list export.
type AgentReader struct {
	rr *rowReader
}

// NewAgentReader resolves the 9-column agent-file header over r.
func NewAgentReader(r io.Reader) (*AgentReader, error) {
	rr, err := newRowReader(r, agentFileHeaders, KindAgent)
	if err != nil {
		return nil, err
	}
	return &AgentReader{rr: rr}, nil
}

// Next returns the next row, io.EOF at end of stream, or a row-scoped error.
func (a *AgentReader) Next() (*AgentRow, error) {
	record, line, err := a.rr.next()
	if err != nil {
		return nil, err
	}

	row := &AgentRow{
		Line:      line,
		FirstName: a.rr.cell(record, "first_name"),
		LastName:  a.rr.cell(record, "last_name"),
		SIDN:      a.rr.cell(record, "sidn"),
		Email:     a.rr.cell(record, "email"),
		Phone:     a.rr.cell(record, "phone"),
		Team:      a.rr.cell(record, "team"),
		LumoName:  a.rr.cell(record, "lumo_name"),
		SIQ:       parseYesNo(a.rr.cell(record, "siq")),
	}

	if row.StartDate, err = parseDate("start", a.rr.cell(record, "start")); err != nil {
		return nil, &RowError{Line: line, Err: err}
	}

	return row, nil
}
