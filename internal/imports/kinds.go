// Package imports is the CSV reconciliation pipeline: it parses the
// periodic exports from the external sales-tracking system (sale, cancel,
// clawback and agent-list files) into typed rows and applies idempotent
// state-transition rules against the record store.
package imports

import "fmt"

// Kind identifies which export file format and reconciliation rule applies.
type Kind string

const (
	KindSale     Kind = "sale"
	KindCancel   Kind = "cancel"
	KindClawback Kind = "clawback"
	KindAgent    Kind = "agent"
)

// Kinds lists all import kinds in upload-form display order.
func Kinds() []Kind {
	return []Kind{KindSale, KindCancel, KindClawback, KindAgent}
}

// ParseKind validates a raw kind selector from the upload form.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindSale, KindCancel, KindClawback, KindAgent:
		return Kind(s), nil
	}
	return "", fmt.Errorf("unknown import kind %q", s)
}

// Label returns the display name shown in the upload form.
func (k Kind) Label() string {
	switch k {
	case KindSale:
		return "Sale Details"
	case KindCancel:
		return "Cancels"
	case KindClawback:
		return "Clawbacks"
	case KindAgent:
		return "Agent List"
	}
	return string(k)
}

// saleFileHeaders are the column names required in sale, cancel and
// clawback exports. Names must match the source system exactly, including
// the CamelCase date columns.
var saleFileHeaders = []string{
	"chnl_dep_name",
	"agent_name",
	"party_code",
	"site_id",
	"client_name",
	"phone_no",
	"postal_suburb",
	"district_code",
	"nmi_mirn",
	"client_type",
	"product_type_code",
	"SignedDate",
	"LoadedDate",
	"annual_consumption",
	"agent_commission_value",
}

// agentFileHeaders are the column names required in agent-list exports.
var agentFileHeaders = []string{
	"first_name",
	"last_name",
	"sidn",
	"start",
	"email",
	"phone",
	"team",
	"siq",
	"lumo_name",
}

// MissingColumnError indicates a required header name is absent from the
// file. It aborts the whole import before any row is processed.
type MissingColumnError struct {
	Kind   Kind
	Column string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("%s file is missing required column %q", e.Kind, e.Column)
}

// DateParseError indicates a malformed date value in a row.
type DateParseError struct {
	Field string
	Value string
}

func (e *DateParseError) Error() string {
	return fmt.Sprintf("invalid date for %s: %q (expected DD/MM/YYYY)", e.Field, e.Value)
}

// NumberParseError indicates a malformed numeric value in a row.
type NumberParseError struct {
	Field string
	Value string
}

func (e *NumberParseError) Error() string {
	return fmt.Sprintf("invalid number for %s: %q", e.Field, e.Value)
}
