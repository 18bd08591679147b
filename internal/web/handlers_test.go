package web

import (
	"fmt"
	"net/url"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/BluesFiend/siq-verification/internal/model"
	"github.com/BluesFiend/siq-verification/internal/store"
)

func TestPageCount(t *testing.T) {
	tests := []struct {
		name  string
		total int64
		size  int
		want  int
	}{
		{"empty still has one page", 0, 20, 1},
		{"exact multiple", 40, 20, 2},
		{"partial last page", 41, 20, 3},
		{"single record", 1, 20, 1},
		{"one short of boundary", 19, 20, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := pageCount(tt.total, tt.size); got != tt.want {
				t.Errorf("pageCount(%d, %d) = %d, want %d", tt.total, tt.size, got, tt.want)
			}
		})
	}
}

func TestClampPage(t *testing.T) {
	tests := []struct {
		page, pages, want int
	}{
		{1, 5, 1},
		{5, 5, 5},
		{6, 5, 5},
		{0, 5, 1},
		{-3, 5, 1},
		{99, 1, 1},
	}

	for _, tt := range tests {
		if got := clampPage(tt.page, tt.pages); got != tt.want {
			t.Errorf("clampPage(%d, %d) = %d, want %d", tt.page, tt.pages, got, tt.want)
		}
	}
}

func TestPageURL_PreservesQuery(t *testing.T) {
	u, err := url.Parse("/?status=Unverified&party_code=AGL&page=3")
	if err != nil {
		t.Fatal(err)
	}

	got := pageURL(u, 4)

	parsed, err := url.Parse(got)
	if err != nil {
		t.Fatalf("pageURL returned unparseable URL %q: %v", got, err)
	}
	q := parsed.Query()
	if q.Get("page") != "4" {
		t.Errorf("page = %q, want %q", q.Get("page"), "4")
	}
	if q.Get("status") != "Unverified" {
		t.Errorf("status = %q, want preserved", q.Get("status"))
	}
	if q.Get("party_code") != "AGL" {
		t.Errorf("party_code = %q, want preserved", q.Get("party_code"))
	}
}

func TestFormDate(t *testing.T) {
	got, err := formDate("2021-03-05")
	if err != nil {
		t.Fatalf("formDate() error = %v", err)
	}
	want := time.Date(2021, 3, 5, 0, 0, 0, 0, time.UTC)
	if got == nil || !got.Equal(want) {
		t.Errorf("formDate() = %v, want %v", got, want)
	}

	got, err = formDate("  ")
	if err != nil || got != nil {
		t.Errorf("formDate(blank) = %v, %v, want nil, nil", got, err)
	}

	if _, err := formDate("05/03/2021"); err == nil {
		t.Error("formDate() expected error for non-ISO input")
	}
}

func TestFormFloat(t *testing.T) {
	got, err := formFloat("125.50")
	if err != nil {
		t.Fatalf("formFloat() error = %v", err)
	}
	if got == nil || *got != 125.50 {
		t.Errorf("formFloat() = %v, want 125.50", got)
	}

	got, err = formFloat("")
	if err != nil || got != nil {
		t.Errorf("formFloat(empty) = %v, %v, want nil, nil", got, err)
	}

	if _, err := formFloat("$125"); err == nil {
		t.Error("formFloat() expected error for currency symbols")
	}
}

func TestApplySaleForm(t *testing.T) {
	agentID := uuid.New()
	sale := &model.Sale{
		ID:         uuid.New(),
		NMIMirn:    "61029000001",
		SaleStatus: model.StatusUnverified,
	}

	form := url.Values{
		"sale_status":            {"Verified"},
		"agent_id":               {agentID.String()},
		"channel":                {"SIQ - Residential (SIVR)"},
		"party_code":             {"AGL"},
		"client_name":            {"SMITH, JOHN"},
		"nmi_mirn":               {"61029000001"},
		"signed_date":            {"2021-03-05"},
		"agent_commission_value": {"125.50"},
		"clawback_value":         {""},
	}

	if err := applySaleForm(sale, form); err != nil {
		t.Fatalf("applySaleForm() error = %v", err)
	}

	if sale.SaleStatus != model.StatusVerified {
		t.Errorf("SaleStatus = %q, want Verified", sale.SaleStatus)
	}
	if !sale.AgentID.Valid || sale.AgentID.UUID != agentID {
		t.Errorf("AgentID = %v, want %v", sale.AgentID, agentID)
	}
	if sale.CommissionValue == nil || *sale.CommissionValue != 125.50 {
		t.Errorf("CommissionValue = %v, want 125.50", sale.CommissionValue)
	}
	if sale.ClawbackValue != nil {
		t.Errorf("ClawbackValue = %v, want nil for empty input", sale.ClawbackValue)
	}
	if sale.SignedDate == nil || sale.SignedDate.Day() != 5 || sale.SignedDate.Month() != time.March {
		t.Errorf("SignedDate = %v, want 5 March 2021", sale.SignedDate)
	}
}

func TestApplySaleForm_InvalidStatus(t *testing.T) {
	sale := &model.Sale{SaleStatus: model.StatusUnverified}
	form := url.Values{"sale_status": {"Bogus"}}

	if err := applySaleForm(sale, form); err == nil {
		t.Error("applySaleForm() expected error for unknown status")
	}
}

func TestApplyAgentForm(t *testing.T) {
	agent := &model.Agent{ID: uuid.New()}
	form := url.Values{
		"first_name": {"Jane"},
		"last_name":  {"Doe"},
		"sidn":       {"S100"},
		"lumo_name":  {"DOE, JANE"},
		"start_date": {"2020-06-01"},
		"siq":        {"true"},
	}

	if err := applyAgentForm(agent, form); err != nil {
		t.Fatalf("applyAgentForm() error = %v", err)
	}
	if agent.FullName() != "Jane Doe" {
		t.Errorf("FullName() = %q, want %q", agent.FullName(), "Jane Doe")
	}
	if !agent.SIQ {
		t.Error("SIQ = false, want true")
	}
	if agent.StartDate == nil {
		t.Error("StartDate = nil, want parsed")
	}
	if agent.EndDate != nil {
		t.Errorf("EndDate = %v, want nil", agent.EndDate)
	}
}

func TestAgentConflictMessage(t *testing.T) {
	agent := &model.Agent{SIDN: "S100", LumoName: "DOE, JANE"}

	// The store wraps the violated constraint name around ErrDuplicateKey.
	err := fmt.Errorf("agent_sidn_key: %w", store.ErrDuplicateKey)
	if got := agentConflictMessage(err, agent); got != "SIDN S100 has already been imported." {
		t.Errorf("sidn conflict message = %q", got)
	}

	err = fmt.Errorf("agent_lumo_name_key: %w", store.ErrDuplicateKey)
	if got := agentConflictMessage(err, agent); got != "Lumo name DOE, JANE is already assigned to another agent." {
		t.Errorf("lumo name conflict message = %q", got)
	}
}

func TestApplyAgentForm_RequiredFields(t *testing.T) {
	agent := &model.Agent{}
	form := url.Values{"first_name": {"Jane"}}

	if err := applyAgentForm(agent, form); err == nil {
		t.Error("applyAgentForm() expected error for missing last name and SIDN")
	}
}
