package imports

import (
	"errors"
	"io"
	"strings"
	"testing"
)

const saleHeader = "chnl_dep_name,agent_name,party_code,site_id,client_name," +
	"phone_no,postal_suburb,district_code,nmi_mirn,client_type," +
	"product_type_code,SignedDate,LoadedDate,annual_consumption,agent_commission_value"

const agentHeader = "first_name,last_name,sidn,start,email,phone,team,siq,lumo_name"

// saleLine builds a well-formed data row matching saleHeader column order.
func saleLine(nmi, agentName, commission string) string {
	return strings.Join([]string{
		"SIQ - Residential (SIVR)", agentName, "PC01", "SITE1", "Jane Client",
		"0400000000", "Sometown", "D1", nmi, "RES", "POWER",
		"05/03/2021", "06/03/2021", "4500", commission,
	}, ",")
}

func TestSaleReaderMapsColumnsByName(t *testing.T) {
	input := saleHeader + "\n" + saleLine("6001234567", "SMITH, JOHN A", "$150.00") + "\n"

	// The source file quotes the agent name because it contains a comma.
	input = strings.Replace(input, "SMITH, JOHN A", `"SMITH, JOHN A"`, 1)

	r, err := NewSaleReader(strings.NewReader(input), KindSale)
	if err != nil {
		t.Fatalf("NewSaleReader: %v", err)
	}

	row, err := r.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}

	if row.NMIMirn != "6001234567" {
		t.Errorf("NMIMirn = %q, want %q", row.NMIMirn, "6001234567")
	}
	if row.AgentName != "SMITH, JOHN A" {
		t.Errorf("AgentName = %q, want %q", row.AgentName, "SMITH, JOHN A")
	}
	if row.ChannelName != "SIQ - Residential (SIVR)" {
		t.Errorf("ChannelName = %q", row.ChannelName)
	}
	if row.CommissionValue != 150 {
		t.Errorf("CommissionValue = %v, want 150", row.CommissionValue)
	}
	if row.SignedDate == nil || row.SignedDate.Day() != 5 || row.SignedDate.Month() != 3 {
		t.Errorf("SignedDate = %v, want 5 March 2021", row.SignedDate)
	}
	if row.AnnualConsumption == nil || *row.AnnualConsumption != 4500 {
		t.Errorf("AnnualConsumption = %v, want 4500", row.AnnualConsumption)
	}

	if _, err := r.Next(); err != io.EOF {
		t.Errorf("expected io.EOF after last row, got %v", err)
	}
}

func TestSaleReaderColumnOrderIndependent(t *testing.T) {
	// Same vocabulary, reshuffled: mapping must follow header names, not
	// positions.
	input := "nmi_mirn,agent_commission_value,chnl_dep_name,agent_name,party_code," +
		"site_id,client_name,phone_no,postal_suburb,district_code,client_type," +
		"product_type_code,SignedDate,LoadedDate,annual_consumption\n" +
		"6009999999,$75.50,CH,Agent Name,PC,S,C,P,PS,DC,CT,PT,01/01/2022,,\n"

	r, err := NewSaleReader(strings.NewReader(input), KindSale)
	if err != nil {
		t.Fatalf("NewSaleReader: %v", err)
	}
	row, err := r.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if row.NMIMirn != "6009999999" {
		t.Errorf("NMIMirn = %q, want %q", row.NMIMirn, "6009999999")
	}
	if row.CommissionValue != 75.50 {
		t.Errorf("CommissionValue = %v, want 75.50", row.CommissionValue)
	}
	if row.LoadedDate != nil {
		t.Errorf("LoadedDate = %v, want nil for empty cell", row.LoadedDate)
	}
	if row.AnnualConsumption != nil {
		t.Errorf("AnnualConsumption = %v, want nil for empty cell", row.AnnualConsumption)
	}
}

func TestSaleReaderStripsBOM(t *testing.T) {
	input := "\ufeff" + saleHeader + "\n" + saleLine("6001", "A", "10") + "\n"

	r, err := NewSaleReader(strings.NewReader(input), KindSale)
	if err != nil {
		t.Fatalf("NewSaleReader with BOM: %v", err)
	}
	row, err := r.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if row.ChannelName != "SIQ - Residential (SIVR)" {
		t.Errorf("first mapped column broken by BOM: %q", row.ChannelName)
	}
}

func TestSaleReaderMissingColumn(t *testing.T) {
	// Header missing agent_commission_value.
	input := strings.Replace(saleHeader, ",agent_commission_value", "", 1) + "\n"

	_, err := NewSaleReader(strings.NewReader(input), KindCancel)
	var mce *MissingColumnError
	if !errors.As(err, &mce) {
		t.Fatalf("expected MissingColumnError, got %v", err)
	}
	if mce.Column != "agent_commission_value" {
		t.Errorf("Column = %q, want %q", mce.Column, "agent_commission_value")
	}
	if mce.Kind != KindCancel {
		t.Errorf("Kind = %q, want %q", mce.Kind, KindCancel)
	}
}

func TestSaleReaderEmptyFile(t *testing.T) {
	if _, err := NewSaleReader(strings.NewReader(""), KindSale); err == nil {
		t.Error("expected error for empty file")
	}
}

func TestSaleReaderSkipsBlankRows(t *testing.T) {
	input := saleHeader + "\n" +
		",,,,,,,,,,,,,,\n" +
		saleLine("6002", "A", "20") + "\n" +
		"\n"

	r, err := NewSaleReader(strings.NewReader(input), KindSale)
	if err != nil {
		t.Fatalf("NewSaleReader: %v", err)
	}
	row, err := r.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if row.NMIMirn != "6002" {
		t.Errorf("NMIMirn = %q, want %q", row.NMIMirn, "6002")
	}
	if _, err := r.Next(); err != io.EOF {
		t.Errorf("expected io.EOF, got %v", err)
	}
}

func TestSaleReaderContinuesAfterRowError(t *testing.T) {
	input := saleHeader + "\n" +
		strings.Replace(saleLine("6003", "A", "30"), "05/03/2021", "2021-03-05", 1) + "\n" +
		saleLine("6004", "A", "40") + "\n"

	r, err := NewSaleReader(strings.NewReader(input), KindSale)
	if err != nil {
		t.Fatalf("NewSaleReader: %v", err)
	}

	_, err = r.Next()
	var de *DateParseError
	if !errors.As(err, &de) {
		t.Fatalf("expected DateParseError for first row, got %v", err)
	}
	var re *RowError
	if !errors.As(err, &re) {
		t.Fatalf("expected RowError wrapping, got %v", err)
	}
	if re.Line != 2 {
		t.Errorf("RowError.Line = %d, want 2", re.Line)
	}

	row, err := r.Next()
	if err != nil {
		t.Fatalf("reader unusable after row error: %v", err)
	}
	if row.NMIMirn != "6004" {
		t.Errorf("NMIMirn = %q, want %q", row.NMIMirn, "6004")
	}
}

func TestSaleReaderShortRow(t *testing.T) {
	input := saleHeader + "\n" + "only,three,cells\n" + saleLine("6005", "A", "50") + "\n"

	r, err := NewSaleReader(strings.NewReader(input), KindSale)
	if err != nil {
		t.Fatalf("NewSaleReader: %v", err)
	}
	if _, err := r.Next(); err == nil {
		t.Fatal("expected error for short row")
	}
	row, err := r.Next()
	if err != nil {
		t.Fatalf("reader unusable after short row: %v", err)
	}
	if row.NMIMirn != "6005" {
		t.Errorf("NMIMirn = %q, want %q", row.NMIMirn, "6005")
	}
}

func TestAgentReader(t *testing.T) {
	input := agentHeader + "\n" +
		"Jane,Doe,S123,15/02/2020,jane@example.com,0411222333,Alpha,Yes,\"DOE, JANE\"\n" +
		"John,Roe,S124,,john@example.com,0411222334,Beta,no,\"ROE, JOHN\"\n"

	r, err := NewAgentReader(strings.NewReader(input))
	if err != nil {
		t.Fatalf("NewAgentReader: %v", err)
	}

	row, err := r.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if row.SIDN != "S123" {
		t.Errorf("SIDN = %q, want %q", row.SIDN, "S123")
	}
	if !row.SIQ {
		t.Error("SIQ = false, want true for \"Yes\"")
	}
	if row.LumoName != "DOE, JANE" {
		t.Errorf("LumoName = %q", row.LumoName)
	}
	if row.StartDate == nil || row.StartDate.Day() != 15 || row.StartDate.Month() != 2 {
		t.Errorf("StartDate = %v, want 15 February 2020", row.StartDate)
	}

	row, err = r.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if row.SIQ {
		t.Error("SIQ = true, want false for \"no\"")
	}
	if row.StartDate != nil {
		t.Errorf("StartDate = %v, want nil for empty cell", row.StartDate)
	}
}

func TestAgentReaderMissingColumn(t *testing.T) {
	input := "first_name,last_name,sidn\n"
	_, err := NewAgentReader(strings.NewReader(input))
	var mce *MissingColumnError
	if !errors.As(err, &mce) {
		t.Fatalf("expected MissingColumnError, got %v", err)
	}
}
