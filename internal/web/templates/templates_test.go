package templates

import (
	"context"
	"strings"
	"testing"
)

func TestSalesIndex_EscapesValues(t *testing.T) {
	d := SalesIndexData{
		Sales: []SaleRowView{{
			ID:         "abc",
			NMIMirn:    "61029000001",
			ClientName: `<script>alert("x")</script>`,
			Status:     "Unverified",
		}},
		Page:  1,
		Pages: 1,
	}

	var b strings.Builder
	if err := SalesIndex(d).Render(context.Background(), &b); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	out := b.String()

	if strings.Contains(out, "<script>alert") {
		t.Error("client name was not escaped")
	}
	if !strings.Contains(out, "&lt;script&gt;") {
		t.Error("expected escaped script tag in output")
	}
	if !strings.Contains(out, `href="/sale/abc"`) {
		t.Error("expected sale detail link")
	}
}

func TestSalesIndex_EmptyState(t *testing.T) {
	var b strings.Builder
	if err := SalesIndex(SalesIndexData{Page: 1, Pages: 1}).Render(context.Background(), &b); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if !strings.Contains(b.String(), "No sales found.") {
		t.Error("expected empty state message")
	}
}

func TestSalesIndex_Pagination(t *testing.T) {
	d := SalesIndexData{
		Page:    2,
		Pages:   3,
		PrevURL: "/?page=1",
		NextURL: "/?page=3",
	}

	var b strings.Builder
	if err := SalesIndex(d).Render(context.Background(), &b); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	out := b.String()

	if !strings.Contains(out, "Page 2 of 3") {
		t.Error("expected page indicator")
	}
	if !strings.Contains(out, `href="/?page=1"`) || !strings.Contains(out, `href="/?page=3"`) {
		t.Error("expected prev and next links")
	}
}

func TestSaleDetail_SelectedStatus(t *testing.T) {
	d := SaleDetailData{
		ID: "abc",
		Form: SaleFormView{
			NMIMirn: "61029000001",
			Status:  "Cancelled",
		},
		Statuses: []Option{
			{Value: "Unverified", Label: "Unverified"},
			{Value: "Cancelled", Label: "Cancelled"},
		},
	}

	var b strings.Builder
	if err := SaleDetail(d).Render(context.Background(), &b); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	out := b.String()

	if !strings.Contains(out, `<option value="Cancelled" selected>`) {
		t.Error("expected Cancelled option to be selected")
	}
	if strings.Contains(out, `<option value="Unverified" selected>`) {
		t.Error("Unverified option should not be selected")
	}
	if !strings.Contains(out, `action="/sale/abc"`) {
		t.Error("expected form action to target the sale")
	}
}

func TestUploadPage_Result(t *testing.T) {
	d := UploadPageData{
		Kinds: []Option{{Value: "sale", Label: "Sale Details"}},
		Result: &UploadResultView{
			Kind:     "Sale Details",
			Rows:     3,
			Inserted: 1,
			Skipped:  1,
			Failed:   1,
			Notifications: []Notification{
				{Level: "warn", Message: "NMI 610 has already been imported."},
				{Level: "error", Message: "line 3: bad row"},
			},
		},
	}

	var b strings.Builder
	if err := UploadPage(d).Render(context.Background(), &b); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	out := b.String()

	if !strings.Contains(out, "3 rows: 1 inserted, 0 updated, 1 skipped, 1 failed") {
		t.Error("expected run summary")
	}
	if !strings.Contains(out, "NMI 610 has already been imported.") {
		t.Error("expected skip notification")
	}
	if !strings.Contains(out, `class="note-error"`) {
		t.Error("expected error-level notification styling")
	}
}

func TestAgentForm_NewVersusEdit(t *testing.T) {
	var b strings.Builder
	if err := AgentForm(AgentFormData{}).Render(context.Background(), &b); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if !strings.Contains(b.String(), `action="/agent"`) {
		t.Error("new agent form should post to /agent")
	}

	b.Reset()
	if err := AgentForm(AgentFormData{ID: "xyz"}).Render(context.Background(), &b); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if !strings.Contains(b.String(), `action="/agent/xyz"`) {
		t.Error("edit form should post to /agent/{id}")
	}
}

func TestLayout_WrapsContent(t *testing.T) {
	content := ErrorPage(404, "record not found")

	var b strings.Builder
	if err := Layout("Error", content).Render(context.Background(), &b); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	out := b.String()

	if !strings.Contains(out, "<title>Error | SIQ Verification</title>") {
		t.Error("expected page title")
	}
	if !strings.Contains(out, "record not found") {
		t.Error("expected content inside layout")
	}
	if !strings.HasPrefix(out, "<!DOCTYPE html>") {
		t.Error("expected document preamble")
	}
}
