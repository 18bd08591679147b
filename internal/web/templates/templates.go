// Package templates renders the HTML pages for the sales verification UI.
//
// Components are written directly against the templ runtime rather than
// generated from .templ sources. Each component builds its markup into a
// buffer and writes it once, escaping all dynamic values.
package templates

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/a-h/templ"
)

// esc is shorthand for templ's HTML escaper.
func esc(s string) string {
	return templ.EscapeString(s)
}

// Option is a value/label pair for a select control.
type Option struct {
	Value string
	Label string
}

// Notification is a per-row message surfaced after an import run.
type Notification struct {
	Level   string // "ok", "warn" or "error"
	Message string
}

// Layout wraps content in the shared page chrome.
func Layout(title string, content templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		b.WriteString("<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n")
		b.WriteString("<meta charset=\"utf-8\">\n")
		b.WriteString("<meta name=\"viewport\" content=\"width=device-width, initial-scale=1\">\n")
		b.WriteString("<title>" + esc(title) + " | SIQ Verification</title>\n")
		b.WriteString("<link rel=\"stylesheet\" href=\"/static/style.css\">\n")
		b.WriteString("</head>\n<body>\n")
		b.WriteString("<nav class=\"topnav\">")
		b.WriteString("<a class=\"brand\" href=\"/\">SIQ Verification</a>")
		b.WriteString("<a href=\"/\">Sales</a>")
		b.WriteString("<a href=\"/agents\">Agents</a>")
		b.WriteString("<a href=\"/upload\">Upload</a>")
		b.WriteString("</nav>\n<main>\n")
		if _, err := io.WriteString(w, b.String()); err != nil {
			return err
		}
		if err := content.Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, "\n</main>\n</body>\n</html>\n")
		return err
	})
}

// notificationList renders import notifications as a styled list.
func notificationList(b *strings.Builder, notes []Notification) {
	if len(notes) == 0 {
		return
	}
	b.WriteString("<ul class=\"notifications\">")
	for _, n := range notes {
		b.WriteString("<li class=\"note-" + esc(n.Level) + "\">" + esc(n.Message) + "</li>")
	}
	b.WriteString("</ul>")
}

// selectControl renders a labelled select with the given options.
func selectControl(b *strings.Builder, name, label, selected string, opts []Option) {
	b.WriteString("<label>" + esc(label))
	b.WriteString("<select name=\"" + esc(name) + "\">")
	b.WriteString("<option value=\"\"></option>")
	for _, o := range opts {
		b.WriteString("<option value=\"" + esc(o.Value) + "\"")
		if o.Value == selected && selected != "" {
			b.WriteString(" selected")
		}
		b.WriteString(">" + esc(o.Label) + "</option>")
	}
	b.WriteString("</select></label>")
}

// textControl renders a labelled text input.
func textControl(b *strings.Builder, name, label, value string) {
	b.WriteString("<label>" + esc(label))
	b.WriteString("<input type=\"text\" name=\"" + esc(name) + "\" value=\"" + esc(value) + "\">")
	b.WriteString("</label>")
}

// dateControl renders a labelled date input (ISO format).
func dateControl(b *strings.Builder, name, label, value string) {
	b.WriteString("<label>" + esc(label))
	b.WriteString("<input type=\"date\" name=\"" + esc(name) + "\" value=\"" + esc(value) + "\">")
	b.WriteString("</label>")
}

func pagination(b *strings.Builder, page, pages int, prevURL, nextURL string) {
	b.WriteString("<div class=\"pagination\">")
	if prevURL != "" {
		b.WriteString("<a href=\"" + esc(prevURL) + "\">&laquo; Prev</a>")
	}
	fmt.Fprintf(b, "<span>Page %d of %d</span>", page, pages)
	if nextURL != "" {
		b.WriteString("<a href=\"" + esc(nextURL) + "\">Next &raquo;</a>")
	}
	b.WriteString("</div>")
}

// SaleRowView is one row of the sales index table.
type SaleRowView struct {
	ID          string
	NMIMirn     string
	ClientName  string
	AgentName   string
	ChannelName string
	PartyCode   string
	Status      string
	Commission  string
	SignedDate  string
}

// SaleFilterView carries the current filter selections back into the form.
type SaleFilterView struct {
	AgentID   string
	Channel   string
	Status    string
	PartyCode string
	NMIMirn   string
}

// SalesIndexData is the view model for the sales index page.
type SalesIndexData struct {
	Filter   SaleFilterView
	Agents   []Option
	Channels []Option
	Statuses []Option
	Sales    []SaleRowView
	Total    int
	Page     int
	Pages    int
	PrevURL  string
	NextURL  string
}

// SalesIndex renders the paginated, filterable sales table.
func SalesIndex(d SalesIndexData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		b.WriteString("<h1>Sales</h1>")

		b.WriteString("<form class=\"filter\" method=\"get\" action=\"/\">")
		selectControl(&b, "agent_id", "Agent", d.Filter.AgentID, d.Agents)
		selectControl(&b, "channel", "Channel", d.Filter.Channel, d.Channels)
		selectControl(&b, "status", "Status", d.Filter.Status, d.Statuses)
		textControl(&b, "party_code", "Party Code", d.Filter.PartyCode)
		textControl(&b, "nmi", "NMI/MIRN", d.Filter.NMIMirn)
		b.WriteString("<button type=\"submit\">Filter</button>")
		b.WriteString("<a href=\"/\">Clear</a>")
		b.WriteString("</form>")

		fmt.Fprintf(&b, "<p class=\"count\">%d sales</p>", d.Total)

		b.WriteString("<table><thead><tr>")
		for _, h := range []string{"NMI/MIRN", "Client", "Agent", "Channel", "Party Code", "Status", "Commission", "Signed"} {
			b.WriteString("<th>" + h + "</th>")
		}
		b.WriteString("</tr></thead><tbody>")
		if len(d.Sales) == 0 {
			b.WriteString("<tr><td colspan=\"8\" class=\"empty\">No sales found.</td></tr>")
		}
		for _, s := range d.Sales {
			b.WriteString("<tr>")
			b.WriteString("<td><a href=\"/sale/" + esc(s.ID) + "\">" + esc(s.NMIMirn) + "</a></td>")
			b.WriteString("<td>" + esc(s.ClientName) + "</td>")
			b.WriteString("<td>" + esc(s.AgentName) + "</td>")
			b.WriteString("<td>" + esc(s.ChannelName) + "</td>")
			b.WriteString("<td>" + esc(s.PartyCode) + "</td>")
			b.WriteString("<td><span class=\"status status-" + esc(strings.ToLower(s.Status)) + "\">" + esc(s.Status) + "</span></td>")
			b.WriteString("<td>" + esc(s.Commission) + "</td>")
			b.WriteString("<td>" + esc(s.SignedDate) + "</td>")
			b.WriteString("</tr>")
		}
		b.WriteString("</tbody></table>")

		pagination(&b, d.Page, d.Pages, d.PrevURL, d.NextURL)

		_, err := io.WriteString(w, b.String())
		return err
	})
}

// HistoryView is one status history entry on the sale detail page.
type HistoryView struct {
	Status  string
	Created string
}

// SaleFormView carries the editable sale fields as form strings.
type SaleFormView struct {
	AgentID           string
	AgentName         string
	ChannelName       string
	PartyCode         string
	ClientName        string
	SiteID            string
	PhoneNo           string
	PostalSuburb      string
	DistrictCode      string
	ClientType        string
	ProductTypeCode   string
	NMIMirn           string
	SignedDate        string
	LoadedDate        string
	AnnualConsumption string
	CommissionValue   string
	ClawbackValue     string
	Status            string
}

// SaleDetailData is the view model for the sale detail page.
type SaleDetailData struct {
	ID            string
	Form          SaleFormView
	Agents        []Option
	Channels      []Option
	Statuses      []Option
	ProductTypes  []Option
	History       []HistoryView
	Notifications []Notification
}

// SaleDetail renders the sale edit form and its status history.
func SaleDetail(d SaleDetailData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		b.WriteString("<h1>Sale " + esc(d.Form.NMIMirn) + "</h1>")
		notificationList(&b, d.Notifications)

		b.WriteString("<form class=\"detail\" method=\"post\" action=\"/sale/" + esc(d.ID) + "\">")
		b.WriteString("<fieldset><legend>Sale</legend>")
		selectControl(&b, "sale_status", "Status", d.Form.Status, d.Statuses)
		selectControl(&b, "agent_id", "Agent", d.Form.AgentID, d.Agents)
		selectControl(&b, "channel", "Channel", d.Form.ChannelName, d.Channels)
		textControl(&b, "party_code", "Party Code", d.Form.PartyCode)
		textControl(&b, "nmi_mirn", "NMI/MIRN", d.Form.NMIMirn)
		selectControl(&b, "product_type_code", "Product", d.Form.ProductTypeCode, d.ProductTypes)
		dateControl(&b, "signed_date", "Signed", d.Form.SignedDate)
		dateControl(&b, "loaded_date", "Loaded", d.Form.LoadedDate)
		textControl(&b, "annual_consumption", "Annual Consumption", d.Form.AnnualConsumption)
		textControl(&b, "agent_commission_value", "Commission", d.Form.CommissionValue)
		textControl(&b, "clawback_value", "Clawback", d.Form.ClawbackValue)
		b.WriteString("</fieldset>")
		b.WriteString("<fieldset><legend>Client</legend>")
		textControl(&b, "client_name", "Client Name", d.Form.ClientName)
		textControl(&b, "client_type", "Client Type", d.Form.ClientType)
		textControl(&b, "site_id", "Site ID", d.Form.SiteID)
		textControl(&b, "phone_no", "Phone", d.Form.PhoneNo)
		textControl(&b, "postal_suburb", "Suburb", d.Form.PostalSuburb)
		textControl(&b, "district_code", "District", d.Form.DistrictCode)
		b.WriteString("</fieldset>")
		b.WriteString("<button type=\"submit\">Save</button> <a href=\"/\">Back</a>")
		b.WriteString("</form>")

		b.WriteString("<h2>Status History</h2>")
		b.WriteString("<table><thead><tr><th>Status</th><th>Recorded</th></tr></thead><tbody>")
		if len(d.History) == 0 {
			b.WriteString("<tr><td colspan=\"2\" class=\"empty\">No history recorded.</td></tr>")
		}
		for _, h := range d.History {
			b.WriteString("<tr><td>" + esc(h.Status) + "</td><td>" + esc(h.Created) + "</td></tr>")
		}
		b.WriteString("</tbody></table>")

		_, err := io.WriteString(w, b.String())
		return err
	})
}

// OutcomeView is one processed row on the upload results page.
type OutcomeView struct {
	Line    int
	Kind    string
	Key     string
	Message string
}

// UploadResultView summarises a finished import run.
type UploadResultView struct {
	Kind          string
	Rows          int
	Inserted      int
	Updated       int
	Skipped       int
	Failed        int
	Notifications []Notification
}

// UploadPageData is the view model for the upload page.
type UploadPageData struct {
	Kinds    []Option
	Selected string
	Error    string
	Result   *UploadResultView
}

// UploadPage renders the CSV upload form, with run results when present.
func UploadPage(d UploadPageData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		b.WriteString("<h1>Upload</h1>")
		if d.Error != "" {
			b.WriteString("<ul class=\"notifications\"><li class=\"note-error\">" + esc(d.Error) + "</li></ul>")
		}

		b.WriteString("<form class=\"upload\" method=\"post\" action=\"/upload\" enctype=\"multipart/form-data\">")
		selectControl(&b, "kind", "File Type", d.Selected, d.Kinds)
		b.WriteString("<label>File<input type=\"file\" name=\"file\" accept=\".csv\" required></label>")
		b.WriteString("<button type=\"submit\">Import</button>")
		b.WriteString("</form>")

		if r := d.Result; r != nil {
			b.WriteString("<h2>" + esc(r.Kind) + " import</h2>")
			fmt.Fprintf(&b,
				"<p class=\"summary\">%d rows: %d inserted, %d updated, %d skipped, %d failed</p>",
				r.Rows, r.Inserted, r.Updated, r.Skipped, r.Failed)
			notificationList(&b, r.Notifications)
		}

		_, err := io.WriteString(w, b.String())
		return err
	})
}

// AgentRowView is one row of the agents table.
type AgentRowView struct {
	ID       string
	Name     string
	SIDN     string
	Email    string
	Phone    string
	Team     string
	Start    string
	LumoName string
	SIQ      string
}

// AgentsListData is the view model for the agents page.
type AgentsListData struct {
	Agents  []AgentRowView
	Total   int
	Page    int
	Pages   int
	PrevURL string
	NextURL string
}

// AgentsList renders the paginated agent table.
func AgentsList(d AgentsListData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		b.WriteString("<h1>Agents</h1>")
		b.WriteString("<p><a class=\"button\" href=\"/agent\">New Agent</a></p>")
		fmt.Fprintf(&b, "<p class=\"count\">%d agents</p>", d.Total)

		b.WriteString("<table><thead><tr>")
		for _, h := range []string{"Name", "SIDN", "Email", "Phone", "Team", "Start", "Lumo Name", "SIQ"} {
			b.WriteString("<th>" + h + "</th>")
		}
		b.WriteString("</tr></thead><tbody>")
		if len(d.Agents) == 0 {
			b.WriteString("<tr><td colspan=\"8\" class=\"empty\">No agents found.</td></tr>")
		}
		for _, a := range d.Agents {
			b.WriteString("<tr>")
			b.WriteString("<td><a href=\"/agent/" + esc(a.ID) + "\">" + esc(a.Name) + "</a></td>")
			b.WriteString("<td>" + esc(a.SIDN) + "</td>")
			b.WriteString("<td>" + esc(a.Email) + "</td>")
			b.WriteString("<td>" + esc(a.Phone) + "</td>")
			b.WriteString("<td>" + esc(a.Team) + "</td>")
			b.WriteString("<td>" + esc(a.Start) + "</td>")
			b.WriteString("<td>" + esc(a.LumoName) + "</td>")
			b.WriteString("<td>" + esc(a.SIQ) + "</td>")
			b.WriteString("</tr>")
		}
		b.WriteString("</tbody></table>")

		pagination(&b, d.Page, d.Pages, d.PrevURL, d.NextURL)

		_, err := io.WriteString(w, b.String())
		return err
	})
}

// AgentFormView carries the editable agent fields as form strings.
type AgentFormView struct {
	FirstName string
	LastName  string
	SIDN      string
	Email     string
	Phone     string
	Team      string
	StartDate string
	EndDate   string
	LumoName  string
	SIQ       bool
}

// AgentFormData is the view model for the agent create/edit page.
type AgentFormData struct {
	ID            string // empty for a new agent
	Form          AgentFormView
	Notifications []Notification
}

// AgentForm renders the agent create or edit form.
func AgentForm(d AgentFormData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		action := "/agent"
		title := "New Agent"
		if d.ID != "" {
			action = "/agent/" + d.ID
			title = "Edit Agent"
		}

		var b strings.Builder
		b.WriteString("<h1>" + esc(title) + "</h1>")
		notificationList(&b, d.Notifications)

		b.WriteString("<form class=\"detail\" method=\"post\" action=\"" + esc(action) + "\">")
		textControl(&b, "first_name", "First Name", d.Form.FirstName)
		textControl(&b, "last_name", "Last Name", d.Form.LastName)
		textControl(&b, "sidn", "SIDN", d.Form.SIDN)
		textControl(&b, "email", "Email", d.Form.Email)
		textControl(&b, "phone", "Phone", d.Form.Phone)
		textControl(&b, "team", "Team", d.Form.Team)
		dateControl(&b, "start_date", "Start Date", d.Form.StartDate)
		dateControl(&b, "end_date", "End Date", d.Form.EndDate)
		textControl(&b, "lumo_name", "Lumo Name", d.Form.LumoName)
		b.WriteString("<label class=\"check\">SIQ<input type=\"checkbox\" name=\"siq\" value=\"true\"")
		if d.Form.SIQ {
			b.WriteString(" checked")
		}
		b.WriteString("></label>")
		b.WriteString("<button type=\"submit\">Save</button> <a href=\"/agents\">Back</a>")
		b.WriteString("</form>")

		_, err := io.WriteString(w, b.String())
		return err
	})
}

// ErrorPage renders a minimal full-page error.
func ErrorPage(status int, message string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		fmt.Fprintf(&b, "<h1>Error %d</h1>", status)
		b.WriteString("<p>" + esc(message) + "</p>")
		b.WriteString("<p><a href=\"/\">Back to sales</a></p>")
		_, err := io.WriteString(w, b.String())
		return err
	})
}
