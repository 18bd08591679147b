package web

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/BluesFiend/siq-verification/internal/logging"
	"github.com/BluesFiend/siq-verification/internal/model"
	"github.com/BluesFiend/siq-verification/internal/store"
	"github.com/BluesFiend/siq-verification/internal/web/templates"
)

// Channel and product vocabularies offered in the edit forms. Imported
// files may carry other values; these are the ones sales staff enter by
// hand.
var (
	channelOptions = []templates.Option{
		{Value: "SIQ - Residential (SIVR)", Label: "SIQ - Residential (SIVR)"},
		{Value: "SIQ - Commercial D2D (SIVD)", Label: "SIQ - Commercial D2D (SIVD)"},
	}
	productOptions = []templates.Option{
		{Value: "POWER", Label: "Power"},
		{Value: "GAS", Label: "Gas"},
	}
)

// handleSalesIndex renders the filterable, paginated sales table.
func (s *Server) handleSalesIndex(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	filter := store.SaleFilter{
		ChannelName: q.Get("channel"),
		SaleStatus:  q.Get("status"),
		PartyCode:   q.Get("party_code"),
		NMIMirn:     q.Get("nmi"),
	}
	if raw := q.Get("agent_id"); raw != "" {
		if id, err := uuid.Parse(raw); err == nil {
			filter.AgentID = uuid.NullUUID{UUID: id, Valid: true}
		}
	}

	total, err := s.store.CountSales(ctx, filter)
	if err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}

	size := s.cfg.Import.PageSize
	pages := pageCount(total, size)
	page := clampPage(parsePage(r), pages)

	sales, err := s.store.SearchSales(ctx, filter, size, (page-1)*size)
	if err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}

	agents, err := s.store.AllAgents(ctx)
	if err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}

	data := templates.SalesIndexData{
		Filter: templates.SaleFilterView{
			AgentID:   q.Get("agent_id"),
			Channel:   filter.ChannelName,
			Status:    filter.SaleStatus,
			PartyCode: filter.PartyCode,
			NMIMirn:   filter.NMIMirn,
		},
		Agents:   agentOptions(agents),
		Channels: channelOptions,
		Statuses: statusOptions(),
		Total:    int(total),
		Page:     page,
		Pages:    pages,
	}
	if page > 1 {
		data.PrevURL = pageURL(r.URL, page-1)
	}
	if page < pages {
		data.NextURL = pageURL(r.URL, page+1)
	}
	for _, sale := range sales {
		data.Sales = append(data.Sales, templates.SaleRowView{
			ID:          sale.ID.String(),
			NMIMirn:     sale.NMIMirn,
			ClientName:  sale.ClientName,
			AgentName:   sale.AgentName,
			ChannelName: sale.ChannelName,
			PartyCode:   sale.PartyCode,
			Status:      string(sale.SaleStatus),
			Commission:  fmtFloat(sale.CommissionValue),
			SignedDate:  fmtDate(sale.SignedDate),
		})
	}

	s.renderPage(w, r, "Sales", templates.SalesIndex(data))
}

// handleSaleDetail renders the edit form for a single sale.
func (s *Server) handleSaleDetail(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "saleID"))
	if err != nil {
		s.respondError(w, r, fmt.Errorf("invalid sale id: %w", err), http.StatusBadRequest)
		return
	}

	sale, err := s.store.SaleByID(r.Context(), id)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	s.renderSaleDetail(w, r, sale, nil)
}

// handleSaleUpdate applies a sale edit. A status change also appends a
// history entry, in the same transaction as the update.
func (s *Server) handleSaleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := uuid.Parse(chi.URLParam(r, "saleID"))
	if err != nil {
		s.respondError(w, r, fmt.Errorf("invalid sale id: %w", err), http.StatusBadRequest)
		return
	}

	if err := r.ParseForm(); err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}

	sale, err := s.store.SaleByID(ctx, id)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	prevStatus := sale.SaleStatus

	if err := applySaleForm(sale, r.PostForm); err != nil {
		s.renderSaleDetail(w, r, sale, []templates.Notification{
			{Level: "error", Message: err.Error()},
		})
		return
	}

	tx, err := s.store.Begin(ctx)
	if err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}
	defer tx.Rollback(ctx)

	if err := tx.UpdateSale(ctx, sale); err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	if sale.SaleStatus != prevStatus {
		if err := tx.AppendStatusHistory(ctx, sale.ID, sale.SaleStatus); err != nil {
			s.respondError(w, r, err, http.StatusInternalServerError)
			return
		}
	}
	if err := tx.Commit(ctx); err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}

	logging.FromContext(ctx).Info("sale updated",
		"sale_id", sale.ID, "nmi_mirn", sale.NMIMirn, "status", sale.SaleStatus)

	http.Redirect(w, r, "/sale/"+sale.ID.String(), http.StatusSeeOther)
}

// renderSaleDetail loads the remaining page data and renders the detail view.
func (s *Server) renderSaleDetail(w http.ResponseWriter, r *http.Request, sale *model.Sale, notes []templates.Notification) {
	ctx := r.Context()

	history, err := s.store.StatusHistoryBySale(ctx, sale.ID)
	if err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}
	agents, err := s.store.AllAgents(ctx)
	if err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}

	data := templates.SaleDetailData{
		ID: sale.ID.String(),
		Form: templates.SaleFormView{
			AgentName:         sale.AgentName,
			ChannelName:       sale.ChannelName,
			PartyCode:         sale.PartyCode,
			ClientName:        sale.ClientName,
			SiteID:            sale.SiteID,
			PhoneNo:           sale.PhoneNo,
			PostalSuburb:      sale.PostalSuburb,
			DistrictCode:      sale.DistrictCode,
			ClientType:        sale.ClientType,
			ProductTypeCode:   sale.ProductTypeCode,
			NMIMirn:           sale.NMIMirn,
			SignedDate:        fmtFormDate(sale.SignedDate),
			LoadedDate:        fmtFormDate(sale.LoadedDate),
			AnnualConsumption: fmtFloat(sale.AnnualConsumption),
			CommissionValue:   fmtFloat(sale.CommissionValue),
			ClawbackValue:     fmtFloat(sale.ClawbackValue),
			Status:            string(sale.SaleStatus),
		},
		Agents:        agentOptions(agents),
		Channels:      channelOptions,
		Statuses:      statusOptions(),
		ProductTypes:  productOptions,
		Notifications: notes,
	}
	if sale.AgentID.Valid {
		data.Form.AgentID = sale.AgentID.UUID.String()
	}
	for _, h := range history {
		data.History = append(data.History, templates.HistoryView{
			Status:  string(h.Status),
			Created: h.Created.Format("02/01/2006 15:04"),
		})
	}

	s.renderPage(w, r, "Sale "+sale.NMIMirn, templates.SaleDetail(data))
}

// applySaleForm copies posted form values onto the sale. Numeric and date
// fields are parsed; empty values clear the field.
func applySaleForm(sale *model.Sale, form url.Values) error {
	status, err := model.ParseStatus(form.Get("sale_status"))
	if err != nil {
		return fmt.Errorf("sale_status: %w", err)
	}
	sale.SaleStatus = status

	sale.AgentID = uuid.NullUUID{}
	if raw := strings.TrimSpace(form.Get("agent_id")); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return fmt.Errorf("agent_id: %w", err)
		}
		sale.AgentID = uuid.NullUUID{UUID: id, Valid: true}
	}

	sale.ChannelName = strings.TrimSpace(form.Get("channel"))
	sale.PartyCode = strings.TrimSpace(form.Get("party_code"))
	sale.ClientName = strings.TrimSpace(form.Get("client_name"))
	sale.SiteID = strings.TrimSpace(form.Get("site_id"))
	sale.PhoneNo = strings.TrimSpace(form.Get("phone_no"))
	sale.PostalSuburb = strings.TrimSpace(form.Get("postal_suburb"))
	sale.DistrictCode = strings.TrimSpace(form.Get("district_code"))
	sale.ClientType = strings.TrimSpace(form.Get("client_type"))
	sale.ProductTypeCode = strings.TrimSpace(form.Get("product_type_code"))

	if nmi := strings.TrimSpace(form.Get("nmi_mirn")); nmi != "" {
		sale.NMIMirn = nmi
	}

	if sale.SignedDate, err = formDate(form.Get("signed_date")); err != nil {
		return fmt.Errorf("signed_date: %w", err)
	}
	if sale.LoadedDate, err = formDate(form.Get("loaded_date")); err != nil {
		return fmt.Errorf("loaded_date: %w", err)
	}
	if sale.AnnualConsumption, err = formFloat(form.Get("annual_consumption")); err != nil {
		return fmt.Errorf("annual_consumption: %w", err)
	}
	if sale.CommissionValue, err = formFloat(form.Get("agent_commission_value")); err != nil {
		return fmt.Errorf("agent_commission_value: %w", err)
	}
	if sale.ClawbackValue, err = formFloat(form.Get("clawback_value")); err != nil {
		return fmt.Errorf("clawback_value: %w", err)
	}

	return nil
}

// handleAgentsList renders the paginated agent table.
func (s *Server) handleAgentsList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	total, err := s.store.CountAgents(ctx)
	if err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}

	size := s.cfg.Import.PageSize
	pages := pageCount(total, size)
	page := clampPage(parsePage(r), pages)

	agents, err := s.store.ListAgents(ctx, size, (page-1)*size)
	if err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}

	data := templates.AgentsListData{
		Total: int(total),
		Page:  page,
		Pages: pages,
	}
	if page > 1 {
		data.PrevURL = pageURL(r.URL, page-1)
	}
	if page < pages {
		data.NextURL = pageURL(r.URL, page+1)
	}
	for _, a := range agents {
		data.Agents = append(data.Agents, templates.AgentRowView{
			ID:       a.ID.String(),
			Name:     a.FullName(),
			SIDN:     a.SIDN,
			Email:    a.Email,
			Phone:    a.Phone,
			Team:     a.Team,
			Start:    fmtDate(a.StartDate),
			LumoName: a.LumoName,
			SIQ:      yesNo(a.SIQ),
		})
	}

	s.renderPage(w, r, "Agents", templates.AgentsList(data))
}

// handleAgentForm renders the create form, or the edit form when an
// agentID is present in the path.
func (s *Server) handleAgentForm(w http.ResponseWriter, r *http.Request) {
	var data templates.AgentFormData

	if raw := chi.URLParam(r, "agentID"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			s.respondError(w, r, fmt.Errorf("invalid agent id: %w", err), http.StatusBadRequest)
			return
		}
		agent, err := s.store.AgentByID(r.Context(), id)
		if err != nil {
			s.respondError(w, r, err, statusFor(err))
			return
		}
		data.ID = agent.ID.String()
		data.Form = agentFormView(agent)
	}

	s.renderPage(w, r, "Agent", templates.AgentForm(data))
}

// handleAgentSave creates or updates an agent from the posted form.
func (s *Server) handleAgentSave(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := r.ParseForm(); err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}

	agent := &model.Agent{}
	isNew := true
	if raw := chi.URLParam(r, "agentID"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			s.respondError(w, r, fmt.Errorf("invalid agent id: %w", err), http.StatusBadRequest)
			return
		}
		agent, err = s.store.AgentByID(ctx, id)
		if err != nil {
			s.respondError(w, r, err, statusFor(err))
			return
		}
		isNew = false
	} else {
		agent.ID = uuid.New()
	}

	if err := applyAgentForm(agent, r.PostForm); err != nil {
		s.renderAgentForm(w, r, agent, isNew, err.Error())
		return
	}

	if isNew {
		if err := s.store.InsertAgent(ctx, agent); err != nil {
			if errors.Is(err, store.ErrDuplicateKey) {
				s.renderAgentForm(w, r, agent, isNew, agentConflictMessage(err, agent))
				return
			}
			s.respondError(w, r, err, http.StatusInternalServerError)
			return
		}
	} else {
		if err := s.store.UpdateAgent(ctx, agent); err != nil {
			if errors.Is(err, store.ErrDuplicateKey) {
				s.renderAgentForm(w, r, agent, isNew, agentConflictMessage(err, agent))
				return
			}
			s.respondError(w, r, err, statusFor(err))
			return
		}
	}

	logging.FromContext(ctx).Info("agent saved",
		"agent_id", agent.ID, "sidn", agent.SIDN, "new", isNew)

	http.Redirect(w, r, "/agents", http.StatusSeeOther)
}

func (s *Server) renderAgentForm(w http.ResponseWriter, r *http.Request, agent *model.Agent, isNew bool, errMsg string) {
	data := templates.AgentFormData{
		Form: agentFormView(agent),
		Notifications: []templates.Notification{
			{Level: "error", Message: errMsg},
		},
	}
	if !isNew {
		data.ID = agent.ID.String()
	}
	s.renderPage(w, r, "Agent", templates.AgentForm(data))
}

// applyAgentForm copies posted form values onto the agent.
func applyAgentForm(agent *model.Agent, form url.Values) error {
	agent.FirstName = strings.TrimSpace(form.Get("first_name"))
	agent.LastName = strings.TrimSpace(form.Get("last_name"))
	agent.SIDN = strings.TrimSpace(form.Get("sidn"))
	agent.Email = strings.TrimSpace(form.Get("email"))
	agent.Phone = strings.TrimSpace(form.Get("phone"))
	agent.Team = strings.TrimSpace(form.Get("team"))
	agent.LumoName = strings.TrimSpace(form.Get("lumo_name"))
	agent.SIQ = form.Get("siq") == "true"

	if agent.FirstName == "" || agent.LastName == "" || agent.SIDN == "" {
		return errors.New("first name, last name and SIDN are required")
	}

	var err error
	if agent.StartDate, err = formDate(form.Get("start_date")); err != nil {
		return fmt.Errorf("start_date: %w", err)
	}
	if agent.EndDate, err = formDate(form.Get("end_date")); err != nil {
		return fmt.Errorf("end_date: %w", err)
	}

	return nil
}

func agentFormView(a *model.Agent) templates.AgentFormView {
	return templates.AgentFormView{
		FirstName: a.FirstName,
		LastName:  a.LastName,
		SIDN:      a.SIDN,
		Email:     a.Email,
		Phone:     a.Phone,
		Team:      a.Team,
		StartDate: fmtFormDate(a.StartDate),
		EndDate:   fmtFormDate(a.EndDate),
		LumoName:  a.LumoName,
		SIQ:       a.SIQ,
	}
}

// renderPage writes a full HTML page wrapped in the shared layout.
func (s *Server) renderPage(w http.ResponseWriter, r *http.Request, title string, content templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := templates.Layout(title, content).Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Error("render failed", "error", err)
	}
}

// respondError logs the technical error and renders a minimal error page.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error, status int) {
	logging.FromContext(r.Context()).Error("request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", err,
	)

	msg := "something went wrong"
	switch status {
	case http.StatusNotFound:
		msg = "record not found"
	case http.StatusBadRequest:
		msg = err.Error()
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if rerr := templates.Layout("Error", templates.ErrorPage(status, msg)).Render(r.Context(), w); rerr != nil {
		logging.FromContext(r.Context()).Error("render failed", "error", rerr)
	}
}

// agentConflictMessage words a duplicate-key failure for the unique agent
// key that actually conflicted. The store wraps the violated constraint
// name around ErrDuplicateKey.
func agentConflictMessage(err error, a *model.Agent) string {
	if strings.Contains(err.Error(), "lumo_name") {
		return fmt.Sprintf("Lumo name %s is already assigned to another agent.", a.LumoName)
	}
	return fmt.Sprintf("SIDN %s has already been imported.", a.SIDN)
}

// statusFor maps store errors to HTTP status codes.
func statusFor(err error) int {
	if errors.Is(err, store.ErrNotFound) {
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

// parsePage returns the page query parameter, defaulting to 1.
func parsePage(r *http.Request) int {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

// pageCount returns the number of pages needed for total records at the
// given page size. An empty result set still has one page.
func pageCount(total int64, size int) int {
	if total <= 0 {
		return 1
	}
	pages := int((total + int64(size) - 1) / int64(size))
	if pages < 1 {
		return 1
	}
	return pages
}

// clampPage bounds a requested page to the valid range.
func clampPage(page, pages int) int {
	if page < 1 {
		return 1
	}
	if page > pages {
		return pages
	}
	return page
}

// pageURL returns the current URL with the page parameter replaced,
// preserving all other query parameters.
func pageURL(u *url.URL, page int) string {
	q := u.Query()
	q.Set("page", strconv.Itoa(page))
	return u.Path + "?" + q.Encode()
}

// statusOptions returns the sale status vocabulary as select options.
func statusOptions() []templates.Option {
	var opts []templates.Option
	for _, st := range model.Statuses() {
		opts = append(opts, templates.Option{Value: string(st), Label: string(st)})
	}
	return opts
}

// agentOptions returns all agents as select options, labelled by full name.
func agentOptions(agents []*model.Agent) []templates.Option {
	var opts []templates.Option
	for _, a := range agents {
		opts = append(opts, templates.Option{Value: a.ID.String(), Label: a.FullName()})
	}
	return opts
}

// formDate parses an ISO date from an HTML date input. Empty means unset.
func formDate(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q", raw)
	}
	return &t, nil
}

// formFloat parses a numeric form value. Empty means unset.
func formFloat(raw string) (*float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid number %q", raw)
	}
	return &f, nil
}

// fmtDate formats a date for display, DD/MM/YYYY to match the source files.
func fmtDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("02/01/2006")
}

// fmtFormDate formats a date for an HTML date input.
func fmtFormDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}

// fmtFloat formats an optional numeric value for display.
func fmtFloat(f *float64) string {
	if f == nil {
		return ""
	}
	return strconv.FormatFloat(*f, 'f', -1, 64)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
