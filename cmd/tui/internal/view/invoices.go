package view

import (
	"fmt"
	"net/url"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/dashboard/internal/action"
	"github.com/MrJamesThe3rd/dashboard/internal/invoice"
)

type invoicesState int

const (
	invoicesBrowse invoicesState = iota
	invoicesSearch
	invoicesEdit
	invoicesDelete
)

// invoiceDraft is bound to the huh form fields, so it lives behind a pointer
// that survives the model being copied between updates.
type invoiceDraft struct {
	CustomerID string
	Amount     string
	Status     string
	Confirm    bool
}

func draftFrom(inv *invoice.Invoice) *invoiceDraft {
	return &invoiceDraft{
		CustomerID: inv.CustomerID,
		Amount:     FormatAmount(inv.Amount),
		Status:     string(inv.Status),
	}
}

func (d *invoiceDraft) values() url.Values {
	return url.Values{
		invoice.FieldCustomerID: {d.CustomerID},
		invoice.FieldAmount:     {d.Amount},
		invoice.FieldStatus:     {d.Status},
	}
}

type InvoicesModel struct {
	actions  *action.Actions
	invoices invoice.Reader

	state  invoicesState
	table  table.Model
	search textinput.Model
	form   *huh.Form
	list   []*invoice.Invoice

	// editing is nil while creating a new invoice.
	editing *invoice.Invoice
	draft   *invoiceDraft

	filter  invoice.ListFilter
	loading bool
	err     error
	status  string
}

func NewInvoicesModel(actions *action.Actions, invoices invoice.Reader) InvoicesModel {
	columns := []table.Column{
		{Title: "Date", Width: 12},
		{Title: "Customer", Width: 38},
		{Title: "Amount", Width: 12},
		{Title: "Status", Width: 10},
		{Title: "ID", Width: 38},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(15),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	ti := textinput.New()
	ti.Placeholder = "customer id or status"
	ti.Width = 40

	return InvoicesModel{
		actions:  actions,
		invoices: invoices,
		table:    t,
		search:   ti,
		loading:  true,
	}
}

func (m InvoicesModel) Title() string { return "Invoices" }

func (m InvoicesModel) ShortHelp() string {
	switch m.state {
	case invoicesSearch:
		return "Enter: apply | Esc: cancel"
	case invoicesEdit, invoicesDelete:
		return "Navigate form | Esc: cancel"
	default:
		return "Esc: back | n: new | e: edit | x: delete | /: search | r: refresh"
	}
}

func (m InvoicesModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m InvoicesModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadInvoicesMsg:
		m.loading = false
		m.err = msg.err

		if msg.err == nil {
			m.list = msg.invoices
			m.refreshTable()
		}

		return m, nil

	case invoiceSavedMsg:
		return m.handleSaved(msg)

	case invoiceDeletedMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("Error deleting: %v", msg.err)
			return m, nil
		}

		m.status = "Invoice deleted."

		return m, m.loadCmd()

	case tea.WindowSizeMsg:
		m.table.SetHeight(max(msg.Height-10, 5))

		return m, nil
	}

	switch m.state {
	case invoicesSearch:
		return m.updateSearch(msg)
	case invoicesEdit, invoicesDelete:
		return m.updateForm(msg)
	default:
		return m.updateBrowse(msg)
	}
}

func (m InvoicesModel) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadCmd()
		case "/":
			m.state = invoicesSearch
			m.table.Blur()
			m.search.SetValue(m.filter.Query)

			return m, m.search.Focus()
		case "n":
			m.editing = nil
			m.draft = &invoiceDraft{Status: string(invoice.StatusPending)}

			return m.openForm(m.invoiceForm("Create Invoice"), invoicesEdit)
		case "e":
			inv := m.selected()
			if inv == nil {
				return m, nil
			}

			m.editing = inv
			m.draft = draftFrom(inv)

			return m.openForm(m.invoiceForm("Edit Invoice"), invoicesEdit)
		case "x":
			inv := m.selected()
			if inv == nil {
				return m, nil
			}

			m.editing = inv
			m.draft = &invoiceDraft{}

			return m.openForm(m.deleteForm(inv), invoicesDelete)
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m InvoicesModel) updateSearch(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.Type {
		case tea.KeyEsc:
			m.state = invoicesBrowse
			m.search.Blur()
			m.table.Focus()

			return m, nil
		case tea.KeyEnter:
			m.state = invoicesBrowse
			m.filter.Query = m.search.Value()
			m.search.Blur()
			m.table.Focus()
			m.loading = true

			return m, m.loadCmd()
		}
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)

	return m, cmd
}

func (m InvoicesModel) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.state = invoicesBrowse
		m.form = nil
		m.table.Focus()

		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	deleting := m.state == invoicesDelete

	// Back to browsing while the action runs so a completed form is never submitted twice.
	m.state = invoicesBrowse
	m.form = nil
	m.table.Focus()

	if deleting {
		if !m.draft.Confirm {
			return m, nil
		}

		return m, m.deleteCmd(m.editing.ID)
	}

	return m, m.saveCmd()
}

func (m InvoicesModel) handleSaved(msg invoiceSavedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.status = fmt.Sprintf("Error saving: %v", msg.err)

		return m, nil
	}

	// Rejected input reopens the form with what was typed.
	if msg.outcome.Kind == action.KindState {
		m.status = DescribeState(msg.outcome.State)

		title := "Create Invoice"
		if m.editing != nil {
			title = "Edit Invoice"
		}

		return m.openForm(m.invoiceForm(title), invoicesEdit)
	}

	m.status = "Saved."

	return m, m.loadCmd()
}

func (m InvoicesModel) openForm(form *huh.Form, state invoicesState) (tea.Model, tea.Cmd) {
	m.form = form
	m.state = state
	m.table.Blur()

	return m, m.form.Init()
}

func (m InvoicesModel) invoiceForm(title string) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key(invoice.FieldCustomerID).
				Title("Customer ID").
				Value(&m.draft.CustomerID),

			huh.NewInput().
				Key(invoice.FieldAmount).
				Title("Amount").
				Placeholder("0.00").
				Value(&m.draft.Amount),

			huh.NewSelect[string]().
				Key(invoice.FieldStatus).
				Title("Status").
				Options(
					huh.NewOption("Pending", string(invoice.StatusPending)),
					huh.NewOption("Paid", string(invoice.StatusPaid)),
				).
				Value(&m.draft.Status),
		).Title(title),
	).WithWidth(45).WithShowHelp(false)
}

func (m InvoicesModel) deleteForm(inv *invoice.Invoice) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Delete invoice of %s for %s?", FormatAmount(inv.Amount), inv.CustomerID)).
				Affirmative("Delete").
				Negative("Keep").
				Value(&m.draft.Confirm),
		),
	).WithWidth(45).WithShowHelp(false)
}

func (m InvoicesModel) selected() *invoice.Invoice {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.list) {
		return nil
	}

	return m.list[idx]
}

func (m InvoicesModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading invoices...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(fmt.Sprintf("Error: %v\n\n(r to retry, Esc to back)", m.err))
	}

	query := m.filter.Query
	if query == "" {
		query = "none"
	}

	header := fmt.Sprintf("Search: %s", activeStyle(query))
	if m.state == invoicesSearch {
		header = "Search: " + m.search.View()
	}

	tableView := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Render(m.table.View())

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(header),
		tableView,
		lipgloss.NewStyle().Faint(true).Render(m.ShortHelp()),
	)

	if m.form != nil && (m.state == invoicesEdit || m.state == invoicesDelete) {
		panel := lipgloss.NewStyle().
			Padding(1, 2).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Width(48).
			Render(m.form.View())

		content = lipgloss.JoinHorizontal(lipgloss.Top, content, panel)
	}

	if m.status != "" {
		content = lipgloss.NewStyle().Faint(true).Render(m.status) + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

func activeStyle(s string) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Render(s)
}

func (m *InvoicesModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.list))
	for _, inv := range m.list {
		rows = append(rows, table.Row{
			FormatDate(inv.Date),
			inv.CustomerID,
			FormatAmount(inv.Amount),
			string(inv.Status),
			inv.ID,
		})
	}

	m.table.SetRows(rows)
}

// Messages

// BackMsg asks the parent model to leave the invoice screen.
type BackMsg struct{}

func Back() tea.Msg {
	return BackMsg{}
}

type loadInvoicesMsg struct {
	invoices []*invoice.Invoice
	err      error
}

func (m InvoicesModel) loadCmd() tea.Cmd {
	filter := m.filter

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		invoices, err := m.invoices.ListInvoices(ctx, filter)

		return loadInvoicesMsg{invoices: invoices, err: err}
	}
}

type invoiceSavedMsg struct {
	outcome action.Outcome
	err     error
}

func (m InvoicesModel) saveCmd() tea.Cmd {
	values := m.draft.values()
	editing := m.editing

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		var (
			out action.Outcome
			err error
		)

		if editing == nil {
			out, err = m.actions.CreateInvoice(ctx, action.State{}, values)
		} else {
			out, err = m.actions.UpdateInvoice(ctx, editing.ID, action.State{}, values)
		}

		return invoiceSavedMsg{outcome: out, err: err}
	}
}

type invoiceDeletedMsg struct {
	err error
}

func (m InvoicesModel) deleteCmd(id string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		return invoiceDeletedMsg{err: m.actions.DeleteInvoice(ctx, id)}
	}
}
