package main

import (
	"context"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/dashboard/cmd/tui/internal/view"
	"github.com/MrJamesThe3rd/dashboard/internal/action"
	"github.com/MrJamesThe3rd/dashboard/internal/cache"
	"github.com/MrJamesThe3rd/dashboard/internal/config"
	"github.com/MrJamesThe3rd/dashboard/internal/database"
	"github.com/MrJamesThe3rd/dashboard/internal/invoice/store"
)

type model struct {
	actions  *action.Actions
	invoices *store.Store

	currentView View

	invoicesView view.InvoicesModel
}

type View int

const (
	ViewMenu     View = 0
	ViewInvoices View = 1
)

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.currentView == ViewMenu {
			switch msg.String() {
			case "ctrl+c", "q":
				return m, tea.Quit
			case "1":
				m.currentView = ViewInvoices
				m.invoicesView = view.NewInvoicesModel(m.actions, m.invoices)

				return m, m.invoicesView.Init()
			}
		}
	case view.BackMsg:
		m.currentView = ViewMenu
		return m, nil
	}

	if m.currentView == ViewInvoices {
		var newModel tea.Model
		newModel, cmd = m.invoicesView.Update(msg)
		m.invoicesView = newModel.(view.InvoicesModel)
	}

	return m, cmd
}

func (m model) View() string {
	switch m.currentView {
	case ViewMenu:
		return lipgloss.NewStyle().Padding(2).Render(
			"Invoice Dashboard\n\n" +
				"1. Manage Invoices\n\n" +
				"q. Quit",
		)
	case ViewInvoices:
		return m.invoicesView.View()
	}

	return "Unknown View"
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	db, err := database.New(ctx, cfg.ConnectionString(),
		database.WithPool(cfg.DB.MaxOpenConns, cfg.DB.MaxIdleConns, cfg.DB.ConnMaxLifetime))
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	rdb, err := cache.NewRedisClient(ctx, cfg.Redis.URL)
	if err != nil {
		slog.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}
	defer rdb.Close()

	// Stdout belongs to the terminal UI; action logs go to stderr.
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	invoices := store.New(db)

	m := model{
		actions:     action.New(invoices, cache.NewPageCache(rdb, cfg.Redis.PageTTL), nil, action.WithLogger(logger)),
		invoices:    invoices,
		currentView: ViewMenu,
	}

	p := tea.NewProgram(m)
	if _, err := p.Run(); err != nil {
		slog.Error("failed to run TUI", "error", err)
		os.Exit(1)
	}
}
