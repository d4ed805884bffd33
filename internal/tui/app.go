// Package tui is the operator console: a bubbletea program over a console.Session.
//
// Every backend action runs inside a tea.Cmd and reports back with an
// actionDoneMsg; the model itself never blocks.
package tui

import (
	"context"
	"delivery-route-console/internal/adapters/mapview"
	"delivery-route-console/internal/console"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
)

type panel int

const (
	panelMap panel = iota
	panelVehicles
	panelOrders
)

func (p panel) String() string {
	switch p {
	case panelMap:
		return "map"
	case panelVehicles:
		return "vehicles"
	default:
		return "orders"
	}
}

// actionDoneMsg reports a finished backend action.
type actionDoneMsg struct {
	op    string
	err   error
	cards []console.RouteCard
	solve bool
	fit   bool
}

// App is the console model.
type App struct {
	ctx     context.Context
	session *console.Session
	canvas  *mapview.Canvas

	focus   panel
	form    *form
	notice  string
	status  string
	pending int

	vehicleSel int
	orderSel   int
	cards      []console.RouteCard

	width  int
	height int
}

func NewApp(ctx context.Context, session *console.Session, canvas *mapview.Canvas) *App {
	return &App{
		ctx:     ctx,
		session: session,
		canvas:  canvas,
		status:  "loading...",
	}
}

func (a *App) Init() tea.Cmd {
	a.pending++
	return a.run("load", true, a.session.Load)
}

// run executes fn off the update loop.
func (a *App) run(op string, fit bool, fn func(context.Context) error) tea.Cmd {
	ctx := a.ctx
	return func() tea.Msg {
		return actionDoneMsg{op: op, err: fn(ctx), fit: fit}
	}
}

func (a *App) start(op string, fit bool, fn func(context.Context) error) tea.Cmd {
	a.pending++
	a.status = op + "..."
	return a.run(op, fit, fn)
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = msg.Width, msg.Height
		a.canvas.SetSize(a.mapWidth(), a.mapHeight())
		return a, nil

	case actionDoneMsg:
		return a, a.finish(msg)

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		switch {
		case a.notice != "":
			return a, a.updateNotice(msg)
		case a.form != nil:
			return a, a.updateForm(msg)
		default:
			return a, a.updateBrowse(msg)
		}
	}
	return a, nil
}

func (a *App) finish(msg actionDoneMsg) tea.Cmd {
	a.pending = max(a.pending-1, 0)

	if msg.fit {
		a.canvas.Fit()
	}
	if msg.solve && msg.err == nil {
		a.cards = msg.cards
	}
	a.clampSelection()

	var valErr *console.ValidationError
	switch {
	case msg.err == nil:
		a.status = msg.op + ": done"
	case errors.As(msg.err, &valErr):
		a.status = msg.op + ": " + valErr.Error()
	case errors.Is(msg.err, console.ErrStaleAction):
		a.status = msg.op + ": the order no longer exists"
	case errors.Is(msg.err, console.ErrSolveInProgress):
		a.status = "a solve is already running"
	default:
		a.status = msg.op + " failed (see log)"
	}

	if n := a.session.Notice(); n != "" {
		a.notice = n
	}
	return nil
}

func (a *App) updateNotice(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "enter", "esc", " ":
		a.notice = ""
		a.session.ClearNotice()
	}
	return nil
}

func (a *App) updateBrowse(msg tea.KeyMsg) tea.Cmd {
	fields := a.session.Fields()

	switch msg.String() {
	case "q":
		return tea.Quit
	case "tab":
		a.focus = (a.focus + 1) % 3
		return nil
	case "shift+tab":
		a.focus = (a.focus + 2) % 3
		return nil
	case "r":
		return a.start("reload", true, a.session.Load)
	case "s":
		return a.solve()
	case "f":
		console.WriteForceAll(fields, !console.ReadForceAll(fields))
		return nil
	case "d":
		a.form = newForm(formDepot, fields)
		return nil
	case "v":
		a.form = newForm(formVehicle, fields)
		return nil
	case "o":
		a.form = newForm(formOrder, fields)
		return nil
	case "i":
		a.form = newForm(formImport, fields)
		return nil
	}

	switch a.focus {
	case panelMap:
		return a.updateMap(msg)
	case panelVehicles:
		return a.updateVehicles(msg)
	default:
		return a.updateOrders(msg)
	}
}

func (a *App) updateMap(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "up", "k":
		a.canvas.MoveCursor(0, -1)
	case "down", "j":
		a.canvas.MoveCursor(0, 1)
	case "left", "h":
		a.canvas.MoveCursor(-1, 0)
	case "right", "l":
		a.canvas.MoveCursor(1, 0)
	case "enter":
		at := a.canvas.Click()
		a.status = fmt.Sprintf("depot form set to %.5f, %.5f (press d to save)", at.Lat, at.Lon)
	case "m":
		if a.canvas.DragDepotToCursor() {
			a.status = "depot marker moved; press d to save"
		} else {
			a.status = "no depot on the map"
		}
	case "+", "=":
		a.canvas.Zoom(0.5)
	case "-":
		a.canvas.Zoom(2)
	case "z":
		a.canvas.Fit()
	}
	return nil
}

func (a *App) updateVehicles(msg tea.KeyMsg) tea.Cmd {
	vehicles := a.session.Cache().Vehicles()
	switch msg.String() {
	case "up", "k":
		a.vehicleSel = max(a.vehicleSel-1, 0)
	case "down", "j":
		a.vehicleSel = min(a.vehicleSel+1, max(len(vehicles)-1, 0))
	case " ", "enter":
		if a.vehicleSel < len(vehicles) {
			v := vehicles[a.vehicleSel]
			active, err := a.session.ToggleVehicle(v.ID)
			if err != nil {
				a.status = err.Error()
				return nil
			}
			state := "not ready"
			if active {
				state = "ready"
			}
			a.status = fmt.Sprintf("%s %s for the next solve", v.Name, state)
		}
	}
	return nil
}

func (a *App) updateOrders(msg tea.KeyMsg) tea.Cmd {
	orders := a.session.Cache().Orders()
	switch msg.String() {
	case "up", "k":
		a.orderSel = max(a.orderSel-1, 0)
	case "down", "j":
		a.orderSel = min(a.orderSel+1, max(len(orders)-1, 0))
	case "x", "delete":
		if a.orderSel < len(orders) {
			ref := console.OrderRef(orders[a.orderSel].ID)
			return a.start("delete order", false, func(ctx context.Context) error {
				return a.session.Dispatch(ctx, console.ActionDeleteOrder, ref)
			})
		}
	}
	return nil
}

func (a *App) updateForm(msg tea.KeyMsg) tea.Cmd {
	f := a.form
	switch msg.String() {
	case "esc":
		a.form = nil
		return nil
	case "tab", "down":
		f.next()
		return nil
	case "shift+tab", "up":
		f.prev()
		return nil
	case "enter":
		if !f.last() {
			f.next()
			return nil
		}
		return a.submit()
	case "ctrl+s":
		return a.submit()
	}
	return f.update(msg)
}

// submit validates the form locally and starts its action. An invalid form
// stays open with the problem shown.
func (a *App) submit() tea.Cmd {
	f := a.form
	fields := a.session.Fields()

	if f.kind == formImport {
		path := f.value(fieldImportPath)
		if path == "" {
			f.err = "a file path is required"
			return nil
		}
		a.form = nil
		return a.start("import orders", true, func(ctx context.Context) error {
			file, err := os.Open(path)
			if err != nil {
				return fmt.Errorf("import orders: %w", err)
			}
			defer file.Close()
			return a.session.ImportOrders(ctx, filepath.Base(path), file)
		})
	}

	f.commit(fields)

	var (
		err    error
		op     string
		action func(context.Context) error
	)
	switch f.kind {
	case formDepot:
		_, err = console.ReadDepot(fields)
		op, action = "save depot", a.session.SaveDepot
	case formVehicle:
		_, err = console.ReadVehicle(fields)
		op, action = "add vehicle", a.session.AddVehicle
	case formOrder:
		_, err = console.ReadOrder(fields)
		op, action = "add order", a.session.AddOrder
	}
	if err != nil {
		f.err = err.Error()
		return nil
	}

	a.form = nil
	return a.start(op, false, action)
}

func (a *App) solve() tea.Cmd {
	a.pending++
	a.status = "solving..."
	ctx := a.ctx
	return func() tea.Msg {
		cards, err := a.session.Solve(ctx)
		return actionDoneMsg{op: "solve", err: err, cards: cards, solve: true, fit: err == nil}
	}
}

func (a *App) clampSelection() {
	if n := len(a.session.Cache().Vehicles()); a.vehicleSel >= n {
		a.vehicleSel = max(n-1, 0)
	}
	if n := len(a.session.Cache().Orders()); a.orderSel >= n {
		a.orderSel = max(n-1, 0)
	}
}

func (a *App) mapWidth() int {
	if a.width == 0 {
		return 60
	}
	return max(a.width*3/5-4, 20)
}

func (a *App) mapHeight() int {
	if a.height == 0 {
		return 20
	}
	return max(a.height-8, 8)
}
