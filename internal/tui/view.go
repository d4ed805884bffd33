package tui

import (
	"delivery-route-console/internal/console"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#a78bfa"))
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#10b981"))
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#f59e0b"))
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#ef4444"))
	selStyle   = lipgloss.NewStyle().Reverse(true)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#475569")).
			Padding(0, 1)
	focusBoxStyle = boxStyle.BorderForeground(lipgloss.Color("#a78bfa"))
	noticeStyle   = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(lipgloss.Color("#ef4444")).
			Padding(1, 2)
)

func (a *App) View() string {
	header := a.viewHeader()

	var body string
	switch {
	case a.notice != "":
		body = noticeStyle.Render(
			errStyle.Bold(true).Render("The planner rejected the action") + "\n\n" +
				a.notice + "\n\n" + dimStyle.Render("enter to dismiss"))
	case a.form != nil:
		body = lipgloss.JoinHorizontal(lipgloss.Top, a.viewMap(), a.viewForm())
	default:
		body = lipgloss.JoinHorizontal(lipgloss.Top, a.viewMap(), a.viewSide())
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, body, a.viewFooter())
}

func (a *App) viewHeader() string {
	health := dimStyle.Render("checking backend...")
	if h := a.session.Health(); h != nil {
		if h.GraphLoaded {
			health = okStyle.Render("graph loaded")
		} else {
			health = warnStyle.Render("graph not loaded")
		}
	}

	force := dimStyle.Render("force all: off")
	if console.ReadForceAll(a.session.Fields()) {
		force = warnStyle.Render("force all: on")
	}

	return titleStyle.Render("Route planner") + "  " + health + "  " + force
}

func (a *App) box(p panel, content string) string {
	if a.form == nil && a.notice == "" && a.focus == p {
		return focusBoxStyle.Render(content)
	}
	return boxStyle.Render(content)
}

func (a *App) viewMap() string {
	return a.box(panelMap, a.canvas.Render())
}

func (a *App) viewSide() string {
	cache := a.session.Cache()

	var depot strings.Builder
	depot.WriteString(titleStyle.Render("Depot") + "\n")
	if d := cache.Depot(); d != nil {
		fmt.Fprintf(&depot, "%.5f, %.5f", d.Latitude, d.Longitude)
		if addr := d.AddressOrEmpty(); addr != "" {
			depot.WriteString("  " + dimStyle.Render(addr))
		}
	} else {
		depot.WriteString(dimStyle.Render("not set"))
	}

	var vehicles strings.Builder
	vehicles.WriteString(titleStyle.Render("Vehicles") + "\n")
	vs := cache.Vehicles()
	if len(vs) == 0 {
		vehicles.WriteString(dimStyle.Render("none"))
	}
	for i, v := range vs {
		check := "[ ]"
		if v.Active {
			check = "[x]"
		}
		line := fmt.Sprintf("%s %s (%s)", check, v.Name, strconv.FormatFloat(v.Capacity, 'f', -1, 64))
		if a.focus == panelVehicles && i == a.vehicleSel {
			line = selStyle.Render(line)
		}
		vehicles.WriteString(line)
		if i < len(vs)-1 {
			vehicles.WriteByte('\n')
		}
	}

	var orders strings.Builder
	orders.WriteString(titleStyle.Render("Orders") + "\n")
	list := cache.Orders()
	if len(list) == 0 {
		orders.WriteString(dimStyle.Render("none"))
	}
	for i, o := range list {
		line := fmt.Sprintf("%s  vol %s", o.ExternalID, strconv.FormatFloat(o.Volume, 'f', -1, 64))
		if o.Address != "" {
			line += "  " + o.Address
		}
		if !o.Located() {
			line += "  (no location)"
		}
		if a.focus == panelOrders && i == a.orderSel {
			line = selStyle.Render(line)
		}
		orders.WriteString(line)
		if i < len(list)-1 {
			orders.WriteByte('\n')
		}
	}

	parts := []string{
		boxStyle.Render(depot.String()),
		a.box(panelVehicles, vehicles.String()),
		a.box(panelOrders, orders.String()),
	}
	if len(a.cards) > 0 {
		parts = append(parts, boxStyle.Render(a.viewCards()))
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (a *App) viewCards() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Routes"))
	for _, c := range a.cards {
		name := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(c.Color)).Render("■ " + c.VehicleName)
		fmt.Fprintf(&b, "\n%s  %s km  %s min\n  %s", name, c.Distance, c.TravelTime, dimStyle.Render(c.Stops))
	}
	return b.String()
}

func (a *App) viewForm() string {
	f := a.form

	var b strings.Builder
	b.WriteString(titleStyle.Render(f.kind.title()) + "\n\n")
	for i, in := range f.inputs {
		label := fmt.Sprintf("%-20s", in.label)
		if i == f.focus {
			label = selStyle.Render(label)
		}
		b.WriteString(label + " " + in.input.View() + "\n")
	}
	if f.err != "" {
		b.WriteString("\n" + errStyle.Render(f.err) + "\n")
	}
	b.WriteString("\n" + dimStyle.Render("tab next · enter on last field or ctrl+s submits · esc cancel"))
	return focusBoxStyle.Render(b.String())
}

func (a *App) viewFooter() string {
	status := a.status
	if a.pending > 0 {
		status = warnStyle.Render("● ") + status
	}
	keys := "tab panel · d depot · v vehicle · o order · i import · f force all · s solve · r reload · q quit"
	switch a.focus {
	case panelMap:
		keys += " · arrows move · enter set depot · m drag depot · +/- zoom · z fit"
	case panelVehicles:
		keys += " · space toggle ready"
	case panelOrders:
		keys += " · x delete"
	}
	return status + "\n" + dimStyle.Render(keys)
}
