package tui

import (
	"delivery-route-console/internal/console"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

type formKind int

const (
	formDepot formKind = iota
	formVehicle
	formOrder
	formImport
)

func (k formKind) title() string {
	switch k {
	case formDepot:
		return "Depot"
	case formVehicle:
		return "New vehicle"
	case formOrder:
		return "New order"
	default:
		return "Import orders"
	}
}

// fieldImportPath is local to the UI; the session never reads it.
const fieldImportPath = "import-path"

type formInput struct {
	field string
	label string
	input textinput.Model
}

// form edits a group of session fields. Values are copied into the session
// only on submit, so a cancelled form leaves the fields untouched.
type form struct {
	kind   formKind
	inputs []formInput
	focus  int
	err    string
}

func newForm(kind formKind, fields *console.Fields) *form {
	var spec [][2]string
	switch kind {
	case formDepot:
		spec = [][2]string{
			{console.FieldDepotLat, "Latitude"},
			{console.FieldDepotLon, "Longitude"},
			{console.FieldDepotAddress, "Address"},
		}
	case formVehicle:
		spec = [][2]string{
			{console.FieldVehicleName, "Name"},
			{console.FieldVehicleCapacity, "Capacity"},
		}
	case formOrder:
		spec = [][2]string{
			{console.FieldOrderID, "External id"},
			{console.FieldOrderAddress, "Address"},
			{console.FieldOrderLat, "Latitude"},
			{console.FieldOrderLon, "Longitude"},
			{console.FieldOrderVolume, "Volume"},
			{console.FieldOrderWindowStart, "Window start (min)"},
			{console.FieldOrderWindowEnd, "Window end (min)"},
		}
	case formImport:
		spec = [][2]string{{fieldImportPath, "File path (.csv)"}}
	}

	f := &form{kind: kind}
	for _, s := range spec {
		ti := textinput.New()
		ti.Prompt = ""
		ti.CharLimit = 256
		ti.Width = 32
		ti.Cursor.SetMode(cursor.CursorStatic)
		if kind != formImport {
			ti.SetValue(fields.Get(s[0]))
		}
		f.inputs = append(f.inputs, formInput{field: s[0], label: s[1], input: ti})
	}
	f.setFocus(0)
	return f
}

func (f *form) setFocus(i int) {
	n := len(f.inputs)
	f.focus = ((i % n) + n) % n
	for j := range f.inputs {
		if j == f.focus {
			f.inputs[j].input.Focus()
		} else {
			f.inputs[j].input.Blur()
		}
	}
}

func (f *form) next() { f.setFocus(f.focus + 1) }
func (f *form) prev() { f.setFocus(f.focus - 1) }

func (f *form) last() bool { return f.focus == len(f.inputs)-1 }

func (f *form) update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	f.inputs[f.focus].input, cmd = f.inputs[f.focus].input.Update(msg)
	return cmd
}

func (f *form) value(field string) string {
	for _, in := range f.inputs {
		if in.field == field {
			return in.input.Value()
		}
	}
	return ""
}

// commit copies every input into the session fields.
func (f *form) commit(fields *console.Fields) {
	for _, in := range f.inputs {
		fields.Set(in.field, in.input.Value())
	}
}
