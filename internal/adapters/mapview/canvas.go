package mapview

import (
	"delivery-route-console/internal/domain"
	"delivery-route-console/internal/ports"
	"math"
	"sort"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// Kyiv city centre, the default view before anything is placed.
var defaultCenter = domain.Coordinates{Lat: 50.4501, Lon: 30.5234}

const (
	defaultSpanLat = 0.25
	defaultSpanLon = 0.5
	minSpan        = 0.01
)

var (
	depotStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#f8fafc")).Background(lipgloss.Color("#1e293b"))
	orderStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#e2e8f0"))
	cursorStyle = lipgloss.NewStyle().Reverse(true)
	emptyStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#334155"))
)

type cell struct {
	r     rune
	style *lipgloss.Style
}

// Canvas is a terminal map widget. It projects markers and polylines onto a
// character grid with a plain equirectangular projection and turns keyboard
// crosshair actions into click and drag-end events.
type Canvas struct {
	*Recorder

	mu      sync.Mutex
	width   int
	height  int
	center  domain.Coordinates
	spanLat float64
	spanLon float64
	col     int
	row     int
}

func NewCanvas(width, height int) *Canvas {
	c := &Canvas{
		Recorder: NewRecorder(),
		center:   defaultCenter,
		spanLat:  defaultSpanLat,
		spanLon:  defaultSpanLon,
	}
	c.SetSize(width, height)
	return c
}

var _ ports.MapWidget = (*Canvas)(nil)

func (c *Canvas) SetSize(width, height int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.width = max(width, 2)
	c.height = max(height, 2)
	c.col = min(max(c.col, 0), c.width-1)
	c.row = min(max(c.row, 0), c.height-1)
	if c.col == 0 && c.row == 0 {
		c.col, c.row = c.width/2, c.height/2
	}
}

// Fit recenters the view on everything drawn. An empty map keeps the current view.
func (c *Canvas) Fit() {
	var pts []domain.Coordinates
	for _, m := range c.Markers() {
		pts = append(pts, m.At)
	}
	for _, lines := range c.Layers() {
		for _, l := range lines {
			pts = append(pts, l.Points...)
		}
	}
	if len(pts) == 0 {
		return
	}

	minLat, maxLat := pts[0].Lat, pts[0].Lat
	minLon, maxLon := pts[0].Lon, pts[0].Lon
	for _, p := range pts[1:] {
		minLat = math.Min(minLat, p.Lat)
		maxLat = math.Max(maxLat, p.Lat)
		minLon = math.Min(minLon, p.Lon)
		maxLon = math.Max(maxLon, p.Lon)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.center = domain.Coordinates{Lat: (minLat + maxLat) / 2, Lon: (minLon + maxLon) / 2}
	c.spanLat = math.Max((maxLat-minLat)*1.2, minSpan)
	c.spanLon = math.Max((maxLon-minLon)*1.2, minSpan)
}

// Zoom scales the visible span; factor < 1 zooms in.
func (c *Canvas) Zoom(factor float64) {
	if factor <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.spanLat = math.Max(c.spanLat*factor, minSpan/10)
	c.spanLon = math.Max(c.spanLon*factor, minSpan/10)
}

func (c *Canvas) MoveCursor(dCol, dRow int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.col = min(max(c.col+dCol, 0), c.width-1)
	c.row = min(max(c.row+dRow, 0), c.height-1)
}

// Cursor returns the coordinates under the crosshair.
func (c *Canvas) Cursor() domain.Coordinates {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.unproject(c.col, c.row)
}

// Click emits a map-level click at the crosshair.
func (c *Canvas) Click() domain.Coordinates {
	at := c.Cursor()
	c.Emit(ports.MapEvent{Kind: ports.EventClick, At: at})
	return at
}

// DragDepotToCursor moves the depot marker under the crosshair and emits
// drag-end. It reports false when no draggable depot marker is placed.
func (c *Canvas) DragDepotToCursor() bool {
	ids := c.MarkerIDs(ports.IconDepot)
	if len(ids) == 0 {
		return false
	}
	return c.MoveMarker(ids[0], c.Cursor())
}

// Render draws the grid: route lines first, then order markers, the depot,
// and the crosshair on top.
func (c *Canvas) Render() string {
	markers := c.Markers()
	layers := c.Layers()

	c.mu.Lock()
	defer c.mu.Unlock()

	grid := make([][]cell, c.height)
	for r := range grid {
		grid[r] = make([]cell, c.width)
		for col := range grid[r] {
			grid[r][col] = cell{r: '·', style: &emptyStyle}
		}
	}

	layerIDs := make([]ports.LayerID, 0, len(layers))
	for id := range layers {
		layerIDs = append(layerIDs, id)
	}
	sort.Slice(layerIDs, func(i, j int) bool { return layerIDs[i] < layerIDs[j] })

	for _, id := range layerIDs {
		for _, line := range layers[id] {
			style := lipgloss.NewStyle().Foreground(lipgloss.Color(line.Color))
			for i := 1; i < len(line.Points); i++ {
				x0, y0 := c.projectF(line.Points[i-1])
				x1, y1 := c.projectF(line.Points[i])
				ax, ay, bx, by, ok := c.clipSegment(x0, y0, x1, y1)
				if !ok {
					continue
				}
				c.plotLine(grid, round(ax), round(ay), round(bx), round(by), cell{r: '•', style: &style})
			}
			if len(line.Points) == 1 {
				col, row := c.project(line.Points[0])
				c.set(grid, col, row, cell{r: '•', style: &style})
			}
		}
	}

	markerIDs := make([]ports.MarkerID, 0, len(markers))
	for id := range markers {
		markerIDs = append(markerIDs, id)
	}
	sort.Slice(markerIDs, func(i, j int) bool {
		mi, mj := markers[markerIDs[i]], markers[markerIDs[j]]
		if mi.Icon != mj.Icon {
			return mi.Icon < mj.Icon
		}
		return markerIDs[i] < markerIDs[j]
	})
	for _, id := range markerIDs {
		m := markers[id]
		col, row := c.project(m.At)
		if m.Icon == ports.IconDepot {
			c.set(grid, col, row, cell{r: 'D', style: &depotStyle})
		} else {
			c.set(grid, col, row, cell{r: 'o', style: &orderStyle})
		}
	}

	under := grid[c.row][c.col]
	if under.r == '·' {
		under.r = '+'
	}
	grid[c.row][c.col] = cell{r: under.r, style: &cursorStyle}

	var b strings.Builder
	for r, line := range grid {
		for _, cl := range line {
			b.WriteString(cl.style.Render(string(cl.r)))
		}
		if r < len(grid)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func (c *Canvas) project(p domain.Coordinates) (col, row int) {
	x, y := c.projectF(p)
	return round(x), round(y)
}

// projectF maps coordinates to fractional grid positions, which may lie far
// outside the grid when the view is zoomed in.
func (c *Canvas) projectF(p domain.Coordinates) (x, y float64) {
	west := c.center.Lon - c.spanLon/2
	north := c.center.Lat + c.spanLat/2
	x = (p.Lon - west) / c.spanLon * float64(c.width-1)
	y = (north - p.Lat) / c.spanLat * float64(c.height-1)
	return x, y
}

// clipSegment trims a projected segment to the grid rectangle (Liang-Barsky).
// ok is false when no part of the segment is visible.
func (c *Canvas) clipSegment(x0, y0, x1, y1 float64) (ax, ay, bx, by float64, ok bool) {
	xmin, xmax := -0.5, float64(c.width)-0.5
	ymin, ymax := -0.5, float64(c.height)-0.5
	dx, dy := x1-x0, y1-y0

	t0, t1 := 0.0, 1.0
	edges := [4][2]float64{
		{-dx, x0 - xmin},
		{dx, xmax - x0},
		{-dy, y0 - ymin},
		{dy, ymax - y0},
	}
	for _, e := range edges {
		p, q := e[0], e[1]
		if p == 0 {
			if q < 0 {
				return 0, 0, 0, 0, false
			}
			continue
		}
		t := q / p
		if p < 0 {
			if t > t1 {
				return 0, 0, 0, 0, false
			}
			t0 = math.Max(t0, t)
		} else {
			if t < t0 {
				return 0, 0, 0, 0, false
			}
			t1 = math.Min(t1, t)
		}
	}
	return x0 + t0*dx, y0 + t0*dy, x0 + t1*dx, y0 + t1*dy, true
}

func (c *Canvas) unproject(col, row int) domain.Coordinates {
	west := c.center.Lon - c.spanLon/2
	north := c.center.Lat + c.spanLat/2
	return domain.Coordinates{
		Lat: north - float64(row)/float64(c.height-1)*c.spanLat,
		Lon: west + float64(col)/float64(c.width-1)*c.spanLon,
	}
}

func (c *Canvas) set(grid [][]cell, col, row int, v cell) {
	if row < 0 || row >= c.height || col < 0 || col >= c.width {
		return
	}
	grid[row][col] = v
}

// plotLine rasterizes a segment with Bresenham's algorithm. Callers clip the
// segment first so the walk stays near the grid.
func (c *Canvas) plotLine(grid [][]cell, c0, r0, c1, r1 int, v cell) {
	dc := abs(c1 - c0)
	dr := -abs(r1 - r0)
	sc, sr := 1, 1
	if c0 > c1 {
		sc = -1
	}
	if r0 > r1 {
		sr = -1
	}

	e := dc + dr
	for {
		c.set(grid, c0, r0, v)
		if c0 == c1 && r0 == r1 {
			return
		}
		e2 := 2 * e
		if e2 >= dr {
			e += dr
			c0 += sc
		}
		if e2 <= dc {
			e += dc
			r0 += sr
		}
	}
}

func round(f float64) int { return int(math.Round(f)) }

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
