// Package figure renders a simulation environment as an SVG image: the
// world grid, every node site, every subscription region coloured by its
// classification, and the publication region on top.
package figure

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/vast-sim/sps-sim/sim"
)

// Options controls the canvas layout.
type Options struct {
	// Margin is the blank space around the world on every side.
	Margin float64
	// GridSpacing is the world distance between grid lines.
	GridSpacing float64
}

// DefaultOptions returns a 100-unit margin and a 100-unit grid.
func DefaultOptions() Options {
	return Options{Margin: 100, GridSpacing: 100}
}

const (
	colorPublication = "#8b5cf6"
	colorSite        = "#f43f5e"
	colorGrid        = "#000000"
	colorAxis        = "#ff0000"

	siteRadius = 5
)

var classColors = map[sim.RegionClass]string{
	sim.ClassOrigin:       "#ef4444",
	sim.ClassBoth:         "#f97316",
	sim.ClassEnclosing:    "#eab308",
	sim.ClassDispatched:   "#84cc16",
	sim.ClassSubscription: "#06b6d4",
}

// ColorFor returns the stroke colour of a subscription class.
func ColorFor(c sim.RegionClass) string {
	if col, ok := classColors[c]; ok {
		return col
	}
	return classColors[sim.ClassSubscription]
}

// viewport maps world coordinates to canvas coordinates at scale 1 with the
// y axis pointing up.
type viewport struct {
	bounds sim.Bounds
	margin float64
}

func (v viewport) width() float64  { return v.bounds.Width() + 2*v.margin }
func (v viewport) height() float64 { return v.bounds.Height() + 2*v.margin }

func (v viewport) point(p sim.Point) (float64, float64) {
	return v.margin + p.X - v.bounds.MinX, v.margin + v.bounds.MaxY - p.Y
}

// Render writes the SVG figure of part, classified and publication to w.
// publication may be nil.
func Render(w io.Writer, part sim.Partition, classified []sim.ClassifiedSubscription, publication sim.Region, opts Options) error {
	if opts.Margin < 0 || opts.GridSpacing <= 0 {
		return fmt.Errorf("invalid figure options: margin %v, grid spacing %v", opts.Margin, opts.GridSpacing)
	}
	vp := viewport{bounds: part.Bounds(), margin: opts.Margin}
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, `<svg xmlns="http://www.w3.org/2000/svg" width="%s" height="%s" viewBox="0 0 %s %s">`+"\n",
		num(vp.width()), num(vp.height()), num(vp.width()), num(vp.height()))
	fmt.Fprintf(bw, `<rect width="100%%" height="100%%" fill="#ffffff"/>`+"\n")
	renderGrid(bw, vp, opts.GridSpacing)

	for _, c := range classified {
		renderRegion(bw, vp, c.Region, ColorFor(c.Class), 0.23, fmt.Sprintf("node-%d %s", c.Node, c.Class))
	}
	for i := 0; i < part.NodeCount(); i++ {
		x, y := vp.point(part.SiteOf(sim.NodeID(i)))
		fmt.Fprintf(bw, `<circle class="site" cx="%s" cy="%s" r="%d" fill="%s"/>`+"\n", num(x), num(y), siteRadius, colorSite)
	}
	if publication != nil {
		renderRegion(bw, vp, publication, colorPublication, 0.1, "publication")
	}

	fmt.Fprintln(bw, "</svg>")
	return bw.Flush()
}

func renderGrid(w io.Writer, vp viewport, spacing float64) {
	// World coordinates visible on the canvas.
	minX, maxX := vp.bounds.MinX-vp.margin, vp.bounds.MaxX+vp.margin
	minY, maxY := vp.bounds.MinY-vp.margin, vp.bounds.MaxY+vp.margin

	fmt.Fprintf(w, `<g stroke="%s" stroke-opacity="0.1" stroke-width="1">`+"\n", colorGrid)
	for x := math.Ceil(minX/spacing) * spacing; x <= maxX; x += spacing {
		px, _ := vp.point(sim.Point{X: x})
		fmt.Fprintf(w, `<line x1="%s" y1="0" x2="%s" y2="%s"/>`+"\n", num(px), num(px), num(vp.height()))
	}
	for y := math.Ceil(minY/spacing) * spacing; y <= maxY; y += spacing {
		_, py := vp.point(sim.Point{Y: y})
		fmt.Fprintf(w, `<line x1="0" y1="%s" x2="%s" y2="%s"/>`+"\n", num(py), num(vp.width()), num(py))
	}
	fmt.Fprintln(w, "</g>")

	// Axes through the world origin, when visible.
	ox, oy := vp.point(sim.Point{})
	fmt.Fprintf(w, `<g stroke="%s" stroke-opacity="0.15" stroke-width="1">`+"\n", colorAxis)
	if minX <= 0 && 0 <= maxX {
		fmt.Fprintf(w, `<line x1="%s" y1="0" x2="%s" y2="%s"/>`+"\n", num(ox), num(ox), num(vp.height()))
	}
	if minY <= 0 && 0 <= maxY {
		fmt.Fprintf(w, `<line x1="0" y1="%s" x2="%s" y2="%s"/>`+"\n", num(oy), num(vp.width()), num(oy))
	}
	fmt.Fprintln(w, "</g>")
}

func renderRegion(w io.Writer, vp viewport, r sim.Region, color string, fillOpacity float64, title string) {
	style := fmt.Sprintf(`stroke="%s" stroke-width="1" fill="%s" fill-opacity="%s"`, color, color, num(fillOpacity))
	switch r := r.(type) {
	case sim.Circle:
		x, y := vp.point(r.Center)
		fmt.Fprintf(w, `<circle cx="%s" cy="%s" r="%s" %s><title>%s</title></circle>`+"\n",
			num(x), num(y), num(r.Radius), style, title)
	case sim.Polygon:
		fmt.Fprint(w, `<polygon points="`)
		for i, p := range r.Points {
			x, y := vp.point(p)
			if i > 0 {
				fmt.Fprint(w, " ")
			}
			fmt.Fprintf(w, "%s,%s", num(x), num(y))
		}
		fmt.Fprintf(w, `" %s><title>%s</title></polygon>`+"\n", style, title)
	}
}

// num formats a coordinate compactly with at most two decimals.
func num(v float64) string {
	return strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64)
}
