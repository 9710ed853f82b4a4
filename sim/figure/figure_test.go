package figure

import (
	"bytes"
	"encoding/xml"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vast-sim/sps-sim/sim"
	"github.com/vast-sim/sps-sim/sim/grid"
	"github.com/vast-sim/sps-sim/sim/internal/testutil"
)

func renderScene(t *testing.T, opts Options) string {
	t.Helper()
	// GIVEN a 2x2 grid over a 100-unit world, every node subscribed to its cell
	part, err := grid.New(2, 2, sim.NewSquareBounds(100))
	require.NoError(t, err)
	reg := sim.NewRegistry()
	require.NoError(t, reg.SubscribeCells(part, "overlay-sps"))
	reg.Freeze()

	// AND a small publication from node 0 reaching node 1 only
	pub := sim.Circle{Center: sim.Point{X: 45, Y: 10}, Radius: 8}
	engine := sim.NewEngine(testutil.FixedOracle{Outbound: 10, Inbound: 5}, 0)
	res := engine.Publish(sim.PublicationEvent{Sender: 0, Channel: "overlay-sps", Region: pub}, reg)

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, part, sim.Classify(reg, part, res), pub, opts))
	return buf.String()
}

func TestRender_WellFormedSVG(t *testing.T) {
	out := renderScene(t, DefaultOptions())

	dec := xml.NewDecoder(strings.NewReader(out))
	for {
		_, err := dec.Token()
		if err == io.EOF {
			break
		}
		require.NoError(t, err, "svg must be well-formed XML")
	}
	assert.True(t, strings.HasPrefix(out, `<svg xmlns="http://www.w3.org/2000/svg" width="300" height="300"`))
}

func TestRender_Elements(t *testing.T) {
	out := renderScene(t, DefaultOptions())

	// THEN every site and subscription is drawn, plus the publication
	assert.Equal(t, 4, strings.Count(out, `class="site"`))
	assert.Equal(t, 4, strings.Count(out, "<polygon"))
	assert.Contains(t, out, "<title>publication</title>")

	// AND subscriptions carry their classification colour
	assert.Contains(t, out, `stroke="#ef4444"`, "origin")
	assert.Contains(t, out, "node-0 subscription-origin")
	assert.Contains(t, out, "node-1 subscription-both")
	assert.Contains(t, out, "node-2 subscription-enclosing")
	assert.Contains(t, out, "node-3 subscription<")

	// AND the y axis is flipped: site (25, 25) maps to (125, 175)
	assert.Contains(t, out, `cx="125" cy="175" r="5"`)
	// AND the publication circle is centred at (145, 190)
	assert.Contains(t, out, `cx="145" cy="190" r="8"`)
}

func TestRender_GridLines(t *testing.T) {
	out := renderScene(t, Options{Margin: 100, GridSpacing: 100})
	// Visible world x in [-100, 200]: lines at -100, 0, 100 and 200 on each
	// axis, plus the two origin axes.
	assert.Equal(t, 10, strings.Count(out, `<line x1=`))
}

func TestRender_InvalidOptions(t *testing.T) {
	part, err := grid.New(1, 1, sim.NewSquareBounds(10))
	require.NoError(t, err)
	var buf bytes.Buffer
	assert.Error(t, Render(&buf, part, nil, nil, Options{Margin: 0, GridSpacing: 0}))
	assert.Error(t, Render(&buf, part, nil, nil, Options{Margin: -1, GridSpacing: 10}))
}

func TestColorFor_UnknownClassFallsBack(t *testing.T) {
	assert.Equal(t, ColorFor(sim.ClassSubscription), ColorFor("mystery"))
	assert.NotEqual(t, ColorFor(sim.ClassOrigin), ColorFor(sim.ClassBoth))
}
