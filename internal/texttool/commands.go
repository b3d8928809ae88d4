package texttool

import (
	"encoding/json"

	"github.com/inamate/textbox/internal/geom"
	"github.com/inamate/textbox/internal/shape"
)

// DrawCommand represents a single drawing operation for the frontend to execute.
// The frontend receives a list of these and executes them on a Canvas2D context.
type DrawCommand struct {
	Op        string      `json:"op"`                  // "text", "frame", "handle"
	ObjectID  string      `json:"objectId,omitempty"`  // For hit correlation
	Transform []float64   `json:"transform,omitempty"` // [a, b, c, d, e, f] affine matrix
	Lines     []string    `json:"lines,omitempty"`     // Wrapped text for "text" ops
	FontSize  float64     `json:"fontSize,omitempty"`
	Rect      *geom.Rect  `json:"rect,omitempty"`   // Shape-space box for "text" and "frame"
	Handle    string      `json:"handle,omitempty"` // "corner" or "side"
	Center    *geom.Point `json:"center,omitempty"` // Canvas-space centre for "handle"
	Size      float64     `json:"size,omitempty"`
}

// CompileDrawCommands generates the draw command buffer for the canvas.
// Commands are in painter's order (back to front); the selection frame and
// its handles come last so they sit on top.
func (t *Tool) CompileDrawCommands() []DrawCommand {
	shapes := t.canvas.Shapes()
	commands := make([]DrawCommand, 0, len(shapes)+3)

	for _, s := range shapes {
		commands = append(commands, t.textCommand(s))
	}

	if t.selected != nil {
		snap := t.selected.Snapshot()
		rect := snap.BoundingRect
		commands = append(commands, DrawCommand{
			Op:        "frame",
			ObjectID:  snap.ID,
			Transform: snap.Transform.Matrix().ToSlice(),
			Rect:      &rect,
		})

		h := HandlesFor(t.selected, t.controlWidth)
		for _, hc := range []struct {
			name   string
			center geom.Point
		}{{RegionCornerHandle.String(), h.Corner}, {RegionSideHandle.String(), h.Side}} {
			center := hc.center
			commands = append(commands, DrawCommand{
				Op:       "handle",
				ObjectID: snap.ID,
				Handle:   hc.name,
				Center:   &center,
				Size:     t.controlWidth,
			})
		}
	}

	return commands
}

func (t *Tool) textCommand(s *shape.TextShape) DrawCommand {
	snap := s.Snapshot()

	var l shape.Layout
	if snap.ExplicitWidth != nil {
		l = shape.LayoutWrapped(t.measurer, snap.Text, snap.FontSize, *snap.ExplicitWidth)
	} else {
		l = shape.LayoutIntrinsic(t.measurer, snap.Text, snap.FontSize)
	}

	rect := snap.BoundingRect
	return DrawCommand{
		Op:        "text",
		ObjectID:  snap.ID,
		Transform: snap.Transform.Matrix().ToSlice(),
		Lines:     l.Lines,
		FontSize:  snap.FontSize,
		Rect:      &rect,
	}
}

// Render compiles the canvas and serialises it to JSON.
func (t *Tool) Render() string {
	result, _ := DrawCommandsToJSON(t.CompileDrawCommands())
	return result
}

// DrawCommandsToJSON serializes draw commands to JSON.
func DrawCommandsToJSON(commands []DrawCommand) (string, error) {
	data, err := json.Marshal(commands)
	if err != nil {
		return "[]", err
	}
	return string(data), nil
}
