//go:build js && wasm

package main

import (
	"encoding/json"
	"syscall/js"

	"github.com/inamate/textbox/internal/document"
	"github.com/inamate/textbox/internal/geom"
	"github.com/inamate/textbox/internal/opstack"
	"github.com/inamate/textbox/internal/shape"
	"github.com/inamate/textbox/internal/texttool"
	"github.com/inamate/textbox/internal/typeid"
)

var (
	measurer = shape.NewBasicMeasurer()
	tool     *texttool.Tool
	onUpdate js.Value
)

func main() {
	install(document.NewSampleCanvas(typeid.NewCanvasID(), measurer))

	textboxEngine := js.Global().Get("Object").New()

	// --- Commands (frontend → tool) ---
	textboxEngine.Set("loadDocument", js.FuncOf(loadDocument))
	textboxEngine.Set("beginDrag", js.FuncOf(beginDrag))
	textboxEngine.Set("continueDrag", js.FuncOf(continueDrag))
	textboxEngine.Set("endDrag", js.FuncOf(endDrag))
	textboxEngine.Set("cancelDrag", js.FuncOf(cancelDrag))
	textboxEngine.Set("undo", js.FuncOf(undo))
	textboxEngine.Set("redo", js.FuncOf(redo))
	textboxEngine.Set("select", js.FuncOf(selectShape))
	textboxEngine.Set("onUpdate", js.FuncOf(setUpdateCallback))

	// --- Queries (frontend ← tool) ---
	textboxEngine.Set("render", js.FuncOf(render))
	textboxEngine.Set("hitTest", js.FuncOf(hitTest))
	textboxEngine.Set("getDocument", js.FuncOf(getDocument))

	js.Global().Set("textboxEngine", textboxEngine)
	js.Global().Set("textboxWasmReady", js.ValueOf(true))

	// Keep Go runtime alive
	select {}
}

func install(c *document.Canvas) {
	if tool != nil {
		tool.Deactivate()
	}
	tool = texttool.New(c, opstack.New(opstack.DefaultLimit), texttool.Options{Measurer: measurer})
	tool.OnUpdate(func(u texttool.Update) {
		if onUpdate.Type() != js.TypeFunction {
			return
		}
		data, err := json.Marshal(map[string]any{
			"kind":   u.Kind,
			"shape":  u.Shape,
			"buffer": u.Buffer,
		})
		if err != nil {
			return
		}
		onUpdate.Invoke(string(data))
	})
}

func point(args []js.Value, at int) (geom.Point, bool) {
	if len(args) < at+2 {
		return geom.Point{}, false
	}
	return geom.Pt(args[at].Float(), args[at+1].Float()), true
}

func errorResult(msg string) interface{} {
	return js.ValueOf(map[string]interface{}{"error": msg})
}

// --- Command Handlers ---

func loadDocument(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return errorResult("missing document JSON")
	}

	var doc document.Document
	if err := json.Unmarshal([]byte(args[0].String()), &doc); err != nil {
		return errorResult(err.Error())
	}
	if doc.ID == "" {
		doc.ID = typeid.NewCanvasID()
	}

	install(document.FromDocument(doc, measurer))
	return js.ValueOf(map[string]interface{}{"ok": true})
}

func beginDrag(this js.Value, args []js.Value) interface{} {
	p, ok := point(args, 0)
	if !ok {
		return errorResult("expected x, y")
	}
	kind, ok := tool.BeginDrag(p)
	if !ok {
		return js.Null()
	}
	return js.ValueOf(map[string]interface{}{
		"kind":    kind.String(),
		"shapeId": tool.Selected().ID,
	})
}

// continueDrag takes x, y and an optional velocity vx, vy.
func continueDrag(this js.Value, args []js.Value) interface{} {
	p, ok := point(args, 0)
	if !ok {
		return nil
	}
	v, _ := point(args, 2)
	tool.ContinueDrag(p, v)
	return nil
}

func endDrag(this js.Value, args []js.Value) interface{} {
	if p, ok := point(args, 0); ok {
		tool.EndDrag(p)
	}
	return nil
}

func cancelDrag(this js.Value, args []js.Value) interface{} {
	p, _ := point(args, 0)
	tool.CancelDrag(p)
	return nil
}

func undo(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(tool.Undo())
}

func redo(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(tool.Redo())
}

func selectShape(this js.Value, args []js.Value) interface{} {
	id := ""
	if len(args) > 0 && args[0].Type() == js.TypeString {
		id = args[0].String()
	}
	return js.ValueOf(tool.Select(id))
}

func setUpdateCallback(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		onUpdate = js.Undefined()
		return nil
	}
	onUpdate = args[0]
	return nil
}

// --- Query Handlers ---

func render(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(tool.Render())
}

func hitTest(this js.Value, args []js.Value) interface{} {
	p, ok := point(args, 0)
	if !ok {
		return js.Null()
	}
	hit := tool.HitTest(p)
	if hit.Region == texttool.RegionNone {
		return js.Null()
	}
	return js.ValueOf(map[string]interface{}{
		"shapeId": hit.Shape.ID,
		"region":  hit.Region.String(),
	})
}

func getDocument(this js.Value, args []js.Value) interface{} {
	data, err := json.Marshal(tool.Canvas().Document())
	if err != nil {
		return errorResult(err.Error())
	}
	return js.ValueOf(string(data))
}
