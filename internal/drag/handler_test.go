package drag

import (
	"math"
	"testing"
	"unicode/utf8"

	"github.com/inamate/textbox/internal/geom"
	"github.com/inamate/textbox/internal/opstack"
	"github.com/inamate/textbox/internal/shape"
)

const tol = 1e-9

type monoMeasurer struct{}

func (monoMeasurer) Advance(text string, fontSize float64) float64 {
	return float64(utf8.RuneCountInString(text)) * fontSize
}

func (monoMeasurer) LineHeight(fontSize float64) float64 { return fontSize }

type fakeHost struct {
	textViewUpdates int
	frameUpdates    int
	controlWidth    float64
}

func (h *fakeHost) UpdateTextView()                  { h.textViewUpdates++ }
func (h *fakeHost) UpdateShapeFrame()                { h.frameUpdates++ }
func (h *fakeHost) ChangeWidthControlWidth() float64 { return h.controlWidth }

// recordingStack applies operations like the real stack and keeps them.
type recordingStack struct {
	ops []opstack.Operation
}

func (s *recordingStack) Apply(op opstack.Operation) {
	op.Apply()
	s.ops = append(s.ops, op)
}

type fixture struct {
	shape    *shape.TextShape
	host     *fakeHost
	ref      *HostRef
	stack    *recordingStack
	settings *ToolSettings
	ctx      *Context
}

func newFixture(t geom.Transform) *fixture {
	f := &fixture{
		shape:    shape.New("shape_test", "hello world", 2, t, monoMeasurer{}),
		host:     &fakeHost{controlWidth: 24},
		stack:    &recordingStack{},
		settings: &ToolSettings{},
	}
	f.ref = NewHostRef(f.host)
	f.ctx = &Context{Stack: f.stack, Settings: f.settings}
	return f
}

func polar(center geom.Point, dist, angle float64) geom.Point {
	return geom.Pt(center.X+dist*math.Cos(angle), center.Y+dist*math.Sin(angle))
}

func TestMoveZeroDeltaLeavesTransform(t *testing.T) {
	orig := geom.Transform{Translation: geom.Pt(10, 20), Rotation: 0.3, Scale: 1.5}
	f := newFixture(orig)
	h := NewMove(f.shape, f.ref)

	p := geom.Pt(7, 7)
	h.DragStart(f.ctx, p)
	h.DragContinue(f.ctx, p, geom.Point{})

	if got := f.shape.Transform(); got != orig {
		t.Fatalf("transform = %+v, want %+v", got, orig)
	}
	if f.host.textViewUpdates != 1 {
		t.Errorf("text view updates = %d, want 1", f.host.textViewUpdates)
	}
}

func TestMoveContinueIsIdempotent(t *testing.T) {
	f := newFixture(geom.At(geom.Pt(0, 0)))
	h := NewMove(f.shape, f.ref)

	h.DragStart(f.ctx, geom.Pt(1, 1))
	h.DragContinue(f.ctx, geom.Pt(5, 9), geom.Point{})
	first := f.shape.Transform()
	h.DragContinue(f.ctx, geom.Pt(5, 9), geom.Point{})

	if got := f.shape.Transform(); got != first {
		t.Fatalf("repeated sample changed transform: %+v then %+v", first, got)
	}
	if want := geom.At(geom.Pt(4, 8)); first != want {
		t.Errorf("transform = %+v, want %+v", first, want)
	}
}

func TestMoveCancelRestoresTransform(t *testing.T) {
	orig := geom.Transform{Translation: geom.Pt(3, 4), Rotation: 1, Scale: 2}

	for _, p2 := range []geom.Point{geom.Pt(0, 0), geom.Pt(100, -50), geom.Pt(3, 4)} {
		f := newFixture(orig)
		h := NewMove(f.shape, f.ref)

		h.DragStart(f.ctx, geom.Pt(0, 0))
		h.DragContinue(f.ctx, geom.Pt(40, 40), geom.Point{})
		h.DragCancel(f.ctx, p2)

		if got := f.shape.Transform(); got != orig {
			t.Errorf("cancel at %+v: transform = %+v, want %+v", p2, got, orig)
		}
		if len(f.stack.ops) != 0 {
			t.Errorf("cancel applied %d operations", len(f.stack.ops))
		}
		if !f.settings.PersistentBufferDirty {
			t.Error("cancel should mark the persistent buffer dirty")
		}
		if f.host.frameUpdates != 1 {
			t.Errorf("frame updates = %d, want 1", f.host.frameUpdates)
		}
		if h.State() != StateCancelled {
			t.Errorf("state = %v, want cancelled", h.State())
		}
	}
}

func TestMoveEndAppliesOnceWithConstructionOriginal(t *testing.T) {
	orig := geom.At(geom.Pt(10, 10))
	f := newFixture(orig)
	h := NewMove(f.shape, f.ref)

	h.DragStart(f.ctx, geom.Pt(0, 0))
	for i := 1; i <= 5; i++ {
		h.DragContinue(f.ctx, geom.Pt(float64(i), float64(2*i)), geom.Point{})
	}
	h.DragEnd(f.ctx, geom.Pt(20, -5))

	if len(f.stack.ops) != 1 {
		t.Fatalf("applied %d operations, want 1", len(f.stack.ops))
	}
	op := f.stack.ops[0].(*opstack.ChangeTransform)
	if op.Original() != orig {
		t.Errorf("original = %+v, want %+v", op.Original(), orig)
	}
	if want := geom.At(geom.Pt(30, 5)); op.Transform() != want {
		t.Errorf("committed = %+v, want %+v", op.Transform(), want)
	}
	if f.shape.Transform() != op.Transform() {
		t.Errorf("shape transform = %+v, want committed value", f.shape.Transform())
	}
	if h.State() != StateCommitted {
		t.Errorf("state = %v, want committed", h.State())
	}
}

func TestScaleAndRotationIndependence(t *testing.T) {
	center := geom.Pt(100, 50)
	tests := []struct {
		name  string
		dist  float64
		angle float64
	}{
		{"unit at zero", 1, 0},
		{"ten at 0.3", 10, 0.3},
		{"forty at -2", 40, -2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start := polar(center, tt.dist, tt.angle)
			end := polar(center, 2*tt.dist, tt.angle+math.Pi/2)

			scale, rotation, ok := ScaleAndRotation(center, start, end)
			if !ok {
				t.Fatal("unexpected degenerate result")
			}
			if math.Abs(scale-2) > tol {
				t.Errorf("scale = %v, want 2", scale)
			}
			// atan2 wraps at ±π, so compare on the circle.
			if d := math.Remainder(rotation-math.Pi/2, 2*math.Pi); math.Abs(d) > tol {
				t.Errorf("rotation = %v, want π/2", rotation)
			}
		})
	}
}

func TestResizeAndRotateEnd(t *testing.T) {
	center := geom.Pt(100, 100)
	orig := geom.Transform{Translation: center, Rotation: 0.25, Scale: 1.5}
	f := newFixture(orig)
	h := NewResizeAndRotate(f.shape, f.ref)

	h.DragStart(f.ctx, polar(center, 10, 0.5))
	h.DragContinue(f.ctx, polar(center, 15, 0.7), geom.Point{})
	h.DragContinue(f.ctx, polar(center, 30, 0.9), geom.Point{})
	h.DragEnd(f.ctx, polar(center, 20, 0.5+math.Pi/2))

	if len(f.stack.ops) != 1 {
		t.Fatalf("applied %d operations, want 1", len(f.stack.ops))
	}
	op := f.stack.ops[0].(*opstack.ChangeTransform)
	if op.Original() != orig {
		t.Errorf("original = %+v, want %+v", op.Original(), orig)
	}

	want := geom.Transform{Translation: center, Rotation: 0.25 + math.Pi/2, Scale: 3}
	if !op.Transform().ApproxEqual(want, tol) {
		t.Errorf("committed = %+v, want %+v", op.Transform(), want)
	}
	if f.host.textViewUpdates != 2 {
		t.Errorf("text view updates = %d, want 2", f.host.textViewUpdates)
	}
}

func TestResizeAndRotateContinueIsIdempotent(t *testing.T) {
	center := geom.Pt(0, 0)
	f := newFixture(geom.At(center))
	h := NewResizeAndRotate(f.shape, f.ref)

	h.DragStart(f.ctx, geom.Pt(10, 0))
	h.DragContinue(f.ctx, geom.Pt(0, 20), geom.Point{})
	first := f.shape.Transform()
	h.DragContinue(f.ctx, geom.Pt(0, 20), geom.Point{})

	if got := f.shape.Transform(); !got.ApproxEqual(first, tol) {
		t.Fatalf("repeated sample changed transform: %+v then %+v", first, got)
	}
	if math.Abs(first.Scale-2) > tol {
		t.Errorf("scale = %v, want 2", first.Scale)
	}
}

func TestResizeAndRotateRejectsPivotSamples(t *testing.T) {
	center := geom.Pt(50, 50)
	orig := geom.At(center)

	t.Run("start on pivot", func(t *testing.T) {
		f := newFixture(orig)
		h := NewResizeAndRotate(f.shape, f.ref)

		h.DragStart(f.ctx, center)
		h.DragContinue(f.ctx, geom.Pt(80, 50), geom.Point{})
		if got := f.shape.Transform(); got != orig {
			t.Fatalf("degenerate sample changed transform to %+v", got)
		}
		if f.host.textViewUpdates != 0 {
			t.Errorf("text view updates = %d, want 0", f.host.textViewUpdates)
		}

		h.DragEnd(f.ctx, geom.Pt(90, 50))
		if len(f.stack.ops) != 1 {
			t.Fatalf("applied %d operations, want 1", len(f.stack.ops))
		}
		if got := f.stack.ops[0].(*opstack.ChangeTransform).Transform(); got != orig {
			t.Errorf("committed = %+v, want original", got)
		}
	})

	t.Run("end on pivot keeps last preview", func(t *testing.T) {
		f := newFixture(orig)
		h := NewResizeAndRotate(f.shape, f.ref)

		h.DragStart(f.ctx, geom.Pt(60, 50))
		h.DragContinue(f.ctx, geom.Pt(70, 50), geom.Point{})
		preview := f.shape.Transform()
		h.DragEnd(f.ctx, center)

		got := f.stack.ops[0].(*opstack.ChangeTransform).Transform()
		if got != preview {
			t.Errorf("committed = %+v, want last preview %+v", got, preview)
		}
		if !got.IsFinite() {
			t.Errorf("committed a non-finite transform %+v", got)
		}
	})
}

func TestResizeAndRotateCancel(t *testing.T) {
	orig := geom.Transform{Translation: geom.Pt(5, 5), Rotation: 2, Scale: 0.5}
	f := newFixture(orig)
	h := NewResizeAndRotate(f.shape, f.ref)

	h.DragStart(f.ctx, geom.Pt(15, 5))
	h.DragContinue(f.ctx, geom.Pt(5, 45), geom.Point{})
	h.DragCancel(f.ctx, geom.Pt(5, 45))

	if got := f.shape.Transform(); got != orig {
		t.Fatalf("transform = %+v, want %+v", got, orig)
	}
	if len(f.stack.ops) != 0 {
		t.Errorf("cancel applied %d operations", len(f.stack.ops))
	}
	if !f.settings.PersistentBufferDirty || f.host.frameUpdates != 1 {
		t.Errorf("dirty = %v, frame updates = %d", f.settings.PersistentBufferDirty, f.host.frameUpdates)
	}
}

func TestTargetWidth(t *testing.T) {
	tests := []struct {
		name         string
		point        geom.Point
		center       geom.Point
		controlWidth float64
		scale        float64
		want         float64
	}{
		{"unscaled", geom.Pt(60, 0), geom.Pt(0, 0), 20, 1, 100},
		{"scaled", geom.Pt(90, 20), geom.Pt(50, 20), 24, 2, 28},
		{"diagonal", geom.Pt(3, 4), geom.Pt(0, 0), 0, 0.5, 20},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TargetWidth(tt.point, tt.center, tt.controlWidth, tt.scale)
			want := ((tt.point.Sub(tt.center).Len() - tt.controlWidth/2) * 2) / tt.scale
			if math.Abs(got-want) > tol || math.Abs(got-tt.want) > tol {
				t.Errorf("TargetWidth = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestChangeWidthSeedsIntrinsicWidth(t *testing.T) {
	f := newFixture(geom.At(geom.Pt(0, 0)))
	intrinsic := f.shape.BoundingRect().Width

	NewChangeWidth(f.shape, f.ref, monoMeasurer{})

	if got := f.shape.ExplicitWidth(); got != shape.Explicit(intrinsic) {
		t.Fatalf("explicit width = %+v, want seeded %v", got, intrinsic)
	}
}

func TestChangeWidthEnd(t *testing.T) {
	f := newFixture(geom.Transform{Translation: geom.Pt(50, 20), Scale: 2})
	origRect := f.shape.BoundingRect()
	h := NewChangeWidth(f.shape, f.ref, monoMeasurer{})

	h.DragStart(f.ctx, geom.Pt(80, 20))
	h.DragContinue(f.ctx, geom.Pt(85, 20), geom.Point{})
	if f.host.textViewUpdates != 0 {
		t.Errorf("change width should not update live, got %d updates", f.host.textViewUpdates)
	}
	h.DragEnd(f.ctx, geom.Pt(90, 20))

	if len(f.stack.ops) != 1 {
		t.Fatalf("applied %d operations, want 1", len(f.stack.ops))
	}
	op := f.stack.ops[0].(*opstack.ChangeWidth)
	// ((|(90,20)-(50,20)| - 24/2) * 2) / 2
	if got := op.Width(); got != shape.Explicit(28) {
		t.Errorf("committed width = %+v, want 28", got)
	}
	if op.Original().Set {
		t.Errorf("original width = %+v, want unset", op.Original())
	}
	if op.OriginalRect() != origRect {
		t.Errorf("original rect = %+v, want %+v", op.OriginalRect(), origRect)
	}
	if f.shape.ExplicitWidth() != shape.Explicit(28) {
		t.Errorf("shape width = %+v", f.shape.ExplicitWidth())
	}
	if f.host.frameUpdates != 1 {
		t.Errorf("frame updates = %d, want 1", f.host.frameUpdates)
	}

	op.Revert()
	if f.shape.ExplicitWidth().Set || f.shape.BoundingRect() != origRect {
		t.Error("reverting the operation should restore the pre-gesture width and rect")
	}
}

func TestChangeWidthEndClampsToMinimum(t *testing.T) {
	f := newFixture(geom.At(geom.Pt(0, 0)))
	h := NewChangeWidth(f.shape, f.ref, monoMeasurer{})

	h.DragStart(f.ctx, geom.Pt(50, 0))
	h.DragEnd(f.ctx, geom.Pt(1, 0))

	if got := f.stack.ops[0].(*opstack.ChangeWidth).Width(); got != shape.Explicit(MinWidth) {
		t.Errorf("width = %+v, want %v", got, MinWidth)
	}
}

func TestChangeWidthCancel(t *testing.T) {
	t.Run("without continue restores intrinsic", func(t *testing.T) {
		f := newFixture(geom.At(geom.Pt(0, 0)))
		origRect := f.shape.BoundingRect()
		h := NewChangeWidth(f.shape, f.ref, monoMeasurer{})

		h.DragStart(f.ctx, geom.Pt(10, 0))
		h.DragCancel(f.ctx, geom.Pt(10, 0))

		if f.shape.ExplicitWidth().Set {
			t.Errorf("width = %+v, want unset", f.shape.ExplicitWidth())
		}
		if f.shape.BoundingRect() != origRect {
			t.Errorf("rect = %+v, want %+v", f.shape.BoundingRect(), origRect)
		}
		if len(f.stack.ops) != 0 {
			t.Errorf("cancel applied %d operations", len(f.stack.ops))
		}
		if !f.settings.PersistentBufferDirty || f.host.textViewUpdates != 1 {
			t.Errorf("dirty = %v, text view updates = %d", f.settings.PersistentBufferDirty, f.host.textViewUpdates)
		}
	})

	t.Run("after continue restores re-snapshot", func(t *testing.T) {
		// The seeded width survives cancel; continue re-captures the originals.
		f := newFixture(geom.At(geom.Pt(0, 0)))
		seeded := f.shape.BoundingRect().Width
		h := NewChangeWidth(f.shape, f.ref, monoMeasurer{})

		h.DragStart(f.ctx, geom.Pt(10, 0))
		h.DragContinue(f.ctx, geom.Pt(30, 0), geom.Point{})
		h.DragCancel(f.ctx, geom.Pt(30, 0))

		if got := f.shape.ExplicitWidth(); got != shape.Explicit(seeded) {
			t.Errorf("width = %+v, want %v", got, seeded)
		}
		if len(f.stack.ops) != 0 {
			t.Errorf("cancel applied %d operations", len(f.stack.ops))
		}
	})
}

func TestChangeWidthEndAfterHostReleaseIsNoop(t *testing.T) {
	f := newFixture(geom.At(geom.Pt(0, 0)))
	h := NewChangeWidth(f.shape, f.ref, monoMeasurer{})
	seeded := f.shape.ExplicitWidth()

	h.DragStart(f.ctx, geom.Pt(10, 0))
	f.ref.Release()
	h.DragEnd(f.ctx, geom.Pt(200, 0))

	if len(f.stack.ops) != 0 {
		t.Errorf("applied %d operations after host release", len(f.stack.ops))
	}
	if f.shape.ExplicitWidth() != seeded {
		t.Errorf("width = %+v, want %+v", f.shape.ExplicitWidth(), seeded)
	}
	if f.host.frameUpdates != 0 {
		t.Errorf("released host received %d frame updates", f.host.frameUpdates)
	}
}

func TestCancelWithReleasedHostStillRestores(t *testing.T) {
	orig := geom.At(geom.Pt(1, 1))
	f := newFixture(orig)
	h := NewMove(f.shape, f.ref)

	h.DragStart(f.ctx, geom.Pt(0, 0))
	h.DragContinue(f.ctx, geom.Pt(9, 9), geom.Point{})
	f.ref.Release()
	h.DragCancel(f.ctx, geom.Pt(9, 9))

	if f.shape.Transform() != orig {
		t.Errorf("transform = %+v, want %+v", f.shape.Transform(), orig)
	}
	if f.host.frameUpdates != 0 {
		t.Errorf("released host received %d frame updates", f.host.frameUpdates)
	}
}

func TestCancelNeverAppliesForAnyKind(t *testing.T) {
	makers := map[Kind]func(*fixture) Handler{
		KindMove:            func(f *fixture) Handler { return NewMove(f.shape, f.ref) },
		KindResizeAndRotate: func(f *fixture) Handler { return NewResizeAndRotate(f.shape, f.ref) },
		KindChangeWidth:     func(f *fixture) Handler { return NewChangeWidth(f.shape, f.ref, monoMeasurer{}) },
	}

	for kind, mk := range makers {
		t.Run(kind.String(), func(t *testing.T) {
			f := newFixture(geom.At(geom.Pt(0, 0)))
			h := mk(f)
			if h.Kind() != kind {
				t.Fatalf("Kind = %v, want %v", h.Kind(), kind)
			}

			h.DragStart(f.ctx, geom.Pt(10, 10))
			for i := 0; i < 4; i++ {
				h.DragContinue(f.ctx, geom.Pt(10+float64(i), 12), geom.Point{})
			}
			h.DragCancel(f.ctx, geom.Pt(20, 20))

			if len(f.stack.ops) != 0 {
				t.Errorf("cancel applied %d operations", len(f.stack.ops))
			}
		})
	}
}

func TestHostRefNil(t *testing.T) {
	var r *HostRef
	if _, ok := r.Get(); ok {
		t.Error("nil ref should report no host")
	}
	r.UpdateTextView()
	r.UpdateShapeFrame()
	r.Release()
}

func TestNilContextDropsOperation(t *testing.T) {
	f := newFixture(geom.At(geom.Pt(0, 0)))
	h := NewMove(f.shape, f.ref)

	h.DragStart(nil, geom.Pt(0, 0))
	h.DragEnd(nil, geom.Pt(5, 5))
	h2 := NewMove(f.shape, f.ref)
	h2.DragStart(nil, geom.Pt(0, 0))
	h2.DragCancel(nil, geom.Pt(5, 5))

	if h.State() != StateCommitted || h2.State() != StateCancelled {
		t.Errorf("states = %v, %v", h.State(), h2.State())
	}
}
