package journal

import (
	"context"
	"testing"

	"github.com/inamate/textbox/internal/opstack"
)

func TestMemoryListNewestFirst(t *testing.T) {
	ctx := context.Background()
	j := NewMemory()

	for _, id := range []string{"op_1", "op_2", "op_3"} {
		if _, err := j.Append(ctx, "canvas_a", opstack.Event{Kind: opstack.EventApplied, Record: opstack.Record{ID: id}}); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}
	j.Append(ctx, "canvas_b", opstack.Event{Kind: opstack.EventUndone, Record: opstack.Record{ID: "op_x"}})

	got, err := j.List(ctx, "canvas_a", 2)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 2 || got[0].Record.ID != "op_3" || got[1].Record.ID != "op_2" {
		t.Fatalf("List = %+v", got)
	}
	if got[0].Seq <= got[1].Seq {
		t.Errorf("sequence should increase: %d then %d", got[1].Seq, got[0].Seq)
	}

	all, _ := j.List(ctx, "canvas_a", 0)
	if len(all) != 3 {
		t.Errorf("unbounded List returned %d entries", len(all))
	}

	other, _ := j.List(ctx, "canvas_b", 10)
	if len(other) != 1 || other[0].Kind != opstack.EventUndone {
		t.Errorf("canvas_b = %+v", other)
	}
}
