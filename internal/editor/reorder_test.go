package editor_test

import (
	"slices"
	"strings"
	"testing"

	"coursekit/internal/editor"
)

type item struct {
	id  string
	pos int
}

func itemID(i *item) string { return i.id }

func items(ids ...string) []*item {
	out := make([]*item, len(ids))
	for i, id := range ids {
		out[i] = &item{id: id, pos: i}
	}
	return out
}

func order(xs []*item) string {
	ids := make([]string, len(xs))
	for i, x := range xs {
		ids[i] = x.id
	}
	return strings.Join(ids, ",")
}

func TestMove(t *testing.T) {
	tests := []struct {
		name      string
		from, to  string
		want      string
		wantMoved bool
	}{
		{name: "forward", from: "a", to: "c", want: "b,a,c,d", wantMoved: true},
		{name: "backward", from: "d", to: "b", want: "a,d,b,c", wantMoved: true},
		{name: "to front", from: "c", to: "a", want: "c,a,b,d", wantMoved: true},
		{name: "onto last", from: "a", to: "d", want: "b,c,a,d", wantMoved: true},
		{name: "same element", from: "b", to: "b", want: "a,b,c,d"},
		{name: "onto own successor", from: "b", to: "c", want: "a,b,c,d"},
		{name: "unknown source", from: "x", to: "a", want: "a,b,c,d"},
		{name: "unknown target", from: "a", to: "x", want: "a,b,c,d"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := items("a", "b", "c", "d")
			got, moved := editor.Move(in, itemID, tt.from, tt.to)
			if moved != tt.wantMoved {
				t.Errorf("Move() moved = %v, want %v", moved, tt.wantMoved)
			}
			if order(got) != tt.want {
				t.Errorf("Move() = %s, want %s", order(got), tt.want)
			}
			if order(in) != "a,b,c,d" {
				t.Errorf("Move() modified its input: %s", order(in))
			}
		})
	}
}

func TestMove_RoundTrip(t *testing.T) {
	in := items("a", "b", "c", "d")

	moved, ok := editor.Move(in, itemID, "c", "a")
	if !ok {
		t.Fatal("first Move() reported no change")
	}
	back, ok := editor.Move(moved, itemID, "c", "d")
	if !ok {
		t.Fatal("second Move() reported no change")
	}
	if order(back) != order(in) {
		t.Errorf("round trip = %s, want %s", order(back), order(in))
	}
}

func TestMove_NoOpReturnsSameSlice(t *testing.T) {
	in := items("a", "b", "c")
	got, moved := editor.Move(in, itemID, "a", "b")
	if moved {
		t.Fatal("Move() onto successor reported a change")
	}
	if &got[0] != &in[0] {
		t.Error("no-op Move() returned a new slice")
	}
}

func TestMoveToEnd(t *testing.T) {
	tests := []struct {
		name      string
		from      string
		want      string
		wantMoved bool
	}{
		{name: "first", from: "a", want: "b,c,a", wantMoved: true},
		{name: "middle", from: "b", want: "a,c,b", wantMoved: true},
		{name: "already last", from: "c", want: "a,b,c"},
		{name: "unknown", from: "x", want: "a,b,c"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, moved := editor.MoveToEnd(items("a", "b", "c"), itemID, tt.from)
			if moved != tt.wantMoved || order(got) != tt.want {
				t.Errorf("MoveToEnd() = %s, %v, want %s, %v", order(got), moved, tt.want, tt.wantMoved)
			}
		})
	}
}

func TestRestamp(t *testing.T) {
	xs := []*item{{id: "a", pos: 4}, {id: "b", pos: 4}, {id: "c", pos: 0}}
	editor.Restamp(xs, func(x *item, i int) { x.pos = i })

	got := make([]int, len(xs))
	for i, x := range xs {
		got[i] = x.pos
	}
	if !slices.Equal(got, []int{0, 1, 2}) {
		t.Errorf("positions = %v, want [0 1 2]", got)
	}
}
