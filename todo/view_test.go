package todo

import (
	"reflect"
	"testing"
)

func sampleList() List {
	return List{
		{ID: "c", Text: "third", Done: true, CreatedAt: 3},
		{ID: "b", Text: "second", Done: false, CreatedAt: 2},
		{ID: "a", Text: "first", Done: true, CreatedAt: 1},
	}
}

func TestTaskActive(t *testing.T) {
	for _, task := range sampleList() {
		if task.Active() == task.Done {
			t.Errorf("task %s: Active() = %v with Done = %v", task.ID, task.Active(), task.Done)
		}
		inActive := len(Filtered(List{task}, FilterActive)) == 1
		if inActive != task.Active() {
			t.Errorf("task %s: in active view = %v, Active() = %v", task.ID, inActive, task.Active())
		}
	}
}

func TestFiltered(t *testing.T) {
	list := sampleList()

	tests := []struct {
		filter Filter
		want   []string
	}{
		{FilterAll, []string{"c", "b", "a"}},
		{FilterActive, []string{"b"}},
		{FilterDone, []string{"c", "a"}},
		{Filter("bogus"), []string{"c", "b", "a"}},
	}
	for _, tt := range tests {
		got := Filtered(list, tt.filter).IDs()
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("Filtered(%s) = %v, want %v", tt.filter, got, tt.want)
		}
	}
}

func TestFiltered_DoesNotMutate(t *testing.T) {
	list := sampleList()
	before := list.Clone()

	out := Filtered(list, FilterAll)
	out[0].Text = "changed"
	Filtered(list, FilterDone)

	if !reflect.DeepEqual(list, before) {
		t.Errorf("input mutated: %v", list)
	}
}

func TestFiltered_Empty(t *testing.T) {
	got := Filtered(nil, FilterDone)
	if got == nil || len(got) != 0 {
		t.Errorf("expected empty non-nil list, got %#v", got)
	}
}

func TestFiltered_ActiveAndDonePartition(t *testing.T) {
	list := sampleList()
	active := Filtered(list, FilterActive)
	done := Filtered(list, FilterDone)

	seen := map[string]int{}
	for _, id := range append(active.IDs(), done.IDs()...) {
		seen[id]++
	}
	if len(seen) != len(list) {
		t.Fatalf("partition covers %d ids, want %d", len(seen), len(list))
	}
	for id, n := range seen {
		if n != 1 {
			t.Errorf("id %s appears %d times", id, n)
		}
	}
}

func TestComputeStats(t *testing.T) {
	tests := []struct {
		name string
		list List
		want Stats
	}{
		{"empty", nil, Stats{}},
		{"mixed", sampleList(), Stats{Total: 3, Done: 2, Active: 1}},
		{"all active", List{{ID: "x"}, {ID: "y"}}, Stats{Total: 2, Active: 2}},
	}
	for _, tt := range tests {
		got := ComputeStats(tt.list)
		if got != tt.want {
			t.Errorf("%s: got %+v, want %+v", tt.name, got, tt.want)
		}
		if got.Active+got.Done != got.Total {
			t.Errorf("%s: active+done != total: %+v", tt.name, got)
		}
	}
}

func TestParseFilter(t *testing.T) {
	tests := []struct {
		in    string
		want  Filter
		valid bool
	}{
		{"", FilterAll, true},
		{"all", FilterAll, true},
		{" Active ", FilterActive, true},
		{"DONE", FilterDone, true},
		{"later", Filter("later"), false},
	}
	for _, tt := range tests {
		got := ParseFilter(tt.in)
		if got != tt.want {
			t.Errorf("ParseFilter(%q) = %q, want %q", tt.in, got, tt.want)
		}
		if got.Valid() != tt.valid {
			t.Errorf("ParseFilter(%q).Valid() = %v, want %v", tt.in, got.Valid(), tt.valid)
		}
	}
}

func TestListClone(t *testing.T) {
	var nilList List
	if c := nilList.Clone(); c == nil {
		t.Error("clone of nil list should be non-nil")
	}

	list := sampleList()
	c := list.Clone()
	c[0].Done = false
	if !list[0].Done {
		t.Error("clone shares storage with original")
	}
}

func TestListIndex(t *testing.T) {
	list := sampleList()
	if i := list.Index("b"); i != 1 {
		t.Errorf("Index(b) = %d, want 1", i)
	}
	if i := list.Index("zz"); i != -1 {
		t.Errorf("Index(zz) = %d, want -1", i)
	}
}
