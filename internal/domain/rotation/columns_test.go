package rotation_test

import (
	"reflect"
	"testing"

	"clubgrid/internal/domain/rotation"
)

func threeLevels() []rotation.ActiveLevel {
	return []rotation.ActiveLevel{
		{Level: "A", StartTime: rotation.MustParseTimeOfDay("09:00"), EndTime: rotation.MustParseTimeOfDay("10:00")},
		{Level: "B", StartTime: rotation.MustParseTimeOfDay("09:00"), EndTime: rotation.MustParseTimeOfDay("10:00")},
		{Level: "C", StartTime: rotation.MustParseTimeOfDay("09:30"), EndTime: rotation.MustParseTimeOfDay("10:30")},
	}
}

// TestOrderedLevels_ValidPermutations tests every permutation of three columns.
func TestOrderedLevels_ValidPermutations(t *testing.T) {
	levels := threeLevels()
	perms := []rotation.ColumnOrder{
		{0, 1, 2}, {0, 2, 1}, {1, 0, 2}, {1, 2, 0}, {2, 0, 1}, {2, 1, 0},
	}
	for _, order := range perms {
		got := rotation.OrderedLevels(levels, order)
		for d := range order {
			if got[d] != levels[order[d]] {
				t.Errorf("order %v: display %d = %s, want %s", order, d, got[d].Level, levels[order[d]].Level)
			}
		}
	}
}

// TestOrderedLevels_InvalidFallsBack tests the silent repair policy.
func TestOrderedLevels_InvalidFallsBack(t *testing.T) {
	levels := threeLevels()
	tests := []struct {
		name  string
		order rotation.ColumnOrder
	}{
		{"duplicate", rotation.ColumnOrder{0, 0, 1}},
		{"too short", rotation.ColumnOrder{2, 0}},
		{"too long", rotation.ColumnOrder{0, 1, 2, 3}},
		{"out of range", rotation.ColumnOrder{0, 1, 3}},
		{"negative", rotation.ColumnOrder{-1, 0, 1}},
		{"nil", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.order.IsPermutation(3) {
				t.Fatalf("%v should not be a valid permutation", tt.order)
			}
			got := rotation.OrderedLevels(levels, tt.order)
			if !reflect.DeepEqual(got, levels) {
				t.Errorf("expected natural order fallback, got %v", got)
			}
			if eff := tt.order.Effective(3); !reflect.DeepEqual(eff, rotation.ColumnOrder{0, 1, 2}) {
				t.Errorf("Effective = %v, want [0 1 2]", eff)
			}
		})
	}
}

// TestIndexMaps tests that the display and original maps are inverses.
func TestIndexMaps(t *testing.T) {
	order := rotation.ColumnOrder{2, 0, 3, 1}
	d2o := rotation.DisplayToOriginal(order, 4)
	o2d := rotation.OriginalToDisplay(order, 4)
	if !reflect.DeepEqual(d2o, []int{2, 0, 3, 1}) {
		t.Errorf("DisplayToOriginal = %v", d2o)
	}
	for d, orig := range d2o {
		if o2d[orig] != d {
			t.Errorf("o2d[%d] = %d, want %d", orig, o2d[orig], d)
		}
	}
}

// TestValidCombinedGroups tests group sanitization.
func TestValidCombinedGroups(t *testing.T) {
	tests := []struct {
		name   string
		groups rotation.CombinedGroups
		n      int
		want   rotation.CombinedGroups
	}{
		{"all valid", rotation.CombinedGroups{{0, 1}, {2, 3}}, 4, rotation.CombinedGroups{{0, 1}, {2, 3}}},
		{"drops out of range member", rotation.CombinedGroups{{0, 1, 5}}, 3, rotation.CombinedGroups{{0, 1}}},
		{"drops group left with one", rotation.CombinedGroups{{0, 4}, {1, 2}}, 3, rotation.CombinedGroups{{1, 2}}},
		{"drops overlapping member", rotation.CombinedGroups{{0, 1}, {1, 2, 3}}, 4, rotation.CombinedGroups{{0, 1}, {2, 3}}},
		{"all stale", rotation.CombinedGroups{{7, 8}}, 3, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := rotation.ValidCombinedGroups(tt.groups, tt.n)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ValidCombinedGroups = %v, want %v", got, tt.want)
			}
		})
	}
}

// TestLayout_Reconcile tests repair of layouts when the level count changes.
func TestLayout_Reconcile(t *testing.T) {
	t.Run("stale order resets and clears groups", func(t *testing.T) {
		got := rotation.Layout{Order: rotation.ColumnOrder{2, 0}, Groups: rotation.CombinedGroups{{0, 1}}}.Reconcile(3)
		if !reflect.DeepEqual(got.Order, rotation.ColumnOrder{0, 1, 2}) {
			t.Errorf("Order = %v, want [0 1 2]", got.Order)
		}
		if len(got.Groups) != 0 {
			t.Errorf("Groups = %v, want none", got.Groups)
		}
	})
	t.Run("valid order keeps order and sanitizes groups", func(t *testing.T) {
		got := rotation.Layout{Order: rotation.ColumnOrder{1, 0, 2}, Groups: rotation.CombinedGroups{{0, 1}, {2, 9}}}.Reconcile(3)
		if !reflect.DeepEqual(got.Order, rotation.ColumnOrder{1, 0, 2}) {
			t.Errorf("Order = %v, want [1 0 2]", got.Order)
		}
		if !reflect.DeepEqual(got.Groups, rotation.CombinedGroups{{0, 1}}) {
			t.Errorf("Groups = %v, want [[0 1]]", got.Groups)
		}
	})
	t.Run("missing order becomes identity", func(t *testing.T) {
		got := rotation.Layout{Groups: rotation.CombinedGroups{{1, 2}}}.Reconcile(3)
		if !reflect.DeepEqual(got.Order, rotation.ColumnOrder{0, 1, 2}) {
			t.Errorf("Order = %v, want [0 1 2]", got.Order)
		}
		if !reflect.DeepEqual(got.Groups, rotation.CombinedGroups{{1, 2}}) {
			t.Errorf("Groups = %v, want [[1 2]]", got.Groups)
		}
	})
}
