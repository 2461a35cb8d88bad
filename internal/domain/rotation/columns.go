package rotation

// ColumnOrder maps display positions to original indices: order[display] = original.
// INVARIANT: a usable order is a permutation of [0..n-1].
type ColumnOrder []int

// CombinedGroups holds sets of original indices merged into one column.
// Groups are keyed by original index so they survive reordering.
type CombinedGroups [][]int

// IdentityOrder returns [0, 1, ..., n-1].
func IdentityOrder(n int) ColumnOrder {
	order := make(ColumnOrder, n)
	for i := range order {
		order[i] = i
	}
	return order
}

// IsPermutation reports whether the order is a bijection over [0..n-1].
func (o ColumnOrder) IsPermutation(n int) bool {
	if len(o) != n {
		return false
	}
	seen := make([]bool, n)
	for _, idx := range o {
		if idx < 0 || idx >= n || seen[idx] {
			return false
		}
		seen[idx] = true
	}
	return true
}

// Effective returns a copy of the order when it is valid for n columns,
// otherwise the identity order.
func (o ColumnOrder) Effective(n int) ColumnOrder {
	if !o.IsPermutation(n) {
		return IdentityOrder(n)
	}
	out := make(ColumnOrder, n)
	copy(out, o)
	return out
}

// OrderedLevels returns levels in display order.
// Invalid orders fall back to the natural order; this never fails.
func OrderedLevels(levels []ActiveLevel, order ColumnOrder) []ActiveLevel {
	if !order.IsPermutation(len(levels)) {
		return levels
	}
	out := make([]ActiveLevel, len(order))
	for d, orig := range order {
		out[d] = levels[orig]
	}
	return out
}

// DisplayToOriginal returns the display -> original map for n columns.
func DisplayToOriginal(order ColumnOrder, n int) []int {
	return order.Effective(n)
}

// OriginalToDisplay returns the original -> display map for n columns.
func OriginalToDisplay(order ColumnOrder, n int) []int {
	eff := order.Effective(n)
	out := make([]int, n)
	for d, orig := range eff {
		out[orig] = d
	}
	return out
}

// ValidCombinedGroups drops out-of-range members, members already claimed by
// an earlier group, and any group left with fewer than two members.
func ValidCombinedGroups(groups CombinedGroups, n int) CombinedGroups {
	claimed := make(map[int]bool)
	var out CombinedGroups
	for _, g := range groups {
		var kept []int
		for _, idx := range g {
			if idx < 0 || idx >= n || claimed[idx] {
				continue
			}
			claimed[idx] = true
			kept = append(kept, idx)
		}
		if len(kept) < 2 {
			for _, idx := range kept {
				delete(claimed, idx)
			}
			continue
		}
		out = append(out, kept)
	}
	return out
}

// Layout is the per-day column state: display order plus combined groups.
// Methods return new values and never mutate the receiver.
type Layout struct {
	Order  ColumnOrder
	Groups CombinedGroups
}

// Reconcile repairs a layout for n active levels.
// An empty order becomes identity with groups sanitized. An order that is not a
// permutation of n is stale: it resets to identity and clears all groups.
// Otherwise only the groups are sanitized.
func (l Layout) Reconcile(n int) Layout {
	if len(l.Order) == 0 {
		return Layout{Order: IdentityOrder(n), Groups: ValidCombinedGroups(l.Groups, n)}
	}
	if !l.Order.IsPermutation(n) {
		return Layout{Order: IdentityOrder(n)}
	}
	return Layout{Order: l.Order.Effective(n), Groups: ValidCombinedGroups(l.Groups, n)}
}

// Size is the number of columns the layout covers.
func (l Layout) Size() int {
	return len(l.Order)
}

// GroupOf returns the index into Groups holding original, or -1.
func (l Layout) GroupOf(original int) int {
	for gi, g := range l.Groups {
		for _, idx := range g {
			if idx == original {
				return gi
			}
		}
	}
	return -1
}

// OriginalToDisplay is the original -> display map for this layout.
func (l Layout) OriginalToDisplay() []int {
	return OriginalToDisplay(l.Order, len(l.Order))
}

func (l Layout) clone() Layout {
	out := Layout{Order: append(ColumnOrder(nil), l.Order...)}
	for _, g := range l.Groups {
		out.Groups = append(out.Groups, append([]int(nil), g...))
	}
	return out
}
