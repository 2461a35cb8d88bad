package rotation

// Combine merges the columns at original indices left and right.
// Neither grouped: a new two-member group. One side grouped: the other side
// joins it (appended on the right, prepended on the left). Both grouped
// differently: the groups merge. Same group: no-op.
func (l Layout) Combine(left, right int) Layout {
	n := l.Size()
	if left == right || left < 0 || right < 0 || left >= n || right >= n {
		return l
	}
	out := l.clone()
	lg, rg := out.GroupOf(left), out.GroupOf(right)

	switch {
	case lg == -1 && rg == -1:
		out.Groups = append(out.Groups, []int{left, right})
	case lg != -1 && rg == -1:
		out.Groups[lg] = append(out.Groups[lg], right)
	case lg == -1 && rg != -1:
		out.Groups[rg] = append([]int{left}, out.Groups[rg]...)
	case lg != rg:
		merged := append(append([]int(nil), out.Groups[lg]...), out.Groups[rg]...)
		out.Groups = removeGroups(out.Groups, lg, rg)
		out.Groups = append(out.Groups, merged)
	}
	return out
}

// Split separates left and right when they share a group. The group's members
// are partitioned at the display boundary after the earlier of the two; each
// part stays grouped only if it keeps at least two members.
func (l Layout) Split(left, right int) Layout {
	n := l.Size()
	if left == right || left < 0 || right < 0 || left >= n || right >= n {
		return l
	}
	gi := l.GroupOf(left)
	if gi == -1 || gi != l.GroupOf(right) {
		return l
	}

	o2d := l.OriginalToDisplay()
	boundary := o2d[left]
	if o2d[right] < boundary {
		boundary = o2d[right]
	}

	var first, second []int
	for _, idx := range l.Groups[gi] {
		if o2d[idx] <= boundary {
			first = append(first, idx)
		} else {
			second = append(second, idx)
		}
	}

	out := l.clone()
	out.Groups = removeGroups(out.Groups, gi)
	for _, part := range [][]int{first, second} {
		if len(part) >= 2 {
			out.Groups = append(out.Groups, part)
		}
	}
	return out
}

// MembersByDisplay returns the group's members sorted by display position.
func (l Layout) MembersByDisplay(group int) []int {
	if group < 0 || group >= len(l.Groups) {
		return nil
	}
	inGroup := make(map[int]bool, len(l.Groups[group]))
	for _, idx := range l.Groups[group] {
		inGroup[idx] = true
	}
	var out []int
	for _, orig := range l.Order {
		if inGroup[orig] {
			out = append(out, orig)
		}
	}
	return out
}

func removeGroups(groups CombinedGroups, drop ...int) CombinedGroups {
	skip := make(map[int]bool, len(drop))
	for _, d := range drop {
		skip[d] = true
	}
	var out CombinedGroups
	for i, g := range groups {
		if !skip[i] {
			out = append(out, g)
		}
	}
	return out
}
