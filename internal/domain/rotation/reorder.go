package rotation

// Move relocates the column at display index dragged so it takes the place of
// the column at display index target. A column belonging to a combined group
// carries the whole group, which stays contiguous in its current relative order.
// Moving right places the block after the target column, moving left before it.
// A grouped target column is never split by the move.
func (l Layout) Move(dragged, target int) Layout {
	n := l.Size()
	if dragged == target || dragged < 0 || target < 0 || dragged >= n || target >= n {
		return l
	}

	moving := []int{l.Order[dragged]}
	if gi := l.GroupOf(l.Order[dragged]); gi != -1 {
		moving = l.MembersByDisplay(gi)
	}
	movingSet := make(map[int]bool, len(moving))
	for _, idx := range moving {
		movingSet[idx] = true
	}

	targetOrig := l.Order[target]
	if movingSet[targetOrig] {
		return l
	}

	remaining := make(ColumnOrder, 0, n-len(moving))
	for _, orig := range l.Order {
		if !movingSet[orig] {
			remaining = append(remaining, orig)
		}
	}

	// a grouped target is one unit: land before its first member or after its last
	targetSet := map[int]bool{targetOrig: true}
	if gi := l.GroupOf(targetOrig); gi != -1 {
		for _, idx := range l.Groups[gi] {
			targetSet[idx] = true
		}
	}
	first, last := -1, -1
	for i, orig := range remaining {
		if targetSet[orig] {
			if first == -1 {
				first = i
			}
			last = i
		}
	}
	insertAt := first
	if target > dragged {
		insertAt = last + 1
	}

	out := l.clone()
	out.Order = make(ColumnOrder, 0, n)
	out.Order = append(out.Order, remaining[:insertAt]...)
	out.Order = append(out.Order, moving...)
	out.Order = append(out.Order, remaining[insertAt:]...)
	return out
}
