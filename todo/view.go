package todo

// Filtered returns the tasks of list selected by f, in list order.
// The input is never modified. Unknown filters select every task.
func Filtered(list List, f Filter) List {
	out := make(List, 0, len(list))
	for _, t := range list {
		switch f {
		case FilterActive:
			if !t.Active() {
				continue
			}
		case FilterDone:
			if t.Active() {
				continue
			}
		}
		out = append(out, t)
	}
	return out
}

// ComputeStats counts the tasks in list. Active + Done always equals Total.
func ComputeStats(list List) Stats {
	s := Stats{Total: len(list)}
	for _, t := range list {
		if t.Active() {
			s.Active++
		}
	}
	s.Done = s.Total - s.Active
	return s
}
