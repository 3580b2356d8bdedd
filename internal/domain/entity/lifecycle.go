package entity

// TransitionRule decides whether a complaint in from may be moved to to.
type TransitionRule func(from, to Status) bool

// ForwardOnly accepts same-state writes and forward moves, including skips such as
// reported -> closed, and rejects every backwards move.
func ForwardOnly(from, to Status) bool {
	return to.Rank() >= from.Rank()
}

// AnyTransition accepts every write of a valid status.
func AnyTransition(from, to Status) bool {
	return true
}

// AllowedFrom lists the statuses from which rule permits moving to to.
func (rule TransitionRule) AllowedFrom(to Status) []Status {
	var from []Status
	for _, s := range Statuses {
		if rule(s, to) {
			from = append(from, s)
		}
	}
	return from
}
