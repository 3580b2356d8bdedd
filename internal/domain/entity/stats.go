package entity

// StatusCounts mirrors the overall block of the statistics response.
type StatusCounts struct {
	Total      int64 `json:"total"`
	Reported   int64 `json:"reported"`
	InProgress int64 `json:"inProgress"`
	Resolved   int64 `json:"resolved"`
	Closed     int64 `json:"closed"`
}

// Add counts n complaints in status s.
func (sc *StatusCounts) Add(s Status, n int64) {
	sc.Total += n
	switch s {
	case StatusReported:
		sc.Reported += n
	case StatusInProgress:
		sc.InProgress += n
	case StatusResolved:
		sc.Resolved += n
	case StatusClosed:
		sc.Closed += n
	}
}

type CategoryCount struct {
	Category Category `json:"_id"`
	Count    int64    `json:"count"`
}

type ComplaintStats struct {
	Overall    StatusCounts    `json:"overall"`
	ByCategory []CategoryCount `json:"byCategory"`
}
