package grammar

// Quota is the run-wide subquery budget.
//
// Unlike a per-branch depth counter, the quota is shared by every
// statement a session generates. Reaching the limit is not an error: it
// only removes the recursive table reference variants from selection.
type Quota struct {
	limit int
	used  int
}

// NewQuota creates a budget of limit subqueries.
func NewQuota(limit int) *Quota {
	if limit < 0 {
		limit = 0
	}
	return &Quota{limit: limit}
}

// TryAcquire consumes one unit of budget. Returns false, consuming
// nothing, when the budget is exhausted.
func (q *Quota) TryAcquire() bool {
	if q.used >= q.limit {
		return false
	}
	q.used++
	return true
}

// Exhausted reports whether no budget remains.
func (q *Quota) Exhausted() bool {
	return q.used >= q.limit
}

// Remaining returns the fraction of budget left, in [0, 1].
func (q *Quota) Remaining() float64 {
	if q.limit == 0 {
		return 0
	}
	return float64(q.limit-q.used) / float64(q.limit)
}

// Used returns the number of subqueries generated so far.
func (q *Quota) Used() int {
	return q.used
}

// Limit returns the configured budget.
func (q *Quota) Limit() int {
	return q.limit
}
