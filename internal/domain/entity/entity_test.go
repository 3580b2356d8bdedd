package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStatusRankAndTerminal(t *testing.T) {
	assert.Equal(t, 1, StatusReported.Rank())
	assert.Equal(t, 4, StatusClosed.Rank())
	assert.Equal(t, 0, Status("archived").Rank())
	assert.False(t, Status("archived").Valid())
	assert.True(t, StatusResolved.Terminal())
	assert.False(t, StatusInProgress.Terminal())
}

func TestForwardOnly(t *testing.T) {
	assert.True(t, ForwardOnly(StatusReported, StatusClosed))
	assert.True(t, ForwardOnly(StatusResolved, StatusResolved))
	assert.False(t, ForwardOnly(StatusClosed, StatusInProgress))
	assert.Equal(t, []Status{StatusReported, StatusInProgress}, TransitionRule(ForwardOnly).AllowedFrom(StatusInProgress))
	assert.Len(t, TransitionRule(AnyTransition).AllowedFrom(StatusReported), 4)
}

func TestStatusUpdateStampsResolvedDateOnce(t *testing.T) {
	c := &Complaint{Status: StatusInProgress, WorkOrderNumber: "WO-1"}
	first := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	second := first.Add(time.Hour)

	StatusUpdate{Status: StatusResolved, At: first}.Apply(c)
	StatusUpdate{Status: StatusClosed, WorkOrderNumber: "WO-2", At: second}.Apply(c)

	assert.Equal(t, StatusClosed, c.Status)
	assert.Equal(t, first, *c.ResolvedDate)
	assert.Equal(t, second, c.UpdatedAt)
	assert.Equal(t, "WO-2", c.WorkOrderNumber)
}

func TestStatusUpdateKeepsWorkOrderWhenAbsent(t *testing.T) {
	c := &Complaint{Status: StatusReported, WorkOrderNumber: "WO-1"}

	StatusUpdate{Status: StatusInProgress, At: time.Now()}.Apply(c)

	assert.Equal(t, "WO-1", c.WorkOrderNumber)
	assert.Nil(t, c.ResolvedDate)
}

func TestCloneIsDeep(t *testing.T) {
	at := time.Now()
	c := &Complaint{Media: []MediaAttachment{{Type: MediaImage, URI: "a"}}, ResolvedDate: &at}

	cp := c.Clone()
	cp.Media[0].URI = "b"
	*cp.ResolvedDate = at.Add(time.Hour)

	assert.Equal(t, "a", c.Media[0].URI)
	assert.Equal(t, at, *c.ResolvedDate)
}

func TestStatusCountsAdd(t *testing.T) {
	var sc StatusCounts
	sc.Add(StatusReported, 2)
	sc.Add(StatusClosed, 1)
	sc.Add(Status("legacy"), 1)

	assert.Equal(t, StatusCounts{Total: 4, Reported: 2, Closed: 1}, sc)
}
