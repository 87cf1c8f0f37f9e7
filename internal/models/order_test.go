package models

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyStatus(t *testing.T) {
	assert.Equal(t, EventAccepted, ClassifyStatus("Accepted"))
	assert.Equal(t, EventPrepared, ClassifyStatus("Preparing"))
	assert.Equal(t, EventPickedUp, ClassifyStatus("Out for Delivery"))
	assert.Equal(t, EventDelivered, ClassifyStatus("Delivered"))

	assert.Equal(t, EventNone, ClassifyStatus("Billed"))
	assert.Equal(t, EventNone, ClassifyStatus("delivered"))
	assert.Equal(t, EventNone, ClassifyStatus("Waiting on rider"))
}

func TestStatusChangeApplyTo(t *testing.T) {
	created := time.Date(2026, 1, 2, 10, 0, 0, 0, time.UTC)
	order := &Order{
		OrderStatus:   OrderStatusCreated,
		OrderProgress: ProgressLog{{Status: "Created", Timestamp: created, Remark: "Order initiated"}},
	}

	at := created.Add(time.Hour)
	NewStatusChange("Delivered", "handed to customer", at).ApplyTo(order)

	assert.Equal(t, OrderStatusDelivered, order.OrderStatus)
	require.Len(t, order.OrderProgress, 2)
	assert.Equal(t, "Created", order.OrderProgress[0].Status)
	assert.Equal(t, created, order.OrderProgress[0].Timestamp)
	assert.Equal(t, "handed to customer", order.OrderProgress[1].Remark)
	assert.True(t, order.DeliveredAt.Valid)
	assert.Equal(t, at, order.DeliveredAt.Time)
	assert.False(t, order.AcceptedAt.Valid)
}

func TestStatusChangePassthroughStampsNothing(t *testing.T) {
	order := &Order{}
	NewStatusChange("Ready for Pickup", "", time.Now()).ApplyTo(order)

	assert.Equal(t, OrderStatus("Ready for Pickup"), order.OrderStatus)
	assert.False(t, order.OrderStatus.IsKnown())
	assert.Equal(t, OrderTimestamps{}, order.OrderTimestamps)
	assert.Len(t, order.OrderProgress, 1)
}

func TestRefundSummaryPatchApply(t *testing.T) {
	total := decimal.NewFromInt(500)
	rotten := 3

	s := RefundSummaryPatch{TotalRefund: &total}.Apply(RefundSummary{})
	s = RefundSummaryPatch{RottenItemCount: &rotten}.Apply(s)

	assert.True(t, s.TotalRefund.Equal(decimal.NewFromInt(500)))
	assert.Equal(t, 3, s.RottenItemCount)
	assert.Equal(t, 0, s.DamagedItemCount)
	assert.True(t, s.PostDeliveryRefunds.IsZero())
}

func TestRefundSummaryPatchValidate(t *testing.T) {
	neg := -1
	assert.Error(t, RefundSummaryPatch{DamagedItemCount: &neg}.Validate())

	amount := decimal.NewFromInt(-5)
	assert.Error(t, RefundSummaryPatch{TotalRefund: &amount}.Validate())

	assert.True(t, RefundSummaryPatch{}.IsEmpty())
	assert.NoError(t, RefundSummaryPatch{}.Validate())
}

func TestRefundSummaryPatchJSONOmitsUnset(t *testing.T) {
	total := decimal.NewFromInt(500)
	b, err := json.Marshal(RefundSummaryPatch{TotalRefund: &total})
	require.NoError(t, err)
	assert.JSONEq(t, `{"totalRefund":"500"}`, string(b))
}

func TestProgressLogScan(t *testing.T) {
	var log ProgressLog
	require.NoError(t, log.Scan([]byte(`[{"status":"Created","timestamp":"2026-01-02T10:00:00Z","remark":"Order initiated"}]`)))
	require.Len(t, log, 1)
	assert.Equal(t, "Created", log[0].Status)

	var empty ProgressLog
	require.NoError(t, empty.Scan(nil))
	assert.Empty(t, empty)
}

func TestNilLogsEncodeAsEmptyArrays(t *testing.T) {
	v, err := CommentLog(nil).Value()
	require.NoError(t, err)
	assert.Equal(t, []byte("[]"), v)
}

func TestIsIssueTag(t *testing.T) {
	assert.True(t, IsIssueTag(IssueDamagedItem))
	assert.False(t, IsIssueTag("Late"))
}

func TestNewPagination(t *testing.T) {
	p := NewPagination(0, 0)
	assert.Equal(t, Pagination{Page: 1, Limit: 10}, p)
	assert.Equal(t, 0, p.Offset())

	p = NewPagination(3, 500)
	assert.Equal(t, MaxLimit, p.Limit)
	assert.Equal(t, 200, p.Offset())
}

func TestPaginationHugePageNeverGoesNegative(t *testing.T) {
	p := NewPagination(math.MaxInt64, 10)
	assert.Equal(t, MaxPage, p.Page)
	assert.Equal(t, (MaxPage-1)*10, p.Offset())

	raw := Pagination{Page: math.MaxInt64, Limit: MaxLimit}
	assert.GreaterOrEqual(t, raw.Offset(), 0)
}
