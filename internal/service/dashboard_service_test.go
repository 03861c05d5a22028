package service

import (
	"testing"

	"go-carwash-pullout/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDashboardReflectsWorkflow(t *testing.T) {
	f := newPulloutFixture(t)
	dash := NewDashboardService(repository.NewMovementRepo(f.db))

	pending := f.create(t, PulloutLineInput{SupplyID: 2, Quantity: 1})
	approved := f.create(t, PulloutLineInput{SupplyID: 1, Quantity: 3}, PulloutLineInput{SupplyID: 2, Quantity: 4})
	_, err := f.svc.Approve(approved.ID, "Maria Santos", manager)
	require.NoError(t, err)

	stats, err := dash.GetDashboardStats()
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.TotalSupplies)
	assert.Equal(t, int64(1), stats.LowStockCount) // shampoo at 1, reorder level 2
	assert.Equal(t, int64(1), stats.PendingPullouts)
	assert.Equal(t, int64(1), stats.UnreturnedItems)

	_, err = f.svc.ReturnLine(approved.Details[0].ID, "Pedro Reyes", manager)
	require.NoError(t, err)
	_, err = f.svc.Reject(pending.ID, manager)
	require.NoError(t, err)

	stats, err = dash.GetDashboardStats()
	require.NoError(t, err)
	assert.Zero(t, stats.PendingPullouts)
	assert.Zero(t, stats.UnreturnedItems)

	data, err := dash.GetStockMovement(7)
	require.NoError(t, err)
	require.Len(t, data, 1)
	assert.True(t, data[0].Outbound.Equal(decimal.NewFromInt(7)), "outbound %s", data[0].Outbound)
	assert.True(t, data[0].Inbound.Equal(decimal.NewFromInt(3)), "inbound %s", data[0].Inbound)
	assert.NotEmpty(t, data[0].Date)
}
