package appstate

import (
	"context"

	"github.com/decodeproject/decode/internal/model"
)

// FetchStats performs the stats call and converts its outcome into the
// matching SUCCESS or FAILURE action. Errors never escape.
func FetchStats(ctx context.Context, client model.StatsClient) Action {
	stats, err := client.GetStats(ctx)
	if err != nil {
		return RefreshStatsFailure(err)
	}
	return RefreshStatsSuccess(stats.Total)
}

// RefreshStats dispatches REQUEST, waits for the stats client and dispatches
// SUCCESS or FAILURE. Concurrent calls are not coordinated: whichever result
// is dispatched last wins.
func RefreshStats(ctx context.Context, client model.StatsClient, dispatch DispatchFunc) {
	dispatch(RefreshStatsRequest())
	dispatch(FetchStats(ctx, client))
}
