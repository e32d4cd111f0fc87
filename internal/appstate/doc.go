// Package appstate holds the app's client-side state slice: the onboarding
// flag, the per-screen tooltip walkthrough and the polled issuance
// statistic.
//
// State is only ever changed by Reducer.Reduce, reached through a Store.
// RefreshStats is the one asynchronous operation; it brackets a
// model.StatsClient call with REFRESH_STATS_REQUEST and a
// REFRESH_STATS_SUCCESS or REFRESH_STATS_FAILURE action.
package appstate
