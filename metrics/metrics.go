// Package metrics contains all application-logic metrics
package metrics

import "github.com/VictoriaMetrics/metrics"

var (
	roundsStarted      = metrics.NewCounter("mining_rounds_started_total")
	roundsFailed       = metrics.NewCounter("mining_rounds_failed_total")
	solutionsFound     = metrics.NewCounter("mining_solutions_found_total")
	transactionsSent   = metrics.NewCounter("transactions_sent_total")
	bundlesSubmitted   = metrics.NewCounter("bundles_submitted_total")
	bundlesLanded      = metrics.NewCounter("bundles_landed_total")
	accountsRegistered = metrics.NewCounter("proof_accounts_registered_total")
)

func IncRoundsStarted() {
	roundsStarted.Inc()
}

func IncRoundsFailed() {
	roundsFailed.Inc()
}

func IncSolutionsFound() {
	solutionsFound.Inc()
}

func IncTransactionsSent() {
	transactionsSent.Inc()
}

func IncBundlesSubmitted() {
	bundlesSubmitted.Inc()
}

func IncBundlesLanded() {
	bundlesLanded.Inc()
}

func IncAccountsRegistered() {
	accountsRegistered.Inc()
}
