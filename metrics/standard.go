package metrics

// Pre-defined metrics for the rollup host. All metrics live in
// DefaultRegistry so they are globally accessible without passing a
// registry around.

var (
	// ---- L1 metrics ----

	// L1Height tracks the latest produced L1 block sqn.
	L1Height = DefaultRegistry.Gauge("l1.height", "latest produced L1 block sequence number")
	// L1BlockProcessTime records L1 block production duration in milliseconds.
	L1BlockProcessTime = DefaultRegistry.Histogram("l1.block_process_ms", "L1 block production duration in milliseconds", nil)
	// L1BlocksProduced counts L1 blocks successfully produced.
	L1BlocksProduced = DefaultRegistry.Counter("l1.blocks_produced", "L1 blocks successfully produced")
	// L1TxPoolPending tracks the number of pending L1 transactions.
	L1TxPoolPending = DefaultRegistry.Gauge("l1.txpool_pending", "pending L1 transactions")
	// L1TxRejected counts L1 blocks aborted because a pooled transaction
	// failed; it is incremented once per aborted block, not once per
	// transaction.
	L1TxRejected = DefaultRegistry.Counter("l1.tx_rejected", "L1 blocks aborted because a pooled transaction failed")

	// ---- L2 metrics ----

	// L2Height tracks the latest committed L2 block sqn.
	L2Height = DefaultRegistry.Gauge("l2.height", "latest committed L2 block sequence number")
	// L2TxPoolPending tracks the number of pending L2 transactions.
	L2TxPoolPending = DefaultRegistry.Gauge("l2.txpool_pending", "pending L2 transactions")
	// L2TxRejected counts L2 transactions rejected during block production.
	L2TxRejected = DefaultRegistry.Counter("l2.tx_rejected", "L2 transactions rejected during block production")

	// ---- Prover metrics ----

	// ProverInvocations counts Prove() calls.
	ProverInvocations = DefaultRegistry.Counter("prover.invocations", "prover invocations")
	// ProverFailures counts Prove() calls that returned an error.
	ProverFailures = DefaultRegistry.Counter("prover.failures", "prover invocations that failed")
	// ProverDuration records Prove() wall-clock duration in milliseconds.
	ProverDuration = DefaultRegistry.Histogram("prover.duration_ms", "prover call duration in milliseconds", nil)
	// ProverBusy is 1 while a proof is in flight, 0 otherwise.
	ProverBusy = DefaultRegistry.Gauge("prover.busy", "1 while a proof is in flight")

	// ---- Rollup settlement metrics ----

	// RollupUpdatesSettled counts RollupUpdate transactions the L2 node has
	// handed to L1; it is incremented on hand-off, before L1 processes them.
	RollupUpdatesSettled = DefaultRegistry.Counter("rollup.updates_settled", "RollupUpdate transactions handed from L2 to L1")
	// RollupUpdatesRejected counts L2 blocks whose proving failed, so that no
	// RollupUpdate was produced for them.
	RollupUpdatesRejected = DefaultRegistry.Counter("rollup.updates_rejected", "L2 blocks whose proving failed")
	// WithdrawalsSettled counts individual withdrawal records settled on L1.
	WithdrawalsSettled = DefaultRegistry.Counter("rollup.withdrawals_settled", "withdrawal records settled on L1")
)
