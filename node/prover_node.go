package node

import (
	"context"
	"time"

	"github.com/pwang200/payment-rollup/engine"
	"github.com/pwang200/payment-rollup/log"
	"github.com/pwang200/payment-rollup/metrics"
	"github.com/pwang200/payment-rollup/prover"
)

// ProverNode is the single-threaded task wrapping a Prover. It owns the
// canonical L2 engine.Data -- account book, sqn, and parent persist here
// across every block -- and accepts one job at a time over a capacity-1
// channel, folding the job's batch into that state before proving. The
// channel capacity itself is the backpressure mechanism that rejects
// concurrent invocations; L2Node never sees this Data directly.
type ProverNode struct {
	prv    prover.Prover
	data   *engine.Data
	jobs   chan ProveJob
	logger *log.Logger
}

// NewProverNode returns a ProverNode backed by prv, folding jobs into data,
// with a job queue of ProverChannelCapacity.
func NewProverNode(prv prover.Prover, data *engine.Data) *ProverNode {
	return &ProverNode{
		prv:    prv,
		data:   data,
		jobs:   make(chan ProveJob, ProverChannelCapacity),
		logger: log.Default().Node("prover"),
	}
}

// Name implements Service.
func (p *ProverNode) Name() string { return "prover" }

// Jobs returns the channel L2Node submits ProveJob values on.
func (p *ProverNode) Jobs() chan<- ProveJob { return p.jobs }

// Run implements Service: it loops accepting one job at a time until ctx
// is cancelled.
func (p *ProverNode) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case job := <-p.jobs:
			for _, tx := range job.Txns {
				p.data.Enqueue(tx)
			}
			metrics.ProverInvocations.Inc()
			metrics.ProverBusy.Set(1)
			start := time.Now()
			receipt, err := p.prv.Prove(ctx, p.data)
			metrics.ProverDuration.Observe(float64(time.Since(start).Milliseconds()))
			metrics.ProverBusy.Set(0)
			if err != nil {
				metrics.ProverFailures.Inc()
				p.logger.Warn("prove failed", "err", err)
			}
			select {
			case job.Reply <- ProveResult{Receipt: receipt, Err: err}:
			case <-ctx.Done():
				return nil
			}
		}
	}
}
