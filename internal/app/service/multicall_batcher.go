package service

import (
	"context"
	"fmt"
	"strconv"

	"market_aggregator/internal/app/port"
	"market_aggregator/internal/domain/entity"
	"market_aggregator/internal/pkg/metrics"
	"market_aggregator/internal/pkg/retry"
)

// DefaultBatchSize is the maximum number of logical items per multicall batch.
const DefaultBatchSize = 20

// MulticallBatcher runs multicalls under a retry policy.
type MulticallBatcher struct {
	policy retry.Policy
	logger port.Logger
}

// NewMulticallBatcher creates a batcher. A zero policy falls back to retry.DefaultPolicy.
func NewMulticallBatcher(policy retry.Policy, l port.Logger) *MulticallBatcher {
	if policy.MaxAttempts <= 0 {
		policy = retry.DefaultPolicy
	}
	return &MulticallBatcher{policy: policy, logger: l}
}

// Policy returns the retry policy used for every batch.
func (b *MulticallBatcher) Policy() retry.Policy {
	return b.policy
}

// Execute submits calls as one multicall. The first successful attempt wins;
// a response whose length differs from len(calls) counts as a failed attempt.
func (b *MulticallBatcher) Execute(ctx context.Context, mc port.Multicaller, calls []entity.ContractCall) ([]entity.CallResult, error) {
	if len(calls) == 0 {
		return []entity.CallResult{}, nil
	}
	label := chainLabel(mc)

	results, err := retry.Do(ctx, b.policy, func(ctx context.Context) ([]entity.CallResult, error) {
		res, err := mc.Aggregate(ctx, calls)
		if err != nil {
			return nil, err
		}
		if len(res) != len(calls) {
			return nil, fmt.Errorf("%w: got %d results for %d calls", entity.ErrIncompleteResponse, len(res), len(calls))
		}
		return res, nil
	}, func(attempt int, err error) {
		metrics.MulticallRetries.WithLabelValues(label).Inc()
		b.logger.Warn("Multicall attempt failed, retrying",
			"chain_id", label, "attempt", attempt, "max_attempts", b.policy.MaxAttempts, "error", err)
	})
	metrics.MulticallBatches.WithLabelValues(label, metrics.Result(err)).Inc()
	if err != nil {
		return nil, fmt.Errorf("multicall failed after %d attempts: %w", b.policy.MaxAttempts, err)
	}
	return results, nil
}

func chainLabel(mc port.Multicaller) string {
	if c, ok := mc.(interface{ ChainID() uint64 }); ok {
		return strconv.FormatUint(c.ChainID(), 10)
	}
	return "unknown"
}
