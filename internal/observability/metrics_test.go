package observability

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestWorkflowTransitionsCounts(t *testing.T) {
	counter := WorkflowTransitions().WithLabelValues("approved", "awaiting_author")
	before := testutil.ToFloat64(counter)

	counter.Inc()

	require.Equal(t, before+1, testutil.ToFloat64(counter))
}

func TestRegistryGathersRuntimeAndWorkflowMetrics(t *testing.T) {
	WorkflowTransitions().WithLabelValues("created", "awaiting_processor").Inc()

	families, err := Registry().Gather()
	require.NoError(t, err)

	names := make(map[string]bool, len(families))
	for _, family := range families {
		names[family.GetName()] = true
	}
	require.True(t, names["qbank_workflow_transitions_total"])
	require.True(t, names["go_goroutines"])
}

func TestCorrelationIDRoundTrip(t *testing.T) {
	ctx := WithCorrelationID(context.Background(), "  req-1  ")
	require.Equal(t, "req-1", CorrelationIDFromContext(ctx))

	require.Equal(t, ctx, WithCorrelationID(ctx, " "))
	require.Empty(t, CorrelationIDFromContext(context.Background()))
}
