package bnn

import (
	"sort"
	"testing"

	. "github.com/gomlx/gomlx/graph"
	"github.com/gomlx/gomlx/graph/graphtest"
	"github.com/gomlx/gomlx/ml/context"
	"github.com/gomlx/gomlx/types/shapes"
	"github.com/gomlx/gomlx/types/tensors"
	"github.com/gomlx/gopjrt/dtypes"
	"github.com/stretchr/testify/require"

	_ "github.com/gomlx/gomlx/backends/default"
)

func TestEnumerateDistributions(t *testing.T) {
	backend := graphtest.BuildTestBackend()
	ctx := context.New()
	ctx.RngStateFromSeed(42)
	_ = context.ExecOnce(backend, ctx, func(ctx *context.Context, g *Graph) *Node {
		x := Ones(g, shapes.Make(dtypes.Float32, 5, 4))
		return MLP(ctx.In("model"), x, 4, 8, 2).Done()
	})

	// 2 layers, each with a weights and a bias distribution.
	var got []string
	EnumerateDistributions(ctx.In("model"), func(dist Distribution) {
		require.NotNil(t, dist.Mean)
		require.NotNil(t, dist.LogScale)
		require.True(t, dist.Mean.Shape().Equal(dist.LogScale.Shape()),
			"mean and log-scale of %q must have the same shape", dist.Name)
		got = append(got, dist.Scope+"/"+dist.Name)
	})
	sort.Strings(got)
	require.Equal(t, []string{
		"/model/layer_0/stochastic_linear/bias",
		"/model/layer_0/stochastic_linear/weights",
		"/model/layer_1/stochastic_linear/bias",
		"/model/layer_1/stochastic_linear/weights",
	}, got)

	// Scoping: a sibling scope holds no distributions.
	count := 0
	EnumerateDistributions(ctx.In("elsewhere"), func(dist Distribution) { count++ })
	require.Zero(t, count)
}

// TestDistributionSampleGraph checks the reparameterized sampler: samples
// concentrate around the means, with spread following exp(log_scale).
func TestDistributionSampleGraph(t *testing.T) {
	backend := graphtest.BuildTestBackend()
	ctx := context.New()
	ctx.RngStateFromSeed(42)
	_ = context.ExecOnce(backend, ctx, func(ctx *context.Context, g *Graph) *Node {
		x := Ones(g, shapes.Make(dtypes.Float32, 1, 16))
		return Linear(ctx, x, 16).Done()
	})

	var weights Distribution
	EnumerateDistributions(ctx, func(dist Distribution) {
		if dist.Name == "weights" {
			weights = dist
		}
	})
	require.NotNil(t, weights.Mean)

	maxAbsErr := context.ExecOnce(backend, ctx.Reuse(), func(ctx *context.Context, g *Graph) *Node {
		sample := weights.SampleGraph(ctx, g)
		// At the initial log-scale the standard deviation is exp(-5) ~ 0.0067,
		// so every sample stays within a few hundredths of its mean.
		return ReduceAllMax(Abs(Sub(sample, weights.Mean.ValueGraph(g))))
	})
	err := tensors.ToScalar[float32](maxAbsErr)
	require.Greater(t, err, float32(0))
	require.Less(t, err, float32(0.05))
}
