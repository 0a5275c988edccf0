package bnn

import (
	. "github.com/gomlx/gomlx/graph"
	"github.com/gomlx/gomlx/ml/context"
	"github.com/gomlx/gomlx/ml/layers/activations"
)

// FeedForward adds a fixed two-layer stochastic network: a stochastic linear
// layer to hiddenDim nodes, a ReLU, and a stochastic linear layer to
// outputDim nodes. No normalization and no dropout -- see MLP for the
// configurable, arbitrary-depth version.
//
// If the input has shape `[<batch dimensions...>, inputDim]`, the output will
// have shape `[<batch dimensions...>, outputDim]`. Like Linear, every
// application samples fresh weights, so repeated calls with the same input
// give different outputs.
func FeedForward(ctx *context.Context, x *Node, hiddenDim, outputDim int) *Node {
	if hiddenDim <= 0 || outputDim <= 0 {
		panicf(ErrInvalidDimension, "bnn: FeedForward dimensions must be positive, got hiddenDim=%d, outputDim=%d",
			hiddenDim, outputDim)
	}
	hidden := activations.Relu(Linear(ctx.In("layer_0"), x, hiddenDim).Done())
	return Linear(ctx.In("layer_1"), hidden, outputDim).Done()
}
