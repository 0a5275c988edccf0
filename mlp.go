package bnn

import (
	"slices"

	. "github.com/gomlx/gomlx/graph"
	"github.com/gomlx/gomlx/ml/context"
	"github.com/gomlx/gomlx/ml/layers"
	"github.com/gomlx/gomlx/ml/layers/activations"
	"github.com/gomlx/gomlx/ml/layers/batchnorm"
	"github.com/gomlx/gomlx/ml/layers/regularizers"
)

// MLPConfig is a helper to build a stochastic multi-layer perceptron. Create
// it with MLP, set the desired parameters and call Done.
type MLPConfig struct {
	ctx           *context.Context
	x             *Node
	featureSizes  []int
	activation    string
	normalization string
	dropoutRate   float64
	regularizer   regularizers.Regularizer
}

// MLP adds a stochastic multi-layer perceptron: one stochastic linear layer
// (see Linear) per consecutive pair of featureSizes, with the activation --
// and optionally batch normalization and dropout -- in between. The last
// layer is bare: no normalization, no activation, no dropout after it.
//
// featureSizes lists the width of every boundary of the network, input and
// output included, so `MLP(ctx, x, 4, 8, 2)` builds two layers, 4→8 and 8→2.
// At least 3 sizes (2 layers) are required, and the input's trailing
// dimension must match featureSizes[0].
//
// The default configuration uses ReLU activations and nothing else; for the
// regularized flavor, configure e.g. `.Normalization("batch").Dropout(0.2)`.
//
// It returns an MLPConfig for further configuration. Once set up, call
// MLPConfig.Done and it will return the network's output, shaped
// `[<batch dimensions...>, featureSizes[last]]`.
func MLP(ctx *context.Context, x *Node, featureSizes ...int) *MLPConfig {
	if len(featureSizes) < 3 {
		// Known quirk, kept for compatibility: the enforced minimum is three
		// sizes (two layers), one more than the message suggests.
		panicf(ErrConfiguration, "bnn: at least need two values to create an mlp, got %d feature sizes %v",
			len(featureSizes), featureSizes)
	}
	for _, size := range featureSizes {
		if size <= 0 {
			panicf(ErrInvalidDimension, "bnn: feature sizes for MLP must be positive, got %v", featureSizes)
		}
	}
	return &MLPConfig{
		ctx:           ctx,
		x:             x,
		featureSizes:  featureSizes,
		activation:    context.GetParamOr(ctx, ParamActivation, "relu"),
		normalization: context.GetParamOr(ctx, ParamNormalization, "none"),
		dropoutRate:   context.GetParamOr(ctx, ParamDropoutRate, 0.0),
		regularizer:   regularizers.FromContext(ctx),
	}
}

// Activation sets the activation applied after each intermediate layer. The
// output layer doesn't get an activation. See activations.FromName for valid
// values; "" or "none" disable it.
//
// The default is "relu", and it can also be set with the hyperparameter
// ParamActivation in the context.
func (c *MLPConfig) Activation(activation string) *MLPConfig {
	c.activation = activation
	return c
}

// Normalization sets the normalization applied after each intermediate
// layer, before its activation. Valid values are "batch" for batch
// normalization, or "" / "none" to disable it. The output layer is never
// normalized.
//
// Batch normalization during training normalizes over the batch, so it needs
// batches with more than one example -- Done throws ErrBatchSize otherwise.
//
// The default is "none", and it can also be set with the hyperparameter
// ParamNormalization in the context.
func (c *MLPConfig) Normalization(normalization string) *MLPConfig {
	if slices.Index([]string{"", "none", "batch"}, normalization) == -1 {
		panicf(ErrConfiguration, "bnn: invalid normalization %q given: valid values are \"batch\", \"\" or \"none\"",
			normalization)
	}
	c.normalization = normalization
	return c
}

// Dropout sets the dropout rate applied after each intermediate activation,
// during training only. The output layer doesn't get dropout. Set to 0.0 to
// disable it.
//
// The default is 0.0, and it can also be set with the hyperparameter
// ParamDropoutRate in the context.
func (c *MLPConfig) Dropout(rate float64) *MLPConfig {
	if rate < 0 || rate >= 1.0 {
		panicf(ErrConfiguration, "bnn: invalid dropout rate %g -- set to 0.0 to disable it, and it must be < 1.0 otherwise everything is dropped out",
			rate)
	}
	c.dropoutRate = rate
	return c
}

// Regularizer to be applied to the weight means of every layer. See
// LinearConfig.Regularizer.
func (c *MLPConfig) Regularizer(regularizer regularizers.Regularizer) *MLPConfig {
	c.regularizer = regularizer
	return c
}

// Done adds the network's computation to the graph and returns its output.
func (c *MLPConfig) Done() *Node {
	ctx := c.ctx
	x := c.x
	g := x.Graph()
	if x.Rank() < 1 {
		panicf(ErrInvalidDimension, "bnn: input for MLP needs a feature axis (rank >= 1), got shape %s", x.Shape())
	}
	if x.Shape().Dim(-1) != c.featureSizes[0] {
		panicf(ErrDimensionMismatch, "bnn: input trailing dimension must match the first feature size (%d), got shape %s",
			c.featureSizes[0], x.Shape())
	}

	useBatchNorm := c.normalization == "batch"
	if useBatchNorm && ctx.IsTraining(g) {
		// Batch normalization over a single example has nothing to normalize
		// with: its batch variance is identically zero.
		if batch := x.Shape().Size() / x.Shape().Dim(-1); batch <= 1 {
			panicf(ErrBatchSize, "bnn: batch normalization during training requires a batch larger than 1, got input shape %s",
				x.Shape())
		}
	}
	activation := activations.FromName(c.activation)

	numLayers := len(c.featureSizes) - 1
	for ii := 0; ii < numLayers; ii++ {
		layerCtx := ctx.Inf("layer_%d", ii)
		x = Linear(layerCtx, x, c.featureSizes[ii+1]).
			Regularizer(c.regularizer).
			Done()
		if ii == numLayers-1 {
			// The output layer is a bare stochastic linear layer.
			break
		}
		if useBatchNorm {
			x = batchnorm.New(layerCtx, x, -1).Done()
		}
		x = activations.Apply(activation, x)
		if c.dropoutRate > 0 {
			x = layers.DropoutStatic(layerCtx, x, c.dropoutRate)
		}
	}
	return x
}
