package bnn

import (
	"math"

	. "github.com/gomlx/gomlx/graph"
	"github.com/gomlx/gomlx/ml/context"
	"github.com/gomlx/gomlx/ml/context/initializers"
	"github.com/gomlx/gomlx/ml/layers/regularizers"
	"github.com/gomlx/gomlx/types/shapes"
)

// LinearConfig is a helper to build a stochastic linear layer. Create it with
// Linear, set the desired parameters and call Done.
type LinearConfig struct {
	ctx             *context.Context
	x               *Node
	outputDim       int
	initialLogScale float64
	regularizer     regularizers.Regularizer
	newScope        bool
}

// Linear adds a stochastic affine layer, the Bayesian counterpart of a dense
// layer: it learns a normal distribution per weight and per bias -- mean and
// log-scale variables -- and on every application samples one fresh weight
// matrix and bias vector from them with the reparameterization trick, before
// computing `x · Wᵀ + b`. Two applications of the same layer therefore give
// different outputs, and the spread of the outputs reflects the learned
// parameter uncertainty.
//
// If the input has shape `[<batch dimensions...>, inputDim]`, the output will
// have shape `[<batch dimensions...>, outputDim]`.
//
// The weight means are initialized with a Kaiming-normal scheme (variance
// 2/inputDim, tuned for ReLU-family activations), the bias means with zeros,
// and all log-scales with a constant (see DefaultInitialLogScale), so a fresh
// layer behaves almost exactly like a deterministic dense layer.
//
// It returns a LinearConfig for further configuration. Once set up, call
// LinearConfig.Done and it will return the sampled affine transform of x.
func Linear(ctx *context.Context, x *Node, outputDim int) *LinearConfig {
	if x.Rank() < 1 {
		panicf(ErrInvalidDimension, "bnn: input for Linear needs a feature axis (rank >= 1), got shape %s", x.Shape())
	}
	if x.Shape().Dim(-1) <= 0 {
		panicf(ErrInvalidDimension, "bnn: input for Linear has an empty feature axis, got shape %s", x.Shape())
	}
	if outputDim <= 0 {
		panicf(ErrInvalidDimension, "bnn: outputDim for Linear must be positive, got %d", outputDim)
	}
	return &LinearConfig{
		ctx:             ctx,
		x:               x,
		outputDim:       outputDim,
		initialLogScale: context.GetParamOr(ctx, ParamInitialLogScale, DefaultInitialLogScale),
		regularizer:     regularizers.FromContext(ctx),
		newScope:        true,
	}
}

// InitialLogScale sets the value the log-scale variables are initialized
// with. Lower values make a fresh layer more deterministic.
//
// The default is DefaultInitialLogScale (-5), and it can also be set with the
// hyperparameter ParamInitialLogScale in the context.
func (c *LinearConfig) InitialLogScale(value float64) *LinearConfig {
	c.initialLogScale = value
	return c
}

// Regularizer to be applied to the weight means -- not to the biases and not
// to the log-scales.
//
// The default is regularizers.FromContext, which is configured by
// regularizers.ParamL1 and regularizers.ParamL2.
func (c *LinearConfig) Regularizer(regularizer regularizers.Regularizer) *LinearConfig {
	c.regularizer = regularizer
	return c
}

// CurrentScope configures the layer to create its variables in the scope
// given in Linear, instead of creating a "stochastic_linear" sub-scope.
func (c *LinearConfig) CurrentScope() *LinearConfig {
	c.newScope = false
	return c
}

// Done adds the layer's computation to the graph and returns the sampled
// affine transform of the input. Each call draws new weights and biases.
func (c *LinearConfig) Done() *Node {
	ctx := c.ctx
	if c.newScope {
		ctx = ctx.In("stochastic_linear")
	}
	x := c.x
	g := x.Graph()
	dtype := x.DType()
	inputDim := x.Shape().Dim(-1)

	weights := c.newDistribution(ctx, "weights", shapes.Make(dtype, c.outputDim, inputDim),
		kaimingInitializer(ctx, inputDim))
	if c.regularizer != nil {
		c.regularizer(ctx, g, weights.Mean)
	}
	bias := c.newDistribution(ctx, "bias", shapes.Make(dtype, c.outputDim),
		initializers.Zero)

	// x · Wᵀ: contract the input's feature axis with the weights' inputDim axis.
	output := DotGeneral(x, []int{-1}, nil, weights.SampleGraph(ctx, g), []int{-1}, nil)

	// The sampled bias is shaped [outputDim]: expand with leading 1-dims to add.
	sampledBias := bias.SampleGraph(ctx, g)
	expandedShape := output.Shape().Clone()
	for ii := range expandedShape.Dimensions[:output.Rank()-1] {
		expandedShape.Dimensions[ii] = 1
	}
	return Add(output, ReshapeWithShape(sampledBias, expandedShape))
}

// newDistribution creates the mean/log-scale variable pair for one tensor of
// parameters. Log-scales always start at the configured constant.
func (c *LinearConfig) newDistribution(ctx *context.Context, name string, shape shapes.Shape, meanInit context.VariableInitializer) Distribution {
	meanVar := ctx.WithInitializer(meanInit).VariableWithShape(name+meanSuffix, shape)
	logScaleVar := ctx.WithInitializer(constantInitializer(c.initialLogScale)).
		VariableWithShape(name+logScaleSuffix, shape)
	return Distribution{Name: name, Scope: meanVar.Scope(), Mean: meanVar, LogScale: logScaleVar}
}

// kaimingInitializer returns an initializer drawing from N(0, 2/fanIn), the
// variance-preserving choice for ReLU-family activations
// (https://arxiv.org/abs/1502.01852). It uses the context's random state.
func kaimingInitializer(ctx *context.Context, fanIn int) context.VariableInitializer {
	stddev := math.Sqrt(2.0 / float64(max(1, fanIn)))
	return func(g *Graph, shape shapes.Shape) *Node {
		return MulScalar(ctx.RandomNormal(g, shape), stddev)
	}
}

// constantInitializer returns an initializer filling the variable with value.
func constantInitializer(value float64) context.VariableInitializer {
	return func(g *Graph, shape shapes.Shape) *Node {
		return MulScalar(Ones(g, shape), value)
	}
}
