// Package bnn implements Bayesian (variational) neural network layers for GoMLX.
//
// Instead of point estimates, the layers in this package keep one learned normal
// distribution per weight and per bias: a mean and a log-scale variable each.
// On every application a fresh set of weights is drawn with the
// reparameterization trick -- sample = mean + exp(log_scale) * noise -- so the
// draw stays differentiable with respect to both distribution parameters and
// the layers can be trained with any of the regular GoMLX optimizers.
//
// The building blocks are:
//
//   - Linear: a stochastic affine layer, the Bayesian counterpart of
//     layers.Dense.
//   - FeedForward: two stochastic linear layers with a ReLU in between.
//   - MLP: a stochastic multi-layer perceptron of arbitrary depth, with
//     optional batch normalization and dropout between the layers.
//   - EnumerateDistributions: access to the mean/log-scale variable pairs, for
//     optimizer registration or harness-side regularization terms (e.g. a KL
//     divergence penalty).
//
// E.g.: a Bayesian regression model with two hidden layers of 32 nodes:
//
//	func MyModel(ctx *context.Context, spec any, inputs []*Node) []*Node {
//		x := inputs[0] // shape [batchSize, 1]
//		pred := bnn.MLP(ctx.In("model"), x, 1, 32, 32, 1).
//			Normalization("batch").
//			Dropout(0.2).
//			Done()
//		return []*Node{pred}
//	}
//
// Log-scales start at -5 (standard deviation exp(-5) ~ 0.0067), so freshly
// initialized layers behave almost deterministically, and uncertainty only
// grows as training pushes the log-scales up. All noise comes from the
// context's random number generator state, so models are reproducible after
// Context.RngStateFromSeed.
package bnn

const (
	// ParamActivation context hyperparameter defines the activation MLP uses in
	// between layers. See activations.Apply for valid values.
	// The default is "relu".
	ParamActivation = "bnn_activation"

	// ParamNormalization context hyperparameter defines the normalization MLP
	// applies after each intermediate layer. Valid values are "none" (or "")
	// and "batch".
	// The default is "none".
	ParamNormalization = "bnn_normalization"

	// ParamDropoutRate context hyperparameter defines the dropout rate MLP
	// applies after each intermediate activation. Should be a float64 in
	// [0.0, 1.0), where 0 means no dropout.
	// The default is 0.0.
	ParamDropoutRate = "bnn_dropout_rate"

	// ParamInitialLogScale context hyperparameter defines the initial value of
	// the log-scale variables of new stochastic layers. The value should be a
	// float64.
	// The default is DefaultInitialLogScale.
	ParamInitialLogScale = "bnn_initial_log_scale"
)

// DefaultInitialLogScale is the initial value of every log-scale variable:
// the corresponding standard deviation exp(-5) makes a freshly initialized
// layer near-deterministic.
const DefaultInitialLogScale = -5.0
