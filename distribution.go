package bnn

import (
	"strings"

	. "github.com/gomlx/gomlx/graph"
	"github.com/gomlx/gomlx/ml/context"
)

// Suffixes of the variable pairs that make up a learned distribution.
const (
	meanSuffix     = "_mean"
	logScaleSuffix = "_log_scale"
)

// Distribution is one learned normal distribution over a tensor of parameters:
// a pair of equally shaped variables holding the means and the log-scales.
// The actual standard deviation is exp(log-scale), which is positive for any
// log-scale value, so no constrained optimization is needed.
type Distribution struct {
	// Name of the distribution, the base name of its variables -- e.g.
	// "weights" for the variable pair "weights_mean"/"weights_log_scale".
	Name string

	// Scope of the variables in the context.
	Scope string

	// Mean and LogScale are the learnable variables.
	Mean, LogScale *context.Variable
}

// SampleGraph draws one independent sample per entry using the
// reparameterization trick: sample = mean + exp(log_scale) * noise, with
// noise ~ N(0, 1) taken from the context's random number generator. The
// result is differentiable with respect to both variables.
//
// Every call draws fresh noise.
func (d Distribution) SampleGraph(ctx *context.Context, g *Graph) *Node {
	mean := d.Mean.ValueGraph(g)
	scale := Exp(d.LogScale.ValueGraph(g))
	noise := ctx.RandomNormal(g, mean.Shape())
	return Add(mean, Mul(scale, noise))
}

// EnumerateDistributions calls fn once for every learned distribution found
// in or under the scope of ctx -- every trainable "*_mean"/"*_log_scale"
// variable pair, so the weights and the bias of each stochastic layer.
//
// This is the hook for a training harness to build regularization terms from
// the distribution parameters, e.g. a KL divergence penalty against a prior.
func EnumerateDistributions(ctx *context.Context, fn func(dist Distribution)) {
	scope := ctx.Scope()
	scopePrefix := scope
	if !strings.HasSuffix(scopePrefix, "/") {
		scopePrefix += "/"
	}
	ctx.EnumerateVariables(func(v *context.Variable) {
		if !v.Trainable {
			return
		}
		if v.Scope() != scope && !strings.HasPrefix(v.Scope(), scopePrefix) {
			return
		}
		name := v.Name()
		if !strings.HasSuffix(name, meanSuffix) {
			return
		}
		base := strings.TrimSuffix(name, meanSuffix)
		logScale := ctx.InspectVariable(v.Scope(), base+logScaleSuffix)
		if logScale == nil {
			return
		}
		fn(Distribution{Name: base, Scope: v.Scope(), Mean: v, LogScale: logScale})
	})
}
