// Package ml contains the numeric building blocks of the risk model: a
// min-max feature scaler and a gradient-boosted regression tree ensemble
// trained on squared error. Fitted values are immutable and safe for
// concurrent use.
package ml
