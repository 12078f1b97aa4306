// Package fitter estimates kinetic model parameters from experimental data.
//
// A Fitter owns one model instance and one variant. It weights residuals
// with a standard deviation matrix, searches the bounded parameter space
// with differential evolution, polishes the best candidate with a local
// Nelder-Mead step and offers Monte-Carlo sensitivity analysis and a
// chi-squared goodness-of-fit test on the optimum.
package fitter
