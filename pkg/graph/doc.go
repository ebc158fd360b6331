// Package graph defines the skeleton of a generated tree: a strictly
// tree-shaped graph of directed, radius-tapered segments grouped into stems.
// Growth functions build and extend the graph; meshers only read it.
package graph
