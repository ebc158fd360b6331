// Package growth implements the growth pipeline: a chain of stochastic
// functions that build and extend a skeleton in place.
//
// Every function follows the same protocol. Execute validates its
// configuration, seeds its own random stream, extends the nodes created by
// the function that ran before it (parentID), stamps everything it creates
// with its own id and finally runs its children with id+1. A function only
// ever reads nodes authored by its direct parent, so the pipeline is a
// strict producer chain.
package growth
