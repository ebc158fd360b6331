package graph

// GrowthState is the per-node scratch data of the growth function that
// created the node. It is a closed variant: only types in this package
// implement it, and each growth function matches on its own type.
type GrowthState interface {
	growthState() // marker method restricting implementations to this package
}

// BranchGrowth is the state carried by nodes created by a branch function.
type BranchGrowth struct {
	DesiredLength   float64 // total length the branch is grown to
	CurrentLength   float64 // length grown from the origin up to this node's tip
	OriginRadius    float64 // radius of the node the branch departs from
	CumulatedWeight float64 // own length plus the weight of every descendant
	Age             float64 // grows every gravity pass, damping further bending
}

func (*BranchGrowth) growthState() {}
