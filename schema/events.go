package schema

// MutationKind classifies one observed mutation record.
type MutationKind string

const (
	// MutationChildList indicates nodes were added to or removed from the tree.
	MutationChildList MutationKind = "childlist"
	// MutationAttribute indicates a style-attribute change on an element.
	MutationAttribute MutationKind = "attribute"
)

// NodeClass is the page-side classification of one observed node.
type NodeClass struct {
	// Controls is set when the node sits in, or contains, the controls container.
	Controls bool `json:"controls,omitempty"`
	// Card is set when the node sits in, or contains, a card.
	Card bool `json:"card,omitempty"`
}

// MutationRecord is one structured change record delivered by the mutation
// notification source. Records arrive in batches in document order.
type MutationRecord struct {
	Kind    MutationKind `json:"kind"`
	Target  NodeClass    `json:"target"`
	Added   []NodeClass  `json:"added,omitempty"`
	Removed []NodeClass  `json:"removed,omitempty"`
}

// ToggleEvent is a user checkbox toggle from the control surface.
type ToggleEvent struct {
	Token   ColorToken `json:"token"`
	Enabled bool       `json:"enabled"`
}

// RefreshStats summarizes one completed refresh pass.
type RefreshStats struct {
	Cards  int
	Hidden int
	Aired  int
}
