package domain

// FailureAction tells the external scheduler what to do with a dependent node when a
// dependency fails or is canceled.
type FailureAction string

const (
	// FailureCancel cancels the dependent node.
	FailureCancel FailureAction = "cancel"
	// FailureIgnore runs the dependent node anyway.
	FailureIgnore FailureAction = "ignore"
)

// Edge is a snapshot dependency: From waits for To.
type Edge struct {
	From      InternedString
	To        InternedString
	OnFailure FailureAction
	OnCancel  FailureAction
}

// CancelEdge creates an edge that cancels From when To fails or is canceled.
func CancelEdge(from, to InternedString) Edge {
	return Edge{From: from, To: to, OnFailure: FailureCancel, OnCancel: FailureCancel}
}

// IgnoreEdge creates an edge that lets From run whatever happens to To.
func IgnoreEdge(from, to InternedString) Edge {
	return Edge{From: from, To: to, OnFailure: FailureIgnore, OnCancel: FailureIgnore}
}

// ArtifactDependency makes From download files produced by To.
type ArtifactDependency struct {
	ID               string
	From             InternedString
	To               InternedString
	Rules            string
	CleanDestination bool
}
