package octree

// Error types attached to the errors returned by the index. Compare them with
// errors.Type from go-tooling.
const (
	ErrTypeInvalidBounds  = "octree_invalid_bounds"
	ErrTypeUnknownElement = "octree_unknown_element"
	ErrTypeSizeLimit      = "octree_size_limit"
)
