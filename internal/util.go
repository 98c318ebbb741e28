package internal

// ReconstructPath rebuilds the path ending at current from a parent map.
// The start may be absent from parents or map to itself.
func ReconstructPath[NodeType comparable](
	parents map[NodeType]NodeType,
	current NodeType,
	start NodeType,
) []NodeType {
	path := []NodeType{current}
	for current != start {
		previousNode, exists := parents[current]
		if !exists || previousNode == current {
			break
		}
		path = append(path, previousNode)
		current = previousNode
	}
	Reverse(path)
	return path
}

// Reverse reverses s in place.
func Reverse[T any](s []T) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}
