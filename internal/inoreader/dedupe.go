package inoreader

// Dedupe merges item sequences, keeping the first occurrence of each ID and
// preserving arrival order. Items without an ID are kept as-is.
func Dedupe(seqs ...[]Item) []Item {
	seen := make(map[string]struct{})
	var out []Item
	for _, seq := range seqs {
		for _, it := range seq {
			if it.ID != "" {
				if _, dup := seen[it.ID]; dup {
					continue
				}
				seen[it.ID] = struct{}{}
			}
			out = append(out, it)
		}
	}
	return out
}
