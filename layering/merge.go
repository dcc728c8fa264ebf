package layering

// MergeDocuments overlays documents ordered from strongest to weakest. Nested
// objects merge key by key; arrays and scalars from a stronger layer replace
// the weaker value outright. A nil value in a stronger layer deletes the key.
// The inputs are never modified and the result shares no memory with them.
func MergeDocuments(layers ...map[string]any) map[string]any {
	merged := map[string]any{}
	for i := len(layers) - 1; i >= 0; i-- {
		merged = overlay(merged, layers[i])
	}
	return merged
}

func overlay(base, strong map[string]any) map[string]any {
	if strong == nil {
		return base
	}
	out := make(map[string]any, len(base)+len(strong))
	for key, value := range base {
		out[key] = value
	}
	for key, value := range strong {
		if value == nil {
			delete(out, key)
			continue
		}
		strongDoc, strongIsDoc := value.(map[string]any)
		weakDoc, weakIsDoc := out[key].(map[string]any)
		if strongIsDoc && weakIsDoc {
			out[key] = overlay(weakDoc, strongDoc)
			continue
		}
		out[key] = CloneAny(value)
	}
	return out
}
