package services

// normalizeSettings turns the backend's "true"/"false" strings into booleans.
// Every other value is kept as sent.
func normalizeSettings(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = v
		s, ok := v.(string)
		if !ok {
			continue
		}
		switch s {
		case "true":
			out[k] = true
		case "false":
			out[k] = false
		}
	}
	return out
}
