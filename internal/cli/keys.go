package cli

import "strings"

// toJSONKey converts a display label ("Public Key") to a JSON key
// ("public_key").
func toJSONKey(label string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(label)), " ", "_")
}
