package listing

import "strings"

// FilterPrefix keeps the items where any key starts with query, ignoring
// case. The query is matched as typed, surrounding spaces included. An empty
// query keeps everything. The course list uses it instead of server-side
// search.
func FilterPrefix[T any](items []T, query string, keys ...func(T) string) []T {
	needle := strings.ToLower(query)
	if needle == "" {
		return items
	}
	var out []T
	for _, item := range items {
		for _, key := range keys {
			if strings.HasPrefix(strings.ToLower(key(item)), needle) {
				out = append(out, item)
				break
			}
		}
	}
	return out
}
