package listutil

import "strings"

// ResolveCanonical picks the display spelling for a normalized group.
// The most frequent original spelling wins; equal counts go to the spelling seen first.
// Originals are compared after trimming so padded input never becomes a label.
// PRE: key is a Normalize output
// POST: returns one of originals when any matches key, otherwise key itself
func ResolveCanonical(key string, originals []string) string {
	counts := make(map[string]int)
	var order []string
	for _, o := range originals {
		o = strings.TrimSpace(o)
		if Normalize(o) != key {
			continue
		}
		if _, seen := counts[o]; !seen {
			order = append(order, o)
		}
		counts[o]++
	}

	best, bestCount := key, 0
	for _, o := range order {
		if counts[o] > bestCount {
			best, bestCount = o, counts[o]
		}
	}
	return best
}
