package search

import "strings"

// Categories enumerates the recognized documentation sections in matching
// order. A path joins the first category it matches; everything else lands
// in CategoryOther.
var Categories = []string{"tutorial", "advanced", "deployment", "how-to", "reference"}

// CategoryOther collects paths matching no recognized section.
const CategoryOther = "other"

// Categorize partitions sitemap URLs into topical buckets keyed by category
// name. A path belongs to a category when it equals the category name or
// contains "<category>/" as a substring. Input order is preserved within
// each bucket; URLs reducing to an empty path are skipped. The buckets are
// rebuilt from scratch on every call.
func Categorize(urls []string, baseURL string) map[string][]string {
	buckets := make(map[string][]string, len(Categories)+1)
	for _, c := range Categories {
		buckets[c] = nil
	}
	buckets[CategoryOther] = nil

	for _, u := range urls {
		path := RelativePath(u, baseURL)
		if path == "" {
			continue
		}

		categorized := false
		for _, c := range Categories {
			if path == c || strings.Contains(path, c+"/") {
				buckets[c] = append(buckets[c], path)
				categorized = true
				break
			}
		}

		if !categorized {
			buckets[CategoryOther] = append(buckets[CategoryOther], path)
		}
	}

	return buckets
}
