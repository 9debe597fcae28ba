package feed

import "strings"

// Filter narrows records by free-text query and active tag set. Both
// predicates are AND-ed; an empty query and an empty tag set each match
// everything. Pure function: records is never mutated.
//
// vocabulary maps tag IDs to display names. Tag matching is case-insensitive
// against resolved display names; IDs missing from the vocabulary are
// compared as opaque strings.
func Filter(records []DreamRecord, query string, activeTagIDs []string, vocabulary map[string]string) []DreamRecord {
	if query == "" && len(activeTagIDs) == 0 {
		return records
	}

	needle := strings.ToLower(query)

	active := make(map[string]struct{}, len(activeTagIDs))
	for _, id := range activeTagIDs {
		active[strings.ToLower(resolveTag(id, vocabulary))] = struct{}{}
	}

	out := make([]DreamRecord, 0, len(records))
	for _, record := range records {
		if needle != "" && !matchesQuery(record, needle) {
			continue
		}
		if len(active) > 0 && !matchesTags(record, active, vocabulary) {
			continue
		}
		out = append(out, record)
	}
	return out
}

func matchesQuery(record DreamRecord, needle string) bool {
	return strings.Contains(strings.ToLower(record.Title), needle) ||
		strings.Contains(strings.ToLower(record.Body), needle) ||
		strings.Contains(strings.ToLower(record.Author.Username), needle) ||
		strings.Contains(strings.ToLower(record.Author.DisplayName), needle)
}

func matchesTags(record DreamRecord, active map[string]struct{}, vocabulary map[string]string) bool {
	for _, id := range record.Tags {
		if _, ok := active[strings.ToLower(resolveTag(id, vocabulary))]; ok {
			return true
		}
	}
	return false
}

func resolveTag(id string, vocabulary map[string]string) string {
	if name, ok := vocabulary[id]; ok {
		return name
	}
	return id
}
