package deal

// Merge appends incoming records onto existing ones, dropping every record
// whose (title, link) pair was already accepted, then renumbers the result
// as a dense 1..N sequence in output order. Relative order is preserved:
// existing records first, newly accepted incoming records after.
func Merge(existing, incoming []ListingRecord) []ListingRecord {
	merged := make([]ListingRecord, 0, len(existing)+len(incoming))
	seen := make(map[string]struct{}, len(existing)+len(incoming))

	for _, r := range existing {
		key := r.Key()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		merged = append(merged, r)
	}

	for _, r := range incoming {
		key := r.Key()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		merged = append(merged, r)
	}

	for i := range merged {
		merged[i].No = i + 1
	}

	return merged
}

// TitleSet collects every non-empty title in the records
func TitleSet(records []ListingRecord) map[string]struct{} {
	titles := make(map[string]struct{}, len(records))
	for _, r := range records {
		if r.Title != "" {
			titles[r.Title] = struct{}{}
		}
	}
	return titles
}
