package snapshot

// Strategy decides which rows of an incoming batch survive a merge into the
// cumulative store. Two deliberately distinct variants exist: prices and dates
// dedupe on key presence alone, while entity profiles dedupe on content,
// because prices change every day and profiles rarely do.
type Strategy[Row any] interface {
	// Merge returns the incoming rows that are not already represented
	// in the existing set.
	Merge(existing, incoming []Row) []Row
}

// KeyPresence admits an incoming row only when its natural key is absent from
// the existing set. For price snapshots the key is the date, so a date that is
// already present discards the whole incoming batch for that date.
type KeyPresence[Row any, Key comparable] struct {
	KeyOf func(Row) Key
}

func (s KeyPresence[Row, Key]) Merge(existing, incoming []Row) []Row {
	seen := make(map[Key]struct{}, len(existing))
	for _, r := range existing {
		seen[s.KeyOf(r)] = struct{}{}
	}

	var added []Row
	for _, r := range incoming {
		if _, ok := seen[s.KeyOf(r)]; !ok {
			added = append(added, r)
		}
	}
	return added
}

// ContentDiff admits an incoming row only when no existing row carries the same
// attribute fingerprint, so re-delivered identical rows are redundant and only
// truly novel tuples are appended.
type ContentDiff[Row any, Fingerprint comparable] struct {
	FingerprintOf func(Row) Fingerprint
}

func (s ContentDiff[Row, Fingerprint]) Merge(existing, incoming []Row) []Row {
	seen := make(map[Fingerprint]struct{}, len(existing))
	for _, r := range existing {
		seen[s.FingerprintOf(r)] = struct{}{}
	}

	var added []Row
	for _, r := range incoming {
		if _, ok := seen[s.FingerprintOf(r)]; !ok {
			added = append(added, r)
		}
	}
	return added
}

// PriceMergeStrategy dedupes price batches by exact date presence.
func PriceMergeStrategy() Strategy[PriceRow] {
	return KeyPresence[PriceRow, string]{KeyOf: func(r PriceRow) string { return r.Date }}
}

// DateMergeStrategy dedupes calendar rows by exact date presence.
func DateMergeStrategy() Strategy[DateRow] {
	return KeyPresence[DateRow, string]{KeyOf: func(r DateRow) string { return r.Date }}
}

// profileFingerprint is the attribute tuple profiles are compared on. The
// free-text description is deliberately not part of it.
type profileFingerprint struct {
	Symbol   string
	SourceID int64
	Name     string
	Category string
	Logo     string
	Website  string
	Reddit   string
}

// ProfileMergeStrategy dedupes profile batches on the full attribute tuple.
func ProfileMergeStrategy() Strategy[ProfileRow] {
	return ContentDiff[ProfileRow, profileFingerprint]{
		FingerprintOf: func(r ProfileRow) profileFingerprint {
			return profileFingerprint{
				Symbol:   r.Symbol,
				SourceID: r.SourceID,
				Name:     r.Name,
				Category: r.Category,
				Logo:     r.Logo,
				Website:  r.Website,
				Reddit:   r.Reddit,
			}
		},
	}
}
