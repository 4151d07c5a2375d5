package domain

// Snapshot is the ordered view of the registry at one point in time,
// oldest first.
type Snapshot []Notification

// Clone returns an independent copy of the snapshot. A nil snapshot clones
// to an empty, non-nil one so observers can range without nil checks.
func (s Snapshot) Clone() Snapshot {
	out := make(Snapshot, len(s))
	for i, n := range s {
		out[i] = n.Clone()
	}
	return out
}

// IDs returns the notification IDs in snapshot order.
func (s Snapshot) IDs() []string {
	ids := make([]string, len(s))
	for i, n := range s {
		ids[i] = n.ID
	}
	return ids
}

// Unread returns how many notifications have not been read.
func (s Snapshot) Unread() int {
	count := 0
	for _, n := range s {
		if !n.Read {
			count++
		}
	}
	return count
}

// Find returns the notification with the given ID.
func (s Snapshot) Find(id string) (Notification, bool) {
	for _, n := range s {
		if n.ID == id {
			return n, true
		}
	}
	return Notification{}, false
}

// CountByKind returns the number of notifications per kind.
func (s Snapshot) CountByKind() map[Kind]int {
	counts := make(map[Kind]int, len(Kinds))
	for _, n := range s {
		counts[n.Kind]++
	}
	return counts
}
