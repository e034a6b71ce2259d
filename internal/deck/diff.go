package deck

// TurnDiff is the canonical change record for one floor.
type TurnDiff struct {
	Floor       int
	Obtained    []CardID
	Removed     []CardID
	Transformed []CardID
	Upgraded    []CardID
}

// IsEmpty reports whether the diff changes nothing.
func (d TurnDiff) IsEmpty() bool {
	return len(d.Obtained) == 0 &&
		len(d.Removed) == 0 &&
		len(d.Transformed) == 0 &&
		len(d.Upgraded) == 0
}

// Len returns the total number of changes in the diff.
func (d TurnDiff) Len() int {
	return len(d.Obtained) + len(d.Removed) + len(d.Transformed) + len(d.Upgraded)
}
