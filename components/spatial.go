package components

// Position represents an entity's world position.
type Position struct {
	X, Y float32
}

// Mass holds a recorded body mass; negative values are padding records.
type Mass struct {
	Value int32
}

// Slot is the record index of an entity within a trajectory frame.
type Slot struct {
	Index int
}
