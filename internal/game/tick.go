package game

// IDSource hands out entity handles for one run. The zero value starts at 1.
type IDSource struct {
	last EntityID
}

// Next returns a fresh handle.
func (s *IDSource) Next() EntityID {
	s.last++
	return s.last
}

// Tick is the context passed to every entity update: the elapsed time of this frame
// in milliseconds and the active collections as they stand during the frame.
type Tick struct {
	Delta   float64
	Enemies *EnemySet
	IDs     *IDSource
}

func (t *Tick) newID() EntityID {
	if t.IDs == nil {
		return 0
	}
	return t.IDs.Next()
}
