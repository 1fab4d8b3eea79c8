package editor

// Selection tracks at most one selected block id.
type Selection struct {
	id  int
	set bool
}

func (s *Selection) Select(id int) {
	s.id, s.set = id, true
}

func (s *Selection) Clear() {
	s.id, s.set = 0, false
}

// ID returns the selected block id and whether anything is selected.
func (s Selection) ID() (int, bool) {
	return s.id, s.set
}

func (s Selection) Is(id int) bool {
	return s.set && s.id == id
}
