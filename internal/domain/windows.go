package domain

// OpenWindows holds the threads rendered as chat windows: one ordered set of
// ids per thread kind, insertion order preserved.
type OpenWindows struct {
	Private []UserID
	Groups  []GroupID
}

func (w OpenWindows) Contains(key ThreadKey) bool {
	switch key.Kind {
	case ThreadPrivate:
		for _, id := range w.Private {
			if int64(id) == key.ID {
				return true
			}
		}
	case ThreadGroup:
		for _, id := range w.Groups {
			if int64(id) == key.ID {
				return true
			}
		}
	}

	return false
}

// Add appends key unless already present. It reports whether the set changed.
func (w *OpenWindows) Add(key ThreadKey) bool {
	if w.Contains(key) {
		return false
	}

	switch key.Kind {
	case ThreadPrivate:
		w.Private = append(w.Private, key.UserID())
	case ThreadGroup:
		w.Groups = append(w.Groups, key.GroupID())
	default:
		return false
	}

	return true
}

// Remove drops key by id. It reports whether the set changed.
func (w *OpenWindows) Remove(key ThreadKey) bool {
	if !w.Contains(key) {
		return false
	}

	switch key.Kind {
	case ThreadPrivate:
		kept := make([]UserID, 0, len(w.Private))
		for _, id := range w.Private {
			if int64(id) != key.ID {
				kept = append(kept, id)
			}
		}
		w.Private = kept
	case ThreadGroup:
		kept := make([]GroupID, 0, len(w.Groups))
		for _, id := range w.Groups {
			if int64(id) != key.ID {
				kept = append(kept, id)
			}
		}
		w.Groups = kept
	}

	return true
}

// Keys lists private windows first, then group windows.
func (w OpenWindows) Keys() []ThreadKey {
	keys := make([]ThreadKey, 0, len(w.Private)+len(w.Groups))
	for _, id := range w.Private {
		keys = append(keys, PrivateThread(id))
	}
	for _, id := range w.Groups {
		keys = append(keys, GroupThread(id))
	}

	return keys
}

func (w OpenWindows) Len() int {
	return len(w.Private) + len(w.Groups)
}

func (w OpenWindows) Clone() OpenWindows {
	return OpenWindows{
		Private: append([]UserID{}, w.Private...),
		Groups:  append([]GroupID{}, w.Groups...),
	}
}
