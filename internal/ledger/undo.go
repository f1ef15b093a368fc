package ledger

import "sync"

// Slot remembers an actor's most recent add: which record set it went to and
// the sequence number it received. One slot per actor, overwritten by each
// add, consumed at most once.
type Slot struct {
	Sheet string
	No    int
}

// UndoStore keeps undo slots keyed by actor id. It lives in process memory
// only, so pending undos are lost on restart; that is a documented limitation,
// not something this type tries to hide.
type UndoStore struct {
	mu    sync.Mutex
	slots map[int64]Slot
}

func NewUndoStore() *UndoStore {
	return &UndoStore{slots: make(map[int64]Slot)}
}

// Remember overwrites the actor's slot.
func (u *UndoStore) Remember(actor int64, s Slot) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.slots[actor] = s
}

// Peek returns the actor's slot without consuming it.
func (u *UndoStore) Peek(actor int64) (Slot, bool) {
	u.mu.Lock()
	defer u.mu.Unlock()
	s, ok := u.slots[actor]
	return s, ok
}

// Clear removes the actor's slot.
func (u *UndoStore) Clear(actor int64) {
	u.mu.Lock()
	defer u.mu.Unlock()
	delete(u.slots, actor)
}
