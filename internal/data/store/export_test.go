package store

import "time"

func (store *InMemoryJobStore) SetClock(now func() time.Time) {
	store.now = now
}

func (store *InMemoryMessageStore) SetClock(now func() time.Time) {
	store.now = now
}

// HeldChats counts stored chats, expired ones included until evicted.
func (store *InMemoryMessageStore) HeldChats() int {
	store.chatLock.RLock()
	defer store.chatLock.RUnlock()
	return len(store.chatMap)
}
