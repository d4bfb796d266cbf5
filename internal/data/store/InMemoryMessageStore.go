package store

import (
	"context"
	"sync"
	"time"

	"github.com/akolanti/docqa/internal/config"
	"github.com/akolanti/docqa/internal/domain/jobModel"
)

type storedChat struct {
	exchanges []jobModel.Exchange
	expiresAt time.Time
}

// InMemoryMessageStore mirrors the Redis list semantics, every write pushes
// the chat's expiry forward by the message ttl.
type InMemoryMessageStore struct {
	chatLock *sync.RWMutex
	chatMap  map[string]storedChat
	ttl      time.Duration
	now      func() time.Time
}

func InitMessageStore() *InMemoryMessageStore {
	return &InMemoryMessageStore{
		chatLock: new(sync.RWMutex),
		chatMap:  make(map[string]storedChat),
		ttl:      config.RedisMessageStoreTTL,
		now:      time.Now,
	}
}

// live must be called with chatLock held.
func (store *InMemoryMessageStore) live(chatId string) (storedChat, bool) {
	chat, ok := store.chatMap[chatId]
	if !ok || store.now().After(chat.expiresAt) {
		return storedChat{}, false
	}
	return chat, true
}

// evictExpired must be called with the write lock held.
func (store *InMemoryMessageStore) evictExpired() {
	now := store.now()
	for id, chat := range store.chatMap {
		if now.After(chat.expiresAt) {
			delete(store.chatMap, id)
		}
	}
}

func (store *InMemoryMessageStore) ValidateChatId(ctx context.Context, chatId string) bool {
	store.chatLock.RLock()
	defer store.chatLock.RUnlock()
	_, ok := store.live(chatId)
	return ok
}

func (store *InMemoryMessageStore) TrySaveChat(ctx context.Context, id string, exchange jobModel.Exchange) error {
	store.chatLock.Lock()
	defer store.chatLock.Unlock()
	chat, ok := store.live(id)
	if !ok {
		return ErrUnknownChat
	}
	chat.exchanges = append(chat.exchanges, exchange)
	chat.expiresAt = store.now().Add(store.ttl)
	store.chatMap[id] = chat
	inMemLogger.WithTrace(ctx).Debug("Saved exchange to chat message store", "chatId", id)
	return nil
}

func (store *InMemoryMessageStore) InitNewChat(ctx context.Context, id string) error {
	store.chatLock.Lock()
	defer store.chatLock.Unlock()
	store.evictExpired()
	store.chatMap[id] = storedChat{
		exchanges: make([]jobModel.Exchange, 0),
		expiresAt: store.now().Add(store.ttl),
	}
	return nil
}

func (store *InMemoryMessageStore) GetMessageHistory(ctx context.Context, chatId string) ([]jobModel.Exchange, error) {
	store.chatLock.RLock()
	defer store.chatLock.RUnlock()
	chat, ok := store.live(chatId)
	if !ok {
		return nil, ErrUnknownChat
	}
	return trimHistory(append([]jobModel.Exchange(nil), chat.exchanges...)), nil
}
