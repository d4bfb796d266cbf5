package store

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/akolanti/docqa/internal/config"
	"github.com/akolanti/docqa/internal/data/redisStore"
	"github.com/akolanti/docqa/internal/domain/jobModel"
	"github.com/akolanti/docqa/pkg/logger_i"
)

var ErrUnknownChat = errors.New("invalid chat id")

type RedisMessageStore struct {
	store  *redisStore.Store
	logger *logger_i.Logger
}

func GetRedisMessageStore(ctx context.Context, opts redisStore.Options) (*RedisMessageStore, error) {
	s, err := redisStore.GetRedisStore(ctx, opts, config.RedisMessageStore)
	if err != nil {
		return nil, err
	}
	return NewRedisMessageStore(s), nil
}

func NewRedisMessageStore(s *redisStore.Store) *RedisMessageStore {
	return &RedisMessageStore{
		store:  s,
		logger: logger_i.NewLogger("MessageStore"),
	}
}

func (s *RedisMessageStore) ValidateChatId(ctx context.Context, chatId string) bool {
	log := s.logger.WithTrace(ctx).With("chat Id", chatId)
	isFound, err := s.store.Exists(ctx, chatId)
	if s.store.IsNil(err) {
		return false
	} else if err != nil {
		log.Error("Failed to check if chatId exists", "err", err)
		return false
	}
	return isFound
}

func (s *RedisMessageStore) TrySaveChat(ctx context.Context, id string, exchange jobModel.Exchange) error {
	log := s.logger.WithTrace(ctx).With("chat Id", id)
	if !s.ValidateChatId(ctx, id) {
		log.Error("Failed Validation before saving", "err", ErrUnknownChat)
		return ErrUnknownChat
	}
	return s.saveChatId(ctx, id, exchange)
}

func (s *RedisMessageStore) saveChatId(ctx context.Context, id string, exchange jobModel.Exchange) error {
	log := s.logger.WithTrace(ctx).With("chat Id", id)
	data, err := json.Marshal(exchange)
	if err != nil {
		return err
	}
	if err := s.store.ListPush(ctx, id, data, config.RedisMessageStoreTTL); err != nil {
		log.Error("error saving chat", "error", err)
		return err
	}
	log.Debug("Saved chat successfully")
	return nil
}

// InitNewChat starts a chat with an empty exchange so the key exists before
// the first answer lands. The marker is skipped when reading history.
func (s *RedisMessageStore) InitNewChat(ctx context.Context, id string) error {
	log := s.logger.WithTrace(ctx).With("chat Id", id)
	log.Debug("Initializing new chat")
	if err := s.store.Del(ctx, id); err != nil {
		log.Error("Error initializing chat", "error", err)
		return err
	}
	return s.saveChatId(ctx, id, jobModel.Exchange{})
}

func (s *RedisMessageStore) GetMessageHistory(ctx context.Context, chatId string) ([]jobModel.Exchange, error) {
	log := s.logger.WithTrace(ctx).With("chat Id", chatId)
	log.Debug("Getting message history")
	if !s.ValidateChatId(ctx, chatId) {
		return nil, ErrUnknownChat
	}

	// one extra for the init marker
	res, err := s.store.ListGetLast(ctx, chatId, config.ChatHistoryLength+1)
	if err != nil {
		log.Error("Error getting history", "error", err)
		return nil, err
	}

	history := make([]jobModel.Exchange, 0, len(res))
	for _, raw := range res {
		var ex jobModel.Exchange
		if err := json.Unmarshal([]byte(raw), &ex); err != nil {
			log.Warn("Skipping unreadable history entry", "error", err)
			continue
		}
		if ex.Question == "" {
			continue
		}
		history = append(history, ex)
	}
	return trimHistory(history), nil
}

func trimHistory(history []jobModel.Exchange) []jobModel.Exchange {
	if len(history) > config.ChatHistoryLength {
		return history[len(history)-config.ChatHistoryLength:]
	}
	return history
}
