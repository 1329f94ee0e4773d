package draft

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"casework/internal/journey"
	"casework/internal/journey/reconcile"
)

// Redis key prefix for journey drafts. The full key realizes the nested
// {journeyID: {referenceID: {...}}} session shape as a flat namespace.
const draftKeyPrefix = "draft:"

// RedisStore persists drafts as one JSON document per journey instance.
// Save is a WATCH-guarded read-merge-write so two tabs saving different
// questions of the same journey cannot overwrite each other's fields.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedis constructs a Redis-backed draft store. A zero ttl keeps drafts
// until they are explicitly cleared.
func NewRedis(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func draftKey(journeyID, referenceID string) string {
	return fmt.Sprintf("%s%s:%s", draftKeyPrefix, journeyID, referenceID)
}

const saveRetries = 3

func (s *RedisStore) Save(ctx context.Context, journeyID, referenceID string, answers journey.Edited) error {
	key := draftKey(journeyID, referenceID)

	merge := func(tx *redis.Tx) error {
		existing, err := s.read(ctx, tx.Get(ctx, key))
		if err != nil {
			return err
		}
		// Identity merge, not a per-key overwrite: a list save carries only
		// the touched record, and records added by earlier saves must
		// survive it.
		merged := reconcile.Merge(existing, journey.AnswerSet(answers))
		payload, err := json.Marshal(merged)
		if err != nil {
			return fmt.Errorf("marshal draft: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, payload, s.ttl)
			return nil
		})
		return err
	}

	var err error
	for i := 0; i < saveRetries; i++ {
		err = s.client.Watch(ctx, merge, key)
		if !errors.Is(err, redis.TxFailedErr) {
			return err
		}
	}
	return err
}

func (s *RedisStore) Get(ctx context.Context, journeyID, referenceID string) (journey.AnswerSet, error) {
	return s.read(ctx, s.client.Get(ctx, draftKey(journeyID, referenceID)))
}

func (s *RedisStore) Clear(ctx context.Context, journeyID, referenceID string) error {
	return s.client.Del(ctx, draftKey(journeyID, referenceID)).Err()
}

func (s *RedisStore) Replace(ctx context.Context, journeyID, referenceID string, answers journey.AnswerSet) error {
	payload, err := json.Marshal(answers)
	if err != nil {
		return fmt.Errorf("marshal draft: %w", err)
	}
	return s.client.Set(ctx, draftKey(journeyID, referenceID), payload, s.ttl).Err()
}

// read decodes a draft payload; a missing key is an empty draft, not an error.
func (s *RedisStore) read(_ context.Context, cmd *redis.StringCmd) (journey.AnswerSet, error) {
	payload, err := cmd.Bytes()
	if errors.Is(err, redis.Nil) {
		return journey.AnswerSet{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read draft: %w", err)
	}
	var answers journey.AnswerSet
	if err := json.Unmarshal(payload, &answers); err != nil {
		return nil, fmt.Errorf("decode draft: %w", err)
	}
	return answers, nil
}
