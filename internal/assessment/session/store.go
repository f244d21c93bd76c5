// Package session keeps assessment walks in Redis between requests.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"visa-portal/internal/assessment/navigator"
	"visa-portal/internal/models"
)

const keyPrefix = "assessment:session:"

var (
	ErrNotFound = errors.New("assessment session not found")
	ErrConflict = errors.New("assessment session was modified concurrently")
)

// Session is one visitor's walk together with the question set it was
// started on, so later reloads of the bank do not change an open walk.
type Session struct {
	ID        string            `json:"id"`
	VisaType  models.VisaType   `json:"visaType"`
	Source    string            `json:"source"`
	Questions []models.Question `json:"questions"`
	State     *navigator.State  `json:"state"`
	CreatedAt time.Time         `json:"createdAt"`
	UpdatedAt time.Time         `json:"updatedAt"`
}

type Store struct {
	client *redis.Client
	ttl    time.Duration
}

func NewStore(client *redis.Client, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = 2 * time.Hour
	}
	return &Store{client: client, ttl: ttl}
}

func key(id string) string {
	return keyPrefix + id
}

// Create assigns an id and stores s.
func (s *Store) Create(ctx context.Context, sess *Session) (*Session, error) {
	now := time.Now().UTC()
	sess.ID = uuid.NewString()
	sess.CreatedAt = now
	sess.UpdatedAt = now

	data, err := json.Marshal(sess)
	if err != nil {
		return nil, fmt.Errorf("marshal session: %w", err)
	}
	ok, err := s.client.SetNX(ctx, key(sess.ID), data, s.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}
	if !ok {
		return nil, ErrConflict
	}
	return sess, nil
}

func (s *Store) Get(ctx context.Context, id string) (*Session, error) {
	data, err := s.client.Get(ctx, key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	return decode(data)
}

// Update applies fn under WATCH and writes the result back with a fresh
// TTL. A concurrent write to the same session yields ErrConflict.
func (s *Store) Update(ctx context.Context, id string, fn func(*Session) error) (*Session, error) {
	k := key(id)
	var updated *Session

	err := s.client.Watch(ctx, func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, k).Bytes()
		if errors.Is(err, redis.Nil) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("load session: %w", err)
		}
		sess, err := decode(data)
		if err != nil {
			return err
		}
		if err := fn(sess); err != nil {
			return err
		}
		sess.UpdatedAt = time.Now().UTC()

		out, err := json.Marshal(sess)
		if err != nil {
			return fmt.Errorf("marshal session: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, k, out, s.ttl)
			return nil
		})
		if err != nil {
			return err
		}
		updated = sess
		return nil
	}, k)

	if errors.Is(err, redis.TxFailedErr) {
		return nil, ErrConflict
	}
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	n, err := s.client.Del(ctx, key(id)).Result()
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func decode(data []byte) (*Session, error) {
	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	if sess.State == nil {
		sess.State = &navigator.State{VisaType: sess.VisaType}
	}
	return &sess, nil
}
