// Package session holds ephemeral chat conversations in process memory.
// Nothing here survives a restart.
package session

import (
	"context"
	"errors"
	"hash/fnv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/RowanMueller/ai-production/internal/models"

	"github.com/google/uuid"
)

// ErrNotFound is returned by mutations on unknown session identifiers
var ErrNotFound = errors.New("session not found")

// ErrStoreFull is returned by Create when the capacity bound is reached
var ErrStoreFull = errors.New("session store is at capacity")

const shardCount = 16

// shard guards a slice of the identifier space. Holding a shard's lock
// serializes all operations for every session hashed to it, which gives the
// per-identifier atomicity the gateway relies on while letting sessions on
// other shards proceed.
type shard struct {
	mu       sync.RWMutex
	sessions map[string]*models.Session
}

// Options configures a Store
type Options struct {
	// TTL expires sessions idle for longer than this. Zero disables expiry.
	TTL time.Duration
	// MaxSessions bounds the number of live sessions. Zero means unbounded.
	MaxSessions int
	// SweepInterval is how often expired sessions are collected
	SweepInterval time.Duration
}

// Store maps session identifiers to sessions
type Store struct {
	shards [shardCount]*shard
	opts   Options

	// count tracks live sessions across shards so the capacity bound
	// holds under concurrent Create calls
	count atomic.Int64

	// onDelete is invoked for every removed session, whether deleted
	// explicitly or expired by the sweeper
	onDelete func()
}

// NewStore creates an empty store
func NewStore(opts Options) *Store {
	s := &Store{opts: opts}
	for i := range s.shards {
		s.shards[i] = &shard{sessions: make(map[string]*models.Session)}
	}
	return s
}

// OnDelete registers a callback fired once per removed session
func (s *Store) OnDelete(fn func()) {
	s.onDelete = fn
}

func (s *Store) shardFor(id string) *shard {
	h := fnv.New32a()
	h.Write([]byte(id))
	return s.shards[h.Sum32()%shardCount]
}

// Create allocates a new session with a fresh identifier, an empty message
// sequence and an empty context.
func (s *Store) Create() (*models.Session, error) {
	if n := s.count.Add(1); s.opts.MaxSessions > 0 && n > int64(s.opts.MaxSessions) {
		s.count.Add(-1)
		return nil, ErrStoreFull
	}

	now := time.Now()
	sess := &models.Session{
		ID:         uuid.New().String(),
		CreatedAt:  now,
		LastActive: now,
		Messages:   []models.Message{},
		Context:    models.Context{},
	}

	sh := s.shardFor(sess.ID)
	sh.mu.Lock()
	sh.sessions[sess.ID] = sess
	sh.mu.Unlock()

	return sess.Clone(), nil
}

// Get returns a copy of the session, reporting whether it exists.
// Absence is not an error; callers decide whether it means "create" or "404".
func (s *Store) Get(id string) (*models.Session, bool) {
	sh := s.shardFor(id)
	sh.mu.RLock()
	defer sh.mu.RUnlock()

	sess, ok := sh.sessions[id]
	if !ok {
		return nil, false
	}
	return sess.Clone(), true
}

// AppendMessage appends msg to the session's message sequence.
// Messages are append-only; ordering is the order calls reach the shard lock.
func (s *Store) AppendMessage(id string, msg models.Message) error {
	sh := s.shardFor(id)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	sess, ok := sh.sessions[id]
	if !ok {
		return ErrNotFound
	}
	sess.Messages = append(sess.Messages, msg)
	sess.LastActive = time.Now()
	return nil
}

// MergeContext shallow-merges partial into the session context, overwriting
// on key collision, and returns a copy of the merged context.
func (s *Store) MergeContext(id string, partial models.Context) (models.Context, error) {
	sh := s.shardFor(id)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	sess, ok := sh.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	sess.Context = sess.Context.Merge(partial)
	sess.LastActive = time.Now()
	return sess.Context.Clone(), nil
}

// ReplaceContext swaps the session context wholesale, as happens when the
// upstream chat service returns an updated context.
func (s *Store) ReplaceContext(id string, ctx models.Context) error {
	sh := s.shardFor(id)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	sess, ok := sh.sessions[id]
	if !ok {
		return ErrNotFound
	}
	sess.Context = ctx.Clone()
	sess.LastActive = time.Now()
	return nil
}

// Delete removes the session and reports whether it existed
func (s *Store) Delete(id string) bool {
	sh := s.shardFor(id)
	sh.mu.Lock()
	_, existed := sh.sessions[id]
	delete(sh.sessions, id)
	sh.mu.Unlock()

	if existed {
		s.count.Add(-1)
		if s.onDelete != nil {
			s.onDelete()
		}
	}
	return existed
}

// Len returns the number of live sessions
func (s *Store) Len() int {
	return int(s.count.Load())
}

// StartSweeper expires idle sessions in the background until ctx is done.
// A no-op when no TTL is configured.
func (s *Store) StartSweeper(ctx context.Context) {
	if s.opts.TTL <= 0 {
		return
	}
	interval := s.opts.SweepInterval
	if interval <= 0 {
		interval = time.Minute
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.sweep()
			}
		}
	}()
}

func (s *Store) sweep() {
	cutoff := time.Now().Add(-s.opts.TTL)
	for _, sh := range s.shards {
		var expired int
		sh.mu.Lock()
		for id, sess := range sh.sessions {
			if sess.LastActive.Before(cutoff) {
				delete(sh.sessions, id)
				expired++
			}
		}
		sh.mu.Unlock()

		if expired > 0 {
			s.count.Add(-int64(expired))
			if s.onDelete != nil {
				for i := 0; i < expired; i++ {
					s.onDelete()
				}
			}
		}
	}
}
