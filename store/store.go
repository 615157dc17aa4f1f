// Package store provides durable access to crawled movies and networks.
package store

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/omar251/CinemaTec-sub001/internal/profile"
)

// defaultFlushInterval is the period of the background movie cache flusher.
const defaultFlushInterval = 5 * time.Minute

// Store provides database access to all raw objects. The movie cache index is
// authoritative in memory and snapshotted to the driver periodically.
type Store struct {
	profile *profile.Profile
	driver  Driver

	movies       *MovieCache
	networkLocks *keyedMutex
	idGenerator  IDGenerator

	done chan struct{}
	wg   sync.WaitGroup
	once sync.Once
}

// New creates a new instance of Store and starts the background flusher.
func New(driver Driver, profile *profile.Profile) *Store {
	s := &Store{
		profile:      profile,
		driver:       driver,
		movies:       NewMovieCache(driver),
		networkLocks: newKeyedMutex(),
		idGenerator:  NewSlugIDGenerator(),
		done:         make(chan struct{}),
	}

	s.wg.Add(1)
	go s.flushLoop(defaultFlushInterval)

	return s
}

// Movies returns the movie cache.
func (s *Store) Movies() *MovieCache {
	return s.movies
}

// GetDriver returns the underlying driver.
func (s *Store) GetDriver() Driver {
	return s.driver
}

// SetIDGenerator swaps the network id generation strategy.
func (s *Store) SetIDGenerator(generator IDGenerator) {
	s.idGenerator = generator
}

// Close stops the flusher, writes a final snapshot, and closes the driver.
func (s *Store) Close() error {
	s.once.Do(func() {
		close(s.done)
	})
	s.wg.Wait()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.movies.Flush(ctx); err != nil {
		slog.Error("final movie cache flush failed", slog.String("error", err.Error()))
	}

	return s.driver.Close()
}

// flushLoop periodically snapshots the movie cache. A failed flush is logged
// and retried on the next tick; it never fails the operation that dirtied
// the record.
func (s *Store) flushLoop(interval time.Duration) {
	defer s.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			if err := s.movies.Flush(ctx); err != nil {
				slog.Warn("movie cache flush failed, will retry", slog.String("error", err.Error()))
			}
			cancel()
		}
	}
}

// keyedMutex serializes operations per network id. Operations on different
// ids do not contend.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*entryLock
}

type entryLock struct {
	mu   sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: map[string]*entryLock{}}
}

// Lock acquires the lock for key and returns its unlock function.
func (k *keyedMutex) Lock(key string) func() {
	k.mu.Lock()
	lock, ok := k.locks[key]
	if !ok {
		lock = &entryLock{}
		k.locks[key] = lock
	}
	lock.refs++
	k.mu.Unlock()

	lock.mu.Lock()
	return func() {
		lock.mu.Unlock()
		k.mu.Lock()
		lock.refs--
		if lock.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}
