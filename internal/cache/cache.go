// Package cache holds small in-process caches shared by the workers.
package cache

import "time"

// Cache defines a generic cache interface
type Cache[T any] interface {
	// Get retrieves a value from the cache
	Get(key string) (T, bool)

	// Set stores a value in the cache
	Set(key string, data T)

	// Delete removes a key from the cache
	Delete(key string)

	// Size returns the current number of items in the cache
	Size() int
}

// Cleaner is implemented by caches that can drop expired entries.
type Cleaner interface {
	CleanExpired() int
}

// Janitor periodically calls CleanExpired on its caches until stopped.
type Janitor struct {
	caches      []Cleaner
	stopCleanup chan struct{}
	cleanupDone chan struct{}
}

func NewJanitor(caches ...Cleaner) *Janitor {
	return &Janitor{
		caches:      caches,
		stopCleanup: make(chan struct{}),
		cleanupDone: make(chan struct{}),
	}
}

// Start begins periodic cleanup. onClean, when set, receives the number of
// entries removed in each round that removed any.
func (j *Janitor) Start(interval time.Duration, onClean func(removed int)) {
	go func() {
		defer close(j.cleanupDone)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				removed := 0
				for _, c := range j.caches {
					removed += c.CleanExpired()
				}
				if removed > 0 && onClean != nil {
					onClean(removed)
				}
			case <-j.stopCleanup:
				return
			}
		}
	}()
}

// Stop ends the cleanup loop and waits for it. Start must have been called.
func (j *Janitor) Stop() {
	close(j.stopCleanup)
	<-j.cleanupDone
}
