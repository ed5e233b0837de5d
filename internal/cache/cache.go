package cache

import (
	"fmt"
	"time"

	"duit/internal/log"
)

// Sweeper is any cache that can drop its expired entries.
type Sweeper interface {
	Sweep() int
}

// Janitor periodically sweeps expired entries out of registered caches.
type Janitor struct {
	logger *log.Logger
	caches []Sweeper
	stop   chan struct{}
	done   chan struct{}
}

func NewJanitor(logger *log.Logger) *Janitor {
	return &Janitor{
		logger: logger.WithComponent(log.ComponentCache),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
}

// Register adds a cache to the sweep rotation. Not safe to call after Start.
func (j *Janitor) Register(c Sweeper) {
	j.caches = append(j.caches, c)
}

// Start launches the sweep loop. Call Stop to shut it down.
func (j *Janitor) Start(interval time.Duration) {
	go j.run(interval)
}

func (j *Janitor) run(interval time.Duration) {
	defer close(j.done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			swept := 0
			for _, c := range j.caches {
				swept += c.Sweep()
			}
			if swept > 0 {
				j.logger.Debug("swept expired cache entries", "count", swept)
			}
		case <-j.stop:
			return
		}
	}
}

// Stop halts the sweep loop and waits for it to exit.
func (j *Janitor) Stop() {
	close(j.stop)
	<-j.done
}

// UserKeyPrefix is the shared prefix for every cache key belonging to
// one user, so a single DeletePrefix invalidates all of them.
func UserKeyPrefix(userID int64) string {
	return fmt.Sprintf("u%d:", userID)
}

// MonthKey builds the cache key for one user's month summary.
func MonthKey(userID int64, year, month int) string {
	return fmt.Sprintf("%s%04d-%02d", UserKeyPrefix(userID), year, month)
}
