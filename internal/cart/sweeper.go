package cart

import (
	"context"
	"log"
	"time"
)

// Sweeper periodically deletes carts whose expiry has passed.
type Sweeper struct {
	repo     Repository
	interval time.Duration
	logger   *log.Logger
}

func NewSweeper(repo Repository, interval time.Duration, logger *log.Logger) *Sweeper {
	return &Sweeper{repo: repo, interval: interval, logger: logger}
}

func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Println("cart sweeper started")

	for {
		select {
		case <-ctx.Done():
			s.logger.Println("cart sweeper stopped")
			return
		case <-ticker.C:
			n, err := s.repo.DeleteExpired(ctx, time.Now().UTC())
			if err != nil {
				s.logger.Printf("cart sweep failed: %v", err)
				continue
			}
			if n > 0 {
				s.logger.Printf("cart sweep removed %d expired carts", n)
			}
		}
	}
}
