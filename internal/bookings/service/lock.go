package service

import (
	"context"
	"errors"
	"fmt"
	bookingserrors "suitespot/internal/bookings/errors"
	apperrors "suitespot/pkg/errors"
	"suitespot/pkg/model"
	"time"
)

func listingLockID(listingID string) string { return "listing:" + listingID }

func guestLockID(guestID string) string { return "guest:" + guestID }

// acquireLocks takes each lock in order and reports when the attempt started,
// which is no later than the creation of the first lock. On failure every lock
// taken so far is released before returning.
func (s *bookingService) acquireLocks(ctx context.Context, owner string, lockIDs ...string) ([]string, time.Time, error) {
	started := time.Now()
	held := make([]string, 0, len(lockIDs))
	for _, lockID := range lockIDs {
		if err := s.acquireLock(ctx, lockID, owner); err != nil {
			s.releaseLocks(ctx, owner, held)
			return nil, time.Time{}, err
		}
		held = append(held, lockID)
	}
	return held, started, nil
}

// transactionBudget is how long after lock acquisition started a transaction
// may still run. The remainder of LockTTL is headroom for the commit.
func (s *bookingService) transactionBudget() time.Duration {
	if budget := s.cfg.LockTTL - s.cfg.LockWaitTimeout; budget > 0 {
		return budget
	}
	return s.cfg.LockTTL / 2
}

func (s *bookingService) acquireLock(ctx context.Context, lockID, owner string) error {
	waitCtx, cancel := context.WithTimeout(ctx, s.cfg.LockWaitTimeout)
	defer cancel()

	ticker := time.NewTicker(s.cfg.LockRetryInterval)
	defer ticker.Stop()

	for {
		now := s.now()
		err := s.lockRepo.Create(waitCtx, &model.BookingLock{
			ID:        lockID,
			Owner:     owner,
			ExpiresAt: now.Add(s.cfg.LockTTL),
		})
		if err == nil {
			return nil
		}
		if !errors.Is(err, bookingserrors.ErrLockHeld) {
			if waitCtx.Err() != nil {
				return s.lockTimeout(ctx, lockID)
			}
			s.cfg.Log.Error("Failed to acquire booking lock", "lock_id", lockID, "error", err)
			return apperrors.Storage("Failed to acquire booking lock", err)
		}

		reclaimed, err := s.lockRepo.DeleteExpired(waitCtx, lockID, now)
		if err != nil && waitCtx.Err() == nil {
			s.cfg.Log.Warn("Failed to reclaim expired booking lock", "lock_id", lockID, "error", err)
		}
		if reclaimed {
			s.cfg.Log.Warn("Reclaimed expired booking lock", "lock_id", lockID)
			continue
		}

		select {
		case <-waitCtx.Done():
			return s.lockTimeout(ctx, lockID)
		case <-ticker.C:
		}
	}
}

func (s *bookingService) lockTimeout(ctx context.Context, lockID string) error {
	if ctx.Err() != nil {
		appErr := apperrors.Timeout("Request cancelled while waiting for booking lock")
		appErr.Err = ctx.Err()
		return appErr
	}
	s.cfg.Log.Warn("Timed out waiting for booking lock", "lock_id", lockID, "wait", s.cfg.LockWaitTimeout)
	appErr := apperrors.Unavailable("Booking")
	appErr.Err = fmt.Errorf("%w: %s", bookingserrors.ErrLockTimeout, lockID)
	return appErr
}

// releaseLocks frees locks in reverse order of acquisition. It runs detached
// from ctx so a cancelled request still releases what it holds.
func (s *bookingService) releaseLocks(ctx context.Context, owner string, lockIDs []string) {
	if len(lockIDs) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.WriteTimeout)
	defer cancel()

	for i := len(lockIDs) - 1; i >= 0; i-- {
		if err := s.lockRepo.Delete(ctx, lockIDs[i], owner); err != nil {
			s.cfg.Log.Error("Failed to release booking lock",
				"lock_id", lockIDs[i],
				"owner", owner,
				"error", err,
			)
		}
	}
}
