package reporting

import (
	"context"
	"encoding/json"
	"time"

	"marketplace-ledger/internal/listings"
	"marketplace-ledger/internal/requests"
	"marketplace-ledger/internal/wallet"

	"github.com/redis/go-redis/v9"
)

// Service builds read models over wallets, requests and listings.
//
// An optional Redis cache shortens repeated summary reads. Entries carry a
// short TTL instead of invalidation: reads are eventually consistent, and a
// stale summary self-heals within the TTL.
type Service struct {
	wallets      *wallet.Service
	requestStore requests.Store
	listingStore listings.Store

	cache    *redis.Client
	cacheTTL time.Duration

	platformWalletID string
	clock            func() time.Time
}

func NewService(wallets *wallet.Service, requestStore requests.Store, listingStore listings.Store, platformWalletID string) *Service {
	return &Service{
		wallets:          wallets,
		requestStore:     requestStore,
		listingStore:     listingStore,
		cacheTTL:         5 * time.Second,
		platformWalletID: platformWalletID,
		clock:            time.Now,
	}
}

// WithCache enables the Redis summary cache.
func (s *Service) WithCache(client *redis.Client) *Service {
	s.cache = client
	return s
}

func summaryKey(walletID string) string { return "summary:" + walletID }

// WalletSummary assembles the wallet view for its owner.
func (s *Service) WalletSummary(ctx context.Context, ownerID string) (Summary, error) {
	w, err := s.wallets.Ensure(ctx, ownerID)
	if err != nil {
		return Summary{}, err
	}

	if s.cache != nil {
		if raw, err := s.cache.Get(ctx, summaryKey(w.ID)).Bytes(); err == nil {
			var cached Summary
			if json.Unmarshal(raw, &cached) == nil {
				return cached, nil
			}
		}
	}

	out := Summary{
		WalletID:       w.ID,
		OwnerID:        w.OwnerID,
		Balance:        w.Balance,
		TotalDeposited: w.TotalDeposited,
		TotalSpent:     w.TotalSpent,
		TotalWithdrawn: w.TotalWithdrawn,
		IsFrozen:       w.IsFrozen,
		FrozenReason:   w.FrozenReason,
		GeneratedAt:    s.clock().UTC(),
	}

	count, total, err := s.requestStore.PendingSummary(ctx, w.ID, requests.KindDeposit)
	if err != nil {
		return Summary{}, err
	}
	out.PendingDeposits = PendingBucket{Count: count, Amount: total}

	count, total, err = s.requestStore.PendingSummary(ctx, w.ID, requests.KindWithdrawal)
	if err != nil {
		return Summary{}, err
	}
	out.PendingWithdrawals = PendingBucket{Count: count, Amount: total}

	if s.cache != nil {
		if raw, err := json.Marshal(out); err == nil {
			// Best-effort; a cache miss next time is fine.
			_ = s.cache.Set(ctx, summaryKey(w.ID), raw, s.cacheTTL).Err()
		}
	}
	return out, nil
}

// Stats assembles the admin operations view.
func (s *Service) Stats(ctx context.Context) (PlatformStats, error) {
	out := PlatformStats{GeneratedAt: s.clock().UTC()}

	platform, err := s.wallets.Get(ctx, s.platformWalletID)
	if err != nil {
		return PlatformStats{}, err
	}
	out.PlatformBalance = platform.Balance

	counts := []struct {
		kind requests.Kind
		dst  *int
	}{
		{requests.KindDeposit, &out.PendingDeposits},
		{requests.KindWithdrawal, &out.PendingWithdrawals},
		{requests.KindVerification, &out.PendingVerifications},
		{requests.KindPayout, &out.PendingPayouts},
	}
	for _, c := range counts {
		n, err := s.requestStore.CountByStatus(ctx, c.kind, requests.StatusPending)
		if err != nil {
			return PlatformStats{}, err
		}
		*c.dst = n
	}

	pendingListings, err := s.listingStore.CountByStatus(ctx, listings.StatusPending)
	if err != nil {
		return PlatformStats{}, err
	}
	out.PendingListings = pendingListings

	return out, nil
}
