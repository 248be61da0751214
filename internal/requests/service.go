package requests

import (
	"context"
	"fmt"
	"strings"
	"time"

	"marketplace-ledger/internal/audit"
	"marketplace-ledger/internal/pricing"
	"marketplace-ledger/internal/wallet"

	"github.com/google/uuid"
)

// Service is the request workflow engine: one generic state machine over the
// four request kinds.
//
//	pending --(admin approve)--> approved            [terminal]
//	pending --(admin reject)---> rejected            [terminal]
//	pending --(owner cancel)---> cancelled           [terminal, withdrawal/payout]
//
// Withdrawals additionally pass through processing between approval and
// completion. Every transition is guarded by a compare-and-swap on the current
// status, so retried admin calls fail with ErrInvalidTransition rather than
// repeating their effect.
type Service struct {
	store   Store
	wallets *wallet.Service
	fees    pricing.Schedule
	audit   *audit.Service
	clock   func() time.Time
}

func NewService(store Store, wallets *wallet.Service, fees pricing.Schedule, auditSvc *audit.Service) *Service {
	return &Service{
		store:   store,
		wallets: wallets,
		fees:    fees,
		audit:   auditSvc,
		clock:   time.Now,
	}
}

const referenceType = "request"

type DepositInput struct {
	Amount            int64  `json:"amount"`
	Method            string `json:"method"`
	ExternalReference string `json:"external_reference"`
}

// SubmitDeposit records a pending deposit claim. No balance effect until an
// admin verifies the proof and approves.
func (s *Service) SubmitDeposit(ctx context.Context, ownerID string, in DepositInput) (Request, error) {
	if in.Amount < s.fees.MinDeposit {
		return Request{}, fmt.Errorf("%w: minimum deposit is %s", ErrBelowMinimum, minorUnits(s.fees.MinDeposit))
	}
	if strings.TrimSpace(in.Method) == "" {
		return Request{}, fmt.Errorf("%w: method required", ErrInvalidPaymentDetails)
	}
	w, err := s.wallets.Ensure(ctx, ownerID)
	if err != nil {
		return Request{}, err
	}
	r := Request{
		ID:                uuid.NewString(),
		Kind:              KindDeposit,
		WalletID:          w.ID,
		Amount:            in.Amount,
		Method:            in.Method,
		ExternalReference: in.ExternalReference,
		Status:            StatusPending,
		CreatedAt:         s.clock().UTC(),
	}
	if err := s.store.Create(ctx, r); err != nil {
		return Request{}, err
	}
	return r, nil
}

type WithdrawalInput struct {
	Amount         int64          `json:"amount"`
	Method         string         `json:"method"`
	PaymentDetails PaymentDetails `json:"payment_details"`
}

// SubmitWithdrawal reserves the full amount immediately and records a pending
// withdrawal. The fee is informational until payout: the ledger shows one
// withdrawal debit of the full amount.
func (s *Service) SubmitWithdrawal(ctx context.Context, ownerID string, in WithdrawalInput) (Request, error) {
	if in.Amount < s.fees.MinWithdrawal {
		return Request{}, fmt.Errorf("%w: minimum withdrawal is %s", ErrBelowMinimum, minorUnits(s.fees.MinWithdrawal))
	}
	if err := in.PaymentDetails.Validate(in.Method); err != nil {
		return Request{}, err
	}
	fee, net := s.fees.WithdrawalNet(in.Amount)
	if net <= 0 {
		return Request{}, fmt.Errorf("%w: amount does not cover the %s withdrawal fee", ErrBelowMinimum, minorUnits(fee))
	}
	w, err := s.wallets.Ensure(ctx, ownerID)
	if err != nil {
		return Request{}, err
	}
	r := Request{
		ID:             uuid.NewString(),
		Kind:           KindWithdrawal,
		WalletID:       w.ID,
		Amount:         in.Amount,
		Fee:            fee,
		NetAmount:      net,
		Method:         in.Method,
		PaymentDetails: in.PaymentDetails,
		Status:         StatusPending,
		CreatedAt:      s.clock().UTC(),
	}
	return s.createReserved(ctx, r, wallet.EntryTypeWithdrawal, "withdrawal request")
}

// SubmitVerification charges the fixed verification fee up front (escrow
// semantics): refunded if rejected, kept if approved.
func (s *Service) SubmitVerification(ctx context.Context, ownerID string) (Request, error) {
	w, err := s.wallets.Ensure(ctx, ownerID)
	if err != nil {
		return Request{}, err
	}
	r := Request{
		ID:        uuid.NewString(),
		Kind:      KindVerification,
		WalletID:  w.ID,
		Amount:    s.fees.VerificationFee,
		Status:    StatusPending,
		CreatedAt: s.clock().UTC(),
	}
	return s.createReserved(ctx, r, wallet.EntryTypeFee, "verification fee")
}

type PayoutInput struct {
	Amount         int64          `json:"amount"`
	Method         string         `json:"method"`
	PaymentDetails PaymentDetails `json:"payment_details"`
}

// SubmitPayout reserves a seller payout. Earlier pending payouts already
// debited the balance, so the overdraft check on this debit is exactly the
// "available balance" rule: a payout exceeding balance minus prior
// reservations fails with ErrInsufficientBalance.
func (s *Service) SubmitPayout(ctx context.Context, ownerID string, in PayoutInput) (Request, error) {
	if in.Amount <= 0 {
		return Request{}, wallet.ErrInvalidAmount
	}
	if err := in.PaymentDetails.Validate(in.Method); err != nil {
		return Request{}, err
	}
	w, err := s.wallets.Ensure(ctx, ownerID)
	if err != nil {
		return Request{}, err
	}
	r := Request{
		ID:             uuid.NewString(),
		Kind:           KindPayout,
		WalletID:       w.ID,
		Amount:         in.Amount,
		Method:         in.Method,
		PaymentDetails: in.PaymentDetails,
		Status:         StatusPending,
		CreatedAt:      s.clock().UTC(),
	}
	return s.createReserved(ctx, r, wallet.EntryTypePayout, "payout request")
}

// createReserved debits the reservation, then persists the request. The debit
// carries the request id as reference and an idempotency key, so a duplicate
// submit of the same request id cannot double-reserve.
func (s *Service) createReserved(ctx context.Context, r Request, entryType wallet.EntryType, desc string) (Request, error) {
	_, _, err := s.wallets.Debit(ctx, r.WalletID, r.Amount, wallet.Posting{
		Type:           entryType,
		Description:    desc,
		ReferenceType:  referenceType,
		ReferenceID:    r.ID,
		IdempotencyKey: "reserve:" + r.ID,
	})
	if err != nil {
		return Request{}, err
	}
	if err := s.store.Create(ctx, r); err != nil {
		// Unwind the reservation; the request record never existed.
		_, _, refundErr := s.wallets.Refund(ctx, r.WalletID, r.Amount, wallet.Posting{
			Description:   "reservation unwind: request not recorded",
			ReferenceType: referenceType,
			ReferenceID:   r.ID,
		})
		if refundErr != nil {
			return Request{}, fmt.Errorf("request create failed (%v), refund failed: %w", err, refundErr)
		}
		return Request{}, err
	}
	return r, nil
}

func (s *Service) Get(ctx context.Context, id string) (Request, error) {
	return s.store.Get(ctx, id)
}

func (s *Service) ListByWallet(ctx context.Context, walletID string, kind Kind, limit, offset int) ([]Request, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.store.ListByWallet(ctx, walletID, kind, limit, offset)
}

// Cancel lets the owner withdraw a pending withdrawal or payout request,
// refunding the reserved amount in full.
func (s *Service) Cancel(ctx context.Context, callerID, requestID string) (Request, error) {
	r, err := s.store.Get(ctx, requestID)
	if err != nil {
		return Request{}, err
	}
	w, err := s.wallets.Get(ctx, r.WalletID)
	if err != nil {
		return Request{}, err
	}
	if w.OwnerID != callerID {
		return Request{}, ErrNotOwner
	}
	if !r.Kind.cancellable() {
		return Request{}, ErrInvalidTransition
	}
	out, err := s.store.Transition(ctx, r.ID, StatusPending, StatusCancelled, Decision{DecidedAt: s.clock().UTC()})
	if err != nil {
		return Request{}, err
	}
	if err := s.refundReservation(ctx, out, "cancelled by owner"); err != nil {
		// Put the request back so the owner can retry; the reservation stays
		// held until the refund lands.
		if _, revertErr := s.store.Transition(ctx, r.ID, StatusCancelled, StatusPending, Decision{}); revertErr != nil {
			return Request{}, fmt.Errorf("refund failed (%v), revert failed: %w", err, revertErr)
		}
		return Request{}, err
	}
	return out, nil
}

// Approve applies the admin approval for the request's kind.
// Deposits credit the wallet; reserved kinds have no balance effect.
func (s *Service) Approve(ctx context.Context, adminID, adminRole, requestID, notes string) (Request, error) {
	r, err := s.store.Get(ctx, requestID)
	if err != nil {
		return Request{}, err
	}

	to := StatusApproved
	if r.Kind == KindWithdrawal {
		to = StatusProcessing
	}
	out, err := s.store.Transition(ctx, r.ID, StatusPending, to, Decision{AdminNotes: notes, DecidedAt: s.clock().UTC()})
	if err != nil {
		return Request{}, err
	}

	if r.Kind == KindDeposit {
		_, _, err := s.wallets.Credit(ctx, r.WalletID, r.Amount, wallet.Posting{
			Type:           wallet.EntryTypeDeposit,
			Description:    "deposit approved",
			ReferenceType:  referenceType,
			ReferenceID:    r.ID,
			IdempotencyKey: "deposit:" + r.ID,
		})
		if err != nil {
			// Put the request back so the admin can retry once the wallet
			// is mutable again (e.g. after an unfreeze).
			if _, revertErr := s.store.Transition(ctx, r.ID, to, StatusPending, Decision{}); revertErr != nil {
				return Request{}, fmt.Errorf("deposit credit failed (%v), revert failed: %w", err, revertErr)
			}
			return Request{}, err
		}
	}

	s.logDecision(ctx, adminID, adminRole, out, "approved")
	return out, nil
}

// Reject declines the request. Reserved kinds get the exact reserved amount
// refunded; deposits simply never credit. Withdrawals may also be rejected
// from processing when the outbound transfer fails.
func (s *Service) Reject(ctx context.Context, adminID, adminRole, requestID, reason string) (Request, error) {
	r, err := s.store.Get(ctx, requestID)
	if err != nil {
		return Request{}, err
	}

	d := Decision{RejectReason: reason, DecidedAt: s.clock().UTC()}
	from := StatusPending
	out, err := s.store.Transition(ctx, r.ID, from, StatusRejected, d)
	if err != nil && r.Kind == KindWithdrawal {
		from = StatusProcessing
		out, err = s.store.Transition(ctx, r.ID, from, StatusRejected, d)
	}
	if err != nil {
		return Request{}, err
	}

	if r.Kind.reserved() {
		if err := s.refundReservation(ctx, out, "rejected: "+reason); err != nil {
			// Put the request back so the admin can retry; the reservation
			// stays held until the refund lands.
			if _, revertErr := s.store.Transition(ctx, r.ID, StatusRejected, from, Decision{}); revertErr != nil {
				return Request{}, fmt.Errorf("refund failed (%v), revert failed: %w", err, revertErr)
			}
			return Request{}, err
		}
	}

	s.logDecision(ctx, adminID, adminRole, out, "rejected")
	return out, nil
}

// Complete marks a processing withdrawal as paid out. No balance effect; the
// money left at reservation time.
func (s *Service) Complete(ctx context.Context, adminID, adminRole, requestID string) (Request, error) {
	r, err := s.store.Get(ctx, requestID)
	if err != nil {
		return Request{}, err
	}
	if r.Kind != KindWithdrawal {
		return Request{}, ErrInvalidTransition
	}
	out, err := s.store.Transition(ctx, r.ID, StatusProcessing, StatusCompleted, Decision{DecidedAt: s.clock().UTC()})
	if err != nil {
		return Request{}, err
	}
	s.logDecision(ctx, adminID, adminRole, out, "completed")
	return out, nil
}

// refundReservation returns the full reserved amount. It uses the refund path
// that bypasses the frozen check: the reservation predates any freeze, and a
// freeze must not strand escrowed funds. The idempotency key guards against a
// double refund if a transition retry slips through.
func (s *Service) refundReservation(ctx context.Context, r Request, desc string) error {
	_, _, err := s.wallets.Refund(ctx, r.WalletID, r.Amount, wallet.Posting{
		Description:    desc,
		ReferenceType:  referenceType,
		ReferenceID:    r.ID,
		IdempotencyKey: "refund:" + r.ID,
	})
	return err
}

func (s *Service) logDecision(ctx context.Context, adminID, adminRole string, r Request, verb string) {
	if s.audit == nil {
		return
	}
	// Best-effort; never block money flow on audit failures.
	_ = s.audit.LogRequestDecision(ctx, adminID, adminRole, r.WalletID, r.ID, string(r.Kind)+" "+verb)
}

// minorUnits renders cents as a dollar string for user-facing constraint
// messages ("minimum withdrawal is 10.00").
func minorUnits(v int64) string {
	return fmt.Sprintf("%d.%02d", v/100, v%100)
}
