package httpapi

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"marketplace-ledger/internal/audit"
	"marketplace-ledger/internal/auth"
	"marketplace-ledger/internal/listings"
	"marketplace-ledger/internal/reporting"
	"marketplace-ledger/internal/requests"
	"marketplace-ledger/internal/settlement"
	"marketplace-ledger/internal/wallet"
	"marketplace-ledger/pkg/logger"
	"marketplace-ledger/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// Handlers groups HTTP handlers for dependency injection.
// Keep these thin: parse/validate input, call internal services, return JSON.
type Handlers struct {
	Auth       *auth.Manager
	Wallets    *wallet.Service
	Requests   *requests.Service
	Listings   *listings.Service
	Settlement *settlement.Service
	Reports    *reporting.Service
	Audit      *audit.Service

	// Redis backs the per-user submission cap. Nil disables the cap.
	Redis        *redis.Client
	SubmitCap    int
	SubmitCapTTL time.Duration
}

// writeError maps domain errors onto HTTP statuses. Unknown errors are logged
// and hidden behind a generic 500: internal failure details never reach the
// client.
func writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, wallet.ErrInvalidAmount),
		errors.Is(err, requests.ErrBelowMinimum),
		errors.Is(err, requests.ErrInvalidPaymentDetails),
		errors.Is(err, listings.ErrInvalidPrice),
		errors.Is(err, listings.ErrIncompleteApproval),
		errors.Is(err, listings.ErrReasonRequired):
		status = http.StatusBadRequest
	case errors.Is(err, wallet.ErrInsufficientBalance):
		status = http.StatusPaymentRequired
	case errors.Is(err, wallet.ErrFrozenWallet),
		errors.Is(err, requests.ErrNotOwner):
		status = http.StatusForbidden
	case errors.Is(err, wallet.ErrNotFound),
		errors.Is(err, requests.ErrNotFound),
		errors.Is(err, listings.ErrNotFound),
		errors.Is(err, settlement.ErrReceiptNotFound):
		status = http.StatusNotFound
	case errors.Is(err, requests.ErrInvalidTransition),
		errors.Is(err, listings.ErrInvalidTransition),
		errors.Is(err, settlement.ErrAlreadyPurchased),
		errors.Is(err, settlement.ErrListingUnavailable),
		errors.Is(err, settlement.ErrOwnListing),
		errors.Is(err, wallet.ErrDuplicateEntry):
		status = http.StatusConflict
	}

	if status == http.StatusInternalServerError {
		logger.FromGin(c).Error("request failed", "err", err)
		c.AbortWithStatusJSON(status, gin.H{"error": "operation failed"})
		return
	}
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}

func callerID(c *gin.Context) (string, bool) {
	uid, err := auth.UserID(c.Request.Context())
	if err != nil || uid == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "identity required"})
		return "", false
	}
	return uid, true
}

func adminIdentity(c *gin.Context) (string, string, bool) {
	uid, ok := callerID(c)
	if !ok {
		return "", "", false
	}
	role, _ := auth.Role(c.Request.Context())
	return uid, role, true
}

func pageParams(c *gin.Context) (limit, offset int) {
	limit, _ = strconv.Atoi(c.Query("limit"))
	offset, _ = strconv.Atoi(c.Query("offset"))
	return limit, offset
}

// SubmissionCap bounds the number of in-flight money request submissions per
// user. Fails open when Redis is unavailable: the cap is load protection, not
// a money invariant.
func (h Handlers) SubmissionCap() gin.HandlerFunc {
	limit := h.SubmitCap
	if limit <= 0 {
		limit = 3
	}
	ttl := h.SubmitCapTTL
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return func(c *gin.Context) {
		if h.Redis == nil {
			c.Next()
			return
		}
		uid, ok := callerID(c)
		if !ok {
			return
		}
		key := "submitcap:" + uid
		acquired, err := utils.AcquireConcurrencyCap(c.Request.Context(), h.Redis, key, limit, ttl)
		if err != nil {
			logger.FromGin(c).Warn("submission cap unavailable", "err", err)
			c.Next()
			return
		}
		if !acquired {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many in-flight submissions"})
			return
		}
		defer func() {
			_ = utils.ReleaseConcurrencyCap(c.Request.Context(), h.Redis, key)
		}()
		c.Next()
	}
}

// --- Auth ---

type loginRequest struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
}

// Login issues a JWT token pair.
//
// NOTE: This is a skeleton-only endpoint. Real systems must validate credentials.
func (h Handlers) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if req.UserID == "" || req.Role == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "user_id, role required"})
		return
	}
	pair, err := h.Auth.IssuePair(time.Now(), req.UserID, req.Role)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "token issuance failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"access_token": pair.AccessToken, "refresh_token": pair.RefreshToken})
}

// --- Wallet ---

func (h Handlers) WalletSummary(c *gin.Context) {
	uid, ok := callerID(c)
	if !ok {
		return
	}
	out, err := h.Reports.WalletSummary(c.Request.Context(), uid)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h Handlers) WalletLedger(c *gin.Context) {
	uid, ok := callerID(c)
	if !ok {
		return
	}
	w, err := h.Wallets.Ensure(c.Request.Context(), uid)
	if err != nil {
		writeError(c, err)
		return
	}
	limit, offset := pageParams(c)
	entries, err := h.Wallets.History(c.Request.Context(), w.ID, limit, offset)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"wallet_id": w.ID, "entries": entries})
}

// --- Money requests ---

func (h Handlers) SubmitDeposit(c *gin.Context) {
	uid, ok := callerID(c)
	if !ok {
		return
	}
	var in requests.DepositInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	r, err := h.Requests.SubmitDeposit(c.Request.Context(), uid, in)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, r)
}

func (h Handlers) SubmitWithdrawal(c *gin.Context) {
	uid, ok := callerID(c)
	if !ok {
		return
	}
	var in requests.WithdrawalInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	r, err := h.Requests.SubmitWithdrawal(c.Request.Context(), uid, in)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, r)
}

func (h Handlers) SubmitVerification(c *gin.Context) {
	uid, ok := callerID(c)
	if !ok {
		return
	}
	r, err := h.Requests.SubmitVerification(c.Request.Context(), uid)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, r)
}

func (h Handlers) SubmitPayout(c *gin.Context) {
	uid, ok := callerID(c)
	if !ok {
		return
	}
	var in requests.PayoutInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	r, err := h.Requests.SubmitPayout(c.Request.Context(), uid, in)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, r)
}

func (h Handlers) CancelRequest(c *gin.Context) {
	uid, ok := callerID(c)
	if !ok {
		return
	}
	r, err := h.Requests.Cancel(c.Request.Context(), uid, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

func (h Handlers) ListMyRequests(c *gin.Context) {
	uid, ok := callerID(c)
	if !ok {
		return
	}
	w, err := h.Wallets.Ensure(c.Request.Context(), uid)
	if err != nil {
		writeError(c, err)
		return
	}
	limit, offset := pageParams(c)
	out, err := h.Requests.ListByWallet(c.Request.Context(), w.ID, requests.Kind(c.Query("kind")), limit, offset)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"requests": out})
}

// --- Listings ---

func (h Handlers) SubmitListing(c *gin.Context) {
	uid, ok := callerID(c)
	if !ok {
		return
	}
	var in listings.SubmitInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	l, err := h.Listings.Submit(c.Request.Context(), uid, in)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, l)
}

func (h Handlers) ListMyListings(c *gin.Context) {
	uid, ok := callerID(c)
	if !ok {
		return
	}
	w, err := h.Wallets.Ensure(c.Request.Context(), uid)
	if err != nil {
		writeError(c, err)
		return
	}
	limit, offset := pageParams(c)
	out, err := h.Listings.ListBySeller(c.Request.Context(), w.ID, limit, offset)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"listings": out})
}

// --- Purchases ---

func (h Handlers) Purchase(c *gin.Context) {
	uid, ok := callerID(c)
	if !ok {
		return
	}
	receipt, err := h.Settlement.Purchase(c.Request.Context(), uid, c.Param("listing_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, receipt)
}

func (h Handlers) ListMyPurchases(c *gin.Context) {
	uid, ok := callerID(c)
	if !ok {
		return
	}
	w, err := h.Wallets.Ensure(c.Request.Context(), uid)
	if err != nil {
		writeError(c, err)
		return
	}
	limit, offset := pageParams(c)
	out, err := h.Settlement.ListByBuyer(c.Request.Context(), w.ID, limit, offset)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"purchases": out})
}

// --- Admin: money requests ---

type decisionRequest struct {
	Reason string `json:"reason"`
	Notes  string `json:"notes"`
}

// requestOfKind guards the per-kind admin routes: acting on a deposit through
// the withdrawals route is a 404, not a silent cross-kind decision.
func (h Handlers) requestOfKind(c *gin.Context, kind requests.Kind) (requests.Request, bool) {
	r, err := h.Requests.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return requests.Request{}, false
	}
	if r.Kind != kind {
		writeError(c, requests.ErrNotFound)
		return requests.Request{}, false
	}
	return r, true
}

func (h Handlers) ApproveRequest(kind requests.Kind) gin.HandlerFunc {
	return func(c *gin.Context) {
		adminID, adminRole, ok := adminIdentity(c)
		if !ok {
			return
		}
		r, ok := h.requestOfKind(c, kind)
		if !ok {
			return
		}
		var body decisionRequest
		_ = c.ShouldBindJSON(&body) // body optional
		out, err := h.Requests.Approve(c.Request.Context(), adminID, adminRole, r.ID, body.Notes)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, out)
	}
}

func (h Handlers) RejectRequest(kind requests.Kind) gin.HandlerFunc {
	return func(c *gin.Context) {
		adminID, adminRole, ok := adminIdentity(c)
		if !ok {
			return
		}
		r, ok := h.requestOfKind(c, kind)
		if !ok {
			return
		}
		var body decisionRequest
		_ = c.ShouldBindJSON(&body)
		out, err := h.Requests.Reject(c.Request.Context(), adminID, adminRole, r.ID, body.Reason)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, out)
	}
}

func (h Handlers) CompleteWithdrawal(c *gin.Context) {
	adminID, adminRole, ok := adminIdentity(c)
	if !ok {
		return
	}
	out, err := h.Requests.Complete(c.Request.Context(), adminID, adminRole, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// --- Admin: listings ---

func (h Handlers) ApproveListing(c *gin.Context) {
	adminID, adminRole, ok := adminIdentity(c)
	if !ok {
		return
	}
	var in listings.ApprovalInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	l, err := h.Listings.Approve(c.Request.Context(), adminID, adminRole, c.Param("id"), in)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, l)
}

func (h Handlers) RejectListing(c *gin.Context) {
	adminID, adminRole, ok := adminIdentity(c)
	if !ok {
		return
	}
	var body decisionRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	l, err := h.Listings.Reject(c.Request.Context(), adminID, adminRole, c.Param("id"), body.Reason)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, l)
}

// --- Admin: wallets ---

type freezeRequest struct {
	Reason string `json:"reason"`
}

func (h Handlers) FreezeWallet(c *gin.Context) {
	adminID, adminRole, ok := adminIdentity(c)
	if !ok {
		return
	}
	var body freezeRequest
	_ = c.ShouldBindJSON(&body)
	w, err := h.Wallets.Freeze(c.Request.Context(), c.Param("id"), body.Reason)
	if err != nil {
		writeError(c, err)
		return
	}
	h.logFreeze(c, adminID, adminRole, w.ID, "frozen: "+body.Reason)
	c.JSON(http.StatusOK, w)
}

func (h Handlers) UnfreezeWallet(c *gin.Context) {
	adminID, adminRole, ok := adminIdentity(c)
	if !ok {
		return
	}
	w, err := h.Wallets.Unfreeze(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	h.logFreeze(c, adminID, adminRole, w.ID, "unfrozen")
	c.JSON(http.StatusOK, w)
}

func (h Handlers) logFreeze(c *gin.Context, adminID, adminRole, walletID, msg string) {
	if h.Audit == nil {
		return
	}
	// Best-effort; the freeze itself already succeeded.
	if err := h.Audit.LogFreeze(c.Request.Context(), adminID, adminRole, walletID, msg); err != nil {
		logger.FromGin(c).Warn("audit log failed", "err", err)
	}
}

// --- Admin: stats ---

func (h Handlers) PlatformStats(c *gin.Context) {
	out, err := h.Reports.Stats(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}
