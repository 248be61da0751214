package httpapi

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"marketplace-ledger/internal/listings"
	"marketplace-ledger/internal/requests"
	"marketplace-ledger/internal/settlement"
	"marketplace-ledger/internal/wallet"

	"github.com/gin-gonic/gin"
)

func statusFor(t *testing.T, err error) int {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/x", nil)
	writeError(c, err)
	return w.Code
}

func TestErrorMapping(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{wallet.ErrInvalidAmount, http.StatusBadRequest},
		{requests.ErrBelowMinimum, http.StatusBadRequest},
		{requests.ErrInvalidPaymentDetails, http.StatusBadRequest},
		{listings.ErrIncompleteApproval, http.StatusBadRequest},
		{listings.ErrReasonRequired, http.StatusBadRequest},
		{wallet.ErrInsufficientBalance, http.StatusPaymentRequired},
		{wallet.ErrFrozenWallet, http.StatusForbidden},
		{requests.ErrNotOwner, http.StatusForbidden},
		{wallet.ErrNotFound, http.StatusNotFound},
		{requests.ErrNotFound, http.StatusNotFound},
		{listings.ErrNotFound, http.StatusNotFound},
		{requests.ErrInvalidTransition, http.StatusConflict},
		{settlement.ErrAlreadyPurchased, http.StatusConflict},
		{settlement.ErrListingUnavailable, http.StatusConflict},
		{settlement.ErrOwnListing, http.StatusConflict},
		{errors.New("pg connection reset"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := statusFor(t, tc.err); got != tc.want {
			t.Fatalf("%v -> %d, want %d", tc.err, got, tc.want)
		}
	}
}

func TestErrorMappingWrappedErrors(t *testing.T) {
	// Services wrap sentinel errors with detail; mapping must follow the chain.
	wrapped := errors.Join(errors.New("minimum withdrawal is 10.00"), requests.ErrBelowMinimum)
	if got := statusFor(t, wrapped); got != http.StatusBadRequest {
		t.Fatalf("wrapped sentinel -> %d", got)
	}
}

func TestSubmissionCapDisabledWithoutRedis(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := Handlers{}
	r := gin.New()
	r.POST("/x", h.SubmissionCap(), func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/x", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
}
