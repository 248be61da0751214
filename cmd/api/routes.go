package main

import (
	"marketplace-ledger/internal/httpapi"
	"marketplace-ledger/internal/rbac"
	"marketplace-ledger/internal/requests"

	"github.com/gin-gonic/gin"
)

// registerRoutes wires HTTP routes to handlers.
// Keep this file free of business logic. Handlers should delegate to internal modules.
func registerRoutes(r *gin.Engine, h httpapi.Handlers, authMW gin.HandlerFunc) {
	// public
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	v1 := r.Group("/v1")

	// AUTH routes (token issuance).
	v1.POST("/auth/login", h.Login)

	// Everything below requires a verified access token.
	v1.Use(authMW)

	submitCap := h.SubmissionCap()

	// WALLET routes (any authenticated role).
	walletGroup := v1.Group("/wallet")
	{
		walletGroup.GET("", h.WalletSummary)
		walletGroup.GET("/ledger", h.WalletLedger)
		walletGroup.GET("/requests", h.ListMyRequests)
		walletGroup.POST("/deposits", submitCap, h.SubmitDeposit)
		walletGroup.POST("/withdrawals", submitCap, h.SubmitWithdrawal)
		walletGroup.POST("/withdrawals/:id/cancel", h.CancelRequest)
	}

	// VERIFICATION (sellers verify their account; fee is escrowed).
	v1.POST("/verification", rbac.RequireAnyRole(rbac.RoleBuyer, rbac.RoleSeller), submitCap, h.SubmitVerification)

	// SELLER routes
	seller := v1.Group("/seller")
	seller.Use(rbac.RequireAnyRole(rbac.RoleSeller))
	{
		seller.POST("/payouts", submitCap, h.SubmitPayout)
		seller.POST("/payouts/:id/cancel", h.CancelRequest)
		seller.GET("/listings", h.ListMyListings)
	}
	v1.POST("/listings", rbac.RequireAnyRole(rbac.RoleSeller), h.SubmitListing)

	// PURCHASE routes
	v1.POST("/purchases/:listing_id", rbac.RequireAnyRole(rbac.RoleBuyer, rbac.RoleSeller), h.Purchase)
	v1.GET("/purchases", h.ListMyPurchases)

	// ADMIN routes
	admin := v1.Group("/admin")
	admin.Use(rbac.RequireAdmin())
	{
		admin.POST("/deposits/:id/approve", h.ApproveRequest(requests.KindDeposit))
		admin.POST("/deposits/:id/reject", h.RejectRequest(requests.KindDeposit))

		admin.POST("/withdrawals/:id/approve", h.ApproveRequest(requests.KindWithdrawal))
		admin.POST("/withdrawals/:id/reject", h.RejectRequest(requests.KindWithdrawal))
		admin.POST("/withdrawals/:id/complete", h.CompleteWithdrawal)

		admin.POST("/verifications/:id/approve", h.ApproveRequest(requests.KindVerification))
		admin.POST("/verifications/:id/reject", h.RejectRequest(requests.KindVerification))

		admin.POST("/payouts/:id/approve", h.ApproveRequest(requests.KindPayout))
		admin.POST("/payouts/:id/reject", h.RejectRequest(requests.KindPayout))

		admin.POST("/listings/:id/approve", h.ApproveListing)
		admin.POST("/listings/:id/reject", h.RejectListing)

		admin.POST("/wallets/:id/freeze", h.FreezeWallet)
		admin.POST("/wallets/:id/unfreeze", h.UnfreezeWallet)

		admin.GET("/stats", h.PlatformStats)
	}
}
