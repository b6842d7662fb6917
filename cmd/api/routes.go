package main

import (
	"log/slog"
	"net/http"

	"github.com/guildhq/backend/internal/handlers"
	"github.com/guildhq/backend/internal/middleware"
	"github.com/guildhq/backend/internal/services"
)

// RegisterRoutes adds the /v1/ endpoints to the given mux. Every route runs
// behind the member-identity middleware; the gateway upstream owns
// authentication.
func RegisterRoutes(
	mux *http.ServeMux,
	wallet *services.WalletService,
	bounties *services.BountyService,
	shop *services.ShopService,
	jobs *services.JobService,
	logger *slog.Logger,
) {
	wh := &handlers.WalletHandler{Wallet: wallet, Logger: logger}
	bh := &handlers.BountyHandler{Bounties: bounties, Logger: logger}
	sh := &handlers.ShopHandler{Shop: shop, Logger: logger}
	jh := &handlers.JobHandler{Jobs: jobs, Logger: logger}

	member := func(h http.HandlerFunc) http.Handler {
		return middleware.MemberID(h)
	}

	mux.Handle("GET /v1/wallet", member(wh.GetBalance))
	mux.Handle("GET /v1/wallet/history", member(wh.GetHistory))
	mux.Handle("POST /v1/transfers", member(wh.Transfer))

	mux.Handle("POST /v1/bounties", member(bh.Create))
	mux.Handle("GET /v1/bounties", member(bh.List))
	mux.Handle("GET /v1/bounties/{id}", member(bh.Get))
	mux.Handle("POST /v1/bounties/{id}/claim", member(bh.Claim))
	mux.Handle("POST /v1/bounties/{id}/give-up", member(bh.GiveUp))
	mux.Handle("POST /v1/bounties/{id}/complete", member(bh.Complete))
	mux.Handle("POST /v1/bounties/{id}/cancel", member(bh.Cancel))

	mux.Handle("GET /v1/shop/items", member(sh.Items))
	mux.Handle("GET /v1/shop/items/{id}", member(sh.Item))
	mux.Handle("POST /v1/shop/purchases", member(sh.Buy))
	mux.Handle("GET /v1/inventory", member(sh.Inventory))
	mux.Handle("POST /v1/inventory/remove", member(sh.Remove))

	mux.Handle("GET /v1/jobs", member(jh.List))
	mux.Handle("GET /v1/jobs/daily", member(jh.Daily))
	mux.Handle("GET /v1/jobs/mine", member(jh.Mine))
	mux.Handle("GET /v1/jobs/{id}", member(jh.Get))
	mux.Handle("POST /v1/jobs/{id}/assign", member(jh.Assign))
	mux.Handle("POST /v1/jobs/assign-random", member(jh.AssignRandom))
	mux.Handle("POST /v1/jobs/quit", member(jh.Quit))
	mux.Handle("POST /v1/jobs/complete", member(jh.Complete))
}
