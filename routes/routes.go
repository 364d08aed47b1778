package routes

import (
	"github.com/quickbid/quickbid/auction"
	"github.com/quickbid/quickbid/controllers/admin"
	"github.com/quickbid/quickbid/controllers/bid"
	"github.com/quickbid/quickbid/controllers/escrow"
	"github.com/quickbid/quickbid/controllers/settlement"
	"github.com/quickbid/quickbid/controllers/wallet"
	"github.com/quickbid/quickbid/controllers/webhook"
	"github.com/quickbid/quickbid/middlewares"
	"github.com/quickbid/quickbid/realtime"

	"github.com/gofiber/fiber/v2"
)

func Setup(app *fiber.App, engine *auction.Engine, hub *realtime.Hub) {
	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})

	// bidding
	app.Post("/auctions/:id/bids", bid.Place(engine))
	app.Get("/auctions/:id/state", bid.State(engine))
	app.Get("/ws/auctions/:id", realtime.Upgrade, realtime.Handler(hub, engine))

	// admin lifecycle
	adminroutes := app.Group("/admin", middlewares.AdminAuth())
	adminroutes.Post("/auctions/:id/start", admin.Start(engine))
	adminroutes.Post("/auctions/:id/pause", admin.Pause(engine))
	adminroutes.Post("/auctions/:id/end", admin.End(engine))
	adminroutes.Post("/settlement/run", settlement.Run)

	// escrow
	app.Post("/escrow/fund", escrow.Fund)
	app.Post("/escrow/release", escrow.Release)
	app.Post("/escrow/refund", escrow.Refund)

	// wallet compat
	app.Post("/wallet/balance", wallet.CheckBalance)

	// payment gateway
	gateway := app.Group("/webhook", middlewares.GatewaySignature())
	gateway.Post("/gateway", webhook.Gateway)
}
