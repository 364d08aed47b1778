package bid

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/quickbid/quickbid/auction"
	"github.com/quickbid/quickbid/database"
	"github.com/quickbid/quickbid/models"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupBidAPI(t *testing.T) (*fiber.App, *gorm.DB, *auction.Engine) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, database.Migrate(db))

	engine := auction.NewEngine(db, nil)
	app := fiber.New()
	app.Post("/auctions/:id/bids", Place(engine))
	app.Get("/auctions/:id/state", State(engine))
	return app, db, engine
}

func activeAuction(t *testing.T, db *gorm.DB, engine *auction.Engine) uint {
	t.Helper()
	a := models.Auction{
		SellerID:        "seller",
		AuctionType:     models.AuctionTypeTimed,
		StartPrice:      1000,
		DurationSeconds: 3600,
	}
	require.NoError(t, db.Create(&a).Error)
	_, err := engine.Start(a.ID, "admin")
	require.NoError(t, err)
	return a.ID
}

func postBid(t *testing.T, app *fiber.App, path, body string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest("POST", path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var parsed map[string]any
	require.NoError(t, json.Unmarshal(raw, &parsed))
	return resp.StatusCode, parsed
}

func TestPlaceBid_Accepted(t *testing.T) {
	app, db, engine := setupBidAPI(t)
	id := activeAuction(t, db, engine)

	status, body := postBid(t, app, "/auctions/1/bids", `{"bidder_id":"b1","bidder_name":"Bea","amount":1150}`)
	require.Equal(t, fiber.StatusOK, status)
	require.Equal(t, true, body["success"])

	data := body["data"].(map[string]any)
	state := data["auction_state"].(map[string]any)
	require.Equal(t, float64(1150), state["current_price"])

	var stored models.Auction
	require.NoError(t, db.First(&stored, id).Error)
	require.Equal(t, int64(1150), stored.CurrentPrice)
}

func TestPlaceBid_RejectedWithReason(t *testing.T) {
	app, db, engine := setupBidAPI(t)
	activeAuction(t, db, engine)

	status, body := postBid(t, app, "/auctions/1/bids", `{"bidder_id":"b1","amount":1050}`)
	require.Equal(t, fiber.StatusConflict, status)
	require.Equal(t, false, body["success"])
	require.Equal(t, "bid_increment_too_small", body["reason"])
}

func TestPlaceBid_UnknownAuction(t *testing.T) {
	app, _, _ := setupBidAPI(t)

	status, body := postBid(t, app, "/auctions/99/bids", `{"bidder_id":"b1","amount":1150}`)
	require.Equal(t, fiber.StatusNotFound, status)
	require.Equal(t, "auction_not_active", body["reason"])
}

func TestPlaceBid_BadRequests(t *testing.T) {
	app, db, engine := setupBidAPI(t)
	activeAuction(t, db, engine)

	status, _ := postBid(t, app, "/auctions/abc/bids", `{"bidder_id":"b1","amount":1150}`)
	require.Equal(t, fiber.StatusBadRequest, status)

	status, _ = postBid(t, app, "/auctions/1/bids", `{"amount":1150}`)
	require.Equal(t, fiber.StatusBadRequest, status)

	status, _ = postBid(t, app, "/auctions/1/bids", `{"bidder_id":"b1","amount":-5}`)
	require.Equal(t, fiber.StatusBadRequest, status)

	status, _ = postBid(t, app, "/auctions/1/bids", `not json`)
	require.Equal(t, fiber.StatusBadRequest, status)
}

func TestAuctionState_Refetch(t *testing.T) {
	app, db, engine := setupBidAPI(t)
	id := activeAuction(t, db, engine)

	_, err := engine.PlaceBid(id, "b1", "Bea", 1150)
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/auctions/1/state", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var body map[string]any
	require.NoError(t, json.Unmarshal(raw, &body))

	state := body["data"].(map[string]any)
	require.Equal(t, float64(1150), state["current_price"])
	require.Equal(t, float64(1), state["total_bids"])
	require.Equal(t, "active", state["status"])
}
