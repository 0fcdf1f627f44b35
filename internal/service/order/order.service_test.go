package order

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/k-code-yt/retail-orders/internal/domain"
)

func TestCreateOrderReservesStock(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db)
	actor := createTestUser(t, db, domain.Role_Customer)
	p := createTestProduct(t, db, 100, 10.50)

	h, err := svc.CreateOrder(context.Background(), singleLineOrder(p, 3, 10.50), actor)
	require.NoError(t, err)

	assert.Equal(t, domain.Status_Placed, h.Status)
	assert.Regexp(t, regexp.MustCompile(fmt.Sprintf(`^%d\d{4}$`, time.Now().Year())), h.OrderNumber)
	require.NotNil(t, h.Owner)
	assert.Equal(t, actor.ID, h.Owner.ID)

	require.Len(t, h.Lines, 1)
	assert.Equal(t, p.PublicID, h.Lines[0].ProductPublicID)
	assert.Equal(t, 3, h.Lines[0].Quantity)
	assert.True(t, h.Lines[0].PricePerUnit.Equal(decimal.NewFromFloat(10.50)))

	require.Len(t, h.Events, 1)
	assert.Equal(t, domain.EventType_OrderPlaced, h.Events[0].EventType)

	assert.Equal(t, 97, productQuantity(t, db, p.ID))
}

func TestCreateOrderRejectsEmpty(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db)
	actor := createTestUser(t, db, domain.Role_Customer)

	_, err := svc.CreateOrder(context.Background(), &domain.NewOrder{
		ContactName:     "Test Buyer",
		ContactEmail:    "buyer@example.com",
		DeliveryAddress: "1 Test Street",
	}, actor)
	assert.Equal(t, domain.CodeEmptyOrder, domain.GetErrorCode(err))
}

func TestCreateOrderUnknownProduct(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db)
	actor := createTestUser(t, db, domain.Role_Customer)

	in := &domain.NewOrder{
		ContactName:     "Test Buyer",
		ContactEmail:    "buyer@example.com",
		DeliveryAddress: "1 Test Street",
		Lines: []domain.NewOrderLine{
			{ProductPublicID: "00000000-0000-0000-0000-000000000000", Quantity: 1, PricePerUnit: decimal.NewFromInt(1)},
		},
	}
	_, err := svc.CreateOrder(context.Background(), in, actor)
	assert.Equal(t, domain.CodeProductNotFound, domain.GetErrorCode(err))
}

func TestCreateOrderInsufficientStockRollsBack(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db)
	actor := createTestUser(t, db, domain.Role_Customer)
	p := createTestProduct(t, db, 2, 5.00)

	_, err := svc.CreateOrder(context.Background(), singleLineOrder(p, 3, 5.00), actor)
	assert.Equal(t, domain.CodeInsufficientStock, domain.GetErrorCode(err))

	// Whole transaction rolled back: stock untouched, no orphan order.
	assert.Equal(t, 2, productQuantity(t, db, p.ID))
	var count int
	require.NoError(t, db.Get(&count, "SELECT count(*) FROM orders WHERE user_id = $1", actor.ID))
	assert.Equal(t, 0, count)
}

func TestCreateOrderRejectsRetiredProduct(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db)
	actor := createTestUser(t, db, domain.Role_Customer)
	p := createTestProduct(t, db, 10, 5.00)

	_, err := db.Exec("UPDATE products SET status = 'retired' WHERE id = $1", p.ID)
	require.NoError(t, err)

	_, err = svc.CreateOrder(context.Background(), singleLineOrder(p, 1, 5.00), actor)
	assert.Equal(t, domain.CodeProductNotFound, domain.GetErrorCode(err))
}

func TestNoOversellUnderConcurrency(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db)
	actor := createTestUser(t, db, domain.Role_Customer)
	p := createTestProduct(t, db, 5, 9.99)

	const attempts = 6
	results := make(chan error, attempts)
	var wg sync.WaitGroup
	wg.Add(attempts)
	for range attempts {
		go func() {
			defer wg.Done()
			_, err := svc.CreateOrder(context.Background(), singleLineOrder(p, 5, 9.99), actor)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	successes, stockFailures := 0, 0
	for err := range results {
		switch {
		case err == nil:
			successes++
		case domain.GetErrorCode(err) == domain.CodeInsufficientStock:
			stockFailures++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, successes)
	assert.Equal(t, attempts-1, stockFailures)
	assert.Equal(t, 0, productQuantity(t, db, p.ID))
}

func TestShipOrderExactlyOnce(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db)
	actor := createTestUser(t, db, domain.Role_Customer)
	p := createTestProduct(t, db, 10, 3.00)

	h, err := svc.CreateOrder(context.Background(), singleLineOrder(p, 2, 3.00), actor)
	require.NoError(t, err)

	shipped, err := svc.ShipOrder(context.Background(), h.PublicID, &ShipDetails{
		TrackingNumber:   "TN-42",
		ShippingProvider: "UPS",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.Status_Shipped, shipped.Status)
	require.Len(t, shipped.Events, 2)
	assert.Equal(t, domain.EventType_OrderShipped, shipped.Events[1].EventType)

	var payload map[string]any
	require.NoError(t, json.Unmarshal(shipped.Events[1].Payload, &payload))
	assert.Equal(t, "TN-42", payload["tracking_number"])
	assert.Equal(t, "UPS", payload["shipping_provider"])

	// Second ship is rejected and performs no further mutation.
	_, err = svc.ShipOrder(context.Background(), h.PublicID, nil)
	assert.Equal(t, domain.CodeAlreadyShipped, domain.GetErrorCode(err))

	after, err := svc.GetOrder(context.Background(), h.PublicID, actor)
	require.NoError(t, err)
	assert.Len(t, after.Events, 2)
	assert.Equal(t, 8, productQuantity(t, db, p.ID))
}

func TestShipCancelledOrder(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db)
	actor := createTestUser(t, db, domain.Role_Customer)
	p := createTestProduct(t, db, 10, 3.00)

	h, err := svc.CreateOrder(context.Background(), singleLineOrder(p, 2, 3.00), actor)
	require.NoError(t, err)
	_, err = svc.CancelOrder(context.Background(), h.PublicID, nil)
	require.NoError(t, err)
	qtyAfterCancel := productQuantity(t, db, p.ID)

	_, err = svc.ShipOrder(context.Background(), h.PublicID, nil)
	assert.Equal(t, domain.CodeCannotShipCancelled, domain.GetErrorCode(err))

	// No new event, no stock movement.
	after, err := svc.GetOrder(context.Background(), h.PublicID, actor)
	require.NoError(t, err)
	assert.Len(t, after.Events, 2)
	assert.Equal(t, qtyAfterCancel, productQuantity(t, db, p.ID))
}

func TestCancelReplenishesAndRejectsSecondCancel(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db)
	actor := createTestUser(t, db, domain.Role_Customer)
	p := createTestProduct(t, db, 100, 10.50)

	h, err := svc.CreateOrder(context.Background(), singleLineOrder(p, 3, 10.50), actor)
	require.NoError(t, err)
	assert.Equal(t, 97, productQuantity(t, db, p.ID))

	cancelled, err := svc.CancelOrder(context.Background(), h.PublicID, nil)
	require.NoError(t, err)
	assert.Equal(t, domain.Status_Cancelled, cancelled.Status)
	assert.Equal(t, 100, productQuantity(t, db, p.ID))

	require.Len(t, cancelled.Events, 2)
	var payload map[string]any
	require.NoError(t, json.Unmarshal(cancelled.Events[1].Payload, &payload))
	assert.Equal(t, true, payload["stock_replenished"])

	// Idempotent rejection, not idempotent success.
	_, err = svc.CancelOrder(context.Background(), h.PublicID, nil)
	assert.Equal(t, domain.CodeAlreadyCancelled, domain.GetErrorCode(err))

	after, err := svc.GetOrder(context.Background(), h.PublicID, actor)
	require.NoError(t, err)
	cancelEvents := 0
	for _, e := range after.Events {
		if e.EventType == domain.EventType_OrderCancelled {
			cancelEvents++
		}
	}
	assert.Equal(t, 1, cancelEvents)
	assert.Equal(t, 100, productQuantity(t, db, p.ID))
}

func TestCancelShippedOrderRequiresReason(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db)
	actor := createTestUser(t, db, domain.Role_Customer)
	p := createTestProduct(t, db, 50, 7.25)

	h, err := svc.CreateOrder(context.Background(), singleLineOrder(p, 4, 7.25), actor)
	require.NoError(t, err)
	_, err = svc.ShipOrder(context.Background(), h.PublicID, nil)
	require.NoError(t, err)

	_, err = svc.CancelOrder(context.Background(), h.PublicID, nil)
	assert.Equal(t, domain.CodeShippedCancelNeedsReason, domain.GetErrorCode(err))
	assert.Equal(t, 46, productQuantity(t, db, p.ID))

	cancelled, err := svc.CancelOrder(context.Background(), h.PublicID, &CancelDetails{Reason: "damaged"})
	require.NoError(t, err)
	assert.Equal(t, 50, productQuantity(t, db, p.ID))

	var payload map[string]any
	require.NoError(t, json.Unmarshal(cancelled.Events[len(cancelled.Events)-1].Payload, &payload))
	assert.Equal(t, "damaged", payload["reason"])
	assert.Equal(t, true, payload["stock_replenished"])
}

func TestCancelDeliveredOrderDoesNotReplenish(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db)
	actor := createTestUser(t, db, domain.Role_Customer)
	p := createTestProduct(t, db, 20, 1.00)

	h, err := svc.CreateOrder(context.Background(), singleLineOrder(p, 5, 1.00), actor)
	require.NoError(t, err)

	// Delivered is produced by a fulfilment flow outside this core.
	_, err = db.Exec("UPDATE orders SET status = 'delivered' WHERE id = $1", h.ID)
	require.NoError(t, err)

	cancelled, err := svc.CancelOrder(context.Background(), h.PublicID, &CancelDetails{Reason: "fraud"})
	require.NoError(t, err)
	assert.Equal(t, domain.Status_Cancelled, cancelled.Status)
	assert.Equal(t, 15, productQuantity(t, db, p.ID))

	var payload map[string]any
	require.NoError(t, json.Unmarshal(cancelled.Events[len(cancelled.Events)-1].Payload, &payload))
	assert.Equal(t, false, payload["stock_replenished"])
}

func TestEventOrdering(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db)
	actor := createTestUser(t, db, domain.Role_Customer)
	p := createTestProduct(t, db, 30, 2.00)

	h, err := svc.CreateOrder(context.Background(), singleLineOrder(p, 1, 2.00), actor)
	require.NoError(t, err)
	_, err = svc.ShipOrder(context.Background(), h.PublicID, nil)
	require.NoError(t, err)
	_, err = svc.CancelOrder(context.Background(), h.PublicID, &CancelDetails{Reason: "damaged"})
	require.NoError(t, err)

	after, err := svc.GetOrder(context.Background(), h.PublicID, actor)
	require.NoError(t, err)
	require.Len(t, after.Events, 3)
	assert.Equal(t, domain.EventType_OrderPlaced, after.Events[0].EventType)
	assert.Equal(t, domain.EventType_OrderShipped, after.Events[1].EventType)
	assert.Equal(t, domain.EventType_OrderCancelled, after.Events[2].EventType)
	assert.False(t, after.Events[0].OccurredAt.After(after.Events[1].OccurredAt))
	assert.False(t, after.Events[1].OccurredAt.After(after.Events[2].OccurredAt))
}

func TestGetOrderOwnership(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db)
	owner := createTestUser(t, db, domain.Role_Customer)
	stranger := createTestUser(t, db, domain.Role_Customer)
	admin := createTestUser(t, db, domain.Role_Admin)
	p := createTestProduct(t, db, 10, 4.00)

	h, err := svc.CreateOrder(context.Background(), singleLineOrder(p, 1, 4.00), owner)
	require.NoError(t, err)

	_, err = svc.GetOrder(context.Background(), h.PublicID, owner)
	assert.NoError(t, err)

	_, err = svc.GetOrder(context.Background(), h.PublicID, admin)
	assert.NoError(t, err)

	// Distinguishable from not-found internally; the HTTP layer may still
	// render both as 404.
	_, err = svc.GetOrder(context.Background(), h.PublicID, stranger)
	assert.Equal(t, domain.CodeNotAuthorized, domain.GetErrorCode(err))

	_, err = svc.GetOrder(context.Background(), "00000000-0000-0000-0000-000000000000", owner)
	assert.Equal(t, domain.CodeOrderNotFound, domain.GetErrorCode(err))
}

func TestListOrdersScopedToActor(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db)
	alice := createTestUser(t, db, domain.Role_Customer)
	bob := createTestUser(t, db, domain.Role_Customer)
	p := createTestProduct(t, db, 100, 1.50)

	for range 2 {
		_, err := svc.CreateOrder(context.Background(), singleLineOrder(p, 1, 1.50), alice)
		require.NoError(t, err)
	}
	h, err := svc.CreateOrder(context.Background(), singleLineOrder(p, 1, 1.50), bob)
	require.NoError(t, err)
	_, err = svc.CancelOrder(context.Background(), h.PublicID, nil)
	require.NoError(t, err)

	aliceOrders, err := svc.ListOrders(context.Background(), alice, 1, 50, nil)
	require.NoError(t, err)
	assert.Len(t, aliceOrders, 2)
	for _, o := range aliceOrders {
		require.NotNil(t, o.UserID)
		assert.Equal(t, alice.ID, *o.UserID)
	}

	bobCancelled, err := svc.ListOrders(context.Background(), bob, 1, 50, []string{"cancelled"})
	require.NoError(t, err)
	require.Len(t, bobCancelled, 1)
	assert.Equal(t, domain.Status_Cancelled, bobCancelled[0].Status)

	bobPlaced, err := svc.ListOrders(context.Background(), bob, 1, 50, []string{"placed"})
	require.NoError(t, err)
	assert.Len(t, bobPlaced, 0)
}

func TestMergedLinesDecrementOnce(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db)
	actor := createTestUser(t, db, domain.Role_Customer)
	p := createTestProduct(t, db, 10, 2.50)

	in := singleLineOrder(p, 2, 2.50)
	in.Lines = append(in.Lines, domain.NewOrderLine{
		ProductPublicID: p.PublicID,
		Quantity:        3,
		PricePerUnit:    decimal.NewFromFloat(2.50),
	})

	h, err := svc.CreateOrder(context.Background(), in, actor)
	require.NoError(t, err)

	// One line per (order, product): repeat purchases merge.
	require.Len(t, h.Lines, 1)
	assert.Equal(t, 5, h.Lines[0].Quantity)
	assert.Equal(t, 5, productQuantity(t, db, p.ID))
}
