//go:build integration

package integration

import (
	"fmt"
	"net/http"
	"regexp"
	"testing"
	"time"
)

const testAPIKey = "integration-test-key"

var uuidPattern = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)

// uniqueCustomer returns a customer ID unlikely to collide with earlier runs,
// so per-customer usage limits on seeded promotions do not leak between tests.
func uniqueCustomer(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
}

func TestPlaceOrder_NoAuth(t *testing.T) {
	req := orderRequest{
		Items: []orderItemRequest{{ProductID: "prod-espresso", Quantity: 1}},
	}
	resp := doPost(t, "/api/orders", req)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestPlaceOrder_InvalidKey(t *testing.T) {
	req := orderRequest{
		Items: []orderItemRequest{{ProductID: "prod-espresso", Quantity: 1}},
	}
	resp := doPostWithAuth(t, "/api/orders", req, "wrong-key")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestPlaceOrder_EmptyItems(t *testing.T) {
	req := orderRequest{
		Items: []orderItemRequest{},
	}
	resp := doPostWithAuth(t, "/api/orders", req, testAPIKey)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestPlaceOrder_InvalidProduct(t *testing.T) {
	req := orderRequest{
		Items: []orderItemRequest{{ProductID: "prod-ghost", Quantity: 1}},
	}
	resp := doPostWithAuth(t, "/api/orders", req, testAPIKey)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestPlaceOrder_SingleItem(t *testing.T) {
	req := orderRequest{
		StoreID: "store-demo",
		Items:   []orderItemRequest{{ProductID: "prod-espresso", Quantity: 1}}, // $3.50
	}
	resp := doPostWithAuth(t, "/api/orders", req, testAPIKey)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}

	order := decodeJSON[orderResponse](t, resp)
	if order.Total != 3.5 {
		t.Errorf("total: got %v, want 3.5", order.Total)
	}
	if order.Discount != 0 {
		t.Errorf("discount: got %v, want 0", order.Discount)
	}
}

func TestPlaceOrder_MultipleItems(t *testing.T) {
	req := orderRequest{
		StoreID: "store-demo",
		Items: []orderItemRequest{
			{ProductID: "prod-espresso", Quantity: 2},  // 2x $3.50 = $7.00
			{ProductID: "prod-croissant", Quantity: 1}, // $3.25
		},
	}
	resp := doPostWithAuth(t, "/api/orders", req, testAPIKey)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}

	order := decodeJSON[orderResponse](t, resp)
	if order.Total != 10.25 {
		t.Errorf("total: got %v, want 10.25", order.Total)
	}
}

func TestPlaceOrder_WelcomeDiscount(t *testing.T) {
	req := orderRequest{
		StoreID:    "store-demo",
		CustomerID: uniqueCustomer("welcome"),
		Items: []orderItemRequest{
			{ProductID: "prod-latte", Quantity: 5}, // 5x $4.75 = $23.75, above the $20 minimum
		},
		DiscountCode: "WELCOME10",
	}
	resp := doPostWithAuth(t, "/api/orders", req, testAPIKey)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}

	order := decodeJSON[orderResponse](t, resp)
	// 23.75 * 10% = 2.375, rounded to 2.38.
	if order.Discount != 2.38 {
		t.Errorf("discount: got %v, want 2.38", order.Discount)
	}
	if order.Total != 21.38 {
		t.Errorf("total: got %v, want 21.38", order.Total)
	}
	if order.DiscountCode != "WELCOME10" {
		t.Errorf("discountCode: got %q, want WELCOME10", order.DiscountCode)
	}
}

func TestPlaceOrder_WelcomeDiscount_BelowMinimum(t *testing.T) {
	req := orderRequest{
		StoreID:      "store-demo",
		CustomerID:   uniqueCustomer("welcome-min"),
		Items:        []orderItemRequest{{ProductID: "prod-espresso", Quantity: 1}}, // $3.50
		DiscountCode: "WELCOME10",
	}
	resp := doPostWithAuth(t, "/api/orders", req, testAPIKey)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}
}

func TestPlaceOrder_CustomerUsageLimit(t *testing.T) {
	customer := uniqueCustomer("repeat")
	req := orderRequest{
		StoreID:      "store-demo",
		CustomerID:   customer,
		Items:        []orderItemRequest{{ProductID: "prod-latte", Quantity: 5}},
		DiscountCode: "WELCOME10",
	}

	first := doPostWithAuth(t, "/api/orders", req, testAPIKey)
	defer first.Body.Close()
	if first.StatusCode != http.StatusCreated {
		t.Fatalf("first order: expected 201, got %d", first.StatusCode)
	}

	// WELCOME10 allows one redemption per customer.
	second := doPostWithAuth(t, "/api/orders", req, testAPIKey)
	defer second.Body.Close()
	if second.StatusCode != http.StatusConflict {
		t.Fatalf("second order: expected 409, got %d", second.StatusCode)
	}
}

func TestPlaceOrder_CoffeeBogo(t *testing.T) {
	req := orderRequest{
		StoreID:    "store-demo",
		CustomerID: uniqueCustomer("bogo"),
		Items: []orderItemRequest{
			{ProductID: "prod-latte", Quantity: 3}, // 1 complete buy-2-get-1 set
		},
		DiscountCode: "COFFEEBOGO",
	}
	resp := doPostWithAuth(t, "/api/orders", req, testAPIKey)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}

	order := decodeJSON[orderResponse](t, resp)
	// One free latte at $4.75.
	if order.Discount != 4.75 {
		t.Errorf("discount: got %v, want 4.75", order.Discount)
	}
	if order.Total != 9.5 {
		t.Errorf("total: got %v, want 9.5", order.Total)
	}
}

func TestPlaceOrder_CoffeeBogo_InsufficientItems(t *testing.T) {
	req := orderRequest{
		StoreID:      "store-demo",
		CustomerID:   uniqueCustomer("bogo-short"),
		Items:        []orderItemRequest{{ProductID: "prod-latte", Quantity: 2}},
		DiscountCode: "COFFEEBOGO",
	}
	resp := doPostWithAuth(t, "/api/orders", req, testAPIKey)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}
}

func TestPlaceOrder_CoffeeBogo_WrongCategory(t *testing.T) {
	req := orderRequest{
		StoreID:      "store-demo",
		CustomerID:   uniqueCustomer("bogo-cat"),
		Items:        []orderItemRequest{{ProductID: "prod-croissant", Quantity: 3}},
		DiscountCode: "COFFEEBOGO",
	}
	resp := doPostWithAuth(t, "/api/orders", req, testAPIKey)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}
}

func TestPlaceOrder_UnknownCode(t *testing.T) {
	req := orderRequest{
		StoreID:      "store-demo",
		Items:        []orderItemRequest{{ProductID: "prod-espresso", Quantity: 1}},
		DiscountCode: "NONEXISTENT",
	}
	resp := doPostWithAuth(t, "/api/orders", req, testAPIKey)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestPlaceOrder_ResponseStructure(t *testing.T) {
	req := orderRequest{
		StoreID: "store-demo",
		Items:   []orderItemRequest{{ProductID: "prod-espresso", Quantity: 1}},
	}
	resp := doPostWithAuth(t, "/api/orders", req, testAPIKey)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}

	order := decodeJSON[orderResponse](t, resp)

	if !uuidPattern.MatchString(order.ID) {
		t.Errorf("order ID %q is not a valid UUID", order.ID)
	}
	if len(order.Items) != 1 {
		t.Errorf("expected 1 item, got %d", len(order.Items))
	}
	if len(order.Products) != 1 {
		t.Fatalf("expected 1 product, got %d", len(order.Products))
	}

	product := order.Products[0]
	if product.ID != "prod-espresso" {
		t.Errorf("product id: got %q, want %q", product.ID, "prod-espresso")
	}
	if product.Name == "" {
		t.Error("product name is empty")
	}
	if product.Price <= 0 {
		t.Errorf("product price: got %v, want > 0", product.Price)
	}
}
