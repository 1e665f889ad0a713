//go:build integration

package integration

import (
	"net/http"
	"testing"
)

func TestListProducts(t *testing.T) {
	resp := doGet(t, "/api/products")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	products := decodeJSON[[]productResponse](t, resp)
	if len(products) != 10 {
		t.Fatalf("expected 10 products, got %d", len(products))
	}
}

func TestListProducts_Fields(t *testing.T) {
	resp := doGet(t, "/api/products")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	products := decodeJSON[[]productResponse](t, resp)

	var latte *productResponse
	for i := range products {
		if products[i].ID == "prod-latte" {
			latte = &products[i]
			break
		}
	}

	if latte == nil {
		t.Fatal("product prod-latte not found")
	}
	if latte.Name != "Caffe Latte" {
		t.Errorf("name: got %q, want %q", latte.Name, "Caffe Latte")
	}
	if latte.Price != 4.75 {
		t.Errorf("price: got %v, want 4.75", latte.Price)
	}
	if latte.CategoryID != "coffee" {
		t.Errorf("categoryId: got %q, want %q", latte.CategoryID, "coffee")
	}
}

func TestGetProduct(t *testing.T) {
	resp := doGet(t, "/api/products/prod-espresso")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	product := decodeJSON[productResponse](t, resp)
	if product.ID != "prod-espresso" {
		t.Errorf("id: got %q, want %q", product.ID, "prod-espresso")
	}
	if product.Name != "Espresso" {
		t.Errorf("name: got %q, want %q", product.Name, "Espresso")
	}
}

func TestGetProduct_NotFound(t *testing.T) {
	resp := doGet(t, "/api/products/ghost")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}

	errResp := decodeJSON[errorResponse](t, resp)
	if errResp.Code != 404 {
		t.Errorf("error code: got %d, want 404", errResp.Code)
	}
}
