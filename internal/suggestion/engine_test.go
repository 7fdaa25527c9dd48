package suggestion

import (
	"context"
	"testing"
	"time"

	"konterhp/backend/internal/domain"
)

type stubCache struct {
	values map[string]*domain.SuggestionResponse
	sets   int
}

func (c *stubCache) Get(_ context.Context, key string) (*domain.SuggestionResponse, bool, error) {
	value, ok := c.values[key]
	if !ok {
		return nil, false, nil
	}
	clone := *value
	return &clone, true, nil
}

func (c *stubCache) Set(_ context.Context, key string, value *domain.SuggestionResponse, _ time.Duration) error {
	if c.values == nil {
		c.values = map[string]*domain.SuggestionResponse{}
	}
	clone := *value
	c.values[key] = &clone
	c.sets++
	return nil
}

func TestSuggestEmptyCartReturnsNothing(t *testing.T) {
	engine := NewEngine(nil, 0)

	resp := engine.Suggest(context.Background(), domain.SuggestionRequest{}, nil, nil)
	if resp.Suggestion != nil {
		t.Fatalf("expected no suggestion for empty cart, got %+v", resp.Suggestion)
	}
}

func TestSuggestPicksStrongestCandidate(t *testing.T) {
	engine := NewEngine(nil, 0)

	products := map[string]domain.Product{
		"p-glass": {ID: "p-glass", Name: "Tempered Glass", SellingPriceCents: 10000, PurchasePriceCents: 8000, Quantity: 10},
		"p-cable": {ID: "p-cable", Name: "Kabel Murah", SellingPriceCents: 10000, PurchasePriceCents: 9000, Quantity: 5},
	}
	coCounts := []domain.CoPurchaseCount{
		{ProductID: "p-glass", Count: 10},
		{ProductID: "p-cable", Count: 2},
	}

	resp := engine.Suggest(context.Background(), domain.SuggestionRequest{
		Items: []domain.CartLine{{ProductID: "p-phone", Quantity: 1}},
	}, products, coCounts)

	if resp.Suggestion == nil {
		t.Fatalf("expected a suggestion")
	}
	if resp.Suggestion.ProductID != "p-glass" {
		t.Fatalf("expected p-glass, got %s", resp.Suggestion.ProductID)
	}
	if resp.Suggestion.ExpectedProfitCents != 2000 {
		t.Fatalf("expected profit 2000, got %d", resp.Suggestion.ExpectedProfitCents)
	}
	if resp.Suggestion.ReasonCode != "often_bought_together" {
		t.Fatalf("expected often_bought_together, got %s", resp.Suggestion.ReasonCode)
	}
	if resp.Suggestion.Confidence != 0.7 {
		t.Fatalf("expected confidence 0.70, got %v", resp.Suggestion.Confidence)
	}
}

func TestSuggestSkipsInCartAndOutOfStockCandidates(t *testing.T) {
	engine := NewEngine(nil, 0)

	products := map[string]domain.Product{
		"p-case":  {ID: "p-case", Name: "Softcase", SellingPriceCents: 25000, PurchasePriceCents: 8000, Quantity: 0},
		"p-phone": {ID: "p-phone", Name: "Phone", SellingPriceCents: 1500000, PurchasePriceCents: 1300000, Quantity: 8},
	}
	coCounts := []domain.CoPurchaseCount{
		{ProductID: "p-case", Count: 10},
		{ProductID: "p-phone", Count: 10},
	}

	resp := engine.Suggest(context.Background(), domain.SuggestionRequest{
		Items: []domain.CartLine{{ProductID: "p-phone", Quantity: 1}},
	}, products, coCounts)

	if resp.Suggestion != nil {
		t.Fatalf("expected no suggestion, got %s", resp.Suggestion.ProductID)
	}
}

func TestSuggestDropsLowConfidenceCandidates(t *testing.T) {
	engine := NewEngine(nil, 0)

	products := map[string]domain.Product{
		"p-cable": {ID: "p-cable", Name: "Kabel Murah", SellingPriceCents: 10000, PurchasePriceCents: 9000, Quantity: 5},
	}
	coCounts := []domain.CoPurchaseCount{
		{ProductID: "p-cable", Count: 2},
	}

	resp := engine.Suggest(context.Background(), domain.SuggestionRequest{
		Items: []domain.CartLine{{ProductID: "p-phone", Quantity: 1}},
	}, products, coCounts)

	if resp.Suggestion != nil {
		t.Fatalf("expected weak candidate to be dropped, got %+v", resp.Suggestion)
	}
}

func TestSuggestServesRepeatCartsFromCache(t *testing.T) {
	cacheStore := &stubCache{}
	engine := NewEngine(cacheStore, 20*time.Second)

	products := map[string]domain.Product{
		"p-glass": {ID: "p-glass", Name: "Tempered Glass", SellingPriceCents: 10000, PurchasePriceCents: 8000, Quantity: 10},
	}
	coCounts := []domain.CoPurchaseCount{{ProductID: "p-glass", Count: 10}}

	first := engine.Suggest(context.Background(), domain.SuggestionRequest{
		Items: []domain.CartLine{{ProductID: "p-phone", Quantity: 1}, {ProductID: "p-charger", Quantity: 1}},
	}, products, coCounts)
	if first.Suggestion == nil {
		t.Fatalf("expected a suggestion on first call")
	}
	if cacheStore.sets != 1 {
		t.Fatalf("expected 1 cache write, got %d", cacheStore.sets)
	}

	// Same cart in a different line order must hit the same cache key even
	// though the candidate is now gone.
	second := engine.Suggest(context.Background(), domain.SuggestionRequest{
		Items: []domain.CartLine{{ProductID: "p-charger", Quantity: 1}, {ProductID: "p-phone", Quantity: 1}},
	}, nil, nil)
	if second.Suggestion == nil || second.Suggestion.ProductID != "p-glass" {
		t.Fatalf("expected cached suggestion, got %+v", second.Suggestion)
	}
	if cacheStore.sets != 1 {
		t.Fatalf("expected no extra cache write on hit, got %d", cacheStore.sets)
	}
}

func TestSuggestAggregatesDuplicateCartLines(t *testing.T) {
	cacheStore := &stubCache{}
	engine := NewEngine(cacheStore, 20*time.Second)

	products := map[string]domain.Product{
		"p-glass": {ID: "p-glass", Name: "Tempered Glass", SellingPriceCents: 10000, PurchasePriceCents: 8000, Quantity: 10},
	}
	coCounts := []domain.CoPurchaseCount{{ProductID: "p-glass", Count: 10}}

	engine.Suggest(context.Background(), domain.SuggestionRequest{
		Items: []domain.CartLine{{ProductID: "p-phone", Quantity: 1}, {ProductID: "p-phone", Quantity: 1}},
	}, products, coCounts)

	cached := engine.Suggest(context.Background(), domain.SuggestionRequest{
		Items: []domain.CartLine{{ProductID: "p-phone", Quantity: 2}},
	}, nil, nil)
	if cached.Suggestion == nil || cached.Suggestion.ProductID != "p-glass" {
		t.Fatalf("expected duplicate lines to share a cache entry, got %+v", cached.Suggestion)
	}
	if cacheStore.sets != 1 {
		t.Fatalf("expected single cache write, got %d", cacheStore.sets)
	}
}
