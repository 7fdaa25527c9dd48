package suggestion

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"konterhp/backend/internal/cache"
	"konterhp/backend/internal/domain"
)

type Engine struct {
	cache         cache.SuggestionCache
	cacheTTL      time.Duration
	minConfidence float64
}

func NewEngine(cacheStore cache.SuggestionCache, cacheTTL time.Duration) *Engine {
	if cacheStore == nil {
		cacheStore = cache.NoopSuggestionCache{}
	}
	if cacheTTL <= 0 {
		cacheTTL = 20 * time.Second
	}

	return &Engine{
		cache:         cacheStore,
		cacheTTL:      cacheTTL,
		minConfidence: 0.35,
	}
}

func (e *Engine) Suggest(
	ctx context.Context,
	req domain.SuggestionRequest,
	products map[string]domain.Product,
	coCounts []domain.CoPurchaseCount,
) domain.SuggestionResponse {
	startedAt := time.Now()

	if len(req.Items) == 0 {
		return domain.SuggestionResponse{
			LatencyMS: time.Since(startedAt).Milliseconds(),
		}
	}

	cacheKey := buildCacheKey(req)
	if cached, ok, err := e.cache.Get(ctx, cacheKey); err == nil && ok {
		cached.LatencyMS = time.Since(startedAt).Milliseconds()
		return *cached
	}

	normalizedLines := normalizeCartLines(req.Items)
	cartSet := make(map[string]struct{}, len(normalizedLines))
	for _, line := range normalizedLines {
		cartSet[line.ProductID] = struct{}{}
	}

	bestID := ""
	bestConfidence := 0.0
	bestReason := ""
	bestProfit := int64(0)

	for _, candidate := range coCounts {
		if _, exists := cartSet[candidate.ProductID]; exists {
			continue
		}
		product, ok := products[candidate.ProductID]
		if !ok {
			continue
		}
		if product.Quantity <= 0 {
			continue
		}

		profitCents := product.SellingPriceCents - product.PurchasePriceCents
		if profitCents < 0 {
			profitCents = 0
		}
		marginRate := 0.0
		if product.SellingPriceCents > 0 {
			marginRate = float64(profitCents) / float64(product.SellingPriceCents)
		}

		// Ten historical co-purchases saturate the affinity signal.
		affinity := clamp(float64(candidate.Count)/10.0, 0, 1)
		marginScore := clamp(marginRate/0.40, 0, 1)
		stockScore := clamp(float64(product.Quantity)/25.0, 0, 1)

		score :=
			0.45*affinity +
				0.30*marginScore +
				0.25*stockScore

		confidence := clamp(score, 0, 1)
		if confidence < e.minConfidence {
			continue
		}

		if confidence > bestConfidence {
			bestConfidence = confidence
			bestID = candidate.ProductID
			bestReason = deriveReason(affinity, marginScore, stockScore)
			bestProfit = profitCents
		}
	}

	resp := domain.SuggestionResponse{}
	if bestID != "" {
		product := products[bestID]
		resp.Suggestion = &domain.AddonSuggestion{
			ProductID:           product.ID,
			Name:                product.Name,
			SellingPriceCents:   product.SellingPriceCents,
			ExpectedProfitCents: bestProfit,
			ReasonCode:          bestReason,
			Confidence:          round2(bestConfidence),
		}
	}

	resp.LatencyMS = time.Since(startedAt).Milliseconds()
	_ = e.cache.Set(ctx, cacheKey, &resp, e.cacheTTL)
	return resp
}

func normalizeCartLines(lines []domain.CartLine) []domain.CartLine {
	aggregated := make(map[string]int, len(lines))
	for _, line := range lines {
		if line.ProductID == "" || line.Quantity < 1 {
			continue
		}
		aggregated[line.ProductID] += line.Quantity
	}

	result := make([]domain.CartLine, 0, len(aggregated))
	for id, qty := range aggregated {
		result = append(result, domain.CartLine{ProductID: id, Quantity: qty})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ProductID < result[j].ProductID })
	return result
}

func deriveReason(affinity float64, marginScore float64, stockScore float64) string {
	type reasonWeight struct {
		code  string
		value float64
	}

	reasons := []reasonWeight{
		{code: "often_bought_together", value: affinity},
		{code: "high_margin_add_on", value: marginScore},
		{code: "healthy_stock", value: stockScore},
	}

	sort.Slice(reasons, func(i, j int) bool {
		return reasons[i].value > reasons[j].value
	})
	return reasons[0].code
}

func buildCacheKey(req domain.SuggestionRequest) string {
	lines := normalizeCartLines(req.Items)
	parts := make([]string, 0, len(lines))
	for _, line := range lines {
		parts = append(parts, fmt.Sprintf("%s:%d", line.ProductID, line.Quantity))
	}

	hash := sha1.Sum([]byte(strings.Join(parts, "|")))
	return "pos:suggestion:" + hex.EncodeToString(hash[:])
}

func clamp(val float64, minVal float64, maxVal float64) float64 {
	if val < minVal {
		return minVal
	}
	if val > maxVal {
		return maxVal
	}
	return val
}

func round2(val float64) float64 {
	return math.Round(val*100) / 100
}
