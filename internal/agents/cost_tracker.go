package agents

import (
	"sync"

	"github.com/shopspring/decimal"

	"maxwell/internal/adapters/ai"
)

// CostTracker accumulates AI model usage costs across calls
type CostTracker struct {
	mu    sync.RWMutex
	costs map[string]*ModelCost // model ID -> cost data
}

// ModelCost tracks cost for a specific model
type ModelCost struct {
	ModelID      string
	InputTokens  int64
	OutputTokens int64
	TotalCost    decimal.Decimal
	CallCount    int64
}

// NewCostTracker creates a new cost tracker
func NewCostTracker() *CostTracker {
	return &CostTracker{
		costs: make(map[string]*ModelCost),
	}
}

// RecordUsage records token usage for a model and returns the call's cost
func (ct *CostTracker) RecordUsage(modelInfo ai.ModelInfo, inputTokens, outputTokens int) decimal.Decimal {
	cost := CalculateCost(modelInfo, inputTokens, outputTokens)

	ct.mu.Lock()
	defer ct.mu.Unlock()

	mc, exists := ct.costs[modelInfo.Name]
	if !exists {
		mc = &ModelCost{ModelID: modelInfo.Name}
		ct.costs[modelInfo.Name] = mc
	}

	mc.InputTokens += int64(inputTokens)
	mc.OutputTokens += int64(outputTokens)
	mc.TotalCost = mc.TotalCost.Add(cost)
	mc.CallCount++

	return cost
}

// GetCost returns cost data for a specific model
func (ct *CostTracker) GetCost(modelID string) (ModelCost, bool) {
	ct.mu.RLock()
	defer ct.mu.RUnlock()

	mc, ok := ct.costs[modelID]
	if !ok {
		return ModelCost{}, false
	}
	return *mc, true
}

// TotalCost returns the total cost across all models
func (ct *CostTracker) TotalCost() decimal.Decimal {
	ct.mu.RLock()
	defer ct.mu.RUnlock()

	total := decimal.Zero
	for _, mc := range ct.costs {
		total = total.Add(mc.TotalCost)
	}
	return total
}

// Reset clears all cost data
func (ct *CostTracker) Reset() {
	ct.mu.Lock()
	defer ct.mu.Unlock()
	ct.costs = make(map[string]*ModelCost)
}

// CalculateCost computes the cost for a given token usage
func CalculateCost(modelInfo ai.ModelInfo, inputTokens, outputTokens int) decimal.Decimal {
	perThousand := decimal.NewFromInt(1000)
	inputCost := decimal.NewFromInt(int64(inputTokens)).
		Div(perThousand).
		Mul(decimal.NewFromFloat(modelInfo.InputCostPer1K))
	outputCost := decimal.NewFromInt(int64(outputTokens)).
		Div(perThousand).
		Mul(decimal.NewFromFloat(modelInfo.OutputCostPer1K))
	return inputCost.Add(outputCost)
}
