package bridge

import "kbridge/internal/domain"

// AggregateBalance merges cash components and the raw inventory feed into a
// single balance result. Cash is the sum of every configured component;
// which components exist is broker-specific configuration, not fixed
// arithmetic. Zero-quantity inventory rows are a feed artifact of sold-out
// positions and are dropped before the result is observable.
func AggregateBalance(cashComponents []int64, inventory []domain.InventoryItem) domain.BalanceResult {
	var cash int64
	for _, c := range cashComponents {
		cash += c
	}

	holdings := make(map[string]int64, len(inventory))
	for _, item := range inventory {
		if item.Qty == 0 {
			continue
		}
		holdings[item.Code] = item.Qty
	}

	return domain.BalanceResult{Cash: cash, Holdings: holdings}
}
