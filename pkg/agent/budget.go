// Copyright (c) 2021-present Mattermost, Inc. All Rights Reserved.
// See License.txt for license information.

package agent

import (
	"strings"

	"github.com/pkg/errors"
)

// ErrBudgetExceeded is returned when a run costs more than its limit
var ErrBudgetExceeded = errors.New("agent cost limit exceeded")

// Price is the cost of a model family in USD per million tokens. Model
// matches any model name it prefixes.
type Price struct {
	Model  string
	Input  float64
	Output float64
}

var fallbackPrice = Price{Model: "", Input: 3, Output: 15}

var defaultPrices = []Price{
	{Model: "claude-3-5-haiku", Input: 0.8, Output: 4},
	{Model: "claude-3-5-sonnet", Input: 3, Output: 15},
	{Model: "claude-3-7-sonnet", Input: 3, Output: 15},
	{Model: "claude-sonnet-4", Input: 3, Output: 15},
	{Model: "claude-opus-4", Input: 15, Output: 75},
}

// priceFor returns the price of the longest matching prefix. Overrides
// are checked before the built in table.
func priceFor(model string, overrides []Price) Price {
	for _, table := range [][]Price{overrides, defaultPrices} {
		best := -1
		for i, p := range table {
			if strings.HasPrefix(model, p.Model) && (best == -1 || len(p.Model) > len(table[best].Model)) {
				best = i
			}
		}
		if best != -1 {
			return table[best]
		}
	}
	return fallbackPrice
}

// Cost returns the USD cost of a token count
func (p Price) Cost(inputTokens, outputTokens int64) float64 {
	return (float64(inputTokens)*p.Input + float64(outputTokens)*p.Output) / 1_000_000
}

type budget struct {
	price Price
	limit float64
	spent float64
}

func newBudget(limit float64, price Price) *budget {
	return &budget{price: price, limit: limit}
}

// charge adds the cost of a response and fails once the limit is passed
func (b *budget) charge(inputTokens, outputTokens int64) error {
	b.spent += b.price.Cost(inputTokens, outputTokens)
	if b.spent > b.limit {
		return errors.Wrapf(ErrBudgetExceeded, "spent $%.4f of $%.2f", b.spent, b.limit)
	}
	return nil
}
