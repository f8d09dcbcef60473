// Copyright (C) 2024 Florian Wilhelm
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

package polars

import "github.com/FlorianWilhelm/polars/internal/aggkernel"

// aggTokens is the kernel-name token set agg() and the driver accept
// (§6): "min | max | mean | sum | first | last | n_unique | median |
// std | var | count". quantile, list, and groups are deliberately
// absent — each is reachable only through its own GroupSession method
// (Quantile, AggList, Groups), not by string token.
var aggTokens = map[string]aggkernel.Kernel{
	"min":      aggkernel.Min,
	"max":      aggkernel.Max,
	"mean":     aggkernel.Mean,
	"sum":      aggkernel.Sum,
	"first":    aggkernel.First,
	"last":     aggkernel.Last,
	"n_unique": aggkernel.NUnique,
	"median":   aggkernel.Median,
	"std":      aggkernel.Std,
	"var":      aggkernel.Var,
	"count":    aggkernel.Count,
}

// parseAggToken resolves an agg() method token to its kernel, or
// returns UnsupportedAggregationError for anything outside aggTokens.
func parseAggToken(tok string) (aggkernel.Kernel, error) {
	k, ok := aggTokens[tok]
	if !ok {
		return 0, &UnsupportedAggregationError{Token: tok}
	}
	return k, nil
}
