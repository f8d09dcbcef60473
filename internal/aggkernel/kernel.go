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

// Package aggkernel implements the per-group reduction kernels (C3):
// the closed enumeration of operations x dtypes described by the
// reference contract's kernel table, each a capability
// reduce_per_group(column, GroupIndex) -> option<column>.
package aggkernel

import (
	"fmt"
	"sort"

	"golang.org/x/exp/maps"

	"github.com/FlorianWilhelm/polars/internal/column"
	"github.com/FlorianWilhelm/polars/internal/groupby"
)

// Kernel is one of the canonical aggregation tokens.
type Kernel int

const (
	Min Kernel = iota
	Max
	Sum
	Mean
	Median
	Quantile
	Var
	Std
	First
	Last
	NUnique
	Count
	CountValid
	List
	Groups
)

var tokens = map[Kernel]string{
	Min:        "min",
	Max:        "max",
	Sum:        "sum",
	Mean:       "mean",
	Median:     "median",
	Quantile:   "quantile",
	Var:        "var",
	Std:        "std",
	First:      "first",
	Last:       "last",
	NUnique:    "n_unique",
	Count:      "count",
	CountValid: "count_valid",
	List:       "list",
	Groups:     "groups",
}

// Token returns the kernel's name token, as used in output column
// names. The root package's Agg accepts only a subset of these tokens.
func (k Kernel) Token() string { return tokens[k] }

// Tokens lists every kernel's name token, sorted, for --help text and
// diagnostic messages (e.g. the CLI harness's usage output).
func Tokens() []string {
	toks := maps.Values(tokens)
	sort.Strings(toks)
	return toks
}

// ParseToken maps a kernel-name token to a Kernel, returning
// (0, false) for an unrecognized token so the caller can construct an
// UnsupportedAggregationError with the original string.
func ParseToken(tok string) (Kernel, bool) {
	for k, t := range tokens {
		if t == tok {
			return k, true
		}
	}
	return 0, false
}

// OutputName formats the result-column name per §4.2: "<name>_<method>",
// except groups -> "groups" and quantile(q) ->
// "<name>_quantile_<q formatted to two decimals>".
func OutputName(inputName string, k Kernel, q float64) string {
	switch k {
	case Groups:
		return "groups"
	case Quantile:
		return fmt.Sprintf("%s_quantile_%.2f", inputName, q)
	default:
		return inputName + "_" + k.Token()
	}
}

// Reduce runs kernel k over value grouped by groups, returning
// (result, true, nil) on success or (nil, false, nil) if the
// reduction is undefined for value's dtype (§4.2's "returns None").
// A non-nil error is only returned for parameter errors (an
// out-of-range quantile) or apply-time bugs.
func Reduce(k Kernel, name string, value column.Column, groups *groupby.GroupIndex, q float64) (column.Column, bool, error) {
	switch k {
	case Min:
		return reduceMinMax(name, value, groups, false)
	case Max:
		return reduceMinMax(name, value, groups, true)
	case Sum:
		return reduceSum(name, value, groups)
	case Mean:
		return reduceMean(name, value, groups)
	case Median:
		return reduceQuantile(name, Median, value, groups, 0.5)
	case Quantile:
		if q < 0 || q > 1 {
			return nil, false, &column.ValueError{Param: "q", Value: q, Msg: "quantile must be in [0, 1]"}
		}
		return reduceQuantile(name, Quantile, value, groups, q)
	case Var:
		return reduceVarStd(name, value, groups, false)
	case Std:
		return reduceVarStd(name, value, groups, true)
	case First:
		return reduceFirstLast(name, value, groups, false)
	case Last:
		return reduceFirstLast(name, value, groups, true)
	case NUnique:
		return reduceNUnique(name, value, groups)
	case Count:
		return reduceCount(name, value, groups, false), true, nil
	case CountValid:
		return reduceCount(name, value, groups, true), true, nil
	case List:
		return reduceList(name, value, groups)
	case Groups:
		return reduceGroups(groups)
	default:
		return nil, false, fmt.Errorf("aggkernel: unknown kernel %d", k)
	}
}
