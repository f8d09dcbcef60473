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

// Command groupby-bench drives a synthetic grouped-aggregation
// benchmark over a generated frame, for poking at the partitioned
// executor's cardinality gate (§4.4) from the command line rather than
// through a test.
package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"strings"
	"time"

	"sigs.k8s.io/yaml"

	"github.com/FlorianWilhelm/polars"
	"github.com/FlorianWilhelm/polars/internal/aggkernel"
)

func fatalf(f string, args ...any) {
	fmt.Fprintf(os.Stderr, f+"\n", args...)
	os.Exit(1)
}

// scenario describes a synthetic frame shape. It is read either from
// flags or, if -scenario names a file, unmarshaled from YAML (via
// sigs.k8s.io/yaml's JSON-tag convention, matching how the kernel
// table's plain Go maps are configured elsewhere in this module).
type scenario struct {
	Rows          int      `json:"rows"`
	Groups        int      `json:"groups"`
	Kernels       []string `json:"kernels"`
	Multithreaded bool     `json:"multithreaded"`
}

func defaultScenario() scenario {
	return scenario{Rows: 1_000_000, Groups: 1000, Kernels: []string{"sum", "mean"}}
}

func loadScenario(path string) (scenario, error) {
	s := defaultScenario()
	buf, err := os.ReadFile(path)
	if err != nil {
		return s, err
	}
	if err := yaml.Unmarshal(buf, &s); err != nil {
		return s, fmt.Errorf("groupby-bench: parsing %s: %w", path, err)
	}
	return s, nil
}

// syntheticFrame builds a two-column frame: an int64 key uniform over
// [0, groups) and a float64 value, rows rows long.
func syntheticFrame(rows, groups int) *polars.Frame {
	rng := rand.New(rand.NewSource(1))
	keys := make([]int64, rows)
	values := make([]float64, rows)
	for i := range keys {
		keys[i] = int64(rng.Intn(groups))
		values[i] = rng.Float64() * 100
	}
	keyCol := polars.NewIntColumn("key", polars.DtypeInt64, keys, nil)
	valCol := polars.NewFloat64Column("value", values, nil)
	frame, err := polars.NewFrame(keyCol, valCol)
	if err != nil {
		fatalf("groupby-bench: building synthetic frame: %s", err)
	}
	return frame
}

func runOnce(frame *polars.Frame, s scenario) (time.Duration, error) {
	start := time.Now()
	var session *polars.GroupSession
	var err error
	if s.Multithreaded {
		key, ok := frame.Column("key")
		if !ok {
			return 0, fmt.Errorf("groupby-bench: synthetic frame missing key column")
		}
		session, err = frame.GroupByWithSeries([]polars.Column{key}, true)
	} else {
		session, err = frame.GroupBy([]string{"key"})
	}
	if err != nil {
		return 0, err
	}
	req := polars.AggRequest{Column: "value", Methods: s.Kernels}
	if _, err := session.Select("value").Agg([]polars.AggRequest{req}); err != nil {
		return 0, err
	}
	return time.Since(start), nil
}

func main() {
	var scenarioPath string
	var noPartitionOverride bool
	flag.StringVar(&scenarioPath, "scenario", "", "YAML scenario file (default: a built-in 1M-row/1000-group scenario)")
	flag.BoolVar(&noPartitionOverride, "no-partition", false, "set NO_PARTITION for this run, forcing the plain path")
	flag.Parse()

	s := defaultScenario()
	if scenarioPath != "" {
		var err error
		s, err = loadScenario(scenarioPath)
		if err != nil {
			fatalf("%s", err)
		}
	}
	if noPartitionOverride {
		os.Setenv("NO_PARTITION", "1")
	}
	for _, k := range s.Kernels {
		if _, ok := aggkernel.ParseToken(k); !ok {
			fatalf("groupby-bench: unknown kernel %q (valid: %s)", k, strings.Join(aggkernel.Tokens(), ", "))
		}
	}

	frame := syntheticFrame(s.Rows, s.Groups)
	dur, err := runOnce(frame, s)
	if err != nil {
		fatalf("groupby-bench: %s", err)
	}
	fmt.Printf("rows=%d groups=%d kernels=%s multithreaded=%v: %s\n",
		s.Rows, s.Groups, strings.Join(s.Kernels, ","), s.Multithreaded, dur)
}
