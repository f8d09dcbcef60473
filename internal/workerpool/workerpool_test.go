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

package workerpool

import (
	"sync/atomic"
	"testing"
)

func TestWorkersAtLeastOne(t *testing.T) {
	if Workers() < 1 {
		t.Fatalf("Workers() = %d, want >= 1", Workers())
	}
}

func TestWorkersStable(t *testing.T) {
	a := Workers()
	b := Workers()
	if a != b {
		t.Fatalf("Workers() not stable across calls: %d != %d", a, b)
	}
}

func TestRunExecutesEveryFn(t *testing.T) {
	var count int64
	fns := make([]func(), 10)
	for i := range fns {
		fns[i] = func() { atomic.AddInt64(&count, 1) }
	}
	Run(fns)
	if got := atomic.LoadInt64(&count); got != int64(len(fns)) {
		t.Fatalf("ran %d fns, want %d", got, len(fns))
	}
}

func TestRunEmpty(t *testing.T) {
	Run(nil)
}

func TestComputeWorkersClampsToAtLeastOne(t *testing.T) {
	if n := computeWorkers(); n < 1 {
		t.Fatalf("computeWorkers() = %d, want >= 1", n)
	}
}
