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

// Package workerpool sizes and runs the data-parallel work the
// grouping/aggregation core fans out across (§5): group discovery's
// sharded-parallel path (C2), the partitioned executor's per-shard
// map phase (C5), and GroupSession.Apply's per-group UDF calls.
//
// The worker count is a process-wide, lazily-initialized singleton,
// clamped to the cgroupv2 CPU quota via the cgroup package when one is
// in effect, so a throttled container doesn't oversubscribe on
// runtime.NumCPU() alone.
package workerpool

import (
	"fmt"
	"os"
	"runtime"
	"sync"

	"github.com/FlorianWilhelm/polars/cgroup"
	"github.com/FlorianWilhelm/polars/internal/config"
)

var (
	once    sync.Once
	workers int
)

// Workers returns the process-wide worker count: the host CPU count,
// clamped to the cgroupv2 CPU quota when one is in effect, and
// clamped to at least 1 (§4.1 "Choice of T: host CPU count, clamped
// to at least 1").
func Workers() int {
	once.Do(func() {
		workers = computeWorkers()
	})
	return workers
}

func computeWorkers() int {
	n := runtime.NumCPU()
	self, err := cgroup.Self()
	if err != nil {
		if n < 1 {
			n = 1
		}
		return n
	}
	if quota, ok := self.CPUQuota(); ok && quota < n {
		n = quota
	}
	if config.Verbose() {
		logCgroupOccupancy(self)
	}
	if n < 1 {
		n = 1
	}
	return n
}

// logCgroupOccupancy prints the number of processes currently sharing
// self's cgroup when VERBOSE is set, so a quota-clamped worker count
// that still looks slow can be cross-checked against other tenants in
// the same cgroup rather than assumed to be this process's own fault.
func logCgroupOccupancy(self cgroup.Dir) {
	procs, err := self.Procs()
	if err != nil {
		return
	}
	fmt.Fprintf(os.Stderr, "workerpool: %d process(es) in cgroup %s\n", len(procs), self)
}

// Run executes every fn concurrently and waits for all of them to
// finish, starting one goroutine per fn; it does not bound
// concurrency beyond len(fns). The partitioned executor passes one fn
// per shard (sized from Workers()); GroupSession.Apply passes one fn
// per group.
func Run(fns []func()) {
	var wg sync.WaitGroup
	wg.Add(len(fns))
	for _, fn := range fns {
		fn := fn
		go func() {
			defer wg.Done()
			fn()
		}()
	}
	wg.Wait()
}
