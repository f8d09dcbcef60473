// Copyright (C) 2022 Sneller, Inc.
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

package cgroup

import (
	"os"
	"strings"
	"testing"
)

func TestCgroup(t *testing.T) {
	root, err := Root()
	if err != nil {
		t.Skip("couldn't find cgroup root")
	}
	self, err := Self()
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(self), string(root)) {
		t.Errorf("current cgroup %s not within root %s", self, root)
	}
	t.Log("in cgroup", self)
	owned, err := self.IsDelegated(os.Getuid(), os.Getgid())
	if err != nil {
		t.Fatal(err)
	}
	t.Logf("in delegated cgroup: %v", owned)
	if !owned {
		return
	}
	sub, err := self.Create("test", true)
	if err != nil {
		t.Fatal(err)
	}
	err = sub.Remove()
	if err != nil {
		t.Fatal("removing sub:", err)
	}
}

func TestCPUQuota(t *testing.T) {
	self, err := Self()
	if err != nil {
		t.Skip("couldn't find cgroup self")
	}
	quota, ok := self.CPUQuota()
	if !ok {
		t.Skip("no cpu.max controller in this cgroup (unconfined, cgroup1, or no cgroup2 mount)")
	}
	if quota < 1 {
		t.Errorf("CPUQuota() = %d, want >= 1", quota)
	}
}

func TestCPUQuotaParsesFraction(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(dir+"/cpu.max", []byte("150000 100000\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	quota, ok := Dir(dir).CPUQuota()
	if !ok {
		t.Fatal("CPUQuota() = false, want true")
	}
	if quota != 2 {
		t.Errorf("CPUQuota() = %d, want 2 (1.5 CPUs rounds up)", quota)
	}
}

func TestCPUQuotaUnlimited(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(dir+"/cpu.max", []byte("max 100000\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, ok := Dir(dir).CPUQuota(); ok {
		t.Fatal("CPUQuota() = true for unlimited quota, want false")
	}
}
