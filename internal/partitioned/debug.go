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

package partitioned

import (
	"fmt"
	"strings"
	"sync"

	"github.com/klauspost/compress/zstd"

	"github.com/FlorianWilhelm/polars/internal/column"
	"github.com/FlorianWilhelm/polars/internal/config"
)

// debugEncoder is a process-wide zstd encoder, built once, the way
// sneller's compr package holds a single *zstd.Encoder/*zstd.Decoder
// pair rather than allocating one per call.
var debugEncoder struct {
	once sync.Once
	enc  *zstd.Encoder
}

func encoder() *zstd.Encoder {
	debugEncoder.once.Do(func() {
		enc, err := zstd.NewWriter(nil, zstd.WithEncoderConcurrency(1))
		if err != nil {
			panic(err)
		}
		debugEncoder.enc = enc
	})
	return debugEncoder.enc
}

// debugDump prints a one-line, VERBOSE-gated summary of the merged
// partial frame (§4.4 step 3), compressing a textual column-shape
// description to report how compressible the merge step's
// intermediate state is — a cheap diagnostic for partitioned-vs-plain
// mismatches, never on the hot path when VERBOSE is unset.
func debugDump(merged *column.Frame) {
	if !config.Verbose() {
		return
	}
	var b strings.Builder
	fmt.Fprintf(&b, "rows=%d", merged.Height())
	for _, c := range merged.Columns() {
		fmt.Fprintf(&b, " %s:%s", c.Name(), c.Dtype())
	}
	raw := []byte(b.String())
	compressed := encoder().EncodeAll(raw, nil)
	fmt.Printf("partitioned: merge step %s (raw %d bytes, zstd %d bytes)\n", b.String(), len(raw), len(compressed))
}
