// Copyright 2024 The HAR Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package har

import "github.com/cespare/xxhash/v2"

// contentChecksum returns a fast, non-cryptographic content fingerprint
// of a HARX entry's JSON payload. It is carried in each entry's own JSON
// document (the Checksum field) alongside (not instead of) the ZIP
// container's own CRC32, so the
// integrity signal survives a re-pack into a different archive format.
func contentChecksum(payload []byte) uint64 {
	return xxhash.Sum64(payload)
}
