package hasher

import (
	"io"
	"strconv"

	"github.com/cespare/xxhash/v2"
)

// FullLen is the length of an untruncated hex digest.
const FullLen = 16

// ContentHash returns the xxHash64 of data as zero-padded lowercase hex,
// truncated to hexLen characters when 0 < hexLen < FullLen. Output file
// names use the first 8 characters, the manifest stores all 16.
func ContentHash(data []byte, hexLen int) string {
	return format(xxhash.Sum64(data), hexLen)
}

// ContentHashReader is ContentHash over a stream.
func ContentHashReader(r io.Reader, hexLen int) (string, error) {
	h := xxhash.New()
	if _, err := io.Copy(h, r); err != nil {
		return "", err
	}
	return format(h.Sum64(), hexLen), nil
}

func format(sum uint64, hexLen int) string {
	s := strconv.FormatUint(sum, 16)
	for len(s) < FullLen {
		s = "0" + s
	}
	if hexLen > 0 && hexLen < FullLen {
		return s[:hexLen]
	}
	return s
}
