package archive

import (
	"bytes"
	"encoding/json"
)

// archiveTail is the closing byte sequence of a compact-encoded archive:
// the entries array, the log object, and the root object. Encode keeps
// entries as the final property, so appending an entry is a splice just
// before these bytes.
var archiveTail = []byte("]}}")

// SpliceEntries appends entries to already-encoded archive bytes without
// decoding them. It returns ok=false whenever the data does not end with
// the exact closing sequence Encode produces; callers must then fall
// back to decode-append-re-encode. The fast path never risks producing
// an invalid archive: either the tail is recognized and the result is
// byte-identical to the slow path, or nothing is spliced.
//
// SpliceEntries cannot add pages, so it only serves appends whose
// pageref already exists in the archive.
func SpliceEntries(data []byte, entries ...Entry) ([]byte, bool) {
	if len(entries) == 0 {
		return data, true
	}
	if len(data) < len(archiveTail)+2 || !bytes.HasSuffix(data, archiveTail) {
		return nil, false
	}

	encoded := make([][]byte, 0, len(entries))
	for _, e := range entries {
		b, err := json.Marshal(e)
		if err != nil {
			return nil, false
		}
		encoded = append(encoded, b)
	}

	cut := len(data) - len(archiveTail)
	emptyEntries := data[cut-1] == '['

	var buf bytes.Buffer
	buf.Grow(len(data) + len(archiveTail) + totalLen(encoded) + len(encoded))
	buf.Write(data[:cut])
	for i, b := range encoded {
		if i > 0 || !emptyEntries {
			buf.WriteByte(',')
		}
		buf.Write(b)
	}
	buf.Write(archiveTail)
	return buf.Bytes(), true
}

func totalLen(bs [][]byte) int {
	n := 0
	for _, b := range bs {
		n += len(b)
	}
	return n
}
