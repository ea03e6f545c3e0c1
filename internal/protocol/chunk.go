package protocol

import "github.com/duolink/duolink/internal/engine"

// chunks splits data into pieces of at most size bytes each. A
// payload of zero length still produces exactly one (empty) chunk, so
// that e.g. an empty text string round-trips as a single packet.
func chunks(data []byte, size int) [][]byte {
	if len(data) == 0 {
		return [][]byte{{}}
	}
	n := (len(data) + size - 1) / size
	out := make([][]byte, n)
	for i := 0; i < n; i++ {
		start := i * size
		end := start + size
		if end > len(data) {
			end = len(data)
		}
		out[i] = data[start:end]
	}
	return out
}

// checkChunkCount enforces the PayloadTooLarge rule of spec.md §4.1:
// a chunked transfer that would require more than config.MaxChunks
// packets (the single-byte chunk-index framing's limit) fails fast,
// before anything is sent.
func checkChunkCount(n, max int) error {
	if n > max {
		return &engine.Error{Kind: engine.KindPayloadTooLarge, Op: "chunk"}
	}
	return nil
}
