package protocol

import (
	"testing"

	"github.com/duolink/duolink/internal/config"
)

func TestChunksSplitsEvenly(t *testing.T) {
	data := []byte("abcdefghij")
	got := chunks(data, 3)
	want := [][]byte{[]byte("abc"), []byte("def"), []byte("ghi"), []byte("j")}
	if len(got) != len(want) {
		t.Fatalf("expected %d chunks, got %d", len(want), len(got))
	}
	for i := range want {
		if string(got[i]) != string(want[i]) {
			t.Fatalf("chunk %d: got %q, want %q", i, got[i], want[i])
		}
	}
}

func TestChunksEmptyInputYieldsOneEmptyChunk(t *testing.T) {
	got := chunks(nil, 10)
	if len(got) != 1 || len(got[0]) != 0 {
		t.Fatalf("expected one empty chunk, got %v", got)
	}
}

func TestCheckChunkCountRejectsOverLimit(t *testing.T) {
	if err := checkChunkCount(256, config.MaxChunks); err == nil {
		t.Fatal("expected error for 256 chunks over a 255 limit")
	}
	if err := checkChunkCount(255, config.MaxChunks); err != nil {
		t.Fatalf("expected no error at the limit, got %v", err)
	}
}
