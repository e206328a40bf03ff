package discordgw

import (
	"strings"
	"testing"
)

func TestChunkMessageUnderLimitIsSingleChunk(t *testing.T) {
	chunks := chunkMessage("hello there", 2000)
	if len(chunks) != 1 || chunks[0] != "hello there" {
		t.Fatalf("expected a single untouched chunk, got %v", chunks)
	}
}

func TestChunkMessageSplitsOnNewlineBoundary(t *testing.T) {
	content := strings.Repeat("a", 10) + "\n" + strings.Repeat("b", 10)
	chunks := chunkMessage(content, 15)
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d: %v", len(chunks), chunks)
	}
	if chunks[0] != strings.Repeat("a", 10) {
		t.Errorf("expected first chunk to stop at the newline, got %q", chunks[0])
	}
}

func TestChunkMessageNeverExceedsLimit(t *testing.T) {
	content := strings.Repeat("word ", 1000)
	for _, chunk := range chunkMessage(content, maxMessageLen) {
		if len(chunk) > maxMessageLen {
			t.Fatalf("chunk of length %d exceeds maxMessageLen %d", len(chunk), maxMessageLen)
		}
	}
}

func TestFindSplitPointPrefersNewlineOverSpace(t *testing.T) {
	content := strings.Repeat("a", 15) + "\n" + strings.Repeat("b", 30)
	split := findSplitPoint(content, 20)
	if split != 15 {
		t.Fatalf("expected split at the newline (index 15), got %d", split)
	}
}

func TestFindSplitPointFallsBackToHardLimit(t *testing.T) {
	content := strings.Repeat("a", 30)
	split := findSplitPoint(content, 15)
	if split != 15 {
		t.Fatalf("expected hard cutoff at 15 with no boundary available, got %d", split)
	}
}
