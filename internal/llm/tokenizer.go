package llm

import (
	"sync"

	tiktoken "github.com/pkoukk/tiktoken-go"
)

const defaultEncoding = "cl100k_base"

// Tokenizer estimates prompt size for logging. The BPE table is loaded in the background
// (it may need a download); until it is ready, or if loading fails, a character heuristic
// is used.
type Tokenizer struct {
	mu      sync.RWMutex
	encoder *tiktoken.Tiktoken
}

// NewTokenizer starts loading the encoding and returns immediately.
func NewTokenizer() *Tokenizer {
	t := &Tokenizer{}
	go func() {
		enc, err := tiktoken.GetEncoding(defaultEncoding)
		if err != nil {
			return
		}
		t.mu.Lock()
		t.encoder = enc
		t.mu.Unlock()
	}()
	return t
}

// CountText returns the token count of text.
func (t *Tokenizer) CountText(text string) int {
	if text == "" {
		return 0
	}
	if t != nil {
		t.mu.RLock()
		enc := t.encoder
		t.mu.RUnlock()
		if enc != nil {
			return len(enc.Encode(text, nil, nil))
		}
	}
	return heuristicTokenCount(text)
}

// IsPrecise reports whether the tiktoken encoder is loaded.
func (t *Tokenizer) IsPrecise() bool {
	if t == nil {
		return false
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.encoder != nil
}

// heuristicTokenCount assumes roughly four characters per token.
func heuristicTokenCount(text string) int {
	n := len([]rune(text)) / 4
	if n < 1 {
		n = 1
	}
	return n
}
