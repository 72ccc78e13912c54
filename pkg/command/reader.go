package command

import (
	"bufio"
	"context"
	"io"
	"time"
)

const (
	// MaxTokenLength is the number of characters after which a token is
	// completed even without a newline.
	MaxTokenLength = 9
	// IdleTimeout discards a partial token when no byte arrived for this long.
	IdleTimeout = 500 * time.Millisecond
)

// Reader assembles command tokens from a byte stream. It has no timers;
// the idle reset is checked against the timestamp passed with each byte.
type Reader struct {
	buf  [MaxTokenLength]byte
	n    int
	last time.Time
}

// Feed adds one byte received at now. It returns the normalized token and
// true when a token is complete. Empty lines are not reported.
func (r *Reader) Feed(b byte, now time.Time) (string, bool) {
	if r.n > 0 && now.Sub(r.last) > IdleTimeout {
		r.n = 0
	}
	r.last = now

	switch b {
	case '\n':
		return r.flush()
	case '\r':
		return "", false
	}

	r.buf[r.n] = b
	r.n++
	if r.n == MaxTokenLength {
		return r.flush()
	}
	return "", false
}

// Reset drops any partial token.
func (r *Reader) Reset() {
	r.n = 0
}

func (r *Reader) flush() (string, bool) {
	token := Normalize(string(r.buf[:r.n]))
	r.n = 0
	if token == "" {
		return "", false
	}
	return token, true
}

// Tokens reads src until EOF or ctx is done and emits every completed
// token. The channel is closed when reading stops.
func Tokens(ctx context.Context, src io.Reader) <-chan string {
	out := make(chan string)
	go func() {
		defer close(out)

		var r Reader
		br := bufio.NewReader(src)
		for {
			b, err := br.ReadByte()
			if err != nil {
				return
			}
			token, ok := r.Feed(b, time.Now())
			if !ok {
				continue
			}
			select {
			case out <- token:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}
