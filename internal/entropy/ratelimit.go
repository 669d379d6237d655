package entropy

import (
	"context"
	"time"

	"golang.org/x/time/rate"

	tycheerr "github.com/mrz1836/tyche/pkg/errors"
)

// RateLimitedSource throttles an underlying Source to a byte budget, the way
// a hardware generator on constrained devices only yields so many bytes per
// second. Requests that cannot be served within the timeout fail with
// ErrEntropyUnavailable.
type RateLimitedSource struct {
	src     Source
	limiter *rate.Limiter
	burst   int
	timeout time.Duration
}

// RateLimited wraps src with a token bucket of bytesPerSecond refill and
// burst capacity. A non-positive timeout means wait without limit.
func RateLimited(src Source, bytesPerSecond float64, burst int, timeout time.Duration) *RateLimitedSource {
	if burst < 1 {
		burst = 1
	}
	return &RateLimitedSource{
		src:     src,
		limiter: rate.NewLimiter(rate.Limit(bytesPerSecond), burst),
		burst:   burst,
		timeout: timeout,
	}
}

// Read waits for n byte tokens, in chunks of at most the burst size, then
// reads from the underlying source.
func (s *RateLimitedSource) Read(n int) ([]byte, error) {
	if n < 0 {
		return nil, tycheerr.ErrInvalidLength
	}

	ctx := context.Background()
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	out := make([]byte, 0, n)
	for remaining := n; remaining > 0; {
		chunk := min(remaining, s.burst)
		if err := s.limiter.WaitN(ctx, chunk); err != nil {
			return nil, tycheerr.WithCause(tycheerr.ErrEntropyUnavailable, err)
		}

		b, err := s.src.Read(chunk)
		if err != nil {
			return nil, err
		}
		out = append(out, b...)
		remaining -= chunk
	}

	return out, nil
}
