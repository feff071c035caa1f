package device

import (
	"context"
	"fmt"
	"time"

	"github.com/beevik/ntp"

	"timecircuits/internal/service"
)

const defaultNTPTimeout = 2 * time.Second

type queryFunc func(host string, opt ntp.QueryOptions) (*ntp.Response, error)

// NTPSource asks one NTP server for the time.
type NTPSource struct {
	server  string
	timeout time.Duration
	query   queryFunc
	now     func() time.Time
}

// NewNTPSource returns a source for server. An empty server makes every
// Fetch fail with service.ErrTimeUnavailable.
func NewNTPSource(server string, timeout time.Duration) *NTPSource {
	if timeout <= 0 {
		timeout = defaultNTPTimeout
	}
	return &NTPSource{
		server:  server,
		timeout: timeout,
		query:   ntp.QueryWithOptions,
		now:     time.Now,
	}
}

func (s *NTPSource) Fetch(ctx context.Context) (time.Time, error) {
	if s.server == "" {
		return time.Time{}, service.ErrTimeUnavailable
	}
	if err := ctx.Err(); err != nil {
		return time.Time{}, err
	}

	opts := ntp.QueryOptions{Timeout: s.timeout}
	if dl, ok := ctx.Deadline(); ok {
		if left := time.Until(dl); left < opts.Timeout {
			opts.Timeout = left
		}
	}

	resp, err := s.query(s.server, opts)
	if err != nil {
		return time.Time{}, fmt.Errorf("query %s: %w", s.server, err)
	}
	if err := resp.Validate(); err != nil {
		return time.Time{}, fmt.Errorf("validate response from %s: %w", s.server, err)
	}
	return s.now().Add(resp.ClockOffset), nil
}
