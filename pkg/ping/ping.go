package ping

import (
	"context"
	"time"

	probing "github.com/prometheus-community/pro-bing"
)

// Pinger is the subset of probing.Pinger used by Check.
type Pinger interface {
	SetTimeout(d time.Duration)
	SetCount(n int)
	Run() error
	Statistics() *probing.Statistics
}

type realPinger struct {
	*probing.Pinger
}

func (p *realPinger) SetTimeout(d time.Duration) { p.Timeout = d }
func (p *realPinger) SetCount(n int)             { p.Count = n }

var newPinger = func(host string) (Pinger, error) {
	p, err := probing.NewPinger(host)
	if err != nil {
		return nil, err
	}
	// unprivileged UDP ping, no raw socket needed
	p.SetPrivileged(false)
	return &realPinger{Pinger: p}, nil
}

// Check reports whether host answered at least one echo request.
func Check(ctx context.Context, host string) (bool, error) {
	pinger, err := newPinger(host)
	if err != nil {
		return false, err
	}
	timeout := 5 * time.Second
	if dl, ok := ctx.Deadline(); ok && time.Until(dl) < timeout {
		timeout = time.Until(dl)
	}
	pinger.SetTimeout(timeout)
	pinger.SetCount(3)
	err = pinger.Run() // Blocks until finished.
	if err != nil {
		return false, err
	}
	stats := pinger.Statistics()
	return stats.PacketsRecv > 0, nil
}
