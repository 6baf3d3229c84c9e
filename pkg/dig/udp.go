package dig

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/miekg/dns"
)

// seams for tests
var loadClientConfig = func() (*dns.ClientConfig, error) {
	return dns.ClientConfigFromFile("/etc/resolv.conf")
}

var exchangeFunc = func(ctx context.Context, c *dns.Client, m *dns.Msg, addr string) (*dns.Msg, time.Duration, error) {
	return c.ExchangeContext(ctx, m, addr)
}

// UDPExchanger queries the system resolver over UDP, retrying over TCP when
// the reply is truncated.
type UDPExchanger struct {
	Server string
}

func (u *UDPExchanger) server() (string, error) {
	if u.Server != "" {
		return u.Server, nil
	}
	config, err := loadClientConfig()
	if err != nil {
		return "", err
	}
	if len(config.Servers) == 0 {
		return "", errors.New("no nameservers configured")
	}
	return net.JoinHostPort(config.Servers[0], config.Port), nil
}

func (u *UDPExchanger) Exchange(ctx context.Context, m *dns.Msg) (*dns.Msg, error) {
	addr, err := u.server()
	if err != nil {
		return nil, err
	}

	c := &dns.Client{}
	r, _, err := exchangeFunc(ctx, c, m, addr)
	if err != nil {
		return nil, err
	}
	if r.Truncated {
		c.Net = "tcp"
		r, _, err = exchangeFunc(ctx, c, m, addr)
		if err != nil {
			return nil, err
		}
	}
	return r, nil
}
