package validators

import (
	"context"
	"net"
	"net/mail"
	"strings"
	"time"
)

const lookupTimeout = 3 * time.Second

// Resolver is the part of net.Resolver used for the domain check.
type Resolver interface {
	LookupMX(ctx context.Context, name string) ([]*net.MX, error)
	LookupHost(ctx context.Context, host string) ([]string, error)
}

// IsEmailDomainValid reports whether email is well formed and its domain
// accepts mail (an MX record, or at least an address).
func IsEmailDomainValid(email string) bool {
	return EmailDomainChecker(net.DefaultResolver)(email)
}

func EmailDomainChecker(r Resolver) func(email string) bool {
	return func(email string) bool {
		addr, err := mail.ParseAddress(email)
		if err != nil || addr.Address != email {
			return false
		}

		at := strings.LastIndex(email, "@")
		if at < 0 || at == len(email)-1 {
			return false
		}
		domain := email[at+1:]

		ctx, cancel := context.WithTimeout(context.Background(), lookupTimeout)
		defer cancel()

		if mx, err := r.LookupMX(ctx, domain); err == nil && len(mx) > 0 {
			return true
		}
		if hosts, err := r.LookupHost(ctx, domain); err == nil && len(hosts) > 0 {
			return true
		}
		return false
	}
}
