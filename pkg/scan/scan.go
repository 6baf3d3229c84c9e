// Package scan runs the five exposure checks against a domain and combines
// them into one graded result.
package scan

import (
	"context"
	"fmt"
	"log"
	"runtime/debug"
	"time"

	"github.com/pedrokiefer/exposure/pkg/breach"
	"github.com/pedrokiefer/exposure/pkg/ctlog"
	"github.com/pedrokiefer/exposure/pkg/risk"
	"github.com/pedrokiefer/exposure/pkg/typosquat"
	"github.com/pedrokiefer/exposure/pkg/vuln"
	"golang.org/x/sync/errgroup"
)

const DefaultTimeout = 45 * time.Second

type EmailChecker interface {
	Check(ctx context.Context, domain string) vuln.EmailSpoofingFinding
}

type TyposquatChecker interface {
	Check(ctx context.Context, domain string) typosquat.Finding
}

type CertificateChecker interface {
	Check(ctx context.Context, domain string) ctlog.Finding
}

type BreachChecker interface {
	Check(ctx context.Context, domain string) breach.Finding
}

type DanglingChecker interface {
	Check(ctx context.Context, domain string, extra ...string) vuln.DanglingFinding
}

// Result is the graded outcome of one scan. It is not modified after Scan
// returns it.
type Result struct {
	Domain                  string                    `json:"domain"`
	Score                   int                       `json:"score"`
	Grade                   string                    `json:"grade"`
	OverallRisk             risk.Risk                 `json:"overall_risk"`
	EmailSpoofing           vuln.EmailSpoofingFinding `json:"email_spoofing"`
	Typosquats              typosquat.Finding         `json:"typosquats"`
	CertificateTransparency ctlog.Finding             `json:"certificate_transparency"`
	CredentialExposure      breach.Finding            `json:"credential_exposure"`
	DanglingDNS             vuln.DanglingFinding      `json:"dangling_dns"`
	ScannedAt               time.Time                 `json:"scanned_at"`
}

type Scanner struct {
	Email        EmailChecker
	Typosquats   TyposquatChecker
	Certificates CertificateChecker
	Breaches     BreachChecker
	Dangling     DanglingChecker

	Timeout time.Duration
	Now     func() time.Time
}

// Scan normalises raw, runs every check concurrently and grades the result.
func (s *Scanner) Scan(ctx context.Context, raw string) (*Result, error) {
	return s.ScanWithLabels(ctx, raw, nil)
}

// ScanWithLabels is Scan with extra subdomain labels for the dangling DNS
// check, such as the CNAME names of a hosted zone.
func (s *Scanner) ScanWithLabels(ctx context.Context, raw string, labels []string) (*Result, error) {
	domain := Normalize(raw)
	if err := Validate(domain); err != nil {
		return nil, err
	}

	timeout := s.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	r := &Result{Domain: domain}

	// Each goroutine writes only its own field. A plain group never cancels
	// siblings; the only error it carries is a recovered panic.
	var g errgroup.Group
	g.Go(guard("email spoofing", func() { r.EmailSpoofing = s.Email.Check(ctx, domain) }))
	g.Go(guard("typosquats", func() { r.Typosquats = s.Typosquats.Check(ctx, domain) }))
	g.Go(guard("certificate transparency", func() { r.CertificateTransparency = s.Certificates.Check(ctx, domain) }))
	g.Go(guard("credential exposure", func() { r.CredentialExposure = s.Breaches.Check(ctx, domain) }))
	g.Go(guard("dangling dns", func() { r.DanglingDNS = s.Dangling.Check(ctx, domain, labels...) }))
	if err := g.Wait(); err != nil {
		log.Printf("scan %s: %v\n", domain, err)
		return nil, &InternalError{Err: err}
	}

	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	r.ScannedAt = now().UTC()
	r.grade()
	return r, nil
}

func guard(name string, fn func()) func() error {
	return func() (err error) {
		defer func() {
			if p := recover(); p != nil {
				log.Printf("%s check panicked: %v\n%s", name, p, debug.Stack())
				err = fmt.Errorf("%s check: %v", name, p)
			}
		}()
		fn()
		return nil
	}
}
