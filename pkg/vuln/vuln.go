// Package vuln checks a domain for email spoofing exposure and for dangling
// CNAME records that allow a subdomain takeover.
package vuln

import (
	"fmt"
	"net/http"
	"time"

	"github.com/fatih/color"
)

var WhiteBold = color.New(color.FgWhite, color.Bold)
var MISCONFIG = color.YellowString("[MISCONFIG]")
var VULN = color.RedString("[VULN]")
var WARN = color.CyanString("[WARN]")

var cli = &http.Client{
	Timeout: 3 * time.Second,
	CheckRedirect: func(req *http.Request, via []*http.Request) error {
		return http.ErrUseLastResponse
	},
}

type HTTPError struct {
	Reason string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("http error: %s", e.Reason)
}
