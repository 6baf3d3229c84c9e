package vuln

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"strings"
)

const noSuchBucket = "NoSuchBucket"

func valueInBody(b io.ReadCloser, v string) bool {
	defer func() { _ = b.Close() }()
	body, err := io.ReadAll(io.LimitReader(b, 64*1024))
	if err != nil {
		return false
	}
	return strings.Contains(string(body), v)
}

// checkNoSuchBucket fetches the bucket endpoint and reports whether the
// storage provider answers that the bucket does not exist.
func checkNoSuchBucket(ctx context.Context, name string) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "http://"+name, nil)
	if err != nil {
		return false, err
	}
	resp, err := cli.Do(req)
	if err != nil {
		if strings.Contains(err.Error(), "no such host") {
			return false, &HTTPError{Reason: "No such host"}
		}
		return false, err
	}
	if resp.StatusCode == http.StatusForbidden {
		_ = resp.Body.Close()
		return false, &HTTPError{Reason: "Forbidden"}
	}
	if resp.StatusCode != http.StatusNotFound {
		_ = resp.Body.Close()
		return false, nil
	}
	return valueInBody(resp.Body, noSuchBucket), nil
}

func checkError(err error, sub, target string) {
	var herr *HTTPError
	if errors.As(err, &herr) {
		switch herr.Reason {
		case "No such host":
			log.Printf("%s %s has a CNAME to %s but the bucket endpoint does not resolve\n", MISCONFIG, sub, target)
		case "Forbidden":
			log.Printf("%s %s has a CNAME to %s but the bucket is private\n", MISCONFIG, sub, target)
		default:
			log.Printf("%s error: %s\n", MISCONFIG, herr)
		}
		return
	}
	log.Printf("%s bucket check for %s failed: %v\n", WARN, target, err)
}
