package ctlog

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/pedrokiefer/exposure/pkg/risk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func fixedNow() time.Time { return testNow }

type fakeSearcher struct {
	entries []Entry
	err     error
	query   string
}

func (f *fakeSearcher) Search(ctx context.Context, q string) ([]Entry, error) {
	f.query = q
	return f.entries, f.err
}

func entry(cn string, daysAgo int) Entry {
	nb := testNow.AddDate(0, 0, -daysAgo)
	return Entry{
		IssuerName: "C=US, O=Let's Encrypt, CN=R3",
		CommonName: cn,
		NotBefore:  nb.Format("2006-01-02T15:04:05"),
		NotAfter:   nb.AddDate(0, 0, 90).Format("2006-01-02T15:04:05"),
	}
}

func TestCheck_Filtering(t *testing.T) {
	s := &fakeSearcher{entries: []Entry{
		entry("example.com", 1),
		entry("*.example.com", 1),
		entry("example-login.com", 5),
		entry("EXAMPLE-LOGIN.COM", 2),
		entry("secure-example.net", 120),
		entry("unrelated.org", 1),
		entry("www.example.com", 10),
		{CommonName: "example-bad-date.com", NotBefore: "yesterday"},
	}}
	a := NewAnalyzer(s, Options{Now: fixedNow})
	f := a.Check(context.Background(), "example.com")

	require.Equal(t, "%example%", s.query)
	require.Len(t, f.Certificates, 2)
	assert.Equal(t, "example-login.com", f.Certificates[0].CommonName)
	assert.Equal(t, testNow.AddDate(0, 0, -2).Format(time.RFC3339), f.Certificates[0].NotBefore)
	assert.Equal(t, "www.example.com", f.Certificates[1].CommonName)
	assert.Equal(t, risk.Low, f.Risk)
	assert.Equal(t, 5, f.Penalty)
}

func TestCheck_RiskTable(t *testing.T) {
	tests := []struct {
		n       int
		risk    risk.Risk
		penalty int
		kept    int
	}{
		{0, risk.Low, 0, 0},
		{1, risk.Low, 5, 1},
		{2, risk.Low, 5, 2},
		{3, risk.Medium, 10, 3},
		{9, risk.Medium, 10, 9},
		{10, risk.High, 15, 10},
		{35, risk.High, 15, 20},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.n), func(t *testing.T) {
			s := &fakeSearcher{}
			for i := 0; i < tt.n; i++ {
				s.entries = append(s.entries, entry(fmt.Sprintf("example-%d.com", i), i))
			}
			f := NewAnalyzer(s, Options{Now: fixedNow}).Check(context.Background(), "example.com")
			assert.Equal(t, tt.risk, f.Risk)
			assert.Equal(t, tt.penalty, f.Penalty)
			assert.Len(t, f.Certificates, tt.kept)
		})
	}
}

func TestCheck_SearchFailureIsEmpty(t *testing.T) {
	s := &fakeSearcher{err: errors.New("connection reset by peer")}
	f := NewAnalyzer(s, Options{Now: fixedNow}).Check(context.Background(), "example.com")

	require.NotNil(t, f.Certificates)
	require.Empty(t, f.Certificates)
	require.Equal(t, risk.Low, f.Risk)
	require.Equal(t, 0, f.Penalty)
}

func TestClient_Search(t *testing.T) {
	h := &http.Client{}
	httpmock.ActivateNonDefault(h)
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder("GET", DefaultURL, func(req *http.Request) (*http.Response, error) {
		q := req.URL.Query()
		if q.Get("q") != "%example%" || q.Get("output") != "json" || q.Get("exclude") != "expired" {
			return httpmock.NewStringResponse(http.StatusBadRequest, ""), nil
		}
		return httpmock.NewStringResponse(http.StatusOK, `[
			{"issuer_ca_id":183267,"issuer_name":"C=US, O=Let's Encrypt, CN=R3","common_name":"example-login.com",
			 "name_value":"example-login.com","id":1,"entry_timestamp":"2025-05-30T10:00:00.123",
			 "not_before":"2025-05-30T09:00:00","not_after":"2025-08-28T09:00:00","serial_number":"04ab"}
		]`), nil
	})

	c := NewClient(h, 100)
	entries, err := c.Search(context.Background(), "%example%")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "example-login.com", entries[0].CommonName)
	require.Equal(t, "2025-05-30T09:00:00", entries[0].NotBefore)
}

func TestClient_Errors(t *testing.T) {
	h := &http.Client{}
	httpmock.ActivateNonDefault(h)
	defer httpmock.DeactivateAndReset()

	c := NewClient(h, 100)

	httpmock.RegisterResponder("GET", DefaultURL, httpmock.NewStringResponder(http.StatusBadGateway, "<html>502</html>"))
	_, err := c.Search(context.Background(), "%example%")
	var he *HTTPError
	require.ErrorAs(t, err, &he)
	require.Equal(t, http.StatusBadGateway, he.StatusCode)

	httpmock.RegisterResponder("GET", DefaultURL, httpmock.NewStringResponder(http.StatusOK, "not json"))
	_, err = c.Search(context.Background(), "%example%")
	require.Error(t, err)

	httpmock.RegisterResponder("GET", DefaultURL, httpmock.NewErrorResponder(errors.New("dial tcp: i/o timeout")))
	f := NewAnalyzer(c, Options{Now: fixedNow}).Check(context.Background(), "example.com")
	require.Empty(t, f.Certificates)
	require.Equal(t, risk.Low, f.Risk)
}
