package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveLogin(t *testing.T) {
	c := New()
	c.ObserveLogin(LoginSuccess)
	c.ObserveLogin(LoginInvalid)
	c.ObserveLogin(LoginInvalid)

	if got := testutil.ToFloat64(c.logins.WithLabelValues(LoginInvalid)); got != 2 {
		t.Fatalf("invalid logins = %v, want 2", got)
	}
	if got := testutil.ToFloat64(c.logins.WithLabelValues(LoginSuccess)); got != 1 {
		t.Fatalf("successful logins = %v, want 1", got)
	}
}

func TestObserveReapIgnoresZero(t *testing.T) {
	c := New()
	c.ObserveReap("cleanup", 0)
	c.ObserveReap("cleanup", 3)

	if got := testutil.ToFloat64(c.reaped.WithLabelValues("cleanup")); got != 3 {
		t.Fatalf("reaped = %v, want 3", got)
	}
}

func TestNilCollectorsAreNoop(t *testing.T) {
	var c *Collectors
	c.ObserveLogin(LoginSuccess)
	c.ObserveReap("lazy", 1)
	c.ObserveRequest("/x", http.MethodGet, 200, time.Millisecond)
}

func TestHandlerExposesMetrics(t *testing.T) {
	c := New()
	c.ObserveLogin(LoginSuccess)
	c.ObserveRequest("/admin/me", http.MethodGet, http.StatusOK, 5*time.Millisecond)

	srv := httptest.NewServer(c.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	for _, want := range []string{
		`noor_admin_login_total{result="success"} 1`,
		`noor_http_request_duration_seconds_count{code="200",method="GET",route="/admin/me"} 1`,
	} {
		if !strings.Contains(string(body), want) {
			t.Fatalf("metrics output missing %q", want)
		}
	}
}
