package metrics

import (
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordCommand(t *testing.T) {
	before := testutil.ToFloat64(commandRunsTotal.WithLabelValues("df", "error"))
	RecordCommand("df", errors.New("exit status 1"), 10*time.Millisecond)
	after := testutil.ToFloat64(commandRunsTotal.WithLabelValues("df", "error"))
	if after-before != 1 {
		t.Fatalf("error counter moved by %v, want 1", after-before)
	}
}

func TestHandlerExposesCollectors(t *testing.T) {
	RecordHTTPRequest("GET", "/api/wifi", 200, time.Millisecond)
	RecordMailboxPut("percent")

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body := rec.Body.String()
	for _, name := range []string{
		"galconsole_http_requests_total",
		"galconsole_mailbox_puts_total",
		"go_goroutines",
	} {
		if !strings.Contains(body, name) {
			t.Errorf("metrics output missing %s", name)
		}
	}
}
