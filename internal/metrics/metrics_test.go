package metrics

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"
)

func freePort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port
}

func TestServerServesMetrics(t *testing.T) {
	port := freePort(t)
	srv := Start(port)
	defer srv.Stop(context.Background())

	SearchQueriesTotal.Inc()
	LeadsExtractedTotal.WithLabelValues("realtors", "instagram").Inc()

	var body string
	// Give the goroutine a moment to bind.
	for i := 0; i < 50; i++ {
		resp, err := http.Get(fmt.Sprintf("http://127.0.0.1:%d/metrics", port))
		if err != nil {
			time.Sleep(20 * time.Millisecond)
			continue
		}
		b, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		body = string(b)
		break
	}
	if body == "" {
		t.Fatal("metrics endpoint never became reachable")
	}

	for _, want := range []string{
		"prospect_search_queries_total",
		"prospect_leads_extracted_total",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics output missing %s", want)
		}
	}
}

func TestStopIsIdempotentOnNil(t *testing.T) {
	var s Server
	if err := s.Stop(context.Background()); err != nil {
		t.Errorf("Stop on empty server: %v", err)
	}
}
