package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveCountsErrors(t *testing.T) {
	Register()
	Register()
	before := testutil.ToFloat64(APIErrors.WithLabelValues("analysis"))
	Observe("analysis", time.Now(), true)
	Observe("analysis", time.Now(), false)
	if got := testutil.ToFloat64(APIErrors.WithLabelValues("analysis")); got != before+1 {
		t.Fatalf("errors = %v, want %v", got, before+1)
	}
}
