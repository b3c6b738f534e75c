package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCollectorCountsActions(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordAction("vote", "ok", 3*time.Millisecond)
	c.RecordAction("vote", "ok", time.Millisecond)
	c.RecordAction("rate", "duplicate_action", time.Millisecond)
	c.RecordChangeDropped()

	assert.Equal(t, 2.0, testutil.ToFloat64(c.actions.WithLabelValues("vote", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.actions.WithLabelValues("rate", "duplicate_action")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.changesDropped))
	assert.Equal(t, 2, testutil.CollectAndCount(c.actionLatency))
}

func TestNopRecorder(t *testing.T) {
	var r Recorder = Nop{}
	r.RecordAction("vote", "ok", time.Second)
	r.RecordChangeDropped()
}
