package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCounters(t *testing.T) {
	before := testutil.ToFloat64(CascadeDeletes.WithLabelValues("video"))
	CascadeDeletes.WithLabelValues("video").Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(CascadeDeletes.WithLabelValues("video")))

	before = testutil.ToFloat64(MediaFilesRemoved)
	MediaFilesRemoved.Add(2)
	assert.Equal(t, before+2, testutil.ToFloat64(MediaFilesRemoved))
}
