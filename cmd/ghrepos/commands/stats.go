package commands

import (
	"io"
	"strconv"

	"github.com/fivetwenty-io/ghapi/pkg/ghapi"
)

// writeStats renders the per-endpoint request metrics. Nothing is written
// when no request was made.
func writeStats(w io.Writer, collector *ghapi.MetricsCollector) error {
	endpoints := collector.Endpoints()
	if len(endpoints) == 0 {
		return nil
	}

	rows := make([][]string, 0, len(endpoints))

	for _, endpoint := range endpoints {
		metrics, ok := collector.GetMetrics(endpoint)
		if !ok {
			continue
		}

		rows = append(rows, []string{
			endpoint,
			strconv.FormatInt(metrics.TotalRequests, 10),
			strconv.FormatInt(metrics.TotalErrors, 10),
			metrics.AverageLatency.String(),
			strconv.Itoa(metrics.LastStatusCode),
		})
	}

	return renderTable(w, []string{"Endpoint", "Requests", "Errors", "Avg latency", "Last status"}, rows)
}
