package framewiretcp

import "github.com/prometheus/client_golang/prometheus"

// MetricsCollector exposes a socket's ConnectionMetrics as a
// prometheus.Collector. Register it with a prometheus registry to scrape the
// socket's counters:
//
//	prometheus.MustRegister(framewiretcp.NewMetricsCollector(sock.Metrics(), "printer"))
type MetricsCollector struct {
	metrics *ConnectionMetrics

	msgSend       *prometheus.Desc
	msgRecv       *prometheus.Desc
	sendErr       *prometheus.Desc
	recvErr       *prometheus.Desc
	keepaliveSend *prometheus.Desc
	connRetry     *prometheus.Desc
}

var _ prometheus.Collector = (*MetricsCollector)(nil)

// NewMetricsCollector creates a collector over the given metrics. The
// connection label distinguishes multiple sockets registered in the same
// prometheus registry.
func NewMetricsCollector(m *ConnectionMetrics, connection string) *MetricsCollector {
	labels := prometheus.Labels{"connection": connection}

	return &MetricsCollector{
		metrics: m,
		msgSend: prometheus.NewDesc(
			"framewire_messages_sent_total",
			"Number of messages written to the connection.",
			nil, labels,
		),
		msgRecv: prometheus.NewDesc(
			"framewire_messages_received_total",
			"Number of messages decoded from the connection.",
			nil, labels,
		),
		sendErr: prometheus.NewDesc(
			"framewire_send_errors_total",
			"Number of outbound serialization or write failures.",
			nil, labels,
		),
		recvErr: prometheus.NewDesc(
			"framewire_receive_errors_total",
			"Number of inbound decode, parse, or dispatch failures.",
			nil, labels,
		),
		keepaliveSend: prometheus.NewDesc(
			"framewire_keepalives_sent_total",
			"Number of keepalive frames written to the connection.",
			nil, labels,
		),
		connRetry: prometheus.NewDesc(
			"framewire_connect_retries",
			"Number of consecutive failed connect attempts.",
			nil, labels,
		),
	}
}

// Describe implements prometheus.Collector.
func (c *MetricsCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.msgSend
	ch <- c.msgRecv
	ch <- c.sendErr
	ch <- c.recvErr
	ch <- c.keepaliveSend
	ch <- c.connRetry
}

// Collect implements prometheus.Collector.
func (c *MetricsCollector) Collect(ch chan<- prometheus.Metric) {
	ch <- prometheus.MustNewConstMetric(c.msgSend, prometheus.CounterValue, float64(c.metrics.MsgSendCount.Load()))
	ch <- prometheus.MustNewConstMetric(c.msgRecv, prometheus.CounterValue, float64(c.metrics.MsgRecvCount.Load()))
	ch <- prometheus.MustNewConstMetric(c.sendErr, prometheus.CounterValue, float64(c.metrics.SendErrCount.Load()))
	ch <- prometheus.MustNewConstMetric(c.recvErr, prometheus.CounterValue, float64(c.metrics.RecvErrCount.Load()))
	ch <- prometheus.MustNewConstMetric(c.keepaliveSend, prometheus.CounterValue, float64(c.metrics.KeepaliveSendCount.Load()))
	ch <- prometheus.MustNewConstMetric(c.connRetry, prometheus.GaugeValue, float64(c.metrics.ConnRetryGauge.Load()))
}
