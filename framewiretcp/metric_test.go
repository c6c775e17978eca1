package framewiretcp

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

func TestConnectionMetrics(t *testing.T) {
	require := require.New(t)

	var m ConnectionMetrics

	m.incMsgSendCount()
	m.incMsgSendCount()
	m.incMsgRecvCount()
	m.incSendErrCount()
	m.incRecvErrCount()
	m.incKeepaliveSendCount()
	m.incConnRetryGauge()
	m.incConnRetryGauge()

	require.Equal(uint64(2), m.MsgSendCount.Load())
	require.Equal(uint64(1), m.MsgRecvCount.Load())
	require.Equal(uint64(1), m.SendErrCount.Load())
	require.Equal(uint64(1), m.RecvErrCount.Load())
	require.Equal(uint64(1), m.KeepaliveSendCount.Load())
	require.Equal(uint32(2), m.ConnRetryGauge.Load())

	m.resetConnRetryGauge()
	require.Equal(uint32(0), m.ConnRetryGauge.Load())
}

func TestMetricsCollector(t *testing.T) {
	require := require.New(t)

	var m ConnectionMetrics
	m.incMsgSendCount()
	m.incMsgRecvCount()

	collector := NewMetricsCollector(&m, "test")

	reg := prometheus.NewPedanticRegistry()
	require.NoError(reg.Register(collector))

	families, err := reg.Gather()
	require.NoError(err)
	require.Len(families, 6)

	values := make(map[string]float64, len(families))
	for _, fam := range families {
		require.Len(fam.GetMetric(), 1)
		metric := fam.GetMetric()[0]

		if metric.GetCounter() != nil {
			values[fam.GetName()] = metric.GetCounter().GetValue()
		} else {
			values[fam.GetName()] = metric.GetGauge().GetValue()
		}

		require.Len(metric.GetLabel(), 1)
		require.Equal("connection", metric.GetLabel()[0].GetName())
		require.Equal("test", metric.GetLabel()[0].GetValue())
	}

	require.Equal(float64(1), values["framewire_messages_sent_total"])
	require.Equal(float64(1), values["framewire_messages_received_total"])
	require.Equal(float64(0), values["framewire_connect_retries"])
}
