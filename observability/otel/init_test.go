package otel

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInitRequiresServiceName(t *testing.T) {
	_, err := Init(context.Background(), Config{Traces: true})
	require.Error(t, err)
}

func TestInitDisabledIsNoop(t *testing.T) {
	shutdown, err := Init(context.Background(), Config{ServiceName: "tipledgerd"})
	require.NoError(t, err)
	require.NoError(t, shutdown(context.Background()))
}

func TestParseHeaders(t *testing.T) {
	headers := ParseHeaders("authorization=Bearer abc, x-tenant = creators ,broken,=empty")
	require.Equal(t, map[string]string{
		"authorization": "Bearer abc",
		"x-tenant":      "creators",
	}, headers)
}

func TestSamplerRatio(t *testing.T) {
	require.Contains(t, Config{}.sampler().Description(), "AlwaysOnSampler")
	require.Contains(t, Config{SampleRatio: 0.25}.sampler().Description(), "TraceIDRatioBased")
}

func TestResourceAttributesDescribeLedgerNode(t *testing.T) {
	attrs := Config{
		ServiceName:    "tipledgerd",
		Environment:    "prod",
		StorageBackend: "bolt",
		DataDir:        "/var/lib/tipledger",
	}.resourceAttributes()

	values := map[string]string{}
	for _, kv := range attrs {
		values[string(kv.Key)] = kv.Value.AsString()
	}
	require.Equal(t, "tipledgerd", values["service.name"])
	require.Equal(t, "prod", values["deployment.environment"])
	require.Equal(t, "bolt", values[string(StorageBackendKey)])
	require.Equal(t, "/var/lib/tipledger", values[string(DataDirKey)])

	require.Len(t, Config{ServiceName: "tipledgerd"}.resourceAttributes(), 1)
}
