package grpc

import (
	"context"
	"errors"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/test/bufconn"

	"github.com/ekisa-team/vocalis/internal/backend"
	"github.com/ekisa-team/vocalis/internal/model"
)

func startServer(t *testing.T) (*Server, healthpb.HealthClient) {
	t.Helper()

	lis := bufconn.Listen(1 << 20)
	srv := NewServer()
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return srv, healthpb.NewHealthClient(conn)
}

func check(t *testing.T, client healthpb.HealthClient, service string) healthpb.HealthCheckResponse_ServingStatus {
	t.Helper()
	resp, err := client.Check(context.Background(), &healthpb.HealthCheckRequest{Service: service})
	require.NoError(t, err)
	return resp.GetStatus()
}

func TestHealth_InitiallyServing(t *testing.T) {
	_, client := startServer(t)

	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, check(t, client, ""))
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, check(t, client, "vocalis.kokoro"))
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, check(t, client, "vocalis.supertonic"))
}

func TestHealth_FollowsModelStatus(t *testing.T) {
	srv, client := startServer(t)

	srv.ObserveModel(backend.Supertonic, model.StatusFailed, errors.New("download failed"))
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, check(t, client, ServiceName(backend.Supertonic)))
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, check(t, client, ServiceName(backend.Kokoro)))

	srv.ObserveModel(backend.Supertonic, model.StatusLoading, nil)
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, check(t, client, ServiceName(backend.Supertonic)))

	srv.ObserveModel(backend.Supertonic, model.StatusLoaded, nil)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, check(t, client, ServiceName(backend.Supertonic)))
}

func TestHealth_Drain(t *testing.T) {
	srv, client := startServer(t)

	srv.Drain()
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, check(t, client, ""))
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, check(t, client, "vocalis.kokoro"))

	srv.ObserveModel(backend.Kokoro, model.StatusLoaded, nil)
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, check(t, client, "vocalis.kokoro"))
}

func TestHealth_UnknownService(t *testing.T) {
	_, client := startServer(t)

	_, err := client.Check(context.Background(), &healthpb.HealthCheckRequest{Service: "vocalis.bogus"})
	assert.Error(t, err)
}

func TestHealth_RegistryHook(t *testing.T) {
	srv, client := startServer(t)

	reg := model.NewRegistry(func(ctx context.Context, id backend.Identifier) (backend.Engine, error) {
		return nil, errors.New("no assets")
	}, model.WithStatusHook(srv.ObserveModel))

	_, err := reg.Engine(context.Background(), backend.Kokoro)
	require.Error(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, check(t, client, "vocalis.kokoro"))
}
