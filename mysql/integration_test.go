//go:build integration

package mysql_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	_ "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/nxminh/DatabaseQueue"
	"github.com/nxminh/DatabaseQueue/mysql"
)

type job struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

func TestQueueRoundTripIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("integration test disabled in short mode")
	}

	ctx := context.Background()
	container, dsn := startMySQLContainer(t, ctx)
	t.Cleanup(func() {
		_ = container.Terminate(ctx)
	})

	backend, err := mysql.New(dsn, mysql.WithTable("jobs"))
	require.NoError(t, err)

	queue, err := dbqueue.New[job](backend, dbqueue.JSONSerializer[job]{})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = queue.Close()
	})
	require.NoError(t, queue.Init(ctx))

	in := []job{
		{ID: 1, Name: "first"},
		{ID: 2, Name: "second"},
		{ID: 3, Name: "third"},
	}
	require.NoError(t, queue.EnqueueAll(ctx, in))
	require.Equal(t, int64(3), queue.Count())

	out, err := queue.DequeueUpTo(ctx, 2)
	require.NoError(t, err)
	require.Equal(t, in[:2], out)
	require.Equal(t, int64(1), queue.Count())

	rest, err := queue.DequeueUpTo(ctx, 10)
	require.NoError(t, err)
	require.Equal(t, in[2:], rest)

	_, err = queue.DequeueUpTo(ctx, 1)
	require.ErrorIs(t, err, dbqueue.ErrNoItems)
}

func TestQueueCountAcrossInstancesIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("integration test disabled in short mode")
	}

	ctx := context.Background()
	container, dsn := startMySQLContainer(t, ctx)
	t.Cleanup(func() {
		_ = container.Terminate(ctx)
	})

	backend, err := mysql.New(dsn, mysql.WithTable("jobs"))
	require.NoError(t, err)

	first, err := dbqueue.New[job](backend, dbqueue.JSONSerializer[job]{})
	require.NoError(t, err)
	require.NoError(t, first.Init(ctx))
	require.NoError(t, first.EnqueueAll(ctx, []job{{ID: 1}, {ID: 2}, {ID: 3}, {ID: 4}}))

	_, err = first.DequeueUpTo(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, int64(3), first.Count())
	require.NoError(t, first.Close())

	second, err := dbqueue.New[job](backend, dbqueue.JSONSerializer[job]{})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = second.Close()
	})
	require.NoError(t, second.Init(ctx))
	require.Equal(t, int64(3), second.Count())
}

func startMySQLContainer(t *testing.T, ctx context.Context) (testcontainers.Container, string) {
	t.Helper()
	port := nat.Port("3306/tcp")
	req := testcontainers.ContainerRequest{
		Image:        "mysql:8.0.36",
		ExposedPorts: []string{string(port)},
		Env: map[string]string{
			"MYSQL_ROOT_PASSWORD": "secret",
			"MYSQL_DATABASE":      "queue",
		},
		WaitingFor: wait.ForSQL(port, "mysql", func(host string, port nat.Port) string {
			return fmt.Sprintf("root:secret@tcp(%s:%s)/queue", host, port.Port())
		}).WithStartupTimeout(2 * time.Minute),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Skipf("start mysql container: %v", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		_ = container.Terminate(ctx)
		t.Fatalf("resolve host: %v", err)
	}
	mappedPort, err := container.MappedPort(ctx, port)
	if err != nil {
		_ = container.Terminate(ctx)
		t.Fatalf("resolve port: %v", err)
	}

	return container, fmt.Sprintf("root:secret@tcp(%s:%s)/queue", host, mappedPort.Port())
}
