//go:build integration

package integration

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"archaur/internal/adapters"
)

// aurRPCMockScript serves a fixed AUR-RPC-shaped response for "info"
// requests naming "foo-pkg", the same one-result response for every
// "search" request, and an empty result list for anything else, the
// minimum surface AurClientAdapter exercises.
const aurRPCMockScript = `
import json
from http.server import BaseHTTPRequestHandler, ThreadingHTTPServer
from urllib.parse import urlparse, parse_qs

INFO_RESULT = {
    "Name": "foo-pkg",
    "Version": "2.1.0-1",
    "PackageBase": "foo-pkg",
    "Depends": ["glibc>=2.0"],
    "MakeDepends": [],
    "CheckDepends": [],
    "Provides": [],
    "Conflicts": [],
    "Replaces": [],
}

class Handler(BaseHTTPRequestHandler):
    def do_GET(self):
        parsed = urlparse(self.path)
        if not parsed.path.endswith("/rpc"):
            self.send_response(404)
            self.end_headers()
            return
        query = parse_qs(parsed.query)
        rpc_type = query.get("type", [""])[0]
        names = query.get("arg[]", [])
        if rpc_type == "info" and "foo-pkg" in names:
            body = {"type": "multiinfo", "results": [INFO_RESULT], "error": ""}
        elif rpc_type == "search":
            body = {"type": "search", "results": [INFO_RESULT], "error": ""}
        else:
            body = {"type": rpc_type, "results": [], "error": ""}
        payload = json.dumps(body).encode("utf-8")
        self.send_response(200)
        self.send_header("Content-Type", "application/json")
        self.end_headers()
        self.wfile.write(payload)

    def log_message(self, format, *args):
        pass

ThreadingHTTPServer(("0.0.0.0", 8090), Handler).serve_forever()
`

func startAurRPCMock(ctx context.Context, t *testing.T) (string, func()) {
	t.Helper()
	req := testcontainers.ContainerRequest{
		Image:        "python:3.12-alpine",
		ExposedPorts: []string{"8090/tcp"},
		Cmd:          []string{"python", "-c", aurRPCMockScript},
		WaitingFor:   wait.ForListeningPort("8090/tcp").WithStartupTimeout(30 * time.Second),
	}
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "8090/tcp")
	require.NoError(t, err)

	endpoint := fmt.Sprintf("http://%s:%s", host, port.Port())
	cleanup := func() {
		_ = container.Terminate(ctx)
	}
	return endpoint, cleanup
}

func TestAurClientAdapterAgainstRPCContainer(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping testcontainers integration test in short mode")
	}

	ctx := context.Background()
	endpoint, cleanup := startAurRPCMock(ctx, t)
	t.Cleanup(cleanup)

	client := adapters.NewAurClientAdapter(endpoint)

	info, err := client.Info(ctx, []string{"foo-pkg", "unknown-pkg"})
	require.NoError(t, err)
	require.Len(t, info, 1)
	require.Equal(t, "foo-pkg", info[0].Name)
	require.Equal(t, "2.1.0-1", info[0].Version)
	require.Len(t, info[0].Depends, 1)
	require.Equal(t, "glibc", info[0].Depends[0].Name)

	results, err := client.Search(ctx, "foo")
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, "foo-pkg", results[0].Name)
}
