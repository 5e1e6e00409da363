package main

import (
	"context"
	"net"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Bhoomi3044/optivest/internal/modules/charts"
	"github.com/Bhoomi3044/optivest/internal/modules/optimization"
	"github.com/Bhoomi3044/optivest/internal/server"
)

func TestServeUntilDone_ShutsDownOnCancel(t *testing.T) {
	log := zerolog.Nop()
	srv := server.New(server.Config{
		Log:      log,
		Port:     0,
		Service:  optimization.NewService(optimization.Config{Workers: 1}, nil, log),
		Charts:   charts.NewService(log),
		Defaults: optimization.DefaultRunOptions(),
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := serveUntilDone(ctx, srv, &globalOptions{log: log})
	assert.NoError(t, err)
}

func TestServeUntilDone_ListenerFailure(t *testing.T) {
	busy, err := net.Listen("tcp", ":0")
	require.NoError(t, err)
	defer busy.Close()

	log := zerolog.Nop()
	srv := server.New(server.Config{
		Log:      log,
		Port:     busy.Addr().(*net.TCPAddr).Port,
		Service:  optimization.NewService(optimization.Config{Workers: 1}, nil, log),
		Charts:   charts.NewService(log),
		Defaults: optimization.DefaultRunOptions(),
	})

	err = serveUntilDone(context.Background(), srv, &globalOptions{log: log})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP server failed")
}

func TestServe_InvalidPort(t *testing.T) {
	_, _, err := runCLI(t, "serve", "--port", "70000")
	assert.Error(t, err)
	assert.Equal(t, ExitInvalidInput, exitCode(err))
}
