package presentation

import (
	"context"
	"fmt"
	"net"

	"golang.org/x/sync/errgroup"

	"memtap/application"
	"memtap/domain/proc"
	"memtap/infrastructure/listeners/tcp_listener"
	"memtap/infrastructure/logging"
	"memtap/infrastructure/network/ws"
	"memtap/infrastructure/procmem"
	"memtap/infrastructure/routing/server_routing"
	"memtap/infrastructure/settings"
)

// StartServer binds the agent and serves until ctx ends. A bind failure is
// returned to the caller and is fatal; everything after that only logs.
func StartServer(ctx context.Context, conf settings.Settings) error {
	logger := logging.NewLogLogger()

	netListener, err := net.Listen("tcp", conf.ListenAddr)
	if err != nil {
		return fmt.Errorf("bind %s: %w", conf.ListenAddr, err)
	}

	var listener application.FrameListener
	switch conf.Protocol {
	case settings.WS:
		listener = ws.NewListener(ctx, netListener, logger)
	default:
		listener = tcp_listener.NewFramedListener(netListener)
	}

	handler := server_routing.NewTransportHandler(
		ctx,
		conf,
		listener,
		procmem.NewProcScanner(),
		func() application.Memory { return procmem.NewMemory(proc.UnboundPid) },
		logger,
	)

	g, _ := errgroup.WithContext(ctx)
	g.Go(handler.HandleTransport)
	return g.Wait()
}
