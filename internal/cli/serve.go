package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sadopc/controlwork/internal/api"
	"github.com/sadopc/controlwork/internal/logger"
)

// ServeCmd exposes read-only stats over HTTP until interrupted.
type ServeCmd struct {
	Addr string `help:"Listen address." default:"127.0.0.1:8765"`
}

func (c *ServeCmd) Run(ctx *Context) error {
	st, err := ctx.OpenStore()
	if err != nil {
		return err
	}
	defer st.Close()

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("serving stats", "addr", c.Addr)
	ctx.printf("Listening on http://%s\n", c.Addr)
	return api.NewServer(st, ctx.Settings, ctx.Clock).ListenAndServe(sigCtx, c.Addr)
}
