package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/FischerJoao/mindestoque/config"
	"github.com/FischerJoao/mindestoque/internal/app"
	"github.com/FischerJoao/mindestoque/internal/webserver"
)

var (
	cfile       = flag.String("c", "/etc/mindestoque.yml", "config file")
	showVersion = flag.Bool("v", false, "print version")
)

var version = "dev"

func main() {
	flag.Parse()
	if *showVersion {
		fmt.Println("mindestoque", version)
		return
	}

	cfg := config.LoadConfig(*cfile)

	application := app.NewApplication(cfg)
	application.Init(cfg)
	defer application.Release()

	server := webserver.NewWebServer(application)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application.StartBackgroundJobs(ctx)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		zap.L().Fatal("mindestoque exited with error", zap.Error(err))
	}
}
