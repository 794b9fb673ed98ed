package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"uoauth/api"
)

const shutdownTimeout = 10 * time.Second

func main() {
	args := ParseArgs()
	if missing := args.Validate(); len(missing) > 0 {
		panic("missing arguments: " + strings.Join(missing, ", "))
	}
	slog.SetLogLoggerLevel(parseLevel(args.LogLevel))

	impl, err := api.NewServer(args.ServerConfig)
	if err != nil {
		panic(err)
	}
	defer impl.Close()
	if err := impl.Start(); err != nil {
		slog.Error("Fail to start server", slog.Any("error", err))
		return
	}

	router := gin.Default()
	impl.RegisterHandlers(router)
	srv := &http.Server{
		Addr:    args.ServerURL,
		Handler: router,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Fail to shutdown server", slog.Any("error", err))
		}
	}()

	slog.Info("Server started", slog.String("addr", args.ServerURL), slog.String("id", args.ServerConfig.ID))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server stopped", slog.Any("error", err))
	}
}

func parseLevel(level string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return slog.LevelInfo
	}
	return l
}
