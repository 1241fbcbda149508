package main

import (
	"log"
	"net/http"
	"os"
	"time"

	"github.com/danuarta/go-marketplace/app/cmd"
	"github.com/danuarta/go-marketplace/app/configs"
	"github.com/danuarta/go-marketplace/app/routes"
	"github.com/danuarta/go-marketplace/app/utils/logger"
	"go.uber.org/zap"
)

func main() {
	env := configs.LoadEnv()

	zlog, err := logger.New(logger.Config{
		Level:    env.LogLevel,
		Format:   env.LogFormat,
		Output:   env.LogOutput,
		FilePath: env.LogFilePath,
	})
	if err != nil {
		log.Fatal("failed to build logger:", err)
	}
	defer zlog.Sync()

	if len(os.Args) > 1 {
		cmd.RunCli(env, zlog)
		return
	}

	db, err := configs.OpenConnection(env, zlog)
	if err != nil {
		zlog.Fatal("database connection failed", zap.Error(err))
	}

	store, err := configs.NewSessionStore(env)
	if err != nil {
		zlog.Fatal("session store initialization failed", zap.Error(err))
	}

	router := routes.NewRouter(db, store, zlog)

	server := http.Server{
		Addr:         ":" + env.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	zlog.Info("server starting", zap.String("addr", server.Addr))
	if err := server.ListenAndServe(); err != nil {
		zlog.Fatal("server stopped", zap.Error(err))
	}
}
