package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/denismitr/goenv"
	"github.com/denismitr/redactor/cmd/initialize"
	"github.com/denismitr/redactor/internal/proxy"
)

func main() {
	initialize.DotEnv()

	log := initialize.Logger()

	registry, closeRegistry := initialize.MongoRegistry(30*time.Second, false)
	defer closeRegistry()

	storage := initialize.S3StorageFromEnv()

	documentProxy := proxy.NewStorageDocumentProxy(log, registry, storage)
	server := proxy.NewServer(proxy.Config{
		Port:         goenv.MustString("PROXY_PORT"),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 60 * time.Second,
	}, log, documentProxy)

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGTERM, syscall.SIGINT)

	if err := server.Run(stopCh, 10*time.Second); err != nil {
		log.Fatal(err)
	}
}
