package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/denismitr/goenv"
	"github.com/denismitr/redactor/cmd/initialize"
	"github.com/denismitr/redactor/internal/backoffice"
	"github.com/denismitr/redactor/internal/document/manipulator"
	"github.com/labstack/echo/v4"
)

var (
	migrate = flag.Bool("migrate", false, "Run the migrations?")
)

func main() {
	flag.Parse()

	initialize.DotEnv()

	log := initialize.Logger()

	registry, closeRegistry := initialize.MongoRegistry(10*time.Second, *migrate)
	defer closeRegistry()

	storage := initialize.S3StorageFromEnv()

	documents := backoffice.NewDocumentService(
		registry,
		storage,
		manipulator.New(initialize.ManipulatorConfigFromEnv()),
		goenv.MustString("DOCUMENTS_NAMESPACE"),
		log,
	)

	documents.AllowNamespaces(initialize.NamespacesFromEnv("DOCUMENTS_ALLOWED_NAMESPACES")...)

	server := backoffice.NewServer(echo.New(), goenv.MustString("BACKOFFICE_PORT"), log, documents)

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGTERM, syscall.SIGINT)

	if err := server.Run(stopCh, 10*time.Second); err != nil {
		log.Fatal(err)
	}
}
