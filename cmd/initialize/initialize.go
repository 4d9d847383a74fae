package initialize

import (
	"context"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/denismitr/goenv"
	"github.com/denismitr/redactor/internal/document/manipulator"
	"github.com/denismitr/redactor/internal/registry/mgoregistry"
	"github.com/denismitr/redactor/internal/storage/s3storage"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func S3StorageFromEnv() *s3storage.RemoteStorage {
	cfg := s3storage.Config{
		AccessKey:        goenv.MustString("S3_ACCESS_KEY_ID"),
		AccessSecret:     goenv.MustString("S3_SECRET_ACCESS_KEY"),
		AccessToken:      "",
		Region:           goenv.MustString("S3_REGION"),
		Endpoint:         goenv.MustString("S3_ENDPOINT"),
		S3ForcePathStyle: goenv.IsTruthy("S3_FORCE_PATH_STYLE"),
		EnableSSL:        goenv.IsTruthy("S3_SSL"),
	}

	storage, err := s3storage.New(cfg)
	if err != nil {
		panic(err)
	}

	return storage
}

func MongoRegistry(connectionTimeout time.Duration, migrate bool) (*mgoregistry.MongoRegistry, func()) {
	ctx, cancel := context.WithTimeout(context.Background(), connectionTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(goenv.MustString("MONGODB_URL")))
	if err != nil {
		panic(err)
	}

	registry := mgoregistry.New(client, mgoregistry.Config{
		DB:                  goenv.MustString("MONGODB_DATABASE"),
		DocumentsCollection: "documents",
	})

	if migrate {
		if err := registry.Migrate(ctx); err != nil {
			panic(err)
		}
	}

	return registry, func() {
		if err := client.Disconnect(context.Background()); err != nil {
			panic(err)
		}
	}
}

// ManipulatorConfigFromEnv reads optional image limits, zero means unlimited
func ManipulatorConfigFromEnv() *manipulator.Config {
	return &manipulator.Config{
		MaxWidth:    intFromEnv("IMAGE_MAX_WIDTH", 0),
		MaxHeight:   intFromEnv("IMAGE_MAX_HEIGHT", 0),
		JPEGQuality: intFromEnv("IMAGE_JPEG_QUALITY", manipulator.DefaultQuality),
	}
}

func Logger() *logrus.Logger {
	log := logrus.New()
	log.Out = os.Stderr
	log.Formatter = &logrus.TextFormatter{
		TimestampFormat: time.StampMilli,
		FullTimestamp:   true,
	}

	if goenv.IsTruthy("DEBUG") {
		log.SetLevel(logrus.DebugLevel)
	}

	return log
}

// DotEnv loads .env files when present, real environment always wins
func DotEnv(files ...string) {
	if err := godotenv.Load(files...); err != nil && !os.IsNotExist(err) {
		panic(err)
	}
}

func intFromEnv(key string, def int) int {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}

	i, err := strconv.Atoi(v)
	if err != nil {
		panic("env " + key + " must be an integer: " + err.Error())
	}

	return i
}

// NamespacesFromEnv reads a comma separated list, empty when the variable is not set
func NamespacesFromEnv(key string) []string {
	var namespaces []string
	for _, ns := range strings.Split(os.Getenv(key), ",") {
		if ns = strings.TrimSpace(ns); ns != "" {
			namespaces = append(namespaces, ns)
		}
	}

	return namespaces
}
