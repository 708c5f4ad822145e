package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/orbitx/notification-service/internal/config"
	"github.com/orbitx/notification-service/internal/delivery"
	"github.com/orbitx/notification-service/internal/handler"
	"github.com/orbitx/notification-service/internal/mailer"
	"github.com/orbitx/notification-service/internal/rabbitmq"
	"github.com/orbitx/notification-service/internal/repository"
	"github.com/orbitx/notification-service/internal/repository/postgres"
	"github.com/orbitx/notification-service/internal/service"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

func main() {
	ctx := context.Background()

	if err := loadEnv(); err != nil {
		log.Fatalf("failed to load environment variables: %s", err.Error())
	}

	if err := initConfig(); err != nil {
		log.Fatalf("failed to initialize config: %s", err.Error())
	}

	logger, err := newLogger()
	if err != nil {
		log.Fatalf("failed to create zap logger: %s", err.Error())
	}

	mq, err := rabbitmq.New(os.Getenv("RABBITMQ_CONN_STRING"))
	if err != nil {
		log.Fatalf("failed to connect to rabbitmq: %s", err.Error())
	}

	db, err := postgres.Connect(ctx, config.DBConfig{
		Username: os.Getenv("POSTGRES_USER"),
		Password: os.Getenv("POSTGRES_PASSWORD"),
		Host:     os.Getenv("POSTGRES_HOST"),
		Port:     os.Getenv("POSTGRES_PORT"),
		DBName:   os.Getenv("POSTGRES_DB"),
		SSLMode:  os.Getenv("POSTGRES_SSLMODE"),
	})
	if err != nil {
		log.Panicf("db connection error: %s", err.Error())
	}
	if err := db.Ping(ctx); err != nil {
		log.Panicf("couldn't ping postgres db: %s", err.Error())
	}
	log.Println("Successfully connected to PostgreSQL")

	rdb := redis.NewClient(&redis.Options{
		Addr: os.Getenv("REDIS_ADDR"),
	})
	pong, err := rdb.Ping(ctx).Result()
	if err != nil {
		panic("failed to ping redis: " + err.Error())
	}
	log.Printf("Successfully connected to Redis: %s\n", pong)

	var pub delivery.Publisher = delivery.NopPublisher{}
	if viper.GetBool("notifications.push_enabled") {
		pub = delivery.NewHub(logger)
	}

	repo := repository.New(db)
	services := service.New(logger, repo, rdb, mq, pub)
	handlers := handler.New(services)

	mailer := mailer.New(logger, mq)
	mailer.StartProcessing()

	go services.User.StartCreating(ctx)
	go services.User.StartUpdating(ctx)
	go services.Notification.StartProcessingChatMessages(ctx)
	go services.Notification.StartProcessingQuestUpdates(ctx)
	go services.Notification.StartProcessingConnectionRequests(ctx)
	go services.Notification.StartProcessingSystemBroadcasts(ctx)

	go services.Notification.StartJobs()

	go http.ListenAndServe(viper.GetString("app.port"), handlers.SetupRoutes())

	log.Println("Notification service started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)
	<-quit

	log.Println("Notification service shutting down")
}

func loadEnv() error {
	return godotenv.Load(".env")
}

func initConfig() error {
	viper.AddConfigPath(".")
	viper.SetConfigType("yaml")
	viper.SetConfigName("app")
	return viper.ReadInConfig()
}

func newLogger() (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{
		"./app.log",
	}
	return cfg.Build()
}
