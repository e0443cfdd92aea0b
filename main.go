package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/inkpress/blog-backend/api"
	"github.com/inkpress/blog-backend/config"
	"github.com/inkpress/blog-backend/database"
	"github.com/inkpress/blog-backend/models"
)

func main() {
	if err := godotenv.Load(); err != nil {
		fmt.Printf("warning: error loading .env file: %v\n", err)
	}

	c := config.New()

	gormLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  true,
		},
	)

	var dialector gorm.Dialector
	switch driver := config.GetString(c, "DB_DRIVER", "postgres"); driver {
	case "postgres":
		dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
			config.GetString(c, "POSTGRES_HOST", "localhost"),
			config.GetString(c, "POSTGRES_USER", "postgres"),
			config.GetString(c, "POSTGRES_PASSWORD", ""),
			config.GetString(c, "POSTGRES_DB", "blogs"),
			config.GetString(c, "POSTGRES_PORT", "5432"),
			config.GetString(c, "POSTGRES_SSLMODE", "disable"),
		)
		dialector = postgres.Open(dsn)
	case "sqlite":
		dialector = sqlite.Open(config.GetString(c, "SQLITE_PATH", "blogs.db"))
	default:
		fmt.Printf("unsupported DB_DRIVER %q, exiting\n", driver)
		os.Exit(1)
	}

	// TranslateError turns driver-level unique violations into
	// gorm.ErrDuplicatedKey, which the repo maps to the duplicate-slug error.
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         gormLogger,
		TranslateError: true,
	})
	if err != nil {
		fmt.Printf("error connecting to database: %v\n", err)
		os.Exit(1)
	}

	if err := db.AutoMigrate(&models.Blog{}, &models.BlogTag{}); err != nil {
		fmt.Printf("error migrating database: %v\n", err)
		os.Exit(1)
	}

	errChannel := make(chan error)
	defer close(errChannel)

	server, err := api.NewServer(database.New(db))
	if err != nil {
		fmt.Printf("error initializing server: %v\n", err)
		os.Exit(1)
	}

	go server.Start(errChannel)
	go listenToInterrupt(errChannel)

	fatalErr := <-errChannel
	fmt.Printf("closing server: %v\n", fatalErr)

	server.ShutdownGracefully(30 * time.Second)

	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
}

// listenToInterrupt waits for SIGINT or SIGTERM and then sends an error to
// the error channel.
func listenToInterrupt(errChannel chan<- error) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
	errChannel <- fmt.Errorf("%s", <-c)
}
