package main

import (
	"database/sql"
	"flag"
	"log"
	"route-itinerary-service/internal/adapters/journal"
	"route-itinerary-service/internal/config"
	"route-itinerary-service/internal/platform/db"
	"strings"

	"github.com/joho/godotenv"
)

// dbtool prepares the commit journal schema ahead of a deployment.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	driver := flag.String("driver", config.Get("JOURNAL_DRIVER", "postgres"), "journal driver: postgres or sqlite")
	flag.Parse()

	var (
		conn *sql.DB
		err  error
	)
	switch strings.ToLower(*driver) {
	case "postgres":
		databaseURL := config.Get("DATABASE_URL", "")
		if databaseURL == "" {
			log.Fatal("DATABASE_URL is required")
		}
		conn, err = db.Open(databaseURL)
	case "sqlite":
		conn, err = db.OpenSqlite(config.Get("SQLITE_PATH", "data/journal.db"))
	default:
		log.Fatalf("unknown driver %q", *driver)
	}
	if err != nil {
		log.Fatal(err)
	}
	defer conn.Close()

	if err := initJournal(conn, strings.ToLower(*driver)); err != nil {
		log.Fatalf("schema initialization failed: %v", err)
	}
}

func initJournal(conn *sql.DB, driver string) error {
	log.Println("Initializing commit journal schema...")
	var err error
	if driver == "postgres" {
		err = journal.InitPostgresSchema(conn)
	} else {
		err = journal.InitSqliteSchema(conn)
	}
	if err != nil {
		return err
	}
	log.Println("Schema ready.")
	return nil
}
