package main

import (
	"flag"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/modelodev/scrumbringer/internal/db/migrate"
)

func main() {
	direction := flag.String("direction", "up", "migration direction: up or down")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	dsn := os.Getenv("DATABASE_URL")
	if err := migrate.Run(dsn, *direction); err != nil {
		log.Fatalf("migration failed: %v", err)
	}
	log.Printf("migrations applied (%s)", *direction)
}
