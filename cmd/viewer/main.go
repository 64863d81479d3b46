package main

import (
	"anongram/domain"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/dgraph-io/badger/v4"
	"github.com/gookit/color"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/mama165/sdk-go/database"
)

// The viewer opens the live database read-only and serves the inspector,
// so stored conversations can be browsed while the server keeps running.
type Config struct {
	BadgerFilepath string `envconfig:"BADGER_FILEPATH"`
	DebugPort      int    `envconfig:"VIEWER_PORT" default:"8082"`
}

func main() {
	// 1. Load config
	_ = godotenv.Load()
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		log.Fatalf("Config error: %v", err)
	}

	// 2. Open Badger in Read-Only mode
	// Note: BypassLockGuard allows opening if another process (the server) holds the lock
	opts := badger.DefaultOptions(config.BadgerFilepath).
		WithReadOnly(true).
		WithBypassLockGuard(true).
		WithLoggingLevel(badger.WARNING)

	db, err := badger.Open(opts)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	// 3. Start Debug Server Only
	database.StartDebugServer(db, config.DebugPort, "/inspect", MessageMapper)

	url := fmt.Sprintf("http://localhost:%d/inspect?prefix=msg:", config.DebugPort)
	fmt.Println(color.New(color.BgBlack, color.FgGreen).Render(" Viewer started (read-only) "))
	fmt.Println(url)

	// Block until interrupted; the inspector runs on its own goroutine.
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
}

// Copy of the server's MessageMapper to keep the viewer independent
func MessageMapper(key string, val []byte) database.InspectRow {
	row := database.DefaultMapper(key, val)

	var msg domain.ChatMessage
	if err := json.Unmarshal(val, &msg); err != nil {
		return row
	}
	if msg.ID == "" {
		return row
	}

	row.Type = "MSG"
	row.Detail = msg.Text
	row.Scores = fmt.Sprintf("%s -> %s", msg.SenderID, msg.ReceiverID)
	return row
}
