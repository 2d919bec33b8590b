package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"roomdesk/internal/config"
	"roomdesk/internal/database"
	"roomdesk/internal/domain"
	"roomdesk/internal/models"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

type RoomsConfig struct {
	Rooms []models.Room `yaml:"rooms"`
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	var (
		roomsPath = flag.String("rooms", "configs/rooms.yaml", "path to rooms.yaml")
		dbPath    = flag.String("db", "./data/bookings.db", "path to sqlite db")
	)
	flag.Parse()

	data, err := os.ReadFile(*roomsPath)
	if err != nil {
		return fmt.Errorf("read rooms: %w", err)
	}
	var cfg RoomsConfig
	if err = yaml.Unmarshal(data, &cfg); err != nil {
		return fmt.Errorf("parse rooms: %w", err)
	}
	if len(cfg.Rooms) == 0 {
		return fmt.Errorf("no rooms in yaml")
	}
	if err = config.ValidateRooms(cfg.Rooms); err != nil {
		return fmt.Errorf("validate rooms: %w", err)
	}

	db, err := database.NewDB(*dbPath, &logger)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	created := 0
	updated := 0
	for i := range cfg.Rooms {
		room := cfg.Rooms[i]
		_, err = db.GetRoom(ctx, room.ID)
		switch {
		case err == nil:
			updated++
		case errors.Is(err, domain.ErrRoomNotFound):
			created++
		default:
			return fmt.Errorf("get %s: %w", room.ID, err)
		}
		if err = db.UpsertRoom(ctx, &room); err != nil {
			return fmt.Errorf("upsert %s: %w", room.ID, err)
		}
	}

	fmt.Printf("done: created=%d updated=%d\n", created, updated)
	return nil
}
