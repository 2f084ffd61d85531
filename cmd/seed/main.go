// seed creates a demo user with a PIN and a few bookmarks in the configured
// backend. Re-runs leave an existing demo user untouched.
// Run: go run ./cmd/seed
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/ErlanBelekov/pin-vault/config"
	"github.com/ErlanBelekov/pin-vault/internal/domain"
	"github.com/ErlanBelekov/pin-vault/internal/infrastructure"
	"github.com/ErlanBelekov/pin-vault/internal/store"
	"github.com/lmittmann/tint"
)

const (
	demoUsername = "demo"
	demoPin      = "1234"
)

var bookmarks = []domain.Bookmark{
	{URL: "https://go.dev/doc/effective_go", Nickname: "Effective Go"},
	{URL: "https://pkg.go.dev/std", Nickname: "Standard library"},
	{URL: "https://gin-gonic.com/docs/", Nickname: "Gin docs"},
}

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	logger := slog.New(tint.NewHandler(os.Stderr, &tint.Options{Level: slog.LevelWarn}))

	repo, closeRepo, err := infrastructure.OpenSnapshotRepository(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("storage: %v", err)
	}
	defer closeRepo()

	vault, err := store.New(ctx, repo, domain.SeedAdmin{
		Username: cfg.SeedAdminUsername,
		Pin:      cfg.SeedAdminPin,
	}, logger)
	if err != nil {
		closeRepo()
		log.Fatalf("store: %v", err)
	}

	created := false
	err = vault.Update(ctx, func(tx *store.Tx) error {
		if _, err := tx.CreateUser(demoUsername, false); err != nil {
			return err
		}
		if err := tx.SetPin(demoUsername, demoPin); err != nil {
			return err
		}
		for _, b := range bookmarks {
			if _, err := tx.AddBookmark(demoUsername, b.URL, b.Nickname); err != nil {
				return err
			}
		}
		created = true
		return nil
	})
	if err != nil && !errors.Is(err, domain.ErrUserExists) {
		closeRepo()
		log.Fatalf("seed demo user: %v", err)
	}

	fmt.Println("Seed complete")
	fmt.Println()
	fmt.Printf("  Backend:    %s\n", cfg.StorageBackend)
	fmt.Printf("  Admin:      %s\n", cfg.SeedAdminUsername)
	if created {
		fmt.Printf("  Demo user:  %s (PIN %s, %d bookmarks)\n", demoUsername, demoPin, len(bookmarks))
	} else {
		fmt.Printf("  Demo user:  %s already exists, left unchanged\n", demoUsername)
	}
	fmt.Println()
	fmt.Println("How to test:")
	fmt.Println()
	fmt.Println("  Step 1: log in as the demo user")
	fmt.Println()
	fmt.Printf("    curl -s -X POST http://localhost:%s/auth \\\n", cfg.Port)
	fmt.Printf("      -H 'Content-Type: application/json' \\\n")
	fmt.Printf("      -d '{\"username\":\"%s\",\"pin\":\"%s\"}'\n", demoUsername, demoPin)
	fmt.Println("    # → {\"success\":true,\"token\":\"...\",\"is_admin\":false}")
	fmt.Println()
	fmt.Println("  Step 2: list bookmarks with the returned token")
	fmt.Println()
	fmt.Println("    export TOKEN=...")
	fmt.Printf("    curl -s http://localhost:%s/urls -H \"Authorization: Bearer $TOKEN\"\n", cfg.Port)
}
