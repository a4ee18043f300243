// ABOUTME: Runs the in-memory gym/organization backend for local development
// ABOUTME: Optionally seeds demo accounts and linked users on start

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/fatih/color"
	"github.com/joho/godotenv"

	"github.com/2389/principal-session/internal/fakebackend"
	"github.com/2389/principal-session/internal/principal"
)

func main() {
	_ = godotenv.Load()

	addr := flag.String("addr", envOr("FAKE_BACKEND_ADDR", ":8080"), "listen address")
	secret := flag.String("secret", os.Getenv("FAKE_BACKEND_SECRET"), "JWT signing secret (random when empty)")
	seed := flag.Bool("seed", false, "create demo accounts and linked users")
	debug := flag.Bool("debug", false, "log every request")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, *addr, *secret, *seed, *debug); err != nil {
		cancel()
		color.Red("Error: %v\n", err)
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func run(ctx context.Context, addr, secret string, seed, debug bool) error {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	srv := fakebackend.New([]byte(secret), fakebackend.WithLogger(logger))
	if seed {
		if err := seedDemo(srv); err != nil {
			return fmt.Errorf("seeding: %w", err)
		}
	}

	color.New(color.FgCyan).Print(figure.NewFigure("fake backend", "cybermedium", true).String())
	green := color.New(color.FgGreen)
	green.Print("    ▶ ")
	fmt.Printf("Listening: %s\n", addr)
	if seed {
		green.Print("    ▶ ")
		fmt.Println("Demo logins: owner@irontemple.com / hr@acme.com (password: demo1234)")
	}
	fmt.Println()

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           srv,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serving: %w", err)
		}
		return nil
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	}
}

func seedDemo(srv *fakebackend.Server) error {
	gymID, err := srv.SeedAccount(principal.GymKind, fakebackend.Registration{
		Name:            "Iron Temple",
		CNPJ:            "12.345.678/0001-90",
		Email:           "owner@irontemple.com",
		Password:        "demo1234",
		Phone:           "11999990000",
		Address:         "Rua Augusta, 100",
		ResponsibleName: "Ana Souza",
	})
	if err != nil {
		return err
	}
	orgID, err := srv.SeedAccount(principal.OrganizationKind, fakebackend.Registration{
		Name:            "Acme Ltda",
		CNPJ:            "98.765.432/0001-10",
		Email:           "hr@acme.com",
		Password:        "demo1234",
		ResponsibleName: "Bruno Lima",
	})
	if err != nil {
		return err
	}

	links := []struct {
		kind   principal.Kind
		id     int64
		name   string
		email  string
		status string
	}{
		{principal.GymKind, gymID, "Alice Santos", "alice@mail.com", principal.UserStatusActive},
		{principal.GymKind, gymID, "Bob Costa", "bob@mail.com", principal.UserStatusInactive},
		{principal.OrganizationKind, orgID, "Carol Dias", "carol@acme.com", principal.UserStatusActive},
		{principal.OrganizationKind, orgID, "Davi Rocha", "davi@acme.com", principal.UserStatusPending},
	}
	for _, l := range links {
		if _, err := srv.LinkUser(l.kind, l.id, l.name, l.email, l.status); err != nil {
			return err
		}
	}
	return nil
}
