// ABOUTME: Command-line client for gym and organization sessions
// ABOUTME: Logs in, persists the token, reconciles it on start and drives management endpoints

package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/common-nighthawk/go-figure"
	"github.com/fatih/color"
	"github.com/joho/godotenv"

	"github.com/2389/principal-session/internal/app"
	"github.com/2389/principal-session/internal/config"
	"github.com/2389/principal-session/internal/principal"
)

// Version is set at build time.
var version = "dev"

func main() {
	// .env is optional; values already in the environment win
	_ = godotenv.Load()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	cancel()

	if err != nil {
		color.Red("Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("principalctl", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", config.DefaultPath(), "path to config file (.yaml or .toml)")
	kindName := fs.String("kind", principal.GymKind.Name, "principal kind: gym or organization")
	fs.Usage = func() { printUsage(stderr) }

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		printUsage(stderr)
		return fmt.Errorf("missing command")
	}

	cmd, cmdArgs := fs.Arg(0), fs.Args()[1:]
	if cmd == "help" {
		printUsage(stdout)
		return nil
	}
	if cmd == "version" {
		fmt.Fprintf(stdout, "principalctl %s\n", version)
		return nil
	}

	kind, ok := principal.ParseKind(*kindName)
	if !ok {
		return fmt.Errorf("unknown kind %q (want gym or organization)", *kindName)
	}

	cfg, err := config.LoadOrDefault(*configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	a, err := app.New(cfg, app.WithLogger(setupLogger(cfg.Logging, stderr)))
	if err != nil {
		return fmt.Errorf("starting: %w", err)
	}
	defer a.Close()

	c := &cli{app: a, kind: kind, out: stdout}
	return c.dispatch(ctx, cmd, cmdArgs)
}

func printUsage(w io.Writer) {
	cyan := color.New(color.FgCyan)
	yellow := color.New(color.FgYellow)

	cyan.Fprint(w, figure.NewFigure("principalctl", "cybermedium", true).String())
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage: principalctl [-config path] [-kind gym|organization] <command> [args]")
	fmt.Fprintln(w)
	yellow.Fprintln(w, "Session:")
	fmt.Fprintln(w, "  register [flags]          Register and log in (-name -cnpj -email -password -phone -address -responsible)")
	fmt.Fprintln(w, "  login -email E -password P  Log in and store the token")
	fmt.Fprintln(w, "  logout                    Log out and forget the stored token")
	fmt.Fprintln(w, "  whoami                    Check the stored token and show the profile")
	fmt.Fprintln(w)
	yellow.Fprintln(w, "Management:")
	fmt.Fprintln(w, "  users                     List linked users")
	fmt.Fprintln(w, "  toggle <id>               Activate or deactivate a linked user")
	fmt.Fprintln(w, "  remove <id>               Unlink a user")
	fmt.Fprintln(w, "  stats                     Show user statistics")
	fmt.Fprintln(w, "  pending                   List users awaiting approval (organization)")
	fmt.Fprintln(w, "  approve <id>              Approve a pending user (organization)")
	fmt.Fprintln(w, "  reject <id>               Reject a pending user (organization)")
	fmt.Fprintln(w, "  plans                     List active plans")
	fmt.Fprintln(w)
	yellow.Fprintln(w, "Environment:")
	fmt.Fprintln(w, "  PRINCIPAL_SESSION_CONFIG  Config file path (default: $XDG_CONFIG_HOME/principal-session/config.yaml)")
	fmt.Fprintln(w, "  PRINCIPAL_PASSWORD        Password for login/register when -password is omitted")
	fmt.Fprintln(w)
	yellow.Fprintln(w, "Examples:")
	fmt.Fprintln(w, "  principalctl login -email owner@irontemple.com -password secret")
	fmt.Fprintln(w, "  principalctl -kind organization pending")
	fmt.Fprintln(w)
}
