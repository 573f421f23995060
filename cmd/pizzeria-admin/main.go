// Command pizzeria-admin manages the admin token on the storage used by the
// pizzeria server.
//
// Usage:
//
//	pizzeria-admin token issue
//	pizzeria-admin token status [-json]
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/dukerupert/pizzeria/internal/app"
	"github.com/dukerupert/pizzeria/internal/config"
	"github.com/dukerupert/pizzeria/internal/logging"
	"github.com/dukerupert/pizzeria/internal/token"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "pizzeria-admin:", err)
		os.Exit(1)
	}
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "usage: pizzeria-admin token issue | token status [-json]")
}

func run(args []string, out io.Writer) error {
	if len(args) < 2 || args[0] != "token" {
		usage(os.Stderr)
		return fmt.Errorf("unknown command")
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)

	authority, closeFn, err := openAuthority(cfg, logger)
	if err != nil {
		return err
	}
	defer closeFn()

	switch args[1] {
	case "issue":
		return issue(authority, out)
	case "status":
		fs := flag.NewFlagSet("status", flag.ContinueOnError)
		asJSON := fs.Bool("json", false, "print status as JSON")
		if err := fs.Parse(args[2:]); err != nil {
			return err
		}
		return status(authority, out, *asJSON)
	default:
		usage(os.Stderr)
		return fmt.Errorf("unknown token command %q", args[1])
	}
}

func openAuthority(cfg config.Config, logger *slog.Logger) (*token.Authority, func(), error) {
	st, err := app.OpenStorage(cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	hasher, err := app.Hasher(cfg)
	if err != nil {
		st.Close()
		return nil, nil, err
	}
	return token.NewAuthority(st.Backend, hasher, logger), func() { st.Close() }, nil
}

func issue(a *token.Authority, out io.Writer) error {
	tok, err := a.Issue()
	if err != nil {
		return fmt.Errorf("issue token: %w", err)
	}
	fmt.Fprintln(out, tok)
	fmt.Fprintf(out, "valid for %s; previous tokens are revoked\n", token.Validity)
	return nil
}

func status(a *token.Authority, out io.Writer, asJSON bool) error {
	st, err := a.Status()
	if err != nil {
		return fmt.Errorf("token status: %w", err)
	}
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(st)
	}

	fmt.Fprintf(out, "state: %s\n", st.State)
	if st.Expiry != nil {
		fmt.Fprintf(out, "expires: %s\n", st.Expiry.Format(time.RFC3339))
	}
	if st.LockoutUntil != nil && st.State == token.StateLocked {
		fmt.Fprintf(out, "locked until: %s\n", st.LockoutUntil.Format(time.RFC3339))
	}
	fmt.Fprintf(out, "failed attempts: %d\n", st.FailedAttempts)
	return nil
}
