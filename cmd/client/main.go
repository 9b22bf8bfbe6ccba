package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/term"

	"github.com/sbilibin2017/gw-credit-sum/internal/client"
)

// readPassword is a test seam for term.ReadPassword.
var readPassword = term.ReadPassword

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// run logs in, prints the profile and performs one sum.
func run(ctx context.Context, args []string, w io.Writer) error {
	fs := flag.NewFlagSet("client", flag.ContinueOnError)
	fs.SetOutput(w)
	baseURL := fs.String("url", "http://localhost:8080", "API base URL")
	email := fs.String("email", "", "Account email")
	a := fs.Int("a", 10, "First operand")
	b := fs.Int("b", 20, "Second operand")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *email == "" {
		return errors.New("-email is required")
	}

	fmt.Fprint(w, "Password: ")
	password, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(w)
	if err != nil {
		return fmt.Errorf("read password: %w", err)
	}

	c := client.New(*baseURL)
	if err := c.Login(ctx, *email, string(password)); err != nil {
		return fmt.Errorf("login: %w", err)
	}

	me, err := c.Me(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Logged in as %s (credits: %d)\n", me.Email, me.Credits)

	result, err := c.Sum(ctx, *a, *b)
	if err != nil {
		var apiErr *client.APIError
		if errors.As(err, &apiErr) {
			return errors.New(apiErr.Message)
		}
		return err
	}
	fmt.Fprintf(w, "%d + %d = %d\n", *a, *b, result)

	me, err = c.Me(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Credits left: %d\n", me.Credits)
	return nil
}
