package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/nkiryanov/feedbackadmin/internal/apperrors"
	"github.com/nkiryanov/feedbackadmin/internal/db"
	"github.com/nkiryanov/feedbackadmin/internal/repository/postgres"
	"github.com/nkiryanov/feedbackadmin/internal/service/user"
)

// Create admin user that can log in to the report API
func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Getenv, os.Stdout, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "adduser: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, getenv func(string) string, out io.Writer, args []string) error {
	var dsn, username, password string

	// '.env' from working directory is optional
	if wd, err := os.Getwd(); err == nil {
		if envMap, err := godotenv.Read(filepath.Join(wd, ".env")); err == nil {
			dsn = envMap["DATABASE_URL"]
		}
	}
	if v := getenv("DATABASE_URL"); v != "" {
		dsn = v
	}

	fs := pflag.NewFlagSet("adduser", pflag.ContinueOnError)
	fs.StringVarP(&dsn, "database", "d", dsn, "Database connection string")
	fs.StringVarP(&username, "username", "u", "", "Username")
	fs.StringVarP(&password, "password", "p", "", "Password")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if dsn == "" {
		return errors.New("database connection string is required")
	}

	pool, err := db.Connect(ctx, dsn)
	if err != nil {
		return err
	}
	defer pool.Close()

	userService := user.NewService(nil, postgres.NewSessions(pool))
	u, err := userService.CreateUser(ctx, username, password)
	switch {
	case errors.Is(err, apperrors.ErrUserAlreadyExists):
		return fmt.Errorf("user %q already exists", username)
	case err != nil:
		return err
	}

	_, err = fmt.Fprintf(out, "user %q created, id=%d\n", u.Username, u.ID)
	return err
}
