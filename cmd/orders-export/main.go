// Command orders-export dumps orders as gzipped JSON lines, one order per
// line, for offline analysis or backup. It reads the same database as the
// server and writes to a file or stdout.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"

	"github.com/go-faster/errors"
	pgzip "github.com/klauspost/pgzip"

	"github.com/sentinel-sec/storefront/internal/domain/order"
	"github.com/sentinel-sec/storefront/internal/storage/postgres"
)

func main() {
	var (
		databaseURL = flag.String("database-url", os.Getenv("DATABASE_URL"), "PostgreSQL connection URL")
		userID      = flag.String("user", "", "export only this user's orders")
		out         = flag.String("out", "-", "output file, or - for stdout")
	)
	flag.Parse()

	lg := slog.New(slog.NewTextHandler(os.Stderr, nil))

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, lg, *databaseURL, *userID, *out); err != nil {
		lg.Error("export failed", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, lg *slog.Logger, databaseURL, userID, out string) error {
	if databaseURL == "" {
		return errors.New("database URL is required: pass -database-url or set DATABASE_URL")
	}

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "create db pool")
	}
	defer pool.Close()

	dst := os.Stdout
	if out != "-" {
		f, err := os.Create(out)
		if err != nil {
			return errors.Wrap(err, "create output file")
		}
		defer func() {
			_ = f.Close()
		}()
		dst = f
	}

	gz := pgzip.NewWriter(dst)
	w := bufio.NewWriter(gz)
	enc := json.NewEncoder(w)

	count := 0
	err = streamOrders(ctx, pool, userID, func(o order.Order) error {
		count++
		return enc.Encode(o)
	})
	if err != nil {
		return err
	}

	if err := w.Flush(); err != nil {
		return errors.Wrap(err, "flush output")
	}
	if err := gz.Close(); err != nil {
		return errors.Wrap(err, "close gzip stream")
	}

	lg.Info("export complete", "orders", count, "out", out)
	return nil
}
