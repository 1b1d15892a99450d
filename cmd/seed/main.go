// Package main provides a CLI tool for seeding the beer catalog from a CSV file.
package main

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"beercatalog/internal/config"
	"beercatalog/internal/core/types"
	"beercatalog/internal/domain/beer"
	"beercatalog/internal/infrastructure/storage"
	"beercatalog/pkg/logger"
)

// csvColumns is the required header row.
var csvColumns = []string{"beer_name", "beer_style", "upc", "price", "quantity_on_hand"}

type seedArgs struct {
	file  string
	reset bool
}

func main() {
	if err := command().ExecuteContext(context.Background()); err != nil {
		fmt.Printf("error: %v\n", err)
		os.Exit(1)
	}
}

func command() *cobra.Command {
	var args seedArgs

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "load beers from a CSV file into the configured storage",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), args)
		},
		SilenceUsage: true,
	}

	cmd.Flags().StringVarP(&args.file, "file", "f", "", "CSV file with header "+strings.Join(csvColumns, ","))
	cmd.Flags().BoolVar(&args.reset, "reset", false, "delete every existing beer before loading")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func run(ctx context.Context, args seedArgs) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log, err := logger.New(logger.Config{Level: cfg.LogLevel, Development: true})
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()
	ctx = logger.WithLogger(ctx, log)

	f, err := os.Open(args.file)
	if err != nil {
		return err
	}
	defer f.Close()

	beers, err := readBeers(f)
	if err != nil {
		return fmt.Errorf("read %s: %w", args.file, err)
	}

	store, err := storage.Open(ctx, cfg.Storage)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer store.Close()

	if args.reset {
		if err := store.Repo.DeleteAll(ctx); err != nil {
			return fmt.Errorf("reset: %w", err)
		}
		log.Info("existing beers deleted")
	}

	n, err := seed(ctx, beer.NewService(store.Repo, store.TxManager), beers)
	if err != nil {
		return err
	}

	log.Infow("seeding completed successfully", "beers", n, "driver", store.Driver)
	return nil
}

// seed creates every beer through the service so the usual rules apply.
func seed(ctx context.Context, svc *beer.Service, beers []*beer.Beer) (int, error) {
	for i, b := range beers {
		if _, err := svc.Create(ctx, b); err != nil {
			return i, fmt.Errorf("row %d (%s): %w", i+2, b.Name, err)
		}
	}
	return len(beers), nil
}

// readBeers parses the CSV body. An empty quantity_on_hand leaves the quantity unset.
func readBeers(r io.Reader) ([]*beer.Beer, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = len(csvColumns)

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("missing header row")
	}
	if err != nil {
		return nil, err
	}
	for i, col := range csvColumns {
		if strings.ToLower(strings.TrimSpace(header[i])) != col {
			return nil, fmt.Errorf("column %d: want %q, got %q", i+1, col, header[i])
		}
	}

	var beers []*beer.Beer
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		line, _ := reader.FieldPos(0)
		b, err := parseRecord(record)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		beers = append(beers, b)
	}
	return beers, nil
}

func parseRecord(record []string) (*beer.Beer, error) {
	style, err := beer.ParseStyle(record[1])
	if err != nil {
		return nil, err
	}

	price, err := types.NewMoneyFromString(strings.TrimSpace(record[3]))
	if err != nil {
		return nil, fmt.Errorf("price: %w", err)
	}

	b := &beer.Beer{
		Name:  strings.TrimSpace(record[0]),
		Style: style,
		UPC:   strings.TrimSpace(record[2]),
		Price: price,
	}

	if raw := strings.TrimSpace(record[4]); raw != "" {
		qty, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("quantity_on_hand: %w", err)
		}
		b.QuantityOnHand = &qty
	}
	return b, nil
}
