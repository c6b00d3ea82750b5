// Command stockroom-import validates inventory documents from local files and
// writes them to a storage backend.
//
//	stockroom-import -driver postgres -database-url postgres://... data/*.json
//
// Every file is decoded completely before anything is written, and each one is
// stored under its base name (without a trailing .gz).
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/go-faster/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xenking/stockroom/internal/app"
	"github.com/xenking/stockroom/internal/domain/inventory"
	"github.com/xenking/stockroom/internal/storage/file"
)

func main() {
	var (
		cfg      app.StorageConfig
		parallel int
		dryRun   bool
	)

	flag.StringVar(&cfg.Driver, "driver", app.DriverFile, "target storage backend: file, postgres or redis")
	flag.StringVar(&cfg.Dir, "dir", "data", "target directory of the file backend")
	flag.StringVar(&cfg.DatabaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&cfg.RedisAddr, "redis-addr", "localhost:6379", "Redis address")
	flag.IntVar(&parallel, "parallel", 4, "documents processed concurrently")
	flag.BoolVar(&dryRun, "dry-run", false, "validate documents without writing them")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] FILE...\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}

	lg, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	defer func() { _ = lg.Sync() }()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, lg, cfg, flag.Args(), parallel, dryRun); err != nil {
		lg.Error("Import failed", zap.Error(err))
		os.Exit(1)
	}
	lg.Info("Import completed", zap.Int("documents", flag.NArg()))
}

// document is a validated input file.
type document struct {
	path  string
	name  string
	store *inventory.Store
}

func run(ctx context.Context, lg *zap.Logger, cfg app.StorageConfig, paths []string, parallel int, dryRun bool) error {
	docs := make([]*document, len(paths))

	// Pass 1: decode every input before touching the target.
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(max(parallel, 1))
	for i, path := range paths {
		g.Go(func() error {
			doc, err := readDocument(gCtx, lg, path)
			if err != nil {
				return err
			}
			docs[i] = doc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	if err := checkNames(docs); err != nil {
		return err
	}
	if dryRun {
		lg.Info("Dry run, nothing written")
		return nil
	}

	target, closeTarget, err := app.OpenStorage(ctx, lg, cfg)
	if err != nil {
		return errors.Wrap(err, "open target storage")
	}
	defer closeTarget()
	if err := target.Ping(ctx); err != nil {
		return errors.Wrap(err, "ping target storage")
	}

	// Pass 2: write.
	g, gCtx = errgroup.WithContext(ctx)
	g.SetLimit(max(parallel, 1))
	for _, doc := range docs {
		g.Go(func() error {
			if err := doc.store.Save(gCtx, target, doc.name); err != nil {
				return errors.Wrapf(err, "save %s", doc.path)
			}
			return nil
		})
	}
	return g.Wait()
}

func readDocument(ctx context.Context, lg *zap.Logger, path string) (*document, error) {
	src := file.New(filepath.Dir(path))
	store := inventory.NewStore()

	n, err := store.Load(ctx, src, filepath.Base(path))
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", path)
	}
	lg.Info("Document validated",
		zap.String("path", path),
		zap.Int("products", n),
		zap.String("total_value", store.TotalValue().StringFixed(2)),
	)
	return &document{path: path, name: documentName(path), store: store}, nil
}

// documentName maps an input path to its target document name.
func documentName(path string) string {
	return strings.TrimSuffix(filepath.Base(path), ".gz")
}

func checkNames(docs []*document) error {
	seen := make(map[string]string, len(docs))
	for _, doc := range docs {
		if prev, ok := seen[doc.name]; ok {
			return errors.Errorf("%s and %s would both be stored as %q", prev, doc.path, doc.name)
		}
		seen[doc.name] = doc.path
	}
	return nil
}
