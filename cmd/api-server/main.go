package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"flag"
	"log"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"

	"github.com/go-co-op/gocron"
	"github.com/redis/go-redis/v9"

	"github.com/refdata-dev/reftab/internal/cache"
	"github.com/refdata-dev/reftab/internal/config"
	"github.com/refdata-dev/reftab/internal/logger"
	"github.com/refdata-dev/reftab/internal/refdata"
	"github.com/refdata-dev/reftab/internal/repository/refitems"
	"github.com/refdata-dev/reftab/internal/server"
	"github.com/refdata-dev/reftab/pkg/util"
)

func main() {
	dsn := flag.String("dsn", "", "database DSN")
	driver := flag.String("driver", "postgres", "database driver")
	tblPrefix := flag.String("table-prefix", util.GetEnv("TABLE_PREFIX", "reftab_"), "service table prefix (default reftab_)")
	addr := flag.String("addr", ":8080", "listen address")
	redisAddr := flag.String("redis-addr", util.GetEnv("REDIS_ADDR", ""), "redis address for list caching (empty disables)")
	tables := flag.String("tables", "", "YAML overlay extending the table catalogue")
	openapi := flag.String("openapi", "", "write OpenAPI JSON and exit")
	flag.Parse()

	logger.Set(slog.New(slog.NewTextHandler(os.Stdout, nil)))

	driverProvided := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "driver" {
			driverProvided = true
		}
	})

	if *dsn != "" {
		if detected, err := util.DetectDriver(*dsn); err != nil {
			if !driverProvided || *driver == "" {
				logger.L.Error("detect driver", "dsn", *dsn, "err", err)
				os.Exit(1)
			}
		} else {
			if !driverProvided || *driver == "" {
				*driver = detected
			} else if detected != "" && *driver != detected {
				logger.L.Error("driver mismatch", "driver", *driver, "dsn", *dsn, "expected", detected)
				os.Exit(1)
			}
		}
	}

	var db *sql.DB
	var err error
	dialect := util.DialectFromDriver(*driver)
	if *dsn != "" {
		db, err = sql.Open(*driver, *dsn)
		if err != nil {
			logger.L.Error("db open", "err", err)
			os.Exit(1)
		}
		if err := config.CheckPrefix(context.Background(), db, dialect, *tblPrefix); err != nil {
			logger.L.Error("prefix check", "err", err)
			os.Exit(1)
		}
		defer db.Close()
	}

	reg := refdata.Default()
	if *tables != "" {
		data, err := os.ReadFile(filepath.Clean(*tables))
		if err != nil {
			logger.L.Error("read table overlay", "path", *tables, "err", err)
			os.Exit(1)
		}
		if err := reg.LoadOverlay(data); err != nil {
			logger.L.Error("load table overlay", "path", *tables, "err", err)
			os.Exit(1)
		}
	}

	var rdb *redis.Client
	if *redisAddr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: *redisAddr})
	}

	dbCfg := server.DBConfig{Driver: *driver, DSN: *dsn, TablePrefix: *tblPrefix}
	log.Printf("table prefix: %q", dbCfg.TablePrefix)

	api := server.New(db, rdb, reg, dbCfg)

	if db != nil && rdb != nil {
		store := &refitems.Repo{DB: db, Dialect: dialect}
		warm := cache.New(rdb)
		s := gocron.NewScheduler(time.UTC)
		if _, err := s.Every(1).Hour().Do(func() {
			warmOptions(context.Background(), reg, store, warm)
		}); err != nil {
			logger.L.Error("schedule option warm", "err", err)
		}
		s.StartAsync()
	}

	if *openapi != "" {
		data, err := json.MarshalIndent(api.OpenAPI(), "", "  ")
		if err != nil {
			logger.L.Error("marshal openapi", "err", err)
			os.Exit(1)
		}
		p := filepath.Clean(*openapi)
		if err := os.WriteFile(p, data, 0o600); err != nil {
			logger.L.Error("write openapi", "err", err)
			os.Exit(1)
		}
		return
	}

	logger.L.Info("listening", "addr", *addr)
	srv := &http.Server{
		Addr:         *addr,
		Handler:      api.Adapter(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil {
		logger.L.Error("server error", "err", err)
		os.Exit(1)
	}
}

// warmOptions refreshes the cached parent option lists so the first dropdown
// open after an idle period does not wait on the database.
func warmOptions(ctx context.Context, reg *refdata.Registry, store *refitems.Repo, c *cache.ItemCache) {
	seen := map[string]bool{}
	for _, key := range reg.Keys() {
		cfg, _ := reg.Lookup(key)
		rel := cfg.Relation
		if rel == nil || seen[rel.OptionTable] {
			continue
		}
		seen[rel.OptionTable] = true
		opts, err := store.ListOptions(ctx, rel.OptionTable, rel.OptionKey, rel.OptionLabel)
		if err != nil {
			logger.L.Error("warm options", "table", rel.OptionTable, "err", err)
			continue
		}
		if err := c.SetOptions(ctx, rel.OptionTable, opts); err != nil {
			logger.L.Error("cache options", "table", rel.OptionTable, "err", err)
		}
	}
}
