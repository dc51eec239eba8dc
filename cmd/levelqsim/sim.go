package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"

	"github.com/sugawarayuuta/sonnet"
	"golang.org/x/sync/errgroup"

	"github.com/jiverson002/sbma-sub001/bucketqueue"
	"github.com/jiverson002/sbma-sub001/constants"
	"github.com/jiverson002/sbma-sub001/evict"
)

const defaultDatabase = constants.SimDatabase

var errNoCapacities = errors.New("levelqsim: no capacities configured")

type simConfig struct {
	Capacities []int `json:"capacities"`
	Levels     int   `json:"levels"`
	AgeEvery   int   `json:"age_every"`
	Workers    int   `json:"workers"`
}

func defaultConfig() simConfig {
	return simConfig{
		Capacities: []int{64, 256, 1024},
		Levels:     constants.DefaultLevels,
		AgeEvery:   constants.SimAgeEvery,
	}
}

// loadConfig reads path as JSON over the defaults. An empty path yields the defaults.
func loadConfig(path string) (simConfig, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := sonnet.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("decode config: %w", err)
	}
	if len(cfg.Capacities) == 0 {
		return cfg, errNoCapacities
	}
	return cfg, nil
}

// loadTrace reads the whole access trace in sequence order.
func loadTrace(db *sql.DB) ([]uint64, error) {
	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM accesses").Scan(&n); err != nil {
		return nil, fmt.Errorf("count accesses: %w", err)
	}
	trace := make([]uint64, 0, n)

	rows, err := db.Query("SELECT page FROM accesses ORDER BY seq")
	if err != nil {
		return nil, fmt.Errorf("query accesses: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var page int64
		if err := rows.Scan(&page); err != nil {
			return nil, fmt.Errorf("scan access: %w", err)
		}
		trace = append(trace, uint64(page))
	}
	return trace, rows.Err()
}

// runAll replays trace once per capacity. Each replay owns its tracker, so the
// runs share nothing but the read-only trace.
func runAll(ctx context.Context, trace []uint64, cfg simConfig) ([]evict.Stats, error) {
	results := make([]evict.Stats, len(cfg.Capacities))
	g, ctx := errgroup.WithContext(ctx)
	if cfg.Workers > 0 {
		g.SetLimit(cfg.Workers)
	}
	for i, capacity := range cfg.Capacities {
		i, capacity := i, capacity
		g.Go(func() error {
			st, err := evict.Simulate(ctx, trace, capacity, cfg.Levels, cfg.AgeEvery,
				bucketqueue.WithFatal(nil))
			if err != nil {
				return fmt.Errorf("capacity %d: %w", capacity, err)
			}
			results[i] = st
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// storeResults writes one row per run inside a single transaction.
func storeResults(db *sql.DB, levels int, results []evict.Stats) (err error) {
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS results (
		capacity  INTEGER NOT NULL,
		levels    INTEGER NOT NULL,
		hits      INTEGER NOT NULL,
		misses    INTEGER NOT NULL,
		evictions INTEGER NOT NULL
	)`); err != nil {
		return fmt.Errorf("create results: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()
	stmt, err := tx.Prepare("INSERT INTO results (capacity, levels, hits, misses, evictions) VALUES (?, ?, ?, ?, ?)")
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, st := range results {
		if _, err = stmt.Exec(st.Capacity, levels, st.Hits, st.Misses, st.Evictions); err != nil {
			return fmt.Errorf("insert result: %w", err)
		}
	}
	return tx.Commit()
}
