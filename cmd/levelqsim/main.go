// Levelqsim replays page-access traces through the eviction tracker and
// records hit/miss/eviction counts per cache capacity.
//
// Usage:
//
//	go run ./cmd/levelqsim -db traces.db -config run.json
//
// The database must hold a table accesses(seq INTEGER, page INTEGER); results
// are written to results(capacity, levels, hits, misses, evictions).
// The config file is JSON, e.g. {"capacities":[64,256],"levels":16,"age_every":1024}.
//
// Flags:
//
//	-db      SQLite trace database (default: traces.db)
//	-config  JSON run configuration (default: built-in)
package main

import (
	"context"
	"database/sql"
	"flag"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/mattn/go-sqlite3"

	"github.com/jiverson002/sbma-sub001/debug"
	"github.com/jiverson002/sbma-sub001/utils"
)

func main() {
	dbPath := flag.String("db", defaultDatabase, "SQLite trace database")
	cfgPath := flag.String("config", "", "JSON run configuration")
	flag.Parse()

	cfg, err := loadConfig(*cfgPath)
	if err != nil {
		debug.Fatal("CONFIG", err)
	}

	db, err := sql.Open("sqlite3", *dbPath)
	if err != nil {
		debug.Fatal("DB", err)
	}
	defer db.Close()

	trace, err := loadTrace(db)
	if err != nil {
		debug.Fatal("TRACE", err)
	}
	var top uint64
	for _, page := range trace {
		top = max(top, page)
	}
	debug.DropMessage("LOADED", utils.Itoa(len(trace))+" accesses, top page "+utils.Utoa(top)+
		", "+utils.Itoa(len(cfg.Capacities))+" capacities")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	results, err := runAll(ctx, trace, cfg)
	if err != nil {
		debug.Fatal("SIMULATE", err)
	}
	if err := storeResults(db, cfg.Levels, results); err != nil {
		debug.Fatal("STORE", err)
	}
	for _, st := range results {
		debug.DropMessage("RESULT", "capacity "+utils.Itoa(st.Capacity)+
			": hits "+utils.Itoa(st.Hits)+
			", misses "+utils.Itoa(st.Misses)+
			", evictions "+utils.Itoa(st.Evictions))
	}
}
