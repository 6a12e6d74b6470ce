// Package main implements the pallet-bench binary. It generates fake
// records, loads them into both the naive single-file warehouse and the
// partitioned warehouse, and reports per-operation timings for insert,
// update, query, and delete side by side.
package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"strconv"
	"time"

	"github.com/brianvoe/gofakeit/v7"

	"github.com/palletdb/pallet"
	"github.com/palletdb/pallet/internal/config"
	"github.com/palletdb/pallet/pkg/types"
)

func main() {
	configPath := flag.String("config", "", "path to YAML/JSON config file")
	rows := flag.Int("rows", 0, "override number of rows to generate")
	seed := flag.Int64("seed", 1, "random seed for data generation")
	flag.Parse()

	cfg := config.DefaultConfig()
	if *configPath != "" {
		loaded, err := config.LoadFromFile(*configPath)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		cfg = loaded
	} else {
		config.LoadFromEnv(cfg)
		if err := cfg.Validate(); err != nil {
			log.Fatalf("Invalid config: %v", err)
		}
	}
	if *rows > 0 {
		cfg.Bench.Rows = *rows
	}

	log.Printf("Starting pallet-bench...")
	log.Printf("Storage root: %s", cfg.StorageRoot)
	log.Printf("Target partition size: %d", cfg.TargetPartitionSize)

	naive, err := pallet.NewNaive(cfg.Bench.NaiveFile)
	if err != nil {
		log.Fatalf("Failed to create naive warehouse: %v", err)
	}
	partitioned, err := pallet.New(cfg.TargetPartitionSize, cfg.StorageRoot,
		pallet.WithLogger(cfg.Logger()),
		pallet.WithIdentifierColumn(cfg.IdentifierColumn))
	if err != nil {
		log.Fatalf("Failed to create partitioned warehouse: %v", err)
	}
	log.Printf("Partition count: %d", partitioned.PartitionCount())

	numRows := cfg.Bench.Rows
	log.Printf("Generating %d rows of fake data...", numRows)
	data := generateData(numRows, *seed)

	warehouses := []struct {
		name string
		wh   pallet.Warehouse
	}{
		{"naive", naive},
		{"partitioned", partitioned},
	}
	rng := rand.New(rand.NewSource(*seed))

	log.Printf("Testing insert operations...")
	for _, w := range warehouses {
		elapsed := measure(func() {
			for _, rec := range data {
				if err := w.wh.Insert(rec); err != nil {
					log.Fatalf("%s: insert failed: %v", w.name, err)
				}
			}
		})
		report(w.name, "insert", numRows, elapsed)
	}

	log.Printf("Testing update operations...")
	patches := make([]types.Record, 0, cfg.Bench.Updates)
	for i := 0; i < cfg.Bench.Updates; i++ {
		id := strconv.Itoa(rng.Intn(numRows) + 1)
		patch := types.NewRecord()
		patch.Set("id", types.Text(id))
		patch.Set("name", types.Text("Updated-"+id))
		patch.Set("address", types.Text("Updated-"+id))
		patch.Set("email", types.Text("Updated-"+id))
		patches = append(patches, patch)
	}
	for _, w := range warehouses {
		elapsed := measure(func() {
			for _, patch := range patches {
				id, _ := patch.Get("id")
				if err := w.wh.Update("id", id, patch); err != nil {
					log.Fatalf("%s: update failed: %v", w.name, err)
				}
			}
		})
		report(w.name, "update", cfg.Bench.Updates, elapsed)
	}

	log.Printf("Testing query operations...")
	keyLists := make([][]types.Value, cfg.Bench.Queries)
	for i := range keyLists {
		keys := make([]types.Value, i)
		for j := range keys {
			// Roughly half the keys will not exist.
			keys[j] = types.Int(int64(rng.Intn(numRows*2) + 1))
		}
		keyLists[i] = keys
	}
	for _, w := range warehouses {
		elapsed := measure(func() {
			for _, keys := range keyLists {
				if _, err := w.wh.Query("id", keys); err != nil {
					log.Fatalf("%s: query failed: %v", w.name, err)
				}
			}
		})
		report(w.name, "query", cfg.Bench.Queries, elapsed)
	}

	log.Printf("Testing delete operations...")
	for _, w := range warehouses {
		elapsed := measure(func() {
			for i := 0; i < cfg.Bench.Deletes; i++ {
				key := types.Int(int64(rng.Intn(numRows*2) + 1))
				if err := w.wh.Delete("id", key); err != nil {
					log.Fatalf("%s: delete failed: %v", w.name, err)
				}
			}
		})
		report(w.name, "delete", cfg.Bench.Deletes, elapsed)
	}

	log.Printf("Partition stats after run:")
	for _, stat := range partitioned.Stats() {
		log.Printf("  partition %d: ~%d rows", stat.Ordinal, stat.Rows)
	}

	os.Exit(0)
}

// generateData builds numRows fake records with the id/name/address/email
// shape the original benchmark used.
func generateData(numRows int, seed int64) []types.Record {
	faker := gofakeit.New(uint64(seed))
	data := make([]types.Record, 0, numRows)
	for i := 1; i <= numRows; i++ {
		rec := types.NewRecord()
		rec.Set("id", types.Text(strconv.Itoa(i)))
		rec.Set("name", types.Text(faker.Name()))
		rec.Set("address", types.Text(faker.Address().Address))
		rec.Set("email", types.Text(faker.Email()))
		data = append(data, rec)
	}
	return data
}

func measure(fn func()) time.Duration {
	start := time.Now()
	fn()
	return time.Since(start)
}

func report(name, op string, count int, elapsed time.Duration) {
	avg := elapsed / time.Duration(count)
	fmt.Printf("%-12s %-7s %6d ops in %12v (avg %10v per op)\n",
		name, op, count, elapsed, avg)
}
