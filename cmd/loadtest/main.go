// Loadtest spawns many actors and pumps messages through the scheduler.
//
// Run with: go run ./cmd/loadtest
//
// Tuning via env:
//
//	ACTORS=10000 MSGS=100 WORKERS=8 REDUCTIONS=2000 BACKEND=mem go run ./cmd/loadtest
//
// BACKEND=nats persists state snapshots to a JetStream KV bucket
// (NATS_URL, default localhost). Run nats: docker run --net=host nats:latest -js
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"strconv"
	"sync/atomic"
	"time"

	natsadapter "github.com/Creativesource-Sys/synapsys/adapters/nats"
	"github.com/Creativesource-Sys/synapsys/core/sched"
	"github.com/Creativesource-Sys/synapsys/core/system"
	"github.com/Creativesource-Sys/synapsys/ports/state"
)

var (
	numActors     = getEnvInt("ACTORS", 10_000)
	msgsPerActor  = getEnvInt("MSGS", 100)
	numWorkers    = getEnvInt("WORKERS", runtime.NumCPU())
	maxReductions = getEnvInt("REDUCTIONS", 2_000)
	backendType   = getEnv("BACKEND", "mem")
)

func getEnv(key, fallback string) string {
	v, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	return v
}

func getEnvInt(key string, fallback int) int {
	v, err := strconv.Atoi(getEnv(key, fmt.Sprintf("%d", fallback)))
	if err != nil {
		return fallback
	}
	return v
}

type tick struct{}

type actorState struct {
	Count int `json:"count"`
}

func main() {
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(log)

	ctx := context.Background()

	var store state.Store
	switch backendType {
	case "mem":
		store = state.NewMemStore()
	case "nats":
		natsStore, err := natsadapter.NewStateStore(ctx, natsadapter.StateConfig{
			Connect: natsadapter.ConnectDefault(),
			Bucket:  "synapsys_loadtest",
		})
		if err != nil {
			log.Error("failed to open nats state store", slog.Any("error", err))
			os.Exit(1)
		}
		defer natsStore.Close()
		store = state.Cached(natsStore, numActors)
	default:
		log.Error("unknown backend", slog.String("backend", backendType))
		os.Exit(1)
	}

	var processed atomic.Int64
	total := int64(numActors * msgsPerActor)

	sys := system.New(system.Config{
		Context: ctx,
		Log:     log,
		Store:   store,
		Scheduler: sched.Options{
			NumWorkers:    numWorkers,
			MaxReductions: maxReductions,
		},
	})

	recv := system.Receive(func(msg tick, st actorState) (actorState, any, error) {
		st.Count++
		processed.Add(1)
		return st, nil, nil
	})

	log.Info("registering actors", slog.Int("actors", numActors))
	ids := make([]string, numActors)
	for i := range ids {
		ids[i] = fmt.Sprintf("actor-%06d", i)
		if _, err := sys.Register(ctx, ids[i], recv, system.WithPersistentState(actorState{})); err != nil {
			log.Error("register failed", slog.String("actor_id", ids[i]), slog.Any("error", err))
			os.Exit(1)
		}
	}

	log.Info("posting",
		slog.Int("actors", numActors),
		slog.Int("msgs_per_actor", msgsPerActor),
		slog.Int("workers", numWorkers),
	)

	start := time.Now()
	for m := 0; m < msgsPerActor; m++ {
		for _, id := range ids {
			if err := sys.Post(ctx, id, tick{}); err != nil {
				log.Error("post failed", slog.String("actor_id", id), slog.Any("error", err))
				os.Exit(1)
			}
		}
	}

	for processed.Load() < total {
		time.Sleep(10 * time.Millisecond)
	}
	elapsed := time.Since(start)

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := sys.Shutdown(shutdownCtx); err != nil {
		log.Warn("shutdown incomplete", slog.Any("error", err))
	}

	fmt.Printf("processed %d messages across %d actors in %s (%.0f msg/s)\n",
		total, numActors, elapsed.Round(time.Millisecond),
		float64(total)/elapsed.Seconds(),
	)
}
