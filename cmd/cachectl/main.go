package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/riskibarqy/starleague/internal/infrastructure/localcache/sqlite"
	"github.com/riskibarqy/starleague/internal/platform/localcache"
	"github.com/riskibarqy/starleague/internal/platform/logging"
	"github.com/riskibarqy/starleague/internal/usecase"
)

const commandTimeout = 30 * time.Second

func main() {
	if len(os.Args) < 2 {
		printUsage(os.Stderr)
		os.Exit(2)
	}

	logger := logging.NewJSON(logging.ParseLevel(os.Getenv("LOG_LEVEL")))
	path := strings.TrimSpace(os.Getenv("LOCAL_CACHE_PATH"))
	if path == "" {
		path = "starleague-cache.db"
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	store, err := sqlite.Open(ctx, path)
	if err != nil {
		logger.Error("open local cache", "path", path, "error", err)
		os.Exit(1)
	}
	defer func() { _ = store.Close() }()

	cache := localcache.NewAdapter(store, localcache.Options{
		Prefix: strings.TrimSpace(os.Getenv("LOCAL_CACHE_PREFIX")),
		Logger: logger,
	})

	if err := run(ctx, cache, os.Args[1:], os.Stdout); err != nil {
		logger.Error("cachectl failed", "command", os.Args[1], "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cache *localcache.Adapter, args []string, out io.Writer) error {
	cmd := strings.ToLower(strings.TrimSpace(args[0]))
	switch cmd {
	case "list":
		for _, name := range knownCollections() {
			state := "empty"
			if cache.LoadSnapshot(ctx, name).Exists() {
				state = "cached"
			}
			fmt.Fprintf(out, "%-16s %s\n", name, state)
		}
	case "show":
		name, err := collectionArg(args[1:])
		if err != nil {
			return err
		}
		snap := cache.LoadSnapshot(ctx, name)
		if !snap.Exists() {
			return fmt.Errorf("%s is not cached", cache.Key(name))
		}
		fmt.Fprintf(out, "%s\n", snap.Raw)
	case "clear":
		if len(args) < 2 {
			for _, name := range knownCollections() {
				cache.Remove(ctx, name)
			}
			fmt.Fprintln(out, "cleared all collections")
			return nil
		}
		name, err := collectionArg(args[1:])
		if err != nil {
			return err
		}
		cache.Remove(ctx, name)
		fmt.Fprintf(out, "cleared %s\n", cache.Key(name))
	default:
		printUsage(out)
		return fmt.Errorf("unknown command %q", cmd)
	}
	return nil
}

func collectionArg(args []string) (string, error) {
	if len(args) == 0 {
		return "", fmt.Errorf("collection argument is required")
	}
	name := strings.ToLower(strings.TrimSpace(args[0]))
	for _, known := range knownCollections() {
		if known == name {
			return name, nil
		}
	}
	return "", fmt.Errorf("unknown collection %q", args[0])
}

func knownCollections() []string {
	out := make([]string, 0, len(usecase.CoreCollections)+len(usecase.AuxCollections))
	out = append(out, usecase.CoreCollections...)
	return append(out, usecase.AuxCollections...)
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "usage: cachectl <command> [args]")
	fmt.Fprintln(w, "commands:")
	fmt.Fprintln(w, "  list                 show which collections have a cached copy")
	fmt.Fprintln(w, "  show <collection>    print the cached JSON for a collection")
	fmt.Fprintln(w, "  clear [collection]   drop one cached collection, or all of them")
	fmt.Fprintln(w, "env: LOCAL_CACHE_PATH (default starleague-cache.db), LOCAL_CACHE_PREFIX (default sl_)")
}
