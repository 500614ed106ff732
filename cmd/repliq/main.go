// Command repliq is the process entry point: it parses --env, loads
// configs/config.json, ensures the runtime directories exist, confirms
// before running in prod, and then runs one retry-wrapped pass of the
// bulk orchestrator per configured tabular channel. It is intentionally
// thin - all of the interesting engineering lives in internal/orchestrate,
// internal/enrich, internal/dedup and internal/polyval.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	flags "github.com/jessevdk/go-flags"
	log "github.com/sirupsen/logrus"

	"github.com/repliq/repliq/internal/adapter/memory"
	"github.com/repliq/repliq/internal/adapter/tabular"
	"github.com/repliq/repliq/internal/config"
	"github.com/repliq/repliq/internal/cursorstore"
	"github.com/repliq/repliq/internal/dedup"
	"github.com/repliq/repliq/internal/enrich"
	"github.com/repliq/repliq/internal/metrics"
	"github.com/repliq/repliq/internal/orchestrate"
	"github.com/repliq/repliq/internal/polyval"
	"github.com/repliq/repliq/internal/retry"
	"github.com/repliq/repliq/internal/timeutil"
)

type options struct {
	Env string `long:"env" required:"true" choice:"dev" choice:"staging" choice:"prod" description:"deployment environment"`
}

func main() {
	var opts options
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		fmt.Println("[--env {dev, staging, prod}]")
		os.Exit(1)
	}

	env := config.Env(opts.Env)
	if !env.Valid() {
		fmt.Println("[--env {dev, staging, prod}]")
		os.Exit(1)
	}

	if err := ensureDir("./logs"); err != nil {
		log.WithField("error", err).Error("failed to create ./logs")
		os.Exit(1)
	}
	if err := ensureDir("./metadata"); err != nil {
		log.WithField("error", err).Error("failed to create ./metadata")
		os.Exit(1)
	}

	if env == config.EnvProd && !confirm(os.Stdin) {
		os.Exit(0)
	}

	cfg, err := config.Load("configs/config.json")
	if err != nil {
		log.WithField("error", err).Error("failed to load configuration")
		os.Exit(1)
	}

	if err := run(context.Background(), cfg, env); err != nil {
		// run drives every topic under RetryForeverOnAnyError, so pipeline
		// failures are retried in place; an error escaping here is a failure
		// to create a topic's cursor directory or one that retry.Loop hands
		// back without retrying (see its doc).
		log.WithField("error", err).Error("pipeline run failed")
		os.Exit(1)
	}
}

func ensureDir(path string) error {
	return os.MkdirAll(path, 0o755)
}

func confirm(in *os.File) bool {
	fmt.Print("running against prod, continue? [y/N] ")
	scanner := bufio.NewScanner(in)
	if !scanner.Scan() {
		return false
	}
	answer := strings.TrimSpace(strings.ToLower(scanner.Text()))
	return answer == "y"
}

// run wires one bulk-copy pipeline per configured tabular channel and
// drives each under the retry loop. Each channel's cursor is persisted in
// its own cursorstore.Store file under ./metadata, so a restart resumes
// from the last checkpoint rather than replaying from scratch. The
// canonical document store and search index are out of this system's scope
// (see internal/adapter/memory's package doc); run exercises them as
// in-memory stand-ins so the pipeline's enrich -> dedup -> save(doc) ->
// save(search) shape stays intact end to end.
func run(ctx context.Context, cfg *config.Config, env config.Env) error {
	doc := memory.NewStore()
	search := memory.NewStore()

	for connName, channels := range cfg.Tabular.Channels {
		conn, ok := cfg.Tabular.Connections[connName][env]
		if !ok {
			log.WithField("channel", connName).Warn("no connection configured for environment, skipping")
			continue
		}

		channelDir := filepath.Join("metadata", connName)
		if err := ensureDir(channelDir); err != nil {
			return fmt.Errorf("creating cursor directory for channel %s: %w", connName, err)
		}

		for _, ch := range channels {
			topic := connName + "/" + ch.Name

			loader := tabular.Loader{
				DB:         conn.Database,
				Query:      strings.Join(ch.Script, " "),
				TimeColumn: "start_time",
			}
			enricher := enrich.Tabular{
				Channel:      connName,
				ModelName:    ch.ModelName,
				Action:       "upsert",
				TargetStores: ch.TargetStores,
			}
			store := cursorstore.Open(filepath.Join(channelDir, ch.Name+".kv"))
			cursorIO := orchestrate.CursorIO{
				LoadStartTime: loadCursor(store, topic),
				SaveStartTime: saveCursor(store, topic),
			}

			action := func(ctx context.Context) error {
				return orchestrate.Bulk(ctx, loader.Load, pipeline(topic, enricher, doc, search), cursorIO, tabularTimeOf)
			}
			if err := retry.Loop(ctx, topic, action, retry.Policy{Tolerance: retry.RetryForeverOnAnyError}); err != nil {
				return fmt.Errorf("topic %s: %w", topic, err)
			}
		}
	}

	return nil
}

// tabularTimeOf extracts a raw tabular row's logical time for the bulk
// orchestrator's monotonicity bookkeeping, before enrichment runs.
func tabularTimeOf(rec polyval.Value) int64 {
	raw, ok := rec.Lookup("start_time")
	if !ok {
		return 0
	}
	ms, err := timeutil.FromUTC(raw.AsString())
	if err != nil {
		return 0
	}
	return ms
}

// pipeline builds the enrich -> dedup -> save(doc) -> save(search) chain
// orchestrate.Bulk drives once per run, recording metrics at each stage.
func pipeline(topic string, enricher enrich.Tabular, doc, search *memory.Store) orchestrate.Pipeline {
	return func(ctx context.Context, batch []polyval.Value) error {
		metrics.RecordsLoaded.WithLabelValues(topic).Add(float64(len(batch)))

		enriched, err := enricher.EnrichBatch(batch)
		if err != nil {
			return fmt.Errorf("enriching batch: %w", err)
		}

		kept, err := dedup.Filter(ctx, enriched, doc.LoadByDescriptor)
		if err != nil {
			return fmt.Errorf("deduplicating batch: %w", err)
		}
		metrics.RecordsDeduplicated.WithLabelValues(topic).Add(float64(len(enriched) - len(kept)))
		if len(kept) == 0 {
			return nil
		}

		if err := doc.Save(ctx, kept); err != nil {
			return fmt.Errorf("saving to document store: %w", err)
		}
		metrics.RecordsSaved.WithLabelValues(topic, "document").Add(float64(len(kept)))

		if err := search.Save(ctx, kept); err != nil {
			return fmt.Errorf("saving to search index: %w", err)
		}
		metrics.RecordsSaved.WithLabelValues(topic, "search").Add(float64(len(kept)))

		return nil
	}
}

func loadCursor(store *cursorstore.Store, topic string) func(context.Context) (int64, error) {
	return func(context.Context) (int64, error) {
		v, err := store.GetOrDefault(topic)
		if err != nil {
			return 0, fmt.Errorf("loading cursor for %s: %w", topic, err)
		}
		if v == "" {
			return 0, nil
		}
		ms, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("parsing stored cursor for %s: %w", topic, err)
		}
		return ms, nil
	}
}

func saveCursor(store *cursorstore.Store, topic string) func(context.Context, int64) error {
	return func(_ context.Context, ms int64) error {
		if err := store.Set(topic, strconv.FormatInt(ms, 10)); err != nil {
			return fmt.Errorf("checkpointing cursor for %s: %w", topic, err)
		}
		return nil
	}
}
