// Command docstore is a small CLI over the document store: it seeds the
// sample data set, runs single-collection queries and reads records, on the
// in-memory emulator or the SQLite backend depending on configuration.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/asaidimu/go-docstore/backend"
	"github.com/asaidimu/go-docstore/config"
	"github.com/asaidimu/go-docstore/core/persistence"
	"github.com/asaidimu/go-docstore/core/query"
	"github.com/asaidimu/go-docstore/fixtures"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	configPath string
	seedFirst  bool

	whereFlags []string
	orderBy    string
	descending bool
	limit      int
)

var rootCmd = &cobra.Command{
	Use:           "docstore",
	Short:         "Query and seed the document store",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the sample users, groups, photos, events and todos",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd, func(ctx context.Context, store *persistence.Store) error {
			if err := fixtures.Seed(ctx, store); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "seeded sample data")
			return nil
		})
	},
}

var queryCmd = &cobra.Command{
	Use:   "query <collection>",
	Short: "Run a query against one collection",
	Example: `  docstore query photos --where groupId=g1 --order-by createdAt --desc --limit 5
  docstore query todos --where done=false --seed`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		q, err := buildQuery(args[0], whereFlags, orderBy, descending, limit)
		if err != nil {
			return err
		}
		return withStore(cmd, func(ctx context.Context, store *persistence.Store) error {
			snap, err := store.Run(ctx, q)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), snap.Records)
		})
	},
}

var getCmd = &cobra.Command{
	Use:   "get <collection> <id>",
	Short: "Read one record",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd, func(ctx context.Context, store *persistence.Store) error {
			snap, err := store.Doc(args[0], args[1]).Get(ctx)
			if err != nil {
				return err
			}
			rec, ok := snap.Record()
			if !ok {
				return fmt.Errorf("%s/%s does not exist", args[0], args[1])
			}
			return writeJSON(cmd.OutOrStdout(), rec)
		})
	},
}

var collectionsCmd = &cobra.Command{
	Use:   "collections",
	Short: "List known collections",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd, func(ctx context.Context, store *persistence.Store) error {
			names, err := store.Collections(ctx)
			if err != nil {
				return err
			}
			for _, name := range names {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		})
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "docstore.yaml", "path to the configuration file")
	rootCmd.PersistentFlags().BoolVar(&seedFirst, "seed", false, "load the sample data before running the command")

	queryCmd.Flags().StringArrayVarP(&whereFlags, "where", "w", nil, "equality filter as field=value (repeatable)")
	queryCmd.Flags().StringVar(&orderBy, "order-by", "", "sort field")
	queryCmd.Flags().BoolVar(&descending, "desc", false, "sort descending")
	queryCmd.Flags().IntVarP(&limit, "limit", "n", 0, "maximum number of records")

	rootCmd.AddCommand(seedCmd, queryCmd, getCmd, collectionsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// withStore opens the configured store, optionally seeds it, runs fn and
// closes the store.
func withStore(cmd *cobra.Command, fn func(ctx context.Context, store *persistence.Store) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := cfg.Logging.NewLogger()
	if err != nil {
		return err
	}
	defer logger.Sync()

	store, err := backend.Open(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if cErr := store.Close(); cErr != nil {
			logger.Warn("Failed to close store", zap.Error(cErr))
		}
	}()

	if seedFirst {
		if err := fixtures.Seed(ctx, store); err != nil {
			return err
		}
	}
	return fn(ctx, store)
}

// buildQuery turns CLI flags into a query. Values in --where are parsed as
// JSON when possible, so likes=3 compares as a number and done=false as a
// bool; anything else is a string.
func buildQuery(collection string, where []string, orderBy string, desc bool, limit int) (query.Query, error) {
	q := query.New(collection)

	for _, w := range where {
		field, raw, ok := strings.Cut(w, "=")
		if !ok {
			return q, fmt.Errorf("invalid --where %q: expected field=value", w)
		}
		var err error
		if q, err = q.Where(field, query.OperatorEqual, parseValue(raw)); err != nil {
			return q, err
		}
	}

	if orderBy != "" {
		dir := query.SortDirectionAsc
		if desc {
			dir = query.SortDirectionDesc
		}
		var err error
		if q, err = q.OrderBy(orderBy, dir); err != nil {
			return q, err
		}
	}

	if limit != 0 {
		var err error
		if q, err = q.Limit(limit); err != nil {
			return q, err
		}
	}
	return q, nil
}

func parseValue(raw string) any {
	var v any
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil || dec.More() {
		return raw
	}
	if n, ok := v.(json.Number); ok {
		if i, err := n.Int64(); err == nil {
			return i
		}
		if f, err := n.Float64(); err == nil {
			return f
		}
	}
	return v
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
