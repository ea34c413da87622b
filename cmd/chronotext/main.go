// Command chronotext queries pre-indexed corpora: the query command
// runs a YAML query document against a corpus index database, the
// info command reports from the corpus metadata registry.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/chronotext/chronotext/corpus/executor"
	"github.com/chronotext/chronotext/corpus/metadata"
	"github.com/chronotext/chronotext/corpus/query"
	"github.com/chronotext/chronotext/corpus/storage"
	"github.com/chronotext/chronotext/corpus/trace"
)

func main() {
	if err := rootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "chronotext",
		Short:         "Temporal corpus search engine",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("config", "", "optional YAML config file")
	root.PersistentFlags().String("db", "testdata/sample.db", "index database path")
	root.PersistentFlags().String("metadata", "testdata/corpora.db", "metadata registry path")
	root.PersistentFlags().Bool("verbose", false, "print query execution trace")

	root.AddCommand(queryCommand(), infoCommand())
	return root
}

// loadConfig merges the optional config file with command-line flags;
// flags win.
func loadConfig(cmd *cobra.Command) (*koanf.Koanf, error) {
	k := koanf.New(".")
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config %s: %w", path, err)
		}
	}
	if err := k.Load(posflag.Provider(cmd.Flags(), ".", k), nil); err != nil {
		return nil, fmt.Errorf("merge flags: %w", err)
	}
	return k, nil
}

func queryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query <query.yaml>",
		Short: "Run a query document against a corpus",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			logger, _ := zap.NewProduction()
			defer logger.Sync()

			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			q, err := query.UnmarshalQuery(data)
			if err != nil {
				return err
			}

			db, err := storage.OpenBadger(k.String("db"))
			if err != nil {
				return err
			}
			defer db.Close()

			var handler trace.Handler
			if k.Bool("verbose") {
				handler = trace.NewOutputFormatter(os.Stderr).Handle
			}

			engine := executor.NewEngine(db.IndexSet(), handler)
			result, err := engine.Execute(q)
			if err != nil {
				logger.Error("query failed", zap.Error(err))
				return err
			}

			fmt.Println(executor.NewTableFormatter().FormatResult(result, q))
			return nil
		},
	}
	return cmd
}

func infoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "info [corpus]",
		Short: "Show registered corpora",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			registry, err := metadata.Open(k.String("metadata"))
			if err != nil {
				return err
			}
			defer registry.Close()

			ctx := context.Background()
			var corpora []metadata.Info
			if len(args) == 1 {
				info, ok, err := registry.Get(ctx, args[0])
				if err != nil {
					return err
				}
				if !ok {
					return fmt.Errorf("corpus %q is not registered", args[0])
				}
				corpora = append(corpora, info)
			} else {
				if corpora, err = registry.List(ctx); err != nil {
					return err
				}
			}

			for _, info := range corpora {
				fmt.Printf("%s: %d documents", info.Name, info.DocumentCount)
				if !info.StartDate.IsZero() {
					fmt.Printf(", dates %s to %s",
						info.StartDate.Format("2006-01-02"),
						info.EndDate.Format("2006-01-02"))
				}
				fmt.Printf(", indexes %v\n", info.Indexes)
			}
			return nil
		},
	}
}
