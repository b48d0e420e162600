package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/hubenschmidt/go-semdex/config"
	"github.com/hubenschmidt/go-semdex/llm"
	"github.com/hubenschmidt/go-semdex/search"
	"github.com/hubenschmidt/go-semdex/vector"
)

var (
	dsn        string
	dimensions int
)

var rootCmd = &cobra.Command{
	Use:   "semdex",
	Short: "Vector similarity search over pluggable backends",
	Long: `semdex indexes documents as embeddings and answers similarity
queries against an in-memory, SQLite, pgvector, or Pinecone backend.

The backend is selected by --db: empty or ":memory:" for in-memory,
postgres:// for pgvector, pinecone://<index> for Pinecone, and any
other value is treated as a SQLite path.`,
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize the backend schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		// Count forces the lazy schema setup to run.
		ctx := context.Background()
		n, err := store.Count(ctx)
		if err != nil {
			return fmt.Errorf("failed to initialize backend: %w", err)
		}

		fmt.Printf("Backend ready (%s, %d dimensions, %d documents)\n", store.Metric(), dimensions, n)
		return nil
	},
}

var addCmd = &cobra.Command{
	Use:   "add [id]",
	Short: "Embed and index a document",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id := ""
		if len(args) > 0 {
			id = args[0]
		}
		if id == "" {
			id = uuid.NewString()
		}

		content, _ := cmd.Flags().GetString("content")
		if content == "" {
			return fmt.Errorf("content is required")
		}

		metadataStr, _ := cmd.Flags().GetString("metadata")
		var metadata map[string]any
		if metadataStr != "" {
			if err := json.Unmarshal([]byte(metadataStr), &metadata); err != nil {
				return fmt.Errorf("invalid metadata JSON: %w", err)
			}
		}

		exec, store, err := openExecutor()
		if err != nil {
			return err
		}
		defer store.Close()

		if err := exec.Index(context.Background(), id, content, metadata); err != nil {
			return fmt.Errorf("failed to index document: %w", err)
		}

		fmt.Printf("Document '%s' indexed successfully\n", id)
		return nil
	},
}

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Run a similarity query",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		topK, _ := cmd.Flags().GetInt("top-k")
		idsOnly, _ := cmd.Flags().GetBool("ids-only")
		outputJSON, _ := cmd.Flags().GetBool("json")

		req := search.QueryRequest{Query: args[0], TopK: topK}
		if cmd.Flags().Changed("threshold") {
			t, _ := cmd.Flags().GetFloat64("threshold")
			req.Threshold = &t
		}
		if filterStr, _ := cmd.Flags().GetString("filter"); filterStr != "" {
			if err := json.Unmarshal([]byte(filterStr), &req.Filter); err != nil {
				return fmt.Errorf("invalid filter JSON: %w", err)
			}
		}

		exec, store, err := openExecutor()
		if err != nil {
			return err
		}
		defer store.Close()

		ctx := context.Background()
		if idsOnly {
			results, err := exec.TopNIDs(ctx, req)
			if err != nil {
				return err
			}
			return printResults(results, outputJSON, func(r vector.IDScore) {
				fmt.Printf("%.4f  %s\n", r.Score, r.ID)
			})
		}

		results, err := exec.TopN(ctx, req)
		if err != nil {
			return err
		}
		return printResults(results, outputJSON, func(r vector.SearchResult) {
			fmt.Printf("%.4f  %s  %s\n", r.Score, r.Document.ID, r.Document.Content)
		})
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <id>...",
	Short: "Delete documents by id",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		if err := store.Delete(context.Background(), args); err != nil {
			return fmt.Errorf("failed to delete: %w", err)
		}

		fmt.Printf("Deleted %d document(s)\n", len(args))
		return nil
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show backend statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		n, err := store.Count(context.Background())
		if err != nil {
			return fmt.Errorf("failed to count documents: %w", err)
		}

		fmt.Printf("Documents: %d\n", n)
		fmt.Printf("Metric:    %s\n", store.Metric())
		fmt.Printf("Dimension: %d\n", dimensions)
		return nil
	},
}

func openStore() (vector.Store, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return storeFromConfig(cfg)
}

func storeFromConfig(cfg *config.Config) (vector.Store, error) {
	if dsn == "" {
		dsn = cfg.DSN
	}
	if dimensions <= 0 {
		dimensions = cfg.Dimension
	}

	store, err := vector.NewStore(dsn, dimensions)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	return store, nil
}

func openExecutor() (*search.Executor, vector.Store, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	store, err := storeFromConfig(cfg)
	if err != nil {
		return nil, nil, err
	}

	embedder := llm.NewUnifiedClient(llm.UnifiedConfig{
		OpenAIKey: cfg.OpenAIKey,
		OllamaURL: cfg.OllamaURL,
	})
	return search.NewExecutor(store, embedder, cfg.EmbedModel), store, nil
}

func printResults[T any](results []T, asJSON bool, line func(T)) error {
	if asJSON {
		data, err := json.MarshalIndent(results, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}

	if len(results) == 0 {
		fmt.Println("No results")
		return nil
	}
	for _, r := range results {
		line(r)
	}
	return nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dsn, "db", "", "backend DSN (overrides SEMDEX_DSN)")
	rootCmd.PersistentFlags().IntVar(&dimensions, "dim", 0, "embedding dimension (overrides SEMDEX_DIMENSION)")

	addCmd.Flags().String("content", "", "document content to embed")
	addCmd.Flags().String("metadata", "", "metadata as a JSON object")

	searchCmd.Flags().Int("top-k", search.DefaultTopK, "maximum number of results")
	searchCmd.Flags().Float64("threshold", 0, "minimum similarity score")
	searchCmd.Flags().String("filter", "", "metadata equality filter as a JSON object")
	searchCmd.Flags().Bool("ids-only", false, "return ids and scores only")
	searchCmd.Flags().Bool("json", false, "output JSON")

	rootCmd.AddCommand(initCmd, addCmd, searchCmd, deleteCmd, statsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
