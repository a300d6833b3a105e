package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	intconfig "vacai/internal/config"
	intdb "vacai/internal/db"
	"vacai/internal/domain/models"
	"vacai/internal/layout"
	"vacai/internal/logging"
	"vacai/internal/preview"
	"vacai/internal/services"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var Version = "0.1.0"

var (
	layoutFile      string
	layoutWidth     float64
	layoutDirection string
	layoutConnector string
	layoutExpanded  int
	layoutJSON      bool
)

var rootCmd = &cobra.Command{
	Use:   "vacai",
	Short: "VacAI travel-planning backend",
	Long: `VacAI serves the travel-planning API: accounts and profiles, the agent
shared itinerary state, agent actions and the itinerary timeline layout.

Run 'vacai serve' to start the HTTP server.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		env := intconfig.LoadEnv()
		logging.Init(logging.Config{
			Level:  logging.ParseLevel(env.LogLevel),
			Output: os.Stderr,
			Pretty: env.LogPretty,
		})
	},
	RunE: runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE:  runServe,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create missing tables",
	RunE: func(cmd *cobra.Command, args []string) error {
		env := intconfig.LoadEnv()
		ctx := cmd.Context()
		db, err := intconfig.OpenDB(ctx, env)
		if err != nil {
			return err
		}
		defer db.Close()
		return intdb.Migrate(ctx, db)
	},
}

var layoutCmd = &cobra.Command{
	Use:   "layout",
	Short: "Preview the timeline layout of an itinerary file",
	Long: `Reads an itinerary from a JSON or YAML file (either {"hops": [...]} or
{"itinerary": {"hops": [...]}}) and prints the rows in display order.`,
	RunE: runLayout,
}

func init() {
	layoutCmd.Flags().StringVarP(&layoutFile, "file", "f", "", "Itinerary file (.json, .yaml, .yml); '-' reads JSON from stdin")
	layoutCmd.Flags().Float64VarP(&layoutWidth, "width", "w", 680, "Container width in pixels")
	layoutCmd.Flags().StringVar(&layoutDirection, "direction", "", "Row direction (serpentine|ltr); defaults to LAYOUT_DIRECTION")
	layoutCmd.Flags().StringVar(&layoutConnector, "connector", "", "Connector style (curved|straight); defaults to LAYOUT_CONNECTOR")
	layoutCmd.Flags().IntVar(&layoutExpanded, "expand", -1, "Storage index whose details are shown")
	layoutCmd.Flags().BoolVar(&layoutJSON, "json", false, "Print the computed layout as JSON")
	_ = layoutCmd.MarkFlagRequired("file")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(layoutCmd)
}

func runLayout(cmd *cobra.Command, args []string) error {
	hops, err := readItinerary(layoutFile)
	if err != nil {
		return err
	}
	state, err := services.NormalizeAgentState(models.AgentState{Itinerary: models.Itinerary{Hops: hops}})
	if err != nil {
		return err
	}
	hops = state.Itinerary.Hops

	env := intconfig.LoadEnv()
	cfg := layoutConfig(env)
	if layoutDirection != "" {
		cfg.Direction = layout.ParseDirection(layoutDirection)
	}
	if layoutConnector != "" {
		cfg.Connector = layout.ParseConnectorStyle(layoutConnector)
	}
	l := cfg.Compute(hops, layoutWidth)

	out := cmd.OutOrStdout()
	if layoutJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(l)
	}
	fmt.Fprintf(out, "%d hops, %d per row, %d rows\n\n", len(hops), l.RowCapacity, len(l.Rows))
	fmt.Fprintln(out, preview.Render(hops, l, layoutExpanded))
	return nil
}

type itineraryFile struct {
	Hops      []models.ItineraryHop `json:"hops" yaml:"hops"`
	Itinerary *models.Itinerary     `json:"itinerary" yaml:"itinerary"`
}

func readItinerary(path string) ([]models.ItineraryHop, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read itinerary: %w", err)
	}
	return parseItinerary(path, data)
}

func parseItinerary(path string, data []byte) ([]models.ItineraryHop, error) {
	var f itineraryFile
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("parse yaml itinerary: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("parse json itinerary: %w", err)
		}
	}
	if f.Itinerary != nil && len(f.Hops) == 0 {
		return f.Itinerary.Hops, nil
	}
	return f.Hops, nil
}

func layoutConfig(env intconfig.Env) layout.Config {
	cfg := layout.DefaultConfig()
	cfg.NodeWidth = env.NodeWidth
	cfg.NodeHeight = env.NodeHeight
	cfg.Direction = layout.ParseDirection(env.LayoutDirection)
	cfg.Connector = layout.ParseConnectorStyle(env.LayoutConnector)
	return cfg
}
