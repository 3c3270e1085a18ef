package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"

	apiconfig "reverse_dcf/pkg/api/config"
	"reverse_dcf/pkg/api/valuation"
	"reverse_dcf/pkg/core/market"
	"reverse_dcf/pkg/core/solver"
	"reverse_dcf/pkg/core/store"
)

// serverConfig is the on-disk configuration file shape.
type serverConfig struct {
	Port   string         `yaml:"port"`
	Solver solver.Options `yaml:"solver"`
}

func main() {
	// Load environment variables
	godotenv.Load()

	// Solver options: defaults, overridden by config/solver.yaml if present
	cfg := serverConfig{Port: "8090", Solver: solver.DefaultOptions()}
	if data, err := os.ReadFile("config/solver.yaml"); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			fmt.Printf("[WARNING] config/solver.yaml unreadable, using defaults: %v\n", err)
			cfg.Solver = solver.DefaultOptions()
		}
	}
	if err := cfg.Solver.Validate(); err != nil {
		fmt.Printf("[FATAL] invalid solver config: %v\n", err)
		os.Exit(1)
	}

	// Snapshot store: Postgres when DATABASE_URL is set, file cache otherwise
	ctx := context.Background()
	if err := store.InitDB(ctx); err != nil {
		fmt.Printf("[STORE] no database (%v), using file cache\n", err)
	}
	cache := store.NewSnapshotCache(store.GetPool(), "")

	optStore := apiconfig.NewStore(cfg.Solver)
	valHandler := valuation.NewHandler(market.NewQuoteClient(), cache, optStore)
	cfgHandler := apiconfig.NewHandler(optStore)

	http.HandleFunc("/api/valuation/dcf", valHandler.HandleDCF)
	http.HandleFunc("/api/valuation/implied", valHandler.HandleImplied)
	http.HandleFunc("/api/valuation/sensitivity", valHandler.HandleSensitivity)
	http.HandleFunc("/api/valuation/chart", valHandler.HandleChart)
	http.HandleFunc("/api/valuation/narrative", valHandler.HandleNarrative)
	http.HandleFunc("/api/config/solver", cfgHandler.HandleSolverOptions)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.Port
	}

	fmt.Printf("API server starting on :%s...\n", port)
	fmt.Println("  - POST /api/valuation/dcf          (forward DCF)")
	fmt.Println("  - POST /api/valuation/implied      (Reverse DCF: implied growth)")
	fmt.Println("  - POST /api/valuation/sensitivity  (WACC x terminal growth grid)")
	fmt.Println("  - POST /api/valuation/chart        (projected FCF PNG)")
	fmt.Println("  - POST /api/valuation/narrative    (LLM note, optional)")
	fmt.Println("  - GET/POST /api/config/solver      (runtime solver options)")

	if err := http.ListenAndServe(":"+port, nil); err != nil {
		fmt.Printf("[FATAL] Server failed to start: %v\n", err)
		os.Exit(1)
	}
}
