package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sevigo/cartpilot/internal/config"
	"github.com/sevigo/cartpilot/internal/db"
	"github.com/sevigo/cartpilot/internal/storage"
)

func main() {
	themeFlag := flag.String("theme", "", "UI theme (cyan, matrix, amber, dracula)")
	listThemes := flag.Bool("list-themes", false, "List all available themes")
	interval := flag.Duration("interval", 2*time.Second, "refresh interval")
	limit := flag.Int("limit", 50, "number of recent jobs to show")
	flag.Parse()

	if *listThemes {
		fmt.Println("Available themes:")
		for _, theme := range ListThemes() {
			fmt.Printf("  - %s\n", theme)
		}
		os.Exit(0)
	}

	theme := ThemeName(*themeFlag)
	if theme == "" {
		theme = ThemeName(os.Getenv("CARTWATCH_THEME"))
	}
	if theme == "" {
		theme = ThemeCyan
	}
	if !slices.Contains(ListThemes(), theme) {
		fmt.Printf("Invalid theme '%s'. Use --list-themes to see available options.\n", theme)
		os.Exit(1)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// keep library logging off the alternate screen
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})))

	conn, cleanup, err := db.NewDatabase(&cfg.Database)
	if err != nil {
		fmt.Printf("Failed to open database: %v\n", err)
		os.Exit(1)
	}
	defer cleanup()

	p := tea.NewProgram(newModel(storage.NewStore(conn.DB), theme, *interval, *limit), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Printf("Error running program: %v\n", err)
		cleanup()
		os.Exit(1)
	}
}
