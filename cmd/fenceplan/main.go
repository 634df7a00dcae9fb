// Command fenceplan loads a fence project, runs one derived-state recompute
// and prints the resulting posts, panel layouts and spans.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"sort"

	"fence-planner/internal/config"
	"fence-planner/internal/geo"
	"fence-planner/internal/project"
	"fence-planner/internal/store"
	"fence-planner/internal/version"
)

func main() {
	projectPath := flag.String("project", "", "Path to .fenceproj file")
	configPath := flag.String("config", "", "Optional engine parameter file (TOML)")
	verbose := flag.Bool("v", false, "Enable debug logging")
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String())
		return
	}
	if *projectPath == "" {
		fmt.Println("Usage: fenceplan -project <path> [-config <path>] [-v]")
		os.Exit(1)
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	params, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	proj, err := project.Load(*projectPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load project: %v\n", err)
		os.Exit(1)
	}

	// Synchronous frame: mutation recomputes run immediately. Hydration
	// defers its pass behind the stabilization timer, so the explicit
	// Recompute below covers it before anything is printed.
	s := store.New(geo.NewProjector(proj.Origin), params,
		store.WithLogger(logger),
		store.WithFrame(func(cb func()) { cb() }),
	)
	proj.Hydrate(s)
	s.Recompute()

	fmt.Printf("Project: %s (%d lines, %d gates, scale %.2f)\n",
		proj.Name, len(proj.Lines), len(proj.Gates), s.Scale())

	lines := s.Lines()
	sort.Slice(lines, func(i, j int) bool { return lines[i].ID < lines[j].ID })
	fmt.Printf("\nRuns:\n")
	for _, l := range lines {
		gate := ""
		if l.HasGate() {
			gate = "  [gate]"
		}
		fmt.Printf("  %-38s %8.0f mm%s\n", l.ID, l.LengthMM, gate)
	}

	d := s.Derived()
	fmt.Printf("\nPosts (%d):\n", len(d.Posts))
	for _, p := range d.Posts {
		fmt.Printf("  %-10s %-7s %-14s bearing %6.1f°\n", p.ID, p.Category, p.Source, p.AngleDeg)
	}

	fmt.Printf("\nSpans (%d):\n", len(d.Spans))
	var total float64
	for _, sp := range d.Spans {
		fmt.Printf("  %s -> %s  %8.1f mm\n", sp.FromID, sp.ToID, sp.LengthMM)
		total += sp.LengthMM
	}
	fmt.Printf("  total walked: %.1f mm\n", total)

	if len(d.Leftovers) > 0 {
		fmt.Printf("\nLeftover cuts:\n")
		for _, lo := range d.Leftovers {
			fmt.Printf("  run %s: %.0f mm\n", lo.RunID, lo.LengthMM)
		}
	}
	for _, w := range d.Warnings {
		fmt.Printf("WARNING: %s\n", w.Message)
	}
}
