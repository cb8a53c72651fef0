// Command analyze prints quick, human-readable heuristics about configuration
// files in the project's configs directory. It summarizes dimensions, which
// rules can ever fire, how many winning windows each rule offers and which
// columns take part in the most windows.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/wricardo/connect-n/game/engine"
)

// RuleAnalysis holds the window count of one enabled rule
type RuleAnalysis struct {
	Rule      engine.RuleKind
	Windows   int
	Reachable bool
}

// Analysis summarizes a configuration
type Analysis struct {
	Name         string
	Columns      int
	Rows         int
	WinCondition int
	Cells        int
	Rules        []RuleAnalysis
	Disabled     []engine.RuleKind
	TotalWindows int
	// ColumnWeight counts, per column, the windows that include at least one of its cells
	ColumnWeight []int
}

func main() {
	dir := "configs"
	if len(os.Args) > 1 {
		dir = os.Args[1]
	}

	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		fmt.Printf("Error finding config files: %v\n", err)
		os.Exit(1)
	}

	for _, configFile := range files {
		fmt.Printf("\n=== Analyzing %s ===\n", filepath.Base(configFile))
		analyzeConfig(configFile)
	}
}

func analyzeConfig(path string) {
	config, err := engine.LoadGameConfig(path)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		return
	}

	a := analyze(config)

	fmt.Printf("Name: %s\n", a.Name)
	fmt.Printf("Board: %d columns x %d rows (%d cells)\n", a.Columns, a.Rows, a.Cells)
	fmt.Printf("Connect: %d\n", a.WinCondition)

	for _, r := range a.Rules {
		if r.Reachable {
			fmt.Printf("  %-10s %d windows\n", r.Rule, r.Windows)
		} else {
			fmt.Printf("  %-10s can never fire\n", r.Rule)
		}
	}
	if len(a.Disabled) > 0 {
		fmt.Printf("Disabled rules: %v\n", a.Disabled)
	}

	if a.TotalWindows == 0 {
		fmt.Printf("⚠️  WARNING: no enabled rule can connect %d on this board, every game ends with a full board\n", a.WinCondition)
		return
	}
	fmt.Printf("✅ %d winning windows in total\n", a.TotalWindows)

	best := bestColumns(a.ColumnWeight)
	fmt.Printf("Strongest opening columns: %v (%d windows each)\n", best, a.ColumnWeight[best[0]])

	// A win needs at least 2n-1 drops
	if a.Cells < 2*a.WinCondition-1 {
		fmt.Printf("⚠️  WARNING: only %d cells, the board fills before any run can complete\n", a.Cells)
	}
}

// analyze counts, per enabled rule, the windows of WinCondition cells that
// fit on the board
func analyze(config *engine.GameConfig) Analysis {
	a := Analysis{
		Name:         config.Name,
		Columns:      config.Columns,
		Rows:         config.Rows,
		WinCondition: config.WinCondition,
		Cells:        config.Columns * config.Rows,
		ColumnWeight: make([]int, config.Columns),
	}

	reachable := make(map[engine.RuleKind]bool)
	for _, r := range config.ReachableRules() {
		reachable[r] = true
	}

	n := config.WinCondition
	for _, rule := range config.Rules {
		ra := RuleAnalysis{Rule: rule, Reachable: reachable[rule]}
		if ra.Reachable {
			ra.Windows = countWindows(rule, config.Columns, config.Rows, n, a.ColumnWeight)
		}
		a.TotalWindows += ra.Windows
		a.Rules = append(a.Rules, ra)
	}

	enabled := make(map[engine.RuleKind]bool, len(config.Rules))
	for _, rule := range config.Rules {
		enabled[rule] = true
	}
	for _, rule := range engine.KnownRules() {
		if !enabled[rule] {
			a.Disabled = append(a.Disabled, rule)
		}
	}

	return a
}

// countWindows returns the number of windows of length n for rule and adds
// each window to the weight of the columns it spans
func countWindows(rule engine.RuleKind, columns, rows, n int, weight []int) int {
	count := 0
	add := func(firstCol, lastCol int) {
		count++
		for c := firstCol; c <= lastCol; c++ {
			weight[c]++
		}
	}

	switch rule {
	case engine.VerticalRun:
		for c := 0; c < columns; c++ {
			for r := 0; r+n <= rows; r++ {
				add(c, c)
			}
		}
	case engine.HorizontalRun:
		for r := 0; r < rows; r++ {
			for c := 0; c+n <= columns; c++ {
				add(c, c+n-1)
			}
		}
	case engine.DiagonalRun:
		// Both directions span the same columns
		for c := 0; c+n <= columns; c++ {
			for r := 0; r+n <= rows; r++ {
				add(c, c+n-1)
				add(c, c+n-1)
			}
		}
	}

	return count
}

// bestColumns returns the columns with the highest weight
func bestColumns(weight []int) []int {
	max := -1
	var best []int
	for c, w := range weight {
		switch {
		case w > max:
			max = w
			best = []int{c}
		case w == max:
			best = append(best, c)
		}
	}
	return best
}
