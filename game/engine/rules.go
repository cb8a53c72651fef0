package engine

import "fmt"

// Detector reports whether player p owns a run of at least n markers on b
// in one direction. Detectors only read the board.
type Detector interface {
	Detect(b *Board, p Player, n int) bool
}

// DetectorFunc adapts a plain function to the Detector interface
type DetectorFunc func(b *Board, p Player, n int) bool

// Detect calls f(b, p, n)
func (f DetectorFunc) Detect(b *Board, p Player, n int) bool {
	return f(b, p, n)
}

var detectors = map[RuleKind]Detector{
	VerticalRun:   DetectorFunc(verticalRun),
	HorizontalRun: DetectorFunc(horizontalRun),
	DiagonalRun:   DetectorFunc(diagonalRun),
}

// KnownRules lists every rule kind in a stable order
func KnownRules() []RuleKind {
	return []RuleKind{VerticalRun, HorizontalRun, DiagonalRun}
}

// ParseRuleKind validates a rule name
func ParseRuleKind(name string) (RuleKind, error) {
	kind := RuleKind(name)
	if _, ok := detectors[kind]; !ok {
		return "", fmt.Errorf("%w: %q (known rules: %v)", ErrUnknownRule, name, KnownRules())
	}
	return kind, nil
}

// RuleEngine evaluates a fixed win condition against an ordered set of
// detectors. It holds no board state.
type RuleEngine struct {
	winCondition int
	activeRules  []RuleKind
}

// NewRuleEngine creates a rule engine for runs of winCondition markers
func NewRuleEngine(winCondition int) (*RuleEngine, error) {
	if winCondition < MinWinCondition {
		return nil, fmt.Errorf("%w: %d", ErrInvalidWinCondition, winCondition)
	}
	return &RuleEngine{winCondition: winCondition}, nil
}

// NewRuleEngineWithRules creates a rule engine and registers rules in order
func NewRuleEngineWithRules(winCondition int, rules ...RuleKind) (*RuleEngine, error) {
	re, err := NewRuleEngine(winCondition)
	if err != nil {
		return nil, err
	}
	for _, rule := range rules {
		if err := re.Register(rule); err != nil {
			return nil, err
		}
	}
	return re, nil
}

// Register appends a detector to the evaluation order
func (re *RuleEngine) Register(rule RuleKind) error {
	if _, ok := detectors[rule]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownRule, rule)
	}
	re.activeRules = append(re.activeRules, rule)
	return nil
}

// WinCondition returns the required run length
func (re *RuleEngine) WinCondition() int {
	return re.winCondition
}

// Rules returns the registered rules in evaluation order
func (re *RuleEngine) Rules() []RuleKind {
	return append([]RuleKind{}, re.activeRules...)
}

// Evaluate reports whether p has a winning run under any registered rule
func (re *RuleEngine) Evaluate(b *Board, p Player) bool {
	_, ok := re.Match(b, p)
	return ok
}

// Match returns the first registered rule under which p has a winning run
func (re *RuleEngine) Match(b *Board, p Player) (RuleKind, bool) {
	if b == nil || !p.Valid() {
		return "", false
	}
	for _, rule := range re.activeRules {
		if detectors[rule].Detect(b, p, re.winCondition) {
			return rule, true
		}
	}
	return "", false
}
