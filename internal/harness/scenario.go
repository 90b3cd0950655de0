package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/constprop/internal/diag"
	"github.com/roach88/constprop/internal/engine"
	"github.com/roach88/constprop/internal/ir"
)

// Scenario defines a conformance test scenario: a set of CUE-authored
// functions, the pass configuration to run them under, and assertions on
// the transformed functions and the diagnostics.
type Scenario struct {
	// Name uniquely identifies this scenario. It also names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Specs lists CUE files declaring functions. Relative paths are
	// resolved against the scenario file's directory.
	Specs []string `yaml:"specs"`

	Config ScenarioConfig `yaml:"config,omitempty"`

	// Assertions validate the transformed functions and diagnostics.
	Assertions []Assertion `yaml:"assertions"`
}

// ScenarioConfig mirrors the pass switches.
type ScenarioConfig struct {
	Diagnostics bool `yaml:"diagnostics"`

	// AssertConfig is disabled, debug, release or unchecked.
	AssertConfig string `yaml:"assert_config,omitempty"`
}

// Assertion checks one property of the outcome.
type Assertion struct {
	// Type specifies the assertion type:
	// - "diagnostic": a diagnostic with the given id was emitted
	// - "no_diagnostics": nothing was emitted
	// - "diagnostic_count": exactly Count diagnostics (of ID, if given)
	// - "returns": the function returns a literal with text Value
	// - "folded": exactly Count instructions were folded
	// - "instruction_count": Count instructions remain
	// - "invalidation": the invalidation summary reads Value
	// - "no_op": no instruction with mnemonic Op remains
	Type string `yaml:"type"`

	// Function restricts the assertion to one function. Required by
	// function-level assertions, optional for diagnostic ones.
	Function string `yaml:"function,omitempty"`

	// ID, Severity, Line and Message filter diagnostics. Message is a
	// substring match.
	ID       string `yaml:"id,omitempty"`
	Severity string `yaml:"severity,omitempty"`
	Line     int    `yaml:"line,omitempty"`
	Message  string `yaml:"message,omitempty"`

	Value string `yaml:"value,omitempty"`
	Count *int   `yaml:"count,omitempty"`
	Op    string `yaml:"op,omitempty"`
}

// Assertion type constants.
const (
	AssertDiagnostic       = "diagnostic"
	AssertNoDiagnostics    = "no_diagnostics"
	AssertDiagnosticCount  = "diagnostic_count"
	AssertReturns          = "returns"
	AssertFolded           = "folded"
	AssertInstructionCount = "instruction_count"
	AssertInvalidation     = "invalidation"
	AssertNoOp             = "no_op"
)

// LoadScenario reads and parses a scenario YAML file, resolving spec paths
// relative to the file's directory.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	return LoadScenarioWithBasePath(path, filepath.Dir(path))
}

// LoadScenarioWithBasePath reads and parses a scenario YAML file,
// resolving spec paths relative to the provided base path.
func LoadScenarioWithBasePath(path, basePath string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data, basePath)
}

// ParseScenario parses scenario YAML. Relative spec paths are joined to
// basePath when it is not empty.
func ParseScenario(data []byte, basePath string) (*Scenario, error) {
	// Strict field validation catches typos like "assertion:" vs "assertions:".
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	for i, specPath := range scenario.Specs {
		if !filepath.IsAbs(specPath) && basePath != "" {
			scenario.Specs[i] = filepath.Join(basePath, specPath)
		}
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Specs) == 0 {
		return fmt.Errorf("specs list is required and must be non-empty")
	}

	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for _, specPath := range s.Specs {
		if _, err := os.Stat(specPath); os.IsNotExist(err) {
			return fmt.Errorf("spec file not found: %s", specPath)
		}
	}

	if _, err := engine.ParseAssertConfig(s.Config.AssertConfig); err != nil {
		return fmt.Errorf("config.assert_config: %w", err)
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	if a.Severity != "" {
		if _, err := diag.ParseSeverity(a.Severity); err != nil {
			return fmt.Errorf("assertions[%d]: %w", index, err)
		}
	}

	needFunction := func() error {
		if a.Function == "" {
			return fmt.Errorf("assertions[%d]: function is required for %s", index, a.Type)
		}
		return nil
	}
	needCount := func() error {
		if a.Count == nil {
			return fmt.Errorf("assertions[%d]: count is required for %s", index, a.Type)
		}
		if *a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for %s", index, a.Type)
		}
		return nil
	}

	switch a.Type {
	case AssertDiagnostic:
		if a.ID == "" {
			return fmt.Errorf("assertions[%d]: id is required for diagnostic", index)
		}
	case AssertNoDiagnostics:
	case AssertDiagnosticCount:
		return needCount()
	case AssertReturns, AssertInvalidation:
		if err := needFunction(); err != nil {
			return err
		}
		if a.Value == "" {
			return fmt.Errorf("assertions[%d]: value is required for %s", index, a.Type)
		}
	case AssertFolded, AssertInstructionCount:
		if err := needFunction(); err != nil {
			return err
		}
		return needCount()
	case AssertNoOp:
		if err := needFunction(); err != nil {
			return err
		}
		if _, ok := ir.ParseKind(a.Op); !ok {
			return fmt.Errorf("assertions[%d]: unknown instruction %q for no_op", index, a.Op)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
