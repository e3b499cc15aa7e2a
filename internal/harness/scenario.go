package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Scenario is a scripted shopping session with expectations about the
// resulting trace and final state.
type Scenario struct {
	// Name uniquely identifies this scenario; it also names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Catalog is an optional catalog file, relative to the scenario file.
	// Empty uses the embedded catalog.
	Catalog string `yaml:"catalog,omitempty"`

	// User is the signed-in shopper. Nil means nobody is signed in.
	User *User `yaml:"user,omitempty"`

	// Setup steps run first and are not traced. They are expected to succeed.
	Setup []Step `yaml:"setup,omitempty"`

	// Flow is the traced part of the session.
	Flow []Step `yaml:"flow"`

	// Assertions validate the final trace and state.
	Assertions []Assertion `yaml:"assertions"`
}

// User is the shopper identity for a scenario.
type User struct {
	ID    string `yaml:"id"`
	Email string `yaml:"email"`
	Name  string `yaml:"name,omitempty"`
}

// Step is one shopper intent, e.g. add_to_cart or submit_payment.
type Step struct {
	// Do names the intent. See the Step* constants.
	Do string `yaml:"do"`

	// Args are the intent's arguments.
	Args map[string]any `yaml:"args,omitempty"`

	// Expect optionally checks the step's outcome.
	Expect *Expect `yaml:"expect,omitempty"`
}

// Expect checks the outcome of a step.
type Expect struct {
	// Outcome is "ok" or an error class: validation, payment, redirect,
	// wrong_step, empty_cart, rejected.
	Outcome string `yaml:"outcome"`

	// Step is the checkout step expected afterwards.
	Step string `yaml:"step,omitempty"`

	// Redirect is the expected redirect target for outcome redirect.
	Redirect string `yaml:"redirect,omitempty"`

	// Fields lists form fields expected to fail for outcome validation.
	Fields []string `yaml:"fields,omitempty"`
}

// Assertion validates the trace or final state.
type Assertion struct {
	// Type is one of trace_contains, trace_order, trace_count, final_state.
	Type string `yaml:"type"`

	// Action is an engine action kind such as PLACE_ORDER
	// (trace_contains, trace_count).
	Action string `yaml:"action,omitempty"`

	// Count is the expected number of commits (trace_count).
	Count int `yaml:"count,omitempty"`

	// Actions is the expected commit order (trace_order).
	Actions []string `yaml:"actions,omitempty"`

	// Expect holds final state values, subset matched (final_state).
	Expect map[string]any `yaml:"expect,omitempty"`
}

// Assertion type constants.
const (
	AssertTraceContains = "trace_contains"
	AssertTraceOrder    = "trace_order"
	AssertTraceCount    = "trace_count"
	AssertFinalState    = "final_state"
)

// Step intents.
const (
	StepAddToCart      = "add_to_cart"
	StepRemoveFromCart = "remove_from_cart"
	StepSetQuantity    = "set_quantity"
	StepClearCart      = "clear_cart"
	StepSearch         = "search"
	StepSelectCategory = "select_category"
	StepSelectBrand    = "select_brand"
	StepPriceRange     = "price_range"
	StepResetFilters   = "reset_filters"
	StepSort           = "sort"
	StepBeginCheckout  = "begin_checkout"
	StepSubmitShipping = "submit_shipping"
	StepBack           = "back"
	StepSubmitPayment  = "submit_payment"
	StepSignOut        = "sign_out"
)

var knownSteps = map[string]bool{
	StepAddToCart: true, StepRemoveFromCart: true, StepSetQuantity: true,
	StepClearCart: true, StepSearch: true, StepSelectCategory: true,
	StepSelectBrand: true, StepPriceRange: true, StepResetFilters: true, StepSort: true,
	StepBeginCheckout: true, StepSubmitShipping: true, StepBack: true,
	StepSubmitPayment: true, StepSignOut: true,
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
// A relative catalog path is resolved against the scenario's directory.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	scenario, err := ParseScenario(data)
	if err != nil {
		return nil, err
	}

	if scenario.Catalog != "" && !filepath.IsAbs(scenario.Catalog) {
		scenario.Catalog = filepath.Join(filepath.Dir(path), scenario.Catalog)
	}
	if scenario.Catalog != "" {
		if _, err := os.Stat(scenario.Catalog); err != nil {
			return nil, fmt.Errorf("invalid scenario: catalog file not found: %s", scenario.Catalog)
		}
	}
	return scenario, nil
}

// ParseScenario parses scenario YAML, rejecting unknown fields.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// LoadDir loads every *.yaml scenario in dir, in name order.
func LoadDir(dir string) ([]*Scenario, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no scenarios found in %s", dir)
	}

	scenarios := make([]*Scenario, 0, len(paths))
	for _, p := range paths {
		s, err := LoadScenario(p)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(p), err)
		}
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Flow) == 0 {
		return fmt.Errorf("flow list is required and must be non-empty")
	}
	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}
	if s.User != nil && s.User.ID == "" {
		return fmt.Errorf("user.id is required when user is given")
	}

	for i, step := range s.Setup {
		if err := validateStep(fmt.Sprintf("setup[%d]", i), step); err != nil {
			return err
		}
		if step.Expect != nil {
			return fmt.Errorf("setup[%d]: expect is not allowed in setup", i)
		}
	}
	for i, step := range s.Flow {
		if err := validateStep(fmt.Sprintf("flow[%d]", i), step); err != nil {
			return err
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}
	return nil
}

func validateStep(where string, step Step) error {
	if step.Do == "" {
		return fmt.Errorf("%s: do is required", where)
	}
	if !knownSteps[step.Do] {
		return fmt.Errorf("%s: unknown step %q", where, step.Do)
	}
	if step.Expect != nil && step.Expect.Outcome == "" {
		return fmt.Errorf("%s.expect: outcome is required", where)
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertTraceContains:
		if a.Action == "" {
			return fmt.Errorf("assertions[%d]: action is required for trace_contains", index)
		}
	case AssertTraceOrder:
		if len(a.Actions) == 0 {
			return fmt.Errorf("assertions[%d]: actions list is required for trace_order", index)
		}
	case AssertTraceCount:
		if a.Action == "" {
			return fmt.Errorf("assertions[%d]: action is required for trace_count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for trace_count", index)
		}
	case AssertFinalState:
		if len(a.Expect) == 0 {
			return fmt.Errorf("assertions[%d]: expect is required for final_state", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
