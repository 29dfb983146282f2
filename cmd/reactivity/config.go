package main

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Scenario is the shape of a bench run: every width is combined with every
// height, and each combination gets Iterations writes.
type Scenario struct {
	Iterations int   `yaml:"iterations"`
	Widths     []int `yaml:"widths"`
	Heights    []int `yaml:"heights"`
}

func defaultScenario() *Scenario {
	return &Scenario{
		Iterations: 100,
		Widths:     []int{1, 10, 100},
		Heights:    []int{1, 10, 100},
	}
}

// loadScenario reads a scenario file. Fields missing from the file keep their
// defaults; an empty path yields the defaults.
func loadScenario(path string) (*Scenario, error) {
	sc := defaultScenario()
	if path == "" {
		return sc, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var fromFile Scenario
	if err := yaml.Unmarshal(data, &fromFile); err != nil {
		return nil, fmt.Errorf("yaml unmarshal: %w", err)
	}
	if fromFile.Iterations != 0 {
		sc.Iterations = fromFile.Iterations
	}
	if len(fromFile.Widths) > 0 {
		sc.Widths = fromFile.Widths
	}
	if len(fromFile.Heights) > 0 {
		sc.Heights = fromFile.Heights
	}

	if err := sc.validate(); err != nil {
		return nil, fmt.Errorf("scenario %s: %w", path, err)
	}
	return sc, nil
}

var errNotPositive = errors.New("must be positive")

func (sc *Scenario) validate() error {
	if sc.Iterations <= 0 {
		return fmt.Errorf("iterations %d: %w", sc.Iterations, errNotPositive)
	}
	for _, w := range sc.Widths {
		if w <= 0 {
			return fmt.Errorf("width %d: %w", w, errNotPositive)
		}
	}
	for _, h := range sc.Heights {
		if h <= 0 {
			return fmt.Errorf("height %d: %w", h, errNotPositive)
		}
	}
	return nil
}
