// Package config loads the game-balance tuning table from YAML. Values
// not present in the file keep their compiled-in defaults.
package config

import (
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/talgya/tinycity/internal/sim"
)

// Load returns the balance table, overlaid from the YAML file at path.
// An empty path returns the stock defaults.
func Load(path string) (sim.Balance, error) {
	bal := sim.DefaultBalance()
	if path == "" {
		return bal, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return sim.Balance{}, fmt.Errorf("read balance config: %w", err)
	}
	if err := yaml.Unmarshal(raw, &bal); err != nil {
		return sim.Balance{}, fmt.Errorf("parse balance config: %w", err)
	}
	if err := bal.Validate(); err != nil {
		return sim.Balance{}, fmt.Errorf("balance config %s: %w", path, err)
	}

	slog.Info("balance config loaded", "path", path,
		"starting_money", bal.StartingMoney, "min_happiness", bal.MinHappiness)
	return bal, nil
}
