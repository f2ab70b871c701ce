package config

import (
	"fmt"
	"os"
	"path/filepath"

	"deposito-savings-go/internal/models"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v2"
)

type tierEntry struct {
	Name         string `yaml:"name"`
	YearlyReturn string `yaml:"yearly_return"`
}

type tiersFile struct {
	Tiers []tierEntry `yaml:"tiers"`
}

// LoadTiers reads the deposito tier seed file. Yearly returns are parsed as
// decimal strings so a rate like 5.5 survives exactly.
func LoadTiers(tiersFileName string) ([]models.TierSeed, error) {
	var tiersPath string
	if filepath.IsAbs(tiersFileName) {
		tiersPath = tiersFileName
	} else {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		tiersPath = filepath.Join(wd, tiersFileName)
	}

	data, err := os.ReadFile(tiersPath)
	if err != nil {
		return nil, fmt.Errorf("unable to read %s: %w", tiersFileName, err)
	}

	var parsed tiersFile
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("unable to parse %s: %w", tiersFileName, err)
	}

	tiers := make([]models.TierSeed, 0, len(parsed.Tiers))
	for i, entry := range parsed.Tiers {
		if entry.Name == "" {
			return nil, fmt.Errorf("tier at index %d missing name", i)
		}
		yearlyReturn, err := decimal.NewFromString(entry.YearlyReturn)
		if err != nil {
			return nil, fmt.Errorf("tier %q has invalid yearly_return %q: %w", entry.Name, entry.YearlyReturn, err)
		}
		if yearlyReturn.IsNegative() {
			return nil, fmt.Errorf("tier %q has negative yearly_return %s", entry.Name, yearlyReturn.String())
		}
		tiers = append(tiers, models.TierSeed{Name: entry.Name, YearlyReturn: yearlyReturn})
	}

	return tiers, nil
}
