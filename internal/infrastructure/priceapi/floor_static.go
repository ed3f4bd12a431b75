package priceapi

import (
	"context"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"solfolio/internal/app/port"
)

// staticFloorSource resolves collection floor prices from a table loaded at
// startup. It stands in for a live marketplace API; collections absent from
// the table simply resolve to nothing.
type staticFloorSource struct {
	floors map[string]float64
	logger *zap.Logger
}

var _ port.FloorPriceSource = (*staticFloorSource)(nil)

// floorFile is the on-disk shape of the static floor table.
type floorFile struct {
	Floors map[string]float64 `yaml:"floors"`
}

// NewStaticFloorSource loads a FloorPriceSource from a YAML file mapping
// collection names to floor prices in SOL.
func NewStaticFloorSource(path string, logger *zap.Logger) (port.FloorPriceSource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read floor price file %s: %w", path, err)
	}

	var file floorFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse floor price file %s: %w", path, err)
	}

	floors := make(map[string]float64, len(file.Floors))
	for name, floor := range file.Floors {
		if floor <= 0 {
			continue
		}
		floors[strings.ToLower(name)] = floor
	}

	logger.Info("Loaded static floor price table",
		zap.String("path", path),
		zap.Int("collectionCount", len(floors)))

	return &staticFloorSource{floors: floors, logger: logger.Named("FloorSource")}, nil
}

// FloorPrices implements port.FloorPriceSource. Lookups are
// case-insensitive on the collection name.
func (s *staticFloorSource) FloorPrices(_ context.Context, collections []string) map[string]float64 {
	result := make(map[string]float64)
	for _, name := range collections {
		if floor, ok := s.floors[strings.ToLower(name)]; ok {
			result[name] = floor
		}
	}
	return result
}

// nopFloorSource resolves no floors at all. Used when no floor table is
// configured so every NFT falls back to its burn value.
type nopFloorSource struct{}

// NewNopFloorSource returns a FloorPriceSource that never resolves anything.
func NewNopFloorSource() port.FloorPriceSource {
	return nopFloorSource{}
}

func (nopFloorSource) FloorPrices(context.Context, []string) map[string]float64 {
	return map[string]float64{}
}
