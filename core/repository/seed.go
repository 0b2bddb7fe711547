package repository

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kilianp07/gridmon/core/model"
)

// Seed returns the default demonstration network.
func Seed() []model.NetworkObject {
	return []model.NetworkObject{
		{
			ID:          "sub_001",
			Name:        "Central substation",
			Type:        model.ObjectSubstation,
			Status:      model.StatusOperational,
			Location:    "55.7558, 37.6173",
			Capacity:    10000,
			CurrentLoad: 6500,
			Substation:  &model.SubstationInfo{VoltageLevel: "110kV", TransformerCount: 2},
		},
		{
			ID:          "feeder_001",
			Name:        "North feeder",
			Type:        model.ObjectFeeder,
			Status:      model.StatusOperational,
			Location:    "55.7600, 37.6200",
			Capacity:    500,
			CurrentLoad: 320,
			Feeder:      &model.FeederInfo{ParentSubstationID: "sub_001", MaxCapacity: 500, ConnectedConsumers: 150},
		},
		{
			ID:          "solar_001",
			Name:        "Solar farm",
			Type:        model.ObjectRenewable,
			Status:      model.StatusOperational,
			Location:    "55.7500, 37.6300",
			Capacity:    2000,
			CurrentLoad: 0,
			Renewable:   &model.RenewableInfo{SourceType: "solar", CurrentGeneration: 450, WeatherDependent: true},
		},
	}
}

type seedFile struct {
	Objects []model.NetworkObject `yaml:"objects"`
}

// LoadSeed reads network objects from a YAML file.
func LoadSeed(path string) ([]model.NetworkObject, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return DecodeSeed(b)
}

// DecodeSeed parses a YAML seed document. Unknown fields are rejected.
func DecodeSeed(data []byte) ([]model.NetworkObject, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var f seedFile
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("decode seed: %w", err)
	}
	seen := make(map[string]bool, len(f.Objects))
	for i := range f.Objects {
		o := &f.Objects[i]
		if o.ID == "" {
			return nil, fmt.Errorf("object %d: object_id is required", i)
		}
		if seen[o.ID] {
			return nil, fmt.Errorf("duplicate object_id %s", o.ID)
		}
		seen[o.ID] = true
		if !o.Type.Valid() {
			return nil, fmt.Errorf("object %s: unknown type %q", o.ID, o.Type)
		}
		if o.Status == "" {
			o.Status = model.StatusOperational
		}
		if !o.Status.Valid() {
			return nil, fmt.Errorf("object %s: unknown status %q", o.ID, o.Status)
		}
		if o.CurrentLoad < 0 {
			return nil, fmt.Errorf("object %s: current_load must not be negative", o.ID)
		}
	}
	return f.Objects, nil
}
