package model

// ObjectType identifies the kind of grid asset.
type ObjectType string

const (
	ObjectSubstation ObjectType = "substation"
	ObjectFeeder     ObjectType = "feeder"
	ObjectGenerator  ObjectType = "generator"
	ObjectConsumer   ObjectType = "consumer"
	ObjectRenewable  ObjectType = "renewable"
	ObjectLine       ObjectType = "line"
)

// Valid reports whether t is a known object type.
func (t ObjectType) Valid() bool {
	switch t {
	case ObjectSubstation, ObjectFeeder, ObjectGenerator, ObjectConsumer, ObjectRenewable, ObjectLine:
		return true
	}
	return false
}

// ObjectStatus is the operating state of a network object.
type ObjectStatus string

const (
	StatusOperational ObjectStatus = "operational"
	StatusMaintenance ObjectStatus = "maintenance"
	StatusFailure     ObjectStatus = "failure"
)

// Valid reports whether s is a known status.
func (s ObjectStatus) Valid() bool {
	return s == StatusOperational || s == StatusMaintenance || s == StatusFailure
}

// SubstationInfo holds substation specific attributes.
type SubstationInfo struct {
	VoltageLevel     string `json:"voltage_level" yaml:"voltage_level"`
	TransformerCount int    `json:"transformer_count" yaml:"transformer_count"`
}

// FeederInfo holds feeder specific attributes.
type FeederInfo struct {
	ParentSubstationID string  `json:"parent_substation_id" yaml:"parent_substation_id"`
	MaxCapacity        float64 `json:"max_capacity" yaml:"max_capacity"`
	ConnectedConsumers int     `json:"connected_consumers" yaml:"connected_consumers"`
}

// RenewableInfo holds attributes of a renewable source.
type RenewableInfo struct {
	SourceType        string  `json:"source_type" yaml:"source_type"` // solar, wind, hydro
	CurrentGeneration float64 `json:"current_generation" yaml:"current_generation"`
	WeatherDependent  bool    `json:"weather_dependent" yaml:"weather_dependent"`
}

// ConsumerInfo holds attributes of a consumer connection point.
type ConsumerInfo struct {
	ConsumerType  string  `json:"consumer_type" yaml:"consumer_type"` // residential, commercial, industrial
	Address       string  `json:"address" yaml:"address"`
	ContractPower float64 `json:"contract_power" yaml:"contract_power"`
}

// NetworkObject is an addressable grid asset. Capacity is advisory and may be
// exceeded transiently; CurrentLoad never goes below zero.
type NetworkObject struct {
	ID          string       `json:"object_id" yaml:"object_id"`
	Name        string       `json:"name" yaml:"name"`
	Type        ObjectType   `json:"object_type" yaml:"object_type"`
	Status      ObjectStatus `json:"status" yaml:"status"`
	Location    string       `json:"location" yaml:"location"`
	Capacity    float64      `json:"capacity" yaml:"capacity"`
	CurrentLoad float64      `json:"current_load" yaml:"current_load"`

	Substation *SubstationInfo `json:"substation,omitempty" yaml:"substation,omitempty"`
	Feeder     *FeederInfo     `json:"feeder,omitempty" yaml:"feeder,omitempty"`
	Renewable  *RenewableInfo  `json:"renewable,omitempty" yaml:"renewable,omitempty"`
	Consumer   *ConsumerInfo   `json:"consumer,omitempty" yaml:"consumer,omitempty"`
}

// SetLoad updates the current load, clamping negative values to zero.
func (o *NetworkObject) SetLoad(load float64) {
	if load < 0 {
		load = 0
	}
	o.CurrentLoad = load
}

// Utilization returns the load as a percentage of capacity or 0 when the
// capacity is unknown.
func (o NetworkObject) Utilization() float64 {
	if o.Capacity <= 0 {
		return 0
	}
	return o.CurrentLoad / o.Capacity * 100
}

// Clone returns a deep copy so callers never share detail pointers with the
// repository.
func (o NetworkObject) Clone() NetworkObject {
	c := o
	if o.Substation != nil {
		s := *o.Substation
		c.Substation = &s
	}
	if o.Feeder != nil {
		f := *o.Feeder
		c.Feeder = &f
	}
	if o.Renewable != nil {
		r := *o.Renewable
		c.Renewable = &r
	}
	if o.Consumer != nil {
		cs := *o.Consumer
		c.Consumer = &cs
	}
	return c
}

func (o NetworkObject) String() string {
	return o.Name + " (" + string(o.Type) + ")"
}
