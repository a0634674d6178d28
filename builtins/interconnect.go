package builtins

import "github.com/coreforge/simdriver/machine"

// BusInterconnect is a minimal Interconnect implementation: it records the
// controllers attached to it per port type but performs no arbitration of
// its own (spec.md §6.2 Non-goals).
type BusInterconnect struct {
	instanceName string
	controllers  map[string]machine.Controller
}

// NewBusInterconnect is an InterconnectFactory registered under "bus".
func NewBusInterconnect(m *machine.Machine, instanceName string) (machine.Interconnect, error) {
	return &BusInterconnect{
		instanceName: instanceName,
		controllers:  make(map[string]machine.Controller),
	}, nil
}

func (b *BusInterconnect) InstanceName() string { return b.instanceName }

func (b *BusInterconnect) RegisterController(portType string, ctrl machine.Controller) {
	b.controllers[portType] = ctrl
}
