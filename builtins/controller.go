package builtins

import "github.com/coreforge/simdriver/machine"

// L1Controller is a minimal Controller implementation: it records its
// registered interconnect per port type but performs no coherence protocol
// of its own (spec.md §6.2 Non-goals exclude cache-protocol fidelity here).
type L1Controller struct {
	coreID       int
	instanceName string
	portType     string

	interconnects map[string]machine.Interconnect
}

// NewL1Controller is a ControllerFactory registered under "l1".
func NewL1Controller(m *machine.Machine, coreID int, instanceName string, portType string) (machine.Controller, error) {
	return &L1Controller{
		coreID:        coreID,
		instanceName:  instanceName,
		portType:      portType,
		interconnects: make(map[string]machine.Interconnect),
	}, nil
}

func (c *L1Controller) CoreID() int          { return c.coreID }
func (c *L1Controller) InstanceName() string { return c.instanceName }

func (c *L1Controller) RegisterInterconnect(portType string, ic machine.Interconnect) {
	c.interconnects[portType] = ic
}
