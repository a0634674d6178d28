package machine

// Attachment is one (controller-name, port-role) pair declared on a
// ConnectionDef, in the order Attach was called (spec.md §4.2).
type Attachment struct {
	ControllerName string
	PortType       string
}

// ConnectionDef is a named declaration accumulated during assembly and
// consumed once when interconnects are materialized (spec.md §3).
type ConnectionDef struct {
	InterconnectType string
	InstanceName     string
	Attachments      []Attachment
}

// Attach appends a (controllerName, portType) pair to cd. Order among
// attachments on the same ConnectionDef is preserved and observable by the
// interconnect implementation (spec.md §4.2).
func (cd *ConnectionDef) Attach(controllerName, portType string) {
	cd.Attachments = append(cd.Attachments, Attachment{
		ControllerName: controllerName,
		PortType:       portType,
	})
}

// ConnectionGraph is the in-memory declarative description of which
// controllers attach to which named interconnects (spec.md §3), accumulated
// in insertion order during assembly and materialized once.
type ConnectionGraph struct {
	defs []*ConnectionDef
}

// Declare creates an empty ConnectionDef named instanceName and appends it
// to the graph, returning a handle for further Attach calls.
func (g *ConnectionGraph) Declare(interconnectType, instanceName string) *ConnectionDef {
	cd := &ConnectionDef{
		InterconnectType: interconnectType,
		InstanceName:     instanceName,
	}
	g.defs = append(g.defs, cd)
	return cd
}

// Defs returns the declared ConnectionDefs in insertion order.
func (g *ConnectionGraph) Defs() []*ConnectionDef {
	return g.defs
}
