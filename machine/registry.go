package machine

import simlog "github.com/coreforge/simdriver/simlog"

// The four builder registries (spec.md §4.1). Each is a plain map from
// string key to factory, following the same "AvailableXxx map populated at
// process init" idiom as this module's sink registry
// (statsink.AvailableSinks). Registration of the same key twice replaces the prior entry;
// lookups never instantiate.
var (
	MachineBuilder      = map[string]MachineGenerator{}
	CoreBuilder         = map[string]CoreFactory{}
	ControllerBuilder   = map[string]ControllerFactory{}
	InterconnectBuilder = map[string]InterconnectFactory{}
)

// RegisterMachine adds or replaces the generator registered under key.
func RegisterMachine(key string, gen MachineGenerator) {
	if _, exists := MachineBuilder[key]; exists {
		simlog.ComponentDebug("Registry", "REPLACE machine template", key)
	}
	MachineBuilder[key] = gen
}

// RegisterCore adds or replaces the core factory registered under key.
func RegisterCore(key string, factory CoreFactory) {
	if _, exists := CoreBuilder[key]; exists {
		simlog.ComponentDebug("Registry", "REPLACE core type", key)
	}
	CoreBuilder[key] = factory
}

// RegisterController adds or replaces the controller factory registered
// under key.
func RegisterController(key string, factory ControllerFactory) {
	if _, exists := ControllerBuilder[key]; exists {
		simlog.ComponentDebug("Registry", "REPLACE controller type", key)
	}
	ControllerBuilder[key] = factory
}

// RegisterInterconnect adds or replaces the interconnect factory registered
// under key.
func RegisterInterconnect(key string, factory InterconnectFactory) {
	if _, exists := InterconnectBuilder[key]; exists {
		simlog.ComponentDebug("Registry", "REPLACE interconnect type", key)
	}
	InterconnectBuilder[key] = factory
}

// registeredMachineKeys returns the currently registered template names, for
// use in fatal diagnostics naming the available alternatives (spec.md §4.2).
func registeredMachineKeys() []string {
	keys := make([]string, 0, len(MachineBuilder))
	for k := range MachineBuilder {
		keys = append(keys, k)
	}
	return keys
}

func registeredCoreKeys() []string {
	keys := make([]string, 0, len(CoreBuilder))
	for k := range CoreBuilder {
		keys = append(keys, k)
	}
	return keys
}

func registeredControllerKeys() []string {
	keys := make([]string, 0, len(ControllerBuilder))
	for k := range ControllerBuilder {
		keys = append(keys, k)
	}
	return keys
}

func registeredInterconnectKeys() []string {
	keys := make([]string, 0, len(InterconnectBuilder))
	for k := range InterconnectBuilder {
		keys = append(keys, k)
	}
	return keys
}
