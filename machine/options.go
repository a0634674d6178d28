package machine

import "fmt"

// OptionsStore holds the three separately typed option tables (spec.md
// §4.4), keyed by component-instance name then option name. There is no
// implicit coercion between kinds: a bool set under a name/option pair is
// invisible to a Get for the int or string table.
type OptionsStore struct {
	bools   map[string]map[string]bool
	ints    map[string]map[string]int64
	strings map[string]map[string]string
}

// newOptionsStore returns an empty OptionsStore.
func newOptionsStore() *OptionsStore {
	return &OptionsStore{
		bools:   make(map[string]map[string]bool),
		ints:    make(map[string]map[string]int64),
		strings: make(map[string]map[string]string),
	}
}

// SetBool stores a bool option, overwriting any previous value.
func (o *OptionsStore) SetBool(name, opt string, value bool) {
	if o.bools[name] == nil {
		o.bools[name] = make(map[string]bool)
	}
	o.bools[name][opt] = value
}

// SetInt stores an int option, overwriting any previous value.
func (o *OptionsStore) SetInt(name, opt string, value int64) {
	if o.ints[name] == nil {
		o.ints[name] = make(map[string]int64)
	}
	o.ints[name][opt] = value
}

// SetString stores a string option, overwriting any previous value.
func (o *OptionsStore) SetString(name, opt string, value string) {
	if o.strings[name] == nil {
		o.strings[name] = make(map[string]string)
	}
	o.strings[name][opt] = value
}

// GetBool returns the stored bool for (name, opt), and whether it existed.
func (o *OptionsStore) GetBool(name, opt string) (bool, bool) {
	v, ok := o.bools[name][opt]
	return v, ok
}

// GetInt returns the stored int for (name, opt), and whether it existed.
func (o *OptionsStore) GetInt(name, opt string) (int64, bool) {
	v, ok := o.ints[name][opt]
	return v, ok
}

// GetString returns the stored string for (name, opt), and whether it existed.
func (o *OptionsStore) GetString(name, opt string) (string, bool) {
	v, ok := o.strings[name][opt]
	return v, ok
}

// InstanceName composes prefix and index the way AddCore/AddController do:
// "<prefix><index>". It is the convenience overload spec.md §4.4 describes
// for addressing an option by prefix+index instead of a fully composed name.
func InstanceName(prefix string, index int) string {
	return fmt.Sprintf("%s%d", prefix, index)
}

// SetBoolIndexed is the prefix+index convenience overload of SetBool.
func (o *OptionsStore) SetBoolIndexed(prefix string, index int, opt string, value bool) {
	o.SetBool(InstanceName(prefix, index), opt, value)
}

// SetIntIndexed is the prefix+index convenience overload of SetInt.
func (o *OptionsStore) SetIntIndexed(prefix string, index int, opt string, value int64) {
	o.SetInt(InstanceName(prefix, index), opt, value)
}

// SetStringIndexed is the prefix+index convenience overload of SetString.
func (o *OptionsStore) SetStringIndexed(prefix string, index int, opt string, value string) {
	o.SetString(InstanceName(prefix, index), opt, value)
}

// GetBoolIndexed is the prefix+index convenience overload of GetBool.
func (o *OptionsStore) GetBoolIndexed(prefix string, index int, opt string) (bool, bool) {
	return o.GetBool(InstanceName(prefix, index), opt)
}

// GetIntIndexed is the prefix+index convenience overload of GetInt.
func (o *OptionsStore) GetIntIndexed(prefix string, index int, opt string) (int64, bool) {
	return o.GetInt(InstanceName(prefix, index), opt)
}

// GetStringIndexed is the prefix+index convenience overload of GetString.
func (o *OptionsStore) GetStringIndexed(prefix string, index int, opt string) (string, bool) {
	return o.GetString(InstanceName(prefix, index), opt)
}
