// Package simconfig provides the layered JSON configuration loader used by
// the simulation driver's command-line entry point.
//
// Configuration files follow this structure:
//
//	{
//	    "driver": { "machine_config": "dual_core", "threaded_simulation": true },
//	    "sinks-file": "sinks.json"
//	}
//
// Keys ending in "-file" are file references: the value is a path to an
// external JSON file, whose content is loaded and stored under the key
// prefix (without the "-file" suffix). This lets operators keep the sink
// list or a declarative machine template in its own file.
package simconfig

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"

	simlog "github.com/coreforge/simdriver/simlog"
)

var (
	mu   sync.RWMutex
	keys map[string]json.RawMessage
)

// Init loads and parses filename. Keys ending in "-file" are resolved and
// stored under their base key name. A missing file is not an error: Init
// continues with an empty configuration so driver defaults apply.
func Init(filename string) error {
	raw, err := os.ReadFile(filename)
	jkeys := make(map[string]json.RawMessage)

	if err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("simconfig: reading %s: %w", filename, err)
		}
	} else {
		dec := json.NewDecoder(bytes.NewReader(raw))
		if err := dec.Decode(&jkeys); err != nil {
			return fmt.Errorf("simconfig: decoding %s: %w", filename, err)
		}
	}

	resolved := make(map[string]json.RawMessage, len(jkeys))
	for k, v := range jkeys {
		if base, ok := strings.CutSuffix(k, "-file"); ok && base != "" {
			var ref string
			if err := json.Unmarshal(v, &ref); err != nil {
				return fmt.Errorf("simconfig: %s is not a file path: %w", k, err)
			}
			b, err := os.ReadFile(ref)
			if err != nil {
				simlog.ComponentError("simconfig", "reading referenced file", ref, ":", err)
				continue
			}
			resolved[base] = b
			continue
		}
		resolved[k] = v
	}

	mu.Lock()
	keys = resolved
	mu.Unlock()
	return nil
}

// GetSection returns the raw JSON for key, or nil if it was not present.
func GetSection(key string) json.RawMessage {
	mu.RLock()
	defer mu.RUnlock()
	if val, ok := keys[key]; ok {
		return val
	}
	return nil
}

// HasSection reports whether key was present in the loaded configuration.
func HasSection(key string) bool {
	mu.RLock()
	defer mu.RUnlock()
	_, ok := keys[key]
	return ok
}

// Keys returns the set of top-level section names currently loaded.
func Keys() []string {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]string, 0, len(keys))
	for k := range keys {
		out = append(out, k)
	}
	return out
}

// Reset clears all loaded configuration. Used by tests.
func Reset() {
	mu.Lock()
	keys = make(map[string]json.RawMessage)
	mu.Unlock()
}

// DriverConfig is the "driver" section consumed by the cycle engine and
// machine assembler (spec.md §6.1).
type DriverConfig struct {
	MachineConfig       string `json:"machine_config"`
	ThreadedSimulation  bool   `json:"threaded_simulation"`
	CoresPerWorker      int    `json:"cores_per_worker"`
	StartLogAtIteration int64  `json:"start_log_at_iteration"`
	LogUserOnly         bool   `json:"log_user_only"`
	LogLevel            int    `json:"loglevel"`
	LogFileSize         int64  `json:"log_file_size"`
	LogFile             string `json:"log_file"`
	StopAtUserInsns     uint64 `json:"stop_at_user_insns"`
	WaitAllFinished     bool   `json:"wait_all_finished"`
	CacheConfigType     string `json:"cache_config_type"`
	AdminAddr           string `json:"admin_addr"`
}

// LoadDriverConfig decodes the "driver" section into a DriverConfig,
// applying the fixed defaults spec.md §6.1 requires (cache_config_type
// defaults to "auto", cores_per_worker defaults to 1).
func LoadDriverConfig() (DriverConfig, error) {
	cfg := DriverConfig{
		CacheConfigType: "auto",
		CoresPerWorker:  1,
	}
	raw := GetSection("driver")
	if raw == nil {
		return cfg, fmt.Errorf("simconfig: missing required %q section", "driver")
	}
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("simconfig: decoding driver section: %w", err)
	}
	if cfg.MachineConfig == "" {
		return cfg, fmt.Errorf("simconfig: %q is required and must not be empty", "machine_config")
	}
	if cfg.CacheConfigType == "" {
		cfg.CacheConfigType = "auto"
	}
	if cfg.CoresPerWorker <= 0 {
		cfg.CoresPerWorker = 1
	}
	return cfg, nil
}
