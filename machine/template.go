package machine

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	simlog "github.com/coreforge/simdriver/simlog"
)

// declarativeTemplateSchema is the draft 2020-12 JSON Schema a declarative
// machine template document must satisfy (spec.md §4.2.1).
const declarativeTemplateSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["cores"],
  "properties": {
    "cores": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["prefix", "type"],
        "properties": {
          "prefix": {"type": "string", "minLength": 1},
          "type": {"type": "string", "minLength": 1}
        }
      }
    },
    "controllers": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["prefix", "type", "core", "port"],
        "properties": {
          "prefix": {"type": "string", "minLength": 1},
          "type": {"type": "string", "minLength": 1},
          "core": {"type": "integer", "minimum": 0},
          "port": {"type": "string", "minLength": 1}
        }
      }
    },
    "connections": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["prefix", "type", "seq", "attach"],
        "properties": {
          "prefix": {"type": "string", "minLength": 1},
          "type": {"type": "string", "minLength": 1},
          "seq": {"type": "integer", "minimum": 0},
          "attach": {
            "type": "array",
            "items": {
              "type": "object",
              "required": ["controller", "port"],
              "properties": {
                "controller": {"type": "string", "minLength": 1},
                "port": {"type": "string", "minLength": 1}
              }
            }
          }
        }
      }
    },
    "options": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["name", "opt", "value"],
        "properties": {
          "name": {"type": "string", "minLength": 1},
          "opt": {"type": "string", "minLength": 1},
          "value": {"type": ["boolean", "integer", "string"]}
        }
      }
    }
  }
}`

var compiledTemplateSchema *jsonschema.Schema

func templateSchema() (*jsonschema.Schema, error) {
	if compiledTemplateSchema != nil {
		return compiledTemplateSchema, nil
	}
	compiler := jsonschema.NewCompiler()
	const resourceURL = "sim://machine-template.schema.json"
	if err := compiler.AddResource(resourceURL, strings.NewReader(declarativeTemplateSchema)); err != nil {
		return nil, err
	}
	schema, err := compiler.Compile(resourceURL)
	if err != nil {
		return nil, err
	}
	compiledTemplateSchema = schema
	return schema, nil
}

type declarativeCore struct {
	Prefix string `json:"prefix"`
	Type   string `json:"type"`
}

type declarativeController struct {
	Prefix string `json:"prefix"`
	Type   string `json:"type"`
	Core   int    `json:"core"`
	Port   string `json:"port"`
}

type declarativeAttach struct {
	Controller string `json:"controller"`
	Port       string `json:"port"`
}

type declarativeConnection struct {
	Prefix string              `json:"prefix"`
	Type   string              `json:"type"`
	Seq    int                 `json:"seq"`
	Attach []declarativeAttach `json:"attach"`
}

// declarativeOption is a single Options Store entry replayed as one of
// SetBool/SetInt/SetString, chosen by the JSON value's own type (spec.md
// §4.2.1, §4.4).
type declarativeOption struct {
	Name  string          `json:"name"`
	Opt   string          `json:"opt"`
	Value json.RawMessage `json:"value"`
}

type declarativeTemplate struct {
	Cores       []declarativeCore       `json:"cores"`
	Controllers []declarativeController `json:"controllers"`
	Connections []declarativeConnection `json:"connections"`
	Options     []declarativeOption     `json:"options"`
}

// CompileDeclarativeTemplate validates doc against the fixed machine
// template schema and returns a MachineGenerator that replays it as the
// same AddCore/AddController/DeclareConnection/Attach/option-Set calls a
// hand-written Go generator would make (spec.md §4.2.1). Sections are
// replayed in a fixed order (cores, controllers, connections, options),
// whatever their order in the document; entries within a section are
// replayed in document order. Validation failure is returned as an error; RegisterMachine is
// left to the caller so a fatal registration failure can be reported with
// the template's name.
func CompileDeclarativeTemplate(doc json.RawMessage) (MachineGenerator, error) {
	schema, err := templateSchema()
	if err != nil {
		return nil, fmt.Errorf("compiling machine template schema: %w", err)
	}

	var generic any
	if err := json.Unmarshal(doc, &generic); err != nil {
		return nil, fmt.Errorf("machine template is not valid JSON: %w", err)
	}
	if err := schema.Validate(generic); err != nil {
		return nil, fmt.Errorf("machine template failed schema validation: %w", err)
	}

	var tmpl declarativeTemplate
	dec := json.NewDecoder(bytes.NewReader(doc))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&tmpl); err != nil {
		return nil, fmt.Errorf("machine template decoding failed: %w", err)
	}

	return func(m *Machine) error {
		for _, c := range tmpl.Cores {
			m.AddCore(c.Prefix, c.Type)
			simlog.ComponentDebug("DeclarativeTemplate", "core", c.Prefix, c.Type)
		}

		for _, c := range tmpl.Controllers {
			m.AddController(c.Core, c.Prefix, c.Type, c.Port)
		}

		for _, conn := range tmpl.Connections {
			def := m.DeclareConnection(conn.Type, conn.Prefix, conn.Seq)
			for _, att := range conn.Attach {
				def.Attach(att.Controller, att.Port)
			}
		}

		for _, opt := range tmpl.Options {
			if err := replayOption(m.Options(), opt); err != nil {
				return err
			}
		}
		return nil
	}, nil
}

// replayOption sets a single declarative option, picking SetBool/SetInt/
// SetString by the JSON value's own type: JSON numbers decode as float64
// and are required by the schema to be integers, so they are replayed via
// SetInt after a lossless round-trip check.
func replayOption(store *OptionsStore, opt declarativeOption) error {
	var value any
	if err := json.Unmarshal(opt.Value, &value); err != nil {
		return fmt.Errorf("machine template option %s/%s: %w", opt.Name, opt.Opt, err)
	}

	switch v := value.(type) {
	case bool:
		store.SetBool(opt.Name, opt.Opt, v)
	case string:
		store.SetString(opt.Name, opt.Opt, v)
	case float64:
		i := int64(v)
		if float64(i) != v {
			return fmt.Errorf("machine template option %s/%s: %v is not an integer", opt.Name, opt.Opt, v)
		}
		store.SetInt(opt.Name, opt.Opt, i)
	default:
		return fmt.Errorf("machine template option %s/%s: unsupported value type %T", opt.Name, opt.Opt, v)
	}
	return nil
}
