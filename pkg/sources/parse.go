package sources

import (
	"slices"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/powerpolicy/powermgr-go/pkg/model"
)

// entry is one key/value pair of a source table, in document order.
type entry struct {
	key   string
	value *yaml.Node
}

// parseTable decodes a JSON object into its entries. The document is read
// as YAML so every node keeps its line number.
func parseTable(data []byte, accepted []string) ([]entry, []string, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, nil, &LoadError{Message: "failed to parse JSON", Cause: err}
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, nil, &LoadError{Message: "empty document"}
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, nil, &LoadError{Line: root.Line, Message: "top level must be an object"}
	}

	remaining := slices.Clone(accepted)
	var entries []entry
	for i := 0; i+1 < len(root.Content); i += 2 {
		k, v := root.Content[i], root.Content[i+1]
		idx := slices.Index(remaining, k.Value)
		if idx < 0 {
			// Unknown and repeated keys both stop parsing.
			return entries, remaining, &LoadError{Line: k.Line, Message: "invalid key " + strconv.Quote(k.Value)}
		}
		remaining = slices.Delete(remaining, idx, idx+1)
		entries = append(entries, entry{key: k.Value, value: v})
	}
	return entries, remaining, nil
}

// field returns the value node for name in an object node.
func field(obj *yaml.Node, name string) *yaml.Node {
	for i := 0; i+1 < len(obj.Content); i += 2 {
		if obj.Content[i].Value == name {
			return obj.Content[i+1]
		}
	}
	return nil
}

func uintField(obj *yaml.Node, name string) (uint32, bool) {
	n := field(obj, name)
	if n == nil || n.Kind != yaml.ScalarNode || n.Tag != "!!int" {
		return 0, false
	}
	v, err := strconv.ParseUint(n.Value, 10, 32)
	if err != nil {
		return 0, false
	}
	return uint32(v), true
}

func boolField(obj *yaml.Node, name string) (bool, bool) {
	n := field(obj, name)
	if n == nil || n.Kind != yaml.ScalarNode || n.Tag != "!!bool" {
		return false, false
	}
	var v bool
	if err := n.Decode(&v); err != nil {
		return false, false
	}
	return v, true
}

// ParseSuspend parses a suspend source table.
// On error the sources parsed before the offending entry are returned
// together with a *LoadError.
func ParseSuspend(data []byte) (SuspendTable, error) {
	entries, missing, err := parseTable(data, SuspendKeys)
	var table SuspendTable
	for _, e := range entries {
		if e.value.Kind != yaml.MappingNode {
			return table, &LoadError{Line: e.value.Line, Message: e.key + ": entry must be an object"}
		}
		action, okAction := uintField(e.value, "action")
		delay, okDelay := uintField(e.value, "delayMs")
		if !okAction || !okDelay {
			return table, &LoadError{Line: e.value.Line, Message: e.key + ": action and delayMs must be unsigned integers"}
		}
		if model.SuspendAction(action) >= model.SuspendActionInvalid {
			return table, &LoadError{Line: e.value.Line, Message: e.key + ": action out of range"}
		}
		typ, _ := MapSuspendKey(e.key)
		table.Sources = append(table.Sources, SuspendSource{
			Key:     e.key,
			Type:    typ,
			Action:  model.SuspendAction(action),
			DelayMs: delay,
		})
	}
	if err != nil {
		return table, err
	}
	table.Missing = missing
	return table, nil
}

// ParseWakeup parses a wakeup source table. Disabled entries are dropped.
func ParseWakeup(data []byte) (WakeupTable, error) {
	entries, missing, err := parseTable(data, WakeupKeys)
	var table WakeupTable
	for _, e := range entries {
		if e.value.Kind != yaml.MappingNode {
			return table, &LoadError{Line: e.value.Line, Message: e.key + ": entry must be an object"}
		}
		enable, ok := boolField(e.value, "enable")
		if !ok {
			return table, &LoadError{Line: e.value.Line, Message: e.key + ": enable must be a boolean"}
		}
		var click model.WakeupClick
		if c, ok := uintField(e.value, "click"); ok && c <= uint32(model.ClickDouble) {
			click = model.WakeupClick(c)
		}
		if !enable {
			continue
		}
		table.Sources = append(table.Sources, WakeupSource{
			Key:    e.key,
			Type:   MapWakeupKey(e.key, click),
			Enable: true,
			Click:  click,
		})
	}
	if err != nil {
		return table, err
	}
	table.Missing = missing
	return table, nil
}
