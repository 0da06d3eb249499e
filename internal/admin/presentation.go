package admin

import (
	"encoding/json"
	"fmt"
)

// Description is the public shape of a registration.
type Description struct {
	Name    string  `json:"name"`
	Fields  []Field `json:"fields"`
	Options Options `json:"options"`
}

func (reg *Registration) Describe() Description {
	return Description{
		Name:    reg.Resource.Name(),
		Fields:  reg.Resource.Fields(),
		Options: reg.Options,
	}
}

// Project keeps only the list display fields of a record.
func (reg *Registration) Project(record any) (map[string]json.RawMessage, error) {
	data, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s record: %w", reg.Resource.Name(), err)
	}

	var all map[string]json.RawMessage
	err = json.Unmarshal(data, &all)
	if err != nil {
		return nil, fmt.Errorf("%s record is not an object: %w", reg.Resource.Name(), err)
	}

	projected := make(map[string]json.RawMessage, len(reg.Options.ListDisplay))
	for _, name := range reg.Options.ListDisplay {
		if value, ok := all[name]; ok {
			projected[name] = value
		}
	}
	return projected, nil
}
