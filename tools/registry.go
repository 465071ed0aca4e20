package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/go-playground/validator/v10"
	"github.com/invopop/jsonschema"

	"github.com/bububa/newsagent/components"
	"github.com/bububa/newsagent/schema"
)

// Registry maps tool names to typed invocation entries. Arguments arriving as
// raw JSON are decoded into the tool's input schema and validated before the
// handler runs; the handler's output schema is stringified for submission.
type Registry struct {
	entries   map[string]*entry
	validate  *validator.Validate
	reflector *jsonschema.Reflector
}

type entry struct {
	schema components.FunctionSchema
	invoke func(ctx context.Context, args string) (string, error)
}

// NewRegistry returns an empty tool registry.
func NewRegistry() *Registry {
	return &Registry{
		entries:  make(map[string]*entry),
		validate: validator.New(),
		reflector: &jsonschema.Reflector{
			Anonymous:      true,
			DoNotReference: true,
			ExpandedStruct: true,
		},
	}
}

// Register binds a typed tool into the registry under its title. The tool's
// input schema is reflected once into the function parameter declaration sent
// to the remote service.
func Register[I schema.Schema, O schema.Schema](reg *Registry, tool Tool[I, O]) error {
	name := tool.Title()
	if name == "" {
		return errors.New("tools: tool title is required")
	}
	if _, exists := reg.entries[name]; exists {
		return fmt.Errorf("tools: %q already registered", name)
	}
	params := reg.reflector.Reflect(new(I))
	params.Version = ""
	reg.entries[name] = &entry{
		schema: components.FunctionSchema{
			Name:        name,
			Description: tool.Description(),
			Parameters:  params,
		},
		invoke: func(ctx context.Context, args string) (string, error) {
			input := new(I)
			if err := json.Unmarshal([]byte(args), input); err != nil {
				return "", &ArgumentError{Tool: name, Err: err}
			}
			if err := reg.validate.Struct(input); err != nil {
				return "", &ArgumentError{Tool: name, Err: err}
			}
			output := new(O)
			if err := tool.Run(ctx, input, output); err != nil {
				return "", err
			}
			return schema.Stringify(*output), nil
		},
	}
	return nil
}

// Dispatch runs the tool named by the call and keys the result back to the
// call's identifier. An unregistered name fails with *UnknownToolError.
func (r *Registry) Dispatch(ctx context.Context, call components.ToolCall) (components.ToolOutput, error) {
	ent, ok := r.entries[call.Name]
	if !ok {
		return components.ToolOutput{}, &UnknownToolError{Name: call.Name}
	}
	out, err := ent.invoke(ctx, call.Arguments)
	if err != nil {
		return components.ToolOutput{}, err
	}
	return components.ToolOutput{ToolCallID: call.ID, Output: out}, nil
}

// Schemas returns the registered function declarations sorted by name, for
// assistant creation.
func (r *Registry) Schemas() []components.FunctionSchema {
	list := make([]components.FunctionSchema, 0, len(r.entries))
	for _, ent := range r.entries {
		list = append(list, ent.schema)
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].Name < list[j].Name
	})
	return list
}

// Len returns the number of registered tools.
func (r *Registry) Len() int {
	return len(r.entries)
}
