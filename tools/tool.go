package tools

import (
	"context"

	"github.com/bububa/newsagent/schema"
)

// ITool is the anonymous surface shared by all tools.
type ITool interface {
	SetTitle(string)
	Title() string
	SetDescription(string)
	Description() string
}

// Tool is a tool with typed input and output schemas. The title doubles as
// the function name declared to the remote service.
type Tool[I schema.Schema, O schema.Schema] interface {
	ITool
	Run(context.Context, *I, *O) error
}
