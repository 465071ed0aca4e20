package agents

import (
	"time"

	"github.com/bububa/newsagent/client"
	"github.com/bububa/newsagent/components"
	"github.com/bububa/newsagent/tools"
)

type Option func(c *Config)

func WithClient(clt client.Client) Option {
	return func(c *Config) {
		c.client = clt
	}
}

func WithRegistry(reg *tools.Registry) Option {
	return func(c *Config) {
		c.registry = reg
	}
}

func WithMemory(m *components.Memory) Option {
	return func(c *Config) {
		c.memory = m
	}
}

func WithName(name string) Option {
	return func(c *Config) {
		c.name = name
	}
}

func WithModel(model string) Option {
	return func(c *Config) {
		c.model = model
	}
}

// WithInstructions sets the assistant's persona instructions.
func WithInstructions(instructions string) Option {
	return func(c *Config) {
		c.instructions = instructions
	}
}

// WithRunInstructions sets the default per-run instructions, overridable per
// call.
func WithRunInstructions(instructions string) Option {
	return func(c *Config) {
		c.runInstructions = instructions
	}
}

func WithPollInterval(d time.Duration) Option {
	return func(c *Config) {
		c.pollInterval = d
	}
}

// WithTimeout sets the wall-clock budget for one run.
func WithTimeout(d time.Duration) Option {
	return func(c *Config) {
		c.timeout = d
	}
}

// WithCallTimeout bounds each individual remote call so the poll loop never
// waits on an in-flight request past its own deadline.
func WithCallTimeout(d time.Duration) Option {
	return func(c *Config) {
		c.callTimeout = d
	}
}

// WithAssistantID injects an already-created assistant instead of lazy
// creation.
func WithAssistantID(id string) Option {
	return func(c *Config) {
		c.assistantID = id
	}
}

// WithThreadID injects an already-created thread instead of lazy creation.
func WithThreadID(id string) Option {
	return func(c *Config) {
		c.threadID = id
	}
}
