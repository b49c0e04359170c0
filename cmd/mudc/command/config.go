package command

import (
	"fmt"

	"github.com/pixil98/go-errors"
)

type Config struct {
	Server    ServerConfig     `json:"server"`
	Session   SessionConfig    `json:"session"`
	Cache     CacheConfig      `json:"cache"`
	Realtime  RealtimeConfig   `json:"realtime"`
	Nats      NatsConfig       `json:"nats"`
	Listeners []ListenerConfig `json:"listeners"`
	Ui        UiConfig         `json:"ui"`
}

func (c *Config) Validate() error {
	el := errors.NewErrorList()

	el.Add(c.Server.validate())
	el.Add(c.Realtime.validate())
	el.Add(c.Nats.validate())

	for i, l := range c.Listeners {
		err := l.validate()
		if err != nil {
			el.Add(fmt.Errorf("listener %d: %w", i, err))
		}
	}

	return el.Err()
}

type CacheConfig struct {
	// DisableRefresh freezes the world: entity lookups resolve only from
	// whatever the cache already holds.
	DisableRefresh bool `json:"disable_refresh"`
}

type UiConfig struct {
	// Disabled turns the terminal ui off, leaving listeners as the only
	// front-ends.
	Disabled bool `json:"disabled"`
}
