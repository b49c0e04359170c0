package command

import (
	"fmt"
	"time"

	"github.com/pixil98/go-errors"
	"github.com/pixil98/go-mud-client/internal/realtime"
)

type RealtimeConfig struct {
	MinBackoff string `json:"min_backoff,omitempty"`
	MaxBackoff string `json:"max_backoff,omitempty"`
}

func (c *RealtimeConfig) validate() error {
	el := errors.NewErrorList()

	floor := realtime.DefaultMinBackoff
	if c.MinBackoff != "" {
		d, err := time.ParseDuration(c.MinBackoff)
		if err != nil {
			el.Add(fmt.Errorf("parsing min_backoff: %w", err))
		} else {
			floor = d
		}
	}

	if c.MaxBackoff != "" {
		d, err := time.ParseDuration(c.MaxBackoff)
		if err != nil {
			el.Add(fmt.Errorf("parsing max_backoff: %w", err))
		} else if d < floor {
			el.Add(fmt.Errorf("max_backoff must be at least min_backoff"))
		}
	}

	return el.Err()
}

func (c *RealtimeConfig) buildOpts() []realtime.ChannelOpt {
	floor := realtime.DefaultMinBackoff
	ceiling := realtime.DefaultMaxBackoff

	if c.MinBackoff != "" {
		if d, err := time.ParseDuration(c.MinBackoff); err == nil {
			floor = d
		}
	}
	if c.MaxBackoff != "" {
		if d, err := time.ParseDuration(c.MaxBackoff); err == nil {
			ceiling = d
		}
	}

	if floor == realtime.DefaultMinBackoff && ceiling == realtime.DefaultMaxBackoff {
		return nil
	}
	return []realtime.ChannelOpt{realtime.WithBackoff(floor, ceiling)}
}
