package command

import (
	"fmt"
	"net/url"

	"github.com/pixil98/go-errors"
)

type ServerConfig struct {
	Url             string `json:"url"`
	SubscriptionUrl string `json:"subscription_url,omitempty"`
}

func (c *ServerConfig) validate() error {
	el := errors.NewErrorList()

	if c.Url == "" {
		el.Add(fmt.Errorf("url is required"))
	} else {
		u, err := url.Parse(c.Url)
		if err != nil {
			el.Add(fmt.Errorf("parsing url: %w", err))
		} else if u.Scheme != "http" && u.Scheme != "https" {
			el.Add(fmt.Errorf("url scheme must be http or https"))
		}
	}

	if c.SubscriptionUrl != "" {
		u, err := url.Parse(c.SubscriptionUrl)
		if err != nil {
			el.Add(fmt.Errorf("parsing subscription_url: %w", err))
		} else if u.Scheme != "ws" && u.Scheme != "wss" {
			el.Add(fmt.Errorf("subscription_url scheme must be ws or wss"))
		}
	}

	return el.Err()
}

// subscriptionEndpoint returns the websocket endpoint, deriving it from the
// query endpoint when none is configured.
func (c *ServerConfig) subscriptionEndpoint() string {
	if c.SubscriptionUrl != "" {
		return c.SubscriptionUrl
	}

	u, err := url.Parse(c.Url)
	if err != nil {
		return c.Url
	}
	if u.Scheme == "https" {
		u.Scheme = "wss"
	} else {
		u.Scheme = "ws"
	}
	return u.String()
}
