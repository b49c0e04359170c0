package command

import (
	"fmt"

	"github.com/pixil98/go-mud-client/internal/api"
	"github.com/pixil98/go-mud-client/internal/listener"
	"github.com/pixil98/go-mud-client/internal/realtime"
	"github.com/pixil98/go-mud-client/internal/render"
	"github.com/pixil98/go-mud-client/internal/store"
	"github.com/pixil98/go-mud-client/internal/ui"
	service "github.com/pixil98/go-service"
)

func BuildWorkers(config interface{}) (service.WorkerList, error) {
	cfg, ok := config.(*Config)
	if !ok {
		return nil, fmt.Errorf("unable to cast config")
	}

	// Create the internal event bus
	bus, err := cfg.Nats.buildBus()
	if err != nil {
		return nil, fmt.Errorf("creating event bus: %w", err)
	}

	// The client needs the store's session headers and the store needs the
	// client, so the client gets a late-bound lookup.
	var st *store.Store
	client := api.NewClient(cfg.Server.Url, func() map[string]string {
		if st == nil {
			return nil
		}
		return st.Headers()
	})

	opts := []store.Opt{
		store.WithPublisher(bus),
		store.WithSessionStore(cfg.Session.buildBundleStore()),
	}
	if cfg.Cache.DisableRefresh {
		opts = append(opts, store.WithoutRefresh())
	}
	st = store.New(client, opts...)

	// Create the realtime push channel with the store as its sink
	channel := realtime.NewChannel(cfg.Server.subscriptionEndpoint(), st, cfg.Realtime.buildOpts()...)
	st.AttachChannel(channel)

	// Pick up a persisted session, if any
	st.Restore()

	registry := render.New(st)
	cm := listener.NewConnectionManager(st, registry, bus)

	// Create Listeners
	listeners := make(service.WorkerList, len(cfg.Listeners))
	for i, l := range cfg.Listeners {
		w, err := l.BuildListener(cm)
		if err != nil {
			return nil, fmt.Errorf("creating listener %d: %w", i, err)
		}
		listeners[fmt.Sprintf("listener-%d", i)] = w
	}

	// Create a worker list
	workers := service.WorkerList{
		"bus":       bus,
		"channel":   channel,
		"listeners": &listeners,
	}
	if !cfg.Ui.Disabled {
		workers["ui"] = ui.NewApp(st, registry, bus)
	}

	return workers, nil
}
