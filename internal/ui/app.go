package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/pixil98/go-mud-client/internal/api"
	"github.com/pixil98/go-mud-client/internal/display"
	"github.com/pixil98/go-mud-client/internal/messaging"
	"github.com/pixil98/go-mud-client/internal/render"
	"github.com/pixil98/go-mud-client/internal/store"
)

// Subscriber is the slice of the event bus the UI consumes.
type Subscriber interface {
	Subscribe(subject string, handler func(data []byte)) (func(), error)
}

// App is the tview front-end: a scrolling reply history, a live world pane
// fed from the entity cache, and a command line. It repaints on bus events
// instead of polling the store.
type App struct {
	store    *store.Store
	registry *render.Registry
	bus      Subscriber

	app     *tview.Application
	pages   *tview.Pages
	history *tview.TextView
	world   *tview.TextView
	status  *tview.TextView
	input   *tview.InputField
}

func NewApp(s *store.Store, registry *render.Registry, bus Subscriber) *App {
	return &App{
		store:    s,
		registry: registry,
		bus:      bus,
	}
}

func (a *App) Start(ctx context.Context) error {
	a.app = tview.NewApplication()
	a.buildMain()

	if a.store.Authenticated() {
		go a.loadWorld(ctx)
	} else {
		a.pages.AddPage("login", a.buildLogin(ctx), true, true)
	}

	unsubscribes, err := a.subscribe(ctx)
	if err != nil {
		return err
	}
	defer func() {
		for _, u := range unsubscribes {
			u()
		}
	}()

	go func() {
		<-ctx.Done()
		a.app.Stop()
	}()

	a.repaint()
	if err := a.app.SetRoot(a.pages, true).Run(); err != nil {
		return fmt.Errorf("running terminal ui: %w", err)
	}
	return nil
}

func (a *App) buildMain() {
	a.history = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetWordWrap(true)
	a.history.SetBorder(true).SetTitle(" History ")

	a.world = tview.NewTextView().SetDynamicColors(true)
	a.world.SetBorder(true).SetTitle(" World ")

	a.status = tview.NewTextView().SetDynamicColors(true)

	a.input = tview.NewInputField().SetLabel("> ")
	a.input.SetDoneFunc(func(key tcell.Key) {
		if key != tcell.KeyEnter {
			return
		}
		text := strings.TrimSpace(a.input.GetText())
		a.input.SetText("")
		if text == "" {
			return
		}
		go a.store.Submit(context.Background(), text)
	})

	main := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(tview.NewFlex().
			AddItem(a.history, 0, 3, false).
			AddItem(a.world, 0, 1, false), 0, 1, false).
		AddItem(a.status, 1, 0, false).
		AddItem(a.input, 1, 0, true)

	a.pages = tview.NewPages().AddPage("main", main, true, true)
}

func (a *App) buildLogin(ctx context.Context) tview.Primitive {
	form := tview.NewForm().
		AddInputField("Name", "", 32, nil, nil).
		AddPasswordField("Password", "", 32, '*', nil).
		AddInputField("Invite token", "", 32, nil, nil).
		AddInputField("Invite secret", "", 32, nil, nil)
	form.SetBorder(true).SetTitle(" Log in ")

	form.AddButton("Log in", func() {
		name := form.GetFormItemByLabel("Name").(*tview.InputField).GetText()
		password := form.GetFormItemByLabel("Password").(*tview.InputField).GetText()
		token := form.GetFormItemByLabel("Invite token").(*tview.InputField).GetText()
		secret := form.GetFormItemByLabel("Invite secret").(*tview.InputField).GetText()

		go func() {
			err := a.store.Login(ctx, name, password, token, secret)
			a.app.QueueUpdateDraw(func() {
				if err != nil {
					title := " Log in "
					if api.IsAuthError(err) {
						title = " Log in (rejected, try again) "
					}
					form.SetTitle(title)
					return
				}
				a.pages.RemovePage("login")
				go a.loadWorld(ctx)
			})
		}()
	})

	return center(form, 50, 15)
}

// loadWorld warms the world pane after login.
func (a *App) loadWorld(ctx context.Context) {
	_ = a.store.LoadAreas(ctx)
	_ = a.store.LoadPeople(ctx)
	a.app.QueueUpdateDraw(a.repaint)
}

func (a *App) subscribe(ctx context.Context) ([]func(), error) {
	var unsubscribes []func()

	for _, subject := range []string{
		messaging.SubjectReplies,
		messaging.SubjectEntities,
		messaging.SubjectPresence,
	} {
		u, err := a.bus.Subscribe(subject, func([]byte) {
			a.app.QueueUpdateDraw(a.repaint)
		})
		if err != nil {
			for _, undo := range unsubscribes {
				undo()
			}
			return nil, fmt.Errorf("subscribing ui: %w", err)
		}
		unsubscribes = append(unsubscribes, u)
	}

	return unsubscribes, nil
}

// repaint rebuilds every pane from the store. Always called on the UI
// goroutine.
func (a *App) repaint() {
	var history strings.Builder
	for _, entry := range a.store.Responses() {
		history.WriteString(tview.TranslateANSI(a.registry.Render(entry)))
		history.WriteString("\n\n")
	}
	a.history.SetText(history.String())
	a.history.ScrollToEnd()

	a.world.SetText(a.worldText())

	if a.store.Connected() {
		a.status.SetText("[green]connected[-]")
	} else {
		a.status.SetText("[red]disconnected[-]")
	}

	a.syncInteractable()
}

func (a *App) worldText() string {
	var b strings.Builder

	if areas := a.store.Areas(); len(areas) > 0 {
		b.WriteString("[::b]Areas[::-]\n")
		for _, area := range areas {
			fmt.Fprintf(&b, "  %s\n", display.Capitalize(area.Name()))
		}
		b.WriteString("\n")
	}
	if people := a.store.People(); len(people) > 0 {
		b.WriteString("[::b]People[::-]\n")
		for _, person := range people {
			name := display.Capitalize(person.Name())
			if person.HardToSee() {
				name += " (hard to see)"
			}
			fmt.Fprintf(&b, "  %s\n", name)
		}
	}

	return b.String()
}

// syncInteractable keeps a modal up while interactive entries are pending;
// dismissing one removes it from the interactable sequence.
func (a *App) syncInteractable() {
	pending := a.store.Interactables()
	if len(pending) == 0 {
		a.pages.RemovePage("interactable")
		return
	}

	entry := pending[0]
	modal := tview.NewModal().
		SetText(tview.TranslateANSI(a.registry.Render(entry))).
		AddButtons([]string{"Dismiss"}).
		SetDoneFunc(func(int, string) {
			a.store.RemoveHistoryEntry(entry)
			a.repaint()
		})

	a.pages.RemovePage("interactable")
	a.pages.AddPage("interactable", modal, true, true)
}

// center wraps a primitive in a fixed-size centered frame.
func center(p tview.Primitive, width, height int) tview.Primitive {
	return tview.NewFlex().
		AddItem(nil, 0, 1, false).
		AddItem(tview.NewFlex().SetDirection(tview.FlexRow).
			AddItem(nil, 0, 1, false).
			AddItem(p, height, 0, true).
			AddItem(nil, 0, 1, false), width, 0, true).
		AddItem(nil, 0, 1, false)
}
