package ui

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/bz888/digest/internal/chat"
	"github.com/bz888/digest/internal/llm"
	"github.com/bz888/digest/internal/logger"
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

// Client is what the chat window needs from the model server.
type Client interface {
	chat.Streamer
	ListModels(ctx context.Context) ([]llm.Model, error)
}

type App struct {
	app          *tview.Application
	pages        *tview.Pages
	mainFlex     *tview.Flex
	screen       tcell.Screen
	debugConsole *tview.TextView
	transcript   *tview.TextView
	input        *tview.InputField
	send         *tview.Button

	session *chat.Session
	worker  *chat.Worker
	client  Client
	model   string
	debug   bool

	ctx    context.Context
	cancel context.CancelFunc
	log    *logger.Logger
}

// New builds the window. Widgets exist right away so the debug console can
// be handed to the logger before Run.
func New(client Client, model string, dev bool) *App {
	a := &App{
		app:     tview.NewApplication(),
		session: chat.NewSession(),
		worker:  chat.NewWorker(client),
		client:  client,
		model:   model,
		debug:   dev,
		log:     logger.NewLogger("views"),
	}
	a.app.EnablePaste(true)
	a.app.EnableMouse(true)

	a.debugConsole = a.initDebugConsole()
	a.transcript = initChatViewer()
	a.input = initChatInput()
	a.send = tview.NewButton("Send")
	return a
}

func initChatViewer() *tview.TextView {
	textView := tview.NewTextView().
		SetDynamicColors(false).
		SetWordWrap(true).
		SetScrollable(true)
	textView.SetTitle("Conversation").SetBorder(true)
	return textView
}

func initChatInput() *tview.InputField {
	input := tview.NewInputField().
		SetPlaceholder("Ask something, or /help")
	input.SetTitle("Prompt").SetBorder(true)
	return input
}

func (a *App) initDebugConsole() *tview.TextView {
	console := tview.NewTextView().
		SetChangedFunc(func() {
			a.app.Draw()
		}).
		SetDynamicColors(true).
		SetWordWrap(true)

	console.SetTitle("Debugger").SetBorder(true)
	console.ScrollToEnd()
	return console
}

// DebugConsole is the writer the logger should echo dev output to.
func (a *App) DebugConsole() io.Writer {
	return a.debugConsole
}

// Run blocks until the user quits or ctx is cancelled. Cancelling also
// aborts any stream still running.
func (a *App) Run(ctx context.Context) error {
	a.ctx, a.cancel = context.WithCancel(ctx)
	defer a.cancel()

	go func() {
		<-a.ctx.Done()
		a.app.Stop()
	}()

	a.layout()
	a.bindKeys()
	a.appendTranscript(a.session.Note(fmt.Sprintf("Using model %s. Type /help for commands.", a.model)))

	a.pages = tview.NewPages().AddPage("main", a.mainFlex, true, true)
	if a.screen != nil {
		a.app.SetScreen(a.screen)
	}
	return a.app.SetRoot(a.pages, true).SetFocus(a.input).Run()
}

func (a *App) layout() {
	inputRow := tview.NewFlex().
		AddItem(a.input, 0, 1, true).
		AddItem(a.send, 10, 0, false)

	chatFlex := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(a.transcript, 0, 1, false).
		AddItem(inputRow, 3, 0, true)

	a.mainFlex = tview.NewFlex().
		AddItem(chatFlex, 0, 2, true)
	if a.debug {
		a.mainFlex.AddItem(a.debugConsole, 0, 1, false)
	}
}

func (a *App) bindKeys() {
	a.input.SetDoneFunc(func(key tcell.Key) {
		switch key {
		case tcell.KeyEnter:
			a.submit()
		case tcell.KeyTab:
			a.app.SetFocus(a.send)
		case tcell.KeyEscape:
			if a.transcript.GetText(false) != "" {
				a.app.SetFocus(a.transcript)
			}
		}
	})

	a.send.SetSelectedFunc(a.submit)
	a.send.SetExitFunc(func(tcell.Key) {
		a.app.SetFocus(a.input)
	})

	a.transcript.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyEnter, tcell.KeyEscape, tcell.KeyTab:
			a.app.SetFocus(a.input)
			return nil
		}
		return event
	})
}

// submit runs on the UI goroutine, from Enter or the Send button.
func (a *App) submit() {
	if !a.session.SendEnabled() {
		return
	}
	content := strings.TrimSpace(a.input.GetText())
	if content == "" {
		return
	}
	a.input.SetText("")

	if strings.HasPrefix(content, "/") && a.runCommand(content) {
		return
	}

	id, delta, err := a.session.Submit(content)
	if err != nil {
		a.log.Warn(err)
		return
	}
	a.appendTranscript(delta)
	a.syncControls()

	model := a.model
	a.log.Info("Input request: ", content)
	go a.worker.Run(a.ctx, id, model, content, a.dispatch)
}

// dispatch is handed to the worker. It hops every event back onto the UI
// goroutine before the session sees it.
func (a *App) dispatch(ev chat.Event) {
	a.app.QueueUpdateDraw(func() {
		a.appendTranscript(a.session.Apply(ev))
		if ev.Kind == chat.EventFinished {
			a.syncControls()
		}
	})
}

func (a *App) appendTranscript(delta string) {
	if delta == "" {
		return
	}
	fmt.Fprint(a.transcript, delta)
	a.transcript.ScrollToEnd()
}

func (a *App) syncControls() {
	enabled := a.session.SendEnabled()
	a.input.SetDisabled(!enabled)
	a.send.SetDisabled(!enabled)
	if enabled {
		a.app.SetFocus(a.input)
	}
}
