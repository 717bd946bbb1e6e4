package ui

import (
	"fmt"
	"strings"

	"github.com/bz888/digest/internal/llm"
	"github.com/bz888/digest/internal/logger"
	"github.com/rivo/tview"
)

const modelModal = "modelModal"

// runCommand handles slash commands. It reports false for unknown commands
// so they are sent to the model as ordinary prompts.
func (a *App) runCommand(content string) bool {
	fields := strings.Fields(content)
	switch fields[0] {
	case "/help":
		a.listHelp()
	case "/bye", "/quit", "/exit":
		a.quitApp()
	case "/debug":
		a.toggleDebugConsole()
	case "/models":
		a.loadModels()
	case "/model":
		if len(fields) < 2 {
			a.note(fmt.Sprintf("Current model: %s", a.model))
			return true
		}
		a.useModel(fields[1])
	default:
		return false
	}
	return true
}

func (a *App) note(text string) {
	a.appendTranscript(a.session.Note(text))
}

func (a *App) listHelp() {
	a.note(strings.Join([]string{
		"Here are some commands you can use:",
		"- /help: Display this help message",
		"- /bye: Exit the application",
		"- /debug: Toggle the debug console",
		"- /models: Select between local LLMs",
		"- /model <name>: Switch to a model by name",
	}, "\n"))
}

func (a *App) useModel(name string) {
	if name == a.model {
		a.note(fmt.Sprintf("Already using model: %s", name))
		return
	}
	a.log.Info("Selected: ", name)
	a.model = name
	a.note(fmt.Sprintf("Using model: %s", name))
}

func (a *App) toggleDebugConsole() {
	a.debug = !a.debug
	logger.SetDev(a.debug)
	if a.debug {
		a.mainFlex.AddItem(a.debugConsole, 0, 1, false)
		a.note("Debug console enabled")
	} else {
		a.mainFlex.RemoveItem(a.debugConsole)
		a.note("Debug console disabled")
	}
}

func (a *App) quitApp() {
	a.note("Bye bye")
	a.log.Info("Shutting down gracefully.")
	a.cancel()
}

// loadModels fetches the model list off the UI goroutine and opens the
// picker once it arrives.
func (a *App) loadModels() {
	a.input.SetDisabled(true)
	go func() {
		models, err := a.client.ListModels(a.ctx)
		a.app.QueueUpdateDraw(func() {
			a.input.SetDisabled(false)
			if err != nil {
				a.log.Error("Failed to list models: ", err)
				a.note(fmt.Sprintf("Error: %s", err))
				return
			}
			if len(models) == 0 {
				a.note("No local models found")
				return
			}
			a.createModelModal(models)
		})
	}()
}

func createModal(p tview.Primitive, width, height int) tview.Primitive {
	return tview.NewFlex().
		AddItem(nil, 0, 1, false).
		AddItem(tview.NewFlex().SetDirection(tview.FlexRow).
			AddItem(nil, 0, 1, false).
			AddItem(p, height, 1, true).
			AddItem(nil, 0, 1, false), width, 1, true).
		AddItem(nil, 0, 1, false)
}

func (a *App) createModelModal(models []llm.Model) {
	closeModal := func() {
		a.pages.RemovePage(modelModal)
		a.app.SetFocus(a.input)
	}

	list := tview.NewList()
	list.SetTitle("Models").SetBorder(true)
	for i, model := range models {
		shortcut := rune(0)
		if i < 9 {
			shortcut = '1' + rune(i)
		}
		secondary := model.ParameterSize
		if model.Name == a.model {
			secondary = "Current LLM"
		}
		name := model.Name
		list.AddItem(name, secondary, shortcut, func() {
			a.useModel(name)
			closeModal()
		})
	}
	list.AddItem("Back", "", 'q', closeModal)
	list.SetDoneFunc(closeModal)

	height := 2*len(models) + 4
	if height > 20 {
		height = 20
	}
	a.pages.AddPage(modelModal, createModal(list, 50, height), true, true)
	a.app.SetFocus(list)
	a.log.Info("/models command executed and completed")
}
