package ui

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/bz888/digest/internal/llm"
	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClient struct {
	mu      sync.Mutex
	chunks  []llm.Chunk
	err     error
	gate    chan struct{}
	models  []llm.Model
	prompts []string
	used    []string
}

func (f *fakeClient) Stream(ctx context.Context, model, prompt string, fn func(llm.Chunk) error) error {
	f.mu.Lock()
	f.prompts = append(f.prompts, prompt)
	f.used = append(f.used, model)
	f.mu.Unlock()

	if f.gate != nil {
		<-f.gate
	}
	for _, ch := range f.chunks {
		if err := fn(ch); err != nil {
			return err
		}
	}
	return f.err
}

func (f *fakeClient) ListModels(ctx context.Context) ([]llm.Model, error) {
	return f.models, nil
}

func (f *fakeClient) usedModels() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.used...)
}

func startApp(t *testing.T, client *fakeClient) *App {
	t.Helper()

	a := New(client, "discord1", false)
	screen := tcell.NewSimulationScreen("UTF-8")
	a.screen = screen

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- a.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Error("app did not stop")
		}
	})
	return a
}

// onUI runs fn on the UI goroutine and waits for it.
func onUI(a *App, fn func()) {
	done := make(chan struct{})
	a.app.QueueUpdate(func() {
		fn()
		close(done)
	})
	<-done
}

func typeAndSend(a *App, text string) {
	onUI(a, func() {
		a.input.SetText(text)
		a.submit()
	})
}

func transcriptText(a *App) string {
	var text string
	onUI(a, func() { text = a.transcript.GetText(false) })
	return text
}

func sendEnabled(a *App) bool {
	var enabled bool
	onUI(a, func() { enabled = a.session.SendEnabled() && !a.send.IsDisabled() })
	return enabled
}

func TestStreamedReplyLandsInTranscript(t *testing.T) {
	client := &fakeClient{chunks: []llm.Chunk{{Text: "Hel"}, {Text: "lo"}, {Done: true}}}
	a := startApp(t, client)

	typeAndSend(a, "hi there")

	assert.Eventually(t, func() bool {
		return sendEnabled(a)
	}, 2*time.Second, 10*time.Millisecond)
	assert.Contains(t, transcriptText(a), "You: hi there\n\nAI: Hello\n\n")
}

func TestSendDisabledWhileStreaming(t *testing.T) {
	client := &fakeClient{gate: make(chan struct{}), chunks: []llm.Chunk{{Text: "ok", Done: true}}}
	a := startApp(t, client)

	typeAndSend(a, "first")
	assert.False(t, sendEnabled(a))

	typeAndSend(a, "second")
	close(client.gate)

	assert.Eventually(t, func() bool {
		return sendEnabled(a)
	}, 2*time.Second, 10*time.Millisecond)
	assert.NotContains(t, transcriptText(a), "second")
}

func TestFailureReenablesSend(t *testing.T) {
	client := &fakeClient{chunks: []llm.Chunk{{Text: "par"}}, err: errors.New("stream reset")}
	a := startApp(t, client)

	typeAndSend(a, "hi")

	assert.Eventually(t, func() bool {
		return sendEnabled(a)
	}, 2*time.Second, 10*time.Millisecond)
	assert.Contains(t, transcriptText(a), "AI: par\n\nAI: Error: stream reset\n\n")
}

func TestModelCommands(t *testing.T) {
	client := &fakeClient{
		chunks: []llm.Chunk{{Done: true}},
		models: []llm.Model{{Name: "discord1"}, {Name: "llama3:latest"}},
	}
	a := startApp(t, client)

	typeAndSend(a, "/model llama3:latest")
	assert.Contains(t, transcriptText(a), "AI: Using model: llama3:latest\n\n")

	typeAndSend(a, "what now?")
	assert.Eventually(t, func() bool {
		return sendEnabled(a)
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, []string{"llama3:latest"}, client.usedModels())

	typeAndSend(a, "/models")
	assert.Eventually(t, func() bool {
		var open bool
		onUI(a, func() { open = a.pages.HasPage(modelModal) })
		return open
	}, 2*time.Second, 10*time.Millisecond)
}

func TestHelpAndDebugCommands(t *testing.T) {
	a := startApp(t, &fakeClient{})

	typeAndSend(a, "/help")
	assert.Contains(t, transcriptText(a), "- /bye: Exit the application")

	typeAndSend(a, "/debug")
	var count int
	onUI(a, func() { count = a.mainFlex.GetItemCount() })
	require.Equal(t, 2, count)
	assert.Contains(t, transcriptText(a), "Debug console enabled")

	typeAndSend(a, "/debug")
	onUI(a, func() { count = a.mainFlex.GetItemCount() })
	assert.Equal(t, 1, count)
}
