// concierge is a console demo of the assistant engine: it wires the
// orchestrator to console-backed capabilities and a local web bridge,
// then chats over stdin.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/solace-ai/go-concierge/internal/log"
	"github.com/solace-ai/go-concierge/pkg/ai"
	"github.com/solace-ai/go-concierge/pkg/assistant"
	"github.com/solace-ai/go-concierge/pkg/nudge"
	"github.com/solace-ai/go-concierge/pkg/page"
	"github.com/solace-ai/go-concierge/pkg/tts"
	"github.com/solace-ai/go-concierge/pkg/web"
)

func main() {
	addr := flag.String("addr", ":7078", "bridge server listen address")
	watch := flag.String("watch", "", "tail the event streams of a running instance (e.g. ws://localhost:7078)")
	debug := flag.Bool("debug", false, "enable verbose debug logging")
	flag.Parse()

	if *debug {
		log.Init("debug")
	} else {
		log.Init("info")
	}

	if *watch != "" {
		runWatch(*watch)
		return
	}

	cfg := assistant.LoadEnvConfig()
	if cfg.SiteID == "" {
		cfg.SiteID = "demo"
	}
	cfg.NudgeRules = []nudge.Rule{
		{PathContains: "/pricing", Suggestion: "Curious about plans? I can walk you through them."},
		{PathContains: "/contact", Suggestion: "Want a hand filling in the contact form?"},
	}

	engine, err := assistant.New(cfg, assistant.Deps{
		AI:       buildAI(cfg),
		Speaker:  buildSpeaker(cfg),
		Avatar:   &consoleAvatar{},
		Document: demoDocument(),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	bridge := web.NewServer(*addr, engine)
	bridge.StartAsync()
	defer bridge.Shutdown()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := engine.Init(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "init failed: %v\n", err)
		os.Exit(1)
	}
	defer engine.Destroy()

	runConsole(ctx, engine)
}

// runConsole reads user turns from stdin until EOF or interrupt.
func runConsole(ctx context.Context, engine *assistant.Engine) {
	fmt.Println("type a message ('fill' starts the demo form, 'quit' exits)")

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	for {
		fmt.Print("> ")
		select {
		case <-ctx.Done():
			fmt.Println()
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			text := strings.TrimSpace(line)
			switch text {
			case "":
				continue
			case "quit", "exit":
				return
			case "fill":
				startDemoFill(engine)
				continue
			}

			reply, err := engine.HandleText(ctx, text)
			if err != nil {
				fmt.Printf("assistant: %s (%v)\n", reply.Content, err)
				continue
			}
			fmt.Printf("assistant: %s\n", reply.Content)
			for _, qr := range reply.QuickReplies {
				fmt.Printf("  [%s]\n", qr)
			}
		}
	}
}

// runWatch tails a running instance's message and state streams and
// prints every event until the connection drops or the process is
// interrupted.
func runWatch(baseURL string) {
	client := web.NewStreamClient(baseURL)
	client.OnMessage = func(msg assistant.Message) {
		fmt.Printf("[%s] %s: %s\n", msg.Timestamp.Format("15:04:05"), msg.Role, msg.Content)
	}
	client.OnState = func(ev web.StateEvent) {
		fmt.Printf("  (%s -> %s)\n", ev.Component, ev.State)
	}
	client.OnError = func(err error) {
		log.Warn("stream decode failed", "error", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	go func() {
		<-ctx.Done()
		client.Close()
	}()

	go func() {
		if err := client.ConnectState(); err != nil {
			log.Warn("state stream closed", "error", err)
		}
	}()
	if err := client.ConnectMessages(); err != nil {
		fmt.Fprintf(os.Stderr, "watch failed: %v\n", err)
		os.Exit(1)
	}
}

// startDemoFill begins a fill session over the demo contact form.
func startDemoFill(engine *assistant.Engine) {
	filler := engine.Autofill()
	if filler == nil {
		fmt.Println("assistant: autofill is disabled")
		return
	}
	forms := filler.DetectForms()
	if len(forms) == 0 {
		fmt.Println("assistant: no forms on this page")
		return
	}
	if first := filler.StartFilling(forms[0]); first != nil {
		fmt.Printf("assistant: let's fill the form. %s?\n", first.Label)
	}
}

// buildAI selects the real fallback client when a key is configured,
// otherwise a canned echo client so the demo runs offline.
func buildAI(cfg assistant.Config) ai.Client {
	if cfg.AIAPIKey == "" {
		log.Info("no AI API key, using canned replies")
		return ai.NewMock()
	}

	opts := []ai.Option{ai.WithAPIKey(cfg.AIAPIKey)}
	if cfg.AIModel != "" {
		opts = append(opts, ai.WithModel(cfg.AIModel))
	}
	if len(cfg.FallbackModels) > 0 {
		opts = append(opts, ai.WithFallbackModels(cfg.FallbackModels...))
	}

	client, err := ai.NewFallbackClient(opts...)
	if err != nil {
		log.Warn("AI client unavailable, using canned replies", "error", err)
		return ai.NewMock()
	}
	return client
}

// buildSpeaker wires the output engine with console-backed audio.
func buildSpeaker(cfg assistant.Config) *tts.Speaker {
	var provider tts.Provider
	if cfg.TTSAPIKey != "" {
		p, err := tts.NewCloneVoice(tts.WithAPIKey(cfg.TTSAPIKey))
		if err != nil {
			log.Warn("cloned-voice provider unavailable", "error", err)
		} else {
			provider = p
		}
	}
	var opts []tts.SpeakerOption
	if !cfg.NativeFallbackEnabled {
		opts = append(opts, tts.WithNativeFallbackDisabled())
	}
	return tts.NewSpeaker(provider, &consoleSynth{}, &consolePlayback{}, opts...)
}

// demoDocument is the pretend host page with one contact form.
func demoDocument() page.Document {
	return &page.FakeDocument{
		PageURL: "https://example.com/contact",
		FormList: []*page.FakeForm{
			{
				FormID: "contact",
				FieldList: []*page.FakeField{
					page.TextField("name", "Name"),
					{TagName: "input", InputType: "email", FieldName: "email", LabelText: "Email"},
					{TagName: "input", InputType: "date", FieldName: "dob", LabelText: "Date of birth"},
					{TagName: "input", InputType: "checkbox", FieldName: "newsletter", LabelText: "Subscribe to newsletter"},
				},
			},
		},
	}
}
