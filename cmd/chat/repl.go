package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/gforma/lead-assistant/internal/conversation"
	"github.com/gforma/lead-assistant/internal/lead"
	"github.com/gforma/lead-assistant/internal/model"
)

var timeNow = time.Now

// repl drives one engine from line-oriented input.
type repl struct {
	engine *conversation.Engine
	store  *lead.Store
	in     *bufio.Scanner
	out    io.Writer
}

func newREPL(engine *conversation.Engine, store *lead.Store, in io.Reader, out io.Writer) *repl {
	return &repl{
		engine: engine,
		store:  store,
		in:     bufio.NewScanner(in),
		out:    out,
	}
}

func (r *repl) run(ctx context.Context) error {
	r.print(r.engine.Messages())

	for {
		fmt.Fprint(r.out, "> ")
		if !r.in.Scan() {
			fmt.Fprintln(r.out)
			return r.in.Err()
		}

		line := strings.TrimSpace(r.in.Text())
		if line == "" {
			continue
		}
		if line == "/salir" {
			return nil
		}

		if err := r.handle(ctx, line); err != nil {
			fmt.Fprintf(r.out, "! %s\n", describeError(err))
		}
	}
}

func (r *repl) handle(ctx context.Context, line string) error {
	if !strings.HasPrefix(line, "/") {
		msgs, err := r.engine.Submit(ctx, line)
		if err != nil {
			return err
		}
		r.print(msgs)
		return nil
	}

	command, arg, _ := strings.Cut(line, " ")
	switch command {
	case "/ejemplo":
		return r.act(ctx, model.ActionShowExample)
	case "/temario":
		return r.act(ctx, model.ActionGenerateSyllabus)
	case "/reiniciar":
		return r.act(ctx, model.ActionRestart)
	case "/leads":
		r.printLeads()
		return nil
	case "/exportar":
		return r.export(strings.TrimSpace(arg))
	default:
		return fmt.Errorf("comando desconocido %q", command)
	}
}

func (r *repl) act(ctx context.Context, action model.Action) error {
	msgs, err := r.engine.Act(ctx, action)
	if err != nil {
		return err
	}
	r.print(msgs)
	return nil
}

func (r *repl) print(msgs []model.ChatMessage) {
	for _, m := range msgs {
		if m.Sender != model.SenderBot {
			continue
		}
		fmt.Fprintf(r.out, "GForma: %s\n", m.Text)
		if m.SyllabusContent != "" {
			fmt.Fprintf(r.out, "\n%s\n\n", m.SyllabusContent)
		}
		switch m.Kind {
		case model.KindOptionsPrompt:
			fmt.Fprintln(r.out, "  (/ejemplo para ver un ejemplo, o escribe el nombre de tu empresa)")
		case model.KindSyllabusActionPrompt:
			fmt.Fprintln(r.out, "  (/temario para generar la propuesta)")
		case model.KindRestartPrompt:
			fmt.Fprintln(r.out, "  (/reiniciar para empezar de nuevo)")
		}
	}
}

func (r *repl) printLeads() {
	leads := r.store.List()
	if len(leads) == 0 {
		fmt.Fprintln(r.out, "No hay leads registrados.")
		return
	}
	for _, l := range leads {
		fmt.Fprintf(r.out, "%s  %s (%s)  %s  %s / %s\n", l.Date, l.CompanyName, l.Sector, l.ContactName, l.ContactEmail, l.ContactPhone)
	}
}

func (r *repl) export(path string) error {
	if path == "" {
		path = lead.ExportFilename(timeNow())
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("no se pudo crear %s: %w", path, err)
	}
	defer f.Close()

	if err := lead.WriteCSV(f, r.store.List()); err != nil {
		return err
	}
	fmt.Fprintf(r.out, "Exportados %d leads a %s\n", r.store.Len(), path)
	return nil
}

func describeError(err error) string {
	switch {
	case errors.Is(err, conversation.ErrCompleted):
		return "la conversación ha terminado; usa /reiniciar"
	case errors.Is(err, conversation.ErrActionNotAllowed):
		return "esa acción no está disponible ahora"
	case errors.Is(err, conversation.ErrBusy):
		return "un momento, sigo pensando"
	default:
		return err.Error()
	}
}
