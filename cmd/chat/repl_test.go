package main

import (
	"bytes"
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gforma/lead-assistant/internal/conversation"
	"github.com/gforma/lead-assistant/internal/directory"
	"github.com/gforma/lead-assistant/internal/inference"
	"github.com/gforma/lead-assistant/internal/lead"
	"github.com/gforma/lead-assistant/pkg/logger"
)

func runScript(t *testing.T, lines ...string) (string, *lead.Store) {
	t.Helper()
	store := lead.NewStore()
	engine := conversation.New("cli", inference.NewGateway(nil, inference.WithLogger(logger.NewNop())),
		directory.Default(), store, conversation.WithLogger(logger.NewNop()))

	var out bytes.Buffer
	in := strings.NewReader(strings.Join(lines, "\n") + "\n")
	require.NoError(t, newREPL(engine, store, in, &out).run(context.Background()))
	return out.String(), store
}

func TestREPL_ConversationWithoutBackend(t *testing.T) {
	export := filepath.Join(t.TempDir(), "leads.csv")

	out, store := runScript(t,
		"/ejemplo",
		"Acme Corp",
		"Retail",
		"Ventas, mejorar la negociación",
		"/temario",
		"Ana, ana@acme.com, 600123456",
		"hola",
		"/leads",
		"/exportar "+export,
		"/salir",
		"never read",
	)

	require.Contains(t, out, "TechSolutions")
	require.Contains(t, out, "¿A qué sector pertenece Acme Corp?")
	require.Contains(t, out, inference.SyllabusMissingKey)
	require.Contains(t, out, "¡Registro completado!")
	require.Contains(t, out, "usa /reiniciar")
	require.Contains(t, out, "Exportados 1 leads")

	require.Equal(t, 1, store.Len())
	l := store.List()[0]
	require.Equal(t, "Retail", l.Sector)
	require.Equal(t, "Equipo General", l.Department)
	require.Equal(t, "Ventas, mejorar la negociación", l.Challenge)

	f, err := os.Open(export)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
}

func TestREPL_UnknownCommandAndEOF(t *testing.T) {
	out, _ := runScript(t, "/bailar", "/temario")
	require.Contains(t, out, `comando desconocido "/bailar"`)
	require.Contains(t, out, "no está disponible")
}
