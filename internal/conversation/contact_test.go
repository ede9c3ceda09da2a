package conversation

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHasContactChannel(t *testing.T) {
	require.True(t, hasContactChannel("ana@x.com"))
	require.True(t, hasContactChannel("llamadme al 600123456"))
	require.False(t, hasContactChannel("just a note"))
	require.False(t, hasContactChannel("tel 12345"))
}

func TestParseContact(t *testing.T) {
	tests := []struct {
		in   string
		want Contact
	}{
		{
			in:   "Juan Perez, juan@acme.com, 600123456",
			want: Contact{Name: "Juan Perez", Email: "juan@acme.com", Phone: "600123456"},
		},
		{
			in:   "Ana; ana@x.com",
			want: Contact{Name: "Ana", Email: "ana@x.com", Phone: NoPhone},
		},
		{
			in:   "Luis\n 611222333 \nluis@y.es",
			want: Contact{Name: "Luis", Email: "luis@y.es", Phone: "611222333"},
		},
		{
			in:   ", ana@x.com",
			want: Contact{Name: NoName, Email: "ana@x.com", Phone: NoPhone},
		},
		{
			in:   "600123456",
			want: Contact{Name: "600123456", Email: NoEmail, Phone: "600123456"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			require.Equal(t, tt.want, parseContact(tt.in))
		})
	}
}

func TestIsAffirmative(t *testing.T) {
	for _, s := range []string{"sí", "Si", "correcto", "OK", "claro que sí"} {
		require.True(t, isAffirmative(s), s)
	}
	for _, s := range []string{"no", "es otro", "nada"} {
		require.False(t, isAffirmative(s), s)
	}
}
