package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContactSubmit(t *testing.T) {
	env := newTestEnv(t)

	err := env.contact.Submit(context.Background(), ContactInput{
		Name: "Visitor", Email: "visitor@example.org", Message: "Hi there",
	})
	require.NoError(t, err)

	sent := env.disp.ofKind(KindContact)
	require.Len(t, sent, 1)
	assert.Equal(t, "Visitor", sent[0].Subject)
	assert.Equal(t, "visitor@example.org", sent[0].From)
	assert.Equal(t, []string{"admin@example.com"}, sent[0].To)
	assert.Equal(t, "Hi there", sent[0].Body)
}

func TestContactSubmitInvalid(t *testing.T) {
	cases := map[string]struct {
		in    ContactInput
		field string
	}{
		"bad email":    {ContactInput{Name: "V", Email: "not-an-email", Message: "m"}, "email"},
		"long name":    {ContactInput{Name: strings.Repeat("n", 31), Email: "v@example.org", Message: "m"}, "name"},
		"long email":   {ContactInput{Name: "V", Email: strings.Repeat("e", 20) + "@example.org", Message: "m"}, "email"},
		"long message": {ContactInput{Name: "V", Email: "v@example.org", Message: strings.Repeat("m", 301)}, "message"},
		"empty":        {ContactInput{}, "name"},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			env := newTestEnv(t)
			err := env.contact.Submit(context.Background(), tc.in)
			require.Error(t, err)
			assert.Contains(t, FieldErrors(err), tc.field)
			assert.Empty(t, env.disp.ofKind(KindContact))
		})
	}
}
