package jsonschema_test

import (
	"strings"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/require"

	"github.com/reoring/goform/formdef"
	"github.com/reoring/goform/jsonschema"
)

func TestFromDefinition(t *testing.T) {
	defs, err := formdef.Load(strings.NewReader(`
form: register
fields:
  - name: email
    type: email
    rules: [required]
  - name: password
    rules: [required, {min_length: 6}]
  - name: repeatPassword
    exclude: true
  - name: terms
    control: choice
    rules: [checked]
  - name: code
    control: otp
    length: 6
    rules: [digits]
`))
	require.NoError(t, err)
	s, err := jsonschema.FromDefinition(defs[0])
	require.NoError(t, err)

	require.Equal(t, []string{"email", "password", "terms"}, s.Required)
	require.NotContains(t, s.Properties, "repeatPassword")
	require.Equal(t, "email", s.Properties["email"].Format)
	require.Equal(t, 6, *s.Properties["password"].MinLength)
	require.Equal(t, "boolean", s.Properties["terms"].Type)
	require.Equal(t, 6, *s.Properties["code"].MaxLength)

	b, err := json.Marshal(s)
	require.NoError(t, err)
	require.Contains(t, string(b), `"additionalProperties":false`)
	require.Contains(t, string(b), `"$schema":"`+jsonschema.Draft+`"`)
}
