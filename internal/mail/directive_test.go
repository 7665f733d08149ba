package mail

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDirective(t *testing.T) {
	d, err := ParseDirective([]byte(`{"to":["a@example.com","b@example.com"],"subject":"Report","text":"See attachment"}`))
	require.NoError(t, err)
	assert.Equal(t, []string{"a@example.com", "b@example.com"}, d.To)
	assert.Equal(t, "Report", d.Subject)
	assert.Equal(t, "See attachment", d.Body)
}

func TestParseDirectiveBodyAlias(t *testing.T) {
	d, err := ParseDirective([]byte(`{"to":["a@example.com"],"subject":"s","body":"via body"}`))
	require.NoError(t, err)
	assert.Equal(t, "via body", d.Body)
}

func TestParseDirectiveEmptyToIsValid(t *testing.T) {
	d, err := ParseDirective([]byte(`{"to":[],"subject":"s","text":"b"}`))
	require.NoError(t, err)
	assert.Empty(t, d.To)
}

func TestParseDirectiveRejections(t *testing.T) {
	cases := map[string]string{
		"malformed json":     `{not json`,
		"to not array":       `{"to":"a@example.com","subject":"s","text":"b"}`,
		"to missing":         `{"subject":"s","text":"b"}`,
		"non-string entry":   `{"to":["a@example.com",5],"subject":"s","text":"b"}`,
		"subject missing":    `{"to":["a@example.com"],"text":"b"}`,
		"body missing":       `{"to":["a@example.com"],"subject":"s"}`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseDirective([]byte(raw))
			assert.Error(t, err)
		})
	}
}

func TestNewSMTPMailerRequiresHost(t *testing.T) {
	_, err := NewSMTPMailer(SMTPConfig{})
	assert.Error(t, err)
}

func TestNewSMTPMailer(t *testing.T) {
	m, err := NewSMTPMailer(SMTPConfig{Host: "smtp.example.com", Port: 2525, Username: "u", Password: "p", Unsafe: true})
	require.NoError(t, err)
	assert.NotNil(t, m)
}
