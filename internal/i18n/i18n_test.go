// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package i18n

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func TestTranslations(t *testing.T) {
	require.NoError(t, Init())

	en := WithLocale(context.Background(), language.English)
	assert.Equal(t, "You are already on the waitlist!", T(en, "signup_already_on_list"))

	de := WithLocale(context.Background(), language.German)
	assert.Equal(t, "Du stehst bereits auf der Warteliste!", T(de, "signup_already_on_list"))

	// Unknown IDs fall back to the ID itself.
	assert.Equal(t, "does_not_exist", T(en, "does_not_exist"))
}

func TestTData(t *testing.T) {
	require.NoError(t, Init())

	en := WithLocale(context.Background(), language.English)
	got := TData(en, "unsubscribe_done_body", map[string]any{"Email": "alice@example.com"})
	assert.Equal(t, "We've removed alice@example.com from our mailing list.", got)
}

func TestMatchLanguage(t *testing.T) {
	assert.Equal(t, language.German, MatchLanguage("de-DE,de;q=0.9"))
	assert.Equal(t, language.English, MatchLanguage("fr-FR"))
	assert.Equal(t, language.English, MatchLanguage(""))
}
