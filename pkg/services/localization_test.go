package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"umbraco-cms/pkg/models"
)

func TestLocalization_Defaults(t *testing.T) {
	l, err := NewLocalization("", "en-US")
	require.NoError(t, err)

	assert.Equal(t, []string{"en-US", "da-DK", "ja-JP"}, l.Cultures())
	assert.Equal(t, "Scheduled Publishing", l.LocalizeFor("en-US", "general_scheduledPublishing"))
	assert.Equal(t, "Planlagt udgivelse", l.LocalizeFor("da", "general_scheduledPublishing"))
	assert.Equal(t, "予約公開", l.LocalizeFor("ja_JP", "general_scheduledPublishing"))
	assert.Equal(t, "Scheduled Publishing", l.LocalizeFor("fr-FR", "general_scheduledPublishing"))
	assert.Equal(t, "[general_nope]", l.LocalizeFor("en-US", "general_nope"))
	assert.Equal(t, "Scheduled 3 variant(s)", l.LocalizeFor("en-US", "speechBubbles_scheduleSaved", "3"))
}

func TestLocalization_Overlay(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "da-DK.yml"),
		[]byte("general:\n  scheduledPublishing: Tidsplan\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "de-DE.yml"),
		[]byte("general:\n  close: Schließen\n"), 0644))

	l, err := NewLocalization(dir, "en-US")
	require.NoError(t, err)

	assert.Equal(t, "Tidsplan", l.LocalizeFor("da-DK", "general_scheduledPublishing"))
	// untouched keys survive the overlay
	assert.Equal(t, "Luk", l.LocalizeFor("da-DK", "general_close"))
	assert.Equal(t, "Schließen", l.LocalizeFor("de", "general_close"))
	// missing german keys fall back to english
	assert.Equal(t, "Publish at", l.LocalizeFor("de-DE", "content_releaseDate"))
}

func TestLocalization_BadOverlay(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "en-US.yml"), []byte("general: [oops"), 0644))
	_, err := NewLocalization(dir, "en-US")
	assert.Error(t, err)

	l, err := NewLocalization(filepath.Join(dir, "missing"), "en-US")
	require.NoError(t, err)
	assert.NotNil(t, l)
}

func TestLocalization_UserLocale(t *testing.T) {
	l, err := NewLocalization("", "en-US")
	require.NoError(t, err)

	assert.Equal(t, "da-DK", l.MatchAcceptLanguage("da, en-GB;q=0.8"))
	assert.Equal(t, "en-US", l.MatchAcceptLanguage("xx"))
	assert.Equal(t, "en-US", l.MatchAcceptLanguage(""))

	ctx := WithUser(context.Background(), &models.User{Login: "kim", Locale: "ja-JP"})
	assert.Equal(t, "閉じる", l.Localize(ctx, "general_close"))
	assert.Equal(t, "Close", l.Localize(context.Background(), "general_close"))
}
