package openai

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lunaura/pkg/storage"
)

func TestParseVerdict(t *testing.T) {
	cases := []struct {
		name string
		out  string
		want Verdict
	}{
		{"plain", `{"ok":true,"reason":"Fincan net.","confidence":0.92}`, Verdict{OK: true, Reason: "Fincan net.", Confidence: 0.92}},
		{"wrapped in text", "Sonuç:\n```json\n{\"ok\":false,\"reason\":\"Bulanık\"}\n```", Verdict{OK: false, Reason: "Bulanık"}},
		{"no json", "emin değilim", Verdict{OK: false, Reason: "Görsel doğrulanamadı."}},
		{"broken json", `{"ok":true,`, Verdict{OK: false, Reason: "Görsel doğrulanamadı."}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ParseVerdict(tc.out))
		})
	}
}

func newImageStore(t *testing.T, keys ...string) storage.Store {
	t.Helper()
	store, err := storage.NewLocalStore(t.TempDir())
	require.NoError(t, err)
	for _, k := range keys {
		require.NoError(t, store.Put(context.Background(), k, []byte("image-bytes")))
	}
	return store
}

func TestImageValidator_Validate(t *testing.T) {
	store := newImageStore(t, "uploads/r1/a.jpg", "uploads/r1/b.png")
	c := &scripted{replies: []reply{{text: `{"ok":true,"reason":"uygun","confidence":0.8}`}}}
	v := NewImageValidator(c, store)

	verdict, err := v.Validate(context.Background(), KindCoffee, []string{"uploads/r1/a.jpg", "uploads/r1/b.png"})
	require.NoError(t, err)
	assert.True(t, verdict.OK)

	require.Equal(t, 1, c.calls())
	p := c.prompts[0]
	assert.Equal(t, coffeeValidatePrompt, p.System)
	require.Len(t, p.Images, 2)
	assert.True(t, strings.HasPrefix(p.Images[0], "data:image/jpeg;base64,"))
	assert.True(t, strings.HasPrefix(p.Images[1], "data:image/png;base64,"))
}

func TestImageValidator_Errors(t *testing.T) {
	store := newImageStore(t, "uploads/r1/a.jpg")

	t.Run("unknown kind", func(t *testing.T) {
		c := &scripted{replies: []reply{{text: `{"ok":true}`}}}
		_, err := NewImageValidator(c, store).Validate(context.Background(), "tarot", []string{"uploads/r1/a.jpg"})
		assert.Error(t, err)
		assert.Equal(t, 0, c.calls())
	})

	t.Run("missing image", func(t *testing.T) {
		c := &scripted{replies: []reply{{text: `{"ok":true}`}}}
		_, err := NewImageValidator(c, store).Validate(context.Background(), KindHand, []string{"uploads/r1/missing.jpg"})
		assert.Error(t, err)
		assert.Equal(t, 0, c.calls())
	})

	t.Run("model unavailable", func(t *testing.T) {
		c := &scripted{replies: []reply{{err: ErrUnavailable}}}
		_, err := NewImageValidator(c, store).Validate(context.Background(), KindHand, []string{"uploads/r1/a.jpg"})
		assert.ErrorIs(t, err, ErrUnavailable)
	})

	t.Run("unparseable answer is a rejection", func(t *testing.T) {
		c := &scripted{replies: []reply{{text: "bilmiyorum"}}}
		verdict, err := NewImageValidator(c, store).Validate(context.Background(), KindHand, []string{"uploads/r1/a.jpg"})
		require.NoError(t, err)
		assert.False(t, verdict.OK)
	})
}
