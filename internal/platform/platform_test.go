package platform

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	for _, p := range All() {
		got, err := Parse(string(p))
		require.NoError(t, err)
		assert.Equal(t, p, got)
	}

	_, err := Parse("myspace")
	assert.ErrorIs(t, err, ErrUnknownPlatform)

	_, err = Parse("Twitter")
	assert.ErrorIs(t, err, ErrUnknownPlatform, "parsing is case sensitive")
}

func TestRulesForCoversAllPlatforms(t *testing.T) {
	for _, p := range All() {
		rules, err := RulesFor(p)
		require.NoError(t, err)
		require.NotNil(t, rules)
	}

	_, err := RulesFor(Platform("myspace"))
	assert.ErrorIs(t, err, ErrUnknownPlatform)
}

func TestTwitterLength(t *testing.T) {
	rules, err := RulesFor(Twitter)
	require.NoError(t, err)

	assert.Equal(t, 5, rules.Length("hello"))

	// Every URL costs a fixed 23 characters regardless of its real length.
	longURL := "https://example.com/a/very/long/path/that/keeps/going/and/going"
	assert.Equal(t, 23, rules.Length(longURL))
	assert.Equal(t, 23, rules.Length("https://a.io"))

	text := "Check this out: " + longURL
	assert.Equal(t, 16+23, rules.Length(text))

	two := "https://a.io and https://b.io"
	assert.Equal(t, 23+5+23, rules.Length(two))
}

func TestTwitterValidate(t *testing.T) {
	rules, _ := RulesFor(Twitter)

	assert.NoError(t, rules.Validate(strings.Repeat("a", 280)))
	assert.Error(t, rules.Validate(strings.Repeat("a", 281)))
	assert.Error(t, rules.Validate(""))

	// 270 visible characters plus a long URL stays over the cap because the
	// URL still costs 23.
	over := strings.Repeat("a", 270) + " https://example.com/long/path"
	assert.Error(t, rules.Validate(over))

	// 250 characters plus any URL fits: 250 + 1 + 23 = 274.
	under := strings.Repeat("a", 250) + " https://example.com/really/long/path/here"
	assert.NoError(t, rules.Validate(under))
}

func TestLinkedinValidate(t *testing.T) {
	rules, _ := RulesFor(Linkedin)

	assert.Equal(t, 3000, rules.MaxLength())
	assert.Equal(t, 9, rules.MaxImages())
	assert.NoError(t, rules.Validate(strings.Repeat("a", 3000)))
	assert.Error(t, rules.Validate(strings.Repeat("a", 3001)))

	// LinkedIn counts URLs at face value.
	assert.Equal(t, 12, rules.Length("https://a.io"))
}

func TestHackerNewsValidate(t *testing.T) {
	rules, _ := RulesFor(HackerNews)

	assert.Equal(t, 80, rules.MaxLength())
	assert.Equal(t, 0, rules.MaxImages())

	assert.NoError(t, rules.Validate("Show HN: A post scheduler for small teams"))
	assert.Error(t, rules.Validate(strings.Repeat("a", 81)))
	assert.Error(t, rules.Validate(""))

	err := rules.Validate("Read our launch post https://example.com/launch")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "URL")
}

func TestMaxImages(t *testing.T) {
	tw, _ := RulesFor(Twitter)
	assert.Equal(t, 4, tw.MaxImages())

	li, _ := RulesFor(Linkedin)
	assert.Equal(t, 9, li.MaxImages())
}

func TestSplitLearnMore(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		title string
		url   string
		ok    bool
	}{
		{
			name:  "learn more",
			in:    "Our new release is out\n\nLearn more: https://example.com/blog",
			title: "Our new release is out",
			url:   "https://example.com/blog",
			ok:    true,
		},
		{
			name:  "read more",
			in:    "Our new release is out Read more: https://example.com/blog",
			title: "Our new release is out",
			url:   "https://example.com/blog",
			ok:    true,
		},
		{
			name:  "case insensitive",
			in:    "Title here LEARN MORE: https://example.com",
			title: "Title here",
			url:   "https://example.com",
			ok:    true,
		},
		{
			name:  "trailing text after url",
			in:    "Title Learn more: https://example.com and more words",
			title: "Title",
			url:   "https://example.com",
			ok:    true,
		},
		{
			name: "no delimiter",
			in:   "Just a title with nothing else",
			ok:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			title, url, ok := SplitLearnMore(tt.in)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.title, title)
				assert.Equal(t, tt.url, url)
			}
		})
	}
}

func TestJoinLearnMoreRoundTrip(t *testing.T) {
	joined := JoinLearnMore("Show HN: Postdock", "https://postdock.dev")
	title, url, ok := SplitLearnMore(joined)
	require.True(t, ok)
	assert.Equal(t, "Show HN: Postdock", title)
	assert.Equal(t, "https://postdock.dev", url)

	assert.Equal(t, "just a title", JoinLearnMore("just a title", ""))
}

func TestStripAIPreamble(t *testing.T) {
	assert.Equal(t, "Big news today.",
		StripAIPreamble("Here's a post for LinkedIn:\nBig news today."))
	assert.Equal(t, "Big news today.",
		StripAIPreamble("Sure, here's the updated version:\n\nBig news today."))
	assert.Equal(t, "No preamble at all.",
		StripAIPreamble("  No preamble at all.  "))
}

func TestContainsURL(t *testing.T) {
	assert.True(t, ContainsURL("see https://example.com"))
	assert.True(t, ContainsURL("see http://example.com"))
	assert.False(t, ContainsURL("example.com is not matched without a scheme"))
	assert.False(t, ContainsURL("plain text"))
}

func TestFirstLine(t *testing.T) {
	assert.Equal(t, "second", FirstLine("\n\n  second  \nthird"))
	assert.Equal(t, "", FirstLine("   \n  "))
}
