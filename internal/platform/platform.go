package platform

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

// Platform identifies a destination network for scheduled content.
type Platform string

const (
	Twitter    Platform = "twitter"
	Linkedin   Platform = "linkedin"
	HackerNews Platform = "hackernews"
)

var ErrUnknownPlatform = errors.New("unknown platform")

func Parse(s string) (Platform, error) {
	switch Platform(s) {
	case Twitter, Linkedin, HackerNews:
		return Platform(s), nil
	}
	return "", ErrUnknownPlatform
}

func All() []Platform {
	return []Platform{Twitter, Linkedin, HackerNews}
}

// ContentRules holds the per-platform validation and sizing rules. There is
// exactly one implementation per platform so that adding a platform forces a
// decision at every rule site.
type ContentRules interface {
	MaxLength() int
	MaxImages() int
	// Length reports the platform's accounting of the content length,
	// which is not always the raw character count.
	Length(content string) int
	Validate(content string) error
}

func RulesFor(p Platform) (ContentRules, error) {
	switch p {
	case Twitter:
		return twitterRules{}, nil
	case Linkedin:
		return linkedinRules{}, nil
	case HackerNews:
		return hackernewsRules{}, nil
	}
	return nil, ErrUnknownPlatform
}

type twitterRules struct{}

// Twitter counts every URL as a fixed 23 characters, mirroring t.co
// link wrapping.
const twitterURLCost = 23

func (twitterRules) MaxLength() int { return 280 }
func (twitterRules) MaxImages() int { return 4 }

func (twitterRules) Length(content string) int {
	length := utf8.RuneCountInString(content)
	for _, u := range findURLs(content) {
		length = length - utf8.RuneCountInString(u) + twitterURLCost
	}
	return length
}

func (r twitterRules) Validate(content string) error {
	if content == "" {
		return errors.New("content is empty")
	}
	if l := r.Length(content); l > r.MaxLength() {
		return fmt.Errorf("content is %d characters, limit is %d", l, r.MaxLength())
	}
	return nil
}

type linkedinRules struct{}

func (linkedinRules) MaxLength() int { return 3000 }
func (linkedinRules) MaxImages() int { return 9 }

func (linkedinRules) Length(content string) int {
	return utf8.RuneCountInString(content)
}

func (r linkedinRules) Validate(content string) error {
	if content == "" {
		return errors.New("content is empty")
	}
	if l := r.Length(content); l > r.MaxLength() {
		return fmt.Errorf("content is %d characters, limit is %d", l, r.MaxLength())
	}
	return nil
}

type hackernewsRules struct{}

func (hackernewsRules) MaxLength() int { return 80 }

// Hacker News submissions carry no images.
func (hackernewsRules) MaxImages() int { return 0 }

func (hackernewsRules) Length(content string) int {
	return utf8.RuneCountInString(content)
}

func (r hackernewsRules) Validate(content string) error {
	if content == "" {
		return errors.New("content is empty")
	}
	if ContainsURL(content) {
		return errors.New("titles may not contain URLs, use the link field instead")
	}
	if l := r.Length(content); l > r.MaxLength() {
		return fmt.Errorf("title is %d characters, limit is %d", l, r.MaxLength())
	}
	return nil
}
