package drafts

import (
	"testing"

	"github.com/postdock/postdock/internal/models"
	"github.com/postdock/postdock/internal/platform"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const userID = int64(7)

func TestSelectPlatformKeepsOtherDrafts(t *testing.T) {
	s := NewStore()

	s.EditDraft(userID, platform.Twitter, "tweet text")
	s.SelectPlatform(userID, platform.Linkedin)
	s.EditDraft(userID, platform.Linkedin, "linkedin text")

	snap := s.Snapshot(userID)
	assert.Equal(t, platform.Linkedin, snap.ActivePlatform)
	assert.Equal(t, "tweet text", snap.Drafts[platform.Twitter].Content)
	assert.Equal(t, "linkedin text", snap.Drafts[platform.Linkedin].Content)
}

func TestDefaultSession(t *testing.T) {
	s := NewStore()

	snap := s.Snapshot(userID)
	assert.Equal(t, platform.Twitter, snap.ActivePlatform)
	assert.Empty(t, snap.Drafts)
	assert.Empty(t, snap.Conversation)
}

func TestSaveAndSelectVersion(t *testing.T) {
	s := NewStore()

	s.EditDraft(userID, platform.Twitter, "first")
	require.NoError(t, s.SaveVersion(userID, platform.Twitter))
	s.EditDraft(userID, platform.Twitter, "second")
	require.NoError(t, s.SaveVersion(userID, platform.Twitter))

	d, ok := s.Draft(userID, platform.Twitter)
	require.True(t, ok)
	require.Len(t, d.Versions, 2)
	// newest first
	assert.Equal(t, "second", d.Versions[0].Content)
	assert.Equal(t, "first", d.Versions[1].Content)
	assert.Equal(t, SourceUser, d.Versions[0].Source)

	require.NoError(t, s.SelectVersion(userID, platform.Twitter, 1))
	d, _ = s.Draft(userID, platform.Twitter)
	assert.Equal(t, "first", d.Content)
	// selecting does not consume history
	assert.Len(t, d.Versions, 2)

	assert.ErrorIs(t, s.SelectVersion(userID, platform.Twitter, 2), ErrVersionIndex)
	assert.ErrorIs(t, s.SelectVersion(userID, platform.Twitter, -1), ErrVersionIndex)
}

func TestSaveVersionEmptyDraft(t *testing.T) {
	s := NewStore()

	assert.ErrorIs(t, s.SaveVersion(userID, platform.Twitter), ErrEmptyDraft)
}

func TestHackerNewsEditSplitsLink(t *testing.T) {
	s := NewStore()

	s.EditDraft(userID, platform.HackerNews, "Show HN: Postdock\n\nLearn more: https://postdock.dev")

	d, ok := s.Draft(userID, platform.HackerNews)
	require.True(t, ok)
	assert.Equal(t, "Show HN: Postdock", d.Content)
	assert.Equal(t, "https://postdock.dev", d.HackerNewsURL)
}

func TestHackerNewsVersionRoundTrip(t *testing.T) {
	s := NewStore()

	s.EditDraft(userID, platform.HackerNews, "Show HN: Postdock")
	s.EditDraft(userID, platform.HackerNews, "Show HN: Postdock\n\nLearn more: https://postdock.dev")
	require.NoError(t, s.SaveVersion(userID, platform.HackerNews))

	s.EditDraft(userID, platform.HackerNews, "A different title")
	d, _ := s.Draft(userID, platform.HackerNews)
	assert.Equal(t, "A different title", d.Content)

	// restoring the snapshot brings the link back too
	require.NoError(t, s.SelectVersion(userID, platform.HackerNews, 0))
	d, _ = s.Draft(userID, platform.HackerNews)
	assert.Equal(t, "Show HN: Postdock", d.Content)
	assert.Equal(t, "https://postdock.dev", d.HackerNewsURL)
}

func TestApplyAIDraftRecordsVersion(t *testing.T) {
	s := NewStore()

	s.ApplyAIDraft(userID, platform.Twitter, "generated tweet", "")

	d, ok := s.Draft(userID, platform.Twitter)
	require.True(t, ok)
	assert.Equal(t, "generated tweet", d.Content)
	require.Len(t, d.Versions, 1)
	assert.Equal(t, SourceAI, d.Versions[0].Source)
}

func TestImageCap(t *testing.T) {
	s := NewStore()

	for i := 0; i < 4; i++ {
		require.NoError(t, s.AddImage(userID, platform.Twitter, models.ImageAsset{AssetID: int64(i)}))
	}
	assert.ErrorIs(t, s.AddImage(userID, platform.Twitter, models.ImageAsset{AssetID: 9}), ErrImageCap)

	assert.ErrorIs(t, s.AddImage(userID, platform.HackerNews, models.ImageAsset{}), ErrImagesDisabled)
}

func TestRemoveImage(t *testing.T) {
	s := NewStore()

	require.NoError(t, s.AddImage(userID, platform.Twitter, models.ImageAsset{AssetID: 1}))
	require.NoError(t, s.AddImage(userID, platform.Twitter, models.ImageAsset{AssetID: 2}))

	require.NoError(t, s.RemoveImage(userID, platform.Twitter, 0))
	d, _ := s.Draft(userID, platform.Twitter)
	require.Len(t, d.Images, 1)
	assert.Equal(t, int64(2), d.Images[0].AssetID)

	assert.ErrorIs(t, s.RemoveImage(userID, platform.Twitter, 5), ErrImageIndex)
}

func TestConversation(t *testing.T) {
	s := NewStore()

	s.AppendMessage(userID, "user", "write me a tweet")
	s.AppendMessage(userID, "assistant", "here you go")

	msgs := s.Conversation(userID)
	require.Len(t, msgs, 2)
	assert.Equal(t, "user", msgs[0].Role)
	assert.Equal(t, "assistant", msgs[1].Role)

	assert.Nil(t, s.Conversation(int64(999)))
}

func TestSnapshotIsACopy(t *testing.T) {
	s := NewStore()

	s.EditDraft(userID, platform.Twitter, "original")
	snap := s.Snapshot(userID)
	snap.Drafts[platform.Twitter].Content = "mutated"

	d, _ := s.Draft(userID, platform.Twitter)
	assert.Equal(t, "original", d.Content)
}

func TestReset(t *testing.T) {
	s := NewStore()

	s.EditDraft(userID, platform.Twitter, "something")
	s.Reset(userID)

	_, ok := s.Draft(userID, platform.Twitter)
	assert.False(t, ok)
}
