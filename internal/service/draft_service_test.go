package service

import (
	"bytes"
	"context"
	"errors"
	"mime/multipart"
	"testing"

	config "github.com/postdock/postdock/configs"
	"github.com/postdock/postdock/internal/drafts"
	"github.com/postdock/postdock/internal/models"
	"github.com/postdock/postdock/internal/platform"
	"github.com/postdock/postdock/internal/transfer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAI struct {
	resp    *transfer.AIGenerateResponse
	err     error
	lastReq *transfer.AIGenerateRequest
	calls   int
}

func (s *stubAI) Generate(ctx context.Context, req *transfer.AIGenerateRequest) (*transfer.AIGenerateResponse, error) {
	s.calls++
	s.lastReq = req
	return s.resp, s.err
}

type stubR2 struct {
	uploads int
	lastKey string
}

func (s *stubR2) UploadToR2(ctx context.Context, key string, file []byte, filetype string) error {
	s.uploads++
	s.lastKey = key
	return nil
}

type stubAssetRepo struct {
	nextID int64
}

func (r *stubAssetRepo) Create(ctx context.Context, asset *models.Asset) (int64, error) {
	r.nextID++
	return r.nextID, nil
}

func (r *stubAssetRepo) GetByID(ctx context.Context, id int64) (*models.Asset, error) {
	return nil, nil
}

func (r *stubAssetRepo) Remove(ctx context.Context, id int64) error { return nil }

func newTestDraftService(ai *stubAI) (DraftService, *drafts.Store, *stubR2) {
	store := drafts.NewStore()
	r2 := &stubR2{}
	cfg := config.Config{}
	cfg.R2.PublicURL = "https://cdn.example.com"
	return NewDraftService(cfg, store, ai, &stubAssetRepo{}, r2), store, r2
}

func TestRequestDraftAppliesPreviews(t *testing.T) {
	ai := &stubAI{resp: &transfer.AIGenerateResponse{
		Response: "Done, here are your drafts.",
		Intent:   transfer.AIIntent{IsGeneratingPost: true},
		Previews: map[string]string{
			"twitter":  "short tweet",
			"linkedin": "Here's a post for LinkedIn:\nLonger update.",
		},
	}}
	s, store, _ := newTestDraftService(ai)

	resp, err := s.RequestDraft(context.Background(), 10, "announce the launch",
		[]platform.Platform{platform.Twitter, platform.Linkedin}, false)
	require.NoError(t, err)
	assert.Equal(t, "Done, here are your drafts.", resp.Response)

	d, ok := store.Draft(10, platform.Twitter)
	require.True(t, ok)
	assert.Equal(t, "short tweet", d.Content)
	require.Len(t, d.Versions, 1)
	assert.Equal(t, drafts.SourceAI, d.Versions[0].Source)

	// assistant boilerplate is stripped from LinkedIn previews
	d, ok = store.Draft(10, platform.Linkedin)
	require.True(t, ok)
	assert.Equal(t, "Longer update.", d.Content)

	msgs := store.Conversation(10)
	require.Len(t, msgs, 2)
	assert.Equal(t, "user", msgs[0].Role)
	assert.Equal(t, "announce the launch", msgs[0].Content)
	assert.Equal(t, "assistant", msgs[1].Role)
}

func TestRequestDraftHackerNewsSplitsPreview(t *testing.T) {
	ai := &stubAI{resp: &transfer.AIGenerateResponse{
		Response: "ok",
		Intent:   transfer.AIIntent{IsGeneratingPost: true},
		Previews: map[string]string{
			"hackernews": "Show HN: Postdock\n\nLearn more: https://postdock.dev/launch",
		},
	}}
	s, store, _ := newTestDraftService(ai)

	_, err := s.RequestDraft(context.Background(), 10, "write an HN title",
		[]platform.Platform{platform.HackerNews}, false)
	require.NoError(t, err)

	d, ok := store.Draft(10, platform.HackerNews)
	require.True(t, ok)
	assert.Equal(t, "Show HN: Postdock", d.Content)
	assert.Equal(t, "https://postdock.dev/launch", d.HackerNewsURL)
}

func TestRequestDraftHackerNewsFallsBackToPageURL(t *testing.T) {
	ai := &stubAI{resp: &transfer.AIGenerateResponse{
		Response: "ok",
		Intent:   transfer.AIIntent{IsGeneratingPost: true},
		Previews: map[string]string{
			"hackernews": "Show HN: Postdock\nSome trailing commentary",
		},
	}}
	s, store, _ := newTestDraftService(ai)
	store.SetPageContext(10, models.PageContext{URL: "https://postdock.dev"})

	_, err := s.RequestDraft(context.Background(), 10, "write an HN title",
		[]platform.Platform{platform.HackerNews}, false)
	require.NoError(t, err)

	d, _ := store.Draft(10, platform.HackerNews)
	assert.Equal(t, "Show HN: Postdock", d.Content)
	assert.Equal(t, "https://postdock.dev", d.HackerNewsURL)
}

func TestRequestDraftConversationalReplyLeavesDrafts(t *testing.T) {
	ai := &stubAI{resp: &transfer.AIGenerateResponse{
		Response: "What tone do you want?",
		Intent:   transfer.AIIntent{},
		Previews: map[string]string{"twitter": "should be ignored"},
	}}
	s, store, _ := newTestDraftService(ai)
	store.EditDraft(10, platform.Twitter, "my own words")

	_, err := s.RequestDraft(context.Background(), 10, "help me",
		[]platform.Platform{platform.Twitter}, false)
	require.NoError(t, err)

	d, _ := store.Draft(10, platform.Twitter)
	assert.Equal(t, "my own words", d.Content)
	assert.Empty(t, d.Versions)
	assert.Len(t, store.Conversation(10), 2)
}

func TestRequestDraftSendsCurrentState(t *testing.T) {
	ai := &stubAI{resp: &transfer.AIGenerateResponse{Response: "ok"}}
	s, store, _ := newTestDraftService(ai)

	store.EditDraft(10, platform.Twitter, "existing draft")
	store.SetPageContext(10, models.PageContext{Title: "Launch", URL: "https://postdock.dev"})
	store.AppendMessage(10, "user", "earlier message")

	_, err := s.RequestDraft(context.Background(), 10, "tighten it up",
		[]platform.Platform{platform.Twitter}, true)
	require.NoError(t, err)

	req := ai.lastReq
	require.NotNil(t, req)
	assert.Equal(t, "tighten it up", req.Message)
	assert.True(t, req.GenerateDistinctContent)
	assert.Equal(t, []string{"twitter"}, req.Platforms)
	assert.Equal(t, "existing draft", req.CurrentDrafts["twitter"])
	assert.Equal(t, "Launch", req.PageContext.Title)
	require.Len(t, req.Conversation, 1)
	assert.Equal(t, "earlier message", req.Conversation[0].Content)
}

func TestRequestDraftValidation(t *testing.T) {
	ai := &stubAI{resp: &transfer.AIGenerateResponse{Response: "ok"}}
	s, _, _ := newTestDraftService(ai)

	var verr *transfer.ValidationError

	_, err := s.RequestDraft(context.Background(), 10, "", []platform.Platform{platform.Twitter}, false)
	assert.ErrorAs(t, err, &verr)

	_, err = s.RequestDraft(context.Background(), 10, "hello", nil, false)
	assert.ErrorAs(t, err, &verr)

	assert.Equal(t, 0, ai.calls)
}

func TestRequestDraftAIError(t *testing.T) {
	ai := &stubAI{err: errors.New("upstream down")}
	s, store, _ := newTestDraftService(ai)

	_, err := s.RequestDraft(context.Background(), 10, "hello",
		[]platform.Platform{platform.Twitter}, false)
	require.Error(t, err)
	assert.Empty(t, store.Conversation(10), "failed exchanges stay out of the conversation")
}

// pngHeader is enough of a PNG for content sniffing.
var pngHeader = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0, 0, 0, 0}

func makeFileHeader(t *testing.T, content []byte) *multipart.FileHeader {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", "image.png")
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&buf, w.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	return form.File["file"][0]
}

func TestUploadImage(t *testing.T) {
	s, store, r2 := newTestDraftService(&stubAI{})

	img, err := s.UploadImage(context.Background(), 10, platform.Twitter, makeFileHeader(t, pngHeader))
	require.NoError(t, err)
	assert.Equal(t, 1, r2.uploads)
	assert.Contains(t, img.DisplayURL, "https://cdn.example.com/")

	d, ok := store.Draft(10, platform.Twitter)
	require.True(t, ok)
	require.Len(t, d.Images, 1)
	assert.Equal(t, img.AssetID, d.Images[0].AssetID)
}

func TestUploadImageRejectsUnknownType(t *testing.T) {
	s, _, r2 := newTestDraftService(&stubAI{})

	_, err := s.UploadImage(context.Background(), 10, platform.Twitter, makeFileHeader(t, []byte("plain text")))
	var verr *transfer.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, 0, r2.uploads)
}

func TestUploadImageCapBlocksBeforeUpload(t *testing.T) {
	s, store, r2 := newTestDraftService(&stubAI{})

	for i := 0; i < 4; i++ {
		require.NoError(t, store.AddImage(10, platform.Twitter, models.ImageAsset{AssetID: int64(i)}))
	}

	_, err := s.UploadImage(context.Background(), 10, platform.Twitter, makeFileHeader(t, pngHeader))
	var verr *transfer.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, 0, r2.uploads)
}

func TestUploadImageHackerNewsDisabled(t *testing.T) {
	s, _, r2 := newTestDraftService(&stubAI{})

	_, err := s.UploadImage(context.Background(), 10, platform.HackerNews, makeFileHeader(t, pngHeader))
	var verr *transfer.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, 0, r2.uploads)
}
