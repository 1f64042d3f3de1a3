package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"

	"github.com/h2non/filetype"
	"github.com/h2non/filetype/types"
	gonanoid "github.com/matoous/go-nanoid/v2"
	config "github.com/postdock/postdock/configs"
	"github.com/postdock/postdock/internal/drafts"
	"github.com/postdock/postdock/internal/models"
	"github.com/postdock/postdock/internal/platform"
	"github.com/postdock/postdock/internal/repository"
	"github.com/postdock/postdock/internal/transfer"
)

type DraftService interface {
	RequestDraft(ctx context.Context, userID int64, instruction string, platforms []platform.Platform, distinct bool) (*transfer.AIGenerateResponse, error)
	UploadImage(ctx context.Context, userID int64, p platform.Platform, file *multipart.FileHeader) (*models.ImageAsset, error)
}

type draftService struct {
	cfg   config.Config
	store *drafts.Store
	ai    AIService
	ar    repository.AssetRepository
	r2    R2Service
}

func NewDraftService(cfg config.Config, store *drafts.Store, ai AIService, ar repository.AssetRepository, r2 R2Service) DraftService {
	return &draftService{
		cfg:   cfg,
		store: store,
		ai:    ai,
		ar:    ar,
		r2:    r2,
	}
}

// RequestDraft runs one round-trip with the drafting collaborator: the user's
// instruction plus the current drafts and page context go out, both sides of
// the exchange land in the conversation, and generated previews become the
// new live drafts.
func (s *draftService) RequestDraft(ctx context.Context, userID int64, instruction string, platforms []platform.Platform, distinct bool) (*transfer.AIGenerateResponse, error) {
	if instruction == "" {
		return nil, transfer.NewValidationError("instruction is empty")
	}
	if len(platforms) == 0 {
		return nil, transfer.NewValidationError("no platforms selected")
	}

	snapshot := s.store.Snapshot(userID)

	req := &transfer.AIGenerateRequest{
		Message:                 instruction,
		PageContext:             snapshot.PageContext,
		GenerateDistinctContent: distinct,
		CurrentDrafts:           make(map[string]string, len(platforms)),
	}
	for _, p := range platforms {
		req.Platforms = append(req.Platforms, string(p))
		if d, ok := snapshot.Drafts[p]; ok && d.Content != "" {
			req.CurrentDrafts[string(p)] = d.Content
		}
	}
	for _, m := range snapshot.Conversation {
		req.Conversation = append(req.Conversation, transfer.AIMessage{Role: m.Role, Content: m.Content})
	}

	resp, err := s.ai.Generate(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("error generating draft: %w", err)
	}

	s.store.AppendMessage(userID, "user", instruction)
	s.store.AppendMessage(userID, "assistant", resp.Response)

	if resp.Intent.IsGeneratingPost || resp.Intent.IsEditing {
		for _, p := range platforms {
			preview, ok := resp.Previews[string(p)]
			if !ok || preview == "" {
				continue
			}
			content, hnURL := s.parsePreview(p, preview, snapshot.PageContext.URL)
			s.store.ApplyAIDraft(userID, p, content, hnURL)
		}
	}

	return resp, nil
}

// parsePreview applies the per-platform shaping of a generated preview.
func (s *draftService) parsePreview(p platform.Platform, preview, pageURL string) (content, hnURL string) {
	switch p {
	case platform.Linkedin:
		return platform.StripAIPreamble(preview), ""
	case platform.HackerNews:
		if title, url, ok := platform.SplitLearnMore(preview); ok {
			return title, url
		}
		// No delimiter: first line is the title, the page itself is the link.
		return platform.FirstLine(preview), pageURL
	default:
		return preview, ""
	}
}

var allowedImageTypes = map[string]struct{}{
	"jpg": {}, "jpeg": {}, "png": {}, "gif": {}, "webp": {},
}

// UploadImage pushes a draft image to object storage and attaches it to the
// platform's image list. The platform cap is enforced before any upload call
// goes out.
func (s *draftService) UploadImage(ctx context.Context, userID int64, p platform.Platform, file *multipart.FileHeader) (*models.ImageAsset, error) {
	rules, err := platform.RulesFor(p)
	if err != nil {
		return nil, transfer.NewValidationError(err.Error())
	}
	if rules.MaxImages() == 0 {
		return nil, transfer.NewValidationError(fmt.Sprintf("%s does not support images", p))
	}
	if d, ok := s.store.Draft(userID, p); ok && len(d.Images) >= rules.MaxImages() {
		return nil, transfer.NewValidationError(fmt.Sprintf("at most %d images allowed for %s", rules.MaxImages(), p))
	}

	fileContent, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("error opening file: %w", err)
	}
	defer fileContent.Close()

	fileBytes, err := io.ReadAll(fileContent)
	if err != nil {
		return nil, fmt.Errorf("error reading file content: %w", err)
	}

	fileType, err := filetype.Match(fileBytes)
	if err != nil || fileType == types.Unknown {
		return nil, transfer.NewValidationError("unsupported file type")
	}
	if _, ok := allowedImageTypes[fileType.Extension]; !ok {
		return nil, transfer.NewValidationError(fmt.Sprintf("file type %s is not allowed", fileType.Extension))
	}

	key, err := gonanoid.New()
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	if err := s.r2.UploadToR2(ctx, key, fileBytes, fileType.MIME.Value); err != nil {
		return nil, fmt.Errorf("error uploading file: %w", err)
	}

	asset := models.Asset{
		UserID:     userID,
		FileName:   key,
		FileType:   fileType.MIME.Value,
		FileSize:   int64(len(fileBytes)),
		DisplayURL: fmt.Sprintf("%s/%s", s.cfg.R2.PublicURL, key),
	}
	assetID, err := s.ar.Create(ctx, &asset)
	if err != nil {
		return nil, fmt.Errorf("error saving asset: %w", err)
	}

	img := models.ImageAsset{AssetID: assetID, DisplayURL: asset.DisplayURL}
	if err := s.store.AddImage(userID, p, img); err != nil {
		if errors.Is(err, drafts.ErrImageCap) || errors.Is(err, drafts.ErrImagesDisabled) {
			return nil, transfer.NewValidationError(err.Error())
		}
		return nil, err
	}

	return &img, nil
}
