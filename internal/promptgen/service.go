// Package promptgen creates prompt sets without a manual upload: either by
// asking a text model to expand a theme into a numbered prompt list, or by
// describing uploaded reference images back into prompts.
package promptgen

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"stickerprint/internal/archive"
	"stickerprint/internal/domain"
	"stickerprint/internal/events"
	"stickerprint/internal/generation"
	"stickerprint/internal/storage"
)

const (
	// requestedPrompts is how many list items the model is asked for;
	// minPromptYield is the floor below which the response is rejected.
	requestedPrompts = 100
	minPromptYield   = 50

	maxCompletionTokens = 8000
)

// defaultDesignerTemplate is used when no custom template is configured.
// {USER_INPUT} is substituted with the caller's theme.
const defaultDesignerTemplate = `You are a prompt designer for a text-to-image model that produces individual sticker artwork.

Theme: {USER_INPUT}

Write exactly 100 distinct image prompts on this theme. Each prompt describes one standalone sticker subject in a short, concrete sentence. Vary subjects, poses, and moods so no two prompts repeat.

Return ONLY a numbered list, one prompt per line, in the form:
1. <prompt>
2. <prompt>`

// deconstructInstruction asks the vision model for a single reusable
// prompt that would reproduce the uploaded image's subject.
const deconstructInstruction = `Describe this image as one text-to-image prompt for sticker artwork. Focus on the subject, pose, mood, and distinctive visual details. Reply with the prompt text only, no preamble.`

// numberedLine matches "1. text", "2) text", "3 - text" and similar forms.
var numberedLine = regexp.MustCompile(`^\s*\d+\s*[.)\-:]?\s+(.+)$`)

// Service builds prompt sets from model output.
type Service struct {
	promptSets domain.PromptSetRepository
	settings   domain.SettingsRepository
	store      *storage.FileStore
	text       generation.TextGenerator
	hub        *events.Hub
	logger     zerolog.Logger
}

func NewService(
	promptSets domain.PromptSetRepository,
	settings domain.SettingsRepository,
	store *storage.FileStore,
	text generation.TextGenerator,
	hub *events.Hub,
	logger zerolog.Logger,
) *Service {
	return &Service{
		promptSets: promptSets,
		settings:   settings,
		store:      store,
		text:       text,
		hub:        hub,
		logger:     logger,
	}
}

// GenerateFromText expands a theme into a full prompt set and enqueues it
// as pending, exactly as if a file with those lines had been uploaded.
func (s *Service) GenerateFromText(ctx context.Context, userInput string) (*domain.PromptSet, error) {
	userInput = strings.TrimSpace(userInput)
	if userInput == "" {
		return nil, fmt.Errorf("theme text is required")
	}

	cfg, err := s.settings.Load(ctx)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, domain.ErrMissingAPIKey
	}

	template := cfg.DesignerTemplate
	if strings.TrimSpace(template) == "" {
		template = defaultDesignerTemplate
	}
	prompt := strings.ReplaceAll(template, "{USER_INPUT}", userInput)

	out, err := s.text.Complete(ctx, generation.TextRequest{
		Prompt:    prompt,
		APIKey:    cfg.APIKey,
		MaxTokens: maxCompletionTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("prompt designer call: %w", err)
	}

	prompts := ParseNumberedList(out)
	if len(prompts) < minPromptYield {
		s.logger.Warn().Int("got", len(prompts)).Int("want", requestedPrompts).Msg("promptgen: low yield rejected")
		return nil, fmt.Errorf("%w: got %d, need at least %d", domain.ErrLowPromptYield, len(prompts), minPromptYield)
	}

	filename := fmt.Sprintf("generated-%s-%s.txt", archive.Slug(userInput), time.Now().UTC().Format("20060102-150405"))
	ps, err := s.savePromptSet(ctx, filename, prompts, domain.PromptSetGenerated, userInput)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("prompt_set_id", ps.ID).Int("prompts", ps.LineCount).Msg("promptgen: set generated")
	return ps, nil
}

// UploadedImage is one reference image handed to the deconstructor.
type UploadedImage struct {
	Filename string
	MIME     string
	Data     []byte
}

// AnalysisFailure records one reference image that could not be described.
type AnalysisFailure struct {
	Filename string `json:"filename"`
	Reason   string `json:"reason"`
}

// AnalyzeImages turns uploaded reference images into one combined prompt
// set. A single unreadable image does not sink the batch; auth failures do.
func (s *Service) AnalyzeImages(ctx context.Context, uploads []UploadedImage) (*domain.PromptSet, []AnalysisFailure, error) {
	if len(uploads) == 0 {
		return nil, nil, fmt.Errorf("at least one image is required")
	}

	cfg, err := s.settings.Load(ctx)
	if err != nil {
		return nil, nil, err
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, nil, domain.ErrMissingAPIKey
	}

	var prompts []string
	var failures []AnalysisFailure
	for _, upload := range uploads {
		desc, err := s.text.DescribeImage(ctx, generation.VisionRequest{
			ImageData:    upload.Data,
			MIME:         upload.MIME,
			Instructions: deconstructInstruction,
			APIKey:       cfg.APIKey,
		})
		if err != nil {
			if generation.IsAuth(err) {
				return nil, nil, err
			}
			s.logger.Warn().Err(err).Str("file", upload.Filename).Msg("promptgen: image analysis failed")
			failures = append(failures, AnalysisFailure{Filename: upload.Filename, Reason: err.Error()})
			continue
		}
		if desc = strings.TrimSpace(desc); desc != "" {
			prompts = append(prompts, strings.ReplaceAll(desc, "\n", " "))
		}
	}
	if len(prompts) == 0 {
		return nil, failures, fmt.Errorf("no images could be analyzed")
	}

	filename := fmt.Sprintf("deconstructed-%s.txt", time.Now().UTC().Format("20060102-150405"))
	ps, err := s.savePromptSet(ctx, filename, prompts, domain.PromptSetDeconstructed, "")
	if err != nil {
		return nil, failures, err
	}
	s.logger.Info().Str("prompt_set_id", ps.ID).Int("prompts", len(prompts)).Int("failed", len(failures)).Msg("promptgen: images deconstructed")
	return ps, failures, nil
}

func (s *Service) savePromptSet(ctx context.Context, filename string, prompts []string, source domain.PromptSetSource, userInput string) (*domain.PromptSet, error) {
	blob := []byte(strings.Join(prompts, "\n") + "\n")
	key, err := s.store.Write(ctx, "prompts/"+filename, blob)
	if err != nil {
		return nil, fmt.Errorf("store prompt file: %w", err)
	}
	sum := sha256.Sum256(blob)

	ps := &domain.PromptSet{
		ID:         uuid.NewString(),
		Filename:   filename,
		SHA256:     hex.EncodeToString(sum[:]),
		Path:       key,
		Source:     source,
		LineCount:  len(prompts),
		Status:     domain.PromptSetPending,
		UserInput:  userInput,
		UploadedAt: time.Now().UTC(),
	}
	if err := s.promptSets.Create(ctx, ps); err != nil {
		return nil, err
	}

	s.hub.Publish(events.PromptsFileAdded, map[string]any{
		"prompt_set_id": ps.ID,
		"filename":      ps.Filename,
		"source":        ps.Source,
		"line_count":    ps.LineCount,
	})
	s.hub.Publish(events.PromptQueueUpdated, map[string]any{"prompt_set_id": ps.ID, "status": ps.Status})
	return ps, nil
}

// ParseNumberedList extracts the payload of every numbered line in the
// model's response, dropping blanks, headers, and duplicate entries.
func ParseNumberedList(out string) []string {
	seen := make(map[string]struct{})
	var prompts []string
	for _, line := range strings.Split(out, "\n") {
		m := numberedLine.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		text := strings.TrimSpace(strings.Trim(strings.TrimSpace(m[1]), `"“”`))
		if text == "" {
			continue
		}
		lower := strings.ToLower(text)
		if _, dup := seen[lower]; dup {
			continue
		}
		seen[lower] = struct{}{}
		prompts = append(prompts, text)
	}
	return prompts
}
