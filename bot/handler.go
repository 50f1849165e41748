package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/tmc/langchaingo/llms"
	"golang.org/x/sync/errgroup"

	"gourmet-linebot/models"
)

// PlacesSearcher is the places collaborator as seen by the pipeline.
type PlacesSearcher interface {
	SearchRestaurants(ctx context.Context, query string, limit int) ([]models.Venue, error)
	HighRatingReviews(ctx context.Context, placeID string, minRating int) ([]string, error)
}

// Handler runs one conversation turn: intent extraction, search, review
// summarization and reply formatting.
type Handler struct {
	llm     llms.Model
	places  PlacesSearcher
	history *HistoryStore
	opts    Options
}

func NewHandler(llm llms.Model, places PlacesSearcher, history *HistoryStore, opts Options) *Handler {
	if opts.MaxRecommendations <= 0 {
		opts.MaxRecommendations = DefaultMaxRecommendations
	}
	if opts.MinReviewRating <= 0 {
		opts.MinReviewRating = DefaultMinReviewRating
	}
	if opts.ReviewWorkers <= 0 {
		opts.ReviewWorkers = DefaultReviewWorkers
	}

	return &Handler{
		llm:     llm,
		places:  places,
		history: history,
		opts:    opts,
	}
}

// Respond turns one inbound user message into a reply string. Every failure
// path resolves to a fixed user-facing message; raw errors never reach the
// user.
func (h *Handler) Respond(ctx context.Context, userID, userInput string) string {
	log := slog.With("turn_id", uuid.NewString(), "user_id", userID)

	history, err := h.history.Recent(ctx, userID)
	if err != nil {
		// A lost history degrades context but not the turn itself.
		log.Error("failed to load conversation history", "error", err)
	}

	intent, err := h.ExtractIntent(ctx, history, userInput)
	if err != nil {
		if errors.Is(err, ErrIntentParse) {
			log.Error("failed to parse intent JSON", "error", err)
			turnsTotal.WithLabelValues("parse_failure").Inc()
			return MsgParseFailure
		}

		log.Error("intent extraction call failed", "error", err)
		turnsTotal.WithLabelValues("model_failure").Inc()
		return MsgModelFailure
	}

	var reply string
	if intent.Needed() {
		venues := h.searchAndEnrich(ctx, log, intent.Query())
		reply = h.recommend(ctx, log, venues)
		turnsTotal.WithLabelValues("recommendation").Inc()
	} else {
		reply = intent.Guide()
		turnsTotal.WithLabelValues("guide").Inc()
	}

	if err := h.history.AppendTurn(ctx, userID, userInput, reply); err != nil {
		log.Error("failed to append conversation history", "error", err)
	}

	return reply
}

// ExtractIntent asks the model to pull location/food/need fields out of the
// user text, with the prior conversation as context. Parse failures wrap
// ErrIntentParse; transport failures do not.
func (h *Handler) ExtractIntent(ctx context.Context, history []models.ConversationEntry, userInput string) (*Intent, error) {
	messages := make([]llms.MessageContent, 0, len(history)+2)
	messages = append(messages, llms.TextParts(llms.ChatMessageTypeSystem, ExtractSysPrompt))
	for _, entry := range history {
		messages = append(messages, llms.TextParts(llms.ChatMessageType(entry.Role), entry.Content))
	}
	messages = append(messages, llms.TextParts(llms.ChatMessageTypeHuman, userInput))

	content, err := h.llm.GenerateContent(ctx, messages, llms.WithTemperature(h.opts.Temperature))
	if err != nil {
		llmCallsTotal.WithLabelValues("extract", "error").Inc()
		return nil, fmt.Errorf("generate intent: %w", err)
	}
	llmCallsTotal.WithLabelValues("extract", "ok").Inc()

	if len(content.Choices) == 0 {
		return nil, fmt.Errorf("%w: model returned no choices", ErrIntentParse)
	}

	return ParseIntent(content.Choices[0].Content)
}

// searchAndEnrich runs the places search and attaches high-rating review texts
// to each venue. Any search failure yields no results; a review fetch failure
// leaves that one venue without reviews.
func (h *Handler) searchAndEnrich(ctx context.Context, log *slog.Logger, query string) []models.Venue {
	if query == "" {
		return nil
	}

	venues, err := h.places.SearchRestaurants(ctx, query, h.opts.MaxRecommendations)
	if err != nil {
		log.Error("places search failed", "query", query, "error", err)
		return nil
	}

	g := new(errgroup.Group)
	g.SetLimit(h.opts.ReviewWorkers)
	for i := range venues {
		if venues[i].PlaceID == "" {
			continue
		}

		g.Go(func() error {
			reviews, err := h.places.HighRatingReviews(ctx, venues[i].PlaceID, h.opts.MinReviewRating)
			if err != nil {
				log.Error("review fetch failed", "place_id", venues[i].PlaceID, "error", err)
				return nil
			}
			venues[i].Reviews = reviews

			return nil
		})
	}
	_ = g.Wait()

	return venues
}

// recommend filters the candidates, summarizes reviews for the retained
// venues and renders the reply.
func (h *Handler) recommend(ctx context.Context, log *slog.Logger, venues []models.Venue) string {
	picked := selectVenues(venues, h.opts.OnlyOpen, h.opts.MaxRecommendations)
	if len(picked) == 0 {
		return MsgNoMatch
	}

	summaries := make([]string, len(picked))

	g := new(errgroup.Group)
	g.SetLimit(h.opts.ReviewWorkers)
	for i := range picked {
		if len(picked[i].Reviews) == 0 {
			continue
		}

		g.Go(func() error {
			summaries[i] = h.SummarizeReviews(ctx, log, picked[i].Name, picked[i].Reviews)
			return nil
		})
	}
	_ = g.Wait()

	return buildReply(picked, summaries)
}

// SummarizeReviews turns a venue's review texts into a short recommendation
// blurb. An empty review list short-circuits to the generic fallback; a model
// failure degrades to a fixed apology for this venue only.
func (h *Handler) SummarizeReviews(ctx context.Context, log *slog.Logger, name string, reviews []string) string {
	if len(reviews) == 0 {
		return fmt.Sprintf(WellKnownTmpl, name)
	}

	prompt := fmt.Sprintf(SummarizePromptTmpl, strings.Join(reviews, "\n"))
	content, err := h.llm.GenerateContent(
		ctx,
		[]llms.MessageContent{llms.TextParts(llms.ChatMessageTypeHuman, prompt)},
		llms.WithTemperature(h.opts.Temperature),
	)
	if err != nil {
		llmCallsTotal.WithLabelValues("summarize", "error").Inc()
		log.Error("review summarization failed", "venue", name, "error", err)
		return MsgSummarizeFailure
	}
	llmCallsTotal.WithLabelValues("summarize", "ok").Inc()

	if len(content.Choices) == 0 {
		log.Error("review summarization returned no choices", "venue", name)
		return MsgSummarizeFailure
	}

	return strings.TrimSpace(content.Choices[0].Content)
}
