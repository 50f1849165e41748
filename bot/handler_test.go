package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"

	"gourmet-linebot/models"
)

type fakeLLM struct {
	mu        sync.Mutex
	responses []string
	err       error
	calls     [][]llms.MessageContent
}

func (f *fakeLLM) GenerateContent(_ context.Context, messages []llms.MessageContent, _ ...llms.CallOption) (*llms.ContentResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, messages)
	if f.err != nil {
		return nil, f.err
	}

	resp := f.responses[0]
	if len(f.responses) > 1 {
		f.responses = f.responses[1:]
	}

	return &llms.ContentResponse{
		Choices: []*llms.ContentChoice{{Content: resp}},
	}, nil
}

func (f *fakeLLM) Call(_ context.Context, _ string, _ ...llms.CallOption) (string, error) {
	return "", errors.New("not implemented")
}

type fakePlaces struct {
	mu         sync.Mutex
	venues     []models.Venue
	searchErr  error
	reviews    map[string][]string
	reviewsErr map[string]error
	queries    []string
}

func (f *fakePlaces) SearchRestaurants(_ context.Context, query string, limit int) ([]models.Venue, error) {
	f.mu.Lock()
	f.queries = append(f.queries, query)
	f.mu.Unlock()

	if f.searchErr != nil {
		return nil, f.searchErr
	}

	venues := f.venues
	if len(venues) > limit {
		venues = venues[:limit]
	}

	return venues, nil
}

func (f *fakePlaces) HighRatingReviews(_ context.Context, placeID string, _ int) ([]string, error) {
	if err := f.reviewsErr[placeID]; err != nil {
		return nil, err
	}

	return f.reviews[placeID], nil
}

func newTestHandler(t *testing.T, llm llms.Model, places PlacesSearcher) (*Handler, *HistoryStore) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	history := NewHistoryStore(client, 10, time.Hour)
	handler := NewHandler(llm, places, history, Options{
		MaxRecommendations: 5,
		MinReviewRating:    4,
		ReviewWorkers:      2,
	})

	return handler, history
}

const extractBanqiaoJSON = "```json\n{\"location\": \"板橋\", \"food\": \"燒肉\", \"recommendation_needed\": true, \"guide_message\": null}\n```"

func TestRespond_GuideBranch(t *testing.T) {
	guide := "您好！想找哪個地區的美食呢？"
	llm := &fakeLLM{responses: []string{
		fmt.Sprintf(`{"location": null, "food": null, "recommendation_needed": false, "guide_message": %q}`, guide),
	}}
	places := &fakePlaces{}
	handler, history := newTestHandler(t, llm, places)

	reply := handler.Respond(context.Background(), "U1", "你好")

	assert.Equal(t, guide, reply)
	assert.Empty(t, places.queries, "guide branch must not issue a search")

	entries, err := history.Recent(context.Background(), "U1")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "你好", entries[0].Content)
	assert.Equal(t, guide, entries[1].Content)
}

func TestRespond_NullGuideMessageBecomesEmpty(t *testing.T) {
	llm := &fakeLLM{responses: []string{
		`{"location": null, "food": null, "recommendation_needed": false, "guide_message": null}`,
	}}
	handler, _ := newTestHandler(t, llm, &fakePlaces{})

	reply := handler.Respond(context.Background(), "U1", "嗯")

	assert.Equal(t, "", reply)
}

func TestRespond_RecommendationFlow(t *testing.T) {
	summary := "炭火直烤香氣十足，必點牛五花，服務也親切！"
	llm := &fakeLLM{responses: []string{extractBanqiaoJSON, summary}}

	venue := operationalVenue("板橋燒肉屋")
	places := &fakePlaces{
		venues:  []models.Venue{venue},
		reviews: map[string][]string{venue.PlaceID: {"超好吃", "cp值高"}},
	}
	handler, history := newTestHandler(t, llm, places)

	reply := handler.Respond(context.Background(), "U1", "推薦板橋的燒肉店")

	require.Len(t, places.queries, 1)
	assert.Equal(t, "板橋 燒肉", places.queries[0])
	assert.Contains(t, reply, ReplyHeader)
	assert.Contains(t, reply, "1. 板橋燒肉屋")
	assert.Contains(t, reply, "   - 推薦: "+summary)

	entries, err := history.Recent(context.Background(), "U1")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, reply, entries[1].Content)
}

func TestRespond_LocationOnlyQuery(t *testing.T) {
	llm := &fakeLLM{responses: []string{
		`{"location": "板橋", "food": null, "recommendation_needed": true, "guide_message": null}`,
	}}
	places := &fakePlaces{}
	handler, _ := newTestHandler(t, llm, places)

	handler.Respond(context.Background(), "U1", "板橋有什麼好吃的")

	require.Len(t, places.queries, 1)
	assert.Equal(t, "板橋", places.queries[0])
}

func TestRespond_MalformedIntentJSON(t *testing.T) {
	llm := &fakeLLM{responses: []string{"我覺得你想吃燒肉"}}
	handler, history := newTestHandler(t, llm, &fakePlaces{})

	reply := handler.Respond(context.Background(), "U1", "推薦板橋的燒肉店")

	assert.Equal(t, MsgParseFailure, reply)

	entries, err := history.Recent(context.Background(), "U1")
	require.NoError(t, err)
	assert.Empty(t, entries, "failed turns are not remembered")
}

func TestRespond_ExtractionCallFailure(t *testing.T) {
	llm := &fakeLLM{err: errors.New("quota exceeded")}
	handler, history := newTestHandler(t, llm, &fakePlaces{})

	reply := handler.Respond(context.Background(), "U1", "推薦板橋的燒肉店")

	assert.Equal(t, MsgModelFailure, reply)

	entries, err := history.Recent(context.Background(), "U1")
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRespond_SearchFailureIsNoMatch(t *testing.T) {
	llm := &fakeLLM{responses: []string{extractBanqiaoJSON}}
	places := &fakePlaces{searchErr: errors.New("REQUEST_DENIED")}
	handler, history := newTestHandler(t, llm, places)

	reply := handler.Respond(context.Background(), "U1", "推薦板橋的燒肉店")

	assert.Equal(t, MsgNoMatch, reply)

	entries, err := history.Recent(context.Background(), "U1")
	require.NoError(t, err)
	assert.Len(t, entries, 2, "the no-match reply is still the turn's reply")
}

func TestRespond_NoOperationalVenues(t *testing.T) {
	llm := &fakeLLM{responses: []string{extractBanqiaoJSON}}
	places := &fakePlaces{venues: []models.Venue{
		{PlaceID: "p1", Name: "倒了", BusinessStatus: "CLOSED_PERMANENTLY"},
	}}
	handler, _ := newTestHandler(t, llm, places)

	reply := handler.Respond(context.Background(), "U1", "推薦板橋的燒肉店")

	assert.Equal(t, MsgNoMatch, reply)
}

func TestRespond_ReviewFetchFailureIsolated(t *testing.T) {
	summary := "湯頭濃郁，叉燒入口即化，推薦特製拉麵！"
	llm := &fakeLLM{responses: []string{extractBanqiaoJSON, summary}}

	good := operationalVenue("拉麵店")
	broken := operationalVenue("燒肉屋")
	places := &fakePlaces{
		venues:     []models.Venue{broken, good},
		reviews:    map[string][]string{good.PlaceID: {"湯頭讚"}},
		reviewsErr: map[string]error{broken.PlaceID: errors.New("OVER_QUERY_LIMIT")},
	}
	handler, _ := newTestHandler(t, llm, places)

	reply := handler.Respond(context.Background(), "U1", "推薦板橋的燒肉店")

	assert.Contains(t, reply, "1. 燒肉屋")
	assert.Contains(t, reply, "2. 拉麵店")
	assert.Contains(t, reply, "   - 推薦: "+summary)
	// the venue whose review fetch failed is listed without a recommendation line
	assert.NotContains(t, reply, "1. 燒肉屋\n   - 推薦:")
}

func TestExtractIntent_IncludesHistory(t *testing.T) {
	llm := &fakeLLM{responses: []string{extractBanqiaoJSON}}
	handler, _ := newTestHandler(t, llm, &fakePlaces{})

	history := []models.ConversationEntry{
		{Role: RoleHuman, Content: "你好"},
		{Role: RoleAI, Content: "您好！想找什麼美食呢？"},
	}

	_, err := handler.ExtractIntent(context.Background(), history, "推薦板橋的燒肉店")
	require.NoError(t, err)

	require.Len(t, llm.calls, 1)
	messages := llm.calls[0]
	require.Len(t, messages, 4)
	assert.Equal(t, llms.ChatMessageTypeSystem, messages[0].Role)
	assert.Equal(t, llms.ChatMessageTypeHuman, messages[1].Role)
	assert.Equal(t, llms.ChatMessageTypeAI, messages[2].Role)
	assert.Equal(t, llms.ChatMessageTypeHuman, messages[3].Role)
}

func TestSummarizeReviews_EmptyListSkipsModel(t *testing.T) {
	llm := &fakeLLM{err: errors.New("must not be called")}
	handler, _ := newTestHandler(t, llm, &fakePlaces{})

	got := handler.SummarizeReviews(context.Background(), slog.Default(), "燒肉屋", nil)

	assert.Equal(t, fmt.Sprintf(WellKnownTmpl, "燒肉屋"), got)
	assert.Empty(t, llm.calls)
}

func TestSummarizeReviews_ModelFailure(t *testing.T) {
	llm := &fakeLLM{err: errors.New("timeout")}
	handler, _ := newTestHandler(t, llm, &fakePlaces{})

	got := handler.SummarizeReviews(context.Background(), slog.Default(), "燒肉屋", []string{"好吃"})

	assert.Equal(t, MsgSummarizeFailure, got)
}

func TestSummarizeReviews_JoinsReviews(t *testing.T) {
	llm := &fakeLLM{responses: []string{" 推薦文字 "}}
	handler, _ := newTestHandler(t, llm, &fakePlaces{})

	got := handler.SummarizeReviews(context.Background(), slog.Default(), "燒肉屋", []string{"好吃", "服務好"})

	assert.Equal(t, "推薦文字", got)
	require.Len(t, llm.calls, 1)

	prompt := llm.calls[0][0]
	text, ok := prompt.Parts[0].(llms.TextContent)
	require.True(t, ok)
	assert.Contains(t, text.Text, "好吃\n服務好")
}
