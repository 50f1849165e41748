package main

import (
	"strings"
)

const (
	DefaultMaxRecommendations = 5
	DefaultMinReviewRating    = 4
	DefaultHistoryTurns       = 10
	DefaultReviewWorkers      = 3
)

// Fixed user-facing strings, matching the wording users already know.
const (
	MsgSystemFailure    = "抱歉，目前系統發生問題，請稍後再試。"
	MsgParseFailure     = "抱歉，系統無法解析您的請求，請稍後再試。"
	MsgModelFailure     = "抱歉，系統出現問題，請稍後再試。"
	MsgNoMatch          = "抱歉，沒有找到符合條件的餐廳。"
	MsgSummarizeFailure = "抱歉，目前系統暫時無法提供完整的推薦，請稍後再試。"

	ReplyHeader          = "為您推薦以下餐廳：\n"
	NoRatingPlaceholder  = "無評分"
	NoAddressPlaceholder = "無地址"

	// WellKnownTmpl takes the venue name; used when a venue has no usable reviews.
	WellKnownTmpl = "%s是一家知名餐廳，提供多樣化的美食，值得一試！"
)

// Intent is the structured result of running the extraction prompt over one
// user message. RecommendationNeeded is a pointer so a missing key fails
// validation instead of defaulting to false.
type Intent struct {
	Location             *string `json:"location"`
	Food                 *string `json:"food"`
	RecommendationNeeded *bool   `json:"recommendation_needed" validate:"required"`
	GuideMessage         *string `json:"guide_message"`
}

func (i *Intent) Needed() bool {
	return i.RecommendationNeeded != nil && *i.RecommendationNeeded
}

func (i *Intent) Guide() string {
	if i.GuideMessage == nil {
		return ""
	}

	return *i.GuideMessage
}

// Query builds the places search text: location and food joined by a space
// when both are present, whichever exists otherwise.
func (i *Intent) Query() string {
	var parts []string
	if i.Location != nil && *i.Location != "" {
		parts = append(parts, *i.Location)
	}
	if i.Food != nil && *i.Food != "" {
		parts = append(parts, *i.Food)
	}

	return strings.Join(parts, " ")
}

// Options carries the pipeline tuning knobs from config.
type Options struct {
	MaxRecommendations int
	MinReviewRating    int
	OnlyOpen           bool
	ReviewWorkers      int
	HistoryTurns       int
	Temperature        float64
}
