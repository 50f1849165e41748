package main

import (
	"fmt"
	"strconv"
	"strings"

	"gourmet-linebot/models"
)

// selectVenues filters candidates in search order: venues that are not
// operational are always dropped, closed venues are dropped when onlyOpen is
// set, and at most max venues are kept.
func selectVenues(venues []models.Venue, onlyOpen bool, max int) []models.Venue {
	var picked []models.Venue
	for _, venue := range venues {
		if !venue.Operational() {
			continue
		}
		if onlyOpen && (venue.OpenNow == nil || !*venue.OpenNow) {
			continue
		}

		picked = append(picked, venue)
		if len(picked) == max {
			break
		}
	}

	return picked
}

// buildReply renders the recommendation text. summaries is parallel to venues;
// an empty summary means the venue had no usable reviews and gets no 推薦 line.
func buildReply(venues []models.Venue, summaries []string) string {
	if len(venues) == 0 {
		return MsgNoMatch
	}

	var b strings.Builder
	b.WriteString(ReplyHeader)

	for i, venue := range venues {
		rating := NoRatingPlaceholder
		if venue.Rating > 0 {
			rating = strconv.FormatFloat(venue.Rating, 'f', -1, 64)
		}
		address := venue.Address
		if address == "" {
			address = NoAddressPlaceholder
		}

		b.WriteString(fmt.Sprintf("%d. %s\n", i+1, venue.Name))
		b.WriteString(fmt.Sprintf("   - 評分: %s 分\n", rating))
		b.WriteString(fmt.Sprintf("   - 地址: %s\n", address))

		if summaries[i] != "" {
			b.WriteString(fmt.Sprintf("   - 推薦: %s\n\n", summaries[i]))
		}
	}

	return b.String()
}
