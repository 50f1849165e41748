package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrIntentParse marks model output that could not be decoded into an Intent.
var ErrIntentParse = errors.New("unparsable intent")

var (
	fenceRe  = regexp.MustCompile("```(json)?\n?")
	validate = validator.New()
)

// stripFences removes markdown code-fence wrapping the model tends to add
// around JSON output.
func stripFences(raw string) string {
	return strings.TrimSpace(fenceRe.ReplaceAllString(raw, ""))
}

// ParseIntent decodes the raw extraction completion into an Intent. It fails
// closed: malformed JSON, a wrongly typed field, or a missing
// recommendation_needed key all yield ErrIntentParse.
func ParseIntent(raw string) (*Intent, error) {
	cleaned := stripFences(raw)

	var intent Intent
	if err := json.Unmarshal([]byte(cleaned), &intent); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIntentParse, err)
	}

	if err := validate.Struct(&intent); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIntentParse, err)
	}

	return &intent, nil
}
