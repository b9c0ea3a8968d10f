package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"regexp"
	"strconv"
	"strings"
	"time"

	"compass/internal/models/itinerary"
	"compass/pkg/utils"
)

const (
	// Inputs above this size go through the weekly chunking path; one model
	// call cannot reliably emit a multi-week document in full.
	singleShotMaxChars = 6000

	minWeeks = 1
	maxWeeks = 12

	defaultCallTimeout = 45 * time.Second
	singleShotRetries  = 2
)

type ConversionServiceInterface interface {
	ConvertItinerary(ctx context.Context, itineraryText string) (*itinerary.StructuredItinerary, error)
}

// ConversionService drives raw trip narrative through prompt -> model ->
// extraction -> validation, chunking week by week when the input is large.
type ConversionService struct {
	llm       utils.LLMClientInterface
	prompts   *PromptBuilder
	validator *ItineraryValidator

	callTimeout time.Duration
	sleep       func(context.Context, time.Duration) error
}

func NewConversionService(llm utils.LLMClientInterface, prompts *PromptBuilder, validator *ItineraryValidator) *ConversionService {
	return &ConversionService{
		llm:         llm,
		prompts:     prompts,
		validator:   validator,
		callTimeout: defaultCallTimeout,
		sleep:       sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (s *ConversionService) ConvertItinerary(ctx context.Context, itineraryText string) (*itinerary.StructuredItinerary, error) {
	if strings.TrimSpace(itineraryText) == "" {
		return nil, utils.ErrInvalidInput
	}

	if len(itineraryText) <= singleShotMaxChars {
		return s.convertSingleShot(ctx, itineraryText)
	}
	return s.convertChunked(ctx, itineraryText)
}

// convertSingleShot is the short-trip path. It is the only flow that retries
// internally: up to two extra attempts with doubling backoff. Quota
// exhaustion and cancellation are never retried.
func (s *ConversionService) convertSingleShot(ctx context.Context, itineraryText string) (*itinerary.StructuredItinerary, error) {
	prompt := s.prompts.BuildConversionPrompt(itineraryText)

	var lastErr error
	for attempt := 0; attempt <= singleShotRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(1<<attempt) * time.Second
			log.Printf("Conversion attempt %d failed (%v), retrying in %s", attempt, lastErr, backoff)
			if err := s.sleep(ctx, backoff); err != nil {
				return nil, err
			}
		}

		doc, err := s.runExtraction(ctx, prompt, func(raw map[string]any) (*itinerary.StructuredItinerary, error) {
			return s.validator.Normalize(raw)
		})
		if err == nil {
			return doc, nil
		}
		lastErr = err

		// Quota exhaustion is surfaced to the user, not hammered with
		// retries; cancellation ends the attempt loop immediately.
		if ctx.Err() != nil || errors.Is(err, utils.ErrQuotaExceeded) {
			return nil, err
		}
	}
	return nil, lastErr
}

// convertChunked handles multi-week trips: one duration-analysis call, then
// one extraction cycle per week, strictly sequential. Each chunk's day
// numbering continues from the previous one; results merge into a single
// document. Any week failing aborts the whole conversion with progress
// context, so a partial result is never mistaken for a complete one.
func (s *ConversionService) convertChunked(ctx context.Context, itineraryText string) (*itinerary.StructuredItinerary, error) {
	totalWeeks, err := s.analyzeDuration(ctx, itineraryText)
	if err != nil {
		return nil, err
	}
	log.Printf("Chunked conversion: %d week(s)", totalWeeks)

	final := &itinerary.StructuredItinerary{}

	// One counter for the whole conversion: synthesized ids must not restart
	// per week, or the merged document would carry colliding ids.
	ids := NewIDCounter()

	for week := 1; week <= totalWeeks; week++ {
		prompt := s.prompts.BuildWeeklyChunkPrompt(itineraryText, week, totalWeeks)

		fragment, err := s.runExtraction(ctx, prompt, func(raw map[string]any) (*itinerary.StructuredItinerary, error) {
			return s.validator.NormalizeFragment(raw, week, ids)
		})
		if err != nil {
			return nil, &utils.ConversionError{CompletedWeeks: week - 1, TotalWeeks: totalWeeks, Err: err}
		}

		if week == 1 {
			final.Title = fragment.Title
			final.Summary = fragment.Summary
			final.Destination = fragment.Destination
			final.Duration = fragment.Duration
			final.NumberOfTravelers = fragment.NumberOfTravelers
		}
		final.Schedule = append(final.Schedule, fragment.Schedule...)
		final.Checklist = append(final.Checklist, fragment.Checklist...)
		final.MapPins = append(final.MapPins, fragment.MapPins...)
	}

	// The model owns the continue-numbering contract; a merged document that
	// violates it fails loudly rather than being silently renumbered, since
	// renumbering would desync days from their dates.
	if err := ValidateContiguousDays(final.Schedule); err != nil {
		return nil, &utils.ConversionError{CompletedWeeks: totalWeeks, TotalWeeks: totalWeeks, Err: err}
	}
	if err := ValidateUniqueIDs(final); err != nil {
		return nil, &utils.ConversionError{CompletedWeeks: totalWeeks, TotalWeeks: totalWeeks, Err: err}
	}

	return final, nil
}

var integerRe = regexp.MustCompile(`-?\d+`)

func (s *ConversionService) analyzeDuration(ctx context.Context, itineraryText string) (int, error) {
	prompt := s.prompts.BuildDurationPrompt(itineraryText)

	raw, err := s.callModel(ctx, prompt)
	if err != nil {
		return 0, err
	}

	match := integerRe.FindString(raw)
	if match == "" {
		return 0, &utils.ParsingError{Reason: "duration analysis returned no integer", RawText: raw}
	}
	weeks, err := strconv.Atoi(match)
	if err != nil {
		return 0, &utils.ParsingError{Reason: "duration analysis returned a malformed integer", RawText: raw}
	}
	if weeks < minWeeks || weeks > maxWeeks {
		return 0, &utils.ValidationError{
			Field:  "weeks",
			Reason: fmt.Sprintf("duration analysis returned %d, outside [%d,%d]", weeks, minWeeks, maxWeeks),
		}
	}
	return weeks, nil
}

// runExtraction is one prompt -> model -> extract -> validate cycle.
func (s *ConversionService) runExtraction(
	ctx context.Context,
	prompt string,
	validate func(map[string]any) (*itinerary.StructuredItinerary, error),
) (*itinerary.StructuredItinerary, error) {
	raw, err := s.callModel(ctx, prompt)
	if err != nil {
		return nil, err
	}

	cleaned, err := utils.ExtractJSONObject(raw)
	if err != nil {
		return nil, err
	}

	var parsed map[string]any
	if err := json.Unmarshal([]byte(cleaned), &parsed); err != nil {
		return nil, &utils.ParsingError{Reason: err.Error(), RawText: raw}
	}

	return validate(parsed)
}

func (s *ConversionService) callModel(ctx context.Context, prompt string) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, s.callTimeout)
	defer cancel()
	return s.llm.GenerateText(callCtx, prompt, utils.ExtractionParams())
}
