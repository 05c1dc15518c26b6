package usecase

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/arenadeck/deckscout/internal/domain"
	"github.com/arenadeck/deckscout/internal/jobs"
	"github.com/arenadeck/deckscout/internal/publisher"
	"github.com/arenadeck/deckscout/internal/repository"
	"github.com/arenadeck/deckscout/internal/scorer"
)

// Scorer abstracts the external scorer subprocess.
type Scorer interface {
	Invoke(ctx context.Context, req *scorer.Request, deadline time.Duration) ([]string, error)
}

// CardPool abstracts the cached card catalog.
type CardPool interface {
	GetCardsBySetCode(ctx context.Context, code string) ([]domain.CardSummary, error)
}

// RecommendUsecase runs one recommendation pipeline pass: deck lookup,
// color validation, set resolution, card pool fetch, scorer invocation.
// It owns no state of its own.
type RecommendUsecase struct {
	decks    repository.DeckRepository
	sets     repository.SetRepository
	cards    CardPool
	scorer   Scorer
	deadline time.Duration
	logger   *zap.Logger
}

// NewRecommendUsecase creates the recommendation pipeline. The deadline
// bounds each scorer invocation.
func NewRecommendUsecase(
	decks repository.DeckRepository,
	sets repository.SetRepository,
	cards CardPool,
	sc Scorer,
	deadline time.Duration,
	logger *zap.Logger,
) *RecommendUsecase {
	return &RecommendUsecase{
		decks:    decks,
		sets:     sets,
		cards:    cards,
		scorer:   sc,
		deadline: deadline,
		logger:   logger,
	}
}

// Execute returns the scorer's recommended card names for the deck, in rank
// order. The scorer's ordering is authoritative; it is returned untouched.
func (uc *RecommendUsecase) Execute(ctx context.Context, deckID int) ([]string, error) {
	start := time.Now()

	deck, err := uc.decks.GetByID(ctx, deckID)
	if err != nil {
		return nil, err
	}

	// Color pair validation happens before touching the cache or scorer.
	profile, err := domain.NewColorProfile(deck.Identity)
	if err != nil {
		return nil, err
	}

	set, err := uc.sets.GetByID(ctx, deck.SetID)
	if err != nil {
		return nil, err
	}

	cards, err := uc.cards.GetCardsBySetCode(ctx, set.Code)
	if err != nil {
		uc.logFailure("Card pool fetch failed", deckID, set.Code, start, err)
		return nil, err
	}

	req := &scorer.Request{
		Cards:          cards,
		PrimaryColor:   string(profile.Primary),
		SecondaryColor: string(profile.Secondary),
	}

	names, err := uc.scorer.Invoke(ctx, req, uc.deadline)
	if err != nil {
		uc.logFailure("Scorer invocation failed", deckID, set.Code, start, err)
		return nil, err
	}

	uc.logger.Info("Recommendation computed",
		zap.Int("deck_id", deckID),
		zap.String("set_code", set.Code),
		zap.Int("cards_in", len(cards)),
		zap.Int("cards_out", len(names)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return names, nil
}

// logFailure records upstream and scorer failures with full context.
// Cancellations are expected outcomes and produce no error log.
func (uc *RecommendUsecase) logFailure(msg string, deckID int, setCode string, start time.Time, err error) {
	if errors.Is(err, domain.ErrJobCancelled) || errors.Is(err, context.Canceled) {
		return
	}
	uc.logger.Error(msg,
		zap.Int("deck_id", deckID),
		zap.String("set_code", setCode),
		zap.Duration("elapsed", time.Since(start)),
		zap.Error(err),
	)
}

// RecommendationService is the caller-facing surface: asynchronous
// submission with per-principal supersession, cancellation, result lookup.
type RecommendationService struct {
	registry  *jobs.Registry
	recommend *RecommendUsecase
	results   repository.ResultStore
	events    publisher.Publisher
	logger    *zap.Logger
}

// NewRecommendationService wires the pipeline to the job registry. results
// and events may be nil when those integrations are disabled.
func NewRecommendationService(
	registry *jobs.Registry,
	recommend *RecommendUsecase,
	results repository.ResultStore,
	events publisher.Publisher,
	logger *zap.Logger,
) *RecommendationService {
	return &RecommendationService{
		registry:  registry,
		recommend: recommend,
		results:   results,
		events:    events,
		logger:    logger,
	}
}

// SubmitRecommendation starts a recommendation job for the principal,
// cancelling any job already running for them.
func (s *RecommendationService) SubmitRecommendation(principal string, deckID int) *jobs.Handle {
	h := s.registry.Submit(principal, func(ctx context.Context) ([]string, error) {
		return s.recommend.Execute(ctx, deckID)
	})

	go s.afterDone(h, principal, deckID)
	return h
}

// CancelRecommendation cancels the principal's live job, if any.
func (s *RecommendationService) CancelRecommendation(principal string) {
	s.registry.Cancel(principal)
}

// LatestResult returns the principal's last completed recommendation.
func (s *RecommendationService) LatestResult(ctx context.Context, principal string) (*domain.RecommendationResult, error) {
	if s.results == nil {
		return nil, domain.ErrNoResult
	}
	return s.results.Get(ctx, principal)
}

// LiveJob returns the principal's in-flight job handle.
func (s *RecommendationService) LiveJob(principal string) (*jobs.Handle, bool) {
	return s.registry.Lookup(principal)
}

// afterDone stores the result and publishes a lifecycle event once the job
// reaches a terminal state.
func (s *RecommendationService) afterDone(h *jobs.Handle, principal string, deckID int) {
	<-h.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cards, err := h.Wait(ctx)
	status := h.Status()
	finished := time.Now().UTC()

	if status == domain.StatusSucceeded && s.results != nil {
		result := &domain.RecommendationResult{
			DeckID:     deckID,
			Cards:      cards,
			FinishedAt: finished,
		}
		if serr := s.results.Save(ctx, principal, result); serr != nil {
			s.logger.Warn("Failed to store recommendation result",
				zap.String("principal", principal),
				zap.Error(serr),
			)
		}
	}

	if s.events == nil {
		return
	}
	event := &domain.RecommendationEvent{
		JobID:      h.ID,
		Principal:  principal,
		DeckID:     deckID,
		Status:     status,
		Cards:      cards,
		FinishedAt: finished,
	}
	if err != nil {
		event.Error = err.Error()
	}
	if perr := s.events.PublishEvent(ctx, event); perr != nil {
		s.logger.Warn("Failed to publish recommendation event",
			zap.String("principal", principal),
			zap.Error(perr),
		)
	}
}
