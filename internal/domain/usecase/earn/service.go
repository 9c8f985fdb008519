package earn

import (
	"context"
	"fmt"
	"time"

	"github.com/amirhossein-jamali/credits-ledger/internal/domain/entity"
	errs "github.com/amirhossein-jamali/credits-ledger/internal/domain/error"
	coreport "github.com/amirhossein-jamali/credits-ledger/internal/domain/port/core"
	"github.com/amirhossein-jamali/credits-ledger/internal/domain/port/usecase"
	"github.com/amirhossein-jamali/credits-ledger/internal/domain/usecase/fraud"
	"github.com/amirhossein-jamali/credits-ledger/internal/domain/usecase/ledger"
	"github.com/amirhossein-jamali/credits-ledger/internal/domain/usecase/txn"
)

// Service is the earn rate limiter: it decides whether an earn event is accepted,
// how much it is worth, and records it through the ledger in one transaction
type Service struct {
	runner       *txn.Runner
	ledger       *ledger.Ledger
	devices      *fraud.DeviceTracker
	flags        *fraud.Recorder
	gate         coreport.CompletionGate
	validator    *RequestValidator
	policy       entity.EconomyPolicy
	timeProvider coreport.TimeProvider
	logger       coreport.Logger
}

// NewService creates a new earn service
func NewService(
	runner *txn.Runner,
	ldg *ledger.Ledger,
	devices *fraud.DeviceTracker,
	flags *fraud.Recorder,
	gate coreport.CompletionGate,
	policy entity.EconomyPolicy,
	timeProvider coreport.TimeProvider,
	logger coreport.Logger,
) *Service {
	return &Service{
		runner:       runner,
		ledger:       ldg,
		devices:      devices,
		flags:        flags,
		gate:         gate,
		validator:    NewRequestValidator(),
		policy:       policy,
		timeProvider: timeProvider,
		logger:       logger,
	}
}

// decision carries the state computed inside the transaction
type decision struct {
	event      *entity.EarnEvent
	balance    entity.BalanceSnapshot
	today      entity.DailyEarnings
	streak     *entity.StreakSnapshot
	transition *entity.StreakTransition
}

// SubmitEarnEvent validates, rate-limits and credits a single earn event
func (s *Service) SubmitEarnEvent(ctx context.Context, userID uint64, req usecase.EarnRequest) (*usecase.EarnResult, error) {
	user, err := s.ledger.ActiveUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	earnType, err := entity.ParseEarnType(req.Type)
	if err != nil {
		return nil, err
	}
	if earnType == entity.EarnTypeLesson && req.QuizScore < s.policy.QuizPassScore {
		return nil, fmt.Errorf("%w: score %d, required %d", errs.ErrQuizNotPassed, req.QuizScore, s.policy.QuizPassScore)
	}

	now := s.timeProvider.Now()
	reviewRequired := false

	signal := s.observeDevice(ctx, userID, req.DeviceID)
	if signal.Blocked {
		return nil, errs.ErrDeviceBlocked
	}
	if signal.RiskScore >= s.policy.HighRiskDeviceScore {
		reviewRequired = true
	}

	if earnType == entity.EarnTypeCheckin && s.checkinGateHit(ctx, userID, now) {
		return nil, errs.ErrAlreadyCompleted
	}

	// Recomputed on every request so a user crossing a tier boundary mid-day is judged by the current tier
	tier := entity.ResolveTier(user.AccountAgeDays(now))
	if tier.ReviewRequired {
		reviewRequired = true
	}
	dailyCap := tier.DailyCap(s.policy.DailyCreditCap)
	amount := s.policy.RewardFor(earnType)

	var d decision
	err = s.runner.Run(ctx, func(ctx context.Context) error {
		d = decision{}
		return s.decide(ctx, user.ID, earnType, amount, dailyCap, req, now, &d)
	})
	if err != nil {
		s.logRejection(user.ID, earnType, err)
		return nil, err
	}

	adsToday := d.today.AdCount
	nonAdToday := d.today.NonAdTotal
	if earnType == entity.EarnTypeAdView {
		adsToday++
	} else {
		nonAdToday += amount
	}

	if earnType == entity.EarnTypeCheckin {
		s.markCheckin(ctx, user.ID, now)
	}

	if earnType == entity.EarnTypeAdView && adsToday > tier.MaxAdsPerDay {
		reviewRequired = true
		s.flags.Flag(entity.FraudFlag{
			UserID:   user.ID,
			DeviceID: req.DeviceID,
			FlagType: entity.FlagAdLimitExceeded,
			Severity: entity.SeverityMedium,
			Reason:   "ad views exceeded the tier allowance",
			Details: entity.FlagDetails{
				EarnType:     earnType,
				AdCount:      adsToday,
				MaxAdsPerDay: tier.MaxAdsPerDay,
				Tier:         tier.Name,
			},
		})
	} else if reviewRequired {
		flagType, severity := entity.FlagReviewRequired, entity.SeverityLow
		if signal.RiskScore >= s.policy.HighRiskDeviceScore {
			flagType, severity = entity.FlagHighRiskDevice, entity.SeverityHigh
		}
		s.flags.Flag(entity.FraudFlag{
			UserID:   user.ID,
			DeviceID: req.DeviceID,
			FlagType: flagType,
			Severity: severity,
			Reason:   "earn credited while under review",
			Details: entity.FlagDetails{
				EarnType:  earnType,
				Tier:      tier.Name,
				RiskScore: signal.RiskScore,
			},
		})
	}

	result := &usecase.EarnResult{
		EventID:          d.event.ID,
		Type:             earnType,
		Credited:         amount,
		Balance:          d.balance,
		Streak:           d.streak,
		Tier:             tier.Name,
		DailyCap:         dailyCap,
		NonAdEarnedToday: nonAdToday,
		AdsToday:         adsToday,
		ReviewRequired:   reviewRequired,
	}
	if d.transition != nil {
		result.SaverConsumed = d.transition.SaverConsumed
	}

	s.logger.Info("Earn event credited", map[string]any{
		"user_id":         user.ID,
		"type":            earnType,
		"amount":          amount,
		"balance":         d.balance.Current,
		"tier":            tier.Name,
		"review_required": reviewRequired,
	})
	return result, nil
}

// decide runs inside the transaction. The balance row lock is taken first so that
// every read below is serialized against concurrent requests of the same user.
func (s *Service) decide(
	ctx context.Context,
	userID uint64,
	earnType entity.EarnType,
	amount, dailyCap int64,
	req usecase.EarnRequest,
	now time.Time,
	d *decision,
) error {
	uow := s.runner.UnitOfWork()
	if _, err := s.ledger.Lock(ctx, userID); err != nil {
		return err
	}

	dayStart := entity.UTCDay(now)
	today, err := uow.GetEarnEventRepository(ctx).SummarizeRange(ctx, userID, dayStart, dayStart.Add(24*time.Hour))
	if err != nil {
		return err
	}
	d.today = today

	event := &entity.EarnEvent{
		Type:      earnType,
		DeviceID:  req.DeviceID,
		CreatedAt: now,
	}

	switch earnType {
	case entity.EarnTypeCheckin:
		streaks := uow.GetStreakRepository(ctx)
		streak, err := streaks.GetForUpdate(ctx, userID)
		if err != nil {
			return err
		}
		if streak.CheckedInOn(now) {
			return errs.ErrAlreadyCompleted
		}
		if err := checkDailyCap(userID, today, amount, dailyCap); err != nil {
			return err
		}
		transition, err := streak.CheckIn(now)
		if err != nil {
			return err
		}
		if err := streaks.Save(ctx, streak); err != nil {
			return err
		}
		event.Metadata.Checkin = &entity.CheckinDetails{
			StreakDay:     transition.Current,
			SaverConsumed: transition.SaverConsumed,
		}
		snap := streak.Snapshot()
		d.streak = &snap
		d.transition = &transition

	case entity.EarnTypeAdView:
		// ad views are exempt from the daily cap and from tier scaling
		exists, err := uow.GetEarnEventRepository(ctx).ExistsByToken(ctx, userID, req.IdempotencyToken)
		if err != nil {
			return err
		}
		if exists {
			return errs.NewDuplicateSubmissionError(userID, req.IdempotencyToken)
		}
		event.IdempotencyToken = req.IdempotencyToken
		event.Metadata.Ad = &entity.AdDetails{AdUnitID: req.AdUnitID, Network: req.AdNetwork}

	case entity.EarnTypeLesson:
		exists, err := uow.GetEarnEventRepository(ctx).ExistsByReference(ctx, userID, entity.EarnTypeLesson, req.ModuleID)
		if err != nil {
			return err
		}
		if exists {
			return fmt.Errorf("%w: lesson module %s", errs.ErrAlreadyCompleted, req.ModuleID)
		}
		if err := checkDailyCap(userID, today, amount, dailyCap); err != nil {
			return err
		}
		event.ReferenceID = req.ModuleID
		event.Metadata.Lesson = &entity.LessonDetails{ModuleID: req.ModuleID, QuizScore: req.QuizScore}
	}

	balance, err := s.ledger.Credit(ctx, userID, amount, event)
	if err != nil {
		return err
	}
	d.event = event
	d.balance = balance
	return nil
}

func checkDailyCap(userID uint64, today entity.DailyEarnings, amount, dailyCap int64) error {
	if today.NonAdTotal+amount > dailyCap {
		return errs.NewDailyCapError(userID, dailyCap, today.NonAdTotal, amount)
	}
	return nil
}

// observeDevice feeds the device tracker; tracking failures are logged and never block an earn
func (s *Service) observeDevice(ctx context.Context, userID uint64, deviceID string) entity.DeviceSignal {
	if deviceID == "" {
		return entity.DeviceSignal{}
	}
	signal, err := s.devices.Observe(ctx, userID, deviceID)
	if err != nil {
		s.logger.Warn("Device tracking failed", map[string]any{
			"user_id":   userID,
			"device_id": deviceID,
			"error":     err.Error(),
		})
		return entity.DeviceSignal{Fingerprint: deviceID}
	}
	return signal
}

// CheckinGateKey names the completion gate entry for a user's check-in on a UTC day
func CheckinGateKey(userID uint64, now time.Time) string {
	return fmt.Sprintf("checkin:%d:%s", userID, entity.UTCDay(now).Format(time.DateOnly))
}

func (s *Service) checkinGateHit(ctx context.Context, userID uint64, now time.Time) bool {
	if s.gate == nil {
		return false
	}
	_, ok, err := s.gate.DoneUntil(ctx, CheckinGateKey(userID, now))
	if err != nil {
		s.logger.Warn("Completion gate lookup failed", map[string]any{"user_id": userID, "error": err.Error()})
		return false
	}
	return ok
}

func (s *Service) markCheckin(ctx context.Context, userID uint64, now time.Time) {
	if s.gate == nil {
		return
	}
	until := entity.UTCDay(now).Add(24 * time.Hour)
	if err := s.gate.MarkDone(ctx, CheckinGateKey(userID, now), until); err != nil {
		s.logger.Warn("Completion gate update failed", map[string]any{"user_id": userID, "error": err.Error()})
	}
}

func (s *Service) logRejection(userID uint64, earnType entity.EarnType, err error) {
	fields := errs.LogFields(err)
	fields["user_id"] = userID
	fields["type"] = earnType
	if errs.KindOf(err) == errs.KindInternal || errs.KindOf(err) == errs.KindUnavailable {
		s.logger.Error("Earn event failed", fields)
		return
	}
	s.logger.Info("Earn event rejected", fields)
}
