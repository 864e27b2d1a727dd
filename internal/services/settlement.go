package services

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/splitcpg/splitcpg-backend/internal/clients/redis"
	"github.com/splitcpg/splitcpg-backend/internal/clients/stripe"
	"github.com/splitcpg/splitcpg-backend/internal/data/repos"
	"github.com/splitcpg/splitcpg-backend/internal/domain/aggregates"
	"github.com/splitcpg/splitcpg-backend/internal/observability"
	"github.com/splitcpg/splitcpg-backend/internal/pkg/dbctx"
	"github.com/splitcpg/splitcpg-backend/internal/platform/envutil"
	"github.com/splitcpg/splitcpg-backend/internal/platform/logger"
	"github.com/splitcpg/splitcpg-backend/internal/types"
)

const (
	metadataSplitKey   = "splitId"
	metadataCompanyKey = "companyId"
)

// PaymentSession is a checkout handed back to the client for redirect.
type PaymentSession struct {
	SessionID   string `json:"sessionId"`
	URL         string `json:"url"`
	AmountMinor int64  `json:"amountMinor"`
	FeeMinor    int64  `json:"feeMinor"`
	Currency    string `json:"currency"`
}

// PaymentRecord is one settled slot in a company's payment history.
type PaymentRecord struct {
	SplitID          uuid.UUID  `json:"splitId"`
	Title            string     `json:"title"`
	Type             string     `json:"type"`
	AmountMinor      int64      `json:"amountMinor"`
	PaidAt           *time.Time `json:"paidAt,omitempty"`
	PaymentReference string     `json:"paymentReference"`
}

// ConnectStatus reports a company's payout onboarding state.
type ConnectStatus struct {
	AccountID      string `json:"accountId,omitempty"`
	Onboarded      bool   `json:"onboarded"`
	ChargesEnabled bool   `json:"chargesEnabled"`
	PayoutsEnabled bool   `json:"payoutsEnabled"`
}

// SettlementService coordinates money movement around the split aggregate.
// The aggregate stays the sole authority on participant/slot state; this
// service only talks to the payment processor and feeds verified outcomes
// into ApplyPayment.
type SettlementService interface {
	InitiatePayment(ctx context.Context, splitID, companyID uuid.UUID) (*PaymentSession, error)
	ConfirmPayment(ctx context.Context, splitID, companyID uuid.UUID, sessionID string) (*types.Split, error)
	HandleWebhook(ctx context.Context, payload []byte, sigHeader string) error
	PaymentHistory(ctx context.Context, companyID uuid.UUID) ([]PaymentRecord, error)

	EnsureConnectAccount(ctx context.Context, companyID uuid.UUID, email string) (*ConnectStatus, error)
	OnboardingLink(ctx context.Context, companyID uuid.UUID) (string, error)
	DashboardLink(ctx context.Context, companyID uuid.UUID) (string, error)
	RefreshConnectStatus(ctx context.Context, companyID uuid.UUID) (*ConnectStatus, error)
}

type settlementService struct {
	log       *logger.Logger
	aggregate aggregates.SplitAggregate
	splits    repos.SplitRepo
	companies repos.CompanyRepo
	processor stripe.Client
	readiness redis.ReadinessCache

	appBaseURL    string
	webhookSecret string
	currency      string
	feeBasisPts   int64
}

func NewSettlementService(
	baseLog *logger.Logger,
	aggregate aggregates.SplitAggregate,
	splits repos.SplitRepo,
	companies repos.CompanyRepo,
	processor stripe.Client,
	readiness redis.ReadinessCache,
) SettlementService {
	return &settlementService{
		log:           baseLog.With("service", "SettlementService"),
		aggregate:     aggregate,
		splits:        splits,
		companies:     companies,
		processor:     processor,
		readiness:     readiness,
		appBaseURL:    strings.TrimRight(envutil.String("APP_BASE_URL", "http://localhost:3000"), "/"),
		webhookSecret: os.Getenv("STRIPE_WEBHOOK_SECRET"),
		currency:      envutil.String("PAYMENT_CURRENCY", "usd"),
		feeBasisPts:   int64(envutil.Int("PLATFORM_FEE_BPS", 250)),
	}
}

// platformFee rounds half-up on basis points of the slot amount.
func (s *settlementService) platformFee(amountMinor int64) int64 {
	return (amountMinor*s.feeBasisPts + 5000) / 10000
}

func (s *settlementService) loadSplit(ctx context.Context, op string, splitID uuid.UUID) (*types.Split, error) {
	split, err := s.splits.GetByID(dbctx.Context{Ctx: ctx}, splitID)
	if err != nil {
		return nil, aggregates.Wrap(aggregates.CodeInternal, op, err)
	}
	if split == nil {
		return nil, aggregates.NewReason(aggregates.CodeNotFound, op, aggregates.ReasonSplitNotFound, "split not found")
	}
	return split, nil
}

func (s *settlementService) InitiatePayment(ctx context.Context, splitID, companyID uuid.UUID) (*PaymentSession, error) {
	const op = "SettlementService.InitiatePayment"

	split, err := s.loadSplit(ctx, op, splitID)
	if err != nil {
		return nil, err
	}
	if split.Status != types.SplitStatusFull {
		return nil, aggregates.NewReason(aggregates.CodePreconditionFailed, op, aggregates.ReasonNotFull, "split is not full yet")
	}
	if companyID == split.OrganizerID {
		return nil, aggregates.NewReason(aggregates.CodePreconditionFailed, op, aggregates.ReasonOrganizerNotPayable, "organizer does not pay into their own split")
	}
	participants, err := split.ParticipantList()
	if err != nil {
		return nil, aggregates.Wrap(aggregates.CodeInternal, op, err)
	}
	participant := types.FindParticipant(participants, companyID)
	if participant == nil {
		return nil, aggregates.NewReason(aggregates.CodePreconditionFailed, op, aggregates.ReasonNotParticipant, "company is not a participant")
	}
	if participant.Paid {
		return nil, aggregates.NewReason(aggregates.CodePreconditionFailed, op, aggregates.ReasonAlreadyPaid, "participant has already paid")
	}

	organizer, accountID, err := s.payableOrganizer(ctx, op, split.OrganizerID)
	if err != nil {
		return nil, err
	}

	amount := split.CostPerSlot * 100
	fee := s.platformFee(amount)

	sess, err := s.processor.CreateCheckoutSession(ctx, stripe.CheckoutSessionInput{
		AmountMinor:         amount,
		Currency:            s.currency,
		ProductName:         split.Title,
		ProductDescription:  fmt.Sprintf("Slot in %q organized by %s", split.Title, organizer.Name),
		ApplicationFeeMinor: fee,
		DestinationAccount:  accountID,
		SuccessURL:          fmt.Sprintf("%s/splits/%s?payment=success&session_id={CHECKOUT_SESSION_ID}", s.appBaseURL, split.ID),
		CancelURL:           fmt.Sprintf("%s/splits/%s?payment=cancelled", s.appBaseURL, split.ID),
		Metadata: map[string]string{
			metadataSplitKey:   split.ID.String(),
			metadataCompanyKey: companyID.String(),
		},
	})
	if err != nil {
		if m := observability.Current(); m != nil {
			m.IncPaymentInitiated("error")
		}
		s.log.Error("checkout session creation failed", "splitId", split.ID, "companyId", companyID, "error", err)
		return nil, &aggregates.Error{
			Code:    aggregates.CodeInternal,
			Op:      op,
			Reason:  aggregates.ReasonPaymentInitiationFailed,
			Message: "could not start payment",
			Cause:   err,
		}
	}

	if m := observability.Current(); m != nil {
		m.IncPaymentInitiated("created")
	}
	s.log.Info("payment initiated", "splitId", split.ID, "companyId", companyID, "sessionId", sess.ID, "amountMinor", amount, "feeMinor", fee)
	return &PaymentSession{
		SessionID:   sess.ID,
		URL:         sess.URL,
		AmountMinor: amount,
		FeeMinor:    fee,
		Currency:    s.currency,
	}, nil
}

// payableOrganizer resolves the organizer's connected account and confirms it
// can receive transfers, consulting the readiness cache before the processor.
func (s *settlementService) payableOrganizer(ctx context.Context, op string, organizerID uuid.UUID) (*types.Company, string, error) {
	organizer, err := s.companies.GetByID(dbctx.Context{Ctx: ctx}, organizerID)
	if err != nil {
		return nil, "", aggregates.Wrap(aggregates.CodeInternal, op, err)
	}
	if organizer == nil || organizer.StripeConnectID == "" || !organizer.StripeOnboarded {
		return nil, "", aggregates.NewReason(aggregates.CodePreconditionFailed, op, aggregates.ReasonOrganizerNotReady, "organizer has not finished payout onboarding")
	}

	if s.readiness != nil {
		if ready, found, cacheErr := s.readiness.Get(ctx, organizerID); cacheErr != nil {
			s.log.Warn("readiness cache read failed", "companyId", organizerID, "error", cacheErr)
		} else if found {
			if !ready {
				return nil, "", aggregates.NewReason(aggregates.CodePreconditionFailed, op, aggregates.ReasonOrganizerNotReady, "organizer has not finished payout onboarding")
			}
			return organizer, organizer.StripeConnectID, nil
		}
	}

	account, err := s.processor.GetAccount(ctx, organizer.StripeConnectID)
	if err != nil {
		return nil, "", aggregates.Wrap(aggregates.CodeInternal, op, err)
	}
	ready := account.ChargesEnabled
	if s.readiness != nil {
		if cacheErr := s.readiness.Set(ctx, organizerID, ready); cacheErr != nil {
			s.log.Warn("readiness cache write failed", "companyId", organizerID, "error", cacheErr)
		}
	}
	if !ready {
		return nil, "", aggregates.NewReason(aggregates.CodePreconditionFailed, op, aggregates.ReasonOrganizerNotReady, "organizer account cannot accept charges yet")
	}
	return organizer, organizer.StripeConnectID, nil
}

func (s *settlementService) ConfirmPayment(ctx context.Context, splitID, companyID uuid.UUID, sessionID string) (*types.Split, error) {
	const op = "SettlementService.ConfirmPayment"

	if strings.TrimSpace(sessionID) == "" {
		return nil, aggregates.NewError(aggregates.CodeValidation, op, "sessionId is required", nil)
	}

	sess, err := s.processor.GetCheckoutSession(ctx, sessionID)
	if err != nil {
		if m := observability.Current(); m != nil {
			m.IncPaymentConfirmed("unverified")
		}
		return nil, &aggregates.Error{
			Code:    aggregates.CodePreconditionFailed,
			Op:      op,
			Reason:  aggregates.ReasonPaymentNotVerified,
			Message: "payment could not be verified",
			Cause:   err,
		}
	}
	if sess.PaymentStatus != "paid" {
		if m := observability.Current(); m != nil {
			m.IncPaymentConfirmed("unverified")
		}
		return nil, aggregates.NewReason(aggregates.CodePreconditionFailed, op, aggregates.ReasonPaymentNotVerified, "payment has not settled")
	}
	if sess.Metadata[metadataSplitKey] != splitID.String() || sess.Metadata[metadataCompanyKey] != companyID.String() {
		if m := observability.Current(); m != nil {
			m.IncPaymentConfirmed("unverified")
		}
		s.log.Warn("checkout session metadata mismatch", "splitId", splitID, "companyId", companyID, "sessionId", sessionID)
		return nil, aggregates.NewReason(aggregates.CodePreconditionFailed, op, aggregates.ReasonPaymentNotVerified, "payment does not belong to this split")
	}

	reference := sess.PaymentIntent
	if reference == "" {
		reference = sess.ID
	}

	split, err := s.aggregate.ApplyPayment(ctx, aggregates.ApplyPaymentInput{
		SplitID:          splitID,
		CompanyID:        companyID,
		PaymentReference: reference,
	})
	if err != nil {
		if m := observability.Current(); m != nil {
			m.IncPaymentConfirmed("rejected")
		}
		return nil, err
	}
	if m := observability.Current(); m != nil {
		m.IncPaymentConfirmed("applied")
	}
	return split, nil
}

// HandleWebhook applies processor notifications. Signature failures are
// returned to the caller; stale or unmatched confirmations are logged and
// swallowed so the processor does not redeliver them forever.
func (s *settlementService) HandleWebhook(ctx context.Context, payload []byte, sigHeader string) error {
	const op = "SettlementService.HandleWebhook"

	evt, err := stripe.ConstructEvent(payload, sigHeader, s.webhookSecret)
	if err != nil {
		if m := observability.Current(); m != nil {
			m.IncWebhookEvent("unknown", "invalid_signature")
		}
		return aggregates.NewError(aggregates.CodeValidation, op, "invalid webhook signature", err)
	}

	switch evt.Type {
	case "checkout.session.completed":
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(evt.Data, &sess); err != nil {
			return aggregates.Wrap(aggregates.CodeValidation, op, err)
		}
		if sess.PaymentStatus != "paid" {
			s.markWebhook(evt.Type, "ignored")
			return nil
		}
		reference := sess.PaymentIntent
		if reference == "" {
			reference = sess.ID
		}
		return s.applyWebhookPayment(ctx, evt.Type, sess.Metadata, reference)

	case "payment_intent.succeeded":
		var intent stripe.PaymentIntent
		if err := json.Unmarshal(evt.Data, &intent); err != nil {
			return aggregates.Wrap(aggregates.CodeValidation, op, err)
		}
		return s.applyWebhookPayment(ctx, evt.Type, intent.Metadata, intent.ID)

	case "payment_intent.payment_failed":
		var intent stripe.PaymentIntent
		if err := json.Unmarshal(evt.Data, &intent); err != nil {
			return aggregates.Wrap(aggregates.CodeValidation, op, err)
		}
		s.log.Warn("payment failed", "paymentIntent", intent.ID, "splitId", intent.Metadata[metadataSplitKey], "companyId", intent.Metadata[metadataCompanyKey])
		s.markWebhook(evt.Type, "failed")
		return nil

	default:
		s.markWebhook(evt.Type, "ignored")
		return nil
	}
}

func (s *settlementService) applyWebhookPayment(ctx context.Context, eventType string, metadata map[string]string, reference string) error {
	splitID, err1 := uuid.Parse(metadata[metadataSplitKey])
	companyID, err2 := uuid.Parse(metadata[metadataCompanyKey])
	if err1 != nil || err2 != nil {
		s.log.Warn("webhook payment without split metadata", "eventType", eventType, "reference", reference)
		s.markWebhook(eventType, "ignored")
		return nil
	}

	_, err := s.aggregate.ApplyPayment(ctx, aggregates.ApplyPaymentInput{
		SplitID:          splitID,
		CompanyID:        companyID,
		PaymentReference: reference,
	})
	switch {
	case err == nil:
		s.markWebhook(eventType, "applied")
		return nil
	case aggregates.IsCode(err, aggregates.CodeInternal) || aggregates.IsCode(err, aggregates.CodeRetryable):
		s.markWebhook(eventType, "error")
		return err
	default:
		// stale redelivery or a split that moved on; acknowledge so the
		// processor stops retrying
		s.log.Warn("ignoring stale webhook payment", "eventType", eventType, "splitId", splitID, "companyId", companyID, "reason", aggregates.ReasonOf(err))
		s.markWebhook(eventType, "stale")
		return nil
	}
}

func (s *settlementService) markWebhook(eventType, status string) {
	if m := observability.Current(); m != nil {
		m.IncWebhookEvent(eventType, status)
	}
}

func (s *settlementService) PaymentHistory(ctx context.Context, companyID uuid.UUID) ([]PaymentRecord, error) {
	const op = "SettlementService.PaymentHistory"

	splits, err := s.splits.List(dbctx.Context{Ctx: ctx}, repos.SplitFilter{Limit: 500})
	if err != nil {
		return nil, aggregates.Wrap(aggregates.CodeInternal, op, err)
	}

	records := []PaymentRecord{}
	for _, split := range splits {
		participants, err := split.ParticipantList()
		if err != nil {
			return nil, aggregates.Wrap(aggregates.CodeInternal, op, err)
		}
		p := types.FindParticipant(participants, companyID)
		if p == nil || !p.Paid {
			continue
		}
		records = append(records, PaymentRecord{
			SplitID:          split.ID,
			Title:            split.Title,
			Type:             split.Type,
			AmountMinor:      split.CostPerSlot * 100,
			PaidAt:           p.PaidAt,
			PaymentReference: p.PaymentReference,
		})
	}
	sort.Slice(records, func(i, j int) bool {
		ti, tj := records[i].PaidAt, records[j].PaidAt
		switch {
		case ti == nil:
			return false
		case tj == nil:
			return true
		default:
			return ti.After(*tj)
		}
	})
	return records, nil
}

func (s *settlementService) EnsureConnectAccount(ctx context.Context, companyID uuid.UUID, email string) (*ConnectStatus, error) {
	const op = "SettlementService.EnsureConnectAccount"

	company, err := s.loadCompany(ctx, op, companyID)
	if err != nil {
		return nil, err
	}
	if company.StripeConnectID != "" {
		return s.connectStatus(ctx, op, company)
	}

	account, err := s.processor.CreateAccount(ctx, email, company.Name)
	if err != nil {
		return nil, aggregates.Wrap(aggregates.CodeInternal, op, err)
	}
	if err := s.companies.Update(dbctx.Context{Ctx: ctx}, companyID, map[string]any{
		"stripe_connect_id": account.ID,
	}); err != nil {
		return nil, aggregates.Wrap(aggregates.CodeInternal, op, err)
	}
	s.log.Info("connect account created", "companyId", companyID, "accountId", account.ID)
	return &ConnectStatus{AccountID: account.ID}, nil
}

func (s *settlementService) OnboardingLink(ctx context.Context, companyID uuid.UUID) (string, error) {
	const op = "SettlementService.OnboardingLink"

	company, err := s.loadCompany(ctx, op, companyID)
	if err != nil {
		return "", err
	}
	if company.StripeConnectID == "" {
		return "", aggregates.NewReason(aggregates.CodePreconditionFailed, op, aggregates.ReasonOrganizerNotReady, "no payout account yet")
	}
	link, err := s.processor.CreateAccountLink(ctx,
		company.StripeConnectID,
		s.appBaseURL+"/settings/payments?connect=return",
		s.appBaseURL+"/settings/payments?connect=refresh",
	)
	if err != nil {
		return "", aggregates.Wrap(aggregates.CodeInternal, op, err)
	}
	return link, nil
}

func (s *settlementService) DashboardLink(ctx context.Context, companyID uuid.UUID) (string, error) {
	const op = "SettlementService.DashboardLink"

	company, err := s.loadCompany(ctx, op, companyID)
	if err != nil {
		return "", err
	}
	if company.StripeConnectID == "" || !company.StripeOnboarded {
		return "", aggregates.NewReason(aggregates.CodePreconditionFailed, op, aggregates.ReasonOrganizerNotReady, "payout onboarding is not finished")
	}
	link, err := s.processor.CreateLoginLink(ctx, company.StripeConnectID)
	if err != nil {
		return "", aggregates.Wrap(aggregates.CodeInternal, op, err)
	}
	return link, nil
}

func (s *settlementService) RefreshConnectStatus(ctx context.Context, companyID uuid.UUID) (*ConnectStatus, error) {
	const op = "SettlementService.RefreshConnectStatus"

	company, err := s.loadCompany(ctx, op, companyID)
	if err != nil {
		return nil, err
	}
	return s.connectStatus(ctx, op, company)
}

func (s *settlementService) connectStatus(ctx context.Context, op string, company *types.Company) (*ConnectStatus, error) {
	if company.StripeConnectID == "" {
		return &ConnectStatus{}, nil
	}
	account, err := s.processor.GetAccount(ctx, company.StripeConnectID)
	if err != nil {
		return nil, aggregates.Wrap(aggregates.CodeInternal, op, err)
	}
	onboarded := account.ChargesEnabled && account.PayoutsEnabled
	if onboarded != company.StripeOnboarded {
		if err := s.companies.Update(dbctx.Context{Ctx: ctx}, company.ID, map[string]any{
			"stripe_onboarded": onboarded,
		}); err != nil {
			return nil, aggregates.Wrap(aggregates.CodeInternal, op, err)
		}
	}
	if s.readiness != nil {
		if cacheErr := s.readiness.Set(ctx, company.ID, onboarded && account.ChargesEnabled); cacheErr != nil {
			s.log.Warn("readiness cache write failed", "companyId", company.ID, "error", cacheErr)
		}
	}
	return &ConnectStatus{
		AccountID:      account.ID,
		Onboarded:      onboarded,
		ChargesEnabled: account.ChargesEnabled,
		PayoutsEnabled: account.PayoutsEnabled,
	}, nil
}

func (s *settlementService) loadCompany(ctx context.Context, op string, companyID uuid.UUID) (*types.Company, error) {
	company, err := s.companies.GetByID(dbctx.Context{Ctx: ctx}, companyID)
	if err != nil {
		return nil, aggregates.Wrap(aggregates.CodeInternal, op, err)
	}
	if company == nil {
		return nil, aggregates.NewError(aggregates.CodeNotFound, op, "company not found", nil)
	}
	return company, nil
}
