package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/99minutos/parcel-portal/internal/core/domain"
	"github.com/99minutos/parcel-portal/internal/core/ports"
	"github.com/99minutos/parcel-portal/internal/metrics"
)

const maxListLimit = 50

type ParcelRequestService struct {
	repo   ports.ParcelRequestRepository
	dedup  ports.SubmissionDedup
	logger zerolog.Logger
	now    func() time.Time
}

func NewParcelRequestService(repo ports.ParcelRequestRepository, dedup ports.SubmissionDedup, logger zerolog.Logger) *ParcelRequestService {
	return &ParcelRequestService{repo: repo, dedup: dedup, logger: logger, now: time.Now}
}

// Submit validates draft on behalf of ownerID and stores it. It returns false
// without an error when the draft is not acceptable: unparseable or
// non-positive amounts, a deadline in the past, or a repeat of a draft the
// same owner submitted recently.
func (s *ParcelRequestService) Submit(ctx context.Context, ownerID string, draft domain.ParcelRequestDraft) (bool, error) {
	start := time.Now()
	defer func() {
		metrics.ParcelRequestSubmitDuration.Observe(time.Since(start).Seconds())
	}()

	now := s.now().UTC()
	req, reason := parseDraft(draft, now)
	if reason != "" {
		s.logger.Info().Str("owner_id", ownerID).Str("reason", reason).Msg("parcel request rejected")
		metrics.ParcelRequestsTotal.WithLabelValues("rejected_invalid").Inc()
		return false, nil
	}
	req.OwnerID = ownerID
	req.Fingerprint = fingerprint(draft)

	seen, err := s.dedup.Seen(ctx, ownerID, req.Fingerprint)
	if err != nil {
		s.logger.Warn().Err(err).Str("owner_id", ownerID).Msg("dedup check failed, submitting anyway")
	} else if seen {
		s.logger.Info().Str("owner_id", ownerID).Msg("duplicate parcel request rejected")
		metrics.ParcelRequestsTotal.WithLabelValues("rejected_duplicate").Inc()
		return false, nil
	}

	req.Reference = generateReference()
	req.Status = domain.RequestPending
	req.CreatedAt = now

	if err := s.repo.Create(ctx, req); err != nil {
		metrics.ParcelRequestsTotal.WithLabelValues("error").Inc()
		return false, fmt.Errorf("submit parcel request: %w", err)
	}

	if err := s.dedup.Mark(ctx, ownerID, req.Fingerprint); err != nil {
		s.logger.Warn().Err(err).Str("reference", req.Reference).Msg("failed to set dedup key")
	}

	metrics.ParcelRequestsTotal.WithLabelValues("accepted").Inc()
	s.logger.Info().Str("reference", req.Reference).Str("owner_id", ownerID).Msg("parcel request created")
	return true, nil
}

// ListRecent returns the newest requests of ownerID.
func (s *ParcelRequestService) ListRecent(ctx context.Context, ownerID string, limit int) ([]*domain.ParcelRequest, error) {
	if limit <= 0 || limit > maxListLimit {
		limit = maxListLimit
	}
	return s.repo.ListByOwner(ctx, ownerID, limit)
}

// Get returns the request with reference. ownerID limits the lookup to one
// owner's requests; admins pass "".
func (s *ParcelRequestService) Get(ctx context.Context, ownerID, reference string) (*domain.ParcelRequest, error) {
	reference = strings.ToUpper(strings.TrimSpace(reference))
	if reference == "" {
		return nil, domain.ErrParcelRequestNotFound
	}
	req, err := s.repo.FindByReference(ctx, reference, ownerID)
	if err != nil {
		if errors.Is(err, domain.ErrParcelRequestNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("get parcel request %s: %w", reference, err)
	}
	return req, nil
}

// For binds the service to one owner so it can back a request form.
func (s *ParcelRequestService) For(ownerID string) ports.ParcelRequestSubmitter {
	return ownerSubmitter{svc: s, ownerID: ownerID}
}

type ownerSubmitter struct {
	svc     ports.ParcelRequestService
	ownerID string
}

func (o ownerSubmitter) SubmitParcelRequest(ctx context.Context, draft domain.ParcelRequestDraft) (bool, error) {
	return o.svc.Submit(ctx, o.ownerID, draft)
}

// parseDraft converts the typed text into a request. A non-empty reason means
// the draft was rejected.
func parseDraft(d domain.ParcelRequestDraft, now time.Time) (*domain.ParcelRequest, string) {
	for _, f := range domain.DraftFields {
		if strings.TrimSpace(d.Get(f)) == "" {
			return nil, string(f) + " is required"
		}
	}

	weight, err := strconv.ParseFloat(strings.TrimSpace(d.WeightKg), 64)
	if err != nil || weight <= 0 {
		return nil, "weight_kg must be a positive number"
	}
	price, err := strconv.ParseFloat(strings.TrimSpace(d.PriceOffer), 64)
	if err != nil || price <= 0 {
		return nil, "price_offer must be a positive number"
	}
	deadline, err := time.Parse(domain.DeadlineLayout, strings.TrimSpace(d.DeliveryDeadline))
	if err != nil {
		return nil, "delivery_deadline must be a date"
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if deadline.Before(today) {
		return nil, "delivery_deadline is in the past"
	}

	return &domain.ParcelRequest{
		Description:      strings.TrimSpace(d.Description),
		Name:             strings.TrimSpace(d.Name),
		Quantity:         strings.TrimSpace(d.Quantity),
		WeightKg:         weight,
		PriceOffer:       price,
		DeliveryDeadline: deadline,
	}, ""
}

func fingerprint(d domain.ParcelRequestDraft) string {
	h := sha256.New()
	for _, f := range domain.DraftFields {
		h.Write([]byte(strings.TrimSpace(d.Get(f))))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// generateReference returns a request reference in the format PR-XXXXXXXX.
func generateReference() string {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		// fallback: use current nanoseconds
		return fmt.Sprintf("PR-%08X", time.Now().UnixNano()&0xFFFFFFFF)
	}
	return fmt.Sprintf("PR-%08X", b)
}
