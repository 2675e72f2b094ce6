package validation

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"credval/internal/validation/models"
	"credval/internal/validation/ocr"
	"credval/internal/validation/providers"
	"credval/internal/validation/transform"
)

// nubariumExtractor reads both faces in a single provider call.
type nubariumExtractor struct {
	client *providers.Nubarium
}

func (e nubariumExtractor) ID() string { return providers.ProviderNubarium }

func (e nubariumExtractor) Extract(ctx context.Context, front, back []byte) (*models.Extraction, []models.ProviderAttempt, error) {
	start := time.Now()
	resp, err := e.client.ExtractID(ctx, front, back)
	if err == nil {
		var extraction *models.Extraction
		extraction, err = transformedExtraction(resp)
		if err == nil {
			attempt := ocr.Attempt(models.CapabilityOCRCombined, providers.ProviderNubarium, time.Since(start), nil)
			return extraction, []models.ProviderAttempt{attempt}, nil
		}
	}
	attempt := ocr.Attempt(models.CapabilityOCRCombined, providers.ProviderNubarium, time.Since(start), err)
	return nil, []models.ProviderAttempt{attempt}, err
}

func transformedExtraction(resp *providers.NubariumOCRResponse) (*models.Extraction, error) {
	extraction, code := transform.NubariumExtraction(resp)
	if code != "" {
		return nil, providers.NewError(code, providers.ProviderNubarium, models.CapabilityOCRCombined,
			"ocr payload unusable", nil)
	}
	return extraction, nil
}

// verificamexExtractor issues the two per-face calls concurrently and joins
// both before deciding. Either face failing fails the provider; faces are
// never mixed with another provider's output.
type verificamexExtractor struct {
	client *providers.Verificamex
}

func (e verificamexExtractor) ID() string { return providers.ProviderVerificamex }

func (e verificamexExtractor) Extract(ctx context.Context, front, back []byte) (*models.Extraction, []models.ProviderAttempt, error) {
	var (
		frontResp *providers.VerificamexFrontResponse
		backResp  *providers.VerificamexBackResponse
		frontErr  error
		backErr   error
		frontDur  time.Duration
		backDur   time.Duration
	)

	// Plain group, not WithContext: one face failing must not cancel the
	// other mid-flight, both attempts have to be recorded.
	var g errgroup.Group
	g.Go(func() error {
		start := time.Now()
		frontResp, frontErr = e.client.OCRObverse(ctx, front)
		frontDur = time.Since(start)
		return nil
	})
	g.Go(func() error {
		start := time.Now()
		backResp, backErr = e.client.OCRReverse(ctx, back)
		backDur = time.Since(start)
		return nil
	})
	g.Wait()

	attempts := []models.ProviderAttempt{
		ocr.Attempt(models.CapabilityOCRFront, providers.ProviderVerificamex, frontDur, frontErr),
		ocr.Attempt(models.CapabilityOCRBack, providers.ProviderVerificamex, backDur, backErr),
	}
	if frontErr != nil {
		return nil, attempts, frontErr
	}
	if backErr != nil {
		return nil, attempts, backErr
	}

	extraction, code := transform.VerificamexExtraction(frontResp, backResp)
	if code != "" {
		// Both calls landed but the joined payload is unusable; the attempt
		// log keeps the per-call outcomes as they happened.
		return nil, attempts, providers.NewError(code, providers.ProviderVerificamex, models.CapabilityOCRCombined,
			"ocr payload unusable", nil)
	}
	return extraction, attempts, nil
}
