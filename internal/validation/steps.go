package validation

import (
	"context"

	"credval/internal/validation/chain"
	"credval/internal/validation/models"
	"credval/internal/validation/ocr"
	"credval/internal/validation/providers"
	"credval/internal/validation/transform"
)

// Default chain orders. Nubarium leads everywhere it participates because it
// is the contractual primary; later entries are the fallbacks.
var (
	defaultCURPChain = []string{providers.ProviderNubarium, providers.ProviderValidaCurp, providers.ProviderVerificamex}
	defaultINEChain  = []string{providers.ProviderNubarium, providers.ProviderVerificamex}
	defaultOCRChain  = []string{providers.ProviderNubarium, providers.ProviderVerificamex}
)

func transformErr(code models.ErrorCode, provider string, capability models.Capability, message string) error {
	return providers.NewError(code, provider, capability, message, nil)
}

// curpSteps binds the configured providers to the CURP capability. Unknown
// names in the order are skipped so a config typo degrades instead of
// panicking.
func (s *Service) curpSteps(code string) []chain.Step[*models.PersonIdentity] {
	steps := make([]chain.Step[*models.PersonIdentity], 0, len(s.curpOrder))
	for _, name := range s.curpOrder {
		switch name {
		case providers.ProviderNubarium:
			if s.nubarium == nil {
				continue
			}
			steps = append(steps, chain.Step[*models.PersonIdentity]{
				Provider: name,
				Run: func(ctx context.Context) (*models.PersonIdentity, error) {
					resp, err := s.nubarium.ValidateCURP(ctx, code)
					if err != nil {
						return nil, err
					}
					identity, ecode := transform.NubariumCURP(resp)
					if ecode != "" {
						return nil, transformErr(ecode, name, models.CapabilityCURP, "registry rejected curp")
					}
					return identity, nil
				},
			})
		case providers.ProviderValidaCurp:
			if s.validacurp == nil {
				continue
			}
			steps = append(steps, chain.Step[*models.PersonIdentity]{
				Provider: name,
				Run: func(ctx context.Context) (*models.PersonIdentity, error) {
					resp, err := s.validacurp.GetCURPData(ctx, code)
					if err != nil {
						return nil, err
					}
					identity, ecode := transform.ValidaCurpData(resp)
					if ecode != "" {
						return nil, transformErr(ecode, name, models.CapabilityCURP, "registry rejected curp")
					}
					return identity, nil
				},
			})
		case providers.ProviderVerificamex:
			if s.verificamex == nil {
				continue
			}
			steps = append(steps, chain.Step[*models.PersonIdentity]{
				Provider: name,
				Run: func(ctx context.Context) (*models.PersonIdentity, error) {
					resp, err := s.verificamex.ValidateCURP(ctx, code)
					if err != nil {
						return nil, err
					}
					identity, ecode := transform.VerificamexCURP(resp)
					if ecode != "" {
						return nil, transformErr(ecode, name, models.CapabilityCURP, "registry rejected curp")
					}
					return identity, nil
				},
			})
		}
	}
	return steps
}

// ineSteps binds the configured providers to the nominal-roll capability.
func (s *Service) ineSteps(cic, citizenID string) []chain.Step[*models.INEStatus] {
	steps := make([]chain.Step[*models.INEStatus], 0, len(s.ineOrder))
	for _, name := range s.ineOrder {
		switch name {
		case providers.ProviderNubarium:
			if s.nubarium == nil {
				continue
			}
			steps = append(steps, chain.Step[*models.INEStatus]{
				Provider: name,
				Run: func(ctx context.Context) (*models.INEStatus, error) {
					resp, err := s.nubarium.ValidateINE(ctx, cic, citizenID)
					if err != nil {
						return nil, err
					}
					status, ecode := transform.NubariumINE(resp)
					if ecode != "" {
						msg := "nominal roll rejected credential"
						if status != nil && status.UserMessage != "" {
							msg = status.UserMessage
						}
						return nil, transformErr(ecode, name, models.CapabilityINE, msg)
					}
					return status, nil
				},
			})
		case providers.ProviderVerificamex:
			if s.verificamex == nil {
				continue
			}
			steps = append(steps, chain.Step[*models.INEStatus]{
				Provider: name,
				Run: func(ctx context.Context) (*models.INEStatus, error) {
					resp, err := s.verificamex.ValidateINE(ctx, cic, citizenID)
					if err != nil {
						return nil, err
					}
					status, ecode := transform.VerificamexINE(resp)
					if ecode != "" {
						return nil, transformErr(ecode, name, models.CapabilityINE, "nominal roll rejected credential")
					}
					return status, nil
				},
			})
		}
	}
	return steps
}

// generateSteps binds the CURP derivation capability. Only one vendor offers
// it today; keeping it a chain means a second vendor is a config change.
func (s *Service) generateSteps(in providers.CalculateInput) []chain.Step[string] {
	var steps []chain.Step[string]
	if s.validacurp != nil {
		steps = append(steps, chain.Step[string]{
			Provider: providers.ProviderValidaCurp,
			Run: func(ctx context.Context) (string, error) {
				resp, err := s.validacurp.CalculateCURP(ctx, in)
				if err != nil {
					return "", err
				}
				code, ecode := transform.ValidaCurpCalculated(resp)
				if ecode != "" {
					return "", transformErr(ecode, providers.ProviderValidaCurp, models.CapabilityCURPGenerate, "derivation failed")
				}
				return code, nil
			},
		})
	}
	return steps
}

// rfcSteps binds the SAT lookup capability.
func (s *Service) rfcSteps(code string) []chain.Step[bool] {
	var steps []chain.Step[bool]
	if s.verificamex != nil {
		steps = append(steps, chain.Step[bool]{
			Provider: providers.ProviderVerificamex,
			Run: func(ctx context.Context) (bool, error) {
				resp, err := s.verificamex.ValidateRFC(ctx, code)
				if err != nil {
					return false, err
				}
				ecode, valid := transform.VerificamexRFC(resp)
				if ecode != "" {
					return false, transformErr(ecode, providers.ProviderVerificamex, models.CapabilityRFC, "sat rejected rfc")
				}
				return valid, nil
			},
		})
	}
	return steps
}

// extractors binds the configured OCR order to concrete extractors.
func (s *Service) extractors() []ocr.Extractor {
	out := make([]ocr.Extractor, 0, len(s.ocrOrder))
	for _, name := range s.ocrOrder {
		switch name {
		case providers.ProviderNubarium:
			if s.nubarium != nil {
				out = append(out, nubariumExtractor{client: s.nubarium})
			}
		case providers.ProviderVerificamex:
			if s.verificamex != nil {
				out = append(out, verificamexExtractor{client: s.verificamex})
			}
		}
	}
	return out
}
