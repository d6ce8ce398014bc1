package service

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/bwmarrin/snowflake"
	apiconfigdomain "github.com/opendrive/drivevalue/internal/apiconfig/domain"
	catalogdomain "github.com/opendrive/drivevalue/internal/catalog/domain"
	"github.com/opendrive/drivevalue/internal/clock"
	"github.com/opendrive/drivevalue/internal/evalue8"
	"github.com/opendrive/drivevalue/internal/observability/logger"
	"github.com/opendrive/drivevalue/internal/observability/metrics"
	"github.com/opendrive/drivevalue/internal/valuation/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	GenID   *snowflake.Node
	Repo    domain.Repository
	Config  apiconfigdomain.Service
	Catalog catalogdomain.Service
	Client  *evalue8.Client
	Clock   clock.Clock
	Metrics *metrics.Metrics `optional:"true"`
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	genID   *snowflake.Node
	repo    domain.Repository
	config  apiconfigdomain.Service
	catalog catalogdomain.Service
	client  *evalue8.Client
	clock   clock.Clock
	metrics *metrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("valuation.service"),
		genID:   p.GenID,
		repo:    p.Repo,
		config:  p.Config,
		catalog: p.Catalog,
		client:  p.Client,
		clock:   p.Clock,
		metrics: p.Metrics,
	}
}

// Valuate runs the billed valuation pipeline. Configuration, credential and
// upstream failures are terminal; accessory enrichment and the audit log
// write are best-effort and never fail a valuation that already cost money.
func (s *Service) Valuate(ctx context.Context, req domain.ValuationRequest) (*domain.ValuationResult, error) {
	req.MMCode = strings.TrimSpace(req.MMCode)
	req.Condition = strings.TrimSpace(req.Condition)
	req.Mileage = strings.TrimSpace(req.Mileage)
	if req.MMCode == "" || req.Year == 0 || req.Condition == "" || req.Mileage == "" {
		return nil, domain.ErrInvalidRequest
	}

	creds, err := s.config.Resolve(ctx)
	if err != nil {
		s.metrics.RecordValuation(ctx, "config_error")
		return nil, err
	}

	data, err := s.client.Valuation(ctx, creds, evalue8.ValuationQuery{
		MMCode:    req.MMCode,
		Year:      req.Year,
		Condition: req.Condition,
		Mileage:   req.Mileage,
		Options:   req.Accessories,
	})
	if err != nil {
		s.metrics.RecordValuation(ctx, "upstream_error")
		return nil, err
	}

	accessories := s.selectedAccessories(ctx, req)
	accessoriesRetail, accessoriesTrade := domain.SumAccessories(accessories)

	result := &domain.ValuationResult{
		MakeShort:         data.MakeShort,
		Model:             data.Model,
		Year:              data.Year,
		MMCode:            data.Code,
		New:               data.New,
		Guide:             data.Guide,
		BaseRetail:        domain.ParseAmount(data.Retail),
		BaseTrade:         domain.ParseAmount(data.Trade),
		Accessories:       accessories,
		AccessoriesRetail: accessoriesRetail,
		AccessoriesTrade:  accessoriesTrade,
	}
	result.TotalRetail = result.BaseRetail + accessoriesRetail
	result.TotalTrade = result.BaseTrade + accessoriesTrade

	s.writeLog(ctx, req, result)
	s.metrics.RecordValuation(ctx, "success")
	return result, nil
}

// selectedAccessories resolves the requested option codes against the
// accessory catalog and merges the priced rows with client-supplied extras.
// Catalog failures degrade to extras-only pricing.
func (s *Service) selectedAccessories(ctx context.Context, req domain.ValuationRequest) []domain.Accessory {
	var standard []domain.Accessory
	if len(req.Accessories) > 0 {
		catalog, _, err := s.catalog.Accessories(ctx, req.MMCode, req.Year)
		if err != nil {
			logger.WithContext(ctx, s.log).Warn("accessory enrichment failed, pricing without catalog accessories",
				zap.String("mm_code", req.MMCode),
				zap.Int("year", req.Year),
				zap.Error(err))
		} else {
			requested := make(map[string]struct{}, len(req.Accessories))
			for _, code := range req.Accessories {
				requested[code] = struct{}{}
			}
			for _, acc := range catalog {
				if _, ok := requested[acc.OptionCode]; !ok {
					continue
				}
				standard = append(standard, domain.Accessory{
					OptionCode:  acc.OptionCode,
					Description: acc.Description,
					Retail:      domain.ParseAmount(acc.Retail),
					Trade:       domain.ParseAmount(acc.Trade),
				})
			}
		}
	}
	return domain.MergeAccessories(standard, req.Extras)
}

// writeLog appends the audit row. Failures are logged and swallowed; the
// valuation already succeeded from the caller's point of view.
func (s *Service) writeLog(ctx context.Context, req domain.ValuationRequest, result *domain.ValuationResult) {
	selected, err := json.Marshal(result.Accessories)
	if err != nil {
		selected = []byte("[]")
	}

	row := &domain.ValuationLog{
		ID:                  s.genID.Generate(),
		Make:                result.MakeShort,
		Model:               result.Model,
		Year:                result.Year,
		MMCode:              result.MMCode,
		Condition:           req.Condition,
		Mileage:             req.Mileage,
		BaseRetail:          result.BaseRetail,
		BaseTrade:           result.BaseTrade,
		AccessoriesValue:    result.AccessoriesRetail,
		TotalRetail:         result.TotalRetail,
		TotalTrade:          result.TotalTrade,
		SelectedAccessories: selected,
		CreatedAt:           s.clock.Now(),
	}
	if err := s.repo.Insert(ctx, s.db, row); err != nil {
		logger.WithContext(ctx, s.log).Warn("valuation log write failed",
			zap.String("mm_code", row.MMCode),
			zap.Error(err))
	}
}

func (s *Service) Identify(ctx context.Context, req domain.IdentifyRequest) (*evalue8.Identification, error) {
	req.VIN = strings.TrimSpace(req.VIN)
	req.MMCode = strings.TrimSpace(req.MMCode)
	if req.VIN == "" && (req.MMCode == "" || req.Year == 0) {
		return nil, domain.ErrInvalidIdentify
	}

	creds, err := s.config.Resolve(ctx)
	if err != nil {
		return nil, err
	}
	return s.client.Identify(ctx, creds, evalue8.IdentifyQuery{
		VIN:    req.VIN,
		MMCode: req.MMCode,
		Year:   req.Year,
	})
}

func (s *Service) NonStandardExtra(ctx context.Context, req domain.NonStandardExtraRequest) (*evalue8.NonStandardExtra, error) {
	if req.Year == 0 || req.CostPrice <= 0 {
		return nil, domain.ErrInvalidExtra
	}
	return s.client.NonStandardExtra(ctx, req.Year, req.CostPrice, req.VehicleType)
}
