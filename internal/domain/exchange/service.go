package exchange

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"hotelfolio/internal/pkg/logger"
	"hotelfolio/internal/pkg/metrics"
)

var currencyCode = regexp.MustCompile(`^[A-Z]{3}$`)

// RateFetcher returns how many units of currency one USD buys.
type RateFetcher interface {
	Rate(ctx context.Context, currency string) (decimal.Decimal, error)
}

type Service struct {
	cache   Cache
	fetcher RateFetcher
	ttl     time.Duration
	timeout time.Duration
	now     func() time.Time
	log     *zap.Logger
}

func NewService(cache Cache, fetcher RateFetcher, ttl, timeout time.Duration, log *zap.Logger) *Service {
	if cache == nil {
		cache = NewMemoryCache()
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Service{
		cache:   cache,
		fetcher: fetcher,
		ttl:     ttl,
		timeout: timeout,
		now:     time.Now,
		log:     logger.OrNop(log),
	}
}

// Rate returns the USD rate for currency, serving from cache when fresh.
// Cache failures degrade to a live lookup.
func (s *Service) Rate(ctx context.Context, currency string) (Quote, error) {
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if !currencyCode.MatchString(currency) {
		return Quote{}, ErrInvalidCurrency
	}
	if currency == BaseCurrency {
		metrics.ExchangeRateLookupsTotal.WithLabelValues(SourceCache).Inc()
		return s.quote(currency, decimal.NewFromInt(1), SourceCache, s.now()), nil
	}

	cached, ok, err := s.cache.Get(ctx, currency)
	if err != nil {
		s.log.Warn("exchange rate cache read failed", zap.String("currency", currency), zap.Error(err))
	}
	if ok {
		metrics.ExchangeRateLookupsTotal.WithLabelValues(SourceCache).Inc()
		cached.Source = SourceCache
		return cached, nil
	}

	fetchCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	rate, err := s.fetcher.Rate(fetchCtx, currency)
	if err != nil {
		if errors.Is(fetchCtx.Err(), context.DeadlineExceeded) && !errors.Is(err, ErrUpstreamTimeout) {
			err = ErrUpstreamTimeout
		}
		metrics.ExchangeRateLookupsTotal.WithLabelValues("error").Inc()
		s.log.Warn("exchange rate lookup failed", zap.String("currency", currency), zap.Error(err))
		return Quote{}, err
	}

	q := s.quote(currency, rate, SourceFlutterwave, s.now())
	if s.ttl > 0 {
		if err := s.cache.Set(ctx, currency, q, s.ttl); err != nil {
			s.log.Warn("exchange rate cache write failed", zap.String("currency", currency), zap.Error(err))
		}
	}
	metrics.ExchangeRateLookupsTotal.WithLabelValues(SourceFlutterwave).Inc()
	return q, nil
}

func (s *Service) quote(currency string, rate decimal.Decimal, source string, at time.Time) Quote {
	return Quote{
		Currency:  currency,
		Rate:      rate,
		From:      BaseCurrency,
		To:        currency,
		Source:    source,
		FetchedAt: at.UTC(),
	}
}
