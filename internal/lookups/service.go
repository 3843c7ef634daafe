// Package lookups serves the read-only dashboard lookups: component stock,
// recent purchases and sales, per-category product counts and serial traces.
package lookups

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/url"
	"strings"

	"golang.org/x/sync/singleflight"

	"github.com/odyssey-erp/stockdesk/internal/crud"
	"github.com/odyssey-erp/stockdesk/internal/entities"
	"github.com/odyssey-erp/stockdesk/internal/gateway"
	"github.com/odyssey-erp/stockdesk/internal/stock"
	"github.com/odyssey-erp/stockdesk/internal/timeline"
)

// ErrSerialRequired is returned when a trace is requested without a serial.
var ErrSerialRequired = errors.New("lookups: serial number required")

// Endpoints are the backend paths the lookups read from.
type Endpoints struct {
	ComponentStock string
	Purchases      string
	Sales          string
	CategoryCounts string
	// Trace is the prefix the escaped serial number is appended to.
	Trace string
}

// DefaultEndpoints matches the inventory backend's routes.
var DefaultEndpoints = Endpoints{
	ComponentStock: "/component-stock",
	Purchases:      "/purchases",
	Sales:          "/sold-products",
	CategoryCounts: "/categories/product-counts",
	Trace:          "/stock/trace/",
}

// CategoryCount is the number of products filed under a category.
type CategoryCount struct {
	Category string          `json:"category"`
	Products entities.Number `json:"count"`
}

// Dashboard bundles the lookups rendered on the landing page.
type Dashboard struct {
	Stock           stock.Summary
	Capacity        string
	RecentPurchases []entities.Purchase
	RecentSales     []entities.SoldProduct
	CategoryCounts  []CategoryCount
}

// Service reads lookups through the gateway, caching results in Redis and
// collapsing concurrent identical loads.
type Service struct {
	client    *gateway.Client
	cache     *Cache
	endpoints Endpoints
	logger    *slog.Logger
	group     singleflight.Group
}

// NewService constructs the lookup service. Zero-valued endpoints fall back
// to DefaultEndpoints.
func NewService(client *gateway.Client, cache *Cache, endpoints Endpoints, logger *slog.Logger) *Service {
	if endpoints == (Endpoints{}) {
		endpoints = DefaultEndpoints
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{client: client, cache: cache, endpoints: endpoints, logger: logger}
}

// ComponentStock returns the component-stock capacity summary.
func (s *Service) ComponentStock(ctx context.Context) (stock.Summary, error) {
	var summary stock.Summary
	err := s.fetch(ctx, &summary, func(ctx context.Context) (any, error) {
		body, err := s.client.GetRaw(ctx, s.endpoints.ComponentStock)
		if err != nil {
			return nil, err
		}
		return stock.DecodeSummary(body)
	}, "component-stock")
	return summary, err
}

// RecentPurchases returns the ten newest purchases.
func (s *Service) RecentPurchases(ctx context.Context) ([]entities.Purchase, error) {
	cfg := entities.RecentPurchases()
	var out []entities.Purchase
	err := s.fetch(ctx, &out, func(ctx context.Context) (any, error) {
		records, err := list[entities.Purchase](ctx, s.client, s.endpoints.Purchases)
		if err != nil {
			return nil, err
		}
		return crud.Recent(records, cfg.RecentBy, cfg.RecentLimit), nil
	}, "recent-purchases")
	return out, err
}

// RecentSales returns the ten newest sales.
func (s *Service) RecentSales(ctx context.Context) ([]entities.SoldProduct, error) {
	cfg := entities.RecentSales()
	var out []entities.SoldProduct
	err := s.fetch(ctx, &out, func(ctx context.Context) (any, error) {
		records, err := list[entities.SoldProduct](ctx, s.client, s.endpoints.Sales)
		if err != nil {
			return nil, err
		}
		return crud.Recent(records, cfg.RecentBy, cfg.RecentLimit), nil
	}, "recent-sales")
	return out, err
}

// CategoryCounts returns product counts per category in backend order.
func (s *Service) CategoryCounts(ctx context.Context) ([]CategoryCount, error) {
	var out []CategoryCount
	err := s.fetch(ctx, &out, func(ctx context.Context) (any, error) {
		return list[CategoryCount](ctx, s.client, s.endpoints.CategoryCounts)
	}, "category-counts")
	return out, err
}

// StockTrace looks up serial and projects the response into timeline
// sections.
func (s *Service) StockTrace(ctx context.Context, serial string) ([]timeline.Section, error) {
	serial = strings.TrimSpace(serial)
	if serial == "" {
		return nil, ErrSerialRequired
	}
	var raw json.RawMessage
	err := s.fetch(ctx, &raw, func(ctx context.Context) (any, error) {
		body, err := s.client.GetRaw(ctx, s.endpoints.Trace+url.PathEscape(serial))
		if err != nil {
			return nil, err
		}
		if !json.Valid(body) {
			return nil, nil
		}
		return json.RawMessage(body), nil
	}, "trace", serial)
	if err != nil {
		return nil, err
	}
	return timeline.ProjectJSON(raw), nil
}

// Dashboard loads every landing-page lookup. A failing lookup leaves its
// part empty; the joined error reports all failures.
func (s *Service) Dashboard(ctx context.Context) (Dashboard, error) {
	var (
		d    Dashboard
		errs []error
		err  error
	)
	if d.Stock, err = s.ComponentStock(ctx); err != nil {
		errs = append(errs, err)
	} else {
		d.Capacity = stock.CapacityMessage(d.Stock)
	}
	if d.RecentPurchases, err = s.RecentPurchases(ctx); err != nil {
		errs = append(errs, err)
	}
	if d.RecentSales, err = s.RecentSales(ctx); err != nil {
		errs = append(errs, err)
	}
	if d.CategoryCounts, err = s.CategoryCounts(ctx); err != nil {
		errs = append(errs, err)
	}
	return d, errors.Join(errs...)
}

// Invalidate drops every cached lookup. Controllers call it after a
// successful mutation.
func (s *Service) Invalidate(ctx context.Context) {
	if err := s.cache.Bump(ctx); err != nil {
		s.logger.Warn("bump lookup cache", slog.Any("error", err))
	}
}

func (s *Service) fetch(ctx context.Context, dest any, load func(context.Context) (any, error), parts ...string) error {
	key, err := s.cache.BuildKey(ctx, parts...)
	if err != nil {
		s.logger.Warn("lookup cache unavailable", slog.Any("error", err))
		return s.direct(ctx, dest, load)
	}
	// Waiters share one load; a caller going away must not fail the others.
	detached := context.WithoutCancel(ctx)
	ch := s.group.DoChan(key, func() (any, error) {
		var raw json.RawMessage
		if err := s.cache.FetchJSON(detached, key, &raw, load); err != nil {
			return nil, err
		}
		return raw, nil
	})
	select {
	case <-ctx.Done():
		return ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return res.Err
		}
		return json.Unmarshal(res.Val.(json.RawMessage), dest)
	}
}

func (s *Service) direct(ctx context.Context, dest any, load func(context.Context) (any, error)) error {
	value, err := load(ctx)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, dest)
}

func list[T any](ctx context.Context, client *gateway.Client, path string) ([]T, error) {
	body, err := client.GetRaw(ctx, path)
	if err != nil {
		return nil, err
	}
	return gateway.DecodeList[T](body)
}
