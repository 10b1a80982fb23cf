// ABOUTME: Instance type catalog resolving node shape names to vCPU and memory
// ABOUTME: Static price table first, then live providers behind a TTL cache

package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/markalston/pypiserver-capacity/backend/cache"
	"github.com/markalston/pypiserver-capacity/backend/models"
	"golang.org/x/sync/singleflight"
)

// providerLookupTimeout bounds one shared provider lookup
const providerLookupTimeout = 30 * time.Second

// InstanceTypeProvider knows how to fetch node shapes from one source.
// Implementations return models.ErrUnknownInstanceType for names they do not know.
type InstanceTypeProvider interface {
	Name() string
	GetInstanceType(ctx context.Context, name string) (models.InstanceType, error)
}

// staticInstanceTypes is a subset of general purpose, compute, and memory
// optimised EC2 types with us-east-1 Linux on-demand prices
var staticInstanceTypes = []models.InstanceType{
	{Name: "t3.micro", VCPUCount: 2, MemoryMB: 1024, OnDemandPricePerHour: 0.0104},
	{Name: "t3.small", VCPUCount: 2, MemoryMB: 2048, OnDemandPricePerHour: 0.0208},
	{Name: "t3.medium", VCPUCount: 2, MemoryMB: 4096, OnDemandPricePerHour: 0.0416},
	{Name: "t3.large", VCPUCount: 2, MemoryMB: 8192, OnDemandPricePerHour: 0.0832},
	{Name: "t3.xlarge", VCPUCount: 4, MemoryMB: 16384, OnDemandPricePerHour: 0.1664},
	{Name: "t3.2xlarge", VCPUCount: 8, MemoryMB: 32768, OnDemandPricePerHour: 0.3328},
	{Name: "m5.large", VCPUCount: 2, MemoryMB: 8192, OnDemandPricePerHour: 0.096},
	{Name: "m5.xlarge", VCPUCount: 4, MemoryMB: 16384, OnDemandPricePerHour: 0.192},
	{Name: "m5.2xlarge", VCPUCount: 8, MemoryMB: 32768, OnDemandPricePerHour: 0.384},
	{Name: "m5.4xlarge", VCPUCount: 16, MemoryMB: 65536, OnDemandPricePerHour: 0.768},
	{Name: "c5.large", VCPUCount: 2, MemoryMB: 4096, OnDemandPricePerHour: 0.085},
	{Name: "c5.xlarge", VCPUCount: 4, MemoryMB: 8192, OnDemandPricePerHour: 0.17},
	{Name: "c5.2xlarge", VCPUCount: 8, MemoryMB: 16384, OnDemandPricePerHour: 0.34},
	{Name: "c5.4xlarge", VCPUCount: 16, MemoryMB: 32768, OnDemandPricePerHour: 0.68},
	{Name: "r5.large", VCPUCount: 2, MemoryMB: 16384, OnDemandPricePerHour: 0.126},
	{Name: "r5.xlarge", VCPUCount: 4, MemoryMB: 32768, OnDemandPricePerHour: 0.252},
	{Name: "r5.2xlarge", VCPUCount: 8, MemoryMB: 65536, OnDemandPricePerHour: 0.504},
}

// Catalog resolves instance type names. Concurrent lookups of the same
// uncached name share one provider call.
type Catalog struct {
	static    map[string]models.InstanceType
	providers []InstanceTypeProvider
	cache     *cache.Cache[models.InstanceType]
	group     singleflight.Group
}

// NewCatalog creates a catalog over the static table and the given providers.
// Providers are consulted in order.
func NewCatalog(c *cache.Cache[models.InstanceType], providers ...InstanceTypeProvider) *Catalog {
	static := make(map[string]models.InstanceType, len(staticInstanceTypes))
	for _, it := range staticInstanceTypes {
		it.Source = models.SourceStatic
		static[it.Name] = it
	}
	return &Catalog{
		static:    static,
		providers: providers,
		cache:     c,
	}
}

// Sources lists where lookups can be answered from
func (c *Catalog) Sources() []string {
	sources := []string{models.SourceStatic}
	for _, p := range c.providers {
		sources = append(sources, p.Name())
	}
	return sources
}

// List returns the static table ordered by size
func (c *Catalog) List() []models.InstanceType {
	list := make([]models.InstanceType, 0, len(c.static))
	for _, it := range c.static {
		list = append(list, it)
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].VCPUCount != list[j].VCPUCount {
			return list[i].VCPUCount < list[j].VCPUCount
		}
		if list[i].MemoryMB != list[j].MemoryMB {
			return list[i].MemoryMB < list[j].MemoryMB
		}
		return list[i].Name < list[j].Name
	})
	return list
}

// Lookup resolves one instance type name
func (c *Catalog) Lookup(ctx context.Context, name string) (models.InstanceType, error) {
	if err := ValidateInstanceTypeName(name); err != nil {
		return models.InstanceType{}, err
	}

	if it, ok := c.static[name]; ok {
		return it, nil
	}

	if c.cache != nil {
		if it, ok := c.cache.Get(cacheKey(name)); ok {
			return it, nil
		}
	}

	if len(c.providers) == 0 {
		return models.InstanceType{}, fmt.Errorf("%w: %s", models.ErrUnknownInstanceType, name)
	}

	// The shared fetch outlives any one caller; each caller can still give up
	// on its own context.
	ch := c.group.DoChan(name, func() (interface{}, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), providerLookupTimeout)
		defer cancel()
		return c.fetch(fetchCtx, name)
	})

	select {
	case <-ctx.Done():
		return models.InstanceType{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return models.InstanceType{}, res.Err
		}
		if res.Shared {
			slog.Debug("Instance type lookup shared", "name", name)
		}
		return res.Val.(models.InstanceType), nil
	}
}

// fetch asks each provider in turn. A provider failure does not stop the
// search, but is reported if nobody else knows the name.
func (c *Catalog) fetch(ctx context.Context, name string) (models.InstanceType, error) {
	var failures []error
	for _, p := range c.providers {
		it, err := p.GetInstanceType(ctx, name)
		if errors.Is(err, models.ErrUnknownInstanceType) {
			continue
		}
		if err != nil {
			slog.Warn("Instance type provider failed", "provider", p.Name(), "name", name, "error", err)
			failures = append(failures, fmt.Errorf("%s: %w", p.Name(), err))
			continue
		}
		if it.VCPUCount <= 0 || it.MemoryMB <= 0 {
			failures = append(failures, fmt.Errorf("%s: incomplete shape for %s (vcpu=%d, memory=%d)",
				p.Name(), name, it.VCPUCount, it.MemoryMB))
			continue
		}

		it.Name = name
		it.Source = p.Name()
		if c.cache != nil {
			c.cache.Set(cacheKey(name), it)
		}
		slog.Info("Instance type resolved", "name", name, "source", it.Source, "vcpu", it.VCPUCount, "memory_mb", it.MemoryMB)
		return it, nil
	}

	if len(failures) > 0 {
		return models.InstanceType{}, fmt.Errorf("looking up instance type %s: %w", name, errors.Join(failures...))
	}
	return models.InstanceType{}, fmt.Errorf("%w: %s", models.ErrUnknownInstanceType, name)
}

func cacheKey(name string) string {
	return "instance-type:" + name
}
