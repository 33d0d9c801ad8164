package container

import (
	"context"
	"fmt"
	"log"
	"time"

	"gostat/adapters/datareadiness/coercer"
	"gostat/adapters/excel"
	"gostat/adapters/postgres"
	"gostat/app"
	"gostat/domain/dataset"
	"gostat/internal/config"
	"gostat/internal/errors"
	"gostat/internal/filter"
	"gostat/ports"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"golang.org/x/sync/errgroup"
)

// Binding ties a named resource to its source and aggregated column
type Binding struct {
	Name   string
	Target string
	Source ports.DatasetSource
	// ParseNumber reads numeric filter values in the source's format
	ParseNumber filter.NumberParser
}

// Container holds all application dependencies and manages their lifecycle
type Container struct {
	Config *config.Config

	// Infrastructure
	DB *sqlx.DB

	// Dataset sources, in route order
	Bindings []Binding

	// Services built from the loaded datasets, keyed by resource name
	Services map[string]*app.StatsService
}

// New creates a new dependency injection container
func New(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	return &Container{
		Config:   cfg,
		Services: make(map[string]*app.StatsService),
	}, nil
}

// InitSources opens the database when a table-backed dataset is configured
// and creates one source per dataset.
func (c *Container) InitSources(ctx context.Context) error {
	datasets := []config.DatasetConfig{c.Config.Sales, c.Config.Task}

	for _, ds := range datasets {
		if ds.FromDatabase() && c.DB == nil {
			db, err := sqlx.ConnectContext(ctx, "postgres", c.Config.Database.URL)
			if err != nil {
				return errors.DatabaseError("failed to connect to database", err)
			}
			c.DB = db
		}
	}

	c.Bindings = c.Bindings[:0]
	for _, ds := range datasets {
		binding := Binding{
			Name:   ds.Name,
			Target: ds.Target,
			Source: c.sourceFor(ds),
		}
		if reader, ok := binding.Source.(*excel.DataReader); ok {
			binding.ParseNumber = reader.ParseNumeric
		}
		c.Bindings = append(c.Bindings, binding)
	}
	return nil
}

func (c *Container) sourceFor(ds config.DatasetConfig) ports.DatasetSource {
	if ds.FromDatabase() {
		return postgres.NewDatasetRepository(c.DB, ds.Name, ds.Table, ds.Target)
	}

	readerConfig := excel.DefaultReaderConfig()
	readerConfig.Name = ds.Name
	readerConfig.FilePath = ds.File
	readerConfig.Sheet = ds.Sheet
	readerConfig.RequireNumeric = []string{ds.Target}
	readerConfig.CoercionConfig = coercer.CoercionConfig{Thousands: ds.Thousands}
	if d := []rune(ds.Delimiter); len(d) == 1 {
		readerConfig.Delimiter = d[0]
	}
	return excel.NewDataReader(readerConfig)
}

// LoadServices loads every bound dataset concurrently and builds its service.
// Any failure aborts the whole load.
func (c *Container) LoadServices(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.Config.LoadTimeout)
	defer cancel()

	loaded := make([]*dataset.Dataset, len(c.Bindings))
	g, gctx := errgroup.WithContext(ctx)
	for i, b := range c.Bindings {
		i, b := i, b
		g.Go(func() error {
			start := time.Now()
			ds, err := b.Source.Load(gctx)
			if err != nil {
				return errors.Wrapf(err, "failed to load %s dataset from %s", b.Name, b.Source.Describe())
			}
			log.Printf("[Container] %s dataset loaded from %s (%d rows) in %s", b.Name, b.Source.Describe(), ds.Rows(), time.Since(start))
			loaded[i] = ds
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for i, b := range c.Bindings {
		svc, err := app.NewStatsService(app.Resource{
			Name:        b.Name,
			Dataset:     loaded[i],
			Target:      b.Target,
			ParseNumber: b.ParseNumber,
		})
		if err != nil {
			return err
		}
		c.Services[b.Name] = svc
	}
	return nil
}

// OrderedServices returns the services in binding order
func (c *Container) OrderedServices() []*app.StatsService {
	out := make([]*app.StatsService, 0, len(c.Bindings))
	for _, b := range c.Bindings {
		if svc, ok := c.Services[b.Name]; ok {
			out = append(out, svc)
		}
	}
	return out
}

// Shutdown releases infrastructure held by the container
func (c *Container) Shutdown(ctx context.Context) error {
	if c.DB != nil {
		if err := c.DB.Close(); err != nil {
			return fmt.Errorf("failed to close database: %w", err)
		}
		log.Printf("[Container] database connection closed")
	}
	return nil
}
