package cron

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/cabanadebrincar/cabana-backend/internal/orders"
	"github.com/cabanadebrincar/cabana-backend/pkg/logger"
)

const (
	pickupReleaseJobName = "pickup-release"
	releaseGraceDays     = 2
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type packageReleaser interface {
	Release(ctx context.Context, tx *gorm.DB, id int64) (bool, error)
}

// PickupReleaseJobParams configure the pickup package release sweep.
type PickupReleaseJobParams struct {
	Logger   *logger.Logger
	DB       txRunner
	Orders   orders.Repository
	Packages packageReleaser
	Now      func() time.Time
}

// NewPickupReleaseJob builds the job that returns pickup packages to the shelf
// once their party is two days past and closes the order's calendar entry.
func NewPickupReleaseJob(params PickupReleaseJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("db runner required")
	}
	if params.Orders == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if params.Packages == nil {
		return nil, fmt.Errorf("package releaser required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &pickupReleaseJob{
		logg:     params.Logger,
		db:       params.DB,
		orders:   params.Orders,
		packages: params.Packages,
		now:      now,
	}, nil
}

type pickupReleaseJob struct {
	logg     *logger.Logger
	db       txRunner
	orders   orders.Repository
	packages packageReleaser
	now      func() time.Time
}

func (j *pickupReleaseJob) Name() string { return pickupReleaseJobName }

// cutoff is UTC midnight releaseGraceDays before today.
func (j *pickupReleaseJob) cutoff() time.Time {
	now := j.now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return today.AddDate(0, 0, -releaseGraceDays)
}

func (j *pickupReleaseJob) Run(ctx context.Context) error {
	cutoff := j.cutoff()
	candidates, err := j.orders.ListReleaseCandidates(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("list release candidates: %w", err)
	}

	var errs error
	released := 0
	for i := range candidates {
		order := &candidates[i]
		packageID, ok := orders.PackageRef(order)
		if !ok {
			continue
		}
		if err := j.release(ctx, order.ID, packageID); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("order %d: %w", order.ID, err))
			continue
		}
		released++
	}

	logCtx := j.logg.WithFields(ctx, map[string]any{
		"cutoff":     cutoff.Format(time.DateOnly),
		"candidates": len(candidates),
		"released":   released,
	})
	j.logg.Info(logCtx, "pickup release sweep complete")
	return errs
}

func (j *pickupReleaseJob) release(ctx context.Context, orderID, packageID int64) error {
	return j.db.WithTx(ctx, func(tx *gorm.DB) error {
		if _, err := j.packages.Release(ctx, tx, packageID); err != nil {
			return err
		}
		if _, err := j.orders.WithTx(tx).MarkConcluded(ctx, orderID); err != nil {
			return fmt.Errorf("mark concluded: %w", err)
		}
		return nil
	})
}
