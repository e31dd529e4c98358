// Package sql persists comparison runs in the results database through GORM.
package sql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	dbconfig "github.com/tigerroll/sqlcompare/pkg/compare/adapter/database/config"
	"github.com/tigerroll/sqlcompare/pkg/compare/core/domain/model"
	"github.com/tigerroll/sqlcompare/pkg/compare/core/domain/repository"
	"github.com/tigerroll/sqlcompare/pkg/compare/support/util/exception"
	"github.com/tigerroll/sqlcompare/pkg/compare/support/util/logger"
)

const resultBatchSize = 100

// DBResolver resolves named GORM handles and their settings.
// *gorm adapter Provider satisfies it.
type DBResolver interface {
	GetDB(name string) (*gorm.DB, error)
	Settings(name string) (dbconfig.DatabaseConfig, error)
}

// GORMResultRepository implements repository.ResultRepository.
type GORMResultRepository struct {
	resolver DBResolver
	// dbName is the connection name of the results database.
	dbName string
	now    func() time.Time
}

// NewGORMResultRepository creates a repository writing to the connection dbName.
func NewGORMResultRepository(resolver DBResolver, dbName string) *GORMResultRepository {
	return &GORMResultRepository{resolver: resolver, dbName: dbName, now: time.Now}
}

var _ repository.ResultRepository = (*GORMResultRepository)(nil)

func (r *GORMResultRepository) db(ctx context.Context) (*gorm.DB, error) {
	db, err := r.resolver.GetDB(r.dbName)
	if err != nil {
		return nil, exception.NewDatabaseConnectionError("repository", fmt.Sprintf("Failed to resolve DB connection '%s'", r.dbName), err)
	}
	return db.WithContext(ctx), nil
}

func repositoryError(message string, err error) error {
	return exception.NewCompareError(exception.KindExecution, "repository", message, err)
}

func (r *GORMResultRepository) SaveRun(ctx context.Context, run *model.RunSummary) error {
	if run == nil {
		return exception.NewValidationError("repository", "run is required")
	}
	db, err := r.db(ctx)
	if err != nil {
		return err
	}
	if err := db.Create(fromDomainRun(run)).Error; err != nil {
		return repositoryError(fmt.Sprintf("failed to save run (ID: %s)", run.RunID), err)
	}
	return nil
}

func (r *GORMResultRepository) SaveResults(ctx context.Context, runID string, results []model.ExecutionResult) error {
	if len(results) == 0 {
		return nil
	}
	db, err := r.db(ctx)
	if err != nil {
		return err
	}
	entities := make([]*ResultEntity, 0, len(results))
	for i, res := range results {
		entities = append(entities, fromDomainResult(runID, i, res))
	}
	err = db.Transaction(func(tx *gorm.DB) error {
		return tx.CreateInBatches(entities, resultBatchSize).Error
	})
	if err != nil {
		return repositoryError(fmt.Sprintf("failed to save %d results of run %s", len(results), runID), err)
	}
	logger.Debugf("Saved %d results of run %s.", len(results), runID)
	return nil
}

func (r *GORMResultRepository) SaveComparison(ctx context.Context, runID string, report *model.ComparisonReport) error {
	if report == nil {
		return nil
	}
	db, err := r.db(ctx)
	if err != nil {
		return err
	}
	if err := db.Create(fromDomainComparison(runID, report, r.now())).Error; err != nil {
		return repositoryError(fmt.Sprintf("failed to save comparison of run %s", runID), err)
	}
	return nil
}

func (r *GORMResultRepository) FindRun(ctx context.Context, runID string) (*model.RunSummary, error) {
	db, err := r.db(ctx)
	if err != nil {
		return nil, err
	}

	var entity RunEntity
	if err := db.Where("id = ?", runID).First(&entity).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", repository.ErrRunNotFound, runID)
		}
		return nil, repositoryError(fmt.Sprintf("failed to find run %s", runID), err)
	}
	run := toDomainRun(&entity)

	var comparison ComparisonEntity
	err = db.Where("run_id = ?", runID).First(&comparison).Error
	switch {
	case err == nil:
		run.Report = toDomainComparison(&comparison)
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, repositoryError(fmt.Sprintf("failed to find comparison of run %s", runID), err)
	}
	return run, nil
}

func (r *GORMResultRepository) FindResults(ctx context.Context, runID string) ([]model.ExecutionResult, error) {
	db, err := r.db(ctx)
	if err != nil {
		return nil, err
	}
	var entities []ResultEntity
	if err := db.Where("run_id = ?", runID).Order("seq").Find(&entities).Error; err != nil {
		return nil, repositoryError(fmt.Sprintf("failed to find results of run %s", runID), err)
	}
	results := make([]model.ExecutionResult, 0, len(entities))
	for i := range entities {
		results = append(results, toDomainResult(&entities[i]))
	}
	return results, nil
}
