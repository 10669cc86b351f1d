package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"combinepulse/internal/dataset"
	"combinepulse/internal/infrastructure"
	"combinepulse/pkg/contracts/domain"
)

// DefaultBatchSize is the number of rows written per insert statement
const DefaultBatchSize = 500

// CombineResult is the stored form of a combine participant
type CombineResult struct {
	ID        uint     `gorm:"primaryKey"`
	Player    string   `gorm:"size:128;not null;uniqueIndex:idx_combine_player_year_pos"`
	Year      int      `gorm:"not null;uniqueIndex:idx_combine_player_year_pos"`
	Pos       string   `gorm:"size:8;not null;uniqueIndex:idx_combine_player_year_pos;index"`
	Ht        *float64
	Wt        *float64
	Forty     *float64
	Vertical  *float64
	BenchReps *float64
	Cone      *float64
	Shuttle   *float64
	Team      string `gorm:"size:64"`
	Round     *int   `gorm:"index"`
	Pick      *int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName overrides the default table name
func (CombineResult) TableName() string {
	return "combine_results"
}

func fromRecord(r domain.PlayerRecord) CombineResult {
	return CombineResult{
		Player:    r.Name,
		Year:      r.Year,
		Pos:       r.Position,
		Ht:        r.Height,
		Wt:        r.Weight,
		Forty:     r.Forty,
		Vertical:  r.Vertical,
		BenchReps: r.BenchReps,
		Cone:      r.Cone,
		Shuttle:   r.Shuttle,
		Team:      r.Team,
		Round:     r.Round,
		Pick:      r.Pick,
	}
}

func (c CombineResult) record() domain.PlayerRecord {
	return domain.PlayerRecord{
		Name:      c.Player,
		Position:  c.Pos,
		Height:    c.Ht,
		Weight:    c.Wt,
		Forty:     c.Forty,
		Vertical:  c.Vertical,
		BenchReps: c.BenchReps,
		Cone:      c.Cone,
		Shuttle:   c.Shuttle,
		Team:      c.Team,
		Year:      c.Year,
		Round:     c.Round,
		Pick:      c.Pick,
	}
}

// CombineRepository stores combine results in PostgreSQL. It also serves as
// a dataset source.
type CombineRepository struct {
	db     *gorm.DB
	logger *slog.Logger
}

// NewCombineRepository creates a repository on an open connection
func NewCombineRepository(db *gorm.DB, logger *slog.Logger) *CombineRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &CombineRepository{
		db:     db,
		logger: infrastructure.WithComponent(logger, "combine_repository"),
	}
}

// UpsertMany writes records keyed by player, year and position. Later
// duplicates of a key replace earlier ones. It returns the number of rows
// written.
func (r *CombineRepository) UpsertMany(ctx context.Context, records []domain.PlayerRecord, batchSize int) (int, error) {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	type key struct {
		player string
		year   int
		pos    string
	}
	index := make(map[key]int, len(records))
	rows := make([]CombineResult, 0, len(records))
	for _, rec := range records {
		k := key{rec.Name, rec.Year, rec.Position}
		if i, dup := index[k]; dup {
			r.logger.WarnContext(ctx, "duplicate combine record replaced",
				slog.String("player", rec.Name),
				slog.Int("year", rec.Year),
				slog.String("pos", rec.Position))
			rows[i] = fromRecord(rec)
			continue
		}
		index[k] = len(rows)
		rows = append(rows, fromRecord(rec))
	}
	if len(rows) == 0 {
		return 0, nil
	}

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "player"}, {Name: "year"}, {Name: "pos"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"ht", "wt", "forty", "vertical", "bench_reps", "cone", "shuttle",
			"team", "round", "pick", "updated_at",
		}),
	}).CreateInBatches(&rows, batchSize).Error
	if err != nil {
		return 0, fmt.Errorf("upsert combine results: %w", err)
	}
	return len(rows), nil
}

// All returns every stored record in draft order
func (r *CombineRepository) All(ctx context.Context) ([]domain.PlayerRecord, error) {
	var rows []CombineResult
	err := r.db.WithContext(ctx).
		Order("year ASC, round ASC NULLS LAST, pick ASC NULLS LAST, player ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("query combine results: %w", err)
	}

	records := make([]domain.PlayerRecord, len(rows))
	for i, row := range rows {
		records[i] = row.record()
	}
	return records, nil
}

// Count returns the number of stored records
func (r *CombineRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&CombineResult{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count combine results: %w", err)
	}
	return n, nil
}

// Records implements dataset.Source
func (r *CombineRepository) Records(ctx context.Context) ([]domain.PlayerRecord, *dataset.LoadReport, error) {
	records, err := r.All(ctx)
	if err != nil {
		return nil, nil, err
	}
	return records, &dataset.LoadReport{
		Source:      r.String(),
		RowsRead:    len(records),
		Kept:        len(records),
		SkipReasons: map[string]int{},
	}, nil
}

// Ping checks the underlying connection
func (r *CombineRepository) Ping(ctx context.Context) error {
	return Ping(ctx, r.db)
}

func (r *CombineRepository) String() string {
	return "postgres:combine_results"
}
