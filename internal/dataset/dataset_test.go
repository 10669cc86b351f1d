package dataset

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"combinepulse/pkg/contracts/domain"
)

type stubSource struct {
	records []domain.PlayerRecord
	err     error
}

func (s *stubSource) Records(ctx context.Context) ([]domain.PlayerRecord, *LoadReport, error) {
	if s.err != nil {
		return nil, nil, s.err
	}
	return s.records, &LoadReport{Source: "stub", RowsRead: len(s.records)}, nil
}

func (s *stubSource) String() string { return "stub" }

func TestLoad(t *testing.T) {
	ctx := context.Background()

	records, report, err := NewLoader(nil).ReadCSV(ctx, strings.NewReader(sampleCSV), "combine.csv")
	require.NoError(t, err)

	ds, err := New(records, report)
	require.NoError(t, err)

	info := ds.Info()
	assert.Equal(t, "combine.csv", info.Source)
	assert.Equal(t, 3, info.Drafted)
	assert.Equal(t, 1, info.Report.Undrafted)
	assert.Equal(t, 2009, info.YearFrom)
	assert.Equal(t, 2013, info.YearTo)
	assert.Equal(t, 1, info.Positions[domain.PositionWR])
	assert.Equal(t, 1, info.Positions[domain.PositionDT])
	assert.Equal(t, 0, info.Positions[domain.PositionQB], "undrafted players are excluded")
	assert.Len(t, ds.Fingerprint(), 64)

	from, to := ds.YearRange()
	assert.Equal(t, 2009, from)
	assert.Equal(t, 2013, to)

	wr, err := ds.Table(domain.PositionWR)
	require.NoError(t, err)
	assert.Equal(t, 1, wr.Len())

	_, err = ds.Table("K")
	assert.ErrorIs(t, err, domain.ErrInvalidSelection)
}

func TestFingerprintStable(t *testing.T) {
	records := []domain.PlayerRecord{
		{Name: "A", Position: "WR", Team: "X", Year: 2010, Round: domain.Int(1), Pick: domain.Int(1), Forty: domain.Float(4.4)},
	}
	a, err := New(records, nil)
	require.NoError(t, err)
	b, err := New(records, nil)
	require.NoError(t, err)
	assert.Equal(t, a.Fingerprint(), b.Fingerprint())

	changed := append([]domain.PlayerRecord(nil), records...)
	changed[0].Forty = domain.Float(4.5)
	c, err := New(changed, nil)
	require.NoError(t, err)
	assert.NotEqual(t, a.Fingerprint(), c.Fingerprint())
}

func TestLoadSourceError(t *testing.T) {
	_, err := Load(context.Background(), &stubSource{err: &MissingColumnError{Source: "x", Columns: []string{"Team"}}}, nil)
	require.Error(t, err)

	var missing *MissingColumnError
	assert.True(t, errors.As(err, &missing))
}

func TestLoadFromSource(t *testing.T) {
	src := &stubSource{records: []domain.PlayerRecord{
		{Name: "A", Position: "OLB", Team: "X", Year: 2016, Round: domain.Int(3), Pick: domain.Int(80)},
	}}

	ds, err := Load(context.Background(), src, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, ds.Info().Positions[domain.PositionOLB])
	assert.Equal(t, "stub", ds.Info().Source)
}
