package coverage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terra-clan/portfolio-intel/internal/catalog"
	"github.com/terra-clan/portfolio-intel/internal/models"
)

// sequenceSource replays fixed draws, then repeats the last one
type sequenceSource struct {
	draws []float64
	next  int
}

func (s *sequenceSource) Float64() float64 {
	if s.next >= len(s.draws) {
		return s.draws[len(s.draws)-1]
	}
	v := s.draws[s.next]
	s.next++
	return v
}

// hdCatalog is the HD pillar alone plus an empty Digital pillar
func hdCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	c, err := catalog.New(
		[]models.Pillar{
			{ID: models.PillarHD, Label: "Hemodialysis (HD)"},
			{ID: models.PillarDigital, Label: "Digital"},
		},
		[]models.Product{
			{ID: "hd-1", Name: "4008S Classix", Range: models.RangeEssential, Importance: models.ImportanceMustHave, PillarID: models.PillarHD},
			{ID: "hd-2", Name: "Dialyzer Low-Flux", Range: models.RangeEssential, Importance: models.ImportanceMustHave, PillarID: models.PillarHD},
			{ID: "hd-3", Name: "5008S CorDiax", Range: models.RangeExpert, Importance: models.ImportanceMustHave, PillarID: models.PillarHD},
			{ID: "hd-4", Name: "FX Classix Dialyzer", Range: models.RangeExpert, Importance: models.ImportanceNiceToHave, PillarID: models.PillarHD},
		},
	)
	require.NoError(t, err)
	return c
}

func defaultCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	c, err := catalog.Default()
	require.NoError(t, err)
	return c
}

func TestSynthesizeMarket_HDScenarios(t *testing.T) {
	c := hdCatalog(t)
	s := NewSynthesizer(c)

	t.Run("low completeness activates essential must-haves only", func(t *testing.T) {
		m := s.SynthesizeMarket(models.MarketMeta{ID: "kh", Completeness: 45}, FixedSource(0))

		assert.True(t, m.IsProductActive("hd-1"))
		assert.True(t, m.IsProductActive("hd-2"))
		assert.False(t, m.IsProductActive("hd-3"))
		assert.False(t, m.IsProductActive("hd-4"))

		assert.Equal(t, models.PillarStat{
			EssentialActive: true,
			ExpertActive:    false,
			Completeness:    50,
			ActionNeeded:    true,
		}, m.PillarStats[models.PillarHD])
	})

	t.Run("high completeness activates everything", func(t *testing.T) {
		m := s.SynthesizeMarket(models.MarketMeta{ID: "us", Completeness: 95}, FixedSource(0))

		assert.Equal(t, models.PillarStat{
			EssentialActive: true,
			ExpertActive:    true,
			Completeness:    100,
			ActionNeeded:    false,
		}, m.PillarStats[models.PillarHD])
	})

	t.Run("override removes one expert product", func(t *testing.T) {
		m := s.SynthesizeMarket(models.MarketMeta{
			ID:           "us",
			Completeness: 95,
			Overrides:    map[string]bool{"hd-3": false},
		}, FixedSource(0))

		assert.False(t, m.IsProductActive("hd-3"))
		stat := m.PillarStats[models.PillarHD]
		assert.Equal(t, 75, stat.Completeness)
		assert.True(t, stat.EssentialActive)
		assert.True(t, stat.ExpertActive, "hd-4 is still active")
		assert.False(t, stat.ActionNeeded)
	})

	t.Run("empty pillar is present and clean", func(t *testing.T) {
		m := s.SynthesizeMarket(models.MarketMeta{ID: "us", Completeness: 95}, FixedSource(0))

		stat, ok := m.PillarStats[models.PillarDigital]
		require.True(t, ok)
		assert.Equal(t, models.PillarStat{}, stat)
	})
}

func TestSynthesizeStatuses_Tiers(t *testing.T) {
	c := defaultCatalog(t)
	s := NewSynthesizer(c)

	cases := []struct {
		completeness int
		want         func(p models.Product) bool
	}{
		{100, func(models.Product) bool { return true }},
		{81, func(models.Product) bool { return true }},
		{80, func(p models.Product) bool { return p.IsEssential() }},
		{51, func(p models.Product) bool { return p.IsEssential() }},
		{50, func(p models.Product) bool { return p.IsEssential() && p.IsMustHave() }},
		{0, func(p models.Product) bool { return p.IsEssential() && p.IsMustHave() }},
	}

	for _, tc := range cases {
		statuses := s.SynthesizeStatuses(tc.completeness, nil, FixedSource(0))
		for _, p := range c.Products() {
			assert.Equal(t, tc.want(p), statuses.IsActive(p.ID), "completeness=%d product=%s", tc.completeness, p.ID)
		}
	}
}

func TestSynthesizeStatuses_Perturbation(t *testing.T) {
	c := hdCatalog(t)
	s := NewSynthesizer(c)

	// 0.9 is the boundary and must not flip; 0.95 flips
	src := &sequenceSource{draws: []float64{0.95, 0.9, 0.99, 0.1}}
	statuses := s.SynthesizeStatuses(45, nil, src)

	assert.False(t, statuses.IsActive("hd-1"), "flipped from active")
	assert.True(t, statuses.IsActive("hd-2"), "boundary draw keeps baseline")
	assert.True(t, statuses.IsActive("hd-3"), "flipped from inactive")
	assert.False(t, statuses.IsActive("hd-4"))
	assert.Equal(t, 4, src.next, "one draw per product")
}

func TestSynthesizeStatuses_OverridesAlwaysWin(t *testing.T) {
	c := defaultCatalog(t)
	s := NewSynthesizer(c)

	overrides := map[string]bool{"hd-1": false, "hd-3": true, "dig-2": true, "srv-1": false}

	for _, completeness := range []int{0, 45, 60, 95} {
		for _, draw := range []float64{0, 0.5, 0.99} {
			statuses := s.SynthesizeStatuses(completeness, overrides, FixedSource(draw))
			for id, want := range overrides {
				assert.Equal(t, want, statuses.IsActive(id), "completeness=%d draw=%v product=%s", completeness, draw, id)
			}
		}
	}
}

func TestSynthesizeStatuses_UnknownOverrideIgnored(t *testing.T) {
	c := hdCatalog(t)
	s := NewSynthesizer(c)

	statuses := s.SynthesizeStatuses(95, map[string]bool{"ghost": false}, nil)
	_, ok := statuses.Get("ghost")
	assert.False(t, ok)
	assert.Len(t, statuses.Map(), 4)
}

func TestSynthesizeStatuses_Notes(t *testing.T) {
	c := hdCatalog(t)
	statuses := NewSynthesizer(c).SynthesizeStatuses(45, nil, FixedSource(0))

	active, _ := statuses.Get("hd-1")
	assert.Equal(t, models.NoteAvailable, active.Notes)
	assert.Equal(t, "hd-1", active.ProductID)

	inactive, _ := statuses.Get("hd-4")
	assert.Equal(t, models.NoteApprovalPending, inactive.Notes)
}

func TestSynthesizeMarket_SeededDeterminism(t *testing.T) {
	c := defaultCatalog(t)
	s := NewSynthesizer(c)
	meta := models.MarketMeta{ID: "th", Country: "Thailand", Region: "APAC", Completeness: 75, ActionNeeded: true}

	first := s.SynthesizeMarket(meta, NewSeededSource(42))
	second := s.SynthesizeMarket(meta, NewSeededSource(42))
	assert.Equal(t, first, second)
}

func TestSynthesizeMarket_Metadata(t *testing.T) {
	s := NewSynthesizer(hdCatalog(t))

	m := s.SynthesizeMarket(models.MarketMeta{
		ID: "kh", Country: "Cambodia", Region: "APAC", Completeness: 45, ActionNeeded: true,
	}, nil)
	assert.Equal(t, "Cambodia", m.Country)
	assert.Equal(t, "APAC", m.Region)
	assert.Equal(t, models.ActionNoteExpert, m.ActionNote)

	m = s.SynthesizeMarket(models.MarketMeta{ID: "de", Completeness: 140}, nil)
	assert.Empty(t, m.ActionNote)
	assert.Equal(t, 100, m.Completeness)
}

func TestComputePillarStats_Properties(t *testing.T) {
	c := defaultCatalog(t)
	s := NewSynthesizer(c)

	for seed := int64(1); seed <= 50; seed++ {
		statuses := s.SynthesizeStatuses(int(seed*2), nil, NewSeededSource(seed))
		stats := ComputePillarStats(statuses, c)
		require.Len(t, stats, len(c.Pillars()))

		for _, pillar := range c.Pillars() {
			stat := stats[pillar.ID]
			assert.GreaterOrEqual(t, stat.Completeness, 0)
			assert.LessOrEqual(t, stat.Completeness, 100)

			var essentialActive, expertActive bool
			for _, p := range c.ProductsByPillar(pillar.ID) {
				if statuses.IsActive(p.ID) {
					essentialActive = essentialActive || p.IsEssential()
					expertActive = expertActive || p.IsExpert()
				}
			}
			assert.Equal(t, essentialActive, stat.EssentialActive)
			assert.Equal(t, expertActive, stat.ExpertActive)
		}

		// no hidden state
		assert.Equal(t, stats, ComputePillarStats(statuses, c))
	}
}

func TestComputePillarStats_EveryKnownPillar(t *testing.T) {
	c := hdCatalog(t)
	s := NewSynthesizer(c)

	m := s.SynthesizeMarket(models.MarketMeta{ID: "de", Completeness: 95}, nil)
	require.Len(t, m.PillarStats, len(models.AllPillars))
	for _, id := range models.AllPillars {
		_, ok := m.PillarStats[id]
		assert.True(t, ok, "missing stat for %s", id)
	}

	assert.Equal(t, 100, m.PillarStats[models.PillarHD].Completeness)
	assert.Equal(t, models.PillarStat{}, m.PillarStats[models.PillarHV])
	assert.Equal(t, models.PillarStat{}, m.PillarStats[models.PillarDigital])
}

func TestComputePillarStats_EssentialOnlyPillar(t *testing.T) {
	c, err := catalog.New(
		[]models.Pillar{{ID: models.PillarServices, Label: "Services"}},
		[]models.Product{
			{ID: "srv-1", Range: models.RangeEssential, Importance: models.ImportanceMustHave, PillarID: models.PillarServices},
			{ID: "srv-2", Range: models.RangeEssential, Importance: models.ImportanceNiceToHave, PillarID: models.PillarServices},
			{ID: "srv-3", Range: models.RangeEssential, Importance: models.ImportanceNiceToHave, PillarID: models.PillarServices},
		},
	)
	require.NoError(t, err)

	all, err := FromActivation(c, map[string]bool{"srv-1": true, "srv-2": true, "srv-3": true})
	require.NoError(t, err)
	stat := ComputePillarStats(all, c)[models.PillarServices]
	assert.False(t, stat.ActionNeeded, "empty expert range never raises the flag")
	assert.False(t, stat.ExpertActive)

	one, err := FromActivation(c, map[string]bool{"srv-1": true, "srv-2": false, "srv-3": false})
	require.NoError(t, err)
	stat = ComputePillarStats(one, c)[models.PillarServices]
	assert.Equal(t, 33, stat.Completeness)
	assert.True(t, stat.ActionNeeded)

	two, err := FromActivation(c, map[string]bool{"srv-1": true, "srv-2": true, "srv-3": false})
	require.NoError(t, err)
	assert.Equal(t, 67, ComputePillarStats(two, c)[models.PillarServices].Completeness)
}

func TestPercent(t *testing.T) {
	assert.Equal(t, 0, Percent(0, 0))
	assert.Equal(t, 0, Percent(0, 4))
	assert.Equal(t, 33, Percent(1, 3))
	assert.Equal(t, 67, Percent(2, 3))
	assert.Equal(t, 13, Percent(1, 8))
	assert.Equal(t, 50, Percent(2, 4))
	assert.Equal(t, 100, Percent(4, 4))
}

func TestNewProductStatuses(t *testing.T) {
	c := hdCatalog(t)

	_, err := FromActivation(c, map[string]bool{"hd-1": true, "hd-2": true, "hd-3": true})
	assert.ErrorIs(t, err, ErrMissingStatus)

	_, err = FromActivation(c, map[string]bool{"hd-1": true, "hd-2": true, "hd-3": true, "hd-4": true, "x": true})
	assert.ErrorIs(t, err, ErrUnknownProduct)

	statuses, err := NewProductStatuses(c, map[string]models.MarketProductStatus{
		"hd-1": {IsActive: true},
		"hd-2": {IsActive: false},
		"hd-3": {IsActive: false},
		"hd-4": {IsActive: true, Notes: "tender 2025"},
	})
	require.NoError(t, err)
	st, ok := statuses.Get("hd-4")
	require.True(t, ok)
	assert.Equal(t, "hd-4", st.ProductID)
	assert.Equal(t, "tender 2025", st.Notes)
}
