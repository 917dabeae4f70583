package calculation

import (
	"errors"
	"math"
	"testing"
)

func TestCholesky(t *testing.T) {
	_, corr := FourAssetPreset()
	l, err := cholesky(corr)
	if err != nil {
		t.Fatalf("cholesky failed: %v", err)
	}
	for i := range corr {
		for j := range corr {
			sum := 0.0
			for k := range corr {
				sum += l[i][k] * l[j][k]
			}
			if math.Abs(sum-corr[i][j]) > 1e-12 {
				t.Errorf("L·Lᵀ[%d][%d] = %v, want %v", i, j, sum, corr[i][j])
			}
		}
		for j := i + 1; j < len(corr); j++ {
			if l[i][j] != 0 {
				t.Errorf("L[%d][%d] = %v, want 0 above the diagonal", i, j, l[i][j])
			}
		}
	}

	if _, err := cholesky([][]float64{{1, 2}, {2, 1}}); !errors.Is(err, errNotPositiveDefinite) {
		t.Errorf("expected errNotPositiveDefinite, got %v", err)
	}
}

func TestMarketModel_IndependentDraws(t *testing.T) {
	model, err := NewMarketModel(DefaultMarketConfig())
	if err != nil {
		t.Fatalf("NewMarketModel failed: %v", err)
	}

	r := NewStreamRand(11, 0)
	const n = 20000
	var rets, infl []float64
	for i := 0; i < n; i++ {
		d := model.Draw(r)
		if d.EquityReturn != d.BondReturn {
			t.Fatalf("independent mode should apply one return to both sleeves, got %v and %v", d.EquityReturn, d.BondReturn)
		}
		rets = append(rets, d.EquityReturn)
		infl = append(infl, d.Inflation)
	}

	if got := mean(rets); math.Abs(got-0.015) > 0.01 {
		t.Errorf("mean return = %.4f, want about 0.015", got)
	}
	if got := stdDev(rets); math.Abs(got-0.15) > 0.01 {
		t.Errorf("return volatility = %.4f, want about 0.15", got)
	}
	if got := mean(infl); math.Abs(got-0.025) > 0.001 {
		t.Errorf("mean inflation = %.4f, want about 0.025", got)
	}
}

func TestMarketModel_DeterministicInflation(t *testing.T) {
	cfg := DefaultMarketConfig()
	cfg.InflationStochastic = false
	model, err := NewMarketModel(cfg)
	if err != nil {
		t.Fatalf("NewMarketModel failed: %v", err)
	}
	r := NewStreamRand(3, 0)
	for i := 0; i < 10; i++ {
		if d := model.Draw(r); d.Inflation != cfg.InflationMean {
			t.Fatalf("inflation = %v, want %v", d.Inflation, cfg.InflationMean)
		}
	}
}

func TestMarketModel_CorrelatedDraws(t *testing.T) {
	cfg := DefaultMarketConfig()
	cfg.Mode = MarketCorrelated
	cfg.Assets, cfg.Correlation = TwoAssetPreset()
	model, err := NewMarketModel(cfg)
	if err != nil {
		t.Fatalf("NewMarketModel failed: %v", err)
	}

	r := NewStreamRand(21, 0)
	const n = 20000
	eq := make([]float64, n)
	bd := make([]float64, n)
	for i := 0; i < n; i++ {
		d := model.Draw(r)
		eq[i], bd[i] = d.EquityReturn, d.BondReturn
	}

	if got := mean(eq); math.Abs(got-0.07) > 0.01 {
		t.Errorf("equity mean = %.4f, want about 0.07", got)
	}
	if got := mean(bd); math.Abs(got-0.04) > 0.005 {
		t.Errorf("bond mean = %.4f, want about 0.04", got)
	}
	me, mb := mean(eq), mean(bd)
	cov := 0.0
	for i := range eq {
		cov += (eq[i] - me) * (bd[i] - mb)
	}
	cov /= n
	if rho := cov / (stdDev(eq) * stdDev(bd)); math.Abs(rho-0.1) > 0.05 {
		t.Errorf("equity/bond correlation = %.3f, want about 0.1", rho)
	}
}

func TestMarketConfig_Validate(t *testing.T) {
	correlated := func(mutate func(*MarketConfig)) MarketConfig {
		cfg := DefaultMarketConfig()
		cfg.Mode = MarketCorrelated
		cfg.Assets, cfg.Correlation = FourAssetPreset()
		mutate(&cfg)
		return cfg
	}

	testCases := []struct {
		name    string
		cfg     MarketConfig
		wantErr bool
	}{
		{name: "default", cfg: DefaultMarketConfig()},
		{name: "four asset preset", cfg: correlated(func(*MarketConfig) {})},
		{name: "negative volatility", cfg: func() MarketConfig { c := DefaultMarketConfig(); c.ReturnVolatility = -0.1; return c }(), wantErr: true},
		{name: "inflation mean out of range", cfg: func() MarketConfig { c := DefaultMarketConfig(); c.InflationMean = 1.5; return c }(), wantErr: true},
		{name: "unknown mode", cfg: func() MarketConfig { c := DefaultMarketConfig(); c.Mode = "historical"; return c }(), wantErr: true},
		{name: "no assets", cfg: correlated(func(c *MarketConfig) { c.Assets = nil }), wantErr: true},
		{name: "ragged correlation", cfg: correlated(func(c *MarketConfig) { c.Correlation[1] = []float64{0.1, 1} }), wantErr: true},
		{name: "asymmetric correlation", cfg: correlated(func(c *MarketConfig) { c.Correlation[0][1] = 0.5 }), wantErr: true},
		{name: "diagonal not one", cfg: correlated(func(c *MarketConfig) { c.Correlation[2][2] = 0.9 }), wantErr: true},
		{name: "sleeve weights", cfg: correlated(func(c *MarketConfig) { c.Assets[0].Weight = 0.5 }), wantErr: true},
		{name: "unknown sleeve", cfg: correlated(func(c *MarketConfig) { c.Assets[3].Sleeve = "cash" }), wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if tc.wantErr && !errors.Is(err, ErrConfiguration) {
				t.Fatalf("expected configuration error, got %v", err)
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestNewMarketModel_NotPositiveDefinite(t *testing.T) {
	cfg := DefaultMarketConfig()
	cfg.Mode = MarketCorrelated
	cfg.Assets, _ = TwoAssetPreset()
	cfg.Correlation = [][]float64{{1, 1}, {1, 1}}

	_, err := NewMarketModel(cfg)
	var cfgErr *ConfigurationError
	if !errors.As(err, &cfgErr) || cfgErr.Field != "market.correlation" {
		t.Fatalf("expected market.correlation error, got %v", err)
	}
}

func TestMarketDraw_Blend(t *testing.T) {
	d := MarketDraw{EquityReturn: 0.10, BondReturn: 0.02}
	got := d.Blend(Allocation{Equity: 0.6, Bond: 0.4})
	if math.Abs(got-0.068) > 1e-12 {
		t.Errorf("Blend = %v, want 0.068", got)
	}
}
