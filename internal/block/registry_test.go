package block

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindOf(t *testing.T) {
	k, err := KindOf("RSI")
	require.NoError(t, err)
	assert.Equal(t, CategoryIndicator, k.Category)
	assert.Equal(t, []string{"price"}, k.InputPorts)
	assert.Equal(t, []string{"value"}, k.OutputPorts)

	_, err = KindOf("Bollinger")
	var unknown *ErrUnknownKind
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "Bollinger", unknown.Name)
}

func TestKindsStableOrder(t *testing.T) {
	a := Kinds()
	b := Kinds()
	require.Equal(t, len(a), len(b))
	for i := range a {
		assert.Equal(t, a[i].Name, b[i].Name)
	}
	// First entry is the default trigger.
	assert.Equal(t, "OnCandleClose", a[0].Name)
}

func TestNormalizeParams(t *testing.T) {
	payment, err := KindOf("Payment")
	require.NoError(t, err)

	t.Run("defaults merged", func(t *testing.T) {
		params, err := payment.NormalizeParams(map[string]any{"amount": "2500"})
		require.NoError(t, err)
		assert.Equal(t, "USDC", params["stablecoin"])
		assert.Equal(t, "2500", params["amount"])
	})

	t.Run("select option enforced", func(t *testing.T) {
		_, err := payment.NormalizeParams(map[string]any{"stablecoin": "DOGE"})
		var invalid *ErrInvalidParam
		require.ErrorAs(t, err, &invalid)
		assert.Equal(t, "stablecoin", invalid.Key)
	})

	t.Run("unknown key rejected", func(t *testing.T) {
		_, err := payment.NormalizeParams(map[string]any{"slippage": 0.1})
		assert.Error(t, err)
	})

	t.Run("numeric coercion", func(t *testing.T) {
		rsi, err := KindOf("RSI")
		require.NoError(t, err)
		params, err := rsi.NormalizeParams(map[string]any{"period": "21"})
		require.NoError(t, err)
		assert.Equal(t, 21.0, params["period"])

		_, err = rsi.NormalizeParams(map[string]any{"period": "abc"})
		assert.Error(t, err)
	})

	t.Run("risk level closed set", func(t *testing.T) {
		risk, err := KindOf("InvestmentRisk")
		require.NoError(t, err)
		for _, lvl := range []string{"safe", "medium", "aggressive"} {
			_, err := risk.NormalizeParams(map[string]any{"riskLevel": lvl})
			assert.NoError(t, err, lvl)
		}
		_, err = risk.NormalizeParams(map[string]any{"riskLevel": "yolo"})
		assert.Error(t, err)
	})
}

func TestDisplayNameTables(t *testing.T) {
	name, ok := ModelDisplayName("ClaudeSonnet")
	require.True(t, ok)
	assert.Equal(t, "Claude Sonnet 4.5", name)

	_, ok = ModelDisplayName("RSI")
	assert.False(t, ok)

	name, ok = AlgoDisplayName("StatisticalArbitrage")
	require.True(t, ok)
	assert.Equal(t, "Statistical Arbitrage (Pairs / Cointegration)", name)

	_, ok = AlgoDisplayName("Buy")
	assert.False(t, ok)

	// Every model and algorithm kind in the catalog has a display name.
	for _, k := range Kinds() {
		switch k.Category {
		case CategoryAIModel:
			_, ok := ModelDisplayName(k.Name)
			assert.True(t, ok, k.Name)
		case CategoryAlgorithm:
			_, ok := AlgoDisplayName(k.Name)
			assert.True(t, ok, k.Name)
		}
	}
}

func TestErrUnknownKindIsAsable(t *testing.T) {
	_, err := KindOf("Nope")
	assert.True(t, errors.As(err, new(*ErrUnknownKind)))
}
