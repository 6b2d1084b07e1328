package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestAsset_Validate(t *testing.T) {
	tests := []struct {
		name    string
		asset   Asset
		wantErr bool
	}{
		{
			name: "Crypto asset with provider ref should pass",
			asset: Asset{
				ID:          uuid.New(),
				Symbol:      "BTC",
				Kind:        AssetKindCrypto,
				Provider:    ProviderCoinGecko,
				ProviderRef: "bitcoin",
			},
			wantErr: false,
		},
		{
			name: "Crypto asset without provider ref should fail",
			asset: Asset{
				ID:       uuid.New(),
				Symbol:   "BTC",
				Kind:     AssetKindCrypto,
				Provider: ProviderCoinGecko,
				// ProviderRef is empty
			},
			wantErr: true,
		},
		{
			name: "Empty symbol should fail",
			asset: Asset{
				ID:       uuid.New(),
				Symbol:   "  ",
				Kind:     AssetKindEquity,
				Provider: ProviderYFinance,
			},
			wantErr: true,
		},
		{
			name: "Unknown kind should fail",
			asset: Asset{
				ID:       uuid.New(),
				Symbol:   "AAPL",
				Kind:     AssetKind("bond"),
				Provider: ProviderYFinance,
			},
			wantErr: true,
		},
		{
			name: "Unknown provider should fail",
			asset: Asset{
				ID:       uuid.New(),
				Symbol:   "AAPL",
				Kind:     AssetKindEquity,
				Provider: ProviderName("bloomberg"),
			},
			wantErr: true,
		},
		{
			name: "Equity asset without native currency hint should pass",
			asset: Asset{
				ID:       uuid.New(),
				Symbol:   "VOD.L",
				Kind:     AssetKindEquity,
				Provider: ProviderYFinance,
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.asset.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestAsset_NormalizedSymbol(t *testing.T) {
	a := Asset{Symbol: " vod.l "}
	assert.Equal(t, "VOD.L", a.NormalizedSymbol())
}

func TestHolding_Validate(t *testing.T) {
	assetID := uuid.New()

	valid := Holding{ID: uuid.New(), Account: DefaultAccount, AssetID: assetID, Quantity: decimal.NewFromFloat(0.5)}
	assert.NoError(t, valid.Validate())

	zeroQty := Holding{ID: uuid.New(), AssetID: assetID, Quantity: decimal.Zero}
	assert.NoError(t, zeroQty.Validate())

	negative := Holding{ID: uuid.New(), AssetID: assetID, Quantity: decimal.NewFromInt(-1)}
	assert.Error(t, negative.Validate())

	noAsset := Holding{ID: uuid.New(), Quantity: decimal.NewFromInt(1)}
	assert.Error(t, noAsset.Validate())
}
