package services

import (
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	// VolumePlaces is the precision volumes are reported at (barrels)
	VolumePlaces int32 = 2
	// FactorPlaces is the precision correction factors are carried at
	FactorPlaces int32 = 6
)

func roundFloat(v float64, places int32) float64 {
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}

func roundVolume(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v).Round(VolumePlaces)
}

func nopIfNil(logger *zap.Logger) *zap.Logger {
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}
