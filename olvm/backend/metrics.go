package backend

import (
	"github.com/Cloud-Foundations/tricorder/go/tricorder"
	"github.com/Cloud-Foundations/tricorder/go/tricorder/units"
)

var scriptTimeDistribution *tricorder.CumulativeDistribution

func init() {
	latencyBucketer := tricorder.NewGeometricBucketer(1, 1e6)
	scriptTimeDistribution = latencyBucketer.NewCumulativeDistribution()
	if err := tricorder.RegisterMetric("/backend/script-time",
		scriptTimeDistribution, units.Millisecond,
		"backend script run time"); err != nil {
		panic(err)
	}
}
