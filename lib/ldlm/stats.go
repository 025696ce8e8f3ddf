package ldlm

import (
	gometrics "github.com/rcrowley/go-metrics"
)

// Stats is a snapshot of a namespace's value block counters.
type Stats struct {
	Namespace       string  `json:"namespace"`
	Resources       int     `json:"resources"`
	ResourcesTotal  int64   `json:"resources_total"`
	InitOK          int64   `json:"init_ok"`
	InitFailed      int64   `json:"init_failed"`
	Updates         int64   `json:"updates"`
	UpdateFailed    int64   `json:"update_failed"`
	Frees           int64   `json:"frees"`
	Lookups         int64   `json:"lookups"`
	LookupMeanMicro float64 `json:"lookup_mean_us"`
	LookupP99Micro  float64 `json:"lookup_p99_us"`
}

// nsStats holds the per namespace metrics, registered in a private registry.
type nsStats struct {
	registry     gometrics.Registry
	resources    gometrics.Counter
	initOK       gometrics.Counter
	initFailed   gometrics.Counter
	updates      gometrics.Counter
	updateFailed gometrics.Counter
	frees        gometrics.Counter
	lookups      gometrics.Timer
}

func newNSStats() *nsStats {
	r := gometrics.NewRegistry()
	return &nsStats{
		registry:     r,
		resources:    gometrics.NewRegisteredCounter("resources", r),
		initOK:       gometrics.NewRegisteredCounter("lvb.init.ok", r),
		initFailed:   gometrics.NewRegisteredCounter("lvb.init.failed", r),
		updates:      gometrics.NewRegisteredCounter("lvb.update.ok", r),
		updateFailed: gometrics.NewRegisteredCounter("lvb.update.failed", r),
		frees:        gometrics.NewRegisteredCounter("lvb.free", r),
		lookups:      gometrics.NewRegisteredTimer("backend.lookup", r),
	}
}

// Stats returns a snapshot of the namespace counters.
func (ns *Namespace) Stats() Stats {
	lookups := ns.stats.lookups
	return Stats{
		Namespace:       ns.name,
		Resources:       ns.Len(),
		ResourcesTotal:  ns.stats.resources.Count(),
		InitOK:          ns.stats.initOK.Count(),
		InitFailed:      ns.stats.initFailed.Count(),
		Updates:         ns.stats.updates.Count(),
		UpdateFailed:    ns.stats.updateFailed.Count(),
		Frees:           ns.stats.frees.Count(),
		Lookups:         lookups.Count(),
		LookupMeanMicro: lookups.Mean() / 1e3,
		LookupP99Micro:  lookups.Percentile(0.99) / 1e3,
	}
}

// Registry exposes the namespace metrics registry, e.g. for periodic logging.
func (ns *Namespace) Registry() gometrics.Registry {
	return ns.stats.registry
}
