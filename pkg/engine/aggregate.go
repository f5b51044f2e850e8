package engine

import (
	"github.com/sirupsen/logrus"

	"github.com/user/nessus2xlsx/pkg/logger"
	"github.com/user/nessus2xlsx/pkg/nessus"
)

// PluginGroup accumulates every finding reported for one plugin.
type PluginGroup struct {
	PluginID    string
	PluginName  string
	Severity    int
	CVE         string
	Description string
	Solution    string

	Protocols map[string]struct{}
	Ports     map[string]struct{}
	SeeAlso   map[string]struct{}
	Refs      map[string]struct{}

	// Targets holds one "IP (port/service)" entry per contributing finding,
	// duplicates included.
	Targets []string
	Outputs []string
}

func newPluginGroup(f Finding) *PluginGroup {
	return &PluginGroup{
		PluginID:    f.PluginID,
		PluginName:  f.PluginName,
		Severity:    f.Severity,
		CVE:         f.CVE,
		Description: f.Description,
		Solution:    f.Solution,
		Protocols:   make(map[string]struct{}),
		Ports:       make(map[string]struct{}),
		SeeAlso:     make(map[string]struct{}),
		Refs:        make(map[string]struct{}),
	}
}

func (g *PluginGroup) add(f Finding) {
	g.Protocols[f.Protocol] = struct{}{}
	g.Ports[f.Port] = struct{}{}
	g.Targets = append(g.Targets, f.Target())
	if f.Output != "" {
		g.Outputs = append(g.Outputs, f.OutputBlock())
	}
	for _, s := range f.SeeAlso {
		if s != "" {
			g.SeeAlso[s] = struct{}{}
		}
	}
	for _, r := range f.Refs {
		if r != "" {
			g.Refs[r] = struct{}{}
		}
	}
}

// Aggregation groups findings by plugin ID, remembering the order in which
// plugins were first seen.
type Aggregation struct {
	// MinSeverity is the lowest positive severity kept. Informational
	// findings (severity 0) are always dropped, whatever the value.
	// Severities outside the Nessus scale are kept as reported.
	MinSeverity int

	groups map[string]*PluginGroup
	order  []string
	log    *logrus.Logger
}

// NewAggregation creates an empty aggregation keeping severities 1 and up.
// A nil logger discards progress messages.
func NewAggregation(log *logrus.Logger) *Aggregation {
	if log == nil {
		log = logger.Discard()
	}
	return &Aggregation{
		MinSeverity: SeverityLow,
		groups:      make(map[string]*PluginGroup),
		log:         log,
	}
}

// keeps reports whether a finding of the given severity belongs in the
// report.
func (a *Aggregation) keeps(sev int) bool {
	if sev == SeverityInfo {
		return false
	}
	return sev < 0 || sev >= a.MinSeverity
}

// AddFinding folds a finding into its plugin group. It reports whether the
// finding was kept.
func (a *Aggregation) AddFinding(f Finding) bool {
	if !a.keeps(f.Severity) {
		return false
	}

	g, ok := a.groups[f.PluginID]
	if !ok {
		g = newPluginGroup(f)
		a.groups[f.PluginID] = g
		a.order = append(a.order, f.PluginID)
	}
	g.add(f)
	return true
}

// AddHost adds every finding of a host and returns how many were kept.
func (a *Aggregation) AddHost(h nessus.ReportHost) int {
	ip := h.IP()
	kept := 0
	for _, item := range h.Items {
		if a.AddFinding(NewFinding(ip, item)) {
			kept++
		}
	}
	a.log.WithFields(logrus.Fields{
		"host":    h.Name,
		"ip":      ip,
		"items":   len(h.Items),
		"skipped": len(h.Items) - kept,
	}).Debug("host aggregated")
	return kept
}

// AddReport adds every host of a report.
func (a *Aggregation) AddReport(r *nessus.Report) {
	for _, h := range r.Hosts {
		a.AddHost(h)
	}
	a.log.WithFields(logrus.Fields{
		"hosts":   len(r.Hosts),
		"plugins": len(a.order),
	}).Debug("report aggregated")
}

// Len returns the number of distinct plugins.
func (a *Aggregation) Len() int {
	return len(a.order)
}

// Group returns the group for a plugin ID.
func (a *Aggregation) Group(pluginID string) (*PluginGroup, bool) {
	g, ok := a.groups[pluginID]
	return g, ok
}

// Groups returns the plugin groups in first-seen order.
func (a *Aggregation) Groups() []*PluginGroup {
	out := make([]*PluginGroup, 0, len(a.order))
	for _, id := range a.order {
		out = append(out, a.groups[id])
	}
	return out
}
