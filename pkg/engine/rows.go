package engine

import (
	"sort"
	"strings"
)

// Column headers of the grouped report, in output order.
var Columns = []string{
	"Plugin ID",
	"Plugin Name",
	"Severity",
	"Affected IP Count",
	"Affected IPs",
	"Output",
	"CVE",
	"Description",
	"Solution",
	"Protocol(s)",
	"Port(s)",
	"See Also",
	"Reference ID",
}

// SeverityColumn is the header of the column holding the severity level.
const SeverityColumn = "Severity"

// Row is one line of the grouped report.
type Row struct {
	PluginID      string
	PluginName    string
	Severity      int
	AffectedCount int
	AffectedIPs   string
	Output        string
	CVE           string
	Description   string
	Solution      string
	Protocols     string
	Ports         string
	SeeAlso       string
	ReferenceIDs  string
}

// Values returns the cells of the row in Columns order.
func (r Row) Values() []interface{} {
	return []interface{}{
		r.PluginID,
		r.PluginName,
		r.Severity,
		r.AffectedCount,
		r.AffectedIPs,
		r.Output,
		r.CVE,
		r.Description,
		r.Solution,
		r.Protocols,
		r.Ports,
		r.SeeAlso,
		r.ReferenceIDs,
	}
}

// Row flattens the group into a report row.
func (g *PluginGroup) Row() Row {
	targets := append([]string(nil), g.Targets...)
	sort.Strings(targets)

	return Row{
		PluginID:      g.PluginID,
		PluginName:    g.PluginName,
		Severity:      g.Severity,
		AffectedCount: len(targets),
		AffectedIPs:   strings.Join(targets, "\n"),
		Output:        strings.Join(g.Outputs, "\n\n"),
		CVE:           g.CVE,
		Description:   g.Description,
		Solution:      g.Solution,
		Protocols:     strings.Join(sortedKeys(g.Protocols), ", "),
		Ports:         strings.Join(sortedKeys(g.Ports), ", "),
		SeeAlso:       strings.Join(sortedKeys(g.SeeAlso), "\n"),
		ReferenceIDs:  strings.Join(sortedKeys(g.Refs), "\n"),
	}
}

// Rows returns one row per plugin, most severe first. Plugins of equal
// severity keep the order in which they were first seen.
func (a *Aggregation) Rows() []Row {
	rows := make([]Row, 0, len(a.order))
	for _, g := range a.Groups() {
		rows = append(rows, g.Row())
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Severity > rows[j].Severity
	})
	return rows
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
