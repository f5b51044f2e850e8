package engine

import (
	"fmt"
	"strings"

	"github.com/user/nessus2xlsx/pkg/nessus"
)

// Finding is one plugin hit on one host/port, flattened from a ReportItem
// together with the host it was reported against.
type Finding struct {
	PluginID    string
	PluginName  string
	Severity    int // 0 (info) to 4 (critical)
	HostIP      string
	Port        string
	Protocol    string
	Service     string
	Description string
	Solution    string
	CVE         string
	Output      string
	SeeAlso     []string
	Refs        []string
}

// NewFinding builds a Finding from a report item seen on the host with the
// given IP.
func NewFinding(hostIP string, item nessus.ReportItem) Finding {
	return Finding{
		PluginID:    item.PluginID,
		PluginName:  item.PluginName,
		Severity:    item.Severity,
		HostIP:      hostIP,
		Port:        item.Port,
		Protocol:    item.Protocol,
		Service:     item.Service(),
		Description: item.Description(),
		Solution:    item.Solution(),
		CVE:         item.FirstCVE(),
		Output:      item.PluginOutput(),
		SeeAlso:     item.SeeAlso,
		Refs:        item.Xref,
	}
}

// Target renders the affected target as "IP (port/service)". Hosts without
// a host-ip property are shown as "unknown".
func (f Finding) Target() string {
	ip := f.HostIP
	if ip == "" {
		ip = "unknown"
	}
	return fmt.Sprintf("%s (%s/%s)", ip, f.Port, f.Service)
}

// OutputBlock is the plugin output prefixed by the target it came from.
func (f Finding) OutputBlock() string {
	return f.Target() + ":\n" + strings.TrimSpace(f.Output)
}
