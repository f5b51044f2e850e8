package nessus

// XML structures for .nessus (v2) documents. Only the fields the grouped
// report needs are mapped.
type Document struct {
	Reports []Report `xml:"Report"`
}

type Report struct {
	Name  string       `xml:"name,attr"`
	Hosts []ReportHost `xml:"ReportHost"`
}

type ReportHost struct {
	Name       string         `xml:"name,attr"`
	Properties HostProperties `xml:"HostProperties"`
	Items      []ReportItem   `xml:"ReportItem"`
}

type HostProperties struct {
	Tags []Tag `xml:"tag"`
}

type Tag struct {
	Name  string `xml:"name,attr"`
	Value string `xml:",chardata"`
}

type ReportItem struct {
	PluginID   string  `xml:"pluginID,attr"`
	PluginName string  `xml:"pluginName,attr"`
	Severity   int     `xml:"severity,attr"` // 0 (info) to 4 (critical)
	Port       string  `xml:"port,attr"`
	Protocol   string  `xml:"protocol,attr"`
	SvcName    *string `xml:"svc_name,attr"`

	// Text elements are decoded as slices; only the first occurrence
	// counts when an element is repeated.
	Descriptions  []string `xml:"description"`
	Solutions     []string `xml:"solution"`
	CVE           []string `xml:"cve"`
	PluginOutputs []string `xml:"plugin_output"`
	SeeAlso       []string `xml:"see_also"`
	Xref          []string `xml:"xref"`
}

// Lookup returns the value of the first tag with the given name.
func (hp HostProperties) Lookup(name string) (string, bool) {
	for _, t := range hp.Tags {
		if t.Name == name {
			return t.Value, true
		}
	}
	return "", false
}

// IP returns the host-ip property, or an empty string if the host has none.
func (h ReportHost) IP() string {
	ip, _ := h.Properties.Lookup("host-ip")
	return ip
}

// Service returns svc_name, falling back to the protocol when the
// attribute is missing altogether.
func (it ReportItem) Service() string {
	if it.SvcName == nil {
		return it.Protocol
	}
	return *it.SvcName
}

// FirstCVE returns the first cve element, if any.
func (it ReportItem) FirstCVE() string {
	return first(it.CVE)
}

func (it ReportItem) Description() string {
	return first(it.Descriptions)
}

func (it ReportItem) Solution() string {
	return first(it.Solutions)
}

func (it ReportItem) PluginOutput() string {
	return first(it.PluginOutputs)
}

func first(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}
