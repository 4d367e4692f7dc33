package router

// Summary is the printable form of a Decision.
type Summary struct {
	Service     string   `json:"service,omitempty"`
	Protocol    string   `json:"protocol,omitempty"`
	Stage       Stage    `json:"stage"`
	Rule        string   `json:"rule,omitempty"`
	Candidates  []string `json:"candidates,omitempty"`
	BodySkipped bool     `json:"body_skipped,omitempty"`
	Shallow     bool     `json:"shallow,omitempty"`

	SigningName  string `json:"signing_name,omitempty"`
	TargetPrefix string `json:"target_prefix,omitempty"`
	Operation    string `json:"operation,omitempty"`
	Host         string `json:"host,omitempty"`
	Path         string `json:"path,omitempty"`
}

// Summary flattens the decision for JSON output.
func (d Decision) Summary() Summary {
	s := Summary{
		Stage:        d.Stage,
		Rule:         d.Rule,
		Candidates:   identifierStrings(d.Candidates),
		BodySkipped:  d.BodySkipped,
		Shallow:      d.Shallow,
		SigningName:  d.Indicators.SigningName,
		TargetPrefix: d.Indicators.TargetPrefix,
		Operation:    d.Indicators.Operation,
		Host:         d.Indicators.Host,
		Path:         d.Indicators.Path,
	}
	if d.Service != nil {
		s.Service = d.Service.Name()
		s.Protocol = d.Service.Protocol
	}
	return s
}
