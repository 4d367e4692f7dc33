package domain

// ServiceIndicators holds the cheap, body-free signals that hint at the
// service a request is targeting. Empty fields mean "no evidence".
type ServiceIndicators struct {
	// SigningName comes from the credential scope of the Authorization header.
	SigningName string
	// TargetPrefix and Operation come from the X-Amz-Target header.
	TargetPrefix string
	Operation    string
	Host         string
	Path         string
}

// HasTarget reports whether both halves of a target header were present.
func (si ServiceIndicators) HasTarget() bool {
	return si.TargetPrefix != "" && si.Operation != ""
}
