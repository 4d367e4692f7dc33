package specs

// Source names recorded on mapped services.
const (
	SourceSpecs = "specs"
	SourceYAML  = "yaml"
)

// Definition is the subset of a service definition the router needs,
// whichever file it was read from.
type Definition struct {
	Name string `yaml:"name"`
	// Variant is the protocol of an alternative definition of the same
	// service (ex: the query flavour of sqs). Empty for the primary one.
	Variant        string   `yaml:"variant,omitempty"`
	Protocol       string   `yaml:"protocol"`
	SigningName    string   `yaml:"signing_name,omitempty"`
	TargetPrefix   string   `yaml:"target_prefix,omitempty"`
	EndpointPrefix string   `yaml:"endpoint_prefix,omitempty"`
	APIVersion     string   `yaml:"api_version,omitempty"`
	Operations     []string `yaml:"operations"`

	Source string `yaml:"-"`
}

// CatalogFile is the top-level structure of the compact services.yaml
//
//	services:
//	  - name: sqs
//	    variant: query
//	    protocol: query
//	    signing_name: sqs
//	    endpoint_prefix: sqs
//	    api_version: "2012-11-05"
//	    operations: [SendMessage, ReceiveMessage]
type CatalogFile struct {
	Services []Definition `yaml:"services"`
}
