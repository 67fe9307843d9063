package sysconfig

import "fmt"

// Recognized configuration keys.
const (
	KeyAWSEnabled       = "SPINNAKER_AWS_ENABLED"
	KeyAWSDefaultRegion = "SPINNAKER_AWS_DEFAULT_REGION"
	KeyGCEEnabled       = "SPINNAKER_GCE_ENABLED"
	KeyGCEDefaultRegion = "SPINNAKER_GCE_DEFAULT_REGION"
)

// Provider is the enumerated cloud provider selection.
type Provider string

const (
	ProviderAmazon Provider = "amazon"
	ProviderGoogle Provider = "google"
	ProviderNone   Provider = "none"
)

// Options is the small enumerated option set applied to the system
// configuration file.
type Options struct {
	Provider      Provider
	DefaultRegion string
}

// ApplyProviderOptions rewrites the recognized provider keys in doc per
// the selected provider. Keys absent from the document are appended so
// the selection always lands in the file.
func ApplyProviderOptions(doc *Document, opts Options) error {
	var awsEnabled, gceEnabled string
	var awsRegion, gceRegion string

	switch opts.Provider {
	case ProviderAmazon:
		awsEnabled, gceEnabled = "true", "false"
		awsRegion = opts.DefaultRegion
	case ProviderGoogle:
		awsEnabled, gceEnabled = "false", "true"
		gceRegion = opts.DefaultRegion
	case ProviderNone:
		awsEnabled, gceEnabled = "false", "false"
		awsRegion, gceRegion = opts.DefaultRegion, opts.DefaultRegion
	default:
		return fmt.Errorf("sysconfig: unknown provider %q", opts.Provider)
	}

	setOrAppend(doc, KeyAWSEnabled, awsEnabled)
	setOrAppend(doc, KeyAWSDefaultRegion, awsRegion)
	setOrAppend(doc, KeyGCEEnabled, gceEnabled)
	setOrAppend(doc, KeyGCEDefaultRegion, gceRegion)
	return nil
}

func setOrAppend(doc *Document, key, value string) {
	if !doc.Set(key, value) {
		doc.Append(key, value)
	}
}
