package interfaces

// Terraform output names read by the pipeline. Absence of any of these in a
// given environment is a valid state, not an error.
const (
	OutputFrontendBucket = "frontend_bucket"
	OutputAPIURL         = "api_url"
	OutputCDNURL         = "cdn_url"
	OutputDataBucket     = "data_bucket"
)

// nullOutput is the literal placeholder terraform emits for outputs that are
// declared but not provisioned in the selected workspace.
const nullOutput = "null"

// OutputSet holds the named values exposed by the provisioning backend after
// apply, or read from existing state before destroy. Empty string means the
// output was not produced.
type OutputSet struct {
	FrontendBucket string `mapstructure:"frontend_bucket"`
	APIURL         string `mapstructure:"api_url"`
	CDNURL         string `mapstructure:"cdn_url"`
	DataBucket     string `mapstructure:"data_bucket"`
}

// HasFrontendBucket reports whether the frontend bucket was provisioned.
// The literal "null" placeholder counts as not provisioned.
func (o OutputSet) HasFrontendBucket() bool {
	return o.FrontendBucket != "" && o.FrontendBucket != nullOutput
}

// HasCDN reports whether a CDN distribution URL was provisioned.
func (o OutputSet) HasCDN() bool {
	return o.CDNURL != "" && o.CDNURL != nullOutput
}

// BucketOutputs returns every bucket-like output that resolved to a real
// name. These must all be emptied before the provisioning backend may
// destroy them.
func (o OutputSet) BucketOutputs() []string {
	var buckets []string
	if o.HasFrontendBucket() {
		buckets = append(buckets, o.FrontendBucket)
	}
	if o.DataBucket != "" && o.DataBucket != nullOutput {
		buckets = append(buckets, o.DataBucket)
	}
	return buckets
}

// AsMap returns the present outputs as a name-to-value map, omitting absent
// ones. Used for stage results and the final summary.
func (o OutputSet) AsMap() map[string]string {
	m := make(map[string]string)
	if o.HasFrontendBucket() {
		m[OutputFrontendBucket] = o.FrontendBucket
	}
	if o.APIURL != "" && o.APIURL != nullOutput {
		m[OutputAPIURL] = o.APIURL
	}
	if o.HasCDN() {
		m[OutputCDNURL] = o.CDNURL
	}
	if o.DataBucket != "" && o.DataBucket != nullOutput {
		m[OutputDataBucket] = o.DataBucket
	}
	return m
}
