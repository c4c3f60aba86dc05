package tracker

// API versions pinned per endpoint; the tracker rejects unknown previews.
const (
	wiqlAPIVersion     = "7.1-preview.2"
	batchAPIVersion    = "7.1-preview.1"
	updateAPIVersion   = "7.1-preview.3"
	graphAPIVersion    = "7.1-preview.1"
	projectsAPIVersion = "7.1"
)

// Config is passed by value into the client at construction.
type Config struct {
	BaseURL      string `yaml:"base_url"`
	GraphURL     string `yaml:"graph_url"`
	Organization string `yaml:"organization"`
	Project      string `yaml:"project"`
	Token        string `yaml:"token"`
	// BatchSize caps the number of ids per workitemsbatch call.
	BatchSize int `yaml:"batch_size"`
}

// DefaultConfig returns the public cloud endpoints and a batch size of 200.
func DefaultConfig() Config {
	return Config{
		BaseURL:   "https://dev.azure.com",
		GraphURL:  "https://vssps.dev.azure.com",
		BatchSize: 200,
	}
}
