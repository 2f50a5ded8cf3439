package disksdk

import (
	"diskmirror/internal/version"

	"github.com/imroc/req/v3"
)

const (
	DefaultBaseURL = "https://cloud-api.yandex.net"

	HeaderUserAgent     = "User-Agent"
	HeaderAuthorization = "Authorization"
)

// DiskSDK is the client for the Yandex Disk REST API.
// All calls are single-attempt; unresolved failures surface on the
// next sync cycle's diff instead of being retried here.
type DiskSDK struct {
	client    *req.Client
	Resources *ResourcesAPI
}

// New creates a new DiskSDK client
func New(config *DiskSDKConfig) (*DiskSDK, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	client := req.C().
		SetBaseURL(baseURL).
		SetCommonHeader(HeaderAuthorization, "OAuth "+config.Token).
		SetCommonHeader(HeaderUserAgent, "diskmirror/"+version.Version).
		SetCommonErrorResult(&APIError{}).
		SetJsonMarshal(jsonMarshal).
		SetJsonUnmarshal(jsonUmarshal)

	// the upload href is a presigned URL on a separate host and must
	// not carry the OAuth header
	uploadClient := req.C().
		SetCommonHeader(HeaderUserAgent, "diskmirror/"+version.Version)

	return &DiskSDK{
		client:    client,
		Resources: newResourcesAPI(client, uploadClient, config.Folder),
	}, nil
}

// Close terminates idle connections
func (s *DiskSDK) Close() {
	s.client.CloseIdleConnections()
}
