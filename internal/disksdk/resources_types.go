package disksdk

const (
	TypeFile = "file"
	TypeDir  = "dir"
)

// Resource is the metadata record the Disk API reports for one path
type Resource struct {
	Name     string        `json:"name"`
	Path     string        `json:"path"`
	Type     string        `json:"type"`
	MD5      string        `json:"md5,omitempty"`
	Size     int64         `json:"size,omitempty"`
	Embedded *ResourceList `json:"_embedded,omitempty"`
}

// ResourceList is one page of a directory listing
type ResourceList struct {
	Items  []*Resource `json:"items"`
	Limit  int         `json:"limit"`
	Offset int         `json:"offset"`
	Total  int         `json:"total"`
}

// UploadLink is the presigned target returned for an upload request
type UploadLink struct {
	Href      string `json:"href"`
	Method    string `json:"method"`
	Templated bool   `json:"templated"`
}

// RemoteEntry is one listed resource with its path rewritten relative
// to the client's root folder
type RemoteEntry struct {
	Path string
	Dir  bool
	MD5  string
	Size int64
}
