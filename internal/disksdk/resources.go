package disksdk

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path"
	"strconv"
	"strings"

	"github.com/imroc/req/v3"
)

const (
	v1Resources       = "/v1/disk/resources"
	v1ResourcesUpload = "/v1/disk/resources/upload"

	listFields = "name,path,type,md5,size,_embedded.items.name,_embedded.items.path,_embedded.items.type,_embedded.items.md5,_embedded.items.size,_embedded.limit,_embedded.offset,_embedded.total"
	listLimit  = 200
)

// ResourcesAPI exposes the four Disk operations the sync engine needs.
// All paths are slash-separated and relative to the configured root
// folder; the empty string addresses the root itself.
type ResourcesAPI struct {
	client       *req.Client
	uploadClient *req.Client
	folder       string
}

func newResourcesAPI(client, uploadClient *req.Client, folder string) *ResourcesAPI {
	return &ResourcesAPI{
		client:       client,
		uploadClient: uploadClient,
		folder:       sanitizePath(folder),
	}
}

// ListRecursive enumerates every entry under relPath. Returns
// ErrNotFound when the path does not exist on the remote side.
func (r *ResourcesAPI) ListRecursive(ctx context.Context, relPath string) ([]*RemoteEntry, error) {
	var entries []*RemoteEntry

	queue := []string{sanitizePath(relPath)}
	for len(queue) > 0 {
		dir := queue[0]
		queue = queue[1:]

		items, err := r.listDir(ctx, dir)
		if err != nil {
			return nil, err
		}

		for _, item := range items {
			rel := r.relPath(item.Path)
			switch item.Type {
			case TypeDir:
				entries = append(entries, &RemoteEntry{Path: rel, Dir: true})
				queue = append(queue, rel)
			case TypeFile:
				entries = append(entries, &RemoteEntry{Path: rel, MD5: item.MD5, Size: item.Size})
			}
		}
	}

	return entries, nil
}

// listDir pages through one directory's embedded items
func (r *ResourcesAPI) listDir(ctx context.Context, relPath string) ([]*Resource, error) {
	var items []*Resource

	for offset := 0; ; offset += listLimit {
		var res *Resource
		resp, err := r.client.R().
			SetContext(ctx).
			SetQueryParam("path", r.fullPath(relPath)).
			SetQueryParam("fields", listFields).
			SetQueryParam("limit", strconv.Itoa(listLimit)).
			SetQueryParam("offset", strconv.Itoa(offset)).
			SetSuccessResult(&res).
			Get(v1Resources)

		if err := handleAPIError(resp, err, "resources list"); err != nil {
			return nil, err
		}

		if res == nil || res.Embedded == nil {
			return items, nil
		}

		items = append(items, res.Embedded.Items...)

		if offset+listLimit >= res.Embedded.Total || len(res.Embedded.Items) == 0 {
			return items, nil
		}
	}
}

// CreateFolder creates a directory on the remote side. Creating a
// directory that already exists is a no-op.
func (r *ResourcesAPI) CreateFolder(ctx context.Context, relPath string) error {
	resp, err := r.client.R().
		SetContext(ctx).
		SetQueryParam("path", r.fullPath(relPath)).
		Put(v1Resources)

	// 409 with this code means the folder is already there
	if resp != nil && resp.StatusCode == http.StatusConflict {
		if apiErr, ok := resp.ErrorResult().(*APIError); ok && apiErr.Code == CodePathExists {
			return nil
		}
	}

	return handleAPIError(resp, err, "resources mkdir")
}

// Upload sends the full content of localPath to relPath, overwriting
// any remote version. The transfer is two requests: fetch a presigned
// upload href, then PUT the file body to it.
func (r *ResourcesAPI) Upload(ctx context.Context, localPath, relPath string) error {
	file, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrLocalRead, err)
	}
	defer file.Close()

	var link *UploadLink
	resp, err := r.client.R().
		SetContext(ctx).
		SetQueryParam("path", r.fullPath(relPath)).
		SetQueryParam("overwrite", "true").
		SetSuccessResult(&link).
		Get(v1ResourcesUpload)

	if err := handleAPIError(resp, err, "resources upload link"); err != nil {
		return err
	}

	if link == nil || link.Href == "" {
		return errors.New("resources upload: empty upload href")
	}

	putResp, err := r.uploadClient.R().
		SetContext(ctx).
		SetBody(file).
		Put(link.Href)

	return handleAPIError(putResp, err, "resources upload")
}

// Delete removes relPath on the remote side, recursively for
// directories. Returns ErrNotFound when the path is already absent;
// callers treat that as success.
func (r *ResourcesAPI) Delete(ctx context.Context, relPath string) error {
	resp, err := r.client.R().
		SetContext(ctx).
		SetQueryParam("path", r.fullPath(relPath)).
		SetQueryParam("permanently", "true").
		Delete(v1Resources)

	return handleAPIError(resp, err, "resources delete")
}

// fullPath joins a root-relative path with the configured folder
func (r *ResourcesAPI) fullPath(relPath string) string {
	relPath = sanitizePath(relPath)
	if relPath == "" {
		return r.folder
	}
	return r.folder + "/" + relPath
}

// relPath rewrites an API-reported path ("disk:/folder/a/b") back to a
// root-relative one ("a/b")
func (r *ResourcesAPI) relPath(apiPath string) string {
	p := strings.TrimPrefix(apiPath, "disk:/")
	p = strings.TrimPrefix(p, "/")
	p = strings.TrimPrefix(p, r.folder)
	return strings.TrimPrefix(p, "/")
}

// sanitizePath normalizes separators and strips leading/trailing
// slashes and dot segments
func sanitizePath(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	p = path.Clean(p)
	if p == "." || p == "/" {
		return ""
	}
	return strings.Trim(p, "/")
}
