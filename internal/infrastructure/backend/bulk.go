package backend

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"

	"github.com/marketplace/portal/internal/domain/bulk"
)

// Bulk is the /product/bulk resource
type Bulk struct{ c *Client }

// Bulk returns the bulk import resource client
func (c *Client) Bulk() *Bulk { return &Bulk{c: c} }

// Template downloads the import workbook template
func (b *Bulk) Template(ctx context.Context) ([]byte, string, error) {
	return b.c.Download(ctx, "/product/bulk/import-template")
}

// importData is the data payload of the bulk endpoints, on success and on
// failure alike
type importData struct {
	Inserted   int              `json:"inserted"`
	Updated    int              `json:"updated"`
	Errors     []bulk.RowError  `json:"errors"`
	Duplicates []bulk.Duplicate `json:"duplicates"`
}

// Import uploads a workbook. vendorID is only sent by admins uploading on a
// vendor's behalf; vendors are identified by their token.
//
// The returned Result is always populated for a decoded envelope, so row
// errors and duplicates can be rendered even when err is a BusinessError.
func (b *Bulk) Import(ctx context.Context, kind bulk.Kind, vendorID, fileName string, content io.Reader) (bulk.Result, error) {
	path := "/product/bulk/bulk-import"
	if kind == bulk.KindPrices {
		path = "/product/bulk/price-update"
	}
	if vendorID != "" {
		path += "/" + url.PathEscape(vendorID)
	}

	file := File{Field: "file", Name: fileName, ContentType: bulk.XLSXContentType, Content: content}
	var data importData
	env, err := b.c.upload(ctx, http.MethodPost, path, nil, []File{file}, &data)

	res := bulk.Result{Status: 1}
	if env != nil {
		res.Message = env.Message
	}
	var be *BusinessError
	switch {
	case errors.As(err, &be):
		res.Status = be.Status
		res.Message = be.Error()
		if len(be.Data) > 0 {
			_ = json.Unmarshal(be.Data, &data)
		}
	case err != nil:
		res.Status = 0
		res.Normalize()
		return res, err
	}

	res.Inserted = data.Inserted
	res.Updated = data.Updated
	res.Errors = data.Errors
	res.Duplicates = data.Duplicates
	res.Normalize()
	return res, err
}
