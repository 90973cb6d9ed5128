package api

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"

	"github.com/vnma/vaxtui/internal/domain"
)

// sendForm sends fields as multipart form data, attaching the file at
// avatarPath as "avatar" when set. Without an avatar the fields go as JSON.
func (c *Client) sendForm(ctx context.Context, method, path string, fields map[string]string, avatarPath string, out any) error {
	if avatarPath == "" {
		return c.sendJSON(ctx, method, path, fields, out)
	}

	mtype, err := mimetype.DetectFile(avatarPath)
	if err != nil {
		return domain.Invalid("avatar", fmt.Sprintf("Cannot read avatar: %v", err))
	}
	if !isImage(mtype) {
		return domain.Invalid("avatar", fmt.Sprintf("Avatar must be an image, got %s", mtype.String()))
	}

	f, err := os.Open(avatarPath)
	if err != nil {
		return domain.Invalid("avatar", fmt.Sprintf("Cannot read avatar: %v", err))
	}
	defer f.Close()

	req := c.rc.R().
		SetContext(ctx).
		SetMultipartFormData(fields).
		SetMultipartField("avatar", filepath.Base(avatarPath), mtype.String(), f)

	body, err := c.execute(req, method, path)
	if err != nil {
		return err
	}
	if out == nil || len(body) == 0 {
		return nil
	}
	return decodeObject(body, out)
}

func isImage(m *mimetype.MIME) bool {
	for ; m != nil; m = m.Parent() {
		switch m.String() {
		case "image/jpeg", "image/png", "image/gif", "image/webp", "image/heic", "image/bmp":
			return true
		}
	}
	return false
}

func setIf(fields map[string]string, key, value string) {
	if value != "" {
		fields[key] = value
	}
}

func boolField(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
