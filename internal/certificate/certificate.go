package certificate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/vnma/vaxtui/internal/domain"
)

// Source fetches certificate bytes for a record
type Source interface {
	Certificate(ctx context.Context, id int64) ([]byte, error)
}

// Index remembers where each certificate was saved
type Index interface {
	CertificatePath(recordID int64) (string, bool)
	SaveCertificatePath(recordID int64, path string) error
	ForgetCertificate(recordID int64)
}

// Downloader saves certificates to disk, reusing earlier downloads
type Downloader struct {
	source Source
	index  Index
	dir    string
	logger *slog.Logger
}

// NewDownloader creates a Downloader writing into dir
func NewDownloader(source Source, index Index, dir string, logger *slog.Logger) *Downloader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Downloader{source: source, index: index, dir: dir, logger: logger}
}

// FileName is the on-disk name of a record's certificate
func FileName(recordID int64) string {
	return fmt.Sprintf("vaccination_certificate_%d.pdf", recordID)
}

// Download returns the local path of the record's certificate, fetching it
// only when no earlier copy exists. reused reports whether a copy was found.
func (d *Downloader) Download(ctx context.Context, recordID int64) (path string, reused bool, err error) {
	if p, ok := d.index.CertificatePath(recordID); ok {
		if fileExists(p) {
			d.logger.Debug("reusing indexed certificate", "record", recordID, "path", p)
			return p, true, nil
		}
		d.index.ForgetCertificate(recordID)
	}

	target := filepath.Join(d.dir, FileName(recordID))
	if fileExists(target) {
		d.remember(recordID, target)
		return target, true, nil
	}

	pdf, err := d.source.Certificate(ctx, recordID)
	if err != nil {
		d.logger.Error("failed to fetch certificate", "record", recordID, "error", err)
		return "", false, describe(err)
	}

	if err := writeFileAtomic(target, pdf); err != nil {
		return "", false, fmt.Errorf("save certificate: %w", err)
	}
	d.remember(recordID, target)
	d.logger.Info("downloaded certificate", "record", recordID, "path", target, "bytes", len(pdf))
	return target, false, nil
}

func (d *Downloader) remember(recordID int64, path string) {
	if err := d.index.SaveCertificatePath(recordID, path); err != nil {
		d.logger.Warn("failed to index certificate", "record", recordID, "error", err)
	}
}

// describe gives certificate failures the wording users expect
func describe(err error) error {
	var apiErr *domain.APIError
	status := 0
	if errors.As(err, &apiErr) {
		status = apiErr.Status
	}
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return &domain.APIError{Status: status, Message: "Vaccination record not found", Kind: domain.ErrNotFound}
	case errors.Is(err, domain.ErrServer):
		return &domain.APIError{Status: status, Message: "The server could not generate the certificate", Kind: domain.ErrServer}
	}
	return err
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir() && info.Size() > 0
}

func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".certificate-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
