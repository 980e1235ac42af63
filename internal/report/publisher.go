package report

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/animus-labs/expense-tracker/internal/storage/objectstore"
)

// Publication lists the objects written by one Publish call.
type Publication struct {
	ID      string
	Bucket  string
	Objects []objectstore.ObjectInfo
}

// Publisher archives a generated report, and the snapshot it was built from,
// under runs/<id>/ in the reports bucket.
type Publisher struct {
	store  objectstore.Store
	bucket string
	newID  func() string
}

func NewPublisher(store objectstore.Store, bucket string) (*Publisher, error) {
	if store == nil {
		return nil, errors.New("object store is required")
	}
	bucket = strings.TrimSpace(bucket)
	if bucket == "" {
		return nil, errors.New("bucket is required")
	}
	return &Publisher{store: store, bucket: bucket, newID: uuid.NewString}, nil
}

// Publish uploads the report and, when present, the snapshot. A missing
// report is ErrReportMissing and nothing is uploaded.
func (p *Publisher) Publish(ctx context.Context, reportPath, snapshotPath string) (Publication, error) {
	if err := Check(reportPath); err != nil {
		return Publication{}, err
	}
	pub := Publication{ID: p.newID(), Bucket: p.bucket}

	files := []struct {
		path        string
		contentType string
	}{
		{path: reportPath, contentType: "text/html; charset=utf-8"},
	}
	if snapshotPath != "" {
		if _, err := os.Stat(snapshotPath); err == nil {
			files = append(files, struct {
				path        string
				contentType string
			}{path: snapshotPath, contentType: "text/csv; charset=utf-8"})
		}
	}

	for _, f := range files {
		key := path.Join("runs", pub.ID, filepath.Base(f.path))
		info, err := p.upload(ctx, key, f.path, f.contentType)
		if err != nil {
			return pub, err
		}
		pub.Objects = append(pub.Objects, info)
	}
	return pub, nil
}

func (p *Publisher) upload(ctx context.Context, key, filePath, contentType string) (objectstore.ObjectInfo, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return objectstore.ObjectInfo{}, fmt.Errorf("open %s: %w", filePath, err)
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return objectstore.ObjectInfo{}, fmt.Errorf("stat %s: %w", filePath, err)
	}
	if err := p.store.Put(ctx, p.bucket, key, file, stat.Size(), contentType); err != nil {
		return objectstore.ObjectInfo{}, err
	}
	info, err := p.store.Stat(ctx, p.bucket, key)
	if err != nil {
		return objectstore.ObjectInfo{}, err
	}
	if info.Size != stat.Size() {
		return info, fmt.Errorf("uploaded %s is %d bytes, want %d", key, info.Size, stat.Size())
	}
	return info, nil
}
