package storage

import (
	"bytes"
	"context"
)

// ReportStore writes closure reports as JSON objects through an uploader.
type ReportStore struct {
	uploader Uploader
}

func NewReportStore(uploader Uploader) *ReportStore {
	return &ReportStore{uploader: uploader}
}

// PutReport stores body under key and returns its public URL.
func (s *ReportStore) PutReport(ctx context.Context, key string, body []byte) (string, error) {
	res, err := s.uploader.Upload(ctx, key, "application/json", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	return res.Location, nil
}
