package dataset

import (
	"context"

	"github.com/GuyFromTheInternet/hazardousenvironments-sub000/internal/core/ports"
	"github.com/GuyFromTheInternet/hazardousenvironments-sub000/internal/pkg/config"
)

// FromConfig picks the S3 object when a bucket is configured, else the directory.
func FromConfig(ctx context.Context, cfg config.DatasetConfig) (ports.DatasetSource, error) {
	if cfg.S3Bucket != "" {
		src, err := NewS3Source(ctx, cfg.S3Region, cfg.S3Bucket, cfg.S3Key)
		if err != nil {
			return nil, err
		}
		return src, nil
	}
	return NewFileSource(cfg.Dir), nil
}
