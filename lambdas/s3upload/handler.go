package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"path"

	"github.com/aws/aws-lambda-go/events"
	"github.com/sirupsen/logrus"
	"shiftinsight.com/shiftinsight/config"
	"shiftinsight.com/shiftinsight/core"
	"shiftinsight.com/shiftinsight/loader"
)

type workbookLoader interface {
	Load(ctx context.Context, in loader.Input, source string, progress loader.ProgressFunc) (*loader.Summary, error)
}

type readFunc func(ctx context.Context, bucket string, key string, outStream io.Writer) error

// Handler loads every workbook named in an S3 ObjectCreated event.
type Handler struct {
	loader workbookLoader
	read   readFunc
	log    *logrus.Logger
}

// objectKey returns the decoded key. Keys in S3 events are URL encoded with '+' for spaces.
func objectKey(obj events.S3Object) string {
	if obj.URLDecodedKey != "" {
		return obj.URLDecodedKey
	}
	if key, err := url.QueryUnescape(obj.Key); err == nil {
		return key
	}
	return obj.Key
}

// HandleRequest fails when any workbook fails so the event is retried. Loads are idempotent.
func (h *Handler) HandleRequest(ctx context.Context, event events.S3Event) error {
	failed := 0
	for _, record := range event.Records {
		bucket := record.S3.Bucket.Name
		key := objectKey(record.S3.Object)
		log := h.log.WithFields(logrus.Fields{"bucket": bucket, "key": key})

		if !loader.IsSupported(key) {
			log.Info("ignoring object that is not a workbook")
			continue
		}

		var buf bytes.Buffer
		if err := h.read(ctx, bucket, key, &buf); err != nil {
			config.LogError(log, "s3upload", "HandleRequest", "read object", nil, err)
			failed++
			continue
		}

		summary, err := h.loader.Load(ctx, loader.Input{
			Filename: path.Base(key),
			Reader:   &buf,
		}, core.SourceS3, nil)
		if err != nil {
			config.LogError(log, "s3upload", "HandleRequest", "load workbook", nil, err)
			failed++
			continue
		}
		log.WithFields(logrus.Fields{
			"load_id":  summary.LoadID,
			"inserted": summary.Inserted,
			"skipped":  summary.Skipped,
			"match":    summary.Verification.Match,
		}).Info("workbook loaded")
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d objects failed to load", failed, len(event.Records))
	}
	return nil
}
